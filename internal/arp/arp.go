// Copyright 2026 The Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package arp supplies the default dhcp4.ARPProber: a no-op. Real ARP
// probing is an external collaborator the engine consumes, not something
// the engine implements itself.
package arp

import (
	"context"
	"net"
)

// NullProber never detects a conflict. Callers who need real duplicate
// address detection supply their own dhcp4.ARPProber.
type NullProber struct{}

// Probe implements dhcp4.ARPProber.
func (NullProber) Probe(ctx context.Context, ifaceName string, addr net.IP) (bool, error) {
	return false, nil
}
