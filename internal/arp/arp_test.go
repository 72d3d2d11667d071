// Copyright 2026 The Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package arp

import (
	"context"
	"net"
	"testing"
)

func TestNullProber_NeverConflicts(t *testing.T) {
	var p NullProber
	conflict, err := p.Probe(context.Background(), "eth0", net.IPv4(192, 168, 1, 100))
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if conflict {
		t.Error("NullProber reported a conflict, want false always")
	}
}
