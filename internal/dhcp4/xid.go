// Copyright 2026 The Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package dhcp4

import (
	"crypto/rand"
	"encoding/binary"
	"net"
)

// NewXID picks a transaction id for a fresh DISCOVER, RELEASE, INFORM,
// REBOOT, RENEW, or REBIND exchange (spec.md §4.3): the low 4 bytes of the
// hardware address when the caller asked for deterministic xids and the
// address is long enough, otherwise a cryptographically random value.
func NewXID(hwaddr net.HardwareAddr, fromHWAddr bool) uint32 {
	if fromHWAddr && len(hwaddr) >= 4 {
		tail := hwaddr[len(hwaddr)-4:]
		return binary.BigEndian.Uint32(tail)
	}
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand failing means the platform's entropy source is
		// broken; fall back to a fixed, clearly non-random value rather
		// than panicking the whole client.
		return 0x5a5a5a5a
	}
	return binary.BigEndian.Uint32(b[:])
}
