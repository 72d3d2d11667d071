// Copyright 2026 The Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package dhcp4

import (
	"fmt"
	"net"
)

// SixRD is the decoded form of RFC 5969's 6rd option: a fixed 22-byte
// prefix header followed by any number of 4-byte border-relay addresses.
type SixRD struct {
	IPv4MaskLen    byte
	IPv6PrefixLen  byte
	IPv6Prefix     net.IP
	BorderRelays   []net.IP
}

// Parse6RD decodes RFC 5969's option 212.
func Parse6RD(raw []byte) (SixRD, error) {
	const fixedLen = 22
	if len(raw) < fixedLen {
		return SixRD{}, fmt.Errorf("dhcp4: 6rd option too short: %d bytes", len(raw))
	}
	rd := SixRD{
		IPv4MaskLen:   raw[0],
		IPv6PrefixLen: raw[1],
		IPv6Prefix:    net.IP(append([]byte(nil), raw[2:18]...)),
	}
	rest := raw[fixedLen:]
	if len(rest)%4 != 0 {
		return SixRD{}, fmt.Errorf("dhcp4: 6rd border-relay list length %d not a multiple of 4", len(rest))
	}
	for i := 0; i+4 <= len(rest); i += 4 {
		rd.BorderRelays = append(rd.BorderRelays, net.IPv4(rest[i], rest[i+1], rest[i+2], rest[i+3]))
	}
	return rd, nil
}
