// Copyright 2026 The Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package dhcp4

import (
	"net"
	"time"
)

// IPNet is a plain (prefix, mask) pair used for whitelist/blacklist entries,
// spec.md §4.3 "Filtering of inbound messages".
type IPNet struct {
	Prefix net.IP
	Mask   net.IPMask
}

// Contains reports whether ip falls inside n.
func (n IPNet) Contains(ip net.IP) bool {
	ip4 := ip.To4()
	prefix4 := n.Prefix.To4()
	if ip4 == nil || prefix4 == nil {
		return false
	}
	for i := range ip4 {
		if ip4[i]&n.Mask[i] != prefix4[i]&n.Mask[i] {
			return false
		}
	}
	return true
}

// Config is the per-interface configuration this engine's caller assembles
// (spec.md §1 calls the parser that produces it an external collaborator;
// SPEC_FULL.md §3.1 fixes the shape it hands across that boundary).
type Config struct {
	InterfaceName string
	HardwareAddr  net.HardwareAddr
	MTU           int

	ClientID      []byte
	Hostname      string
	FQDN          string
	VendorClassID string
	UserClass     string

	RequestedAddr net.IP
	// ExtraRequestCodes are appended to the table-derived default
	// parameter-request list (spec.md §4.2).
	ExtraRequestCodes []byte

	Broadcast      bool
	XIDFromHWAddr  bool
	ARPProbe       bool
	IPv4LLFallback bool
	InformOnly     bool

	LeaseFile  string
	HookScript string

	Whitelist        []IPNet
	Blacklist        []IPNet
	PointToPointPeer net.IP

	// Retransmission is the base interval of the exponential backoff
	// schedule (spec.md §4.3 default 4s).
	Retransmission time.Duration
}

// DefaultRetransmission is the initial retransmit interval, spec.md §4.3.
const DefaultRetransmission = 4 * time.Second
