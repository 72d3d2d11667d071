// Copyright 2026 The Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package dhcp4

import (
	"fmt"
	"net"
)

// Inbound is one received datagram plus the addressing metadata the socket
// layer observed for it (spec.md §4.3 "Filtering of inbound messages").
type Inbound struct {
	Data     []byte
	SrcAddr  net.IP
	Reliable bool // true if the transport already validated UDP/IP checksums
}

// Accepted is the result of filtering and classifying one inbound message.
type Accepted struct {
	Msg     Message
	Opts    Options
	Type    MessageType // MsgNone for a plain BOOTP reply
	IsBOOTP bool
}

// Filter applies the engine's inbound acceptance rules: size and magic
// cookie sanity, transaction and hardware-address matching against the
// outstanding exchange, whitelist/blacklist membership, and the
// type-specific structural checks of spec.md §4.3 (an OFFER/ACK whose
// yiaddr and ciaddr are both zero or broadcast is rejected outright; a NAK
// lacking a server-identifier is rejected). A point-to-point peer mismatch
// is logged by the caller, not rejected here, since it is advisory only.
func Filter(in Inbound, cfg *Config, xid uint32, hwaddr net.HardwareAddr) (*Accepted, error) {
	if len(in.Data) < OffsetOptions {
		return nil, fmt.Errorf("dhcp4: inbound message too short: %d bytes", len(in.Data))
	}
	buf := make([]byte, MaxMessageLen)
	n := copy(buf, in.Data)
	_ = n
	msg := Message(buf)
	if !msg.HasMagicCookie() {
		return nil, fmt.Errorf("dhcp4: inbound message missing magic cookie")
	}
	if msg.Op() != OpBootReply {
		return nil, fmt.Errorf("dhcp4: inbound message op %d is not BOOTREPLY", msg.Op())
	}
	if msg.XID() != xid {
		return nil, fmt.Errorf("dhcp4: inbound xid %#08x does not match outstanding %#08x", msg.XID(), xid)
	}
	if !hwAddrEqual(msg.Chaddr(), hwaddr) {
		return nil, fmt.Errorf("dhcp4: inbound chaddr does not match our hardware address")
	}

	if len(cfg.Whitelist) > 0 && !inAnyIPNet(in.SrcAddr, cfg.Whitelist) {
		return nil, fmt.Errorf("dhcp4: inbound message from %s rejected: not in whitelist", in.SrcAddr)
	}
	for _, bl := range cfg.Blacklist {
		if bl.Contains(in.SrcAddr) {
			return nil, fmt.Errorf("dhcp4: inbound message from %s rejected: in blacklist", in.SrcAddr)
		}
	}

	opts, err := ParseOptions(msg)
	if err != nil {
		return nil, fmt.Errorf("dhcp4: inbound options: %w", err)
	}

	typ, isTyped := opts.MessageType()
	if !isTyped {
		return &Accepted{Msg: msg, Opts: opts, Type: MsgNone, IsBOOTP: true}, nil
	}

	switch typ {
	case MsgOffer, MsgAck:
		yiaddrBad := msg.Yiaddr().IsUnspecified() || isBroadcastIP(msg.Yiaddr())
		ciaddrBad := msg.Ciaddr().IsUnspecified() || isBroadcastIP(msg.Ciaddr())
		if yiaddrBad && ciaddrBad {
			return nil, fmt.Errorf("dhcp4: %s has invalid yiaddr %s and ciaddr %s", typ, msg.Yiaddr(), msg.Ciaddr())
		}
	case MsgNak:
		if _, ok := opts.IPv4(OptServerID); !ok {
			return nil, fmt.Errorf("dhcp4: DHCPNAK missing server identifier")
		}
	}

	return &Accepted{Msg: msg, Opts: opts, Type: typ}, nil
}

func hwAddrEqual(a, b net.HardwareAddr) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func inAnyIPNet(ip net.IP, nets []IPNet) bool {
	for _, n := range nets {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

func isBroadcastIP(ip net.IP) bool {
	ip4 := ip.To4()
	if ip4 == nil {
		return false
	}
	for _, b := range ip4 {
		if b != 0xFF {
			return false
		}
	}
	return true
}
