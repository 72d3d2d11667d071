// Copyright 2026 The Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package dhcp4

import (
	"net"
	"strings"
	"time"
)

// BuildParams carries everything the message builder needs beyond the
// message type itself: the transaction's xid, the caller's configuration,
// and the lease/address context that determines which options apply
// (spec.md §4.2).
type BuildParams struct {
	Type   MessageType
	XID    uint32
	Config *Config

	// Uptime is (now - start_uptime), pre-clamp.
	Uptime time.Duration

	// CurrentAddr is the address currently configured on the interface,
	// or nil/zero if none (used for the ciaddr and requested-addr rules).
	CurrentAddr net.IP

	// Lease is the offer being requested, or the existing bound lease
	// being renewed/released/declined. Nil if there is none yet
	// (a fresh DISCOVER).
	Lease *Lease

	// Server is the known server identifier, used for unicast REQUEST
	// (RENEW) and RELEASE. Nil for broadcast transactions.
	Server net.IP

	// InitReboot is true when building a REQUEST from the INIT-REBOOT
	// state: no server-id is emitted even though a requested address is.
	InitReboot bool
}

// option is one TLV to append to the options trailer during a build.
type option struct {
	code byte
	data []byte
}

// Build constructs a fresh Message for p.Type from p.Config and p.Lease,
// implementing the option-ordering and field rules of spec.md §4.2.
func Build(p BuildParams) (Message, error) {
	cfg := p.Config
	m := NewMessage()
	m.SetOp(OpBootRequest)
	m.SetHtype(HtypeEthernet)
	m.SetHlen(byte(len(cfg.HardwareAddr)))
	m.SetChaddr(cfg.HardwareAddr)
	m.SetXID(p.XID)

	ciaddr := ciaddrFor(p)
	if ciaddr != nil {
		m.SetCiaddr(ciaddr)
	}

	secs := p.Uptime / time.Second
	switch {
	case secs < 0:
		secs = 0
	case secs > 0xFFFF:
		secs = 0xFFFF
	}
	m.SetSecs(uint16(secs))

	broadcast := cfg.Broadcast && ciaddr == nil && p.Type != MsgDecline && p.Type != MsgRelease
	if broadcast {
		m.SetFlags(FlagBroadcast)
	}

	var opts []option
	opts = append(opts, option{OptMessageType, []byte{byte(p.Type)}})
	if len(cfg.ClientID) > 0 {
		opts = append(opts, option{OptClientID, cfg.ClientID})
	}

	leaseAddrDiffers := p.Lease != nil && !p.Lease.Addr.Equal(p.CurrentAddr)

	switch p.Type {
	case MsgDecline:
		if p.Lease != nil {
			opts = append(opts, option{OptRequestedAddr, p.Lease.Addr.To4()})
			if p.Server != nil {
				opts = append(opts, option{OptServerID, p.Server.To4()})
			}
		}
		opts = append(opts, option{OptDHCPMessage, []byte("Duplicate address detected")})
	case MsgRelease:
		if p.Server != nil {
			opts = append(opts, option{OptServerID, p.Server.To4()})
		}
	case MsgRequest:
		if leaseAddrDiffers || p.InitReboot {
			if p.Lease != nil {
				opts = append(opts, option{OptRequestedAddr, p.Lease.Addr.To4()})
			}
			if !p.InitReboot && p.Server != nil {
				opts = append(opts, option{OptServerID, p.Server.To4()})
			}
		}
	case MsgDiscover:
		if cfg.RequestedAddr != nil {
			opts = append(opts, option{OptRequestedAddr, cfg.RequestedAddr.To4()})
		}
	}

	if p.Type == MsgDiscover || p.Type == MsgInform || p.Type == MsgRequest {
		mtu := cfg.MTU
		if mtu < 576 {
			mtu = 576
		}
		if mtu > 1500 {
			mtu = 1500
		}
		opts = append(opts, option{OptMaxMsgSize, []byte{byte(mtu >> 8), byte(mtu)}})

		if cfg.UserClass != "" {
			opts = append(opts, option{OptUserClass, []byte(cfg.UserClass)})
		}
		if cfg.VendorClassID != "" {
			opts = append(opts, option{OptVendorClassID, []byte(cfg.VendorClassID)})
			opts = append(opts, option{OptVendor, []byte(cfg.VendorClassID)})
		}
		if p.Type != MsgInform {
			leaseTime := uint32(0xFFFFFFFF)
			opts = append(opts, option{OptLeaseTime, u32be(leaseTime)})
		}
		if cfg.Hostname != "" {
			h := cfg.Hostname
			if i := strings.IndexByte(h, '.'); i >= 0 {
				h = h[:i]
			}
			opts = append(opts, option{OptHostname, []byte(h)})
		}
		if cfg.FQDN != "" {
			flagByte := byte(0x04) // (fqdn & 0x09) | 0x04, with fqdn==0 here: see DESIGN.md open question
			labels, err := encodeFQDN(cfg.FQDN)
			if err != nil {
				return nil, err
			}
			data := append([]byte{flagByte, 0, 0}, labels...)
			opts = append(opts, option{OptFQDN, data})
		}

		prl := parameterRequestList(cfg, p.Type)
		if len(prl) > 0 {
			opts = append(opts, option{OptParamReqList, prl})
		}
	}

	writeOptions(m, opts)
	return m.Truncated().pad(BootpMinLen), nil
}

func ciaddrFor(p BuildParams) net.IP {
	switch p.Type {
	case MsgInform:
		if p.CurrentAddr != nil && !p.CurrentAddr.IsUnspecified() {
			return p.CurrentAddr
		}
		if p.Lease != nil {
			return p.Lease.Addr
		}
		return nil
	case MsgRelease:
		if p.Lease != nil {
			return p.Lease.Addr
		}
		return nil
	case MsgRequest:
		if p.InitReboot {
			return nil
		}
		if p.Lease == nil || p.CurrentAddr == nil {
			return nil
		}
		if !p.Lease.Net.Contains(p.CurrentAddr) {
			return nil
		}
		if p.Lease.raw == nil || !p.Lease.raw.HasMagicCookie() {
			return nil
		}
		return p.CurrentAddr
	default:
		return nil
	}
}

// parameterRequestList builds option 55 from the table-derived default plus
// the caller's extra codes, excluding renewal/rebind times on INFORM
// (spec.md §4.2).
func parameterRequestList(cfg *Config, typ MessageType) []byte {
	seen := make(map[byte]bool)
	var out []byte
	add := func(code byte) {
		if typ == MsgInform && (code == OptRenewalT1 || code == OptRebindingT2) {
			return
		}
		if !seen[code] {
			seen[code] = true
			out = append(out, code)
		}
	}
	for _, c := range DefaultParameterRequestList() {
		add(c)
	}
	for _, c := range cfg.ExtraRequestCodes {
		add(c)
	}
	return out
}

func writeOptions(m Message, opts []option) {
	trailer := m.RawOptions()
	i := 0
	for _, o := range opts {
		trailer[i] = o.code
		i++
		trailer[i] = byte(len(o.data))
		i++
		copy(trailer[i:], o.data)
		i += len(o.data)
	}
	trailer[i] = OptEnd
}

// pad extends m with zero (PAD) bytes up to n total bytes, the legacy BOOTP
// minimum message size.
func (m Message) pad(n int) Message {
	if len(m) >= n {
		return m
	}
	out := make(Message, n)
	copy(out, m)
	return out
}

func u32be(v uint32) []byte {
	return []byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
}

// encodeFQDN implements the RFC 1035 encoder: a dotted name becomes a
// sequence of length-prefixed labels terminated by a zero-length label. A
// trailing dot on the input is ignored.
func encodeFQDN(name string) ([]byte, error) {
	name = strings.TrimSuffix(name, ".")
	if name == "" {
		return []byte{0}, nil
	}
	labels := strings.Split(name, ".")
	var out []byte
	for _, l := range labels {
		out = append(out, byte(len(l)))
		out = append(out, []byte(l)...)
	}
	out = append(out, 0)
	return out, nil
}
