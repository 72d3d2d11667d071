// Copyright 2026 The Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package dhcp4

import (
	"fmt"
	"net"
	"sort"
	"strconv"
	"strings"
)

func ipFromBytes(b []byte) net.IP {
	return net.IPv4(b[0], b[1], b[2], b[3])
}

// Environ flattens a bound lease into "key=value" pairs for the hook script
// (spec.md §7): one entry per recognized option using its canonical table
// name, plus the fixed interface/address/reason bookkeeping entries.
func Environ(ifaceName string, l *Lease, reason Reason) []string {
	env := []string{
		"interface=" + ifaceName,
		"reason=" + reason.String(),
	}
	if l == nil {
		return env
	}
	env = append(env,
		"ip_address="+l.Addr.String(),
		"subnet_mask="+maskToIP(l.Net.Mask).String(),
		"broadcast_address="+safeIPString(l.Brd),
		"lease_time="+secondsString(l.LeaseTime),
		"renewal_time="+secondsString(l.RenewalTime),
		"rebinding_time="+secondsString(l.RebindTime),
	)
	if l.Server != nil {
		env = append(env, "dhcp_server_identifier="+l.Server.String())
	}

	codes := make([]byte, 0, len(l.Options))
	for code := range l.Options {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })

	for _, code := range codes {
		e, ok := optionByCode[code]
		if !ok {
			continue
		}
		switch code {
		case OptSubnetMask, OptServerID, OptLeaseTime, OptRenewalT1, OptRebindingT2:
			continue // already emitted above under their canonical names
		case OptFQDN:
			if v, ok := l.Options.Bytes(OptFQDN); ok && len(v) > 3 {
				env = append(env, "fqdn="+fqdnName(v[3:]))
			}
			continue
		}
		if v := environValue(e, l.Options[code]); v != "" {
			env = append(env, e.Name+"="+v)
		}
	}
	return env
}

func environValue(e tableEntry, raw []byte) string {
	switch {
	case e.Flags&FlagAddrIPv4 != 0 && e.Flags&FlagArray != 0:
		var addrs []string
		for i := 0; i+4 <= len(raw); i += 4 {
			addrs = append(addrs, ipFromBytes(raw[i:i+4]).String())
		}
		return strings.Join(addrs, " ")
	case e.Flags&FlagAddrIPv4 != 0:
		if len(raw) < 4 {
			return ""
		}
		return ipFromBytes(raw[:4]).String()
	case e.Flags&FlagUint32 != 0:
		if len(raw) < 4 {
			return ""
		}
		return strconv.FormatUint(uint64(uint32(raw[0])<<24|uint32(raw[1])<<16|uint32(raw[2])<<8|uint32(raw[3])), 10)
	case e.Flags&FlagUint16 != 0:
		if len(raw) < 2 {
			return ""
		}
		return strconv.FormatUint(uint64(uint16(raw[0])<<8|uint16(raw[1])), 10)
	case e.Flags&FlagUint8 != 0:
		if len(raw) < 1 {
			return ""
		}
		return strconv.FormatUint(uint64(raw[0]), 10)
	default:
		return string(raw)
	}
}

// fqdnName decodes the RFC 1035 label sequence that follows the FQDN
// option's three flag bytes back into a dotted name for the hook
// environment.
func fqdnName(labels []byte) string {
	name, _, err := decodeDNSName(labels, 0)
	if err != nil {
		return ""
	}
	return name
}

func maskToIP(m net.IPMask) net.IP {
	if len(m) != net.IPv4len {
		return net.IPv4zero
	}
	return net.IPv4(m[0], m[1], m[2], m[3])
}

func safeIPString(ip net.IP) string {
	if ip == nil {
		return ""
	}
	return ip.String()
}

func secondsString(s Seconds) string {
	if s == Infinite {
		return "infinite"
	}
	return fmt.Sprintf("%d", uint32(s))
}
