// Copyright 2026 The Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package dhcp4

import (
	"fmt"
	"net"
)

// Route is one entry of a static route list, classless or classful.
type Route struct {
	Dest    net.IPNet
	Gateway net.IP
}

// ParseClasslessRoutes decodes RFC 3442 (and the byte-compatible Microsoft
// variant, option 249): a sequence of {cidr, dest, gateway} entries. cidr 0
// means the default route, with an empty dest. Malformed input (cidr > 32,
// or a value too short for the cidr it declares) is an error; the caller
// treats the option as absent rather than dropping the whole message
// (spec.md §7).
func ParseClasslessRoutes(raw []byte) ([]Route, error) {
	var routes []Route
	i := 0
	for i < len(raw) {
		cidr := int(raw[i])
		i++
		if cidr > 32 {
			return nil, fmt.Errorf("dhcp4: classless route cidr %d > 32", cidr)
		}
		destBytes := (cidr + 7) / 8
		if i+destBytes+4 > len(raw) {
			return nil, fmt.Errorf("dhcp4: classless route truncated")
		}
		dest := make(net.IP, 4)
		copy(dest, raw[i:i+destBytes])
		i += destBytes
		gw := net.IPv4(raw[i], raw[i+1], raw[i+2], raw[i+3])
		i += 4
		routes = append(routes, Route{
			Dest:    net.IPNet{IP: dest, Mask: net.CIDRMask(cidr, 32)},
			Gateway: gw,
		})
	}
	return routes, nil
}

// classfulMask infers a netmask from the classful A/B/C rule applied to the
// host-order destination address, per spec.md §4.1's "Route inference for
// legacy option 33" algorithm, then narrows it while its complement
// overlaps any set host bit of the destination.
func classfulMask(dest net.IP) net.IPMask {
	d := dest.To4()
	var bits int
	switch {
	case d[0] < 128:
		bits = 8
	case d[0] < 192:
		bits = 16
	default:
		bits = 24
	}
	host := uint32(d[0])<<24 | uint32(d[1])<<16 | uint32(d[2])<<8 | uint32(d[3])
	m := uint32(0xFFFFFFFF) << uint(32-bits)
	for bits < 32 {
		hostBits := ^m
		if host&hostBits == 0 {
			break
		}
		bits++
		m = uint32(0xFFFFFFFF) << uint(32-bits)
	}
	return net.CIDRMask(bits, 32)
}

// ParseLegacyRoutes decodes option 33 (static routes, {dest,gateway} pairs
// with an inferred classful netmask) and appends default-route entries
// derived from option 3 (routers). Per spec.md §4.1, this whole path is
// superseded by RFC 3442/249 classless routes whenever either is present;
// callers should only call this when opts has neither 121 nor 249.
func ParseLegacyRoutes(opts Options) ([]Route, error) {
	var routes []Route
	if raw, ok := opts[OptStaticRoute]; ok {
		if len(raw)%8 != 0 {
			return nil, fmt.Errorf("dhcp4: static-route option length %d not a multiple of 8", len(raw))
		}
		for i := 0; i+8 <= len(raw); i += 8 {
			dest := net.IPv4(raw[i], raw[i+1], raw[i+2], raw[i+3]).To4()
			gw := net.IPv4(raw[i+4], raw[i+5], raw[i+6], raw[i+7])
			routes = append(routes, Route{
				Dest:    net.IPNet{IP: dest, Mask: classfulMask(dest)},
				Gateway: gw,
			})
		}
	}
	if routers, ok := opts.IPv4Array(OptRouter); ok {
		for _, r := range routers {
			routes = append(routes, Route{
				Dest:    net.IPNet{IP: net.IPv4zero.To4(), Mask: net.CIDRMask(0, 32)},
				Gateway: r,
			})
		}
	}
	return routes, nil
}

// RoutesFromOptions returns the effective route list for opts: classless static routes
// (option 121, or its Microsoft variant 249) take absolute precedence over
// the legacy option 33 + 3 combination when either is present
// (spec.md §4.1 "RFC 121/249 ... takes absolute precedence").
func RoutesFromOptions(opts Options) ([]Route, error) {
	if st, v, _ := opts.Lookup(OptClasslessRoutes); st == StatusValue {
		return ParseClasslessRoutes(v)
	}
	if st, v, _ := opts.Lookup(OptClasslessMS); st == StatusValue {
		return ParseClasslessRoutes(v)
	}
	return ParseLegacyRoutes(opts)
}

// InferSubnetMask infers a netmask from the classful boundaries of addr,
// used when an ACK omits option 1 (spec.md §3 lease invariants). Unlike
// classfulMask it does not narrow against host bits: a missing subnet mask
// is inferred purely from address class.
func InferSubnetMask(addr net.IP) net.IPMask {
	a := addr.To4()
	switch {
	case a[0] < 128:
		return net.CIDRMask(8, 32)
	case a[0] < 192:
		return net.CIDRMask(16, 32)
	case a[0] < 224:
		return net.CIDRMask(24, 32)
	default:
		return net.CIDRMask(32, 32)
	}
}
