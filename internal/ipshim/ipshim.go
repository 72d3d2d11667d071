// Copyright 2026 The Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package ipshim implements dhcp4.IPv4Shim on top of vishvananda/netlink,
// applying a bound lease's address and routes to the real interface.
package ipshim

import (
	"fmt"
	"net"

	"github.com/vishvananda/netlink"

	"github.com/mcingel/dhcpcd/internal/dhcp4"
)

// NetlinkShim is the default dhcp4.IPv4Shim.
type NetlinkShim struct{}

func (NetlinkShim) link(ifaceName string) (netlink.Link, error) {
	link, err := netlink.LinkByName(ifaceName)
	if err != nil {
		return nil, fmt.Errorf("ipshim: %w", err)
	}
	return link, nil
}

// AddAddr implements dhcp4.IPv4Shim.
func (s NetlinkShim) AddAddr(ifaceName string, addr net.IP, mask net.IPMask) error {
	link, err := s.link(ifaceName)
	if err != nil {
		return err
	}
	a := &netlink.Addr{IPNet: &net.IPNet{IP: addr.To4(), Mask: mask}}
	if err := netlink.AddrAdd(link, a); err != nil {
		return fmt.Errorf("ipshim: adding %s to %s: %w", a, ifaceName, err)
	}
	return netlink.LinkSetUp(link)
}

// DelAddr implements dhcp4.IPv4Shim.
func (s NetlinkShim) DelAddr(ifaceName string, addr net.IP, mask net.IPMask) error {
	link, err := s.link(ifaceName)
	if err != nil {
		return err
	}
	a := &netlink.Addr{IPNet: &net.IPNet{IP: addr.To4(), Mask: mask}}
	if err := netlink.AddrDel(link, a); err != nil {
		return fmt.Errorf("ipshim: removing %s from %s: %w", a, ifaceName, err)
	}
	return nil
}

// AddRoute implements dhcp4.IPv4Shim.
func (s NetlinkShim) AddRoute(ifaceName string, r dhcp4.Route) error {
	link, err := s.link(ifaceName)
	if err != nil {
		return err
	}
	route := &netlink.Route{
		LinkIndex: link.Attrs().Index,
		Dst:       &r.Dest,
		Gw:        r.Gateway,
	}
	if err := netlink.RouteReplace(route); err != nil {
		return fmt.Errorf("ipshim: adding route %s via %s on %s: %w", r.Dest.String(), r.Gateway, ifaceName, err)
	}
	return nil
}

// FlushRoutes implements dhcp4.IPv4Shim: it removes every route this engine
// could plausibly have installed on the interface.
func (s NetlinkShim) FlushRoutes(ifaceName string) error {
	link, err := s.link(ifaceName)
	if err != nil {
		return err
	}
	routes, err := netlink.RouteList(link, netlink.FAMILY_V4)
	if err != nil {
		return fmt.Errorf("ipshim: listing routes on %s: %w", ifaceName, err)
	}
	for _, r := range routes {
		if int(r.Protocol) == unixRTPROTStatic {
			continue
		}
		if err := netlink.RouteDel(&r); err != nil {
			return fmt.Errorf("ipshim: removing route %s on %s: %w", r.Dst, ifaceName, err)
		}
	}
	return nil
}

// unixRTPROTStatic mirrors RTPROT_STATIC, the protocol value the kernel
// assigns routes added by an administrator rather than a routing daemon;
// FlushRoutes leaves those alone rather than deleting configuration it
// never installed.
const unixRTPROTStatic = 4
