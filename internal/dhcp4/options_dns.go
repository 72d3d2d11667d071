// Copyright 2026 The Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package dhcp4

import (
	"fmt"
	"net"
	"strings"
)

// ParseDomainSearch decodes RFC 3397 domain search lists: standard DNS
// label compression, but with pointer offsets restricted to lie within the
// option payload itself (they cannot reach into the rest of the DHCP
// message). Loop detection bounds the number of pointer hops so a
// maliciously crafted option cannot spin forever.
func ParseDomainSearch(raw []byte) ([]string, error) {
	var names []string
	i := 0
	for i < len(raw) {
		name, next, err := decodeDNSName(raw, i)
		if err != nil {
			return nil, err
		}
		if name != "" {
			names = append(names, name)
		}
		i = next
	}
	return names, nil
}

// decodeDNSName decodes one RFC 1035 (with RFC 3397 restrictions) name
// starting at offset start, returning the name and the offset immediately
// following its on-the-wire encoding in the *original* (non-pointer)
// stream. Following a compression pointer does not advance the caller's
// cursor past the pointer itself.
func decodeDNSName(raw []byte, start int) (string, int, error) {
	var labels []string
	i := start
	hops := 0
	afterFirst := -1
	for {
		if i >= len(raw) {
			return "", 0, fmt.Errorf("dhcp4: domain-search name runs past option end")
		}
		l := int(raw[i])
		switch {
		case l == 0:
			i++
			if afterFirst == -1 {
				afterFirst = i
			}
			return strings.Join(labels, "."), afterFirst, nil
		case l&0xC0 == 0xC0:
			if i+1 >= len(raw) {
				return "", 0, fmt.Errorf("dhcp4: domain-search truncated pointer")
			}
			ptr := (l&0x3F)<<8 | int(raw[i+1])
			if afterFirst == -1 {
				afterFirst = i + 2
			}
			if ptr >= len(raw) {
				return "", 0, fmt.Errorf("dhcp4: domain-search pointer %d outside option", ptr)
			}
			hops++
			if hops > len(raw) {
				return "", 0, fmt.Errorf("dhcp4: domain-search compression loop detected")
			}
			i = ptr
		default:
			if i+1+l > len(raw) {
				return "", 0, fmt.Errorf("dhcp4: domain-search label runs past option end")
			}
			labels = append(labels, string(raw[i+1:i+1+l]))
			i += 1 + l
		}
	}
}

// ParseSIPServers decodes RFC 3361: a leading encoding byte selects either a
// DNS-name list (0, delegating to the RFC 3397 decoder) or a raw IPv4
// array (1, whose length must be a non-zero multiple of 4). Any other
// leading byte is an error.
func ParseSIPServers(raw []byte) (names []string, addrs []net.IP, err error) {
	if len(raw) < 1 {
		return nil, nil, fmt.Errorf("dhcp4: sip-servers option empty")
	}
	switch raw[0] {
	case 0:
		names, err = ParseDomainSearch(raw[1:])
		return names, nil, err
	case 1:
		rest := raw[1:]
		if len(rest) == 0 || len(rest)%4 != 0 {
			return nil, nil, fmt.Errorf("dhcp4: sip-servers IPv4 array length %d not a non-zero multiple of 4", len(rest))
		}
		for i := 0; i+4 <= len(rest); i += 4 {
			addrs = append(addrs, net.IPv4(rest[i], rest[i+1], rest[i+2], rest[i+3]))
		}
		return nil, addrs, nil
	default:
		return nil, nil, fmt.Errorf("dhcp4: sip-servers unknown encoding byte %d", raw[0])
	}
}
