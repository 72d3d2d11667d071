// Copyright 2026 The Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package dhcp4

import (
	"fmt"
	"net"
)

// OptionFlag is a bitset describing the semantic shape of an option's
// value, used both to validate a decoded length and to build the default
// parameter-request list.
type OptionFlag uint16

const (
	FlagUint8 OptionFlag = 1 << iota
	FlagUint16
	FlagUint32
	FlagSint16
	FlagAddrIPv4
	FlagString
	FlagArray
	FlagRequest
	FlagRFC3361
	FlagRFC3397
	FlagRFC3442
	FlagRFC5969
)

// tableEntry records the shape and canonical name of one known option code,
// mirroring spec.md §4.1's "{code, type-flags, name}" table.
type tableEntry struct {
	Code  byte
	Flags OptionFlag
	Name  string
}

// optionTable enumerates every option this engine understands. Codes not
// present here are still passed through ParseOptions as opaque byte slices
// (type 0 / "unknown"), per spec.md §4.1.
var optionTable = []tableEntry{
	{OptSubnetMask, FlagAddrIPv4 | FlagRequest, "subnet_mask"},
	{OptTimeOffset, FlagUint32, "time_offset"},
	{OptRouter, FlagAddrIPv4 | FlagArray | FlagRequest, "routers"},
	{OptDomainNameServer, FlagAddrIPv4 | FlagArray | FlagRequest, "domain_name_servers"},
	{OptHostname, FlagString, "host_name"},
	{OptBootfileSize, FlagUint16, "bootfile_size"},
	{OptDomainName, FlagString | FlagRequest, "domain_name"},
	{OptRootPath, FlagString, "root_path"},
	{OptStaticRoute, FlagAddrIPv4 | FlagArray, "static_routes"},
	{OptNISDomain, FlagString, "nis_domain"},
	{OptNTPServers, FlagAddrIPv4 | FlagArray | FlagRequest, "ntp_servers"},
	{OptVendor, FlagString, "vendor_encapsulated_options"},
	{OptRequestedAddr, FlagAddrIPv4, "requested_address"},
	{OptLeaseTime, FlagUint32, "lease_time"},
	{OptOptionsOverload, FlagUint8, "option_overload"},
	{OptMessageType, FlagUint8, "dhcp_message_type"},
	{OptServerID, FlagAddrIPv4, "server_identifier"},
	{OptParamReqList, FlagString | FlagArray, "parameter_request_list"},
	{OptDHCPMessage, FlagString, "dhcp_message"},
	{OptMaxMsgSize, FlagUint16, "max_message_size"},
	{OptRenewalT1, FlagUint32, "renewal_time"},
	{OptRebindingT2, FlagUint32, "rebinding_time"},
	{OptVendorClassID, FlagString, "vendor_class_identifier"},
	{OptClientID, FlagString, "dhcp_client_identifier"},
	{OptSIPServers, FlagRFC3361, "sip_servers"},
	{OptDomainSearch, FlagRFC3397 | FlagRequest, "domain_search"},
	{OptClasslessRoutes, FlagRFC3442 | FlagRequest, "classless_static_routes"},
	{OptClasslessMS, FlagRFC3442, "ms_classless_static_routes"},
	{OptFQDN, FlagString, "fqdn"},
	{Opt6RD, FlagRFC5969 | FlagRequest, "sixrd"},
}

var optionByCode = func() map[byte]tableEntry {
	m := make(map[byte]tableEntry, len(optionTable))
	for _, e := range optionTable {
		m[e.Code] = e
	}
	return m
}()

// DefaultParameterRequestList returns, in table order, every option code
// marked FlagRequest, per spec.md §4.2.
func DefaultParameterRequestList() []byte {
	var out []byte
	for _, e := range optionTable {
		if e.Flags&FlagRequest != 0 {
			out = append(out, e.Code)
		}
	}
	return out
}

// Status is the codec boundary's explicit result type, replacing the
// errno-style signalling of the source implementation (spec.md §9):
// Absent | Malformed | Value.
type Status int

const (
	StatusAbsent Status = iota
	StatusMalformed
	StatusValue
)

// Options is the decoded option set of one DHCP message: option code to its
// raw (already RFC 3396-concatenated, overload-resolved) value bytes.
type Options map[byte][]byte

// ParseOptions walks the options trailer of m, concatenating repeated
// occurrences of the same code (RFC 3396) and following the
// OPTIONSOVERLOADED (52) option into the file/sname fields in that order,
// each at most once (spec.md §4.1). A truly malformed fixed field (an
// option whose declared length runs off the end of its segment) aborts the
// whole message; an absent or re-seated scan that simply runs out of bytes
// is not an error.
func ParseOptions(m Message) (Options, error) {
	opts := make(Options)
	var overload byte
	overloadSeen := false
	usedFile, usedSname := false, false

	segment := m.RawOptions()
	for {
		i := 0
		terminated := false
		for i < len(segment) {
			code := segment[i]
			if code == OptPad {
				i++
				continue
			}
			if code == OptEnd {
				terminated = true
				break
			}
			if i+1 >= len(segment) {
				return opts, fmt.Errorf("dhcp4: option %d header runs past end of trailer", code)
			}
			l := int(segment[i+1])
			start := i + 2
			end := start + l
			if end > len(segment) {
				return opts, fmt.Errorf("dhcp4: option %d declares length %d past end of trailer", code, l)
			}
			val := segment[start:end]

			switch {
			case code == OptOptionsOverload:
				if !overloadSeen && l >= 1 {
					overload = val[0]
					overloadSeen = true
				}
			default:
				if existing, ok := opts[code]; ok {
					merged := make([]byte, 0, len(existing)+len(val))
					merged = append(merged, existing...)
					merged = append(merged, val...)
					opts[code] = merged
				} else {
					cp := make([]byte, len(val))
					copy(cp, val)
					opts[code] = cp
				}
			}
			i = end
		}
		if !terminated {
			break
		}
		if overloadSeen && overload&0x1 != 0 && !usedFile {
			usedFile = true
			segment = m.File()
			continue
		}
		if overloadSeen && overload&0x2 != 0 && !usedSname {
			usedSname = true
			segment = m.Sname()
			continue
		}
		break
	}
	return opts, nil
}

// Lookup validates raw against the length rules of flags and returns the
// codec boundary's explicit result: Absent for a zero-length or too-short
// fixed-size value, Value (possibly truncated to the nominal size) on
// success. Lookup never returns Malformed: ParseOptions reports fixed-field
// corruption as an error instead, and option-level problems degrade to
// Absent so one bad option does not drop the whole message (spec.md §7).
func (o Options) Lookup(code byte) (Status, []byte, OptionFlag) {
	raw, ok := o[code]
	if !ok {
		return StatusAbsent, nil, 0
	}
	flags := OptionFlag(0)
	if e, ok := optionByCode[code]; ok {
		flags = e.Flags
	}
	if len(raw) == 0 {
		return StatusAbsent, nil, flags
	}

	switch {
	case flags&FlagArray != 0 && flags&FlagAddrIPv4 != 0:
		if len(raw) < 4 {
			return StatusAbsent, nil, flags
		}
		n := (len(raw) / 4) * 4
		return StatusValue, raw[:n], flags
	case flags&FlagUint32 != 0 || (flags&FlagAddrIPv4 != 0 && flags&FlagArray == 0):
		if len(raw) < 4 {
			return StatusAbsent, nil, flags
		}
		return StatusValue, raw[:4], flags
	case flags&FlagUint16 != 0 || flags&FlagSint16 != 0:
		if len(raw) < 2 {
			return StatusAbsent, nil, flags
		}
		return StatusValue, raw[:2], flags
	case flags&FlagUint8 != 0:
		if len(raw) < 1 {
			return StatusAbsent, nil, flags
		}
		return StatusValue, raw[:1], flags
	default:
		// STRING, RFC3442, RFC5969, or unknown (type 0): any non-zero
		// length is accepted as-is.
		return StatusValue, raw, flags
	}
}

// Uint8 decodes a one-byte option.
func (o Options) Uint8(code byte) (byte, bool) {
	st, v, _ := o.Lookup(code)
	if st != StatusValue {
		return 0, false
	}
	return v[0], true
}

// Uint16 decodes a two-byte big-endian option.
func (o Options) Uint16(code byte) (uint16, bool) {
	st, v, _ := o.Lookup(code)
	if st != StatusValue || len(v) < 2 {
		return 0, false
	}
	return uint16(v[0])<<8 | uint16(v[1]), true
}

// Uint32 decodes a four-byte big-endian option.
func (o Options) Uint32(code byte) (uint32, bool) {
	st, v, _ := o.Lookup(code)
	if st != StatusValue || len(v) < 4 {
		return 0, false
	}
	return uint32(v[0])<<24 | uint32(v[1])<<16 | uint32(v[2])<<8 | uint32(v[3]), true
}

// Seconds decodes a four-byte lease/T1/T2 style duration.
func (o Options) Seconds(code byte) (Seconds, bool) {
	v, ok := o.Uint32(code)
	return Seconds(v), ok
}

// IPv4 decodes a single four-byte address option.
func (o Options) IPv4(code byte) (net.IP, bool) {
	st, v, _ := o.Lookup(code)
	if st != StatusValue || len(v) < 4 {
		return nil, false
	}
	return net.IPv4(v[0], v[1], v[2], v[3]), true
}

// IPv4Array decodes a repeated four-byte address option into a slice.
func (o Options) IPv4Array(code byte) ([]net.IP, bool) {
	st, v, _ := o.Lookup(code)
	if st != StatusValue {
		return nil, false
	}
	out := make([]net.IP, 0, len(v)/4)
	for i := 0; i+4 <= len(v); i += 4 {
		out = append(out, net.IPv4(v[i], v[i+1], v[i+2], v[i+3]))
	}
	return out, len(out) > 0
}

// String decodes a text option verbatim.
func (o Options) String(code byte) (string, bool) {
	st, v, _ := o.Lookup(code)
	if st != StatusValue {
		return "", false
	}
	return string(v), true
}

// Bytes returns the raw validated value of code, if present.
func (o Options) Bytes(code byte) ([]byte, bool) {
	st, v, _ := o.Lookup(code)
	if st != StatusValue {
		return nil, false
	}
	return v, true
}

// MessageType returns the decoded option-53 message type. A message lacking
// option 53 entirely is a BOOTP reply, which the caller distinguishes via
// the second return value (spec.md §4.3 "acceptance rules").
func (o Options) MessageType() (MessageType, bool) {
	v, ok := o.Uint8(OptMessageType)
	if !ok {
		return MsgNone, false
	}
	return MessageType(v), true
}

// Message returns the option-56 error-message text, if present.
func (o Options) Message() string {
	s, _ := o.String(OptDHCPMessage)
	return s
}

// HasAll reports whether every code in codes is present and well-formed.
func (o Options) HasAll(codes []byte) bool {
	for _, c := range codes {
		if st, _, _ := o.Lookup(c); st != StatusValue {
			return false
		}
	}
	return true
}
