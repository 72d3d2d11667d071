// Copyright 2026 The Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package dhcp4

import (
	"encoding/binary"
	"fmt"
	"net"
)

// Message is the raw wire form of a DHCP message: the 236-byte fixed header
// followed by a variable-length options trailer. It is a thin view over a
// byte slice, in the spirit of the teacher's hdr([]byte) accessor type: no
// field is copied out until the caller asks for it.
type Message []byte

// NewMessage allocates a zeroed Message sized to hold the fixed header plus
// the BOOTP-minimum options trailer.
func NewMessage() Message {
	m := make(Message, MaxMessageLen)
	binary.BigEndian.PutUint32(m[OffsetCookie:], MagicCookie)
	m[OffsetOptions] = OptEnd
	return m
}

func (m Message) valid() bool { return len(m) >= OffsetOptions+4 }

// Op returns the BOOTP opcode.
func (m Message) Op() byte { return m[OffsetOp] }

// SetOp sets the BOOTP opcode.
func (m Message) SetOp(v byte) { m[OffsetOp] = v }

func (m Message) Htype() byte     { return m[OffsetHtype] }
func (m Message) SetHtype(v byte) { m[OffsetHtype] = v }

func (m Message) Hlen() byte     { return m[OffsetHlen] }
func (m Message) SetHlen(v byte) { m[OffsetHlen] = v }

func (m Message) Hops() byte     { return m[OffsetHops] }
func (m Message) SetHops(v byte) { m[OffsetHops] = v }

// XID returns the transaction id.
func (m Message) XID() uint32 { return binary.BigEndian.Uint32(m[OffsetXID:]) }

// SetXID sets the transaction id.
func (m Message) SetXID(v uint32) { binary.BigEndian.PutUint32(m[OffsetXID:], v) }

func (m Message) Secs() uint16     { return binary.BigEndian.Uint16(m[OffsetSecs:]) }
func (m Message) SetSecs(v uint16) { binary.BigEndian.PutUint16(m[OffsetSecs:], v) }

func (m Message) Flags() uint16     { return binary.BigEndian.Uint16(m[OffsetFlags:]) }
func (m Message) SetFlags(v uint16) { binary.BigEndian.PutUint16(m[OffsetFlags:], v) }

func (m Message) Ciaddr() net.IP { return net.IP(m[OffsetCiaddr : OffsetCiaddr+4]) }
func (m Message) Yiaddr() net.IP { return net.IP(m[OffsetYiaddr : OffsetYiaddr+4]) }
func (m Message) Siaddr() net.IP { return net.IP(m[OffsetSiaddr : OffsetSiaddr+4]) }
func (m Message) Giaddr() net.IP { return net.IP(m[OffsetGiaddr : OffsetGiaddr+4]) }

func (m Message) SetCiaddr(ip net.IP) { copy(m[OffsetCiaddr:OffsetCiaddr+4], ip.To4()) }
func (m Message) SetYiaddr(ip net.IP) { copy(m[OffsetYiaddr:OffsetYiaddr+4], ip.To4()) }
func (m Message) SetSiaddr(ip net.IP) { copy(m[OffsetSiaddr:OffsetSiaddr+4], ip.To4()) }
func (m Message) SetGiaddr(ip net.IP) { copy(m[OffsetGiaddr:OffsetGiaddr+4], ip.To4()) }

// Chaddr returns the hardware-address field truncated to hlen bytes.
func (m Message) Chaddr() net.HardwareAddr {
	hlen := int(m.Hlen())
	if hlen > chaddrLen {
		hlen = chaddrLen
	}
	return net.HardwareAddr(m[OffsetChaddr : OffsetChaddr+hlen])
}

// SetChaddr zero-pads and copies hw into the 16-byte chaddr field.
func (m Message) SetChaddr(hw net.HardwareAddr) {
	for i := 0; i < chaddrLen; i++ {
		m[OffsetChaddr+i] = 0
	}
	copy(m[OffsetChaddr:OffsetChaddr+chaddrLen], hw)
}

// Sname is the raw 64-byte server-name field (may carry overloaded options).
func (m Message) Sname() []byte { return m[OffsetSname : OffsetSname+snameLen] }

// File is the raw 128-byte boot-file field (may carry overloaded options).
func (m Message) File() []byte { return m[OffsetFile : OffsetFile+fileLen] }

// Cookie returns the 4-byte magic cookie value.
func (m Message) Cookie() uint32 { return binary.BigEndian.Uint32(m[OffsetCookie:]) }

// HasMagicCookie reports whether Cookie() equals the well-known DHCP magic.
func (m Message) HasMagicCookie() bool { return m.valid() && m.Cookie() == MagicCookie }

// RawOptions returns the options trailer, from byte 240 to the end of the
// backing slice. Callers needing the semantic option set should use
// ParseOptions instead; this is the raw bytes as stored on disk or on wire.
func (m Message) RawOptions() []byte {
	if len(m) <= OffsetOptions {
		return nil
	}
	return m[OffsetOptions:]
}

// Truncated returns the minimal prefix of m that contains the fixed header
// and the options trailer up to and including the first END option. This is
// the form persisted to the lease file (spec.md §4.5).
func (m Message) Truncated() Message {
	opts := m.RawOptions()
	end := len(opts)
	for i := 0; i < len(opts); {
		switch opts[i] {
		case OptPad:
			i++
			continue
		case OptEnd:
			end = i + 1
			i = len(opts)
			continue
		}
		if i+1 >= len(opts) {
			end = len(opts)
			break
		}
		l := int(opts[i+1])
		i += 2 + l
	}
	out := make(Message, OffsetOptions+end)
	copy(out, m[:OffsetOptions])
	copy(out[OffsetOptions:], opts[:end])
	return out
}

// String renders a short human summary, used in log lines.
func (m Message) String() string {
	return fmt.Sprintf("xid=%#08x ciaddr=%s yiaddr=%s", m.XID(), m.Ciaddr(), m.Yiaddr())
}
