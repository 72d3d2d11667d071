// Copyright 2026 The Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package rawio implements dhcp4.SocketFactory on top of a raw Ethernet
// socket, the way a DHCP client must before it has an IP address of its
// own to bind a UDP socket to.
package rawio

import (
	"context"
	"encoding/binary"
	"fmt"
	"net"
	"time"

	"github.com/mdlayher/ethernet"
	"github.com/mdlayher/packet"
	"golang.org/x/sys/unix"

	"github.com/mcingel/dhcpcd/internal/dhcp4"
)

const (
	dhcpServerPort = 67
	dhcpClientPort = 68
)

// PacketSockets opens raw AF_PACKET sockets for DHCP traffic, building and
// parsing the Ethernet/IPv4/UDP framing by hand since mdlayher/packet only
// carries link-layer frames.
type PacketSockets struct{}

// Open implements dhcp4.SocketFactory.
func (PacketSockets) Open(ctx context.Context, ifaceName string) (dhcp4.Socket, error) {
	iface, err := net.InterfaceByName(ifaceName)
	if err != nil {
		return nil, fmt.Errorf("rawio: %w", err)
	}
	conn, err := packet.Listen(iface, packet.Raw, int(htons(unix.ETH_P_IP)), nil)
	if err != nil {
		return nil, fmt.Errorf("rawio: opening raw socket on %s: %w", ifaceName, err)
	}
	return &Socket{iface: iface, conn: conn}, nil
}

// Socket is a raw-frame dhcp4.Socket bound to one interface.
type Socket struct {
	iface *net.Interface
	conn  *packet.Conn
}

// Send implements dhcp4.Socket: it wraps data in a UDP/IPv4/Ethernet frame
// addressed to to (or the link-layer and IP broadcast addresses when to is
// the zero value) and writes it to the raw socket.
func (s *Socket) Send(ctx context.Context, data []byte, to net.IP) error {
	dstMAC := ethernet.Broadcast
	dstIP := net.IPv4bcast
	if to != nil && !to.IsUnspecified() {
		dstIP = to
		// Absent ARP resolution (out of scope), unicast replies from a
		// server still arrive correctly addressed at the link layer
		// because the server itself ARPs for us; we always transmit to
		// the broadcast MAC, matching how a client without an IP yet has
		// no way to resolve one.
	}

	payload, err := buildIPv4UDP(s.iface.HardwareAddr, net.IPv4zero, dstIP, dhcpClientPort, dhcpServerPort, data)
	if err != nil {
		return err
	}
	frame := &ethernet.Frame{
		Destination: dstMAC,
		Source:      s.iface.HardwareAddr,
		EtherType:   ethernet.EtherTypeIPv4,
		Payload:     payload,
	}
	raw, err := frame.MarshalBinary()
	if err != nil {
		return fmt.Errorf("rawio: marshaling ethernet frame: %w", err)
	}
	addr := &packet.Addr{HardwareAddr: dstMAC}
	_, err = s.conn.WriteTo(raw, addr)
	return err
}

// Recv implements dhcp4.Socket: it reads raw frames until one decodes as a
// UDP/IPv4 datagram addressed to the DHCP client port, honoring ctx
// cancellation via the connection's read deadline.
func (s *Socket) Recv(ctx context.Context) (dhcp4.Inbound, error) {
	buf := make([]byte, 1500)
	for {
		if dl, ok := ctx.Deadline(); ok {
			s.conn.SetReadDeadline(dl)
		} else {
			s.conn.SetReadDeadline(time.Now().Add(time.Second))
		}
		n, _, err := s.conn.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil {
				return dhcp4.Inbound{}, ctx.Err()
			}
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			return dhcp4.Inbound{}, err
		}
		var frame ethernet.Frame
		if err := frame.UnmarshalBinary(buf[:n]); err != nil {
			continue
		}
		if frame.EtherType != ethernet.EtherTypeIPv4 {
			continue
		}
		src, dstPort, body, ok := parseIPv4UDP(frame.Payload)
		if !ok || dstPort != dhcpClientPort {
			continue
		}
		return dhcp4.Inbound{Data: body, SrcAddr: src, Reliable: false}, nil
	}
}

// Close implements dhcp4.Socket.
func (s *Socket) Close() error { return s.conn.Close() }

func htons(v int) uint16 {
	return uint16(v<<8) | uint16(v>>8)
}

// buildIPv4UDP wraps payload in a minimal IPv4 header (no options) and UDP
// header, computing the IPv4 header checksum. The UDP checksum is left zero
// (disabled): DHCP clients conventionally send that way before an address is
// configured, since the source address is 0.0.0.0.
func buildIPv4UDP(srcMAC net.HardwareAddr, srcIP, dstIP net.IP, srcPort, dstPort int, payload []byte) ([]byte, error) {
	udpLen := 8 + len(payload)
	udp := make([]byte, udpLen)
	binary.BigEndian.PutUint16(udp[0:], uint16(srcPort))
	binary.BigEndian.PutUint16(udp[2:], uint16(dstPort))
	binary.BigEndian.PutUint16(udp[4:], uint16(udpLen))
	copy(udp[8:], payload)

	ipLen := 20 + udpLen
	ip := make([]byte, ipLen)
	ip[0] = 0x45
	ip[1] = 0x00
	binary.BigEndian.PutUint16(ip[2:], uint16(ipLen))
	binary.BigEndian.PutUint16(ip[4:], 0) // identification
	ip[6] = 0x40                          // don't fragment
	ip[8] = 64                            // TTL
	ip[9] = 17                            // UDP
	copy(ip[12:16], srcIP.To4())
	copy(ip[16:20], dstIP.To4())
	binary.BigEndian.PutUint16(ip[10:], ipChecksum(ip[:20]))
	copy(ip[20:], udp)
	return ip, nil
}

// parseIPv4UDP extracts the source IP, destination UDP port, and UDP
// payload from an IPv4 frame body. It returns ok=false for anything that
// is not a well-formed IPv4/UDP datagram.
func parseIPv4UDP(b []byte) (src net.IP, dstPort int, payload []byte, ok bool) {
	if len(b) < 20 || b[0]>>4 != 4 {
		return nil, 0, nil, false
	}
	ihl := int(b[0]&0x0F) * 4
	if len(b) < ihl+8 || b[9] != 17 {
		return nil, 0, nil, false
	}
	udp := b[ihl:]
	dstPort = int(binary.BigEndian.Uint16(udp[2:4]))
	udpLen := int(binary.BigEndian.Uint16(udp[4:6]))
	if udpLen < 8 || ihl+udpLen > len(b) {
		return nil, 0, nil, false
	}
	src = net.IPv4(b[12], b[13], b[14], b[15])
	return src, dstPort, udp[8:udpLen], true
}

// ipChecksum computes the standard one's-complement header checksum.
func ipChecksum(hdr []byte) uint16 {
	var sum uint32
	for i := 0; i+1 < len(hdr); i += 2 {
		sum += uint32(hdr[i])<<8 | uint32(hdr[i+1])
	}
	if len(hdr)%2 == 1 {
		sum += uint32(hdr[len(hdr)-1]) << 8
	}
	for sum>>16 != 0 {
		sum = sum&0xFFFF + sum>>16
	}
	return ^uint16(sum)
}
