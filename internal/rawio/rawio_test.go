// Copyright 2026 The Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package rawio

import (
	"net"
	"testing"
)

func TestHtons(t *testing.T) {
	if got := htons(0x0800); got != 0x0008 {
		t.Errorf("htons(0x0800) = 0x%04x, want 0x0008", got)
	}
}

func TestBuildAndParseIPv4UDP_RoundTrip(t *testing.T) {
	srcMAC, _ := net.ParseMAC("aa:bb:cc:dd:ee:ff")
	payload := []byte("discover")

	frame, err := buildIPv4UDP(srcMAC, net.IPv4zero, net.IPv4bcast, 68, 67, payload)
	if err != nil {
		t.Fatalf("buildIPv4UDP: %v", err)
	}

	src, dstPort, body, ok := parseIPv4UDP(frame)
	if !ok {
		t.Fatal("parseIPv4UDP: ok = false, want true")
	}
	if !src.Equal(net.IPv4zero) {
		t.Errorf("src = %s, want 0.0.0.0", src)
	}
	if dstPort != 67 {
		t.Errorf("dstPort = %d, want 67", dstPort)
	}
	if string(body) != "discover" {
		t.Errorf("body = %q, want %q", body, "discover")
	}
}

func TestParseIPv4UDP_RejectsShortBuffer(t *testing.T) {
	if _, _, _, ok := parseIPv4UDP([]byte{0x45, 0x00}); ok {
		t.Error("parseIPv4UDP accepted a buffer shorter than an IPv4 header")
	}
}

func TestParseIPv4UDP_RejectsNonUDP(t *testing.T) {
	hdr := make([]byte, 20)
	hdr[0] = 0x45
	hdr[9] = 6 // TCP, not UDP
	if _, _, _, ok := parseIPv4UDP(hdr); ok {
		t.Error("parseIPv4UDP accepted a non-UDP protocol byte")
	}
}

func TestIPChecksum_ZeroesOutOnVerify(t *testing.T) {
	hdr := make([]byte, 20)
	hdr[0] = 0x45
	hdr[8] = 64
	hdr[9] = 17
	copy(hdr[12:16], net.IPv4zero.To4())
	copy(hdr[16:20], net.IPv4bcast.To4())

	sum := ipChecksum(hdr)
	hdr[10] = byte(sum >> 8)
	hdr[11] = byte(sum)

	// Feeding a header back through the checksum with the computed value
	// already installed must fold to exactly zero.
	if verify := ipChecksum(hdr); verify != 0 {
		t.Errorf("checksum over a header with its own checksum installed = 0x%04x, want 0", verify)
	}
}
