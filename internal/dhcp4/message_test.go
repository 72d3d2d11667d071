// Copyright 2026 The Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package dhcp4

import (
	"net"
	"testing"
)

func testConfig() *Config {
	hw, _ := net.ParseMAC("aa:bb:cc:dd:ee:ff")
	return &Config{
		InterfaceName: "eth0",
		HardwareAddr:  hw,
		MTU:           1500,
	}
}

func TestBuild_Discover(t *testing.T) {
	cfg := testConfig()
	msg, err := Build(BuildParams{Type: MsgDiscover, XID: 0x12345678, Config: cfg})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if msg.Op() != OpBootRequest {
		t.Errorf("Op() = %d, want OpBootRequest", msg.Op())
	}
	if msg.XID() != 0x12345678 {
		t.Errorf("XID() = %#x, want 0x12345678", msg.XID())
	}
	if !msg.Ciaddr().IsUnspecified() {
		t.Errorf("Ciaddr() = %s, want 0.0.0.0 for DISCOVER", msg.Ciaddr())
	}
	opts, err := ParseOptions(msg)
	if err != nil {
		t.Fatalf("ParseOptions: %v", err)
	}
	mt, ok := opts.MessageType()
	if !ok || mt != MsgDiscover {
		t.Errorf("message type = %v, %v, want DISCOVER", mt, ok)
	}
	if _, ok := opts.Bytes(OptParamReqList); !ok {
		t.Error("expected a parameter request list on DISCOVER")
	}
}

func TestBuild_RenewIncludesCiaddr(t *testing.T) {
	cfg := testConfig()
	addr := net.IPv4(192, 168, 1, 50)
	lease := &Lease{
		Addr: addr,
		Net:  net.IPNet{IP: addr.Mask(net.CIDRMask(24, 32)), Mask: net.CIDRMask(24, 32)},
		raw:  NewMessage(),
	}
	msg, err := Build(BuildParams{
		Type:        MsgRequest,
		XID:         1,
		Config:      cfg,
		Lease:       lease,
		CurrentAddr: addr,
		Server:      net.IPv4(192, 168, 1, 1),
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !msg.Ciaddr().Equal(addr) {
		t.Errorf("Ciaddr() = %s, want %s", msg.Ciaddr(), addr)
	}
	opts, err := ParseOptions(msg)
	if err != nil {
		t.Fatalf("ParseOptions: %v", err)
	}
	if _, ok := opts.Bytes(OptRequestedAddr); ok {
		t.Error("renew should not carry a requested-address option")
	}
}

func TestBuild_InitRebootRequestsAddress(t *testing.T) {
	cfg := testConfig()
	addr := net.IPv4(192, 168, 1, 50)
	lease := &Lease{Addr: addr, raw: NewMessage()}
	msg, err := Build(BuildParams{
		Type:       MsgRequest,
		XID:        1,
		Config:     cfg,
		Lease:      lease,
		InitReboot: true,
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !msg.Ciaddr().IsUnspecified() {
		t.Errorf("Ciaddr() = %s, want 0.0.0.0 for INIT-REBOOT", msg.Ciaddr())
	}
	opts, err := ParseOptions(msg)
	if err != nil {
		t.Fatalf("ParseOptions: %v", err)
	}
	got, ok := opts.IPv4(OptRequestedAddr)
	if !ok || !got.Equal(addr) {
		t.Errorf("requested-address = %v, %v, want %s", got, ok, addr)
	}
	if _, ok := opts.Bytes(OptServerID); ok {
		t.Error("INIT-REBOOT REQUEST must not carry a server identifier")
	}
}

func TestBuild_VendorOptionOnDiscoverInformRequest(t *testing.T) {
	cfg := testConfig()
	cfg.VendorClassID = "acme-widget"

	for _, typ := range []MessageType{MsgDiscover, MsgInform, MsgRequest} {
		msg, err := Build(BuildParams{Type: typ, XID: 1, Config: cfg})
		if err != nil {
			t.Fatalf("Build(%v): %v", typ, err)
		}
		opts, err := ParseOptions(msg)
		if err != nil {
			t.Fatalf("ParseOptions(%v): %v", typ, err)
		}
		if _, ok := opts.Bytes(OptVendor); !ok {
			t.Errorf("%v: expected vendor-specific option (43) alongside the vendor class id", typ)
		}
	}
}

func TestBuild_InformUsesCurrentAddrForCiaddr(t *testing.T) {
	cfg := testConfig()
	addr := net.IPv4(192, 168, 1, 77)
	msg, err := Build(BuildParams{Type: MsgInform, XID: 1, Config: cfg, CurrentAddr: addr})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !msg.Ciaddr().Equal(addr) {
		t.Errorf("Ciaddr() = %s, want %s", msg.Ciaddr(), addr)
	}
}

func TestEncodeFQDN(t *testing.T) {
	got, err := encodeFQDN("host.example.com.")
	if err != nil {
		t.Fatalf("encodeFQDN: %v", err)
	}
	want := []byte{4, 'h', 'o', 's', 't', 7, 'e', 'x', 'a', 'm', 'p', 'l', 'e', 3, 'c', 'o', 'm', 0}
	if len(got) != len(want) {
		t.Fatalf("encodeFQDN length = %d, want %d (%v)", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("encodeFQDN[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}
