// Copyright 2026 The Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package dhcp4

import (
	"net"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseClasslessRoutes(t *testing.T) {
	// /24 route to 10.0.1.0 via 10.0.0.1, plus a default route via 10.0.0.1.
	raw := []byte{
		24, 10, 0, 1, 10, 0, 0, 1,
		0, 10, 0, 0, 1,
	}
	got, err := ParseClasslessRoutes(raw)
	if err != nil {
		t.Fatalf("ParseClasslessRoutes: %v", err)
	}
	want := []Route{
		{Dest: net.IPNet{IP: net.IPv4(10, 0, 1, 0), Mask: net.CIDRMask(24, 32)}, Gateway: net.IPv4(10, 0, 0, 1)},
		{Dest: net.IPNet{IP: net.IPv4(0, 0, 0, 0), Mask: net.CIDRMask(0, 32)}, Gateway: net.IPv4(10, 0, 0, 1)},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("routes mismatch (-want +got):\n%s", diff)
	}
}

func TestParseClasslessRoutes_CIDROutOfRange(t *testing.T) {
	if _, err := ParseClasslessRoutes([]byte{33, 1, 2, 3, 4}); err == nil {
		t.Fatal("expected error for cidr > 32")
	}
}

func TestRoutesFromOptions_ClasslessTakesPrecedence(t *testing.T) {
	classless := []byte{24, 192, 168, 1, 10, 0, 0, 1}
	opts := Options{
		OptClasslessRoutes: classless,
		OptStaticRoute:      []byte{192, 168, 1, 0, 10, 0, 0, 2, 192, 168, 1, 0, 10, 0, 0, 2},
	}
	routes, err := RoutesFromOptions(opts)
	if err != nil {
		t.Fatalf("RoutesFromOptions: %v", err)
	}
	if len(routes) != 1 || !routes[0].Gateway.Equal(net.IPv4(10, 0, 0, 1)) {
		t.Errorf("expected the classless route to win, got %+v", routes)
	}
}

func TestInferSubnetMask(t *testing.T) {
	tests := []struct {
		addr net.IP
		bits int
	}{
		{net.IPv4(10, 0, 0, 1), 8},
		{net.IPv4(172, 16, 0, 1), 16},
		{net.IPv4(192, 168, 1, 1), 24},
		{net.IPv4(240, 0, 0, 1), 32},
	}
	for _, tc := range tests {
		got := InferSubnetMask(tc.addr)
		want := net.CIDRMask(tc.bits, 32)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("InferSubnetMask(%s) mismatch (-want +got):\n%s", tc.addr, diff)
		}
	}
}
