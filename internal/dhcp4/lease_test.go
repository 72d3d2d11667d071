// Copyright 2026 The Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package dhcp4

import (
	"net"
	"testing"
	"time"
)

func ackMessage(t *testing.T, leaseTime, t1, t2 uint32, includeT1T2 bool) Message {
	t.Helper()
	m := NewMessage()
	m.SetOp(OpBootReply)
	m.SetYiaddr(net.IPv4(192, 168, 1, 100))

	var trailer []byte
	trailer = appendOpt(trailer, OptMessageType, []byte{byte(MsgAck)})
	trailer = appendOpt(trailer, OptSubnetMask, []byte{255, 255, 255, 0})
	trailer = appendOpt(trailer, OptLeaseTime, u32be(leaseTime))
	if includeT1T2 {
		trailer = appendOpt(trailer, OptRenewalT1, u32be(t1))
		trailer = appendOpt(trailer, OptRebindingT2, u32be(t2))
	}
	opts := m.RawOptions()
	copy(opts, trailer)
	opts[len(trailer)] = OptEnd
	return m
}

func TestNewLease_DefaultT1T2(t *testing.T) {
	m := ackMessage(t, 1000, 0, 0, false)
	opts, err := ParseOptions(m)
	if err != nil {
		t.Fatalf("ParseOptions: %v", err)
	}
	lease, err := NewLease(m, opts, time.Unix(0, 0))
	if err != nil {
		t.Fatalf("NewLease: %v", err)
	}
	if lease.LeaseTime != 1000 {
		t.Errorf("LeaseTime = %d, want 1000", lease.LeaseTime)
	}
	if lease.RenewalTime != 500 {
		t.Errorf("RenewalTime (T1) = %d, want 500 (half of lease time)", lease.RenewalTime)
	}
	if lease.RebindTime != 875 {
		t.Errorf("RebindTime (T2) = %d, want 875 (7/8 of lease time)", lease.RebindTime)
	}
}

func TestNewLease_MinimumLeaseClamp(t *testing.T) {
	m := ackMessage(t, 5, 0, 0, false)
	opts, _ := ParseOptions(m)
	lease, err := NewLease(m, opts, time.Unix(0, 0))
	if err != nil {
		t.Fatalf("NewLease: %v", err)
	}
	if lease.LeaseTime != DHCPMinLease {
		t.Errorf("LeaseTime = %d, want clamped to DHCPMinLease (%d)", lease.LeaseTime, DHCPMinLease)
	}
}

func TestNewLease_T1T2ClampedToLeaseTime(t *testing.T) {
	m := ackMessage(t, 100, 200, 300, true)
	opts, _ := ParseOptions(m)
	lease, err := NewLease(m, opts, time.Unix(0, 0))
	if err != nil {
		t.Fatalf("NewLease: %v", err)
	}
	if lease.RenewalTime > lease.LeaseTime || lease.RebindTime > lease.LeaseTime {
		t.Errorf("T1/T2 (%d/%d) must not exceed lease time (%d)", lease.RenewalTime, lease.RebindTime, lease.LeaseTime)
	}
	if lease.RenewalTime > lease.RebindTime {
		t.Errorf("T1 (%d) must not exceed T2 (%d)", lease.RenewalTime, lease.RebindTime)
	}
}

func TestNewLease_SubnetMaskInference(t *testing.T) {
	m := NewMessage()
	m.SetOp(OpBootReply)
	m.SetYiaddr(net.IPv4(10, 1, 2, 3))
	trailer := appendOpt(nil, OptMessageType, []byte{byte(MsgAck)})
	opts := m.RawOptions()
	copy(opts, trailer)
	opts[len(trailer)] = OptEnd

	parsed, _ := ParseOptions(m)
	lease, err := NewLease(m, parsed, time.Unix(0, 0))
	if err != nil {
		t.Fatalf("NewLease: %v", err)
	}
	want := net.CIDRMask(8, 32)
	if lease.Net.Mask.String() != want.String() {
		t.Errorf("inferred mask = %s, want %s", lease.Net.Mask, want)
	}
}

func TestLease_Expired(t *testing.T) {
	l := &Lease{LeaseTime: 10, LeasedFrom: time.Unix(1000, 0)}
	if l.Expired(time.Unix(1005, 0)) {
		t.Error("lease should not be expired 5s into a 10s lease")
	}
	if !l.Expired(time.Unix(1011, 0)) {
		t.Error("lease should be expired 11s into a 10s lease")
	}
}

func TestLease_InfiniteNeverExpires(t *testing.T) {
	l := &Lease{LeaseTime: Infinite, LeasedFrom: time.Unix(0, 0)}
	if l.Expired(time.Unix(1<<40, 0)) {
		t.Error("an infinite lease must never expire")
	}
}
