// Copyright 2026 The Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package dhcp4

import (
	"testing"
	"time"
)

func TestRetransmitBackoff_DoublesAndCaps(t *testing.T) {
	b := NewRetransmitBackoff(4 * time.Second)
	nominal := 4 * time.Second // 4, 8, 16, 32, 64, 64, ... seconds
	for i := 0; i < 10; i++ {
		d := b.Next()
		lower := nominal - time.Second
		upper := nominal + time.Second
		if d < 0 {
			t.Fatalf("interval %d negative: %v", i, d)
		}
		if d < lower || d > upper {
			t.Errorf("interval %d = %v, want within [%v, %v]", i, d, lower, upper)
		}
		nominal *= 2
		if nominal > retransmitCap {
			nominal = retransmitCap
		}
	}
}

func TestRetransmitBackoff_Reset(t *testing.T) {
	b := NewRetransmitBackoff(4 * time.Second)
	for i := 0; i < 5; i++ {
		b.Next()
	}
	b.Reset()
	d := b.Next()
	if d < 3*time.Second || d > 5*time.Second {
		t.Errorf("after Reset, first interval = %v, want close to base 4s", d)
	}
}

func TestNakBackoff_DoublesAndCapsAt60(t *testing.T) {
	b := NewNakBackoff()
	var last time.Duration
	for i := 0; i < 10; i++ {
		d := b.Next()
		if d > nakCap {
			t.Errorf("interval %d = %v exceeds cap %v", i, d, nakCap)
		}
		if i > 0 && d < last {
			t.Errorf("interval %d = %v should not decrease from %v before hitting the cap", i, d, last)
		}
		last = d
	}
	if last != nakCap {
		t.Errorf("after 10 doublings from 1s, expected to be at the 60s cap, got %v", last)
	}
}

func TestNakBackoff_Reset(t *testing.T) {
	b := NewNakBackoff()
	for i := 0; i < 5; i++ {
		b.Next()
	}
	b.Reset()
	if d := b.Next(); d != nakBase {
		t.Errorf("after Reset, first interval = %v, want %v", d, nakBase)
	}
}
