// Copyright 2026 The Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package dhcp4

import (
	"crypto/rand"
	"encoding/binary"
	"time"
)

// RetransmitBackoff produces the exponential retransmit schedule of
// spec.md §4.3: doubling from a base interval up to a 64-second cap, with
// up to one second of jitter applied to each interval.
type RetransmitBackoff struct {
	base    time.Duration
	current time.Duration
}

// NewRetransmitBackoff starts a fresh schedule at base (spec.md §4.3 default
// 4s); a base that is not positive is replaced by DefaultRetransmission.
func NewRetransmitBackoff(base time.Duration) *RetransmitBackoff {
	if base <= 0 {
		base = DefaultRetransmission
	}
	return &RetransmitBackoff{base: base, current: base}
}

const retransmitCap = 64 * time.Second

// Next returns the next interval to wait before retransmitting, and
// advances the schedule for the following call.
func (b *RetransmitBackoff) Next() time.Duration {
	interval := b.current
	b.current *= 2
	if b.current > retransmitCap {
		b.current = retransmitCap
	}
	return jitter(interval, time.Second)
}

// Reset returns the schedule to its initial interval, used when a fresh
// transaction begins.
func (b *RetransmitBackoff) Reset() {
	b.current = b.base
}

// NakBackoff implements the slower, separate backoff applied when a server
// repeatedly NAKs: starts at one second, doubles to a 60-second cap, and
// resets whenever an ACK is received (spec.md §4.3).
type NakBackoff struct {
	current time.Duration
}

const (
	nakBase = time.Second
	nakCap  = 60 * time.Second
)

// NewNakBackoff starts a fresh NAK backoff schedule.
func NewNakBackoff() *NakBackoff {
	return &NakBackoff{current: nakBase}
}

// Next returns the delay to wait before restarting discovery after a NAK,
// and advances the schedule.
func (b *NakBackoff) Next() time.Duration {
	interval := b.current
	b.current *= 2
	if b.current > nakCap {
		b.current = nakCap
	}
	return interval
}

// Reset returns the NAK backoff to its base interval; called on every ACK.
func (b *NakBackoff) Reset() {
	b.current = nakBase
}

// jitter adds a uniformly-random offset in [-spread, +spread] to d, without
// ever returning a negative duration.
func jitter(d, spread time.Duration) time.Duration {
	if spread <= 0 {
		return d
	}
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return d
	}
	n := int64(binary.BigEndian.Uint64(b[:])>>1) % int64(2*spread)
	offset := time.Duration(n) - spread
	out := d + offset
	if out < 0 {
		return 0
	}
	return out
}
