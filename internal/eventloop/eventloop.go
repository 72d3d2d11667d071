// Copyright 2026 The Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package eventloop implements dhcp4.EventLoop with the standard library's
// time.Timer. No third-party embeddable event-loop library appeared
// anywhere in the retrieved corpus, so timers are the standard facility
// every example repo already reaches for.
package eventloop

import (
	"context"
	"time"

	"github.com/mcingel/dhcpcd/internal/dhcp4"
)

// Loop is the default dhcp4.EventLoop.
type Loop struct{}

// AfterFunc implements dhcp4.EventLoop.
func (Loop) AfterFunc(d time.Duration, fn func()) dhcp4.Timer {
	return timerHandle{t: time.AfterFunc(d, fn)}
}

// Run implements dhcp4.EventLoop: timers fire on their own goroutines, so
// Run only needs to block until ctx is cancelled.
func (Loop) Run(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

type timerHandle struct {
	t *time.Timer
}

// Stop implements dhcp4.Timer.
func (h timerHandle) Stop() bool {
	if h.t == nil {
		return false
	}
	return h.t.Stop()
}
