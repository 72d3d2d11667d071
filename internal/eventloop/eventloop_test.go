// Copyright 2026 The Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package eventloop

import (
	"context"
	"testing"
	"time"
)

func TestLoop_AfterFuncFires(t *testing.T) {
	var l Loop
	fired := make(chan struct{})
	l.AfterFunc(10*time.Millisecond, func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("timer did not fire within 1s")
	}
}

func TestLoop_AfterFuncStopPreventsFire(t *testing.T) {
	var l Loop
	fired := make(chan struct{})
	timer := l.AfterFunc(50*time.Millisecond, func() { close(fired) })
	if !timer.Stop() {
		t.Fatal("Stop returned false for a timer that had not yet fired")
	}

	select {
	case <-fired:
		t.Fatal("stopped timer fired anyway")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestLoop_RunBlocksUntilCancel(t *testing.T) {
	var l Loop
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	select {
	case <-done:
		t.Fatal("Run returned before ctx was cancelled")
	case <-time.After(20 * time.Millisecond):
	}

	cancel()
	select {
	case err := <-done:
		if err == nil {
			t.Fatal("Run returned nil error after cancellation, want ctx.Err()")
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return within 1s of cancellation")
	}
}
