// Copyright 2026 The Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package dhcp4

import (
	"context"
	"net"
	"time"
)

// EventLoop schedules the engine's timers (spec.md §6). Inbound datagrams
// do not pass through it: Client.Run reads the socket itself.
type EventLoop interface {
	// AfterFunc arranges for fn to run once after d elapses, returning a
	// handle the caller can Stop before it fires.
	AfterFunc(d time.Duration, fn func()) Timer

	// Run blocks until ctx is done. The engine itself never calls it.
	Run(ctx context.Context) error
}

// Timer is a cancellable single-shot timer handle.
type Timer interface {
	Stop() bool
}

// Socket sends and receives raw DHCP datagrams on one interface (spec.md
// §6). Implementations decide whether that means an L2 raw socket, a UDP
// socket bound to the DHCP client port, or a test double.
type Socket interface {
	// Send transmits data, broadcasting it if to is the zero value.
	Send(ctx context.Context, data []byte, to net.IP) error

	// Recv blocks for the next inbound datagram.
	Recv(ctx context.Context) (Inbound, error)

	Close() error
}

// SocketFactory opens a Socket bound to the named interface.
type SocketFactory interface {
	Open(ctx context.Context, ifaceName string) (Socket, error)
}

// ARPProber probes an address for conflicts before the client commits to it
// (spec.md §4.3 PROBE state). A real implementation sends ARP requests and
// waits for replies; spec.md places the mechanics of that probe itself out
// of scope and treats it as an external collaborator.
type ARPProber interface {
	// Probe returns true if addr appears to be in use by another host.
	Probe(ctx context.Context, ifaceName string, addr net.IP) (bool, error)
}

// IPv4Shim applies and removes the addresses and routes a bound lease
// implies (spec.md §6).
type IPv4Shim interface {
	AddAddr(ifaceName string, addr net.IP, mask net.IPMask) error
	DelAddr(ifaceName string, addr net.IP, mask net.IPMask) error
	AddRoute(ifaceName string, r Route) error
	FlushRoutes(ifaceName string) error
}

// ScriptRunner invokes the configured hook script with the bound lease's
// environment (spec.md §7).
type ScriptRunner interface {
	Run(ctx context.Context, reason Reason, env []string) error
}

// IPv4LLSource supplies an RFC 3927 link-local address. Real
// self-assignment and conflict detection live outside this engine's scope.
// NewClient accepts one, but no state transition calls it: discovery
// retransmits without a limit and never falls back to link-local on its own.
type IPv4LLSource interface {
	Acquire(ctx context.Context, ifaceName string, hwaddr net.HardwareAddr) (net.IP, error)
}
