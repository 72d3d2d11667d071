// Copyright 2026 The Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package dhcp4

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"
)

// State is one node of the DHCP client automaton (spec.md §4.3).
type State int

const (
	StateInit State = iota
	StateInitReboot
	StateSelecting
	StateRequesting
	StateRebooting
	StateRenewing
	StateRebinding
	StateBound
	StateInforming
	StateProbing
	StateReleased
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "INIT"
	case StateInitReboot:
		return "INIT-REBOOT"
	case StateSelecting:
		return "SELECTING"
	case StateRequesting:
		return "REQUESTING"
	case StateRebooting:
		return "REBOOTING"
	case StateRenewing:
		return "RENEWING"
	case StateRebinding:
		return "REBINDING"
	case StateBound:
		return "BOUND"
	case StateInforming:
		return "INFORMING"
	case StateProbing:
		return "PROBING"
	case StateReleased:
		return "RELEASED"
	default:
		return "UNKNOWN"
	}
}

// releaseDrain bounds how long Release waits after emitting DHCPRELEASE
// before the caller tears down the address (spec.md §5, §7).
const releaseDrain = 10 * time.Millisecond

// Hooks are the state machine's observable side effects, invoked while the
// machine's lock is held; the caller (Client) wires these to the real
// collaborators and must not call back into the StateMachine from within
// one.
type Hooks struct {
	Send   func(ctx context.Context, msg Message, to net.IP) error
	Bind   func(ctx context.Context, lease *Lease, reason Reason) error
	Unbind func(ctx context.Context, lease *Lease) error
	Probe  func(ctx context.Context, addr net.IP) (conflict bool, err error)

	// Arm schedules fn to run once after d elapses, returning a handle the
	// machine stores and Stops individually; callers may hold several
	// independent timers (retransmit, T1, T2, expiry) armed at once.
	Arm func(d time.Duration, fn func()) Timer
}

// StateMachine drives one interface's DHCP client lifecycle: it owns the
// current State, the in-flight transaction id, and the active lease, and
// reacts to timer firings and inbound messages handed to it by Client
// (spec.md §4.3).
type StateMachine struct {
	cfg   *Config
	hooks Hooks

	// mu guards every field below: timer callbacks fire on their own
	// goroutine (see Client.arm), concurrently with Deliver being called
	// from the socket-receive loop.
	mu    sync.Mutex
	state State
	xid   uint32
	lease *Lease

	retransmit *RetransmitBackoff
	nak        *NakBackoff

	// retransmitTimer holds whatever non-lease timer is currently pending:
	// a DISCOVER/REQUEST/RENEW/REBIND/INFORM retransmission, or a NAK/decline
	// backoff retry. t1Timer, t2Timer, and expiryTimer are armed together at
	// bind time and run independently of it and of each other.
	retransmitTimer Timer
	t1Timer         Timer
	t2Timer         Timer
	expiryTimer     Timer
}

// NewStateMachine constructs a StateMachine in StateInit.
func NewStateMachine(cfg *Config, hooks Hooks) *StateMachine {
	return &StateMachine{
		cfg:        cfg,
		hooks:      hooks,
		state:      StateInit,
		retransmit: NewRetransmitBackoff(cfg.Retransmission),
		nak:        NewNakBackoff(),
	}
}

// State returns the machine's current state.
func (m *StateMachine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Lease returns the machine's current lease, or nil.
func (m *StateMachine) Lease() *Lease {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lease
}

// XID returns the transaction id of the machine's current exchange.
func (m *StateMachine) XID() uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.xid
}

// Start begins discovery from StateInit, resumes from a recalled lease in
// StateInitReboot when one is supplied, or, for a statically addressed
// client, begins an INFORM exchange instead of acquiring a lease at all.
func (m *StateMachine) Start(ctx context.Context, recalled *Lease) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cfg.InformOnly {
		return m.sendInform(ctx)
	}
	if recalled != nil && !recalled.Expired(time.Now()) {
		m.lease = recalled
		m.state = StateInitReboot
		return m.sendRequest(ctx, true)
	}
	m.state = StateInit
	return m.sendDiscover(ctx)
}

func (m *StateMachine) sendDiscover(ctx context.Context) error {
	m.state = StateSelecting
	m.xid = NewXID(m.cfg.HardwareAddr, m.cfg.XIDFromHWAddr)
	m.retransmit.Reset()
	return m.retransmitDiscover(ctx)
}

func (m *StateMachine) retransmitDiscover(ctx context.Context) error {
	msg, err := Build(BuildParams{Type: MsgDiscover, XID: m.xid, Config: m.cfg})
	if err != nil {
		return err
	}
	if err := m.hooks.Send(ctx, msg, nil); err != nil {
		return err
	}
	m.armRetransmit(ctx, m.retransmitDiscover)
	return nil
}

func (m *StateMachine) sendRequest(ctx context.Context, initReboot bool) error {
	if initReboot {
		m.state = StateRebooting
		// A fresh INIT-REBOOT exchange starts its own transaction; a
		// REQUEST following SELECTING keeps the DISCOVER/OFFER's xid.
		m.xid = NewXID(m.cfg.HardwareAddr, m.cfg.XIDFromHWAddr)
	} else {
		m.state = StateRequesting
	}
	m.retransmit.Reset()
	return m.retransmitRequest(ctx, initReboot)
}

// retransmitRequest sends one SELECTING or INIT-REBOOT REQUEST with the
// exchange's existing xid. No address is configured on the interface yet,
// so CurrentAddr stays nil.
func (m *StateMachine) retransmitRequest(ctx context.Context, initReboot bool) error {
	msg, err := Build(BuildParams{
		Type:       MsgRequest,
		XID:        m.xid,
		Config:     m.cfg,
		Lease:      m.lease,
		Server:     m.lease.Server,
		InitReboot: initReboot,
	})
	if err != nil {
		return err
	}
	if err := m.hooks.Send(ctx, msg, nil); err != nil {
		return err
	}
	m.armRetransmit(ctx, func(ctx context.Context) error { return m.retransmitRequest(ctx, initReboot) })
	return nil
}

// sendRenew begins a fresh RENEW (rebind false) or REBIND (rebind true)
// exchange: spec.md §4.4 requires a new transaction id at the start of each,
// distinct from retransmitRenew, which resends within the same exchange and
// must keep reusing it.
func (m *StateMachine) sendRenew(ctx context.Context, rebind bool) error {
	if rebind {
		m.state = StateRebinding
	} else {
		m.state = StateRenewing
	}
	m.xid = NewXID(m.cfg.HardwareAddr, m.cfg.XIDFromHWAddr)
	m.retransmit.Reset()
	return m.retransmitRenew(ctx, rebind)
}

// retransmitRenew builds and sends one RENEW/REBIND REQUEST using the
// exchange's existing xid and arms the next retransmission; RENEW unicasts
// to the lease's server, REBIND broadcasts (spec.md §4.3).
func (m *StateMachine) retransmitRenew(ctx context.Context, rebind bool) error {
	server := m.lease.Server
	dst := m.lease.Server
	if rebind {
		server = nil
		dst = nil
	}
	msg, err := Build(BuildParams{
		Type:        MsgRequest,
		XID:         m.xid,
		Config:      m.cfg,
		Lease:       m.lease,
		CurrentAddr: m.lease.Addr,
		Server:      server,
	})
	if err != nil {
		return err
	}
	if err := m.hooks.Send(ctx, msg, dst); err != nil {
		return err
	}
	m.armRetransmit(ctx, func(ctx context.Context) error { return m.retransmitRenew(ctx, rebind) })
	return nil
}

// sendInform begins a fresh INFORM exchange for a statically addressed
// client: it requests configuration without acquiring a lease (spec.md
// §4.3).
func (m *StateMachine) sendInform(ctx context.Context) error {
	m.state = StateInforming
	m.xid = NewXID(m.cfg.HardwareAddr, m.cfg.XIDFromHWAddr)
	m.retransmit.Reset()
	return m.retransmitInform(ctx)
}

func (m *StateMachine) retransmitInform(ctx context.Context) error {
	msg, err := Build(BuildParams{
		Type:        MsgInform,
		XID:         m.xid,
		Config:      m.cfg,
		CurrentAddr: m.cfg.RequestedAddr,
	})
	if err != nil {
		return err
	}
	if err := m.hooks.Send(ctx, msg, nil); err != nil {
		return err
	}
	m.armRetransmit(ctx, m.retransmitInform)
	return nil
}

// armRetransmit schedules the next retransmission of the current exchange,
// cancelling any previously armed retransmit timer first so the two can
// never overlap. This never touches the lease timers (t1Timer, t2Timer,
// expiryTimer), which run independently of whatever exchange is in flight.
// resend fires on the event loop's own goroutine, so it takes the lock
// itself before touching machine state.
func (m *StateMachine) armRetransmit(ctx context.Context, resend func(context.Context) error) {
	m.cancelRetransmit()
	d := m.retransmit.Next()
	if m.hooks.Arm != nil {
		m.retransmitTimer = m.hooks.Arm(d, func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			_ = resend(ctx)
		})
	}
}

func (m *StateMachine) cancelRetransmit() {
	if m.retransmitTimer != nil {
		m.retransmitTimer.Stop()
		m.retransmitTimer = nil
	}
}

func (m *StateMachine) cancelLeaseTimers() {
	if m.t1Timer != nil {
		m.t1Timer.Stop()
		m.t1Timer = nil
	}
	if m.t2Timer != nil {
		m.t2Timer.Stop()
		m.t2Timer = nil
	}
	if m.expiryTimer != nil {
		m.expiryTimer.Stop()
		m.expiryTimer = nil
	}
}

// Deliver processes one accepted inbound message. It drains exactly the one
// message handed to it; a caller holding several buffered packets calls
// Deliver once per packet within a single event-loop iteration.
func (m *StateMachine) Deliver(ctx context.Context, acc *Accepted) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if acc.IsBOOTP {
		return m.handleBOOTPReply(ctx, acc)
	}
	switch acc.Type {
	case MsgOffer:
		return m.handleOffer(ctx, acc)
	case MsgAck:
		return m.handleAck(ctx, acc)
	case MsgNak:
		return m.handleNak(ctx)
	default:
		return nil
	}
}

func (m *StateMachine) handleBOOTPReply(ctx context.Context, acc *Accepted) error {
	if m.state != StateSelecting {
		return nil
	}
	lease, err := NewLease(acc.Msg, acc.Opts, time.Now())
	if err != nil {
		return err
	}
	return m.bind(ctx, lease, ReasonBOOTP)
}

func (m *StateMachine) handleOffer(ctx context.Context, acc *Accepted) error {
	if m.state != StateSelecting {
		return nil
	}
	lease, err := NewLease(acc.Msg, acc.Opts, time.Now())
	if err != nil {
		return err
	}
	m.lease = lease
	return m.sendRequest(ctx, false)
}

func (m *StateMachine) handleAck(ctx context.Context, acc *Accepted) error {
	if m.state == StateInforming {
		return m.handleInformAck(ctx, acc)
	}

	switch m.state {
	case StateRequesting, StateRebooting, StateRenewing, StateRebinding:
	default:
		return nil
	}
	lease, err := NewLease(acc.Msg, acc.Opts, time.Now())
	if err != nil {
		return err
	}
	m.nak.Reset()

	reason := ReasonBound
	switch m.state {
	case StateRenewing:
		reason = ReasonRenew
	case StateRebinding:
		reason = ReasonRebind
	case StateRebooting:
		reason = ReasonReboot
	}
	return m.bind(ctx, lease, reason)
}

// handleInformAck accepts an INFORM's ACK as approval of the client's
// existing, statically configured address: spec.md §4.3 gives it no lease
// time, so no lease file is written and no renew/rebind/expiry timers are
// armed (armLeaseTimers already no-ops on an Infinite lease).
func (m *StateMachine) handleInformAck(ctx context.Context, acc *Accepted) error {
	addr := m.cfg.RequestedAddr
	if addr == nil || addr.IsUnspecified() {
		addr = acc.Msg.Ciaddr()
	}
	lease := &Lease{
		Addr:       addr,
		Options:    acc.Opts,
		LeaseTime:  Infinite,
		BoundTime:  time.Now(),
		LeasedFrom: time.Now(),
		raw:        acc.Msg.Truncated(),
	}
	if srv, ok := acc.Opts.IPv4(OptServerID); ok {
		lease.Server = srv
	}
	return m.bind(ctx, lease, ReasonInform)
}

func (m *StateMachine) handleNak(ctx context.Context) error {
	switch m.state {
	case StateRequesting, StateRebooting, StateRenewing, StateRebinding:
	default:
		return nil
	}
	m.cancelRetransmit()
	m.cancelLeaseTimers()
	if m.hooks.Unbind != nil {
		if err := m.hooks.Unbind(ctx, m.lease); err != nil {
			return err
		}
	}
	m.lease = nil
	d := m.nak.Next()
	m.state = StateInit
	if m.hooks.Arm != nil {
		m.retransmitTimer = m.hooks.Arm(d, func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			_ = m.sendDiscover(ctx)
		})
	}
	return nil
}

func (m *StateMachine) bind(ctx context.Context, lease *Lease, reason Reason) error {
	m.cancelRetransmit()
	// An INFORM's address is already the client's own; it is never probed
	// for conflicts the way a freshly offered address is.
	if m.cfg.ARPProbe && m.hooks.Probe != nil && reason != ReasonInform {
		m.state = StateProbing
		conflict, err := m.hooks.Probe(ctx, lease.Addr)
		if err != nil {
			return err
		}
		if conflict {
			return m.decline(ctx, lease)
		}
	}
	m.lease = lease
	m.state = StateBound
	if m.hooks.Bind != nil {
		if err := m.hooks.Bind(ctx, lease, reason); err != nil {
			return err
		}
	}
	m.armLeaseTimers(ctx)
	return nil
}

func (m *StateMachine) decline(ctx context.Context, lease *Lease) error {
	msg, err := Build(BuildParams{Type: MsgDecline, XID: m.xid, Config: m.cfg, Lease: lease, Server: lease.Server})
	if err != nil {
		return err
	}
	if err := m.hooks.Send(ctx, msg, nil); err != nil {
		return err
	}
	m.lease = nil
	m.state = StateInit
	if m.hooks.Arm != nil {
		d := m.nak.Next()
		m.retransmitTimer = m.hooks.Arm(d, func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			_ = m.sendDiscover(ctx)
		})
	}
	return nil
}

// armLeaseTimers schedules the T1 (renew), T2 (rebind), and lease-expiry
// wakeups, all relative to when the lease was obtained and all running
// independently of one another (spec.md §4.3, §7). Any previously armed
// lease timers are cancelled first.
func (m *StateMachine) armLeaseTimers(ctx context.Context) {
	m.cancelLeaseTimers()
	if m.lease.LeaseTime == Infinite || m.hooks.Arm == nil {
		return
	}
	t1 := m.lease.RenewalTime.Duration()
	t2 := m.lease.RebindTime.Duration()
	lt := m.lease.LeaseTime.Duration()

	m.t1Timer = m.hooks.Arm(t1, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		_ = m.sendRenew(ctx, false)
	})
	m.t2Timer = m.hooks.Arm(t2, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		_ = m.sendRenew(ctx, true)
	})
	m.expiryTimer = m.hooks.Arm(lt, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.expire(ctx)
	})
}

// expire implements spec.md §7's hard error: the lease's total lifetime has
// elapsed without a renewal succeeding, so the address is dropped and the
// machine re-enters INIT to discover a new one.
func (m *StateMachine) expire(ctx context.Context) {
	m.cancelRetransmit()
	m.cancelLeaseTimers()
	lease := m.lease
	if m.hooks.Unbind != nil {
		_ = m.hooks.Unbind(ctx, lease)
	}
	m.lease = nil
	m.state = StateInit
	_ = m.sendDiscover(ctx)
}

// Release sends a DHCPRELEASE for the current lease, waits out the bounded
// drain window spec.md §5 names as an explicit suspension point, and
// returns the machine to StateReleased; the caller is responsible for
// tearing down the configured address and lease file afterward.
func (m *StateMachine) Release(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lease == nil {
		return fmt.Errorf("dhcp4: no active lease to release")
	}
	lease := m.lease
	msg, err := Build(BuildParams{Type: MsgRelease, XID: NewXID(m.cfg.HardwareAddr, m.cfg.XIDFromHWAddr), Config: m.cfg, Lease: lease, Server: lease.Server})
	if err != nil {
		return err
	}
	if err := m.hooks.Send(ctx, msg, lease.Server); err != nil {
		return err
	}
	time.Sleep(releaseDrain)
	m.cancelRetransmit()
	m.cancelLeaseTimers()
	m.state = StateReleased
	return nil
}
