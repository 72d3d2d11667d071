// Copyright 2026 The Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package dhcp4

import (
	"context"
	"net"
	"time"

	"k8s.io/klog/v2"
)

// Client wires the codec and state machine together with the collaborators
// that actually move bytes on the wire and apply a bound lease to the
// interface, the way the teacher's own client type drove its state machine
// from socket and timer events.
type Client struct {
	cfg *Config

	sockets SocketFactory
	ipv4    IPv4Shim
	arp     ARPProber
	scripts ScriptRunner
	ll      IPv4LLSource
	loop    EventLoop

	sock  Socket
	sm    *StateMachine
	stats *Stats
}

// NewClient assembles a Client for cfg. sockets is required by Run; any
// other collaborator may be left nil, and the Client then skips that
// collaborator's step (no timers, no address or route changes, no probe, no
// hook script, no counters), so a caller exercising only part of the engine
// does not need to supply all of them.
func NewClient(cfg *Config, loop EventLoop, sockets SocketFactory, ipv4 IPv4Shim, arp ARPProber, scripts ScriptRunner, ll IPv4LLSource, stats *Stats) *Client {
	c := &Client{
		cfg:     cfg,
		loop:    loop,
		sockets: sockets,
		ipv4:    ipv4,
		arp:     arp,
		scripts: scripts,
		ll:      ll,
		stats:   stats,
	}
	c.sm = NewStateMachine(cfg, Hooks{
		Send:   c.send,
		Bind:   c.bind,
		Unbind: c.unbind,
		Probe:  c.probe,
		Arm:    c.arm,
	})
	return c
}

func (c *Client) arm(d time.Duration, fn func()) Timer {
	if c.loop == nil {
		return nil
	}
	return c.loop.AfterFunc(d, fn)
}

// Run opens the socket, recalls any persisted lease, and begins the state
// machine, then blocks delivering inbound datagrams to it until ctx is
// done.
func (c *Client) Run(ctx context.Context) error {
	sock, err := c.sockets.Open(ctx, c.cfg.InterfaceName)
	if err != nil {
		return err
	}
	c.sock = sock
	defer sock.Close()

	var recalled *Lease
	if c.cfg.LeaseFile != "" {
		if l, err := LoadLeaseFile(c.cfg.LeaseFile); err == nil {
			recalled = l
		}
	}

	if err := c.sm.Start(ctx, recalled); err != nil {
		return err
	}
	if c.stats != nil {
		c.stats.Discovers.Inc()
	}

	for {
		in, err := sock.Recv(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			klog.Warningf("dhcp4: receive error: %v", err)
			continue
		}
		acc, err := Filter(in, c.cfg, c.sm.XID(), c.cfg.HardwareAddr)
		if err != nil {
			if c.stats != nil {
				c.stats.MalformedIn.Inc()
			}
			klog.V(2).Infof("dhcp4: dropping inbound message: %v", err)
			continue
		}
		if peer := c.cfg.PointToPointPeer; peer != nil && !peer.Equal(in.SrcAddr) {
			klog.Warningf("dhcp4: inbound message from %s, not the point-to-point peer %s", in.SrcAddr, peer)
		}
		c.countInbound(acc.Type)
		if err := c.sm.Deliver(ctx, acc); err != nil {
			klog.Warningf("dhcp4: error handling %s: %v", acc.Type, err)
		}
	}
}

func (c *Client) countInbound(t MessageType) {
	if c.stats == nil {
		return
	}
	switch t {
	case MsgOffer:
		c.stats.Offers.Inc()
	case MsgAck:
		c.stats.Acks.Inc()
	case MsgNak:
		c.stats.Naks.Inc()
	}
}

func (c *Client) send(ctx context.Context, msg Message, to net.IP) error {
	return c.sock.Send(ctx, msg, to)
}

func (c *Client) bind(ctx context.Context, lease *Lease, reason Reason) error {
	klog.Infof("dhcp4: %s bound %s on %s (reason %s)", c.cfg.InterfaceName, lease.Addr, c.cfg.InterfaceName, reason)
	// An INFORM never assigns a new address: the client already owns it,
	// so there is nothing for the IPv4 shim to add.
	if c.ipv4 != nil && reason != ReasonInform {
		if err := c.ipv4.AddAddr(c.cfg.InterfaceName, lease.Addr, lease.Net.Mask); err != nil {
			return err
		}
		routes, err := RoutesFromOptions(lease.Options)
		if err == nil {
			for _, r := range routes {
				_ = c.ipv4.AddRoute(c.cfg.InterfaceName, r)
			}
		}
	}
	switch reason {
	case ReasonInform:
		// No lease time; nothing to persist.
	case ReasonBOOTP:
		// A plain BOOTP reply carries no lease semantics: unlink whatever
		// lease record a previous DHCP exchange may have left behind
		// instead of writing a new one.
		if err := DeleteLeaseFile(c.cfg.LeaseFile); err != nil {
			klog.Warningf("dhcp4: removing lease file: %v", err)
		}
	default:
		if c.cfg.LeaseFile != "" {
			if err := SaveLeaseFile(c.cfg.LeaseFile, lease); err != nil {
				klog.Warningf("dhcp4: saving lease file: %v", err)
			}
		}
	}
	if c.stats != nil {
		c.stats.Binds.Inc()
	}
	if c.scripts != nil {
		env := Environ(c.cfg.InterfaceName, lease, reason)
		if err := c.scripts.Run(ctx, reason, env); err != nil {
			klog.Warningf("dhcp4: hook script: %v", err)
		}
	}
	return nil
}

func (c *Client) unbind(ctx context.Context, lease *Lease) error {
	if c.ipv4 != nil && lease != nil {
		_ = c.ipv4.DelAddr(c.cfg.InterfaceName, lease.Addr, lease.Net.Mask)
		_ = c.ipv4.FlushRoutes(c.cfg.InterfaceName)
	}
	if err := DeleteLeaseFile(c.cfg.LeaseFile); err != nil {
		klog.Warningf("dhcp4: removing lease file: %v", err)
	}
	if c.scripts != nil {
		env := Environ(c.cfg.InterfaceName, nil, ReasonTimeout)
		_ = c.scripts.Run(ctx, ReasonTimeout, env)
	}
	return nil
}

func (c *Client) probe(ctx context.Context, addr net.IP) (bool, error) {
	if c.arp == nil {
		return false, nil
	}
	return c.arp.Probe(ctx, c.cfg.InterfaceName, addr)
}

// Release tells the state machine to send DHCPRELEASE and tears down the
// interface configuration.
func (c *Client) Release(ctx context.Context) error {
	lease := c.sm.Lease()
	if err := c.sm.Release(ctx); err != nil {
		return err
	}
	if c.stats != nil {
		c.stats.Releases.Inc()
	}
	return c.unbind(ctx, lease)
}
