// Copyright 2026 The Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package dhcp4

import "github.com/prometheus/client_golang/prometheus"

// Stats counts protocol-level events for one interface's client, mirroring
// the shape of a small fixed-field counters struct rather than a generic
// metric bag, so callers can read a field directly as well as export it.
type Stats struct {
	Discovers   prometheus.Counter
	Offers      prometheus.Counter
	Requests    prometheus.Counter
	Acks        prometheus.Counter
	Naks        prometheus.Counter
	Declines    prometheus.Counter
	Releases    prometheus.Counter
	Timeouts    prometheus.Counter
	MalformedIn prometheus.Counter
	Binds       prometheus.Counter
}

// NewStats registers a fresh set of counters for ifaceName under reg.
func NewStats(reg prometheus.Registerer, ifaceName string) *Stats {
	f := func(name, help string) prometheus.Counter {
		c := prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "dhcp4c",
			Name:        name,
			Help:        help,
			ConstLabels: prometheus.Labels{"interface": ifaceName},
		})
		if reg != nil {
			reg.MustRegister(c)
		}
		return c
	}
	return &Stats{
		Discovers:   f("discovers_total", "DHCPDISCOVER messages sent."),
		Offers:      f("offers_total", "DHCPOFFER messages received."),
		Requests:    f("requests_total", "DHCPREQUEST messages sent."),
		Acks:        f("acks_total", "DHCPACK messages received."),
		Naks:        f("naks_total", "DHCPNAK messages received."),
		Declines:    f("declines_total", "DHCPDECLINE messages sent."),
		Releases:    f("releases_total", "DHCPRELEASE messages sent."),
		Timeouts:    f("timeouts_total", "Retransmission timeouts without a reply."),
		MalformedIn: f("malformed_inbound_total", "Inbound messages rejected by the filter."),
		Binds:       f("binds_total", "Successful lease bindings."),
	}
}
