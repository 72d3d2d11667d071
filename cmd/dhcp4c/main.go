// Copyright 2026 The Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Command dhcp4c runs the DHCPv4 client engine against one network
// interface.
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"k8s.io/klog/v2"

	"github.com/mcingel/dhcpcd/internal/arp"
	"github.com/mcingel/dhcpcd/internal/dhcp4"
	"github.com/mcingel/dhcpcd/internal/eventloop"
	"github.com/mcingel/dhcpcd/internal/ipshim"
	"github.com/mcingel/dhcpcd/internal/rawio"
	"github.com/mcingel/dhcpcd/internal/script"
)

var (
	ifaceName      string
	hostname       string
	fqdn           string
	vendorClassID  string
	userClass      string
	leaseFile      string
	hookScript     string
	bindAddress    string
	broadcast      bool
	xidFromHWAddr  bool
	arpProbe       bool
	informOnly     bool
	requestedAddr  string
	retransmission time.Duration
)

func main() {
	klog.InitFlags(nil)
	pflag.CommandLine.AddGoFlag(flag.CommandLine.Lookup("v"))
	pflag.CommandLine.AddGoFlag(flag.CommandLine.Lookup("logtostderr"))
	_ = pflag.CommandLine.Set("logtostderr", "true")

	root := newRootCmd()
	if err := root.Execute(); err != nil {
		klog.Fatal(err)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dhcp4c",
		Short: "A single-interface DHCPv4 client",
		RunE:  run,
	}
	f := cmd.Flags()
	f.StringVar(&ifaceName, "interface", "", "network interface to run DHCP on (required)")
	f.StringVar(&hostname, "hostname", "", "hostname to request (option 12)")
	f.StringVar(&fqdn, "fqdn", "", "fully-qualified domain name to request (option 81)")
	f.StringVar(&vendorClassID, "vendor-class", "", "vendor class identifier to send (option 60)")
	f.StringVar(&userClass, "user-class", "", "user class to send (option 77)")
	f.StringVar(&leaseFile, "lease-file", "", "path to persist the bound lease")
	f.StringVar(&hookScript, "script", "", "hook script to run on bind/unbind")
	f.StringVar(&bindAddress, "bind-address", ":9433", "address to serve /metrics on")
	f.BoolVar(&broadcast, "broadcast", false, "always request a broadcast reply")
	f.BoolVar(&xidFromHWAddr, "xid-from-hwaddr", false, "derive transaction ids from the hardware address")
	f.BoolVar(&arpProbe, "arp-probe", false, "probe a lease's address for conflicts before binding")
	f.BoolVar(&informOnly, "inform", false, "request configuration for a statically assigned address instead of a lease")
	f.StringVar(&requestedAddr, "address", "", "statically assigned address to send DHCPINFORM for (required with -inform)")
	f.DurationVar(&retransmission, "retransmission", dhcp4.DefaultRetransmission, "base retransmit interval")
	cmd.MarkFlagRequired("interface")
	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	iface, err := net.InterfaceByName(ifaceName)
	if err != nil {
		return fmt.Errorf("dhcp4c: %w", err)
	}

	cfg := &dhcp4.Config{
		InterfaceName:  ifaceName,
		HardwareAddr:   iface.HardwareAddr,
		MTU:            iface.MTU,
		Hostname:       hostname,
		FQDN:           fqdn,
		VendorClassID:  vendorClassID,
		UserClass:      userClass,
		Broadcast:      broadcast,
		XIDFromHWAddr:  xidFromHWAddr,
		ARPProbe:       arpProbe,
		InformOnly:     informOnly,
		LeaseFile:      leaseFile,
		HookScript:     hookScript,
		Retransmission: retransmission,
	}
	if requestedAddr != "" {
		addr := net.ParseIP(requestedAddr)
		if addr == nil {
			return fmt.Errorf("dhcp4c: invalid -address %q", requestedAddr)
		}
		cfg.RequestedAddr = addr
	}

	reg := prometheus.NewRegistry()
	stats := dhcp4.NewStats(reg, ifaceName)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	go func() {
		if err := http.ListenAndServe(bindAddress, mux); err != nil {
			klog.Warningf("dhcp4c: metrics server: %v", err)
		}
	}()

	client := dhcp4.NewClient(cfg,
		eventloop.Loop{},
		rawio.PacketSockets{},
		ipshim.NetlinkShim{},
		arp.NullProber{},
		script.Runner{Path: hookScript},
		nil,
		stats,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() { errCh <- client.Run(ctx) }()

	select {
	case sig := <-signalCh:
		klog.Infof("dhcp4c: received %v, releasing lease on %s", sig, ifaceName)
		releaseCtx, releaseCancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer releaseCancel()
		if err := client.Release(releaseCtx); err != nil {
			klog.Warningf("dhcp4c: release: %v", err)
		}
		cancel()
		return nil
	case err := <-errCh:
		return err
	}
}
