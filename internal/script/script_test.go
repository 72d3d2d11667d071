// Copyright 2026 The Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package script

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mcingel/dhcpcd/internal/dhcp4"
)

func TestRunner_EmptyPathIsNoop(t *testing.T) {
	r := Runner{}
	if err := r.Run(context.Background(), dhcp4.ReasonBound, nil); err != nil {
		t.Fatalf("Run with empty Path = %v, want nil", err)
	}
}

func TestRunner_PassesReasonAndEnv(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "hook.sh")
	out := filepath.Join(dir, "out.txt")
	body := "#!/bin/sh\necho \"$1 $ip_address\" > " + out + "\n"
	if err := os.WriteFile(script, []byte(body), 0755); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	r := Runner{Path: script}
	env := []string{"ip_address=192.168.1.100"}
	if err := r.Run(context.Background(), dhcp4.ReasonBound, env); err != nil {
		t.Fatalf("Run: %v", err)
	}

	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	want := "BOUND 192.168.1.100\n"
	if string(got) != want {
		t.Errorf("hook output = %q, want %q", got, want)
	}
}

func TestRunner_NonZeroExitIsError(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "fail.sh")
	if err := os.WriteFile(script, []byte("#!/bin/sh\nexit 1\n"), 0755); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	r := Runner{Path: script}
	err := r.Run(context.Background(), dhcp4.ReasonTimeout, nil)
	if err == nil {
		t.Fatal("Run with a failing script returned nil error")
	}
	if !strings.Contains(err.Error(), script) {
		t.Errorf("error %q does not mention script path %q", err, script)
	}
}
