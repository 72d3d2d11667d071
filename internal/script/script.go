// Copyright 2026 The Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package script implements dhcp4.ScriptRunner by invoking an external hook
// program, passing the bound lease as environment variables the way the
// teacher's own collaborators shell out to configured commands.
package script

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/mcingel/dhcpcd/internal/dhcp4"
)

// Runner invokes Path with the reason's name as its only argument and env
// appended to the environment, once per lease event.
type Runner struct {
	Path string
}

// Run implements dhcp4.ScriptRunner.
func (r Runner) Run(ctx context.Context, reason dhcp4.Reason, env []string) error {
	if r.Path == "" {
		return nil
	}
	cmd := exec.CommandContext(ctx, r.Path, reason.String())
	cmd.Env = append(os.Environ(), env...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("script: %s: %w: %s", r.Path, err, out)
	}
	return nil
}
