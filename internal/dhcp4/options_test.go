// Copyright 2026 The Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package dhcp4

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func appendOpt(trailer []byte, code byte, val []byte) []byte {
	return append(trailer, append([]byte{code, byte(len(val))}, val...)...)
}

func newTestMessage(optBytes []byte) Message {
	m := NewMessage()
	opts := m.RawOptions()
	copy(opts, optBytes)
	opts[len(optBytes)] = OptEnd
	return m
}

func TestParseOptions_RFC3396Concatenation(t *testing.T) {
	var trailer []byte
	trailer = appendOpt(trailer, OptDomainNameServer, []byte{8, 8, 8, 8})
	trailer = appendOpt(trailer, OptDomainNameServer, []byte{1, 1, 1, 1})
	m := newTestMessage(trailer)

	opts, err := ParseOptions(m)
	if err != nil {
		t.Fatalf("ParseOptions: %v", err)
	}
	got := opts[OptDomainNameServer]
	want := []byte{8, 8, 8, 8, 1, 1, 1, 1}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("concatenated option mismatch (-want +got):\n%s", diff)
	}
}

func TestParseOptions_OverloadOrdering(t *testing.T) {
	var trailer []byte
	trailer = appendOpt(trailer, OptOptionsOverload, []byte{0x3}) // file then sname
	trailer = appendOpt(trailer, OptHostname, []byte("a"))
	m := newTestMessage(trailer)

	file := m.File()
	fi := 0
	fi += copy(file[fi:], []byte{OptHostname, 1})
	file[fi] = 'b'
	fi++
	file[fi] = OptEnd

	sname := m.Sname()
	si := 0
	si += copy(sname[si:], []byte{OptHostname, 1})
	sname[si] = 'c'
	si++
	sname[si] = OptEnd

	opts, err := ParseOptions(m)
	if err != nil {
		t.Fatalf("ParseOptions: %v", err)
	}
	// RFC 3396: repeated occurrences concatenate in encounter order:
	// options trailer, then file, then sname.
	got := string(opts[OptHostname])
	want := "abc"
	if got != want {
		t.Errorf("hostname = %q, want %q", got, want)
	}
}

func TestLookup_LengthValidation(t *testing.T) {
	tests := []struct {
		name   string
		code   byte
		raw    []byte
		status Status
	}{
		{"uint32 short", OptLeaseTime, []byte{1, 2, 3}, StatusAbsent},
		{"uint32 exact", OptLeaseTime, []byte{0, 0, 0, 1}, StatusValue},
		{"addr array rounds down", OptRouter, []byte{1, 1, 1, 1, 2, 2}, StatusValue},
		{"addr array too short", OptRouter, []byte{1, 1, 1}, StatusAbsent},
		{"string any length", OptHostname, []byte{'a'}, StatusValue},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			opts := Options{tc.code: tc.raw}
			st, _, _ := opts.Lookup(tc.code)
			if st != tc.status {
				t.Errorf("Lookup(%d) status = %v, want %v", tc.code, st, tc.status)
			}
		})
	}
}

func TestParseDomainSearch_CompressionLoop(t *testing.T) {
	// A pointer that points at itself must be rejected, not spin forever.
	raw := []byte{0xC0, 0x00}
	if _, err := ParseDomainSearch(raw); err == nil {
		t.Fatal("expected error for self-referential compression pointer")
	}
}

func TestParseDomainSearch_Basic(t *testing.T) {
	raw := []byte{7, 'e', 'x', 'a', 'm', 'p', 'l', 'e', 3, 'c', 'o', 'm', 0}
	got, err := ParseDomainSearch(raw)
	if err != nil {
		t.Fatalf("ParseDomainSearch: %v", err)
	}
	want := []string{"example.com"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("domain search mismatch (-want +got):\n%s", diff)
	}
}
