// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package client

import (
	"errors"
	"testing"

	"github.com/ffutop/modbus-tcp-client/modbus"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
	}{
		{"bool", KindBool},
		{"coil", KindBool},
		{"INT16", KindInt16},
		{"ushort", KindUint16},
		{"float", KindFloat32},
		{" double ", KindFloat64},
		{"ulong", KindUint64},
		{"string", KindString},
		{"bytes", KindBytes},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		if err != nil {
			t.Errorf("ParseKind(%q) failed: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseKind(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
	if _, err := ParseKind("decimal"); err == nil {
		t.Error("Expected error for unknown kind")
	}
}

func TestKindTable(t *testing.T) {
	tests := []struct {
		kind      Kind
		registers uint16
		group     int
		maxWrite  int
	}{
		{KindBool, 0, 0, 2040},
		{KindInt16, 1, 0, 128},
		{KindUint16, 1, 0, 128},
		{KindInt32, 2, 4, 64},
		{KindUint32, 2, 4, 64},
		{KindFloat32, 2, 4, 63},
		{KindInt64, 4, 8, 31},
		{KindUint64, 4, 8, 32},
		{KindFloat64, 4, 8, 31},
		{KindBytes, 1, 0, 255},
		{KindString, 1, 0, 255},
	}
	for _, tt := range tests {
		if got := tt.kind.Registers(); got != tt.registers {
			t.Errorf("%s: registers %d, want %d", tt.kind, got, tt.registers)
		}
		if got := tt.kind.WordGroup(); got != tt.group {
			t.Errorf("%s: group %d, want %d", tt.kind, got, tt.group)
		}
		if got := tt.kind.MaxWrite(); got != tt.maxWrite {
			t.Errorf("%s: max write %d, want %d", tt.kind, got, tt.maxWrite)
		}
	}
	if s := Kind(200).String(); s != "Kind(200)" {
		t.Errorf("Unexpected name for invalid kind: %s", s)
	}
}

func TestRegisterSpan(t *testing.T) {
	if n, err := registerSpan(KindFloat64, 3); err != nil || n != 12 {
		t.Errorf("registerSpan(float64, 3) = %d, %v", n, err)
	}
	if n, err := registerSpan(KindBool, 17); err != nil || n != 17 {
		t.Errorf("registerSpan(bool, 17) = %d, %v", n, err)
	}
	if _, err := registerSpan(KindInt16, 0); !errors.Is(err, modbus.ErrArgumentRange) {
		t.Errorf("Expected ErrArgumentRange for zero count, got %v", err)
	}
	if _, err := registerSpan(KindInt64, 0x4000); !errors.Is(err, modbus.ErrArgumentRange) {
		t.Errorf("Expected ErrArgumentRange for overflow, got %v", err)
	}
}
