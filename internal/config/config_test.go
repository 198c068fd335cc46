// Copyright (c) 2025-2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ffutop/modbus-tcp-client/modbus"
	"github.com/google/go-cmp/cmp"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
log:
  level: debug
devices:
  - name: plc1
    address: 192.168.1.10:502
    station: 3
    timeout: 5s
    word_order: high_word_first
    poll:
      interval: 250ms
      points:
        - { name: temperature, kind: float32, address: 100 }
        - { name: run, kind: bool, address: 0, count: 4, table: discrete }
        - { kind: string, address: 10, count: 8 }
    mirror: { type: MMAP, path: /tmp/plc1.bin }
  - address: 10.0.0.2:502
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Expected log level debug, got %q", cfg.Log.Level)
	}
	if len(cfg.Devices) != 2 {
		t.Fatalf("Expected 2 devices, got %d", len(cfg.Devices))
	}

	plc := cfg.Devices[0]
	if plc.StationID() != 3 || plc.Timeout != 5*time.Second || plc.IdleTimeout != defaultIdleTimeout {
		t.Errorf("Unexpected device settings: station %d timeout %v idle %v", plc.StationID(), plc.Timeout, plc.IdleTimeout)
	}
	if plc.Order() != modbus.HighWordFirst {
		t.Errorf("Expected high word first, got %s", plc.Order())
	}
	if plc.Poll.Interval != 250*time.Millisecond {
		t.Errorf("Expected 250ms interval, got %v", plc.Poll.Interval)
	}
	if plc.Mirror.Type != "mmap" {
		t.Errorf("Expected mirror type mmap, got %q", plc.Mirror.Type)
	}

	wantPoints := []PointConfig{
		{Name: "temperature", Kind: "float32", Address: 100, Count: 1, Table: "holding"},
		{Name: "run", Kind: "bool", Address: 0, Count: 4, Table: "discrete"},
		{Name: "string@10", Kind: "string", Address: 10, Count: 8, Table: "holding"},
	}
	if diff := cmp.Diff(wantPoints, plc.Poll.Points); diff != "" {
		t.Errorf("Points mismatch (-want +got):\n%s", diff)
	}

	second := cfg.Devices[1]
	if second.Name != "device1" || second.StationID() != modbus.DefaultStation {
		t.Errorf("Unexpected defaults: name %q station %d", second.Name, second.StationID())
	}
	if second.Timeout != defaultTimeout || second.Poll.Interval != defaultPollInterval || second.Mirror.Type != "memory" {
		t.Errorf("Unexpected defaults: %+v", second)
	}

	if _, err := cfg.Device("plc1"); err != nil {
		t.Errorf("Device lookup failed: %v", err)
	}
	if _, err := cfg.Device("missing"); err == nil {
		t.Error("Expected error for unknown device")
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"MissingAddress", "devices:\n  - name: a\n", "missing address"},
		{"Duplicate", "devices:\n  - {name: a, address: \"x:502\"}\n  - {name: a, address: \"y:502\"}\n", "duplicate"},
		{"WordOrder", "devices:\n  - {name: a, address: \"x:502\", word_order: middle}\n", "word order"},
		{"Kind", "devices:\n  - name: a\n    address: \"x:502\"\n    poll:\n      points:\n        - {kind: decimal}\n", "unknown value kind"},
		{"BoolInHolding", "devices:\n  - name: a\n    address: \"x:502\"\n    poll:\n      points:\n        - {kind: bool, table: holding}\n", "coil or discrete"},
		{"FloatInCoils", "devices:\n  - name: a\n    address: \"x:502\"\n    poll:\n      points:\n        - {kind: float32, table: coil}\n", "cannot live"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Expected error for missing config file")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("MBTCP_LOG_LEVEL", "warn")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Expected env override warn, got %q", cfg.Log.Level)
	}
	if len(cfg.Devices) != 0 {
		t.Errorf("Expected no devices, got %d", len(cfg.Devices))
	}
}
