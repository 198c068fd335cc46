// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package persistence

import (
	"path/filepath"
	"testing"

	"github.com/ffutop/modbus-tcp-client/internal/config"
	"github.com/ffutop/modbus-tcp-client/internal/mirror"
	"github.com/google/go-cmp/cmp"
	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/afero"
)

// roundTrip writes through one storage instance and reads through a fresh one.
func roundTrip(t *testing.T, open func() Storage) {
	t.Helper()

	s := open()
	m, err := s.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := m.StoreRegisters(100, []byte{0x12, 0x34, 0xAB, 0xCD}); err != nil {
		t.Fatal(err)
	}
	s.OnWrite(mirror.TableHoldingRegisters, 100, 2)
	if err := m.StoreCoils(7, []bool{true, false, true}); err != nil {
		t.Fatal(err)
	}
	s.OnWrite(mirror.TableCoils, 7, 3)
	if err := m.StoreDiscrete(65535, []bool{true}); err != nil {
		t.Fatal(err)
	}
	s.OnWrite(mirror.TableDiscreteInputs, 65535, 1)
	if err := s.Save(m); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	s = open()
	defer s.Close()
	m, err = s.Load()
	if err != nil {
		t.Fatalf("Reload failed: %v", err)
	}

	regs, err := m.LoadRegisters(100, 2)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]byte{0x12, 0x34, 0xAB, 0xCD}, regs); diff != "" {
		t.Errorf("Registers mismatch (-want +got):\n%s", diff)
	}
	coils, err := m.LoadCoils(7, 3)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]bool{true, false, true}, coils); diff != "" {
		t.Errorf("Coils mismatch (-want +got):\n%s", diff)
	}
	if m.Cell(mirror.TableDiscreteInputs, 65535) != 1 {
		t.Error("Expected last discrete input to be persisted")
	}
}

func TestFileStorage_RoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := fs.MkdirAll("/var/lib/mbtcp", 0755); err != nil {
		t.Fatal(err)
	}
	roundTrip(t, func() Storage { return NewFileStorage(fs, "/var/lib/mbtcp/plc1.bin") })

	fi, err := fs.Stat("/var/lib/mbtcp/plc1.bin")
	if err != nil {
		t.Fatal(err)
	}
	if fi.Size() != totalSize {
		t.Errorf("Expected file size %d, got %d", totalSize, fi.Size())
	}
}

func TestMmapStorage_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plc1.mmap")
	roundTrip(t, func() Storage { return NewMmapStorage(path) })
}

func TestSQLStorage_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plc1.db")
	roundTrip(t, func() Storage { return NewSQLStorage("sqlite3", path) })
}

func TestMemoryStorage(t *testing.T) {
	s := NewMemoryStorage()
	m, err := s.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(m.HoldingRegisters) != mirror.MaxAddress+1 {
		t.Errorf("Expected full address space, got %d registers", len(m.HoldingRegisters))
	}
	if err := s.Close(); err != nil {
		t.Error(err)
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		cfg  config.MirrorConfig
		want Storage
	}{
		{"Memory", config.MirrorConfig{Type: "memory"}, &MemoryStorage{}},
		{"File", config.MirrorConfig{Type: "file", Path: filepath.Join(dir, "a.bin")}, &FileStorage{}},
		{"Mmap", config.MirrorConfig{Type: "mmap", Path: filepath.Join(dir, "b.bin")}, &MmapStorage{}},
		{"SQL", config.MirrorConfig{Type: "sql", Path: filepath.Join(dir, "c.db")}, &SQLStorage{}},
		{"Fallback", config.MirrorConfig{Type: "mmap", Path: filepath.Join(dir, "missing", "d.bin")}, &MemoryStorage{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, m := Open(tt.cfg)
			defer s.Close()
			if m == nil {
				t.Fatal("Expected an image")
			}
			if got, want := typeName(s), typeName(tt.want); got != want {
				t.Errorf("Expected %s, got %s", want, got)
			}
		})
	}
}

func typeName(s Storage) string {
	switch s.(type) {
	case *MemoryStorage:
		return "memory"
	case *FileStorage:
		return "file"
	case *MmapStorage:
		return "mmap"
	case *SQLStorage:
		return "sql"
	}
	return "unknown"
}
