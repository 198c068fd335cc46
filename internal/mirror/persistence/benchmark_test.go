// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package persistence

import (
	"path/filepath"
	"testing"

	"github.com/ffutop/modbus-tcp-client/internal/mirror"
	"github.com/spf13/afero"
)

// BenchmarkMemoryStorage_OnWrite benchmarks the OnWrite hook for MemoryStorage.
func BenchmarkMemoryStorage_OnWrite(b *testing.B) {
	ms := NewMemoryStorage()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ms.OnWrite(mirror.TableHoldingRegisters, 10, 1)
	}
}

func BenchmarkFileStorage_OnWrite(b *testing.B) {
	path := filepath.Join(b.TempDir(), "bench_file.bin")
	ms := NewFileStorage(afero.NewOsFs(), path)
	image, err := ms.Load()
	if err != nil {
		b.Fatalf("Failed to load file storage: %v", err)
	}
	defer ms.Close()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		image.HoldingRegisters[10] = uint16(i)
		ms.OnWrite(mirror.TableHoldingRegisters, 10, 1)
	}
}

// BenchmarkMmapStorage_OnWrite benchmarks the OnWrite hook for MmapStorage (msync).
func BenchmarkMmapStorage_OnWrite(b *testing.B) {
	path := filepath.Join(b.TempDir(), "bench_mmap.bin")
	ms := NewMmapStorage(path)
	image, err := ms.Load()
	if err != nil {
		b.Fatalf("Failed to load mmap storage: %v", err)
	}
	defer ms.Close()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		image.HoldingRegisters[10] = uint16(i)
		ms.OnWrite(mirror.TableHoldingRegisters, 10, 1)
	}
}

func BenchmarkSQLStorage_OnWrite(b *testing.B) {
	path := filepath.Join(b.TempDir(), "bench.db")
	ms := NewSQLStorage("sqlite3", path)
	image, err := ms.Load()
	if err != nil {
		b.Fatalf("Failed to load sql storage: %v", err)
	}
	defer ms.Close()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		image.SetCell(mirror.TableHoldingRegisters, 10, uint16(i))
		ms.OnWrite(mirror.TableHoldingRegisters, 10, 1)
	}
}

// BenchmarkMmapStorage_Load benchmarks the Load operation for MmapStorage.
func BenchmarkMmapStorage_Load(b *testing.B) {
	path := filepath.Join(b.TempDir(), "bench_mmap_load.bin")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ms := NewMmapStorage(path)
		if _, err := ms.Load(); err != nil {
			b.Fatalf("Load failed: %v", err)
		}
		ms.Close()
	}
}

// BenchmarkImage_StoreRegisters benchmarks the pure in-memory update (baseline).
func BenchmarkImage_StoreRegisters(b *testing.B) {
	m := mirror.NewImage()
	payload := []byte{0x00, 0x01, 0x00, 0x02}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m.StoreRegisters(10, payload)
	}
}
