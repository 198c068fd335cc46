// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package persistence stores register mirrors across runs.
package persistence

import (
	"log/slog"

	"github.com/ffutop/modbus-tcp-client/internal/config"
	"github.com/ffutop/modbus-tcp-client/internal/mirror"
	"github.com/spf13/afero"
)

// Storage defines the interface for persisting a register mirror.
type Storage interface {
	// Load loads the image from storage.
	// If no data exists, it returns a new empty image.
	Load() (*mirror.Image, error)

	// Save saves the current image to storage.
	Save(image *mirror.Image) error

	// OnWrite is a hook called after a range of the image was updated.
	OnWrite(table mirror.Table, address, quantity uint16)

	// Close releases files and connections.
	Close() error
}

// New creates the storage selected by cfg without loading it.
func New(cfg config.MirrorConfig) Storage {
	switch cfg.Type {
	case "file":
		return NewFileStorage(afero.NewOsFs(), cfg.Path)
	case "mmap":
		return NewMmapStorage(cfg.Path)
	case "sql":
		// The driver must be linked in by the main package.
		return NewSQLStorage("sqlite3", cfg.Path)
	default:
		return NewMemoryStorage()
	}
}

// Open creates and loads the storage selected by cfg. If loading fails it
// falls back to a non-persistent memory image.
func Open(cfg config.MirrorConfig) (Storage, *mirror.Image) {
	storage := New(cfg)
	slog.Info("Initializing register mirror", "type", cfg.Type, "path", cfg.Path)

	m, err := storage.Load()
	if err != nil {
		slog.Error("Failed to load mirror data, falling back to memory storage", "type", cfg.Type, "path", cfg.Path, "err", err)
		storage.Close()
		storage = NewMemoryStorage()
		m, _ = storage.Load()
	}
	return storage, m
}
