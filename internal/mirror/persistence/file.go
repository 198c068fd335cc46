// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package persistence

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/ffutop/modbus-tcp-client/internal/mirror"
	"github.com/spf13/afero"
	"go.uber.org/multierr"
)

// FileStorage keeps the image in a regular file and rewrites it after
// every update. See layout.go for the file layout.
type FileStorage struct {
	fs   afero.Fs
	path string
	file afero.File
	data []byte
}

// NewFileStorage creates a new FileStorage on fs.
func NewFileStorage(fs afero.Fs, path string) *FileStorage {
	return &FileStorage{
		fs:   fs,
		path: path,
	}
}

// Load reads the image from the file, creating it if necessary.
func (ms *FileStorage) Load() (*mirror.Image, error) {
	f, err := ms.fs.OpenFile(ms.path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	if fi.Size() != int64(totalSize) {
		if err := f.Truncate(int64(totalSize)); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to resize file: %w", err)
		}
	}

	data := make([]byte, totalSize)
	if _, err := io.ReadFull(f, data); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	ms.file = f
	ms.data = data

	return mapBytesToImage(data), nil
}

// Save writes the image to disk.
func (ms *FileStorage) Save(image *mirror.Image) error {
	return ms.sync()
}

// OnWrite triggers a sync for persistence.
func (ms *FileStorage) OnWrite(table mirror.Table, address, quantity uint16) {
	if err := ms.sync(); err != nil {
		slog.Error("Failed to sync file", "path", ms.path, "err", err)
	}
}

func (ms *FileStorage) sync() error {
	if ms.data == nil || ms.file == nil {
		return nil
	}
	if _, err := ms.file.WriteAt(ms.data, 0); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := ms.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync file to disk: %w", err)
	}
	return nil
}

// Close syncs and closes the file.
func (ms *FileStorage) Close() error {
	if ms.file == nil {
		return nil
	}
	err := multierr.Append(ms.sync(), ms.file.Close())
	ms.file = nil
	ms.data = nil
	return err
}
