// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package persistence

import "github.com/ffutop/modbus-tcp-client/internal/mirror"

// MemoryStorage is a no-op storage (non-persistent).
type MemoryStorage struct{}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (ms *MemoryStorage) Load() (*mirror.Image, error) {
	return mirror.NewImage(), nil
}

func (ms *MemoryStorage) Save(image *mirror.Image) error {
	return nil
}

func (ms *MemoryStorage) OnWrite(table mirror.Table, address, quantity uint16) {
	// No-op
}

func (ms *MemoryStorage) Close() error {
	return nil
}
