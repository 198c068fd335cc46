// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package mirror keeps a local image of the coils and registers last read
// from a device.
package mirror

import (
	"encoding/binary"
	"fmt"
	"sync"
)

const (
	MaxAddress = 65535
)

// Table identifies one data table of the image.
type Table int

const (
	TableCoils Table = iota
	TableDiscreteInputs
	TableHoldingRegisters
)

func (t Table) String() string {
	switch t {
	case TableCoils:
		return "coil"
	case TableDiscreteInputs:
		return "discrete"
	case TableHoldingRegisters:
		return "holding"
	}
	return fmt.Sprintf("Table(%d)", int(t))
}

// ParseTable parses "coil", "discrete" or "holding".
func ParseTable(s string) (Table, error) {
	switch s {
	case "coil", "coils":
		return TableCoils, nil
	case "discrete", "discrete_inputs":
		return TableDiscreteInputs, nil
	case "holding", "holding_registers", "":
		return TableHoldingRegisters, nil
	}
	return 0, fmt.Errorf("unknown table: %q", s)
}

// Image covers the full 16-bit address space of one device.
type Image struct {
	mu sync.RWMutex

	// 0x Coils. Stored as 1 (ON) or 0 (OFF).
	Coils []byte
	// 1x Discrete Inputs. Stored as 1 (ON) or 0 (OFF).
	DiscreteInputs []byte
	// 4x Holding Registers, register values in host order.
	HoldingRegisters []uint16
}

// NewImage creates an image initialized to zero.
func NewImage() *Image {
	return &Image{
		Coils:            make([]byte, MaxAddress+1),
		DiscreteInputs:   make([]byte, MaxAddress+1),
		HoldingRegisters: make([]uint16, MaxAddress+1),
	}
}

// StoreCoils records coil states starting at address.
func (m *Image) StoreCoils(address uint16, values []bool) error {
	return m.storeBits(m.Coils, address, values)
}

// StoreDiscrete records discrete input states starting at address.
func (m *Image) StoreDiscrete(address uint16, values []bool) error {
	return m.storeBits(m.DiscreteInputs, address, values)
}

func (m *Image) storeBits(table []byte, address uint16, values []bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := validateRange(address, len(values)); err != nil {
		return err
	}
	for i, v := range values {
		var b byte
		if v {
			b = 1
		}
		table[int(address)+i] = b
	}
	return nil
}

// StoreRegisters records register bytes as read from the device (big-endian
// per register).
func (m *Image) StoreRegisters(address uint16, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(payload)%2 != 0 {
		return fmt.Errorf("odd register payload length %d", len(payload))
	}
	quantity := len(payload) / 2
	if err := validateRange(address, quantity); err != nil {
		return err
	}
	for i := 0; i < quantity; i++ {
		m.HoldingRegisters[int(address)+i] = binary.BigEndian.Uint16(payload[i*2:])
	}
	return nil
}

// LoadRegisters returns quantity registers as big-endian bytes, the way the
// device would send them.
func (m *Image) LoadRegisters(address, quantity uint16) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := validateRange(address, int(quantity)); err != nil {
		return nil, err
	}

	result := make([]byte, int(quantity)*2)
	for i := 0; i < int(quantity); i++ {
		binary.BigEndian.PutUint16(result[i*2:], m.HoldingRegisters[int(address)+i])
	}
	return result, nil
}

// LoadCoils returns quantity coil states.
func (m *Image) LoadCoils(address, quantity uint16) ([]bool, error) {
	return m.loadBits(m.Coils, address, quantity)
}

// LoadDiscrete returns quantity discrete input states.
func (m *Image) LoadDiscrete(address, quantity uint16) ([]bool, error) {
	return m.loadBits(m.DiscreteInputs, address, quantity)
}

func (m *Image) loadBits(table []byte, address, quantity uint16) ([]bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := validateRange(address, int(quantity)); err != nil {
		return nil, err
	}
	result := make([]bool, quantity)
	for i := range result {
		result[i] = table[int(address)+i] != 0
	}
	return result, nil
}

// Cell returns the raw value of one cell.
func (m *Image) Cell(table Table, address int) uint16 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	switch table {
	case TableCoils:
		return uint16(m.Coils[address])
	case TableDiscreteInputs:
		return uint16(m.DiscreteInputs[address])
	case TableHoldingRegisters:
		return m.HoldingRegisters[address]
	}
	return 0
}

// SetCell sets the raw value of one cell.
func (m *Image) SetCell(table Table, address int, value uint16) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch table {
	case TableCoils:
		m.Coils[address] = byte(value)
	case TableDiscreteInputs:
		m.DiscreteInputs[address] = byte(value)
	case TableHoldingRegisters:
		m.HoldingRegisters[address] = value
	}
}

func validateRange(address uint16, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("quantity must be greater than 0")
	}
	// address is 0-based.
	if int(address)+quantity > MaxAddress+1 {
		return fmt.Errorf("address range out of bounds")
	}
	return nil
}
