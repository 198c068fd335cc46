// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package persistence

import (
	"unsafe"

	"github.com/ffutop/modbus-tcp-client/internal/mirror"
)

// Layout of a mirror file:
// - Coils: 65536 bytes (Offset 0)
// - DiscreteInputs: 65536 bytes (Offset 65536)
// - HoldingRegisters: 65536 * 2 bytes (Offset 131072)
// Total Size: 262144 bytes
const (
	sizeCoils    = mirror.MaxAddress + 1
	sizeDiscrete = mirror.MaxAddress + 1
	sizeHolding  = (mirror.MaxAddress + 1) * 2
	totalSize    = sizeCoils + sizeDiscrete + sizeHolding

	offsetCoils    = 0
	offsetDiscrete = offsetCoils + sizeCoils
	offsetHolding  = offsetDiscrete + sizeDiscrete
)

// mapBytesToImage constructs an Image backed by the provided data slice.
// Registers are viewed in host byte order, so a mirror file is only
// portable between hosts of the same endianness.
func mapBytesToImage(data []byte) *mirror.Image {
	m := &mirror.Image{}

	m.Coils = data[offsetCoils : offsetCoils+sizeCoils]
	m.DiscreteInputs = data[offsetDiscrete : offsetDiscrete+sizeDiscrete]

	holdingBytes := data[offsetHolding : offsetHolding+sizeHolding]
	m.HoldingRegisters = unsafe.Slice((*uint16)(unsafe.Pointer(&holdingBytes[0])), sizeHolding/2)

	return m
}
