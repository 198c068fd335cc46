// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package tcp

import (
	"encoding/binary"
	"fmt"

	"github.com/ffutop/modbus-tcp-client/modbus"
)

// BuildRead builds a ReadCoil / ReadDiscrete / ReadRegister request:
// address and quantity, both big-endian. The frame is 12 bytes long.
func BuildRead(transactionID uint16, station, functionCode byte, address, count uint16) []byte {
	data := make([]byte, 4)
	binary.BigEndian.PutUint16(data[0:], address)
	binary.BigEndian.PutUint16(data[2:], count)
	return mustEncode(transactionID, station, functionCode, data)
}

// BuildWriteOneCoil builds a WriteOneCoil request. ON is sent as 0xFF00.
func BuildWriteOneCoil(transactionID uint16, station byte, address uint16, value bool) []byte {
	data := make([]byte, 4)
	binary.BigEndian.PutUint16(data[0:], address)
	if value {
		data[2] = 0xFF
	}
	return mustEncode(transactionID, station, modbus.FuncCodeWriteSingleCoil, data)
}

// BuildWriteOneRegister builds a WriteOneRegister request with the register
// value in wire order (high byte first).
func BuildWriteOneRegister(transactionID uint16, station byte, address, value uint16) []byte {
	data := make([]byte, 4)
	binary.BigEndian.PutUint16(data[0:], address)
	binary.BigEndian.PutUint16(data[2:], value)
	return mustEncode(transactionID, station, modbus.FuncCodeWriteSingleRegister, data)
}

// BuildWriteCoils builds a WriteCoil request with the coil states packed
// LSB-first.
func BuildWriteCoils(transactionID uint16, station byte, address uint16, values []bool) ([]byte, error) {
	if values == nil {
		return nil, fmt.Errorf("write coils: %w", modbus.ErrNilArgument)
	}
	if len(values) > modbus.MaxWriteCoils {
		return nil, fmt.Errorf("write coils: %d coils exceed %d: %w", len(values), modbus.MaxWriteCoils, modbus.ErrArgumentRange)
	}
	packed := modbus.PackBits(values)

	data := make([]byte, 5+len(packed))
	binary.BigEndian.PutUint16(data[0:], address)
	binary.BigEndian.PutUint16(data[2:], uint16(len(values)))
	data[4] = byte(len(packed))
	copy(data[5:], packed)

	return encode(transactionID, station, modbus.FuncCodeWriteMultipleCoils, data)
}

// BuildWriteRegisters builds a WriteRegister request. values holds the
// register bytes already in device order; the register count is len/2.
func BuildWriteRegisters(transactionID uint16, station byte, address uint16, values []byte) ([]byte, error) {
	if values == nil {
		return nil, fmt.Errorf("write registers: %w", modbus.ErrNilArgument)
	}
	// The byte count field is a single byte.
	if len(values) > modbus.MaxWriteBytes {
		return nil, fmt.Errorf("write registers: %d bytes exceed %d: %w", len(values), modbus.MaxWriteBytes, modbus.ErrArgumentRange)
	}

	data := make([]byte, 5+len(values))
	binary.BigEndian.PutUint16(data[0:], address)
	binary.BigEndian.PutUint16(data[2:], uint16(len(values)/2))
	data[4] = byte(len(values))
	copy(data[5:], values)

	return encode(transactionID, station, modbus.FuncCodeWriteMultipleRegisters, data)
}

func encode(transactionID uint16, station, functionCode byte, data []byte) ([]byte, error) {
	adu := NewApplicationDataUnit(transactionID, station, modbus.ProtocolDataUnit{
		FunctionCode: functionCode,
		Data:         data,
	})
	return adu.Encode()
}

// mustEncode is used for the fixed-size requests, which always fit.
func mustEncode(transactionID uint16, station, functionCode byte, data []byte) []byte {
	raw, err := encode(transactionID, station, functionCode, data)
	if err != nil {
		panic(err)
	}
	return raw
}
