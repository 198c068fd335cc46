// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package modbus holds the protocol vocabulary shared by the Modbus TCP
// frame codec and the client: function codes, exception codes, errors,
// transaction sequencing, register word order and coil bit packing.
package modbus

// Function Codes
const (
	FuncCodeReadCoils              = 0x01
	FuncCodeReadDiscreteInputs     = 0x02
	FuncCodeReadHoldingRegisters   = 0x03
	FuncCodeWriteSingleCoil        = 0x05
	FuncCodeWriteSingleRegister    = 0x06
	FuncCodeWriteMultipleCoils     = 0x0F
	FuncCodeWriteMultipleRegisters = 0x10
)

// ExceptionFlag is OR-ed into the function code of an exception response.
const ExceptionFlag = 0x80

// Exception Codes
const (
	ExceptionCodeIllegalFunction     = 0x01
	ExceptionCodeIllegalDataAddress  = 0x02
	ExceptionCodeIllegalDataValue    = 0x03
	ExceptionCodeServerDeviceFailure = 0x04
)

// Write-array caps enforced before a request is built.
const (
	MaxWriteCoils = 2040
	MaxWriteBytes = 255
)

// DefaultStation is the unit identifier used when none is configured.
const DefaultStation byte = 0xFF

// ProtocolDataUnit (PDU) is independent of underlying communication layers.
type ProtocolDataUnit struct {
	FunctionCode byte
	Data         []byte
}

// FunctionName returns a short human readable name of a function code.
func FunctionName(code byte) string {
	switch code &^ ExceptionFlag {
	case FuncCodeReadCoils:
		return "ReadCoil"
	case FuncCodeReadDiscreteInputs:
		return "ReadDiscrete"
	case FuncCodeReadHoldingRegisters:
		return "ReadRegister"
	case FuncCodeWriteSingleCoil:
		return "WriteOneCoil"
	case FuncCodeWriteSingleRegister:
		return "WriteOneRegister"
	case FuncCodeWriteMultipleCoils:
		return "WriteCoil"
	case FuncCodeWriteMultipleRegisters:
		return "WriteRegister"
	default:
		return "Unknown"
	}
}
