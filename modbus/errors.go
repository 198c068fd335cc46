// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package modbus

import (
	"errors"
	"fmt"
)

var (
	// ErrNilArgument is returned when a required value argument is nil.
	ErrNilArgument = errors.New("modbus: value must not be nil")
	// ErrArgumentRange is returned when an argument exceeds what a request can carry.
	ErrArgumentRange = errors.New("modbus: value out of range")
	// ErrShortResponse is returned when a response payload is too short to decode a value.
	ErrShortResponse = errors.New("modbus: response too short")
)

// ExceptionError is a device exception echo: the response function code
// carries the 0x80 flag and the first data byte is the exception code.
type ExceptionError struct {
	FunctionCode byte
	Code         byte
}

func (e *ExceptionError) Error() string {
	return fmt.Sprintf("modbus: exception '%v' (%s), function '%v'", e.Code, ExceptionMessage(e.Code), e.FunctionCode)
}

// Message returns the fixed description of the exception code.
func (e *ExceptionError) Message() string {
	return ExceptionMessage(e.Code)
}

// ExceptionMessage maps an exception code to its description.
func ExceptionMessage(code byte) string {
	switch code {
	case ExceptionCodeIllegalFunction:
		return "unsupported function"
	case ExceptionCodeIllegalDataAddress:
		return "address out of range"
	case ExceptionCodeIllegalDataValue:
		return "register count out of range"
	case ExceptionCodeServerDeviceFailure:
		return "read/write fault"
	default:
		return "unknown exception"
	}
}

// TransportError wraps a failure of the transport. The exchange is abandoned.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("modbus: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
