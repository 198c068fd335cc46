// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package tcp implements the Modbus TCP (MBAP) framing used by the client:
// request builders, the length-prefixed response reader, exception
// detection and payload extraction. Nothing in this package does I/O on its
// own; ReadResponse pulls bytes through a Receiver.
package tcp

import (
	"fmt"

	"github.com/ffutop/modbus-tcp-client/modbus"
)

// ApplicationDataUnit is a Modbus TCP frame:
//
//	Transaction ID  : 2 bytes
//	Protocol ID     : 2 bytes (always 0)
//	Length          : 2 bytes (unit id .. end of data)
//	Unit ID         : 1 byte
//	Function        : 1 byte
//	Data            : n bytes
type ApplicationDataUnit struct {
	TransactionID uint16
	ProtocolID    uint16
	Length        uint16
	UnitID        byte
	Pdu           modbus.ProtocolDataUnit
}

// NewApplicationDataUnit wraps a PDU and computes the length field.
func NewApplicationDataUnit(transactionID uint16, unitID byte, pdu modbus.ProtocolDataUnit) *ApplicationDataUnit {
	return &ApplicationDataUnit{
		TransactionID: transactionID,
		ProtocolID:    ProtocolID,
		Length:        uint16(2 + len(pdu.Data)), // UnitID + FunctionCode + Data
		UnitID:        unitID,
		Pdu:           pdu,
	}
}

// Decode splits a raw frame into its fields. Data aliases raw.
func Decode(raw []byte) (adu *ApplicationDataUnit, err error) {
	if len(raw) < MinSize {
		err = fmt.Errorf("modbus: response length '%v' does not meet minimum '%v'", len(raw), MinSize)
		return
	}
	adu = &ApplicationDataUnit{}
	adu.TransactionID = uint16(raw[0])<<8 | uint16(raw[1])
	adu.ProtocolID = uint16(raw[2])<<8 | uint16(raw[3])
	adu.Length = uint16(raw[4])<<8 | uint16(raw[5])
	adu.UnitID = raw[6]
	adu.Pdu.FunctionCode = raw[7]
	adu.Pdu.Data = raw[8:]
	return
}

// Encode serializes the frame. The length field is written as stored.
func (adu *ApplicationDataUnit) Encode() (raw []byte, err error) {
	if len(adu.Pdu.Data) > MaxDataSize {
		err = fmt.Errorf("modbus: length of data '%v' must not be bigger than '%v': %w", len(adu.Pdu.Data), MaxDataSize, modbus.ErrArgumentRange)
		return
	}
	raw = make([]byte, MinSize+len(adu.Pdu.Data))

	raw[0] = byte(adu.TransactionID >> 8)
	raw[1] = byte(adu.TransactionID >> 0)
	raw[2] = byte(adu.ProtocolID >> 8)
	raw[3] = byte(adu.ProtocolID >> 0)
	raw[4] = byte(adu.Length >> 8)
	raw[5] = byte(adu.Length >> 0)
	raw[6] = adu.UnitID
	raw[7] = adu.Pdu.FunctionCode
	copy(raw[8:], adu.Pdu.Data)

	return
}
