// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package tcp

const (
	// HeaderSize is the MBAP prefix up to and including the length field.
	HeaderSize = 6
	// MinSize covers the MBAP header, unit identifier and function code.
	MinSize = 8
	// ReadPrefixSize is the part of a read response in front of the payload:
	// MBAP header, unit identifier, function code and byte count.
	ReadPrefixSize = 9

	// MaxDataSize bounds the PDU data of a request: address, quantity,
	// byte count and at most 255 value bytes.
	MaxDataSize = 5 + 255

	ProtocolID = 0x0000
)
