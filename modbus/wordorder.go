// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package modbus

import (
	"fmt"
	"strings"
)

// WordOrder describes how a device orders the 16-bit registers of a value
// spanning several registers. Each register is always big-endian.
type WordOrder int

const (
	// LowWordFirst stores the least significant register first.
	LowWordFirst WordOrder = iota
	// HighWordFirst stores the most significant register first (plain big-endian).
	HighWordFirst
)

// ParseWordOrder parses "low_word_first" / "high_word_first" (also "cdab" / "abcd").
func ParseWordOrder(s string) (WordOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "low_word_first", "cdab":
		return LowWordFirst, nil
	case "high_word_first", "abcd":
		return HighWordFirst, nil
	default:
		return LowWordFirst, fmt.Errorf("unknown word order: %s", s)
	}
}

func (o WordOrder) String() string {
	if o == HighWordFirst {
		return "high_word_first"
	}
	return "low_word_first"
}

// SwapWords reorders the registers inside each complete group of size bytes
// (4 or 8) in place and returns data. Applying it twice restores the input.
//
//	4 bytes: [0 1 2 3]         -> [2 3 0 1]
//	8 bytes: [0 1 2 3 4 5 6 7] -> [6 7 4 5 2 3 0 1]
func SwapWords(data []byte, size int) []byte {
	switch size {
	case 4:
		for i := 0; i+4 <= len(data); i += 4 {
			data[i+0], data[i+2] = data[i+2], data[i+0]
			data[i+1], data[i+3] = data[i+3], data[i+1]
		}
	case 8:
		for i := 0; i+8 <= len(data); i += 8 {
			data[i+0], data[i+6] = data[i+6], data[i+0]
			data[i+1], data[i+7] = data[i+7], data[i+1]
			data[i+2], data[i+4] = data[i+4], data[i+2]
			data[i+3], data[i+5] = data[i+5], data[i+3]
		}
	}
	return data
}

// Apply converts between host big-endian order and the device order.
func (o WordOrder) Apply(data []byte, size int) []byte {
	if o == HighWordFirst {
		return data
	}
	return SwapWords(data, size)
}
