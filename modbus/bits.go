// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package modbus

// PackBits packs coil states LSB-first, eight per byte. Unused high bits of
// the last byte are zero.
func PackBits(values []bool) []byte {
	data := make([]byte, (len(values)+7)/8)
	for i, v := range values {
		if v {
			data[i/8] |= 1 << uint(i%8)
		}
	}
	return data
}

// UnpackBits expands count LSB-first coil states from data. Bits beyond the
// end of data read as false.
func UnpackBits(data []byte, count int) []bool {
	values := make([]bool, count)
	for i := 0; i < count; i++ {
		byteIdx := i / 8
		if byteIdx >= len(data) {
			break
		}
		values[i] = (data[byteIdx]>>uint(i%8))&1 == 1
	}
	return values
}
