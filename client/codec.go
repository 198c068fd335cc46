// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package client

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/ffutop/modbus-tcp-client/modbus"
)

// codec converts between host values of one kind and big-endian bytes.
type codec[T any] struct {
	kind Kind
	put  func([]byte, T)
	get  func([]byte) T
}

var (
	int16Codec = codec[int16]{KindInt16,
		func(b []byte, v int16) { binary.BigEndian.PutUint16(b, uint16(v)) },
		func(b []byte) int16 { return int16(binary.BigEndian.Uint16(b)) }}
	uint16Codec = codec[uint16]{KindUint16,
		binary.BigEndian.PutUint16,
		binary.BigEndian.Uint16}
	int32Codec = codec[int32]{KindInt32,
		func(b []byte, v int32) { binary.BigEndian.PutUint32(b, uint32(v)) },
		func(b []byte) int32 { return int32(binary.BigEndian.Uint32(b)) }}
	uint32Codec = codec[uint32]{KindUint32,
		binary.BigEndian.PutUint32,
		binary.BigEndian.Uint32}
	float32Codec = codec[float32]{KindFloat32,
		func(b []byte, v float32) { binary.BigEndian.PutUint32(b, math.Float32bits(v)) },
		func(b []byte) float32 { return math.Float32frombits(binary.BigEndian.Uint32(b)) }}
	int64Codec = codec[int64]{KindInt64,
		func(b []byte, v int64) { binary.BigEndian.PutUint64(b, uint64(v)) },
		func(b []byte) int64 { return int64(binary.BigEndian.Uint64(b)) }}
	uint64Codec = codec[uint64]{KindUint64,
		binary.BigEndian.PutUint64,
		binary.BigEndian.Uint64}
	float64Codec = codec[float64]{KindFloat64,
		func(b []byte, v float64) { binary.BigEndian.PutUint64(b, math.Float64bits(v)) },
		func(b []byte) float64 { return math.Float64frombits(binary.BigEndian.Uint64(b)) }}
)

// encode serializes values big-endian and converts them to device word order.
func (cd codec[T]) encode(order modbus.WordOrder, values []T) []byte {
	size := kinds[cd.kind].size
	buf := make([]byte, len(values)*size)
	for i, v := range values {
		cd.put(buf[i*size:], v)
	}
	if group := cd.kind.WordGroup(); group > 0 {
		order.Apply(buf, group)
	}
	return buf
}

// decode materializes count values from a device payload. The payload is
// not modified.
func (cd codec[T]) decode(order modbus.WordOrder, payload []byte, count int) ([]T, error) {
	size := kinds[cd.kind].size
	need := count * size
	if len(payload) < need {
		return nil, fmt.Errorf("%s: %d bytes for %d values: %w", cd.kind, len(payload), count, modbus.ErrShortResponse)
	}

	buf := make([]byte, need)
	copy(buf, payload)
	if group := cd.kind.WordGroup(); group > 0 {
		order.Apply(buf, group)
	}

	values := make([]T, count)
	for i := range values {
		values[i] = cd.get(buf[i*size:])
	}
	return values, nil
}

func readValues[T any](ctx context.Context, c *Client, cd codec[T], address uint16, count int) ([]T, error) {
	registers, err := registerSpan(cd.kind, count)
	if err != nil {
		return nil, err
	}
	payload, err := c.ReadRegister(ctx, address, registers)
	if err != nil {
		return nil, err
	}
	return cd.decode(c.order, payload, count)
}

func readValue[T any](ctx context.Context, c *Client, cd codec[T], address uint16) (T, error) {
	values, err := readValues(ctx, c, cd, address, 1)
	if err != nil {
		var zero T
		return zero, err
	}
	return values[0], nil
}

func writeValues[T any](ctx context.Context, c *Client, cd codec[T], address uint16, values []T) error {
	if err := checkWrite(cd.kind, len(values), values == nil); err != nil {
		return err
	}
	return c.WriteRegister(ctx, address, cd.encode(c.order, values))
}

// ReadInt16 reads one signed 16-bit register.
func (c *Client) ReadInt16(ctx context.Context, address uint16) (int16, error) {
	return readValue(ctx, c, int16Codec, address)
}

// ReadInt16s reads count signed 16-bit registers.
func (c *Client) ReadInt16s(ctx context.Context, address uint16, count int) ([]int16, error) {
	return readValues(ctx, c, int16Codec, address, count)
}

// ReadUint16 reads one unsigned 16-bit register.
func (c *Client) ReadUint16(ctx context.Context, address uint16) (uint16, error) {
	return readValue(ctx, c, uint16Codec, address)
}

// ReadUint16s reads count unsigned 16-bit registers.
func (c *Client) ReadUint16s(ctx context.Context, address uint16, count int) ([]uint16, error) {
	return readValues(ctx, c, uint16Codec, address, count)
}

// ReadInt32 reads a signed 32-bit value from two registers.
func (c *Client) ReadInt32(ctx context.Context, address uint16) (int32, error) {
	return readValue(ctx, c, int32Codec, address)
}

func (c *Client) ReadInt32s(ctx context.Context, address uint16, count int) ([]int32, error) {
	return readValues(ctx, c, int32Codec, address, count)
}

// ReadUint32 reads an unsigned 32-bit value from two registers.
func (c *Client) ReadUint32(ctx context.Context, address uint16) (uint32, error) {
	return readValue(ctx, c, uint32Codec, address)
}

func (c *Client) ReadUint32s(ctx context.Context, address uint16, count int) ([]uint32, error) {
	return readValues(ctx, c, uint32Codec, address, count)
}

// ReadFloat32 reads an IEEE-754 single from two registers.
func (c *Client) ReadFloat32(ctx context.Context, address uint16) (float32, error) {
	return readValue(ctx, c, float32Codec, address)
}

func (c *Client) ReadFloat32s(ctx context.Context, address uint16, count int) ([]float32, error) {
	return readValues(ctx, c, float32Codec, address, count)
}

// ReadInt64 reads a signed 64-bit value from four registers.
func (c *Client) ReadInt64(ctx context.Context, address uint16) (int64, error) {
	return readValue(ctx, c, int64Codec, address)
}

func (c *Client) ReadInt64s(ctx context.Context, address uint16, count int) ([]int64, error) {
	return readValues(ctx, c, int64Codec, address, count)
}

// ReadUint64 reads an unsigned 64-bit value from four registers.
func (c *Client) ReadUint64(ctx context.Context, address uint16) (uint64, error) {
	return readValue(ctx, c, uint64Codec, address)
}

func (c *Client) ReadUint64s(ctx context.Context, address uint16, count int) ([]uint64, error) {
	return readValues(ctx, c, uint64Codec, address, count)
}

// ReadFloat64 reads an IEEE-754 double from four registers.
func (c *Client) ReadFloat64(ctx context.Context, address uint16) (float64, error) {
	return readValue(ctx, c, float64Codec, address)
}

func (c *Client) ReadFloat64s(ctx context.Context, address uint16, count int) ([]float64, error) {
	return readValues(ctx, c, float64Codec, address, count)
}

// ReadString reads registers holding ASCII text, two characters per register.
func (c *Client) ReadString(ctx context.Context, address, registers uint16) (string, error) {
	payload, err := c.ReadRegister(ctx, address, registers)
	if err != nil {
		return "", err
	}
	return asciiString(payload), nil
}

// ReadBool reads a single coil.
func (c *Client) ReadBool(ctx context.Context, address uint16) (bool, error) {
	payload, err := c.ReadCoil(ctx, address, 1)
	if err != nil {
		return false, err
	}
	values, err := decodeBits(payload, 1)
	if err != nil {
		return false, err
	}
	return values[0], nil
}

// ReadBools reads count coils.
func (c *Client) ReadBools(ctx context.Context, address uint16, count int) ([]bool, error) {
	n, err := registerSpan(KindBool, count)
	if err != nil {
		return nil, err
	}
	payload, err := c.ReadCoil(ctx, address, n)
	if err != nil {
		return nil, err
	}
	return decodeBits(payload, count)
}

// ReadDiscreteBool reads a single discrete input.
func (c *Client) ReadDiscreteBool(ctx context.Context, address uint16) (bool, error) {
	values, err := c.ReadDiscreteBools(ctx, address, 1)
	if err != nil {
		return false, err
	}
	return values[0], nil
}

// ReadDiscreteBools reads count discrete inputs.
func (c *Client) ReadDiscreteBools(ctx context.Context, address uint16, count int) ([]bool, error) {
	n, err := registerSpan(KindBool, count)
	if err != nil {
		return nil, err
	}
	payload, err := c.ReadDiscrete(ctx, address, n)
	if err != nil {
		return nil, err
	}
	return decodeBits(payload, count)
}

// WriteBool switches a single coil.
func (c *Client) WriteBool(ctx context.Context, address uint16, value bool) error {
	return c.WriteOneCoil(ctx, address, value)
}

// WriteBools writes up to 2040 coils.
func (c *Client) WriteBools(ctx context.Context, address uint16, values []bool) error {
	if err := checkWrite(KindBool, len(values), values == nil); err != nil {
		return err
	}
	return c.WriteCoil(ctx, address, values)
}

func (c *Client) WriteInt16(ctx context.Context, address uint16, value int16) error {
	return c.WriteInt16s(ctx, address, []int16{value})
}

func (c *Client) WriteInt16s(ctx context.Context, address uint16, values []int16) error {
	return writeValues(ctx, c, int16Codec, address, values)
}

func (c *Client) WriteUint16(ctx context.Context, address uint16, value uint16) error {
	return c.WriteUint16s(ctx, address, []uint16{value})
}

func (c *Client) WriteUint16s(ctx context.Context, address uint16, values []uint16) error {
	return writeValues(ctx, c, uint16Codec, address, values)
}

func (c *Client) WriteInt32(ctx context.Context, address uint16, value int32) error {
	return c.WriteInt32s(ctx, address, []int32{value})
}

func (c *Client) WriteInt32s(ctx context.Context, address uint16, values []int32) error {
	return writeValues(ctx, c, int32Codec, address, values)
}

func (c *Client) WriteUint32(ctx context.Context, address uint16, value uint32) error {
	return c.WriteUint32s(ctx, address, []uint32{value})
}

func (c *Client) WriteUint32s(ctx context.Context, address uint16, values []uint32) error {
	return writeValues(ctx, c, uint32Codec, address, values)
}

func (c *Client) WriteFloat32(ctx context.Context, address uint16, value float32) error {
	return c.WriteFloat32s(ctx, address, []float32{value})
}

func (c *Client) WriteFloat32s(ctx context.Context, address uint16, values []float32) error {
	return writeValues(ctx, c, float32Codec, address, values)
}

func (c *Client) WriteInt64(ctx context.Context, address uint16, value int64) error {
	return c.WriteInt64s(ctx, address, []int64{value})
}

func (c *Client) WriteInt64s(ctx context.Context, address uint16, values []int64) error {
	return writeValues(ctx, c, int64Codec, address, values)
}

func (c *Client) WriteUint64(ctx context.Context, address uint16, value uint64) error {
	return c.WriteUint64s(ctx, address, []uint64{value})
}

func (c *Client) WriteUint64s(ctx context.Context, address uint16, values []uint64) error {
	return writeValues(ctx, c, uint64Codec, address, values)
}

func (c *Client) WriteFloat64(ctx context.Context, address uint16, value float64) error {
	return c.WriteFloat64s(ctx, address, []float64{value})
}

func (c *Client) WriteFloat64s(ctx context.Context, address uint16, values []float64) error {
	return writeValues(ctx, c, float64Codec, address, values)
}

// WriteBytes writes raw register bytes, at most 255.
func (c *Client) WriteBytes(ctx context.Context, address uint16, values []byte) error {
	if err := checkWrite(KindBytes, len(values), values == nil); err != nil {
		return err
	}
	return c.WriteRegister(ctx, address, values)
}

// WriteString writes s as ASCII, two characters per register. Characters
// outside ASCII are sent as '?'.
func (c *Client) WriteString(ctx context.Context, address uint16, s string) error {
	return c.WriteBytes(ctx, address, asciiBytes(s))
}

func decodeBits(payload []byte, count int) ([]bool, error) {
	if len(payload) < (count+7)/8 {
		return nil, fmt.Errorf("bool: %d bytes for %d coils: %w", len(payload), count, modbus.ErrShortResponse)
	}
	return modbus.UnpackBits(payload, count), nil
}

func asciiString(b []byte) string {
	out := make([]byte, len(b))
	for i, ch := range b {
		if ch > 0x7F {
			ch = '?'
		}
		out[i] = ch
	}
	return string(out)
}

func asciiBytes(s string) []byte {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if r > 0x7F {
			r = '?'
		}
		out = append(out, byte(r))
	}
	return out
}
