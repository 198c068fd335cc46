// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package client

import (
	"context"
	"fmt"

	"github.com/ffutop/modbus-tcp-client/modbus"
)

// Read reads count elements of kind k starting at address. The result is a
// typed slice ([]float32, []bool, ...); KindString yields a string and
// KindBytes a []byte, both with count counting registers.
func (c *Client) Read(ctx context.Context, k Kind, address uint16, count int) (any, error) {
	if !k.valid() {
		return nil, fmt.Errorf("read %s: %w", k, modbus.ErrArgumentRange)
	}
	if k == KindBool {
		return c.ReadBools(ctx, address, count)
	}
	n, err := registerSpan(k, count)
	if err != nil {
		return nil, err
	}
	payload, err := c.ReadRegister(ctx, address, n)
	if err != nil {
		return nil, err
	}
	return Decode(k, c.order, payload, count)
}

// Decode materializes count elements of kind k from a payload already
// fetched from the device. For KindBool the payload holds packed coils.
func Decode(k Kind, order modbus.WordOrder, payload []byte, count int) (any, error) {
	switch k {
	case KindBool:
		return decodeBits(payload, count)
	case KindInt16:
		return int16Codec.decode(order, payload, count)
	case KindUint16:
		return uint16Codec.decode(order, payload, count)
	case KindInt32:
		return int32Codec.decode(order, payload, count)
	case KindUint32:
		return uint32Codec.decode(order, payload, count)
	case KindFloat32:
		return float32Codec.decode(order, payload, count)
	case KindInt64:
		return int64Codec.decode(order, payload, count)
	case KindUint64:
		return uint64Codec.decode(order, payload, count)
	case KindFloat64:
		return float64Codec.decode(order, payload, count)
	case KindBytes, KindString:
		if len(payload) < count*2 {
			return nil, fmt.Errorf("%s: %d bytes for %d registers: %w", k, len(payload), count, modbus.ErrShortResponse)
		}
		if k == KindString {
			return asciiString(payload[:count*2]), nil
		}
		out := make([]byte, count*2)
		copy(out, payload)
		return out, nil
	}
	return nil, fmt.Errorf("decode %s: %w", k, modbus.ErrArgumentRange)
}

// Write writes values of kind k. values must be the matching slice or
// scalar type: []float32 or float32 for KindFloat32, string for KindString.
func (c *Client) Write(ctx context.Context, k Kind, address uint16, values any) error {
	switch k {
	case KindBool:
		switch v := values.(type) {
		case bool:
			return c.WriteBool(ctx, address, v)
		case []bool:
			return c.WriteBools(ctx, address, v)
		}
	case KindInt16:
		switch v := values.(type) {
		case int16:
			return c.WriteInt16(ctx, address, v)
		case []int16:
			return c.WriteInt16s(ctx, address, v)
		}
	case KindUint16:
		switch v := values.(type) {
		case uint16:
			return c.WriteUint16(ctx, address, v)
		case []uint16:
			return c.WriteUint16s(ctx, address, v)
		}
	case KindInt32:
		switch v := values.(type) {
		case int32:
			return c.WriteInt32(ctx, address, v)
		case []int32:
			return c.WriteInt32s(ctx, address, v)
		}
	case KindUint32:
		switch v := values.(type) {
		case uint32:
			return c.WriteUint32(ctx, address, v)
		case []uint32:
			return c.WriteUint32s(ctx, address, v)
		}
	case KindFloat32:
		switch v := values.(type) {
		case float32:
			return c.WriteFloat32(ctx, address, v)
		case []float32:
			return c.WriteFloat32s(ctx, address, v)
		}
	case KindInt64:
		switch v := values.(type) {
		case int64:
			return c.WriteInt64(ctx, address, v)
		case []int64:
			return c.WriteInt64s(ctx, address, v)
		}
	case KindUint64:
		switch v := values.(type) {
		case uint64:
			return c.WriteUint64(ctx, address, v)
		case []uint64:
			return c.WriteUint64s(ctx, address, v)
		}
	case KindFloat64:
		switch v := values.(type) {
		case float64:
			return c.WriteFloat64(ctx, address, v)
		case []float64:
			return c.WriteFloat64s(ctx, address, v)
		}
	case KindBytes:
		if v, ok := values.([]byte); ok {
			return c.WriteBytes(ctx, address, v)
		}
	case KindString:
		if v, ok := values.(string); ok {
			return c.WriteString(ctx, address, v)
		}
	}
	if values == nil {
		return fmt.Errorf("write %s: %w", k, modbus.ErrNilArgument)
	}
	return fmt.Errorf("write %s: unsupported value type %T: %w", k, values, modbus.ErrArgumentRange)
}
