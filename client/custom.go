// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package client

import (
	"context"
	"fmt"

	"github.com/ffutop/modbus-tcp-client/modbus"
)

// DataTransfer is a user-defined type mapped onto a run of registers.
// ParseSource receives the raw register bytes as sent by the device and
// ToSource returns the bytes to write, both without word-order conversion.
type DataTransfer interface {
	RegisterCount() uint16
	ParseSource(data []byte) error
	ToSource() []byte
}

// ReadCustom reads v.RegisterCount() registers and hands them to v.
func (c *Client) ReadCustom(ctx context.Context, address uint16, v DataTransfer) error {
	if v == nil {
		return fmt.Errorf("read custom: %w", modbus.ErrNilArgument)
	}
	n := v.RegisterCount()
	if n == 0 {
		return fmt.Errorf("read custom: zero registers: %w", modbus.ErrArgumentRange)
	}
	payload, err := c.ReadRegister(ctx, address, n)
	if err != nil {
		return err
	}
	if len(payload) < int(n)*2 {
		return fmt.Errorf("read custom: %d bytes for %d registers: %w", len(payload), n, modbus.ErrShortResponse)
	}
	return v.ParseSource(payload[:int(n)*2])
}

// WriteCustom writes the bytes produced by v.ToSource.
func (c *Client) WriteCustom(ctx context.Context, address uint16, v DataTransfer) error {
	if v == nil {
		return fmt.Errorf("write custom: %w", modbus.ErrNilArgument)
	}
	return c.WriteBytes(ctx, address, v.ToSource())
}
