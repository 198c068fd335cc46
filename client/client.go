// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package client is a synchronous Modbus TCP master. Every call builds a
// fresh request frame, performs exactly one exchange over the transport and
// decodes the response. Nothing is retried.
package client

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ffutop/modbus-tcp-client/modbus"
	tcppacket "github.com/ffutop/modbus-tcp-client/modbus/tcp"
	"github.com/ffutop/modbus-tcp-client/transport"
	"github.com/ffutop/modbus-tcp-client/transport/tcp"
)

// Client reads and writes coils and registers of one station.
type Client struct {
	transport transport.Transporter
	station   byte
	order     modbus.WordOrder
	seq       modbus.Sequencer
}

// Option configures a Client.
type Option func(*Client)

// WithStation sets the unit identifier placed in every frame.
func WithStation(station byte) Option {
	return func(c *Client) { c.station = station }
}

// WithWordOrder sets the register order of 32- and 64-bit values.
func WithWordOrder(order modbus.WordOrder) Option {
	return func(c *Client) { c.order = order }
}

// New creates a Client on top of t. The station defaults to 0xFF and the
// word order to modbus.LowWordFirst.
func New(t transport.Transporter, opts ...Option) *Client {
	c := &Client{
		transport: t,
		station:   modbus.DefaultStation,
		order:     modbus.LowWordFirst,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewTCP creates a Client with a TCP transport to address ("host:port").
func NewTCP(address string, timeout time.Duration, opts ...Option) *Client {
	conn := tcp.NewConn(address)
	if timeout > 0 {
		conn.Timeout = timeout
	}
	return New(conn, opts...)
}

// Station returns the unit identifier.
func (c *Client) Station() byte { return c.station }

// WordOrder returns the configured register order.
func (c *Client) WordOrder() modbus.WordOrder { return c.order }

// Transporter returns the underlying transport.
func (c *Client) Transporter() transport.Transporter { return c.transport }

// Connect dials eagerly when the transport supports it.
func (c *Client) Connect(ctx context.Context) error {
	if conn, ok := c.transport.(transport.Connector); ok {
		return conn.Connect(ctx)
	}
	return nil
}

// Close closes the transport.
func (c *Client) Close() error {
	return c.transport.Close()
}

// execute performs one request/response exchange and checks the response
// for a device exception.
func (c *Client) execute(ctx context.Context, request []byte) ([]byte, error) {
	if l, ok := c.transport.(sync.Locker); ok {
		l.Lock()
		defer l.Unlock()
	}

	if err := c.transport.Send(ctx, request); err != nil {
		return nil, &modbus.TransportError{Op: "send", Err: err}
	}
	response, err := tcppacket.ReadResponse(ctx, c.transport)
	if err != nil {
		return nil, &modbus.TransportError{Op: "receive", Err: err}
	}
	if err := tcppacket.Verify(request, response); err != nil {
		slog.Debug("modbus exception response", "station", c.station, "function", modbus.FunctionName(request[7]), "err", err)
		return nil, err
	}
	return response, nil
}

func (c *Client) read(ctx context.Context, functionCode byte, address, count uint16) ([]byte, error) {
	request := tcppacket.BuildRead(c.seq.Next(), c.station, functionCode, address, count)
	response, err := c.execute(ctx, request)
	if err != nil {
		return nil, err
	}
	return tcppacket.ExtractPayload(response), nil
}

// ReadCoil reads count coils and returns the packed coil bytes.
func (c *Client) ReadCoil(ctx context.Context, address, count uint16) ([]byte, error) {
	return c.read(ctx, modbus.FuncCodeReadCoils, address, count)
}

// ReadDiscrete reads count discrete inputs and returns the packed bytes.
func (c *Client) ReadDiscrete(ctx context.Context, address, count uint16) ([]byte, error) {
	return c.read(ctx, modbus.FuncCodeReadDiscreteInputs, address, count)
}

// ReadRegister reads count holding registers and returns the raw register
// bytes as sent by the device.
func (c *Client) ReadRegister(ctx context.Context, address, count uint16) ([]byte, error) {
	return c.read(ctx, modbus.FuncCodeReadHoldingRegisters, address, count)
}

// WriteOneCoil switches a single coil.
func (c *Client) WriteOneCoil(ctx context.Context, address uint16, value bool) error {
	_, err := c.execute(ctx, tcppacket.BuildWriteOneCoil(c.seq.Next(), c.station, address, value))
	return err
}

// WriteOneRegister writes a single holding register.
func (c *Client) WriteOneRegister(ctx context.Context, address, value uint16) error {
	_, err := c.execute(ctx, tcppacket.BuildWriteOneRegister(c.seq.Next(), c.station, address, value))
	return err
}

// WriteOneRegisterBytes writes a single holding register from its high and
// low byte.
func (c *Client) WriteOneRegisterBytes(ctx context.Context, address uint16, high, low byte) error {
	return c.WriteOneRegister(ctx, address, uint16(high)<<8|uint16(low))
}

// WriteCoil writes up to 2040 coils.
func (c *Client) WriteCoil(ctx context.Context, address uint16, values []bool) error {
	request, err := tcppacket.BuildWriteCoils(c.seq.Next(), c.station, address, values)
	if err != nil {
		return err
	}
	_, err = c.execute(ctx, request)
	return err
}

// WriteRegister writes raw register bytes (device order, at most 255
// bytes). The register count is len(values)/2.
func (c *Client) WriteRegister(ctx context.Context, address uint16, values []byte) error {
	request, err := tcppacket.BuildWriteRegisters(c.seq.Next(), c.station, address, values)
	if err != nil {
		return err
	}
	_, err = c.execute(ctx, request)
	return err
}

func (c *Client) String() string {
	if conn, ok := c.transport.(*tcp.Conn); ok {
		return fmt.Sprintf("ModbusTcpClient[%s]", conn.Address)
	}
	return fmt.Sprintf("ModbusTcpClient[station %d]", c.station)
}
