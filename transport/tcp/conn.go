// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package tcp

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"time"
)

const (
	tcpTimeout     = 10 * time.Second
	tcpIdleTimeout = 60 * time.Second
)

// Conn is a Modbus TCP transport over a single net.Conn.
//
// The connection is dialed lazily, closed after IdleTimeout without traffic
// and dropped on any I/O error; the next call dials again. Failed calls are
// never repeated. Lock/Unlock serialize whole exchanges.
type Conn struct {
	Address     string
	Timeout     time.Duration
	IdleTimeout time.Duration

	exchange sync.Mutex

	mu           sync.Mutex
	conn         net.Conn
	lastActivity time.Time
	closeTimer   *time.Timer
	dialer       net.Dialer
}

// NewConn allocates and initializes a TCP transport.
func NewConn(address string) *Conn {
	return &Conn{
		Address:     address,
		Timeout:     tcpTimeout,
		IdleTimeout: tcpIdleTimeout,
	}
}

// Lock acquires the exchange lock.
func (c *Conn) Lock() { c.exchange.Lock() }

// Unlock releases the exchange lock.
func (c *Conn) Unlock() { c.exchange.Unlock() }

// Connect dials the device if not connected.
func (c *Conn) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := c.connect(ctx)
	return err
}

// Send writes one frame.
func (c *Conn) Send(ctx context.Context, frame []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	conn, err := c.prepare(ctx)
	if err != nil {
		return err
	}

	slog.Debug("send to modbus tcp slave", "addr", c.Address, "request", hex.EncodeToString(frame))
	if _, err := conn.Write(frame); err != nil {
		c.close()
		return fmt.Errorf("failed to write to connection: %w", err)
	}
	return nil
}

// ReceiveExactly reads n bytes.
func (c *Conn) ReceiveExactly(ctx context.Context, n int) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	conn, err := c.prepare(ctx)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, n)
	if _, err := io.ReadFull(conn, buf); err != nil {
		c.close()
		return nil, fmt.Errorf("failed to read %d bytes: %w", n, err)
	}
	slog.Debug("recv from modbus tcp slave", "addr", c.Address, "response", hex.EncodeToString(buf))
	return buf, nil
}

// Close closes the connection.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closeTimer != nil {
		c.closeTimer.Stop()
		c.closeTimer = nil
	}
	return c.close()
}

// prepare connects and arms the deadline for one operation. Caller must hold the mutex.
func (c *Conn) prepare(ctx context.Context) (net.Conn, error) {
	conn, err := c.connect(ctx)
	if err != nil {
		return nil, err
	}

	deadline := time.Now().Add(c.timeout())
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		c.close()
		return nil, err
	}

	c.lastActivity = time.Now()
	c.startCloseTimer()
	return conn, nil
}

// connect ensures there is an active connection. Caller must hold the mutex.
func (c *Conn) connect(ctx context.Context) (net.Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.conn != nil {
		return c.conn, nil
	}

	dialCtx, cancel := context.WithTimeout(ctx, c.timeout())
	defer cancel()
	conn, err := c.dialer.DialContext(dialCtx, "tcp", c.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", c.Address, err)
	}
	slog.Debug("connected to modbus tcp slave", "addr", c.Address)
	c.conn = conn
	return conn, nil
}

// close closes the connection and resets the state. Caller must hold the mutex.
func (c *Conn) close() (err error) {
	if c.conn != nil {
		err = c.conn.Close()
		c.conn = nil
	}
	return
}

func (c *Conn) timeout() time.Duration {
	if c.Timeout <= 0 {
		return tcpTimeout
	}
	return c.Timeout
}

func (c *Conn) startCloseTimer() {
	if c.IdleTimeout <= 0 {
		return
	}
	if c.closeTimer == nil {
		c.closeTimer = time.AfterFunc(c.IdleTimeout, c.closeIdle)
	} else {
		c.closeTimer.Reset(c.IdleTimeout)
	}
}

// closeIdle closes the connection if last activity is passed behind IdleTimeout.
func (c *Conn) closeIdle() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.IdleTimeout <= 0 {
		return
	}
	if idle := time.Since(c.lastActivity); idle >= c.IdleTimeout {
		slog.Debug("modbus: closing connection due to idle timeout", "addr", c.Address, "idle", idle)
		c.close()
	}
}
