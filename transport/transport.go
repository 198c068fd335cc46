// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package transport

import (
	"context"
)

// Transporter moves raw Modbus TCP frames between the client and a device.
//
// Dialing, reconnecting and timeouts belong to the implementation. A
// Transporter that also implements sync.Locker is locked by the client for
// the duration of one request/response exchange.
type Transporter interface {
	// Send writes one complete request frame.
	Send(ctx context.Context, frame []byte) error
	// ReceiveExactly reads exactly n bytes or fails.
	ReceiveExactly(ctx context.Context, n int) ([]byte, error)
	// Close releases the connection.
	Close() error
}

// Connector is implemented by transports that can be connected eagerly.
type Connector interface {
	Connect(ctx context.Context) error
}
