// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package tcp

import (
	"context"
	"fmt"
)

// Receiver reads exactly n bytes or fails.
type Receiver interface {
	ReceiveExactly(ctx context.Context, n int) ([]byte, error)
}

// ReadResponse reads one length-prefixed response frame: the 6 byte MBAP
// header followed by exactly length bytes.
//
// Some devices put a spurious byte in front of the frame. It shows up as a
// zero length field; the header is then shifted left by one and completed
// with one more byte before the length is taken.
func ReadResponse(ctx context.Context, r Receiver) ([]byte, error) {
	head, err := r.ReceiveExactly(ctx, HeaderSize)
	if err != nil {
		return nil, err
	}
	if len(head) != HeaderSize {
		return nil, fmt.Errorf("short header: got %d of %d bytes", len(head), HeaderSize)
	}

	if head[4] == 0x00 && head[5] == 0x00 {
		copy(head, head[1:])
		extra, err := r.ReceiveExactly(ctx, 1)
		if err != nil {
			return nil, err
		}
		if len(extra) != 1 {
			return nil, fmt.Errorf("short header: missing resync byte")
		}
		head[5] = extra[0]
	}

	length := int(head[4])*256 + int(head[5])
	payload, err := r.ReceiveExactly(ctx, length)
	if err != nil {
		return nil, err
	}
	if len(payload) != length {
		return nil, fmt.Errorf("short frame: got %d of %d bytes", len(payload), length)
	}

	frame := make([]byte, HeaderSize+length)
	copy(frame, head)
	copy(frame[HeaderSize:], payload)
	return frame, nil
}
