// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package modbus

import "sync/atomic"

// Sequencer hands out MBAP transaction identifiers. The zero value is ready
// to use and starts at 0; values wrap from 65535 back to 0.
type Sequencer struct {
	next atomic.Uint32
}

// Next returns the current identifier and advances the counter.
func (s *Sequencer) Next() uint16 {
	return uint16(s.next.Add(1) - 1)
}
