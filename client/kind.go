// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package client

import (
	"fmt"
	"strings"

	"github.com/ffutop/modbus-tcp-client/modbus"
)

// Kind tags the value types the client can materialize from registers.
type Kind uint8

const (
	KindBool Kind = iota
	KindInt16
	KindUint16
	KindInt32
	KindUint32
	KindFloat32
	KindInt64
	KindUint64
	KindFloat64
	KindBytes
	KindString
)

type kindInfo struct {
	name string
	// size is the encoded element size in bytes; registers = size/2.
	size int
	// group is the word-order group size, 0 when a value fits one register.
	group int
	// maxWrite caps the number of elements of one write.
	maxWrite int
}

var kinds = [...]kindInfo{
	KindBool:    {name: "bool", size: 0, group: 0, maxWrite: modbus.MaxWriteCoils},
	KindInt16:   {name: "int16", size: 2, group: 0, maxWrite: 128},
	KindUint16:  {name: "uint16", size: 2, group: 0, maxWrite: 128},
	KindInt32:   {name: "int32", size: 4, group: 4, maxWrite: 64},
	KindUint32:  {name: "uint32", size: 4, group: 4, maxWrite: 64},
	KindFloat32: {name: "float32", size: 4, group: 4, maxWrite: 63},
	KindInt64:   {name: "int64", size: 8, group: 8, maxWrite: 31},
	KindUint64:  {name: "uint64", size: 8, group: 8, maxWrite: 32},
	KindFloat64: {name: "float64", size: 8, group: 8, maxWrite: 31},
	KindBytes:   {name: "bytes", size: 2, group: 0, maxWrite: modbus.MaxWriteBytes},
	KindString:  {name: "string", size: 2, group: 0, maxWrite: modbus.MaxWriteBytes},
}

var kindAliases = map[string]Kind{
	"coil":   KindBool,
	"short":  KindInt16,
	"ushort": KindUint16,
	"int":    KindInt32,
	"uint":   KindUint32,
	"float":  KindFloat32,
	"long":   KindInt64,
	"ulong":  KindUint64,
	"double": KindFloat64,
	"ascii":  KindString,
}

// ParseKind parses a kind name such as "float32" or "double".
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for k, info := range kinds {
		if info.name == name {
			return Kind(k), nil
		}
	}
	if k, ok := kindAliases[name]; ok {
		return k, nil
	}
	return 0, fmt.Errorf("unknown value kind: %q", s)
}

func (k Kind) valid() bool { return int(k) < len(kinds) }

func (k Kind) String() string {
	if !k.valid() {
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
	return kinds[k].name
}

// Registers is the number of registers of one element. For KindBytes and
// KindString an element is one register; KindBool lives in coils and has none.
func (k Kind) Registers() uint16 {
	if !k.valid() {
		return 0
	}
	return uint16(kinds[k].size / 2)
}

// WordGroup is the byte group size the word order applies to, or 0.
func (k Kind) WordGroup() int {
	if !k.valid() {
		return 0
	}
	return kinds[k].group
}

// MaxWrite is the largest number of elements accepted by one write.
func (k Kind) MaxWrite() int {
	if !k.valid() {
		return 0
	}
	return kinds[k].maxWrite
}

// IsCoil reports whether values of this kind live in coils.
func (k Kind) IsCoil() bool { return k == KindBool }

// registerSpan returns the registers needed for count elements of k.
func registerSpan(k Kind, count int) (uint16, error) {
	if count <= 0 {
		return 0, fmt.Errorf("%s: count %d: %w", k, count, modbus.ErrArgumentRange)
	}
	n := count
	if !k.IsCoil() {
		n = count * int(k.Registers())
	}
	if n > 0xFFFF {
		return 0, fmt.Errorf("%s: %d elements exceed the address space: %w", k, count, modbus.ErrArgumentRange)
	}
	return uint16(n), nil
}

func checkWrite(k Kind, n int, isNil bool) error {
	if isNil {
		return fmt.Errorf("write %s: %w", k, modbus.ErrNilArgument)
	}
	if n > k.MaxWrite() {
		return fmt.Errorf("write %s: %d elements exceed %d: %w", k, n, k.MaxWrite(), modbus.ErrArgumentRange)
	}
	return nil
}
