// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package poller

import (
	"context"
	"errors"
	"io"
	"math"
	"net"
	"testing"
	"time"

	"github.com/ffutop/modbus-tcp-client/client"
	"github.com/ffutop/modbus-tcp-client/internal/config"
	"github.com/ffutop/modbus-tcp-client/internal/mirror"
	"github.com/ffutop/modbus-tcp-client/modbus"
	"github.com/google/go-cmp/cmp"
	"github.com/tbrandon/mbserver"
	"go.uber.org/multierr"
)

func startSlave(t *testing.T) (*mbserver.Server, string) {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := l.Addr().String()
	l.Close()

	s := mbserver.NewServer()
	if err := s.ListenTCP(addr); err != nil {
		t.Fatalf("failed to start slave: %v", err)
	}
	t.Cleanup(s.Close)
	return s, addr
}

func newPoller(t *testing.T, addr string, points []config.PointConfig) *Poller {
	t.Helper()
	cfg := config.DeviceConfig{
		Name:        "plc1",
		Address:     addr,
		Timeout:     time.Second,
		IdleTimeout: time.Minute,
		Poll:        config.PollConfig{Interval: 20 * time.Millisecond, Points: points},
		Mirror:      config.MirrorConfig{Type: "memory"},
	}
	p, err := NewFromConfig(cfg)
	if err != nil {
		t.Fatalf("NewFromConfig failed: %v", err)
	}
	return p
}

func TestPollOnce(t *testing.T) {
	s, addr := startSlave(t)
	bits := math.Float32bits(21.5)
	s.HoldingRegisters[100] = uint16(bits)
	s.HoldingRegisters[101] = uint16(bits >> 16)
	s.HoldingRegisters[200] = 0x4F4B // "OK"
	s.Coils[3] = 1
	s.DiscreteInputs[9] = 1

	p := newPoller(t, addr, []config.PointConfig{
		{Name: "temperature", Kind: "float32", Address: 100, Count: 1, Table: "holding"},
		{Name: "label", Kind: "string", Address: 200, Count: 1, Table: "holding"},
		{Name: "run", Kind: "bool", Address: 2, Count: 2, Table: "coil"},
		{Name: "door", Kind: "bool", Address: 9, Count: 1, Table: "discrete"},
	})
	defer p.Close()

	if err := p.PollOnce(context.Background()); err != nil {
		t.Fatalf("PollOnce failed: %v", err)
	}

	regs, err := p.Image.LoadRegisters(100, 2)
	if err != nil {
		t.Fatal(err)
	}
	value, err := client.Decode(client.KindFloat32, modbus.LowWordFirst, regs, 1)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]float32{21.5}, value); diff != "" {
		t.Errorf("Mirrored temperature mismatch (-want +got):\n%s", diff)
	}
	if p.Image.HoldingRegisters[200] != 0x4F4B {
		t.Errorf("Unexpected label register %04X", p.Image.HoldingRegisters[200])
	}
	coils, _ := p.Image.LoadCoils(2, 2)
	if diff := cmp.Diff([]bool{false, true}, coils); diff != "" {
		t.Errorf("Mirrored coils mismatch (-want +got):\n%s", diff)
	}
	if p.Image.Cell(mirror.TableDiscreteInputs, 9) != 1 {
		t.Error("Expected discrete input 9 mirrored")
	}
}

func TestPollOnce_PartialFailure(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer listener.Close()

	// Answers the first request with an exception and the second with two registers.
	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		req := make([]byte, 12)
		if _, err := io.ReadFull(conn, req); err != nil {
			return
		}
		conn.Write([]byte{req[0], req[1], 0, 0, 0, 3, req[6], req[7] | modbus.ExceptionFlag, modbus.ExceptionCodeIllegalDataAddress})
		if _, err := io.ReadFull(conn, req); err != nil {
			return
		}
		conn.Write([]byte{req[0], req[1], 0, 0, 0, 7, req[6], req[7], 4, 0x00, 0x05, 0x00, 0x06})
		time.Sleep(100 * time.Millisecond)
	}()

	p := newPoller(t, listener.Addr().String(), []config.PointConfig{
		{Name: "missing", Kind: "uint16", Address: 9000, Count: 1, Table: "holding"},
		{Name: "counters", Kind: "uint16", Address: 10, Count: 2, Table: "holding"},
	})
	defer p.Close()

	err = p.PollOnce(context.Background())
	errs := multierr.Errors(err)
	if len(errs) != 1 {
		t.Fatalf("Expected 1 error, got %v", err)
	}
	var exc *modbus.ExceptionError
	if !errors.As(errs[0], &exc) || exc.Code != modbus.ExceptionCodeIllegalDataAddress {
		t.Errorf("Expected address exception, got %v", errs[0])
	}
	if p.Image.HoldingRegisters[10] != 5 || p.Image.HoldingRegisters[11] != 6 {
		t.Errorf("Expected second point mirrored, got %d %d", p.Image.HoldingRegisters[10], p.Image.HoldingRegisters[11])
	}
}

func TestRunAll(t *testing.T) {
	s1, addr1 := startSlave(t)
	s1.HoldingRegisters[0] = 11
	s2, addr2 := startSlave(t)
	s2.HoldingRegisters[0] = 22

	points := []config.PointConfig{{Name: "value", Kind: "int16", Address: 0, Count: 1, Table: "holding"}}
	p1 := newPoller(t, addr1, points)
	p2 := newPoller(t, addr2, points)

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	if err := RunAll(ctx, []*Poller{p1, p2}); err != nil {
		t.Fatalf("RunAll failed: %v", err)
	}

	if p1.Image.HoldingRegisters[0] != 11 || p2.Image.HoldingRegisters[0] != 22 {
		t.Errorf("Unexpected mirrors: %d %d", p1.Image.HoldingRegisters[0], p2.Image.HoldingRegisters[0])
	}
}

func TestPointsFromConfig(t *testing.T) {
	points, err := PointsFromConfig([]config.PointConfig{
		{Name: "a", Kind: "double", Address: 10, Count: 2, Table: "holding"},
		{Name: "b", Kind: "bool", Address: 0, Count: 16, Table: "discrete"},
	})
	if err != nil {
		t.Fatal(err)
	}
	want := []Point{
		{Name: "a", Kind: client.KindFloat64, Address: 10, Count: 2, Table: mirror.TableHoldingRegisters},
		{Name: "b", Kind: client.KindBool, Address: 0, Count: 16, Table: mirror.TableDiscreteInputs},
	}
	if diff := cmp.Diff(want, points); diff != "" {
		t.Errorf("Points mismatch (-want +got):\n%s", diff)
	}

	if _, err := PointsFromConfig([]config.PointConfig{{Name: "c", Kind: "float64", Address: 65534, Count: 1}}); err == nil {
		t.Error("Expected out of range error")
	}
}
