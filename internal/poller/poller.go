// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package poller reads configured points from devices at a fixed interval
// and records them in a register mirror.
package poller

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ffutop/modbus-tcp-client/client"
	"github.com/ffutop/modbus-tcp-client/internal/config"
	"github.com/ffutop/modbus-tcp-client/internal/mirror"
	"github.com/ffutop/modbus-tcp-client/internal/mirror/persistence"
	"github.com/ffutop/modbus-tcp-client/transport/tcp"
	"github.com/sourcegraph/conc"
	"go.uber.org/multierr"
)

// Point is one polled value.
type Point struct {
	Name    string
	Kind    client.Kind
	Address uint16
	Count   int
	Table   mirror.Table
}

// Span returns the number of coils or registers the point occupies.
func (p Point) Span() (uint16, error) {
	n := p.Count
	if !p.Kind.IsCoil() {
		n *= int(p.Kind.Registers())
	}
	if n <= 0 || int(p.Address)+n > mirror.MaxAddress+1 {
		return 0, fmt.Errorf("point %q: %d cells at %d out of range", p.Name, n, p.Address)
	}
	return uint16(n), nil
}

// PointsFromConfig converts configured points.
func PointsFromConfig(cfgs []config.PointConfig) ([]Point, error) {
	points := make([]Point, 0, len(cfgs))
	for _, pc := range cfgs {
		kind, err := client.ParseKind(pc.Kind)
		if err != nil {
			return nil, err
		}
		table, err := mirror.ParseTable(pc.Table)
		if err != nil {
			return nil, err
		}
		if kind.IsCoil() != (table != mirror.TableHoldingRegisters) {
			return nil, fmt.Errorf("point %q: kind %s does not fit table %s", pc.Name, kind, table)
		}
		p := Point{Name: pc.Name, Kind: kind, Address: pc.Address, Count: pc.Count, Table: table}
		if _, err := p.Span(); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, nil
}

// Poller polls one device.
type Poller struct {
	Name     string
	Client   *client.Client
	Image    *mirror.Image
	Storage  persistence.Storage
	Points   []Point
	Interval time.Duration
}

// NewFromConfig creates a Poller with its client and opens its mirror.
func NewFromConfig(dev config.DeviceConfig) (*Poller, error) {
	points, err := PointsFromConfig(dev.Poll.Points)
	if err != nil {
		return nil, fmt.Errorf("device %q: %w", dev.Name, err)
	}

	conn := tcp.NewConn(dev.Address)
	conn.Timeout = dev.Timeout
	conn.IdleTimeout = dev.IdleTimeout
	c := client.New(conn, client.WithStation(dev.StationID()), client.WithWordOrder(dev.Order()))

	storage, image := persistence.Open(dev.Mirror)
	return &Poller{
		Name:     dev.Name,
		Client:   c,
		Image:    image,
		Storage:  storage,
		Points:   points,
		Interval: dev.Poll.Interval,
	}, nil
}

// Run polls until ctx is done. A failed cycle is logged and the next one
// runs on schedule.
func (p *Poller) Run(ctx context.Context) error {
	slog.Info("Starting poller", "device", p.Name, "client", p.Client, "points", len(p.Points), "interval", p.Interval)

	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()

	for {
		if err := p.PollOnce(ctx); err != nil && ctx.Err() == nil {
			slog.Warn("Poll cycle incomplete", "device", p.Name, "err", err)
		}

		select {
		case <-ctx.Done():
			return p.Close()
		case <-ticker.C:
		}
	}
}

// PollOnce reads every point once. A failed point does not stop the cycle;
// the errors of all failed points are combined.
func (p *Poller) PollOnce(ctx context.Context) error {
	var errs error
	for _, pt := range p.Points {
		if err := ctx.Err(); err != nil {
			return multierr.Append(errs, err)
		}
		if err := p.poll(ctx, pt); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("point %q: %w", pt.Name, err))
		}
	}
	return errs
}

func (p *Poller) poll(ctx context.Context, pt Point) error {
	n, err := pt.Span()
	if err != nil {
		return err
	}

	var payload []byte
	switch pt.Table {
	case mirror.TableCoils:
		payload, err = p.Client.ReadCoil(ctx, pt.Address, n)
	case mirror.TableDiscreteInputs:
		payload, err = p.Client.ReadDiscrete(ctx, pt.Address, n)
	default:
		payload, err = p.Client.ReadRegister(ctx, pt.Address, n)
	}
	if err != nil {
		return err
	}

	value, err := client.Decode(pt.Kind, p.Client.WordOrder(), payload, pt.Count)
	if err != nil {
		return err
	}

	switch pt.Table {
	case mirror.TableCoils:
		err = p.Image.StoreCoils(pt.Address, value.([]bool))
	case mirror.TableDiscreteInputs:
		err = p.Image.StoreDiscrete(pt.Address, value.([]bool))
	default:
		err = p.Image.StoreRegisters(pt.Address, payload[:int(n)*2])
	}
	if err != nil {
		return err
	}
	p.Storage.OnWrite(pt.Table, pt.Address, n)

	slog.Debug("Polled point", "device", p.Name, "point", pt.Name, "kind", pt.Kind, "value", value)
	return nil
}

// Close saves the mirror and closes the client and the storage.
func (p *Poller) Close() error {
	return multierr.Combine(
		p.Storage.Save(p.Image),
		p.Client.Close(),
		p.Storage.Close(),
	)
}

// RunAll runs every poller until ctx is done and combines their errors.
func RunAll(ctx context.Context, pollers []*Poller) error {
	var (
		wg   conc.WaitGroup
		mu   sync.Mutex
		errs error
	)
	for _, p := range pollers {
		p := p
		wg.Go(func() {
			if err := p.Run(ctx); err != nil {
				slog.Error("Poller stopped with error", "device", p.Name, "err", err)
				mu.Lock()
				errs = multierr.Append(errs, fmt.Errorf("device %q: %w", p.Name, err))
				mu.Unlock()
			}
		})
	}
	wg.Wait()
	return errs
}
