// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/ffutop/modbus-tcp-client/client"
	"github.com/ffutop/modbus-tcp-client/internal/mirror"
	"github.com/ffutop/modbus-tcp-client/internal/mirror/persistence"
	"github.com/ffutop/modbus-tcp-client/internal/poller"
	"github.com/ffutop/modbus-tcp-client/modbus"
	"github.com/spf13/cobra"
)

type pointValue struct {
	Name    string `json:"name" yaml:"name"`
	Kind    string `json:"kind" yaml:"kind"`
	Table   string `json:"table" yaml:"table"`
	Address uint16 `json:"address" yaml:"address"`
	Value   any    `json:"value" yaml:"value"`
}

func newDumpCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "dump <device>",
		Short: "Decode the points of a device from its persisted mirror",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dev, err := o.cfg.Device(args[0])
			if err != nil {
				return err
			}
			if dev.Mirror.Type == "memory" {
				return fmt.Errorf("device %q has no persistent mirror", dev.Name)
			}
			points, err := poller.PointsFromConfig(dev.Poll.Points)
			if err != nil {
				return err
			}

			storage := persistence.New(dev.Mirror)
			image, err := storage.Load()
			if err != nil {
				return fmt.Errorf("failed to load mirror: %w", err)
			}
			defer storage.Close()

			values, err := decodePoints(image, dev.Order(), points)
			result := modbus.NewResult(values, err)
			if perr := o.print(cmd.OutOrStdout(), result, func(w io.Writer) error {
				return printPoints(w, values)
			}); perr != nil {
				return perr
			}
			return err
		},
	}
}

func decodePoints(image *mirror.Image, order modbus.WordOrder, points []poller.Point) ([]pointValue, error) {
	values := make([]pointValue, 0, len(points))
	for _, pt := range points {
		n, err := pt.Span()
		if err != nil {
			return nil, err
		}

		var value any
		switch pt.Table {
		case mirror.TableCoils:
			value, err = image.LoadCoils(pt.Address, n)
		case mirror.TableDiscreteInputs:
			value, err = image.LoadDiscrete(pt.Address, n)
		default:
			var payload []byte
			if payload, err = image.LoadRegisters(pt.Address, n); err == nil {
				value, err = client.Decode(pt.Kind, order, payload, pt.Count)
			}
		}
		if err != nil {
			return nil, fmt.Errorf("point %q: %w", pt.Name, err)
		}
		values = append(values, pointValue{
			Name:    pt.Name,
			Kind:    pt.Kind.String(),
			Table:   pt.Table.String(),
			Address: pt.Address,
			Value:   value,
		})
	}
	return values, nil
}

func printPoints(w io.Writer, values []pointValue) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tKIND\tTABLE\tADDRESS\tVALUE")
	for _, v := range values {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%v\n", v.Name, v.Kind, v.Table, v.Address, v.Value)
	}
	return tw.Flush()
}
