// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/ffutop/modbus-tcp-client/client"
	"github.com/ffutop/modbus-tcp-client/modbus"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
)

func newWriteCmd(o *options) *cobra.Command {
	var t target
	cmd := &cobra.Command{
		Use:   "write <kind> <address> <value>...",
		Short: "Write typed values to a device",
		Long: `Write one or more values of the given kind starting at address.

A single bool is written with function 0x05, everything else with 0x0F or
0x10. String values are joined with spaces and written as ASCII.`,
		Args: cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := client.ParseKind(args[0])
			if err != nil {
				return err
			}
			address, err := cast.ToUint16E(args[1])
			if err != nil {
				return fmt.Errorf("invalid address %q: %w", args[1], err)
			}
			values, n, err := parseValues(kind, args[2:])
			if err != nil {
				return err
			}

			c, err := t.client(cmd, o)
			if err != nil {
				return err
			}
			defer c.Close()

			err = c.Write(cmd.Context(), kind, address, values)
			result := modbus.NewResult(n, err)
			if perr := o.print(cmd.OutOrStdout(), result, func(w io.Writer) error {
				if !result.Success {
					return nil
				}
				_, err := fmt.Fprintf(w, "wrote %d %s value(s) at %d\n", n, kind, address)
				return err
			}); perr != nil {
				return perr
			}
			return err
		},
	}
	t.addFlags(cmd)
	return cmd
}

// parseValues converts command line arguments into the value type Client.Write
// expects for kind. A single argument yields a scalar.
func parseValues(kind client.Kind, args []string) (any, int, error) {
	switch kind {
	case client.KindString:
		s := strings.Join(args, " ")
		return s, len(s), nil
	case client.KindBool:
		return convert(args, cast.ToBoolE)
	case client.KindInt16:
		return convert(args, cast.ToInt16E)
	case client.KindUint16:
		return convert(args, cast.ToUint16E)
	case client.KindInt32:
		return convert(args, cast.ToInt32E)
	case client.KindUint32:
		return convert(args, cast.ToUint32E)
	case client.KindFloat32:
		return convert(args, cast.ToFloat32E)
	case client.KindInt64:
		return convert(args, cast.ToInt64E)
	case client.KindUint64:
		return convert(args, cast.ToUint64E)
	case client.KindFloat64:
		return convert(args, cast.ToFloat64E)
	case client.KindBytes:
		b, n, err := convert(args, cast.ToUint8E)
		if err != nil {
			return nil, 0, err
		}
		if v, ok := b.(uint8); ok {
			return []byte{v}, n, nil
		}
		return b, n, nil
	}
	return nil, 0, fmt.Errorf("unsupported kind %s", kind)
}

func convert[T any](args []string, fn func(any) (T, error)) (any, int, error) {
	values := make([]T, len(args))
	for i, arg := range args {
		v, err := fn(arg)
		if err != nil {
			return nil, 0, fmt.Errorf("invalid value %q: %w", arg, err)
		}
		values[i] = v
	}
	if len(values) == 1 {
		return values[0], 1, nil
	}
	return values, len(values), nil
}
