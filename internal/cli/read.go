// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package cli

import (
	"encoding/hex"
	"fmt"
	"io"
	"time"

	"github.com/ffutop/modbus-tcp-client/client"
	"github.com/ffutop/modbus-tcp-client/modbus"
	"github.com/ffutop/modbus-tcp-client/transport/tcp"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
)

// target selects the device of a one-shot command.
type target struct {
	device    string
	address   string
	station   uint8
	timeout   time.Duration
	wordOrder string
}

func (t *target) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&t.device, "device", "d", "", "Configured device to use")
	cmd.Flags().StringVarP(&t.address, "address", "a", "", "Device address host:port")
	cmd.Flags().Uint8VarP(&t.station, "station", "s", modbus.DefaultStation, "Unit identifier")
	cmd.Flags().DurationVar(&t.timeout, "timeout", 5*time.Second, "I/O timeout")
	cmd.Flags().StringVar(&t.wordOrder, "word-order", "", "low_word_first or high_word_first")
}

// client builds a client from the configured device, overridden by any
// flag given on the command line.
func (t *target) client(cmd *cobra.Command, o *options) (*client.Client, error) {
	conn := tcp.NewConn(t.address)
	conn.Timeout = t.timeout
	station := t.station
	order := t.wordOrder

	if t.device != "" {
		dev, err := o.cfg.Device(t.device)
		if err != nil {
			return nil, err
		}
		if !cmd.Flags().Changed("address") {
			conn.Address = dev.Address
		}
		if !cmd.Flags().Changed("station") {
			station = dev.StationID()
		}
		if !cmd.Flags().Changed("timeout") {
			conn.Timeout = dev.Timeout
		}
		if !cmd.Flags().Changed("word-order") {
			order = dev.WordOrder
		}
		conn.IdleTimeout = dev.IdleTimeout
	}
	if conn.Address == "" {
		return nil, fmt.Errorf("no device address, use --address or --device")
	}

	wo, err := modbus.ParseWordOrder(order)
	if err != nil {
		return nil, err
	}
	return client.New(conn, client.WithStation(station), client.WithWordOrder(wo)), nil
}

func newReadCmd(o *options) *cobra.Command {
	var t target
	cmd := &cobra.Command{
		Use:   "read <kind> <address> [count]",
		Short: "Read typed values from a device",
		Long: `Read count values of the given kind starting at address.

Kinds: bool (coils), int16, uint16, int32, uint32, float32, int64, uint64,
float64, string, bytes. For string and bytes count is a register count.`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := client.ParseKind(args[0])
			if err != nil {
				return err
			}
			address, err := cast.ToUint16E(args[1])
			if err != nil {
				return fmt.Errorf("invalid address %q: %w", args[1], err)
			}
			count := 1
			if len(args) == 3 {
				if count, err = cast.ToIntE(args[2]); err != nil {
					return fmt.Errorf("invalid count %q: %w", args[2], err)
				}
			}

			c, err := t.client(cmd, o)
			if err != nil {
				return err
			}
			defer c.Close()

			value, err := c.Read(cmd.Context(), kind, address, count)
			result := modbus.NewResult(value, err)
			if perr := o.print(cmd.OutOrStdout(), result, func(w io.Writer) error {
				return printValue(w, result)
			}); perr != nil {
				return perr
			}
			return err
		},
	}
	t.addFlags(cmd)
	return cmd
}

func printValue(w io.Writer, r modbus.Result[any]) error {
	if !r.Success {
		return nil
	}
	switch v := r.Content.(type) {
	case []byte:
		_, err := fmt.Fprintln(w, hex.EncodeToString(v))
		return err
	case []bool, []int16, []uint16, []int32, []uint32, []float32, []int64, []uint64, []float64:
		_, err := fmt.Fprintln(w, trimBrackets(fmt.Sprint(v)))
		return err
	default:
		_, err := fmt.Fprintln(w, v)
		return err
	}
}

func trimBrackets(s string) string {
	if len(s) >= 2 && s[0] == '[' && s[len(s)-1] == ']' {
		return s[1 : len(s)-1]
	}
	return s
}
