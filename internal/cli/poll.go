// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package cli

import (
	"errors"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/ffutop/modbus-tcp-client/internal/poller"
	"github.com/spf13/cobra"
)

func newPollCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "poll",
		Short: "Poll the configured devices",
		Long: `Poll every configured device at its interval and record the values
in the device's register mirror until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var pollers []*poller.Poller
			for _, dev := range o.cfg.Devices {
				if len(dev.Poll.Points) == 0 {
					slog.Info("Device has no points, skipping", "device", dev.Name)
					continue
				}
				p, err := poller.NewFromConfig(dev)
				if err != nil {
					slog.Error("Failed to create poller", "device", dev.Name, "err", err)
					continue
				}
				pollers = append(pollers, p)
			}
			if len(pollers) == 0 {
				return errors.New("no valid devices configured")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			slog.Info("Starting Modbus TCP poller...", "devices", len(pollers))
			err := poller.RunAll(ctx, pollers)
			slog.Info("Goodbye.")
			return err
		},
	}
}
