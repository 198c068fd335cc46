// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package cli implements the mbtcp command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/ffutop/modbus-tcp-client/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type options struct {
	cfgFile  string
	logLevel string
	output   string

	cfg *config.Config
}

// NewRootCommand builds the mbtcp command tree.
func NewRootCommand() *cobra.Command {
	o := &options{}

	rootCmd := &cobra.Command{
		Use:   "mbtcp",
		Short: "Modbus TCP client",
		Long: `mbtcp reads and writes coils and registers of Modbus TCP devices.

Commands:
  read   - read typed values from a device
  write  - write typed values to a device
  poll   - poll the configured devices into their register mirrors
  dump   - decode the points of a device from its persisted mirror`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return o.load(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&o.cfgFile, "config", "", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&o.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
	rootCmd.PersistentFlags().StringVarP(&o.output, "output", "o", "text", "Output format: text, json, yaml")

	rootCmd.AddCommand(
		newReadCmd(o),
		newWriteCmd(o),
		newPollCmd(o),
		newDumpCmd(o),
	)
	return rootCmd
}

// Execute runs the command line with os.Args.
func Execute() error {
	err := NewRootCommand().Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return err
}

func (o *options) load(cmd *cobra.Command) error {
	switch o.output {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("unknown output format %q", o.output)
	}

	cfg, err := config.LoadConfig(o.cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = o.logLevel
	}
	setupLogger(cfg.Log, cmd.ErrOrStderr())
	o.cfg = cfg
	return nil
}

// print writes v in the selected output format. text renders v with
// format.
func (o *options) print(w io.Writer, v any, text func(io.Writer) error) error {
	switch o.output {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return text(w)
	}
}

func setupLogger(cfg config.LogConfig, stderr io.Writer) {
	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}
	switch cfg.Level {
	case "debug":
		opts.Level = slog.LevelDebug
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	}

	var handler slog.Handler
	if cfg.File != "" && cfg.File != "-" {
		f, err := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to open log file, falling back to stderr: %v\n", err)
			handler = slog.NewTextHandler(stderr, opts)
		} else {
			handler = slog.NewTextHandler(f, opts)
		}
	} else {
		handler = slog.NewTextHandler(stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
