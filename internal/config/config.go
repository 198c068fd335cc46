// Copyright (c) 2025-2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ffutop/modbus-tcp-client/client"
	"github.com/ffutop/modbus-tcp-client/modbus"
	"github.com/spf13/viper"
)

const (
	defaultTimeout      = 10 * time.Second
	defaultIdleTimeout  = 60 * time.Second
	defaultPollInterval = time.Second
)

// Config defines the global configuration structure
type Config struct {
	Log     LogConfig      `mapstructure:"log"`
	Devices []DeviceConfig `mapstructure:"devices"`
}

// LogConfig defines logging configuration
type LogConfig struct {
	Level string `mapstructure:"level"` // debug, info, warn, error
	File  string `mapstructure:"file"`  // Log file path
}

// DeviceConfig defines one Modbus TCP slave the tool talks to
type DeviceConfig struct {
	Name        string        `mapstructure:"name"`
	Address     string        `mapstructure:"address"` // e.g. "192.168.1.10:502"
	Station     *uint8        `mapstructure:"station"` // Unit identifier, 255 if unset
	Timeout     time.Duration `mapstructure:"timeout"`
	IdleTimeout time.Duration `mapstructure:"idle_timeout"`
	WordOrder   string        `mapstructure:"word_order"` // "low_word_first", "high_word_first"
	Poll        PollConfig    `mapstructure:"poll"`
	Mirror      MirrorConfig  `mapstructure:"mirror"`
}

// PollConfig defines the cyclic read of a device
type PollConfig struct {
	Interval time.Duration `mapstructure:"interval"`
	Points   []PointConfig `mapstructure:"points"`
}

// PointConfig defines one polled value
type PointConfig struct {
	Name    string `mapstructure:"name"`
	Kind    string `mapstructure:"kind"` // bool, int16, ..., float64, string
	Address uint16 `mapstructure:"address"`
	Count   int    `mapstructure:"count"` // elements, registers for string/bytes
	Table   string `mapstructure:"table"` // "holding", "coil", "discrete"
}

// MirrorConfig defines where the polled register image is kept
type MirrorConfig struct {
	Type string `mapstructure:"type"` // "memory", "file", "mmap", "sql"
	Path string `mapstructure:"path"` // File path for "file/mmap/sql" type
}

// StationID returns the configured unit identifier.
func (d *DeviceConfig) StationID() byte {
	if d.Station == nil {
		return modbus.DefaultStation
	}
	return *d.Station
}

// Order returns the parsed word order.
func (d *DeviceConfig) Order() modbus.WordOrder {
	o, _ := modbus.ParseWordOrder(d.WordOrder)
	return o
}

// Device looks a device up by name.
func (c *Config) Device(name string) (*DeviceConfig, error) {
	for i := range c.Devices {
		if c.Devices[i].Name == name {
			return &c.Devices[i], nil
		}
	}
	return nil, fmt.Errorf("device %q not configured", name)
}

// LoadConfig loads configuration from file. Without an explicit file a
// missing config yields the defaults.
func LoadConfig(configFile string) (*Config, error) {
	v := viper.New()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/mbtcp/")
		v.AddConfigPath("$HOME/.mbtcp")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("MBTCP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate / Fixups
	seen := make(map[string]bool)
	for i := range config.Devices {
		dev := &config.Devices[i]
		if dev.Name == "" {
			dev.Name = fmt.Sprintf("device%d", i)
		}
		if seen[dev.Name] {
			return nil, fmt.Errorf("duplicate device name %q", dev.Name)
		}
		seen[dev.Name] = true

		if err := fixupDevice(dev); err != nil {
			return nil, fmt.Errorf("device %q: %w", dev.Name, err)
		}
	}

	return &config, nil
}

func fixupDevice(d *DeviceConfig) error {
	if d.Address == "" {
		return errors.New("missing address")
	}
	if d.Timeout == 0 {
		d.Timeout = defaultTimeout
	}
	if d.IdleTimeout == 0 {
		d.IdleTimeout = defaultIdleTimeout
	}
	if _, err := modbus.ParseWordOrder(d.WordOrder); err != nil {
		return err
	}
	if d.Poll.Interval == 0 {
		d.Poll.Interval = defaultPollInterval
	}
	d.Mirror.Type = strings.ToLower(d.Mirror.Type)
	if d.Mirror.Type == "" {
		d.Mirror.Type = "memory"
	}

	for i := range d.Poll.Points {
		if err := fixupPoint(&d.Poll.Points[i], i); err != nil {
			return err
		}
	}
	return nil
}

func fixupPoint(p *PointConfig, index int) error {
	kind, err := client.ParseKind(p.Kind)
	if err != nil {
		return fmt.Errorf("point %d: %w", index, err)
	}
	if p.Name == "" {
		p.Name = fmt.Sprintf("%s@%d", kind, p.Address)
	}
	if p.Count <= 0 {
		p.Count = 1
	}

	p.Table = strings.ToLower(p.Table)
	switch p.Table {
	case "":
		p.Table = "holding"
		if kind.IsCoil() {
			p.Table = "coil"
		}
	case "coil", "discrete":
		if !kind.IsCoil() {
			return fmt.Errorf("point %q: kind %s cannot live in %s table", p.Name, kind, p.Table)
		}
	case "holding":
		if kind.IsCoil() {
			return fmt.Errorf("point %q: bool points need a coil or discrete table", p.Name)
		}
	default:
		return fmt.Errorf("point %q: unknown table %q", p.Name, p.Table)
	}
	return nil
}
