// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package main

import (
	"os"

	"github.com/ffutop/modbus-tcp-client/internal/cli"
	_ "github.com/mattn/go-sqlite3" // driver for the sql mirror
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
