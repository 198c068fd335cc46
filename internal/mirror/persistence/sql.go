// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package persistence

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/ffutop/modbus-tcp-client/internal/mirror"
	"go.uber.org/multierr"
)

const upsertCell = "INSERT INTO mirror_cells (table_type, address, value) VALUES (?, ?, ?) " +
	"ON CONFLICT(table_type, address) DO UPDATE SET value=excluded.value"

// SQLStorage keeps one row per written cell in table `mirror_cells`.
type SQLStorage struct {
	driver string
	dsn    string
	db     *sql.DB
	image  *mirror.Image
}

// NewSQLStorage creates a new SQLStorage.
// The driver (e.g. sqlite3) must be imported by the main package.
func NewSQLStorage(driver, dsn string) *SQLStorage {
	return &SQLStorage{
		driver: driver,
		dsn:    dsn,
	}
}

// Load connects to the DB and loads the image.
func (s *SQLStorage) Load() (*mirror.Image, error) {
	db, err := sql.Open(s.driver, s.dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}

	m := mirror.NewImage()
	rows, err := db.Query("SELECT table_type, address, value FROM mirror_cells")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to query cells: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var t, addr, val int
		if err := rows.Scan(&t, &addr, &val); err != nil {
			continue
		}
		if addr < 0 || addr > mirror.MaxAddress {
			continue
		}
		m.SetCell(mirror.Table(t), addr, uint16(val))
	}
	if err := rows.Err(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to read cells: %w", err)
	}

	s.db = db
	s.image = m
	return m, nil
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS mirror_cells (
		table_type INTEGER,
		address INTEGER,
		value INTEGER,
		PRIMARY KEY (table_type, address)
	);
	`)
	return err
}

// Save is a no-op; OnWrite keeps the table current.
func (s *SQLStorage) Save(image *mirror.Image) error {
	return nil
}

// OnWrite upserts the changed cells in one transaction.
func (s *SQLStorage) OnWrite(table mirror.Table, address, quantity uint16) {
	if s.db == nil || s.image == nil {
		return
	}
	if err := s.persist(table, address, quantity); err != nil {
		slog.Error("Failed to persist cells", "table", table, "addr", address, "quantity", quantity, "err", err)
	}
}

func (s *SQLStorage) persist(table mirror.Table, address, quantity uint16) (err error) {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			err = multierr.Append(err, tx.Rollback())
		}
	}()

	stmt, err := tx.Prepare(upsertCell)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := 0; i < int(quantity); i++ {
		addr := int(address) + i
		if addr > mirror.MaxAddress {
			break
		}
		if _, err = stmt.Exec(int(table), addr, int64(s.image.Cell(table, addr))); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLStorage) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
