// Copyright 2024 Mike Carlton
// Released under terms of the MIT License:
//   http://www.opensource.org/licenses/mit-license.php

package main

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

var db *sql.DB

// initDatabase opens the SQLite database used to cache exchange rates. The
// latest rates are stored under the empty date key; historical rates under
// their YYYY-MM-DD date.
func initDatabase() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %v", err)
	}

	dataDir := filepath.Join(homeDir, "data")
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %v", err)
	}

	dbPath := filepath.Join(dataDir, "exchange-rates.sqlite3")
	db, err = sql.Open("sqlite3", dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %v", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS rates (
		date TEXT NOT NULL,
		code TEXT NOT NULL,
		rate REAL NOT NULL,
		base TEXT NOT NULL,
		timestamp INTEGER NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(date, code)
	);

	CREATE INDEX IF NOT EXISTS idx_rates_date ON rates(date);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %v", err)
	}

	return nil
}

// closeDatabase closes the database connection
func closeDatabase() {
	if db != nil {
		db.Close()
	}
}

// saveRates stores a full rate table for a date, replacing any previous
// snapshot for that date.
func saveRates(date string, rates *ExchangeRates) error {
	if db == nil {
		if err := initDatabase(); err != nil {
			return err
		}
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM rates WHERE date = ?`, date); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
	INSERT INTO rates (date, code, rate, base, timestamp)
	VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for code, rate := range rates.Rates {
		if _, err := stmt.Exec(date, code, rate, rates.Base, rates.Timestamp); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// loadRates retrieves a cached rate table for a date; nil without error
// means no snapshot exists.
func loadRates(date string) (*ExchangeRates, error) {
	if db == nil {
		if err := initDatabase(); err != nil {
			return nil, err
		}
	}

	rows, err := db.Query(`
	SELECT code, rate, base, timestamp
	FROM rates
	WHERE date = ?
	`, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rates := &ExchangeRates{Rates: map[string]float64{}}
	for rows.Next() {
		var code, base string
		var rate float64
		var timestamp int64
		if err := rows.Scan(&code, &rate, &base, &timestamp); err != nil {
			return nil, err
		}
		rates.Rates[code] = rate
		rates.Base = base
		rates.Timestamp = timestamp
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(rates.Rates) == 0 {
		return nil, nil
	}
	return rates, nil
}
