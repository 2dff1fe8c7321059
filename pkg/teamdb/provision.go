package teamdb

import (
	"context"
	"database/sql"
	"fmt"
)

// schemaStatements creates the team database structure. Every statement
// is a no-op when the table already exists, so EnsureSchema can run on
// every fresh handle without tracking provisioning state anywhere.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS positions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		abbreviation TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS players (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		position_id INTEGER NOT NULL,
		notes TEXT,
		FOREIGN KEY (position_id) REFERENCES positions(id)
	)`,
	`CREATE TABLE IF NOT EXISTS matches (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		date DATETIME NOT NULL,
		opponent TEXT NOT NULL,
		home_game BOOLEAN NOT NULL,
		result TEXT,
		notes TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS gameplay (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		match_id INTEGER NOT NULL,
		player_id INTEGER NOT NULL,
		minutes_played INTEGER,
		goals INTEGER NOT NULL DEFAULT 0,
		assists INTEGER NOT NULL DEFAULT 0,
		yellow_cards INTEGER NOT NULL DEFAULT 0,
		red_cards INTEGER NOT NULL DEFAULT 0,
		rating REAL,
		notes TEXT,
		FOREIGN KEY (match_id) REFERENCES matches(id) ON DELETE CASCADE,
		FOREIGN KEY (player_id) REFERENCES players(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS current_match (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		match_id INTEGER NOT NULL,
		status TEXT NOT NULL DEFAULT 'setup',
		match_start_time DATETIME,
		first_half_start_time DATETIME,
		second_half_start_time DATETIME,
		last_pause_time DATETIME,
		first_half_duration_seconds INTEGER NOT NULL DEFAULT 0,
		second_half_duration_seconds INTEGER NOT NULL DEFAULT 0,
		total_pause_seconds INTEGER NOT NULL DEFAULT 0,
		home_score INTEGER NOT NULL DEFAULT 0,
		away_score INTEGER NOT NULL DEFAULT 0,
		formation TEXT,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		FOREIGN KEY (match_id) REFERENCES matches(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS match_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		current_match_id INTEGER NOT NULL,
		event_type TEXT NOT NULL,
		player_id INTEGER,
		player_out_id INTEGER,
		player_in_id INTEGER,
		field_position_id INTEGER,
		match_minute INTEGER NOT NULL DEFAULT 0,
		match_second INTEGER NOT NULL DEFAULT 0,
		notes TEXT,
		event_time DATETIME NOT NULL,
		FOREIGN KEY (current_match_id) REFERENCES current_match(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS field_positions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		abbreviation TEXT NOT NULL,
		zone TEXT NOT NULL,
		sort_order INTEGER NOT NULL DEFAULT 0,
		description TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS player_positions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		current_match_id INTEGER NOT NULL,
		player_id INTEGER NOT NULL,
		field_position_id INTEGER NOT NULL,
		start_time DATETIME,
		end_time DATETIME,
		is_starting BOOLEAN NOT NULL DEFAULT 0,
		is_active BOOLEAN NOT NULL DEFAULT 1,
		FOREIGN KEY (current_match_id) REFERENCES current_match(id) ON DELETE CASCADE,
		FOREIGN KEY (player_id) REFERENCES players(id) ON DELETE CASCADE,
		FOREIGN KEY (field_position_id) REFERENCES field_positions(id) ON DELETE CASCADE
	)`,
}

// seedPositions is the baseline position set every new team starts with.
var seedPositions = []struct {
	name, abbreviation string
}{
	{"Målvakt", "GK"},
	{"Försvarare", "DEF"},
	{"Mittfältare", "MID"},
	{"Anfallare", "FWD"},
}

// seedFieldPositions is the baseline pitch layout, ordered goal line
// outward.
var seedFieldPositions = []struct {
	name, abbreviation, zone string
	sortOrder                int
}{
	{"Målvakt", "MV", "goalkeeper", 1},
	{"Högerback", "HB", "defense", 2},
	{"Mittback", "MB", "defense", 3},
	{"Vänsterback", "VB", "defense", 4},
	{"Höger mittfält", "HM", "midfield", 5},
	{"Centralt mittfält", "CM", "midfield", 6},
	{"Vänster mittfält", "VM", "midfield", 7},
	{"Anfallare", "ANF", "attack", 8},
}

// EnsureSchema provisions a team database: creates missing tables and, if
// the positions or field_positions tables are empty, inserts the baseline
// rows. Safe to call repeatedly; a second run changes nothing. Any DDL
// failure aborts the whole call so a half-provisioned handle is never
// cached.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	if err := seedPositionsTable(ctx, db); err != nil {
		return err
	}
	return seedFieldPositionsTable(ctx, db)
}

func seedPositionsTable(ctx context.Context, db *sql.DB) error {
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM positions`).Scan(&count); err != nil {
		return fmt.Errorf("check positions: %w", err)
	}
	if count > 0 {
		return nil
	}
	for _, p := range seedPositions {
		if _, err := db.ExecContext(ctx,
			`INSERT INTO positions (name, abbreviation) VALUES (?, ?)`,
			p.name, p.abbreviation,
		); err != nil {
			return fmt.Errorf("seed positions: %w", err)
		}
	}
	return nil
}

func seedFieldPositionsTable(ctx context.Context, db *sql.DB) error {
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM field_positions`).Scan(&count); err != nil {
		return fmt.Errorf("check field positions: %w", err)
	}
	if count > 0 {
		return nil
	}
	for _, fp := range seedFieldPositions {
		if _, err := db.ExecContext(ctx,
			`INSERT INTO field_positions (name, abbreviation, zone, sort_order) VALUES (?, ?, ?, ?)`,
			fp.name, fp.abbreviation, fp.zone, fp.sortOrder,
		); err != nil {
			return fmt.Errorf("seed field positions: %w", err)
		}
	}
	return nil
}
