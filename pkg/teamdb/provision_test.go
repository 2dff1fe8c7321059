package teamdb

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "team.db")
	db, err := sql.Open("sqlite", "file:"+path+"?_time_format=sqlite&_pragma=foreign_keys(1)")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestEnsureSchemaCreatesTablesAndSeed(t *testing.T) {
	db := openTestDB(t)
	if err := EnsureSchema(context.Background(), db); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}

	for _, table := range []string{
		"positions", "players", "matches", "gameplay",
		"current_match", "match_events", "field_positions", "player_positions",
	} {
		var name string
		err := db.QueryRow(
			`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM positions`).Scan(&count); err != nil {
		t.Fatalf("count positions: %v", err)
	}
	if count != len(seedPositions) {
		t.Errorf("expected %d seeded positions, got %d", len(seedPositions), count)
	}

	var abbr string
	if err := db.QueryRow(`SELECT abbreviation FROM positions WHERE id = 1`).Scan(&abbr); err != nil {
		t.Fatalf("read seed row: %v", err)
	}
	if abbr != "GK" {
		t.Errorf("expected first seeded position GK, got %s", abbr)
	}

	if err := db.QueryRow(`SELECT COUNT(*) FROM field_positions`).Scan(&count); err != nil {
		t.Fatalf("count field positions: %v", err)
	}
	if count != len(seedFieldPositions) {
		t.Errorf("expected %d seeded field positions, got %d", len(seedFieldPositions), count)
	}
	var zone string
	if err := db.QueryRow(
		`SELECT zone FROM field_positions ORDER BY sort_order LIMIT 1`,
	).Scan(&zone); err != nil {
		t.Fatalf("read field position seed: %v", err)
	}
	if zone != "goalkeeper" {
		t.Errorf("expected goalkeeper zone first, got %s", zone)
	}
}

func TestEnsureSchemaIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := EnsureSchema(ctx, db); err != nil {
		t.Fatalf("first EnsureSchema: %v", err)
	}
	if err := EnsureSchema(ctx, db); err != nil {
		t.Fatalf("second EnsureSchema: %v", err)
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM positions`).Scan(&count); err != nil {
		t.Fatalf("count positions: %v", err)
	}
	if count != len(seedPositions) {
		t.Errorf("seed duplicated on re-provision: got %d rows", count)
	}
	if err := db.QueryRow(`SELECT COUNT(*) FROM field_positions`).Scan(&count); err != nil {
		t.Fatalf("count field positions: %v", err)
	}
	if count != len(seedFieldPositions) {
		t.Errorf("field position seed duplicated on re-provision: got %d rows", count)
	}
}

func TestEnsureSchemaKeepsExistingData(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := EnsureSchema(ctx, db); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	if _, err := db.Exec(
		`INSERT INTO players (name, position_id) VALUES (?, ?)`, "Kim", 2,
	); err != nil {
		t.Fatalf("insert player: %v", err)
	}

	if err := EnsureSchema(ctx, db); err != nil {
		t.Fatalf("re-provision: %v", err)
	}
	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM players`).Scan(&count); err != nil {
		t.Fatalf("count players: %v", err)
	}
	if count != 1 {
		t.Errorf("expected existing player untouched, got %d rows", count)
	}
}

func TestCascadeDeleteGameplay(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := EnsureSchema(ctx, db); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	if _, err := db.Exec(
		`INSERT INTO matches (date, opponent, home_game) VALUES (?, ?, ?)`,
		"2026-05-01 15:00:00", "Hammarby", true,
	); err != nil {
		t.Fatalf("insert match: %v", err)
	}
	if _, err := db.Exec(
		`INSERT INTO players (name, position_id) VALUES (?, ?)`, "Kim", 2,
	); err != nil {
		t.Fatalf("insert player: %v", err)
	}
	if _, err := db.Exec(
		`INSERT INTO gameplay (match_id, player_id, goals) VALUES (1, 1, 2)`,
	); err != nil {
		t.Fatalf("insert gameplay: %v", err)
	}

	if _, err := db.Exec(`DELETE FROM matches WHERE id = 1`); err != nil {
		t.Fatalf("delete match: %v", err)
	}
	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM gameplay`).Scan(&count); err != nil {
		t.Fatalf("count gameplay: %v", err)
	}
	if count != 0 {
		t.Errorf("expected gameplay rows cascade-deleted, got %d", count)
	}
}
