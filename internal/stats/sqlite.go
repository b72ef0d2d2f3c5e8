package stats

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const execTimeout = 3 * time.Second

// SQLiteSink persists finished rounds to a local SQLite database.
type SQLiteSink struct {
	db *sql.DB
}

// NewSQLiteSink opens (and if needed creates) the stats database at the
// given path. ":memory:" is accepted for tests.
func NewSQLiteSink(dbPath string) (*SQLiteSink, error) {
	dbPath = strings.TrimSpace(dbPath)
	if dbPath == "" {
		return nil, fmt.Errorf("empty sqlite database path")
	}
	if dbPath != ":memory:" {
		if parent := filepath.Dir(dbPath); parent != "" && parent != "." {
			if err := os.MkdirAll(parent, 0o755); err != nil {
				return nil, err
			}
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, pragma := range []string{
		`PRAGMA busy_timeout = 5000;`,
		`PRAGMA journal_mode = WAL;`,
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := ensureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteSink{db: db}, nil
}

func ensureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS games (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    room_code     TEXT NOT NULL,
    session_id    TEXT NOT NULL UNIQUE,
    winner_id     TEXT,
    started_at_ms INTEGER NOT NULL,
    ended_at_ms   INTEGER NOT NULL,
    standings     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_games_room ON games (room_code);
`)
	return err
}

// Record implements Sink.
func (s *SQLiteSink) Record(rec GameRecord) error {
	standings, err := json.Marshal(rec.Standings)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), execTimeout)
	defer cancel()
	_, err = s.db.ExecContext(ctx, `
INSERT INTO games (room_code, session_id, winner_id, started_at_ms, ended_at_ms, standings)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT (session_id) DO NOTHING
`, rec.RoomCode, rec.SessionID, rec.WinnerID, rec.StartedAt.UnixMilli(), rec.EndedAt.UnixMilli(), string(standings))
	return err
}

// RoomGames returns the recorded rounds for a room, newest first.
func (s *SQLiteSink) RoomGames(ctx context.Context, roomCode string, limit int) ([]GameRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT room_code, session_id, winner_id, started_at_ms, ended_at_ms, standings
FROM games WHERE room_code = ? ORDER BY id DESC LIMIT ?
`, roomCode, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []GameRecord
	for rows.Next() {
		var (
			rec            GameRecord
			winner         sql.NullString
			startMs, endMs int64
			standings      string
		)
		if err := rows.Scan(&rec.RoomCode, &rec.SessionID, &winner, &startMs, &endMs, &standings); err != nil {
			return nil, err
		}
		rec.WinnerID = winner.String
		rec.StartedAt = time.UnixMilli(startMs)
		rec.EndedAt = time.UnixMilli(endMs)
		if err := json.Unmarshal([]byte(standings), &rec.Standings); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Close implements Sink.
func (s *SQLiteSink) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
