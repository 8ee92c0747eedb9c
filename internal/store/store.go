// Package store provides SQLite-based persistence for finished game
// results and their per-player stat series.
package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/maroulf/gridlords/internal/event"
)

// DB wraps a SQLite connection for game result persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS games (
		id TEXT PRIMARY KEY,
		finished_at INTEGER NOT NULL,
		aborted INTEGER NOT NULL,
		ranking_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS game_stats (
		game_id TEXT NOT NULL REFERENCES games(id),
		player TEXT NOT NULL,
		placement INTEGER NOT NULL,
		series_json TEXT NOT NULL,
		PRIMARY KEY (game_id, player)
	);

	CREATE INDEX IF NOT EXISTS idx_games_finished ON games(finished_at);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// GameRecord is one finished game as read back from the store.
type GameRecord struct {
	ID         string          `db:"id" json:"id"`
	FinishedAt int64           `db:"finished_at" json:"finished_at"`
	Aborted    bool            `db:"aborted" json:"aborted"`
	Ranking    []event.Profile `db:"-" json:"ranking"`

	RankingJSON string `db:"ranking_json" json:"-"`
}

// SaveResult persists a finished game with its ranking and stats.
func (db *DB) SaveResult(gameID string, result event.Result, aborted bool) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	rankingJSON, _ := json.Marshal(result.Ranking)

	abortedInt := 0
	if aborted {
		abortedInt = 1
	}

	_, err = tx.Exec(
		"INSERT OR REPLACE INTO games (id, finished_at, aborted, ranking_json) VALUES (?, ?, ?, ?)",
		gameID, time.Now().Unix(), abortedInt, string(rankingJSON),
	)
	if err != nil {
		return fmt.Errorf("insert game %s: %w", gameID, err)
	}

	rankOf := make(map[string]int, len(result.Ranking))
	for i, p := range result.Ranking {
		rankOf[p.ID] = i + 1
	}

	for _, stats := range result.Stats {
		seriesJSON, _ := json.Marshal(stats)
		_, err := tx.Exec(
			"INSERT OR REPLACE INTO game_stats (game_id, player, placement, series_json) VALUES (?, ?, ?, ?)",
			gameID, stats.Player, rankOf[stats.Player], string(seriesJSON),
		)
		if err != nil {
			return fmt.Errorf("insert stats for %s: %w", stats.Player, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	slog.Info("game result saved", "game", gameID, "aborted", aborted)
	return nil
}

// Game returns a finished game by id.
func (db *DB) Game(gameID string) (*GameRecord, error) {
	var rec GameRecord
	err := db.conn.Get(&rec,
		"SELECT id, finished_at, aborted, ranking_json FROM games WHERE id = ?", gameID)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(rec.RankingJSON), &rec.Ranking); err != nil {
		return nil, fmt.Errorf("decode ranking for %s: %w", gameID, err)
	}
	return &rec, nil
}

// PlayerStats returns the recorded series of one player in one game.
func (db *DB) PlayerStats(gameID, player string) (event.PlayerStats, error) {
	var raw string
	err := db.conn.Get(&raw,
		"SELECT series_json FROM game_stats WHERE game_id = ? AND player = ?",
		gameID, player)
	if err != nil {
		return event.PlayerStats{}, err
	}
	var stats event.PlayerStats
	if err := json.Unmarshal([]byte(raw), &stats); err != nil {
		return event.PlayerStats{}, fmt.Errorf("decode stats for %s: %w", player, err)
	}
	return stats, nil
}

// RecentGames returns the most recently finished games.
func (db *DB) RecentGames(limit int) ([]GameRecord, error) {
	var recs []GameRecord
	err := db.conn.Select(&recs,
		"SELECT id, finished_at, aborted, ranking_json FROM games ORDER BY finished_at DESC LIMIT ?",
		limit)
	if err != nil {
		return nil, err
	}
	for i := range recs {
		if err := json.Unmarshal([]byte(recs[i].RankingJSON), &recs[i].Ranking); err != nil {
			return nil, fmt.Errorf("decode ranking for %s: %w", recs[i].ID, err)
		}
	}
	return recs, nil
}

// WinCounts returns how many non-aborted games each player has won.
func (db *DB) WinCounts() (map[string]int, error) {
	rows, err := db.conn.Queryx(
		"SELECT s.player, COUNT(*) FROM game_stats s JOIN games g ON g.id = s.game_id WHERE s.placement = 1 AND g.aborted = 0 GROUP BY s.player")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var player string
		var n int
		if err := rows.Scan(&player, &n); err != nil {
			return nil, err
		}
		out[player] = n
	}
	return out, rows.Err()
}
