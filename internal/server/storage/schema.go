package storage

import "time"

// SessionRecord represents a row in the sessions table
type SessionRecord struct {
	SessionID    string    `db:"session_id"`
	InitialFEN   string    `db:"initial_fen"`
	UserColor    string    `db:"user_color"` // "w", "b" or "-" until chosen
	Difficulty   string    `db:"difficulty"` // "easy", "medium", "hard" or "unset"
	StartTimeUTC time.Time `db:"start_time_utc"`
}

// MoveRecord represents a row in the moves table
type MoveRecord struct {
	MoveID       int64     `db:"move_id"`
	SessionID    string    `db:"session_id"`
	Ply          int       `db:"ply"`
	MoveUCI      string    `db:"move_uci"`
	Description  string    `db:"description"`
	Captured     string    `db:"captured"`
	FENAfterMove string    `db:"fen_after_move"`
	PlayerColor  string    `db:"player_color"`
	MoveTimeUTC  time.Time `db:"move_time_utc"`
}

// Schema defines the SQLite database structure
const Schema = `
CREATE TABLE IF NOT EXISTS sessions (
	session_id TEXT PRIMARY KEY,
	initial_fen TEXT NOT NULL,
	user_color TEXT NOT NULL DEFAULT '-' CHECK(user_color IN ('w', 'b', '-')),
	difficulty TEXT NOT NULL DEFAULT 'unset',
	start_time_utc DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS moves (
	move_id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT NOT NULL,
	ply INTEGER NOT NULL,
	move_uci TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	captured TEXT NOT NULL DEFAULT '',
	fen_after_move TEXT NOT NULL,
	player_color TEXT NOT NULL CHECK(player_color IN ('w', 'b')),
	move_time_utc DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (session_id) REFERENCES sessions(session_id) ON DELETE CASCADE,
	UNIQUE(session_id, ply)
);

CREATE INDEX IF NOT EXISTS idx_moves_session_id ON moves(session_id);
CREATE INDEX IF NOT EXISTS idx_sessions_start_time ON sessions(start_time_utc);
`
