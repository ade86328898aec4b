package storage

import (
	"database/sql"
	"fmt"
)

// RecordNewSession asynchronously records a new session
func (s *Store) RecordNewSession(record SessionRecord) error {
	return s.enqueue("session record", func(tx *sql.Tx) error {
		query := `INSERT INTO sessions (
			session_id, initial_fen, user_color, difficulty, start_time_utc
		) VALUES (?, ?, ?, ?, ?)`

		_, err := tx.Exec(query,
			record.SessionID, record.InitialFEN, record.UserColor,
			record.Difficulty, record.StartTimeUTC,
		)
		return err
	})
}

// UpdateSessionChoices asynchronously stores the chosen color and difficulty
func (s *Store) UpdateSessionChoices(sessionID, userColor, difficulty string) error {
	return s.enqueue("session update", func(tx *sql.Tx) error {
		query := `UPDATE sessions SET user_color = ?, difficulty = ? WHERE session_id = ?`
		_, err := tx.Exec(query, userColor, difficulty, sessionID)
		return err
	})
}

// RecordMove asynchronously records a move
func (s *Store) RecordMove(record MoveRecord) error {
	return s.enqueue("move record", func(tx *sql.Tx) error {
		query := `INSERT INTO moves (
			session_id, ply, move_uci, description, captured, fen_after_move, player_color, move_time_utc
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

		_, err := tx.Exec(query,
			record.SessionID, record.Ply, record.MoveUCI, record.Description,
			record.Captured, record.FENAfterMove, record.PlayerColor, record.MoveTimeUTC,
		)
		return err
	})
}

// DeleteUndoneMoves asynchronously deletes moves after undo
func (s *Store) DeleteUndoneMoves(sessionID string, afterPly int) error {
	return s.enqueue("undo operation", func(tx *sql.Tx) error {
		query := `DELETE FROM moves WHERE session_id = ? AND ply > ?`
		_, err := tx.Exec(query, sessionID, afterPly)
		return err
	})
}

// DeleteSession asynchronously removes a session and its moves
func (s *Store) DeleteSession(sessionID string) error {
	return s.enqueue("session delete", func(tx *sql.Tx) error {
		_, err := tx.Exec(`DELETE FROM sessions WHERE session_id = ?`, sessionID)
		return err
	})
}

// QuerySessions retrieves sessions, optionally filtered by ID ("*" for all)
func (s *Store) QuerySessions(sessionID string) ([]SessionRecord, error) {
	query := `SELECT session_id, initial_fen, user_color, difficulty, start_time_utc
	FROM sessions WHERE 1=1`

	var args []interface{}
	if sessionID != "" && sessionID != "*" {
		query += " AND session_id = ?"
		args = append(args, sessionID)
	}
	query += " ORDER BY start_time_utc DESC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var sessions []SessionRecord
	for rows.Next() {
		var r SessionRecord
		if err := rows.Scan(&r.SessionID, &r.InitialFEN, &r.UserColor, &r.Difficulty, &r.StartTimeUTC); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		sessions = append(sessions, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}
	return sessions, nil
}

// QueryMoves retrieves the moves of one session in play order
func (s *Store) QueryMoves(sessionID string) ([]MoveRecord, error) {
	query := `SELECT move_id, session_id, ply, move_uci, description, captured,
		fen_after_move, player_color, move_time_utc
	FROM moves WHERE session_id = ? ORDER BY ply`

	rows, err := s.db.Query(query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var moves []MoveRecord
	for rows.Next() {
		var m MoveRecord
		err := rows.Scan(
			&m.MoveID, &m.SessionID, &m.Ply, &m.MoveUCI, &m.Description, &m.Captured,
			&m.FENAfterMove, &m.PlayerColor, &m.MoveTimeUTC,
		)
		if err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		moves = append(moves, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}
	return moves, nil
}
