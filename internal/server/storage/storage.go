package storage

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const (
	writeQueueSize = 1000
	drainTimeout   = 2 * time.Second
)

// write is one queued transaction, named for log lines
type write struct {
	what string
	fn   func(*sql.Tx) error
}

// Store persists sessions and their moves in SQLite. Writes are queued to a
// single writer goroutine. After a failed write the store is degraded and all
// later writes are skipped.
type Store struct {
	db      *sql.DB
	path    string
	writes  chan write
	healthy atomic.Bool
	dropped atomic.Int64
	done    chan struct{}
	stop    chan struct{}
	once    sync.Once
}

// NewStore opens the database at path and starts the writer. WAL lets the
// admin CLI query a database the server is writing to.
func NewStore(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}

	// One writer plus a few concurrent readers
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)

	s := &Store{
		db:     db,
		path:   path,
		writes: make(chan write, writeQueueSize),
		done:   make(chan struct{}),
		stop:   make(chan struct{}),
	}
	s.healthy.Store(true)

	go s.writerLoop()
	return s, nil
}

// IsHealthy reports whether every write so far has committed
func (s *Store) IsHealthy() bool {
	return s.healthy.Load()
}

// Dropped is the number of writes skipped because the store was degraded or
// the queue was full
func (s *Store) Dropped() int64 {
	return s.dropped.Load()
}

// enqueue hands a write to the writer, dropping it when degraded or full
func (s *Store) enqueue(what string, fn func(*sql.Tx) error) error {
	if !s.healthy.Load() {
		s.dropped.Add(1)
		return nil
	}

	select {
	case s.writes <- write{what: what, fn: fn}:
	default:
		s.dropped.Add(1)
		log.Printf("Storage write queue full, dropping %s", what)
	}
	return nil
}

func (s *Store) writerLoop() {
	defer close(s.done)

	for {
		select {
		case w := <-s.writes:
			s.execute(w)
		case <-s.stop:
			s.drain()
			return
		}
	}
}

// drain commits what is still queued, bounded by drainTimeout
func (s *Store) drain() {
	deadline := time.After(drainTimeout)
	for {
		select {
		case w := <-s.writes:
			s.execute(w)
		case <-deadline:
			return
		default:
			return
		}
	}
}

func (s *Store) execute(w write) {
	if !s.healthy.Load() {
		s.dropped.Add(1)
		return
	}

	tx, err := s.db.Begin()
	if err != nil {
		s.degrade(w.what, fmt.Errorf("begin: %w", err))
		return
	}
	if err := w.fn(tx); err != nil {
		tx.Rollback()
		s.degrade(w.what, err)
		return
	}
	if err := tx.Commit(); err != nil {
		s.degrade(w.what, fmt.Errorf("commit: %w", err))
	}
}

func (s *Store) degrade(what string, err error) {
	log.Printf("Storage degraded: %s failed: %v", what, err)
	s.healthy.Store(false)
}

// Close stops the writer after draining the queue and closes the database
func (s *Store) Close() error {
	var err error
	s.once.Do(func() {
		close(s.stop)
		select {
		case <-s.done:
		case <-time.After(drainTimeout + time.Second):
			log.Printf("Warning: storage writer shutdown timeout, some writes may be lost")
		}
		if n := s.dropped.Load(); n > 0 {
			log.Printf("Storage closed with %d dropped writes", n)
		}
		err = s.db.Close()
	})
	return err
}

// InitDB creates the sessions and moves tables if missing
func (s *Store) InitDB() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(Schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return tx.Commit()
}

// DeleteDB closes the store and removes the database file with its WAL files
func (s *Store) DeleteDB() error {
	if err := s.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	for _, p := range []string{s.path, s.path + "-wal", s.path + "-shm"} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete %s: %w", p, err)
		}
	}
	return nil
}
