package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists to a SQLite database through the pure-Go modernc driver.
type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", s.path, err)
	}
	// A second connection to ":memory:" would see an empty database.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("pinging %s: %w", s.path, err)
	}
	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return fmt.Errorf("creating tables: %w", err)
	}

	s.db = db
	return nil
}

func (s *SQLiteStore) SaveRun(ctx context.Context, run Run) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO runs (id, started, seed, config)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			started = excluded.started,
			seed = excluded.seed,
			config = excluded.config
	`, run.ID, run.Started.UTC().Format(time.RFC3339Nano), run.Seed, run.Config)
	return err
}

func (s *SQLiteStore) GetRun(ctx context.Context, id string) (Run, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return Run{}, false, err
	}

	run := Run{ID: id}
	var started string
	err = db.QueryRowContext(ctx, `SELECT started, seed, config FROM runs WHERE id = ?`, id).
		Scan(&started, &run.Seed, &run.Config)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, false, nil
		}
		return Run{}, false, err
	}
	run.Started, err = time.Parse(time.RFC3339Nano, started)
	if err != nil {
		return Run{}, false, fmt.Errorf("parse start time of run %s: %w", id, err)
	}
	return run, true, nil
}

func (s *SQLiteStore) SaveEpoch(ctx context.Context, rec EpochRecord) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	// best_id is stored as text; SQLite integers are signed 64-bit.
	_, err = db.ExecContext(ctx, `
		INSERT INTO epochs (run_id, epoch, species, generation, size, fitness_mean, fitness_max, raw_mean, best_id, best_genome)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, epoch, species) DO UPDATE SET
			generation = excluded.generation,
			size = excluded.size,
			fitness_mean = excluded.fitness_mean,
			fitness_max = excluded.fitness_max,
			raw_mean = excluded.raw_mean,
			best_id = excluded.best_id,
			best_genome = excluded.best_genome
	`, rec.RunID, rec.Epoch, rec.Species, rec.Generation, rec.Size,
		rec.FitnessMean, rec.FitnessMax, rec.RawMean,
		strconv.FormatUint(rec.BestID, 10), rec.BestGenome)
	return err
}

func (s *SQLiteStore) ListEpochs(ctx context.Context, runID string) ([]EpochRecord, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT epoch, species, generation, size, fitness_mean, fitness_max, raw_mean, best_id, best_genome
		FROM epochs WHERE run_id = ? ORDER BY epoch, species
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EpochRecord
	for rows.Next() {
		rec := EpochRecord{RunID: runID}
		var bestID string
		if err := rows.Scan(&rec.Epoch, &rec.Species, &rec.Generation, &rec.Size,
			&rec.FitnessMean, &rec.FitnessMax, &rec.RawMean, &bestID, &rec.BestGenome); err != nil {
			return nil, err
		}
		if rec.BestID, err = strconv.ParseUint(bestID, 10, 64); err != nil {
			return nil, fmt.Errorf("parse best id %q: %w", bestID, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errors.New("store is not initialized")
	}
	return s.db, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started TEXT NOT NULL,
			seed INTEGER NOT NULL,
			config TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS epochs (
			run_id TEXT NOT NULL,
			epoch INTEGER NOT NULL,
			species TEXT NOT NULL,
			generation INTEGER NOT NULL,
			size INTEGER NOT NULL,
			fitness_mean REAL NOT NULL,
			fitness_max REAL NOT NULL,
			raw_mean REAL NOT NULL,
			best_id TEXT NOT NULL,
			best_genome TEXT NOT NULL,
			PRIMARY KEY (run_id, epoch, species)
		);
	`)
	return err
}
