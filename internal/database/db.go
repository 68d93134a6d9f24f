package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ZanzyTHEbar/interview-scoring-engine/internal/resilience"
)

const dbFileName = "assessments.db"

// DB represents the database connection with pooling
type DB struct {
	*sql.DB
	pool     *ConnectionPool
	prepared map[string]*sql.Stmt
	mutex    sync.RWMutex
}

// ConnectionPool manages database connection pooling
type ConnectionPool struct {
	db           *sql.DB
	maxOpenConns int
	maxIdleConns int
	maxLifetime  time.Duration
}

// NewConnectionPool creates a new database connection pool
func NewConnectionPool(db *sql.DB, maxOpen, maxIdle int, maxLifetime time.Duration) *ConnectionPool {
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(maxLifetime)

	return &ConnectionPool{
		db:           db,
		maxOpenConns: maxOpen,
		maxIdleConns: maxIdle,
		maxLifetime:  maxLifetime,
	}
}

// GetStats returns connection pool statistics
func (cp *ConnectionPool) GetStats() map[string]interface{} {
	stats := cp.db.Stats()

	return map[string]interface{}{
		"open_connections":     stats.OpenConnections,
		"in_use":               stats.InUse,
		"idle":                 stats.Idle,
		"max_open_connections": cp.maxOpenConns,
		"max_idle_connections": cp.maxIdleConns,
		"max_lifetime_seconds": cp.maxLifetime.Seconds(),
		"wait_count":           stats.WaitCount,
		"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
	}
}

// NewDB opens the SQLite store under dataDir, retrying the initial ping, and
// applies migrations
func NewDB(ctx context.Context, dataDir string) (*DB, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFileName)
	connStr := fmt.Sprintf("file:%s?_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=on&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := resilience.Connect(ctx, "sqlite", resilience.ConnectRetryConfig(), func() error {
		return db.PingContext(ctx)
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// SQLite serializes writers; a small pool avoids lock churn
	pool := NewConnectionPool(db, 8, 4, 5*time.Minute)

	database := &DB{
		DB:       db,
		pool:     pool,
		prepared: make(map[string]*sql.Stmt),
	}

	if err := database.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := database.initPreparedStatements(ctx); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to initialize prepared statements: %w", err)
	}

	slog.Info("Database initialized",
		"path", dbPath,
		"max_open_conns", pool.maxOpenConns,
		"max_idle_conns", pool.maxIdleConns)

	return database, nil
}

func (db *DB) migrate(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS assessment_results (
			id TEXT PRIMARY KEY,
			candidate_id TEXT NOT NULL,
			cohort_id TEXT NOT NULL DEFAULT '',
			composite_index INTEGER NOT NULL,
			band TEXT NOT NULL,
			strategy TEXT NOT NULL,
			modules TEXT NOT NULL, -- JSON array of module scores, in assessment order
			completed_at DATETIME NOT NULL
		)`,

		// append-only: rows are never updated or deleted
		`CREATE TABLE IF NOT EXISTS manual_evaluations (
			id TEXT PRIMARY KEY,
			result_id TEXT NOT NULL,
			decision TEXT NOT NULL CHECK (decision IN ('approved', 'rejected', 'pending')),
			reviewer TEXT NOT NULL,
			comment TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL,
			seq INTEGER NOT NULL,
			FOREIGN KEY (result_id) REFERENCES assessment_results(id)
		)`,

		`CREATE TABLE IF NOT EXISTS anomaly_records (
			id TEXT PRIMARY KEY,
			result_id TEXT NOT NULL,
			type TEXT NOT NULL,
			severity TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT '',
			confidence REAL NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			recommendation TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL,
			seq INTEGER NOT NULL,
			FOREIGN KEY (result_id) REFERENCES assessment_results(id)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_results_cohort ON assessment_results(cohort_id, completed_at)`,
		`CREATE INDEX IF NOT EXISTS idx_results_candidate ON assessment_results(candidate_id)`,
		`CREATE INDEX IF NOT EXISTS idx_evaluations_result ON manual_evaluations(result_id, seq)`,
		`CREATE INDEX IF NOT EXISTS idx_anomalies_result ON anomaly_records(result_id, seq)`,
	}

	for _, query := range queries {
		if _, err := db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute migration: %w", err)
		}
	}

	return nil
}

func (db *DB) initPreparedStatements(ctx context.Context) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	for name, query := range statements {
		stmt, err := db.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to prepare statement %s: %w", name, err)
		}
		db.prepared[name] = stmt

		slog.Debug("Prepared statement initialized", "name", name)
	}

	return nil
}

// GetPreparedStatement retrieves a prepared statement
func (db *DB) GetPreparedStatement(name string) (*sql.Stmt, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	stmt, exists := db.prepared[name]
	if !exists {
		return nil, fmt.Errorf("prepared statement %s not found", name)
	}

	return stmt, nil
}

// GetPoolStats returns database connection pool statistics
func (db *DB) GetPoolStats() map[string]interface{} {
	return db.pool.GetStats()
}

// HealthCheck pings the database
func (db *DB) HealthCheck(ctx context.Context) error {
	return db.PingContext(ctx)
}

// Close closes the prepared statements and the connection
func (db *DB) Close() error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	for name, stmt := range db.prepared {
		if err := stmt.Close(); err != nil {
			slog.Warn("Failed to close prepared statement", "name", name, "error", err)
		}
	}

	db.prepared = make(map[string]*sql.Stmt)

	return db.DB.Close()
}
