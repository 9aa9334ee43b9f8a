package history

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"

	_ "github.com/marcboeker/go-duckdb/v2"

	"github.com/energyops/forecast-guard/internal/errors"
	"github.com/energyops/forecast-guard/internal/models"
)

// DuckDBStore persists run history in a DuckDB runs table. Unlike the file
// backend it appends with a plain INSERT, so concurrent pipelines on the
// same database never clobber each other's records.
type DuckDBStore struct {
	db     *sql.DB
	dbPath string
	logger *slog.Logger
	mu     sync.Mutex
}

// NewDuckDBStore opens (or creates) the database at dbPath and ensures the
// schema exists. Use ":memory:" for an ephemeral database.
func NewDuckDBStore(ctx context.Context, dbPath string, logger *slog.Logger) (*DuckDBStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("duckdb", dbPath)
	if err != nil {
		return nil, errors.New(errors.ClassStorageWrite, "history_duckdb", "open database",
			fmt.Errorf("failed to open DuckDB database: %w", err))
	}

	// Single writer pattern as recommended for DuckDB.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	store := &DuckDBStore{
		db:     db,
		dbPath: dbPath,
		logger: logger.With(slog.String("component", "history_duckdb")),
	}

	if err := store.initialize(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *DuckDBStore) initialize(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			run_id        VARCHAR PRIMARY KEY,
			recorded_at   TIMESTAMP NOT NULL,
			model_name    VARCHAR NOT NULL,
			model_version VARCHAR NOT NULL,
			window_size   INTEGER NOT NULL,
			baseline      VARCHAR NOT NULL,
			mae_window    DOUBLE NOT NULL,
			mase_window   DOUBLE NOT NULL
		)`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return errors.New(errors.ClassStorageWrite, "history_duckdb", "create schema", err)
	}

	index := `CREATE INDEX IF NOT EXISTS idx_runs_recorded_at ON runs (recorded_at)`
	if _, err := s.db.ExecContext(ctx, index); err != nil {
		s.logger.Warn("failed to create recorded_at index", "error", err)
	}

	s.logger.InfoContext(ctx, "history database initialized", slog.String("db_path", s.dbPath))
	return nil
}

func (s *DuckDBStore) Append(ctx context.Context, record models.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (run_id, recorded_at, model_name, model_version,
			window_size, baseline, mae_window, mase_window)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		record.RunID,
		clampToUTC(record.RecordedAt),
		record.ModelName,
		record.ModelVersion,
		record.Metrics.WindowSize,
		record.Metrics.Baseline,
		record.Metrics.MAEWindow,
		record.Metrics.MASEWindow,
	)
	if err != nil {
		return errors.New(errors.ClassStorageWrite, "history_duckdb", "insert run", err)
	}

	s.logger.InfoContext(ctx, "run recorded", slog.String("run_id", record.RunID))
	return nil
}

func (s *DuckDBStore) Load(ctx context.Context) ([]models.RunRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, recorded_at, model_name, model_version,
			window_size, baseline, mae_window, mase_window
		FROM runs
		ORDER BY recorded_at ASC, run_id ASC`)
	if err != nil {
		return nil, errors.New(errors.ClassStorageRead, "history_duckdb", "query runs", err)
	}
	defer rows.Close()

	var records []models.RunRecord
	for rows.Next() {
		var r models.RunRecord
		if err := rows.Scan(
			&r.RunID,
			&r.RecordedAt,
			&r.ModelName,
			&r.ModelVersion,
			&r.Metrics.WindowSize,
			&r.Metrics.Baseline,
			&r.Metrics.MAEWindow,
			&r.Metrics.MASEWindow,
		); err != nil {
			return nil, errors.New(errors.ClassStorageRead, "history_duckdb", "scan run", err)
		}
		r.RecordedAt = clampToUTC(r.RecordedAt)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.New(errors.ClassStorageRead, "history_duckdb", "iterate runs", err)
	}
	return records, nil
}

// HealthCheck verifies the database answers a trivial query.
func (s *DuckDBStore) HealthCheck(ctx context.Context) error {
	var one int
	if err := s.db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return errors.New(errors.ClassStorageRead, "history_duckdb", "health check", err)
	}
	return nil
}

func (s *DuckDBStore) Close() error {
	return s.db.Close()
}
