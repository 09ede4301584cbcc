// Package localstore guarda el historial de corridas del CLI en un archivo SQLite.
package localstore

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"helix-api/internal/genetics"
)

//go:embed schema.sql
var schema string

// ErrNotFound indica que no existe una corrida con ese id.
var ErrNotFound = errors.New("run not found")

// Run es una corrida guardada.
type Run struct {
	ID        string
	CreatedAt time.Time
	Seed      int64
	Traits    []string
	Accuracy  float64
	Offspring int
	Result    genetics.ResultSet
}

// NewRun arma el registro a partir del resultado y la semilla usada.
func NewRun(rs genetics.ResultSet, seed int64) Run {
	return Run{
		ID:        rs.SimulationID,
		CreatedAt: rs.CreatedAt,
		Seed:      seed,
		Traits:    rs.SelectedTraits,
		Accuracy:  rs.Accuracy,
		Offspring: len(rs.Offspring),
		Result:    rs,
	}
}

type Store struct {
	sqlDB *sql.DB
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(v int64) time.Time {
	return time.UnixMilli(v).UTC()
}

// Open abre (o crea) el archivo y aplica el esquema.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) Save(ctx context.Context, run Run) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(run.ID) == "" {
		return fmt.Errorf("run id is required")
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	traits, err := json.Marshal(run.Traits)
	if err != nil {
		return fmt.Errorf("encode traits: %w", err)
	}
	result, err := json.Marshal(run.Result)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	_, err = s.sqlDB.ExecContext(ctx,
		`INSERT INTO runs (id, created_at, seed, traits, accuracy, offspring_count, result)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, toMillis(run.CreatedAt), run.Seed, string(traits), run.Accuracy, run.Offspring, string(result),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// List devuelve las corridas mas nuevas primero. limit <= 0 devuelve todas.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	query := `SELECT id, created_at, seed, traits, accuracy, offspring_count, result
	          FROM runs ORDER BY created_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

func (s *Store) Get(ctx context.Context, id string) (Run, error) {
	if s == nil || s.sqlDB == nil {
		return Run{}, fmt.Errorf("storage is not configured")
	}
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT id, created_at, seed, traits, accuracy, offspring_count, result FROM runs WHERE id = ?`,
		strings.TrimSpace(id),
	)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrNotFound
	}
	return run, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		run       Run
		createdAt int64
		traits    string
		result    string
	)
	if err := row.Scan(&run.ID, &createdAt, &run.Seed, &traits, &run.Accuracy, &run.Offspring, &result); err != nil {
		return Run{}, err
	}
	run.CreatedAt = fromMillis(createdAt)
	if err := json.Unmarshal([]byte(traits), &run.Traits); err != nil {
		return Run{}, fmt.Errorf("decode traits: %w", err)
	}
	if err := json.Unmarshal([]byte(result), &run.Result); err != nil {
		return Run{}, fmt.Errorf("decode result: %w", err)
	}
	return run, nil
}
