package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sentrascan/sentrascan/pkg/models"
)

// PostgresStore implements ScanStore on PostgreSQL. Each stage result is
// stored as its own JSONB column, matching the record layout one blob per
// stage.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects a pgx pool and ensures the scan table exists.
func NewPostgresStore(ctx context.Context, url string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	s := &PostgresStore{pool: pool}
	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS scans (
			id          TEXT PRIMARY KEY,
			query       TEXT NOT NULL,
			status      TEXT NOT NULL,
			ts          TIMESTAMPTZ NOT NULL,
			threatintel JSONB,
			osint       JSONB,
			correlation JSONB,
			rag         JSONB,
			report      JSONB,
			selftest    JSONB,
			alert       JSONB
		)
	`)
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// CreateScan implements ScanStore.
func (s *PostgresStore) CreateScan(ctx context.Context, record *models.ScanRecord) error {
	blobs := make([]any, 0, len(models.StageKeys))
	for _, key := range models.StageKeys {
		b, err := json.Marshal(record.Results[key])
		if err != nil {
			return fmt.Errorf("marshal %s stage: %w", key, err)
		}
		blobs = append(blobs, b)
	}

	args := append([]any{record.ID, record.Query, string(record.Status), record.Timestamp}, blobs...)
	_, err := s.pool.Exec(ctx, `
		INSERT INTO scans (id, query, status, ts, threatintel, osint, correlation, rag, report, selftest, alert)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, args...)
	if err != nil {
		return fmt.Errorf("insert scan: %w", err)
	}
	return nil
}

// GetScan implements ScanStore.
func (s *PostgresStore) GetScan(ctx context.Context, id string) (*models.ScanRecord, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, query, status, ts, threatintel, osint, correlation, rag, report, selftest, alert
		FROM scans WHERE id = $1
	`, id)
	record, err := scanRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &ErrNotFound{Entity: "scan", Key: id}
	}
	return record, err
}

// ListScans implements ScanStore. Records come back newest first.
func (s *PostgresStore) ListScans(ctx context.Context) ([]models.ScanRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, query, status, ts, threatintel, osint, correlation, rag, report, selftest, alert
		FROM scans ORDER BY ts DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list scans: %w", err)
	}
	defer rows.Close()

	var records []models.ScanRecord
	for rows.Next() {
		record, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	return records, rows.Err()
}

// Ping implements ScanStore.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close implements ScanStore.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// scanRow decodes one scans row, deserializing each stage blob back into
// its payload.
func scanRow(row pgx.Row) (*models.ScanRecord, error) {
	var (
		record models.ScanRecord
		status string
		blobs  = make([][]byte, len(models.StageKeys))
	)

	dest := []any{&record.ID, &record.Query, &status, &record.Timestamp}
	for i := range blobs {
		dest = append(dest, &blobs[i])
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	record.Status = models.ScanStatus(status)
	record.Results = make(map[string]models.Payload, len(models.StageKeys))
	for i, key := range models.StageKeys {
		var p models.Payload
		if len(blobs[i]) > 0 {
			if err := json.Unmarshal(blobs[i], &p); err != nil {
				return nil, fmt.Errorf("decode %s stage: %w", key, err)
			}
		}
		record.Results[key] = p
	}
	return &record, nil
}
