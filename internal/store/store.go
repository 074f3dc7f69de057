// Package store provides the scan log storage interface and its in-memory
// and PostgreSQL implementations.
package store

import (
	"context"

	"github.com/sentrascan/sentrascan/pkg/models"
)

// ScanStore is the persistence contract for scan records. Records are
// written once and read-only thereafter; every write is an independent
// insert keyed by a fresh scan id, so the store must be safe under
// concurrent writers.
type ScanStore interface {
	// CreateScan appends one scan record.
	CreateScan(ctx context.Context, record *models.ScanRecord) error

	// GetScan returns the record for a scan id, or *ErrNotFound.
	GetScan(ctx context.Context, id string) (*models.ScanRecord, error)

	// ListScans returns all records ordered by timestamp descending.
	ListScans(ctx context.Context) ([]models.ScanRecord, error)

	// Ping checks if the backing store is reachable.
	Ping(ctx context.Context) error

	// Close releases all resources held by the store.
	Close() error
}

// ErrNotFound is returned when a requested entity does not exist.
type ErrNotFound struct {
	Entity string
	Key    string
}

func (e *ErrNotFound) Error() string {
	return e.Entity + " not found: " + e.Key
}
