// Package store persists regulation summaries.
package store

import (
	"context"

	"fedreg/internal/domain"
)

// Store is the persistence boundary for regulation summaries. Upsert
// keys on (agency, reference fields, date) so re-running a sync for the
// same scope replaces rows in place instead of duplicating them.
type Store interface {
	EnsureSchema(ctx context.Context) error
	Upsert(ctx context.Context, reg domain.Regulation) error
	ListByAgencyYear(ctx context.Context, agencyID int64, year int) ([]domain.Regulation, error)
}
