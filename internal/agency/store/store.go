// Package store persists the flattened agency hierarchy.
package store

import (
	"context"

	"fedreg/internal/domain"
	pkgerrors "fedreg/pkg/errors"
)

// ErrNotFound keeps agency 404s consistent across implementations.
var ErrNotFound = pkgerrors.New(pkgerrors.CodeNotFound, "agency not found")

// Store is interface-driven so the importer and catalog service stay
// testable against the in-memory implementation.
type Store interface {
	EnsureSchema(ctx context.Context) error
	Count(ctx context.Context) (int, error)
	// InsertBatch assigns surrogate ids on insert; ids are read back
	// through IDsBySlug rather than returned here.
	InsertBatch(ctx context.Context, agencies []domain.Agency) error
	IDsBySlug(ctx context.Context) (map[string]int64, error)
	FindByID(ctx context.Context, id int64) (domain.Agency, error)
	List(ctx context.Context) ([]domain.Agency, error)
}
