package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"fedreg/internal/domain"
)

// PostgresStore persists agencies in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed agency store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS agencies (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			short_name TEXT NOT NULL DEFAULT '',
			display_name TEXT NOT NULL,
			sortable_name TEXT NOT NULL,
			slug TEXT NOT NULL UNIQUE,
			cfr_references JSONB NOT NULL,
			parent_id BIGINT REFERENCES agencies(id)
		)`)
	if err != nil {
		return fmt.Errorf("ensure agencies schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM agencies`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count agencies: %w", err)
	}
	return count, nil
}

// InsertBatch inserts the given agencies in one transaction. Surrogate
// ids are database-assigned; callers resolve them through IDsBySlug.
func (s *PostgresStore) InsertBatch(ctx context.Context, agencies []domain.Agency) error {
	if len(agencies) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin agency insert: %w", err)
	}
	defer tx.Rollback()

	for _, a := range agencies {
		refs, err := json.Marshal(a.CFRReferences)
		if err != nil {
			return fmt.Errorf("marshal cfr references for %s: %w", a.Slug, err)
		}
		var parentID sql.NullInt64
		if a.ParentID != nil {
			parentID = sql.NullInt64{Int64: *a.ParentID, Valid: true}
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO agencies (name, short_name, display_name, sortable_name, slug, cfr_references, parent_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			a.Name, a.ShortName, a.DisplayName, a.SortableName, a.Slug, refs, parentID,
		)
		if err != nil {
			return fmt.Errorf("insert agency %s: %w", a.Slug, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit agency insert: %w", err)
	}
	return nil
}

func (s *PostgresStore) IDsBySlug(ctx context.Context) (map[string]int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, slug FROM agencies`)
	if err != nil {
		return nil, fmt.Errorf("query agency slugs: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]int64)
	for rows.Next() {
		var id int64
		var slug string
		if err := rows.Scan(&id, &slug); err != nil {
			return nil, fmt.Errorf("scan agency slug row: %w", err)
		}
		ids[slug] = id
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate agency slug rows: %w", err)
	}
	return ids, nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id int64) (domain.Agency, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, short_name, display_name, sortable_name, slug, cfr_references, parent_id
		FROM agencies WHERE id = $1`, id)

	agency, err := scanAgency(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Agency{}, ErrNotFound
		}
		return domain.Agency{}, fmt.Errorf("find agency %d: %w", id, err)
	}
	return agency, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]domain.Agency, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, short_name, display_name, sortable_name, slug, cfr_references, parent_id
		FROM agencies ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list agencies: %w", err)
	}
	defer rows.Close()

	var agencies []domain.Agency
	for rows.Next() {
		agency, err := scanAgency(rows)
		if err != nil {
			return nil, fmt.Errorf("scan agency row: %w", err)
		}
		agencies = append(agencies, agency)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate agency rows: %w", err)
	}
	return agencies, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAgency(row rowScanner) (domain.Agency, error) {
	var a domain.Agency
	var refs []byte
	var parentID sql.NullInt64

	err := row.Scan(&a.ID, &a.Name, &a.ShortName, &a.DisplayName, &a.SortableName, &a.Slug, &refs, &parentID)
	if err != nil {
		return domain.Agency{}, err
	}
	if err := json.Unmarshal(refs, &a.CFRReferences); err != nil {
		return domain.Agency{}, fmt.Errorf("decode cfr references: %w", err)
	}
	if parentID.Valid {
		a.ParentID = &parentID.Int64
	}
	return a, nil
}
