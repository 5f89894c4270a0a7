package store

import (
	"context"
	"database/sql"
	"fmt"

	"fedreg/internal/domain"
)

// PostgresStore persists regulation summaries in PostgreSQL. Optional
// reference fields are stored as empty strings rather than NULLs so the
// composite uniqueness constraint behaves as a real key.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed regulation store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS regulations (
			id BIGSERIAL PRIMARY KEY,
			agency_id BIGINT NOT NULL REFERENCES agencies(id),
			title INT NOT NULL,
			subtitle TEXT NOT NULL DEFAULT '',
			chapter TEXT NOT NULL DEFAULT '',
			subchapter TEXT NOT NULL DEFAULT '',
			part TEXT NOT NULL DEFAULT '',
			subpart TEXT NOT NULL DEFAULT '',
			date DATE NOT NULL,
			word_count INT NOT NULL,
			checksum TEXT NOT NULL,
			UNIQUE (agency_id, title, subtitle, chapter, subchapter, part, subpart, date)
		)`)
	if err != nil {
		return fmt.Errorf("ensure regulations schema: %w", err)
	}
	return nil
}

// Upsert inserts one summary, replacing the measurements in place when
// the same (agency, reference, date) was already recorded. Each call is
// its own transaction: a failure mid-way through an agency's set leaves
// earlier rows durable.
func (s *PostgresStore) Upsert(ctx context.Context, reg domain.Regulation) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO regulations (agency_id, title, subtitle, chapter, subchapter, part, subpart, date, word_count, checksum)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (agency_id, title, subtitle, chapter, subchapter, part, subpart, date)
		DO UPDATE SET word_count = EXCLUDED.word_count, checksum = EXCLUDED.checksum`,
		reg.AgencyID,
		reg.Reference.Title,
		reg.Reference.Subtitle,
		reg.Reference.Chapter,
		reg.Reference.Subchapter,
		reg.Reference.Part,
		reg.Reference.Subpart,
		reg.Date,
		reg.WordCount,
		reg.Checksum,
	)
	if err != nil {
		return fmt.Errorf("upsert regulation (agency %d title %d): %w", reg.AgencyID, reg.Reference.Title, err)
	}
	return nil
}

func (s *PostgresStore) ListByAgencyYear(ctx context.Context, agencyID int64, year int) ([]domain.Regulation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, agency_id, title, subtitle, chapter, subchapter, part, subpart, date, word_count, checksum
		FROM regulations
		WHERE agency_id = $1 AND EXTRACT(YEAR FROM date) = $2
		ORDER BY id`,
		agencyID, year,
	)
	if err != nil {
		return nil, fmt.Errorf("list regulations (agency %d year %d): %w", agencyID, year, err)
	}
	defer rows.Close()

	var regs []domain.Regulation
	for rows.Next() {
		var r domain.Regulation
		err := rows.Scan(
			&r.ID,
			&r.AgencyID,
			&r.Reference.Title,
			&r.Reference.Subtitle,
			&r.Reference.Chapter,
			&r.Reference.Subchapter,
			&r.Reference.Part,
			&r.Reference.Subpart,
			&r.Date,
			&r.WordCount,
			&r.Checksum,
		)
		if err != nil {
			return nil, fmt.Errorf("scan regulation row: %w", err)
		}
		regs = append(regs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate regulation rows: %w", err)
	}
	return regs, nil
}
