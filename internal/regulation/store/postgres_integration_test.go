//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	agencystore "fedreg/internal/agency/store"
	"fedreg/internal/domain"
	"fedreg/internal/regulation/store"
	"fedreg/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
	agencyID int64
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())

	ctx := context.Background()
	agencies := agencystore.NewPostgres(s.postgres.DB)
	s.Require().NoError(agencies.EnsureSchema(ctx))

	s.store = store.NewPostgres(s.postgres.DB)
	s.Require().NoError(s.store.EnsureSchema(ctx))
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	s.Require().NoError(s.postgres.TruncateTables(ctx, "regulations", "agencies"))

	agencies := agencystore.NewPostgres(s.postgres.DB)
	s.Require().NoError(agencies.InsertBatch(ctx, []domain.Agency{{
		Name:          "Department of Example",
		DisplayName:   "Department of Example",
		SortableName:  "example, department of",
		Slug:          "dept-example",
		CFRReferences: []domain.CFRReference{{Title: 40}},
	}}))
	ids, err := agencies.IDsBySlug(ctx)
	s.Require().NoError(err)
	s.agencyID = ids["dept-example"]
}

func (s *PostgresStoreSuite) regulation(title int, date time.Time) domain.Regulation {
	return domain.Regulation{
		AgencyID:  s.agencyID,
		Reference: domain.CFRReference{Title: title, Chapter: "I"},
		Date:      date,
		WordCount: 100,
		Checksum:  "deadbeef",
	}
}

func (s *PostgresStoreSuite) TestUpsertReplacesInPlace() {
	ctx := context.Background()
	date := time.Date(2024, time.January, 19, 12, 0, 0, 0, time.UTC)

	reg := s.regulation(40, date)
	s.Require().NoError(s.store.Upsert(ctx, reg))

	reg.WordCount = 250
	reg.Checksum = "cafef00d"
	s.Require().NoError(s.store.Upsert(ctx, reg))

	regs, err := s.store.ListByAgencyYear(ctx, s.agencyID, 2024)
	s.Require().NoError(err)
	s.Require().Len(regs, 1, "same scope must not duplicate")
	s.Equal(250, regs[0].WordCount)
	s.Equal("cafef00d", regs[0].Checksum)
}

func (s *PostgresStoreSuite) TestDistinctReferencesCoexist() {
	ctx := context.Background()
	date := time.Date(2024, time.January, 19, 12, 0, 0, 0, time.UTC)

	s.Require().NoError(s.store.Upsert(ctx, s.regulation(40, date)))
	s.Require().NoError(s.store.Upsert(ctx, s.regulation(48, date)))

	other := s.regulation(40, date)
	other.Reference.Part = "52"
	s.Require().NoError(s.store.Upsert(ctx, other))

	regs, err := s.store.ListByAgencyYear(ctx, s.agencyID, 2024)
	s.Require().NoError(err)
	s.Len(regs, 3)
}

func (s *PostgresStoreSuite) TestListFiltersByYear() {
	ctx := context.Background()

	s.Require().NoError(s.store.Upsert(ctx, s.regulation(40,
		time.Date(2023, time.January, 19, 12, 0, 0, 0, time.UTC))))
	s.Require().NoError(s.store.Upsert(ctx, s.regulation(40,
		time.Date(2024, time.January, 19, 12, 0, 0, 0, time.UTC))))

	regs, err := s.store.ListByAgencyYear(ctx, s.agencyID, 2024)
	s.Require().NoError(err)
	s.Require().Len(regs, 1)
	s.Equal(2024, regs[0].Date.Year())

	regs, err = s.store.ListByAgencyYear(ctx, s.agencyID, 2022)
	s.Require().NoError(err)
	s.Empty(regs)
}
