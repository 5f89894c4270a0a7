package catalog

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	agencystore "fedreg/internal/agency/store"
	"fedreg/internal/domain"
	regulationstore "fedreg/internal/regulation/store"
	pkgerrors "fedreg/pkg/errors"
)

type stubImporter struct {
	calls int
	store agencystore.Store
	nodes []domain.Agency
}

func (i *stubImporter) Import(ctx context.Context) ([]domain.Agency, map[string]int64, error) {
	i.calls++
	if err := i.store.InsertBatch(ctx, i.nodes); err != nil {
		return nil, nil, err
	}
	ids, err := i.store.IDsBySlug(ctx)
	if err != nil {
		return nil, nil, err
	}
	return i.nodes, ids, nil
}

type stubSynchronizer struct {
	calls []time.Time
	store regulationstore.Store
	out   []domain.Regulation
}

func (s *stubSynchronizer) Sync(ctx context.Context, agency domain.Agency, date time.Time) ([]domain.Regulation, error) {
	s.calls = append(s.calls, date)
	regs := make([]domain.Regulation, 0, len(s.out))
	for _, r := range s.out {
		r.AgencyID = agency.ID
		r.Date = date
		if err := s.store.Upsert(ctx, r); err != nil {
			return nil, err
		}
		regs = append(regs, r)
	}
	return regs, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newFixture(t *testing.T) (*Service, *stubImporter, *stubSynchronizer, agencystore.Store) {
	t.Helper()

	agencies := agencystore.NewInMemory()
	regulations := regulationstore.NewInMemory()

	imp := &stubImporter{
		store: agencies,
		nodes: []domain.Agency{
			{
				Name:          "Department of Example",
				Slug:          "dept-example",
				DisplayName:   "Department of Example",
				SortableName:  "example, department of",
				CFRReferences: []domain.CFRReference{{Title: 40}},
			},
		},
	}
	sync := &stubSynchronizer{
		store: regulations,
		out: []domain.Regulation{
			{Reference: domain.CFRReference{Title: 40}, WordCount: 2, Checksum: "abc123"},
		},
	}

	svc := New(agencies, regulations, imp, sync, nil, time.Minute, 2015, testLogger(), nil)
	svc.now = func() time.Time {
		return time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	}
	return svc, imp, sync, agencies
}

func TestEnsureReadyImportsOnlyWhenEmpty(t *testing.T) {
	svc, imp, _, _ := newFixture(t)

	require.NoError(t, svc.EnsureReady(context.Background()))
	assert.Equal(t, 1, imp.calls)

	// A restart against a populated table must not import again.
	require.NoError(t, svc.EnsureReady(context.Background()))
	assert.Equal(t, 1, imp.calls)
}

func TestRegulationsForYearBackfillsOnce(t *testing.T) {
	svc, _, sync, agencies := newFixture(t)
	ctx := context.Background()
	require.NoError(t, svc.EnsureReady(ctx))

	ids, err := agencies.IDsBySlug(ctx)
	require.NoError(t, err)
	agencyID := ids["dept-example"]

	regs, err := svc.RegulationsForYear(ctx, agencyID, 2024)
	require.NoError(t, err)
	require.Len(t, regs, 1)
	assert.Len(t, sync.calls, 1)

	// Second request for the same scope serves stored rows.
	regs, err = svc.RegulationsForYear(ctx, agencyID, 2024)
	require.NoError(t, err)
	require.Len(t, regs, 1)
	assert.Len(t, sync.calls, 1, "stored rows must not trigger another sync")
}

func TestRegulationsForYearClampsOutOfRangeYears(t *testing.T) {
	svc, _, sync, agencies := newFixture(t)
	ctx := context.Background()
	require.NoError(t, svc.EnsureReady(ctx))

	ids, err := agencies.IDsBySlug(ctx)
	require.NoError(t, err)
	agencyID := ids["dept-example"]

	_, err = svc.RegulationsForYear(ctx, agencyID, 1999)
	require.NoError(t, err)
	_, err = svc.RegulationsForYear(ctx, agencyID, 2999)
	require.NoError(t, err)

	// Both out-of-range years resolve to the current year; the second
	// request hits the rows stored by the first.
	require.Len(t, sync.calls, 1)
	assert.Equal(t, 2024, sync.calls[0].Year())
}

func TestRegulationsForYearUnknownAgency(t *testing.T) {
	svc, _, _, _ := newFixture(t)
	ctx := context.Background()
	require.NoError(t, svc.EnsureReady(ctx))

	_, err := svc.RegulationsForYear(ctx, 9999, 2024)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
}

func TestReportingDate(t *testing.T) {
	date := ReportingDate(2021)
	assert.Equal(t, time.Date(2021, time.January, 19, 12, 0, 0, 0, time.UTC), date)
}

// blockingSynchronizer holds every Sync call until released so tests can
// line up concurrent requests against one in-flight pass.
type blockingSynchronizer struct {
	store   regulationstore.Store
	out     []domain.Regulation
	entered chan struct{}
	release chan struct{}
	once    sync.Once

	mu    sync.Mutex
	calls int
}

func (s *blockingSynchronizer) Sync(ctx context.Context, agency domain.Agency, date time.Time) ([]domain.Regulation, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	s.once.Do(func() { close(s.entered) })
	<-s.release

	regs := make([]domain.Regulation, 0, len(s.out))
	for _, r := range s.out {
		r.AgencyID = agency.ID
		r.Date = date
		if err := s.store.Upsert(ctx, r); err != nil {
			return nil, err
		}
		regs = append(regs, r)
	}
	return regs, nil
}

func (s *blockingSynchronizer) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestConcurrentFirstRequestsShareOneSync(t *testing.T) {
	ctx := context.Background()
	agencies := agencystore.NewInMemory()
	regulations := regulationstore.NewInMemory()

	imp := &stubImporter{
		store: agencies,
		nodes: []domain.Agency{{
			Name:          "Department of Example",
			DisplayName:   "Department of Example",
			SortableName:  "example, department of",
			Slug:          "dept-example",
			CFRReferences: []domain.CFRReference{{Title: 40}},
		}},
	}
	blocker := &blockingSynchronizer{
		store: regulations,
		out: []domain.Regulation{
			{Reference: domain.CFRReference{Title: 40}, WordCount: 2, Checksum: "abc123"},
		},
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}

	svc := New(agencies, regulations, imp, blocker, nil, time.Minute, 2015, testLogger(), nil)
	svc.now = func() time.Time {
		return time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	}
	require.NoError(t, svc.EnsureReady(ctx))

	ids, err := agencies.IDsBySlug(ctx)
	require.NoError(t, err)
	agencyID := ids["dept-example"]

	type outcome struct {
		regs []domain.Regulation
		err  error
	}
	outcomes := make(chan outcome, 2)
	request := func() {
		regs, err := svc.RegulationsForYear(ctx, agencyID, 2024)
		outcomes <- outcome{regs: regs, err: err}
	}

	go request()
	<-blocker.entered
	go request()
	close(blocker.release)

	for i := 0; i < 2; i++ {
		got := <-outcomes
		require.NoError(t, got.err)
		require.Len(t, got.regs, 1)
		assert.Equal(t, 2, got.regs[0].WordCount)
	}
	assert.Equal(t, 1, blocker.callCount(), "concurrent first requests must share one sync pass")
}
