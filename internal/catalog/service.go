// Package catalog is the top-level driver: bootstrap-time agency import
// and lazy per-(agency, year) regulation backfill on request.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	agencystore "fedreg/internal/agency/store"
	"fedreg/internal/domain"
	"fedreg/internal/platform/metrics"
	platformredis "fedreg/internal/platform/redis"
	regulationstore "fedreg/internal/regulation/store"
)

// Importer performs the one-time agency directory import.
type Importer interface {
	Import(ctx context.Context) ([]domain.Agency, map[string]int64, error)
}

// Synchronizer produces regulation summaries for one agency and date.
type Synchronizer interface {
	Sync(ctx context.Context, agency domain.Agency, date time.Time) ([]domain.Regulation, error)
}

// Service coordinates stores, the importer, and the synchronizer.
type Service struct {
	agencies     agencystore.Store
	regulations  regulationstore.Store
	importer     Importer
	sync         Synchronizer
	cache        *platformredis.Client
	cacheTTL     time.Duration
	earliestYear int
	logger       *slog.Logger
	metrics      *metrics.Metrics
	group        singleflight.Group
	now          func() time.Time
}

func New(
	agencies agencystore.Store,
	regulations regulationstore.Store,
	imp Importer,
	sync Synchronizer,
	cache *platformredis.Client,
	cacheTTL time.Duration,
	earliestYear int,
	logger *slog.Logger,
	m *metrics.Metrics,
) *Service {
	return &Service{
		agencies:     agencies,
		regulations:  regulations,
		importer:     imp,
		sync:         sync,
		cache:        cache,
		cacheTTL:     cacheTTL,
		earliestYear: earliestYear,
		logger:       logger,
		metrics:      m,
		now:          time.Now,
	}
}

// EnsureReady creates the schema if absent and runs the agency import
// once, guarded by the emptiness check so restarts do not duplicate rows.
func (s *Service) EnsureReady(ctx context.Context) error {
	if err := s.agencies.EnsureSchema(ctx); err != nil {
		return err
	}
	if err := s.regulations.EnsureSchema(ctx); err != nil {
		return err
	}

	count, err := s.agencies.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	if _, _, err := s.importer.Import(ctx); err != nil {
		return fmt.Errorf("initial agency import: %w", err)
	}
	return nil
}

// Agencies returns the full stored agency list.
func (s *Service) Agencies(ctx context.Context) ([]domain.Agency, error) {
	return s.agencies.List(ctx)
}

// AgencyByID returns one agency, or the store's not-found error.
func (s *Service) AgencyByID(ctx context.Context, id int64) (domain.Agency, error) {
	return s.agencies.FindByID(ctx, id)
}

// RegulationsForYear returns the stored summaries for the clamped year,
// synchronizing from the eCFR on first request for the scope. Concurrent
// first requests for the same (agency, year) share a single sync pass.
func (s *Service) RegulationsForYear(ctx context.Context, agencyID int64, year int) ([]domain.Regulation, error) {
	year = s.clampYear(year)
	key := fmt.Sprintf("regulations:%d:%d", agencyID, year)

	if regs, ok := s.cacheGet(ctx, key); ok {
		s.metrics.RecordCacheHit()
		return regs, nil
	}
	s.metrics.RecordCacheMiss()

	v, err, _ := s.group.Do(key, func() (any, error) {
		return s.loadOrSync(ctx, agencyID, year)
	})
	if err != nil {
		return nil, err
	}
	regs := v.([]domain.Regulation)

	s.cacheSet(ctx, key, regs)
	return regs, nil
}

func (s *Service) loadOrSync(ctx context.Context, agencyID int64, year int) ([]domain.Regulation, error) {
	regs, err := s.regulations.ListByAgencyYear(ctx, agencyID, year)
	if err != nil {
		return nil, err
	}
	if len(regs) > 0 {
		return regs, nil
	}

	agency, err := s.agencies.FindByID(ctx, agencyID)
	if err != nil {
		return nil, err
	}

	date := ReportingDate(year)
	s.logger.InfoContext(ctx, "no stored regulations, backfilling from eCFR",
		"agency", agency.Slug,
		"year", year,
	)
	return s.sync.Sync(ctx, agency, date)
}

// clampYear folds years outside the supported historical range onto the
// current year.
func (s *Service) clampYear(year int) int {
	current := s.now().UTC().Year()
	if year < s.earliestYear || year > current {
		return current
	}
	return year
}

// ReportingDate normalizes a year to its canonical reporting date.
func ReportingDate(year int) time.Time {
	return time.Date(year, time.January, 19, 12, 0, 0, 0, time.UTC)
}

func (s *Service) cacheGet(ctx context.Context, key string) ([]domain.Regulation, bool) {
	if s.cache == nil {
		return nil, false
	}
	payload, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	var regs []domain.Regulation
	if err := json.Unmarshal(payload, &regs); err != nil {
		return nil, false
	}
	return regs, true
}

func (s *Service) cacheSet(ctx context.Context, key string, regs []domain.Regulation) {
	if s.cache == nil || len(regs) == 0 {
		return
	}
	payload, err := json.Marshal(regs)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, payload, s.cacheTTL).Err(); err != nil {
		s.logger.WarnContext(ctx, "regulation cache write failed", "error", err)
	}
}
