// Package regsync resolves an agency's CFR references into persisted
// regulation summaries for a reporting date.
package regsync

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"fedreg/internal/domain"
	"fedreg/internal/ecfr"
	"fedreg/internal/platform/metrics"
	"fedreg/internal/regulation/store"
	"fedreg/internal/summary"
	pkgerrors "fedreg/pkg/errors"
)

// Fetcher resolves one reference and date into a document body or an
// explicit rejection.
type Fetcher interface {
	Fetch(ctx context.Context, ref domain.CFRReference, date time.Time) (ecfr.FetchResult, error)
}

// Synchronizer walks an agency's declared references sequentially,
// fetching and summarizing each document and upserting the result. Each
// reference commits individually, so a failure mid-pass leaves earlier
// summaries durable.
type Synchronizer struct {
	fetcher Fetcher
	store   store.Store
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

func New(fetcher Fetcher, st store.Store, logger *slog.Logger, m *metrics.Metrics) *Synchronizer {
	return &Synchronizer{
		fetcher: fetcher,
		store:   st,
		logger:  logger,
		metrics: m,
		tracer:  otel.Tracer("fedreg/regsync"),
	}
}

// Sync processes every declared reference of the agency for the given
// reporting date. Rejected references are skipped; a fetch or persistence
// failure aborts the pass and is returned along with the summaries that
// already landed.
func (s *Synchronizer) Sync(ctx context.Context, agency domain.Agency, date time.Time) ([]domain.Regulation, error) {
	ctx, span := s.tracer.Start(ctx, "regsync.sync",
		trace.WithAttributes(
			attribute.String("agency.slug", agency.Slug),
			attribute.String("regulation.date", date.Format("2006-01-02")),
		))
	defer span.End()

	start := time.Now()
	defer func() {
		s.metrics.ObserveSyncDuration(time.Since(start).Seconds())
	}()

	if len(agency.CFRReferences) == 0 {
		s.logger.InfoContext(ctx, "agency declares no CFR references",
			"agency", agency.Slug,
		)
		return nil, nil
	}

	var regs []domain.Regulation
	for _, ref := range agency.CFRReferences {
		result, err := s.fetcher.Fetch(ctx, ref, date)
		if err != nil {
			s.metrics.RecordFetchOutcome("failed")
			s.logger.ErrorContext(ctx, "document fetch failed",
				"agency", agency.Slug,
				"title", ref.Title,
				"error", err,
			)
			return regs, pkgerrors.Wrap(pkgerrors.CodeUnavailable,
				fmt.Sprintf("fetch document for title %d", ref.Title), err)
		}
		if result.Rejected {
			s.metrics.RecordFetchOutcome("rejected")
			continue
		}
		s.metrics.RecordFetchOutcome("accepted")

		sum, err := summary.Summarize(result.Body)
		if err != nil {
			return regs, pkgerrors.Wrap(pkgerrors.CodeInternal,
				fmt.Sprintf("summarize document for title %d", ref.Title), err)
		}

		reg := domain.Regulation{
			AgencyID:  agency.ID,
			Reference: ref,
			Date:      date,
			WordCount: sum.WordCount,
			Checksum:  sum.Checksum,
		}
		if err := s.store.Upsert(ctx, reg); err != nil {
			return regs, pkgerrors.Wrap(pkgerrors.CodeInternal,
				fmt.Sprintf("persist summary for title %d", ref.Title), err)
		}
		s.metrics.RecordRegulationSynced()
		regs = append(regs, reg)
	}

	s.logger.InfoContext(ctx, "synchronized agency regulations",
		"agency", agency.Slug,
		"date", date.Format("2006-01-02"),
		"count", len(regs),
	)
	return regs, nil
}
