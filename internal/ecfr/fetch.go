package ecfr

import (
	"context"
	"log/slog"
	"time"

	"fedreg/internal/domain"
)

// DocumentClient retrieves the raw document body for a reference.
type DocumentClient interface {
	FetchDocument(ctx context.Context, ref domain.CFRReference, date time.Time) ([]byte, error)
}

// FetchResult is the explicit outcome of a fetch attempt. A rejected
// result means the reference failed its structural constraints and the
// caller must skip it without recording anything; transport failures are
// returned as errors instead.
type FetchResult struct {
	Rejected bool
	Reason   string
	Body     []byte
}

// Fetcher resolves a validated reference and date into a document body.
// One attempt per document, no retries.
type Fetcher struct {
	client DocumentClient
	logger *slog.Logger
}

func NewFetcher(client DocumentClient, logger *slog.Logger) *Fetcher {
	return &Fetcher{client: client, logger: logger}
}

func (f *Fetcher) Fetch(ctx context.Context, ref domain.CFRReference, date time.Time) (FetchResult, error) {
	if err := ref.Validate(); err != nil {
		f.logger.WarnContext(ctx, "skipping invalid CFR reference",
			"title", ref.Title,
			"chapter", ref.Chapter,
			"subchapter", ref.Subchapter,
			"part", ref.Part,
			"subpart", ref.Subpart,
			"reason", err.Error(),
		)
		return FetchResult{Rejected: true, Reason: err.Error()}, nil
	}

	body, err := f.client.FetchDocument(ctx, ref, date)
	if err != nil {
		return FetchResult{}, err
	}
	return FetchResult{Body: body}, nil
}
