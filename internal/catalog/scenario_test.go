package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	agencyimporter "fedreg/internal/agency/importer"
	agencystore "fedreg/internal/agency/store"
	"fedreg/internal/ecfr"
	"fedreg/internal/regsync"
	regulationstore "fedreg/internal/regulation/store"
)

const directoryJSON = `{
	"agencies": [
		{
			"name": "Department of Example",
			"short_name": "DOE",
			"display_name": "Department of Example",
			"sortable_name": "example, department of",
			"slug": "dept-example",
			"cfr_references": [{"title": 40}],
			"children": [
				{
					"name": "Bureau of Samples",
					"display_name": "Bureau of Samples",
					"sortable_name": "samples, bureau of",
					"slug": "bureau-sample",
					"cfr_references": []
				}
			]
		}
	]
}`

const documentXML = `<DIV1><P>hello world</P></DIV1>`

// Exercises the full pipeline against a fake upstream: directory import
// at startup, then a lazy backfill that fetches, summarizes, and stores
// the one declared reference.
func TestImportAndBackfillAgainstFakeUpstream(t *testing.T) {
	var documentRequests int
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/admin/v1/agencies.json":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(directoryJSON))
		case "/api/versioner/v1/full/2024-01-19/title-40.xml":
			documentRequests++
			w.Header().Set("Content-Type", "application/xml")
			_, _ = w.Write([]byte(documentXML))
		default:
			http.NotFound(w, r)
		}
	}))
	defer upstream.Close()

	ctx := context.Background()
	logger := testLogger()
	agencies := agencystore.NewInMemory()
	regulations := regulationstore.NewInMemory()

	client := ecfr.NewClient(upstream.URL, 5*time.Second)
	imp := agencyimporter.New(client, agencies, logger, nil)
	fetcher := ecfr.NewFetcher(client, logger)
	sync := regsync.New(fetcher, regulations, logger, nil)

	svc := New(agencies, regulations, imp, sync, nil, time.Minute, 2015, logger, nil)
	svc.now = func() time.Time {
		return time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	}

	require.NoError(t, svc.EnsureReady(ctx))

	list, err := svc.Agencies(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)

	bySlug := make(map[string]int64, len(list))
	for _, a := range list {
		bySlug[a.Slug] = a.ID
	}
	parentID := bySlug["dept-example"]
	child, err := svc.AgencyByID(ctx, bySlug["bureau-sample"])
	require.NoError(t, err)
	require.NotNil(t, child.ParentID)
	assert.Equal(t, parentID, *child.ParentID)

	regs, err := svc.RegulationsForYear(ctx, parentID, 2024)
	require.NoError(t, err)
	require.Len(t, regs, 1)
	assert.Equal(t, 40, regs[0].Reference.Title)
	assert.Equal(t, 2, regs[0].WordCount)
	assert.Len(t, regs[0].Checksum, 32)
	assert.Equal(t, ReportingDate(2024), regs[0].Date)

	// The child declares no references; its backfill stores nothing and
	// never touches the upstream.
	regs, err = svc.RegulationsForYear(ctx, bySlug["bureau-sample"], 2024)
	require.NoError(t, err)
	assert.Empty(t, regs)

	// Repeat requests serve stored rows without refetching.
	_, err = svc.RegulationsForYear(ctx, parentID, 2024)
	require.NoError(t, err)
	assert.Equal(t, 1, documentRequests)
}
