// Package importer flattens the eCFR agency directory into the agencies
// table.
package importer

import (
	"context"
	"fmt"
	"log/slog"

	"fedreg/internal/agency/store"
	"fedreg/internal/domain"
	"fedreg/internal/ecfr"
	"fedreg/internal/platform/metrics"
	pkgerrors "fedreg/pkg/errors"
)

// DirectoryClient fetches the nested agency directory.
type DirectoryClient interface {
	FetchAgencies(ctx context.Context) ([]ecfr.AgencyNode, error)
}

// Importer performs the one-time bulk import of the agency hierarchy.
// Idempotence is the caller's responsibility: the catalog service only
// runs it against an empty table.
type Importer struct {
	client  DirectoryClient
	store   store.Store
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func New(client DirectoryClient, st store.Store, logger *slog.Logger, m *metrics.Metrics) *Importer {
	return &Importer{client: client, store: st, logger: logger, metrics: m}
}

// Import inserts the directory in two phases: top-level agencies first,
// then children with parent ids resolved by slug. Two phases are needed
// because parent ids are storage-assigned and unknown before the first
// insert lands. Returns the flattened list and the slug to id map for
// reuse without re-querying.
//
// An empty or unreachable directory fails the whole import: agencies are
// the root of all downstream work, so there is no partial tolerance here.
func (i *Importer) Import(ctx context.Context) ([]domain.Agency, map[string]int64, error) {
	nodes, err := i.client.FetchAgencies(ctx)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeUnavailable, "agency directory unavailable", err)
	}
	if len(nodes) == 0 {
		return nil, nil, pkgerrors.New(pkgerrors.CodeUnavailable, "agency directory returned no agencies")
	}

	parents := make([]domain.Agency, 0, len(nodes))
	for _, n := range nodes {
		parents = append(parents, toAgency(n, nil))
	}
	if err := i.store.InsertBatch(ctx, parents); err != nil {
		return nil, nil, fmt.Errorf("insert top-level agencies: %w", err)
	}

	ids, err := i.store.IDsBySlug(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve agency ids: %w", err)
	}

	var children []domain.Agency
	for _, n := range nodes {
		parentID, ok := ids[n.Slug]
		if !ok {
			return nil, nil, fmt.Errorf("parent agency %s missing after insert", n.Slug)
		}
		for _, c := range n.Children {
			children = append(children, toAgency(c, &parentID))
		}
	}
	if err := i.store.InsertBatch(ctx, children); err != nil {
		return nil, nil, fmt.Errorf("insert child agencies: %w", err)
	}

	ids, err = i.store.IDsBySlug(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve agency ids: %w", err)
	}

	flat := append(parents, children...)
	for idx := range flat {
		flat[idx].ID = ids[flat[idx].Slug]
	}

	i.metrics.RecordAgenciesImported(len(flat))
	i.logger.InfoContext(ctx, "imported agency directory",
		"top_level", len(parents),
		"children", len(children),
	)
	return flat, ids, nil
}

func toAgency(n ecfr.AgencyNode, parentID *int64) domain.Agency {
	refs := n.CFRReferences
	if refs == nil {
		refs = []domain.CFRReference{}
	}
	return domain.Agency{
		Name:          n.Name,
		ShortName:     n.ShortName,
		DisplayName:   n.DisplayName,
		SortableName:  n.SortableName,
		Slug:          n.Slug,
		CFRReferences: refs,
		ParentID:      parentID,
	}
}
