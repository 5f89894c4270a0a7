// Package ecfr talks to the public eCFR APIs: the admin agency directory
// and the versioner full-document endpoint.
package ecfr

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"fedreg/internal/domain"
)

const (
	agenciesPath = "/api/admin/v1/agencies.json"
	documentPath = "/api/versioner/v1/full"
)

// AgencyNode is one entry of the agency directory tree. Children share
// the parent shape and never nest further in practice.
type AgencyNode struct {
	Name          string                `json:"name"`
	ShortName     string                `json:"short_name"`
	DisplayName   string                `json:"display_name"`
	SortableName  string                `json:"sortable_name"`
	Slug          string                `json:"slug"`
	CFRReferences []domain.CFRReference `json:"cfr_references"`
	Children      []AgencyNode          `json:"children,omitempty"`
}

type agencyDirectory struct {
	Agencies []AgencyNode `json:"agencies"`
}

// Client is a thin HTTP client for the eCFR services. A zero timeout
// waits as long as the upstream does.
type Client struct {
	baseURL string
	http    *http.Client
	tracer  trace.Tracer
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		tracer:  otel.Tracer("fedreg/ecfr"),
	}
}

// FetchAgencies retrieves the full agency directory.
func (c *Client) FetchAgencies(ctx context.Context) ([]AgencyNode, error) {
	ctx, span := c.tracer.Start(ctx, "ecfr.agencies")
	defer span.End()

	body, err := c.get(ctx, c.baseURL+agenciesPath)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("fetch agency directory: %w", err)
	}

	var dir agencyDirectory
	if err := json.Unmarshal(body, &dir); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("decode agency directory: %w", err)
	}
	span.SetAttributes(attribute.Int("ecfr.agency_count", len(dir.Agencies)))
	return dir.Agencies, nil
}

// FetchDocument retrieves the full XML body for the given reference and
// reporting date. The caller is responsible for validating the reference
// first; this only builds the request from whichever scope fields are
// present.
func (c *Client) FetchDocument(ctx context.Context, ref domain.CFRReference, date time.Time) ([]byte, error) {
	ctx, span := c.tracer.Start(ctx, "ecfr.document",
		trace.WithAttributes(
			attribute.Int("cfr.title", ref.Title),
			attribute.String("cfr.date", date.Format("2006-01-02")),
		))
	defer span.End()

	u := fmt.Sprintf("%s%s/%s/title-%d.xml",
		c.baseURL, documentPath, date.Format("2006-01-02"), ref.Title)

	params := url.Values{}
	if ref.Subtitle != "" {
		params.Set("subtitle", ref.Subtitle)
	}
	if ref.Chapter != "" {
		params.Set("chapter", ref.Chapter)
		if ref.Subchapter != "" {
			params.Set("subchapter", ref.Subchapter)
		}
	}
	if ref.Part != "" {
		params.Set("part", ref.Part)
		if ref.Subpart != "" {
			params.Set("subpart", ref.Subpart)
		}
	}
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	body, err := c.get(ctx, u)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("fetch document title %d: %w", ref.Title, err)
	}
	return body, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
