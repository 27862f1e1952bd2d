// Package evidence owns the market-evidence lifecycle: a TTL-cached query
// record per (role, location, country), paginated provider fetches, and the
// source-priority merge of user, market, and baseline requirements.
//
// The package encodes two distinct degradation strategies. Market fetching
// fails OPEN: any provider failure is recorded on the query and the last
// cached requirements are returned. LLM enrichment (the Enricher interface)
// fails CLOSED: it can only ever add candidates or return nothing.
package evidence

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/career-planner/internal/adzuna"
	"github.com/jonathan/career-planner/internal/requirements"
	"github.com/jonathan/career-planner/internal/store"
)

// DefaultTTL is how long cached market requirements stay fresh.
const DefaultTTL = 72 * time.Hour

// DefaultMaxPages bounds the provider pagination loop.
const DefaultMaxPages = 2

// Store is the persistence surface the orchestrator needs.
type Store interface {
	UpsertEvidenceQuery(ctx context.Context, role, location, country string) (*store.EvidenceQuery, error)
	MarkQueryFetching(ctx context.Context, queryID uuid.UUID) error
	MarkQuerySuccess(ctx context.Context, queryID uuid.UUID) error
	MarkQueryError(ctx context.Context, queryID uuid.UUID, message string) error
	UpsertMarketPosting(ctx context.Context, p *store.MarketPosting) error
	ListMarketPostings(ctx context.Context, queryID uuid.UUID) ([]store.MarketPosting, error)
	ReplaceQueryRequirements(ctx context.Context, queryID uuid.UUID, reqs []requirements.Aggregated) error
	GetQueryRequirements(ctx context.Context, queryID uuid.UUID) ([]requirements.Aggregated, error)
	ListBaselineRequirements(ctx context.Context, occupationID string) ([]store.BaselineRequirementRow, error)
}

// Provider pages through an external job-postings source.
type Provider interface {
	Configured() bool
	SearchPage(ctx context.Context, role, location string, page int) ([]adzuna.Posting, error)
}

// Enricher adds model-assisted candidates for poorly covered segments. The
// error-free signature is deliberate: enrichment fails closed and may only
// return extra requirements or nothing.
type Enricher interface {
	EnrichLowConfidence(ctx context.Context, text string, covered []requirements.Extracted, source, postingID string) []requirements.Extracted
}

// Request describes one evidence lookup.
type Request struct {
	Role            string
	Location        string
	Country         string
	OccupationID    string // reference occupation backing the baseline
	UserPostingText string
	UseMarket       bool
	ForceRefresh    bool
}

// Result is the orchestrator output.
type Result struct {
	QueryID                 uuid.UUID                 `json:"queryId"`
	Query                   QueryKey                  `json:"query"`
	MarketRequirements      []requirements.Aggregated `json:"marketRequirements"`
	UserPostingRequirements []requirements.Aggregated `json:"userPostingRequirements"`
	UsedAdzuna              bool                      `json:"usedAdzuna"`
	UsedCache               bool                      `json:"usedCache"`
	PostingsCount           int                       `json:"postingsCount"`
	BaselineOnly            bool                      `json:"baselineOnly"`
	Partial                 bool                      `json:"partial"`
	FetchedAt               *time.Time                `json:"fetchedAt"`
}

// QueryKey echoes the lookup key on the result.
type QueryKey struct {
	Role     string `json:"role"`
	Location string `json:"location"`
	Country  string `json:"country"`
}

// Orchestrator coordinates the evidence pipeline.
type Orchestrator struct {
	store    Store
	provider Provider
	enricher Enricher // optional
	ttl      time.Duration
	maxPages int
	now      func() time.Time
}

// Option tweaks orchestrator construction.
type Option func(*Orchestrator)

// WithTTL overrides the cache freshness window.
func WithTTL(ttl time.Duration) Option {
	return func(o *Orchestrator) { o.ttl = ttl }
}

// WithMaxPages overrides the pagination bound.
func WithMaxPages(n int) Option {
	return func(o *Orchestrator) { o.maxPages = n }
}

// WithClock injects a clock for deterministic expiry tests.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// WithEnricher attaches the optional fail-closed enricher.
func WithEnricher(e Enricher) Option {
	return func(o *Orchestrator) { o.enricher = e }
}

// New creates an orchestrator.
func New(st Store, provider Provider, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:    st,
		provider: provider,
		ttl:      DefaultTTL,
		maxPages: DefaultMaxPages,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Fetch resolves the evidence for a request. Provider failures never
// propagate; the result degrades to cached or baseline data instead.
func (o *Orchestrator) Fetch(ctx context.Context, req Request) (*Result, error) {
	q, err := o.store.UpsertEvidenceQuery(ctx, req.Role, req.Location, req.Country)
	if err != nil {
		return nil, err
	}

	res := &Result{
		QueryID:   q.ID,
		Query:     QueryKey{Role: req.Role, Location: req.Location, Country: req.Country},
		FetchedAt: q.FetchedAt,
	}

	fresh := q.FetchedAt != nil && o.now().Sub(*q.FetchedAt) < o.ttl
	marketEnabled := req.UseMarket && o.provider != nil && o.provider.Configured()

	switch {
	case !marketEnabled:
		// Market evidence disabled or unconfigured: reuse whatever was
		// stored earlier, without fetching.
		res.MarketRequirements, err = o.store.GetQueryRequirements(ctx, q.ID)
		if err != nil {
			return nil, err
		}
		res.UsedCache = len(res.MarketRequirements) > 0
	case fresh && !req.ForceRefresh:
		res.MarketRequirements, err = o.store.GetQueryRequirements(ctx, q.ID)
		if err != nil {
			return nil, err
		}
		res.UsedCache = true
		res.UsedAdzuna = true
	default:
		o.refreshMarket(ctx, q.ID, req, res)
	}

	if req.UserPostingText != "" {
		res.UserPostingRequirements = o.extractUserPosting(ctx, req.UserPostingText)
	}

	baseline := o.baselineRequirements(ctx, req.OccupationID)
	res.MarketRequirements = mergeWithBaseline(res.UserPostingRequirements, res.MarketRequirements, baseline)
	res.BaselineOnly = !res.UsedAdzuna && !res.UsedCache && len(res.UserPostingRequirements) == 0

	return res, nil
}

// refreshMarket runs the page-bounded provider fetch and re-aggregation.
// All failures go through failOpen; the result always ends up populated
// with the best available data.
func (o *Orchestrator) refreshMarket(ctx context.Context, queryID uuid.UUID, req Request, res *Result) {
	if err := o.store.MarkQueryFetching(ctx, queryID); err != nil {
		o.failOpen(ctx, queryID, err, res)
		return
	}

	fetched := 0
	var fetchErr error
pages:
	for page := 1; page <= o.maxPages; page++ {
		if err := ctx.Err(); err != nil {
			res.Partial = fetched > 0
			fetchErr = err
			break pages
		}
		postings, err := o.provider.SearchPage(ctx, req.Role, req.Location, page)
		if err != nil {
			res.Partial = fetched > 0
			fetchErr = err
			break pages
		}
		for _, p := range postings {
			err := o.store.UpsertMarketPosting(ctx, &store.MarketPosting{
				QueryID:     queryID,
				Provider:    requirements.SourceAdzuna,
				ProviderID:  p.ID,
				Title:       p.Title,
				Company:     p.Company,
				Location:    p.Location,
				Description: p.Description,
				RedirectURL: p.RedirectURL,
			})
			if err != nil {
				res.Partial = fetched > 0
				fetchErr = err
				break pages
			}
			fetched++
		}
		if len(postings) == 0 {
			break
		}
	}

	if fetchErr != nil && fetched == 0 {
		o.failOpen(ctx, queryID, fetchErr, res)
		return
	}

	// Re-extract and aggregate from every stored posting for the query, not
	// just this fetch, so older postings keep contributing frequency.
	stored, err := o.store.ListMarketPostings(ctx, queryID)
	if err != nil {
		o.failOpen(ctx, queryID, err, res)
		return
	}

	var all []requirements.Extracted
	for _, p := range stored {
		extracted := requirements.Extract(p.Description, requirements.SourceAdzuna, p.ProviderID)
		all = append(all, extracted...)
		if o.enricher != nil {
			all = append(all, o.enricher.EnrichLowConfidence(ctx, p.Description, extracted, requirements.SourceAdzuna, p.ProviderID)...)
		}
	}
	aggregated := requirements.Aggregate(all)

	if err := o.store.ReplaceQueryRequirements(ctx, queryID, aggregated); err != nil {
		o.failOpen(ctx, queryID, err, res)
		return
	}

	res.MarketRequirements = aggregated
	res.UsedAdzuna = true
	res.PostingsCount = len(stored)

	if fetchErr != nil {
		// Partial fetch: persisted what we had, but the query is not a
		// clean success.
		_ = o.store.MarkQueryError(ctx, queryID, fetchErr.Error())
		return
	}
	if err := o.store.MarkQuerySuccess(ctx, queryID); err != nil {
		o.failOpen(ctx, queryID, err, res)
		return
	}
	now := o.now()
	res.FetchedAt = &now
}

// failOpen is the market-path degradation strategy: record the error on the
// query and fall back to the last stored requirements. It never raises.
func (o *Orchestrator) failOpen(ctx context.Context, queryID uuid.UUID, cause error, res *Result) {
	_ = o.store.MarkQueryError(ctx, queryID, cause.Error())

	cached, err := o.store.GetQueryRequirements(ctx, queryID)
	if err != nil || len(cached) == 0 {
		return
	}
	res.MarketRequirements = cached
	res.UsedCache = true
}

// extractUserPosting runs extraction (plus optional enrichment) over the
// user-supplied posting text with the highest-priority source tag.
func (o *Orchestrator) extractUserPosting(ctx context.Context, text string) []requirements.Aggregated {
	cleaned := StripHTML(text)
	extracted := requirements.Extract(cleaned, requirements.SourceUserPosting, "")
	if o.enricher != nil {
		extracted = append(extracted, o.enricher.EnrichLowConfidence(ctx, cleaned, extracted, requirements.SourceUserPosting, "")...)
	}
	return requirements.Aggregate(extracted)
}

// baselineRequirements extracts the static occupational baseline. Missing
// reference data yields an empty baseline, never an error.
func (o *Orchestrator) baselineRequirements(ctx context.Context, occupationID string) []requirements.Aggregated {
	if occupationID == "" {
		return nil
	}
	rows, err := o.store.ListBaselineRequirements(ctx, occupationID)
	if err != nil || len(rows) == 0 {
		return nil
	}

	var all []requirements.Extracted
	for _, row := range rows {
		all = append(all, requirements.Extract(row.Statement, requirements.SourceOnet, "")...)
	}
	return requirements.Aggregate(all)
}
