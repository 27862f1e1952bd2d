package planner

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/career-planner/internal/evidence"
	"github.com/jonathan/career-planner/internal/reference"
	"github.com/jonathan/career-planner/internal/requirements"
	"github.com/jonathan/career-planner/internal/store"
)

// DefaultRegion scopes reference reads when the caller configures none.
const DefaultRegion = "ca"

// EvidenceSource abstracts the evidence orchestrator.
type EvidenceSource interface {
	Fetch(ctx context.Context, req evidence.Request) (*evidence.Result, error)
}

// MetadataStore reads wage and trade metadata for ranked candidates.
type MetadataStore interface {
	GetWage(ctx context.Context, occupationID, region string) (*store.WageRow, error)
	GetTradeRequirement(ctx context.Context, tradeCode, province string) (*store.TradeRequirementRow, error)
}

// Planner runs compatibility analyses against one reference region.
type Planner struct {
	catalog  *reference.Catalog
	evidence EvidenceSource // optional; nil degrades to no market block
	metadata MetadataStore  // optional; nil skips wage/trade decoration
	region   string
	country  string
	validate *validator.Validate
}

// Option tweaks planner construction.
type Option func(*Planner)

// WithEvidenceSource attaches the market-evidence orchestrator.
func WithEvidenceSource(src EvidenceSource) Option {
	return func(p *Planner) { p.evidence = src }
}

// WithMetadataStore attaches wage/trade reference reads.
func WithMetadataStore(ms MetadataStore) Option {
	return func(p *Planner) { p.metadata = ms }
}

// WithRegion scopes the reference index region.
func WithRegion(region string) Option {
	return func(p *Planner) { p.region = region }
}

// WithCountry sets the job-provider country code.
func WithCountry(country string) Option {
	return func(p *Planner) { p.country = country }
}

// New creates a planner over a reference catalog.
func New(catalog *reference.Catalog, opts ...Option) *Planner {
	p := &Planner{
		catalog:  catalog,
		region:   DefaultRegion,
		country:  DefaultRegion,
		validate: validator.New(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Analyze produces the full compatibility analysis for one input profile.
// Output is deterministic for a fixed input and reference snapshot.
func (p *Planner) Analyze(ctx context.Context, input *Input) (*Analysis, error) {
	if err := p.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("invalid planner input: %w", err)
	}

	occupations, err := p.catalog.Occupations(ctx, p.region)
	if errors.Is(err, reference.ErrNoRegionData) {
		return p.zeroAnalysis(fmt.Sprintf("No reference data is available for region %q yet; try another region.", p.region)), nil
	}
	if err != nil {
		return nil, err
	}

	discovery := input.NotSureMode || input.TargetRole == ""
	shortlist := seedShortlist(input, occupations)

	userRank := educationRank(input.Education)
	userMonths := timelineMonths(input.Timeline)
	evidenced := hasCredentialEvidence(input)

	cands := make([]scoredCandidate, 0, len(shortlist))
	for _, s := range shortlist {
		b, profile := scoreCandidate(input, s.occ, s.proximity, userRank, userMonths, evidenced)
		cands = append(cands, scoredCandidate{seeded: s, breakdown: b, profile: profile, score: b.Total()})
	}

	cands = relevanceFilter(cands, discovery)
	rankCandidates(cands)
	if len(cands) > maxSuggestions {
		cands = cands[:maxSuggestions]
	}
	if len(cands) == 0 {
		return p.zeroAnalysis("No occupation cleared the relevance floors for this profile; add skills or broaden the target role."), nil
	}

	matches := make([]RankedMatch, len(cands))
	for i, c := range cands {
		matches[i] = RankedMatch{
			OccupationID:   c.occ.ID,
			Title:          c.occ.Title,
			Score:          c.score,
			Band:           Band(c.score),
			Breakdown:      c.breakdown,
			RoleProximity:  c.proximity,
			SkillOverlap:   c.profile.overlap,
			MatchedSkills:  c.profile.matched,
			MissingSkills:  c.profile.missing,
			Regulated:      c.occ.Regulated,
			CredentialHint: c.occ.CredentialHint,
			OfficialURL:    c.occ.OfficialURL,
		}
	}
	top := &matches[0]

	evidenceRole := input.TargetRole
	if discovery {
		evidenceRole = top.Title
	}

	var evidenceResult *evidence.Result
	g, gctx := errgroup.WithContext(ctx)
	if p.evidence != nil {
		g.Go(func() error {
			res, err := p.evidence.Fetch(gctx, evidence.Request{
				Role:            evidenceRole,
				Location:        input.Location,
				Country:         p.country,
				OccupationID:    top.OccupationID,
				UserPostingText: input.UserPostingText,
				UseMarket:       input.UseMarketEvidence,
			})
			if err == nil {
				evidenceResult = res
			}
			// Evidence failures degrade the report, never the analysis.
			return nil
		})
	}
	if p.metadata != nil {
		for i := range matches {
			m := &matches[i]
			g.Go(func() error { return p.decorate(gctx, m) })
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged, market := mergeEvidence(evidenceResult)
	gaps := skillGaps(merged, input)
	roadmap := buildRoadmap(gaps, top.MissingSkills, userMonths)
	reframes := resumeReframes(input.ExperienceText)

	report := Report{
		Compatibility: Compatibility{
			Score:   top.Score,
			Band:    top.Band,
			Reasons: compatibilityReasons(top),
		},
		SuggestedCareers:   matches,
		SkillGaps:          gaps,
		Roadmap:            roadmap,
		ResumeReframes:     reframes,
		TargetRequirements: merged,
		MarketEvidence:     market,
		Bottleneck:         bottleneck(top.Breakdown),
		DataSources:        dataSources(evidenceResult),
	}

	legacyGaps := make([]string, len(gaps))
	for i, gp := range gaps {
		legacyGaps[i] = gp.Label
	}
	recommended := make([]string, len(matches))
	for i, m := range matches {
		recommended[i] = m.Title
	}

	return &Analysis{
		Report: report,
		Legacy: Legacy{
			Score:              top.Score,
			Explanation:        fmt.Sprintf("Your profile is a %s match (%d/100) for %s.", top.Band, top.Score, top.Title),
			TransferableSkills: top.MatchedSkills,
			SkillGaps:          legacyGaps,
			Roadmap: LegacyRoadmap{
				Day30: roadmap.Immediate,
				Day60: roadmap.ShortTerm,
				Day90: roadmap.MediumTerm,
			},
			ResumeReframes:   reframes,
			RecommendedRoles: recommended,
		},
		ScoringSnapshot: Snapshot{
			TotalScore:      top.Score,
			Breakdown:       top.Breakdown,
			TopOccupationID: top.OccupationID,
		},
	}, nil
}

// reTradeCode pulls an apprenticeship trade code like 309A out of a
// credential hint.
var reTradeCode = regexp.MustCompile(`\b(\d{3}[A-Za-z])\b`)

// decorate attaches wage and trade metadata to one ranked match.
func (p *Planner) decorate(ctx context.Context, m *RankedMatch) error {
	wage, err := p.metadata.GetWage(ctx, m.OccupationID, p.region)
	if err != nil {
		return err
	}
	m.Wage = wage

	code := reTradeCode.FindString(m.CredentialHint)
	if code == "" {
		return nil
	}
	trade, err := p.metadata.GetTradeRequirement(ctx, code, p.region)
	if err != nil {
		return err
	}
	m.Trade = trade
	return nil
}

// mergeEvidence flattens the orchestrator result into one requirement list,
// user-posting evidence first. When the same (type, key) appears in both
// lists the higher-priority record stays, but the evidence lists are unioned
// so market quotes still back the requirement.
func mergeEvidence(res *evidence.Result) ([]requirements.Aggregated, MarketEvidence) {
	if res == nil {
		return nil, MarketEvidence{}
	}

	market := MarketEvidence{
		UsedAdzuna:    res.UsedAdzuna,
		UsedCache:     res.UsedCache,
		BaselineOnly:  res.BaselineOnly,
		Partial:       res.Partial,
		PostingsCount: res.PostingsCount,
	}

	seen := make(map[string]int)
	var merged []requirements.Aggregated
	for _, list := range [][]requirements.Aggregated{res.UserPostingRequirements, res.MarketRequirements} {
		for _, r := range list {
			k := string(r.Type) + "|" + r.NormalizedKey
			if idx, ok := seen[k]; ok {
				merged[idx].Evidence = requirements.MergeEvidence(merged[idx].Evidence, r.Evidence)
				continue
			}
			seen[k] = len(merged)
			merged = append(merged, r)
		}
	}
	requirements.SortAggregated(merged)
	return merged, market
}

// dataSources lists what actually informed the analysis.
func dataSources(res *evidence.Result) []string {
	sources := []string{"reference_taxonomy"}
	if res == nil {
		return sources
	}
	if len(res.UserPostingRequirements) > 0 {
		sources = append(sources, requirements.SourceUserPosting)
	}
	if res.UsedAdzuna || res.UsedCache {
		sources = append(sources, requirements.SourceAdzuna)
	}
	if res.BaselineOnly {
		sources = append(sources, requirements.SourceOnet)
	}
	return sources
}

// zeroAnalysis is the degraded but well-formed result used when no region
// data or no relevant candidate exists.
func (p *Planner) zeroAnalysis(explanation string) *Analysis {
	return &Analysis{
		Report: Report{
			Compatibility: Compatibility{
				Score:   0,
				Band:    BandWeak,
				Reasons: []string{explanation},
			},
			DataSources: []string{"reference_taxonomy"},
		},
		Legacy: Legacy{
			Score:       0,
			Explanation: explanation,
		},
	}
}
