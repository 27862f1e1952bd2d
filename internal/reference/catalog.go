// Package reference resolves free-text role and skill queries against the
// occupational reference dataset. Each region gets an in-memory search index
// rebuilt on a short TTL; index entries are immutable snapshots.
package reference

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonathan/career-planner/internal/store"
	"github.com/jonathan/career-planner/internal/textkit"
)

// DefaultTTL is how long a region index stays cached before a rebuild.
const DefaultTTL = 5 * time.Minute

// ErrNoRegionData reports a region with no reference occupations.
var ErrNoRegionData = errors.New("no reference data for region")

// Store is the persistence surface the catalog reads from.
type Store interface {
	ListOccupations(ctx context.Context, region string) ([]store.OccupationRow, error)
	ListSkills(ctx context.Context, region string) ([]store.SkillRow, error)
}

// Skill is one weighted skill edge on an occupation, with precomputed
// matching forms.
type Skill struct {
	Name   string
	Weight float64

	norm    string
	compact string
}

// Occupation is an immutable index entry.
type Occupation struct {
	ID             string
	Title          string
	Region         string
	Aliases        []string
	EducationRank  int
	Regulated      bool
	CredentialHint string
	OfficialURL    string
	Skills         []Skill

	normTitle      string
	compactTitle   string
	normAliases    []string
	compactAliases []string
}

type regionIndex struct {
	builtAt     time.Time
	occupations []Occupation
}

// Catalog caches per-region search indexes over the reference store.
type Catalog struct {
	store Store
	ttl   time.Duration
	now   func() time.Time

	mu      sync.Mutex
	regions map[string]*regionIndex
}

// Option tweaks catalog construction.
type Option func(*Catalog)

// WithTTL overrides the index cache TTL.
func WithTTL(ttl time.Duration) Option {
	return func(c *Catalog) { c.ttl = ttl }
}

// WithClock injects a clock for deterministic expiry tests.
func WithClock(now func() time.Time) Option {
	return func(c *Catalog) { c.now = now }
}

// NewCatalog creates a catalog over a reference store.
func NewCatalog(st Store, opts ...Option) *Catalog {
	c := &Catalog{
		store:   st,
		ttl:     DefaultTTL,
		now:     time.Now,
		regions: make(map[string]*regionIndex),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Occupations returns the cached occupation snapshot for a region, building
// or refreshing the index as needed. Callers must not mutate the result.
func (c *Catalog) Occupations(ctx context.Context, region string) ([]Occupation, error) {
	idx, err := c.index(ctx, region)
	if err != nil {
		return nil, err
	}
	return idx.occupations, nil
}

func (c *Catalog) index(ctx context.Context, region string) (*regionIndex, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if idx, ok := c.regions[region]; ok && c.now().Sub(idx.builtAt) < c.ttl {
		return idx, nil
	}

	idx, err := c.build(ctx, region)
	if err != nil {
		return nil, err
	}
	c.regions[region] = idx
	return idx, nil
}

func (c *Catalog) build(ctx context.Context, region string) (*regionIndex, error) {
	rows, err := c.store.ListOccupations(ctx, region)
	if err != nil {
		return nil, fmt.Errorf("failed to build reference index: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoRegionData, region)
	}

	skillRows, err := c.store.ListSkills(ctx, region)
	if err != nil {
		return nil, fmt.Errorf("failed to build reference index: %w", err)
	}
	skillsByOcc := make(map[string][]Skill)
	for _, s := range skillRows {
		skillsByOcc[s.OccupationID] = append(skillsByOcc[s.OccupationID], Skill{
			Name:    s.Name,
			Weight:  s.Weight,
			norm:    textkit.Normalize(s.Name),
			compact: textkit.Compact(s.Name),
		})
	}

	occupations := make([]Occupation, 0, len(rows))
	for _, row := range rows {
		occ := Occupation{
			ID:             row.ID,
			Title:          row.Title,
			Region:         row.Region,
			Aliases:        row.Aliases,
			EducationRank:  row.EducationRank,
			Regulated:      row.Regulated,
			CredentialHint: row.CredentialHint,
			OfficialURL:    row.OfficialURL,
			Skills:         skillsByOcc[row.ID],
			normTitle:      textkit.Normalize(row.Title),
			compactTitle:   textkit.Compact(row.Title),
		}
		for _, a := range row.Aliases {
			occ.normAliases = append(occ.normAliases, textkit.Normalize(a))
			occ.compactAliases = append(occ.compactAliases, textkit.Compact(a))
		}
		occupations = append(occupations, occ)
	}

	return &regionIndex{builtAt: c.now(), occupations: occupations}, nil
}
