package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"
)

// rowValidator checks reference rows at the storage boundary so downstream
// code can trust the shapes.
var rowValidator = validator.New()

// OccupationRow is one occupation in the reference dataset.
type OccupationRow struct {
	ID             string   `json:"id" validate:"required"`
	Title          string   `json:"title" validate:"required"`
	Region         string   `json:"region" validate:"required"`
	Aliases        []string `json:"aliases"`
	EducationRank  int      `json:"education_rank" validate:"gte=0,lte=5"`
	Regulated      bool     `json:"regulated"`
	CredentialHint string   `json:"credential_hint"`
	OfficialURL    string   `json:"official_url"`
}

// SkillRow is one weighted skill edge for an occupation.
type SkillRow struct {
	OccupationID string  `json:"occupation_id" validate:"required"`
	Name         string  `json:"name" validate:"required"`
	Weight       float64 `json:"weight" validate:"gte=0,lte=1"`
}

// WageRow is a wage snapshot for an occupation in a region.
type WageRow struct {
	OccupationID string  `json:"occupation_id" validate:"required"`
	Region       string  `json:"region" validate:"required"`
	LowAnnual    float64 `json:"low_annual" validate:"gte=0"`
	MedianAnnual float64 `json:"median_annual" validate:"gte=0"`
	HighAnnual   float64 `json:"high_annual" validate:"gte=0"`
	Currency     string  `json:"currency"`
}

// TradeRequirementRow is regulatory/credential metadata for a trade in a
// province, keyed naturally by (trade_code, province).
type TradeRequirementRow struct {
	TradeCode   string `json:"trade_code" validate:"required"`
	Province    string `json:"province" validate:"required"`
	Compulsory  bool   `json:"compulsory"`
	RedSeal     bool   `json:"red_seal"`
	Description string `json:"description"`
}

// BaselineRequirementRow is a static occupational-baseline requirement
// statement used when no live evidence exists.
type BaselineRequirementRow struct {
	OccupationID string `json:"occupation_id" validate:"required"`
	Statement    string `json:"statement" validate:"required"`
}

// ListOccupations retrieves every occupation row for a region.
func (db *DB) ListOccupations(ctx context.Context, region string) ([]OccupationRow, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, title, region, aliases, education_rank, regulated, credential_hint, official_url
		 FROM occupations
		 WHERE region = $1
		 ORDER BY title`,
		region,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list occupations: %w", err)
	}
	defer rows.Close()

	var out []OccupationRow
	for rows.Next() {
		var o OccupationRow
		var aliasesJSON []byte
		if err := rows.Scan(&o.ID, &o.Title, &o.Region, &aliasesJSON, &o.EducationRank,
			&o.Regulated, &o.CredentialHint, &o.OfficialURL); err != nil {
			return nil, fmt.Errorf("failed to scan occupation: %w", err)
		}
		if aliasesJSON != nil {
			_ = json.Unmarshal(aliasesJSON, &o.Aliases)
		}
		if err := rowValidator.Struct(o); err != nil {
			return nil, fmt.Errorf("invalid occupation row %s: %w", o.ID, err)
		}
		out = append(out, o)
	}
	return out, nil
}

// ListSkills retrieves the weighted skill edges for every occupation in a
// region.
func (db *DB) ListSkills(ctx context.Context, region string) ([]SkillRow, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT s.occupation_id, s.name, s.weight
		 FROM occupation_skills s
		 JOIN occupations o ON o.id = s.occupation_id
		 WHERE o.region = $1
		 ORDER BY s.occupation_id, s.weight DESC, s.name`,
		region,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list skills: %w", err)
	}
	defer rows.Close()

	var out []SkillRow
	for rows.Next() {
		var s SkillRow
		if err := rows.Scan(&s.OccupationID, &s.Name, &s.Weight); err != nil {
			return nil, fmt.Errorf("failed to scan skill: %w", err)
		}
		if err := rowValidator.Struct(s); err != nil {
			return nil, fmt.Errorf("invalid skill row for %s: %w", s.OccupationID, err)
		}
		out = append(out, s)
	}
	return out, nil
}

// GetWage retrieves the wage snapshot for an occupation in a region, or nil
// when none is recorded.
func (db *DB) GetWage(ctx context.Context, occupationID, region string) (*WageRow, error) {
	var w WageRow
	err := db.pool.QueryRow(ctx,
		`SELECT occupation_id, region, low_annual, median_annual, high_annual, currency
		 FROM occupation_wages
		 WHERE occupation_id = $1 AND region = $2`,
		occupationID, region,
	).Scan(&w.OccupationID, &w.Region, &w.LowAnnual, &w.MedianAnnual, &w.HighAnnual, &w.Currency)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get wage: %w", err)
	}
	if err := rowValidator.Struct(w); err != nil {
		return nil, fmt.Errorf("invalid wage row for %s: %w", occupationID, err)
	}
	return &w, nil
}

// GetTradeRequirement retrieves trade regulatory metadata, or nil when the
// occupation is not a regulated trade in the province.
func (db *DB) GetTradeRequirement(ctx context.Context, tradeCode, province string) (*TradeRequirementRow, error) {
	var t TradeRequirementRow
	err := db.pool.QueryRow(ctx,
		`SELECT trade_code, province, compulsory, red_seal, description
		 FROM trade_requirements
		 WHERE trade_code = $1 AND province = $2`,
		tradeCode, province,
	).Scan(&t.TradeCode, &t.Province, &t.Compulsory, &t.RedSeal, &t.Description)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get trade requirement: %w", err)
	}
	return &t, nil
}

// ListBaselineRequirements retrieves the static baseline requirement
// statements for an occupation.
func (db *DB) ListBaselineRequirements(ctx context.Context, occupationID string) ([]BaselineRequirementRow, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT occupation_id, statement
		 FROM baseline_requirements
		 WHERE occupation_id = $1
		 ORDER BY statement`,
		occupationID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list baseline requirements: %w", err)
	}
	defer rows.Close()

	var out []BaselineRequirementRow
	for rows.Next() {
		var b BaselineRequirementRow
		if err := rows.Scan(&b.OccupationID, &b.Statement); err != nil {
			return nil, fmt.Errorf("failed to scan baseline requirement: %w", err)
		}
		out = append(out, b)
	}
	return out, nil
}
