package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/career-planner/internal/requirements"
)

// Evidence query fetch states.
const (
	QueryStatusIdle     = "idle"
	QueryStatusFetching = "fetching"
	QueryStatusSuccess  = "success"
	QueryStatusError    = "error"
)

// EvidenceQuery is the persisted record for one (role, location, country)
// market-evidence lookup.
type EvidenceQuery struct {
	ID           uuid.UUID
	Role         string
	Location     string
	Country      string
	Status       string
	ErrorMessage *string
	FetchedAt    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// MarketPosting is one stored provider posting, keyed naturally by
// (provider, provider_id).
type MarketPosting struct {
	ID          uuid.UUID
	QueryID     uuid.UUID
	Provider    string
	ProviderID  string
	Title       string
	Company     string
	Location    string
	Description string
	RedirectURL string
	CreatedAt   time.Time
}

// GetEvidenceQuery retrieves the query record for a key, or nil when absent.
func (db *DB) GetEvidenceQuery(ctx context.Context, role, location, country string) (*EvidenceQuery, error) {
	var q EvidenceQuery
	err := db.pool.QueryRow(ctx,
		`SELECT id, role, location, country, status, error_message, fetched_at, created_at, updated_at
		 FROM evidence_queries
		 WHERE role = $1 AND location = $2 AND country = $3`,
		role, location, country,
	).Scan(&q.ID, &q.Role, &q.Location, &q.Country, &q.Status, &q.ErrorMessage,
		&q.FetchedAt, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get evidence query: %w", err)
	}
	return &q, nil
}

// UpsertEvidenceQuery creates or returns the query record for a key, leaving
// an existing record's status untouched.
func (db *DB) UpsertEvidenceQuery(ctx context.Context, role, location, country string) (*EvidenceQuery, error) {
	var q EvidenceQuery
	err := db.pool.QueryRow(ctx,
		`INSERT INTO evidence_queries (role, location, country, status)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (role, location, country) DO UPDATE SET updated_at = NOW()
		 RETURNING id, role, location, country, status, error_message, fetched_at, created_at, updated_at`,
		role, location, country, QueryStatusIdle,
	).Scan(&q.ID, &q.Role, &q.Location, &q.Country, &q.Status, &q.ErrorMessage,
		&q.FetchedAt, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert evidence query: %w", err)
	}
	return &q, nil
}

// MarkQueryFetching transitions a query into the fetching state.
func (db *DB) MarkQueryFetching(ctx context.Context, queryID uuid.UUID) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE evidence_queries SET status = $1, updated_at = NOW() WHERE id = $2`,
		QueryStatusFetching, queryID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark query fetching: %w", err)
	}
	return nil
}

// MarkQuerySuccess records a successful refresh with a fresh timestamp.
func (db *DB) MarkQuerySuccess(ctx context.Context, queryID uuid.UUID) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE evidence_queries
		 SET status = $1, error_message = NULL, fetched_at = NOW(), updated_at = NOW()
		 WHERE id = $2`,
		QueryStatusSuccess, queryID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark query success: %w", err)
	}
	return nil
}

// MarkQueryError records a failed refresh with its message. The previous
// fetched_at is preserved so cached data keeps its age.
func (db *DB) MarkQueryError(ctx context.Context, queryID uuid.UUID, message string) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE evidence_queries SET status = $1, error_message = $2, updated_at = NOW() WHERE id = $3`,
		QueryStatusError, message, queryID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark query error: %w", err)
	}
	return nil
}

// InvalidateEvidenceQuery forces the next lookup to refresh by clearing the
// fetch timestamp.
func (db *DB) InvalidateEvidenceQuery(ctx context.Context, queryID uuid.UUID) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE evidence_queries SET fetched_at = NULL, status = $1, updated_at = NOW() WHERE id = $2`,
		QueryStatusIdle, queryID,
	)
	if err != nil {
		return fmt.Errorf("failed to invalidate evidence query: %w", err)
	}
	return nil
}

// UpsertMarketPosting stores a provider posting, keyed by (provider,
// provider_id). Re-upserting the same posting is idempotent.
func (db *DB) UpsertMarketPosting(ctx context.Context, p *MarketPosting) error {
	err := db.pool.QueryRow(ctx,
		`INSERT INTO market_postings (query_id, provider, provider_id, title, company, location, description, redirect_url)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (provider, provider_id) DO UPDATE SET
		     query_id = $1,
		     title = $4,
		     company = $5,
		     location = $6,
		     description = $7,
		     redirect_url = $8
		 RETURNING id, created_at`,
		p.QueryID, p.Provider, p.ProviderID, p.Title, p.Company, p.Location,
		p.Description, p.RedirectURL,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert market posting: %w", err)
	}
	return nil
}

// ListMarketPostings retrieves all stored postings for a query.
func (db *DB) ListMarketPostings(ctx context.Context, queryID uuid.UUID) ([]MarketPosting, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, query_id, provider, provider_id, title, company, location, description, redirect_url, created_at
		 FROM market_postings
		 WHERE query_id = $1
		 ORDER BY created_at, provider_id`,
		queryID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list market postings: %w", err)
	}
	defer rows.Close()

	var postings []MarketPosting
	for rows.Next() {
		var p MarketPosting
		if err := rows.Scan(&p.ID, &p.QueryID, &p.Provider, &p.ProviderID, &p.Title,
			&p.Company, &p.Location, &p.Description, &p.RedirectURL, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan market posting: %w", err)
		}
		postings = append(postings, p)
	}
	return postings, nil
}

// ReplaceQueryRequirements replaces the aggregated requirement rows for a
// query inside one transaction.
func (db *DB) ReplaceQueryRequirements(ctx context.Context, queryID uuid.UUID, reqs []requirements.Aggregated) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx,
		`DELETE FROM query_requirements WHERE query_id = $1`, queryID); err != nil {
		return fmt.Errorf("failed to clear query requirements: %w", err)
	}

	for _, r := range reqs {
		evidenceJSON, err := json.Marshal(r.Evidence)
		if err != nil {
			return fmt.Errorf("failed to marshal evidence: %w", err)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO query_requirements (query_id, type, label, normalized_key, evidence, frequency)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			queryID, string(r.Type), r.Label, r.NormalizedKey, evidenceJSON, r.Frequency,
		); err != nil {
			return fmt.Errorf("failed to insert query requirement: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetQueryRequirements retrieves the stored aggregated requirements for a
// query, in stored rank order.
func (db *DB) GetQueryRequirements(ctx context.Context, queryID uuid.UUID) ([]requirements.Aggregated, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT type, label, normalized_key, evidence, frequency
		 FROM query_requirements
		 WHERE query_id = $1
		 ORDER BY frequency DESC, type, label`,
		queryID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get query requirements: %w", err)
	}
	defer rows.Close()

	var reqs []requirements.Aggregated
	for rows.Next() {
		var r requirements.Aggregated
		var typ string
		var evidenceJSON []byte
		if err := rows.Scan(&typ, &r.Label, &r.NormalizedKey, &evidenceJSON, &r.Frequency); err != nil {
			return nil, fmt.Errorf("failed to scan query requirement: %w", err)
		}
		r.Type = requirements.Type(typ)
		if evidenceJSON != nil {
			_ = json.Unmarshal(evidenceJSON, &r.Evidence)
		}
		reqs = append(reqs, r)
	}
	return reqs, nil
}
