package researcher

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	id "fundledger/pkg/domain"
	"fundledger/pkg/platform/sentinel"
)

// PostgresStore persists researcher records in PostgreSQL. The serialized
// ledger transaction runner still owns cross-entity atomicity; this store
// only guarantees per-statement consistency.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Schema is applied by the integration harness; kept here so the store and
// its table definition travel together.
const Schema = `
CREATE TABLE IF NOT EXISTS researchers (
    principal     TEXT PRIMARY KEY,
    name          TEXT NOT NULL,
    institution   TEXT NOT NULL,
    expertise     TEXT[] NOT NULL DEFAULT '{}',
    reputation    BIGINT NOT NULL,
    verified      BOOLEAN NOT NULL DEFAULT FALSE,
    projects      BIGINT[] NOT NULL DEFAULT '{}',
    registered_at TIMESTAMPTZ NOT NULL
)`

// EnsureSchema creates the researchers table if missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("ensure researchers schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Save(ctx context.Context, r *Researcher) error {
	projects := make([]int64, len(r.Projects))
	for i, p := range r.Projects {
		projects[i] = int64(p)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO researchers (principal, name, institution, expertise, reputation, verified, projects, registered_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (principal) DO UPDATE SET
			name = EXCLUDED.name,
			institution = EXCLUDED.institution,
			expertise = EXCLUDED.expertise,
			reputation = EXCLUDED.reputation,
			verified = EXCLUDED.verified,
			projects = EXCLUDED.projects,
			registered_at = EXCLUDED.registered_at`,
		r.Principal.String(), r.Name, r.Institution, pq.Array(r.Expertise),
		int64(r.Reputation), r.Verified, pq.Array(projects), r.RegisteredAt,
	)
	if err != nil {
		return fmt.Errorf("save researcher: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByPrincipal(ctx context.Context, principal id.Principal) (*Researcher, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT principal, name, institution, expertise, reputation, verified, projects, registered_at
		FROM researchers WHERE principal = $1`, principal.String())

	var (
		r          Researcher
		rawP       string
		reputation int64
		expertise  pq.StringArray
		projects   pq.Int64Array
	)
	err := row.Scan(&rawP, &r.Name, &r.Institution, &expertise, &reputation, &r.Verified, &projects, &r.RegisteredAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find researcher: %w", err)
	}

	r.Principal = id.Principal(rawP)
	r.Reputation = uint64(reputation)
	r.Expertise = []string(expertise)
	r.Projects = make([]id.ProjectID, len(projects))
	for i, p := range projects {
		r.Projects[i] = id.ProjectID(p)
	}
	return &r, nil
}

func (s *PostgresStore) AppendProject(ctx context.Context, principal id.Principal, projectID id.ProjectID) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE researchers SET projects = array_append(projects, $2) WHERE principal = $1`,
		principal.String(), int64(projectID))
	if err != nil {
		return fmt.Errorf("append project: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) BumpReputation(ctx context.Context, principal id.Principal, delta uint64) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE researchers SET reputation = reputation + $2 WHERE principal = $1`,
		principal.String(), int64(delta))
	if err != nil {
		return fmt.Errorf("bump reputation: %w", err)
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
