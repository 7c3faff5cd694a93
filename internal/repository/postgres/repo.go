// Package postgres stores profiles in PostgreSQL with the pgvector extension.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/lib/pq"

	"github.com/kailas-cloud/profilematch/internal/domain"
	domprofile "github.com/kailas-cloud/profilematch/internal/domain/profile"
)

// Config describes the table backing a Repo.
type Config struct {
	DSN        string
	Collection string // table name
	Dimensions int
}

// Repo implements usecase/profile.Repository over PostgreSQL + pgvector.
type Repo struct {
	db  *sql.DB
	cfg Config
	q   queries
}

// Open connects, then creates the extension, table and HNSW index if missing.
func Open(ctx context.Context, cfg Config) (*Repo, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("postgres dsn is required")
	}
	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	r := &Repo{db: db, cfg: cfg, q: newQueries(cfg.Collection, cfg.Dimensions)}
	if err := r.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

func (r *Repo) migrate(ctx context.Context) error {
	for _, stmt := range r.q.schema {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate %s: %w", r.cfg.Collection, err)
		}
	}
	return nil
}

// Ping checks connectivity.
func (r *Repo) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	return nil
}

// Close closes the connection pool.
func (r *Repo) Close() {
	_ = r.db.Close()
}

// Insert writes a profile row. An existing row with the same ID is overwritten.
func (r *Repo) Insert(ctx context.Context, p *domprofile.Profile, vec []float32) error {
	if len(vec) != r.cfg.Dimensions {
		return fmt.Errorf("%w: got %d, want %d", domain.ErrVectorDimMismatch, len(vec), r.cfg.Dimensions)
	}
	_, err := r.db.ExecContext(ctx, r.q.insert,
		p.ID(), p.Name(), p.Description(), nullInt(p.Age()), nullString(p.Location()),
		p.CreatedAt().UTC(), vectorLiteral(vec),
	)
	if err != nil {
		return fmt.Errorf("insert %s: %w", p.ID(), err)
	}
	return nil
}

// Get returns a profile by ID.
func (r *Repo) Get(ctx context.Context, id string) (domprofile.Profile, error) {
	p, _, err := scanProfile(r.db.QueryRowContext(ctx, r.q.get, id), false)
	if errors.Is(err, sql.ErrNoRows) {
		return domprofile.Profile{}, domain.ErrProfileNotFound
	}
	if err != nil {
		return domprofile.Profile{}, fmt.Errorf("get %s: %w", id, err)
	}
	return p, nil
}

// Query returns up to k nearest profiles by cosine distance, never including excludeID.
func (r *Repo) Query(ctx context.Context, vec []float32, k int, excludeID string) ([]domprofile.Neighbor, error) {
	rows, err := r.db.QueryContext(ctx, r.q.knn, vectorLiteral(vec), excludeID, domprofile.FetchSize(k, excludeID))
	if err != nil {
		return nil, fmt.Errorf("knn %s: %w", r.cfg.Collection, err)
	}
	defer rows.Close()

	var neighbors []domprofile.Neighbor
	for rows.Next() {
		p, dist, err := scanProfile(rows, true)
		if err != nil {
			return nil, fmt.Errorf("scan knn row: %w", err)
		}
		neighbors = append(neighbors, domprofile.Neighbor{Profile: p, Distance: dist})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("knn rows: %w", err)
	}
	return domprofile.TrimNeighbors(neighbors, k, excludeID), nil
}

// List returns up to limit profiles, oldest first.
func (r *Repo) List(ctx context.Context, limit int) ([]domprofile.Profile, error) {
	rows, err := r.db.QueryContext(ctx, r.q.list, limit)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", r.cfg.Collection, err)
	}
	defer rows.Close()

	out := make([]domprofile.Profile, 0, limit)
	for rows.Next() {
		p, _, err := scanProfile(rows, false)
		if err != nil {
			return nil, fmt.Errorf("scan list row: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list rows: %w", err)
	}
	return out, nil
}

// Delete removes a profile and reports whether it existed.
func (r *Repo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, r.q.delete, id)
	if err != nil {
		return false, fmt.Errorf("delete %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete %s: %w", id, err)
	}
	return n > 0, nil
}

// Count returns the number of rows.
func (r *Repo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, r.q.count).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", r.cfg.Collection, err)
	}
	return n, nil
}

// Name returns the table name.
func (r *Repo) Name() string { return r.cfg.Collection }

// Location returns the DSN with credentials removed.
func (r *Repo) Location() string { return redactDSN(r.cfg.DSN) }

type scanner interface {
	Scan(dest ...any) error
}

func scanProfile(row scanner, withDistance bool) (domprofile.Profile, float64, error) {
	var (
		id, name, description string
		age                   sql.NullInt64
		location              sql.NullString
		createdAt             time.Time
		distance              float64
	)
	dest := []any{&id, &name, &description, &age, &location, &createdAt}
	if withDistance {
		dest = append(dest, &distance)
	}
	if err := row.Scan(dest...); err != nil {
		return domprofile.Profile{}, 0, err
	}

	var agePtr *int
	if age.Valid {
		n := int(age.Int64)
		agePtr = &n
	}
	var locPtr *string
	if location.Valid {
		locPtr = &location.String
	}

	return domprofile.Reconstruct(id, name, description, agePtr, locPtr, createdAt.UTC()), distance, nil
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

// redactDSN strips the password from URL-form DSNs. Key/value DSNs are
// summarised as their driver name since they may carry a password= pair.
func redactDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.Scheme == "" {
		return "postgres"
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.User(u.User.Username())
	}
	u.RawQuery = ""
	return u.String()
}

// quoteIdent guards table and index names built from configuration.
func quoteIdent(s string) string {
	return pq.QuoteIdentifier(s)
}
