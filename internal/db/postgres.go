// Package db persists plan-run audit records: which plan ran, its public
// shape (operator sequence, sizes, bucket counts), and its outcome. It
// never stores a secret cell value or flag — only what is already public.
// Built on pgxpool, with schema.sql loaded from disk and context-scoped
// queries.
package db

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

// Connect opens a pgx connection pool and verifies it with a ping.
func Connect(connStr string) (*PostgresStore, error) {
	pool, err := pgxpool.New(context.Background(), connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("ping failed: %w", err)
	}
	log.Println("connected to PostgreSQL for plan-run audit log")
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// InitSchema loads and executes schema.sql.
func (s *PostgresStore) InitSchema() error {
	schemaBytes, err := os.ReadFile("internal/db/schema.sql")
	if err != nil {
		return fmt.Errorf("failed to read schema file: %w", err)
	}
	if _, err := s.pool.Exec(context.Background(), string(schemaBytes)); err != nil {
		return fmt.Errorf("failed to execute schema migrations: %w", err)
	}
	log.Println("plan-run audit schema initialized")
	return nil
}

// PlanRun is the public audit record of one executed plan: operator
// sequence and row counts, never cell contents.
type PlanRun struct {
	PlanID      string
	OpSequence  []string
	BucketCount int
	OutputRows  int
	DurationMS  int64
	Error       string
	// Digest fingerprints the run's public shape (plan ID, op sequence,
	// bucket count, output rows) so a tampered audit row can be detected
	// by recomputing it. Computed with chainhash.HashH, the same
	// double-SHA256 used for block and transaction IDs, repurposed here
	// for audit-log integrity rather than chain identity.
	Digest string
}

func digestPlanRun(r PlanRun) string {
	var b strings.Builder
	b.WriteString(r.PlanID)
	b.WriteByte('|')
	b.WriteString(strings.Join(r.OpSequence, ","))
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(r.BucketCount))
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(r.OutputRows))
	sum := chainhash.HashH([]byte(b.String()))
	return sum.String()
}

// SavePlanRun records the outcome of one plan execution.
func (s *PostgresStore) SavePlanRun(ctx context.Context, r PlanRun) error {
	r.Digest = digestPlanRun(r)
	sql := `
		INSERT INTO plan_runs (plan_id, op_sequence, bucket_count, output_rows, duration_ms, error, digest)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (plan_id) DO UPDATE
		SET op_sequence = EXCLUDED.op_sequence, bucket_count = EXCLUDED.bucket_count,
		    output_rows = EXCLUDED.output_rows, duration_ms = EXCLUDED.duration_ms,
		    error = EXCLUDED.error, digest = EXCLUDED.digest;
	`
	_, err := s.pool.Exec(ctx, sql, r.PlanID, r.OpSequence, r.BucketCount, r.OutputRows, r.DurationMS, r.Error, r.Digest)
	return err
}

// VerifyDigest reports whether r.Digest still matches its recomputed
// fingerprint, i.e. whether the record has been altered since it was saved.
func VerifyDigest(r PlanRun) bool {
	return r.Digest == digestPlanRun(r)
}

// ListPlanRuns returns the most recent plan runs, newest first.
func (s *PostgresStore) ListPlanRuns(ctx context.Context, page, limit int) ([]PlanRun, int, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit

	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM plan_runs`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT plan_id, op_sequence, bucket_count, output_rows, duration_ms, error, digest
		FROM plan_runs ORDER BY created_at DESC LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []PlanRun
	for rows.Next() {
		var r PlanRun
		if err := rows.Scan(&r.PlanID, &r.OpSequence, &r.BucketCount, &r.OutputRows, &r.DurationMS, &r.Error, &r.Digest); err != nil {
			return nil, 0, err
		}
		out = append(out, r)
	}
	if out == nil {
		out = []PlanRun{}
	}
	return out, total, nil
}

// GetPool exposes the pool for components that need raw access, such as a
// shadow-verification pass over recent audit rows.
func (s *PostgresStore) GetPool() *pgxpool.Pool {
	return s.pool
}
