package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sandevgo/sazed/internal/core"
)

type MemoryRepo struct {
	db *sql.DB
}

func NewMemoryRepo(db *sql.DB) *MemoryRepo {
	return &MemoryRepo{db: db}
}

// acceptExpr decides, inside the upsert, whether the incoming row replaces
// the existing one. An explicit source outranks an inferred one regardless
// of confidence; at equal rank the new value wins only when its confidence
// is at least the existing one.
const acceptExpr = `
	(CASE WHEN excluded.source = 'user_explicit' THEN 1 ELSE 0 END)
		> (CASE WHEN memory.source = 'user_explicit' THEN 1 ELSE 0 END)
	OR (
		(CASE WHEN excluded.source = 'user_explicit' THEN 1 ELSE 0 END)
			= (CASE WHEN memory.source = 'user_explicit' THEN 1 ELSE 0 END)
		AND excluded.confidence >= memory.confidence
	)`

var upsertQuery = fmt.Sprintf(`
	INSERT INTO memory (fact_type, key, value, confidence, source)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT (fact_type, key) DO UPDATE SET
		value      = CASE WHEN %[1]s THEN excluded.value      ELSE memory.value      END,
		confidence = CASE WHEN %[1]s THEN excluded.confidence ELSE memory.confidence END,
		source     = CASE WHEN %[1]s THEN excluded.source     ELSE memory.source     END,
		updated_at = CASE WHEN %[1]s THEN CURRENT_TIMESTAMP   ELSE memory.updated_at END
	RETURNING fact_type, key, value, confidence, source, created_at, updated_at`, acceptExpr)

// Upsert applies the confidence-gated merge in a single atomic statement,
// so concurrent writers to the same key serialize on the row.
func (r *MemoryRepo) Upsert(ctx context.Context, fact core.Fact) (core.Fact, error) {
	row := r.db.QueryRowContext(ctx, upsertQuery,
		fact.FactType, fact.Key, fact.Value, fact.Confidence, fact.Source)

	var out core.Fact
	if err := row.Scan(&out.FactType, &out.Key, &out.Value, &out.Confidence, &out.Source, &out.CreatedAt, &out.UpdatedAt); err != nil {
		return core.Fact{}, fmt.Errorf("failed to upsert fact: %w", err)
	}
	return out, nil
}

func (r *MemoryRepo) Load(ctx context.Context) ([]core.Fact, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT fact_type, key, value, confidence, source, created_at, updated_at
		 FROM memory ORDER BY fact_type, key`)
	if err != nil {
		return nil, fmt.Errorf("failed to load memory: %w", err)
	}
	defer rows.Close()

	var facts []core.Fact
	for rows.Next() {
		var f core.Fact
		if err := rows.Scan(&f.FactType, &f.Key, &f.Value, &f.Confidence, &f.Source, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan fact: %w", err)
		}
		facts = append(facts, f)
	}
	return facts, rows.Err()
}

func (r *MemoryRepo) Delete(ctx context.Context, factType, key string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM memory WHERE fact_type = ? AND key = ?`, factType, key)
	if err != nil {
		return fmt.Errorf("failed to delete fact: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.ErrFactNotFound
	}
	return nil
}
