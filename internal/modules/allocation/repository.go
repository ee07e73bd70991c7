package allocation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/quantfolio/allocengine/internal/database"
)

// Repository persists generated recommendations. The full recommendation is
// stored as a msgpack blob; indexed columns carry only what listings and
// retention need.
type Repository struct {
	db  *database.DB
	log zerolog.Logger
}

// NewRepository creates a recommendation repository.
func NewRepository(db *database.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "recommendations").Logger(),
	}
}

// EnsureSchema creates the recommendations table when missing.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	const schema = `
		CREATE TABLE IF NOT EXISTS recommendations (
			id           TEXT PRIMARY KEY,
			created_at   INTEGER NOT NULL,
			risk_profile TEXT NOT NULL,
			objective    TEXT NOT NULL,
			payload      BLOB NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_recommendations_created_at
			ON recommendations(created_at);
	`
	if _, err := r.db.Conn().ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create recommendations schema: %w", err)
	}
	return nil
}

// Save stores one recommendation.
func (r *Repository) Save(ctx context.Context, rec *AllocationRecommendation) error {
	payload, err := msgpack.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode recommendation %s: %w", rec.ID, err)
	}

	_, err = r.db.Conn().ExecContext(ctx,
		`INSERT INTO recommendations (id, created_at, risk_profile, objective, payload)
		 VALUES (?, ?, ?, ?, ?)`,
		rec.ID, rec.Timestamp.Unix(), string(rec.RiskProfile), string(rec.Objective), payload,
	)
	if err != nil {
		return fmt.Errorf("failed to save recommendation %s: %w", rec.ID, err)
	}

	r.log.Debug().Str("id", rec.ID).Msg("Saved recommendation")
	return nil
}

// Get retrieves one recommendation by id. The boolean is false when no row
// exists.
func (r *Repository) Get(ctx context.Context, id string) (*AllocationRecommendation, bool, error) {
	var payload []byte
	err := r.db.Conn().QueryRowContext(ctx,
		`SELECT payload FROM recommendations WHERE id = ?`, id,
	).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to load recommendation %s: %w", id, err)
	}

	var rec AllocationRecommendation
	if err := msgpack.Unmarshal(payload, &rec); err != nil {
		return nil, false, fmt.Errorf("failed to decode recommendation %s: %w", id, err)
	}
	return &rec, true, nil
}

// Recent returns the newest recommendations, newest first.
func (r *Repository) Recent(ctx context.Context, limit int) ([]*AllocationRecommendation, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.Conn().QueryContext(ctx,
		`SELECT payload FROM recommendations ORDER BY created_at DESC, id LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list recommendations: %w", err)
	}
	defer rows.Close()

	var recs []*AllocationRecommendation
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan recommendation row: %w", err)
		}
		var rec AllocationRecommendation
		if err := msgpack.Unmarshal(payload, &rec); err != nil {
			return nil, fmt.Errorf("failed to decode recommendation row: %w", err)
		}
		recs = append(recs, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recommendations: %w", err)
	}
	return recs, nil
}

// DeleteOlderThan removes recommendations created before cutoff and returns
// the number of rows deleted.
func (r *Repository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.Conn().ExecContext(ctx,
		`DELETE FROM recommendations WHERE created_at < ?`, cutoff.Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old recommendations: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted recommendations: %w", err)
	}
	return deleted, nil
}
