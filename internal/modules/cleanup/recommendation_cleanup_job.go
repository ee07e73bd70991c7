// Package cleanup holds background retention jobs for the recommendation
// store.
package cleanup

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/quantfolio/allocengine/internal/modules/allocation"
)

// RecommendationCleanupJob deletes stored recommendations older than the
// configured retention window. Runs daily.
type RecommendationCleanupJob struct {
	repo          *allocation.Repository
	retentionDays int
	log           zerolog.Logger
}

// NewRecommendationCleanupJob creates a new retention job.
func NewRecommendationCleanupJob(repo *allocation.Repository, retentionDays int, log zerolog.Logger) *RecommendationCleanupJob {
	return &RecommendationCleanupJob{
		repo:          repo,
		retentionDays: retentionDays,
		log:           log.With().Str("job", "recommendation_cleanup").Logger(),
	}
}

// Name returns the job name for the scheduler.
func (j *RecommendationCleanupJob) Name() string {
	return "recommendation_cleanup"
}

// Run executes the cleanup job.
func (j *RecommendationCleanupJob) Run() error {
	if j.retentionDays <= 0 {
		j.log.Debug().Msg("Retention disabled, skipping cleanup")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cutoff := time.Now().UTC().AddDate(0, 0, -j.retentionDays)
	deleted, err := j.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to prune recommendations: %w", err)
	}

	j.log.Info().
		Int64("deleted", deleted).
		Time("cutoff", cutoff).
		Msg("Recommendation cleanup completed")

	return nil
}
