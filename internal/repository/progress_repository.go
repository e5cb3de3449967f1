package repository

import (
	"context"

	"github.com/fluentpath/ielts-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProgressRepository is the durable store of per-learner lesson completion
// records. It is the engine's single mutation point.
type ProgressRepository struct {
	pool *pgxpool.Pool
}

// NewProgressRepository creates a new ProgressRepository.
func NewProgressRepository(pool *pgxpool.Pool) *ProgressRepository {
	return &ProgressRepository{pool: pool}
}

// GetCompletions retrieves all completion records for one learner in one
// course.
func (r *ProgressRepository) GetCompletions(ctx context.Context, learnerID int, courseID uuid.UUID) ([]model.CompletionRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT lc.learner_id, lc.lesson_id, lc.completed, lc.started_at, lc.completed_at
		 FROM lesson_completions lc
		 JOIN lessons l ON lc.lesson_id = l.id
		 JOIN units u ON l.unit_id = u.id
		 WHERE lc.learner_id = $1 AND u.course_id = $2`, learnerID, courseID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []model.CompletionRecord
	for rows.Next() {
		var c model.CompletionRecord
		if err := rows.Scan(&c.UserID, &c.LessonID, &c.Completed, &c.StartedAt, &c.CompletedAt); err != nil {
			return nil, err
		}
		records = append(records, c)
	}
	return records, rows.Err()
}

// UpsertCompletion records lesson entry or completion, idempotently keyed by
// (learner, lesson). Concurrent signals for the same pair collapse into one
// row, and the completed flag never regresses: completing an already
// completed lesson is a no-op, entering a completed lesson does not reopen it.
func (r *ProgressRepository) UpsertCompletion(ctx context.Context, learnerID int, lessonID uuid.UUID, completed bool) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO lesson_completions (learner_id, lesson_id, completed, completed_at)
		 VALUES ($1, $2, $3, CASE WHEN $3 THEN NOW() END)
		 ON CONFLICT (learner_id, lesson_id) DO UPDATE
		 SET completed    = lesson_completions.completed OR EXCLUDED.completed,
		     completed_at = COALESCE(lesson_completions.completed_at, EXCLUDED.completed_at)`,
		learnerID, lessonID, completed,
	)
	return err
}
