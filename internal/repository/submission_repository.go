package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/fluentpath/ielts-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const exerciseColumns = `
	es.id, es.learner_id, lr.name, es.lesson_id, l.title, es.skill_type, es.status,
	es.task_achievement_score, es.coherence_cohesion_score,
	es.fluency_coherence_score, es.pronunciation_score,
	es.lexical_resource_score, es.grammatical_range_score,
	es.overall_band_score, es.submitted_at, es.graded_at`

const testColumns = `
	ts.id, ts.attempt_id, ts.question_id, ts.learner_id, lr.name, ta.test_title,
	ts.skill_type, ts.status,
	ts.task_achievement_score, ts.coherence_cohesion_score,
	ts.fluency_coherence_score, ts.pronunciation_score,
	ts.lexical_resource_score, ts.grammatical_range_score,
	ts.overall_band_score, ts.submitted_at, ts.graded_at`

// SubmissionRepository is the raw-row access layer for both submission
// sources. It returns unnormalized rows; the grading package maps them into
// the canonical Submission shape.
type SubmissionRepository struct {
	pool *pgxpool.Pool
}

// NewSubmissionRepository creates a new SubmissionRepository.
func NewSubmissionRepository(pool *pgxpool.Pool) *SubmissionRepository {
	return &SubmissionRepository{pool: pool}
}

// FetchExercise retrieves ad-hoc lesson exercise rows, optionally scoped to
// one learner. No other predicate is applied here: status and skill
// filtering belong after deduplication, in the feed assembler.
func (r *SubmissionRepository) FetchExercise(ctx context.Context, f model.SubmissionFilters) ([]model.ExerciseSubmissionRow, error) {
	query := `SELECT ` + exerciseColumns + `
		FROM exercise_submissions es
		JOIN learners lr ON es.learner_id = lr.id
		JOIN lessons l ON es.lesson_id = l.id
		WHERE 1=1`
	var args []any

	if f.LearnerID != nil {
		args = append(args, *f.LearnerID)
		query += fmt.Sprintf(" AND es.learner_id = $%d", len(args))
	}
	query += " ORDER BY es.submitted_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.ExerciseSubmissionRow
	for rows.Next() {
		var row model.ExerciseSubmissionRow
		if err := rows.Scan(
			&row.ID, &row.LearnerID, &row.LearnerName, &row.LessonID, &row.LessonTitle,
			&row.SkillType, &row.Status,
			&row.TaskAchievementScore, &row.CoherenceCohesionScore,
			&row.FluencyCoherenceScore, &row.PronunciationScore,
			&row.LexicalResourceScore, &row.GrammaticalRangeScore,
			&row.OverallBandScore, &row.SubmittedAt, &row.GradedAt,
		); err != nil {
			return nil, err
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

// FetchTest retrieves timed-test question rows, optionally scoped to one
// learner. Every grading pass of every question comes back; the survivor of
// each (attempt, question) group is chosen downstream, so narrowing here
// would let a stale pass shadow the authoritative one.
func (r *SubmissionRepository) FetchTest(ctx context.Context, f model.SubmissionFilters) ([]model.TestQuestionSubmissionRow, error) {
	query := `SELECT ` + testColumns + `
		FROM test_question_submissions ts
		JOIN test_attempts ta ON ts.attempt_id = ta.id
		JOIN learners lr ON ts.learner_id = lr.id
		WHERE 1=1`
	var args []any

	if f.LearnerID != nil {
		args = append(args, *f.LearnerID)
		query += fmt.Sprintf(" AND ts.learner_id = $%d", len(args))
	}
	query += " ORDER BY ts.submitted_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.TestQuestionSubmissionRow
	for rows.Next() {
		var row model.TestQuestionSubmissionRow
		if err := rows.Scan(
			&row.ID, &row.AttemptID, &row.QuestionID, &row.LearnerID, &row.LearnerName,
			&row.TestTitle, &row.SkillType, &row.Status,
			&row.TaskAchievementScore, &row.CoherenceCohesionScore,
			&row.FluencyCoherenceScore, &row.PronunciationScore,
			&row.LexicalResourceScore, &row.GrammaticalRangeScore,
			&row.OverallBandScore, &row.SubmittedAt, &row.GradedAt,
		); err != nil {
			return nil, err
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

// GetExerciseByID retrieves one exercise submission row.
func (r *SubmissionRepository) GetExerciseByID(ctx context.Context, id uuid.UUID) (*model.ExerciseSubmissionRow, error) {
	row := &model.ExerciseSubmissionRow{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+exerciseColumns+`
		 FROM exercise_submissions es
		 JOIN learners lr ON es.learner_id = lr.id
		 JOIN lessons l ON es.lesson_id = l.id
		 WHERE es.id = $1`, id,
	).Scan(
		&row.ID, &row.LearnerID, &row.LearnerName, &row.LessonID, &row.LessonTitle,
		&row.SkillType, &row.Status,
		&row.TaskAchievementScore, &row.CoherenceCohesionScore,
		&row.FluencyCoherenceScore, &row.PronunciationScore,
		&row.LexicalResourceScore, &row.GrammaticalRangeScore,
		&row.OverallBandScore, &row.SubmittedAt, &row.GradedAt,
	)
	if err != nil {
		return nil, err
	}
	return row, nil
}

// GetTestByID retrieves one test question submission row.
func (r *SubmissionRepository) GetTestByID(ctx context.Context, id uuid.UUID) (*model.TestQuestionSubmissionRow, error) {
	row := &model.TestQuestionSubmissionRow{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+testColumns+`
		 FROM test_question_submissions ts
		 JOIN test_attempts ta ON ts.attempt_id = ta.id
		 JOIN learners lr ON ts.learner_id = lr.id
		 WHERE ts.id = $1`, id,
	).Scan(
		&row.ID, &row.AttemptID, &row.QuestionID, &row.LearnerID, &row.LearnerName,
		&row.TestTitle, &row.SkillType, &row.Status,
		&row.TaskAchievementScore, &row.CoherenceCohesionScore,
		&row.FluencyCoherenceScore, &row.PronunciationScore,
		&row.LexicalResourceScore, &row.GrammaticalRangeScore,
		&row.OverallBandScore, &row.SubmittedAt, &row.GradedAt,
	)
	if err != nil {
		return nil, err
	}
	return row, nil
}

// CreateExercise inserts a new exercise submission in PENDING state.
func (r *SubmissionRepository) CreateExercise(ctx context.Context, learnerID int, lessonID uuid.UUID, skill model.SkillType, body, audioURL string) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx,
		`INSERT INTO exercise_submissions (learner_id, lesson_id, skill_type, status, body, audio_url)
		 VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''))
		 RETURNING id`,
		learnerID, lessonID, skill, model.StatusPending, body, audioURL,
	).Scan(&id)
	return id, err
}

// UpdateStatus sets the lifecycle status on a submission in either source
// table. Used for the advisory PENDING → GRADING transition and for the
// GRADED → RETURNED hand-back; graded scores themselves flow through the
// grade worker.
func (r *SubmissionRepository) UpdateStatus(ctx context.Context, kind model.SourceKind, id uuid.UUID, status model.SubmissionStatus) error {
	table := "exercise_submissions"
	if kind == model.SourceKindTest {
		table = "test_question_submissions"
	}
	_, err := r.pool.Exec(ctx,
		`UPDATE `+table+` SET status = $1 WHERE id = $2`, status, id)
	return err
}

// SetReturnedAt stamps the hand-back time alongside the RETURNED status.
func (r *SubmissionRepository) SetReturnedAt(ctx context.Context, kind model.SourceKind, id uuid.UUID, at time.Time) error {
	table := "exercise_submissions"
	if kind == model.SourceKindTest {
		table = "test_question_submissions"
	}
	_, err := r.pool.Exec(ctx,
		`UPDATE `+table+` SET status = $1, returned_at = $2 WHERE id = $3`,
		model.StatusReturned, at, id)
	return err
}
