package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fluentpath/ielts-backend/internal/config"
	"github.com/fluentpath/ielts-backend/internal/grading"
	"github.com/fluentpath/ielts-backend/internal/model"
	"github.com/fluentpath/ielts-backend/internal/websocket"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Domain errors.
var (
	ErrSubmissionNotFound  = errors.New("submission not found")
	ErrGradeAlreadyFinal   = errors.New("submission has been returned and can no longer be graded")
	ErrSubmissionNotGraded = errors.New("submission is not fully graded yet")
	ErrUnknownCriterion    = errors.New("criterion does not apply to this skill type")
)

// SubmissionSource is the raw-row access layer behind the feed pipeline. Both
// submission tables sit behind it.
type SubmissionSource interface {
	FetchExercise(ctx context.Context, f model.SubmissionFilters) ([]model.ExerciseSubmissionRow, error)
	FetchTest(ctx context.Context, f model.SubmissionFilters) ([]model.TestQuestionSubmissionRow, error)
	GetExerciseByID(ctx context.Context, id uuid.UUID) (*model.ExerciseSubmissionRow, error)
	GetTestByID(ctx context.Context, id uuid.UUID) (*model.TestQuestionSubmissionRow, error)
	CreateExercise(ctx context.Context, learnerID int, lessonID uuid.UUID, skill model.SkillType, body, audioURL string) (uuid.UUID, error)
	UpdateStatus(ctx context.Context, kind model.SourceKind, id uuid.UUID, status model.SubmissionStatus) error
	SetReturnedAt(ctx context.Context, kind model.SourceKind, id uuid.UUID, at time.Time) error
}

// gradePersistPayload is the queue message consumed by the grade worker. The
// JSON shape must stay in sync with the worker's decoder.
type gradePersistPayload struct {
	SourceKind            model.SourceKind       `json:"source_kind"`
	SubmissionID          string                 `json:"submission_id"`
	Status                model.SubmissionStatus `json:"status"`
	TaskAchievementScore  *float64               `json:"task_achievement_score"`
	CoherenceCohesion     *float64               `json:"coherence_cohesion_score"`
	FluencyCoherenceScore *float64               `json:"fluency_coherence_score"`
	PronunciationScore    *float64               `json:"pronunciation_score"`
	LexicalResourceScore  *float64               `json:"lexical_resource_score"`
	GrammaticalRangeScore *float64               `json:"grammatical_range_score"`
	OverallBandScore      *float64               `json:"overall_band_score"`
}

// SubmissionService runs the submission pipeline over both sources: fetch,
// normalize, deduplicate, score, assemble. It also records new exercise work
// and applies grader actions, with score persistence offloaded to the grade
// worker queue.
type SubmissionService struct {
	source SubmissionSource
	rdb    *redis.Client
	log    zerolog.Logger
}

// NewSubmissionService creates a new SubmissionService.
func NewSubmissionService(source SubmissionSource, rdb *redis.Client, log zerolog.Logger) *SubmissionService {
	return &SubmissionService{
		source: source,
		rdb:    rdb,
		log:    log.With().Str("component", "submission_service").Logger(),
	}
}

// ListGradingQueue returns the deduplicated, scored, filtered submission page
// for the grader workspace.
func (s *SubmissionService) ListGradingQueue(ctx context.Context, mf model.SubmissionFilters, f grading.Filters) (*grading.FeedView, error) {
	subs, err := s.pipeline(ctx, mf)
	if err != nil {
		return nil, err
	}
	view := grading.Assemble(nil, subs, f)
	return &view, nil
}

// ListLearnerHistory returns one learner's own submission feed.
func (s *SubmissionService) ListLearnerHistory(ctx context.Context, learnerID int, f grading.Filters) (*grading.FeedView, error) {
	mf := model.SubmissionFilters{LearnerID: &learnerID}
	subs, err := s.pipeline(ctx, mf)
	if err != nil {
		return nil, err
	}
	view := grading.Assemble(nil, subs, f)
	return &view, nil
}

// pipeline fetches raw rows from both sources and runs them through
// normalization, deduplication, and score aggregation. Rows with an
// unsupported skill type are dropped and logged, never fatal.
func (s *SubmissionService) pipeline(ctx context.Context, mf model.SubmissionFilters) ([]model.Submission, error) {
	exRows, err := s.source.FetchExercise(ctx, mf)
	if err != nil {
		return nil, fmt.Errorf("fetch exercise submissions: %w", err)
	}
	testRows, err := s.source.FetchTest(ctx, mf)
	if err != nil {
		return nil, fmt.Errorf("fetch test submissions: %w", err)
	}

	items := make([]model.Submission, 0, len(exRows)+len(testRows))
	for _, row := range exRows {
		sub, err := grading.NormalizeExercise(row)
		if err != nil {
			s.log.Warn().Err(err).Str("submission_id", row.ID.String()).Msg("dropping exercise row")
			continue
		}
		items = append(items, sub)
	}
	for _, row := range testRows {
		sub, err := grading.NormalizeTest(row)
		if err != nil {
			s.log.Warn().Err(err).Str("submission_id", row.ID.String()).Msg("dropping test row")
			continue
		}
		items = append(items, sub)
	}

	deduped, diags := grading.DedupeWithDiagnostics(items)
	for _, d := range diags {
		skills := make([]string, 0, len(d.SkillTypes))
		for _, st := range d.SkillTypes {
			skills = append(skills, string(st))
		}
		s.log.Warn().
			Str("dedup_key", d.DedupKey).
			Strs("skill_types", skills).
			Msg("inconsistent skill types within dedup group")
	}

	return grading.ScoreSubmissions(deduped), nil
}

// SubmitExercise records new exercise work for a learner in PENDING state.
func (s *SubmissionService) SubmitExercise(ctx context.Context, learnerID int, lessonID uuid.UUID, req model.SubmitExerciseRequest) (uuid.UUID, error) {
	id, err := s.source.CreateExercise(ctx, learnerID, lessonID, req.SkillType, req.Body, req.AudioURL)
	if err != nil {
		return uuid.Nil, fmt.Errorf("create exercise submission: %w", err)
	}

	s.publishFeedEvent(ctx, websocket.FeedEvent{
		Event:        websocket.EventSubmissionCreated,
		SubmissionID: id.String(),
		SourceKind:   model.SourceKindExercise,
		Status:       model.StatusPending,
		SkillType:    req.SkillType,
	})

	s.log.Info().
		Int("learner_id", learnerID).
		Str("submission_id", id.String()).
		Str("skill_type", string(req.SkillType)).
		Msg("Exercise submitted")
	return id, nil
}

// GetSubmission retrieves one submission in its normalized shape.
func (s *SubmissionService) GetSubmission(ctx context.Context, kind model.SourceKind, id uuid.UUID) (*model.Submission, error) {
	var (
		sub model.Submission
		err error
	)
	switch kind {
	case model.SourceKindTest:
		var row *model.TestQuestionSubmissionRow
		row, err = s.source.GetTestByID(ctx, id)
		if err == nil {
			sub, err = grading.NormalizeTest(*row)
		}
	default:
		var row *model.ExerciseSubmissionRow
		row, err = s.source.GetExerciseByID(ctx, id)
		if err == nil {
			sub, err = grading.NormalizeExercise(*row)
		}
	}
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSubmissionNotFound
		}
		return nil, err
	}
	return &sub, nil
}

// OpenSubmission marks a pending submission as GRADING when a grader opens
// it. The transition is advisory and idempotent: opening an item that has
// already moved on leaves it untouched.
func (s *SubmissionService) OpenSubmission(ctx context.Context, kind model.SourceKind, id uuid.UUID) (*model.Submission, error) {
	sub, err := s.GetSubmission(ctx, kind, id)
	if err != nil {
		return nil, err
	}

	if sub.Status != model.StatusPending {
		return sub, nil
	}

	if err := s.source.UpdateStatus(ctx, kind, id, model.StatusGrading); err != nil {
		return nil, fmt.Errorf("mark grading: %w", err)
	}
	sub.Status = model.StatusGrading

	s.publishFeedEvent(ctx, websocket.FeedEvent{
		Event:        websocket.EventSubmissionOpened,
		SubmissionID: id.String(),
		SourceKind:   kind,
		Status:       model.StatusGrading,
		LearnerName:  sub.LearnerName,
		SkillType:    sub.SkillType,
	})
	return sub, nil
}

// ScorePreview computes the overall band a criteria set would produce,
// without persisting anything.
func (s *SubmissionService) ScorePreview(req model.ScorePreviewRequest) (*float64, error) {
	scores, err := admitCriteria(req.SkillType, req.CriteriaScores)
	if err != nil {
		return nil, err
	}
	return grading.ComputeOverallScore(req.SkillType, scores), nil
}

// SaveGrade merges the grader's scores into the submission and queues the
// result for durable persistence. The submission becomes GRADED once every
// required criterion is scored, GRADING otherwise; statuses only move
// forward. Returns the post-merge view.
func (s *SubmissionService) SaveGrade(ctx context.Context, kind model.SourceKind, id uuid.UUID, req model.SaveGradeRequest) (*model.Submission, error) {
	sub, err := s.GetSubmission(ctx, kind, id)
	if err != nil {
		return nil, err
	}

	merged, err := mergeGrade(*sub, req.CriteriaScores)
	if err != nil {
		return nil, err
	}

	payload := persistPayload(kind, merged)
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal grade payload: %w", err)
	}
	if err := s.rdb.RPush(ctx, config.WorkerKey.PersistGradesQueue, raw).Err(); err != nil {
		return nil, fmt.Errorf("enqueue grade: %w", err)
	}

	s.publishFeedEvent(ctx, websocket.FeedEvent{
		Event:            websocket.EventGradeSaved,
		SubmissionID:     id.String(),
		SourceKind:       kind,
		Status:           merged.Status,
		LearnerName:      merged.LearnerName,
		SkillType:        merged.SkillType,
		OverallBandScore: merged.OverallBandScore,
	})

	s.log.Info().
		Str("submission_id", id.String()).
		Str("status", string(merged.Status)).
		Msg("Grade saved")
	return &merged, nil
}

// ReturnSubmission hands a fully graded submission back to the learner. This
// is the one grading transition applied synchronously: once returned, the
// record is immutable.
func (s *SubmissionService) ReturnSubmission(ctx context.Context, kind model.SourceKind, id uuid.UUID) (*model.Submission, error) {
	sub, err := s.GetSubmission(ctx, kind, id)
	if err != nil {
		return nil, err
	}

	if sub.Status != model.StatusGraded {
		return nil, ErrSubmissionNotGraded
	}

	if err := s.source.SetReturnedAt(ctx, kind, id, time.Now()); err != nil {
		return nil, fmt.Errorf("return submission: %w", err)
	}
	sub.Status = model.StatusReturned

	s.publishFeedEvent(ctx, websocket.FeedEvent{
		Event:            websocket.EventSubmissionReturned,
		SubmissionID:     id.String(),
		SourceKind:       kind,
		Status:           model.StatusReturned,
		LearnerName:      sub.LearnerName,
		SkillType:        sub.SkillType,
		OverallBandScore: sub.OverallBandScore,
	})

	s.log.Info().Str("submission_id", id.String()).Msg("Submission returned")
	return sub, nil
}

// mergeGrade applies incoming criterion scores on top of the stored ones and
// derives the resulting status and overall band. Returned submissions reject
// further grading.
func mergeGrade(sub model.Submission, incoming map[model.Criterion]float64) (model.Submission, error) {
	if sub.Status == model.StatusReturned {
		return model.Submission{}, ErrGradeAlreadyFinal
	}

	admitted, err := admitCriteria(sub.SkillType, incoming)
	if err != nil {
		return model.Submission{}, err
	}

	merged := make(map[model.Criterion]*float64, len(sub.CriteriaScores))
	for c, v := range sub.CriteriaScores {
		merged[c] = v
	}
	for c, v := range admitted {
		if v != nil {
			merged[c] = v
		}
	}
	sub.CriteriaScores = merged

	complete := true
	for _, c := range grading.RequiredCriteria(sub.SkillType) {
		if merged[c] == nil {
			complete = false
			break
		}
	}

	if complete {
		sub.Status = model.StatusGraded
		now := time.Now()
		sub.GradedAt = &now
		sub.OverallBandScore = grading.ComputeOverallScore(sub.SkillType, merged)
	} else {
		sub.Status = model.StatusGrading
		sub.OverallBandScore = nil
	}
	return sub, nil
}

// admitCriteria validates that every incoming criterion belongs to the
// skill's required set and converts the map into the pipeline's pointer form.
func admitCriteria(skill model.SkillType, incoming map[model.Criterion]float64) (map[model.Criterion]*float64, error) {
	required := grading.RequiredCriteria(skill)
	allowed := make(map[model.Criterion]bool, len(required))
	for _, c := range required {
		allowed[c] = true
	}

	scores := make(map[model.Criterion]*float64, len(incoming))
	for c, v := range incoming {
		if !allowed[c] {
			return nil, fmt.Errorf("%w: %s", ErrUnknownCriterion, c)
		}
		v := v
		scores[c] = &v
	}
	return scores, nil
}

func persistPayload(kind model.SourceKind, sub model.Submission) gradePersistPayload {
	return gradePersistPayload{
		SourceKind:            kind,
		SubmissionID:          sub.ID.String(),
		Status:                sub.Status,
		TaskAchievementScore:  sub.CriteriaScores[model.CriterionTaskAchievement],
		CoherenceCohesion:     sub.CriteriaScores[model.CriterionCoherenceCohesion],
		FluencyCoherenceScore: sub.CriteriaScores[model.CriterionFluencyCoherence],
		PronunciationScore:    sub.CriteriaScores[model.CriterionPronunciation],
		LexicalResourceScore:  sub.CriteriaScores[model.CriterionLexicalResource],
		GrammaticalRangeScore: sub.CriteriaScores[model.CriterionGrammaticalRange],
		OverallBandScore:      sub.OverallBandScore,
	}
}

// publishFeedEvent pushes a state change onto the grading feed channel.
// Delivery is best-effort; a Redis hiccup must never fail the request.
func (s *SubmissionService) publishFeedEvent(ctx context.Context, ev websocket.FeedEvent) {
	raw, err := json.Marshal(ev)
	if err != nil {
		return
	}
	if err := s.rdb.Publish(ctx, config.CacheKey.GradingFeedChannel(), raw).Err(); err != nil {
		s.log.Warn().Err(err).Str("event", string(ev.Event)).Msg("failed to publish feed event")
	}
}
