package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fluentpath/ielts-backend/internal/grading"
	"github.com/fluentpath/ielts-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

var subT0 = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

// fakeSubmissionSource feeds canned rows into the pipeline and records the
// write calls the service makes against it.
type fakeSubmissionSource struct {
	exercises []model.ExerciseSubmissionRow
	tests     []model.TestQuestionSubmissionRow

	statusUpdates []model.SubmissionStatus
	returnedAt    *time.Time
}

func (f *fakeSubmissionSource) FetchExercise(ctx context.Context, mf model.SubmissionFilters) ([]model.ExerciseSubmissionRow, error) {
	return f.exercises, nil
}

func (f *fakeSubmissionSource) FetchTest(ctx context.Context, mf model.SubmissionFilters) ([]model.TestQuestionSubmissionRow, error) {
	return f.tests, nil
}

func (f *fakeSubmissionSource) GetExerciseByID(ctx context.Context, id uuid.UUID) (*model.ExerciseSubmissionRow, error) {
	for i := range f.exercises {
		if f.exercises[i].ID == id {
			return &f.exercises[i], nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeSubmissionSource) GetTestByID(ctx context.Context, id uuid.UUID) (*model.TestQuestionSubmissionRow, error) {
	for i := range f.tests {
		if f.tests[i].ID == id {
			return &f.tests[i], nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeSubmissionSource) CreateExercise(ctx context.Context, learnerID int, lessonID uuid.UUID, skill model.SkillType, body, audioURL string) (uuid.UUID, error) {
	return uuid.New(), nil
}

func (f *fakeSubmissionSource) UpdateStatus(ctx context.Context, kind model.SourceKind, id uuid.UUID, status model.SubmissionStatus) error {
	f.statusUpdates = append(f.statusUpdates, status)
	return nil
}

func (f *fakeSubmissionSource) SetReturnedAt(ctx context.Context, kind model.SourceKind, id uuid.UUID, at time.Time) error {
	f.returnedAt = &at
	return nil
}

func newTestService(src *fakeSubmissionSource) *SubmissionService {
	return NewSubmissionService(src, nil, zerolog.Nop())
}

func exerciseRow(skill string, status model.SubmissionStatus, at time.Time) model.ExerciseSubmissionRow {
	return model.ExerciseSubmissionRow{
		ID:          uuid.New(),
		LearnerID:   7,
		LearnerName: "Aisha Rahman",
		LessonID:    uuid.New(),
		LessonTitle: "Describing Trends",
		SkillType:   skill,
		Status:      status,
		SubmittedAt: at,
	}
}

func testRow(attemptID, questionID uuid.UUID, status model.SubmissionStatus, at time.Time) model.TestQuestionSubmissionRow {
	return model.TestQuestionSubmissionRow{
		ID:          uuid.New(),
		AttemptID:   attemptID,
		QuestionID:  questionID,
		LearnerID:   7,
		LearnerName: "Aisha Rahman",
		TestTitle:   "Mock Test 1",
		SkillType:   string(model.SkillWriting),
		Status:      status,
		SubmittedAt: at,
	}
}

func fptr(v float64) *float64 { return &v }

func feedFilters() grading.Filters {
	return grading.Filters{Page: 1, Limit: 20}
}

func TestListGradingQueue_DropsUnsupportedSkillRows(t *testing.T) {
	src := &fakeSubmissionSource{
		exercises: []model.ExerciseSubmissionRow{
			exerciseRow("WRITING", model.StatusPending, subT0),
			exerciseRow("LISTENING", model.StatusPending, subT0),
		},
	}
	svc := newTestService(src)

	view, err := svc.ListGradingQueue(context.Background(), model.SubmissionFilters{}, feedFilters())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.Total != 1 {
		t.Fatalf("total = %d, want 1 (unsupported row dropped)", view.Total)
	}
	if view.Submissions[0].SkillType != model.SkillWriting {
		t.Errorf("survivor skill = %s, want WRITING", view.Submissions[0].SkillType)
	}
}

func TestListGradingQueue_DeduplicatesTestPasses(t *testing.T) {
	attempt, question := uuid.New(), uuid.New()
	graded := testRow(attempt, question, model.StatusGraded, subT0)
	graded.TaskAchievementScore = fptr(6.0)
	graded.CoherenceCohesionScore = fptr(6.5)
	graded.LexicalResourceScore = fptr(7.0)
	graded.GrammaticalRangeScore = fptr(6.5)

	src := &fakeSubmissionSource{
		tests: []model.TestQuestionSubmissionRow{
			testRow(attempt, question, model.StatusPending, subT0.Add(2*time.Hour)),
			graded,
		},
		exercises: []model.ExerciseSubmissionRow{
			exerciseRow("WRITING", model.StatusPending, subT0),
			exerciseRow("WRITING", model.StatusPending, subT0.Add(time.Minute)),
		},
	}
	svc := newTestService(src)

	view, err := svc.ListGradingQueue(context.Background(), model.SubmissionFilters{}, feedFilters())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The two test rows collapse to one; exercise retries never merge.
	if view.Total != 3 {
		t.Fatalf("total = %d, want 3", view.Total)
	}
	var testSubs int
	for _, s := range view.Submissions {
		if s.SourceKind == model.SourceKindTest {
			testSubs++
			if s.Status != model.StatusGraded {
				t.Errorf("test survivor status = %s, want GRADED", s.Status)
			}
			if s.OverallBandScore == nil || *s.OverallBandScore != 6.5 {
				t.Errorf("test survivor overall = %v, want 6.5", s.OverallBandScore)
			}
		}
	}
	if testSubs != 1 {
		t.Errorf("test submissions in feed = %d, want 1", testSubs)
	}
}

func TestListGradingQueue_StatusFiltersAfterDedupe(t *testing.T) {
	// A question with a stale PENDING pass newer than its GRADED one. The
	// survivor must be chosen across all passes first; only then does the
	// status filter apply. A PENDING queue must not resurface the stale pass.
	attempt, question := uuid.New(), uuid.New()
	graded := testRow(attempt, question, model.StatusGraded, subT0)
	graded.TaskAchievementScore = fptr(6.0)
	graded.CoherenceCohesionScore = fptr(6.5)
	graded.LexicalResourceScore = fptr(7.0)
	graded.GrammaticalRangeScore = fptr(6.5)

	src := &fakeSubmissionSource{
		tests: []model.TestQuestionSubmissionRow{
			testRow(attempt, question, model.StatusPending, subT0.Add(24*time.Hour)),
			graded,
		},
	}
	svc := newTestService(src)

	pending := model.StatusPending
	f := feedFilters()
	f.Status = &pending
	view, err := svc.ListGradingQueue(context.Background(), model.SubmissionFilters{}, f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.Total != 0 {
		t.Fatalf("PENDING queue total = %d, want 0 (question is already graded)", view.Total)
	}

	gradedStatus := model.StatusGraded
	f.Status = &gradedStatus
	view, err = svc.ListGradingQueue(context.Background(), model.SubmissionFilters{}, f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.Total != 1 {
		t.Fatalf("GRADED queue total = %d, want 1", view.Total)
	}
	if view.Submissions[0].OverallBandScore == nil || *view.Submissions[0].OverallBandScore != 6.5 {
		t.Errorf("survivor overall = %v, want 6.5", view.Submissions[0].OverallBandScore)
	}
}

func TestGetSubmission_NotFound(t *testing.T) {
	svc := newTestService(&fakeSubmissionSource{})

	_, err := svc.GetSubmission(context.Background(), model.SourceKindExercise, uuid.New())
	if !errors.Is(err, ErrSubmissionNotFound) {
		t.Fatalf("err = %v, want ErrSubmissionNotFound", err)
	}
}

func TestOpenSubmission_IdempotentWhenAlreadyGrading(t *testing.T) {
	row := exerciseRow("WRITING", model.StatusGrading, subT0)
	src := &fakeSubmissionSource{exercises: []model.ExerciseSubmissionRow{row}}
	svc := newTestService(src)

	sub, err := svc.OpenSubmission(context.Background(), model.SourceKindExercise, row.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sub.Status != model.StatusGrading {
		t.Errorf("status = %s, want GRADING", sub.Status)
	}
	if len(src.statusUpdates) != 0 {
		t.Errorf("status updates = %d, want 0 (no-op open)", len(src.statusUpdates))
	}
}

func TestReturnSubmission_RequiresGraded(t *testing.T) {
	row := exerciseRow("WRITING", model.StatusGrading, subT0)
	src := &fakeSubmissionSource{exercises: []model.ExerciseSubmissionRow{row}}
	svc := newTestService(src)

	_, err := svc.ReturnSubmission(context.Background(), model.SourceKindExercise, row.ID)
	if !errors.Is(err, ErrSubmissionNotGraded) {
		t.Fatalf("err = %v, want ErrSubmissionNotGraded", err)
	}
	if src.returnedAt != nil {
		t.Error("returned_at was written for an ungraded submission")
	}
}

func TestMergeGrade_PartialStaysGrading(t *testing.T) {
	sub := model.Submission{
		SkillType:      model.SkillWriting,
		Status:         model.StatusGrading,
		CriteriaScores: map[model.Criterion]*float64{},
	}

	merged, err := mergeGrade(sub, map[model.Criterion]float64{
		model.CriterionTaskAchievement: 6.0,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if merged.Status != model.StatusGrading {
		t.Errorf("status = %s, want GRADING", merged.Status)
	}
	if merged.OverallBandScore != nil {
		t.Errorf("overall = %v, want nil for a partial grade", merged.OverallBandScore)
	}
}

func TestMergeGrade_CompleteBecomesGraded(t *testing.T) {
	sub := model.Submission{
		SkillType: model.SkillWriting,
		Status:    model.StatusGrading,
		CriteriaScores: map[model.Criterion]*float64{
			model.CriterionTaskAchievement:   fptr(6.0),
			model.CriterionCoherenceCohesion: fptr(6.5),
		},
	}

	merged, err := mergeGrade(sub, map[model.Criterion]float64{
		model.CriterionLexicalResource:  7.0,
		model.CriterionGrammaticalRange: 6.5,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if merged.Status != model.StatusGraded {
		t.Errorf("status = %s, want GRADED", merged.Status)
	}
	if merged.GradedAt == nil {
		t.Error("graded_at not set")
	}
	if merged.OverallBandScore == nil || *merged.OverallBandScore != 6.5 {
		t.Errorf("overall = %v, want 6.5", merged.OverallBandScore)
	}
}

func TestMergeGrade_LaterScoresOverwrite(t *testing.T) {
	sub := model.Submission{
		SkillType: model.SkillWriting,
		Status:    model.StatusGrading,
		CriteriaScores: map[model.Criterion]*float64{
			model.CriterionTaskAchievement: fptr(5.0),
		},
	}

	merged, err := mergeGrade(sub, map[model.Criterion]float64{
		model.CriterionTaskAchievement: 7.0,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := merged.CriteriaScores[model.CriterionTaskAchievement]; got == nil || *got != 7.0 {
		t.Errorf("task achievement = %v, want 7.0", got)
	}
}

func TestMergeGrade_ReturnedIsFinal(t *testing.T) {
	sub := model.Submission{
		SkillType: model.SkillWriting,
		Status:    model.StatusReturned,
	}

	_, err := mergeGrade(sub, map[model.Criterion]float64{
		model.CriterionTaskAchievement: 6.0,
	})
	if !errors.Is(err, ErrGradeAlreadyFinal) {
		t.Fatalf("err = %v, want ErrGradeAlreadyFinal", err)
	}
}

func TestMergeGrade_RejectsForeignCriterion(t *testing.T) {
	sub := model.Submission{
		SkillType: model.SkillWriting,
		Status:    model.StatusPending,
	}

	// Pronunciation belongs to speaking, not writing.
	_, err := mergeGrade(sub, map[model.Criterion]float64{
		model.CriterionPronunciation: 6.0,
	})
	if !errors.Is(err, ErrUnknownCriterion) {
		t.Fatalf("err = %v, want ErrUnknownCriterion", err)
	}
}

func TestScorePreview(t *testing.T) {
	svc := newTestService(&fakeSubmissionSource{})

	overall, err := svc.ScorePreview(model.ScorePreviewRequest{
		SkillType: model.SkillSpeaking,
		CriteriaScores: map[model.Criterion]float64{
			model.CriterionFluencyCoherence: 6.0,
			model.CriterionPronunciation:    7.0,
			model.CriterionLexicalResource:  6.5,
			model.CriterionGrammaticalRange: 6.5,
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if overall == nil || *overall != 6.5 {
		t.Fatalf("overall = %v, want 6.5", overall)
	}
}

func TestScorePreview_RejectsForeignCriterion(t *testing.T) {
	svc := newTestService(&fakeSubmissionSource{})

	_, err := svc.ScorePreview(model.ScorePreviewRequest{
		SkillType: model.SkillWriting,
		CriteriaScores: map[model.Criterion]float64{
			model.CriterionFluencyCoherence: 6.0,
		},
	})
	if !errors.Is(err, ErrUnknownCriterion) {
		t.Fatalf("err = %v, want ErrUnknownCriterion", err)
	}
}
