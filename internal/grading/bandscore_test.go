package grading

import (
	"testing"
	"time"

	"github.com/fluentpath/ielts-backend/internal/model"
	"github.com/google/uuid"
)

func ptr(v float64) *float64 { return &v }

func TestComputeOverallScore_WritingMean(t *testing.T) {
	scores := map[model.Criterion]*float64{
		model.CriterionTaskAchievement:   ptr(6),
		model.CriterionCoherenceCohesion: ptr(6.5),
		model.CriterionLexicalResource:   ptr(7),
		model.CriterionGrammaticalRange:  ptr(6.5),
	}

	got := ComputeOverallScore(model.SkillWriting, scores)
	if got == nil {
		t.Fatal("expected a score, got nil")
	}
	if *got != 6.5 {
		t.Fatalf("overall = %v, want 6.5", *got)
	}
}

func TestComputeOverallScore_PartialCriteria(t *testing.T) {
	scores := map[model.Criterion]*float64{
		model.CriterionFluencyCoherence: ptr(7),
		model.CriterionPronunciation:    ptr(6),
	}

	got := ComputeOverallScore(model.SkillSpeaking, scores)
	if got == nil {
		t.Fatal("expected a score, got nil")
	}
	if *got != 6.5 {
		t.Fatalf("overall = %v, want 6.5 (mean of present criteria)", *got)
	}
}

func TestComputeOverallScore_NoCriteriaReturnsNil(t *testing.T) {
	if got := ComputeOverallScore(model.SkillWriting, nil); got != nil {
		t.Fatalf("expected nil, got %v", *got)
	}

	allNil := map[model.Criterion]*float64{
		model.CriterionTaskAchievement:  nil,
		model.CriterionLexicalResource:  nil,
		model.CriterionGrammaticalRange: nil,
	}
	if got := ComputeOverallScore(model.SkillWriting, allNil); got != nil {
		t.Fatalf("expected nil for all-nil criteria, got %v", *got)
	}
}

func TestComputeOverallScore_IgnoresForeignCriteria(t *testing.T) {
	// Speaking criteria on a writing submission do not contribute.
	scores := map[model.Criterion]*float64{
		model.CriterionPronunciation:   ptr(9),
		model.CriterionTaskAchievement: ptr(6),
	}

	got := ComputeOverallScore(model.SkillWriting, scores)
	if got == nil || *got != 6 {
		t.Fatalf("overall = %v, want 6", got)
	}
}

func TestComputeOverallScore_OneDecimalRounding(t *testing.T) {
	scores := map[model.Criterion]*float64{
		model.CriterionTaskAchievement:   ptr(6),
		model.CriterionCoherenceCohesion: ptr(6),
		model.CriterionLexicalResource:   ptr(7),
	}

	// 19/3 = 6.333... → 6.3
	got := ComputeOverallScore(model.SkillWriting, scores)
	if got == nil || *got != 6.3 {
		t.Fatalf("overall = %v, want 6.3", got)
	}
}

func TestComputeOverallScore_Deterministic(t *testing.T) {
	scores := map[model.Criterion]*float64{
		model.CriterionFluencyCoherence: ptr(5.5),
		model.CriterionLexicalResource:  ptr(6.5),
	}

	first := ComputeOverallScore(model.SkillSpeaking, scores)
	second := ComputeOverallScore(model.SkillSpeaking, scores)
	if *first != *second {
		t.Fatalf("same input produced %v then %v", *first, *second)
	}
}

func TestScoreSubmissions_FillsGradedAndClearsPending(t *testing.T) {
	graded := model.Submission{
		ID:         uuid.New(),
		SourceKind: model.SourceKindExercise,
		SkillType:  model.SkillWriting,
		Status:     model.StatusGraded,
		CriteriaScores: map[model.Criterion]*float64{
			model.CriterionTaskAchievement: ptr(7),
			model.CriterionLexicalResource: ptr(8),
		},
		SubmittedAt: time.Now(),
	}
	pending := model.Submission{
		ID:               uuid.New(),
		SourceKind:       model.SourceKindExercise,
		SkillType:        model.SkillWriting,
		Status:           model.StatusPending,
		OverallBandScore: ptr(9), // bogus stored value must not surface
		SubmittedAt:      time.Now(),
	}

	out := ScoreSubmissions([]model.Submission{graded, pending})

	if out[0].OverallBandScore == nil || *out[0].OverallBandScore != 7.5 {
		t.Fatalf("graded overall = %v, want 7.5", out[0].OverallBandScore)
	}
	if out[1].OverallBandScore != nil {
		t.Fatalf("pending submission carries an overall score: %v", *out[1].OverallBandScore)
	}
}

func TestScoreSubmissions_ReturnedKeepsStoredScore(t *testing.T) {
	stored := ptr(6.5)
	returned := model.Submission{
		ID:               uuid.New(),
		SkillType:        model.SkillSpeaking,
		Status:           model.StatusReturned,
		OverallBandScore: stored,
		SubmittedAt:      time.Now(),
	}

	out := ScoreSubmissions([]model.Submission{returned})
	if out[0].OverallBandScore == nil || *out[0].OverallBandScore != 6.5 {
		t.Fatalf("returned overall = %v, want stored 6.5", out[0].OverallBandScore)
	}
}
