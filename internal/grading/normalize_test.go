package grading

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fluentpath/ielts-backend/internal/model"
	"github.com/google/uuid"
)

func TestNormalizeExercise_Writing(t *testing.T) {
	row := model.ExerciseSubmissionRow{
		ID:                     uuid.New(),
		LearnerID:              42,
		LearnerName:            "Mei Lin",
		LessonID:               uuid.New(),
		LessonTitle:            "Opinion Essays",
		SkillType:              "WRITING",
		Status:                 model.StatusGraded,
		TaskAchievementScore:   ptr(6),
		CoherenceCohesionScore: ptr(6.5),
		LexicalResourceScore:   ptr(7),
		GrammaticalRangeScore:  ptr(6.5),
		SubmittedAt:            time.Now(),
	}

	sub, err := NormalizeExercise(row)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}

	if sub.SourceKind != model.SourceKindExercise {
		t.Fatalf("source kind = %s", sub.SourceKind)
	}
	if sub.DedupKey != "" {
		t.Fatalf("exercise submission has dedup key %q", sub.DedupKey)
	}
	if sub.SkillType != model.SkillWriting {
		t.Fatalf("skill = %s", sub.SkillType)
	}
	if got := sub.CriteriaScores[model.CriterionCoherenceCohesion]; got == nil || *got != 6.5 {
		t.Fatalf("coherence score = %v", got)
	}
	if got := sub.CriteriaScores[model.CriterionTaskAchievement]; got == nil || *got != 6 {
		t.Fatalf("task achievement score = %v", got)
	}
}

func TestNormalizeTest_DedupKey(t *testing.T) {
	attempt, question := uuid.New(), uuid.New()
	row := model.TestQuestionSubmissionRow{
		ID:          uuid.New(),
		AttemptID:   attempt,
		QuestionID:  question,
		LearnerID:   7,
		TestTitle:   "Mock Test 3",
		SkillType:   "SPEAKING",
		Status:      model.StatusPending,
		SubmittedAt: time.Now(),
	}

	sub, err := NormalizeTest(row)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}

	want := attempt.String() + "_" + question.String()
	if sub.DedupKey != want {
		t.Fatalf("dedup key = %q, want %q", sub.DedupKey, want)
	}
	if sub.SourceKind != model.SourceKindTest {
		t.Fatalf("source kind = %s", sub.SourceKind)
	}
}

func TestNormalize_UnsupportedSkillType(t *testing.T) {
	_, err := NormalizeExercise(model.ExerciseSubmissionRow{SkillType: "LISTENING"})
	if !errors.Is(err, ErrUnsupportedSkillType) {
		t.Fatalf("expected ErrUnsupportedSkillType, got %v", err)
	}

	_, err = NormalizeTest(model.TestQuestionSubmissionRow{SkillType: ""})
	if !errors.Is(err, ErrUnsupportedSkillType) {
		t.Fatalf("expected ErrUnsupportedSkillType, got %v", err)
	}
}

func TestNormalize_DropsForeignSkillFields(t *testing.T) {
	// A speaking row must not carry writing criteria even if the columns were
	// somehow populated.
	row := model.ExerciseSubmissionRow{
		ID:                    uuid.New(),
		SkillType:             "SPEAKING",
		Status:                model.StatusGrading,
		TaskAchievementScore:  ptr(5),
		FluencyCoherenceScore: ptr(6),
		SubmittedAt:           time.Now(),
	}

	sub, err := NormalizeExercise(row)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}

	if _, ok := sub.CriteriaScores[model.CriterionTaskAchievement]; ok {
		t.Fatal("writing criterion admitted into a speaking submission")
	}
	if got := sub.CriteriaScores[model.CriterionFluencyCoherence]; got == nil || *got != 6 {
		t.Fatalf("fluency score = %v", got)
	}
}

func TestDedupKey_SeparatorNotInIDs(t *testing.T) {
	key := DedupKey(uuid.New(), uuid.New())
	if strings.Count(key, "_") != 1 {
		t.Fatalf("dedup key %q should contain exactly one separator", key)
	}
}
