package grading

import (
	"testing"
	"time"

	"github.com/fluentpath/ielts-backend/internal/model"
	"github.com/google/uuid"
)

var t0 = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func testSub(attemptID, questionID uuid.UUID, status model.SubmissionStatus, at time.Time) model.Submission {
	return model.Submission{
		ID:          uuid.New(),
		SourceKind:  model.SourceKindTest,
		DedupKey:    DedupKey(attemptID, questionID),
		UserID:      7,
		SkillType:   model.SkillWriting,
		Status:      status,
		SubmittedAt: at,
	}
}

func exerciseSub(status model.SubmissionStatus, at time.Time) model.Submission {
	return model.Submission{
		ID:          uuid.New(),
		SourceKind:  model.SourceKindExercise,
		UserID:      7,
		SkillType:   model.SkillWriting,
		Status:      status,
		SubmittedAt: at,
	}
}

func TestDedupe_GradedBeatsNewerPending(t *testing.T) {
	attempt, question := uuid.New(), uuid.New()

	graded := testSub(attempt, question, model.StatusGraded, t0)
	pending := testSub(attempt, question, model.StatusPending, t0.Add(24*time.Hour))

	out := Dedupe([]model.Submission{pending, graded})

	if len(out) != 1 {
		t.Fatalf("expected 1 survivor, got %d", len(out))
	}
	if out[0].Status != model.StatusGraded {
		t.Fatalf("survivor status = %s, want GRADED", out[0].Status)
	}
}

func TestDedupe_RecencyBreaksStatusTie(t *testing.T) {
	attempt, question := uuid.New(), uuid.New()

	older := testSub(attempt, question, model.StatusGraded, t0)
	newer := testSub(attempt, question, model.StatusGraded, t0.Add(time.Hour))

	out := Dedupe([]model.Submission{older, newer})

	if len(out) != 1 {
		t.Fatalf("expected 1 survivor, got %d", len(out))
	}
	if out[0].ID != newer.ID {
		t.Fatal("expected the later submission to survive the tie")
	}
}

func TestDedupe_GradedOutranksReturned(t *testing.T) {
	attempt, question := uuid.New(), uuid.New()

	returned := testSub(attempt, question, model.StatusReturned, t0.Add(time.Hour))
	graded := testSub(attempt, question, model.StatusGraded, t0)

	out := Dedupe([]model.Submission{returned, graded})

	if out[0].Status != model.StatusGraded {
		t.Fatalf("survivor status = %s, want GRADED", out[0].Status)
	}
}

func TestDedupe_ExercisesNeverMerged(t *testing.T) {
	// Two retries of the same exercise are distinct records of work.
	a := exerciseSub(model.StatusPending, t0)
	b := exerciseSub(model.StatusPending, t0)

	out := Dedupe([]model.Submission{a, b})

	if len(out) != 2 {
		t.Fatalf("expected both exercise submissions to survive, got %d", len(out))
	}
}

func TestDedupe_Cardinality(t *testing.T) {
	a1, q1 := uuid.New(), uuid.New()
	a2, q2 := uuid.New(), uuid.New()

	items := []model.Submission{
		exerciseSub(model.StatusPending, t0),
		exerciseSub(model.StatusGraded, t0),
		testSub(a1, q1, model.StatusPending, t0),
		testSub(a1, q1, model.StatusGrading, t0.Add(time.Minute)),
		testSub(a1, q1, model.StatusGraded, t0.Add(2*time.Minute)),
		testSub(a2, q2, model.StatusPending, t0),
	}

	out := Dedupe(items)

	// 2 exercise items + 2 distinct dedup keys.
	if len(out) != 4 {
		t.Fatalf("expected 4 survivors, got %d", len(out))
	}
	if len(out) > len(items) {
		t.Fatal("dedupe grew the list")
	}
}

func TestDedupe_Idempotent(t *testing.T) {
	a1, q1 := uuid.New(), uuid.New()

	items := []model.Submission{
		exerciseSub(model.StatusPending, t0),
		testSub(a1, q1, model.StatusPending, t0),
		testSub(a1, q1, model.StatusGraded, t0.Add(time.Minute)),
	}

	once := Dedupe(items)
	twice := Dedupe(once)

	if len(once) != len(twice) {
		t.Fatalf("dedupe not idempotent: %d then %d", len(once), len(twice))
	}
	for i := range once {
		if once[i].ID != twice[i].ID {
			t.Fatalf("survivor %d changed between passes", i)
		}
	}
}

func TestDedupe_SingleMemberGroupUnchanged(t *testing.T) {
	only := testSub(uuid.New(), uuid.New(), model.StatusGrading, t0)

	out := Dedupe([]model.Submission{only})

	if len(out) != 1 || out[0].ID != only.ID {
		t.Fatal("single-member group should pass through unchanged")
	}
}

func TestDedupeWithDiagnostics_InconsistentSkillTypes(t *testing.T) {
	attempt, question := uuid.New(), uuid.New()

	a := testSub(attempt, question, model.StatusPending, t0)
	b := testSub(attempt, question, model.StatusGraded, t0.Add(time.Minute))
	b.SkillType = model.SkillSpeaking

	out, diags := DedupeWithDiagnostics([]model.Submission{a, b})

	// Still resolved by the priority rule.
	if len(out) != 1 || out[0].Status != model.StatusGraded {
		t.Fatalf("expected the GRADED member to survive, got %+v", out)
	}
	if len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(diags))
	}
	if diags[0].DedupKey != a.DedupKey {
		t.Fatalf("diagnostic key = %s, want %s", diags[0].DedupKey, a.DedupKey)
	}
	if len(diags[0].SkillTypes) != 2 {
		t.Fatalf("expected 2 conflicting skill types, got %d", len(diags[0].SkillTypes))
	}
}

func TestDedupe_EmptyInput(t *testing.T) {
	if out := Dedupe(nil); len(out) != 0 {
		t.Fatalf("expected empty output, got %d", len(out))
	}
}
