package progress

import (
	"testing"
	"time"

	"github.com/fluentpath/ielts-backend/internal/model"
	"github.com/google/uuid"
)

func lesson(unitOrder, order int) model.LessonRef {
	return model.LessonRef{
		ID:        uuid.New(),
		UnitID:    uuid.New(),
		UnitOrder: unitOrder,
		Order:     order,
	}
}

func done(lessonID uuid.UUID) model.CompletionRecord {
	now := time.Now()
	return model.CompletionRecord{
		UserID:      1,
		LessonID:    lessonID,
		Completed:   true,
		StartedAt:   now.Add(-time.Hour),
		CompletedAt: &now,
	}
}

func TestEvaluateLessonStates_NoCompletions(t *testing.T) {
	u1l1 := lesson(1, 1)
	u1l2 := lesson(1, 2)
	u2l1 := lesson(2, 1)

	states := EvaluateLessonStates([]model.LessonRef{u1l1, u1l2, u2l1}, nil)

	if states[u1l1.ID] != model.LessonStateUnlocked {
		t.Fatalf("first lesson = %s, want UNLOCKED", states[u1l1.ID])
	}
	if states[u1l2.ID] != model.LessonStateLocked {
		t.Fatalf("second lesson = %s, want LOCKED", states[u1l2.ID])
	}
	if states[u2l1.ID] != model.LessonStateLocked {
		t.Fatalf("third lesson = %s, want LOCKED", states[u2l1.ID])
	}
}

func TestEvaluateLessonStates_FirstCompletedUnlocksSecond(t *testing.T) {
	u1l1 := lesson(1, 1)
	u1l2 := lesson(1, 2)
	u2l1 := lesson(2, 1)

	states := EvaluateLessonStates(
		[]model.LessonRef{u1l1, u1l2, u2l1},
		[]model.CompletionRecord{done(u1l1.ID)},
	)

	if states[u1l1.ID] != model.LessonStateCompleted {
		t.Fatalf("first lesson = %s, want COMPLETED", states[u1l1.ID])
	}
	if states[u1l2.ID] != model.LessonStateUnlocked {
		t.Fatalf("second lesson = %s, want UNLOCKED", states[u1l2.ID])
	}
	if states[u2l1.ID] != model.LessonStateLocked {
		t.Fatalf("third lesson = %s, want LOCKED", states[u2l1.ID])
	}
}

func TestEvaluateLessonStates_UnlockCrossesUnitBoundary(t *testing.T) {
	u1l1 := lesson(1, 1)
	u1l2 := lesson(1, 2)
	u2l1 := lesson(2, 1)

	states := EvaluateLessonStates(
		[]model.LessonRef{u1l1, u1l2, u2l1},
		[]model.CompletionRecord{done(u1l1.ID), done(u1l2.ID)},
	)

	if states[u2l1.ID] != model.LessonStateUnlocked {
		t.Fatalf("first lesson of unit 2 = %s, want UNLOCKED", states[u2l1.ID])
	}
}

func TestEvaluateLessonStates_FirstLessonNeverLocked(t *testing.T) {
	u1l1 := lesson(1, 1)
	u1l2 := lesson(1, 2)

	histories := [][]model.CompletionRecord{
		nil,
		{done(u1l2.ID)},
		{{UserID: 1, LessonID: u1l1.ID, Completed: false, StartedAt: time.Now()}},
	}

	for i, completions := range histories {
		states := EvaluateLessonStates([]model.LessonRef{u1l1, u1l2}, completions)
		if states[u1l1.ID] == model.LessonStateLocked {
			t.Fatalf("history %d: first lesson is LOCKED", i)
		}
	}
}

func TestEvaluateLessonStates_CompletedNeverReverts(t *testing.T) {
	// A completed lesson stays COMPLETED regardless of what happened to the
	// lessons before it.
	u1l1 := lesson(1, 1)
	u1l2 := lesson(1, 2)
	u1l3 := lesson(1, 3)

	states := EvaluateLessonStates(
		[]model.LessonRef{u1l1, u1l2, u1l3},
		[]model.CompletionRecord{done(u1l3.ID)},
	)

	if states[u1l3.ID] != model.LessonStateCompleted {
		t.Fatalf("third lesson = %s, want COMPLETED", states[u1l3.ID])
	}
	// Gap before it stays locked, but completion is not revoked.
	if states[u1l2.ID] != model.LessonStateLocked {
		t.Fatalf("second lesson = %s, want LOCKED", states[u1l2.ID])
	}
}

func TestEvaluateLessonStates_EmptyList(t *testing.T) {
	states := EvaluateLessonStates(nil, []model.CompletionRecord{done(uuid.New())})
	if len(states) != 0 {
		t.Fatalf("expected empty map, got %d entries", len(states))
	}
}

func TestEvaluateLessonStates_StaleCompletionIgnored(t *testing.T) {
	u1l1 := lesson(1, 1)

	states := EvaluateLessonStates(
		[]model.LessonRef{u1l1},
		[]model.CompletionRecord{done(uuid.New())}, // lesson no longer in the tree
	)

	if len(states) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(states))
	}
	if states[u1l1.ID] != model.LessonStateUnlocked {
		t.Fatalf("first lesson = %s, want UNLOCKED", states[u1l1.ID])
	}
}

func TestEvaluateLessonStates_GappedOrderValues(t *testing.T) {
	// Author-assigned order values with gaps still produce a total sequence.
	u1l1 := lesson(1, 10)
	u1l2 := lesson(1, 40)
	u1l3 := lesson(1, 90)

	states := EvaluateLessonStates(
		[]model.LessonRef{u1l3, u1l1, u1l2}, // input order scrambled
		[]model.CompletionRecord{done(u1l1.ID)},
	)

	if states[u1l1.ID] != model.LessonStateCompleted {
		t.Fatalf("lesson 10 = %s, want COMPLETED", states[u1l1.ID])
	}
	if states[u1l2.ID] != model.LessonStateUnlocked {
		t.Fatalf("lesson 40 = %s, want UNLOCKED", states[u1l2.ID])
	}
	if states[u1l3.ID] != model.LessonStateLocked {
		t.Fatalf("lesson 90 = %s, want LOCKED", states[u1l3.ID])
	}
}

func TestEvaluateLessonStates_UncompletedRecordDoesNotUnlockNext(t *testing.T) {
	u1l1 := lesson(1, 1)
	u1l2 := lesson(1, 2)

	// Started but not finished.
	started := model.CompletionRecord{UserID: 1, LessonID: u1l1.ID, StartedAt: time.Now()}

	states := EvaluateLessonStates([]model.LessonRef{u1l1, u1l2}, []model.CompletionRecord{started})

	if states[u1l1.ID] != model.LessonStateUnlocked {
		t.Fatalf("first lesson = %s, want UNLOCKED", states[u1l1.ID])
	}
	if states[u1l2.ID] != model.LessonStateLocked {
		t.Fatalf("second lesson = %s, want LOCKED", states[u1l2.ID])
	}
}
