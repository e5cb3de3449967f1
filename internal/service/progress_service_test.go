package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fluentpath/ielts-backend/internal/model"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type fakeContentTree struct {
	lessons []model.LessonRef
}

func (f *fakeContentTree) ListLessons(ctx context.Context, courseID uuid.UUID) ([]model.LessonRef, error) {
	return f.lessons, nil
}

type fakeProgressStore struct {
	completions []model.CompletionRecord

	upserts []struct {
		LessonID  uuid.UUID
		Completed bool
	}
}

func (f *fakeProgressStore) GetCompletions(ctx context.Context, learnerID int, courseID uuid.UUID) ([]model.CompletionRecord, error) {
	return f.completions, nil
}

func (f *fakeProgressStore) UpsertCompletion(ctx context.Context, learnerID int, lessonID uuid.UUID, completed bool) error {
	f.upserts = append(f.upserts, struct {
		LessonID  uuid.UUID
		Completed bool
	}{lessonID, completed})
	return nil
}

func threeLessons() []model.LessonRef {
	return []model.LessonRef{
		{ID: uuid.New(), UnitID: uuid.New(), UnitOrder: 1, Order: 1, Title: "Understanding Task 1"},
		{ID: uuid.New(), UnitID: uuid.New(), UnitOrder: 1, Order: 2, Title: "Describing Trends"},
		{ID: uuid.New(), UnitID: uuid.New(), UnitOrder: 1, Order: 3, Title: "Essay Structure"},
	}
}

func completed(lessonID uuid.UUID) model.CompletionRecord {
	at := time.Now()
	return model.CompletionRecord{
		UserID:      7,
		LessonID:    lessonID,
		Completed:   true,
		StartedAt:   at,
		CompletedAt: &at,
	}
}

func TestGetDashboard_FirstLessonUnlocked(t *testing.T) {
	lessons := threeLessons()
	svc := NewProgressService(&fakeContentTree{lessons: lessons}, &fakeProgressStore{}, zerolog.Nop())

	dash, err := svc.GetDashboard(context.Background(), 7, uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := dash.LessonStates[lessons[0].ID]; got != model.LessonStateUnlocked {
		t.Errorf("lesson 1 state = %s, want UNLOCKED", got)
	}
	if got := dash.LessonStates[lessons[1].ID]; got != model.LessonStateLocked {
		t.Errorf("lesson 2 state = %s, want LOCKED", got)
	}
}

func TestGetDashboard_CompletionUnlocksNext(t *testing.T) {
	lessons := threeLessons()
	store := &fakeProgressStore{completions: []model.CompletionRecord{completed(lessons[0].ID)}}
	svc := NewProgressService(&fakeContentTree{lessons: lessons}, store, zerolog.Nop())

	dash, err := svc.GetDashboard(context.Background(), 7, uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := dash.LessonStates[lessons[0].ID]; got != model.LessonStateCompleted {
		t.Errorf("lesson 1 state = %s, want COMPLETED", got)
	}
	if got := dash.LessonStates[lessons[1].ID]; got != model.LessonStateUnlocked {
		t.Errorf("lesson 2 state = %s, want UNLOCKED", got)
	}
	if got := dash.LessonStates[lessons[2].ID]; got != model.LessonStateLocked {
		t.Errorf("lesson 3 state = %s, want LOCKED", got)
	}
}

func TestEnterLesson_LockedRejected(t *testing.T) {
	lessons := threeLessons()
	store := &fakeProgressStore{}
	svc := NewProgressService(&fakeContentTree{lessons: lessons}, store, zerolog.Nop())

	err := svc.EnterLesson(context.Background(), 7, uuid.New(), lessons[2].ID)
	if !errors.Is(err, ErrLessonLocked) {
		t.Fatalf("err = %v, want ErrLessonLocked", err)
	}
	if len(store.upserts) != 0 {
		t.Error("locked entry was persisted")
	}
}

func TestEnterLesson_UnknownLessonRejected(t *testing.T) {
	svc := NewProgressService(&fakeContentTree{lessons: threeLessons()}, &fakeProgressStore{}, zerolog.Nop())

	err := svc.EnterLesson(context.Background(), 7, uuid.New(), uuid.New())
	if !errors.Is(err, ErrLessonNotInCourse) {
		t.Fatalf("err = %v, want ErrLessonNotInCourse", err)
	}
}

func TestCompleteLesson_RecordsCompletion(t *testing.T) {
	lessons := threeLessons()
	store := &fakeProgressStore{}
	svc := NewProgressService(&fakeContentTree{lessons: lessons}, store, zerolog.Nop())

	if err := svc.CompleteLesson(context.Background(), 7, uuid.New(), lessons[0].ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(store.upserts) != 1 {
		t.Fatalf("upserts = %d, want 1", len(store.upserts))
	}
	if store.upserts[0].LessonID != lessons[0].ID || !store.upserts[0].Completed {
		t.Errorf("upsert = %+v, want completed for lesson 1", store.upserts[0])
	}
}

func TestCompleteLesson_LockedRejected(t *testing.T) {
	lessons := threeLessons()
	svc := NewProgressService(&fakeContentTree{lessons: lessons}, &fakeProgressStore{}, zerolog.Nop())

	err := svc.CompleteLesson(context.Background(), 7, uuid.New(), lessons[1].ID)
	if !errors.Is(err, ErrLessonLocked) {
		t.Fatalf("err = %v, want ErrLessonLocked", err)
	}
}
