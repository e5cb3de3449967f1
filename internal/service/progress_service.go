package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/fluentpath/ielts-backend/internal/model"
	"github.com/fluentpath/ielts-backend/internal/progress"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Domain errors.
var (
	ErrLessonLocked      = errors.New("lesson is locked")
	ErrLessonNotInCourse = errors.New("lesson does not belong to this course")
)

// ContentTreeReader is the slice of the content layer the progress engine
// needs: the ordered lesson sequence of a course.
type ContentTreeReader interface {
	ListLessons(ctx context.Context, courseID uuid.UUID) ([]model.LessonRef, error)
}

// ProgressStore is the durable record of per-learner completion signals.
type ProgressStore interface {
	GetCompletions(ctx context.Context, learnerID int, courseID uuid.UUID) ([]model.CompletionRecord, error)
	UpsertCompletion(ctx context.Context, learnerID int, lessonID uuid.UUID, completed bool) error
}

// ProgressService derives lesson lock states and records entry and completion
// signals. Lock state is never stored; it is recomputed from the content tree
// and the completion set on every read.
type ProgressService struct {
	content ContentTreeReader
	store   ProgressStore
	log     zerolog.Logger
}

// NewProgressService creates a new ProgressService.
func NewProgressService(content ContentTreeReader, store ProgressStore, log zerolog.Logger) *ProgressService {
	return &ProgressService{
		content: content,
		store:   store,
		log:     log.With().Str("component", "progress_service").Logger(),
	}
}

// GetDashboard returns the ordered lessons of a course together with the
// learner's derived state for each.
func (s *ProgressService) GetDashboard(ctx context.Context, learnerID int, courseID uuid.UUID) (*model.CourseDashboard, error) {
	lessons, err := s.content.ListLessons(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}

	completions, err := s.store.GetCompletions(ctx, learnerID, courseID)
	if err != nil {
		return nil, fmt.Errorf("get completions: %w", err)
	}

	return &model.CourseDashboard{
		CourseID:     courseID,
		Lessons:      lessons,
		LessonStates: progress.EvaluateLessonStates(lessons, completions),
	}, nil
}

// EnterLesson records that a learner opened an unlocked lesson. Entering a
// completed lesson does not reopen it.
func (s *ProgressService) EnterLesson(ctx context.Context, learnerID int, courseID, lessonID uuid.UUID) error {
	state, err := s.lessonState(ctx, learnerID, courseID, lessonID)
	if err != nil {
		return err
	}
	if state == model.LessonStateLocked {
		return ErrLessonLocked
	}

	return s.store.UpsertCompletion(ctx, learnerID, lessonID, false)
}

// CompleteLesson records completion of an unlocked lesson, which may unlock
// the next lesson in sequence. Repeated completion is a no-op.
func (s *ProgressService) CompleteLesson(ctx context.Context, learnerID int, courseID, lessonID uuid.UUID) error {
	state, err := s.lessonState(ctx, learnerID, courseID, lessonID)
	if err != nil {
		return err
	}
	if state == model.LessonStateLocked {
		return ErrLessonLocked
	}

	if err := s.store.UpsertCompletion(ctx, learnerID, lessonID, true); err != nil {
		return err
	}

	s.log.Info().
		Int("learner_id", learnerID).
		Str("lesson_id", lessonID.String()).
		Msg("Lesson completed")
	return nil
}

// lessonState derives the current state of one lesson for a learner and
// verifies the lesson actually belongs to the course.
func (s *ProgressService) lessonState(ctx context.Context, learnerID int, courseID, lessonID uuid.UUID) (model.LessonState, error) {
	lessons, err := s.content.ListLessons(ctx, courseID)
	if err != nil {
		return "", fmt.Errorf("list lessons: %w", err)
	}

	found := false
	for _, l := range lessons {
		if l.ID == lessonID {
			found = true
			break
		}
	}
	if !found {
		return "", ErrLessonNotInCourse
	}

	completions, err := s.store.GetCompletions(ctx, learnerID, courseID)
	if err != nil {
		return "", fmt.Errorf("get completions: %w", err)
	}

	states := progress.EvaluateLessonStates(lessons, completions)
	return states[lessonID], nil
}
