package model

import (
	"time"

	"github.com/google/uuid"
)

// LessonState is the derived unlock state of a lesson for one learner.
// It is recomputed on every read and never persisted.
type LessonState string

const (
	LessonStateLocked    LessonState = "LOCKED"
	LessonStateUnlocked  LessonState = "UNLOCKED"
	LessonStateCompleted LessonState = "COMPLETED"
)

// CompletionRecord is the durable per-learner lesson progress row. One record
// exists per (learner, lesson); it is created on first entry and flipped to
// completed at most once. The completed flag never regresses.
type CompletionRecord struct {
	UserID      int        `json:"user_id"`
	LessonID    uuid.UUID  `json:"lesson_id"`
	Completed   bool       `json:"completed"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// CourseDashboard is the learner-facing unlock overview for one course.
type CourseDashboard struct {
	CourseID     uuid.UUID                 `json:"course_id"`
	Lessons      []LessonRef               `json:"lessons"`
	LessonStates map[uuid.UUID]LessonState `json:"lesson_states"`
}
