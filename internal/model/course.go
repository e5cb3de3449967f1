package model

import (
	"time"

	"github.com/google/uuid"
)

// Course represents a published IELTS preparation course.
type Course struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Unit is an ordered group of lessons inside a course.
type Unit struct {
	ID       uuid.UUID `json:"id"`
	CourseID uuid.UUID `json:"course_id"`
	Title    string    `json:"title"`
	Order    int       `json:"order"`
}

// LessonRef is the engine's read-only view of a lesson inside the content
// tree. (UnitOrder, Order) ascending defines the lesson sequence across the
// whole course; Order values are author-assigned and not required to be
// contiguous.
type LessonRef struct {
	ID        uuid.UUID `json:"id"`
	UnitID    uuid.UUID `json:"unit_id"`
	UnitOrder int       `json:"unit_order"`
	Order     int       `json:"order"`
	Title     string    `json:"title"`
}
