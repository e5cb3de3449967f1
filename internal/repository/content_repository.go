package repository

import (
	"context"

	"github.com/fluentpath/ielts-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ContentRepository reads the course → units → lessons tree. The grading and
// progress engine treats this tree as read-only.
type ContentRepository struct {
	pool *pgxpool.Pool
}

// NewContentRepository creates a new ContentRepository.
func NewContentRepository(pool *pgxpool.Pool) *ContentRepository {
	return &ContentRepository{pool: pool}
}

// GetCourse retrieves a course by its ID.
func (r *ContentRepository) GetCourse(ctx context.Context, id uuid.UUID) (*model.Course, error) {
	c := &model.Course{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, title, description, created_at, updated_at
		 FROM courses WHERE id = $1`, id,
	).Scan(&c.ID, &c.Title, &c.Description, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ListCourses retrieves all courses.
func (r *ContentRepository) ListCourses(ctx context.Context) ([]model.Course, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, title, description, created_at, updated_at
		 FROM courses ORDER BY title`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courses []model.Course
	for rows.Next() {
		var c model.Course
		if err := rows.Scan(&c.ID, &c.Title, &c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

// ListLessons retrieves the ordered lesson sequence for a course. The
// (unit order, lesson order) sort here is what defines "previous lesson" for
// the unlock evaluator.
func (r *ContentRepository) ListLessons(ctx context.Context, courseID uuid.UUID) ([]model.LessonRef, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT l.id, l.unit_id, u.order_num, l.order_num, l.title
		 FROM lessons l
		 JOIN units u ON l.unit_id = u.id
		 WHERE u.course_id = $1
		 ORDER BY u.order_num ASC, l.order_num ASC`, courseID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lessons []model.LessonRef
	for rows.Next() {
		var l model.LessonRef
		if err := rows.Scan(&l.ID, &l.UnitID, &l.UnitOrder, &l.Order, &l.Title); err != nil {
			return nil, err
		}
		lessons = append(lessons, l)
	}
	return lessons, rows.Err()
}
