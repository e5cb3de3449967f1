package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fluentpath/ielts-backend/internal/config"
	"github.com/fluentpath/ielts-backend/internal/model"
	"github.com/fluentpath/ielts-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ErrCourseNotFound is returned when a course ID resolves to nothing.
var ErrCourseNotFound = errors.New("course not found")

// ContentService reads the course → units → lessons tree, with the ordered
// lesson sequence cached in Redis. Lesson order is the hot path of every
// dashboard render, so it is prewarmed on startup and self-heals from
// PostgreSQL on a cache miss.
type ContentService struct {
	contentRepo *repository.ContentRepository
	rdb         *redis.Client
	log         zerolog.Logger
}

// NewContentService creates a new ContentService.
func NewContentService(contentRepo *repository.ContentRepository, rdb *redis.Client, log zerolog.Logger) *ContentService {
	return &ContentService{
		contentRepo: contentRepo,
		rdb:         rdb,
		log:         log.With().Str("component", "content_service").Logger(),
	}
}

// GetCourse retrieves a course by its UUID.
func (s *ContentService) GetCourse(ctx context.Context, id uuid.UUID) (*model.Course, error) {
	course, err := s.contentRepo.GetCourse(ctx, id)
	if err != nil {
		return nil, ErrCourseNotFound
	}
	return course, nil
}

// ListCourses retrieves all courses.
func (s *ContentService) ListCourses(ctx context.Context) ([]model.Course, error) {
	courses, err := s.contentRepo.ListCourses(ctx)
	if err != nil {
		return nil, err
	}
	if courses == nil {
		courses = []model.Course{}
	}
	return courses, nil
}

// ListLessons returns the ordered lesson sequence for a course, serving from
// the Redis cache and falling back to PostgreSQL on a miss.
func (s *ContentService) ListLessons(ctx context.Context, courseID uuid.UUID) ([]model.LessonRef, error) {
	key := config.CacheKey.CourseLessonsKey(courseID.String())

	data, err := s.rdb.Get(ctx, key).Bytes()
	if err == nil {
		var lessons []model.LessonRef
		if err := json.Unmarshal(data, &lessons); err == nil {
			return lessons, nil
		}
		s.log.Warn().Str("course_id", courseID.String()).Msg("corrupt lesson cache, reloading")
	} else if !errors.Is(err, redis.Nil) {
		s.log.Warn().Err(err).Msg("lesson cache read failed, falling back to database")
	}

	return s.warmCourseCache(ctx, courseID)
}

// warmCourseCache loads a course's lesson sequence from PostgreSQL into Redis
// and returns it.
func (s *ContentService) warmCourseCache(ctx context.Context, courseID uuid.UUID) ([]model.LessonRef, error) {
	lessons, err := s.contentRepo.ListLessons(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	if lessons == nil {
		lessons = []model.LessonRef{}
	}

	payload, err := json.Marshal(lessons)
	if err != nil {
		return nil, fmt.Errorf("marshal lessons: %w", err)
	}
	if err := s.rdb.Set(ctx, config.CacheKey.CourseLessonsKey(courseID.String()), payload, 0).Err(); err != nil {
		// Cache write failure is not fatal; the caller still gets the tree.
		s.log.Warn().Err(err).Str("course_id", courseID.String()).Msg("failed to cache lessons")
	}

	s.log.Debug().
		Str("course_id", courseID.String()).
		Int("lessons", len(lessons)).
		Msg("Lesson cache warmed")
	return lessons, nil
}

// PrewarmAllCaches loads every course's lesson sequence into Redis on
// application startup.
func (s *ContentService) PrewarmAllCaches(ctx context.Context) error {
	courses, err := s.contentRepo.ListCourses(ctx)
	if err != nil {
		return fmt.Errorf("list courses: %w", err)
	}

	if len(courses) == 0 {
		s.log.Info().Msg("No courses to prewarm")
		return nil
	}

	s.log.Info().Int("count", len(courses)).Msg("Prewarming course lesson caches...")

	warmed := 0
	for i := range courses {
		if _, err := s.warmCourseCache(ctx, courses[i].ID); err != nil {
			s.log.Warn().
				Err(err).
				Str("course_id", courses[i].ID.String()).
				Msg("Failed to warm course, skipping")
			continue
		}
		warmed++
	}

	s.log.Info().
		Int("warmed", warmed).
		Int("total", len(courses)).
		Msg("Prewarming complete")
	return nil
}
