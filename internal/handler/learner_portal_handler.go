package handler

import (
	"errors"
	"net/http"

	"github.com/fluentpath/ielts-backend/internal/middleware"
	"github.com/fluentpath/ielts-backend/internal/model"
	"github.com/fluentpath/ielts-backend/internal/response"
	"github.com/fluentpath/ielts-backend/internal/service"
	"github.com/fluentpath/ielts-backend/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// LearnerPortalHandler handles learner-facing endpoints: course dashboards,
// lesson progress, and handing in exercise work.
type LearnerPortalHandler struct {
	contentService    *service.ContentService
	progressService   *service.ProgressService
	submissionService *service.SubmissionService
}

// NewLearnerPortalHandler creates a new LearnerPortalHandler.
func NewLearnerPortalHandler(
	contentService *service.ContentService,
	progressService *service.ProgressService,
	submissionService *service.SubmissionService,
) *LearnerPortalHandler {
	return &LearnerPortalHandler{
		contentService:    contentService,
		progressService:   progressService,
		submissionService: submissionService,
	}
}

// ListCourses godoc
// GET /api/v1/learner/courses
// Returns all courses available to the learner.
func (h *LearnerPortalHandler) ListCourses(c *gin.Context) {
	courses, err := h.contentService.ListCourses(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"courses": courses})
}

// GetDashboard godoc
// GET /api/v1/learner/courses/:course_id/dashboard
// Returns the ordered lessons of a course with the learner's derived state
// (LOCKED / UNLOCKED / COMPLETED) for each.
func (h *LearnerPortalHandler) GetDashboard(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	courseID, err := uuid.Parse(c.Param("course_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	dashboard, err := h.progressService.GetDashboard(c.Request.Context(), claims.UserID, courseID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"dashboard": dashboard})
}

// EnterLesson godoc
// POST /api/v1/learner/courses/:course_id/lessons/:lesson_id/enter
// Records that the learner opened an unlocked lesson.
func (h *LearnerPortalHandler) EnterLesson(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	courseID, lessonID, ok := parseCourseLessonIDs(c)
	if !ok {
		return
	}

	err := h.progressService.EnterLesson(c.Request.Context(), claims.UserID, courseID, lessonID)
	if err != nil {
		failProgress(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"lesson_id": lessonID, "state": model.LessonStateUnlocked})
}

// CompleteLesson godoc
// POST /api/v1/learner/courses/:course_id/lessons/:lesson_id/complete
// Marks an unlocked lesson completed, which may unlock the next lesson.
// Repeated completion is a no-op.
func (h *LearnerPortalHandler) CompleteLesson(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	courseID, lessonID, ok := parseCourseLessonIDs(c)
	if !ok {
		return
	}

	err := h.progressService.CompleteLesson(c.Request.Context(), claims.UserID, courseID, lessonID)
	if err != nil {
		failProgress(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"lesson_id": lessonID, "state": model.LessonStateCompleted})
}

// SubmitExercise godoc
// POST /api/v1/learner/lessons/:lesson_id/submissions
// Hands in exercise work for a lesson. The submission enters the grading
// queue in PENDING state.
func (h *LearnerPortalHandler) SubmitExercise(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	lessonID, err := uuid.Parse(c.Param("lesson_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.SubmitExerciseRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	id, err := h.submissionService.SubmitExercise(c.Request.Context(), claims.UserID, lessonID, req)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"submission_id": id,
		"status":        model.StatusPending,
	})
}

// GetSubmissionHistory godoc
// GET /api/v1/learner/submissions
// Returns the learner's own submission feed across both sources, newest first.
func (h *LearnerPortalHandler) GetSubmissionHistory(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	f := parseFeedFilters(c)
	view, err := h.submissionService.ListLearnerHistory(c.Request.Context(), claims.UserID, f)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK,
		gin.H{"submissions": view.Submissions},
		buildPagination(f, view.Total),
	)
}

func parseCourseLessonIDs(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	courseID, err := uuid.Parse(c.Param("course_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return uuid.Nil, uuid.Nil, false
	}
	lessonID, err := uuid.Parse(c.Param("lesson_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return uuid.Nil, uuid.Nil, false
	}
	return courseID, lessonID, true
}

func failProgress(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrLessonLocked):
		response.Fail(c, http.StatusForbidden, response.ErrLessonLocked)
	case errors.Is(err, service.ErrLessonNotInCourse):
		response.Fail(c, http.StatusNotFound, response.ErrLessonNotInCourse)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
