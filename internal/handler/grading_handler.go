package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/fluentpath/ielts-backend/internal/grading"
	"github.com/fluentpath/ielts-backend/internal/model"
	"github.com/fluentpath/ielts-backend/internal/response"
	"github.com/fluentpath/ielts-backend/internal/service"
	"github.com/fluentpath/ielts-backend/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GradingHandler handles the grader workspace endpoints: the deduplicated
// queue, score previews, and the grading lifecycle transitions.
type GradingHandler struct {
	submissionService *service.SubmissionService
}

// NewGradingHandler creates a new GradingHandler.
func NewGradingHandler(submissionService *service.SubmissionService) *GradingHandler {
	return &GradingHandler{submissionService: submissionService}
}

// ListQueue godoc
// GET /api/v1/grading/submissions
// Returns the deduplicated, scored grading queue, newest first. Only learner
// scoping narrows the source fetch; status and skill filters apply after
// deduplication so the survivor of each group is chosen across all passes.
func (h *GradingHandler) ListQueue(c *gin.Context) {
	var mf model.SubmissionFilters
	if raw := c.Query("learner_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
			return
		}
		mf.LearnerID = &id
	}

	f := parseFeedFilters(c)
	view, err := h.submissionService.ListGradingQueue(c.Request.Context(), mf, f)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK,
		gin.H{"submissions": view.Submissions},
		buildPagination(f, view.Total),
	)
}

// GetSubmission godoc
// GET /api/v1/grading/submissions/:id
// Returns one submission in its normalized shape.
func (h *GradingHandler) GetSubmission(c *gin.Context) {
	kind, id, ok := parseSubmissionRef(c, c.Query("source_kind"))
	if !ok {
		return
	}

	sub, err := h.submissionService.GetSubmission(c.Request.Context(), kind, id)
	if err != nil {
		failGrading(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"submission": sub})
}

// OpenSubmission godoc
// POST /api/v1/grading/submissions/:id/open
// Marks a pending submission as GRADING. Idempotent: opening an item that has
// already moved on returns its current state.
func (h *GradingHandler) OpenSubmission(c *gin.Context) {
	var req model.ReturnSubmissionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	kind, id, ok := parseSubmissionRef(c, string(req.SourceKind))
	if !ok {
		return
	}

	sub, err := h.submissionService.OpenSubmission(c.Request.Context(), kind, id)
	if err != nil {
		failGrading(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"submission": sub})
}

// ScorePreview godoc
// POST /api/v1/grading/score-preview
// Computes the overall band a criteria set would produce without persisting.
func (h *GradingHandler) ScorePreview(c *gin.Context) {
	var req model.ScorePreviewRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	overall, err := h.submissionService.ScorePreview(req)
	if err != nil {
		failGrading(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"overall_band_score": overall})
}

// SaveGrade godoc
// PUT /api/v1/grading/submissions/:id/grade
// Merges the grader's criterion scores into the submission. The submission
// becomes GRADED once every required criterion is scored.
func (h *GradingHandler) SaveGrade(c *gin.Context) {
	var req model.SaveGradeRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	kind, id, ok := parseSubmissionRef(c, string(req.SourceKind))
	if !ok {
		return
	}

	sub, err := h.submissionService.SaveGrade(c.Request.Context(), kind, id, req)
	if err != nil {
		failGrading(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"submission": sub})
}

// ReturnSubmission godoc
// POST /api/v1/grading/submissions/:id/return
// Hands a fully graded submission back to the learner. Irreversible.
func (h *GradingHandler) ReturnSubmission(c *gin.Context) {
	var req model.ReturnSubmissionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	kind, id, ok := parseSubmissionRef(c, string(req.SourceKind))
	if !ok {
		return
	}

	sub, err := h.submissionService.ReturnSubmission(c.Request.Context(), kind, id)
	if err != nil {
		failGrading(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"submission": sub})
}

// parseFeedFilters reads the shared feed query params: source_kind,
// skill_type, status, search, page, limit.
func parseFeedFilters(c *gin.Context) grading.Filters {
	var f grading.Filters

	if raw := c.Query("source_kind"); raw != "" {
		sk := model.SourceKind(raw)
		f.SourceKind = &sk
	}
	if raw := c.Query("skill_type"); raw != "" {
		st := model.SkillType(raw)
		f.SkillType = &st
	}
	if raw := c.Query("status"); raw != "" {
		st := model.SubmissionStatus(raw)
		f.Status = &st
	}
	f.Search = c.Query("search")
	f.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	f.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))

	return f
}

func parseSubmissionRef(c *gin.Context, rawKind string) (model.SourceKind, uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return "", uuid.Nil, false
	}

	kind := model.SourceKind(rawKind)
	switch kind {
	case model.SourceKindExercise, model.SourceKindTest:
	default:
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return "", uuid.Nil, false
	}

	return kind, id, true
}

// buildPagination derives the envelope pagination block from the feed filters
// and the pre-pagination total, using the same clamping as the feed slice.
func buildPagination(f grading.Filters, total int) *response.Pagination {
	page, limit := grading.NormalizePageLimit(f.Page, f.Limit)
	totalPages := (total + limit - 1) / limit
	return &response.Pagination{
		Page:       page,
		PerPage:    limit,
		TotalItems: total,
		TotalPages: totalPages,
	}
}

func failGrading(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSubmissionNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrSubmissionNotFound)
	case errors.Is(err, service.ErrGradeAlreadyFinal):
		response.Fail(c, http.StatusConflict, response.ErrGradeAlreadyFinal)
	case errors.Is(err, service.ErrSubmissionNotGraded):
		response.Fail(c, http.StatusConflict, response.ErrSubmissionNotGraded)
	case errors.Is(err, service.ErrUnknownCriterion):
		response.Fail(c, http.StatusBadRequest, response.ErrUnknownCriterion)
	case errors.Is(err, grading.ErrUnsupportedSkillType):
		response.Fail(c, http.StatusBadRequest, response.ErrUnsupportedSkillType)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
