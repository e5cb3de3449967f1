package grading

import (
	"sort"
	"strings"

	"github.com/fluentpath/ielts-backend/internal/model"
	"github.com/google/uuid"
)

// Filters narrows and pages the grading-queue view. Nil fields mean "no
// filter"; Search matches case-insensitively against learner name and the
// lesson/test title.
type Filters struct {
	SourceKind *model.SourceKind
	SkillType  *model.SkillType
	Status     *model.SubmissionStatus
	Search     string
	Page       int
	Limit      int
}

// FeedView combines the two independently computed artifacts consumed
// externally: unlock states for dashboards and the deduplicated, scored,
// filtered submission page for grading queues.
type FeedView struct {
	LessonStates map[uuid.UUID]model.LessonState `json:"lesson_states,omitempty"`
	Submissions  []model.Submission              `json:"submissions"`
	Total        int                             `json:"total"`
}

// Assemble merges unlock states and the already-deduplicated submission list
// into the externally consumed view. Pagination is a pure slice over the
// sorted list; every call recomputes from the current snapshot, so there is
// no cursor state to corrupt under concurrent appends.
func Assemble(states map[uuid.UUID]model.LessonState, subs []model.Submission, f Filters) FeedView {
	filtered := make([]model.Submission, 0, len(subs))
	needle := strings.ToLower(strings.TrimSpace(f.Search))
	for _, s := range subs {
		if f.SourceKind != nil && s.SourceKind != *f.SourceKind {
			continue
		}
		if f.SkillType != nil && s.SkillType != *f.SkillType {
			continue
		}
		if f.Status != nil && s.Status != *f.Status {
			continue
		}
		if needle != "" && !matchesSearch(s, needle) {
			continue
		}
		filtered = append(filtered, s)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].SubmittedAt.After(filtered[j].SubmittedAt)
	})

	total := len(filtered)
	return FeedView{
		LessonStates: states,
		Submissions:  page(filtered, f.Page, f.Limit),
		Total:        total,
	}
}

func matchesSearch(s model.Submission, needle string) bool {
	return strings.Contains(strings.ToLower(s.LearnerName), needle) ||
		strings.Contains(strings.ToLower(s.Title), needle)
}

// NormalizePageLimit clamps a requested page window to its effective values
// (page >= 1, limit defaulting to 20). Pagination envelopes must be derived
// from these so they always agree with the slice Assemble returns.
func NormalizePageLimit(pageNum, limit int) (int, int) {
	if pageNum < 1 {
		pageNum = 1
	}
	if limit < 1 {
		limit = 20
	}
	return pageNum, limit
}

func page(items []model.Submission, pageNum, limit int) []model.Submission {
	pageNum, limit = NormalizePageLimit(pageNum, limit)

	start := (pageNum - 1) * limit
	if start >= len(items) {
		return []model.Submission{}
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
