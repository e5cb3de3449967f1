package model

import (
	"time"

	"github.com/google/uuid"
)

// SourceKind discriminates the two submission origins. Rows from either
// source are mapped into the normalized Submission shape before any other
// stage sees them; nothing downstream duck-types on field presence.
type SourceKind string

const (
	SourceKindExercise SourceKind = "EXERCISE"
	SourceKindTest     SourceKind = "TEST"
)

// SubmissionStatus enumerates the grading lifecycle states.
type SubmissionStatus string

const (
	StatusPending  SubmissionStatus = "PENDING"
	StatusGrading  SubmissionStatus = "GRADING"
	StatusGraded   SubmissionStatus = "GRADED"
	StatusReturned SubmissionStatus = "RETURNED"
)

// Priority ranks statuses for deduplication. A graded record always beats a
// returned one, which beats an in-progress grading pass, which beats an
// ungraded one.
func (s SubmissionStatus) Priority() int {
	switch s {
	case StatusGraded:
		return 4
	case StatusReturned:
		return 3
	case StatusGrading:
		return 2
	case StatusPending:
		return 1
	default:
		return 0
	}
}

// Final reports whether the status carries a completed grading pass.
func (s SubmissionStatus) Final() bool {
	return s == StatusGraded || s == StatusReturned
}

// SkillType determines which grading criteria apply to a submission.
type SkillType string

const (
	SkillWriting  SkillType = "WRITING"
	SkillSpeaking SkillType = "SPEAKING"
)

// Criterion is one named grading dimension, scored independently on the 0-9
// band scale.
type Criterion string

const (
	CriterionTaskAchievement   Criterion = "TASK_ACHIEVEMENT"
	CriterionCoherenceCohesion Criterion = "COHERENCE_COHESION"
	CriterionFluencyCoherence  Criterion = "FLUENCY_COHERENCE"
	CriterionPronunciation     Criterion = "PRONUNCIATION"
	CriterionLexicalResource   Criterion = "LEXICAL_RESOURCE"
	CriterionGrammaticalRange  Criterion = "GRAMMATICAL_RANGE"
)

// Submission is the canonical shape both source kinds are normalized into.
// DedupKey is empty for EXERCISE submissions: a learner may legitimately
// retry an exercise and each attempt is a distinct record of work, so
// exercise rows are never merged.
type Submission struct {
	ID               uuid.UUID              `json:"id"`
	SourceKind       SourceKind             `json:"source_kind"`
	DedupKey         string                 `json:"dedup_key,omitempty"`
	UserID           int                    `json:"user_id"`
	LearnerName      string                 `json:"learner_name"`
	Title            string                 `json:"title"`
	SkillType        SkillType              `json:"skill_type"`
	Status           SubmissionStatus       `json:"status"`
	CriteriaScores   map[Criterion]*float64 `json:"criteria_scores"`
	OverallBandScore *float64               `json:"overall_band_score,omitempty"`
	SubmittedAt      time.Time              `json:"submitted_at"`
	GradedAt         *time.Time             `json:"graded_at,omitempty"`
}

// ExerciseSubmissionRow is the raw ad-hoc lesson exercise row as fetched from
// storage, before normalization.
type ExerciseSubmissionRow struct {
	ID                     uuid.UUID
	LearnerID              int
	LearnerName            string
	LessonID               uuid.UUID
	LessonTitle            string
	SkillType              string
	Status                 SubmissionStatus
	TaskAchievementScore   *float64
	CoherenceCohesionScore *float64
	FluencyCoherenceScore  *float64
	PronunciationScore     *float64
	LexicalResourceScore   *float64
	GrammaticalRangeScore  *float64
	OverallBandScore       *float64
	SubmittedAt            time.Time
	GradedAt               *time.Time
}

// TestQuestionSubmissionRow is the raw timed-test question row as fetched
// from storage. One attempt can produce multiple rows for the same question
// across repeated grading passes; deduplication keeps the authoritative one.
type TestQuestionSubmissionRow struct {
	ID                     uuid.UUID
	AttemptID              uuid.UUID
	QuestionID             uuid.UUID
	LearnerID              int
	LearnerName            string
	TestTitle              string
	SkillType              string
	Status                 SubmissionStatus
	TaskAchievementScore   *float64
	CoherenceCohesionScore *float64
	FluencyCoherenceScore  *float64
	PronunciationScore     *float64
	LexicalResourceScore   *float64
	GrammaticalRangeScore  *float64
	OverallBandScore       *float64
	SubmittedAt            time.Time
	GradedAt               *time.Time
}

// SubmissionFilters narrows the rows fetched from either submission source.
// Only learner scoping is applied at the source: a dedup group never spans
// learners, so it cannot split a group. Status and skill filters must run
// after deduplication (grading.Filters), otherwise a stale pass could
// shadow the authoritative record of its group.
type SubmissionFilters struct {
	LearnerID *int
}

// SubmitExerciseRequest is the payload for a learner handing in exercise work.
type SubmitExerciseRequest struct {
	SkillType SkillType `json:"skill_type" binding:"required,oneof=WRITING SPEAKING"`
	Body      string    `json:"body" binding:"required,min=1"`
	AudioURL  string    `json:"audio_url" binding:"omitempty,url"`
}

// SaveGradeRequest is the payload for a grader saving per-criterion scores.
// Absent criteria stay unscored; each present score must be a 0-9 band value.
type SaveGradeRequest struct {
	SourceKind     SourceKind            `json:"source_kind" binding:"required,oneof=EXERCISE TEST"`
	CriteriaScores map[Criterion]float64 `json:"criteria_scores" binding:"required,min=1,dive,min=0,max=9"`
}

// ScorePreviewRequest asks for an overall band preview before saving.
type ScorePreviewRequest struct {
	SkillType      SkillType             `json:"skill_type" binding:"required,oneof=WRITING SPEAKING"`
	CriteriaScores map[Criterion]float64 `json:"criteria_scores" binding:"required"`
}

// ReturnSubmissionRequest identifies which source table the submission lives in.
type ReturnSubmissionRequest struct {
	SourceKind SourceKind `json:"source_kind" binding:"required,oneof=EXERCISE TEST"`
}
