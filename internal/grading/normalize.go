// Package grading implements the submission pipeline: normalization of the
// two heterogeneous source records into one canonical shape, deduplication of
// repeated test grading passes, overall band score aggregation, and assembly
// of the unified feed consumed by dashboards and grading queues. All stages
// are pure functions over immutable snapshots.
package grading

import (
	"errors"
	"fmt"

	"github.com/fluentpath/ielts-backend/internal/model"
	"github.com/google/uuid"
)

// ErrUnsupportedSkillType marks a source row whose skill type is not WRITING
// or SPEAKING. The caller drops the row and logs it; no partial record is
// admitted into later stages.
var ErrUnsupportedSkillType = errors.New("unsupported skill type")

// DedupKey identifies "the same piece of work" across repeated grading passes
// of one test question. The underscore separator never appears in the textual
// form of a UUID.
func DedupKey(attemptID, questionID uuid.UUID) string {
	return attemptID.String() + "_" + questionID.String()
}

// NormalizeExercise maps an ad-hoc lesson exercise row into the canonical
// Submission shape. Exercise submissions carry no dedup key.
func NormalizeExercise(row model.ExerciseSubmissionRow) (model.Submission, error) {
	skill, err := parseSkillType(row.SkillType)
	if err != nil {
		return model.Submission{}, err
	}

	return model.Submission{
		ID:          row.ID,
		SourceKind:  model.SourceKindExercise,
		UserID:      row.LearnerID,
		LearnerName: row.LearnerName,
		Title:       row.LessonTitle,
		SkillType:   skill,
		Status:      row.Status,
		CriteriaScores: collectScores(skill, criteriaFields{
			taskAchievement:   row.TaskAchievementScore,
			coherenceCohesion: row.CoherenceCohesionScore,
			fluencyCoherence:  row.FluencyCoherenceScore,
			pronunciation:     row.PronunciationScore,
			lexicalResource:   row.LexicalResourceScore,
			grammaticalRange:  row.GrammaticalRangeScore,
		}),
		OverallBandScore: row.OverallBandScore,
		SubmittedAt:      row.SubmittedAt,
		GradedAt:         row.GradedAt,
	}, nil
}

// NormalizeTest maps a timed-test question row into the canonical Submission
// shape, attaching the (attempt, question) dedup key.
func NormalizeTest(row model.TestQuestionSubmissionRow) (model.Submission, error) {
	skill, err := parseSkillType(row.SkillType)
	if err != nil {
		return model.Submission{}, err
	}

	return model.Submission{
		ID:          row.ID,
		SourceKind:  model.SourceKindTest,
		DedupKey:    DedupKey(row.AttemptID, row.QuestionID),
		UserID:      row.LearnerID,
		LearnerName: row.LearnerName,
		Title:       row.TestTitle,
		SkillType:   skill,
		Status:      row.Status,
		CriteriaScores: collectScores(skill, criteriaFields{
			taskAchievement:   row.TaskAchievementScore,
			coherenceCohesion: row.CoherenceCohesionScore,
			fluencyCoherence:  row.FluencyCoherenceScore,
			pronunciation:     row.PronunciationScore,
			lexicalResource:   row.LexicalResourceScore,
			grammaticalRange:  row.GrammaticalRangeScore,
		}),
		OverallBandScore: row.OverallBandScore,
		SubmittedAt:      row.SubmittedAt,
		GradedAt:         row.GradedAt,
	}, nil
}

func parseSkillType(raw string) (model.SkillType, error) {
	switch model.SkillType(raw) {
	case model.SkillWriting:
		return model.SkillWriting, nil
	case model.SkillSpeaking:
		return model.SkillSpeaking, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedSkillType, raw)
	}
}

type criteriaFields struct {
	taskAchievement   *float64
	coherenceCohesion *float64
	fluencyCoherence  *float64
	pronunciation     *float64
	lexicalResource   *float64
	grammaticalRange  *float64
}

// collectScores copies whichever of the skill-specific score fields are
// non-nil into the criteria map. Fields belonging to the other skill are
// never admitted, even if a malformed row populated them.
func collectScores(skill model.SkillType, f criteriaFields) map[model.Criterion]*float64 {
	scores := make(map[model.Criterion]*float64, 4)
	for _, c := range RequiredCriteria(skill) {
		switch c {
		case model.CriterionTaskAchievement:
			scores[c] = f.taskAchievement
		case model.CriterionCoherenceCohesion:
			scores[c] = f.coherenceCohesion
		case model.CriterionFluencyCoherence:
			scores[c] = f.fluencyCoherence
		case model.CriterionPronunciation:
			scores[c] = f.pronunciation
		case model.CriterionLexicalResource:
			scores[c] = f.lexicalResource
		case model.CriterionGrammaticalRange:
			scores[c] = f.grammaticalRange
		}
	}
	return scores
}
