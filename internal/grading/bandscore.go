package grading

import (
	"math"

	"github.com/fluentpath/ielts-backend/internal/model"
)

var speakingCriteria = []model.Criterion{
	model.CriterionFluencyCoherence,
	model.CriterionPronunciation,
	model.CriterionLexicalResource,
	model.CriterionGrammaticalRange,
}

var writingCriteria = []model.Criterion{
	model.CriterionTaskAchievement,
	model.CriterionCoherenceCohesion,
	model.CriterionLexicalResource,
	model.CriterionGrammaticalRange,
}

// RequiredCriteria returns the criterion set graded for the given skill.
func RequiredCriteria(skill model.SkillType) []model.Criterion {
	if skill == model.SkillSpeaking {
		return speakingCriteria
	}
	return writingCriteria
}

// ComputeOverallScore returns the overall band for a submission: the plain
// arithmetic mean of whichever required criteria are present, rounded to one
// decimal for display. Nil when no required criterion has been scored yet.
//
// This is deliberately not the official IELTS half-band rounding rule; the
// product displays a simple one-decimal mean.
func ComputeOverallScore(skill model.SkillType, scores map[model.Criterion]*float64) *float64 {
	var sum float64
	var n int
	for _, c := range RequiredCriteria(skill) {
		if v := scores[c]; v != nil {
			sum += *v
			n++
		}
	}
	if n == 0 {
		return nil
	}

	mean := math.Round(sum/float64(n)*10) / 10
	return &mean
}

// ScoreSubmissions is the aggregation stage of the feed pipeline. It enforces
// the presence invariant: an overall band is carried iff the submission is
// GRADED or RETURNED and at least one criterion has been scored. Missing
// overall scores on graded items are filled in from the criteria.
func ScoreSubmissions(items []model.Submission) []model.Submission {
	for i := range items {
		if !items[i].Status.Final() {
			items[i].OverallBandScore = nil
			continue
		}
		if items[i].OverallBandScore == nil {
			items[i].OverallBandScore = ComputeOverallScore(items[i].SkillType, items[i].CriteriaScores)
		}
	}
	return items
}
