// Package progress derives per-learner lesson unlock state from the content
// tree and the durable completion records. Everything here is pure: state is
// recomputed on every read and never stored.
package progress

import (
	"sort"

	"github.com/fluentpath/ielts-backend/internal/model"
	"github.com/google/uuid"
)

// EvaluateLessonStates computes the unlock state for every lesson in the
// course, in sequence order:
//
//   - the first lesson of the course is always UNLOCKED (or COMPLETED);
//   - any later lesson is COMPLETED if its completion record says so,
//     UNLOCKED if the immediately preceding lesson in (unitOrder, order)
//     sequence is COMPLETED, and LOCKED otherwise.
//
// Completion records pointing at lessons absent from the tree snapshot are
// ignored. The function cannot fail; an empty lesson list yields an empty map.
func EvaluateLessonStates(lessons []model.LessonRef, completions []model.CompletionRecord) map[uuid.UUID]model.LessonState {
	states := make(map[uuid.UUID]model.LessonState, len(lessons))
	if len(lessons) == 0 {
		return states
	}

	ordered := make([]model.LessonRef, len(lessons))
	copy(ordered, lessons)
	// Order values are author-assigned and may have gaps; ties keep input order.
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].UnitOrder != ordered[j].UnitOrder {
			return ordered[i].UnitOrder < ordered[j].UnitOrder
		}
		return ordered[i].Order < ordered[j].Order
	})

	known := make(map[uuid.UUID]struct{}, len(ordered))
	for _, l := range ordered {
		known[l.ID] = struct{}{}
	}

	completed := make(map[uuid.UUID]bool, len(completions))
	for _, c := range completions {
		if _, ok := known[c.LessonID]; !ok {
			continue // stale reference, lesson no longer in the tree
		}
		if c.Completed {
			completed[c.LessonID] = true
		}
	}

	prevCompleted := true // the first lesson has no prerequisite
	for _, l := range ordered {
		switch {
		case completed[l.ID]:
			states[l.ID] = model.LessonStateCompleted
		case prevCompleted:
			states[l.ID] = model.LessonStateUnlocked
		default:
			states[l.ID] = model.LessonStateLocked
		}
		prevCompleted = completed[l.ID]
	}

	return states
}
