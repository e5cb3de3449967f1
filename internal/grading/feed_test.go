package grading

import (
	"testing"
	"time"

	"github.com/fluentpath/ielts-backend/internal/model"
	"github.com/google/uuid"
)

func feedFixture() []model.Submission {
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	return []model.Submission{
		{
			ID: uuid.New(), SourceKind: model.SourceKindExercise, LearnerName: "Ana Silva",
			Title: "Opinion Essays", SkillType: model.SkillWriting,
			Status: model.StatusPending, SubmittedAt: base,
		},
		{
			ID: uuid.New(), SourceKind: model.SourceKindTest, LearnerName: "Ben Okafor",
			Title: "Mock Test 1", SkillType: model.SkillSpeaking,
			Status: model.StatusGraded, SubmittedAt: base.Add(2 * time.Hour),
		},
		{
			ID: uuid.New(), SourceKind: model.SourceKindExercise, LearnerName: "Chloe Park",
			Title: "Describing Charts", SkillType: model.SkillWriting,
			Status: model.StatusGraded, SubmittedAt: base.Add(time.Hour),
		},
	}
}

func TestAssemble_SortsBySubmittedAtDesc(t *testing.T) {
	view := Assemble(nil, feedFixture(), Filters{})

	if view.Total != 3 {
		t.Fatalf("total = %d, want 3", view.Total)
	}
	for i := 1; i < len(view.Submissions); i++ {
		if view.Submissions[i].SubmittedAt.After(view.Submissions[i-1].SubmittedAt) {
			t.Fatalf("submissions not sorted newest-first at index %d", i)
		}
	}
	if view.Submissions[0].LearnerName != "Ben Okafor" {
		t.Fatalf("newest submission = %s", view.Submissions[0].LearnerName)
	}
}

func TestAssemble_Filters(t *testing.T) {
	kind := model.SourceKindExercise
	status := model.StatusGraded

	view := Assemble(nil, feedFixture(), Filters{SourceKind: &kind, Status: &status})

	if view.Total != 1 {
		t.Fatalf("total = %d, want 1", view.Total)
	}
	if view.Submissions[0].LearnerName != "Chloe Park" {
		t.Fatalf("filtered result = %s", view.Submissions[0].LearnerName)
	}
}

func TestAssemble_SearchMatchesNameAndTitle(t *testing.T) {
	byName := Assemble(nil, feedFixture(), Filters{Search: "okafor"})
	if byName.Total != 1 || byName.Submissions[0].LearnerName != "Ben Okafor" {
		t.Fatalf("search by name: total=%d", byName.Total)
	}

	byTitle := Assemble(nil, feedFixture(), Filters{Search: "CHARTS"})
	if byTitle.Total != 1 || byTitle.Submissions[0].Title != "Describing Charts" {
		t.Fatalf("search by title: total=%d", byTitle.Total)
	}
}

func TestAssemble_Pagination(t *testing.T) {
	subs := feedFixture()

	page1 := Assemble(nil, subs, Filters{Page: 1, Limit: 2})
	if len(page1.Submissions) != 2 || page1.Total != 3 {
		t.Fatalf("page 1: items=%d total=%d", len(page1.Submissions), page1.Total)
	}

	page2 := Assemble(nil, subs, Filters{Page: 2, Limit: 2})
	if len(page2.Submissions) != 1 || page2.Total != 3 {
		t.Fatalf("page 2: items=%d total=%d", len(page2.Submissions), page2.Total)
	}

	beyond := Assemble(nil, subs, Filters{Page: 9, Limit: 2})
	if len(beyond.Submissions) != 0 {
		t.Fatalf("page beyond end should be empty, got %d", len(beyond.Submissions))
	}
}

func TestNormalizePageLimit_AgreesWithAssemble(t *testing.T) {
	page, limit := NormalizePageLimit(0, 0)
	if page != 1 || limit != 20 {
		t.Fatalf("NormalizePageLimit(0, 0) = (%d, %d), want (1, 20)", page, limit)
	}

	// The defaulted window and the slice Assemble returns must agree.
	view := Assemble(nil, feedFixture(), Filters{Page: 0, Limit: 0})
	if len(view.Submissions) != 3 {
		t.Fatalf("defaulted page holds %d items, want all 3", len(view.Submissions))
	}

	page, limit = NormalizePageLimit(2, 2)
	view = Assemble(nil, feedFixture(), Filters{Page: 2, Limit: 2})
	if want := 3 - (page-1)*limit; len(view.Submissions) != want {
		t.Fatalf("page 2 holds %d items, want %d", len(view.Submissions), want)
	}
}

func TestAssemble_CarriesLessonStates(t *testing.T) {
	lessonID := uuid.New()
	states := map[uuid.UUID]model.LessonState{lessonID: model.LessonStateUnlocked}

	view := Assemble(states, nil, Filters{})

	if view.LessonStates[lessonID] != model.LessonStateUnlocked {
		t.Fatal("lesson states not carried through")
	}
	if view.Submissions == nil {
		t.Fatal("submissions should be an empty slice, not nil")
	}
}
