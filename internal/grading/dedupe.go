package grading

import "github.com/fluentpath/ielts-backend/internal/model"

// InconsistentGroup reports a dedup group whose members disagree on skill
// type. This cannot occur in well-formed data; the group is still resolved by
// the normal priority rule, and the caller decides whether to log or reject.
type InconsistentGroup struct {
	DedupKey   string
	SkillTypes []model.SkillType
}

// Dedupe collapses repeated grading passes of the same test question into a
// single canonical record. Exercise submissions always pass through untouched.
// Output order is unspecified; the feed assembler sorts.
func Dedupe(items []model.Submission) []model.Submission {
	out, _ := DedupeWithDiagnostics(items)
	return out
}

// DedupeWithDiagnostics is Dedupe plus data-integrity diagnostics for groups
// with conflicting skill types.
func DedupeWithDiagnostics(items []model.Submission) ([]model.Submission, []InconsistentGroup) {
	out := make([]model.Submission, 0, len(items))

	// Survivor per dedup key, chosen by status priority then recency.
	survivors := make(map[string]model.Submission)
	keyOrder := make([]string, 0)
	skills := make(map[string]map[model.SkillType]struct{})

	for _, item := range items {
		if item.SourceKind != model.SourceKindTest {
			out = append(out, item)
			continue
		}

		key := item.DedupKey
		if _, seen := survivors[key]; !seen {
			keyOrder = append(keyOrder, key)
			skills[key] = map[model.SkillType]struct{}{item.SkillType: {}}
			survivors[key] = item
			continue
		}

		skills[key][item.SkillType] = struct{}{}
		if beats(item, survivors[key]) {
			survivors[key] = item
		}
	}

	var diags []InconsistentGroup
	for _, key := range keyOrder {
		out = append(out, survivors[key])
		if len(skills[key]) > 1 {
			diag := InconsistentGroup{DedupKey: key}
			for s := range skills[key] {
				diag.SkillTypes = append(diag.SkillTypes, s)
			}
			diags = append(diags, diag)
		}
	}

	return out, diags
}

// beats reports whether a should replace b as the group survivor: higher
// status priority wins, and on a tie the later submission does.
func beats(a, b model.Submission) bool {
	if a.Status.Priority() != b.Status.Priority() {
		return a.Status.Priority() > b.Status.Priority()
	}
	return a.SubmittedAt.After(b.SubmittedAt)
}
