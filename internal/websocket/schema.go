package websocket

import "github.com/fluentpath/ielts-backend/internal/model"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError              Event = "error"
	EventPong               Event = "pong"
	EventSubmissionCreated  Event = "submission_created"
	EventSubmissionOpened   Event = "submission_opened"
	EventGradeSaved         Event = "grade_saved"
	EventSubmissionReturned Event = "submission_returned"
)

// FeedEvent is broadcast to connected graders whenever a submission changes
// state. It is published on the Redis grading feed channel and fanned out to
// every open socket.
type FeedEvent struct {
	Event            Event                  `json:"event"`
	SubmissionID     string                 `json:"submission_id"`
	SourceKind       model.SourceKind       `json:"source_kind"`
	Status           model.SubmissionStatus `json:"status"`
	LearnerName      string                 `json:"learner_name,omitempty"`
	SkillType        model.SkillType        `json:"skill_type,omitempty"`
	OverallBandScore *float64               `json:"overall_band_score,omitempty"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
