package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrSessionActive      ErrCode = "SESSION_ALREADY_ACTIVE"
	ErrSessionInvalidated ErrCode = "SESSION_INVALIDATED"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden         ErrCode = "FORBIDDEN"
	ErrPermissionDenied  ErrCode = "PERMISSION_DENIED"
	ErrLearnerAccessOnly ErrCode = "LEARNER_ACCESS_ONLY"
	ErrGraderAccessOnly  ErrCode = "GRADER_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound        ErrCode = "NOT_FOUND"
	ErrConflict        ErrCode = "CONFLICT"
	ErrActionForbidden ErrCode = "ACTION_FORBIDDEN"

	// ─── Progress ──────────────────────────────────────────────────────
	ErrLessonLocked      ErrCode = "LESSON_LOCKED"
	ErrLessonNotInCourse ErrCode = "LESSON_NOT_IN_COURSE"
	ErrCourseNotFound    ErrCode = "COURSE_NOT_FOUND"

	// ─── Grading ───────────────────────────────────────────────────────
	ErrSubmissionNotFound   ErrCode = "SUBMISSION_NOT_FOUND"
	ErrUnsupportedSkillType ErrCode = "UNSUPPORTED_SKILL_TYPE"
	ErrUnknownCriterion     ErrCode = "UNKNOWN_CRITERION"
	ErrGradeAlreadyFinal    ErrCode = "GRADE_ALREADY_FINAL"
	ErrSubmissionNotGraded  ErrCode = "SUBMISSION_NOT_GRADED"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Email or password is incorrect."
	case ErrSessionActive:
		return "You are already signed in on another device."
	case ErrSessionInvalidated:
		return "Your session has ended. Please sign in again."
	case ErrTokenRequired:
		return "An authentication token is required."
	case ErrTokenInvalid:
		return "The authentication token is invalid."
	case ErrTokenExpired:
		return "The authentication token has expired."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "You do not have permission to access this resource."
	case ErrPermissionDenied:
		return "Permission denied."
	case ErrLearnerAccessOnly:
		return "This resource is restricted to learners."
	case ErrGraderAccessOnly:
		return "This resource is restricted to graders."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "The ID format is invalid."
	case ErrInvalidPayload:
		return "The request payload is invalid."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "The resource was not found."
	case ErrConflict:
		return "The resource already exists."
	case ErrActionForbidden:
		return "This action is not allowed."

	// ─── Progress ──────────────────────────────────────────────────────
	case ErrLessonLocked:
		return "This lesson is still locked. Complete the previous lesson first."
	case ErrLessonNotInCourse:
		return "This lesson does not belong to the requested course."
	case ErrCourseNotFound:
		return "The course was not found."

	// ─── Grading ───────────────────────────────────────────────────────
	case ErrSubmissionNotFound:
		return "The submission was not found."
	case ErrUnsupportedSkillType:
		return "The skill type is not supported for grading."
	case ErrUnknownCriterion:
		return "One or more criteria do not apply to this skill type."
	case ErrGradeAlreadyFinal:
		return "This submission has been returned and can no longer be graded."
	case ErrSubmissionNotGraded:
		return "This submission has not been fully graded yet."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
