package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrUnauthenticated    ErrCode = "UNAUTHENTICATED"
	ErrAdminAuthRequired  ErrCode = "ADMIN_AUTH_REQUIRED"
	ErrLoginLocked        ErrCode = "LOGIN_LOCKED"

	// ─── Participation ─────────────────────────────────────────────────
	ErrInvalidJoinCode ErrCode = "INVALID_JOIN_CODE"
	ErrNotRegistered   ErrCode = "NOT_REGISTERED"
	ErrEventFinished   ErrCode = "EVENT_FINISHED"

	// ─── Progression ───────────────────────────────────────────────────
	ErrInvalidState      ErrCode = "INVALID_STATE"
	ErrQuestionNotActive ErrCode = "QUESTION_NOT_ACTIVE"
	ErrEventStarted      ErrCode = "EVENT_ALREADY_STARTED"

	// ─── Answers ───────────────────────────────────────────────────────
	ErrDuplicateSubmission ErrCode = "DUPLICATE_SUBMISSION"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	case ErrInvalidCredentials:
		return "Invalid password."
	case ErrUnauthenticated:
		return "No valid session for this event."
	case ErrAdminAuthRequired:
		return "Admin authentication required."
	case ErrLoginLocked:
		return "Too many failed login attempts. Try again later."
	case ErrInvalidJoinCode:
		return "The join code is not valid for this event."
	case ErrNotRegistered:
		return "Register a display name before answering."
	case ErrEventFinished:
		return "This quiz has already finished."
	case ErrInvalidState:
		return "The event is not in a valid state for this operation."
	case ErrQuestionNotActive:
		return "The referenced question is not currently active."
	case ErrEventStarted:
		return "The question sequence cannot change after the event has started."
	case ErrDuplicateSubmission:
		return "An answer for this question was already submitted."
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidPayload:
		return "The request payload is not valid."
	case ErrNotFound:
		return "Resource not found."
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
