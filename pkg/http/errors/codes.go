package errors

// Error codes for standardized error responses
const (
	// Authentication errors
	ErrCodeUnauthorized           = "unauthorized"
	ErrCodeInvalidToken           = "invalid_token"
	ErrCodeTokenExpired           = "token_expired"
	ErrCodeAuthenticationRequired = "authentication_required"

	// Validation errors
	ErrCodeInvalidRequest   = "invalid_request"
	ErrCodeValidationFailed = "validation_failed"
	ErrCodeMissingField     = "missing_field"

	// Resource errors
	ErrCodeNotFound = "not_found"
	ErrCodeConflict = "conflict"

	// Duel errors
	ErrCodeDuelCreationFailed = "duel_creation_failed"
	ErrCodeDuelNotFound       = "duel_not_found"
	ErrCodeInvalidDuelID      = "invalid_duel_id"
	ErrCodeNotAMember         = "not_a_member"
	ErrCodeInvalidRole        = "invalid_role"
	ErrCodeInactiveDuel       = "inactive_duel"
	ErrCodeStaleQuestion      = "stale_question"
	ErrCodeAlreadyAnswered    = "already_answered"
	ErrCodeProtocolViolation  = "protocol_violation"
	ErrCodeEliminationLimit   = "elimination_limit_exceeded"
	ErrCodeSabotageLimit      = "sabotage_limit_exceeded"
	ErrCodeInvalidElimination = "invalid_elimination_target"
	ErrCodeDuelBusy           = "duel_busy"

	// Theme errors
	ErrCodeThemeNotFound = "theme_not_found"
	ErrCodeEmptyTheme    = "empty_theme"

	// WebSocket errors
	ErrCodeInvalidPayload     = "invalid_payload"
	ErrCodeUnknownMessageType = "unknown_message_type"
	ErrCodeConnectionError    = "connection_error"

	// Server errors
	ErrCodeInternalError      = "internal_error"
	ErrCodeServiceUnavailable = "service_unavailable"
)
