package duel

import (
	"errors"
	"fmt"
)

// RejectionKind classifies why a command was refused. Every rejection leaves
// the duel unchanged; callers retry or revert optimistic UI state.
type RejectionKind string

const (
	RejectUnauthorized             RejectionKind = "unauthorized"
	RejectNotAMember               RejectionKind = "not_a_member"
	RejectInvalidRole              RejectionKind = "invalid_role"
	RejectInactiveMatch            RejectionKind = "inactive_match"
	RejectStaleQuestion            RejectionKind = "stale_question"
	RejectAlreadyAnswered          RejectionKind = "already_answered"
	RejectHintProtocolViolation    RejectionKind = "hint_protocol_violation"
	RejectEliminationLimitExceeded RejectionKind = "elimination_limit_exceeded"
	RejectSabotageLimitExceeded    RejectionKind = "sabotage_limit_exceeded"
	RejectInvalidEliminationTarget RejectionKind = "invalid_elimination_target"
)

// Rejection is the typed refusal returned by command handlers.
type Rejection struct {
	Kind   RejectionKind
	Reason string
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("%s: %s", r.Kind, r.Reason)
}

func reject(kind RejectionKind, format string, args ...any) *Rejection {
	return &Rejection{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

// KindOf extracts the rejection kind from an error chain.
func KindOf(err error) (RejectionKind, bool) {
	var r *Rejection
	if errors.As(err, &r) {
		return r.Kind, true
	}
	return "", false
}

// IsKind reports whether err is a rejection of the given kind.
func IsKind(err error, kind RejectionKind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
