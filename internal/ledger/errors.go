package ledger

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies ledger errors so callers can branch on error class
// instead of matching message substrings.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindAlreadyInTrial
	KindAlreadyFinalized
	KindNotAuthorized
	KindInvalidState
	KindUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindAlreadyInTrial:
		return "already_in_trial"
	case KindAlreadyFinalized:
		return "already_finalized"
	case KindNotAuthorized:
		return "not_authorized"
	case KindInvalidState:
		return "invalid_state"
	case KindUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// ParseKind maps a wire kind name back to a Kind.
func ParseKind(s string) Kind {
	switch s {
	case "not_found":
		return KindNotFound
	case "already_in_trial":
		return KindAlreadyInTrial
	case "already_finalized":
		return KindAlreadyFinalized
	case "not_authorized":
		return KindNotAuthorized
	case "invalid_state":
		return KindInvalidState
	case "unavailable":
		return KindUnavailable
	default:
		return KindUnknown
	}
}

// Error is a classified ledger error.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("ledger: %s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("ledger: %s: %s", e.Op, e.Msg)
}

// newError builds a classified error.
func newError(kind Kind, op, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// KindOf returns the Kind of a ledger error, or KindUnknown.
func KindOf(err error) Kind {
	var le *Error
	if errors.As(err, &le) {
		return le.Kind
	}
	return KindUnknown
}

// Substrings recognized as duplicate-start / duplicate-finalize failures
// from ledger servers that do not speak the typed kind protocol. The set of
// benign conditions is exactly {duplicate start, duplicate finalize}.
var benignSubstrings = []string{
	"already in trial",
	"already started",
	"trial already",
	"already finalized",
	"already recorded",
	"already completed",
}

// IsBenignDuplicate reports whether an error is a duplicate-start or
// duplicate-finalize race that callers should treat as success-equivalent.
// Typed kinds are preferred; the substring fallback covers foreign servers.
func IsBenignDuplicate(err error) bool {
	if err == nil {
		return false
	}
	switch KindOf(err) {
	case KindAlreadyInTrial, KindAlreadyFinalized:
		return true
	case KindUnknown:
		msg := strings.ToLower(err.Error())
		for _, s := range benignSubstrings {
			if strings.Contains(msg, s) {
				return true
			}
		}
	}
	return false
}

// IsNotFound reports whether an error is a missing-case failure.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}
