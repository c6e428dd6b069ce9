package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a failure seen by the client.
type Kind int

const (
	// KindInvalidInput is a local rejection before any network call.
	KindInvalidInput Kind = iota
	// KindAuthRejected is a 401/403 from the backend.
	KindAuthRejected
	// KindNetworkFailure means the backend could not be reached.
	KindNetworkFailure
	// KindBackendError is any other non-2xx or an undecodable body.
	KindBackendError
	// KindStaleResponse marks a completion whose request was superseded.
	KindStaleResponse
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindAuthRejected:
		return "auth_rejected"
	case KindNetworkFailure:
		return "network_failure"
	case KindBackendError:
		return "backend_error"
	case KindStaleResponse:
		return "stale_response"
	default:
		return "unknown"
	}
}

// Fallback messages shown when the backend gives no detail.
const (
	MsgAuthRejected   = "Your API key was rejected. Please enter a valid key."
	MsgNetworkFailure = "Could not reach the server. Check your connection and try again."
	MsgBackendError   = "The server could not complete the request. Please try again."
	MsgInvalidInput   = "Invalid input."
	MsgMissingKey     = "Please enter an API key."
	MsgUnreadableFile = "Could not read %s. Check the file and try again."
)

// Error is a classified client failure.
type Error struct {
	Kind Kind
	// StatusCode is 0 for failures that never produced a response.
	StatusCode int
	// Detail is the backend's human-readable detail, or the local reason for
	// InvalidInput.
	Detail string
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("api: ")
	b.WriteString(e.Kind.String())
	if e.StatusCode > 0 {
		fmt.Fprintf(&b, " (HTTP %d)", e.StatusCode)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Message returns the single line shown to the user.
func (e *Error) Message() string {
	if e.Detail != "" {
		return e.Detail
	}
	return FallbackMessage(e.Kind)
}

// FallbackMessage returns the generic message for kind.
func FallbackMessage(kind Kind) string {
	switch kind {
	case KindAuthRejected:
		return MsgAuthRejected
	case KindNetworkFailure:
		return MsgNetworkFailure
	case KindInvalidInput:
		return MsgInvalidInput
	default:
		return MsgBackendError
	}
}

// InvalidInput returns a local rejection carrying reason as its message.
func InvalidInput(reason string) *Error {
	return &Error{Kind: KindInvalidInput, Detail: reason}
}

// NetworkFailure wraps a transport error.
func NetworkFailure(err error) *Error {
	return &Error{Kind: KindNetworkFailure, Err: err}
}

// Stale marks a discarded completion. It is logged, never shown.
func Stale(op string) *Error {
	return &Error{Kind: KindStaleResponse, Detail: op}
}

// ClassifyStatus converts a response status into an Error, or nil for 2xx.
func ClassifyStatus(status int, body []byte) *Error {
	if status >= 200 && status < 300 {
		return nil
	}
	e := &Error{StatusCode: status, Detail: parseDetail(body)}
	switch status {
	case 401, 403:
		e.Kind = KindAuthRejected
	default:
		e.Kind = KindBackendError
	}
	return e
}

// KindOf reports the classification of err, if it is an *Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// IsKind reports whether err is classified as kind.
func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// Message returns the user-facing line for any error. Unclassified errors
// get the backend fallback.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Message()
	}
	return MsgBackendError
}

// parseDetail extracts the "detail" field. FastAPI returns either a string
// or a list of validation entries with a "msg" each.
func parseDetail(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var resp ErrorResponse
	if err := json.Unmarshal(body, &resp); err != nil || len(resp.Detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(resp.Detail, &s); err == nil {
		return oneLine(s)
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(resp.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if m := oneLine(it.Msg); m != "" {
				msgs = append(msgs, m)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}

// oneLine collapses all whitespace runs, newlines included, to single spaces.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
