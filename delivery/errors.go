// Package delivery sends formatted items to a notification channel, trying a
// rich (media) representation first and degrading to plain text, with
// bounded retries for transient failures.
package delivery

import (
	"errors"
	"fmt"
)

// ErrorClass partitions channel failures by how the engine must react.
type ErrorClass int

const (
	// ClassTransient covers timeouts, rate limits, and server-side errors;
	// the same request may succeed if retried.
	ClassTransient ErrorClass = iota
	// ClassStructural means the message itself was rejected (length,
	// malformed markup, bad media). Retrying unmodified would fail
	// deterministically; degrade instead.
	ClassStructural
	// ClassPermanent means the destination or credentials are invalid. It
	// will recur for every item, so the whole run must stop.
	ClassPermanent
)

func (c ErrorClass) String() string {
	switch c {
	case ClassTransient:
		return "transient"
	case ClassStructural:
		return "structural"
	case ClassPermanent:
		return "permanent"
	default:
		return "unknown"
	}
}

// ChannelError wraps a channel failure with its classification.
type ChannelError struct {
	Class ErrorClass
	Code  int
	Err   error
}

func (e *ChannelError) Error() string {
	return fmt.Sprintf("channel error (%s, code %d): %v", e.Class, e.Code, e.Err)
}

func (e *ChannelError) Unwrap() error {
	return e.Err
}

// ClassOf extracts the classification from err. Unclassified errors (plain
// network failures and anything unexpected) count as transient: retrying is
// the safe default for an error we cannot prove deterministic.
func ClassOf(err error) ErrorClass {
	var chErr *ChannelError
	if errors.As(err, &chErr) {
		return chErr.Class
	}
	return ClassTransient
}
