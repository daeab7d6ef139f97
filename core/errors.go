package core

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Error taxonomy. Each failure in the pipeline falls in exactly one of four
// buckets, and recovery policy hangs off the bucket, not the call site:
//
//   ConfigError   - malformed roster input; fatal to the whole run
//   StoreError    - I/O failure or a bad record file; per-record during
//                   enumeration, fatal for a direct read/write
//   ClassifyError - a message that cannot be resolved to an Intent; the
//                   message is skipped (and optionally answered)
//   DispatchError - authorization failure or malformed payload; same
//                   skip-and-explain policy as ClassifyError

type ConfigError struct {
	msg string
}

func NewConfigError(format string, args ...interface{}) error {
	return &ConfigError{msg: fmt.Sprintf(format, args...)}
}

func (e ConfigError) Error() string { return e.msg }

func IsConfigError(err error) bool {
	_, ok := errors.Cause(err).(*ConfigError)
	return ok
}

type StoreError struct {
	Path string
	msg  string
}

func NewStoreError(path, format string, args ...interface{}) error {
	return &StoreError{Path: path, msg: fmt.Sprintf(format, args...)}
}

func (e StoreError) Error() string {
	if e.Path == "" {
		return e.msg
	}
	return e.msg + " (" + e.Path + ")"
}

func IsStoreError(err error) bool {
	_, ok := errors.Cause(err).(*StoreError)
	return ok
}

// ClassifyError carries the equally-good candidates when a free-text target
// matched more than one roster entry; ambiguity is surfaced, never resolved
// by picking one.
type ClassifyError struct {
	Reason     string
	Candidates []string
}

func NewClassifyError(reason string, candidates ...string) error {
	return &ClassifyError{Reason: reason, Candidates: candidates}
}

func (e ClassifyError) Error() string {
	if len(e.Candidates) == 0 {
		return e.Reason
	}
	return e.Reason + ": " + strings.Join(e.Candidates, ", ")
}

func IsClassifyError(err error) bool {
	_, ok := errors.Cause(err).(*ClassifyError)
	return ok
}

type DispatchError struct {
	Reason string
	Person string // offender, when known
}

func NewDispatchError(person, format string, args ...interface{}) error {
	return &DispatchError{Person: person, Reason: fmt.Sprintf(format, args...)}
}

func (e DispatchError) Error() string { return e.Reason }

func IsDispatchError(err error) bool {
	_, ok := errors.Cause(err).(*DispatchError)
	return ok
}
