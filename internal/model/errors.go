package model

import (
	"errors"
	"fmt"
)

// Build-time errors. The graph is never handed to the executor when one of
// these occurs.

// DuplicateNameError reports two config entries of the same kind sharing a
// name.
type DuplicateNameError struct {
	Kind string // "resource" or "summary"
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("duplicate %s config name %q", e.Kind, e.Name)
}

// UnknownDependencyError reports a summary dependency that does not resolve
// to any resource.
type UnknownDependencyError struct {
	Summary string
	Dep     string
}

func (e *UnknownDependencyError) Error() string {
	if e.Dep == "" {
		return fmt.Sprintf("summary %q declares no dependencies", e.Summary)
	}
	return fmt.Sprintf("summary %q depends on unknown resource %q", e.Summary, e.Dep)
}

// Stage-time errors. These surface to the executor, which decides retry vs.
// abort; only the affected chain (and summaries depending on it) stops.

// FetchError reports a transport or decode failure while fetching a resource.
type FetchError struct {
	Resource string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Resource, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// IOError reports an unreadable intermediate handle. Bad records are never an
// IOError; they are dropped by validation.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// TransformError reports a SQL transformation failure, including a
// transformation that projects no columns.
type TransformError struct {
	Resource string
	Err      error
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("transform %s: %v", e.Resource, e.Err)
}

func (e *TransformError) Unwrap() error { return e.Err }

// PublishError reports a failed upload to object storage. Publishing is
// retryable.
type PublishError struct {
	Resource string
	Err      error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publish %s: %v", e.Resource, e.Err)
}

func (e *PublishError) Unwrap() error { return e.Err }

func (e *PublishError) Retryable() bool { return true }

// LoadError reports a warehouse load failure.
type LoadError struct {
	Resource string
	Table    string
	Err      error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s into %s: %v", e.Resource, e.Table, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// SummaryError reports a failed summary computation.
type SummaryError struct {
	Summary string
	Err     error
}

func (e *SummaryError) Error() string {
	return fmt.Sprintf("summary %s: %v", e.Summary, e.Err)
}

func (e *SummaryError) Unwrap() error { return e.Err }

// Retryable reports whether an error advertises itself as worth retrying.
func Retryable(err error) bool {
	var r interface{ Retryable() bool }
	if errors.As(err, &r) {
		return r.Retryable()
	}
	return false
}
