package jecna

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthentication is returned by Login when the portal rejects the
	// credentials or cannot be reached.
	ErrAuthentication = errors.New("jecna: authentication failed")
	// ErrNotAuthenticated is returned by queries made without a session.
	ErrNotAuthenticated = errors.New("jecna: not authenticated")
	// ErrRemoteFetch wraps network failures and pages that could not be parsed.
	ErrRemoteFetch = errors.New("jecna: remote fetch failed")
	// ErrSubjectNotFound is matched by every *SubjectNotFoundError.
	ErrSubjectNotFound = errors.New("jecna: subject not found")
	// ErrNoGrades is returned when averaging a collection without numeric grades.
	ErrNoGrades = errors.New("jecna: no grades to average")
)

// ParseError is returned when a page does not have the expected structure.
type ParseError struct {
	Page   string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse %s: %s: %s", e.Page, e.Reason, e.Err.Error())
	}
	return fmt.Sprintf("parse %s: %s", e.Page, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// SubjectNotFoundError carries the closest subject name on the page, if any.
type SubjectNotFoundError struct {
	Name    string
	Closest string
}

func (e *SubjectNotFoundError) Error() string {
	if e.Closest == "" {
		return fmt.Sprintf("jecna: subject %q not found", e.Name)
	}
	return fmt.Sprintf("jecna: subject %q not found, did you mean %q?", e.Name, e.Closest)
}

func (e *SubjectNotFoundError) Is(target error) bool {
	return target == ErrSubjectNotFound
}
