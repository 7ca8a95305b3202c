package common

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNoItems      = errors.New("no items extracted")
	ErrUnsupported  = errors.New("unsupported input")
	ErrExternal     = errors.New("external service error")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// NoSuitableParserError is returned when no registered detector clears the
// confidence threshold. Scores carries every detector's self-assessment so the
// caller can decide whether to force one.
type NoSuitableParserError struct {
	Threshold float64
	Scores    map[string]float64
}

func (e *NoSuitableParserError) Error() string {
	ids := make([]string, 0, len(e.Scores))
	for id := range e.Scores {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprintf("%s=%.2f", id, e.Scores[id]))
	}
	return fmt.Sprintf("no suitable parser: threshold %.2f, scores: %s",
		e.Threshold, strings.Join(parts, ", "))
}

// BatchError aggregates per-detector failures from the fallback path.
type BatchError struct {
	Failures map[string]string
}

func (e *BatchError) Error() string {
	ids := make([]string, 0, len(e.Failures))
	for id := range e.Failures {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprintf("%s: %s", id, e.Failures[id]))
	}
	return "all parsers failed: " + strings.Join(parts, "; ")
}
