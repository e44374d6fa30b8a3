package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidInput marks bad caller data. Fails fast, never retried.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound marks a definitive no-match answer from the metadata
	// provider. An expected outcome, never retried.
	ErrNotFound = errors.New("not found")
	// ErrTransient marks provider or network instability. Retryable.
	ErrTransient = errors.New("transient failure")
	// ErrStorage marks a persistence failure.
	ErrStorage = errors.New("storage failure")
	// ErrInvalidQuery marks an unsupported listing filter combination.
	ErrInvalidQuery = errors.New("invalid query")
)

// Reason is the terminal failure classification recorded for a batch item.
type Reason string

const (
	ReasonInvalidInput Reason = "invalid_input"
	ReasonNotFound     Reason = "not_found"
	ReasonTransient    Reason = "transient"
	ReasonStorage      Reason = "storage"
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// FailureReason maps an error chain to the failure reason the batch pipeline
// should record. Unclassified errors are treated as transient.
func FailureReason(err error) Reason {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return ReasonInvalidInput
	case errors.Is(err, ErrNotFound):
		return ReasonNotFound
	case errors.Is(err, ErrStorage):
		return ReasonStorage
	default:
		return ReasonTransient
	}
}

// IsRetryable reports whether the pipeline may retry the failed operation.
// Errors carrying none of the sentinels count as transient, matching
// FailureReason.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrStorage) || errors.Is(err, ErrInvalidQuery) {
		return false
	}
	return true
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
