package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel markers for classifying pipeline failures. Contact-level failures
// are recorded in the run ledger and never abort the run; run-level failures
// carry one of these markers so callers can distinguish operator mistakes
// from transient conditions.
var (
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrTransient     = errors.New("transient failure")
)

// Wrap tags an error with a classification marker and contact/operation
// context. The marker should be one of the exported sentinel errors above.
func Wrap(marker error, contact, operation string, err error) error {
	detail := buildDetail(contact, operation)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(contact, operation string) string {
	parts := make([]string, 0, 2)
	if contact = strings.TrimSpace(contact); contact != "" {
		parts = append(parts, contact)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if len(parts) == 0 {
		return "pipeline failure"
	}
	return strings.Join(parts, ": ")
}
