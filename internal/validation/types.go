package validation

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidCandidate is wrapped by Result.Err when validation fails
var ErrInvalidCandidate = errors.New("invalid candidate")

// Issue is a single problem found on one field
type Issue struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// Result holds the outcome of validating a candidate or candidate input
type Result struct {
	Valid  bool    `json:"valid"`
	Issues []Issue `json:"issues,omitempty"`
}

func (r *Result) add(field, format string, args ...any) {
	r.Valid = false
	r.Issues = append(r.Issues, Issue{Field: field, Reason: fmt.Sprintf(format, args...)})
}

// Err returns nil for a valid result, otherwise an error wrapping
// ErrInvalidCandidate that lists every issue
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	parts := make([]string, len(r.Issues))
	for i, is := range r.Issues {
		parts[i] = is.Field + ": " + is.Reason
	}
	return fmt.Errorf("%w: %s", ErrInvalidCandidate, strings.Join(parts, "; "))
}
