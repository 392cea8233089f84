package validation

import (
	"regexp"
	"strings"

	"github.com/talentflow/dedupe/internal/candidate"
	"github.com/talentflow/dedupe/internal/similarity"
)

const (
	minPhoneDigits = 7
	maxPhoneDigits = 15
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateInput checks a candidate-in-progress before duplicate detection.
// At least one of name, email or phone must be present; present values must
// be well formed.
func ValidateInput(in candidate.Input) Result {
	r := Result{Valid: true}

	if candidate.IsBlank(in.Name) && candidate.IsBlank(in.Email) && candidate.IsBlank(in.Phone) {
		r.add("candidate", "at least one of name, email or phone is required")
		return r
	}

	if email := strings.TrimSpace(in.Email); email != "" && !emailPattern.MatchString(email) {
		r.add(candidate.FieldEmail, "%q is not a valid email address", in.Email)
	}

	if !candidate.IsBlank(in.Phone) {
		n := len(similarity.Digits(in.Phone))
		if n < minPhoneDigits || n > maxPhoneDigits {
			r.add(candidate.FieldPhone, "must contain %d-%d digits (got %d)", minPhoneDigits, maxPhoneDigits, n)
		}
	}

	return r
}

// ValidateCandidate checks a stored or merged record. It applies the input
// rules and additionally requires a name.
func ValidateCandidate(c candidate.Candidate) Result {
	r := ValidateInput(candidate.InputOf(c))
	if candidate.IsBlank(c.Name) && r.Valid {
		r.add(candidate.FieldName, "is required")
	}
	return r
}
