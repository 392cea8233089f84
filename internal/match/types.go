package match

import (
	"fmt"
	"time"

	"github.com/talentflow/dedupe/internal/candidate"
)

// Field identifies which candidate attribute a MatchReason is about
type Field string

const (
	FieldEmail    Field = "email"
	FieldPhone    Field = "phone"
	FieldName     Field = "name"
	FieldLinkedIn Field = "linkedin"
	FieldResume   Field = "resume"
)

// Algorithm records how a similarity was obtained
type Algorithm string

const (
	AlgorithmExact       Algorithm = "exact"
	AlgorithmFuzzy       Algorithm = "fuzzy"
	AlgorithmPhonetic    Algorithm = "phonetic"
	AlgorithmNormalized  Algorithm = "normalized"
	AlgorithmJaroWinkler Algorithm = "jaro_winkler"
)

// Confidence is the coarse tier derived from a match score
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// MatchReason is one field-level similarity finding
type MatchReason struct {
	Field      Field     `json:"field"`
	Similarity int       `json:"similarity"`
	Algorithm  Algorithm `json:"algorithm"`
	Details    string    `json:"details"`
	Value1     string    `json:"value1"`
	Value2     string    `json:"value2"`
}

// DuplicateMatch is an existing candidate that looks like the one being checked.
// MatchReasons is never empty.
type DuplicateMatch struct {
	Candidate    candidate.Candidate `json:"candidate"`
	MatchScore   int                 `json:"match_score"`
	MatchReasons []MatchReason       `json:"match_reasons"`
	Confidence   Confidence          `json:"confidence"`
}

// Reason returns the reason for field, if that field qualified
func (m *DuplicateMatch) Reason(field Field) (MatchReason, bool) {
	for _, r := range m.MatchReasons {
		if r.Field == field {
			return r, true
		}
	}
	return MatchReason{}, false
}

// DetectionResult aggregates every match found in one detection run.
// Matches are ordered by MatchScore, highest first.
type DetectionResult struct {
	Matches               []DuplicateMatch `json:"matches"`
	HasMatches            bool             `json:"has_matches"`
	HighConfidenceCount   int              `json:"high_confidence_count"`
	MediumConfidenceCount int              `json:"medium_confidence_count"`
	LowConfidenceCount    int              `json:"low_confidence_count"`
	ComparedCount         int              `json:"compared_count"`
	ProcessingTime        time.Duration    `json:"processing_time"`
}

// Validate checks the invariants of a detection result
func (r *DetectionResult) Validate() error {
	total := r.HighConfidenceCount + r.MediumConfidenceCount + r.LowConfidenceCount
	if total != len(r.Matches) {
		return fmt.Errorf("confidence counts (%d) do not match matches length (%d)", total, len(r.Matches))
	}
	if r.HasMatches != (len(r.Matches) > 0) {
		return fmt.Errorf("has_matches is %t with %d matches", r.HasMatches, len(r.Matches))
	}
	for i := range r.Matches {
		if len(r.Matches[i].MatchReasons) == 0 {
			return fmt.Errorf("match %d (%s) has no match reasons", i, r.Matches[i].Candidate.ID)
		}
		if i > 0 && r.Matches[i-1].MatchScore < r.Matches[i].MatchScore {
			return fmt.Errorf("matches not sorted: index %d score %d < index %d score %d",
				i-1, r.Matches[i-1].MatchScore, i, r.Matches[i].MatchScore)
		}
	}
	return nil
}

// PairMatch is one matched pair inside a DuplicateGroup
type PairMatch struct {
	FirstID    string        `json:"first_id"`
	SecondID   string        `json:"second_id"`
	MatchScore int           `json:"match_score"`
	Confidence Confidence    `json:"confidence"`
	Reasons    []MatchReason `json:"reasons"`
}

// DuplicateGroup is a set of candidates connected by matched pairs
type DuplicateGroup struct {
	Members    []candidate.Candidate `json:"members"`
	Pairs      []PairMatch           `json:"pairs"`
	TopScore   int                   `json:"top_score"`
	Confidence Confidence            `json:"confidence"`
}
