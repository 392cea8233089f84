package match

// fieldWeights are the relative weights of each field in the overall score,
// in percentage points. Resume has no comparator and therefore no weight.
var fieldWeights = map[Field]int{
	FieldEmail:    40,
	FieldPhone:    30,
	FieldName:     20,
	FieldLinkedIn: 10,
}

// Confidence tier boundaries
const (
	HighConfidenceScore   = 90
	MediumConfidenceScore = 75
	LowConfidenceScore    = 60
)

// Weight returns the scoring weight of f in percentage points
func Weight(f Field) int {
	return fieldWeights[f]
}

// OverallScore is the weighted average of the qualifying reasons only, so a
// pair matching on a single field is scored on that field alone rather than
// diluted by fields that were absent.
func OverallScore(reasons []MatchReason) int {
	var sum, weights int
	for _, r := range reasons {
		w := Weight(r.Field)
		sum += r.Similarity * w
		weights += w
	}
	if weights == 0 {
		return 0
	}
	// integer round half up
	return (2*sum + weights) / (2 * weights)
}

// ConfidenceFor maps an overall score to its tier
func ConfidenceFor(score int) Confidence {
	switch {
	case score >= HighConfidenceScore:
		return ConfidenceHigh
	case score >= MediumConfidenceScore:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}
