package match

import (
	"fmt"

	"github.com/talentflow/dedupe/internal/similarity"
)

// normalizedPhoneScore marks a phone match that only holds after format
// normalization. It stays below 100 so a literal match always ranks higher.
const normalizedPhoneScore = 95

// Comparators are only called when both values are non-empty.

func fuzzyScore(alg Algorithm, a, b string) (int, Algorithm) {
	if alg == AlgorithmJaroWinkler {
		return similarity.JaroWinkler(a, b), AlgorithmJaroWinkler
	}
	return similarity.Levenshtein(a, b), AlgorithmFuzzy
}

func compareEmail(cfg *Config, a, b string) MatchReason {
	r := MatchReason{Field: FieldEmail, Value1: a, Value2: b}
	na, nb := similarity.NormalizeEmail(a), similarity.NormalizeEmail(b)
	if na == nb {
		r.Similarity, r.Algorithm = 100, AlgorithmExact
		r.Details = "Exact email match"
		return r
	}
	r.Similarity, r.Algorithm = fuzzyScore(cfg.AlgorithmFor(FieldEmail), na, nb)
	r.Details = fmt.Sprintf("Similar email addresses (%d%% similar)", r.Similarity)
	return r
}

func comparePhone(cfg *Config, a, b string) MatchReason {
	r := MatchReason{Field: FieldPhone, Value1: a, Value2: b}
	if a == b {
		r.Similarity, r.Algorithm = 100, AlgorithmExact
		r.Details = "Exact phone number match"
		return r
	}

	if cfg.PhoneLocale.SameNumber(a, b) {
		r.Similarity, r.Algorithm = normalizedPhoneScore, AlgorithmNormalized
		r.Details = "Phone numbers match after normalization"
		return r
	}

	na, nb := cfg.PhoneLocale.Normalize(a), cfg.PhoneLocale.Normalize(b)
	r.Similarity, r.Algorithm = fuzzyScore(cfg.AlgorithmFor(FieldPhone), na, nb)
	r.Details = fmt.Sprintf("Similar phone numbers (%d%% similar)", r.Similarity)
	return r
}

func compareName(cfg *Config, a, b string) MatchReason {
	r := MatchReason{Field: FieldName, Value1: a, Value2: b}
	na, nb := similarity.NormalizeText(a), similarity.NormalizeText(b)
	if na == nb {
		r.Similarity, r.Algorithm = 100, AlgorithmExact
		r.Details = "Exact name match"
		return r
	}

	r.Similarity, r.Algorithm = fuzzyScore(cfg.AlgorithmFor(FieldName), na, nb)
	r.Details = fmt.Sprintf("Similar names (%d%% similar)", r.Similarity)

	p := cfg.Phonetic
	if p.Enabled && r.Similarity < p.MaxSimilarity && similarity.SoundexMatch(na, nb) {
		if r.Similarity < p.Floor {
			r.Similarity = p.Floor
		}
		r.Algorithm = AlgorithmPhonetic
		r.Details = fmt.Sprintf("Names sound alike (Soundex %s)", similarity.Soundex(na))
	}
	return r
}

func compareLinkedIn(cfg *Config, a, b string) MatchReason {
	r := MatchReason{Field: FieldLinkedIn, Value1: a, Value2: b}
	na, nb := similarity.NormalizeLinkedIn(a), similarity.NormalizeLinkedIn(b)
	if na == nb && na != "" {
		r.Similarity, r.Algorithm = 100, AlgorithmExact
		r.Details = "Same LinkedIn profile"
		return r
	}
	r.Similarity, r.Algorithm = fuzzyScore(cfg.AlgorithmFor(FieldLinkedIn), na, nb)
	r.Details = fmt.Sprintf("Similar LinkedIn profiles (%d%% similar)", r.Similarity)
	return r
}
