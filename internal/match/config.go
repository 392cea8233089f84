package match

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/talentflow/dedupe/internal/similarity"
)

// PhoneticOverride is the name tie-break: when two names share a Soundex code
// but their string similarity is below MaxSimilarity, the similarity is raised
// to at least Floor and the reason is labelled phonetic.
type PhoneticOverride struct {
	Enabled       bool `yaml:"enabled" json:"enabled"`
	MaxSimilarity int  `yaml:"max_similarity" json:"max_similarity"`
	Floor         int  `yaml:"floor" json:"floor"`
}

// Config holds the thresholds and field selection for duplicate detection.
// Treat it as a value: Detector never mutates the Config it was given.
type Config struct {
	// Per-field similarity (0-100) a field must reach to count as a reason
	EmailThreshold    int `yaml:"email_threshold" json:"email_threshold"`
	PhoneThreshold    int `yaml:"phone_threshold" json:"phone_threshold"`
	NameThreshold     int `yaml:"name_threshold" json:"name_threshold"`
	LinkedInThreshold int `yaml:"linkedin_threshold" json:"linkedin_threshold"`

	// OverallThreshold gates inclusion of a pair in the results
	OverallThreshold int `yaml:"overall_threshold" json:"overall_threshold"`

	// AutoMergeThreshold is advisory; callers decide what to do with it
	AutoMergeThreshold int `yaml:"auto_merge_threshold" json:"auto_merge_threshold"`

	EnabledFields []Field `yaml:"enabled_fields" json:"enabled_fields"`

	// Algorithms selects the fuzzy metric used per field when values are not
	// exactly equal: AlgorithmFuzzy (Levenshtein) or AlgorithmJaroWinkler
	Algorithms map[Field]Algorithm `yaml:"algorithms" json:"algorithms"`

	Phonetic PhoneticOverride `yaml:"phonetic" json:"phonetic"`

	PhoneLocale similarity.PhoneLocale `yaml:"phone_locale" json:"phone_locale"`
}

// DefaultConfig returns the default detection configuration
func DefaultConfig() Config {
	return Config{
		EmailThreshold:     85,
		PhoneThreshold:     90,
		NameThreshold:      75,
		LinkedInThreshold:  90,
		OverallThreshold:   75,
		AutoMergeThreshold: 95,
		EnabledFields:      []Field{FieldEmail, FieldPhone, FieldName},
		Algorithms: map[Field]Algorithm{
			FieldEmail:    AlgorithmFuzzy,
			FieldPhone:    AlgorithmFuzzy,
			FieldName:     AlgorithmJaroWinkler,
			FieldLinkedIn: AlgorithmFuzzy,
		},
		Phonetic: PhoneticOverride{
			Enabled:       true,
			MaxSimilarity: 80,
			Floor:         75,
		},
		PhoneLocale: similarity.IndiaLocale,
	}
}

// Clone returns a copy that shares no slices or maps with c
func (c Config) Clone() Config {
	out := c
	out.EnabledFields = append([]Field(nil), c.EnabledFields...)
	out.Algorithms = make(map[Field]Algorithm, len(c.Algorithms))
	for f, a := range c.Algorithms {
		out.Algorithms[f] = a
	}
	out.PhoneLocale.Prefixes = append([]string(nil), c.PhoneLocale.Prefixes...)
	return out
}

// WithOverrides returns a copy of c with each override applied in order
func (c Config) WithOverrides(overrides ...func(*Config)) Config {
	out := c.Clone()
	for _, o := range overrides {
		o(&out)
	}
	return out
}

// FieldEnabled reports whether f takes part in comparisons
func (c Config) FieldEnabled(f Field) bool {
	for _, e := range c.EnabledFields {
		if e == f {
			return true
		}
	}
	return false
}

// Threshold returns the per-field threshold for f
func (c Config) Threshold(f Field) int {
	switch f {
	case FieldEmail:
		return c.EmailThreshold
	case FieldPhone:
		return c.PhoneThreshold
	case FieldName:
		return c.NameThreshold
	case FieldLinkedIn:
		return c.LinkedInThreshold
	}
	return 101
}

// AlgorithmFor returns the fuzzy metric configured for f
func (c Config) AlgorithmFor(f Field) Algorithm {
	if a, ok := c.Algorithms[f]; ok {
		return a
	}
	if f == FieldName {
		return AlgorithmJaroWinkler
	}
	return AlgorithmFuzzy
}

// Validate checks if the configuration has valid values. 0 and 100 are legal
// thresholds (accept everything / exact only).
func (c Config) Validate() error {
	thresholds := []struct {
		name  string
		value int
	}{
		{"email_threshold", c.EmailThreshold},
		{"phone_threshold", c.PhoneThreshold},
		{"name_threshold", c.NameThreshold},
		{"linkedin_threshold", c.LinkedInThreshold},
		{"overall_threshold", c.OverallThreshold},
		{"auto_merge_threshold", c.AutoMergeThreshold},
		{"phonetic.max_similarity", c.Phonetic.MaxSimilarity},
		{"phonetic.floor", c.Phonetic.Floor},
	}
	for _, th := range thresholds {
		if th.value < 0 || th.value > 100 {
			return fmt.Errorf("%s must be between 0 and 100 (got %d)", th.name, th.value)
		}
	}

	if len(c.EnabledFields) == 0 {
		return fmt.Errorf("enabled_fields must name at least one field")
	}
	seen := make(map[Field]bool, len(c.EnabledFields))
	for _, f := range c.EnabledFields {
		if _, ok := fieldWeights[f]; !ok {
			return fmt.Errorf("enabled_fields: %q has no comparator", f)
		}
		if seen[f] {
			return fmt.Errorf("enabled_fields: %q listed twice", f)
		}
		seen[f] = true
	}

	for f, a := range c.Algorithms {
		if _, ok := fieldWeights[f]; !ok {
			return fmt.Errorf("algorithms: unknown field %q", f)
		}
		if a != AlgorithmFuzzy && a != AlgorithmJaroWinkler {
			return fmt.Errorf("algorithms: %s must be %q or %q (got %q)", f, AlgorithmFuzzy, AlgorithmJaroWinkler, a)
		}
	}

	if c.PhoneLocale.NationalDigits < 0 {
		return fmt.Errorf("phone_locale.national_digits cannot be negative (got %d)", c.PhoneLocale.NationalDigits)
	}
	return nil
}

// String returns a human-readable representation of the config
func (c Config) String() string {
	fields := make([]string, len(c.EnabledFields))
	for i, f := range c.EnabledFields {
		fields[i] = string(f)
	}
	return fmt.Sprintf(
		"Config{Email: %d, Phone: %d, Name: %d, LinkedIn: %d, Overall: %d, AutoMerge: %d, "+
			"Fields: [%s], Phonetic: %t(<%d->%d), Locale: %s}",
		c.EmailThreshold, c.PhoneThreshold, c.NameThreshold, c.LinkedInThreshold,
		c.OverallThreshold, c.AutoMergeThreshold, strings.Join(fields, ","),
		c.Phonetic.Enabled, c.Phonetic.MaxSimilarity, c.Phonetic.Floor, c.PhoneLocale.Name,
	)
}

// ApplyEnv overrides c from environment variables:
//   - DEDUPE_EMAIL_THRESHOLD, DEDUPE_PHONE_THRESHOLD, DEDUPE_NAME_THRESHOLD,
//     DEDUPE_LINKEDIN_THRESHOLD, DEDUPE_OVERALL_THRESHOLD,
//     DEDUPE_AUTO_MERGE_THRESHOLD: integers 0-100
//   - DEDUPE_ENABLED_FIELDS: comma separated, e.g. "email,phone,name"
//   - DEDUPE_PHONETIC: enable the Soundex tie-break (bool)
//
// Returns an error if any variable has an invalid value or the result does
// not validate.
func (c Config) ApplyEnv() (Config, error) {
	cfg := c.Clone()

	ints := []struct {
		key  string
		dest *int
	}{
		{"DEDUPE_EMAIL_THRESHOLD", &cfg.EmailThreshold},
		{"DEDUPE_PHONE_THRESHOLD", &cfg.PhoneThreshold},
		{"DEDUPE_NAME_THRESHOLD", &cfg.NameThreshold},
		{"DEDUPE_LINKEDIN_THRESHOLD", &cfg.LinkedInThreshold},
		{"DEDUPE_OVERALL_THRESHOLD", &cfg.OverallThreshold},
		{"DEDUPE_AUTO_MERGE_THRESHOLD", &cfg.AutoMergeThreshold},
	}
	for _, v := range ints {
		if err := parseEnvInt(v.key, v.dest); err != nil {
			return c, err
		}
	}

	if value := os.Getenv("DEDUPE_ENABLED_FIELDS"); value != "" {
		cfg.EnabledFields = cfg.EnabledFields[:0]
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				cfg.EnabledFields = append(cfg.EnabledFields, Field(strings.ToLower(part)))
			}
		}
	}

	if value := os.Getenv("DEDUPE_PHONETIC"); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return c, fmt.Errorf("invalid value for DEDUPE_PHONETIC: %w", err)
		}
		cfg.Phonetic.Enabled = parsed
	}

	if err := cfg.Validate(); err != nil {
		return c, fmt.Errorf("invalid configuration from environment: %w", err)
	}
	return cfg, nil
}

func parseEnvInt(key string, dest *int) error {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*dest = parsed
	return nil
}
