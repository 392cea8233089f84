package match

import (
	"log/slog"
	"sort"
	"sync/atomic"
	"time"

	"github.com/talentflow/dedupe/internal/candidate"
	"github.com/talentflow/dedupe/internal/debug"
)

// Detector finds existing candidates that duplicate a candidate-in-progress.
//
// The configuration is held behind an atomic pointer and replaced wholesale
// by UpdateConfig, so a Detector may be shared between goroutines. Every
// detection call works on the snapshot it loaded when it started.
type Detector struct {
	config atomic.Pointer[Config]
	logger *slog.Logger
	debug  bool
}

// Option configures a Detector
type Option func(*Detector)

// WithLogger sets the logger used for detection summaries
func WithLogger(l *slog.Logger) Option {
	return func(d *Detector) {
		d.logger = l
	}
}

// WithDebug enables per-comparison trace output
func WithDebug(enabled bool) Option {
	return func(d *Detector) {
		d.debug = enabled
	}
}

// NewDetector creates a detector with DefaultConfig
func NewDetector(opts ...Option) *Detector {
	d, _ := NewDetectorWithConfig(DefaultConfig(), opts...)
	return d
}

// NewDetectorWithConfig creates a detector with a custom configuration
func NewDetectorWithConfig(cfg Config, opts ...Option) (*Detector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	d := &Detector{logger: slog.Default()}
	for _, opt := range opts {
		opt(d)
	}
	cfg = cfg.Clone()
	d.config.Store(&cfg)
	return d, nil
}

// Config returns a copy of the current configuration
func (d *Detector) Config() Config {
	return d.config.Load().Clone()
}

// UpdateConfig validates cfg and replaces the current configuration with it
func (d *Detector) UpdateConfig(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	cfg = cfg.Clone()
	d.config.Store(&cfg)
	d.logger.Info("duplicate detection config updated", "config", cfg.String())
	return nil
}

// CompareCandidate scores one existing candidate against the candidate being
// checked. It returns nil when no enabled field reaches its threshold or the
// weighted score falls below the overall threshold.
func (d *Detector) CompareCandidate(in candidate.Input, existing candidate.Candidate) *DuplicateMatch {
	return compare(d.config.Load(), d.debug, in, existing)
}

func compare(cfg *Config, localDebug bool, in candidate.Input, existing candidate.Candidate) *DuplicateMatch {
	var reasons []MatchReason

	for _, field := range cfg.EnabledFields {
		var a, b string
		var cmp func(*Config, string, string) MatchReason
		switch field {
		case FieldEmail:
			a, b, cmp = in.Email, existing.Email, compareEmail
		case FieldPhone:
			a, b, cmp = in.Phone, existing.Phone, comparePhone
		case FieldName:
			a, b, cmp = in.Name, existing.Name, compareName
		case FieldLinkedIn:
			a, b, cmp = in.LinkedIn, existing.LinkedIn, compareLinkedIn
		default:
			continue
		}
		if candidate.IsBlank(a) || candidate.IsBlank(b) {
			continue
		}

		reason := cmp(cfg, a, b)
		if reason.Similarity < cfg.Threshold(field) {
			debug.DebugOutput(localDebug, "%s: %s %d%% below threshold %d",
				existing.ID, field, reason.Similarity, cfg.Threshold(field))
			continue
		}
		reasons = append(reasons, reason)
	}

	if len(reasons) == 0 {
		return nil
	}

	score := OverallScore(reasons)
	if score < cfg.OverallThreshold {
		debug.DebugOutput(localDebug, "%s: score %d below overall threshold %d",
			existing.ID, score, cfg.OverallThreshold)
		return nil
	}

	debug.DebugOutput(localDebug, "%s: score %d from %d reasons", existing.ID, score, len(reasons))
	return &DuplicateMatch{
		Candidate:    existing,
		MatchScore:   score,
		MatchReasons: reasons,
		Confidence:   ConfidenceFor(score),
	}
}

// DetectDuplicates compares in against every existing candidate and returns
// the matches ranked by score. Equal scores are ordered by candidate ID.
// When in.ID is set, the existing record with that ID is skipped.
func (d *Detector) DetectDuplicates(in candidate.Input, existing []candidate.Candidate) DetectionResult {
	debug.DebugHeader(d.debug)
	defer debug.DebugFooter(d.debug)
	defer debug.DebugTiming(d.debug, "duplicate detection")()

	start := time.Now()
	cfg := d.config.Load()

	result := DetectionResult{Matches: []DuplicateMatch{}}
	for i := range existing {
		if in.ID != "" && existing[i].ID == in.ID {
			continue
		}
		result.ComparedCount++
		if m := compare(cfg, d.debug, in, existing[i]); m != nil {
			result.Matches = append(result.Matches, *m)
		}
	}

	sortMatches(result.Matches)

	for _, m := range result.Matches {
		switch m.Confidence {
		case ConfidenceHigh:
			result.HighConfidenceCount++
		case ConfidenceMedium:
			result.MediumConfidenceCount++
		default:
			result.LowConfidenceCount++
		}
	}
	result.HasMatches = len(result.Matches) > 0
	result.ProcessingTime = time.Since(start)

	d.logger.Debug("duplicate detection complete",
		"compared", result.ComparedCount,
		"matches", len(result.Matches),
		"high", result.HighConfidenceCount,
		"duration_ms", result.ProcessingTime.Milliseconds())

	return result
}

func sortMatches(matches []DuplicateMatch) {
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].MatchScore != matches[j].MatchScore {
			return matches[i].MatchScore > matches[j].MatchScore
		}
		return matches[i].Candidate.ID < matches[j].Candidate.ID
	})
}
