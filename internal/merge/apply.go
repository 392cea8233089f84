package merge

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/talentflow/dedupe/internal/candidate"
)

// ActionMerged is the change-history action recorded on the merged record
const ActionMerged = "merged"

type applyConfig struct {
	now      func() time.Time
	skip     map[PreservedKind]bool
	mergedBy string
}

// ApplyOption customises ApplyDecisions
type ApplyOption func(*applyConfig)

// WithClock sets the time source used for UpdatedAt and the merge entry
func WithClock(now func() time.Time) ApplyOption {
	return func(c *applyConfig) {
		c.now = now
	}
}

// WithoutPreserved drops a preserved collection from the merged record
func WithoutPreserved(kind PreservedKind) ApplyOption {
	return func(c *applyConfig) {
		c.skip[kind] = true
	}
}

// WithMergedBy records who performed the merge in the change history
func WithMergedBy(user string) ApplyOption {
	return func(c *applyConfig) {
		c.mergedBy = user
	}
}

// ApplyDecisions produces the final merged record from a preview. Each
// decision overwrites its field on the draft; decisions for unknown fields
// are ignored (use ValidateDecisions first). Preserved collections are
// appended to the primary's own entries, never substituted for them.
//
// The preview is not modified. The returned record shares no slices with it.
func ApplyDecisions(preview Preview, decisions []Decision, opts ...ApplyOption) candidate.Candidate {
	cfg := applyConfig{now: time.Now, skip: map[PreservedKind]bool{}}
	for _, opt := range opts {
		opt(&cfg)
	}
	now := cfg.now()

	merged := preview.Merged.Clone()
	for _, d := range decisions {
		merged.Set(d.Field, d.SelectedValue)
	}

	for _, pd := range preview.Preserved {
		if !pd.PreserveInMerged || cfg.skip[pd.Kind] {
			continue
		}
		switch pd.Kind {
		case PreservedNotes:
			merged.Notes = append(merged.Notes, pd.Notes...)
		case PreservedHistory:
			merged.ChangeHistory = append(merged.ChangeHistory, pd.History...)
		}
	}

	merged.ChangeHistory = append(merged.ChangeHistory, candidate.ChangeEntry{
		ID:        uuid.NewString(),
		Action:    ActionMerged,
		OldValue:  preview.Duplicate.ID,
		NewValue:  preview.Primary.ID,
		ChangedBy: cfg.mergedBy,
		ChangedAt: now,
	})
	merged.UpdatedAt = now
	return merged
}

// SuggestedDecisions accepts the suggested value of every conflict that
// requires a decision
func SuggestedDecisions(preview Preview) []Decision {
	pending := preview.PendingDecisions()
	out := make([]Decision, 0, len(pending))
	for _, c := range pending {
		out = append(out, Decision{Field: c.Field, SelectedValue: c.SuggestedValue, Source: SourcePrimary})
	}
	return out
}

// ValidateDecisions checks that every decision names a comparable field once,
// carries a known source, and that a primary or duplicate source matches the
// value actually held by that record.
func ValidateDecisions(preview Preview, decisions []Decision) error {
	seen := make(map[string]bool, len(decisions))
	for _, d := range decisions {
		if !candidate.IsComparable(d.Field) {
			return fmt.Errorf("decision for unknown field %q", d.Field)
		}
		if seen[d.Field] {
			return fmt.Errorf("more than one decision for field %q", d.Field)
		}
		seen[d.Field] = true

		switch d.Source {
		case SourcePrimary:
			if v, _ := preview.Primary.Get(d.Field); v != d.SelectedValue {
				return fmt.Errorf("%s: selected value does not match primary", d.Field)
			}
		case SourceDuplicate:
			if v, _ := preview.Duplicate.Get(d.Field); v != d.SelectedValue {
				return fmt.Errorf("%s: selected value does not match duplicate", d.Field)
			}
		case SourceCustom:
		default:
			return fmt.Errorf("%s: unknown decision source %q", d.Field, d.Source)
		}
	}
	return nil
}
