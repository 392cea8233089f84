package merge

import (
	"github.com/talentflow/dedupe/internal/candidate"
)

// ConflictType classifies a field-level disagreement between two records
type ConflictType string

const (
	ConflictDifferentValues ConflictType = "different-values"
	ConflictMissingData     ConflictType = "missing-data"
	ConflictFormatMismatch  ConflictType = "format-mismatch"
)

// PreservedKind names an auxiliary collection carried over from the duplicate
type PreservedKind string

const (
	PreservedNotes   PreservedKind = "note"
	PreservedHistory PreservedKind = "change-history"
)

// Source records where a decided value came from
type Source string

const (
	SourcePrimary   Source = "primary"
	SourceDuplicate Source = "duplicate"
	SourceCustom    Source = "custom"
)

// Conflict is one comparable field where the primary and duplicate disagree,
// or where the primary is empty and the duplicate is not.
type Conflict struct {
	Field            string       `json:"field"`
	DisplayName      string       `json:"display_name"`
	PrimaryValue     string       `json:"primary_value"`
	DuplicateValue   string       `json:"duplicate_value"`
	SuggestedValue   string       `json:"suggested_value"`
	RequiresDecision bool         `json:"requires_decision"`
	Type             ConflictType `json:"conflict_type"`
}

// PreservedData is auxiliary content from the duplicate that the merge
// carries into the merged record unless PreserveInMerged is cleared.
type PreservedData struct {
	Kind             PreservedKind           `json:"type"`
	Notes            []candidate.Note        `json:"notes,omitempty"`
	History          []candidate.ChangeEntry `json:"history,omitempty"`
	PreserveInMerged bool                    `json:"preserve_in_merged"`
}

// Count returns the number of entries carried by p
func (p PreservedData) Count() int {
	if p.Kind == PreservedNotes {
		return len(p.Notes)
	}
	return len(p.History)
}

// Preview is the result of comparing two records before a merge. Merged is
// the primary with missing fields already filled from the duplicate.
type Preview struct {
	Primary   candidate.Candidate `json:"primary"`
	Duplicate candidate.Candidate `json:"duplicate"`
	Merged    candidate.Candidate `json:"merged_candidate"`
	Conflicts []Conflict          `json:"conflicts"`
	Preserved []PreservedData     `json:"preserved_data"`
}

// PendingDecisions returns the conflicts a caller still has to resolve
func (p Preview) PendingDecisions() []Conflict {
	var out []Conflict
	for _, c := range p.Conflicts {
		if c.RequiresDecision {
			out = append(out, c)
		}
	}
	return out
}

// Conflict returns the conflict recorded for field, if any
func (p Preview) Conflict(field string) (Conflict, bool) {
	for _, c := range p.Conflicts {
		if c.Field == field {
			return c, true
		}
	}
	return Conflict{}, false
}

// Decision is a caller's resolution for one field
type Decision struct {
	Field         string `json:"field"`
	SelectedValue string `json:"selected_value"`
	Source        Source `json:"source"`
}
