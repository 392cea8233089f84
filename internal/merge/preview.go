package merge

import (
	"github.com/talentflow/dedupe/internal/candidate"
	"github.com/talentflow/dedupe/internal/similarity"
)

// PreviewOption configures GeneratePreview
type PreviewOption func(*previewConfig)

type previewConfig struct {
	phoneLocale similarity.PhoneLocale
}

// WithPhoneLocale sets the rules used to tell a reformatted phone number from
// a different one. The default is similarity.IndiaLocale.
func WithPhoneLocale(l similarity.PhoneLocale) PreviewOption {
	return func(c *previewConfig) {
		c.phoneLocale = l
	}
}

// GeneratePreview compares primary and duplicate field by field. The primary
// wins by default; gaps in the primary are filled from the duplicate without
// asking. Values that differ only in formatting are typed format-mismatch but
// still need a decision like any other differing pair. The duplicate's notes
// and change history are always captured for preservation. Neither argument
// is modified.
func GeneratePreview(primary, duplicate candidate.Candidate, opts ...PreviewOption) Preview {
	cfg := previewConfig{phoneLocale: similarity.IndiaLocale}
	for _, opt := range opts {
		opt(&cfg)
	}

	p := Preview{
		Primary:   primary.Clone(),
		Duplicate: duplicate.Clone(),
		Merged:    primary.Clone(),
		Conflicts: []Conflict{},
		Preserved: []PreservedData{},
	}

	for _, field := range candidate.ComparableFields {
		pv, _ := primary.Get(field)
		dv, _ := duplicate.Get(field)

		pBlank, dBlank := candidate.IsBlank(pv), candidate.IsBlank(dv)
		switch {
		case dBlank:
			continue
		case pBlank:
			p.Conflicts = append(p.Conflicts, Conflict{
				Field:          field,
				DisplayName:    candidate.DisplayName(field),
				PrimaryValue:   pv,
				DuplicateValue: dv,
				SuggestedValue: dv,
				Type:           ConflictMissingData,
			})
			p.Merged.Set(field, dv)
		case pv == dv:
			continue
		case cfg.sameAfterNormalization(field, pv, dv):
			p.Conflicts = append(p.Conflicts, Conflict{
				Field:            field,
				DisplayName:      candidate.DisplayName(field),
				PrimaryValue:     pv,
				DuplicateValue:   dv,
				SuggestedValue:   pv,
				RequiresDecision: true,
				Type:             ConflictFormatMismatch,
			})
		default:
			p.Conflicts = append(p.Conflicts, Conflict{
				Field:            field,
				DisplayName:      candidate.DisplayName(field),
				PrimaryValue:     pv,
				DuplicateValue:   dv,
				SuggestedValue:   pv,
				RequiresDecision: true,
				Type:             ConflictDifferentValues,
			})
		}
	}

	if len(duplicate.Notes) > 0 {
		p.Preserved = append(p.Preserved, PreservedData{
			Kind:             PreservedNotes,
			Notes:            append([]candidate.Note(nil), duplicate.Notes...),
			PreserveInMerged: true,
		})
	}
	if len(duplicate.ChangeHistory) > 0 {
		p.Preserved = append(p.Preserved, PreservedData{
			Kind:             PreservedHistory,
			History:          append([]candidate.ChangeEntry(nil), duplicate.ChangeHistory...),
			PreserveInMerged: true,
		})
	}
	return p
}

func (c previewConfig) sameAfterNormalization(field, a, b string) bool {
	switch field {
	case candidate.FieldPhone:
		if c.phoneLocale.SameNumber(a, b) {
			return true
		}
		da, db := similarity.Digits(a), similarity.Digits(b)
		return da != "" && da == db
	case candidate.FieldEmail:
		return similarity.NormalizeEmail(a) == similarity.NormalizeEmail(b)
	default:
		return similarity.NormalizeText(a) == similarity.NormalizeText(b)
	}
}
