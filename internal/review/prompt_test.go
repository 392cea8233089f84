package review

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentflow/dedupe/internal/candidate"
	"github.com/talentflow/dedupe/internal/match"
	"github.com/talentflow/dedupe/internal/merge"
)

func conflictingPreview() merge.Preview {
	primary := candidate.Candidate{ID: "p", Name: "John Smith", Location: "Mumbai", Designation: "Lead"}
	dup := candidate.Candidate{
		ID: "d", Name: "John Smith", Location: "Delhi", Designation: "Engineer", Qualification: "B.Tech",
		Notes: []candidate.Note{{ID: "n"}},
	}
	return merge.GeneratePreview(primary, dup)
}

func TestResolveConflicts(t *testing.T) {
	// location: duplicate, designation: invalid then custom, notes: drop
	in := strings.NewReader("2\nx\nc\nSenior Engineer\nn\n")
	var out bytes.Buffer

	res, err := NewPrompter(in, &out).ResolveConflicts(conflictingPreview())
	require.NoError(t, err)

	require.Len(t, res.Decisions, 2)
	assert.Equal(t, merge.Decision{Field: "location", SelectedValue: "Delhi", Source: merge.SourceDuplicate}, res.Decisions[0])
	assert.Equal(t, merge.Decision{Field: "designation", SelectedValue: "Senior Engineer", Source: merge.SourceCustom}, res.Decisions[1])
	assert.True(t, res.DropNotes)
	assert.False(t, res.DropHistory)

	assert.Contains(t, out.String(), `Qualification: using "B.Tech" (missing-data)`)
	assert.Contains(t, out.String(), "Invalid choice 'x'")
}

func TestResolveConflictsDefaults(t *testing.T) {
	res, err := NewPrompter(strings.NewReader("\n\n\n"), &bytes.Buffer{}).ResolveConflicts(conflictingPreview())
	require.NoError(t, err)
	require.Len(t, res.Decisions, 2)
	assert.Equal(t, merge.SourcePrimary, res.Decisions[0].Source)
	assert.Equal(t, "Mumbai", res.Decisions[0].SelectedValue)
	assert.False(t, res.DropNotes)
}

func TestResolveConflictsAsksForFormatMismatch(t *testing.T) {
	primary := candidate.Candidate{ID: "p", Name: "John Smith", Email: "john@x.com"}
	dup := candidate.Candidate{ID: "d", Name: "John Smith", Email: "JOHN@x.com"}
	var out bytes.Buffer

	res, err := NewPrompter(strings.NewReader("2\n"), &out).ResolveConflicts(merge.GeneratePreview(primary, dup))
	require.NoError(t, err)
	require.Len(t, res.Decisions, 1)
	assert.Equal(t, "JOHN@x.com", res.Decisions[0].SelectedValue)
	assert.Contains(t, out.String(), "[1/1] Email (format-mismatch)")
}

func TestResolveConflictsQuit(t *testing.T) {
	_, err := NewPrompter(strings.NewReader("q\n"), &bytes.Buffer{}).ResolveConflicts(conflictingPreview())
	assert.ErrorIs(t, err, ErrAborted)

	_, err = NewPrompter(strings.NewReader(""), &bytes.Buffer{}).ResolveConflicts(conflictingPreview())
	assert.ErrorIs(t, err, ErrAborted, "end of input aborts")
}

func TestConfirm(t *testing.T) {
	p := NewPrompter(strings.NewReader("maybe\nyes\n\n"), &bytes.Buffer{})
	ok, err := p.Confirm("Merge?", false)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = p.Confirm("Merge?", false)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestShowMatches(t *testing.T) {
	color.NoColor = true
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader(""), &out)

	p.ShowMatches(match.DetectionResult{ComparedCount: 4})
	assert.Contains(t, out.String(), "No duplicates found (4 candidates compared)")

	out.Reset()
	d := match.NewDetector()
	result := d.DetectDuplicates(candidate.Input{Email: "a@b.co"}, []candidate.Candidate{{ID: "x1", Name: "Ann", Email: "A@b.co"}})
	p.ShowMatches(result)
	assert.Contains(t, out.String(), "[High Confidence 100%] Ann (x1)")
	assert.Contains(t, out.String(), "Exact email match")
}
