package candidate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSetComparableFields(t *testing.T) {
	var c Candidate
	for _, field := range ComparableFields {
		require.True(t, c.Set(field, "v-"+field), field)
		got, ok := c.Get(field)
		require.True(t, ok)
		assert.Equal(t, "v-"+field, got)
	}

	assert.False(t, c.Set("notes", "x"))
	_, ok := c.Get("linkedin")
	assert.False(t, ok)
}

func TestCloneDoesNotShareCollections(t *testing.T) {
	orig := Candidate{
		ID:            "c1",
		Notes:         []Note{{ID: "n1", Text: "first"}},
		ChangeHistory: []ChangeEntry{{ID: "h1", Action: "created"}},
	}

	clone := orig.Clone()
	clone.Notes[0].Text = "changed"
	clone.Notes = append(clone.Notes, Note{ID: "n2"})
	clone.ChangeHistory[0].Action = "updated"

	assert.Equal(t, "first", orig.Notes[0].Text)
	assert.Len(t, orig.Notes, 1)
	assert.Equal(t, "created", orig.ChangeHistory[0].Action)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Current Company", DisplayName(FieldCurrentCompany))
	assert.Equal(t, "unknown", DisplayName("unknown"))
	assert.True(t, IsComparable(FieldQualification))
	assert.False(t, IsComparable("linkedin"))
}

func TestInputOf(t *testing.T) {
	c := Candidate{ID: "x", Name: "A", Email: "a@b.c", Phone: "1", LinkedIn: "l", Location: "Pune"}
	assert.Equal(t, Input{ID: "x", Name: "A", Email: "a@b.c", Phone: "1", LinkedIn: "l"}, InputOf(c))
}
