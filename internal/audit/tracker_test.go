package audit

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentflow/dedupe/internal/candidate"
	"github.com/talentflow/dedupe/internal/db"
	"github.com/talentflow/dedupe/internal/merge"
)

func newTracker(t *testing.T) *Tracker {
	t.Helper()
	conn, err := db.Open(db.DriverSQLite, filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	tr := NewTracker(conn)
	require.NoError(t, tr.Migrate(context.Background()))
	return tr
}

func TestRecordFromPreview(t *testing.T) {
	primary := candidate.Candidate{ID: "p", Name: "A", Location: "Mumbai"}
	dup := candidate.Candidate{
		ID: "d", Name: "A", Location: "Delhi", Designation: "QA",
		Notes:         []candidate.Note{{ID: "1"}, {ID: "2"}},
		ChangeHistory: []candidate.ChangeEntry{{ID: "h"}},
	}
	p := merge.GeneratePreview(primary, dup)
	p.Preserved[1].PreserveInMerged = false

	at := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	rec := RecordFromPreview(p, merge.SuggestedDecisions(p), "ops", at)

	assert.Equal(t, "p", rec.PrimaryID)
	assert.Equal(t, "d", rec.DuplicateID)
	assert.Equal(t, 2, rec.ConflictCount)
	assert.Equal(t, 2, rec.NotesCarried)
	assert.Equal(t, 0, rec.HistoryCarried)
	assert.Len(t, rec.Decisions, 1)
}

func TestRecordMergeAndHistory(t *testing.T) {
	tr := newTracker(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	first, err := tr.RecordMerge(ctx, false, MergeRecord{
		PrimaryID: "p1", DuplicateID: "d1", MatchScore: 97,
		Decisions: []merge.Decision{{Field: "location", SelectedValue: "Mumbai", Source: merge.SourcePrimary}},
		DecidedAt: base,
	})
	require.NoError(t, err)
	require.NotEmpty(t, first)

	_, err = tr.RecordMerge(ctx, false, MergeRecord{PrimaryID: "p2", DuplicateID: "p1", DecidedAt: base.Add(time.Hour)})
	require.NoError(t, err)
	_, err = tr.RecordMerge(ctx, false, MergeRecord{PrimaryID: "x", DuplicateID: "y", DecidedAt: base})
	require.NoError(t, err)

	history, err := tr.History(ctx, false, "p1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "p2", history[0].PrimaryID, "newest first")
	assert.Empty(t, history[0].Decisions)
	assert.Equal(t, first, history[1].ID)
	assert.Equal(t, 97, history[1].MatchScore)
	require.Len(t, history[1].Decisions, 1)
	assert.Equal(t, "Mumbai", history[1].Decisions[0].SelectedValue)

	none, err := tr.History(ctx, false, "nobody")
	require.NoError(t, err)
	assert.Empty(t, none)
}
