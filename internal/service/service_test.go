package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentflow/dedupe/internal/audit"
	"github.com/talentflow/dedupe/internal/candidate"
	"github.com/talentflow/dedupe/internal/db"
	"github.com/talentflow/dedupe/internal/match"
	"github.com/talentflow/dedupe/internal/merge"
	"github.com/talentflow/dedupe/internal/store"
	"github.com/talentflow/dedupe/internal/validation"
)

var fixedNow = time.Date(2024, 7, 1, 8, 0, 0, 0, time.UTC)

func seed() []candidate.Candidate {
	return []candidate.Candidate{
		{
			ID: "p1", Name: "John Smith", Email: "john.smith@email.com", Phone: "+91 9876543210",
			Location: "Mumbai",
			Notes:    []candidate.Note{{ID: "n1", Text: "good fit"}},
		},
		{
			ID: "d1", Name: "John Smith", Email: "john.smith@email.com", Phone: "9876543210",
			Location: "Delhi", Designation: "Engineer",
			Notes:         []candidate.Note{{ID: "n2", Text: "duplicate import"}},
			ChangeHistory: []candidate.ChangeEntry{{ID: "h1", Action: "created"}},
		},
		{ID: "o1", Name: "Priya Sharma", Email: "priya@corp.in", Phone: "9123456780"},
	}
}

func newTestService(t *testing.T) (*Service, *store.MemoryRepository, *audit.Tracker) {
	t.Helper()
	conn, err := db.Open(db.DriverSQLite, filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	tracker := audit.NewTracker(conn)
	require.NoError(t, tracker.Migrate(context.Background()))

	repo := store.NewMemoryRepository(seed()...)
	svc := New(repo, match.NewDetector(), WithAuditor(tracker), WithClock(func() time.Time { return fixedNow }))
	return svc, repo, tracker
}

func TestCheckCandidateFallsBackToRepository(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	result, err := svc.CheckCandidate(ctx, candidate.Input{Name: "John Smith", Email: "john.smith@email.com"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, result.ComparedCount)
	require.Len(t, result.Matches, 2)
	assert.Equal(t, "d1", result.Matches[0].Candidate.ID, "equal scores ordered by id")

	prefetched := []candidate.Candidate{seed()[2]}
	result, err = svc.CheckCandidate(ctx, candidate.Input{Name: "John Smith"}, prefetched)
	require.NoError(t, err)
	assert.Equal(t, 1, result.ComparedCount)
	assert.False(t, result.HasMatches)
}

func TestCheckCandidateRejectsInvalidInput(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.CheckCandidate(context.Background(), candidate.Input{Email: "not-an-email"}, nil)
	assert.ErrorIs(t, err, validation.ErrInvalidCandidate)
}

func TestPreviewMerge(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	p, err := svc.PreviewMerge(ctx, "p1", "d1")
	require.NoError(t, err)
	loc, ok := p.Conflict(candidate.FieldLocation)
	require.True(t, ok)
	assert.True(t, loc.RequiresDecision)
	assert.Equal(t, "Mumbai", loc.SuggestedValue)
	phone, ok := p.Conflict(candidate.FieldPhone)
	require.True(t, ok)
	assert.Equal(t, merge.ConflictFormatMismatch, phone.Type)
	assert.True(t, phone.RequiresDecision)

	_, err = svc.PreviewMerge(ctx, "p1", "p1")
	assert.ErrorIs(t, err, ErrSameCandidate)
	_, err = svc.PreviewMerge(ctx, "p1", "missing")
	assert.ErrorIs(t, err, candidate.ErrNotFound)
}

func TestMergePersistsAndAudits(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	res, err := svc.Merge(ctx, MergeRequest{
		PrimaryID:   "p1",
		DuplicateID: "d1",
		Decisions:   []merge.Decision{{Field: candidate.FieldLocation, SelectedValue: "Delhi", Source: merge.SourceDuplicate}},
		MergedBy:    "recruiter",
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.AuditID)

	stored, err := repo.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Delhi", stored.Location)
	assert.Equal(t, "Engineer", stored.Designation)
	assert.Len(t, stored.Notes, 2)
	assert.Len(t, stored.ChangeHistory, 2)
	assert.True(t, stored.UpdatedAt.Equal(fixedNow))

	_, err = repo.Get(ctx, "d1")
	assert.ErrorIs(t, err, candidate.ErrNotFound)

	history, err := svc.MergeHistory(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "d1", history[0].DuplicateID)
	assert.Equal(t, 1, history[0].NotesCarried)
	assert.Equal(t, 98, history[0].MatchScore)
	assert.Equal(t, "recruiter", history[0].DecidedBy)
}

func TestMergeDropNotes(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Merge(ctx, MergeRequest{PrimaryID: "p1", DuplicateID: "d1", DropNotes: true})
	require.NoError(t, err)

	stored, _ := repo.Get(ctx, "p1")
	assert.Len(t, stored.Notes, 1)
	assert.Equal(t, "Mumbai", stored.Location, "no decision keeps the primary value")

	history, err := svc.MergeHistory(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 0, history[0].NotesCarried)
}

func TestMergeRejectsBadDecisions(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Merge(ctx, MergeRequest{
		PrimaryID:   "p1",
		DuplicateID: "d1",
		Decisions:   []merge.Decision{{Field: "location", SelectedValue: "Pune", Source: merge.SourcePrimary}},
	})
	assert.ErrorIs(t, err, validation.ErrInvalidCandidate)

	_, err = repo.Get(ctx, "d1")
	assert.NoError(t, err, "nothing is deleted when the merge is rejected")
}

type failingAuditor struct{}

func (failingAuditor) RecordMerge(context.Context, bool, audit.MergeRecord) (string, error) {
	return "", errors.New("audit store down")
}

func (failingAuditor) History(context.Context, bool, string) ([]audit.MergeRecord, error) {
	return nil, errors.New("audit store down")
}

func TestMergeSurvivesAuditFailure(t *testing.T) {
	repo := store.NewMemoryRepository(seed()...)
	svc := New(repo, match.NewDetector(), WithAuditor(failingAuditor{}))

	res, err := svc.Merge(context.Background(), MergeRequest{PrimaryID: "p1", DuplicateID: "d1"})
	require.NoError(t, err)
	assert.Empty(t, res.AuditID)
	_, err = repo.Get(context.Background(), "d1")
	assert.ErrorIs(t, err, candidate.ErrNotFound)
}

// plainRepo hides ReplaceMerged and fails every delete
type plainRepo struct {
	candidate.Repository
}

func (plainRepo) Delete(context.Context, string) error {
	return errors.New("delete refused")
}

func TestMergeRestoresPrimaryWhenDeleteFails(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryRepository(seed()...)
	svc := New(plainRepo{mem}, match.NewDetector())

	_, err := svc.Merge(ctx, MergeRequest{PrimaryID: "p1", DuplicateID: "d1"})
	require.ErrorContains(t, err, "delete refused")

	primary, err := mem.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Len(t, primary.Notes, 1)
	assert.Empty(t, primary.ChangeHistory)
	assert.Empty(t, primary.Designation)

	_, err = mem.Get(ctx, "d1")
	assert.NoError(t, err)
}

func TestMergeHistoryWithoutAuditor(t *testing.T) {
	svc := New(store.NewMemoryRepository(), match.NewDetector())
	_, err := svc.MergeHistory(context.Background(), "x")
	assert.ErrorIs(t, err, ErrAuditDisabled)
}

func TestDuplicateGroups(t *testing.T) {
	svc, _, _ := newTestService(t)

	groups, err := svc.DuplicateGroups(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	require.Len(t, groups[0].Members, 2)
	assert.Equal(t, "p1", groups[0].Members[0].ID)
	assert.Equal(t, "d1", groups[0].Members[1].ID)
}
