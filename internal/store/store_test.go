package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentflow/dedupe/internal/candidate"
	"github.com/talentflow/dedupe/internal/db"
)

func newSQLiteRepo(t *testing.T) *SQLRepository {
	t.Helper()
	conn, err := db.Open(db.DriverSQLite, filepath.Join(t.TempDir(), "candidates.db"))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	repo := NewSQLRepository(conn, nil)
	require.NoError(t, repo.Migrate(context.Background()))
	require.NoError(t, repo.Migrate(context.Background()), "migrate is idempotent")
	return repo
}

func repositories(t *testing.T) map[string]candidate.Repository {
	return map[string]candidate.Repository{
		"memory": NewMemoryRepository(),
		"sqlite": newSQLiteRepo(t),
	}
}

func TestRepositoryLifecycle(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			created := time.Date(2024, 2, 1, 9, 30, 0, 0, time.UTC)

			c, err := repo.Create(ctx, candidate.Candidate{
				Name:      "John Smith",
				Email:     "john.smith@email.com",
				Phone:     "+91 9876543210",
				Location:  "Mumbai",
				Notes:     []candidate.Note{{ID: "n1", Text: "referred", CreatedAt: created}},
				CreatedAt: created,
			})
			require.NoError(t, err)
			require.NotEmpty(t, c.ID)
			assert.True(t, c.UpdatedAt.Equal(created))

			got, err := repo.Get(ctx, c.ID)
			require.NoError(t, err)
			assert.Equal(t, "John Smith", got.Name)
			assert.Equal(t, "Mumbai", got.Location)
			require.Len(t, got.Notes, 1)
			assert.Equal(t, "referred", got.Notes[0].Text)
			assert.Empty(t, got.ChangeHistory)
			assert.True(t, got.CreatedAt.Equal(created))

			got.Designation = "Engineer"
			got.ChangeHistory = append(got.ChangeHistory, candidate.ChangeEntry{ID: "h1", Action: "merged"})
			got.UpdatedAt = created.Add(time.Hour)
			require.NoError(t, repo.Update(ctx, got))

			again, err := repo.Get(ctx, c.ID)
			require.NoError(t, err)
			assert.Equal(t, "Engineer", again.Designation)
			require.Len(t, again.ChangeHistory, 1)
			assert.True(t, again.UpdatedAt.Equal(created.Add(time.Hour)))

			all, err := repo.List(ctx)
			require.NoError(t, err)
			assert.Len(t, all, 1)

			require.NoError(t, repo.Delete(ctx, c.ID))
			_, err = repo.Get(ctx, c.ID)
			assert.True(t, errors.Is(err, candidate.ErrNotFound))
		})
	}
}

func TestRepositoryNotFound(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			assert.ErrorIs(t, repo.Update(ctx, candidate.Candidate{ID: "missing"}), candidate.ErrNotFound)
			assert.ErrorIs(t, repo.Delete(ctx, "missing"), candidate.ErrNotFound)
			_, err := repo.Get(ctx, "missing")
			assert.ErrorIs(t, err, candidate.ErrNotFound)
		})
	}
}

func TestRepositoryListOrder(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
			for i, id := range []string{"c", "a", "b"} {
				_, err := repo.Create(ctx, candidate.Candidate{ID: id, Name: id, CreatedAt: base.Add(time.Duration(i) * time.Minute)})
				require.NoError(t, err)
			}

			all, err := repo.List(ctx)
			require.NoError(t, err)
			ids := []string{all[0].ID, all[1].ID, all[2].ID}
			assert.Equal(t, []string{"c", "a", "b"}, ids)
		})
	}
}

func TestReplaceMerged(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			merger, ok := repo.(candidate.Merger)
			require.True(t, ok)

			p, err := repo.Create(ctx, candidate.Candidate{Name: "John Smith", Location: "Mumbai"})
			require.NoError(t, err)
			d, err := repo.Create(ctx, candidate.Candidate{Name: "john smith"})
			require.NoError(t, err)

			p.Location = "Delhi"
			err = merger.ReplaceMerged(ctx, p, "missing")
			assert.ErrorIs(t, err, candidate.ErrNotFound)
			got, err := repo.Get(ctx, p.ID)
			require.NoError(t, err)
			assert.Equal(t, "Mumbai", got.Location, "failed merge leaves the primary untouched")

			require.NoError(t, merger.ReplaceMerged(ctx, p, d.ID))
			got, err = repo.Get(ctx, p.ID)
			require.NoError(t, err)
			assert.Equal(t, "Delhi", got.Location)
			_, err = repo.Get(ctx, d.ID)
			assert.ErrorIs(t, err, candidate.ErrNotFound)

			all, err := repo.List(ctx)
			require.NoError(t, err)
			assert.Len(t, all, 1)
		})
	}
}

func TestMemoryRepositoryIsolation(t *testing.T) {
	ctx := context.Background()
	seed := candidate.Candidate{ID: "x", Name: "A", Notes: []candidate.Note{{ID: "n", Text: "orig"}}}
	repo := NewMemoryRepository(seed)

	got, err := repo.Get(ctx, "x")
	require.NoError(t, err)
	got.Notes[0].Text = "changed"

	again, _ := repo.Get(ctx, "x")
	assert.Equal(t, "orig", again.Notes[0].Text)

	_, err = repo.Create(ctx, candidate.Candidate{ID: "x"})
	assert.ErrorContains(t, err, "already exists")
}

func TestJSONFileRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "candidates.json")
	repo := NewMemoryRepository(
		candidate.Candidate{ID: "1", Name: "Priya", Email: "priya@corp.in"},
		candidate.Candidate{ID: "2", Name: "Ravi", Phone: "9123456780"},
	)

	require.NoError(t, SaveJSONFile(ctx, path, repo))
	loaded, err := LoadJSONFile(path)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "priya@corp.in", loaded[0].Email)
	assert.Equal(t, "9123456780", loaded[1].Phone)

	_, err = LoadJSONFile(filepath.Join(t.TempDir(), "none.json"))
	assert.Error(t, err)
}
