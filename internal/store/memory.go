package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/talentflow/dedupe/internal/candidate"
)

// MemoryRepository is an in-process candidate.Repository. List preserves
// insertion order. Stored records are cloned on the way in and out.
type MemoryRepository struct {
	mu    sync.RWMutex
	byID  map[string]candidate.Candidate
	order []string
	now   func() time.Time
}

// NewMemoryRepository creates a repository seeded with candidates
func NewMemoryRepository(seed ...candidate.Candidate) *MemoryRepository {
	r := &MemoryRepository{byID: make(map[string]candidate.Candidate), now: time.Now}
	for _, c := range seed {
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		if _, exists := r.byID[c.ID]; !exists {
			r.order = append(r.order, c.ID)
		}
		r.byID[c.ID] = c.Clone()
	}
	return r
}

func (r *MemoryRepository) List(ctx context.Context) ([]candidate.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]candidate.Candidate, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id].Clone())
	}
	return out, nil
}

func (r *MemoryRepository) Get(ctx context.Context, id string) (candidate.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return candidate.Candidate{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byID[id]
	if !ok {
		return candidate.Candidate{}, fmt.Errorf("%s: %w", id, candidate.ErrNotFound)
	}
	return c.Clone(), nil
}

func (r *MemoryRepository) Create(ctx context.Context, c candidate.Candidate) (candidate.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return candidate.Candidate{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	c = c.Clone()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if _, exists := r.byID[c.ID]; exists {
		return candidate.Candidate{}, fmt.Errorf("candidate %s already exists", c.ID)
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = r.now().UTC()
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = c.CreatedAt
	}
	r.byID[c.ID] = c
	r.order = append(r.order, c.ID)
	return c.Clone(), nil
}

func (r *MemoryRepository) Update(ctx context.Context, c candidate.Candidate) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[c.ID]; !ok {
		return fmt.Errorf("%s: %w", c.ID, candidate.ErrNotFound)
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = r.now().UTC()
	}
	r.byID[c.ID] = c.Clone()
	return nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return fmt.Errorf("%s: %w", id, candidate.ErrNotFound)
	}
	r.remove(id)
	return nil
}

// ReplaceMerged stores merged and removes duplicateID under one lock. Nothing
// changes unless both records exist.
func (r *MemoryRepository) ReplaceMerged(ctx context.Context, merged candidate.Candidate, duplicateID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range []string{merged.ID, duplicateID} {
		if _, ok := r.byID[id]; !ok {
			return fmt.Errorf("%s: %w", id, candidate.ErrNotFound)
		}
	}
	if merged.UpdatedAt.IsZero() {
		merged.UpdatedAt = r.now().UTC()
	}
	r.byID[merged.ID] = merged.Clone()
	r.remove(duplicateID)
	return nil
}

func (r *MemoryRepository) remove(id string) {
	delete(r.byID, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}
