// Package service ties duplicate detection and merging to candidate storage
// and the merge audit trail.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/talentflow/dedupe/internal/audit"
	"github.com/talentflow/dedupe/internal/candidate"
	"github.com/talentflow/dedupe/internal/match"
	"github.com/talentflow/dedupe/internal/merge"
	"github.com/talentflow/dedupe/internal/validation"
)

var (
	// ErrSameCandidate is returned when a record is merged into itself
	ErrSameCandidate = errors.New("primary and duplicate are the same candidate")

	// ErrAuditDisabled is returned by MergeHistory when no auditor is configured
	ErrAuditDisabled = errors.New("merge audit is not enabled")
)

// Auditor records merges. *audit.Tracker implements it.
type Auditor interface {
	RecordMerge(ctx context.Context, localDebug bool, rec audit.MergeRecord) (string, error)
	History(ctx context.Context, localDebug bool, candidateID string) ([]audit.MergeRecord, error)
}

// Service is the application layer over a candidate repository
type Service struct {
	repo     candidate.Repository
	detector *match.Detector
	auditor  Auditor
	logger   *slog.Logger
	debug    bool
	now      func() time.Time
}

// Option configures a Service
type Option func(*Service)

// WithAuditor records every merge with a
func WithAuditor(a Auditor) Option {
	return func(s *Service) { s.auditor = a }
}

// WithLogger sets the service logger
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithDebug enables trace output in the audit layer
func WithDebug(enabled bool) Option {
	return func(s *Service) { s.debug = enabled }
}

// WithClock sets the time source used for merges
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates a Service
func New(repo candidate.Repository, detector *match.Detector, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		detector: detector,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Detector returns the detector used by the service
func (s *Service) Detector() *match.Detector {
	return s.detector
}

// Candidate returns one stored candidate
func (s *Service) Candidate(ctx context.Context, id string) (candidate.Candidate, error) {
	return s.repo.Get(ctx, id)
}

// CheckCandidate validates in and runs duplicate detection against existing.
// When existing is nil the full candidate list is fetched from the
// repository; pass an empty non-nil slice to check against nothing.
func (s *Service) CheckCandidate(ctx context.Context, in candidate.Input, existing []candidate.Candidate) (match.DetectionResult, error) {
	if err := validation.ValidateInput(in).Err(); err != nil {
		return match.DetectionResult{}, err
	}

	if existing == nil {
		all, err := s.repo.List(ctx)
		if err != nil {
			return match.DetectionResult{}, fmt.Errorf("loading candidates: %w", err)
		}
		existing = all
	}

	result := s.detector.DetectDuplicates(in, existing)
	s.logger.Info("duplicate check",
		"compared", result.ComparedCount,
		"matches", len(result.Matches),
		"high", result.HighConfidenceCount,
		"duration_ms", result.ProcessingTime.Milliseconds())
	return result, nil
}

// PreviewMerge loads both records and computes the merge preview
func (s *Service) PreviewMerge(ctx context.Context, primaryID, duplicateID string) (merge.Preview, error) {
	if primaryID == duplicateID {
		return merge.Preview{}, ErrSameCandidate
	}
	primary, err := s.repo.Get(ctx, primaryID)
	if err != nil {
		return merge.Preview{}, fmt.Errorf("loading primary: %w", err)
	}
	duplicate, err := s.repo.Get(ctx, duplicateID)
	if err != nil {
		return merge.Preview{}, fmt.Errorf("loading duplicate: %w", err)
	}
	return merge.GeneratePreview(primary, duplicate, merge.WithPhoneLocale(s.detector.Config().PhoneLocale)), nil
}

// MergeRequest describes a merge to perform
type MergeRequest struct {
	PrimaryID   string           `json:"primary_id"`
	DuplicateID string           `json:"duplicate_id"`
	Decisions   []merge.Decision `json:"decisions"`
	DropNotes   bool             `json:"drop_notes,omitempty"`
	DropHistory bool             `json:"drop_history,omitempty"`
	MergedBy    string           `json:"merged_by,omitempty"`
}

// MergeResult is the outcome of a merge
type MergeResult struct {
	Merged    candidate.Candidate `json:"merged_candidate"`
	Conflicts int                 `json:"conflicts"`
	AuditID   string              `json:"audit_id,omitempty"`
}

// Merge folds the duplicate into the primary: preview, apply decisions,
// update the primary, delete the duplicate and record the merge. Fields with
// no decision keep the preview's suggested value.
func (s *Service) Merge(ctx context.Context, req MergeRequest) (MergeResult, error) {
	preview, err := s.PreviewMerge(ctx, req.PrimaryID, req.DuplicateID)
	if err != nil {
		return MergeResult{}, err
	}
	if err := merge.ValidateDecisions(preview, req.Decisions); err != nil {
		return MergeResult{}, fmt.Errorf("%w: %v", validation.ErrInvalidCandidate, err)
	}

	now := s.now().UTC()
	opts := []merge.ApplyOption{merge.WithClock(func() time.Time { return now }), merge.WithMergedBy(req.MergedBy)}
	if req.DropNotes {
		opts = append(opts, merge.WithoutPreserved(merge.PreservedNotes))
		markDropped(&preview, merge.PreservedNotes)
	}
	if req.DropHistory {
		opts = append(opts, merge.WithoutPreserved(merge.PreservedHistory))
		markDropped(&preview, merge.PreservedHistory)
	}

	merged := merge.ApplyDecisions(preview, req.Decisions, opts...)
	if err := validation.ValidateCandidate(merged).Err(); err != nil {
		return MergeResult{}, err
	}

	if err := s.persistMerge(ctx, preview.Primary, merged, req.DuplicateID); err != nil {
		return MergeResult{}, err
	}

	result := MergeResult{Merged: merged, Conflicts: len(preview.Conflicts)}
	if s.auditor != nil {
		rec := audit.RecordFromPreview(preview, req.Decisions, req.MergedBy, now)
		if m := s.detector.CompareCandidate(candidate.InputOf(preview.Duplicate), preview.Primary); m != nil {
			rec.MatchScore = m.MatchScore
		}
		id, err := s.auditor.RecordMerge(ctx, s.debug, rec)
		if err != nil {
			// the merge itself is already persisted
			s.logger.Error("failed to record merge audit", "primary", req.PrimaryID, "duplicate", req.DuplicateID, "error", err)
		}
		result.AuditID = id
	}

	s.logger.Info("candidates merged",
		"primary", req.PrimaryID,
		"duplicate", req.DuplicateID,
		"decisions", len(req.Decisions),
		"conflicts", len(preview.Conflicts))
	return result, nil
}

// persistMerge saves the merged primary and removes the duplicate, atomically
// when the repository supports it. Otherwise a failed delete restores the
// primary so a retry does not carry the duplicate's notes twice.
func (s *Service) persistMerge(ctx context.Context, original, merged candidate.Candidate, duplicateID string) error {
	if m, ok := s.repo.(candidate.Merger); ok {
		if err := m.ReplaceMerged(ctx, merged, duplicateID); err != nil {
			return fmt.Errorf("saving merge of %s into %s: %w", duplicateID, merged.ID, err)
		}
		return nil
	}

	if err := s.repo.Update(ctx, merged); err != nil {
		return fmt.Errorf("saving merged candidate: %w", err)
	}
	if err := s.repo.Delete(ctx, duplicateID); err != nil {
		if rerr := s.repo.Update(ctx, original); rerr != nil {
			s.logger.Error("failed to restore primary after merge failure", "primary", merged.ID, "error", rerr)
		}
		return fmt.Errorf("removing duplicate %s: %w", duplicateID, err)
	}
	return nil
}

func markDropped(p *merge.Preview, kind merge.PreservedKind) {
	for i := range p.Preserved {
		if p.Preserved[i].Kind == kind {
			p.Preserved[i].PreserveInMerged = false
		}
	}
}

// MergeHistory returns the audited merges involving id
func (s *Service) MergeHistory(ctx context.Context, id string) ([]audit.MergeRecord, error) {
	if s.auditor == nil {
		return nil, ErrAuditDisabled
	}
	return s.auditor.History(ctx, s.debug, id)
}

// DuplicateGroups scans every stored candidate for duplicate clusters
func (s *Service) DuplicateGroups(ctx context.Context, workers int) ([]match.DuplicateGroup, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading candidates: %w", err)
	}
	return s.detector.FindDuplicateGroups(ctx, all, workers)
}
