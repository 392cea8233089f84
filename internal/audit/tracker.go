package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/talentflow/dedupe/internal/db"
	"github.com/talentflow/dedupe/internal/debug"
	"github.com/talentflow/dedupe/internal/merge"
)

// Tracker keeps an audit trail of merges
type Tracker struct {
	conn *db.Connection
}

// NewTracker creates a new audit tracker
func NewTracker(conn *db.Connection) *Tracker {
	return &Tracker{conn: conn}
}

// MergeRecord is one completed merge
type MergeRecord struct {
	ID             string           `json:"id"`
	PrimaryID      string           `json:"primary_id"`
	DuplicateID    string           `json:"duplicate_id"`
	MatchScore     int              `json:"match_score,omitempty"`
	Decisions      []merge.Decision `json:"decisions"`
	ConflictCount  int              `json:"conflict_count"`
	NotesCarried   int              `json:"notes_carried"`
	HistoryCarried int              `json:"history_carried"`
	DecidedBy      string           `json:"decided_by,omitempty"`
	DecidedAt      time.Time        `json:"decided_at"`
}

// RecordFromPreview fills the counts of a MergeRecord from a preview and the
// decisions applied to it
func RecordFromPreview(p merge.Preview, decisions []merge.Decision, decidedBy string, at time.Time) MergeRecord {
	rec := MergeRecord{
		PrimaryID:     p.Primary.ID,
		DuplicateID:   p.Duplicate.ID,
		Decisions:     decisions,
		ConflictCount: len(p.Conflicts),
		DecidedBy:     decidedBy,
		DecidedAt:     at,
	}
	for _, pd := range p.Preserved {
		if !pd.PreserveInMerged {
			continue
		}
		switch pd.Kind {
		case merge.PreservedNotes:
			rec.NotesCarried += pd.Count()
		case merge.PreservedHistory:
			rec.HistoryCarried += pd.Count()
		}
	}
	return rec
}

// Migrate creates the merge_audit table if it does not exist
func (t *Tracker) Migrate(ctx context.Context) error {
	_, err := t.conn.DB.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS merge_audit (
			audit_id        TEXT PRIMARY KEY,
			primary_id      TEXT NOT NULL,
			duplicate_id    TEXT NOT NULL,
			match_score     INTEGER NOT NULL DEFAULT 0,
			decisions_json  TEXT NOT NULL,
			conflict_count  INTEGER NOT NULL,
			notes_carried   INTEGER NOT NULL,
			history_carried INTEGER NOT NULL,
			decided_by      TEXT NOT NULL DEFAULT '',
			decided_at      `+t.conn.TimestampType()+` NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("failed to create audit table: %w", err)
	}
	return nil
}

// RecordMerge saves a merge to the audit trail and returns its audit ID
func (t *Tracker) RecordMerge(ctx context.Context, localDebug bool, rec MergeRecord) (string, error) {
	debug.DebugHeader(localDebug)
	defer debug.DebugFooter(localDebug)

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.DecidedAt.IsZero() {
		rec.DecidedAt = time.Now().UTC()
	}
	decisions := rec.Decisions
	if decisions == nil {
		decisions = []merge.Decision{}
	}
	decisionsJSON, err := json.Marshal(decisions)
	if err != nil {
		return "", fmt.Errorf("failed to encode decisions: %w", err)
	}

	_, err = t.conn.DB.ExecContext(ctx, t.conn.Rebind(`
		INSERT INTO merge_audit (
			audit_id, primary_id, duplicate_id, match_score, decisions_json,
			conflict_count, notes_carried, history_carried, decided_by, decided_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		rec.ID, rec.PrimaryID, rec.DuplicateID, rec.MatchScore, string(decisionsJSON),
		rec.ConflictCount, rec.NotesCarried, rec.HistoryCarried, rec.DecidedBy, rec.DecidedAt)
	if err != nil {
		return "", fmt.Errorf("failed to insert merge audit: %w", err)
	}

	debug.DebugOutput(localDebug, "Recorded merge %s: %s absorbed %s (%d decisions)",
		rec.ID, rec.PrimaryID, rec.DuplicateID, len(rec.Decisions))
	return rec.ID, nil
}

// History returns the merges in which candidateID was either side, newest first
func (t *Tracker) History(ctx context.Context, localDebug bool, candidateID string) ([]MergeRecord, error) {
	debug.DebugHeader(localDebug)
	defer debug.DebugFooter(localDebug)

	rows, err := t.conn.DB.QueryContext(ctx, t.conn.Rebind(`
		SELECT audit_id, primary_id, duplicate_id, match_score, decisions_json,
		       conflict_count, notes_carried, history_carried, decided_by, decided_at
		FROM merge_audit
		WHERE primary_id = ? OR duplicate_id = ?
		ORDER BY decided_at DESC, audit_id`), candidateID, candidateID)
	if err != nil {
		return nil, fmt.Errorf("failed to query merge history: %w", err)
	}
	defer rows.Close()

	history := []MergeRecord{}
	for rows.Next() {
		var rec MergeRecord
		var decisionsJSON string
		err := rows.Scan(&rec.ID, &rec.PrimaryID, &rec.DuplicateID, &rec.MatchScore, &decisionsJSON,
			&rec.ConflictCount, &rec.NotesCarried, &rec.HistoryCarried, &rec.DecidedBy, &rec.DecidedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan merge history: %w", err)
		}
		if err := json.Unmarshal([]byte(decisionsJSON), &rec.Decisions); err != nil {
			debug.DebugOutput(localDebug, "Bad decisions JSON on audit %s: %v", rec.ID, err)
		}
		history = append(history, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read merge history: %w", err)
	}

	debug.DebugOutput(localDebug, "Found %d merges for %s", len(history), candidateID)
	return history, nil
}
