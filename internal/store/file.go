package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/talentflow/dedupe/internal/candidate"
)

// LoadJSONFile reads a JSON array of candidates
func LoadJSONFile(path string) ([]candidate.Candidate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading candidates: %w", err)
	}
	var out []candidate.Candidate
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parsing candidates from %s: %w", path, err)
	}
	return out, nil
}

// SaveJSONFile writes every candidate in repo to path as a JSON array
func SaveJSONFile(ctx context.Context, path string, repo candidate.Repository) error {
	all, err := repo.List(ctx)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding candidates: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing candidates: %w", err)
	}
	return nil
}
