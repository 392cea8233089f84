package import_pkg

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/talentflow/dedupe/internal/candidate"
	"github.com/talentflow/dedupe/internal/match"
	"github.com/talentflow/dedupe/internal/validation"
)

// columnFields maps accepted CSV header names onto candidate fields
var columnFields = map[string]string{
	"name":               candidate.FieldName,
	"full_name":          candidate.FieldName,
	"email":              candidate.FieldEmail,
	"phone":              candidate.FieldPhone,
	"mobile":             candidate.FieldPhone,
	"location":           candidate.FieldLocation,
	"city":               candidate.FieldLocation,
	"current_company":    candidate.FieldCurrentCompany,
	"company":            candidate.FieldCurrentCompany,
	"designation":        candidate.FieldDesignation,
	"total_experience":   candidate.FieldTotalExperience,
	"last_salary":        candidate.FieldLastSalary,
	"salary_expectation": candidate.FieldSalaryExpectation,
	"qualification":      candidate.FieldQualification,
}

// Options controls an import run
type Options struct {
	// SkipDuplicates drops rows whose best match reaches the auto-merge
	// threshold, against stored candidates and rows imported earlier in
	// the same file
	SkipDuplicates bool
	CreatedBy      string
}

// Stats summarises an import run
type Stats struct {
	Imported   int      `json:"imported"`
	Duplicates int      `json:"duplicates"`
	Errors     int      `json:"errors"`
	Messages   []string `json:"messages,omitempty"`
}

// CSVImporter loads candidates from CSV into a repository
type CSVImporter struct {
	repo     candidate.Repository
	detector *match.Detector
	logger   *slog.Logger
}

// NewCSVImporter creates a new CSV importer
func NewCSVImporter(repo candidate.Repository, detector *match.Detector, logger *slog.Logger) *CSVImporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVImporter{repo: repo, detector: detector, logger: logger}
}

// ImportCSV reads candidates from r. The first row is a header; unknown
// columns are ignored. Bad rows are counted and skipped, not fatal.
func (ci *CSVImporter) ImportCSV(ctx context.Context, r io.Reader, opts Options) (Stats, error) {
	var stats Stats

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return stats, fmt.Errorf("failed to read header: %w", err)
	}
	columns := make([]string, len(header))
	known := 0
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		key = strings.ReplaceAll(key, " ", "_")
		columns[i] = columnFields[key]
		if key == "linkedin" || key == "linkedin_url" {
			columns[i] = "linkedin"
		}
		if columns[i] != "" {
			known++
		}
	}
	if known == 0 {
		return stats, fmt.Errorf("header has no recognised columns: %v", header)
	}

	var existing []candidate.Candidate
	if opts.SkipDuplicates {
		if existing, err = ci.repo.List(ctx); err != nil {
			return stats, fmt.Errorf("loading existing candidates: %w", err)
		}
	}
	threshold := ci.detector.Config().AutoMergeThreshold

	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			stats.fail("line %d: %v", line, err)
			continue
		}
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		c := mapRecord(columns, record)
		c.CreatedBy = opts.CreatedBy
		if err := validation.ValidateCandidate(c).Err(); err != nil {
			stats.fail("line %d: %v", line, err)
			continue
		}

		if opts.SkipDuplicates {
			result := ci.detector.DetectDuplicates(candidate.InputOf(c), existing)
			if result.HasMatches && result.Matches[0].MatchScore >= threshold {
				stats.Duplicates++
				stats.Messages = append(stats.Messages, fmt.Sprintf("line %d: duplicate of %s (%d%%)",
					line, result.Matches[0].Candidate.ID, result.Matches[0].MatchScore))
				continue
			}
		}

		created, err := ci.repo.Create(ctx, c)
		if err != nil {
			stats.fail("line %d: %v", line, err)
			continue
		}
		existing = append(existing, created)

		stats.Imported++
		if stats.Imported%1000 == 0 {
			ci.logger.Info("import progress", "imported", stats.Imported)
		}
	}

	ci.logger.Info("import complete", "imported", stats.Imported, "duplicates", stats.Duplicates, "errors", stats.Errors)
	return stats, nil
}

func (s *Stats) fail(format string, args ...any) {
	s.Errors++
	s.Messages = append(s.Messages, fmt.Sprintf(format, args...))
}

func mapRecord(columns []string, record []string) candidate.Candidate {
	var c candidate.Candidate
	for i, value := range record {
		if i >= len(columns) || columns[i] == "" {
			continue
		}
		value = strings.TrimSpace(value)
		if columns[i] == "linkedin" {
			c.LinkedIn = value
			continue
		}
		c.Set(columns[i], value)
	}
	return c
}
