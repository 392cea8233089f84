// Package review is the interactive terminal flow for resolving merge
// conflicts by hand.
package review

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/talentflow/dedupe/internal/format"
	"github.com/talentflow/dedupe/internal/match"
	"github.com/talentflow/dedupe/internal/merge"
)

// ErrAborted is returned when the reviewer quits
var ErrAborted = errors.New("review aborted")

// Resolution is what a reviewer decided for one merge
type Resolution struct {
	Decisions   []merge.Decision
	DropNotes   bool
	DropHistory bool
}

// Prompter asks questions on out and reads answers from in
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPrompter creates a prompter, typically over os.Stdin and os.Stdout
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// ShowMatches prints a detection result, one match per block
func (p *Prompter) ShowMatches(result match.DetectionResult) {
	if !result.HasMatches {
		fmt.Fprintf(p.out, "No duplicates found (%d candidates compared)\n", result.ComparedCount)
		return
	}

	fmt.Fprintf(p.out, "Found %d possible duplicates (%d high, %d medium, %d low):\n\n",
		len(result.Matches), result.HighConfidenceCount, result.MediumConfidenceCount, result.LowConfidenceCount)
	for i, m := range result.Matches {
		fmt.Fprintf(p.out, "%d. %s %s (%s)\n", i+1, format.ConfidenceBadge(m.Confidence, m.MatchScore),
			m.Candidate.Name, m.Candidate.ID)
		for _, r := range m.MatchReasons {
			fmt.Fprintf(p.out, "   %-8s %s: %s\n", r.Field, format.FormatScore(r.Similarity), r.Details)
		}
	}
	fmt.Fprintln(p.out)
}

// ResolveConflicts walks through every conflict that requires a decision and
// asks which value to keep, then asks whether to carry over the duplicate's
// notes and history. Conflicts resolved automatically are only listed.
func (p *Prompter) ResolveConflicts(preview merge.Preview) (Resolution, error) {
	var res Resolution

	fmt.Fprintf(p.out, "=== Merge %s into %s ===\n\n", preview.Duplicate.ID, preview.Primary.ID)
	for _, c := range preview.Conflicts {
		if c.RequiresDecision {
			continue
		}
		fmt.Fprintf(p.out, "%s: using %q (%s)\n", c.DisplayName, c.SuggestedValue, c.Type)
	}

	pending := preview.PendingDecisions()
	for i, c := range pending {
		fmt.Fprintf(p.out, "\n[%d/%d] %s (%s)\n", i+1, len(pending), c.DisplayName, c.Type)
		fmt.Fprintf(p.out, "  1 - primary:   %s\n", c.PrimaryValue)
		fmt.Fprintf(p.out, "  2 - duplicate: %s\n", c.DuplicateValue)
		fmt.Fprintln(p.out, "  c - enter a custom value")
		fmt.Fprintln(p.out, "  q - quit without merging")

		d, err := p.decide(c)
		if err != nil {
			return Resolution{}, err
		}
		res.Decisions = append(res.Decisions, d)
	}

	for _, pd := range preview.Preserved {
		if pd.Count() == 0 {
			continue
		}
		keep, err := p.Confirm(fmt.Sprintf("Carry over %d %s entries from the duplicate?", pd.Count(), pd.Kind), true)
		if err != nil {
			return Resolution{}, err
		}
		if !keep {
			switch pd.Kind {
			case merge.PreservedNotes:
				res.DropNotes = true
			case merge.PreservedHistory:
				res.DropHistory = true
			}
		}
	}
	return res, nil
}

func (p *Prompter) decide(c merge.Conflict) (merge.Decision, error) {
	for {
		choice, err := p.ask("Your decision [1]: ")
		if err != nil {
			return merge.Decision{}, err
		}

		switch strings.ToLower(choice) {
		case "", "1":
			return merge.Decision{Field: c.Field, SelectedValue: c.PrimaryValue, Source: merge.SourcePrimary}, nil
		case "2":
			return merge.Decision{Field: c.Field, SelectedValue: c.DuplicateValue, Source: merge.SourceDuplicate}, nil
		case "c":
			value, err := p.ask("Custom value: ")
			if err != nil {
				return merge.Decision{}, err
			}
			return merge.Decision{Field: c.Field, SelectedValue: value, Source: merge.SourceCustom}, nil
		case "q":
			return merge.Decision{}, ErrAborted
		}
		fmt.Fprintf(p.out, "Invalid choice '%s'. Please try again.\n", choice)
	}
}

// Confirm asks a yes/no question. An empty answer selects def.
func (p *Prompter) Confirm(question string, def bool) (bool, error) {
	hint := "(y/N)"
	if def {
		hint = "(Y/n)"
	}
	for {
		answer, err := p.ask(fmt.Sprintf("%s %s: ", question, hint))
		if err != nil {
			return false, err
		}
		switch strings.ToLower(answer) {
		case "":
			return def, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Fprintln(p.out, "Please answer y or n.")
	}
}

func (p *Prompter) ask(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	line, err := p.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		if errors.Is(err, io.EOF) {
			return "", ErrAborted
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}
