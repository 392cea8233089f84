package candidate

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrNotFound is returned by a Repository when no candidate has the given ID
var ErrNotFound = errors.New("candidate not found")

// Note is a free-text note attached to a candidate
type Note struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	CreatedBy string    `json:"created_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ChangeEntry is one entry of a candidate's change history
type ChangeEntry struct {
	ID        string    `json:"id"`
	Field     string    `json:"field"`
	OldValue  string    `json:"old_value,omitempty"`
	NewValue  string    `json:"new_value,omitempty"`
	Action    string    `json:"action"` // "updated", "created", "merged"
	ChangedBy string    `json:"changed_by,omitempty"`
	ChangedAt time.Time `json:"changed_at"`
}

// Candidate is a recruitment candidate record as owned by the application layer
type Candidate struct {
	ID                string        `json:"id"`
	Name              string        `json:"name"`
	Email             string        `json:"email,omitempty"`
	Phone             string        `json:"phone,omitempty"`
	LinkedIn          string        `json:"linkedin,omitempty"`
	Location          string        `json:"location,omitempty"`
	CurrentCompany    string        `json:"current_company,omitempty"`
	Designation       string        `json:"designation,omitempty"`
	TotalExperience   string        `json:"total_experience,omitempty"`
	LastSalary        string        `json:"last_salary,omitempty"`
	SalaryExpectation string        `json:"salary_expectation,omitempty"`
	Qualification     string        `json:"qualification,omitempty"`
	Notes             []Note        `json:"notes,omitempty"`
	ChangeHistory     []ChangeEntry `json:"change_history,omitempty"`
	CreatedBy         string        `json:"created_by,omitempty"`
	CreatedByName     string        `json:"created_by_name,omitempty"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

// Input is a candidate-in-progress: the contact fields of a record that has
// not been saved yet and is being checked for duplicates. ID is set when an
// existing record is being edited so it is not reported as its own duplicate.
type Input struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
}

// InputOf returns the contact fields of c as an Input
func InputOf(c Candidate) Input {
	return Input{ID: c.ID, Name: c.Name, Email: c.Email, Phone: c.Phone, LinkedIn: c.LinkedIn}
}

// Field names understood by Get and Set. These are the fields a merge compares.
const (
	FieldName              = "name"
	FieldEmail             = "email"
	FieldPhone             = "phone"
	FieldLocation          = "location"
	FieldCurrentCompany    = "currentCompany"
	FieldDesignation       = "designation"
	FieldTotalExperience   = "totalExperience"
	FieldLastSalary        = "lastSalary"
	FieldSalaryExpectation = "salaryExpectation"
	FieldQualification     = "qualification"
)

// ComparableFields lists the fields compared during a merge, in display order
var ComparableFields = []string{
	FieldName,
	FieldEmail,
	FieldPhone,
	FieldLocation,
	FieldCurrentCompany,
	FieldDesignation,
	FieldTotalExperience,
	FieldLastSalary,
	FieldSalaryExpectation,
	FieldQualification,
}

var displayNames = map[string]string{
	FieldName:              "Name",
	FieldEmail:             "Email",
	FieldPhone:             "Phone",
	FieldLocation:          "Location",
	FieldCurrentCompany:    "Current Company",
	FieldDesignation:       "Designation",
	FieldTotalExperience:   "Total Experience",
	FieldLastSalary:        "Last Salary",
	FieldSalaryExpectation: "Salary Expectation",
	FieldQualification:     "Qualification",
}

// DisplayName returns the human readable label for a comparable field
func DisplayName(field string) string {
	if name, ok := displayNames[field]; ok {
		return name
	}
	return field
}

// IsComparable reports whether field is one of ComparableFields
func IsComparable(field string) bool {
	_, ok := displayNames[field]
	return ok
}

// Get returns the value of a comparable field and whether the field is known
func (c *Candidate) Get(field string) (string, bool) {
	p := c.fieldPtr(field)
	if p == nil {
		return "", false
	}
	return *p, true
}

// Set assigns a comparable field. It returns false for unknown fields.
func (c *Candidate) Set(field, value string) bool {
	p := c.fieldPtr(field)
	if p == nil {
		return false
	}
	*p = value
	return true
}

func (c *Candidate) fieldPtr(field string) *string {
	switch field {
	case FieldName:
		return &c.Name
	case FieldEmail:
		return &c.Email
	case FieldPhone:
		return &c.Phone
	case FieldLocation:
		return &c.Location
	case FieldCurrentCompany:
		return &c.CurrentCompany
	case FieldDesignation:
		return &c.Designation
	case FieldTotalExperience:
		return &c.TotalExperience
	case FieldLastSalary:
		return &c.LastSalary
	case FieldSalaryExpectation:
		return &c.SalaryExpectation
	case FieldQualification:
		return &c.Qualification
	}
	return nil
}

// Clone returns a deep copy; the notes and history slices are not shared
func (c Candidate) Clone() Candidate {
	out := c
	if c.Notes != nil {
		out.Notes = append([]Note(nil), c.Notes...)
	}
	if c.ChangeHistory != nil {
		out.ChangeHistory = append([]ChangeEntry(nil), c.ChangeHistory...)
	}
	return out
}

// IsBlank reports whether a field value carries no information
func IsBlank(v string) bool {
	return strings.TrimSpace(v) == ""
}

// Repository is the persistence collaborator for candidates
type Repository interface {
	List(ctx context.Context) ([]Candidate, error)
	Get(ctx context.Context, id string) (Candidate, error)
	Create(ctx context.Context, c Candidate) (Candidate, error)
	Update(ctx context.Context, c Candidate) error
	Delete(ctx context.Context, id string) error
}

// Merger is implemented by repositories that can save a merged primary and
// remove the absorbed duplicate as one atomic change
type Merger interface {
	ReplaceMerged(ctx context.Context, merged Candidate, duplicateID string) error
}
