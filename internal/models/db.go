package models

import (
	"fmt"
	"strings"
	"time"
)

type ApplicationStatus string

const (
	StatusSubmitted ApplicationStatus = "submitted"
	StatusApproved  ApplicationStatus = "approved"
	StatusDenied    ApplicationStatus = "denied"

	pendingPrefix = "pending_"
)

// PendingStatus is the status of an application waiting on the approver with the given role.
func PendingStatus(role string) ApplicationStatus {
	return ApplicationStatus(pendingPrefix + role)
}

func (s ApplicationStatus) IsTerminal() bool {
	return s == StatusApproved || s == StatusDenied
}

func (s ApplicationStatus) IsPending() bool {
	return strings.HasPrefix(string(s), pendingPrefix)
}

// Outcome is the terminal result reported to the applicant.
type Outcome string

const (
	OutcomeApproved Outcome = "approved"
	OutcomeDenied   Outcome = "denied"
)

type FacultyMember struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Title      string `json:"title"`
	Department string `json:"department"`
	College    string `json:"college"`
}

type Approver struct {
	Role  string `json:"role"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type StatusHistoryEntry struct {
	Status    ApplicationStatus `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Approver  string            `json:"approver,omitempty"`
	Signature string            `json:"signature,omitempty"`
	Notes     string            `json:"notes,omitempty"`
}

type CVFile struct {
	ID         string    `json:"id"`
	FileName   string    `json:"fileName"`
	Path       string    `json:"path"`
	Size       int64     `json:"size"`
	MimeType   string    `json:"mimeType"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// Date is a calendar date carried as YYYY-MM-DD on the wire.
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", raw, err)
	}
	d.Time = t
	return nil
}

type Application struct {
	ID              string               `json:"id"`
	FacultyMember   FacultyMember        `json:"facultyMember"`
	AppointmentType string               `json:"appointmentType"`
	EffectiveDate   Date                 `json:"effectiveDate"`
	Duration        string               `json:"duration"`
	Rationale       string               `json:"rationale"`
	ApprovalChain   []Approver           `json:"approvalChain"`
	CurrentStep     int                  `json:"currentStep"`
	Status          ApplicationStatus    `json:"status"`
	StatusHistory   []StatusHistoryEntry `json:"statusHistory"`
	CVFile          CVFile               `json:"cvFile"`
	SubmittedAt     time.Time            `json:"submittedAt"`
	UpdatedAt       time.Time            `json:"updatedAt"`
	Version         int64                `json:"version"`
}

// PendingApprover returns the approver whose turn it is, if any.
func (a *Application) PendingApprover() (Approver, bool) {
	if a.Status.IsTerminal() || a.CurrentStep < 0 || a.CurrentStep >= len(a.ApprovalChain) {
		return Approver{}, false
	}
	return a.ApprovalChain[a.CurrentStep], true
}

// Clone returns a deep copy so stores never share slices with callers.
func (a Application) Clone() Application {
	out := a
	out.ApprovalChain = append([]Approver(nil), a.ApprovalChain...)
	out.StatusHistory = append(make([]StatusHistoryEntry, 0, len(a.StatusHistory)), a.StatusHistory...)
	return out
}
