package workflow

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/tvan04/workflow-management-system-sub001/internal/apperror"
	"github.com/tvan04/workflow-management-system-sub001/internal/filter"
	"github.com/tvan04/workflow-management-system-sub001/internal/models"
)

// SubmitInput is a raw application form. Field names follow the multipart form.
type SubmitInput struct {
	FacultyName     string          `json:"facultyName" validate:"required"`
	FacultyEmail    string          `json:"facultyEmail" validate:"required,email"`
	FacultyTitle    string          `json:"facultyTitle" validate:"required"`
	Department      string          `json:"department" validate:"required"`
	College         string          `json:"college" validate:"required"`
	AppointmentType string          `json:"appointmentType" validate:"required"`
	EffectiveDate   string          `json:"effectiveDate" validate:"required"`
	Duration        string          `json:"duration" validate:"required"`
	Rationale       string          `json:"rationale" validate:"required"`
	Approvers       []ApproverInput `json:"approvers" validate:"required,min=1,dive"`

	CVFileName string    `json:"-" validate:"-"`
	CV         io.Reader `json:"-" validate:"-"`
}

type ApproverInput struct {
	Role  string `json:"role"`
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

var tagMessages = map[string]string{
	"required": "is required",
	"email":    "must be a valid email address",
	"min":      "at least one approver is required",
}

// normalize trims every text field and fills default roles.
func (in *SubmitInput) normalize() {
	for _, s := range []*string{
		&in.FacultyName, &in.FacultyEmail, &in.FacultyTitle, &in.Department, &in.College,
		&in.AppointmentType, &in.EffectiveDate, &in.Duration, &in.Rationale,
	} {
		*s = strings.TrimSpace(*s)
	}
	for i := range in.Approvers {
		a := &in.Approvers[i]
		a.Name = strings.TrimSpace(a.Name)
		a.Email = strings.TrimSpace(a.Email)
		a.Role = roleSlug(a.Role)
		if a.Role == "" {
			a.Role = fmt.Sprintf("approver%d", i+1)
		}
	}
}

// roleSlug turns "Department Chair" into "department_chair".
func roleSlug(role string) string {
	fields := strings.FieldsFunc(strings.ToLower(role), func(r rune) bool {
		return r == ' ' || r == '-' || r == '_' || r == '\t'
	})
	return strings.Join(fields, "_")
}

// validateSubmission returns the parsed effective date or a validation error
// carrying one message per offending field.
func validateSubmission(in *SubmitInput) (time.Time, error) {
	in.normalize()
	fields := map[string]string{}

	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return time.Time{}, fmt.Errorf("validate submission: %w", err)
		}
		for _, fe := range verrs {
			key := fe.Namespace()
			if _, rest, ok := strings.Cut(key, "."); ok {
				key = rest
			}
			msg, ok := tagMessages[fe.Tag()]
			if !ok {
				msg = "is invalid"
			}
			if _, exists := fields[key]; !exists {
				fields[key] = msg
			}
		}
	}

	var effective time.Time
	if _, failed := fields["effectiveDate"]; !failed {
		t, err := filter.ParseDate(in.EffectiveDate)
		if err != nil {
			fields["effectiveDate"] = err.Error()
		}
		effective = t
	}

	seen := map[string]bool{}
	for i, a := range in.Approvers {
		if seen[a.Role] {
			fields[fmt.Sprintf("approvers[%d].role", i)] = fmt.Sprintf("role %q appears more than once", a.Role)
		}
		seen[a.Role] = true
	}

	if in.CV == nil {
		fields["cv"] = "a CV file is required"
	}

	if len(fields) > 0 {
		return time.Time{}, apperror.Validation("application is incomplete or invalid", fields)
	}
	return effective, nil
}

func (in *SubmitInput) chain() []models.Approver {
	chain := make([]models.Approver, 0, len(in.Approvers))
	for _, a := range in.Approvers {
		chain = append(chain, models.Approver{Role: a.Role, Name: a.Name, Email: a.Email})
	}
	return chain
}
