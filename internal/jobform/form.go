// Package jobform holds the job description form: its fields, how they are
// turned into an API payload, and submission.
package jobform

import (
	"context"
	stderrors "errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"screener/internal/api"
	"screener/internal/errors"
	"screener/internal/types"

	"github.com/go-playground/validator/v10"
)

// Field names, as used by the web form
const (
	FieldTitle              = "title"
	FieldDescription        = "description"
	FieldRequiredSkills     = "required_skills"
	FieldRequiredExperience = "required_experience"
	FieldRequiredEducation  = "required_education"
)

// SuccessMessage is shown after a job description is stored
const SuccessMessage = "Job description created successfully!"

// Form is the raw text of the five job description fields
type Form struct {
	Title              string `validate:"required"`
	Description        string `validate:"required"`
	RequiredSkills     string `validate:"required"`
	RequiredExperience string `validate:"required"`
	RequiredEducation  string
}

// Creator stores a job description
type Creator interface {
	CreateJob(ctx context.Context, job types.JobDescriptionCreate) (*types.JobDescription, error)
}

var validate = validator.New()

var fieldLabels = map[string]string{
	"Title":              "Job title",
	"Description":        "Job description",
	"RequiredSkills":     "Required skills",
	"RequiredExperience": "Required experience",
}

// Set updates one field by name. Unknown names are ignored and reported false.
func (f *Form) Set(name, value string) bool {
	switch name {
	case FieldTitle:
		f.Title = value
	case FieldDescription:
		f.Description = value
	case FieldRequiredSkills:
		f.RequiredSkills = value
	case FieldRequiredExperience:
		f.RequiredExperience = value
	case FieldRequiredEducation:
		f.RequiredEducation = value
	default:
		return false
	}
	return true
}

// Reset clears every field
func (f *Form) Reset() {
	*f = Form{}
}

// Validate checks the required fields are filled in
func (f Form) Validate() error {
	err := validate.Struct(f)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest, "invalid job description", err)
	}

	missing := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		missing = append(missing, fieldLabels[fe.Field()])
	}
	return errors.NewValidationError(errors.ErrCodeInvalidRequest,
		fmt.Sprintf("%s required", strings.Join(missing, ", ")), nil).
		WithContext("fields", missing)
}

// Payload converts the form into the request body
func (f Form) Payload() types.JobDescriptionCreate {
	return types.JobDescriptionCreate{
		Title:              f.Title,
		Description:        f.Description,
		RequiredSkills:     SplitSkills(f.RequiredSkills),
		RequiredExperience: ParseExperience(f.RequiredExperience),
		RequiredEducation:  f.RequiredEducation,
	}
}

// Submit validates and posts the form. On success the form is cleared;
// on failure the entered values are kept.
func (f *Form) Submit(ctx context.Context, c Creator) (*types.JobDescription, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	job, err := c.CreateJob(ctx, f.Payload())
	if err != nil {
		return nil, err
	}
	f.Reset()
	return job, nil
}

// FailureMessage is shown when a job description could not be stored
func FailureMessage(err error) string {
	return "Error creating job description: " + api.UserMessage(err)
}

// SplitSkills splits a comma separated list and trims each entry. Empty
// entries are kept, so "Python," yields ["Python", ""]. Blank input yields
// an empty list.
func SplitSkills(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

var leadingNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// ParseExperience reads the leading decimal number of s, ignoring any
// trailing text ("5 years" is 5). Anything unparseable is 0.
func ParseExperience(s string) float64 {
	m := leadingNumber.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0
	}
	return v
}
