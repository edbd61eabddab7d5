package subject

import (
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/marksengine/core"
	"github.com/trezcool/marksengine/core/scoring"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

type Subject struct {
	ID          string              `json:"id"`
	SemesterID  string              `json:"semester_id"`
	Code        string              `json:"subject_code"`
	Name        string              `json:"subject_name"`
	Type        scoring.SubjectType `json:"subject_type"`
	Credits     float64             `json:"credits"`
	LTPHours    string              `json:"ltp_hours"`
	IsMandatory bool                `json:"is_mandatory"`
	OptionGroup string              `json:"option_group"`
	IsChosen    bool                `json:"is_chosen"`
	CreatedAt   time.Time           `json:"created_at"` // UTC
	UpdatedAt   time.Time           `json:"updated_at"` // UTC
}

// NormalizeCode removes all whitespace from a course code and upper-cases it.
func NormalizeCode(code string) string {
	return strings.ToUpper(whitespaceRegex.ReplaceAllString(code, ""))
}

// NewSubject contains information needed to add a Subject to a semester.
type NewSubject struct {
	Code        string              `json:"subject_code" yaml:"subject_code" validate:"required,alphanum,max=20"`
	Name        string              `json:"subject_name" yaml:"subject_name" validate:"required,notblank,max=200"`
	Type        scoring.SubjectType `json:"subject_type" yaml:"subject_type" validate:"required,subjecttype"`
	Credits     float64             `json:"credits" yaml:"credits" validate:"gte=0,lte=40"`
	LTPHours    string              `json:"ltp_hours" yaml:"ltp_hours" validate:"max=20"`
	IsMandatory bool                `json:"is_mandatory" yaml:"is_mandatory"`
	OptionGroup string              `json:"option_group" yaml:"option_group" validate:"max=30"`
	IsChosen    *bool               `json:"is_chosen" yaml:"is_chosen"`
}

func (ns *NewSubject) Validate(validate *validator.Validate) error {
	ns.Code = NormalizeCode(ns.Code)
	ns.Name = core.CleanString(ns.Name)
	ns.Type = scoring.SubjectType(core.CleanString(string(ns.Type), true /* lower */))
	if ns.Type == "" {
		ns.Type = scoring.PCC
	}
	if ns.Type.IsMandatory() {
		ns.IsMandatory = true
	}
	ns.LTPHours = core.CleanString(ns.LTPHours)
	ns.OptionGroup = core.CleanString(ns.OptionGroup)
	return validate.Struct(ns)
}

// UpdateSubject defines what information may be provided to modify an existing Subject.
// Nil fields are left untouched.
type UpdateSubject struct {
	Name        *string              `json:"subject_name" validate:"omitempty,notblank,max=200"`
	Type        *scoring.SubjectType `json:"subject_type" validate:"omitempty,subjecttype"`
	Credits     *float64             `json:"credits" validate:"omitempty,gte=0,lte=40"`
	IsMandatory *bool                `json:"is_mandatory"`
	IsChosen    *bool                `json:"is_chosen"`
	OptionGroup *string              `json:"option_group" validate:"omitempty,max=30"`
}

func (us *UpdateSubject) Validate(validate *validator.Validate) error {
	if us.Name != nil {
		name := core.CleanString(*us.Name)
		us.Name = &name
	}
	if us.Type != nil {
		st := scoring.SubjectType(core.CleanString(string(*us.Type), true /* lower */))
		us.Type = &st
	}
	if us.OptionGroup != nil {
		grp := core.CleanString(*us.OptionGroup)
		us.OptionGroup = &grp
	}
	return validate.Struct(us)
}

// apply returns `subj` modified with the set fields of `us`.
// A type change resets IsMandatory from the new type unless IsMandatory is set too.
func (us UpdateSubject) apply(subj Subject) Subject {
	if us.Name != nil {
		subj.Name = *us.Name
	}
	if us.Type != nil && *us.Type != subj.Type {
		subj.Type = *us.Type
		subj.IsMandatory = subj.Type.IsMandatory()
	}
	if us.IsMandatory != nil {
		subj.IsMandatory = *us.IsMandatory
	}
	if us.Credits != nil {
		subj.Credits = *us.Credits
	}
	if us.IsChosen != nil {
		subj.IsChosen = *us.IsChosen
	}
	if us.OptionGroup != nil {
		subj.OptionGroup = *us.OptionGroup
	}
	if subj.Type.IsMandatory() {
		subj.IsMandatory = true
	}
	return subj
}
