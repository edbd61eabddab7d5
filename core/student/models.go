package student

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/marksengine/core"
)

type Student struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	USN       string    `json:"usn"`
	Branch    string    `json:"branch"`
	Scheme    string    `json:"scheme"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// NewStudent contains information needed to create a new Student.
type NewStudent struct {
	Name   string `json:"name" yaml:"name" validate:"required,notblank,max=100"`
	USN    string `json:"usn" yaml:"usn" validate:"required,alphanum,max=20"`
	Branch string `json:"branch" yaml:"branch" validate:"required,notblank,max=100"`
	Scheme string `json:"scheme" yaml:"scheme" validate:"required,notblank,max=20"`
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	ns.USN = NormalizeUSN(ns.USN)
	ns.Branch = core.CleanString(ns.Branch)
	ns.Scheme = core.CleanString(ns.Scheme)
	return validate.Struct(ns)
}

// NormalizeUSN trims and upper-cases a university seat number.
func NormalizeUSN(usn string) string {
	return strings.ToUpper(core.CleanString(usn))
}

type QueryFilter struct {
	Search string `query:"search"`
	Branch string `query:"branch"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Branch == ""
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Branch = core.CleanString(qf.Branch)
}

// orderingFields are the fields students can be ordered by.
var orderingFields = map[string]bool{
	"name":       true,
	"usn":        true,
	"branch":     true,
	"created_at": true,
}

// CleanOrdering drops orderings on unknown fields.
func CleanOrdering(ordering []core.DBOrdering) []core.DBOrdering {
	if ordering == nil {
		return nil
	}
	cleaned := make([]core.DBOrdering, 0, len(ordering))
	for _, ord := range ordering {
		if orderingFields[ord.Field] {
			cleaned = append(cleaned, ord)
		}
	}
	return cleaned
}
