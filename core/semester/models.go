package semester

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/marksengine/core"
)

type Semester struct {
	ID           string    `json:"id"`
	StudentID    string    `json:"student_id"`
	Number       int       `json:"semester_number"`
	AcademicYear string    `json:"academic_year"`
	CreatedAt    time.Time `json:"created_at"` // UTC
}

// NewSemester contains information needed to add a Semester to a student.
type NewSemester struct {
	Number       int    `json:"semester_number" yaml:"semester_number" validate:"required,gt=0,lte=12"`
	AcademicYear string `json:"academic_year" yaml:"academic_year" validate:"required,notblank,max=20"`
}

func (ns *NewSemester) Validate(validate *validator.Validate) error {
	ns.AcademicYear = core.CleanString(ns.AcademicYear)
	return validate.Struct(ns)
}

// SummaryCacheKey is the cache key of the marks summary of a semester.
func SummaryCacheKey(semesterID string) string {
	return "summary:" + semesterID
}
