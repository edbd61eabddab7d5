package marks

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/marksengine/core"
	"github.com/trezcool/marksengine/core/scoring"
	"github.com/trezcool/marksengine/core/student"
)

// CIERecord is the stored CIE of a subject: raw inputs and the values computed from them.
type CIERecord struct {
	ID        string `json:"id"`
	SubjectID string `json:"subject_id"`
	scoring.CIEResult
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// RawMarks returns the raw CIE inputs of the record.
func (rec CIERecord) RawMarks() scoring.RawMarks {
	return scoring.RawMarks{
		IATest1Raw:     rec.IATest1Raw,
		IATest2Raw:     rec.IATest2Raw,
		CCEMarks:       rec.CCEMarks,
		LabRecordMarks: rec.LabRecordMarks,
		LabTest1Raw:    rec.LabTest1Raw,
		LabTest2Raw:    rec.LabTest2Raw,
		DirectCIEMarks: rec.DirectCIEMarks,
	}
}

// SEEMark is the stored SEE of a subject. IsDetained mirrors the CIE record.
type SEEMark struct {
	ID            string    `json:"id"`
	SubjectID     string    `json:"subject_id"`
	RawScored     *float64  `json:"raw_scored"`     // /100
	ReducedScored *float64  `json:"reduced_scored"` // /50
	IsAbsent      bool      `json:"is_absent"`
	IsDetained    bool      `json:"is_detained"`
	CreatedAt     time.Time `json:"created_at"` // UTC
	UpdatedAt     time.Time `json:"updated_at"` // UTC
}

// CIEInput holds the raw CIE component marks entered for a subject.
// Components the subject type does not use are accepted and ignored.
type CIEInput struct {
	IATest1Raw     *float64 `json:"ia_test1_raw" yaml:"ia_test1_raw" validate:"omitempty,gte=0"`
	IATest2Raw     *float64 `json:"ia_test2_raw" yaml:"ia_test2_raw" validate:"omitempty,gte=0"`
	CCEMarks       *float64 `json:"cce_marks" yaml:"cce_marks" validate:"omitempty,gte=0"`
	LabRecordMarks *float64 `json:"lab_record_marks" yaml:"lab_record_marks" validate:"omitempty,gte=0"`
	LabTest1Raw    *float64 `json:"lab_test1_raw" yaml:"lab_test1_raw" validate:"omitempty,gte=0"`
	LabTest2Raw    *float64 `json:"lab_test2_raw" yaml:"lab_test2_raw" validate:"omitempty,gte=0"`
	DirectCIEMarks *float64 `json:"direct_cie_marks" yaml:"direct_cie_marks" validate:"omitempty,gte=0"`
}

// Validate checks the inputs are positive and within the component maxima of `st`.
func (in CIEInput) Validate(validate *validator.Validate, st scoring.SubjectType) error {
	if err := validate.Struct(in); err != nil {
		return err
	}

	lim := scoring.LimitsFor(st)
	var flds []core.FieldError
	check := func(field string, val *float64, max float64) {
		if val != nil && max > 0 && *val > max {
			flds = append(flds, core.FieldError{Field: field, Error: fmt.Sprintf("must be at most %v for %s subjects", max, st)})
		}
	}
	check("ia_test1_raw", in.IATest1Raw, lim.IATest)
	check("ia_test2_raw", in.IATest2Raw, lim.IATest)
	check("cce_marks", in.CCEMarks, lim.CCE)
	check("lab_record_marks", in.LabRecordMarks, lim.LabRecord)
	check("lab_test1_raw", in.LabTest1Raw, lim.LabTest)
	check("lab_test2_raw", in.LabTest2Raw, lim.LabTest)
	check("direct_cie_marks", in.DirectCIEMarks, lim.Direct)

	if flds != nil {
		return core.NewValidationError(nil, flds...)
	}
	return nil
}

func (in CIEInput) RawMarks() scoring.RawMarks {
	return scoring.RawMarks{
		IATest1Raw:     in.IATest1Raw,
		IATest2Raw:     in.IATest2Raw,
		CCEMarks:       in.CCEMarks,
		LabRecordMarks: in.LabRecordMarks,
		LabTest1Raw:    in.LabTest1Raw,
		LabTest2Raw:    in.LabTest2Raw,
		DirectCIEMarks: in.DirectCIEMarks,
	}
}

// SEEInput is the SEE score entered for a subject, as written (/100).
type SEEInput struct {
	RawScored *float64 `json:"raw_scored" yaml:"raw_scored" validate:"omitempty,gte=0,lte=100"`
	IsAbsent  bool     `json:"is_absent" yaml:"is_absent"`
}

func (in SEEInput) Validate(validate *validator.Validate) error {
	return validate.Struct(in)
}

// PreviewRequest asks for a live evaluation of raw marks that are not stored.
type PreviewRequest struct {
	SubjectType scoring.SubjectType `json:"subject_type" validate:"required,subjecttype"`
	scoring.RawMarks
}

// Validate applies the checks of CIEInput and SEEInput so a preview accepts what saving does.
func (pr *PreviewRequest) Validate(validate *validator.Validate) error {
	pr.SubjectType = scoring.SubjectType(core.CleanString(string(pr.SubjectType), true /* lower */))
	if err := validate.Struct(pr); err != nil {
		return err
	}

	cie := CIEInput{
		IATest1Raw:     pr.IATest1Raw,
		IATest2Raw:     pr.IATest2Raw,
		CCEMarks:       pr.CCEMarks,
		LabRecordMarks: pr.LabRecordMarks,
		LabTest1Raw:    pr.LabTest1Raw,
		LabTest2Raw:    pr.LabTest2Raw,
		DirectCIEMarks: pr.DirectCIEMarks,
	}
	if err := cie.Validate(validate, pr.SubjectType); err != nil {
		return err
	}

	if pr.SEERaw != nil && (*pr.SEERaw < 0 || *pr.SEERaw > 100) {
		return core.NewValidationError(nil, core.FieldError{Field: "see_raw", Error: "must be between 0 and 100"})
	}
	return nil
}

// SubjectSummary is the marks of one subject as shown on the semester marks sheet.
type SubjectSummary struct {
	SubjectID   string              `json:"subject_id"`
	SubjectCode string              `json:"subject_code"`
	SubjectName string              `json:"subject_name"`
	SubjectType scoring.SubjectType `json:"subject_type"`
	Credits     float64             `json:"credits"`
	IsMandatory bool                `json:"is_mandatory"`
	scoring.CIEResult
	SEERaw     *float64       `json:"see_raw"`     // /100
	SEEReduced *float64       `json:"see_reduced"` // /50
	IsAbsent   bool           `json:"is_absent"`
	Status     scoring.Status `json:"status"`
	Total      *float64       `json:"total"` // /100
}

type SemesterSummary struct {
	SemesterID     string           `json:"semester_id"`
	SemesterNumber int              `json:"semester_number"`
	AcademicYear   string           `json:"academic_year"`
	Subjects       []SubjectSummary `json:"subjects"`
}

// StudentExport is the full record of a student.
type StudentExport struct {
	Student   student.Student   `json:"student"`
	Semesters []SemesterSummary `json:"semesters"`
}
