package subject

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/trezcool/marksengine/core"
	"github.com/trezcool/marksengine/core/scoring"
)

const (
	unknownCode = "UNKNOWN"
	unknownName = "Unknown Subject"
)

// Credits is a credits value as found in an extracted syllabus table: a JSON number or
// a string such as "3", " 4.0" or "1,5". Anything unparsable counts as 0.
type Credits float64

func (c *Credits) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*c = 0
		return nil
	}
	*c = Credits(parseCredits(string(bytes.Trim(data, `"`))))
	return nil
}

func (c *Credits) UnmarshalYAML(value *yaml.Node) error {
	*c = Credits(parseCredits(value.Value))
	return nil
}

func parseCredits(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

// ExtractedRow is one subject row extracted from a syllabus document.
type ExtractedRow struct {
	Code        string  `json:"subject_code" yaml:"subject_code"`
	Name        string  `json:"subject_name" yaml:"subject_name"`
	Type        string  `json:"subject_type" yaml:"subject_type"` // a subject type or a free-form hint
	Credits     Credits `json:"credits" yaml:"credits"`
	LTPHours    string  `json:"ltp_hours" yaml:"ltp_hours"`
	IsMandatory bool    `json:"is_mandatory" yaml:"is_mandatory"`
	OptionGroup string  `json:"option_group" yaml:"option_group"`
}

// toSubject normalises `row` into a chosen subject of `semesterID`.
func (row ExtractedRow) toSubject(semesterID string) Subject {
	code := NormalizeCode(row.Code)
	if code == "" {
		code = unknownCode
	}
	name := core.CleanString(row.Name)
	if name == "" {
		name = unknownName
	}
	st, err := scoring.ParseSubjectType(row.Type)
	if err != nil {
		st = scoring.InferSubjectType(code, name, row.Type)
	}

	return Subject{
		SemesterID:  semesterID,
		Code:        code,
		Name:        name,
		Type:        st,
		Credits:     float64(row.Credits),
		LTPHours:    core.CleanString(row.LTPHours),
		IsMandatory: row.IsMandatory || st.IsMandatory(),
		OptionGroup: core.CleanString(row.OptionGroup),
		IsChosen:    true,
	}
}

type ImportReport struct {
	SemesterID        string   `json:"semester_id"`
	SubjectsExtracted int      `json:"subjects_extracted"`
	SubjectsStored    int      `json:"subjects_stored"`
	Warnings          []string `json:"warnings"`
}

// Import stores extracted syllabus rows as subjects of the semester `semesterID`.
// Rows are upserted on their subject code. Rows without credits that are not mandatory
// courses (usually table headers) are skipped with a warning, as are rows that fail to be stored.
func (svc *Service) Import(ctx context.Context, semesterID string, rows []ExtractedRow) (ImportReport, error) {
	if _, err := svc.semesters.GetSemesterByID(ctx, semesterID); err != nil {
		return ImportReport{}, err
	}
	if svc.maxImportRows > 0 && len(rows) > svc.maxImportRows {
		return ImportReport{}, core.NewValidationError(
			nil,
			core.FieldError{Field: "rows", Error: fmt.Sprintf("cannot import more than %d rows at once", svc.maxImportRows)},
		)
	}

	report := ImportReport{
		SemesterID:        semesterID,
		SubjectsExtracted: len(rows),
		Warnings:          make([]string, 0),
	}
	if len(rows) == 0 {
		report.Warnings = append(report.Warnings, "No subjects to import. Please add the subjects manually.")
		return report, nil
	}

	now := time.Now().UTC()
	for _, row := range rows {
		subj := row.toSubject(semesterID)
		if subj.Credits <= 0 && !subj.IsMandatory {
			report.Warnings = append(report.Warnings, fmt.Sprintf("Skipped %q: credits = 0 (likely a header row).", subj.Code))
			continue
		}

		subj.CreatedAt = now
		subj.UpdatedAt = now
		if _, err := svc.repo.UpdateOrCreateSubject(ctx, subj); err != nil {
			if ctx.Err() != nil {
				return report, errors.Wrap(ctx.Err(), "importing subjects")
			}
			svc.logger.Warn(fmt.Sprintf("could not import subject %q", subj.Code), err)
			report.Warnings = append(report.Warnings, fmt.Sprintf("Could not store %q: %v", subj.Code, err))
			continue
		}
		report.SubjectsStored++
	}

	if report.SubjectsStored > 0 {
		svc.invalidateSummary(ctx, semesterID)
	}
	return report, nil
}
