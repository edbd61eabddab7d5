package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/marksengine/core/scoring"
	"github.com/trezcool/marksengine/core/subject"
)

const subjectColumns = `id, semester_id, subject_code, subject_name, subject_type, credits,
	ltp_hours, is_mandatory, option_group, is_chosen, created_at, updated_at`

type subjectRow struct {
	ID          string      `db:"id"`
	SemesterID  string      `db:"semester_id"`
	Code        string      `db:"subject_code"`
	Name        string      `db:"subject_name"`
	Type        string      `db:"subject_type"`
	Credits     float64     `db:"credits"`
	LTPHours    null.String `db:"ltp_hours"`
	IsMandatory bool        `db:"is_mandatory"`
	OptionGroup null.String `db:"option_group"`
	IsChosen    bool        `db:"is_chosen"`
	CreatedAt   time.Time   `db:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at"`
}

func newSubjectRow(subj subject.Subject) subjectRow {
	return subjectRow{
		ID:          subj.ID,
		SemesterID:  subj.SemesterID,
		Code:        subj.Code,
		Name:        subj.Name,
		Type:        string(subj.Type),
		Credits:     subj.Credits,
		LTPHours:    null.NewString(subj.LTPHours, subj.LTPHours != ""),
		IsMandatory: subj.IsMandatory,
		OptionGroup: null.NewString(subj.OptionGroup, subj.OptionGroup != ""),
		IsChosen:    subj.IsChosen,
		CreatedAt:   subj.CreatedAt.UTC(),
		UpdatedAt:   subj.UpdatedAt.UTC(),
	}
}

func (row subjectRow) toSubject() subject.Subject {
	return subject.Subject{
		ID:          row.ID,
		SemesterID:  row.SemesterID,
		Code:        row.Code,
		Name:        row.Name,
		Type:        scoring.SubjectType(row.Type),
		Credits:     row.Credits,
		LTPHours:    row.LTPHours.String,
		IsMandatory: row.IsMandatory,
		OptionGroup: row.OptionGroup.String,
		IsChosen:    row.IsChosen,
		CreatedAt:   row.CreatedAt.UTC(),
		UpdatedAt:   row.UpdatedAt.UTC(),
	}
}

type subjectRepository struct {
	db *sqlx.DB
}

var _ subject.Repository = (*subjectRepository)(nil) // interface compliance check

func NewSubjectRepository(db *sqlx.DB) subject.Repository {
	return &subjectRepository{db: db}
}

func (repo *subjectRepository) CheckCodeUniqueness(ctx context.Context, semesterID, code string, excludedIDs ...string) error {
	if !validID(semesterID) {
		return nil
	}
	var ids []string
	q := "SELECT id FROM subjects WHERE semester_id = $1 AND subject_code = $2"
	if err := repo.db.SelectContext(ctx, &ids, q, semesterID, code); err != nil {
		return errors.Wrap(err, "checking subject code uniqueness")
	}

outer:
	for _, id := range ids {
		for _, excluded := range excludedIDs {
			if id == excluded {
				continue outer
			}
		}
		return subject.ErrCodeExists
	}
	return nil
}

func (repo *subjectRepository) CreateSubject(ctx context.Context, subj subject.Subject) (subject.Subject, error) {
	subj.ID = newID()
	row := newSubjectRow(subj)
	q := `INSERT INTO subjects (` + subjectColumns + `)
		VALUES (:id, :semester_id, :subject_code, :subject_name, :subject_type, :credits,
			:ltp_hours, :is_mandatory, :option_group, :is_chosen, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, row); err != nil {
		if isUniqueViolation(err) {
			return subject.Subject{}, subject.ErrCodeExists
		}
		return subject.Subject{}, errors.Wrap(err, "inserting subject")
	}
	return row.toSubject(), nil
}

func (repo *subjectRepository) QuerySubjects(ctx context.Context, semesterID string) ([]subject.Subject, error) {
	if !validID(semesterID) {
		return []subject.Subject{}, nil
	}
	var rows []subjectRow
	q := "SELECT " + subjectColumns + " FROM subjects WHERE semester_id = $1 ORDER BY subject_code"
	if err := repo.db.SelectContext(ctx, &rows, q, semesterID); err != nil {
		return nil, errors.Wrap(err, "querying subjects")
	}
	subjects := make([]subject.Subject, 0, len(rows))
	for _, row := range rows {
		subjects = append(subjects, row.toSubject())
	}
	return subjects, nil
}

func (repo *subjectRepository) GetSubjectByID(ctx context.Context, id string) (subject.Subject, error) {
	if !validID(id) {
		return subject.Subject{}, subject.ErrNotFound
	}
	var row subjectRow
	q := "SELECT " + subjectColumns + " FROM subjects WHERE id = $1"
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		return subject.Subject{}, trapNoRowsErr(err, subject.ErrNotFound, "finding subject by ID")
	}
	return row.toSubject(), nil
}

func (repo *subjectRepository) UpdateSubject(ctx context.Context, subj subject.Subject) (subject.Subject, error) {
	if !validID(subj.ID) {
		return subject.Subject{}, subject.ErrNotFound
	}
	var row subjectRow
	q := `UPDATE subjects SET subject_name = :subject_name, subject_type = :subject_type, credits = :credits,
			ltp_hours = :ltp_hours, is_mandatory = :is_mandatory, option_group = :option_group,
			is_chosen = :is_chosen, updated_at = :updated_at
		WHERE id = :id
		RETURNING ` + subjectColumns
	stmt, err := repo.db.PrepareNamedContext(ctx, q)
	if err != nil {
		return subject.Subject{}, errors.Wrap(err, "preparing subject update")
	}
	defer func() { _ = stmt.Close() }()

	if err = stmt.GetContext(ctx, &row, newSubjectRow(subj)); err != nil {
		return subject.Subject{}, trapNoRowsErr(err, subject.ErrNotFound, "updating subject")
	}
	return row.toSubject(), nil
}

func (repo *subjectRepository) UpdateOrCreateSubject(ctx context.Context, subj subject.Subject) (subject.Subject, error) {
	subj.ID = newID()
	var row subjectRow
	q := `INSERT INTO subjects (` + subjectColumns + `)
		VALUES (:id, :semester_id, :subject_code, :subject_name, :subject_type, :credits,
			:ltp_hours, :is_mandatory, :option_group, :is_chosen, :created_at, :updated_at)
		ON CONFLICT (semester_id, subject_code) DO UPDATE SET
			subject_name = EXCLUDED.subject_name, subject_type = EXCLUDED.subject_type,
			credits = EXCLUDED.credits, ltp_hours = EXCLUDED.ltp_hours,
			is_mandatory = EXCLUDED.is_mandatory, option_group = EXCLUDED.option_group,
			is_chosen = EXCLUDED.is_chosen, updated_at = EXCLUDED.updated_at
		RETURNING ` + subjectColumns
	stmt, err := repo.db.PrepareNamedContext(ctx, q)
	if err != nil {
		return subject.Subject{}, errors.Wrap(err, "preparing subject upsert")
	}
	defer func() { _ = stmt.Close() }()

	if err = stmt.GetContext(ctx, &row, newSubjectRow(subj)); err != nil {
		return subject.Subject{}, errors.Wrap(err, "upserting subject")
	}
	return row.toSubject(), nil
}

func (repo *subjectRepository) DeleteSubjectByID(ctx context.Context, id string) error {
	if !validID(id) {
		return subject.ErrNotFound
	}
	res, err := repo.db.ExecContext(ctx, "DELETE FROM subjects WHERE id = $1", id)
	if err != nil {
		return errors.Wrap(err, "deleting subject")
	}
	return checkDeleted(res, subject.ErrNotFound)
}
