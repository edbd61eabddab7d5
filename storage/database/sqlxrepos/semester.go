package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/marksengine/core/semester"
)

const semesterColumns = "id, student_id, semester_number, academic_year, created_at"

type semesterRow struct {
	ID           string    `db:"id"`
	StudentID    string    `db:"student_id"`
	Number       int       `db:"semester_number"`
	AcademicYear string    `db:"academic_year"`
	CreatedAt    time.Time `db:"created_at"`
}

func (row semesterRow) toSemester() semester.Semester {
	return semester.Semester{
		ID:           row.ID,
		StudentID:    row.StudentID,
		Number:       row.Number,
		AcademicYear: row.AcademicYear,
		CreatedAt:    row.CreatedAt.UTC(),
	}
}

type semesterRepository struct {
	db *sqlx.DB
}

var _ semester.Repository = (*semesterRepository)(nil) // interface compliance check

func NewSemesterRepository(db *sqlx.DB) semester.Repository {
	return &semesterRepository{db: db}
}

func (repo *semesterRepository) CheckNumberUniqueness(ctx context.Context, studentID string, number int) error {
	if !validID(studentID) {
		return nil
	}
	var found bool
	q := "SELECT EXISTS (SELECT 1 FROM semesters WHERE student_id = $1 AND semester_number = $2)"
	if err := repo.db.GetContext(ctx, &found, q, studentID, number); err != nil {
		return errors.Wrap(err, "checking semester uniqueness")
	}
	if found {
		return semester.ErrNumberExists
	}
	return nil
}

func (repo *semesterRepository) CreateSemester(ctx context.Context, sem semester.Semester) (semester.Semester, error) {
	row := semesterRow{
		ID:           newID(),
		StudentID:    sem.StudentID,
		Number:       sem.Number,
		AcademicYear: sem.AcademicYear,
		CreatedAt:    sem.CreatedAt.UTC(),
	}
	q := `INSERT INTO semesters (` + semesterColumns + `)
		VALUES (:id, :student_id, :semester_number, :academic_year, :created_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, row); err != nil {
		if isUniqueViolation(err) {
			return semester.Semester{}, semester.ErrNumberExists
		}
		return semester.Semester{}, errors.Wrap(err, "inserting semester")
	}
	return row.toSemester(), nil
}

func (repo *semesterRepository) QuerySemesters(ctx context.Context, studentID string) ([]semester.Semester, error) {
	if !validID(studentID) {
		return []semester.Semester{}, nil
	}
	var rows []semesterRow
	q := "SELECT " + semesterColumns + " FROM semesters WHERE student_id = $1 ORDER BY semester_number"
	if err := repo.db.SelectContext(ctx, &rows, q, studentID); err != nil {
		return nil, errors.Wrap(err, "querying semesters")
	}
	sems := make([]semester.Semester, 0, len(rows))
	for _, row := range rows {
		sems = append(sems, row.toSemester())
	}
	return sems, nil
}

func (repo *semesterRepository) GetSemesterByID(ctx context.Context, id string) (semester.Semester, error) {
	if !validID(id) {
		return semester.Semester{}, semester.ErrNotFound
	}
	var row semesterRow
	q := "SELECT " + semesterColumns + " FROM semesters WHERE id = $1"
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		return semester.Semester{}, trapNoRowsErr(err, semester.ErrNotFound, "finding semester by ID")
	}
	return row.toSemester(), nil
}

func (repo *semesterRepository) DeleteSemester(ctx context.Context, studentID, id string) error {
	if !validID(studentID) || !validID(id) {
		return semester.ErrNotFound
	}
	res, err := repo.db.ExecContext(ctx, "DELETE FROM semesters WHERE id = $1 AND student_id = $2", id, studentID)
	if err != nil {
		return errors.Wrap(err, "deleting semester")
	}
	return checkDeleted(res, semester.ErrNotFound)
}
