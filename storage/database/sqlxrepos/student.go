package sqlxrepos

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/marksengine/core"
	"github.com/trezcool/marksengine/core/student"
)

const studentColumns = "id, name, usn, branch, scheme, created_at, updated_at"

var studentOrderColumns = map[string]string{
	"name":       "name",
	"usn":        "usn",
	"branch":     "branch",
	"created_at": "created_at",
}

type studentRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	USN       string    `db:"usn"`
	Branch    string    `db:"branch"`
	Scheme    string    `db:"scheme"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (row studentRow) toStudent() student.Student {
	return student.Student{
		ID:        row.ID,
		Name:      row.Name,
		USN:       row.USN,
		Branch:    row.Branch,
		Scheme:    row.Scheme,
		CreatedAt: row.CreatedAt.UTC(),
		UpdatedAt: row.UpdatedAt.UTC(),
	}
}

type studentRepository struct {
	db *sqlx.DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *sqlx.DB) student.Repository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) CheckUSNUniqueness(ctx context.Context, usn string) error {
	var found bool
	q := "SELECT EXISTS (SELECT 1 FROM students WHERE usn = $1)"
	if err := repo.db.GetContext(ctx, &found, q, usn); err != nil {
		return errors.Wrap(err, "checking USN uniqueness")
	}
	if found {
		return student.ErrUSNExists
	}
	return nil
}

func (repo *studentRepository) CreateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	std.ID = newID()
	row := studentRow{
		ID:        std.ID,
		Name:      std.Name,
		USN:       std.USN,
		Branch:    std.Branch,
		Scheme:    std.Scheme,
		CreatedAt: std.CreatedAt.UTC(),
		UpdatedAt: std.UpdatedAt.UTC(),
	}
	q := `INSERT INTO students (` + studentColumns + `)
		VALUES (:id, :name, :usn, :branch, :scheme, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, row); err != nil {
		if isUniqueViolation(err) {
			return student.Student{}, student.ErrUSNExists
		}
		return student.Student{}, errors.Wrap(err, "inserting student")
	}
	return row.toStudent(), nil
}

func (repo *studentRepository) QueryStudents(ctx context.Context, filter *student.QueryFilter, ordering []core.DBOrdering) ([]student.Student, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter != nil {
		// students with Name or USN matching the search keyword
		if filter.Search != "" {
			args = append(args, "%"+filter.Search+"%")
			where = append(where, fmt.Sprintf("(name ILIKE $%d OR usn ILIKE $%d)", len(args), len(args)))
		}
		if filter.Branch != "" {
			args = append(args, filter.Branch)
			where = append(where, fmt.Sprintf("branch ILIKE $%d", len(args)))
		}
	}

	q := "SELECT " + studentColumns + " FROM students"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}

	orderList := make([]string, 0, len(ordering)+1)
	for _, ord := range ordering {
		if col, ok := studentOrderColumns[ord.Field]; ok {
			orderList = append(orderList, core.DBOrdering{Field: col, Ascending: ord.Ascending}.String())
		}
	}
	if len(orderList) == 0 {
		orderList = append(orderList, "created_at DESC")
	}
	q += " ORDER BY " + strings.Join(orderList, ", ")

	var rows []studentRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	students := make([]student.Student, 0, len(rows))
	for _, row := range rows {
		students = append(students, row.toStudent())
	}
	return students, nil
}

func (repo *studentRepository) GetStudentByID(ctx context.Context, id string) (student.Student, error) {
	if !validID(id) {
		return student.Student{}, student.ErrNotFound
	}
	var row studentRow
	q := "SELECT " + studentColumns + " FROM students WHERE id = $1"
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		return student.Student{}, trapNoRowsErr(err, student.ErrNotFound, "finding student by ID")
	}
	return row.toStudent(), nil
}

func (repo *studentRepository) DeleteStudentByID(ctx context.Context, id string) error {
	if !validID(id) {
		return student.ErrNotFound
	}
	res, err := repo.db.ExecContext(ctx, "DELETE FROM students WHERE id = $1", id)
	if err != nil {
		return errors.Wrap(err, "deleting student")
	}
	return checkDeleted(res, student.ErrNotFound)
}
