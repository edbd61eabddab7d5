package semester

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/marksengine/core"
	"github.com/trezcool/marksengine/core/student"
)

var (
	// errors
	ErrNotFound     = errors.New("semester not found")
	ErrNumberExists = errors.New("this semester already exists for the student")
)

type (
	Repository interface {
		CheckNumberUniqueness(ctx context.Context, studentID string, number int) error
		CreateSemester(ctx context.Context, sem Semester) (Semester, error)
		// QuerySemesters returns the semesters of a student ordered by number.
		QuerySemesters(ctx context.Context, studentID string) ([]Semester, error)
		GetSemesterByID(ctx context.Context, id string) (Semester, error)
		// DeleteSemester also deletes the subjects and marks of the semester.
		DeleteSemester(ctx context.Context, studentID, id string) error
	}

	// StudentFinder looks up the owner of a semester.
	StudentFinder interface {
		GetStudentByID(ctx context.Context, id string) (student.Student, error)
	}

	Service struct {
		repo     Repository
		students StudentFinder
		cache    core.Cache
		logger   core.Logger
	}
)

func NewService(repo Repository, students StudentFinder, cache core.Cache, logger core.Logger) *Service {
	return &Service{repo: repo, students: students, cache: cache, logger: logger}
}

func (svc *Service) checkUniqueness(ctx context.Context, studentID string, number int) error {
	if err := svc.repo.CheckNumberUniqueness(ctx, studentID, number); err != nil {
		if errors.Cause(err) == ErrNumberExists {
			return core.NewValidationError(err, core.FieldError{Field: "semester_number", Error: err.Error()})
		}
		return errors.Wrap(err, "checking semester uniqueness")
	}
	return nil
}

// Create adds a Semester to the student `studentID`. `ns` must have been validated.
func (svc *Service) Create(ctx context.Context, studentID string, ns NewSemester) (Semester, error) {
	if _, err := svc.students.GetStudentByID(ctx, studentID); err != nil {
		return Semester{}, err
	}
	if err := svc.checkUniqueness(ctx, studentID, ns.Number); err != nil {
		return Semester{}, err
	}

	sem := Semester{
		StudentID:    studentID,
		Number:       ns.Number,
		AcademicYear: ns.AcademicYear,
		CreatedAt:    time.Now().UTC(),
	}
	return svc.repo.CreateSemester(ctx, sem)
}

func (svc *Service) ListByStudent(ctx context.Context, studentID string) ([]Semester, error) {
	if _, err := svc.students.GetStudentByID(ctx, studentID); err != nil {
		return nil, err
	}
	return svc.repo.QuerySemesters(ctx, studentID)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Semester, error) {
	return svc.repo.GetSemesterByID(ctx, id)
}

// Delete removes the semester `id` of the student `studentID`.
func (svc *Service) Delete(ctx context.Context, studentID, id string) error {
	if err := svc.repo.DeleteSemester(ctx, studentID, id); err != nil {
		return err
	}
	core.DeleteFromCache(ctx, svc.cache, svc.logger, SummaryCacheKey(id))
	return nil
}
