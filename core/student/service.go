package student

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/marksengine/core"
)

var (
	// errors
	ErrNotFound  = errors.New("student not found")
	ErrUSNExists = errors.New("a student with this USN already exists")
)

type (
	Repository interface {
		CheckUSNUniqueness(ctx context.Context, usn string) error
		CreateStudent(ctx context.Context, std Student) (Student, error)
		// QueryStudents applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on one of Student.Name or Student.USN.
		QueryStudents(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Student, error)
		GetStudentByID(ctx context.Context, id string) (Student, error)
		// DeleteStudentByID also deletes the semesters, subjects and marks of the student.
		DeleteStudentByID(ctx context.Context, id string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) checkUniqueness(ctx context.Context, usn string) error {
	if err := svc.repo.CheckUSNUniqueness(ctx, usn); err != nil {
		if errors.Cause(err) == ErrUSNExists {
			return core.NewValidationError(err, core.FieldError{Field: "usn", Error: err.Error()})
		}
		return errors.Wrap(err, "checking USN uniqueness")
	}
	return nil
}

// Create stores a new Student. `ns` must have been validated.
func (svc *Service) Create(ctx context.Context, ns NewStudent) (Student, error) {
	if err := svc.checkUniqueness(ctx, ns.USN); err != nil {
		return Student{}, err
	}

	now := time.Now().UTC()
	std := Student{
		Name:      ns.Name,
		USN:       ns.USN,
		Branch:    ns.Branch,
		Scheme:    ns.Scheme,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateStudent(ctx, std)
}

func (svc *Service) List(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Student, error) {
	if filter != nil {
		filter.Clean()
	}
	return svc.repo.QueryStudents(ctx, filter, CleanOrdering(ordering))
}

func (svc *Service) GetByID(ctx context.Context, id string) (Student, error) {
	return svc.repo.GetStudentByID(ctx, id)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteStudentByID(ctx, id)
}
