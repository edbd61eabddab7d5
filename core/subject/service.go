package subject

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/marksengine/core"
	"github.com/trezcool/marksengine/core/semester"
)

var (
	// errors
	ErrNotFound   = errors.New("subject not found")
	ErrCodeExists = errors.New("a subject with this code already exists in this semester")
)

type (
	Repository interface {
		CheckCodeUniqueness(ctx context.Context, semesterID, code string, excludedIDs ...string) error
		CreateSubject(ctx context.Context, subj Subject) (Subject, error)
		// QuerySubjects returns the subjects of a semester ordered by code.
		QuerySubjects(ctx context.Context, semesterID string) ([]Subject, error)
		GetSubjectByID(ctx context.Context, id string) (Subject, error)
		UpdateSubject(ctx context.Context, subj Subject) (Subject, error)
		// UpdateOrCreateSubject upserts `subj` on (semester_id, subject_code).
		UpdateOrCreateSubject(ctx context.Context, subj Subject) (Subject, error)
		// DeleteSubjectByID also deletes the marks of the subject.
		DeleteSubjectByID(ctx context.Context, id string) error
	}

	// SemesterFinder looks up the semester a subject belongs to.
	SemesterFinder interface {
		GetSemesterByID(ctx context.Context, id string) (semester.Semester, error)
	}

	Service struct {
		repo          Repository
		semesters     SemesterFinder
		cache         core.Cache
		logger        core.Logger
		maxImportRows int
	}
)

func NewService(repo Repository, semesters SemesterFinder, cache core.Cache, logger core.Logger, conf *core.Config) *Service {
	return &Service{
		repo:          repo,
		semesters:     semesters,
		cache:         cache,
		logger:        logger,
		maxImportRows: conf.Import.MaxRows,
	}
}

func (svc *Service) checkUniqueness(ctx context.Context, semesterID, code string, excludedIDs ...string) error {
	if err := svc.repo.CheckCodeUniqueness(ctx, semesterID, code, excludedIDs...); err != nil {
		if errors.Cause(err) == ErrCodeExists {
			return core.NewValidationError(err, core.FieldError{Field: "subject_code", Error: err.Error()})
		}
		return errors.Wrap(err, "checking subject code uniqueness")
	}
	return nil
}

func (svc *Service) invalidateSummary(ctx context.Context, semesterID string) {
	core.DeleteFromCache(ctx, svc.cache, svc.logger, semester.SummaryCacheKey(semesterID))
}

// Create adds a Subject to the semester `semesterID`. `ns` must have been validated.
func (svc *Service) Create(ctx context.Context, semesterID string, ns NewSubject) (Subject, error) {
	if _, err := svc.semesters.GetSemesterByID(ctx, semesterID); err != nil {
		return Subject{}, err
	}
	if err := svc.checkUniqueness(ctx, semesterID, ns.Code); err != nil {
		return Subject{}, err
	}

	isChosen := true
	if ns.IsChosen != nil {
		isChosen = *ns.IsChosen
	}
	now := time.Now().UTC()
	subj := Subject{
		SemesterID:  semesterID,
		Code:        ns.Code,
		Name:        ns.Name,
		Type:        ns.Type,
		Credits:     ns.Credits,
		LTPHours:    ns.LTPHours,
		IsMandatory: ns.IsMandatory || ns.Type.IsMandatory(),
		OptionGroup: ns.OptionGroup,
		IsChosen:    isChosen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	subj, err := svc.repo.CreateSubject(ctx, subj)
	if err != nil {
		return Subject{}, errors.Wrap(err, "creating subject")
	}
	svc.invalidateSummary(ctx, semesterID)
	return subj, nil
}

func (svc *Service) ListBySemester(ctx context.Context, semesterID string) ([]Subject, error) {
	if _, err := svc.semesters.GetSemesterByID(ctx, semesterID); err != nil {
		return nil, err
	}
	return svc.repo.QuerySubjects(ctx, semesterID)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Subject, error) {
	return svc.repo.GetSubjectByID(ctx, id)
}

// Update applies the set fields of `us` to the subject `id`. `us` must have been validated.
// Mandatory courses always stay mandatory.
func (svc *Service) Update(ctx context.Context, id string, us UpdateSubject) (Subject, error) {
	subj, err := svc.repo.GetSubjectByID(ctx, id)
	if err != nil {
		return Subject{}, err
	}

	subj = us.apply(subj)
	subj.UpdatedAt = time.Now().UTC()
	if subj, err = svc.repo.UpdateSubject(ctx, subj); err != nil {
		return Subject{}, errors.Wrap(err, "updating subject")
	}
	svc.invalidateSummary(ctx, subj.SemesterID)
	return subj, nil
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	subj, err := svc.repo.GetSubjectByID(ctx, id)
	if err != nil {
		return err
	}
	if err = svc.repo.DeleteSubjectByID(ctx, id); err != nil {
		return err
	}
	svc.invalidateSummary(ctx, subj.SemesterID)
	return nil
}
