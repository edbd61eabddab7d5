package marks

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/marksengine/core"
	"github.com/trezcool/marksengine/core/scoring"
	"github.com/trezcool/marksengine/core/semester"
	"github.com/trezcool/marksengine/core/student"
	"github.com/trezcool/marksengine/core/subject"
)

var (
	// errors
	ErrCIENotFound = errors.New("CIE record not found")
	ErrSEENotFound = errors.New("SEE mark not found")
	ErrNoSEE       = errors.New("MC (Mandatory Course) subjects have no SEE")
)

type (
	Repository interface {
		GetCIERecord(ctx context.Context, subjectID string) (CIERecord, error)
		// SaveCIERecord upserts `rec` on its subject and copies rec.IsDetained into the SEE mark
		// of the subject, if any.
		SaveCIERecord(ctx context.Context, rec CIERecord) (CIERecord, error)
		QueryCIERecords(ctx context.Context, subjectIDs ...string) ([]CIERecord, error)

		GetSEEMark(ctx context.Context, subjectID string) (SEEMark, error)
		// SaveSEEMark upserts `mark` on its subject.
		SaveSEEMark(ctx context.Context, mark SEEMark) (SEEMark, error)
		QuerySEEMarks(ctx context.Context, subjectIDs ...string) ([]SEEMark, error)
	}

	SubjectRepository interface {
		GetSubjectByID(ctx context.Context, id string) (subject.Subject, error)
		QuerySubjects(ctx context.Context, semesterID string) ([]subject.Subject, error)
	}

	SemesterRepository interface {
		GetSemesterByID(ctx context.Context, id string) (semester.Semester, error)
		QuerySemesters(ctx context.Context, studentID string) ([]semester.Semester, error)
	}

	StudentRepository interface {
		GetStudentByID(ctx context.Context, id string) (student.Student, error)
	}

	Deps struct {
		Repo      Repository
		Subjects  SubjectRepository
		Semesters SemesterRepository
		Students  StudentRepository
		Cache     core.Cache
		Metrics   core.Metrics
		Logger    core.Logger
		Conf      *core.Config
	}

	Service struct {
		repo      Repository
		subjects  SubjectRepository
		semesters SemesterRepository
		students  StudentRepository
		cache     core.Cache
		metrics   core.Metrics
		logger    core.Logger
		cacheTTL  time.Duration
	}
)

func NewService(deps Deps) *Service {
	return &Service{
		repo:      deps.Repo,
		subjects:  deps.Subjects,
		semesters: deps.Semesters,
		students:  deps.Students,
		cache:     deps.Cache,
		metrics:   deps.Metrics,
		logger:    deps.Logger,
		cacheTTL:  deps.Conf.Redis.TTL,
	}
}

// evaluate runs the scoring engine and records the computation.
func (svc *Service) evaluate(st scoring.SubjectType, raw scoring.RawMarks) (scoring.Evaluation, error) {
	ev, err := scoring.Evaluate(st, raw)
	if err != nil {
		return scoring.Evaluation{}, err
	}
	if svc.metrics != nil {
		svc.metrics.ObserveEvaluation(st.String(), string(ev.Status))
	}
	return ev, nil
}

func (svc *Service) invalidateSummary(ctx context.Context, semesterID string) {
	core.DeleteFromCache(ctx, svc.cache, svc.logger, semester.SummaryCacheKey(semesterID))
}

// SaveCIE computes the CIE of the subject `subjectID` from `in` and stores it.
// The detained flag of an existing SEE mark is kept in sync. `in` must have been validated.
func (svc *Service) SaveCIE(ctx context.Context, subjectID string, in CIEInput) (CIERecord, error) {
	subj, err := svc.subjects.GetSubjectByID(ctx, subjectID)
	if err != nil {
		return CIERecord{}, err
	}

	ev, err := svc.evaluate(subj.Type, in.RawMarks())
	if err != nil {
		return CIERecord{}, errors.Wrap(err, "computing CIE")
	}

	now := time.Now().UTC()
	rec := CIERecord{
		SubjectID: subj.ID,
		CIEResult: ev.CIE,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if rec, err = svc.repo.SaveCIERecord(ctx, rec); err != nil {
		return CIERecord{}, errors.Wrap(err, "saving CIE record")
	}
	svc.invalidateSummary(ctx, subj.SemesterID)
	return rec, nil
}

// GetCIE returns the CIE record of the subject `subjectID`, computed with its current type.
func (svc *Service) GetCIE(ctx context.Context, subjectID string) (CIERecord, error) {
	subj, err := svc.subjects.GetSubjectByID(ctx, subjectID)
	if err != nil {
		return CIERecord{}, err
	}
	return svc.currentCIE(ctx, subj)
}

// currentCIE re-evaluates the stored CIE inputs of `subj`, whose type may have changed since
// they were saved.
func (svc *Service) currentCIE(ctx context.Context, subj subject.Subject) (CIERecord, error) {
	rec, err := svc.repo.GetCIERecord(ctx, subj.ID)
	if err != nil {
		return CIERecord{}, err
	}
	if rec.CIEResult, err = scoring.ComputeCIE(subj.Type, rec.RawMarks()); err != nil {
		return CIERecord{}, errors.Wrap(err, "computing CIE")
	}
	return rec, nil
}

// SaveSEE computes the reduced SEE score of the subject `subjectID` and stores it.
// Mandatory courses have no SEE. `in` must have been validated.
func (svc *Service) SaveSEE(ctx context.Context, subjectID string, in SEEInput) (SEEMark, error) {
	subj, err := svc.subjects.GetSubjectByID(ctx, subjectID)
	if err != nil {
		return SEEMark{}, err
	}
	if !subj.Type.HasSEE() || subj.IsMandatory {
		return SEEMark{}, ErrNoSEE
	}

	detained, err := svc.detained(ctx, subj)
	if err != nil {
		return SEEMark{}, err
	}

	see := scoring.ComputeSEE(scoring.RawMarks{SEERaw: in.RawScored, IsAbsent: in.IsAbsent})
	now := time.Now().UTC()
	mark := SEEMark{
		SubjectID:     subj.ID,
		RawScored:     see.RawScored,
		ReducedScored: see.ReducedScored,
		IsAbsent:      see.IsAbsent,
		IsDetained:    detained,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if mark, err = svc.repo.SaveSEEMark(ctx, mark); err != nil {
		return SEEMark{}, errors.Wrap(err, "saving SEE mark")
	}
	svc.invalidateSummary(ctx, subj.SemesterID)
	return mark, nil
}

// GetSEE returns the SEE mark of the subject `subjectID`, detained per its current CIE.
func (svc *Service) GetSEE(ctx context.Context, subjectID string) (SEEMark, error) {
	subj, err := svc.subjects.GetSubjectByID(ctx, subjectID)
	if err != nil {
		return SEEMark{}, err
	}
	if !subj.Type.HasSEE() || subj.IsMandatory {
		return SEEMark{}, ErrNoSEE
	}

	mark, err := svc.repo.GetSEEMark(ctx, subj.ID)
	if err != nil {
		return SEEMark{}, err
	}
	if mark.IsDetained, err = svc.detained(ctx, subj); err != nil {
		return SEEMark{}, err
	}
	return mark, nil
}

// detained reports whether the current CIE of `subj` detains it. A missing CIE does not.
func (svc *Service) detained(ctx context.Context, subj subject.Subject) (bool, error) {
	cie, err := svc.currentCIE(ctx, subj)
	switch errors.Cause(err) {
	case nil:
		return cie.IsDetained, nil
	case ErrCIENotFound: // not entered yet
		return false, nil
	default:
		return false, errors.Wrap(err, "getting CIE record")
	}
}

// Preview evaluates raw marks without storing anything. Saving the same marks yields the
// same result.
func (svc *Service) Preview(st scoring.SubjectType, raw scoring.RawMarks) (scoring.Evaluation, error) {
	return svc.evaluate(st, raw)
}

// Summary re-evaluates the stored marks of every chosen subject of the semester `semesterID`.
func (svc *Service) Summary(ctx context.Context, semesterID string) (SemesterSummary, error) {
	sem, err := svc.semesters.GetSemesterByID(ctx, semesterID)
	if err != nil {
		return SemesterSummary{}, err
	}
	return svc.summary(ctx, sem)
}

func (svc *Service) summary(ctx context.Context, sem semester.Semester) (SemesterSummary, error) {
	key := semester.SummaryCacheKey(sem.ID)
	var summary SemesterSummary
	if svc.cache != nil {
		found, err := svc.cache.Get(ctx, key, &summary)
		if err != nil {
			svc.logger.Warn("could not read summary from cache", err, map[string]interface{}{"key": key})
		}
		if found && err == nil {
			return summary, nil
		}
	}

	summary, err := svc.computeSummary(ctx, sem)
	if err != nil {
		return SemesterSummary{}, err
	}

	if svc.cache != nil {
		if err = svc.cache.Set(ctx, key, summary, svc.cacheTTL); err != nil {
			svc.logger.Warn("could not cache summary", err, map[string]interface{}{"key": key})
		}
	}
	return summary, nil
}

func (svc *Service) computeSummary(ctx context.Context, sem semester.Semester) (SemesterSummary, error) {
	subjects, err := svc.subjects.QuerySubjects(ctx, sem.ID)
	if err != nil {
		return SemesterSummary{}, errors.Wrap(err, "querying subjects")
	}

	chosen := make([]subject.Subject, 0, len(subjects))
	ids := make([]string, 0, len(subjects))
	for _, subj := range subjects {
		if subj.IsChosen {
			chosen = append(chosen, subj)
			ids = append(ids, subj.ID)
		}
	}

	summary := SemesterSummary{
		SemesterID:     sem.ID,
		SemesterNumber: sem.Number,
		AcademicYear:   sem.AcademicYear,
		Subjects:       make([]SubjectSummary, 0, len(chosen)),
	}
	if len(chosen) == 0 {
		return summary, nil
	}

	cieRecs, err := svc.repo.QueryCIERecords(ctx, ids...)
	if err != nil {
		return SemesterSummary{}, errors.Wrap(err, "querying CIE records")
	}
	seeMarks, err := svc.repo.QuerySEEMarks(ctx, ids...)
	if err != nil {
		return SemesterSummary{}, errors.Wrap(err, "querying SEE marks")
	}
	cieBySubject := make(map[string]CIERecord, len(cieRecs))
	for _, rec := range cieRecs {
		cieBySubject[rec.SubjectID] = rec
	}
	seeBySubject := make(map[string]SEEMark, len(seeMarks))
	for _, mark := range seeMarks {
		seeBySubject[mark.SubjectID] = mark
	}

	for _, subj := range chosen {
		raw := cieBySubject[subj.ID].RawMarks()
		if mark, ok := seeBySubject[subj.ID]; ok {
			raw.SEERaw = mark.RawScored
			raw.IsAbsent = mark.IsAbsent
		}

		ev, err := svc.evaluate(subj.Type, raw)
		if err != nil {
			return SemesterSummary{}, errors.Wrapf(err, "evaluating subject %s", subj.Code)
		}

		item := SubjectSummary{
			SubjectID:   subj.ID,
			SubjectCode: subj.Code,
			SubjectName: subj.Name,
			SubjectType: subj.Type,
			Credits:     subj.Credits,
			IsMandatory: subj.IsMandatory,
			CIEResult:   ev.CIE,
			Status:      ev.Status,
			Total:       ev.Total,
		}
		if ev.SEE != nil {
			item.SEERaw = ev.SEE.RawScored
			item.SEEReduced = ev.SEE.ReducedScored
			item.IsAbsent = ev.SEE.IsAbsent
		}
		summary.Subjects = append(summary.Subjects, item)
	}
	return summary, nil
}

// Export returns the student `studentID` with the marks summary of each of their semesters.
func (svc *Service) Export(ctx context.Context, studentID string) (StudentExport, error) {
	std, err := svc.students.GetStudentByID(ctx, studentID)
	if err != nil {
		return StudentExport{}, err
	}
	sems, err := svc.semesters.QuerySemesters(ctx, std.ID)
	if err != nil {
		return StudentExport{}, errors.Wrap(err, "querying semesters")
	}

	export := StudentExport{
		Student:   std,
		Semesters: make([]SemesterSummary, 0, len(sems)),
	}
	for _, sem := range sems {
		summary, err := svc.summary(ctx, sem)
		if err != nil {
			return StudentExport{}, err
		}
		export.Semesters = append(export.Semesters, summary)
	}
	return export, nil
}
