package marks_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/marksengine/core/marks"
	"github.com/trezcool/marksengine/core/scoring"
	"github.com/trezcool/marksengine/core/semester"
	"github.com/trezcool/marksengine/core/student"
	"github.com/trezcool/marksengine/core/subject"
	testutil "github.com/trezcool/marksengine/tests"
)

func newSemester(t *testing.T, s *testutil.Services) (student.Student, semester.Semester) {
	t.Helper()
	std := testutil.CreateStudent(t, s.Students, "Asha", "1AB23CS001")
	return std, testutil.CreateSemester(t, s.Semesters, std.ID, 3)
}

func pccInput(ia1, ia2, cce float64) marks.CIEInput {
	return marks.CIEInput{
		IATest1Raw: testutil.Float(ia1),
		IATest2Raw: testutil.Float(ia2),
		CCEMarks:   testutil.Float(cce),
	}
}

func TestService_SaveCIE(t *testing.T) {
	s := testutil.NewServices(t)
	ctx := context.Background()
	_, sem := newSemester(t, s)
	subj := testutil.CreateSubject(t, s.Subjects, sem.ID, "BCS301", scoring.PCC, 4)

	_, err := s.MarksSvc.SaveCIE(ctx, "lol", pccInput(45, 40, 18))
	assert.Equal(t, subject.ErrNotFound, errors.Cause(err))

	rec, err := s.MarksSvc.SaveCIE(ctx, subj.ID, pccInput(45, 40, 18))
	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, subj.ID, rec.SubjectID)
	require.NotNil(t, rec.FinalCIE)
	assert.Equal(t, 43.5, *rec.FinalCIE)
	assert.False(t, rec.IsDetained)

	// re-saving updates the same record
	again, err := s.MarksSvc.SaveCIE(ctx, subj.ID, pccInput(0, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, rec.ID, again.ID)
	assert.Equal(t, 0.0, *again.FinalCIE)
	assert.True(t, again.IsDetained)

	got, err := s.MarksSvc.GetCIE(ctx, subj.ID)
	require.NoError(t, err)
	assert.Equal(t, again, got)
}

func TestService_GetCIE_notEntered(t *testing.T) {
	s := testutil.NewServices(t)
	_, sem := newSemester(t, s)
	subj := testutil.CreateSubject(t, s.Subjects, sem.ID, "BCS301", scoring.PCC, 4)

	_, err := s.MarksSvc.GetCIE(context.Background(), subj.ID)
	assert.Equal(t, marks.ErrCIENotFound, errors.Cause(err))
	_, err = s.MarksSvc.GetSEE(context.Background(), subj.ID)
	assert.Equal(t, marks.ErrSEENotFound, errors.Cause(err))
}

func TestService_SaveSEE(t *testing.T) {
	s := testutil.NewServices(t)
	ctx := context.Background()
	_, sem := newSemester(t, s)
	pcc := testutil.CreateSubject(t, s.Subjects, sem.ID, "BCS301", scoring.PCC, 4)
	mc := testutil.CreateSubject(t, s.Subjects, sem.ID, "BSCK307", scoring.MC, 0)

	_, err := s.MarksSvc.SaveSEE(ctx, mc.ID, marks.SEEInput{RawScored: testutil.Float(80)})
	assert.Equal(t, marks.ErrNoSEE, errors.Cause(err))

	mark, err := s.MarksSvc.SaveSEE(ctx, pcc.ID, marks.SEEInput{RawScored: testutil.Float(81)})
	require.NoError(t, err)
	assert.Equal(t, 81.0, *mark.RawScored)
	assert.Equal(t, 40.5, *mark.ReducedScored)
	assert.False(t, mark.IsDetained)

	absent, err := s.MarksSvc.SaveSEE(ctx, pcc.ID, marks.SEEInput{RawScored: testutil.Float(81), IsAbsent: true})
	require.NoError(t, err)
	assert.Equal(t, mark.ID, absent.ID)
	assert.True(t, absent.IsAbsent)
	assert.Nil(t, absent.RawScored)
	assert.Nil(t, absent.ReducedScored)
}

func TestService_detentionSync(t *testing.T) {
	s := testutil.NewServices(t)
	ctx := context.Background()
	_, sem := newSemester(t, s)
	subj := testutil.CreateSubject(t, s.Subjects, sem.ID, "BCS301", scoring.PCC, 4)

	// SEE entered after a failing CIE copies the detention
	_, err := s.MarksSvc.SaveCIE(ctx, subj.ID, pccInput(0, 0, 0))
	require.NoError(t, err)
	mark, err := s.MarksSvc.SaveSEE(ctx, subj.ID, marks.SEEInput{RawScored: testutil.Float(60)})
	require.NoError(t, err)
	assert.True(t, mark.IsDetained)

	// a passing CIE lifts the detention of the existing SEE
	_, err = s.MarksSvc.SaveCIE(ctx, subj.ID, pccInput(45, 40, 18))
	require.NoError(t, err)
	mark, err = s.MarksSvc.GetSEE(ctx, subj.ID)
	require.NoError(t, err)
	assert.False(t, mark.IsDetained)
}

func TestService_subjectTypeChange(t *testing.T) {
	s := testutil.NewServices(t)
	ctx := context.Background()
	_, sem := newSemester(t, s)
	subj := testutil.CreateSubject(t, s.Subjects, sem.ID, "BCS301", scoring.PCC, 4)

	_, err := s.MarksSvc.SaveCIE(ctx, subj.ID, pccInput(10, 10, 0))
	require.NoError(t, err)
	mark, err := s.MarksSvc.SaveSEE(ctx, subj.ID, marks.SEEInput{RawScored: testutil.Float(80)})
	require.NoError(t, err)
	require.True(t, mark.IsDetained)

	st := scoring.MC
	_, err = s.SubjectSvc.Update(ctx, subj.ID, subject.UpdateSubject{Type: &st})
	require.NoError(t, err)

	rec, err := s.MarksSvc.GetCIE(ctx, subj.ID)
	require.NoError(t, err)
	assert.Nil(t, rec.FinalCIE, "mc only uses the direct CIE marks")
	assert.False(t, rec.IsDetained)
	_, err = s.MarksSvc.GetSEE(ctx, subj.ID)
	assert.Equal(t, marks.ErrNoSEE, errors.Cause(err))

	summary, err := s.MarksSvc.Summary(ctx, sem.ID)
	require.NoError(t, err)
	require.Len(t, summary.Subjects, 1)
	item := summary.Subjects[0]
	assert.Equal(t, rec.CIEResult, item.CIEResult, "stored marks agree with the summary")
	assert.Equal(t, scoring.StatusPending, item.Status)

	// back to pcc: the SEE is enterable again and detention follows the CIE
	st = scoring.PCC
	_, err = s.SubjectSvc.Update(ctx, subj.ID, subject.UpdateSubject{Type: &st})
	require.NoError(t, err)
	mark, err = s.MarksSvc.SaveSEE(ctx, subj.ID, marks.SEEInput{RawScored: testutil.Float(80)})
	require.NoError(t, err)
	assert.True(t, mark.IsDetained)
	mark, err = s.MarksSvc.GetSEE(ctx, subj.ID)
	require.NoError(t, err)
	assert.True(t, mark.IsDetained)
}

func TestService_Preview(t *testing.T) {
	s := testutil.NewServices(t)
	ctx := context.Background()
	_, sem := newSemester(t, s)
	subj := testutil.CreateSubject(t, s.Subjects, sem.ID, "BCS301", scoring.PCC, 4)
	in := pccInput(45, 40, 18)

	ev, err := s.MarksSvc.Preview(scoring.PCC, in.RawMarks())
	require.NoError(t, err)
	rec, err := s.MarksSvc.SaveCIE(ctx, subj.ID, in)
	require.NoError(t, err)
	assert.Equal(t, ev.CIE, rec.CIEResult, "preview matches the stored values")
	assert.Equal(t, scoring.StatusCIEOnly, ev.Status)

	_, err = s.MarksSvc.Preview("lol", in.RawMarks())
	assert.Equal(t, scoring.ErrInvalidSubjectType, errors.Cause(err))
}

func TestService_Summary(t *testing.T) {
	s := testutil.NewServices(t)
	ctx := context.Background()
	_, sem := newSemester(t, s)
	ds := testutil.CreateSubject(t, s.Subjects, sem.ID, "BCS301", scoring.PCC, 4)
	lab := testutil.CreateSubject(t, s.Subjects, sem.ID, "BCSL305", scoring.PCCL, 1)
	mc := testutil.CreateSubject(t, s.Subjects, sem.ID, "BSCK307", scoring.MC, 0)
	ops := testutil.CreateSubject(t, s.Subjects, sem.ID, "BCS303", scoring.PCC, 4)
	elective := testutil.CreateSubject(t, s.Subjects, sem.ID, "BCS515A", scoring.PCC, 3)
	notChosen := false
	_, err := s.SubjectSvc.Update(ctx, elective.ID, subject.UpdateSubject{IsChosen: &notChosen})
	require.NoError(t, err)

	_, err = s.MarksSvc.SaveCIE(ctx, ds.ID, pccInput(45, 40, 18))
	require.NoError(t, err)
	_, err = s.MarksSvc.SaveSEE(ctx, ds.ID, marks.SEEInput{RawScored: testutil.Float(81)})
	require.NoError(t, err)
	_, err = s.MarksSvc.SaveCIE(ctx, mc.ID, marks.CIEInput{DirectCIEMarks: testutil.Float(95)})
	require.NoError(t, err)
	_, err = s.MarksSvc.SaveCIE(ctx, ops.ID, pccInput(40, 40, 18))
	require.NoError(t, err)
	_, err = s.MarksSvc.SaveSEE(ctx, ops.ID, marks.SEEInput{IsAbsent: true})
	require.NoError(t, err)

	_, err = s.MarksSvc.Summary(ctx, "lol")
	assert.Equal(t, semester.ErrNotFound, errors.Cause(err))

	summary, err := s.MarksSvc.Summary(ctx, sem.ID)
	require.NoError(t, err)
	assert.Equal(t, sem.ID, summary.SemesterID)
	assert.Equal(t, 3, summary.SemesterNumber)
	require.Len(t, summary.Subjects, 4, "only chosen subjects")

	statuses := make(map[string]scoring.Status)
	for _, item := range summary.Subjects {
		statuses[item.SubjectCode] = item.Status
	}
	assert.Equal(t, map[string]scoring.Status{
		ds.Code:  scoring.StatusComplete,
		ops.Code:  scoring.StatusAbsent,
		lab.Code: scoring.StatusPending,
		mc.Code:  scoring.StatusComplete,
	}, statuses)

	for _, item := range summary.Subjects {
		if item.SubjectID == ds.ID {
			require.NotNil(t, item.Total)
			assert.Equal(t, 84.0, *item.Total)
			assert.Equal(t, 40.5, *item.SEEReduced)
		}
	}
}

func TestService_Summary_cache(t *testing.T) {
	s := testutil.NewServices(t)
	ctx := context.Background()
	_, sem := newSemester(t, s)
	subj := testutil.CreateSubject(t, s.Subjects, sem.ID, "BCS301", scoring.PCC, 4)

	first, err := s.MarksSvc.Summary(ctx, sem.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Cache.Len())

	var cached marks.SemesterSummary
	found, err := s.Cache.Get(ctx, semester.SummaryCacheKey(sem.ID), &cached)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, first.SemesterID, cached.SemesterID)
	assert.Len(t, cached.Subjects, 1)

	_, err = s.MarksSvc.SaveCIE(ctx, subj.ID, pccInput(45, 40, 18))
	require.NoError(t, err)
	assert.Equal(t, 0, s.Cache.Len(), "invalidated by a save")

	second, err := s.MarksSvc.Summary(ctx, sem.ID)
	require.NoError(t, err)
	assert.Equal(t, scoring.StatusCIEOnly, second.Subjects[0].Status)
}

func TestService_Export(t *testing.T) {
	s := testutil.NewServices(t)
	ctx := context.Background()
	std, sem := newSemester(t, s)
	sem4 := testutil.CreateSemester(t, s.Semesters, std.ID, 4)
	subj := testutil.CreateSubject(t, s.Subjects, sem.ID, "BCS301", scoring.PCC, 4)
	_, err := s.MarksSvc.SaveCIE(ctx, subj.ID, pccInput(45, 40, 18))
	require.NoError(t, err)

	_, err = s.MarksSvc.Export(ctx, "lol")
	assert.Equal(t, student.ErrNotFound, errors.Cause(err))

	export, err := s.MarksSvc.Export(ctx, std.ID)
	require.NoError(t, err)
	assert.Equal(t, std, export.Student)
	require.Len(t, export.Semesters, 2)
	assert.Equal(t, sem.ID, export.Semesters[0].SemesterID)
	assert.Len(t, export.Semesters[0].Subjects, 1)
	assert.Equal(t, sem4.ID, export.Semesters[1].SemesterID)
	assert.Empty(t, export.Semesters[1].Subjects)
}

func TestService_metrics(t *testing.T) {
	s := testutil.NewServices(t)
	_, err := s.MarksSvc.Preview(scoring.MC, scoring.RawMarks{DirectCIEMarks: testutil.Float(95)})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	s.Metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.True(t, strings.Contains(rec.Body.String(), `marks_evaluations_total{status="Complete",subject_type="mc"} 1`))
}
