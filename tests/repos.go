package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/marksengine/core"
	"github.com/trezcool/marksengine/core/marks"
	"github.com/trezcool/marksengine/core/scoring"
	"github.com/trezcool/marksengine/core/semester"
	"github.com/trezcool/marksengine/core/student"
	"github.com/trezcool/marksengine/core/subject"
)

// Repos is a full set of record repositories over the same store.
type Repos struct {
	Students  student.Repository
	Semesters semester.Repository
	Subjects  subject.Repository
	Marks     marks.Repository
}

// TestRepositories runs the behaviour every repository implementation must share.
// newRepos must return repositories over an empty store.
func TestRepositories(t *testing.T, newRepos func(t *testing.T) Repos) {
	t.Run("students", func(t *testing.T) { testStudentRepository(t, newRepos(t)) })
	t.Run("semesters", func(t *testing.T) { testSemesterRepository(t, newRepos(t)) })
	t.Run("subjects", func(t *testing.T) { testSubjectRepository(t, newRepos(t)) })
	t.Run("marks", func(t *testing.T) { testMarksRepository(t, newRepos(t)) })
	t.Run("cascade", func(t *testing.T) { testCascade(t, newRepos(t)) })
}

func ids(objs interface{}) []string {
	var res []string
	switch list := objs.(type) {
	case []student.Student:
		for _, o := range list {
			res = append(res, o.ID)
		}
	case []semester.Semester:
		for _, o := range list {
			res = append(res, o.ID)
		}
	case []subject.Subject:
		for _, o := range list {
			res = append(res, o.ID)
		}
	}
	return res
}

func testStudentRepository(t *testing.T, r Repos) {
	ctx := context.Background()
	now := time.Now()
	asha := CreateStudent(t, r.Students, "Asha", "1AB23CS001", now.Add(-time.Hour))
	ravi := CreateStudent(t, r.Students, "Ravi", "1AB23EC002", now)

	assert.NoError(t, r.Students.CheckUSNUniqueness(ctx, "1AB23CS009"))
	assert.Equal(t, student.ErrUSNExists, errors.Cause(r.Students.CheckUSNUniqueness(ctx, asha.USN)))
	_, err := r.Students.CreateStudent(ctx, student.Student{Name: "Copy", USN: asha.USN, CreatedAt: now, UpdatedAt: now})
	assert.Equal(t, student.ErrUSNExists, errors.Cause(err))

	got, err := r.Students.GetStudentByID(ctx, asha.ID)
	require.NoError(t, err)
	assert.Equal(t, asha.USN, got.USN)
	_, err = r.Students.GetStudentByID(ctx, "lol")
	assert.Equal(t, student.ErrNotFound, errors.Cause(err))

	students, err := r.Students.QueryStudents(ctx, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{ravi.ID, asha.ID}, ids(students), "newest first")

	students, err = r.Students.QueryStudents(ctx, nil, []core.DBOrdering{{Field: "name", Ascending: true}})
	require.NoError(t, err)
	assert.Equal(t, []string{asha.ID, ravi.ID}, ids(students))

	students, err = r.Students.QueryStudents(ctx, &student.QueryFilter{Search: "ec0"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{ravi.ID}, ids(students))

	require.NoError(t, r.Students.DeleteStudentByID(ctx, asha.ID))
	assert.Equal(t, student.ErrNotFound, errors.Cause(r.Students.DeleteStudentByID(ctx, asha.ID)))
}

func testSemesterRepository(t *testing.T, r Repos) {
	ctx := context.Background()
	std := CreateStudent(t, r.Students, "Asha", "1AB23CS001")
	other := CreateStudent(t, r.Students, "Ravi", "1AB23CS002")
	sem5 := CreateSemester(t, r.Semesters, std.ID, 5)
	sem3 := CreateSemester(t, r.Semesters, std.ID, 3)

	assert.NoError(t, r.Semesters.CheckNumberUniqueness(ctx, other.ID, 3))
	assert.Equal(t, semester.ErrNumberExists, errors.Cause(r.Semesters.CheckNumberUniqueness(ctx, std.ID, 3)))

	sems, err := r.Semesters.QuerySemesters(ctx, std.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{sem3.ID, sem5.ID}, ids(sems))

	got, err := r.Semesters.GetSemesterByID(ctx, sem3.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Number)
	assert.Equal(t, std.ID, got.StudentID)

	assert.Equal(t, semester.ErrNotFound, errors.Cause(r.Semesters.DeleteSemester(ctx, other.ID, sem3.ID)))
	require.NoError(t, r.Semesters.DeleteSemester(ctx, std.ID, sem3.ID))
	_, err = r.Semesters.GetSemesterByID(ctx, sem3.ID)
	assert.Equal(t, semester.ErrNotFound, errors.Cause(err))
}

func testSubjectRepository(t *testing.T, r Repos) {
	ctx := context.Background()
	std := CreateStudent(t, r.Students, "Asha", "1AB23CS001")
	sem := CreateSemester(t, r.Semesters, std.ID, 3)
	ds := CreateSubject(t, r.Subjects, sem.ID, "BCS302", scoring.PCC, 4)
	mc := CreateSubject(t, r.Subjects, sem.ID, "BSCK307", scoring.MC, 0)

	assert.NoError(t, r.Subjects.CheckCodeUniqueness(ctx, sem.ID, "BCS303"))
	assert.NoError(t, r.Subjects.CheckCodeUniqueness(ctx, sem.ID, ds.Code, ds.ID))
	assert.Equal(t, subject.ErrCodeExists, errors.Cause(r.Subjects.CheckCodeUniqueness(ctx, sem.ID, ds.Code)))

	ds.Name = "Data Structures"
	ds.OptionGroup = "PE-1"
	ds.IsChosen = false
	updated, err := r.Subjects.UpdateSubject(ctx, ds)
	require.NoError(t, err)
	assert.Equal(t, "Data Structures", updated.Name)
	assert.Equal(t, "PE-1", updated.OptionGroup)
	assert.False(t, updated.IsChosen)

	now := time.Now().UTC()
	upserted, err := r.Subjects.UpdateOrCreateSubject(ctx, subject.Subject{
		SemesterID: sem.ID, Code: ds.Code, Name: "DS", Type: scoring.IPCC, Credits: 3, IsChosen: true,
		CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)
	assert.Equal(t, ds.ID, upserted.ID)
	assert.Equal(t, scoring.IPCC, upserted.Type)

	created, err := r.Subjects.UpdateOrCreateSubject(ctx, subject.Subject{
		SemesterID: sem.ID, Code: "BCS301", Name: "Maths", Type: scoring.PCC, Credits: 4, IsChosen: true,
		CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)
	assert.NotEqual(t, ds.ID, created.ID)

	subjects, err := r.Subjects.QuerySubjects(ctx, sem.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{created.ID, ds.ID, mc.ID}, ids(subjects), "ordered by code")

	require.NoError(t, r.Subjects.DeleteSubjectByID(ctx, mc.ID))
	_, err = r.Subjects.GetSubjectByID(ctx, mc.ID)
	assert.Equal(t, subject.ErrNotFound, errors.Cause(err))
	assert.Equal(t, subject.ErrNotFound, errors.Cause(r.Subjects.DeleteSubjectByID(ctx, mc.ID)))
}

func testMarksRepository(t *testing.T, r Repos) {
	ctx := context.Background()
	std := CreateStudent(t, r.Students, "Asha", "1AB23CS001")
	sem := CreateSemester(t, r.Semesters, std.ID, 3)
	ds := CreateSubject(t, r.Subjects, sem.ID, "BCS301", scoring.PCC, 4)
	other := CreateSubject(t, r.Subjects, sem.ID, "BCS303", scoring.PCC, 4)
	now := time.Now().UTC()

	_, err := r.Marks.GetCIERecord(ctx, ds.ID)
	assert.Equal(t, marks.ErrCIENotFound, errors.Cause(err))
	_, err = r.Marks.GetSEEMark(ctx, ds.ID)
	assert.Equal(t, marks.ErrSEENotFound, errors.Cause(err))

	see, err := r.Marks.SaveSEEMark(ctx, marks.SEEMark{
		SubjectID: ds.ID, RawScored: Float(81), ReducedScored: Float(40.5), CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)

	cie, err := r.Marks.SaveCIERecord(ctx, marks.CIERecord{
		SubjectID: ds.ID,
		CIEResult: scoring.CIEResult{IATest1Raw: Float(10), FinalCIE: Float(5), IsDetained: true},
		CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)
	got, err := r.Marks.GetCIERecord(ctx, ds.ID)
	require.NoError(t, err)
	assert.Equal(t, cie.ID, got.ID)
	assert.Equal(t, 5.0, *got.FinalCIE)
	assert.Nil(t, got.IATest2Raw)

	mark, err := r.Marks.GetSEEMark(ctx, ds.ID)
	require.NoError(t, err)
	assert.Equal(t, see.ID, mark.ID)
	assert.True(t, mark.IsDetained, "detention copied into the SEE mark")

	again, err := r.Marks.SaveCIERecord(ctx, marks.CIERecord{
		SubjectID: ds.ID,
		CIEResult: scoring.CIEResult{FinalCIE: Float(43.5)},
		CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)
	assert.Equal(t, cie.ID, again.ID, "upserted on subject")
	mark, err = r.Marks.GetSEEMark(ctx, ds.ID)
	require.NoError(t, err)
	assert.False(t, mark.IsDetained)

	absent, err := r.Marks.SaveSEEMark(ctx, marks.SEEMark{SubjectID: ds.ID, IsAbsent: true, CreatedAt: now, UpdatedAt: now})
	require.NoError(t, err)
	assert.Equal(t, see.ID, absent.ID)
	mark, err = r.Marks.GetSEEMark(ctx, ds.ID)
	require.NoError(t, err)
	assert.True(t, mark.IsAbsent)
	assert.Nil(t, mark.RawScored)

	recs, err := r.Marks.QueryCIERecords(ctx, ds.ID, other.ID, "lol")
	require.NoError(t, err)
	assert.Len(t, recs, 1)
	seeMarks, err := r.Marks.QuerySEEMarks(ctx, ds.ID, other.ID)
	require.NoError(t, err)
	assert.Len(t, seeMarks, 1)
	recs, err = r.Marks.QueryCIERecords(ctx)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func testCascade(t *testing.T, r Repos) {
	ctx := context.Background()
	std := CreateStudent(t, r.Students, "Asha", "1AB23CS001")
	sem := CreateSemester(t, r.Semesters, std.ID, 3)
	subj := CreateSubject(t, r.Subjects, sem.ID, "BCS301", scoring.PCC, 4)
	now := time.Now().UTC()
	_, err := r.Marks.SaveCIERecord(ctx, marks.CIERecord{SubjectID: subj.ID, CreatedAt: now, UpdatedAt: now})
	require.NoError(t, err)

	require.NoError(t, r.Students.DeleteStudentByID(ctx, std.ID))

	_, err = r.Semesters.GetSemesterByID(ctx, sem.ID)
	assert.Equal(t, semester.ErrNotFound, errors.Cause(err))
	_, err = r.Subjects.GetSubjectByID(ctx, subj.ID)
	assert.Equal(t, subject.ErrNotFound, errors.Cause(err))
	_, err = r.Marks.GetCIERecord(ctx, subj.ID)
	assert.Equal(t, marks.ErrCIENotFound, errors.Cause(err))
}
