package echoapi_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/marksengine/core/marks"
	"github.com/trezcool/marksengine/core/scoring"
	"github.com/trezcool/marksengine/core/semester"
	"github.com/trezcool/marksengine/core/student"
	testutil "github.com/trezcool/marksengine/tests"
)

func Test_health(t *testing.T) {
	srv, _ := setup(t)
	runHTTPTests(t, srv, []httpTest{
		{name: "health", path: "/health", wantCode: http.StatusOK, wantData: []byte(`{"status":"ok","version":"test"}`)},
		{name: "unknown route", path: "/lol", wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "Not Found"})},
	})
}

func Test_studentApi_create(t *testing.T) {
	srv, s := setup(t)
	testutil.CreateStudent(t, s.Students, "Asha", "1AB23CS001")

	runHTTPTests(t, srv, []httpTest{
		{
			name: "empty", method: http.MethodPost, path: "/v1/students", body: []byte(`{}`),
			wantCode: http.StatusBadRequest, extra: assertFields("name", "usn", "branch", "scheme"),
		},
		{
			name: "duplicate USN", method: http.MethodPost, path: "/v1/students",
			body:     []byte(`{"name":"Ravi","usn":"1ab23cs001","branch":"CSE","scheme":"2022"}`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"usn": student.ErrUSNExists.Error()}),
		},
		{
			name: "ok", method: http.MethodPost, path: "/v1/students",
			body:     []byte(`{"name":" Ravi ","usn":"1ab23cs002","branch":"CSE","scheme":"2022"}`),
			wantCode: http.StatusCreated,
			extra: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var std student.Student
				decode(t, rec, &std)
				assert.NotEmpty(t, std.ID)
				assert.Equal(t, "Ravi", std.Name)
				assert.Equal(t, "1AB23CS002", std.USN)
			},
		},
	})
}

func Test_studentApi_query(t *testing.T) {
	srv, s := setup(t)
	now := time.Now()
	asha := testutil.CreateStudent(t, s.Students, "Asha", "1AB23CS001", now.Add(-2*time.Hour))
	ravi := testutil.CreateStudent(t, s.Students, "Ravi", "1AB23CS002", now.Add(-time.Hour))
	zoya := testutil.CreateStudent(t, s.Students, "Zoya", "1AB23EC001", now)

	runHTTPTests(t, srv, []httpTest{
		{name: "all", path: "/v1/students", wantCode: http.StatusOK, wantData: marchallList(t, zoya, ravi, asha)},
		{name: "ordering=name", path: "/v1/students?ordering=name", wantCode: http.StatusOK, wantData: marchallList(t, asha, ravi, zoya)},
		{name: "ordering=-usn", path: "/v1/students?ordering=-usn", wantCode: http.StatusOK, wantData: marchallList(t, zoya, ravi, asha)},
		{name: "search=cs", path: "/v1/students?search=cs", wantCode: http.StatusOK, wantData: marchallList(t, ravi, asha)},
		{name: "search=zoy", path: "/v1/students?search=zoy", wantCode: http.StatusOK, wantData: marchallList(t, zoya)},
		{name: "search (unknown)", path: "/v1/students?search=lol", wantCode: http.StatusOK, wantData: marchallList(t)},
	})
}

func Test_studentApi_detail(t *testing.T) {
	srv, s := setup(t)
	std := testutil.CreateStudent(t, s.Students, "Asha", "1AB23CS001")
	notFound := marchallObj(t, httpErr{Error: "not found"})

	runHTTPTests(t, srv, []httpTest{
		{name: "not found", path: "/v1/students/lol", wantCode: http.StatusNotFound, wantData: notFound},
		{name: "retrieve", path: "/v1/students/" + std.ID, wantCode: http.StatusOK, wantData: marchallObj(t, std)},
		{name: "delete", method: http.MethodDelete, path: "/v1/students/" + std.ID, wantCode: http.StatusNoContent},
		{name: "deleted", path: "/v1/students/" + std.ID, wantCode: http.StatusNotFound, wantData: notFound},
		{name: "delete again", method: http.MethodDelete, path: "/v1/students/" + std.ID, wantCode: http.StatusNotFound, wantData: notFound},
	})
}

func Test_studentApi_semesters(t *testing.T) {
	srv, s := setup(t)
	std := testutil.CreateStudent(t, s.Students, "Asha", "1AB23CS001")
	other := testutil.CreateStudent(t, s.Students, "Ravi", "1AB23CS002")
	sem3 := testutil.CreateSemester(t, s.Semesters, std.ID, 3)
	path := "/v1/students/" + std.ID + "/semesters"

	runHTTPTests(t, srv, []httpTest{
		{
			name: "invalid", method: http.MethodPost, path: path, body: []byte(`{"semester_number":13}`),
			wantCode: http.StatusBadRequest, extra: assertFields("semester_number", "academic_year"),
		},
		{
			name: "duplicate", method: http.MethodPost, path: path, body: []byte(`{"semester_number":3,"academic_year":"2023-24"}`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"semester_number": semester.ErrNumberExists.Error()}),
		},
		{
			name: "create", method: http.MethodPost, path: path, body: []byte(`{"semester_number":1,"academic_year":"2022-23"}`),
			wantCode: http.StatusCreated,
			extra: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var sem semester.Semester
				decode(t, rec, &sem)
				assert.Equal(t, std.ID, sem.StudentID)
				assert.Equal(t, 1, sem.Number)
			},
		},
		{
			name: "list", path: path, wantCode: http.StatusOK,
			extra: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var sems []semester.Semester
				decode(t, rec, &sems)
				require.Len(t, sems, 2)
				assert.Equal(t, 1, sems[0].Number)
				assert.Equal(t, sem3, sems[1])
			},
		},
		{
			name: "delete (other student)", method: http.MethodDelete, path: "/v1/students/" + other.ID + "/semesters/" + sem3.ID,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: semester.ErrNotFound.Error()}),
		},
		{name: "delete", method: http.MethodDelete, path: path + "/" + sem3.ID, wantCode: http.StatusNoContent},
		{name: "deleted", path: "/v1/semesters/" + sem3.ID, wantCode: http.StatusNotFound},
	})
}

func Test_studentApi_export(t *testing.T) {
	srv, s := setup(t)
	std := testutil.CreateStudent(t, s.Students, "Asha", "1AB23CS001")
	sem := testutil.CreateSemester(t, s.Semesters, std.ID, 3)
	subj := testutil.CreateSubject(t, s.Subjects, sem.ID, "BCS301", scoring.PCC, 4)

	runHTTPTests(t, srv, []httpTest{
		{
			name: "export", path: "/v1/students/" + std.ID + "/export", wantCode: http.StatusOK,
			extra: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var exp marks.StudentExport
				decode(t, rec, &exp)
				assert.Equal(t, std, exp.Student)
				require.Len(t, exp.Semesters, 1)
				require.Len(t, exp.Semesters[0].Subjects, 1)
				assert.Equal(t, subj.ID, exp.Semesters[0].Subjects[0].SubjectID)
				assert.Equal(t, scoring.StatusPending, exp.Semesters[0].Subjects[0].Status)
			},
		},
	})
}
