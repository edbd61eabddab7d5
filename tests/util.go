// Package testutil builds in-memory services and fixtures for tests.
package testutil

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/marksengine/apps/shared"
	"github.com/trezcool/marksengine/core"
	"github.com/trezcool/marksengine/core/marks"
	"github.com/trezcool/marksengine/core/scoring"
	"github.com/trezcool/marksengine/core/semester"
	"github.com/trezcool/marksengine/core/student"
	"github.com/trezcool/marksengine/core/subject"
	logsvc "github.com/trezcool/marksengine/services/logger"
	metricsvc "github.com/trezcool/marksengine/services/metrics"
	"github.com/trezcool/marksengine/storage/cache"
	inmemdb "github.com/trezcool/marksengine/storage/database/inmem"
)

type Services struct {
	Conf     *core.Config
	Logger   core.Logger
	Validate *validator.Validate
	Cache    *cache.Memory
	Metrics  *metricsvc.PrometheusMetrics

	DB        *inmemdb.DB
	Students  student.Repository
	Semesters semester.Repository
	Subjects  subject.Repository
	Marks     marks.Repository

	StudentSvc  *student.Service
	SemesterSvc *semester.Service
	SubjectSvc  *subject.Service
	MarksSvc    *marks.Service
}

func NewTestConfig() *core.Config {
	return &core.Config{
		Debug:    false,
		TestMode: true,
		Env:      "TEST",
		Build:    "test",
		AppName:  "Marks Engine",
		Server: core.ServerConfig{
			ShutdownTimeout: time.Second,
			DisableReqLogs:  true,
		},
		Database: core.DatabaseConfig{InMemory: true},
		Redis:    core.RedisConfig{TTL: time.Minute},
		Import:   core.ImportConfig{MaxRows: 20},
	}
}

// NewLogger returns a logger that discards everything.
func NewLogger(conf *core.Config) core.Logger {
	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "TEST : ", log.LstdFlags), conf)
	logger.Enable(false)
	return logger
}

// NewServices wires every service over a fresh in-memory store and cache.
func NewServices(t *testing.T) *Services {
	t.Helper()

	conf := NewTestConfig()
	validate, _ := shared.NewValidator()
	db := inmemdb.Open()
	s := &Services{
		Conf:      conf,
		Logger:    NewLogger(conf),
		Validate:  validate,
		Cache:     cache.NewMemory(),
		Metrics:   metricsvc.NewPrometheusMetrics(),
		DB:        db,
		Students:  inmemdb.NewStudentRepository(db),
		Semesters: inmemdb.NewSemesterRepository(db),
		Subjects:  inmemdb.NewSubjectRepository(db),
		Marks:     inmemdb.NewMarksRepository(db),
	}
	s.StudentSvc = student.NewService(s.Students)
	s.SemesterSvc = semester.NewService(s.Semesters, s.Students, s.Cache, s.Logger)
	s.SubjectSvc = subject.NewService(s.Subjects, s.Semesters, s.Cache, s.Logger, conf)
	s.MarksSvc = marks.NewService(marks.Deps{
		Repo:      s.Marks,
		Subjects:  s.Subjects,
		Semesters: s.Semesters,
		Students:  s.Students,
		Cache:     s.Cache,
		Metrics:   s.Metrics,
		Logger:    s.Logger,
		Conf:      conf,
	})
	return s
}

func CreateStudent(t *testing.T, repo student.Repository, name, usn string, createdAt ...time.Time) student.Student {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	std, err := repo.CreateStudent(context.Background(), student.Student{
		Name:      name,
		USN:       usn,
		Branch:    "Computer Science",
		Scheme:    "2022",
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	})
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return std
}

func CreateSemester(t *testing.T, repo semester.Repository, studentID string, number int) semester.Semester {
	t.Helper()

	sem, err := repo.CreateSemester(context.Background(), semester.Semester{
		StudentID:    studentID,
		Number:       number,
		AcademicYear: "2023-24",
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateSemester() failed: %v", err)
	}
	return sem
}

func CreateSubject(t *testing.T, repo subject.Repository, semesterID, code string, st scoring.SubjectType, credits float64) subject.Subject {
	t.Helper()

	now := time.Now().UTC()
	subj, err := repo.CreateSubject(context.Background(), subject.Subject{
		SemesterID:  semesterID,
		Code:        code,
		Name:        "Subject " + code,
		Type:        st,
		Credits:     credits,
		IsMandatory: st.IsMandatory(),
		IsChosen:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		t.Fatalf("CreateSubject() failed: %v", err)
	}
	return subj
}

func Float(v float64) *float64 {
	return &v
}
