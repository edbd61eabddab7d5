// Package shared wires the services used by the app commands.
package shared

import (
	"context"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/marksengine/core"
	"github.com/trezcool/marksengine/core/marks"
	"github.com/trezcool/marksengine/core/semester"
	"github.com/trezcool/marksengine/core/student"
	"github.com/trezcool/marksengine/core/subject"
	metricsvc "github.com/trezcool/marksengine/services/metrics"
	"github.com/trezcool/marksengine/storage/cache"
	"github.com/trezcool/marksengine/storage/database"
	inmemdb "github.com/trezcool/marksengine/storage/database/inmem"
	"github.com/trezcool/marksengine/storage/database/sqlxrepos"
)

type (
	repositories struct {
		students  student.Repository
		semesters semester.Repository
		subjects  subject.Repository
		marks     marks.Repository
	}

	App struct {
		Conf       *core.Config
		Validate   *validator.Validate
		Translator ut.Translator
		Metrics    *metricsvc.PrometheusMetrics

		StudentSvc  *student.Service
		SemesterSvc *semester.Service
		SubjectSvc  *subject.Service
		MarksSvc    *marks.Service

		closers []func() error
	}
)

// NewValidator returns the validator with every custom validation registered, and its translator.
func NewValidator() (*validator.Validate, ut.Translator) {
	translator := core.NewTranslator()
	validate := core.NewValidator(translator)
	subject.InitValidators(validate, translator)
	return validate, translator
}

// NewApp opens the storage and cache selected in `conf` and builds the services on top of them.
// Close must be called once the app is no longer used.
func NewApp(ctx context.Context, conf *core.Config, logger core.Logger) (*App, error) {
	app := &App{Conf: conf, Metrics: metricsvc.NewPrometheusMetrics()}
	app.Validate, app.Translator = NewValidator()

	repos, err := app.openRepositories(ctx)
	if err != nil {
		return nil, err
	}

	appCache, closeCache, err := cache.New(ctx, conf.Redis)
	if err != nil {
		_ = app.Close()
		return nil, errors.Wrap(err, "setting up cache")
	}
	app.closers = append(app.closers, closeCache)

	app.StudentSvc = student.NewService(repos.students)
	app.SemesterSvc = semester.NewService(repos.semesters, repos.students, appCache, logger)
	app.SubjectSvc = subject.NewService(repos.subjects, repos.semesters, appCache, logger, conf)
	app.MarksSvc = marks.NewService(marks.Deps{
		Repo:      repos.marks,
		Subjects:  repos.subjects,
		Semesters: repos.semesters,
		Students:  repos.students,
		Cache:     appCache,
		Metrics:   app.Metrics,
		Logger:    logger,
		Conf:      conf,
	})
	return app, nil
}

func (app *App) openRepositories(ctx context.Context) (repositories, error) {
	if app.Conf.Database.InMemory {
		db := inmemdb.Open()
		return repositories{
			students:  inmemdb.NewStudentRepository(db),
			semesters: inmemdb.NewSemesterRepository(db),
			subjects:  inmemdb.NewSubjectRepository(db),
			marks:     inmemdb.NewMarksRepository(db),
		}, nil
	}

	db, err := database.Setup(ctx, app.Conf)
	if err != nil {
		return repositories{}, errors.Wrap(err, "setting up database")
	}
	app.closers = append(app.closers, db.Close)
	return repositories{
		students:  sqlxrepos.NewStudentRepository(db),
		semesters: sqlxrepos.NewSemesterRepository(db),
		subjects:  sqlxrepos.NewSubjectRepository(db),
		marks:     sqlxrepos.NewMarksRepository(db),
	}, nil
}

// Close releases the storage and cache connections, in reverse order of opening.
func (app *App) Close() error {
	var firstErr error
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	app.closers = nil
	return firstErr
}
