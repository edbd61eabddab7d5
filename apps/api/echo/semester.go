package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/marksengine/core/marks"
	"github.com/trezcool/marksengine/core/semester"
	"github.com/trezcool/marksengine/core/subject"
)

type semesterApi struct {
	svc      *semester.Service
	subjSvc  *subject.Service
	marksSvc *marks.Service
	validate *validator.Validate
}

func registerSemesterAPI(
	g *echo.Group,
	svc *semester.Service,
	subjSvc *subject.Service,
	marksSvc *marks.Service,
	validate *validator.Validate,
) {
	api := semesterApi{
		svc:      svc,
		subjSvc:  subjSvc,
		marksSvc: marksSvc,
		validate: validate,
	}

	dg := g.Group("/semesters/:id", semesterMiddleware(svc))
	dg.GET("", api.retrieve)
	dg.POST("/subjects", api.createSubject)
	dg.GET("/subjects", api.querySubjects)
	dg.POST("/subjects/import", api.importSubjects)
	dg.GET("/marks-summary", api.summary)
}

// ImportRequest holds the subject rows extracted from a syllabus document.
type ImportRequest struct {
	Rows []subject.ExtractedRow `json:"rows"`
}

// Handlers

func (api *semesterApi) retrieve(ctx echo.Context) error {
	sem, err := getContextSemester(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sem)
}

func (api *semesterApi) createSubject(ctx echo.Context) error {
	sem, err := getContextSemester(ctx)
	if err != nil {
		return err
	}

	var data subject.NewSubject
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubject")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	subj, err := api.subjSvc.Create(ctx.Request().Context(), sem.ID, data)
	if err != nil {
		return errors.Wrap(err, "creating subject")
	}
	return ctx.JSON(http.StatusCreated, subj)
}

func (api *semesterApi) querySubjects(ctx echo.Context) error {
	sem, err := getContextSemester(ctx)
	if err != nil {
		return err
	}
	subjects, err := api.subjSvc.ListBySemester(ctx.Request().Context(), sem.ID)
	if err != nil {
		return errors.Wrap(err, "querying subjects")
	}
	if subjects == nil {
		subjects = []subject.Subject{}
	}
	return ctx.JSON(http.StatusOK, subjects)
}

func (api *semesterApi) importSubjects(ctx echo.Context) error {
	sem, err := getContextSemester(ctx)
	if err != nil {
		return err
	}

	var data ImportRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ImportRequest")
	}

	report, err := api.subjSvc.Import(ctx.Request().Context(), sem.ID, data.Rows)
	if err != nil {
		return errors.Wrap(err, "importing subjects")
	}
	return ctx.JSON(http.StatusOK, report)
}

func (api *semesterApi) summary(ctx echo.Context) error {
	sem, err := getContextSemester(ctx)
	if err != nil {
		return err
	}
	summary, err := api.marksSvc.Summary(ctx.Request().Context(), sem.ID)
	if err != nil {
		return errors.Wrap(err, "computing marks summary")
	}
	return ctx.JSON(http.StatusOK, summary)
}
