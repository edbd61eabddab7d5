package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/marksengine/core/marks"
	"github.com/trezcool/marksengine/core/semester"
	"github.com/trezcool/marksengine/core/student"
)

type studentApi struct {
	svc      *student.Service
	semSvc   *semester.Service
	marksSvc *marks.Service
	validate *validator.Validate
}

func registerStudentAPI(
	g *echo.Group,
	svc *student.Service,
	semSvc *semester.Service,
	marksSvc *marks.Service,
	validate *validator.Validate,
) {
	api := studentApi{
		svc:      svc,
		semSvc:   semSvc,
		marksSvc: marksSvc,
		validate: validate,
	}

	sg := g.Group("/students")
	sg.POST("", api.create)
	sg.GET("", api.query)

	// detail endpoints
	dg := sg.Group("/:id", studentMiddleware(svc))
	dg.GET("", api.retrieve)
	dg.DELETE("", api.destroy)
	dg.GET("/export", api.export)
	dg.POST("/semesters", api.createSemester)
	dg.GET("/semesters", api.querySemesters)
	dg.DELETE("/semesters/:semesterID", api.destroySemester)
}

// Handlers

func (api *studentApi) create(ctx echo.Context) error {
	var data student.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	std, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}
	return ctx.JSON(http.StatusCreated, std)
}

func (api *studentApi) query(ctx echo.Context) error {
	filter := new(student.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []student.Student{})
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	students, err := api.svc.List(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	if students == nil {
		students = []student.Student{}
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *studentApi) retrieve(ctx echo.Context) error {
	std, err := getContextStudent(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, std)
}

func (api *studentApi) destroy(ctx echo.Context) error {
	std, err := getContextStudent(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), std.ID); err != nil {
		return errors.Wrap(err, "deleting student")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *studentApi) export(ctx echo.Context) error {
	std, err := getContextStudent(ctx)
	if err != nil {
		return err
	}
	exp, err := api.marksSvc.Export(ctx.Request().Context(), std.ID)
	if err != nil {
		return errors.Wrap(err, "exporting student")
	}
	return ctx.JSON(http.StatusOK, exp)
}

func (api *studentApi) createSemester(ctx echo.Context) error {
	std, err := getContextStudent(ctx)
	if err != nil {
		return err
	}

	var data semester.NewSemester
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSemester")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	sem, err := api.semSvc.Create(ctx.Request().Context(), std.ID, data)
	if err != nil {
		return errors.Wrap(err, "creating semester")
	}
	return ctx.JSON(http.StatusCreated, sem)
}

func (api *studentApi) querySemesters(ctx echo.Context) error {
	std, err := getContextStudent(ctx)
	if err != nil {
		return err
	}
	sems, err := api.semSvc.ListByStudent(ctx.Request().Context(), std.ID)
	if err != nil {
		return errors.Wrap(err, "querying semesters")
	}
	if sems == nil {
		sems = []semester.Semester{}
	}
	return ctx.JSON(http.StatusOK, sems)
}

func (api *studentApi) destroySemester(ctx echo.Context) error {
	std, err := getContextStudent(ctx)
	if err != nil {
		return err
	}
	if err = api.semSvc.Delete(ctx.Request().Context(), std.ID, ctx.Param("semesterID")); err != nil {
		return errors.Wrap(err, "deleting semester")
	}
	return ctx.NoContent(http.StatusNoContent)
}
