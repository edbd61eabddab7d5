package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/marksengine/core/marks"
	"github.com/trezcool/marksengine/core/subject"
)

type marksApi struct {
	svc      *marks.Service
	validate *validator.Validate
}

func registerMarksAPI(g *echo.Group, subjSvc *subject.Service, svc *marks.Service, validate *validator.Validate) {
	api := marksApi{
		svc:      svc,
		validate: validate,
	}

	g.POST("/cie/preview", api.preview)

	dg := g.Group("/subjects/:id", subjectMiddleware(subjSvc))
	dg.POST("/cie", api.saveCIE)
	dg.GET("/cie", api.retrieveCIE)
	dg.POST("/see", api.saveSEE)
	dg.GET("/see", api.retrieveSEE)
}

// Handlers

func (api *marksApi) preview(ctx echo.Context) error {
	var data marks.PreviewRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PreviewRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ev, err := api.svc.Preview(data.SubjectType, data.RawMarks)
	if err != nil {
		return errors.Wrap(err, "previewing evaluation")
	}
	return ctx.JSON(http.StatusOK, ev)
}

func (api *marksApi) saveCIE(ctx echo.Context) error {
	subj, err := getContextSubject(ctx)
	if err != nil {
		return err
	}

	var data marks.CIEInput
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CIEInput")
	}
	if err = data.Validate(api.validate, subj.Type); err != nil {
		return err
	}

	rec, err := api.svc.SaveCIE(ctx.Request().Context(), subj.ID, data)
	if err != nil {
		return errors.Wrap(err, "saving CIE")
	}
	return ctx.JSON(http.StatusCreated, rec)
}

func (api *marksApi) retrieveCIE(ctx echo.Context) error {
	subj, err := getContextSubject(ctx)
	if err != nil {
		return err
	}
	rec, err := api.svc.GetCIE(ctx.Request().Context(), subj.ID)
	if err != nil {
		return errors.Wrap(err, "getting CIE")
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api *marksApi) saveSEE(ctx echo.Context) error {
	subj, err := getContextSubject(ctx)
	if err != nil {
		return err
	}

	var data marks.SEEInput
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SEEInput")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	mark, err := api.svc.SaveSEE(ctx.Request().Context(), subj.ID, data)
	if err != nil {
		return errors.Wrap(err, "saving SEE")
	}
	return ctx.JSON(http.StatusCreated, mark)
}

func (api *marksApi) retrieveSEE(ctx echo.Context) error {
	subj, err := getContextSubject(ctx)
	if err != nil {
		return err
	}
	mark, err := api.svc.GetSEE(ctx.Request().Context(), subj.ID)
	if err != nil {
		return errors.Wrap(err, "getting SEE")
	}
	return ctx.JSON(http.StatusOK, mark)
}
