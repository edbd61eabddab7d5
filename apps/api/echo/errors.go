package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/marksengine/core"
	"github.com/trezcool/marksengine/core/marks"
	"github.com/trezcool/marksengine/core/scoring"
	"github.com/trezcool/marksengine/core/semester"
	"github.com/trezcool/marksengine/core/student"
	"github.com/trezcool/marksengine/core/subject"
)

var (
	errHttpNotFound   = echo.NewHTTPError(http.StatusNotFound, "not found")
	errObjNotFoundCtx = errors.New("object not found in echo.Context")
)

// domainHTTPError maps the domain sentinel errors to their HTTP error, if any.
func domainHTTPError(err error) *echo.HTTPError {
	switch errors.Cause(err) {
	case student.ErrNotFound, semester.ErrNotFound, subject.ErrNotFound, marks.ErrCIENotFound, marks.ErrSEENotFound:
		return echo.NewHTTPError(http.StatusNotFound, errors.Cause(err).Error())
	case marks.ErrNoSEE, scoring.ErrInvalidSubjectType:
		return echo.NewHTTPError(http.StatusBadRequest, errors.Cause(err).Error())
	}
	return nil
}

func requestInfo(ctx echo.Context) core.RequestInfo {
	id := ctx.Response().Header().Get(echo.HeaderXRequestID)
	if id == "" {
		id = ctx.Request().Header.Get(echo.HeaderXRequestID)
	}
	return core.RequestInfo{
		ID:     id,
		Method: ctx.Request().Method,
		Path:   ctx.Request().URL.Path,
	}
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		if herr := domainHTTPError(err); herr != nil {
			err = herr
		}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			code = http.StatusBadRequest
			message = core.TranslateValidationErrors(origErr, translator)
		case *core.ValidationError:
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = fldErrs
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		default: // any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			message = msg

			if logger != nil {
				logger.Error(msg, errors.Wrap(err, msg), requestInfo(ctx))
			}

			// shutting down...
			if core.IsShutdown(err) && signalShutdown != nil {
				signalShutdown()
			}
		}

		if ctx.Echo().Debug {
			message = err.Error()
		} else if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
