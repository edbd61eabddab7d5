package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/marksengine/core/semester"
	"github.com/trezcool/marksengine/core/student"
	"github.com/trezcool/marksengine/core/subject"
)

const (
	ctxStudent  = "student"
	ctxSemester = "semester"
	ctxSubject  = "subject"
)

// studentMiddleware loads the student `:id` into the context.
func studentMiddleware(svc *student.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			std, err := svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
			if err != nil {
				if errors.Cause(err) == student.ErrNotFound {
					return errHttpNotFound
				}
				return errors.Wrap(err, "finding student by ID")
			}
			ctx.Set(ctxStudent, std)
			return next(ctx)
		}
	}
}

// semesterMiddleware loads the semester `:id` into the context.
func semesterMiddleware(svc *semester.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			sem, err := svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
			if err != nil {
				if errors.Cause(err) == semester.ErrNotFound {
					return errHttpNotFound
				}
				return errors.Wrap(err, "finding semester by ID")
			}
			ctx.Set(ctxSemester, sem)
			return next(ctx)
		}
	}
}

// subjectMiddleware loads the subject `:id` into the context.
func subjectMiddleware(svc *subject.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			subj, err := svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
			if err != nil {
				if errors.Cause(err) == subject.ErrNotFound {
					return errHttpNotFound
				}
				return errors.Wrap(err, "finding subject by ID")
			}
			ctx.Set(ctxSubject, subj)
			return next(ctx)
		}
	}
}

func getContextStudent(ctx echo.Context) (student.Student, error) {
	std, ok := ctx.Get(ctxStudent).(student.Student)
	if !ok {
		return student.Student{}, errors.Wrap(errObjNotFoundCtx, "retrieving student from context")
	}
	return std, nil
}

func getContextSemester(ctx echo.Context) (semester.Semester, error) {
	sem, ok := ctx.Get(ctxSemester).(semester.Semester)
	if !ok {
		return semester.Semester{}, errors.Wrap(errObjNotFoundCtx, "retrieving semester from context")
	}
	return sem, nil
}

func getContextSubject(ctx echo.Context) (subject.Subject, error) {
	subj, ok := ctx.Get(ctxSubject).(subject.Subject)
	if !ok {
		return subject.Subject{}, errors.Wrap(errObjNotFoundCtx, "retrieving subject from context")
	}
	return subj, nil
}
