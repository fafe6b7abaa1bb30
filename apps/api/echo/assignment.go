package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/assignment"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/user"
)

var errAsgNotFoundInCtx = errors.New("assignment object not found in echo.Context")

func getContextAssignment(ctx echo.Context) (assignment.Assignment, error) {
	if asg, ok := ctx.Get(contextObjectKey).(assignment.Assignment); ok {
		return asg, nil
	}
	return assignment.Assignment{}, errAsgNotFoundInCtx
}

type assignmentApi struct {
	svc    assignment.Service
	crsSvc course.Service
}

func registerAssignmentAPI(g *echo.Group, jwt, activeUser echo.MiddlewareFunc, svc assignment.Service, crsSvc course.Service) {
	api := assignmentApi{svc: svc, crsSvc: crsSvc}

	ag := g.Group("/assignments", jwt, activeUser)
	ag.GET("", api.query)
	ag.POST("", api.create, roleMiddleware(user.RoleAdmin, user.RoleTeacher))

	dg := ag.Group("/:id", api.objectMiddleware)
	dg.GET("", api.retrieve)
	dg.PUT("", api.update, roleMiddleware(user.RoleAdmin, user.RoleTeacher))
	dg.DELETE("", api.destroy, roleMiddleware(user.RoleAdmin, user.RoleTeacher))
}

func (api *assignmentApi) objectMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		id, err := strconv.Atoi(ctx.Param("id"))
		if err != nil {
			return errHttpNotFound
		}

		asg, err := api.svc.GetByID(ctx.Request().Context(), id)
		if err != nil {
			return err
		}
		ctx.Set(contextObjectKey, asg)
		return next(ctx)
	}
}

// query lists assignments visible to the caller, mirroring course visibility.
func (api *assignmentApi) query(ctx echo.Context) error {
	var pq core.PageQuery
	if err := ctx.Bind(&pq); err != nil {
		return errors.Wrap(err, "binding to PageQuery")
	}

	ctxUsr, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	asgs, pg, err := api.svc.Query(ctx.Request().Context(), ctxUsr, pq)
	if err != nil {
		return errors.Wrap(err, "querying assignments")
	}
	if asgs == nil {
		asgs = []assignment.Assignment{}
	}
	return respondPage(ctx, http.StatusOK, "assignments retrieved successfully", asgs, pg)
}

// create inserts an assignment; teachers may only target courses they own.
func (api *assignmentApi) create(ctx echo.Context) error {
	var data assignment.NewAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAssignment")
	}
	if err := data.Validate(validate); err != nil {
		return err
	}

	crs, err := api.crsSvc.GetByID(ctx.Request().Context(), data.CourseID)
	if err != nil {
		if errors.Cause(err) == course.ErrNotFound {
			return core.NewValidationError(course.ErrNotFound,
				core.FieldError{Field: "course_id", Error: course.ErrNotFound.Error()})
		}
		return errors.Wrap(err, "finding course by ID")
	}

	ctxUsr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	if !crs.CanBeManagedBy(ctxUsr) {
		return errHttpForbidden
	}

	asg, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating assignment")
	}
	return respond(ctx, http.StatusCreated, "assignment created successfully", asg)
}

func (api *assignmentApi) retrieve(ctx echo.Context) error {
	asg, err := getContextAssignment(ctx)
	if err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	// access mirrors the owning course's
	crs := course.Course{ID: asg.CourseID, TeacherID: asg.TeacherID}
	ok, err := api.crsSvc.CanAccess(ctx.Request().Context(), crs, ctxUsr)
	if err != nil {
		return errors.Wrap(err, "checking course access")
	}
	if !ok {
		return errHttpForbidden
	}
	return respond(ctx, http.StatusOK, "assignment retrieved successfully", asg)
}

func (api *assignmentApi) update(ctx echo.Context) error {
	asg, err := getContextAssignment(ctx)
	if err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	if !(ctxUsr.IsAdmin() || asg.TeacherID == ctxUsr.ID) {
		return errHttpForbidden
	}

	var data assignment.UpdateAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateAssignment")
	}
	if err := data.Validate(asg, validate); err != nil {
		return err
	}

	asg, err = api.svc.Update(ctx.Request().Context(), asg, data)
	if err != nil {
		return errors.Wrap(err, "updating assignment")
	}
	return respond(ctx, http.StatusOK, "assignment updated successfully", asg)
}

func (api *assignmentApi) destroy(ctx echo.Context) error {
	asg, err := getContextAssignment(ctx)
	if err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	if !(ctxUsr.IsAdmin() || asg.TeacherID == ctxUsr.ID) {
		return errHttpForbidden
	}

	if err := api.svc.Delete(ctx.Request().Context(), asg.ID); err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, "assignment deleted successfully")
}
