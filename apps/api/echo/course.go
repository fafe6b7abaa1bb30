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

var errCrsNotFoundInCtx = errors.New("course object not found in echo.Context")

func getContextCourse(ctx echo.Context) (course.Course, error) {
	if crs, ok := ctx.Get(contextObjectKey).(course.Course); ok {
		return crs, nil
	}
	return course.Course{}, errCrsNotFoundInCtx
}

type courseApi struct {
	svc    course.Service
	asgSvc assignment.Service
}

func registerCourseAPI(g *echo.Group, jwt, activeUser echo.MiddlewareFunc, svc course.Service, asgSvc assignment.Service) {
	api := courseApi{svc: svc, asgSvc: asgSvc}

	cg := g.Group("/courses", jwt, activeUser)
	cg.GET("", api.query)
	cg.POST("", api.create, roleMiddleware(user.RoleAdmin, user.RoleTeacher))

	dg := cg.Group("/:id", api.objectMiddleware)
	dg.GET("", api.retrieve)
	dg.PUT("", api.update, roleMiddleware(user.RoleAdmin, user.RoleTeacher))
	dg.DELETE("", api.destroy, roleMiddleware(user.RoleAdmin, user.RoleTeacher))
	dg.POST("/enroll", api.enroll, roleMiddleware(user.RoleAdmin, user.RoleTeacher))
	dg.GET("/students", api.students)
	dg.GET("/assignments", api.assignments)
}

// objectMiddleware resolves the targeted course and stores it in the context.
func (api *courseApi) objectMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		id, err := strconv.Atoi(ctx.Param("id"))
		if err != nil {
			return errHttpNotFound
		}

		crs, err := api.svc.GetByID(ctx.Request().Context(), id)
		if err != nil {
			return err
		}
		ctx.Set(contextObjectKey, crs)
		return next(ctx)
	}
}

// query lists courses visible to the caller: teachers see their own,
// students see enrolled ones, staff see all.
func (api *courseApi) query(ctx echo.Context) error {
	var pq core.PageQuery
	if err := ctx.Bind(&pq); err != nil {
		return errors.Wrap(err, "binding to PageQuery")
	}

	ctxUsr, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	courses, pg, err := api.svc.Query(ctx.Request().Context(), ctxUsr, pq)
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	if courses == nil {
		courses = []course.Course{}
	}
	return respondPage(ctx, http.StatusOK, "courses retrieved successfully", courses, pg)
}

// create inserts a course. Teachers self-assign; only admins may set teacher_id.
func (api *courseApi) create(ctx echo.Context) error {
	var data course.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}

	ctxUsr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	if !ctxUsr.IsAdmin() || data.TeacherID == 0 {
		data.TeacherID = ctxUsr.ID
	}

	if err := data.Validate(validate, api.svc); err != nil {
		return err
	}

	crs, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return respond(ctx, http.StatusCreated, "course created successfully", crs)
}

func (api *courseApi) retrieve(ctx echo.Context) error {
	crs, err := getContextCourse(ctx)
	if err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	ok, err := api.svc.CanAccess(ctx.Request().Context(), crs, ctxUsr)
	if err != nil {
		return errors.Wrap(err, "checking course access")
	}
	if !ok {
		return errHttpForbidden
	}
	return respond(ctx, http.StatusOK, "course retrieved successfully", crs)
}

func (api *courseApi) update(ctx echo.Context) error {
	crs, err := getContextCourse(ctx)
	if err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	if !crs.CanBeManagedBy(ctxUsr) {
		return errHttpForbidden
	}

	var data course.UpdateCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCourse")
	}
	if err := data.Validate(crs, validate, api.svc); err != nil {
		return err
	}

	crs, err = api.svc.Update(ctx.Request().Context(), crs, data)
	if err != nil {
		return errors.Wrap(err, "updating course")
	}
	return respond(ctx, http.StatusOK, "course updated successfully", crs)
}

// destroy removes the course; its assignments and enrollments go with it.
func (api *courseApi) destroy(ctx echo.Context) error {
	crs, err := getContextCourse(ctx)
	if err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	if !crs.CanBeManagedBy(ctxUsr) {
		return errHttpForbidden
	}

	if err := api.svc.Delete(ctx.Request().Context(), crs.ID); err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, "course deleted successfully")
}

func (api *courseApi) enroll(ctx echo.Context) error {
	crs, err := getContextCourse(ctx)
	if err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	if !crs.CanBeManagedBy(ctxUsr) {
		return errHttpForbidden
	}

	var data course.EnrollRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to EnrollRequest")
	}
	if err := data.Validate(validate); err != nil {
		return err
	}

	if err := api.svc.Enroll(ctx.Request().Context(), crs.ID, data.StudentID); err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, "student enrolled successfully")
}

func (api *courseApi) students(ctx echo.Context) error {
	crs, err := getContextCourse(ctx)
	if err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	if !(ctxUsr.IsStaff() || crs.TeacherID == ctxUsr.ID) {
		return errHttpForbidden
	}

	students, err := api.svc.EnrolledStudents(ctx.Request().Context(), crs.ID)
	if err != nil {
		return errors.Wrap(err, "querying enrolled students")
	}
	if students == nil {
		students = []course.EnrolledStudent{}
	}
	return respond(ctx, http.StatusOK, "students retrieved successfully", students)
}

// assignments lists the course's assignments; access mirrors retrieve.
func (api *courseApi) assignments(ctx echo.Context) error {
	crs, err := getContextCourse(ctx)
	if err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	ok, err := api.svc.CanAccess(ctx.Request().Context(), crs, ctxUsr)
	if err != nil {
		return errors.Wrap(err, "checking course access")
	}
	if !ok {
		return errHttpForbidden
	}

	asgs, err := api.asgSvc.ByCourse(ctx.Request().Context(), crs.ID)
	if err != nil {
		return errors.Wrap(err, "querying course assignments")
	}
	if asgs == nil {
		asgs = []assignment.Assignment{}
	}
	return respond(ctx, http.StatusOK, "assignments retrieved successfully", asgs)
}
