package course

import (
	"context"
	"errors"
	"time"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
)

var (
	// errors
	ErrNotFound        = errors.New("course not found")
	ErrCodeExists      = errors.New("a course with this code already exists")
	ErrTeacherNotFound = errors.New("teacher not found")
	ErrNotTeacher      = errors.New("the assigned user must be a teacher or an admin")
	ErrStudentNotFound = errors.New("student not found")
	ErrNotStudent      = errors.New("the user to enroll must be a student")
	ErrAlreadyEnrolled = errors.New("the student is already enrolled in this course")
)

type (
	// Filter narrows course listings; zero values mean "no restriction".
	Filter struct {
		TeacherID int // courses taught by this user
		StudentID int // courses this user is enrolled in
	}

	Repository interface {
		CheckCodeUniqueness(ctx context.Context, code string, excludedCourses ...Course) error
		CreateCourse(ctx context.Context, crs Course) (Course, error)
		GetCourseByID(ctx context.Context, id int) (Course, error)
		// FilterCourses returns a page of courses (newest first) and the unpaged total.
		FilterCourses(ctx context.Context, filter Filter, pq core.PageQuery) ([]Course, int, error)
		UpdateCourse(ctx context.Context, crs Course) (Course, error)
		// DeleteCourse removes the course; assignments and enrollments cascade.
		DeleteCourse(ctx context.Context, id int) error
		CreateEnrollment(ctx context.Context, courseID, studentID int) error
		IsEnrolled(ctx context.Context, courseID, studentID int) (bool, error)
		QueryEnrolledStudents(ctx context.Context, courseID int) ([]EnrolledStudent, error)
	}

	Service interface {
		CheckCodeUniqueness(code string, exclCourses ...Course) error
		// Query lists courses visible to the caller: teachers see their own,
		// students see enrolled ones, staff see all.
		Query(ctx context.Context, caller user.User, pq core.PageQuery) ([]Course, core.Pagination, error)
		GetByID(ctx context.Context, id int) (Course, error)
		// CanAccess is the read-side ownership predicate.
		CanAccess(ctx context.Context, crs Course, caller user.User) (bool, error)
		Create(ctx context.Context, nc NewCourse) (Course, error)
		Update(ctx context.Context, origCrs Course, uc UpdateCourse) (Course, error)
		Delete(ctx context.Context, id int) error
		Enroll(ctx context.Context, courseID, studentID int) error
		EnrolledStudents(ctx context.Context, courseID int) ([]EnrolledStudent, error)
	}

	service struct {
		repo    Repository
		usrRepo user.Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, usrRepo user.Repository) Service {
	return &service{repo: repo, usrRepo: usrRepo}
}

func (svc *service) CheckCodeUniqueness(code string, exclCourses ...Course) error {
	if err := svc.repo.CheckCodeUniqueness(context.Background(), code, exclCourses...); err != nil {
		if err == ErrCodeExists {
			return core.NewValidationError(err, core.FieldError{Field: "code", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *service) Query(ctx context.Context, caller user.User, pq core.PageQuery) ([]Course, core.Pagination, error) {
	pq.Clean()

	var filter Filter
	switch {
	case caller.IsTeacher():
		filter.TeacherID = caller.ID
	case caller.IsStudent():
		filter.StudentID = caller.ID
	}

	courses, total, err := svc.repo.FilterCourses(ctx, filter, pq)
	if err != nil {
		return nil, core.Pagination{}, err
	}
	return courses, core.NewPagination(pq, total), nil
}

func (svc *service) GetByID(ctx context.Context, id int) (Course, error) {
	return svc.repo.GetCourseByID(ctx, id)
}

func (svc *service) CanAccess(ctx context.Context, crs Course, caller user.User) (bool, error) {
	if caller.IsStaff() || crs.TeacherID == caller.ID {
		return true, nil
	}
	if caller.IsStudent() {
		return svc.repo.IsEnrolled(ctx, crs.ID, caller.ID)
	}
	return false, nil
}

// Create inserts a course after checking the teacher reference: the assigned
// user must exist and hold the teacher or admin role.
func (svc *service) Create(ctx context.Context, nc NewCourse) (Course, error) {
	teacher, err := svc.usrRepo.GetUserByID(ctx, nc.TeacherID)
	if err != nil {
		if err == user.ErrNotFound {
			return Course{}, core.NewValidationError(ErrTeacherNotFound,
				core.FieldError{Field: "teacher_id", Error: ErrTeacherNotFound.Error()})
		}
		return Course{}, err
	}
	if !teacher.HasAnyRole(user.RoleTeacher, user.RoleAdmin) {
		return Course{}, core.NewValidationError(ErrNotTeacher,
			core.FieldError{Field: "teacher_id", Error: ErrNotTeacher.Error()})
	}

	crs := Course{
		Name:        nc.Name,
		Code:        nc.Code,
		Description: nc.Description,
		TeacherID:   teacher.ID,
		TeacherName: teacher.Username,
		CreatedAt:   time.Now().UTC(),
	}
	return svc.repo.CreateCourse(ctx, crs)
}

func (svc *service) Update(ctx context.Context, origCrs Course, uc UpdateCourse) (Course, error) {
	crs := origCrs
	crs.Name = uc.Name
	crs.Code = uc.Code
	if uc.Description != nil {
		crs.Description = core.CleanString(*uc.Description)
	}
	return svc.repo.UpdateCourse(ctx, crs)
}

func (svc *service) Delete(ctx context.Context, id int) error {
	return svc.repo.DeleteCourse(ctx, id)
}

// Enroll adds a student to a course. The student must exist, hold the student
// role and not already be enrolled.
func (svc *service) Enroll(ctx context.Context, courseID, studentID int) error {
	if _, err := svc.repo.GetCourseByID(ctx, courseID); err != nil {
		return err
	}

	student, err := svc.usrRepo.GetUserByID(ctx, studentID)
	if err != nil {
		if err == user.ErrNotFound {
			return core.NewValidationError(ErrStudentNotFound,
				core.FieldError{Field: "student_id", Error: ErrStudentNotFound.Error()})
		}
		return err
	}
	if !student.IsStudent() {
		return core.NewValidationError(ErrNotStudent,
			core.FieldError{Field: "student_id", Error: ErrNotStudent.Error()})
	}

	enrolled, err := svc.repo.IsEnrolled(ctx, courseID, studentID)
	if err != nil {
		return err
	}
	if enrolled {
		return core.NewValidationError(ErrAlreadyEnrolled,
			core.FieldError{Field: "student_id", Error: ErrAlreadyEnrolled.Error()})
	}
	if err := svc.repo.CreateEnrollment(ctx, courseID, studentID); err != nil {
		// concurrent duplicate enrollments lose the unique-index race
		if err == ErrAlreadyEnrolled {
			return core.NewValidationError(ErrAlreadyEnrolled,
				core.FieldError{Field: "student_id", Error: ErrAlreadyEnrolled.Error()})
		}
		return err
	}
	return nil
}

func (svc *service) EnrolledStudents(ctx context.Context, courseID int) ([]EnrolledStudent, error) {
	return svc.repo.QueryEnrolledStudents(ctx, courseID)
}
