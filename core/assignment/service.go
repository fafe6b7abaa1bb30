package assignment

import (
	"context"
	"errors"
	"time"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/user"
)

var ErrNotFound = errors.New("assignment not found")

type (
	// Filter narrows assignment listings; zero values mean "no restriction".
	Filter struct {
		CourseID  int
		TeacherID int // assignments of courses taught by this user
		StudentID int // assignments of courses this user is enrolled in
	}

	Repository interface {
		CreateAssignment(ctx context.Context, asg Assignment) (Assignment, error)
		GetAssignmentByID(ctx context.Context, id int) (Assignment, error)
		// FilterAssignments returns a page (closest due date first) and the unpaged total.
		FilterAssignments(ctx context.Context, filter Filter, pq core.PageQuery) ([]Assignment, int, error)
		QueryCourseAssignments(ctx context.Context, courseID int) ([]Assignment, error)
		UpdateAssignment(ctx context.Context, asg Assignment) (Assignment, error)
		DeleteAssignment(ctx context.Context, id int) error
	}

	Service interface {
		// Query lists assignments visible to the caller, mirroring course visibility.
		Query(ctx context.Context, caller user.User, pq core.PageQuery) ([]Assignment, core.Pagination, error)
		ByCourse(ctx context.Context, courseID int) ([]Assignment, error)
		GetByID(ctx context.Context, id int) (Assignment, error)
		Create(ctx context.Context, na NewAssignment) (Assignment, error)
		Update(ctx context.Context, origAsg Assignment, ua UpdateAssignment) (Assignment, error)
		Delete(ctx context.Context, id int) error
	}

	service struct {
		repo    Repository
		crsRepo course.Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, crsRepo course.Repository) Service {
	return &service{repo: repo, crsRepo: crsRepo}
}

func (svc *service) Query(ctx context.Context, caller user.User, pq core.PageQuery) ([]Assignment, core.Pagination, error) {
	pq.Clean()

	var filter Filter
	switch {
	case caller.IsTeacher():
		filter.TeacherID = caller.ID
	case caller.IsStudent():
		filter.StudentID = caller.ID
	}

	asgs, total, err := svc.repo.FilterAssignments(ctx, filter, pq)
	if err != nil {
		return nil, core.Pagination{}, err
	}
	return asgs, core.NewPagination(pq, total), nil
}

func (svc *service) ByCourse(ctx context.Context, courseID int) ([]Assignment, error) {
	return svc.repo.QueryCourseAssignments(ctx, courseID)
}

func (svc *service) GetByID(ctx context.Context, id int) (Assignment, error) {
	return svc.repo.GetAssignmentByID(ctx, id)
}

// Create inserts an assignment; the owning course must exist.
func (svc *service) Create(ctx context.Context, na NewAssignment) (Assignment, error) {
	crs, err := svc.crsRepo.GetCourseByID(ctx, na.CourseID)
	if err != nil {
		if err == course.ErrNotFound {
			return Assignment{}, core.NewValidationError(course.ErrNotFound,
				core.FieldError{Field: "course_id", Error: course.ErrNotFound.Error()})
		}
		return Assignment{}, err
	}

	asg := Assignment{
		Title:       na.Title,
		Description: na.Description,
		CourseID:    crs.ID,
		CourseName:  crs.Name,
		CourseCode:  crs.Code,
		TeacherID:   crs.TeacherID,
		DueDate:     na.DueDate,
		MaxScore:    na.MaxScore,
		CreatedAt:   time.Now().UTC(),
	}
	return svc.repo.CreateAssignment(ctx, asg)
}

func (svc *service) Update(ctx context.Context, origAsg Assignment, ua UpdateAssignment) (Assignment, error) {
	asg := origAsg
	asg.Title = ua.Title
	if ua.Description != nil {
		asg.Description = core.CleanString(*ua.Description)
	}
	if ua.DueDate != nil {
		asg.DueDate = ua.DueDate
	}
	if ua.MaxScore != nil {
		asg.MaxScore = *ua.MaxScore
	}
	return svc.repo.UpdateAssignment(ctx, asg)
}

func (svc *service) Delete(ctx context.Context, id int) error {
	return svc.repo.DeleteAssignment(ctx, id)
}
