package course

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
)

type Course struct {
	ID          int       `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Code        string    `json:"code" db:"code"`
	Description string    `json:"description" db:"description"`
	TeacherID   int       `json:"teacher_id" db:"teacher_id"`
	TeacherName string    `json:"teacher_name" db:"teacher_name"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"` // UTC
}

// CanBeManagedBy reports whether usr may update/delete/enroll-into this course:
// an admin, or the owning teacher.
func (c Course) CanBeManagedBy(usr user.User) bool {
	return usr.IsAdmin() || c.TeacherID == usr.ID
}

// NewCourse contains information needed to create a new Course.
// TeacherID is only honored for admin callers; teachers self-assign.
type NewCourse struct {
	Name        string `json:"name" validate:"required,min=3,max=100"`
	Code        string `json:"code" validate:"required,min=2,max=20"`
	Description string `json:"description"`
	TeacherID   int    `json:"teacher_id"`
}

func (nc *NewCourse) Validate(validate *validator.Validate, svc Service) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Code = core.CleanString(nc.Code)
	nc.Description = core.CleanString(nc.Description)

	if err := validate.Struct(nc); err != nil {
		return err
	}
	return svc.CheckCodeUniqueness(nc.Code)
}

// UpdateCourse defines what information may be provided to modify an existing Course.
type UpdateCourse struct {
	Name        string  `json:"name" validate:"omitempty,min=3,max=100"`
	Code        string  `json:"code" validate:"omitempty,min=2,max=20"`
	Description *string `json:"description"`
}

func (uc *UpdateCourse) Validate(origCrs Course, validate *validator.Validate, svc Service) error {
	name := core.CleanString(uc.Name)
	if name != "" {
		uc.Name = name
	} else {
		uc.Name = origCrs.Name
	}

	code := core.CleanString(uc.Code)
	if code != "" {
		uc.Code = code
	} else {
		uc.Code = origCrs.Code
	}

	if err := validate.Struct(uc); err != nil {
		return err
	}
	return svc.CheckCodeUniqueness(uc.Code, origCrs)
}

// Enrollment links a student to a course; (StudentID, CourseID) is unique.
type Enrollment struct {
	ID         int       `json:"id" db:"id"`
	StudentID  int       `json:"student_id" db:"student_id"`
	CourseID   int       `json:"course_id" db:"course_id"`
	EnrolledAt time.Time `json:"enrolled_at" db:"enrolled_at"` // UTC
}

// EnrolledStudent is the students-of-a-course listing row.
type EnrolledStudent struct {
	ID         int       `json:"id" db:"id"`
	Username   string    `json:"username" db:"username"`
	Email      string    `json:"email" db:"email"`
	EnrolledAt time.Time `json:"enrolled_at" db:"enrolled_at"`
}

type EnrollRequest struct {
	StudentID int `json:"student_id" validate:"required"`
}

func (er EnrollRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(er)
}
