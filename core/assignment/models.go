package assignment

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
)

const defaultMaxScore = 100.0

type Assignment struct {
	ID          int        `json:"id" db:"id"`
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description" db:"description"`
	CourseID    int        `json:"course_id" db:"course_id"`
	CourseName  string     `json:"course_name" db:"course_name"`
	CourseCode  string     `json:"course_code" db:"course_code"`
	TeacherID   int        `json:"-" db:"teacher_id"` // owning course's teacher, for authz
	DueDate     *time.Time `json:"due_date" db:"due_date"`
	MaxScore    float64    `json:"max_score" db:"max_score"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"` // UTC
}

// NewAssignment contains information needed to create a new Assignment.
type NewAssignment struct {
	Title       string     `json:"title" validate:"required,min=3,max=200"`
	Description string     `json:"description"`
	CourseID    int        `json:"course_id" validate:"required"`
	DueDate     *time.Time `json:"due_date"`
	MaxScore    float64    `json:"max_score" validate:"omitempty,gt=0"`
}

func (na *NewAssignment) Validate(validate *validator.Validate) error {
	na.Title = core.CleanString(na.Title)
	na.Description = core.CleanString(na.Description)
	if na.MaxScore == 0 {
		na.MaxScore = defaultMaxScore
	}
	return validate.Struct(na)
}

// UpdateAssignment defines what information may be provided to modify an existing Assignment.
type UpdateAssignment struct {
	Title       string     `json:"title" validate:"omitempty,min=3,max=200"`
	Description *string    `json:"description"`
	DueDate     *time.Time `json:"due_date"`
	MaxScore    *float64   `json:"max_score" validate:"omitempty,gt=0"`
}

func (ua *UpdateAssignment) Validate(origAsg Assignment, validate *validator.Validate) error {
	title := core.CleanString(ua.Title)
	if title != "" {
		ua.Title = title
	} else {
		ua.Title = origAsg.Title
	}
	return validate.Struct(ua)
}
