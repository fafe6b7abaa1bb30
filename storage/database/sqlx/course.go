package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/storage/database"
)

const courseSelect = `
SELECT c.id, c.name, c.code, COALESCE(c.description, '') AS description,
       c.teacher_id, u.username AS teacher_name, c.created_at
FROM courses c
JOIN users u ON u.id = c.teacher_id`

type courseRepository struct {
	exec *database.Executor
}

var _ course.Repository = (*courseRepository)(nil)

func NewCourseRepository(exec *database.Executor) course.Repository {
	return &courseRepository{exec: exec}
}

func (repo *courseRepository) CheckCodeUniqueness(ctx context.Context, code string, excludedCourses ...course.Course) error {
	query := `SELECT id FROM courses WHERE code = $1`
	args := []interface{}{code}
	if len(excludedCourses) > 0 {
		query += ` AND id <> $2`
		args = append(args, excludedCourses[0].ID)
	}

	var id int
	err := repo.exec.Get(ctx, &id, query, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil
		}
		return err
	}
	return course.ErrCodeExists
}

func (repo *courseRepository) CreateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	id, err := repo.exec.ExecID(ctx,
		`INSERT INTO courses (name, code, description, teacher_id, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		crs.Name, crs.Code, crs.Description, crs.TeacherID, crs.CreatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err, "courses_code_key") {
			return course.Course{}, course.ErrCodeExists
		}
		return course.Course{}, err
	}
	crs.ID = id
	return crs, nil
}

func (repo *courseRepository) GetCourseByID(ctx context.Context, id int) (course.Course, error) {
	var crs course.Course
	err := repo.exec.Get(ctx, &crs, courseSelect+` WHERE c.id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return course.Course{}, course.ErrNotFound
		}
		return course.Course{}, err
	}
	return crs, nil
}

func (repo *courseRepository) FilterCourses(ctx context.Context, filter course.Filter, pq core.PageQuery) ([]course.Course, int, error) {
	query := courseSelect
	countQuery := `SELECT COUNT(*) FROM courses c`
	var args []interface{}

	switch {
	case filter.TeacherID != 0:
		query += ` WHERE c.teacher_id = $1`
		countQuery += ` WHERE c.teacher_id = $1`
		args = append(args, filter.TeacherID)
	case filter.StudentID != 0:
		join := ` JOIN enrollments e ON e.course_id = c.id WHERE e.student_id = $1`
		query += join
		countQuery += join
		args = append(args, filter.StudentID)
	}

	var total int
	if err := repo.exec.Get(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` ORDER BY c.created_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, pq.Limit, pq.Offset())

	var courses []course.Course
	if err := repo.exec.Select(ctx, &courses, query, args...); err != nil {
		return nil, 0, err
	}
	return courses, total, nil
}

func (repo *courseRepository) UpdateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	affected, err := repo.exec.Exec(ctx,
		`UPDATE courses SET name = $1, code = $2, description = $3 WHERE id = $4`,
		crs.Name, crs.Code, crs.Description, crs.ID,
	)
	if err != nil {
		if database.IsUniqueViolation(err, "courses_code_key") {
			return course.Course{}, course.ErrCodeExists
		}
		return course.Course{}, err
	}
	if affected == 0 {
		return course.Course{}, course.ErrNotFound
	}
	return repo.GetCourseByID(ctx, crs.ID)
}

func (repo *courseRepository) DeleteCourse(ctx context.Context, id int) error {
	affected, err := repo.exec.Exec(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return course.ErrNotFound
	}
	return nil
}

func (repo *courseRepository) CreateEnrollment(ctx context.Context, courseID, studentID int) error {
	_, err := repo.exec.Exec(ctx,
		`INSERT INTO enrollments (student_id, course_id, enrolled_at) VALUES ($1, $2, $3)`,
		studentID, courseID, time.Now().UTC(),
	)
	if err != nil && database.IsUniqueViolation(err, "enrollments_student_id_course_id_key") {
		return course.ErrAlreadyEnrolled
	}
	return err
}

func (repo *courseRepository) IsEnrolled(ctx context.Context, courseID, studentID int) (bool, error) {
	var enrolled bool
	err := repo.exec.Get(ctx, &enrolled,
		`SELECT EXISTS (SELECT 1 FROM enrollments WHERE course_id = $1 AND student_id = $2)`,
		courseID, studentID,
	)
	return enrolled, err
}

func (repo *courseRepository) QueryEnrolledStudents(ctx context.Context, courseID int) ([]course.EnrolledStudent, error) {
	var students []course.EnrolledStudent
	err := repo.exec.Select(ctx, &students,
		`SELECT u.id, u.username, u.email, e.enrolled_at
		 FROM users u
		 JOIN enrollments e ON e.student_id = u.id
		 WHERE e.course_id = $1
		 ORDER BY e.enrolled_at DESC`,
		courseID,
	)
	return students, err
}
