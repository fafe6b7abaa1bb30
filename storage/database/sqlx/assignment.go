package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/assignment"
	"github.com/trezcool/darasa/storage/database"
)

const assignmentSelect = `
SELECT a.id, a.title, COALESCE(a.description, '') AS description, a.course_id,
       a.due_date, a.max_score, a.created_at,
       c.name AS course_name, c.code AS course_code, c.teacher_id
FROM assignments a
JOIN courses c ON c.id = a.course_id`

type assignmentRepository struct {
	exec *database.Executor
}

var _ assignment.Repository = (*assignmentRepository)(nil)

func NewAssignmentRepository(exec *database.Executor) assignment.Repository {
	return &assignmentRepository{exec: exec}
}

func (repo *assignmentRepository) CreateAssignment(ctx context.Context, asg assignment.Assignment) (assignment.Assignment, error) {
	id, err := repo.exec.ExecID(ctx,
		`INSERT INTO assignments (title, description, course_id, due_date, max_score, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		asg.Title, asg.Description, asg.CourseID, asg.DueDate, asg.MaxScore, asg.CreatedAt,
	)
	if err != nil {
		return assignment.Assignment{}, err
	}
	asg.ID = id
	return asg, nil
}

func (repo *assignmentRepository) GetAssignmentByID(ctx context.Context, id int) (assignment.Assignment, error) {
	var asg assignment.Assignment
	err := repo.exec.Get(ctx, &asg, assignmentSelect+` WHERE a.id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return assignment.Assignment{}, assignment.ErrNotFound
		}
		return assignment.Assignment{}, err
	}
	return asg, nil
}

func (repo *assignmentRepository) FilterAssignments(ctx context.Context, filter assignment.Filter, pq core.PageQuery) ([]assignment.Assignment, int, error) {
	query := assignmentSelect
	countQuery := `SELECT COUNT(*) FROM assignments a JOIN courses c ON c.id = a.course_id`
	var args []interface{}

	switch {
	case filter.CourseID != 0:
		query += ` WHERE a.course_id = $1`
		countQuery += ` WHERE a.course_id = $1`
		args = append(args, filter.CourseID)
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

	query += fmt.Sprintf(` ORDER BY a.due_date ASC NULLS LAST LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, pq.Limit, pq.Offset())

	var asgs []assignment.Assignment
	if err := repo.exec.Select(ctx, &asgs, query, args...); err != nil {
		return nil, 0, err
	}
	return asgs, total, nil
}

func (repo *assignmentRepository) QueryCourseAssignments(ctx context.Context, courseID int) ([]assignment.Assignment, error) {
	var asgs []assignment.Assignment
	err := repo.exec.Select(ctx, &asgs,
		assignmentSelect+` WHERE a.course_id = $1 ORDER BY a.due_date ASC NULLS LAST`, courseID)
	return asgs, err
}

func (repo *assignmentRepository) UpdateAssignment(ctx context.Context, asg assignment.Assignment) (assignment.Assignment, error) {
	affected, err := repo.exec.Exec(ctx,
		`UPDATE assignments SET title = $1, description = $2, due_date = $3, max_score = $4 WHERE id = $5`,
		asg.Title, asg.Description, asg.DueDate, asg.MaxScore, asg.ID,
	)
	if err != nil {
		return assignment.Assignment{}, err
	}
	if affected == 0 {
		return assignment.Assignment{}, assignment.ErrNotFound
	}
	return repo.GetAssignmentByID(ctx, asg.ID)
}

func (repo *assignmentRepository) DeleteAssignment(ctx context.Context, id int) error {
	affected, err := repo.exec.Exec(ctx, `DELETE FROM assignments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return assignment.ErrNotFound
	}
	return nil
}
