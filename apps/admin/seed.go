package main

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/user"
)

// seed loads the fixed roles plus a demo dataset. Every statement is
// idempotent so the command can be re-run safely.
func (cli *commandLine) seed() error {
	ctx := context.Background()

	roles := [][]interface{}{
		{user.RoleAdmin, "System administrator with full access"},
		{user.RoleTeacher, "Teacher managing courses and assignments"},
		{user.RoleStudent, "Student enrolling in courses"},
		{user.RoleAdministrative, "Administrative staff with limited access"},
	}
	if _, err := cli.exec.ExecMany(ctx,
		`INSERT INTO roles (name, description) VALUES ($1, $2)
		 ON CONFLICT (name) DO NOTHING`,
		roles,
	); err != nil {
		return errors.Wrap(err, "seeding roles")
	}

	demoUsers := []struct {
		username, email, password, role string
	}{
		{"admin", "admin@academic.com", "Admin123!", user.RoleAdmin},
		{"teacher1", "teacher1@academic.com", "Teacher123!", user.RoleTeacher},
		{"teacher2", "teacher2@academic.com", "Teacher123!", user.RoleTeacher},
		{"student1", "student1@academic.com", "Student123!", user.RoleStudent},
		{"student2", "student2@academic.com", "Student123!", user.RoleStudent},
		{"student3", "student3@academic.com", "Student123!", user.RoleStudent},
		{"admin_staff", "admin.staff@academic.com", "Admin123!", user.RoleAdministrative},
	}
	userArgs := make([][]interface{}, 0, len(demoUsers))
	for _, du := range demoUsers {
		var usr user.User
		if err := usr.SetPassword(du.password); err != nil {
			return errors.Wrap(err, "hashing password")
		}
		userArgs = append(userArgs, []interface{}{du.username, du.email, usr.PasswordHash, du.role})
	}
	if _, err := cli.exec.ExecMany(ctx,
		`INSERT INTO users (username, email, password_hash, role_id)
		 SELECT $1, $2, $3, r.id FROM roles r WHERE r.name = $4
		 ON CONFLICT (username) DO NOTHING`,
		userArgs,
	); err != nil {
		return errors.Wrap(err, "seeding users")
	}

	courses := [][]interface{}{
		{"Advanced Mathematics", "Differential and integral calculus", "MATH301", "teacher1"},
		{"Web Programming", "Modern web application development", "CS201", "teacher1"},
		{"Databases", "Database design and implementation", "CS301", "teacher2"},
		{"General Physics", "Classical mechanics and thermodynamics", "PHYS101", "teacher2"},
	}
	if _, err := cli.exec.ExecMany(ctx,
		`INSERT INTO courses (name, description, code, teacher_id)
		 SELECT $1, $2, $3, u.id FROM users u WHERE u.username = $4
		 ON CONFLICT (code) DO NOTHING`,
		courses,
	); err != nil {
		return errors.Wrap(err, "seeding courses")
	}

	dueIn7 := time.Now().UTC().Add(7 * 24 * time.Hour)
	dueIn14 := time.Now().UTC().Add(14 * 24 * time.Hour)
	assignments := [][]interface{}{
		{"Homework 1: Derivatives", "Partial derivative exercises", dueIn7, 100.00, "MATH301"},
		{"Final Project: Calculator", "Implement a scientific calculator", dueIn14, 150.00, "MATH301"},
		{"Lab 1: HTML and CSS", "Build a responsive page", dueIn7, 80.00, "CS201"},
		{"Project: CRUD System", "Build a complete web application", dueIn14, 200.00, "CS201"},
		{"Homework 1: Normalization", "Normal form exercises", dueIn7, 100.00, "CS301"},
		{"Exam: Kinematics", "Rectilinear motion exam", dueIn7, 120.00, "PHYS101"},
	}
	if _, err := cli.exec.ExecMany(ctx,
		`INSERT INTO assignments (title, description, due_date, max_score, course_id)
		 SELECT $1, $2, $3, $4, c.id FROM courses c
		 WHERE c.code = $5
		   AND NOT EXISTS (SELECT 1 FROM assignments a WHERE a.title = $1 AND a.course_id = c.id)`,
		assignments,
	); err != nil {
		return errors.Wrap(err, "seeding assignments")
	}

	enrollments := [][]interface{}{
		{"student1", "MATH301"},
		{"student1", "CS201"},
		{"student2", "CS201"},
		{"student2", "CS301"},
		{"student3", "PHYS101"},
		{"student3", "MATH301"},
	}
	if _, err := cli.exec.ExecMany(ctx,
		`INSERT INTO enrollments (student_id, course_id)
		 SELECT u.id, c.id FROM users u, courses c
		 WHERE u.username = $1 AND c.code = $2
		 ON CONFLICT (student_id, course_id) DO NOTHING`,
		enrollments,
	); err != nil {
		return errors.Wrap(err, "seeding enrollments")
	}

	fmt.Println("demo data loaded")
	return nil
}
