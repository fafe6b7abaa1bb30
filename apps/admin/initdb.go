package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

// schema relies on default constraint names (users_username_key etc.);
// the repositories map unique violations back to domain errors by those names.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS roles (
		id          SERIAL PRIMARY KEY,
		name        VARCHAR(50) NOT NULL UNIQUE,
		description TEXT,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS users (
		id            SERIAL PRIMARY KEY,
		username      VARCHAR(50) NOT NULL UNIQUE,
		email         VARCHAR(100) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		role_id       INT NOT NULL REFERENCES roles (id) ON DELETE RESTRICT,
		is_active     BOOLEAN NOT NULL DEFAULT TRUE,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_users_role ON users (role_id)`,

	`CREATE TABLE IF NOT EXISTS courses (
		id          SERIAL PRIMARY KEY,
		name        VARCHAR(100) NOT NULL,
		description TEXT,
		code        VARCHAR(20) NOT NULL UNIQUE,
		teacher_id  INT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_courses_teacher ON courses (teacher_id)`,

	`CREATE TABLE IF NOT EXISTS assignments (
		id          SERIAL PRIMARY KEY,
		title       VARCHAR(200) NOT NULL,
		description TEXT,
		course_id   INT NOT NULL REFERENCES courses (id) ON DELETE CASCADE,
		due_date    TIMESTAMPTZ,
		max_score   NUMERIC(5,2) NOT NULL DEFAULT 100.00 CHECK (max_score > 0),
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_assignments_course ON assignments (course_id)`,
	`CREATE INDEX IF NOT EXISTS idx_assignments_due_date ON assignments (due_date)`,

	`CREATE TABLE IF NOT EXISTS enrollments (
		id          SERIAL PRIMARY KEY,
		student_id  INT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		course_id   INT NOT NULL REFERENCES courses (id) ON DELETE CASCADE,
		enrolled_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (student_id, course_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_enrollments_student ON enrollments (student_id)`,
	`CREATE INDEX IF NOT EXISTS idx_enrollments_course ON enrollments (course_id)`,
}

func (cli *commandLine) initDB() error {
	ctx := context.Background()
	for _, stmt := range schemaStatements {
		if _, err := cli.exec.Exec(ctx, stmt); err != nil {
			return errors.Wrap(err, "creating schema")
		}
	}
	fmt.Println("database schema created")
	return nil
}
