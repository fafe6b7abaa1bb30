// Package inmemdb provides in-memory repository implementations for tests.
package inmemdb

import (
	"sync"

	"github.com/trezcool/darasa/core/assignment"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/user"
)

type DB struct {
	mutex sync.RWMutex
	pk    int

	roles       map[int]*user.Role
	users       map[int]*user.User
	courses     map[int]*course.Course
	assignments map[int]*assignment.Assignment
	enrollments map[int]*course.Enrollment
}

func NewDB() *DB {
	db := &DB{
		roles:       make(map[int]*user.Role),
		users:       make(map[int]*user.User),
		courses:     make(map[int]*course.Course),
		assignments: make(map[int]*assignment.Assignment),
		enrollments: make(map[int]*course.Enrollment),
	}
	for _, name := range user.AllRoles {
		db.pk++
		db.roles[db.pk] = &user.Role{ID: db.pk, Name: name}
	}
	return db
}

// nextPK must be called with the write lock held.
func (db *DB) nextPK() int {
	db.pk++
	return db.pk
}

func paginate(total, offset, limit int) (lo, hi int) {
	if offset >= total {
		return 0, 0
	}
	hi = offset + limit
	if hi > total {
		hi = total
	}
	return offset, hi
}
