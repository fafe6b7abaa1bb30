package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/course"
)

type courseRepository struct {
	db *DB
}

var _ course.Repository = (*courseRepository)(nil)

func NewCourseRepository(db *DB) course.Repository {
	return &courseRepository{db: db}
}

// query must be called with at least the read lock held.
func (repo *courseRepository) query() []course.Course {
	courses := make([]course.Course, 0, len(repo.db.courses))
	for _, c := range repo.db.courses {
		courses = append(courses, *c)
	}
	return courses
}

func (repo *courseRepository) CheckCodeUniqueness(_ context.Context, code string, excludedCourses ...course.Course) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, crs := range repo.query() {
		var excluded bool
		for _, excl := range excludedCourses {
			if excl.ID == crs.ID {
				excluded = true
				break
			}
		}
		if !excluded && crs.Code == code {
			return course.ErrCodeExists
		}
	}
	return nil
}

func (repo *courseRepository) CreateCourse(_ context.Context, crs course.Course) (course.Course, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, existing := range repo.db.courses {
		if existing.Code == crs.Code {
			return course.Course{}, course.ErrCodeExists
		}
	}
	if teacher, ok := repo.db.users[crs.TeacherID]; ok {
		crs.TeacherName = teacher.Username
	}
	crs.ID = repo.db.nextPK()
	repo.db.courses[crs.ID] = &crs
	return crs, nil
}

func (repo *courseRepository) GetCourseByID(_ context.Context, id int) (course.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if crs, ok := repo.db.courses[id]; ok {
		return *crs, nil
	}
	return course.Course{}, course.ErrNotFound
}

func (repo *courseRepository) FilterCourses(_ context.Context, filter course.Filter, pq core.PageQuery) ([]course.Course, int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var courses []course.Course
	for _, crs := range repo.query() {
		switch {
		case filter.TeacherID != 0 && crs.TeacherID != filter.TeacherID:
		case filter.StudentID != 0 && !repo.isEnrolled(crs.ID, filter.StudentID):
		default:
			courses = append(courses, crs)
		}
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].CreatedAt.After(courses[j].CreatedAt) })

	total := len(courses)
	lo, hi := paginate(total, pq.Offset(), pq.Limit)
	return courses[lo:hi], total, nil
}

func (repo *courseRepository) UpdateCourse(_ context.Context, crs course.Course) (course.Course, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	origCrs, ok := repo.db.courses[crs.ID]
	if !ok {
		return course.Course{}, course.ErrNotFound
	}
	origCrs.Name = crs.Name
	origCrs.Code = crs.Code
	origCrs.Description = crs.Description
	return *origCrs, nil
}

func (repo *courseRepository) DeleteCourse(_ context.Context, id int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.courses[id]; !ok {
		return course.ErrNotFound
	}
	delete(repo.db.courses, id)
	// cascades
	for aid, asg := range repo.db.assignments {
		if asg.CourseID == id {
			delete(repo.db.assignments, aid)
		}
	}
	for eid, enr := range repo.db.enrollments {
		if enr.CourseID == id {
			delete(repo.db.enrollments, eid)
		}
	}
	return nil
}

func (repo *courseRepository) CreateEnrollment(_ context.Context, courseID, studentID int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if repo.isEnrolled(courseID, studentID) {
		return course.ErrAlreadyEnrolled
	}
	enr := course.Enrollment{
		ID:         repo.db.nextPK(),
		StudentID:  studentID,
		CourseID:   courseID,
		EnrolledAt: time.Now().UTC(),
	}
	repo.db.enrollments[enr.ID] = &enr
	return nil
}

func (repo *courseRepository) IsEnrolled(_ context.Context, courseID, studentID int) (bool, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.isEnrolled(courseID, studentID), nil
}

// isEnrolled must be called with at least the read lock held.
func (repo *courseRepository) isEnrolled(courseID, studentID int) bool {
	for _, enr := range repo.db.enrollments {
		if enr.CourseID == courseID && enr.StudentID == studentID {
			return true
		}
	}
	return false
}

func (repo *courseRepository) QueryEnrolledStudents(_ context.Context, courseID int) ([]course.EnrolledStudent, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var students []course.EnrolledStudent
	for _, enr := range repo.db.enrollments {
		if enr.CourseID != courseID {
			continue
		}
		if usr, ok := repo.db.users[enr.StudentID]; ok {
			students = append(students, course.EnrolledStudent{
				ID:         usr.ID,
				Username:   usr.Username,
				Email:      usr.Email,
				EnrolledAt: enr.EnrolledAt,
			})
		}
	}
	sort.Slice(students, func(i, j int) bool { return students[i].EnrolledAt.After(students[j].EnrolledAt) })
	return students, nil
}
