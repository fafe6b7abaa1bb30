package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/assignment"
)

type assignmentRepository struct {
	db *DB
}

var _ assignment.Repository = (*assignmentRepository)(nil)

func NewAssignmentRepository(db *DB) assignment.Repository {
	return &assignmentRepository{db: db}
}

// query must be called with at least the read lock held.
func (repo *assignmentRepository) query() []assignment.Assignment {
	asgs := make([]assignment.Assignment, 0, len(repo.db.assignments))
	for _, a := range repo.db.assignments {
		asgs = append(asgs, *a)
	}
	return asgs
}

func (repo *assignmentRepository) CreateAssignment(_ context.Context, asg assignment.Assignment) (assignment.Assignment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if crs, ok := repo.db.courses[asg.CourseID]; ok {
		asg.CourseName = crs.Name
		asg.CourseCode = crs.Code
		asg.TeacherID = crs.TeacherID
	}
	asg.ID = repo.db.nextPK()
	repo.db.assignments[asg.ID] = &asg
	return asg, nil
}

func (repo *assignmentRepository) GetAssignmentByID(_ context.Context, id int) (assignment.Assignment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if asg, ok := repo.db.assignments[id]; ok {
		return *asg, nil
	}
	return assignment.Assignment{}, assignment.ErrNotFound
}

func (repo *assignmentRepository) FilterAssignments(_ context.Context, filter assignment.Filter, pq core.PageQuery) ([]assignment.Assignment, int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var asgs []assignment.Assignment
	for _, asg := range repo.query() {
		switch {
		case filter.CourseID != 0 && asg.CourseID != filter.CourseID:
		case filter.TeacherID != 0 && asg.TeacherID != filter.TeacherID:
		case filter.StudentID != 0 && !repo.studentEnrolled(asg.CourseID, filter.StudentID):
		default:
			asgs = append(asgs, asg)
		}
	}
	sortByDueDate(asgs)

	total := len(asgs)
	lo, hi := paginate(total, pq.Offset(), pq.Limit)
	return asgs[lo:hi], total, nil
}

func (repo *assignmentRepository) QueryCourseAssignments(_ context.Context, courseID int) ([]assignment.Assignment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var asgs []assignment.Assignment
	for _, asg := range repo.query() {
		if asg.CourseID == courseID {
			asgs = append(asgs, asg)
		}
	}
	sortByDueDate(asgs)
	return asgs, nil
}

func (repo *assignmentRepository) UpdateAssignment(_ context.Context, asg assignment.Assignment) (assignment.Assignment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	origAsg, ok := repo.db.assignments[asg.ID]
	if !ok {
		return assignment.Assignment{}, assignment.ErrNotFound
	}
	origAsg.Title = asg.Title
	origAsg.Description = asg.Description
	origAsg.DueDate = asg.DueDate
	origAsg.MaxScore = asg.MaxScore
	return *origAsg, nil
}

func (repo *assignmentRepository) DeleteAssignment(_ context.Context, id int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.assignments[id]; !ok {
		return assignment.ErrNotFound
	}
	delete(repo.db.assignments, id)
	return nil
}

// studentEnrolled must be called with at least the read lock held.
func (repo *assignmentRepository) studentEnrolled(courseID, studentID int) bool {
	for _, enr := range repo.db.enrollments {
		if enr.CourseID == courseID && enr.StudentID == studentID {
			return true
		}
	}
	return false
}

// sortByDueDate orders by closest due date first, undated assignments last.
func sortByDueDate(asgs []assignment.Assignment) {
	sort.Slice(asgs, func(i, j int) bool {
		di, dj := asgs[i].DueDate, asgs[j].DueDate
		switch {
		case di == nil:
			return false
		case dj == nil:
			return true
		default:
			return di.Before(*dj)
		}
	})
}
