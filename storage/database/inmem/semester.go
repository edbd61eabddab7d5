package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/marksengine/core/semester"
)

type semesterRepository struct {
	db *DB
}

var _ semester.Repository = (*semesterRepository)(nil) // interface compliance check

func NewSemesterRepository(db *DB) semester.Repository {
	return &semesterRepository{db: db}
}

func (repo *semesterRepository) exists(studentID string, number int) bool {
	for _, sem := range repo.db.semesters {
		if sem.StudentID == studentID && sem.Number == number {
			return true
		}
	}
	return false
}

func (repo *semesterRepository) CheckNumberUniqueness(_ context.Context, studentID string, number int) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if repo.exists(studentID, number) {
		return semester.ErrNumberExists
	}
	return nil
}

func (repo *semesterRepository) CreateSemester(_ context.Context, sem semester.Semester) (semester.Semester, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if repo.exists(sem.StudentID, sem.Number) {
		return semester.Semester{}, semester.ErrNumberExists
	}
	sem.ID = newID()
	repo.db.semesters[sem.ID] = &sem
	return sem, nil
}

func (repo *semesterRepository) QuerySemesters(_ context.Context, studentID string) ([]semester.Semester, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	sems := make([]semester.Semester, 0)
	for _, sem := range repo.db.semesters {
		if sem.StudentID == studentID {
			sems = append(sems, *sem)
		}
	}
	sort.Slice(sems, func(i, j int) bool { return sems[i].Number < sems[j].Number })
	return sems, nil
}

func (repo *semesterRepository) GetSemesterByID(_ context.Context, id string) (semester.Semester, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if sem, ok := repo.db.semesters[id]; ok {
		return *sem, nil
	}
	return semester.Semester{}, semester.ErrNotFound
}

func (repo *semesterRepository) DeleteSemester(_ context.Context, studentID, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	sem, ok := repo.db.semesters[id]
	if !ok || sem.StudentID != studentID {
		return semester.ErrNotFound
	}
	repo.db.deleteSemester(id)
	return nil
}
