package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/marksengine/core/subject"
)

type subjectRepository struct {
	db *DB
}

var _ subject.Repository = (*subjectRepository)(nil) // interface compliance check

func NewSubjectRepository(db *DB) subject.Repository {
	return &subjectRepository{db: db}
}

func (repo *subjectRepository) findByCode(semesterID, code string) *subject.Subject {
	for _, subj := range repo.db.subjects {
		if subj.SemesterID == semesterID && subj.Code == code {
			return subj
		}
	}
	return nil
}

func (repo *subjectRepository) CheckCodeUniqueness(_ context.Context, semesterID, code string, excludedIDs ...string) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	subj := repo.findByCode(semesterID, code)
	if subj == nil {
		return nil
	}
	for _, id := range excludedIDs {
		if subj.ID == id {
			return nil
		}
	}
	return subject.ErrCodeExists
}

func (repo *subjectRepository) CreateSubject(_ context.Context, subj subject.Subject) (subject.Subject, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if repo.findByCode(subj.SemesterID, subj.Code) != nil {
		return subject.Subject{}, subject.ErrCodeExists
	}
	subj.ID = newID()
	repo.db.subjects[subj.ID] = &subj
	return subj, nil
}

func (repo *subjectRepository) QuerySubjects(_ context.Context, semesterID string) ([]subject.Subject, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	subjects := make([]subject.Subject, 0)
	for _, subj := range repo.db.subjects {
		if subj.SemesterID == semesterID {
			subjects = append(subjects, *subj)
		}
	}
	sort.Slice(subjects, func(i, j int) bool { return subjects[i].Code < subjects[j].Code })
	return subjects, nil
}

func (repo *subjectRepository) GetSubjectByID(_ context.Context, id string) (subject.Subject, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if subj, ok := repo.db.subjects[id]; ok {
		return *subj, nil
	}
	return subject.Subject{}, subject.ErrNotFound
}

func (repo *subjectRepository) UpdateSubject(_ context.Context, subj subject.Subject) (subject.Subject, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.subjects[subj.ID]
	if !ok {
		return subject.Subject{}, subject.ErrNotFound
	}
	// the owner and the creation date never change
	subj.SemesterID = orig.SemesterID
	subj.CreatedAt = orig.CreatedAt
	repo.db.subjects[subj.ID] = &subj
	return subj, nil
}

func (repo *subjectRepository) UpdateOrCreateSubject(_ context.Context, subj subject.Subject) (subject.Subject, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if orig := repo.findByCode(subj.SemesterID, subj.Code); orig != nil {
		subj.ID = orig.ID
		subj.CreatedAt = orig.CreatedAt
	} else {
		subj.ID = newID()
	}
	repo.db.subjects[subj.ID] = &subj
	return subj, nil
}

func (repo *subjectRepository) DeleteSubjectByID(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.subjects[id]; !ok {
		return subject.ErrNotFound
	}
	repo.db.deleteSubject(id)
	return nil
}
