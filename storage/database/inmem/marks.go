package inmemdb

import (
	"context"

	"github.com/trezcool/marksengine/core/marks"
)

type marksRepository struct {
	db *DB
}

var _ marks.Repository = (*marksRepository)(nil) // interface compliance check

func NewMarksRepository(db *DB) marks.Repository {
	return &marksRepository{db: db}
}

func (repo *marksRepository) GetCIERecord(_ context.Context, subjectID string) (marks.CIERecord, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if rec, ok := repo.db.cie[subjectID]; ok {
		return *rec, nil
	}
	return marks.CIERecord{}, marks.ErrCIENotFound
}

func (repo *marksRepository) SaveCIERecord(_ context.Context, rec marks.CIERecord) (marks.CIERecord, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if orig, ok := repo.db.cie[rec.SubjectID]; ok {
		rec.ID = orig.ID
		rec.CreatedAt = orig.CreatedAt
	} else {
		rec.ID = newID()
	}
	repo.db.cie[rec.SubjectID] = &rec

	if see, ok := repo.db.see[rec.SubjectID]; ok {
		see.IsDetained = rec.IsDetained
		see.UpdatedAt = rec.UpdatedAt
	}
	return rec, nil
}

func (repo *marksRepository) QueryCIERecords(_ context.Context, subjectIDs ...string) ([]marks.CIERecord, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	recs := make([]marks.CIERecord, 0, len(subjectIDs))
	for _, id := range subjectIDs {
		if rec, ok := repo.db.cie[id]; ok {
			recs = append(recs, *rec)
		}
	}
	return recs, nil
}

func (repo *marksRepository) GetSEEMark(_ context.Context, subjectID string) (marks.SEEMark, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if mark, ok := repo.db.see[subjectID]; ok {
		return *mark, nil
	}
	return marks.SEEMark{}, marks.ErrSEENotFound
}

func (repo *marksRepository) SaveSEEMark(_ context.Context, mark marks.SEEMark) (marks.SEEMark, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if orig, ok := repo.db.see[mark.SubjectID]; ok {
		mark.ID = orig.ID
		mark.CreatedAt = orig.CreatedAt
	} else {
		mark.ID = newID()
	}
	repo.db.see[mark.SubjectID] = &mark
	return mark, nil
}

func (repo *marksRepository) QuerySEEMarks(_ context.Context, subjectIDs ...string) ([]marks.SEEMark, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	marksList := make([]marks.SEEMark, 0, len(subjectIDs))
	for _, id := range subjectIDs {
		if mark, ok := repo.db.see[id]; ok {
			marksList = append(marksList, *mark)
		}
	}
	return marksList, nil
}
