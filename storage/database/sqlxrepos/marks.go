package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/marksengine/core/marks"
	"github.com/trezcool/marksengine/core/scoring"
)

const cieColumns = `id, subject_id, ia_test1_raw, ia_test2_raw, ia_scaled, cce_marks, lab_record_marks,
	lab_test1_raw, lab_test2_raw, lab_test_scaled, direct_cie_marks, final_cie, is_detained,
	created_at, updated_at`

const seeColumns = "id, subject_id, raw_scored, reduced_scored, is_absent, is_detained, created_at, updated_at"

type cieRow struct {
	ID             string       `db:"id"`
	SubjectID      string       `db:"subject_id"`
	IATest1Raw     null.Float64 `db:"ia_test1_raw"`
	IATest2Raw     null.Float64 `db:"ia_test2_raw"`
	IAScaled       null.Float64 `db:"ia_scaled"`
	CCEMarks       null.Float64 `db:"cce_marks"`
	LabRecordMarks null.Float64 `db:"lab_record_marks"`
	LabTest1Raw    null.Float64 `db:"lab_test1_raw"`
	LabTest2Raw    null.Float64 `db:"lab_test2_raw"`
	LabTestScaled  null.Float64 `db:"lab_test_scaled"`
	DirectCIEMarks null.Float64 `db:"direct_cie_marks"`
	FinalCIE       null.Float64 `db:"final_cie"`
	IsDetained     bool         `db:"is_detained"`
	CreatedAt      time.Time    `db:"created_at"`
	UpdatedAt      time.Time    `db:"updated_at"`
}

func newCIERow(rec marks.CIERecord) cieRow {
	return cieRow{
		ID:             rec.ID,
		SubjectID:      rec.SubjectID,
		IATest1Raw:     null.Float64FromPtr(rec.IATest1Raw),
		IATest2Raw:     null.Float64FromPtr(rec.IATest2Raw),
		IAScaled:       null.Float64FromPtr(rec.IAScaled),
		CCEMarks:       null.Float64FromPtr(rec.CCEMarks),
		LabRecordMarks: null.Float64FromPtr(rec.LabRecordMarks),
		LabTest1Raw:    null.Float64FromPtr(rec.LabTest1Raw),
		LabTest2Raw:    null.Float64FromPtr(rec.LabTest2Raw),
		LabTestScaled:  null.Float64FromPtr(rec.LabTestScaled),
		DirectCIEMarks: null.Float64FromPtr(rec.DirectCIEMarks),
		FinalCIE:       null.Float64FromPtr(rec.FinalCIE),
		IsDetained:     rec.IsDetained,
		CreatedAt:      rec.CreatedAt.UTC(),
		UpdatedAt:      rec.UpdatedAt.UTC(),
	}
}

func (row cieRow) toCIERecord() marks.CIERecord {
	return marks.CIERecord{
		ID:        row.ID,
		SubjectID: row.SubjectID,
		CIEResult: scoring.CIEResult{
			IATest1Raw:     row.IATest1Raw.Ptr(),
			IATest2Raw:     row.IATest2Raw.Ptr(),
			IAScaled:       row.IAScaled.Ptr(),
			CCEMarks:       row.CCEMarks.Ptr(),
			LabRecordMarks: row.LabRecordMarks.Ptr(),
			LabTest1Raw:    row.LabTest1Raw.Ptr(),
			LabTest2Raw:    row.LabTest2Raw.Ptr(),
			LabTestScaled:  row.LabTestScaled.Ptr(),
			DirectCIEMarks: row.DirectCIEMarks.Ptr(),
			FinalCIE:       row.FinalCIE.Ptr(),
			IsDetained:     row.IsDetained,
		},
		CreatedAt: row.CreatedAt.UTC(),
		UpdatedAt: row.UpdatedAt.UTC(),
	}
}

type seeRow struct {
	ID            string       `db:"id"`
	SubjectID     string       `db:"subject_id"`
	RawScored     null.Float64 `db:"raw_scored"`
	ReducedScored null.Float64 `db:"reduced_scored"`
	IsAbsent      bool         `db:"is_absent"`
	IsDetained    bool         `db:"is_detained"`
	CreatedAt     time.Time    `db:"created_at"`
	UpdatedAt     time.Time    `db:"updated_at"`
}

func newSEERow(mark marks.SEEMark) seeRow {
	return seeRow{
		ID:            mark.ID,
		SubjectID:     mark.SubjectID,
		RawScored:     null.Float64FromPtr(mark.RawScored),
		ReducedScored: null.Float64FromPtr(mark.ReducedScored),
		IsAbsent:      mark.IsAbsent,
		IsDetained:    mark.IsDetained,
		CreatedAt:     mark.CreatedAt.UTC(),
		UpdatedAt:     mark.UpdatedAt.UTC(),
	}
}

func (row seeRow) toSEEMark() marks.SEEMark {
	return marks.SEEMark{
		ID:            row.ID,
		SubjectID:     row.SubjectID,
		RawScored:     row.RawScored.Ptr(),
		ReducedScored: row.ReducedScored.Ptr(),
		IsAbsent:      row.IsAbsent,
		IsDetained:    row.IsDetained,
		CreatedAt:     row.CreatedAt.UTC(),
		UpdatedAt:     row.UpdatedAt.UTC(),
	}
}

type marksRepository struct {
	db *sqlx.DB
}

var _ marks.Repository = (*marksRepository)(nil) // interface compliance check

func NewMarksRepository(db *sqlx.DB) marks.Repository {
	return &marksRepository{db: db}
}

func (repo *marksRepository) GetCIERecord(ctx context.Context, subjectID string) (marks.CIERecord, error) {
	if !validID(subjectID) {
		return marks.CIERecord{}, marks.ErrCIENotFound
	}
	var row cieRow
	q := "SELECT " + cieColumns + " FROM cie_records WHERE subject_id = $1"
	if err := repo.db.GetContext(ctx, &row, q, subjectID); err != nil {
		return marks.CIERecord{}, trapNoRowsErr(err, marks.ErrCIENotFound, "finding CIE record")
	}
	return row.toCIERecord(), nil
}

// SaveCIERecord upserts the CIE record of a subject and syncs the detention flag of its SEE mark.
func (repo *marksRepository) SaveCIERecord(ctx context.Context, rec marks.CIERecord) (marks.CIERecord, error) {
	rec.ID = newID()
	var saved cieRow

	err := inTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		q := `INSERT INTO cie_records (` + cieColumns + `)
			VALUES (:id, :subject_id, :ia_test1_raw, :ia_test2_raw, :ia_scaled, :cce_marks, :lab_record_marks,
				:lab_test1_raw, :lab_test2_raw, :lab_test_scaled, :direct_cie_marks, :final_cie, :is_detained,
				:created_at, :updated_at)
			ON CONFLICT (subject_id) DO UPDATE SET
				ia_test1_raw = EXCLUDED.ia_test1_raw, ia_test2_raw = EXCLUDED.ia_test2_raw,
				ia_scaled = EXCLUDED.ia_scaled, cce_marks = EXCLUDED.cce_marks,
				lab_record_marks = EXCLUDED.lab_record_marks, lab_test1_raw = EXCLUDED.lab_test1_raw,
				lab_test2_raw = EXCLUDED.lab_test2_raw, lab_test_scaled = EXCLUDED.lab_test_scaled,
				direct_cie_marks = EXCLUDED.direct_cie_marks, final_cie = EXCLUDED.final_cie,
				is_detained = EXCLUDED.is_detained, updated_at = EXCLUDED.updated_at
			RETURNING ` + cieColumns
		stmt, err := tx.PrepareNamedContext(ctx, q)
		if err != nil {
			return errors.Wrap(err, "preparing CIE upsert")
		}
		defer func() { _ = stmt.Close() }()

		if err = stmt.GetContext(ctx, &saved, newCIERow(rec)); err != nil {
			return errors.Wrap(err, "upserting CIE record")
		}

		_, err = tx.ExecContext(
			ctx,
			"UPDATE see_marks SET is_detained = $1, updated_at = $2 WHERE subject_id = $3",
			saved.IsDetained, saved.UpdatedAt, saved.SubjectID,
		)
		return errors.Wrap(err, "syncing SEE detention")
	})
	if err != nil {
		return marks.CIERecord{}, err
	}
	return saved.toCIERecord(), nil
}

func (repo *marksRepository) QueryCIERecords(ctx context.Context, subjectIDs ...string) ([]marks.CIERecord, error) {
	var rows []cieRow
	q := "SELECT " + cieColumns + " FROM cie_records WHERE subject_id IN (?)"
	if err := selectIn(ctx, repo.db, &rows, q, subjectIDs); err != nil {
		return nil, errors.Wrap(err, "querying CIE records")
	}
	recs := make([]marks.CIERecord, 0, len(rows))
	for _, row := range rows {
		recs = append(recs, row.toCIERecord())
	}
	return recs, nil
}

func (repo *marksRepository) GetSEEMark(ctx context.Context, subjectID string) (marks.SEEMark, error) {
	if !validID(subjectID) {
		return marks.SEEMark{}, marks.ErrSEENotFound
	}
	var row seeRow
	q := "SELECT " + seeColumns + " FROM see_marks WHERE subject_id = $1"
	if err := repo.db.GetContext(ctx, &row, q, subjectID); err != nil {
		return marks.SEEMark{}, trapNoRowsErr(err, marks.ErrSEENotFound, "finding SEE mark")
	}
	return row.toSEEMark(), nil
}

func (repo *marksRepository) SaveSEEMark(ctx context.Context, mark marks.SEEMark) (marks.SEEMark, error) {
	mark.ID = newID()
	var saved seeRow
	q := `INSERT INTO see_marks (` + seeColumns + `)
		VALUES (:id, :subject_id, :raw_scored, :reduced_scored, :is_absent, :is_detained, :created_at, :updated_at)
		ON CONFLICT (subject_id) DO UPDATE SET
			raw_scored = EXCLUDED.raw_scored, reduced_scored = EXCLUDED.reduced_scored,
			is_absent = EXCLUDED.is_absent, is_detained = EXCLUDED.is_detained,
			updated_at = EXCLUDED.updated_at
		RETURNING ` + seeColumns
	stmt, err := repo.db.PrepareNamedContext(ctx, q)
	if err != nil {
		return marks.SEEMark{}, errors.Wrap(err, "preparing SEE upsert")
	}
	defer func() { _ = stmt.Close() }()

	if err = stmt.GetContext(ctx, &saved, newSEERow(mark)); err != nil {
		return marks.SEEMark{}, errors.Wrap(err, "upserting SEE mark")
	}
	return saved.toSEEMark(), nil
}

func (repo *marksRepository) QuerySEEMarks(ctx context.Context, subjectIDs ...string) ([]marks.SEEMark, error) {
	var rows []seeRow
	q := "SELECT " + seeColumns + " FROM see_marks WHERE subject_id IN (?)"
	if err := selectIn(ctx, repo.db, &rows, q, subjectIDs); err != nil {
		return nil, errors.Wrap(err, "querying SEE marks")
	}
	marksList := make([]marks.SEEMark, 0, len(rows))
	for _, row := range rows {
		marksList = append(marksList, row.toSEEMark())
	}
	return marksList, nil
}
