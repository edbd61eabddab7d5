package inmemdb

import (
	"sync"

	"github.com/google/uuid"

	"github.com/trezcool/marksengine/core/marks"
	"github.com/trezcool/marksengine/core/semester"
	"github.com/trezcool/marksengine/core/student"
	"github.com/trezcool/marksengine/core/subject"
)

// DB is an in-memory store of all the records. A single lock guards every table so that
// cascading deletes stay consistent.
type DB struct {
	sync.RWMutex
	students  map[string]*student.Student
	semesters map[string]*semester.Semester
	subjects  map[string]*subject.Subject
	cie       map[string]*marks.CIERecord // by subject ID
	see       map[string]*marks.SEEMark   // by subject ID
}

func Open() *DB {
	return &DB{
		students:  make(map[string]*student.Student),
		semesters: make(map[string]*semester.Semester),
		subjects:  make(map[string]*subject.Subject),
		cie:       make(map[string]*marks.CIERecord),
		see:       make(map[string]*marks.SEEMark),
	}
}

// Reset drops every record.
func (db *DB) Reset() {
	db.Lock()
	defer db.Unlock()
	db.students = make(map[string]*student.Student)
	db.semesters = make(map[string]*semester.Semester)
	db.subjects = make(map[string]*subject.Subject)
	db.cie = make(map[string]*marks.CIERecord)
	db.see = make(map[string]*marks.SEEMark)
}

func newID() string {
	return uuid.New().String()
}

// the delete* helpers must be called with the write lock held.

func (db *DB) deleteSubject(id string) {
	delete(db.cie, id)
	delete(db.see, id)
	delete(db.subjects, id)
}

func (db *DB) deleteSemester(id string) {
	for subjID, subj := range db.subjects {
		if subj.SemesterID == id {
			db.deleteSubject(subjID)
		}
	}
	delete(db.semesters, id)
}

func (db *DB) deleteStudent(id string) {
	for semID, sem := range db.semesters {
		if sem.StudentID == id {
			db.deleteSemester(semID)
		}
	}
	delete(db.students, id)
}
