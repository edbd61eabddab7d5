package sqlxrepos

import (
	"database/sql"
	"testing"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/marksengine/core/student"
)

func Test_trapNoRowsErr(t *testing.T) {
	assert.Equal(t, student.ErrNotFound, trapNoRowsErr(sql.ErrNoRows, student.ErrNotFound, "finding"))
	assert.Equal(t, student.ErrNotFound, trapNoRowsErr(errors.Wrap(sql.ErrNoRows, "get"), student.ErrNotFound, "finding"))

	err := trapNoRowsErr(sql.ErrConnDone, student.ErrNotFound, "finding")
	assert.Equal(t, sql.ErrConnDone, errors.Cause(err))
	assert.EqualError(t, err, "finding: "+sql.ErrConnDone.Error())
}

func Test_validID(t *testing.T) {
	assert.True(t, validID(newID()))
	assert.False(t, validID(""))
	assert.False(t, validID("lol"))
}

func Test_isUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pq.Error{Code: "23505"}))
	assert.True(t, isUniqueViolation(errors.Wrap(&pq.Error{Code: "23505"}, "inserting")))
	assert.False(t, isUniqueViolation(&pq.Error{Code: "23503"}))
	assert.False(t, isUniqueViolation(sql.ErrNoRows))
}
