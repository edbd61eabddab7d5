package logsvc

import (
	"bytes"
	"log"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/marksengine/core"
)

func TestRollbarLogger_prepare(t *testing.T) {
	l := RollbarLogger{std: log.New(&bytes.Buffer{}, "", 0)}
	err := errors.New("boom")
	req := core.RequestInfo{ID: "req-1", Method: "GET", Path: "/api/students"}

	args := l.prepare("failed", []interface{}{err, map[string]interface{}{"key": "summary:1"}, req, core.RequestInfo{ID: "req-2"}})
	require.Len(t, args, 3)
	assert.Equal(t, "failed", args[0])
	assert.Equal(t, err, args[1])
	assert.Equal(t, map[string]interface{}{
		"key":            "summary:1",
		"request_id":     "req-1",
		"request_method": "GET",
		"request_path":   "/api/students",
	}, args[2])

	args = l.prepare("plain", nil)
	assert.Equal(t, []interface{}{"plain"}, args)
}

func TestRollbarLogger_print(t *testing.T) {
	buf := &bytes.Buffer{}
	l := RollbarLogger{std: log.New(buf, "", 0)}
	l.print("hello", []interface{}{"world"})
	assert.Equal(t, "hello\nworld\n", buf.String())
}
