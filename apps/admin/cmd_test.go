package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/marksengine/apps/shared"
	"github.com/trezcool/marksengine/core"
	"github.com/trezcool/marksengine/core/scoring"
	"github.com/trezcool/marksengine/core/student"
)

func setup(t *testing.T) (*commandLine, *bytes.Buffer) {
	out := &bytes.Buffer{}
	conf := &core.Config{Database: core.DatabaseConfig{InMemory: true}}
	return newCommandLine(conf, nil, out), out
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func runCLITests(t *testing.T, cli *commandLine, tests []cliTest) {
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != nil {
				if tt.wantErr != nil {
					if err != tt.wantErr {
						t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
					}
				} else if tt.wantErrStr != "" {
					if err.Error() != tt.wantErrStr {
						t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
					}
				} else {
					t.Errorf("cli.run() unexpected error = %v", err)
				}
			} else if tt.wantErr != nil || tt.wantErrStr != "" {
				t.Errorf("cli.run() error = nil, wantErr %v%s", tt.wantErr, tt.wantErrStr)
			}
		})
	}
}

func Test_commandLine_run(t *testing.T) {
	cli, _ := setup(t)

	runCLITests(t, cli, []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErrStr: `unknown command "lol" for "admin"`},
	})
}

func Test_commandLine_migrate(t *testing.T) {
	cli, _ := setup(t)

	origOpen, origRun := openDBFunc, gooseRunFunc
	defer func() { openDBFunc, gooseRunFunc = origOpen, origRun }()

	openDBFunc = func(context.Context, *core.Config) (*sql.DB, error) {
		return sql.Open("postgres", "postgres://localhost/marks_test?sslmode=disable") // does not connect
	}
	gooseRunFunc = func(_ context.Context, _ *sql.DB, command string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to":
			if len(args) == 0 {
				return fmt.Errorf("up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		case "down-to":
			if len(args) == 0 {
				return fmt.Errorf("down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	runCLITests(t, cli, []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "down-to: non-int arg", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "create", args: []string{"migrate", "create", "grades", "sql"}},
		{name: "fix", args: []string{"migrate", "fix"}},
	})
}

func Test_commandLine_compute(t *testing.T) {
	cli, out := setup(t)

	runCLITests(t, cli, []cliTest{
		{name: "invalid type", args: []string{"compute", "--type", "lol", "--ia1", "45"}, wantErrStr: "Key: 'PreviewRequest.subject_type' Error:Field validation for 'subject_type' failed on the 'subjecttype' tag"},
		{name: "unknown flag", args: []string{"compute", "--type", "pcc", "--lol", "1"}, wantErrStr: "unknown flag: --lol"},
		{name: "over max", args: []string{"compute", "--type", "pcc", "--ia1", "90"}, wantErrStr: "ia_test1_raw: must be at most 50 for pcc subjects"},
		{name: "see over 100", args: []string{"compute", "--type", "pcc", "--ia1", "45", "--see", "101"}, wantErrStr: "see_raw: must be between 0 and 100"},
	})

	tests := []struct {
		name       string
		args       []string
		wantCIE    *float64
		wantStatus scoring.Status
		wantTotal  *float64
	}{
		{
			name:       "pcc cie only",
			args:       []string{"compute", "--type", "pcc", "--ia1", "45", "--ia2", "40", "--cce", "18"},
			wantCIE:    ptr(43.5),
			wantStatus: scoring.StatusCIEOnly,
		},
		{
			name:       "pcc complete",
			args:       []string{"compute", "-t", "PCC", "--ia1", "45", "--ia2", "40", "--cce", "18", "--see", "81"},
			wantCIE:    ptr(43.5),
			wantStatus: scoring.StatusComplete,
			wantTotal:  ptr(84),
		},
		{
			name:       "mc",
			args:       []string{"compute", "--type", "mc", "--direct", "95"},
			wantCIE:    ptr(95),
			wantStatus: scoring.StatusComplete,
		},
		{
			name:       "nothing entered",
			args:       []string{"compute", "--type", "ipcc"},
			wantStatus: scoring.StatusPending,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out.Reset()
			require.NoError(t, cli.run(append([]string{"admin"}, tt.args...)))

			var ev scoring.Evaluation
			require.NoError(t, json.Unmarshal(out.Bytes(), &ev))
			assert.Equal(t, tt.wantCIE, ev.CIE.FinalCIE)
			assert.Equal(t, tt.wantStatus, ev.Status)
			assert.Equal(t, tt.wantTotal, ev.Total)
		})
	}
}

func Test_commandLine_seed(t *testing.T) {
	cli, out := setup(t)

	var app *shared.App
	cli.newApp = func(ctx context.Context) (*shared.App, error) {
		var err error
		app, err = shared.NewApp(ctx, cli.conf, nil)
		return app, err
	}

	runCLITests(t, cli, []cliTest{
		{name: "no file", args: []string{"seed"}, wantErr: errHelp},
		{name: "missing file", args: []string{"seed", "-f", "testdata/lol.yaml"}, wantErrStr: "reading fixtures: open testdata/lol.yaml: no such file or directory"},
	})

	out.Reset()
	require.NoError(t, cli.run([]string{"admin", "seed", "-f", "testdata/fixtures.yaml"}))
	assert.Equal(t, "Seeded 1 students, 1 semesters, 3 subjects, 3 CIE records and 1 SEE marks.\n", out.String())

	ctx := context.Background()
	students, err := app.StudentSvc.List(ctx, &student.QueryFilter{}, nil)
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, "1AB23CS001", students[0].USN)

	sems, err := app.SemesterSvc.ListByStudent(ctx, students[0].ID)
	require.NoError(t, err)
	require.Len(t, sems, 1)

	summary, err := app.MarksSvc.Summary(ctx, sems[0].ID)
	require.NoError(t, err)
	require.Len(t, summary.Subjects, 3)

	statuses := make(map[string]scoring.Status, len(summary.Subjects))
	for _, s := range summary.Subjects {
		statuses[s.SubjectCode] = s.Status
	}
	assert.Equal(t, map[string]scoring.Status{
		"BCS301":  scoring.StatusComplete,
		"BCSL305": scoring.StatusCIEOnly,
		"BSCK307": scoring.StatusComplete,
	}, statuses)
}

func ptr(v float64) *float64 {
	return &v
}
