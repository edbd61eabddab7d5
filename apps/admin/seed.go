package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/trezcool/marksengine/apps/shared"
	"github.com/trezcool/marksengine/core/marks"
	"github.com/trezcool/marksengine/core/semester"
	"github.com/trezcool/marksengine/core/student"
	"github.com/trezcool/marksengine/core/subject"
)

type (
	seedFixtures struct {
		Students []seedStudent `yaml:"students"`
	}

	seedStudent struct {
		student.NewStudent `yaml:",inline"`
		Semesters          []seedSemester `yaml:"semesters"`
	}

	seedSemester struct {
		semester.NewSemester `yaml:",inline"`
		Subjects             []seedSubject `yaml:"subjects"`
	}

	seedSubject struct {
		subject.NewSubject `yaml:",inline"`
		CIE                *marks.CIEInput `yaml:"cie"`
		SEE                *marks.SEEInput `yaml:"see"`
	}

	seedReport struct {
		Students, Semesters, Subjects, CIERecords, SEEMarks int
	}
)

func (cli *commandLine) seedCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed -f FIXTURES",
		Short: "Load students, semesters, subjects and marks from a YAML fixtures file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if file == "" {
				_ = cmd.Usage()
				return errHelp
			}
			return cli.seed(cmd.Context(), file)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "path of the YAML fixtures file")
	return cmd
}

func loadFixtures(path string) (seedFixtures, error) {
	var fixtures seedFixtures
	data, err := os.ReadFile(path)
	if err != nil {
		return fixtures, errors.Wrap(err, "reading fixtures")
	}
	if err = yaml.Unmarshal(data, &fixtures); err != nil {
		return fixtures, errors.Wrap(err, "decoding fixtures")
	}
	return fixtures, nil
}

func (cli *commandLine) seed(ctx context.Context, path string) error {
	fixtures, err := loadFixtures(path)
	if err != nil {
		return err
	}

	app, err := cli.newApp(ctx)
	if err != nil {
		return errors.Wrap(err, "setting up app")
	}
	defer func() { _ = app.Close() }()

	var report seedReport
	for _, fs := range fixtures.Students {
		if err = seedOneStudent(ctx, app, fs, &report); err != nil {
			return errors.Wrapf(err, "seeding student %q", fs.USN)
		}
	}

	_, _ = fmt.Fprintf(
		cli.out, "Seeded %d students, %d semesters, %d subjects, %d CIE records and %d SEE marks.\n",
		report.Students, report.Semesters, report.Subjects, report.CIERecords, report.SEEMarks,
	)
	return nil
}

func seedOneStudent(ctx context.Context, app *shared.App, fs seedStudent, report *seedReport) error {
	ns := fs.NewStudent
	if err := ns.Validate(app.Validate); err != nil {
		return err
	}
	std, err := app.StudentSvc.Create(ctx, ns)
	if err != nil {
		return err
	}
	report.Students++

	for _, fsem := range fs.Semesters {
		nsem := fsem.NewSemester
		if err = nsem.Validate(app.Validate); err != nil {
			return err
		}
		sem, err := app.SemesterSvc.Create(ctx, std.ID, nsem)
		if err != nil {
			return errors.Wrapf(err, "semester %d", nsem.Number)
		}
		report.Semesters++

		for _, fsubj := range fsem.Subjects {
			if err = seedOneSubject(ctx, app, sem.ID, fsubj, report); err != nil {
				return errors.Wrapf(err, "semester %d: subject %q", nsem.Number, fsubj.Code)
			}
		}
	}
	return nil
}

func seedOneSubject(ctx context.Context, app *shared.App, semesterID string, fsubj seedSubject, report *seedReport) error {
	nsubj := fsubj.NewSubject
	if err := nsubj.Validate(app.Validate); err != nil {
		return err
	}
	subj, err := app.SubjectSvc.Create(ctx, semesterID, nsubj)
	if err != nil {
		return err
	}
	report.Subjects++

	if fsubj.CIE != nil {
		if err = fsubj.CIE.Validate(app.Validate, subj.Type); err != nil {
			return err
		}
		if _, err = app.MarksSvc.SaveCIE(ctx, subj.ID, *fsubj.CIE); err != nil {
			return err
		}
		report.CIERecords++
	}
	if fsubj.SEE != nil {
		if err = fsubj.SEE.Validate(app.Validate); err != nil {
			return err
		}
		if _, err = app.MarksSvc.SaveSEE(ctx, subj.ID, *fsubj.SEE); err != nil {
			return err
		}
		report.SEEMarks++
	}
	return nil
}
