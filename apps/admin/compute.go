package main

import (
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/trezcool/marksengine/apps/shared"
	"github.com/trezcool/marksengine/core/marks"
	"github.com/trezcool/marksengine/core/scoring"
)

// markFlags maps the compute flags to the raw marks they set.
func markFlags(raw *scoring.RawMarks) map[string]**float64 {
	return map[string]**float64{
		"ia1":        &raw.IATest1Raw,
		"ia2":        &raw.IATest2Raw,
		"cce":        &raw.CCEMarks,
		"lab-record": &raw.LabRecordMarks,
		"lab1":       &raw.LabTest1Raw,
		"lab2":       &raw.LabTest2Raw,
		"direct":     &raw.DirectCIEMarks,
		"see":        &raw.SEERaw,
	}
}

func (cli *commandLine) computeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compute --type TYPE [--ia1 N] [--ia2 N] [--cce N] ...",
		Short: "Evaluate raw marks and print the result as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cli.compute(cmd.Flags())
		},
	}
	flags := cmd.Flags()
	flags.StringP("type", "t", "", "subject type: "+scoring.PCC.String()+", "+scoring.IPCC.String()+", ...")
	flags.Float64("ia1", 0, "IA test 1 (/50)")
	flags.Float64("ia2", 0, "IA test 2 (/50)")
	flags.Float64("cce", 0, "CCE marks")
	flags.Float64("lab-record", 0, "lab record marks")
	flags.Float64("lab1", 0, "lab test 1 (/100)")
	flags.Float64("lab2", 0, "lab test 2 (/100)")
	flags.Float64("direct", 0, "direct CIE marks (MC)")
	flags.Float64("see", 0, "SEE raw score (/100)")
	flags.Bool("absent", false, "absent from the SEE")
	return cmd
}

func (cli *commandLine) compute(flags *pflag.FlagSet) error {
	var req marks.PreviewRequest

	st, err := flags.GetString("type")
	if err != nil {
		return err
	}
	req.SubjectType = scoring.SubjectType(st)

	// unset flags stay nil: not entered
	for name, dst := range markFlags(&req.RawMarks) {
		if !flags.Changed(name) {
			continue
		}
		v, err := flags.GetFloat64(name)
		if err != nil {
			return err
		}
		*dst = &v
	}
	if req.IsAbsent, err = flags.GetBool("absent"); err != nil {
		return err
	}

	validate, _ := shared.NewValidator()
	if err = req.Validate(validate); err != nil {
		return err
	}

	ev, err := scoring.Evaluate(req.SubjectType, req.RawMarks)
	if err != nil {
		return errors.Wrap(err, "evaluating marks")
	}

	enc := json.NewEncoder(cli.out)
	enc.SetIndent("", "  ")
	return enc.Encode(ev)
}
