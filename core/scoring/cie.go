package scoring

import "github.com/pkg/errors"

// RawMarks holds the raw component scores of a subject. A nil field has not been entered yet.
type RawMarks struct {
	IATest1Raw     *float64 `json:"ia_test1_raw" yaml:"ia_test1_raw"`
	IATest2Raw     *float64 `json:"ia_test2_raw" yaml:"ia_test2_raw"`
	CCEMarks       *float64 `json:"cce_marks" yaml:"cce_marks"`
	LabRecordMarks *float64 `json:"lab_record_marks" yaml:"lab_record_marks"`
	LabTest1Raw    *float64 `json:"lab_test1_raw" yaml:"lab_test1_raw"`
	LabTest2Raw    *float64 `json:"lab_test2_raw" yaml:"lab_test2_raw"`
	DirectCIEMarks *float64 `json:"direct_cie_marks" yaml:"direct_cie_marks"`
	SEERaw         *float64 `json:"see_raw" yaml:"see_raw"`
	IsAbsent       bool     `json:"is_absent" yaml:"is_absent"`
}

// CIEResult is the computed CIE of a subject. Raw inputs are echoed back for display.
type CIEResult struct {
	IATest1Raw     *float64 `json:"ia_test1_raw"`
	IATest2Raw     *float64 `json:"ia_test2_raw"`
	IAScaled       *float64 `json:"ia_scaled"`
	CCEMarks       *float64 `json:"cce_marks"`
	LabRecordMarks *float64 `json:"lab_record_marks"`
	LabTest1Raw    *float64 `json:"lab_test1_raw"`
	LabTest2Raw    *float64 `json:"lab_test2_raw"`
	LabTestScaled  *float64 `json:"lab_test_scaled"`
	DirectCIEMarks *float64 `json:"direct_cie_marks"`
	FinalCIE       *float64 `json:"final_cie"` // /50, or /100 for MC
	IsDetained     bool     `json:"is_detained"`
}

// ComputeCIE applies the CIE formula of st to the raw marks.
//
// Every scaled term is rounded to 2 decimals before being summed, then the sum is clamped
// to [0, st.MaxCIE()] and rounded again. FinalCIE stays nil until at least one component
// used by the formula has been entered.
func ComputeCIE(st SubjectType, raw RawMarks) (CIEResult, error) {
	if !st.Valid() {
		return CIEResult{}, errors.Wrapf(ErrInvalidSubjectType, "%q", string(st))
	}

	res := CIEResult{
		IATest1Raw:     sanitize(raw.IATest1Raw),
		IATest2Raw:     sanitize(raw.IATest2Raw),
		CCEMarks:       sanitize(raw.CCEMarks),
		LabRecordMarks: sanitize(raw.LabRecordMarks),
		LabTest1Raw:    sanitize(raw.LabTest1Raw),
		LabTest2Raw:    sanitize(raw.LabTest2Raw),
		DirectCIEMarks: sanitize(raw.DirectCIEMarks),
	}

	switch st {
	case MC:
		if res.DirectCIEMarks != nil {
			res.FinalCIE = ptr(finalize(*res.DirectCIEMarks, st))
		}

	case PCCL:
		// lab record /30 + lab test (/100) -> 20
		if res.LabTest1Raw != nil {
			res.LabTestScaled = ptr(round2(*res.LabTest1Raw * 20.0 / 100.0))
		}
		if anyPresent(res.LabRecordMarks, res.LabTest1Raw) {
			total := round2(valueOr0(res.LabRecordMarks) + valueOr0(res.LabTestScaled))
			res.FinalCIE = ptr(finalize(total, st))
		}

	case IPCC:
		// IA avg (/50) -> 20, CCE /10, lab record /12, lab test avg (/100) -> 8
		if avg, ok := mean(res.IATest1Raw, res.IATest2Raw); ok {
			res.IAScaled = ptr(round2(avg * 20.0 / 50.0))
		}
		if avg, ok := mean(res.LabTest1Raw, res.LabTest2Raw); ok {
			res.LabTestScaled = ptr(round2(avg * 8.0 / 100.0))
		}
		if anyPresent(res.IATest1Raw, res.IATest2Raw, res.CCEMarks, res.LabRecordMarks, res.LabTest1Raw, res.LabTest2Raw) {
			total := round2(valueOr0(res.IAScaled) + valueOr0(res.CCEMarks))
			total = round2(total + valueOr0(res.LabRecordMarks))
			total = round2(total + valueOr0(res.LabTestScaled))
			res.FinalCIE = ptr(finalize(total, st))
		}

	default: // PCC, ESC, AEC, UHV, Other
		// IA avg (/50) -> 30, CCE /20
		if avg, ok := mean(res.IATest1Raw, res.IATest2Raw); ok {
			res.IAScaled = ptr(round2(avg * 30.0 / 50.0))
		}
		if anyPresent(res.IATest1Raw, res.IATest2Raw, res.CCEMarks) {
			total := round2(valueOr0(res.IAScaled) + valueOr0(res.CCEMarks))
			res.FinalCIE = ptr(finalize(total, st))
		}
	}

	res.IsDetained = IsDetained(st, res.FinalCIE)
	return res, nil
}

// IsDetained reports whether a final CIE bars the student from the SEE. Never true for MC.
func IsDetained(st SubjectType, finalCIE *float64) bool {
	if st.IsMandatory() || finalCIE == nil {
		return false
	}
	return *finalCIE < DetentionThreshold
}

func finalize(total float64, st SubjectType) float64 {
	return round2(clamp(total, 0, st.MaxCIE()))
}
