package scoring

import (
	"math"
	"reflect"
	"testing"

	"github.com/pkg/errors"
)

func f(x float64) *float64 { return &x }

func fmtPtr(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func ptrEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return math.Abs(*a-*b) < 1e-9
}

func TestComputeCIE(t *testing.T) {
	tests := []struct {
		name         string
		st           SubjectType
		raw          RawMarks
		wantIA       *float64
		wantLab      *float64
		wantFinal    *float64
		wantDetained bool
	}{
		{
			name: "pcc: two IA tests and CCE", st: PCC,
			raw:    RawMarks{IATest1Raw: f(45), IATest2Raw: f(40), CCEMarks: f(18)},
			wantIA: f(25.5), wantFinal: f(43.5),
		},
		{
			name: "pcc: single IA test", st: PCC,
			raw:    RawMarks{IATest1Raw: f(40), CCEMarks: f(15)},
			wantIA: f(24), wantFinal: f(39),
		},
		{
			name: "pcc: only CCE entered", st: PCC,
			raw:       RawMarks{CCEMarks: f(18)},
			wantFinal: f(18), wantDetained: true,
		},
		{
			name: "pcc: nothing entered", st: PCC,
		},
		{
			name: "pcc: clamped to 50", st: PCC,
			raw:    RawMarks{IATest1Raw: f(50), IATest2Raw: f(50), CCEMarks: f(25)},
			wantIA: f(30), wantFinal: f(50),
		},
		{
			name: "pcc: intermediate rounding lifts above detention", st: PCC,
			raw:    RawMarks{IATest1Raw: f(33.33)},
			wantIA: f(20), wantFinal: f(20),
		},
		{
			name: "esc uses the pcc formula", st: ESC,
			raw:    RawMarks{IATest1Raw: f(43), IATest2Raw: f(47), CCEMarks: f(18)},
			wantIA: f(27), wantFinal: f(45),
		},
		{
			name: "aec uses the pcc formula", st: AEC,
			raw:    RawMarks{IATest1Raw: f(33), IATest2Raw: f(34), CCEMarks: f(14)},
			wantIA: f(20.1), wantFinal: f(34.1),
		},
		{
			name: "uhv detained", st: UHV,
			raw:    RawMarks{IATest1Raw: f(14), IATest2Raw: f(16), CCEMarks: f(1)},
			wantIA: f(9), wantFinal: f(10), wantDetained: true,
		},
		{
			name: "other uses the pcc formula", st: Other,
			raw:    RawMarks{IATest2Raw: f(25), CCEMarks: f(10)},
			wantIA: f(15), wantFinal: f(25),
		},
		{
			name: "ipcc: all components", st: IPCC,
			raw: RawMarks{
				IATest1Raw: f(30), IATest2Raw: f(20), CCEMarks: f(7),
				LabRecordMarks: f(10), LabTest1Raw: f(80), LabTest2Raw: f(70),
			},
			wantIA: f(10), wantLab: f(6), wantFinal: f(33),
		},
		{
			name: "ipcc: half IA mean", st: IPCC,
			raw:    RawMarks{IATest1Raw: f(33), IATest2Raw: f(34), CCEMarks: f(9), LabRecordMarks: f(11), LabTest1Raw: f(33)},
			wantIA: f(13.4), wantLab: f(2.64), wantFinal: f(36.04),
		},
		{
			name: "ipcc: only lab entered", st: IPCC,
			raw:     RawMarks{LabTest2Raw: f(50)},
			wantLab: f(4), wantFinal: f(4), wantDetained: true,
		},
		{
			name: "pccl: record and lab test", st: PCCL,
			raw:     RawMarks{LabRecordMarks: f(28), LabTest1Raw: f(90)},
			wantLab: f(18), wantFinal: f(46),
		},
		{
			name: "pccl: second lab test is ignored", st: PCCL,
			raw:     RawMarks{LabRecordMarks: f(22), LabTest1Raw: f(74), LabTest2Raw: f(100)},
			wantLab: f(14.8), wantFinal: f(36.8),
		},
		{
			name: "pccl: only second lab test entered", st: PCCL,
			raw: RawMarks{LabTest2Raw: f(100)},
		},
		{
			name: "pccl: record only", st: PCCL,
			raw:       RawMarks{LabRecordMarks: f(30)},
			wantFinal: f(30),
		},
		{
			name: "mc: direct marks", st: MC,
			raw:       RawMarks{DirectCIEMarks: f(95)},
			wantFinal: f(95),
		},
		{
			name: "mc: low marks are never detained", st: MC,
			raw:       RawMarks{DirectCIEMarks: f(5)},
			wantFinal: f(5),
		},
		{
			name: "mc: clamped to 100", st: MC,
			raw:       RawMarks{DirectCIEMarks: f(120)},
			wantFinal: f(100),
		},
		{
			name: "mc: IA tests are ignored", st: MC,
			raw: RawMarks{IATest1Raw: f(50), CCEMarks: f(20)},
		},
		{
			name: "negative input clamped to zero", st: PCC,
			raw:    RawMarks{IATest1Raw: f(-10)},
			wantIA: f(0), wantFinal: f(0), wantDetained: true,
		},
		{
			name: "NaN input treated as not entered", st: PCC,
			raw:       RawMarks{IATest1Raw: f(math.NaN()), CCEMarks: f(18)},
			wantFinal: f(18), wantDetained: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeCIE(tt.st, tt.raw)
			if err != nil {
				t.Fatalf("ComputeCIE() unexpected error = %v", err)
			}
			if !ptrEqual(got.IAScaled, tt.wantIA) {
				t.Errorf("ComputeCIE() IAScaled = %v, want %v", fmtPtr(got.IAScaled), fmtPtr(tt.wantIA))
			}
			if !ptrEqual(got.LabTestScaled, tt.wantLab) {
				t.Errorf("ComputeCIE() LabTestScaled = %v, want %v", fmtPtr(got.LabTestScaled), fmtPtr(tt.wantLab))
			}
			if !ptrEqual(got.FinalCIE, tt.wantFinal) {
				t.Errorf("ComputeCIE() FinalCIE = %v, want %v", fmtPtr(got.FinalCIE), fmtPtr(tt.wantFinal))
			}
			if got.IsDetained != tt.wantDetained {
				t.Errorf("ComputeCIE() IsDetained = %v, want %v", got.IsDetained, tt.wantDetained)
			}
		})
	}
}

func TestComputeCIE_echoesRawInputs(t *testing.T) {
	raw := RawMarks{IATest1Raw: f(45), LabTest2Raw: f(12), DirectCIEMarks: f(3)}
	got, err := ComputeCIE(PCC, raw)
	if err != nil {
		t.Fatalf("ComputeCIE() unexpected error = %v", err)
	}
	if !ptrEqual(got.IATest1Raw, f(45)) || !ptrEqual(got.LabTest2Raw, f(12)) || !ptrEqual(got.DirectCIEMarks, f(3)) {
		t.Errorf("ComputeCIE() did not echo raw inputs: %+v", got)
	}
	if got.IATest2Raw != nil || got.CCEMarks != nil {
		t.Errorf("ComputeCIE() missing inputs must stay nil: %+v", got)
	}
	if got.IATest1Raw == raw.IATest1Raw {
		t.Error("ComputeCIE() must not alias caller inputs")
	}
}

func TestComputeCIE_invalidSubjectType(t *testing.T) {
	for _, st := range []SubjectType{"", "PCC", "lab", "theory"} {
		t.Run(string(st), func(t *testing.T) {
			_, err := ComputeCIE(st, RawMarks{IATest1Raw: f(40)})
			if errors.Cause(err) != ErrInvalidSubjectType {
				t.Errorf("ComputeCIE() error = %v, want %v", err, ErrInvalidSubjectType)
			}
		})
	}
}

// grid of raw values, including out of range ones.
var gridValues = []*float64{nil, f(0), f(0.5), f(12.345), f(19.99), f(33.33), f(50), f(77.7), f(100), f(150), f(-5)}

func gridRawMarks() []RawMarks {
	var out []RawMarks
	for _, a := range gridValues {
		for _, b := range gridValues {
			for _, c := range gridValues {
				out = append(out,
					RawMarks{IATest1Raw: a, IATest2Raw: b, CCEMarks: c},
					RawMarks{LabRecordMarks: a, LabTest1Raw: b, LabTest2Raw: c, IATest1Raw: c},
					RawMarks{DirectCIEMarks: a, SEERaw: b, CCEMarks: c},
				)
			}
		}
	}
	return out
}

func TestComputeCIE_properties(t *testing.T) {
	for _, st := range SubjectTypes {
		t.Run(string(st), func(t *testing.T) {
			for _, raw := range gridRawMarks() {
				got, err := ComputeCIE(st, raw)
				if err != nil {
					t.Fatalf("ComputeCIE(%+v) unexpected error = %v", raw, err)
				}

				// range
				if got.FinalCIE != nil {
					fin := *got.FinalCIE
					if math.IsNaN(fin) || fin < 0 || fin > st.MaxCIE() {
						t.Fatalf("ComputeCIE(%+v) FinalCIE = %v out of [0, %v]", raw, fin, st.MaxCIE())
					}
					if round2(fin) != fin {
						t.Fatalf("ComputeCIE(%+v) FinalCIE = %v not rounded to 2 decimals", raw, fin)
					}
				}

				// detention <=> final < 20 and not mc
				wantDetained := st != MC && got.FinalCIE != nil && *got.FinalCIE < DetentionThreshold
				if got.IsDetained != wantDetained {
					t.Fatalf("ComputeCIE(%+v) IsDetained = %v, want %v", raw, got.IsDetained, wantDetained)
				}

				// idempotence
				again, _ := ComputeCIE(st, raw)
				if !reflect.DeepEqual(got, again) {
					t.Fatalf("ComputeCIE(%+v) not idempotent: %+v != %+v", raw, got, again)
				}
			}
		})
	}
}
