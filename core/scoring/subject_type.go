// Package scoring computes CIE (Continuous Internal Evaluation) and SEE (Semester End Exam)
// marks from raw component scores.
//
// All functions are pure: they hold no state and perform no I/O, so they are safe for
// concurrent use and the live preview and the save path always agree.
package scoring

import (
	"strings"

	"github.com/pkg/errors"
)

// SubjectType is the subject category of the academic scheme. It selects the CIE formula.
type SubjectType string

const (
	PCC   SubjectType = "pcc"   // theory
	IPCC  SubjectType = "ipcc"  // theory + lab
	PCCL  SubjectType = "pccl"  // pure lab
	ESC   SubjectType = "esc"   // engineering science
	AEC   SubjectType = "aec"   // ability enhancement
	MC    SubjectType = "mc"    // mandatory course: CIE /100, no SEE
	UHV   SubjectType = "uhv"   // universal human values
	Other SubjectType = "other" // anything else
)

// ErrInvalidSubjectType is returned for a subject type outside of SubjectTypes.
var ErrInvalidSubjectType = errors.New("invalid subject type")

// SubjectTypes lists every accepted subject type.
var SubjectTypes = []SubjectType{PCC, IPCC, PCCL, ESC, AEC, MC, UHV, Other}

const (
	maxCIE          = 50.0
	maxCIEMandatory = 100.0

	// DetentionThreshold is the minimum final CIE (out of 50) a student needs to sit the SEE.
	DetentionThreshold = 20.0
)

// ParseSubjectType returns the SubjectType named by s (case-insensitive).
func ParseSubjectType(s string) (SubjectType, error) {
	st := SubjectType(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", errors.Wrapf(ErrInvalidSubjectType, "%q", s)
	}
	return st, nil
}

func (st SubjectType) Valid() bool {
	switch st {
	case PCC, IPCC, PCCL, ESC, AEC, MC, UHV, Other:
		return true
	}
	return false
}

func (st SubjectType) String() string { return string(st) }

// IsMandatory reports whether st is a mandatory course.
func (st SubjectType) IsMandatory() bool { return st == MC }

// HasSEE reports whether subjects of this type have a semester end exam.
func (st SubjectType) HasSEE() bool { return st != MC }

// MaxCIE is the upper bound of the final CIE for this type.
func (st SubjectType) MaxCIE() float64 {
	if st == MC {
		return maxCIEMandatory
	}
	return maxCIE
}

// Limits holds the maximum raw value of each input component. A zero limit means the
// component is not used by the subject type.
type Limits struct {
	IATest    float64 `json:"ia_test"`
	CCE       float64 `json:"cce"`
	LabRecord float64 `json:"lab_record"`
	LabTest   float64 `json:"lab_test"`
	Direct    float64 `json:"direct"`
	SEE       float64 `json:"see"`
}

// LimitsFor returns the component maxima of st.
func LimitsFor(st SubjectType) Limits {
	switch st {
	case MC:
		return Limits{Direct: 100}
	case PCCL:
		return Limits{LabRecord: 30, LabTest: 100, SEE: 100}
	case IPCC:
		return Limits{IATest: 50, CCE: 10, LabRecord: 12, LabTest: 100, SEE: 100}
	default:
		return Limits{IATest: 50, CCE: 20, SEE: 100}
	}
}
