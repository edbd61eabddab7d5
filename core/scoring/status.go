package scoring

// Status summarises where a subject stands. It is never stored; it is derived from the
// CIE and SEE results every time.
type Status string

const (
	StatusPending  Status = "Pending"
	StatusCIEOnly  Status = "CIE Only"
	StatusComplete Status = "Complete"
	StatusDetained Status = "Detained"
	StatusAbsent   Status = "Absent"
)

type statusInput struct {
	mandatory  bool
	hasFinal   bool
	hasReduced bool
	detained   bool
	absent     bool
}

type statusRule struct {
	match  func(in statusInput) bool
	status Status
}

// statusRules is evaluated top to bottom and the first match wins.
// Detention comes first and overrides everything else.
var statusRules = []statusRule{
	{match: func(in statusInput) bool { return in.detained }, status: StatusDetained},
	{match: func(in statusInput) bool { return in.mandatory && in.hasFinal }, status: StatusComplete},
	{match: func(in statusInput) bool { return in.mandatory }, status: StatusPending},
	{match: func(in statusInput) bool { return in.absent }, status: StatusAbsent},
	{match: func(in statusInput) bool { return in.hasFinal && in.hasReduced }, status: StatusComplete},
	{match: func(in statusInput) bool { return in.hasFinal }, status: StatusCIEOnly},
}

// DeriveStatus returns the status of a subject from its CIE and SEE results.
// Either result may be nil when nothing has been entered yet.
func DeriveStatus(st SubjectType, cie *CIEResult, see *SEEResult) Status {
	in := statusInput{mandatory: st.IsMandatory()}
	if cie != nil {
		in.hasFinal = cie.FinalCIE != nil
		in.detained = cie.IsDetained
	}
	if see != nil && !in.mandatory {
		in.hasReduced = see.ReducedScored != nil
		in.absent = see.IsAbsent
	}

	for _, rule := range statusRules {
		if rule.match(in) {
			return rule.status
		}
	}
	return StatusPending
}
