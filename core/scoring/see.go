package scoring

const (
	maxSEERaw     = 100.0
	maxSEEReduced = 50.0
)

// SEEResult is the semester end exam score: written out of 100, halved to 50.
type SEEResult struct {
	RawScored     *float64 `json:"raw_scored"`
	ReducedScored *float64 `json:"reduced_scored"`
	IsAbsent      bool     `json:"is_absent"`
}

// ComputeSEE halves the raw SEE score. An absent student has neither raw nor reduced score,
// whatever raw score was passed alongside the absence.
func ComputeSEE(raw RawMarks) SEEResult {
	if raw.IsAbsent {
		return SEEResult{IsAbsent: true}
	}
	res := SEEResult{RawScored: sanitize(raw.SEERaw)}
	if res.RawScored != nil {
		reduced := round2(clamp(*res.RawScored, 0, maxSEERaw) / 2.0)
		res.ReducedScored = ptr(clamp(reduced, 0, maxSEEReduced))
	}
	return res
}

// Total is the display-only total out of 100: final CIE + reduced SEE.
// nil unless both are present and the subject is not mandatory.
func Total(st SubjectType, cie *CIEResult, see *SEEResult) *float64 {
	if st.IsMandatory() || cie == nil || see == nil || cie.FinalCIE == nil || see.ReducedScored == nil {
		return nil
	}
	return ptr(round2(*cie.FinalCIE + *see.ReducedScored))
}
