package scoring

// Evaluation is the complete engine output for one subject.
type Evaluation struct {
	SubjectType SubjectType `json:"subject_type"`
	CIE         CIEResult   `json:"cie"`
	SEE         *SEEResult  `json:"see"` // nil for mandatory courses
	Status      Status      `json:"status"`
	Total       *float64    `json:"total"` // out of 100
}

// Evaluate computes the CIE, the SEE (unless st has none), the status and the total.
func Evaluate(st SubjectType, raw RawMarks) (Evaluation, error) {
	cie, err := ComputeCIE(st, raw)
	if err != nil {
		return Evaluation{}, err
	}

	ev := Evaluation{SubjectType: st, CIE: cie}
	if st.HasSEE() {
		see := ComputeSEE(raw)
		ev.SEE = &see
	}
	ev.Status = DeriveStatus(st, &ev.CIE, ev.SEE)
	ev.Total = Total(st, &ev.CIE, ev.SEE)
	return ev, nil
}
