package scoring

import (
	"regexp"
	"strings"
)

var (
	mandatoryCodeRegex = regexp.MustCompile(`^B.{2,4}K\d{3}$`)
	labCodeRegex       = regexp.MustCompile(`^[A-Z]{2,5}L\d{3}[A-Z]?$`)

	hintTypes = []struct {
		keywords []string
		st       SubjectType
	}{
		{keywords: []string{"IPCC"}, st: IPCC},
		{keywords: []string{"PCCL", "LAB"}, st: PCCL},
		{keywords: []string{"MC", "MANDATORY"}, st: MC},
		{keywords: []string{"ESC"}, st: ESC},
		{keywords: []string{"AEC"}, st: AEC},
		{keywords: []string{"UHV"}, st: UHV},
		{keywords: []string{"PCC"}, st: PCC},
	}
	labNameKeywords = []string{"LAB", "LABORATORY", "PRACTICAL", "WORKSHOP"}
)

// InferSubjectType guesses the subject type of an extracted syllabus row.
// Priority: explicit type hint > course code pattern > name keywords > PCC.
func InferSubjectType(code, name, hint string) SubjectType {
	c := strings.ToUpper(strings.TrimSpace(code))
	h := strings.ToUpper(strings.TrimSpace(hint))
	n := strings.ToUpper(name)

	if h != "" {
		for _, ht := range hintTypes {
			if containsAny(h, ht.keywords...) {
				return ht.st
			}
		}
	}

	switch {
	case mandatoryCodeRegex.MatchString(c) || strings.Contains(c, "RMCK"):
		return MC
	case containsAny(c, "UHV", "HVE"):
		return UHV
	case labCodeRegex.MatchString(c):
		return PCCL
	case containsAny(n, labNameKeywords...):
		return PCCL
	}
	return PCC
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
