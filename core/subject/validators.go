package subject

import (
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/marksengine/core"
	"github.com/trezcool/marksengine/core/scoring"
)

var (
	subjectTypeTag  = "subjecttype"
	subjectTypeText = "must be one of: " + strings.Join(subjectTypeNames(), ", ")
)

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(subjectTypeTag, subjectTypeValidation)
	core.RegisterCustomTranslation(validate, translator, subjectTypeTag, subjectTypeText)
}

func subjectTypeNames() []string {
	names := make([]string, 0, len(scoring.SubjectTypes))
	for _, st := range scoring.SubjectTypes {
		names = append(names, st.String())
	}
	return names
}

// Custom Validators

// subjectTypeValidation checks that the field holds a known scoring.SubjectType
func subjectTypeValidation(fl validator.FieldLevel) bool {
	return scoring.SubjectType(fl.Field().String()).Valid()
}
