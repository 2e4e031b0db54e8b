package apperror

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// formatFieldName turns a json tag name into a human label
// (applicant_name -> Applicant Name).
func formatFieldName(s string) string {
	s = strings.ReplaceAll(s, "_", " ")
	caser := cases.Title(language.French)
	return caser.String(s)
}

// RequiredField builds the error returned when a mandatory field is absent.
func RequiredField(field string) *AppError {
	return NewField(
		CodeInvalidInput,
		fmt.Sprintf("Le champ %s est obligatoire.", formatFieldName(field)),
		http.StatusBadRequest,
		field,
	)
}

// InvalidField builds the error returned when a field fails validation.
func InvalidField(field string) *AppError {
	return NewField(
		CodeInvalidInput,
		fmt.Sprintf("Le champ %s est invalide.", formatFieldName(field)),
		http.StatusBadRequest,
		field,
	)
}

// MapValidationError converts gin binding errors into AppError values
// carrying a French message and the offending field name.
func MapValidationError(err error) error {
	if errs, ok := err.(validator.ValidationErrors); ok {
		// Only the first failure is reported.
		e := errs[0]

		// e.Field() is the json tag name thanks to Init().
		switch e.Tag() {
		case "required":
			return RequiredField(e.Field())
		default:
			return InvalidField(e.Field())
		}
	}

	return New(
		CodeInvalidInput,
		"Requête invalide.",
		http.StatusBadRequest,
	)
}
