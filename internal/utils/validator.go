// internal/utils/validator.go
package utils

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

// Mercosul plates (ABC1D23) and the older Brazilian format (ABC1234).
var platePattern = regexp.MustCompile(`^[A-Z]{3}[0-9][A-Z0-9][0-9]{2}$`)

// Brazilian state codes accepted on a request.
var brazilianStates = map[string]bool{
	"AC": true, "AL": true, "AP": true, "AM": true, "BA": true, "CE": true,
	"DF": true, "ES": true, "GO": true, "MA": true, "MT": true, "MS": true,
	"MG": true, "PA": true, "PB": true, "PR": true, "PE": true, "PI": true,
	"RJ": true, "RN": true, "RS": true, "RO": true, "RR": true, "SC": true,
	"SP": true, "SE": true, "TO": true,
}

func init() {
	validate = validator.New()
	validate.RegisterValidation("strong_password", validateStrongPassword)
	validate.RegisterValidation("plate", validatePlate)
	validate.RegisterValidation("state_code", validateStateCode)
	validate.RegisterValidation("cnpj", validateCNPJ)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

// IsValidStateCode reports whether code is a Brazilian state code.
func IsValidStateCode(code string) bool {
	return brazilianStates[strings.ToUpper(code)]
}

// NormalizeStateCode upper-cases a state code, returning "" when the code is
// not a Brazilian state.
func NormalizeStateCode(code string) string {
	upper := strings.ToUpper(strings.TrimSpace(code))
	if !brazilianStates[upper] {
		return ""
	}
	return upper
}

func validateStrongPassword(fl validator.FieldLevel) bool {
	password := fl.Field().String()

	if len(password) < 8 {
		return false
	}

	var hasUpper, hasLower, hasNumber bool

	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsNumber(char):
			hasNumber = true
		}
	}

	return hasUpper && hasLower && hasNumber
}

func validatePlate(fl validator.FieldLevel) bool {
	return platePattern.MatchString(strings.ToUpper(fl.Field().String()))
}

func validateStateCode(fl validator.FieldLevel) bool {
	return IsValidStateCode(fl.Field().String())
}

// IsValidCNPJ reports whether cnpj is a 14-digit numeric CNPJ.
func IsValidCNPJ(cnpj string) bool {
	if len(cnpj) != 14 {
		return false
	}
	for _, c := range cnpj {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func validateCNPJ(fl validator.FieldLevel) bool {
	return IsValidCNPJ(fl.Field().String())
}

type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

func GetValidationErrors(err error) []ValidationError {
	var validationErrors []ValidationError

	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrs {
			validationErrors = append(validationErrors, ValidationError{
				Field:   strings.ToLower(e.Field()),
				Tag:     e.Tag(),
				Message: getValidationMessage(e),
			})
		}
	}

	return validationErrors
}

func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "email":
		return "Invalid email format"
	case "min":
		return e.Field() + " must be at least " + e.Param() + " characters"
	case "max":
		return e.Field() + " must be at most " + e.Param() + " characters"
	case "strong_password":
		return "Password must contain at least 8 characters with uppercase, lowercase and number"
	case "plate":
		return e.Field() + " must be a valid vehicle plate"
	case "state_code":
		return e.Field() + " must be a Brazilian state code"
	case "cnpj":
		return e.Field() + " must be a 14-digit CNPJ"
	default:
		return e.Field() + " is invalid"
	}
}
