package wire

import (
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var (
	validatorOnce sync.Once
	validate      *validator.Validate
)

func getValidator() *validator.Validate {
	validatorOnce.Do(func() {
		validate = validator.New()
		_ = validate.RegisterValidation("nocontrol", noControlChars)
	})
	return validate
}

// noControlChars rejects CR/LF and other control characters, per spec.md
// section 6.4.
func noControlChars(fl validator.FieldLevel) bool {
	return !strings.ContainsFunc(fl.Field().String(), unicode.IsControl)
}

type credentialPayload struct {
	Name     string `validate:"required,max=32,nocontrol"`
	Password string `validate:"required,min=5,max=32,nocontrol"`
}

// ValidateCredentials checks a (name, password) pair together, using
// go-playground/validator's struct tags as the single source of truth for
// the length/control-character constraints of spec.md section 6.4. On
// failure it reports the first offending field's InvalidInputKind, matching
// the BadInput(kind) variant described in SPEC_FULL.md's supplemented
// feature 3.
func ValidateCredentials(name, password string) (ok bool, kind InvalidInputKind) {
	payload := credentialPayload{Name: name, Password: password}
	err := getValidator().Struct(payload)
	if err == nil {
		return true, 0
	}
	verrs, isValidationErr := err.(validator.ValidationErrors)
	if !isValidationErr || len(verrs) == 0 {
		return false, InvalidNameBadChar
	}
	fe := verrs[0]
	switch fe.Field() {
	case "Name":
		return classifyNameFailure(fe, name)
	case "Password":
		return classifyPasswordFailure(fe, password)
	default:
		return false, InvalidNameBadChar
	}
}

func classifyNameFailure(fe validator.FieldError, name string) (bool, InvalidInputKind) {
	switch fe.Tag() {
	case "nocontrol":
		return false, InvalidNameBadChar
	case "required":
		return false, InvalidNameTooShort
	case "max":
		return false, InvalidNameTooLong
	default:
		_ = name
		return false, InvalidNameBadChar
	}
}

func classifyPasswordFailure(fe validator.FieldError, password string) (bool, InvalidInputKind) {
	switch fe.Tag() {
	case "nocontrol":
		return false, InvalidPasswordBadChar
	case "required", "min":
		return false, InvalidPasswordTooShort
	case "max":
		return false, InvalidPasswordTooLong
	default:
		_ = password
		return false, InvalidPasswordBadChar
	}
}
