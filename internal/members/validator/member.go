package validator

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"roomly/pkg/model"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	return fmt.Sprintf("validation failed: %s %s", v[0].Field, v[0].Message)
}

type MemberValidator struct {
	validate *validator.Validate
}

func NewMemberValidator() *MemberValidator {
	return &MemberValidator{
		validate: validator.New(),
	}
}

func (v *MemberValidator) Validate(member *model.Member) error {
	return translate(v.validate.Struct(member))
}

func (v *MemberValidator) ValidateUpdate(update *model.MemberUpdate) error {
	return translate(v.validate.Struct(update))
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	out := make(ValidationErrors, 0, len(validationErrs))
	for _, fe := range validationErrs {
		var message string
		switch fe.Tag() {
		case "required", "min":
			message = "must not be empty"
		case "max":
			message = fmt.Sprintf("must be at most %s characters", fe.Param())
		case "mongodb":
			message = "must be a valid MongoDB ObjectID"
		default:
			message = fmt.Sprintf("failed on the '%s' rule", fe.Tag())
		}
		out = append(out, ValidationError{Field: fe.Field(), Message: message})
	}
	return out
}
