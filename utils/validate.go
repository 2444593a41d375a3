package utils

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateStruct runs struct-tag validation and returns a field→message
// map suitable for a 400 response body, or nil when the value is valid.
func ValidateStruct(s interface{}) map[string]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"_": err.Error()}
	}

	out := make(map[string]string, len(errs))
	for _, fe := range errs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			out[field] = "This field is required"
		case "email":
			out[field] = "Invalid email address"
		case "min":
			out[field] = "Value too short (min " + fe.Param() + ")"
		case "max":
			out[field] = "Value too long (max " + fe.Param() + ")"
		case "oneof":
			out[field] = "Must be one of: " + fe.Param()
		case "gte":
			out[field] = "Must be at least " + fe.Param()
		default:
			out[field] = "Invalid value"
		}
	}
	return out
}
