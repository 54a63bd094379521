package validation

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Struct validates the tagged fields of a request payload.
func Struct(v any) error {
	return validate.Struct(v)
}
