package validate

import "github.com/go-playground/validator/v10"

var v = validator.New(validator.WithRequiredStructEnabled())

// Struct validates tagged fields on any request or config struct.
func Struct(s any) error {
	return v.Struct(s)
}
