package validation

import (
	"github.com/go-playground/validator/v10"
)

// Validator plugs go-playground validation into echo's c.Validate.
type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	return &Validator{v: validator.New()}
}

func (v *Validator) Validate(i interface{}) error {
	return v.v.Struct(i)
}
