package validator

import (
	"fmt"
	"gatepass/pkg/model"
	"gatepass/pkg/validation"
)

type VisitorValidator struct {
	*validation.Validator
}

func NewVisitorValidator() *VisitorValidator {
	return &VisitorValidator{
		Validator: validation.New(),
	}
}

func (v *VisitorValidator) ValidateRegistration(reg *model.VisitorRegistration) error {
	if err := v.Struct(reg); err != nil {
		return err
	}
	return validateBusinessRules(reg)
}

// validateBusinessRules covers what struct tags cannot express.
func validateBusinessRules(reg *model.VisitorRegistration) error {
	var errs validation.ValidationErrors
	for i, c := range reg.Companions {
		if c.PhoneNumber != "" && c.PhoneNumber == reg.PhoneNumber {
			errs = append(errs, validation.ValidationError{
				Field:   fmt.Sprintf("companions[%d].phoneNumber", i),
				Message: "must differ from the primary visitor's phone number",
			})
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}
