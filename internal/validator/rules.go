package validator

import "github.com/go-playground/validator/v10"

func registerFn(tag string, fn func(fl validator.FieldLevel) bool) func(v *validator.Validate) {
	return func(v *validator.Validate) {
		_ = v.RegisterValidation(tag, fn)
	}
}

// NewInventoryValidationRules returns the rules referenced by the model tags.
func NewInventoryValidationRules() []ValidationRule {
	return []ValidationRule{
		{
			Rule: registerFn("entity_name", entityNameValidator),
		},
		{
			Rule: registerFn("health_status", healthStatusValidator),
		},
		{
			Rule: registerFn("power_status", powerStatusValidator),
		},
		{
			Rule: registerFn("subnet_mask", subnetMaskValidator),
		},
	}
}
