package validator

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

type ValidationRule struct {
	Rule func(v *validator.Validate)
}

// Validator is a wrapper around the actual validator.
// It sets up the validator and turns the first rule violation into a readable message.
type Validator struct {
	validator *validator.Validate
	rules     []ValidationRule
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report json field names, they are what clients send
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validator: v}
}

// NewInventoryValidator returns a validator with every inventory rule registered.
func NewInventoryValidator() *Validator {
	v := NewValidator()
	v.Register(NewInventoryValidationRules()...)
	return v
}

func (v *Validator) Register(rules ...ValidationRule) {
	for _, validationRule := range rules {
		validationRule.Rule(v.validator)
	}
	v.rules = append(v.rules, rules...)
}

// Struct validates s and returns nil or an *ErrInvalid for the first violation.
func (v *Validator) Struct(s any) error {
	err := v.validator.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return NewErrInvalid("", "", "%s", err.Error())
	}
	return firstViolation(verrs[0])
}

func firstViolation(fe validator.FieldError) *ErrInvalid {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return NewErrInvalid(field, fe.Tag(), "%s is required", field)
	case "entity_name":
		return NewErrInvalid(field, fe.Tag(), "%s contains invalid characters", field)
	case "ipv4":
		return NewErrInvalid(field, fe.Tag(), "%s must be a valid IPv4 address", field)
	case "subnet_mask":
		return NewErrInvalid(field, fe.Tag(), "%s must be a valid subnet mask", field)
	case "uuid":
		return NewErrInvalid(field, fe.Tag(), "%s must be a valid UUID", field)
	case "health_status":
		return NewErrInvalid(field, fe.Tag(), "%s must be one of %s", field, strings.Join(healthStatuses, ", "))
	case "power_status":
		return NewErrInvalid(field, fe.Tag(), "%s must be one of %s", field, strings.Join(powerStatuses, ", "))
	case "min":
		if fe.Kind() == reflect.Slice || fe.Kind() == reflect.String {
			return NewErrInvalid(field, fe.Tag(), "%s must contain at least %s item(s)", field, fe.Param())
		}
		return NewErrInvalid(field, fe.Tag(), "%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return NewErrInvalid(field, fe.Tag(), "%s must be at most %s characters long", field, fe.Param())
		}
		return NewErrInvalid(field, fe.Tag(), "%s must be at most %s", field, fe.Param())
	case "gte":
		return NewErrInvalid(field, fe.Tag(), "%s must be greater than or equal to %s", field, fe.Param())
	default:
		return NewErrInvalid(field, fe.Tag(), "%s failed on the '%s' rule", field, fe.Tag())
	}
}
