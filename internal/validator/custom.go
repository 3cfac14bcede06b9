package validator

import (
	"net"
	"regexp"

	"github.com/dcsim/rack-planner/internal/store/model"
	"github.com/go-playground/validator/v10"
	"github.com/thoas/go-funk"
)

var (
	entityNameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9 _.+-]{0,99}$`)

	healthStatuses = []string{
		model.HealthStatusHealthy,
		model.HealthStatusWarning,
		model.HealthStatusCritical,
		model.HealthStatusUnknown,
	}
	powerStatuses = []string{
		model.PowerStatusOn,
		model.PowerStatusOff,
		model.PowerStatusUnknown,
	}
)

func entityNameValidator(fl validator.FieldLevel) bool {
	val, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	return entityNameRegex.MatchString(val)
}

// empty statuses are accepted, the services default them to Unknown
func healthStatusValidator(fl validator.FieldLevel) bool {
	val, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	return val == "" || funk.ContainsString(healthStatuses, val)
}

func powerStatusValidator(fl validator.FieldLevel) bool {
	val, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	return val == "" || funk.ContainsString(powerStatuses, val)
}

func subnetMaskValidator(fl validator.FieldLevel) bool {
	val, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	ip := net.ParseIP(val).To4()
	if ip == nil {
		return false
	}
	// Size reports 0, 0 for masks that are not a run of ones followed by zeros
	_, bits := net.IPMask(ip).Size()
	return bits == 32
}
