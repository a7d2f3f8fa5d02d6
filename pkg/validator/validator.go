package validator

import (
	"reflect"
	"strconv"
	"strings"
	"time"

	"vetclinic-portal/internal/domain/entity"

	"github.com/go-playground/validator/v10"
)

type CustomValidator struct {
	validator *validator.Validate
}

func NewValidator() *CustomValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(entity.DateLayout, fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("clocktime", func(fl validator.FieldLevel) bool {
		_, err := time.Parse("15:04", fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("appointment_type", func(fl validator.FieldLevel) bool {
		return entity.AppointmentType(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("duration", func(fl validator.FieldLevel) bool {
		return entity.ValidDuration(int(fl.Field().Int()))
	})

	return &CustomValidator{
		validator: v,
	}
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func (cv *CustomValidator) FormatValidationErrors(err error) map[string]string {
	errors := make(map[string]string)

	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrors {
			field := e.Field()
			switch e.Tag() {
			case "required":
				errors[field] = field + " is required"
			case "email":
				errors[field] = field + " must be a valid email address"
			case "min":
				errors[field] = field + " must be at least " + e.Param() + " characters"
			case "max":
				errors[field] = field + " must be at most " + e.Param() + " characters"
			case "gte":
				errors[field] = field + " must be greater than or equal to " + e.Param()
			case "gt":
				errors[field] = field + " must be greater than " + e.Param()
			case "eqfield":
				errors[field] = field + " must match " + strings.ToLower(e.Param())
			case "isodate":
				errors[field] = field + " must be a date in YYYY-MM-DD format"
			case "clocktime":
				errors[field] = field + " must be a time in HH:MM format"
			case "appointment_type":
				errors[field] = field + " must be one of " + joinTypes()
			case "duration":
				errors[field] = field + " must be one of " + joinDurations() + " minutes"
			default:
				errors[field] = field + " is invalid"
			}
		}
	}

	return errors
}

func joinTypes() string {
	names := make([]string, len(entity.AppointmentTypes))
	for i, t := range entity.AppointmentTypes {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

func joinDurations() string {
	parts := make([]string, len(entity.Durations))
	for i, d := range entity.Durations {
		parts[i] = strconv.Itoa(d)
	}
	return strings.Join(parts, ", ")
}
