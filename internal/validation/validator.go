package validation

import (
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Validator wraps the go-playground validator with custom rules and error formatting
type Validator struct {
	validate *validator.Validate
}

// GetValidate returns the underlying validator.Validate instance for use with Echo
func (v *Validator) GetValidate() *validator.Validate {
	return v.validate
}

// singleton instance of the validator
var instance *Validator

// GetValidator returns the singleton validator instance
func GetValidator() *Validator {
	if instance == nil {
		instance = NewValidator()
	}
	return instance
}

// NewValidator creates a new validator instance with custom rules and configuration
func NewValidator() *Validator {
	v := validator.New()

	_ = v.RegisterValidation("category_name", validateCategoryName)
	_ = v.RegisterValidation("category_tag", validateCategoryTag)
	_ = v.RegisterValidation("ledger_date", validateLedgerDate)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{validate: v}
}

// Custom validation functions

// validateCategoryName rejects names that are empty after trimming whitespace.
func validateCategoryName(fl validator.FieldLevel) bool {
	name := strings.TrimSpace(fl.Field().String())
	return name != "" && len(name) <= 100
}

// validateCategoryTag rejects tags that are blank after trimming; matching is
// case-insensitive downstream so the tag itself may be any case.
func validateCategoryTag(fl validator.FieldLevel) bool {
	tag := strings.TrimSpace(fl.Field().String())
	return tag != "" && len(tag) <= 100
}

// validateLedgerDate validates a YYYY-MM-DD date string.
func validateLedgerDate(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return false
	}

	_, err := time.Parse("2006-01-02", value)
	return err == nil
}
