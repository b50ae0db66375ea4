package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/newthinker/splitgate/internal/tradelog"
)

// Validator applies struct tag rules to the configuration.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a validator with the custom rules registered.
func NewValidator() *Validator {
	v := validator.New()
	_ = v.RegisterValidation("logtime", validateLogTime)
	return &Validator{validate: v}
}

// Struct validates s and flattens field errors into one message.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validation failed: %w", err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s: must satisfy %s=%s", fe.Namespace(), fe.Tag(), fe.Param()))
			continue
		}
		msgs = append(msgs, fmt.Sprintf("%s: must satisfy %s", fe.Namespace(), fe.Tag()))
	}
	return errors.New(strings.Join(msgs, "; "))
}

// validateLogTime accepts the trade-log timestamp layouts.
func validateLogTime(fl validator.FieldLevel) bool {
	_, ok := tradelog.ParseTimestamp(fl.Field().String())
	return ok
}
