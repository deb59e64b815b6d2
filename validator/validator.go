// Package validator 统一配置校验与错误转换
package validator

import (
	"errors"

	"github.com/KOMKZ/go-yogan-ioc/errcode"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ErrValidation configuration failed validation
var ErrValidation = errcode.Register(errcode.New(
	20, 901, "ioc", "error.ioc.config_validation", "configuration validation failed"))

// Validatable 可校验接口
type Validatable interface {
	Validate() error
}

// Validate runs v.Validate and converts ozzo-validation errors into a
// LayeredError carrying a "fields" map. Other errors pass through.
func Validate(v Validatable) error {
	err := v.Validate()
	if err == nil {
		return nil
	}

	var validationErrs validation.Errors
	if errors.As(err, &validationErrs) {
		return ConvertValidationError(validationErrs)
	}
	return err
}

// ConvertValidationError flattens nested ozzo errors into dotted field paths
func ConvertValidationError(validationErrs validation.Errors) error {
	fields := make(map[string]string)
	flatten("", validationErrs, fields)
	return ErrValidation.WithData("fields", fields)
}

func flatten(prefix string, errs validation.Errors, fields map[string]string) {
	for field, fieldErr := range errs {
		if fieldErr == nil {
			continue
		}
		key := field
		if prefix != "" {
			key = prefix + "." + field
		}
		var nested validation.Errors
		if errors.As(fieldErr, &nested) {
			flatten(key, nested, fields)
			continue
		}
		fields[key] = fieldErr.Error()
	}
}
