package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"ticketeira/src/types"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// validate checks service inputs once the caller is known to be allowed to
// make the request. Field names in messages are the JSON names.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})
	v.RegisterValidation("fee_type", func(fl validator.FieldLevel) bool {
		return types.FeeType(fl.Field().String()).Valid()
	})
	return v
}

func validateInput(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var fields validator.ValidationErrors
	if errors.As(err, &fields) && len(fields) > 0 {
		return types.NewError(types.InvalidRequest, "%s", fieldMessage(fields[0]))
	}
	return types.Wrap(types.InvalidRequest, err, "invalid request")
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "gte":
		if fe.Param() == "0" {
			return fmt.Sprintf("%s must not be negative", fe.Field())
		}
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "fee_type":
		return fmt.Sprintf("%s must be percentage or fixed", fe.Field())
	}
	return fmt.Sprintf("invalid value for field %s", fe.Field())
}
