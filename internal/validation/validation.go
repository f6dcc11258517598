// Package validation turns go-playground/validator results into the
// field -> message maps returned by the form models.
package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

type FieldErrors map[string]string

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their JSON names so clients can match them to inputs.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// RegisterString adds a tag that checks a string-kinded field with ok.
// Call it from package init; it panics on a bad tag.
func RegisterString(tag string, ok func(string) bool) {
	err := validate.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return ok(fl.Field().String())
	})
	if err != nil {
		panic(err)
	}
}

// Struct validates v and returns an empty, non-nil map when v is valid.
func Struct(v any) FieldErrors {
	out := FieldErrors{}
	err := validate.Struct(v)
	if err == nil {
		return out
	}

	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			if _, seen := out[fe.Field()]; seen {
				continue
			}
			out[fe.Field()] = messageForTag(fe.Tag(), fe.Param())
		}
		return out
	}

	out["_"] = "Invalid form data"
	return out
}

func messageForTag(tag, param string) string {
	switch tag {
	case "required":
		return "This field is required"
	case "email":
		return "Must be a valid email address"
	case "min":
		return "Must be at least " + param + " characters"
	case "max":
		return "Must be at most " + param + " characters"
	case "gt":
		return "Must be greater than " + param
	case "nefield":
		return "Must differ from the current value"
	case "category":
		return "Unknown category"
	case "condition":
		return "Unknown condition"
	case "username":
		return "Only letters, digits and underscores are allowed"
	default:
		return "Invalid value"
	}
}
