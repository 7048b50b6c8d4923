package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

const maxBodyBytes = 1 << 20

// maxPasswordBytes is the longest input bcrypt accepts.
const maxPasswordBytes = 72

var validate = validator.New()

func init() {
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// max counts runes; bcrypt counts bytes.
	validate.RegisterValidation("bcryptlen", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= maxPasswordBytes
	})
}

// ValidateAndDecode decodes the JSON body into payload and runs struct
// validation. The returned error is ready to be sent to the client.
func ValidateAndDecode(r *http.Request, payload interface{}) *AppError {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(payload); err != nil {
		return NewValidationError([]string{"request body must be valid JSON"})
	}

	if err := validate.Struct(payload); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return NewAppError(http.StatusInternalServerError, "Could not validate request", err)
		}
		return NewValidationError(fieldMessages(validationErrors))
	}

	return nil
}

func fieldMessages(errs validator.ValidationErrors) []string {
	out := make([]string, 0, len(errs))
	for _, fe := range errs {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			out = append(out, fmt.Sprintf("%s is required", field))
		case "email":
			out = append(out, fmt.Sprintf("%s must be a valid email address", field))
		case "min":
			if fe.Kind() == reflect.Slice {
				out = append(out, fmt.Sprintf("%s must contain at least %s item(s)", field, fe.Param()))
				continue
			}
			out = append(out, fmt.Sprintf("%s must be at least %s characters", field, fe.Param()))
		case "max":
			out = append(out, fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
		case "bcryptlen":
			out = append(out, fmt.Sprintf("%s must be at most %d bytes", field, maxPasswordBytes))
		case "oneof":
			out = append(out, fmt.Sprintf("%s must be one of [%s]", field, fe.Param()))
		default:
			out = append(out, fmt.Sprintf("%s is invalid", field))
		}
	}
	return out
}
