package http

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/vadimbarashkov/bookmarks/internal/entity"
	"github.com/vadimbarashkov/bookmarks/pkg/response"
)

var (
	invalidJSONResponse = response.NewError("Request body must be a valid JSON object.")
	emptyPatchResponse  = response.NewError("Request body must contain at least one of 'title', 'url', 'description' or 'rating'.")
	constraintResponse  = response.NewError("Request body violates a storage constraint.")
)

// newValidator returns a validator reporting fields by their json name and
// knowing the "rating" rule.
func newValidator() *validator.Validate {
	validate := validator.New()

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Registration only fails on an empty tag or a nil func.
	_ = validate.RegisterValidation("rating", func(fl validator.FieldLevel) bool {
		_, ok := parseRating(fl.Field().Interface())
		return ok
	})

	return validate
}

// parseRating coerces a decoded JSON value to a rating. Numbers must be whole,
// strings must hold a base-10 integer, and the result must be in range.
func parseRating(v any) (int, bool) {
	var n int

	switch v := v.(type) {
	case float64:
		if v != math.Trunc(v) || v < entity.MinRating || v > entity.MaxRating {
			return 0, false
		}
		n = int(v)
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, false
		}
		n = parsed
	default:
		return 0, false
	}

	if n < entity.MinRating || n > entity.MaxRating {
		return 0, false
	}

	return n, true
}

// blankToNil treats an empty string as a missing value.
func blankToNil(v any) any {
	if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
		return nil
	}
	return v
}

func messageForField(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("'%s' is required in request body.", fe.Field())
	case "rating":
		return fmt.Sprintf("'%s' must be an integer between %d and %d.", fe.Field(), entity.MinRating, entity.MaxRating)
	case "http_url":
		return fmt.Sprintf("'%s' must be a valid http or https URL.", fe.Field())
	default:
		return fmt.Sprintf("'%s' is invalid.", fe.Field())
	}
}

// validationErrorResponse reports a single failure. A missing field wins over
// a malformed one, and fields are reported in declaration order.
func validationErrorResponse(err error) response.ErrorResponse {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return invalidJSONResponse
	}

	for _, fe := range errs {
		if fe.Tag() == "required" {
			return response.NewError(messageForField(fe))
		}
	}

	return response.NewError(messageForField(errs[0]))
}
