package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/nkduy/cinevault/pkg/apperror"
)

// Location names the request section a validation stage governs.
type Location string

const (
	LocationBody    Location = "body"
	LocationParams  Location = "params"
	LocationQuery   Location = "query"
	LocationHeaders Location = "headers"
)

// Hook runs after a section was normalized; it may fail with any
// taxonomy error for cross-field or external checks a static shape
// cannot express.
type Hook func(c *gin.Context) error

func init() {
	// Error paths report json field names, and unknown body fields are
	// rejected the same way unknown types are.
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "" {
				name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			}
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})
	}
	binding.EnableDecoderDisallowUnknownFields = true
}

// Validate binds and normalizes one request section into T. On success
// the normalized value replaces the raw section on the context and the
// hooks run; on any violation the request short-circuits with an Entity
// error for the body and a Validation error for every other section.
// Normalization is all-or-nothing: a failed bind never leaves a
// partially coerced section behind.
func Validate[T any](location Location, hooks ...Hook) gin.HandlerFunc {
	return func(c *gin.Context) {
		section := new(T)

		var err error
		switch location {
		case LocationBody:
			err = c.ShouldBindJSON(section)
		case LocationParams:
			err = c.ShouldBindUri(section)
		case LocationQuery:
			err = c.ShouldBindQuery(section)
		case LocationHeaders:
			err = c.ShouldBindHeader(section)
		}
		if err != nil {
			abortWithError(c, toTaxonomyError(err, location))
			return
		}

		c.Set(sectionKey(location), section)

		for _, hook := range hooks {
			if err := hook(c); err != nil {
				abortWithError(c, err)
				return
			}
		}

		c.Next()
	}
}

// Validated returns the normalized section stored by Validate. Calling
// it for a section that was never validated is a programming error.
func Validated[T any](c *gin.Context, location Location) *T {
	return c.MustGet(sectionKey(location)).(*T)
}

func sectionKey(location Location) string {
	return "validated:" + string(location)
}

func abortWithError(c *gin.Context, err error) {
	c.Error(err)
	c.Abort()
}

// toTaxonomyError classifies a binding failure, preserving one entry per
// violated constraint.
func toTaxonomyError(err error, location Location) *apperror.Error {
	fields := violationFields(err, location)
	if location == LocationBody {
		return apperror.NewEntity(fields)
	}
	return apperror.NewValidation(string(location), fields)
}

func violationFields(err error, location Location) []apperror.FieldError {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		fields := make([]apperror.FieldError, len(validationErrs))
		for i, fe := range validationErrs {
			fields[i] = apperror.FieldError{
				Code:     fe.Tag(),
				Message:  violationMessage(fe),
				Path:     fieldPath(fe),
				Location: string(location),
			}
		}
		return fields
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return []apperror.FieldError{{
			Code:     "invalid_type",
			Message:  fmt.Sprintf("%s must be of type %s", typeErr.Field, typeErr.Type.String()),
			Path:     typeErr.Field,
			Location: string(location),
		}}
	}

	if errors.Is(err, io.EOF) {
		return []apperror.FieldError{{
			Code:     "invalid_body",
			Message:  "Request body is empty",
			Location: string(location),
		}}
	}

	return []apperror.FieldError{{
		Code:     "invalid",
		Message:  err.Error(),
		Location: string(location),
	}}
}

func violationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

// fieldPath strips the root struct name from the validator namespace so
// nested violations report "parent.child" paths.
func fieldPath(fe validator.FieldError) string {
	namespace := fe.Namespace()
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return fe.Field()
}
