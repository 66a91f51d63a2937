package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/wolfeidau/teamcal/internal/auth"
	"github.com/wolfeidau/teamcal/internal/calendar"
	"github.com/wolfeidau/teamcal/internal/wallclock"
)

const nonFieldErrors = "non_field_errors"

// FieldErrors is the 400 body: field name to messages.
type FieldErrors map[string][]string

func (fe FieldErrors) add(field, msg string) {
	fe[field] = append(fe[field], msg)
}

type detail struct {
	Detail string `json:"detail"`
}

var registerTagNames sync.Once

// useJSONFieldNames makes validator errors report the json field name.
func useJSONFieldNames() {
	registerTagNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	})
}

// bindingErrors translates gin binding failures into field errors.
func bindingErrors(err error) (FieldErrors, bool) {
	fe := FieldErrors{}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, ve := range verrs {
			field, _, _ := strings.Cut(ve.Field(), "[")
			fe.add(field, validationMessage(ve))
		}
		return fe, true
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		fe.add(typeErr.Field, typeMessage(typeErr.Type))
		return fe, true
	}

	return nil, false
}

func validationMessage(ve validator.FieldError) string {
	switch ve.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", ve.Param())
	case "min":
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", ve.Param())
	default:
		return fmt.Sprintf("Failed on the %q rule.", ve.Tag())
	}
}

func typeMessage(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Int, reflect.Int32, reflect.Int64:
		return "A valid integer is required."
	case reflect.Slice:
		return fmt.Sprintf("Expected a list of items but got type %q.", "str")
	default:
		return "Not a valid string."
	}
}

// abortWithBindError responds 400 to a request body that couldn't be bound.
func abortWithBindError(c *gin.Context, err error) {
	_ = c.Error(err)

	if fe, ok := bindingErrors(err); ok {
		c.AbortWithStatusJSON(http.StatusBadRequest, fe)
		return
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, detail{Detail: "JSON parse error - " + err.Error()})
}

// abortWithError maps service errors onto HTTP responses.
func abortWithError(c *gin.Context, err error) {
	_ = c.Error(err)

	var (
		ve *calendar.ValidationError
		fe *wallclock.FormatError
		pe *calendar.PersistenceConstraintError
	)

	switch {
	case errors.As(err, &fe):
		field := fe.Field
		if field == "" {
			field = nonFieldErrors
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, FieldErrors{field: {fe.Message()}})

	case errors.As(err, &ve):
		field := ve.Field
		if field == "" {
			field = nonFieldErrors
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, FieldErrors{field: {ve.Message}})

	case errors.Is(err, auth.ErrUnauthenticated):
		c.AbortWithStatusJSON(http.StatusUnauthorized, detail{Detail: "Authentication credentials were not provided."})

	case errors.Is(err, calendar.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, detail{Detail: "Not found."})

	case errors.As(err, &pe):
		c.AbortWithStatusJSON(http.StatusInternalServerError, detail{Detail: "A server error occurred."})

	default:
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("Request failed")
		c.AbortWithStatusJSON(http.StatusInternalServerError, detail{Detail: "A server error occurred."})
	}
}
