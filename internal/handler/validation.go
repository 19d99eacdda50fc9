package handler

import (
	"errors"
	"math"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	apperrors "storerating/internal/errors"
)

const defaultFieldMessage = "Invalid value"

var alnumSpace = regexp.MustCompile(`^[a-zA-Z0-9 ]+$`)

// Validator adapts validator/v10 to echo. Failures come back as a
// *errors.ValidationError listing every failed field by its JSON name, with
// the message taken from the field's `msg_<tag>` or `msg` struct tag.
type Validator struct {
	validate *validator.Validate
}

var _ echo.Validator = (*Validator)(nil)

// NewValidator registers the custom rules used by the request types.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	// registration only fails on empty tags or nil funcs
	_ = v.RegisterValidation("alnumspace", func(fl validator.FieldLevel) bool {
		return alnumSpace.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return strongPassword(fl.Field().String())
	})
	_ = v.RegisterValidation("whole", isWhole)
	return &Validator{validate: v}
}

// Validate implements echo.Validator.
func (cv *Validator) Validate(i interface{}) error {
	err := cv.validate.Struct(i)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	t := reflect.TypeOf(i)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	fields := make([]apperrors.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, apperrors.FieldError{
			Field:   fe.Field(),
			Message: fieldMessage(t, fe),
		})
	}
	return &apperrors.ValidationError{Fields: fields}
}

func fieldMessage(t reflect.Type, fe validator.FieldError) string {
	sf, ok := t.FieldByName(fe.StructField())
	if !ok {
		return defaultFieldMessage
	}
	if m := sf.Tag.Get("msg_" + fe.Tag()); m != "" {
		return m
	}
	if m := sf.Tag.Get("msg"); m != "" {
		return m
	}
	return defaultFieldMessage
}

// strongPassword requires an uppercase ASCII letter and a character that is
// not an ASCII letter or digit.
func strongPassword(s string) bool {
	var upper, special bool
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
		default:
			special = true
		}
	}
	return upper && special
}

// isWhole accepts integers and floats without a fractional part, so a JSON
// number like 3.5 is reported as a validation failure instead of a bind error.
func isWhole(fl validator.FieldLevel) bool {
	f := fl.Field()
	switch f.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	case reflect.Float32, reflect.Float64:
		x := f.Float()
		return !math.IsInf(x, 0) && !math.IsNaN(x) && x == math.Trunc(x)
	default:
		return false
	}
}
