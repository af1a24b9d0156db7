package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// requestValidate checks API request bodies tagged with `validate:"..."`.
var requestValidate *validator.Validate

// criterionNamePattern matches the names criteria are stored and scored under.
var criterionNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_\-]*$`)

func init() {
	requestValidate = validator.New(validator.WithRequiredStructEnabled())
	// Fields filled from the URL carry a `path` tag and report under it.
	requestValidate.RegisterTagNameFunc(func(f reflect.StructField) string {
		if p := f.Tag.Get("path"); p != "" {
			return p
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	if err := requestValidate.RegisterValidation("criterion_name", func(fl validator.FieldLevel) bool {
		return CriterionName(fl.Field().String())
	}); err != nil {
		panic(fmt.Sprintf("registering criterion_name validation: %v", err))
	}
}

// RequestError lists the fields of a request body that failed validation.
type RequestError struct {
	Fields []string
}

func (e *RequestError) Error() string {
	return "invalid request: " + strings.Join(e.Fields, "; ")
}

// Request validates a decoded request body. Field failures come back as a
// *RequestError.
func Request(v any) error {
	err := requestValidate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	re := &RequestError{}
	for _, fe := range fieldErrs {
		re.Fields = append(re.Fields, describe(fe))
	}
	return re
}

// CriterionName reports whether name is usable as a criterion key.
func CriterionName(name string) bool {
	return criterionNamePattern.MatchString(name)
}

func describe(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.IndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "criterion_name":
		return fmt.Sprintf("%s must be lowercase letters, digits, '-' or '_'", field)
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}
