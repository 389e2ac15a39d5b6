// Package validation checks request payloads against declarative field
// rules and reports every violation in a single Portuguese message.
package validation

import (
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	// Report fields by their JSON names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// FlexFloat resolves to nil when blank, which validator reports against
	// the first tag; "set" stands in for required so that 0 is accepted.
	validate.RegisterCustomTypeFunc(flexValue, FlexFloat{})
	_ = validate.RegisterValidation("set", func(validator.FieldLevel) bool { return true })
	_ = validate.RegisterValidation("number", func(fl validator.FieldLevel) bool {
		f := fl.Field()
		if f.Kind() != reflect.Float64 {
			return false
		}
		return !math.IsNaN(f.Float())
	})
}

// Error aggregates every field violation of one payload.
type Error struct {
	Fields   []string
	Messages []string
}

func (e *Error) Error() string { return strings.Join(e.Messages, ", ") }

// Struct normalizes s (which must be a pointer to a struct) with Normalize
// and validates it, so length rules apply to the text that gets stored.
func Struct(s any) error {
	Normalize(s)
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	out := &Error{}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, fe.Field())
		out.Messages = append(out.Messages, message(fe))
	}
	return out
}

// Fail builds an Error for checks that cannot be expressed as tags.
func Fail(field, msg string) *Error {
	return &Error{Fields: []string{field}, Messages: []string{fmt.Sprintf("Campo '%s' %s", field, msg)}}
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	param := fe.Param()

	switch fe.Tag() {
	case "required", "set":
		return fmt.Sprintf("Campo '%s' é obrigatório", field)
	case "email":
		return fmt.Sprintf("Campo '%s' deve ser um email válido", field)
	case "number":
		return fmt.Sprintf("Campo '%s' deve ser um número válido", field)
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Campo '%s' deve ter pelo menos %s caracteres", field, param)
		}
		return fmt.Sprintf("Campo '%s' deve ser no mínimo %s", field, param)
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Campo '%s' deve ter no máximo %s caracteres", field, param)
		}
		return fmt.Sprintf("Campo '%s' deve ser no máximo %s", field, param)
	case "gte":
		return fmt.Sprintf("Campo '%s' deve ser maior ou igual a %s", field, param)
	case "lte":
		return fmt.Sprintf("Campo '%s' deve ser menor ou igual a %s", field, param)
	case "oneof":
		return fmt.Sprintf("Campo '%s' contém valor inválido", field)
	default:
		return fmt.Sprintf("Campo '%s' é inválido", field)
	}
}

// Normalize trims surrounding whitespace from string and *string fields.
// Fields tagged sanitize:"html" are stripped of markup first.
func Normalize(s any) {
	v := reflect.ValueOf(s)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return
	}
	v = v.Elem()
	if v.Kind() != reflect.Struct {
		return
	}
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		f := v.Field(i)
		if !f.CanSet() {
			continue
		}
		if f.Kind() == reflect.Pointer && !f.IsNil() {
			f = f.Elem()
		}
		if f.Kind() != reflect.String {
			continue
		}
		str := f.String()
		if t.Field(i).Tag.Get("sanitize") == "html" {
			str = Sanitize(str)
		}
		f.SetString(strings.TrimSpace(str))
	}
}
