package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	validatorv10 "github.com/go-playground/validator/v10"
)

// ValidationError is a rejection of malformed input, itemized per field path
// (e.g. "products[0].price").
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func fieldError(path, reason string) *ValidationError {
	return &ValidationError{Fields: map[string]string{path: reason}}
}

// merge folds extra into err. On a shared path the entry from extra wins.
func merge(err error, extra *ValidationError) error {
	if extra == nil {
		return err
	}
	var ve *ValidationError
	if !errors.As(err, &ve) {
		if err != nil {
			return err
		}
		return extra
	}
	for path, msg := range extra.Fields {
		ve.Fields[path] = msg
	}
	return ve
}

// fromValidator converts validator errors into a ValidationError. Errors that
// are not field violations are returned unchanged.
func fromValidator(err error) error {
	var ve validatorv10.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	out := &ValidationError{Fields: make(map[string]string, len(ve))}
	for _, fe := range ve {
		out.Fields[fieldPath(fe.Namespace())] = reason(fe)
	}
	return out
}

// fieldPath drops the root struct name: "QuoteInput.products[0].name" -> "products[0].name".
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

var requiredMessages = map[string]string{
	"customerName": "Customer name is required",
	"products":     "At least one product is required",
	"name":         "Product name is required",
	"price":        "Price is required",
	"quantity":     "Quantity is required",
}

var fieldLabels = map[string]string{
	"customerName": "Customer name",
	"name":         "Product name",
	"price":        "Price",
	"quantity":     "Quantity",
	"total":        "Total",
	"date":         "Date",
	"status":       "Status",
	"notes":        "Notes",
}

func label(field string) string {
	if l, ok := fieldLabels[field]; ok {
		return l
	}
	return field
}

func reason(fe validatorv10.FieldError) string {
	switch fe.Tag() {
	case "required", "min":
		if msg, ok := requiredMessages[fe.Field()]; ok {
			return msg
		}
		return fmt.Sprintf("%s is required", fe.Field())
	case "gte":
		switch fe.Field() {
		case "quantity":
			return "Quantity must be at least " + fe.Param()
		case "price":
			return "Price must be greater than or equal to " + fe.Param()
		}
		return fmt.Sprintf("%s must be greater than or equal to %s", label(fe.Field()), fe.Param())
	case "oneof":
		return "Status must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "iso8601":
		return "Date must be an ISO-8601 timestamp"
	case "jsonstring":
		return label(fe.Field()) + " must be a string"
	case "jsonnumber":
		return label(fe.Field()) + " must be a number"
	case "jsoninteger":
		return label(fe.Field()) + " must be an integer"
	}
	return fe.Error()
}

// typeReason describes the JSON type a Go field expects.
func typeReason(t reflect.Type) string {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return "must be an integer"
	case reflect.Float32, reflect.Float64:
		return "must be a number"
	case reflect.String:
		return "must be a string"
	case reflect.Slice, reflect.Array:
		return "must be an array"
	case reflect.Struct, reflect.Map:
		return "must be an object"
	}
	return "has an invalid type"
}
