package validation

import (
	"math"
	"reflect"
	"strings"
	"time"

	validatorv10 "github.com/go-playground/validator/v10"
)

// maxExactInteger is the largest integer a float64 holds without rounding.
const maxExactInteger = 1 << 53

// New returns a configured validator: field errors are named after json tags
// and the JSON type rules plus iso8601 are registered.
func New() *validatorv10.Validate {
	v := validatorv10.New()

	v.RegisterTagNameFunc(jsonTagName)
	_ = v.RegisterValidation("jsonstring", jsonString)
	_ = v.RegisterValidation("jsonnumber", jsonNumber)
	_ = v.RegisterValidation("jsoninteger", jsonInteger)
	_ = v.RegisterValidation("iso8601", iso8601)

	return v
}

func jsonTagName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

func jsonString(fl validatorv10.FieldLevel) bool {
	return fl.Field().Kind() == reflect.String
}

func jsonNumber(fl validatorv10.FieldLevel) bool {
	_, ok := numberValue(fl.Field())
	return ok
}

// jsonInteger accepts any JSON number with an integral value, so 3, 3.0 and
// 1e1 all pass while 1.5 does not.
func jsonInteger(fl validatorv10.FieldLevel) bool {
	f, ok := numberValue(fl.Field())
	return ok && math.Trunc(f) == f && math.Abs(f) <= maxExactInteger
}

func numberValue(v reflect.Value) (float64, bool) {
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		f := v.Float()
		return f, !math.IsNaN(f) && !math.IsInf(f, 0)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), true
	}
	return 0, false
}

// iso8601 accepts RFC 3339 timestamps with or without fractional seconds.
func iso8601(fl validatorv10.FieldLevel) bool {
	_, err := parseTimestamp(fl.Field().String())
	return err == nil
}

func parseTimestamp(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
