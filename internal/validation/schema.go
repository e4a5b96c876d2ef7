package validation

import (
	"reflect"

	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/imrishuroy/go-quote-service/internal/quotes"
)

// ValidateProduct checks a single line item.
func ValidateProduct(v *validatorv10.Validate, in ProductInput) (quotes.Product, error) {
	if err := v.Struct(in); err != nil {
		return quotes.Product{}, fromValidator(err)
	}
	return toProduct(in), nil
}

// ValidateQuoteInput checks a create payload and converts it for the repository.
// Every violation is reported, not only the first.
func ValidateQuoteInput(v *validatorv10.Validate, in QuoteInput) (quotes.NewQuote, error) {
	if err := v.Struct(in); err != nil {
		return quotes.NewQuote{}, fromValidator(err)
	}

	out := quotes.NewQuote{
		CustomerName: stringValue(in.CustomerName),
		Products:     toProducts(in.Products),
		Status:       stringValue(in.Status),
		Notes:        optionalString(in.Notes),
	}
	if in.Date != nil {
		// already checked by the iso8601 rule
		out.Date, _ = parseTimestamp(stringValue(in.Date))
	}
	return out, nil
}

// ValidateQuoteUpdate checks a partial update payload. Absent fields stay nil
// in the returned patch.
func ValidateQuoteUpdate(v *validatorv10.Validate, in QuoteUpdate) (quotes.QuotePatch, error) {
	if err := v.Struct(in); err != nil {
		return quotes.QuotePatch{}, fromValidator(err)
	}

	out := quotes.QuotePatch{
		CustomerName: optionalString(in.CustomerName),
		Status:       optionalString(in.Status),
		Notes:        optionalString(in.Notes),
	}
	if in.Products != nil {
		out.Products = toProducts(in.Products)
	}
	if in.Date != nil {
		d, _ := parseTimestamp(stringValue(in.Date))
		out.Date = &d
	}
	return out, nil
}

func toProduct(in ProductInput) quotes.Product {
	return quotes.Product{
		Name:     stringValue(in.Name),
		Price:    floatValue(in.Price),
		Quantity: int(floatValue(in.Quantity)),
	}
}

func toProducts(in []ProductInput) []quotes.Product {
	out := make([]quotes.Product, 0, len(in))
	for _, p := range in {
		out = append(out, toProduct(p))
	}
	return out
}

func stringValue(v interface{}) string {
	s, _ := v.(string)
	return s
}

func floatValue(v interface{}) float64 {
	f, _ := numberValue(reflect.ValueOf(v))
	return f
}

func optionalString(v interface{}) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	return &s
}
