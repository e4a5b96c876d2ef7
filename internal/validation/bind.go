package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/imrishuroy/go-quote-service/internal/quotes"
)

// BindQuoteInput binds the JSON body of c and validates it as a create payload.
// Decode failures and constraint violations both come back as *ValidationError.
func BindQuoteInput(c *gin.Context, v *validatorv10.Validate) (quotes.NewQuote, error) {
	var in QuoteInput
	typeErr, err := bindJSON(c, &in)
	if err != nil {
		return quotes.NewQuote{}, err
	}
	q, err := ValidateQuoteInput(v, in)
	return q, merge(err, typeErr)
}

// BindQuoteUpdate binds the JSON body of c and validates it as an update payload.
func BindQuoteUpdate(c *gin.Context, v *validatorv10.Validate) (quotes.QuotePatch, error) {
	var in QuoteUpdate
	typeErr, err := bindJSON(c, &in)
	if err != nil {
		return quotes.QuotePatch{}, err
	}
	p, err := ValidateQuoteUpdate(v, in)
	return p, merge(err, typeErr)
}

// bindJSON decodes exactly one JSON object from the request body into out.
// A structural type mismatch (e.g. products given as a string) is returned as
// typeErr with out otherwise populated; err rejects the body as a whole.
func bindJSON(c *gin.Context, out interface{}) (typeErr *ValidationError, err error) {
	raw, err := c.GetRawData()
	if err != nil || !singleValue(raw) {
		return nil, fieldError("body", "Request body must be valid JSON")
	}

	err = binding.JSON.BindBody(raw, out)
	if err == nil {
		return nil, nil
	}

	var te *json.UnmarshalTypeError
	if !errors.As(err, &te) {
		return nil, fieldError("body", "Request body must be valid JSON")
	}
	if te.Field == "" {
		return nil, fieldError("body", "Request body must be a JSON object")
	}
	return fieldError(te.Field, typeReason(te.Type)), nil
}

// singleValue reports whether raw holds one JSON value and nothing after it
// but whitespace.
func singleValue(raw []byte) bool {
	dec := json.NewDecoder(bytes.NewReader(raw))
	var v json.RawMessage
	if err := dec.Decode(&v); err != nil {
		return false
	}
	_, err := dec.Token()
	return err == io.EOF
}
