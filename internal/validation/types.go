package validation

// Scalar fields are decoded as interface{} so that a value of the wrong JSON
// type is reported by the validator next to every other violation instead of
// aborting the decode.

// ProductInput is a single line item in a quote payload.
type ProductInput struct {
	Name     interface{} `json:"name" validate:"required,jsonstring,min=1"`
	Price    interface{} `json:"price" validate:"required,jsonnumber,gte=0"`
	Quantity interface{} `json:"quantity" validate:"required,jsoninteger,gte=1"`
}

// QuoteInput is the payload for POST /quotes
type QuoteInput struct {
	CustomerName interface{}    `json:"customerName" validate:"required,jsonstring,min=1"`
	Products     []ProductInput `json:"products" validate:"required,min=1,dive"`
	Date         interface{}    `json:"date,omitempty" validate:"omitempty,jsonstring,iso8601"`
	Total        interface{}    `json:"total,omitempty" validate:"omitempty,jsonnumber,gte=0"` // accepted, never trusted
	Status       interface{}    `json:"status,omitempty" validate:"omitempty,jsonstring,oneof=draft sent accepted rejected"`
	Notes        interface{}    `json:"notes,omitempty" validate:"omitempty,jsonstring"`
}

// QuoteUpdate is the payload for PUT /quotes/:id. Every field is optional.
type QuoteUpdate struct {
	CustomerName interface{}    `json:"customerName,omitempty" validate:"omitempty,jsonstring,min=1"`
	Products     []ProductInput `json:"products,omitempty" validate:"omitempty,min=1,dive"`
	Date         interface{}    `json:"date,omitempty" validate:"omitempty,jsonstring,iso8601"`
	Total        interface{}    `json:"total,omitempty" validate:"omitempty,jsonnumber,gte=0"`
	Status       interface{}    `json:"status,omitempty" validate:"omitempty,jsonstring,oneof=draft sent accepted rejected"`
	Notes        interface{}    `json:"notes,omitempty" validate:"omitempty,jsonstring"`
}
