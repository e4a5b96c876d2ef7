package quotes

import "time"

// Quote statuses
const (
	StatusDraft    = "draft"
	StatusSent     = "sent"
	StatusAccepted = "accepted"
	StatusRejected = "rejected"
)

// Statuses lists every allowed quote status.
var Statuses = []string{StatusDraft, StatusSent, StatusAccepted, StatusRejected}

// Product is a single quote line item.
type Product struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// Quote is the record held by the repository.
type Quote struct {
	ID           string    `json:"id"`
	CustomerName string    `json:"customerName"`
	Products     []Product `json:"products"`
	Total        float64   `json:"total"`
	Date         time.Time `json:"date"`
	Status       string    `json:"status"`
	Notes        string    `json:"notes,omitempty"`
}

// NewQuote is validated input for Create. Zero Date and empty Status get defaults.
type NewQuote struct {
	CustomerName string
	Products     []Product
	Date         time.Time
	Status       string
	Notes        *string
}

// QuotePatch is validated input for Update. Nil fields are left untouched.
type QuotePatch struct {
	CustomerName *string
	Products     []Product // nil = not supplied
	Date         *time.Time
	Status       *string
	Notes        *string
}
