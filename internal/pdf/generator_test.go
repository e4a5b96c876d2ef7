package pdf

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/imrishuroy/go-quote-service/internal/quotes"
)

func TestGenerate(t *testing.T) {
	q := quotes.Quote{
		ID:           "q-1",
		CustomerName: "Ada Lovelace",
		Products: []quotes.Product{
			{Name: "Widget", Price: 10.5, Quantity: 2},
			{Name: strings.Repeat("x", 80), Price: 1, Quantity: 1},
		},
		Total:  22,
		Date:   time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
		Status: quotes.StatusSent,
		Notes:  "Café delivery on Fridays",
	}

	out, err := New().Generate(q)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Fatalf("output is not a pdf: %q", out[:min(len(out), 16)])
	}
}

func TestTrim(t *testing.T) {
	if got := trim("short", 10); got != "short" {
		t.Fatalf("got %q", got)
	}
	if got := trim("abcdefghij", 5); got != "abcd..." {
		t.Fatalf("got %q", got)
	}
}
