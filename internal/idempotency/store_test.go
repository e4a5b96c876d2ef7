package idempotency

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

func newTestStore(mock *simpleMock, now *time.Time) *Store {
	s := NewStore(mock, "idempotency-table", 48*time.Hour)
	s.nowFunc = func() time.Time { return *now }
	return s
}

func TestCreateIfNotExists_Get_MarkDone_MarkFailed(t *testing.T) {
	mock := newSimpleMock()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := newTestStore(mock, &now)

	ctx := context.Background()
	key := "test-key-1"

	created, err := s.CreateIfNotExists(ctx, key)
	if err != nil {
		t.Fatalf("CreateIfNotExists error: %v", err)
	}
	if !created {
		t.Fatalf("expected created=true")
	}

	// second create should return created=false (exists)
	created2, err := s.CreateIfNotExists(ctx, key)
	if err != nil {
		t.Fatalf("second CreateIfNotExists error: %v", err)
	}
	if created2 {
		t.Fatalf("expected created=false on duplicate create")
	}

	rec, err := s.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if rec == nil {
		t.Fatalf("expected record, got nil")
	}
	if rec.Status != StatusInProgress {
		t.Fatalf("expected IN_PROGRESS, got %s", rec.Status)
	}
	if rec.ExpiresAt != now.Add(48*time.Hour).Unix() {
		t.Fatalf("unexpected expires_at %d", rec.ExpiresAt)
	}

	if err := s.MarkDone(ctx, key, "quote-123", "{\"ok\":true}", 201); err != nil {
		t.Fatalf("MarkDone error: %v", err)
	}

	rec, err = s.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get after MarkDone error: %v", err)
	}
	if rec.Status != StatusDone {
		t.Fatalf("status not updated to DONE, got %s", rec.Status)
	}
	if rec.QuoteID != "quote-123" {
		t.Fatalf("quote id mismatch: %s", rec.QuoteID)
	}
	if rec.ResponseBody != "{\"ok\":true}" || rec.ResponseStatus != 201 {
		t.Fatalf("response not stored: %q %d", rec.ResponseBody, rec.ResponseStatus)
	}

	// MarkFailed (should overwrite status)
	if err := s.MarkFailed(ctx, key, "failed-reason"); err != nil {
		t.Fatalf("MarkFailed error: %v", err)
	}
	item := mock.table[key]
	if st, ok := item["status"].(*types.AttributeValueMemberS); !ok || st.Value != StatusFailed {
		t.Fatalf("status not updated to FAILED, got %+v", item["status"])
	}
	if n, ok := item["note"].(*types.AttributeValueMemberS); !ok || n.Value != "failed-reason" {
		t.Fatalf("note not set, got %+v", item["note"])
	}
}

func TestGet_Missing(t *testing.T) {
	now := time.Now()
	s := newTestStore(newSimpleMock(), &now)

	rec, err := s.Get(context.Background(), "nope")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if rec != nil {
		t.Fatalf("expected nil record, got %+v", rec)
	}
}

func TestCreateIfNotExists_ExpiredKeyIsReclaimed(t *testing.T) {
	mock := newSimpleMock()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := newTestStore(mock, &now)
	ctx := context.Background()

	if ok, err := s.CreateIfNotExists(ctx, "k"); err != nil || !ok {
		t.Fatalf("first create: ok=%v err=%v", ok, err)
	}

	now = now.Add(49 * time.Hour)

	rec, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if rec != nil {
		t.Fatalf("expired record should read as missing")
	}

	ok, err := s.CreateIfNotExists(ctx, "k")
	if err != nil {
		t.Fatalf("create after expiry: %v", err)
	}
	if !ok {
		t.Fatalf("expected expired key to be claimable")
	}
}

func TestReclaim(t *testing.T) {
	mock := newSimpleMock()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := newTestStore(mock, &now)
	ctx := context.Background()

	if _, err := s.CreateIfNotExists(ctx, "k"); err != nil {
		t.Fatalf("create: %v", err)
	}

	// IN_PROGRESS cannot be reclaimed
	ok, err := s.Reclaim(ctx, "k")
	if err != nil {
		t.Fatalf("reclaim error: %v", err)
	}
	if ok {
		t.Fatalf("expected reclaim to fail while in progress")
	}

	if err := s.MarkFailed(ctx, "k", "boom"); err != nil {
		t.Fatalf("mark failed: %v", err)
	}
	ok, err = s.Reclaim(ctx, "k")
	if err != nil {
		t.Fatalf("reclaim error: %v", err)
	}
	if !ok {
		t.Fatalf("expected FAILED key to be reclaimed")
	}
	rec, _ := s.Get(ctx, "k")
	if rec == nil || rec.Status != StatusInProgress {
		t.Fatalf("expected IN_PROGRESS after reclaim, got %+v", rec)
	}
}

func TestCreateIfNotExists_PropagatesErrors(t *testing.T) {
	mock := newSimpleMock()
	mock.putErr = errors.New("throttled")
	now := time.Now()
	s := newTestStore(mock, &now)

	ok, err := s.CreateIfNotExists(context.Background(), "k")
	if err == nil {
		t.Fatalf("expected error")
	}
	if ok {
		t.Fatalf("expected created=false on error")
	}
}

func TestAttributevalueMarshal_Unmarshal(t *testing.T) {
	// ensure our types marshal/unmarshal cleanly
	rec := IdempotencyRecord{
		IdempotencyKey: "k1",
		Status:         StatusDone,
		QuoteID:        "q1",
		ResponseBody:   "{}",
		ResponseStatus: 201,
		CreatedAt:      time.Now().Round(time.Second),
		UpdatedAt:      time.Now().Round(time.Second),
		ExpiresAt:      time.Now().Add(24 * time.Hour).Unix(),
	}
	m, err := attributevalue.MarshalMap(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out IdempotencyRecord
	if err := attributevalue.UnmarshalMap(m, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.IdempotencyKey != rec.IdempotencyKey || out.QuoteID != rec.QuoteID || out.ResponseStatus != 201 {
		t.Fatalf("unmarshal mismatch: %+v", out)
	}
}
