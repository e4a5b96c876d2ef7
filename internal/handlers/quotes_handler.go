package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/imrishuroy/go-quote-service/internal/events"
	"github.com/imrishuroy/go-quote-service/internal/idempotency"
	"github.com/imrishuroy/go-quote-service/internal/logger"
	"github.com/imrishuroy/go-quote-service/internal/metrics"
	"github.com/imrishuroy/go-quote-service/internal/pdf"
	"github.com/imrishuroy/go-quote-service/internal/quotes"
	"github.com/imrishuroy/go-quote-service/internal/validation"
)

// QuoteRepository is the storage the quote routes need.
type QuoteRepository interface {
	Create(in quotes.NewQuote) quotes.Quote
	FindByID(id string) (quotes.Quote, bool)
	FindAll() []quotes.Quote
	Update(id string, p quotes.QuotePatch) (quotes.Quote, bool)
	Delete(id string) bool
}

// IdempotencyStore records Idempotency-Key outcomes for POST /quotes.
type IdempotencyStore interface {
	CreateIfNotExists(ctx context.Context, key string) (bool, error)
	Get(ctx context.Context, key string) (*idempotency.IdempotencyRecord, error)
	Reclaim(ctx context.Context, key string) (bool, error)
	MarkDone(ctx context.Context, key, quoteID, responseBody string, responseStatus int) error
	MarkFailed(ctx context.Context, key, note string) error
}

// HandlerConfig groups dependencies for the quote handlers.
type HandlerConfig struct {
	Store     QuoteRepository
	Validator *validatorv10.Validate
	Logger    *logger.Logger
	Metrics   *metrics.Metrics
	Publisher events.Publisher
	// Idempotency is optional; without it Idempotency-Key headers are ignored.
	Idempotency IdempotencyStore
	Env         string

	ClientURL       string
	RateLimitMax    int
	RateLimitWindow time.Duration
	// TrustedProxies lists the peers whose X-Forwarded-For is believed.
	// Empty trusts none.
	TrustedProxies []string
}

func (cfg *HandlerConfig) setDefaults() {
	if cfg.Validator == nil {
		cfg.Validator = validation.New()
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.New()
	}
	if cfg.Publisher == nil {
		cfg.Publisher = events.NopPublisher{}
	}
}

type quoteHandler struct {
	store     QuoteRepository
	v         *validatorv10.Validate
	log       *logger.Logger
	metrics   *metrics.Metrics
	publisher events.Publisher
	idemp     IdempotencyStore
	pdf       *pdf.Generator
	errs      errorResponder
}

// RegisterQuoteRoutes registers the quote API under /quotes and /api/quotes.
func RegisterQuoteRoutes(r gin.IRouter, cfg HandlerConfig) {
	cfg.setDefaults()
	h := &quoteHandler{
		store:     cfg.Store,
		v:         cfg.Validator,
		log:       cfg.Logger,
		metrics:   cfg.Metrics,
		publisher: cfg.Publisher,
		idemp:     cfg.Idempotency,
		pdf:       pdf.New(),
		errs:      errorResponder{log: cfg.Logger, production: cfg.Env == "production"},
	}

	for _, prefix := range []string{"/quotes", "/api/quotes"} {
		g := r.Group(prefix)
		g.GET("", h.list)
		g.POST("", h.create)
		g.GET("/:id", h.get)
		g.PUT("/:id", h.update)
		g.DELETE("/:id", h.delete)
		g.GET("/:id/pdf", h.renderPDF)
	}
}

func (h *quoteHandler) list(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.FindAll())
}

func (h *quoteHandler) get(c *gin.Context) {
	q, ok := h.store.FindByID(c.Param("id"))
	if !ok {
		h.errs.respond(c, "get", &NotFoundError{Resource: "Quote"})
		return
	}
	c.JSON(http.StatusOK, q)
}

func (h *quoteHandler) create(c *gin.Context) {
	in, err := validation.BindQuoteInput(c, h.v)
	if err != nil {
		h.errs.respond(c, "create", err)
		return
	}

	key := c.GetHeader("Idempotency-Key")
	if key == "" || h.idemp == nil {
		q := h.store.Create(in)
		h.created(c, q)
		c.JSON(http.StatusCreated, q)
		return
	}

	h.createIdempotent(c, key, in)
}

// createIdempotent claims key before creating. Repeats of a finished request
// replay the stored response; repeats of a running one get 409.
func (h *quoteHandler) createIdempotent(c *gin.Context, key string, in quotes.NewQuote) {
	ctx := c.Request.Context()

	claimed, err := h.idemp.CreateIfNotExists(ctx, key)
	if err != nil {
		h.errs.respond(c, "create", fmt.Errorf("idempotency claim: %w", err))
		return
	}
	if !claimed {
		rec, err := h.idemp.Get(ctx, key)
		if err != nil {
			h.errs.respond(c, "create", fmt.Errorf("idempotency lookup: %w", err))
			return
		}
		switch {
		case rec == nil:
			// expired between the claim and the read
			c.JSON(http.StatusConflict, gin.H{"message": "Request already in progress"})
			return
		case rec.Status == idempotency.StatusDone:
			c.Header("Idempotent-Replayed", "true")
			c.Data(rec.ResponseStatus, "application/json; charset=utf-8", []byte(rec.ResponseBody))
			return
		case rec.Status == idempotency.StatusFailed:
			ok, err := h.idemp.Reclaim(ctx, key)
			if err != nil {
				h.errs.respond(c, "create", fmt.Errorf("idempotency reclaim: %w", err))
				return
			}
			if !ok {
				c.JSON(http.StatusConflict, gin.H{"message": "Request already in progress"})
				return
			}
		default:
			c.JSON(http.StatusConflict, gin.H{"message": "Request already in progress"})
			return
		}
	}

	q, body, err := h.createClaimed(ctx, key, in)
	if err != nil {
		h.errs.respond(c, "create", err)
		return
	}
	if err := h.idemp.MarkDone(ctx, key, q.ID, string(body), http.StatusCreated); err != nil {
		// the quote exists; a retry will see IN_PROGRESS until the key expires
		h.log.Warn().Err(err).Str("idempotency_key", key).Str("quote_id", q.ID).Msg("failed to record idempotent response")
	}
	h.created(c, q)
	c.Data(http.StatusCreated, "application/json; charset=utf-8", body)
}

// createClaimed stores the quote behind a claimed key. A failure or panic marks
// the key FAILED so that a retry can reclaim it; the panic is re-raised.
func (h *quoteHandler) createClaimed(ctx context.Context, key string, in quotes.NewQuote) (q quotes.Quote, body []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			h.markFailed(ctx, key, fmt.Sprintf("panic: %v", r))
			panic(r)
		}
	}()

	q = h.store.Create(in)
	body, err = json.Marshal(q)
	if err != nil {
		h.markFailed(ctx, key, fmt.Sprintf("marshal_failed: %v", err))
	}
	return q, body, err
}

func (h *quoteHandler) markFailed(ctx context.Context, key, reason string) {
	if err := h.idemp.MarkFailed(ctx, key, reason); err != nil {
		h.log.Warn().Err(err).Str("idempotency_key", key).Msg("failed to mark idempotency key as failed")
	}
}

func (h *quoteHandler) created(c *gin.Context, q quotes.Quote) {
	h.log.Info().Str("quote_id", q.ID).Str("request_id", requestID(c)).Msg("Created new quote")
	h.metrics.QuoteOperation("create")
	h.publish(c, events.TypeQuoteCreated, q)
}

func (h *quoteHandler) update(c *gin.Context) {
	patch, err := validation.BindQuoteUpdate(c, h.v)
	if err != nil {
		h.errs.respond(c, "update", err)
		return
	}

	q, ok := h.store.Update(c.Param("id"), patch)
	if !ok {
		h.errs.respond(c, "update", &NotFoundError{Resource: "Quote"})
		return
	}

	h.log.Info().Str("quote_id", q.ID).Str("request_id", requestID(c)).Msg("Updated quote")
	h.metrics.QuoteOperation("update")
	h.publish(c, events.TypeQuoteUpdated, q)
	c.JSON(http.StatusOK, q)
}

func (h *quoteHandler) delete(c *gin.Context) {
	id := c.Param("id")
	q, ok := h.store.FindByID(id)
	if !ok || !h.store.Delete(id) {
		h.errs.respond(c, "delete", &NotFoundError{Resource: "Quote"})
		return
	}

	h.log.Info().Str("quote_id", id).Str("request_id", requestID(c)).Msg("Deleted quote")
	h.metrics.QuoteOperation("delete")
	h.publish(c, events.TypeQuoteDeleted, q)
	c.Status(http.StatusNoContent)
}

func (h *quoteHandler) renderPDF(c *gin.Context) {
	q, ok := h.store.FindByID(c.Param("id"))
	if !ok {
		h.errs.respond(c, "pdf", &NotFoundError{Resource: "Quote"})
		return
	}
	out, err := h.pdf.Generate(q)
	if err != nil {
		h.errs.respond(c, "pdf", err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="quote-%s.pdf"`, q.ID))
	c.Data(http.StatusOK, "application/pdf", out)
}

// publish emits a lifecycle event. Failures are logged and never fail the request.
func (h *quoteHandler) publish(c *gin.Context, eventType string, q quotes.Quote) {
	ev := events.NewQuoteEvent(eventType, q, requestID(c), time.Now().UTC())
	if err := h.publisher.Publish(c.Request.Context(), ev); err != nil {
		h.log.Warn().Err(err).
			Str("event_type", eventType).
			Str("quote_id", q.ID).
			Str("request_id", requestID(c)).
			Msg("failed to publish quote event")
	}
}
