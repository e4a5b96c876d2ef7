package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	lambdaevents "github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"

	"github.com/imrishuroy/go-quote-service/internal/aws"
	"github.com/imrishuroy/go-quote-service/internal/config"
	"github.com/imrishuroy/go-quote-service/internal/events"
	"github.com/imrishuroy/go-quote-service/internal/handlers"
	"github.com/imrishuroy/go-quote-service/internal/idempotency"
	"github.com/imrishuroy/go-quote-service/internal/logger"
	"github.com/imrishuroy/go-quote-service/internal/metrics"
	"github.com/imrishuroy/go-quote-service/internal/quotes"
	"github.com/imrishuroy/go-quote-service/internal/validation"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level})

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	store := quotes.NewStore()
	m := metrics.New()
	m.TrackStored(store.Len)

	hcfg := handlers.HandlerConfig{
		Store:           store,
		Validator:       validation.New(),
		Logger:          log,
		Metrics:         m,
		Publisher:       events.NopPublisher{},
		Env:             cfg.App.Env,
		ClientURL:       cfg.Client.URL,
		RateLimitMax:    cfg.RateLimit.Max,
		RateLimitWindow: cfg.RateLimit.Window,
		TrustedProxies:  cfg.RateLimit.TrustedProxies,
	}

	// AWS integrations are optional: each one is enabled by its own setting.
	if cfg.AWS.QuoteEventsQueueURL != "" || cfg.AWS.IdempotencyTable != "" {
		clients, err := aws.NewAWSClients(context.Background(), cfg.AWS.Region)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to init aws clients")
		}
		if cfg.AWS.QuoteEventsQueueURL != "" {
			hcfg.Publisher = aws.NewPublisher(clients.SQS, cfg.AWS.QuoteEventsQueueURL)
		}
		if cfg.AWS.IdempotencyTable != "" {
			hcfg.Idempotency = idempotency.NewStore(clients.DynamoDB, cfg.AWS.IdempotencyTable, cfg.AWS.IdempotencyTTL)
		}
	}

	r := handlers.NewRouter(hcfg)

	if cfg.App.RunLocal {
		if err := serve(r, cfg.HTTP, log); err != nil {
			log.Fatal().Err(err).Msg("server error")
		}
		return
	}

	adapter := ginadapter.New(r)
	lambda.Start(func(ctx context.Context, req lambdaevents.APIGatewayProxyRequest) (lambdaevents.APIGatewayProxyResponse, error) {
		return adapter.ProxyWithContext(ctx, req)
	})
}

// serve runs a local HTTP server until SIGINT/SIGTERM, then drains it.
func serve(h http.Handler, cfg config.HTTPConfig, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", "http://"+srv.Addr).Msg("server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
