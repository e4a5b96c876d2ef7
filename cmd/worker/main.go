package main

import (
	"context"
	"os"
	"time"

	lambdaevents "github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/imrishuroy/go-quote-service/internal/aws"
	"github.com/imrishuroy/go-quote-service/internal/config"
	"github.com/imrishuroy/go-quote-service/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level})

	clients, err := aws.NewAWSClients(context.Background(), cfg.AWS.Region)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init aws clients")
	}
	p := NewProcessor(aws.NewMetricsEmitter(clients.CloudWatch, cfg.AWS.MetricsNamespace), log)

	// If RUN_LOCAL=true, simulate a single SQS event for local testing.
	if cfg.App.RunLocal {
		body := os.Getenv("LOCAL_SQS_BODY")
		if body == "" {
			body = `{"type":"quote.created","quote_id":"local-quote-1","status":"draft","total":42,"product_count":1,"occurred_at":"` +
				time.Now().UTC().Format(time.RFC3339) + `"}`
		}
		event := lambdaevents.SQSEvent{
			Records: []lambdaevents.SQSMessage{{MessageId: "local-1", Body: body}},
		}
		if err := p.Handle(context.Background(), event); err != nil {
			log.Fatal().Err(err).Msg("local handler error")
		}
		return
	}

	lambda.Start(p.Handle)
}
