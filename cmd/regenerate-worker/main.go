// Command regenerate-worker rebuilds the bullet point layer from a Lambda
// trigger: an EventBridge schedule, a raw_fact.created event or a direct
// invocation carrying a CCIR filter.
package main

import (
	"context"
	"log"

	"provenance-backend/infrastructure/config"
	"provenance-backend/infrastructure/di"

	"github.com/aws/aws-lambda-go/lambda"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	container, cleanup, err := di.InitializeContainer(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize dependency container: %v", err)
	}
	defer cleanup()

	worker := NewWorker(container.CommandBus, container.Logging.Logger)
	lambda.Start(worker.Handle)
}
