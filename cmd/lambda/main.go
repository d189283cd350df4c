package main

import (
	"context"
	"log"

	"dailytrader/cmd"
	"dailytrader/internal/app"
	"dailytrader/internal/logger"
	"dailytrader/internal/util"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"
)

type lambdaHandler struct {
	deps *cmd.Dependencies
}

// Handler runs the pipeline for a scheduled EventBridge rule. A skipped
// day is a successful invocation
func (m lambdaHandler) Handler(ctx context.Context, event events.CloudWatchEvent) error {
	log := zap.S().With(
		"eventId", event.ID,
		"env", m.deps.Config.Env,
	)
	ctx = logger.NewContext(ctx, log)
	defer log.Sync()

	snapshot, err := m.deps.TradingRunHandler.Run(ctx, app.RunInput{
		DryRun: m.deps.Config.Trading.DryRun,
	})
	if err != nil {
		log.Errorf("run failed: %v", err)
		return err
	}

	if snapshot.Skipped {
		log.Infof("skipped: %s", snapshot.SkipReason)
		return nil
	}
	log.Infow("run complete",
		"runId", snapshot.RunID.String(),
		"symbols", len(snapshot.Signals),
		"submitted", snapshot.TradesSubmitted(),
	)
	return nil
}

func main() {
	cfg, err := util.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}
	deps, err := cmd.InitializeDependencies(*cfg)
	if err != nil {
		log.Fatal(err)
	}
	handler := lambdaHandler{
		deps: deps,
	}
	lambda.Start(handler.Handler)
}
