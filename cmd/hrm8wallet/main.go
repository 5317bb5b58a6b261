package main

import (
	"github.com/Abhi-Verma2005/hrm8-backend-sub003/internal/audit"
	"github.com/Abhi-Verma2005/hrm8-backend-sub003/internal/clock"
	"github.com/Abhi-Verma2005/hrm8-backend-sub003/internal/commission"
	"github.com/Abhi-Verma2005/hrm8-backend-sub003/internal/config"
	"github.com/Abhi-Verma2005/hrm8-backend-sub003/internal/lock"
	"github.com/Abhi-Verma2005/hrm8-backend-sub003/internal/logger"
	"github.com/Abhi-Verma2005/hrm8-backend-sub003/internal/migration"
	obsmetrics "github.com/Abhi-Verma2005/hrm8-backend-sub003/internal/observability/metrics"
	"github.com/Abhi-Verma2005/hrm8-backend-sub003/internal/payout"
	"github.com/Abhi-Verma2005/hrm8-backend-sub003/internal/payout/manual"
	"github.com/Abhi-Verma2005/hrm8-backend-sub003/internal/payout/stripe"
	"github.com/Abhi-Verma2005/hrm8-backend-sub003/internal/scheduler"
	"github.com/Abhi-Verma2005/hrm8-backend-sub003/internal/server"
	"github.com/Abhi-Verma2005/hrm8-backend-sub003/internal/wallet"
	"github.com/Abhi-Verma2005/hrm8-backend-sub003/internal/withdrawal"
	"github.com/Abhi-Verma2005/hrm8-backend-sub003/pkg/db"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		lock.Module,
		obsmetrics.Module,

		// Payout adapters feed the registry through the executor group.
		fx.Provide(
			fx.Annotate(ProvideManualExecutor, fx.ResultTags(`group:"payout_executors"`)),
			fx.Annotate(ProvideStripeExecutor, fx.ResultTags(`group:"payout_executors"`)),
		),

		// Functional domains
		audit.Module,
		wallet.Module,
		commission.Module,
		withdrawal.Module,
		payout.Module,
		server.Module,
		scheduler.Module,
		migration.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}

func ProvideManualExecutor() payout.Executor {
	return manual.NewAdapter()
}

// ProvideStripeExecutor returns nil when no secret key is configured; the
// registry skips nil executors.
func ProvideStripeExecutor(cfg config.Config) (payout.Executor, error) {
	if cfg.StripeSecretKey == "" {
		return nil, nil
	}
	adapter, err := stripe.NewAdapter(stripe.Config{
		SecretKey:     cfg.StripeSecretKey,
		WebhookSecret: cfg.StripeWebhookSecret,
		BaseURL:       cfg.StripeBaseURL,
		Currency:      cfg.PayoutCurrency,
	})
	if err != nil {
		return nil, err
	}
	return adapter, nil
}
