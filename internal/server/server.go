package server

import (
	"context"
	"net/http"
	"time"

	commissiondomain "github.com/Abhi-Verma2005/hrm8-backend-sub003/internal/commission/domain"
	"github.com/Abhi-Verma2005/hrm8-backend-sub003/internal/config"
	"github.com/Abhi-Verma2005/hrm8-backend-sub003/internal/payout"
	walletdomain "github.com/Abhi-Verma2005/hrm8-backend-sub003/internal/wallet/domain"
	withdrawaldomain "github.com/Abhi-Verma2005/hrm8-backend-sub003/internal/withdrawal/domain"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(log))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(log *zap.Logger) *gin.Engine {
	return NewEngine(log)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine        *gin.Engine
	cfg           config.Config
	log           *zap.Logger
	db            *gorm.DB
	walletSvc     walletdomain.Service
	commissionSvc commissiondomain.Service
	withdrawalSvc withdrawaldomain.Service
	registry      *payout.Registry
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Cfg           config.Config
	Log           *zap.Logger
	DB            *gorm.DB
	WalletSvc     walletdomain.Service
	CommissionSvc commissiondomain.Service
	WithdrawalSvc withdrawaldomain.Service
	Registry      *payout.Registry
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		log:           p.Log.Named("http"),
		db:            p.DB,
		walletSvc:     p.WalletSvc,
		commissionSvc: p.CommissionSvc,
		withdrawalSvc: p.WithdrawalSvc,
		registry:      p.Registry,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	s.engine.GET("/readyz", s.Ready)

	v1 := s.engine.Group("/v1")

	// -------- Wallets --------
	wallets := v1.Group("/wallets", s.ActorRequired())
	wallets.GET("/:owner_type/:owner_id/balance", s.GetBalance)
	wallets.GET("/:owner_type/:owner_id/transactions", s.ListTransactions)
	wallets.GET("/:owner_type/:owner_id/integrity", s.AdminRequired(), s.VerifyIntegrity)
	wallets.POST("/:owner_type/:owner_id/adjust", s.AdminRequired(), s.AdminAdjust)
	wallets.POST("/:owner_type/:owner_id/status", s.AdminRequired(), s.SetAccountStatus)
	wallets.POST("/transfer", s.AdminRequired(), s.Transfer)
	wallets.POST("/transactions/:id/reverse", s.AdminRequired(), s.ReverseTransaction)

	// -------- Commissions --------
	commissions := v1.Group("/commissions", s.ActorRequired())
	commissions.POST("", s.SystemOrAdminRequired(), s.AccrueCommission)
	commissions.GET("", s.ListCommissions)
	commissions.GET("/:id", s.GetCommissionByID)
	commissions.POST("/:id/confirm", s.AdminRequired(), s.ConfirmCommission)
	commissions.POST("/:id/cancel", s.AdminRequired(), s.CancelCommission)

	// -------- Withdrawals --------
	withdrawals := v1.Group("/withdrawals", s.ActorRequired())
	withdrawals.POST("", s.CreateWithdrawal)
	withdrawals.GET("", s.ListWithdrawals)
	withdrawals.GET("/:id", s.GetWithdrawalByID)
	withdrawals.POST("/:id/approve", s.AdminRequired(), s.ApproveWithdrawal)
	withdrawals.POST("/:id/reject", s.AdminRequired(), s.RejectWithdrawal)
	withdrawals.POST("/:id/cancel", s.CancelWithdrawal)
	withdrawals.POST("/:id/execute", s.AdminRequired(), s.ExecuteWithdrawal)
	withdrawals.POST("/:id/reconcile", s.AdminRequired(), s.ReconcileWithdrawal)

	// -------- Payout Webhooks --------
	// Authenticated by provider signature, not by actor headers.
	v1.POST("/payouts/webhooks/:provider", s.HandlePayoutWebhook)
}

func (s *Server) Ready(c *gin.Context) {
	sqlDB, err := s.db.DB()
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
