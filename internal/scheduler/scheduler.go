package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Abhi-Verma2005/hrm8-backend-sub003/internal/actorctx"
	"github.com/Abhi-Verma2005/hrm8-backend-sub003/internal/clock"
	commissiondomain "github.com/Abhi-Verma2005/hrm8-backend-sub003/internal/commission/domain"
	"github.com/Abhi-Verma2005/hrm8-backend-sub003/internal/config"
	"github.com/Abhi-Verma2005/hrm8-backend-sub003/internal/lock"
	"github.com/Abhi-Verma2005/hrm8-backend-sub003/internal/payout"
	withdrawaldomain "github.com/Abhi-Verma2005/hrm8-backend-sub003/internal/withdrawal/domain"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const jobLockTTL = 5 * time.Minute

type Params struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	Config        config.Config
	Clock         clock.Clock
	GenID         *snowflake.Node
	CommissionSvc commissiondomain.Service
	WithdrawalSvc withdrawaldomain.Service
	Registry      *payout.Registry
	Locker        *lock.Locker `optional:"true"`
}

// Scheduler drives the two periodic jobs the settlement pipeline needs:
// confirming matured commissions and polling stuck payouts. Every run is
// recorded in scheduler_job_runs so operators can see when a job last fired
// and what it did.
type Scheduler struct {
	db            *gorm.DB
	log           *zap.Logger
	cfg           config.Config
	clock         clock.Clock
	genID         *snowflake.Node
	commissionSvc commissiondomain.Service
	withdrawalSvc withdrawaldomain.Service
	registry      *payout.Registry
	locker        *lock.Locker
}

func New(p Params) *Scheduler {
	return &Scheduler{
		db:            p.DB,
		log:           p.Log.Named("scheduler"),
		cfg:           p.Config,
		clock:         p.Clock,
		genID:         p.GenID,
		commissionSvc: p.CommissionSvc,
		withdrawalSvc: p.WithdrawalSvc,
		registry:      p.Registry,
		locker:        p.Locker,
	}
}

func (s *Scheduler) RunOnce(ctx context.Context) error {
	var err error
	err = errors.Join(err, s.runJob(ctx, "commission_confirm", 30*time.Second, s.ConfirmMaturedCommissionsJob))
	err = errors.Join(err, s.runJob(ctx, "payout_poll", 60*time.Second, s.PollProcessingPayoutsJob))
	return err
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.SchedulerInterval)
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("scheduler run failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// runJob wraps a job with a timeout, the optional distributed lock and a
// scheduler_job_runs record. The lock is best effort: if redis is down the
// job still runs, the conditional UPDATEs underneath keep it safe.
func (s *Scheduler) runJob(parent context.Context, name string, timeout time.Duration, fn func(ctx context.Context) (int64, error)) error {
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	ctx = actorctx.WithActor(ctx, actorctx.Actor{Type: actorctx.ActorTypeSystem})

	if s.locker != nil {
		key := "hrm8wallet:job:" + name
		token, acquired, err := s.locker.TryLock(ctx, key, jobLockTTL)
		if err != nil {
			s.log.Warn("job lock unavailable, running unguarded",
				zap.String("job", name),
				zap.Error(err),
			)
		} else if !acquired {
			return nil
		} else {
			defer func() {
				if err := s.locker.Release(ctx, key, token); err != nil {
					s.log.Warn("failed to release job lock", zap.String("job", name), zap.Error(err))
				}
			}()
		}
	}

	run := &JobRun{
		ID:        s.genID.Generate(),
		JobName:   name,
		StartedAt: s.clock.Now(),
	}

	processed, err := fn(ctx)

	run.FinishedAt = s.clock.Now()
	run.Processed = processed
	if err != nil {
		run.Error = err.Error()
	}
	if recordErr := s.db.WithContext(parent).Create(run).Error; recordErr != nil {
		s.log.Warn("failed to record job run", zap.String("job", name), zap.Error(recordErr))
	}

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			s.log.Warn("job timed out",
				zap.String("job", name),
				zap.Duration("timeout", timeout),
				zap.Error(err),
			)
			return nil
		}
		return fmt.Errorf("%s: %w", name, err)
	}

	if processed > 0 {
		s.log.Info("job finished",
			zap.String("job", name),
			zap.Int64("processed", processed),
		)
	}
	return nil
}

// ConfirmMaturedCommissionsJob confirms pending commissions older than the
// configured holding window.
func (s *Scheduler) ConfirmMaturedCommissionsJob(ctx context.Context) (int64, error) {
	cutoff := s.clock.Now().Add(-s.cfg.CommissionConfirmAfter)
	return s.commissionSvc.ConfirmMatured(ctx, cutoff)
}

// PollProcessingPayoutsJob resolves withdrawals stuck in PROCESSING. Rows
// with a payment reference get a status check against the rail; rows without
// one never received an answer at submit time and are re-driven with their
// stored idempotency key. This is the safety net for lost webhooks and for
// submissions whose outcome was unknown at execute time.
func (s *Scheduler) PollProcessingPayoutsJob(ctx context.Context) (int64, error) {
	cutoff := s.clock.Now().Add(-s.cfg.PayoutPollAfter)

	var stuck []*withdrawaldomain.Withdrawal
	err := s.db.WithContext(ctx).Raw(
		`SELECT * FROM withdrawals
		 WHERE status = ? AND updated_at < ?
		 ORDER BY updated_at
		 LIMIT 100`,
		withdrawaldomain.WithdrawalStatusProcessing,
		cutoff,
	).Scan(&stuck).Error
	if err != nil {
		return 0, err
	}

	var resolved int64
	var errs error
	for _, withdrawal := range stuck {
		if withdrawal.PaymentReference == "" {
			redriven, err := s.withdrawalSvc.Redrive(ctx, withdrawal.ID)
			if err != nil {
				errs = errors.Join(errs, fmt.Errorf("withdrawal %s: %w", withdrawal.ID, err))
				continue
			}
			if redriven.Status != withdrawaldomain.WithdrawalStatusProcessing || redriven.PaymentReference != "" {
				resolved++
			}
			continue
		}

		executor, err := s.registry.ExecutorForMethod(withdrawal.PaymentMethod)
		if err != nil {
			errs = errors.Join(errs, fmt.Errorf("withdrawal %s: %w", withdrawal.ID, err))
			continue
		}

		result, err := executor.Status(ctx, withdrawal.PaymentReference)
		if err != nil {
			errs = errors.Join(errs, fmt.Errorf("withdrawal %s: %w", withdrawal.ID, err))
			continue
		}
		if result.Outcome == payout.OutcomePending {
			continue
		}

		err = s.withdrawalSvc.HandlePayoutResult(ctx, withdrawaldomain.PayoutResultRequest{
			WithdrawalID:  withdrawal.ID,
			Reference:     withdrawal.PaymentReference,
			Outcome:       result.Outcome,
			FailureReason: result.FailureReason,
		})
		if err != nil {
			errs = errors.Join(errs, fmt.Errorf("withdrawal %s: %w", withdrawal.ID, err))
			continue
		}
		resolved++
	}

	return resolved, errs
}
