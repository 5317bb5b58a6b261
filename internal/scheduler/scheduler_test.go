package scheduler

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Abhi-Verma2005/hrm8-backend-sub003/internal/clock"
	commissiondomain "github.com/Abhi-Verma2005/hrm8-backend-sub003/internal/commission/domain"
	commissionservice "github.com/Abhi-Verma2005/hrm8-backend-sub003/internal/commission/service"
	"github.com/Abhi-Verma2005/hrm8-backend-sub003/internal/config"
	"github.com/Abhi-Verma2005/hrm8-backend-sub003/internal/payout"
	walletdomain "github.com/Abhi-Verma2005/hrm8-backend-sub003/internal/wallet/domain"
	walletservice "github.com/Abhi-Verma2005/hrm8-backend-sub003/internal/wallet/service"
	withdrawaldomain "github.com/Abhi-Verma2005/hrm8-backend-sub003/internal/withdrawal/domain"
	withdrawalservice "github.com/Abhi-Verma2005/hrm8-backend-sub003/internal/withdrawal/service"
	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type stubExecutor struct {
	submitResult payout.SubmitResult
	submitErr    error
	submitCalls  int
	lastSubmit   payout.SubmitRequest
	statusResult payout.SubmitResult
	statusErr    error
	statusCalls  int
}

func (s *stubExecutor) Provider() string { return "manual" }

func (s *stubExecutor) Submit(ctx context.Context, req payout.SubmitRequest) (payout.SubmitResult, error) {
	s.submitCalls++
	s.lastSubmit = req
	return s.submitResult, s.submitErr
}

func (s *stubExecutor) Status(ctx context.Context, reference string) (payout.SubmitResult, error) {
	s.statusCalls++
	return s.statusResult, s.statusErr
}

type schedulerEnv struct {
	db            *gorm.DB
	node          *snowflake.Node
	fakeClock     *clock.FakeClock
	exec          *stubExecutor
	scheduler     *Scheduler
	commissionSvc commissiondomain.Service
	withdrawalSvc withdrawaldomain.Service
}

func newSchedulerEnv(t *testing.T) *schedulerEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&walletdomain.LedgerAccount{},
		&walletdomain.LedgerTransaction{},
		&commissiondomain.Commission{},
		&withdrawaldomain.Withdrawal{},
		&JobRun{},
	))

	node, err := snowflake.NewNode(6)
	require.NoError(t, err)
	log := zap.NewNop()
	fakeClock := clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	exec := &stubExecutor{}
	registry := payout.NewRegistry(exec)
	registry.MapMethod("bank_transfer", "manual")

	cfg := config.Config{
		PayoutCurrency:         "usd",
		SchedulerInterval:      time.Minute,
		CommissionConfirmAfter: 72 * time.Hour,
		PayoutPollAfter:        15 * time.Minute,
	}

	walletSvc := walletservice.NewService(walletservice.Params{DB: db, Log: log, GenID: node})
	commissionSvc := commissionservice.NewService(commissionservice.Params{DB: db, Log: log, GenID: node})
	withdrawalSvc := withdrawalservice.NewService(withdrawalservice.Params{
		DB:        db,
		Log:       log,
		Config:    cfg,
		GenID:     node,
		WalletSvc: walletSvc,
		Registry:  registry,
	})

	scheduler := New(Params{
		DB:            db,
		Log:           log,
		Config:        cfg,
		Clock:         fakeClock,
		GenID:         node,
		CommissionSvc: commissionSvc,
		WithdrawalSvc: withdrawalSvc,
		Registry:      registry,
	})

	return &schedulerEnv{
		db:            db,
		node:          node,
		fakeClock:     fakeClock,
		exec:          exec,
		scheduler:     scheduler,
		commissionSvc: commissionSvc,
		withdrawalSvc: withdrawalSvc,
	}
}

// processingWithdrawal seeds a withdrawal already submitted to the rail,
// stale enough for the poller to pick up.
func (e *schedulerEnv) processingWithdrawal(t *testing.T, reference string) *withdrawaldomain.Withdrawal {
	t.Helper()
	ctx := context.Background()
	consultantID := e.node.Generate()

	commission, err := e.commissionSvc.Accrue(ctx, commissiondomain.AccrueRequest{
		ConsultantID: consultantID,
		RegionID:     e.node.Generate(),
		Amount:       400,
		Type:         commissiondomain.CommissionTypePlacement,
	})
	require.NoError(t, err)
	require.NoError(t, e.commissionSvc.Confirm(ctx, commission.ID))

	withdrawal, err := e.withdrawalSvc.Create(ctx, withdrawaldomain.CreateRequest{
		ConsultantID:  consultantID,
		Amount:        400,
		PaymentMethod: "bank_transfer",
		CommissionIDs: []snowflake.ID{commission.ID},
	})
	require.NoError(t, err)

	stale := e.fakeClock.Now().Add(-time.Hour)
	require.NoError(t, e.db.Exec(
		`UPDATE withdrawals SET status = ?, payment_reference = ?, payout_idempotency_key = ?, updated_at = ? WHERE id = ?`,
		withdrawaldomain.WithdrawalStatusProcessing, reference,
		"wd_"+withdrawal.ID.String()+"_attempt1", stale, withdrawal.ID,
	).Error)
	return withdrawal
}

func TestConfirmMaturedCommissionsJob(t *testing.T) {
	env := newSchedulerEnv(t)
	ctx := context.Background()

	commission, err := env.commissionSvc.Accrue(ctx, commissiondomain.AccrueRequest{
		ConsultantID: env.node.Generate(),
		RegionID:     env.node.Generate(),
		Amount:       100,
		Type:         commissiondomain.CommissionTypePlacement,
	})
	require.NoError(t, err)

	// Inside the holding window: nothing confirms.
	processed, err := env.scheduler.ConfirmMaturedCommissionsJob(ctx)
	require.NoError(t, err)
	assert.Zero(t, processed)

	env.fakeClock.Advance(73 * time.Hour)
	processed, err = env.scheduler.ConfirmMaturedCommissionsJob(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, processed)

	confirmed, err := env.commissionSvc.GetByID(ctx, commission.ID)
	require.NoError(t, err)
	assert.Equal(t, commissiondomain.CommissionStatusConfirmed, confirmed.Status)
}

func TestPollProcessingPayoutsJob_ResolvesStuckWithdrawal(t *testing.T) {
	env := newSchedulerEnv(t)
	ctx := context.Background()

	withdrawal := env.processingWithdrawal(t, "po_stuck")
	env.exec.statusResult = payout.SubmitResult{Reference: "po_stuck", Outcome: payout.OutcomeSucceeded}

	resolved, err := env.scheduler.PollProcessingPayoutsJob(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, resolved)
	assert.Equal(t, 1, env.exec.statusCalls)

	detail, err := env.withdrawalSvc.Get(ctx, withdrawal.ID)
	require.NoError(t, err)
	assert.Equal(t, withdrawaldomain.WithdrawalStatusPaid, detail.Withdrawal.Status)
}

func TestPollProcessingPayoutsJob_SkipsPendingOutcome(t *testing.T) {
	env := newSchedulerEnv(t)
	ctx := context.Background()

	withdrawal := env.processingWithdrawal(t, "po_pending")
	env.exec.statusResult = payout.SubmitResult{Reference: "po_pending", Outcome: payout.OutcomePending}

	resolved, err := env.scheduler.PollProcessingPayoutsJob(ctx)
	require.NoError(t, err)
	assert.Zero(t, resolved)

	detail, err := env.withdrawalSvc.Get(ctx, withdrawal.ID)
	require.NoError(t, err)
	assert.Equal(t, withdrawaldomain.WithdrawalStatusProcessing, detail.Withdrawal.Status)
}

// A submission whose outcome was lost leaves a processing row with no
// payment reference. The poller must still see it and re-drive it with the
// key stored at submit time, instead of leaving it stuck forever.
func TestPollProcessingPayoutsJob_RedrivesReferencelessWithdrawal(t *testing.T) {
	env := newSchedulerEnv(t)
	ctx := context.Background()

	withdrawal := env.processingWithdrawal(t, "")
	env.exec.submitResult = payout.SubmitResult{Reference: "po_redrive", Outcome: payout.OutcomeSucceeded}

	resolved, err := env.scheduler.PollProcessingPayoutsJob(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, resolved)
	assert.Equal(t, 1, env.exec.submitCalls)
	assert.Zero(t, env.exec.statusCalls)
	assert.Equal(t, "wd_"+withdrawal.ID.String()+"_attempt1", env.exec.lastSubmit.IdempotencyKey)

	detail, err := env.withdrawalSvc.Get(ctx, withdrawal.ID)
	require.NoError(t, err)
	assert.Equal(t, withdrawaldomain.WithdrawalStatusPaid, detail.Withdrawal.Status)
	assert.Equal(t, "po_redrive", detail.Withdrawal.PaymentReference)
}

func TestRunOnce_RecordsJobRuns(t *testing.T) {
	env := newSchedulerEnv(t)

	require.NoError(t, env.scheduler.RunOnce(context.Background()))

	var runs []*JobRun
	require.NoError(t, env.db.Order("job_name").Find(&runs).Error)
	require.Len(t, runs, 2)
	assert.Equal(t, "commission_confirm", runs[0].JobName)
	assert.Equal(t, "payout_poll", runs[1].JobName)
	for _, run := range runs {
		assert.Empty(t, run.Error)
		assert.False(t, run.StartedAt.IsZero())
	}
}

func TestRunJob_TimeoutIsNotAnError(t *testing.T) {
	env := newSchedulerEnv(t)

	err := env.scheduler.runJob(context.Background(), "slow_job", 5*time.Millisecond, func(ctx context.Context) (int64, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})
	assert.NoError(t, err)

	var run JobRun
	require.NoError(t, env.db.Where("job_name = ?", "slow_job").First(&run).Error)
	assert.Contains(t, run.Error, "context deadline exceeded")
}
