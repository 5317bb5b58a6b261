package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	commissiondomain "github.com/Abhi-Verma2005/hrm8-backend-sub003/internal/commission/domain"
	commissionservice "github.com/Abhi-Verma2005/hrm8-backend-sub003/internal/commission/service"
	"github.com/Abhi-Verma2005/hrm8-backend-sub003/internal/config"
	"github.com/Abhi-Verma2005/hrm8-backend-sub003/internal/payout"
	walletdomain "github.com/Abhi-Verma2005/hrm8-backend-sub003/internal/wallet/domain"
	walletservice "github.com/Abhi-Verma2005/hrm8-backend-sub003/internal/wallet/service"
	withdrawaldomain "github.com/Abhi-Verma2005/hrm8-backend-sub003/internal/withdrawal/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type mockExecutor struct {
	mock.Mock
}

func (m *mockExecutor) Provider() string { return "manual" }

func (m *mockExecutor) Submit(ctx context.Context, req payout.SubmitRequest) (payout.SubmitResult, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(payout.SubmitResult), args.Error(1)
}

func (m *mockExecutor) Status(ctx context.Context, reference string) (payout.SubmitResult, error) {
	args := m.Called(ctx, reference)
	return args.Get(0).(payout.SubmitResult), args.Error(1)
}

type testEnv struct {
	db            *gorm.DB
	node          *snowflake.Node
	exec          *mockExecutor
	svc           withdrawaldomain.Service
	walletSvc     walletdomain.Service
	commissionSvc commissiondomain.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&walletdomain.LedgerAccount{},
		&walletdomain.LedgerTransaction{},
		&commissiondomain.Commission{},
		&withdrawaldomain.Withdrawal{},
	))

	return buildEnv(t, db)
}

// newMigrationEnv wires the same service stack over the real migration DDL
// with foreign keys enforced, instead of the constraint-free AutoMigrate
// schema.
func newMigrationEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	for _, name := range []string{"0001_ledger.up.sql", "0002_settlement.up.sql"} {
		ddl, err := os.ReadFile(filepath.Join("..", "..", "migration", "migrations", name))
		require.NoError(t, err)
		for _, stmt := range strings.Split(string(ddl), ";") {
			stmt = strings.TrimSpace(stmt)
			if stmt == "" {
				continue
			}
			require.NoError(t, db.Exec(stmt).Error, stmt)
		}
	}

	return buildEnv(t, db)
}

func buildEnv(t *testing.T, db *gorm.DB) *testEnv {
	t.Helper()

	node, err := snowflake.NewNode(3)
	require.NoError(t, err)
	log := zap.NewNop()

	walletSvc := walletservice.NewService(walletservice.Params{DB: db, Log: log, GenID: node})
	commissionSvc := commissionservice.NewService(commissionservice.Params{DB: db, Log: log, GenID: node})

	exec := &mockExecutor{}
	registry := payout.NewRegistry(exec)
	registry.MapMethod("bank_transfer", "manual")

	svc := NewService(Params{
		DB:        db,
		Log:       log,
		Config:    config.Config{PayoutCurrency: "usd"},
		GenID:     node,
		WalletSvc: walletSvc,
		Registry:  registry,
	})

	return &testEnv{
		db:            db,
		node:          node,
		exec:          exec,
		svc:           svc,
		walletSvc:     walletSvc,
		commissionSvc: commissionSvc,
	}
}

func (e *testEnv) confirmedCommission(t *testing.T, consultantID snowflake.ID, amount int64) *commissiondomain.Commission {
	t.Helper()
	commission, err := e.commissionSvc.Accrue(context.Background(), commissiondomain.AccrueRequest{
		ConsultantID: consultantID,
		RegionID:     e.node.Generate(),
		Amount:       amount,
		Type:         commissiondomain.CommissionTypePlacement,
	})
	require.NoError(t, err)
	require.NoError(t, e.commissionSvc.Confirm(context.Background(), commission.ID))
	return commission
}

func (e *testEnv) createWithdrawal(t *testing.T, consultantID snowflake.ID, amount int64, commissionIDs ...snowflake.ID) *withdrawaldomain.Withdrawal {
	t.Helper()
	withdrawal, err := e.svc.Create(context.Background(), withdrawaldomain.CreateRequest{
		ConsultantID:   consultantID,
		Amount:         amount,
		PaymentMethod:  "bank_transfer",
		PaymentDetails: datatypes.JSON(`{"account":"acct_test_1"}`),
		CommissionIDs:  commissionIDs,
	})
	require.NoError(t, err)
	return withdrawal
}

func (e *testEnv) reload(t *testing.T, id snowflake.ID) *withdrawaldomain.Withdrawal {
	t.Helper()
	detail, err := e.svc.Get(context.Background(), id)
	require.NoError(t, err)
	return detail.Withdrawal
}

func (e *testEnv) commissionLock(t *testing.T, id snowflake.ID) *snowflake.ID {
	t.Helper()
	commission, err := e.commissionSvc.GetByID(context.Background(), id)
	require.NoError(t, err)
	return commission.WithdrawalID
}

func (e *testEnv) ledgerTransactionCount(t *testing.T) int64 {
	t.Helper()
	var count int64
	require.NoError(t, e.db.Model(&walletdomain.LedgerTransaction{}).Count(&count).Error)
	return count
}

func TestCreate_LocksCommissionsAllOrNothing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	consultantID := env.node.Generate()

	first := env.confirmedCommission(t, consultantID, 300)
	second := env.confirmedCommission(t, consultantID, 700)

	withdrawal := env.createWithdrawal(t, consultantID, 1000, first.ID, second.ID)
	assert.Equal(t, withdrawaldomain.WithdrawalStatusPending, withdrawal.Status)

	lock := env.commissionLock(t, first.ID)
	require.NotNil(t, lock)
	assert.Equal(t, withdrawal.ID, *lock)

	// A second request claiming an already-locked commission fails, and the
	// fresh commission bundled with it must not be left locked behind.
	fresh := env.confirmedCommission(t, consultantID, 500)
	_, err := env.svc.Create(ctx, withdrawaldomain.CreateRequest{
		ConsultantID:  consultantID,
		Amount:        800,
		PaymentMethod: "bank_transfer",
		CommissionIDs: []snowflake.ID{first.ID, fresh.ID},
	})
	assert.ErrorIs(t, err, withdrawaldomain.ErrCommissionAlreadyLocked)
	assert.Nil(t, env.commissionLock(t, fresh.ID))

	// Someone else's commission is not claimable.
	foreign := env.confirmedCommission(t, env.node.Generate(), 250)
	_, err = env.svc.Create(ctx, withdrawaldomain.CreateRequest{
		ConsultantID:  consultantID,
		Amount:        250,
		PaymentMethod: "bank_transfer",
		CommissionIDs: []snowflake.ID{foreign.ID},
	})
	assert.ErrorIs(t, err, withdrawaldomain.ErrCommissionNotEligible)
	assert.Nil(t, env.commissionLock(t, foreign.ID))
}

func TestCreate_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	consultantID := env.node.Generate()

	_, err := env.svc.Create(ctx, withdrawaldomain.CreateRequest{
		ConsultantID:  consultantID,
		Amount:        0,
		PaymentMethod: "bank_transfer",
		CommissionIDs: []snowflake.ID{env.node.Generate()},
	})
	assert.ErrorIs(t, err, withdrawaldomain.ErrInvalidAmount)

	_, err = env.svc.Create(ctx, withdrawaldomain.CreateRequest{
		ConsultantID:  consultantID,
		Amount:        100,
		PaymentMethod: "bank_transfer",
	})
	assert.ErrorIs(t, err, withdrawaldomain.ErrNoCommissions)

	pending, err := env.commissionSvc.Accrue(ctx, commissiondomain.AccrueRequest{
		ConsultantID: consultantID,
		RegionID:     env.node.Generate(),
		Amount:       400,
		Type:         commissiondomain.CommissionTypePlacement,
	})
	require.NoError(t, err)
	_, err = env.svc.Create(ctx, withdrawaldomain.CreateRequest{
		ConsultantID:  consultantID,
		Amount:        400,
		PaymentMethod: "bank_transfer",
		CommissionIDs: []snowflake.ID{pending.ID},
	})
	assert.ErrorIs(t, err, withdrawaldomain.ErrCommissionNotEligible)
}

func TestCreate_AmountMustMatchCommissionSum(t *testing.T) {
	env := newTestEnv(t)
	consultantID := env.node.Generate()
	commission := env.confirmedCommission(t, consultantID, 600)

	_, err := env.svc.Create(context.Background(), withdrawaldomain.CreateRequest{
		ConsultantID:  consultantID,
		Amount:        650,
		PaymentMethod: "bank_transfer",
		CommissionIDs: []snowflake.ID{commission.ID},
	})
	assert.ErrorIs(t, err, withdrawaldomain.ErrInvalidAmount)

	// Rollback released the lock taken earlier in the transaction.
	assert.Nil(t, env.commissionLock(t, commission.ID))
}

// commissions.withdrawal_id references withdrawals.id, so Create must insert
// the withdrawal before pointing commissions at it. AutoMigrate emits no
// foreign keys, so this runs against the migration DDL with enforcement on.
func TestCreate_SatisfiesCommissionForeignKey(t *testing.T) {
	env := newMigrationEnv(t)
	ctx := context.Background()
	consultantID := env.node.Generate()

	// Enforcement is live: a lock pointing at a withdrawal that does not
	// exist is rejected by the database.
	commission := env.confirmedCommission(t, consultantID, 400)
	err := env.db.Exec(
		`UPDATE commissions SET withdrawal_id = ? WHERE id = ?`,
		env.node.Generate(), commission.ID,
	).Error
	require.Error(t, err)

	withdrawal := env.createWithdrawal(t, consultantID, 400, commission.ID)
	lock := env.commissionLock(t, commission.ID)
	require.NotNil(t, lock)
	assert.Equal(t, withdrawal.ID, *lock)

	// A failed claim rolls the inserted withdrawal row back out with it.
	fresh := env.confirmedCommission(t, consultantID, 100)
	_, err = env.svc.Create(ctx, withdrawaldomain.CreateRequest{
		ConsultantID:  consultantID,
		Amount:        500,
		PaymentMethod: "bank_transfer",
		CommissionIDs: []snowflake.ID{commission.ID, fresh.ID},
	})
	assert.ErrorIs(t, err, withdrawaldomain.ErrCommissionAlreadyLocked)

	var count int64
	require.NoError(t, env.db.Model(&withdrawaldomain.Withdrawal{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestReject_RequiresReasonAndUnlocks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	consultantID := env.node.Generate()
	adminID := env.node.Generate()

	commission := env.confirmedCommission(t, consultantID, 500)
	withdrawal := env.createWithdrawal(t, consultantID, 500, commission.ID)

	assert.ErrorIs(t, env.svc.Reject(ctx, withdrawal.ID, adminID, "  "), withdrawaldomain.ErrReasonRequired)

	require.NoError(t, env.svc.Reject(ctx, withdrawal.ID, adminID, "kyc incomplete"))

	rejected := env.reload(t, withdrawal.ID)
	assert.Equal(t, withdrawaldomain.WithdrawalStatusRejected, rejected.Status)
	assert.Equal(t, "kyc incomplete", rejected.RejectionReason)
	require.NotNil(t, rejected.ReviewedBy)
	assert.Equal(t, adminID, *rejected.ReviewedBy)
	assert.Nil(t, env.commissionLock(t, commission.ID))

	// Rejected is terminal.
	assert.ErrorIs(t, env.svc.Approve(ctx, withdrawal.ID, adminID), withdrawaldomain.ErrInvalidState)
}

func TestCancel_OwnershipAndUnlock(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	consultantID := env.node.Generate()

	commission := env.confirmedCommission(t, consultantID, 800)
	withdrawal := env.createWithdrawal(t, consultantID, 800, commission.ID)

	assert.ErrorIs(t, env.svc.Cancel(ctx, withdrawal.ID, env.node.Generate()), withdrawaldomain.ErrUnauthorized)

	require.NoError(t, env.svc.Cancel(ctx, withdrawal.ID, consultantID))
	assert.Equal(t, withdrawaldomain.WithdrawalStatusCancelled, env.reload(t, withdrawal.ID).Status)
	assert.Nil(t, env.commissionLock(t, commission.ID))

	assert.ErrorIs(t, env.svc.Cancel(ctx, withdrawal.ID, consultantID), withdrawaldomain.ErrInvalidState)
}

func TestExecute_PaidDebitsLedgerExactlyOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	consultantID := env.node.Generate()
	adminID := env.node.Generate()

	commission := env.confirmedCommission(t, consultantID, 1200)
	withdrawal := env.createWithdrawal(t, consultantID, 1200, commission.ID)
	require.NoError(t, env.svc.Approve(ctx, withdrawal.ID, adminID))

	env.exec.On("Submit", mock.Anything, mock.MatchedBy(func(req payout.SubmitRequest) bool {
		return req.WithdrawalID == withdrawal.ID &&
			req.Amount == 1200 &&
			req.Currency == "usd" &&
			req.Destination == "acct_test_1"
	})).Return(payout.SubmitResult{Reference: "po_123", Outcome: payout.OutcomeSucceeded}, nil).Once()

	paid, err := env.svc.Execute(ctx, withdrawal.ID, adminID)
	require.NoError(t, err)
	assert.Equal(t, withdrawaldomain.WithdrawalStatusPaid, paid.Status)
	assert.Equal(t, "po_123", paid.PaymentReference)
	assert.NotNil(t, paid.PaidAt)
	env.exec.AssertExpectations(t)

	lockedCommission, err := env.commissionSvc.GetByID(ctx, commission.ID)
	require.NoError(t, err)
	assert.Equal(t, commissiondomain.CommissionStatusPaid, lockedCommission.Status)

	balance, err := env.walletSvc.GetBalance(ctx, walletdomain.OwnerTypeConsultant, consultantID)
	require.NoError(t, err)
	assert.EqualValues(t, -1200, balance.Balance)
	assert.EqualValues(t, 1200, balance.TotalDebits)
	assert.EqualValues(t, 1, env.ledgerTransactionCount(t))

	// A webhook redelivery with the same reference is a no-op.
	require.NoError(t, env.svc.HandlePayoutResult(ctx, withdrawaldomain.PayoutResultRequest{
		WithdrawalID: withdrawal.ID,
		Reference:    "po_123",
		Outcome:      payout.OutcomeSucceeded,
	}))
	assert.EqualValues(t, 1, env.ledgerTransactionCount(t))

	// A success report under a different reference means someone paid twice
	// upstream. That must surface, not settle.
	err = env.svc.HandlePayoutResult(ctx, withdrawaldomain.PayoutResultRequest{
		WithdrawalID: withdrawal.ID,
		Reference:    "po_999",
		Outcome:      payout.OutcomeSucceeded,
	})
	assert.ErrorIs(t, err, withdrawaldomain.ErrReconciliationConflict)
	assert.EqualValues(t, 1, env.ledgerTransactionCount(t))
}

func TestExecute_FailureReturnsToApprovedKeepingLocks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	consultantID := env.node.Generate()
	adminID := env.node.Generate()

	commission := env.confirmedCommission(t, consultantID, 700)
	withdrawal := env.createWithdrawal(t, consultantID, 700, commission.ID)
	require.NoError(t, env.svc.Approve(ctx, withdrawal.ID, adminID))

	env.exec.On("Submit", mock.Anything, mock.Anything).
		Return(payout.SubmitResult{Reference: "po_f1", Outcome: payout.OutcomeFailed, FailureReason: "account closed"}, nil).Once()

	failed, err := env.svc.Execute(ctx, withdrawal.ID, adminID)
	require.NoError(t, err)
	assert.Equal(t, withdrawaldomain.WithdrawalStatusApproved, failed.Status)
	assert.Equal(t, "account closed", failed.FailureReason)
	assert.Empty(t, failed.PaymentReference)
	// A definitive failure ends the attempt, so its key is cleared and the
	// retry below mints a fresh one.
	assert.Empty(t, failed.PayoutIdempotencyKey)

	// The claim survives the failed attempt so the retry settles the same
	// commissions.
	lock := env.commissionLock(t, commission.ID)
	require.NotNil(t, lock)
	assert.Equal(t, withdrawal.ID, *lock)
	assert.Zero(t, env.ledgerTransactionCount(t))

	// Retry succeeds.
	env.exec.On("Submit", mock.Anything, mock.Anything).
		Return(payout.SubmitResult{Reference: "po_f2", Outcome: payout.OutcomeSucceeded}, nil).Once()
	paid, err := env.svc.Execute(ctx, withdrawal.ID, adminID)
	require.NoError(t, err)
	assert.Equal(t, withdrawaldomain.WithdrawalStatusPaid, paid.Status)
	assert.EqualValues(t, 1, env.ledgerTransactionCount(t))
}

func TestExecute_TransportErrorStaysProcessing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	consultantID := env.node.Generate()
	adminID := env.node.Generate()

	commission := env.confirmedCommission(t, consultantID, 900)
	withdrawal := env.createWithdrawal(t, consultantID, 900, commission.ID)
	require.NoError(t, env.svc.Approve(ctx, withdrawal.ID, adminID))

	env.exec.On("Submit", mock.Anything, mock.Anything).
		Return(payout.SubmitResult{}, errors.New("connection reset")).Once()

	stuck, err := env.svc.Execute(ctx, withdrawal.ID, adminID)
	require.NoError(t, err)
	assert.Equal(t, withdrawaldomain.WithdrawalStatusProcessing, stuck.Status)
	assert.Zero(t, env.ledgerTransactionCount(t))

	// Executing again while processing is rejected.
	_, err = env.svc.Execute(ctx, withdrawal.ID, adminID)
	assert.ErrorIs(t, err, withdrawaldomain.ErrInvalidState)

	// Late reconciliation resolves it.
	require.NoError(t, env.svc.HandlePayoutResult(ctx, withdrawaldomain.PayoutResultRequest{
		WithdrawalID: withdrawal.ID,
		Reference:    "po_late",
		Outcome:      payout.OutcomeSucceeded,
	}))
	assert.Equal(t, withdrawaldomain.WithdrawalStatusPaid, env.reload(t, withdrawal.ID).Status)
	assert.EqualValues(t, 1, env.ledgerTransactionCount(t))
	assert.Equal(t, commissiondomain.CommissionStatusPaid, mustStatus(t, env, commission.ID))
}

func TestRedrive_ReusesStoredIdempotencyKey(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	consultantID := env.node.Generate()
	adminID := env.node.Generate()

	commission := env.confirmedCommission(t, consultantID, 900)
	withdrawal := env.createWithdrawal(t, consultantID, 900, commission.ID)
	require.NoError(t, env.svc.Approve(ctx, withdrawal.ID, adminID))

	var keys []string
	capture := func(args mock.Arguments) {
		keys = append(keys, args.Get(1).(payout.SubmitRequest).IdempotencyKey)
	}

	env.exec.On("Submit", mock.Anything, mock.Anything).
		Run(capture).
		Return(payout.SubmitResult{}, errors.New("connection reset")).Once()

	stuck, err := env.svc.Execute(ctx, withdrawal.ID, adminID)
	require.NoError(t, err)
	require.Equal(t, withdrawaldomain.WithdrawalStatusProcessing, stuck.Status)
	require.NotEmpty(t, stuck.PayoutIdempotencyKey)

	// The resubmission carries the exact key the lost attempt used, so the
	// provider treats it as a duplicate rather than a second transfer.
	env.exec.On("Submit", mock.Anything, mock.Anything).
		Run(capture).
		Return(payout.SubmitResult{Reference: "po_rd1", Outcome: payout.OutcomeSucceeded}, nil).Once()

	redriven, err := env.svc.Redrive(ctx, withdrawal.ID)
	require.NoError(t, err)
	assert.Equal(t, withdrawaldomain.WithdrawalStatusPaid, redriven.Status)
	assert.Equal(t, "po_rd1", redriven.PaymentReference)
	env.exec.AssertExpectations(t)

	require.Len(t, keys, 2)
	assert.Equal(t, keys[0], keys[1])
	assert.EqualValues(t, 1, env.ledgerTransactionCount(t))

	// Settled rows cannot be re-driven.
	_, err = env.svc.Redrive(ctx, withdrawal.ID)
	assert.ErrorIs(t, err, withdrawaldomain.ErrInvalidState)
}

func TestHandlePayoutResult_StateGuards(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	consultantID := env.node.Generate()

	commission := env.confirmedCommission(t, consultantID, 300)
	withdrawal := env.createWithdrawal(t, consultantID, 300, commission.ID)

	// Pending withdrawals have no payout in flight.
	err := env.svc.HandlePayoutResult(ctx, withdrawaldomain.PayoutResultRequest{
		WithdrawalID: withdrawal.ID,
		Reference:    "po_early",
		Outcome:      payout.OutcomeSucceeded,
	})
	assert.ErrorIs(t, err, withdrawaldomain.ErrInvalidState)

	err = env.svc.HandlePayoutResult(ctx, withdrawaldomain.PayoutResultRequest{
		WithdrawalID: env.node.Generate(),
		Reference:    "po_x",
		Outcome:      payout.OutcomeSucceeded,
	})
	assert.ErrorIs(t, err, withdrawaldomain.ErrNotFound)

	// A success without a reference is not reconcilable.
	require.NoError(t, env.svc.Approve(ctx, withdrawal.ID, env.node.Generate()))
	require.NoError(t, env.db.Exec(
		`UPDATE withdrawals SET status = ? WHERE id = ?`,
		withdrawaldomain.WithdrawalStatusProcessing, withdrawal.ID,
	).Error)
	err = env.svc.HandlePayoutResult(ctx, withdrawaldomain.PayoutResultRequest{
		WithdrawalID: withdrawal.ID,
		Outcome:      payout.OutcomeSucceeded,
	})
	assert.ErrorIs(t, err, withdrawaldomain.ErrReconciliationConflict)
}

func TestList_FiltersByConsultant(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first := env.node.Generate()
	second := env.node.Generate()
	for _, consultantID := range []snowflake.ID{first, first, second} {
		commission := env.confirmedCommission(t, consultantID, 100)
		env.createWithdrawal(t, consultantID, 100, commission.ID)
	}

	resp, err := env.svc.List(ctx, withdrawaldomain.ListWithdrawalRequest{
		Filter: withdrawaldomain.ListWithdrawalFilter{ConsultantID: first},
	})
	require.NoError(t, err)
	assert.Len(t, resp.Withdrawals, 2)

	resp, err = env.svc.List(ctx, withdrawaldomain.ListWithdrawalRequest{
		Filter: withdrawaldomain.ListWithdrawalFilter{Status: withdrawaldomain.WithdrawalStatusPending},
	})
	require.NoError(t, err)
	assert.Len(t, resp.Withdrawals, 3)
}

func mustStatus(t *testing.T, env *testEnv, id snowflake.ID) commissiondomain.CommissionStatus {
	t.Helper()
	commission, err := env.commissionSvc.GetByID(context.Background(), id)
	require.NoError(t, err)
	return commission.Status
}
