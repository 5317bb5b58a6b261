package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	auditdomain "github.com/Abhi-Verma2005/hrm8-backend-sub003/internal/audit/domain"
	"github.com/Abhi-Verma2005/hrm8-backend-sub003/internal/config"
	commissiondomain "github.com/Abhi-Verma2005/hrm8-backend-sub003/internal/commission/domain"
	obsmetrics "github.com/Abhi-Verma2005/hrm8-backend-sub003/internal/observability/metrics"
	"github.com/Abhi-Verma2005/hrm8-backend-sub003/internal/payout"
	walletdomain "github.com/Abhi-Verma2005/hrm8-backend-sub003/internal/wallet/domain"
	withdrawaldomain "github.com/Abhi-Verma2005/hrm8-backend-sub003/internal/withdrawal/domain"
	"github.com/Abhi-Verma2005/hrm8-backend-sub003/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	Config     config.Config
	GenID      *snowflake.Node
	WalletSvc  walletdomain.Service
	Registry   *payout.Registry
	AuditSvc   auditdomain.Service `optional:"true"`
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	currency   string
	genID      *snowflake.Node
	walletSvc  walletdomain.Service
	registry   *payout.Registry
	auditSvc   auditdomain.Service
	obsMetrics *obsmetrics.Metrics
}

func NewService(p Params) withdrawaldomain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("withdrawal.service"),
		currency:   p.Config.PayoutCurrency,
		genID:      p.GenID,
		walletSvc:  p.WalletSvc,
		registry:   p.Registry,
		auditSvc:   p.AuditSvc,
		obsMetrics: p.ObsMetrics,
	}
}

// Create claims the referenced commissions with a single conditional
// multi-row UPDATE. Every commission must be confirmed, owned by the
// requesting consultant and unlocked, otherwise the transaction rolls back
// and none of them lock. This is what prevents the same commission from
// funding two concurrent withdrawal requests.
func (s *Service) Create(ctx context.Context, req withdrawaldomain.CreateRequest) (*withdrawaldomain.Withdrawal, error) {
	if req.Amount <= 0 {
		return nil, withdrawaldomain.ErrInvalidAmount
	}
	if strings.TrimSpace(req.PaymentMethod) == "" {
		return nil, withdrawaldomain.ErrInvalidPaymentMethod
	}
	ids := dedupe(req.CommissionIDs)
	if len(ids) == 0 {
		return nil, withdrawaldomain.ErrNoCommissions
	}

	withdrawal := &withdrawaldomain.Withdrawal{
		ID:             s.genID.Generate(),
		ConsultantID:   req.ConsultantID,
		Amount:         req.Amount,
		PaymentMethod:  strings.ToLower(strings.TrimSpace(req.PaymentMethod)),
		PaymentDetails: req.PaymentDetails,
		Status:         withdrawaldomain.WithdrawalStatusPending,
		Notes:          strings.TrimSpace(req.Notes),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		withdrawal.CreatedAt = now
		withdrawal.UpdatedAt = now
		// commissions.withdrawal_id references this row, so it must exist
		// before the lock UPDATE. A failed lock rolls the insert back too.
		if err := tx.WithContext(ctx).Create(withdrawal).Error; err != nil {
			return err
		}

		result := tx.WithContext(ctx).Exec(
			`UPDATE commissions SET withdrawal_id = ?, updated_at = ?
			 WHERE id IN ? AND consultant_id = ? AND status = ? AND withdrawal_id IS NULL`,
			withdrawal.ID,
			now,
			ids,
			req.ConsultantID,
			commissiondomain.CommissionStatusConfirmed,
		)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected != int64(len(ids)) {
			return s.diagnoseLockFailure(ctx, tx, ids, req.ConsultantID)
		}

		var total int64
		if err := tx.WithContext(ctx).Raw(
			`SELECT COALESCE(SUM(amount), 0) FROM commissions WHERE withdrawal_id = ?`,
			withdrawal.ID,
		).Scan(&total).Error; err != nil {
			return err
		}
		if total != req.Amount {
			return withdrawaldomain.ErrInvalidAmount
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recordTransition(withdrawaldomain.WithdrawalStatusPending)
	s.audit(ctx, "withdrawal.create", withdrawal.ID.String(), map[string]any{
		"consultant_id": req.ConsultantID.String(),
		"amount":        req.Amount,
		"commissions":   len(ids),
	})
	return withdrawal, nil
}

func (s *Service) Approve(ctx context.Context, id, adminID snowflake.ID) error {
	result := s.db.WithContext(ctx).Exec(
		`UPDATE withdrawals SET status = ?, reviewed_by = ?, updated_at = ? WHERE id = ? AND status = ?`,
		withdrawaldomain.WithdrawalStatusApproved,
		adminID,
		time.Now().UTC(),
		id,
		withdrawaldomain.WithdrawalStatusPending,
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return s.diagnoseTransition(ctx, id)
	}

	s.recordTransition(withdrawaldomain.WithdrawalStatusApproved)
	s.audit(ctx, "withdrawal.approve", id.String(), map[string]any{"admin_id": adminID.String()})
	return nil
}

func (s *Service) Reject(ctx context.Context, id, adminID snowflake.ID, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return withdrawaldomain.ErrReasonRequired
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		result := tx.WithContext(ctx).Exec(
			`UPDATE withdrawals SET status = ?, rejection_reason = ?, reviewed_by = ?, updated_at = ? WHERE id = ? AND status = ?`,
			withdrawaldomain.WithdrawalStatusRejected,
			reason,
			adminID,
			now,
			id,
			withdrawaldomain.WithdrawalStatusPending,
		)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return s.diagnoseTransition(ctx, id)
		}
		return s.unlockCommissions(ctx, tx, id, now)
	})
	if err != nil {
		return err
	}

	s.recordTransition(withdrawaldomain.WithdrawalStatusRejected)
	s.audit(ctx, "withdrawal.reject", id.String(), map[string]any{
		"admin_id": adminID.String(),
		"reason":   reason,
	})
	return nil
}

func (s *Service) Cancel(ctx context.Context, id, consultantID snowflake.ID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		withdrawal, err := s.load(ctx, tx, id)
		if err != nil {
			return err
		}
		if withdrawal.ConsultantID != consultantID {
			return withdrawaldomain.ErrUnauthorized
		}

		now := time.Now().UTC()
		result := tx.WithContext(ctx).Exec(
			`UPDATE withdrawals SET status = ?, updated_at = ? WHERE id = ? AND status IN (?, ?)`,
			withdrawaldomain.WithdrawalStatusCancelled,
			now,
			id,
			withdrawaldomain.WithdrawalStatusPending,
			withdrawaldomain.WithdrawalStatusApproved,
		)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return withdrawaldomain.ErrInvalidState
		}
		return s.unlockCommissions(ctx, tx, id, now)
	})
	if err != nil {
		return err
	}

	s.recordTransition(withdrawaldomain.WithdrawalStatusCancelled)
	s.audit(ctx, "withdrawal.cancel", id.String(), map[string]any{"consultant_id": consultantID.String()})
	return nil
}

// Execute moves the withdrawal into PROCESSING, then submits the transfer.
// A transport error leaves it in PROCESSING: the outcome downstream is
// unknown, and assuming failure would invite a double payout on retry. The
// payout poller or the provider webhook resolves it later.
func (s *Service) Execute(ctx context.Context, id, adminID snowflake.ID) (*withdrawaldomain.Withdrawal, error) {
	withdrawal, err := s.loadDB(ctx, id)
	if err != nil {
		return nil, err
	}

	executor, err := s.registry.ExecutorForMethod(withdrawal.PaymentMethod)
	if err != nil {
		return nil, withdrawaldomain.ErrInvalidPaymentMethod
	}

	// The key is minted and persisted before Submit so a transport failure
	// leaves a row that can be re-driven with the exact same key. The
	// provider then dedupes any resubmission of the same attempt.
	idempotencyKey := "wd_" + withdrawal.ID.String() + "_" + uuid.NewString()
	result := s.db.WithContext(ctx).Exec(
		`UPDATE withdrawals SET status = ?, payout_idempotency_key = ?, updated_at = ? WHERE id = ? AND status = ?`,
		withdrawaldomain.WithdrawalStatusProcessing,
		idempotencyKey,
		time.Now().UTC(),
		id,
		withdrawaldomain.WithdrawalStatusApproved,
	)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, withdrawaldomain.ErrInvalidState
	}
	s.recordTransition(withdrawaldomain.WithdrawalStatusProcessing)

	submitted, submitErr := executor.Submit(ctx, s.submitRequest(withdrawal, idempotencyKey))
	if submitErr != nil {
		s.log.Warn("payout submission outcome unknown; withdrawal stays processing",
			zap.String("withdrawal_id", withdrawal.ID.String()),
			zap.Error(submitErr),
		)
		return s.loadDB(ctx, id)
	}

	if err := s.applySubmitResult(ctx, id, submitted); err != nil {
		return nil, err
	}

	s.audit(ctx, "withdrawal.execute", id.String(), map[string]any{
		"admin_id":  adminID.String(),
		"reference": submitted.Reference,
		"outcome":   string(submitted.Outcome),
	})
	return s.loadDB(ctx, id)
}

// Redrive resubmits a PROCESSING withdrawal whose original submission never
// produced an answer, reusing the idempotency key persisted when the
// submission was first attempted. The provider dedupes on that key, so at
// most one transfer ever exists for the attempt.
func (s *Service) Redrive(ctx context.Context, id snowflake.ID) (*withdrawaldomain.Withdrawal, error) {
	withdrawal, err := s.loadDB(ctx, id)
	if err != nil {
		return nil, err
	}
	if withdrawal.Status != withdrawaldomain.WithdrawalStatusProcessing {
		return nil, withdrawaldomain.ErrInvalidState
	}
	if withdrawal.PaymentReference != "" {
		// The submission landed; the status poller owns this row.
		return withdrawal, nil
	}
	if withdrawal.PayoutIdempotencyKey == "" {
		return nil, withdrawaldomain.ErrInvalidState
	}

	executor, err := s.registry.ExecutorForMethod(withdrawal.PaymentMethod)
	if err != nil {
		return nil, withdrawaldomain.ErrInvalidPaymentMethod
	}

	submitted, submitErr := executor.Submit(ctx, s.submitRequest(withdrawal, withdrawal.PayoutIdempotencyKey))
	if submitErr != nil {
		s.log.Warn("payout redrive outcome unknown; withdrawal stays processing",
			zap.String("withdrawal_id", withdrawal.ID.String()),
			zap.Error(submitErr),
		)
		return s.loadDB(ctx, id)
	}

	if err := s.applySubmitResult(ctx, id, submitted); err != nil {
		return nil, err
	}

	s.audit(ctx, "withdrawal.redrive", id.String(), map[string]any{
		"reference": submitted.Reference,
		"outcome":   string(submitted.Outcome),
	})
	return s.loadDB(ctx, id)
}

func (s *Service) submitRequest(withdrawal *withdrawaldomain.Withdrawal, idempotencyKey string) payout.SubmitRequest {
	return payout.SubmitRequest{
		WithdrawalID:   withdrawal.ID,
		Amount:         withdrawal.Amount,
		Currency:       s.currency,
		Destination:    destinationFrom([]byte(withdrawal.PaymentDetails)),
		IdempotencyKey: idempotencyKey,
		Description:    "HRM8 consultant withdrawal " + withdrawal.ID.String(),
	}
}

// applySubmitResult persists a provider-issued reference and routes a
// definitive outcome through HandlePayoutResult.
func (s *Service) applySubmitResult(ctx context.Context, id snowflake.ID, submitted payout.SubmitResult) error {
	if submitted.Reference != "" {
		if err := s.db.WithContext(ctx).Exec(
			`UPDATE withdrawals SET payment_reference = ?, updated_at = ? WHERE id = ? AND status = ?`,
			submitted.Reference,
			time.Now().UTC(),
			id,
			withdrawaldomain.WithdrawalStatusProcessing,
		).Error; err != nil {
			return err
		}
	}

	switch submitted.Outcome {
	case payout.OutcomeSucceeded, payout.OutcomeFailed:
		return s.HandlePayoutResult(ctx, withdrawaldomain.PayoutResultRequest{
			WithdrawalID:  id,
			Reference:     submitted.Reference,
			Outcome:       submitted.Outcome,
			FailureReason: submitted.FailureReason,
		})
	}
	return nil
}

// HandlePayoutResult applies an externally-observed payout outcome. It is
// safe to call any number of times with the same (withdrawal, reference)
// pair: the processing -> paid transition is a conditional UPDATE that can
// only ever fire once, and the ledger debit rides in the same transaction.
func (s *Service) HandlePayoutResult(ctx context.Context, req withdrawaldomain.PayoutResultRequest) error {
	reference := strings.TrimSpace(req.Reference)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		withdrawal, err := s.load(ctx, tx, req.WithdrawalID)
		if err != nil {
			return err
		}

		if withdrawal.Status == withdrawaldomain.WithdrawalStatusPaid {
			if withdrawal.PaymentReference == reference && reference != "" {
				// Webhook redelivery. Nothing to do.
				s.recordReconciliation("duplicate")
				return nil
			}
			return withdrawaldomain.ErrReconciliationConflict
		}
		if withdrawal.Status != withdrawaldomain.WithdrawalStatusProcessing {
			return withdrawaldomain.ErrInvalidState
		}
		if withdrawal.PaymentReference != "" && reference != "" && withdrawal.PaymentReference != reference {
			return withdrawaldomain.ErrReconciliationConflict
		}

		now := time.Now().UTC()
		switch req.Outcome {
		case payout.OutcomePending:
			if reference != "" && withdrawal.PaymentReference == "" {
				return tx.WithContext(ctx).Exec(
					`UPDATE withdrawals SET payment_reference = ?, updated_at = ? WHERE id = ?`,
					reference, now, withdrawal.ID,
				).Error
			}
			return nil

		case payout.OutcomeFailed:
			// No ledger mutation on failure. Commissions stay locked so the
			// admin can retry against the same claim set.
			result := tx.WithContext(ctx).Exec(
				`UPDATE withdrawals SET status = ?, failure_reason = ?, payment_reference = '', payout_idempotency_key = '', updated_at = ? WHERE id = ? AND status = ?`,
				withdrawaldomain.WithdrawalStatusApproved,
				strings.TrimSpace(req.FailureReason),
				now,
				withdrawal.ID,
				withdrawaldomain.WithdrawalStatusProcessing,
			)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return withdrawaldomain.ErrInvalidState
			}
			s.recordTransition(withdrawaldomain.WithdrawalStatusApproved)
			s.recordReconciliation("failed")
			return nil

		case payout.OutcomeSucceeded:
			if reference == "" {
				return withdrawaldomain.ErrReconciliationConflict
			}
			result := tx.WithContext(ctx).Exec(
				`UPDATE withdrawals SET status = ?, payment_reference = ?, paid_at = ?, updated_at = ? WHERE id = ? AND status = ?`,
				withdrawaldomain.WithdrawalStatusPaid,
				reference,
				now,
				now,
				withdrawal.ID,
				withdrawaldomain.WithdrawalStatusProcessing,
			)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				// A concurrent reconciliation won the race; re-check.
				current, err := s.load(ctx, tx, withdrawal.ID)
				if err != nil {
					return err
				}
				if current.Status == withdrawaldomain.WithdrawalStatusPaid && current.PaymentReference == reference {
					return nil
				}
				return withdrawaldomain.ErrReconciliationConflict
			}

			if err := tx.WithContext(ctx).Exec(
				`UPDATE commissions SET status = ?, paid_at = ?, updated_at = ? WHERE withdrawal_id = ? AND status = ?`,
				commissiondomain.CommissionStatusPaid,
				now,
				now,
				withdrawal.ID,
				commissiondomain.CommissionStatusConfirmed,
			).Error; err != nil {
				return err
			}

			account, err := s.walletSvc.GetOrCreateAccountTx(ctx, tx, walletdomain.OwnerTypeConsultant, withdrawal.ConsultantID)
			if err != nil {
				return err
			}
			// The debit realizes a platform liability leaving the system,
			// not spending of an asset balance, so the overdraft guard does
			// not apply here.
			if _, err := s.walletSvc.DebitTx(ctx, tx, walletdomain.DebitRequest{
				AccountID:       account.ID,
				Amount:          withdrawal.Amount,
				Type:            walletdomain.TransactionTypeCommissionPayout,
				Description:     "withdrawal " + withdrawal.ID.String() + " paid via " + withdrawal.PaymentMethod,
				RelatedEntityID: &withdrawal.ID,
				CreatedBy:       "settlement",
				AllowNegative:   true,
			}); err != nil {
				return err
			}

			s.recordTransition(withdrawaldomain.WithdrawalStatusPaid)
			s.recordReconciliation("succeeded")
			return nil

		default:
			return withdrawaldomain.ErrReconciliationConflict
		}
	})
	if err != nil {
		return err
	}

	s.audit(ctx, "withdrawal.reconcile", req.WithdrawalID.String(), map[string]any{
		"reference": reference,
		"outcome":   string(req.Outcome),
	})
	return nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*withdrawaldomain.WithdrawalDetail, error) {
	withdrawal, err := s.loadDB(ctx, id)
	if err != nil {
		return nil, err
	}

	var commissions []*commissiondomain.Commission
	if err := s.db.WithContext(ctx).Raw(
		`SELECT * FROM commissions WHERE withdrawal_id = ? ORDER BY created_at, id`, id,
	).Scan(&commissions).Error; err != nil {
		return nil, err
	}

	return &withdrawaldomain.WithdrawalDetail{
		Withdrawal:  withdrawal,
		Commissions: commissions,
	}, nil
}

func (s *Service) List(ctx context.Context, req withdrawaldomain.ListWithdrawalRequest) (withdrawaldomain.ListWithdrawalResponse, error) {
	stmt := s.db.WithContext(ctx).Model(&withdrawaldomain.Withdrawal{})

	filter := req.Filter
	if filter.ConsultantID != 0 {
		stmt = stmt.Where("consultant_id = ?", filter.ConsultantID)
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.CreatedFrom != nil {
		stmt = stmt.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		stmt = stmt.Where("created_at <= ?", *filter.CreatedTo)
	}

	if req.Page.PageToken != "" {
		cursor, err := pagination.DecodeCursor(req.Page.PageToken)
		if err != nil {
			return withdrawaldomain.ListWithdrawalResponse{}, err
		}
		cursorAt, err := cursor.Time()
		if err != nil {
			return withdrawaldomain.ListWithdrawalResponse{}, err
		}
		cursorID, err := cursor.IDInt64()
		if err != nil {
			return withdrawaldomain.ListWithdrawalResponse{}, err
		}
		stmt = stmt.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursorAt, cursorAt, cursorID)
	}

	limit := req.Page.Limit()
	var withdrawals []*withdrawaldomain.Withdrawal
	if err := stmt.Order("created_at desc, id desc").Limit(limit + 1).Find(&withdrawals).Error; err != nil {
		return withdrawaldomain.ListWithdrawalResponse{}, err
	}

	withdrawals, pageInfo := pagination.BuildCursorPageInfo(withdrawals, limit, func(w *withdrawaldomain.Withdrawal) pagination.Cursor {
		return pagination.Cursor{
			ID:        w.ID.String(),
			CreatedAt: w.CreatedAt.UTC().Format(time.RFC3339Nano),
		}
	})

	return withdrawaldomain.ListWithdrawalResponse{
		PageInfo:    pageInfo,
		Withdrawals: withdrawals,
	}, nil
}

func (s *Service) load(ctx context.Context, tx *gorm.DB, id snowflake.ID) (*withdrawaldomain.Withdrawal, error) {
	var withdrawal withdrawaldomain.Withdrawal
	err := tx.WithContext(ctx).Raw(
		`SELECT * FROM withdrawals WHERE id = ?`, id,
	).Scan(&withdrawal).Error
	if err != nil {
		return nil, err
	}
	if withdrawal.ID == 0 {
		return nil, withdrawaldomain.ErrNotFound
	}
	return &withdrawal, nil
}

func (s *Service) loadDB(ctx context.Context, id snowflake.ID) (*withdrawaldomain.Withdrawal, error) {
	return s.load(ctx, s.db, id)
}

func (s *Service) unlockCommissions(ctx context.Context, tx *gorm.DB, withdrawalID snowflake.ID, now time.Time) error {
	return tx.WithContext(ctx).Exec(
		`UPDATE commissions SET withdrawal_id = NULL, updated_at = ? WHERE withdrawal_id = ?`,
		now,
		withdrawalID,
	).Error
}

// diagnoseLockFailure turns a shortfall in the all-or-nothing commission
// claim into the most specific error for the first offending commission.
func (s *Service) diagnoseLockFailure(ctx context.Context, tx *gorm.DB, ids []snowflake.ID, consultantID snowflake.ID) error {
	var commissions []*commissiondomain.Commission
	if err := tx.WithContext(ctx).Raw(
		`SELECT * FROM commissions WHERE id IN ?`, ids,
	).Scan(&commissions).Error; err != nil {
		return err
	}

	byID := make(map[snowflake.ID]*commissiondomain.Commission, len(commissions))
	for _, commission := range commissions {
		byID[commission.ID] = commission
	}

	for _, id := range ids {
		commission, ok := byID[id]
		if !ok {
			return withdrawaldomain.ErrCommissionNotEligible
		}
		if commission.WithdrawalID != nil {
			return withdrawaldomain.ErrCommissionAlreadyLocked
		}
		if commission.ConsultantID != consultantID || commission.Status != commissiondomain.CommissionStatusConfirmed {
			return withdrawaldomain.ErrCommissionNotEligible
		}
	}
	return withdrawaldomain.ErrCommissionNotEligible
}

func (s *Service) diagnoseTransition(ctx context.Context, id snowflake.ID) error {
	if _, err := s.loadDB(ctx, id); err != nil {
		return err
	}
	return withdrawaldomain.ErrInvalidState
}

func destinationFrom(details []byte) string {
	if len(details) == 0 {
		return ""
	}
	var parsed map[string]any
	if err := json.Unmarshal(details, &parsed); err != nil {
		return ""
	}
	for _, key := range []string{"destination", "account_id", "account"} {
		if value, ok := parsed[key].(string); ok && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

func dedupe(ids []snowflake.ID) []snowflake.ID {
	seen := make(map[snowflake.ID]struct{}, len(ids))
	out := make([]snowflake.ID, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func (s *Service) recordTransition(to withdrawaldomain.WithdrawalStatus) {
	if s.obsMetrics != nil {
		s.obsMetrics.RecordWithdrawalTransition(string(to))
	}
}

func (s *Service) recordReconciliation(outcome string) {
	if s.obsMetrics != nil {
		s.obsMetrics.RecordReconciliation(outcome)
	}
}

func (s *Service) audit(ctx context.Context, action, targetID string, metadata map[string]any) {
	if s.auditSvc == nil {
		return
	}
	if err := s.auditSvc.AuditLog(ctx, action, "withdrawal", &targetID, metadata); err != nil {
		s.log.Warn("failed to write withdrawal audit log", zap.Error(err))
	}
}
