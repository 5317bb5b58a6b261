package domain

import (
	"context"
	"errors"
	"time"

	commissiondomain "github.com/Abhi-Verma2005/hrm8-backend-sub003/internal/commission/domain"
	"github.com/Abhi-Verma2005/hrm8-backend-sub003/internal/payout"
	"github.com/Abhi-Verma2005/hrm8-backend-sub003/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

var (
	ErrInvalidAmount           = errors.New("invalid_amount")
	ErrInvalidPaymentMethod    = errors.New("invalid_payment_method")
	ErrNoCommissions           = errors.New("no_commissions")
	ErrCommissionNotEligible   = errors.New("commission_not_eligible")
	ErrCommissionAlreadyLocked = errors.New("commission_already_locked")
	ErrInvalidState            = errors.New("invalid_state")
	ErrUnauthorized            = errors.New("unauthorized")
	ErrReasonRequired          = errors.New("reason_required")
	ErrNotFound                = errors.New("withdrawal_not_found")
	ErrReconciliationConflict  = errors.New("reconciliation_conflict")
)

type CreateRequest struct {
	ConsultantID   snowflake.ID
	Amount         int64
	PaymentMethod  string
	PaymentDetails datatypes.JSON
	CommissionIDs  []snowflake.ID
	Notes          string
}

type ListWithdrawalFilter struct {
	ConsultantID snowflake.ID
	Status       WithdrawalStatus
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
}

type ListWithdrawalRequest struct {
	Filter ListWithdrawalFilter
	Page   pagination.Pagination
}

type ListWithdrawalResponse struct {
	pagination.PageInfo
	Withdrawals []*Withdrawal `json:"withdrawals"`
}

type WithdrawalDetail struct {
	Withdrawal  *Withdrawal                     `json:"withdrawal"`
	Commissions []*commissiondomain.Commission  `json:"commissions"`
}

// PayoutResultRequest carries an externally-observed payout outcome back
// onto a withdrawal. Reconciliation keys off (WithdrawalID, Reference).
type PayoutResultRequest struct {
	WithdrawalID  snowflake.ID
	Reference     string
	Outcome       payout.Outcome
	FailureReason string
}

type Service interface {
	// Create validates and locks the referenced commissions as one
	// all-or-nothing claim, then records the pending withdrawal.
	Create(ctx context.Context, req CreateRequest) (*Withdrawal, error)
	Approve(ctx context.Context, id, adminID snowflake.ID) error
	Reject(ctx context.Context, id, adminID snowflake.ID, reason string) error
	// Cancel is consultant-initiated and only valid from pending/approved.
	Cancel(ctx context.Context, id, consultantID snowflake.ID) error
	// Execute moves approved -> processing and submits the external payout.
	Execute(ctx context.Context, id, adminID snowflake.ID) (*Withdrawal, error)
	// Redrive resubmits a processing withdrawal whose submission outcome was
	// lost, reusing the stored idempotency key so the provider dedupes it.
	Redrive(ctx context.Context, id snowflake.ID) (*Withdrawal, error)
	// HandlePayoutResult idempotently applies an external outcome: a repeat
	// success with the same reference is a no-op, never a second debit.
	HandlePayoutResult(ctx context.Context, req PayoutResultRequest) error
	Get(ctx context.Context, id snowflake.ID) (*WithdrawalDetail, error)
	List(ctx context.Context, req ListWithdrawalRequest) (ListWithdrawalResponse, error)
}
