package domain

import (
	"context"
	"errors"
	"time"

	"github.com/Abhi-Verma2005/hrm8-backend-sub003/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

var (
	ErrInvalidAmount       = errors.New("invalid_amount")
	ErrInvalidOwnerType    = errors.New("invalid_owner_type")
	ErrInvalidOwnerID      = errors.New("invalid_owner_id")
	ErrAccountNotFound     = errors.New("account_not_found")
	ErrAccountFrozen       = errors.New("account_frozen")
	ErrInsufficientBalance = errors.New("insufficient_balance")
	ErrSameAccount         = errors.New("same_account_transfer")
	ErrTransactionNotFound = errors.New("transaction_not_found")
	ErrNotReversible       = errors.New("transaction_not_reversible")
	ErrInvalidStatus       = errors.New("invalid_account_status")
)

type CreditRequest struct {
	AccountID       snowflake.ID
	Amount          int64
	Type            TransactionType
	Description     string
	RelatedEntityID *snowflake.ID
	CreatedBy       string
}

type DebitRequest struct {
	AccountID       snowflake.ID
	Amount          int64
	Type            TransactionType
	Description     string
	RelatedEntityID *snowflake.ID
	CreatedBy       string

	// AllowNegative lifts the overdraft guard. Set by admin adjustments
	// and by settlement debits, which realize a liability rather than
	// spend an asset balance.
	AllowNegative bool
}

type TransferRequest struct {
	FromAccountID snowflake.ID
	ToAccountID   snowflake.ID
	Amount        int64
	Type          TransactionType
	Description   string
	CreatedBy     string
}

type TransferResult struct {
	Debit  *LedgerTransaction `json:"debit"`
	Credit *LedgerTransaction `json:"credit"`
}

type AdjustRequest struct {
	OwnerType   OwnerType
	OwnerID     snowflake.ID
	Amount      int64 // signed: positive credits, negative debits
	Description string
	CreatedBy   string
}

type BalanceResponse struct {
	AccountID    snowflake.ID  `json:"account_id"`
	OwnerType    OwnerType     `json:"owner_type"`
	OwnerID      snowflake.ID  `json:"owner_id"`
	Balance      int64         `json:"balance"`
	TotalCredits int64         `json:"total_credits"`
	TotalDebits  int64         `json:"total_debits"`
	Status       AccountStatus `json:"status"`
}

// IntegrityReport compares the denormalized balance against the balance
// recomputed from the transaction log. Drift is surfaced, never auto-fixed.
type IntegrityReport struct {
	AccountID       snowflake.ID `json:"account_id"`
	StoredBalance   int64        `json:"stored_balance"`
	ComputedBalance int64        `json:"computed_balance"`
	StoredCredits   int64        `json:"stored_credits"`
	ComputedCredits int64        `json:"computed_credits"`
	StoredDebits    int64        `json:"stored_debits"`
	ComputedDebits  int64        `json:"computed_debits"`
	IsConsistent    bool         `json:"is_consistent"`
}

// ListTransactionsFilter is the explicit filter accepted by the transaction
// listing; every field is optional and typed.
type ListTransactionsFilter struct {
	Type        TransactionType
	Direction   TransactionDirection
	Status      TransactionStatus
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	AmountMin   *int64
	AmountMax   *int64
}

type ListTransactionsRequest struct {
	AccountID snowflake.ID
	Filter    ListTransactionsFilter
	Page      pagination.Pagination
}

type ListTransactionsResponse struct {
	pagination.PageInfo
	Transactions []*LedgerTransaction `json:"transactions"`
}

type Service interface {
	GetOrCreateAccount(ctx context.Context, ownerType OwnerType, ownerID snowflake.ID) (*LedgerAccount, error)
	GetOrCreateAccountTx(ctx context.Context, tx *gorm.DB, ownerType OwnerType, ownerID snowflake.ID) (*LedgerAccount, error)
	GetBalance(ctx context.Context, ownerType OwnerType, ownerID snowflake.ID) (BalanceResponse, error)

	Credit(ctx context.Context, req CreditRequest) (*LedgerTransaction, error)
	Debit(ctx context.Context, req DebitRequest) (*LedgerTransaction, error)
	// DebitTx applies a debit inside an already-open transaction so callers
	// can compose the ledger mutation with their own state changes.
	DebitTx(ctx context.Context, tx *gorm.DB, req DebitRequest) (*LedgerTransaction, error)
	CreditTx(ctx context.Context, tx *gorm.DB, req CreditRequest) (*LedgerTransaction, error)

	Transfer(ctx context.Context, req TransferRequest) (*TransferResult, error)
	Reverse(ctx context.Context, transactionID snowflake.ID, createdBy string) (*LedgerTransaction, error)
	AdminAdjust(ctx context.Context, req AdjustRequest) (*LedgerTransaction, error)
	SetAccountStatus(ctx context.Context, accountID snowflake.ID, status AccountStatus, updatedBy string) error

	VerifyIntegrity(ctx context.Context, accountID snowflake.ID) (IntegrityReport, error)
	ListTransactions(ctx context.Context, req ListTransactionsRequest) (ListTransactionsResponse, error)
}
