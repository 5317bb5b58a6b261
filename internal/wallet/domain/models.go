package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// OwnerType identifies which kind of platform actor an account belongs to.
type OwnerType string

const (
	OwnerTypeCompany    OwnerType = "company"
	OwnerTypeConsultant OwnerType = "consultant"
	OwnerTypeSalesAgent OwnerType = "sales_agent"
)

type AccountStatus string

const (
	AccountStatusActive AccountStatus = "active"
	AccountStatusFrozen AccountStatus = "frozen"
	AccountStatusClosed AccountStatus = "closed"
)

type TransactionDirection string

const (
	TransactionDirectionCredit TransactionDirection = "credit"
	TransactionDirectionDebit  TransactionDirection = "debit"
)

type TransactionType string

const (
	TransactionTypeJobPostingFee       TransactionType = "job_posting_fee"
	TransactionTypeCommissionPayout    TransactionType = "commission_payout"
	TransactionTypeAdminAdjustment     TransactionType = "admin_adjustment"
	TransactionTypeTransferIn          TransactionType = "transfer_in"
	TransactionTypeTransferOut         TransactionType = "transfer_out"
	TransactionTypeSubscriptionPayment TransactionType = "subscription_payment"
	TransactionTypeRefund              TransactionType = "refund"
)

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusReversed  TransactionStatus = "reversed"
)

// LedgerAccount is the running-balance record for one owner. Amounts are in
// minor currency units. balance must always equal total_credits - total_debits;
// every mutation path goes through the wallet service so that holds.
type LedgerAccount struct {
	ID           snowflake.ID  `gorm:"primaryKey" json:"id"`
	OwnerType    OwnerType     `gorm:"type:text;not null;uniqueIndex:ux_ledger_accounts_owner,priority:1" json:"owner_type"`
	OwnerID      snowflake.ID  `gorm:"not null;uniqueIndex:ux_ledger_accounts_owner,priority:2" json:"owner_id"`
	Balance      int64         `gorm:"not null;default:0" json:"balance"`
	TotalCredits int64         `gorm:"not null;default:0" json:"total_credits"`
	TotalDebits  int64         `gorm:"not null;default:0" json:"total_debits"`
	Status       AccountStatus `gorm:"type:text;not null;default:'active'" json:"status"`
	CreatedAt    time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (LedgerAccount) TableName() string { return "ledger_accounts" }

// LedgerTransaction is the immutable audit record for one balance mutation.
// Completed rows are never edited; corrections append a reversing row.
type LedgerTransaction struct {
	ID              snowflake.ID         `gorm:"primaryKey" json:"id"`
	AccountID       snowflake.ID         `gorm:"not null;index" json:"account_id"`
	Amount          int64                `gorm:"not null" json:"amount"`
	Direction       TransactionDirection `gorm:"type:text;not null" json:"direction"`
	Type            TransactionType      `gorm:"type:text;not null;index" json:"type"`
	Status          TransactionStatus    `gorm:"type:text;not null" json:"status"`
	Description     string               `gorm:"type:text" json:"description"`
	RelatedEntityID *snowflake.ID        `gorm:"index" json:"related_entity_id,omitempty"`
	ReversalOf      *snowflake.ID        `gorm:"index" json:"reversal_of,omitempty"`
	CreatedBy       string               `gorm:"type:text" json:"created_by"`
	CreatedAt       time.Time            `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (LedgerTransaction) TableName() string { return "ledger_transactions" }

func ParseOwnerType(raw string) (OwnerType, bool) {
	switch OwnerType(raw) {
	case OwnerTypeCompany, OwnerTypeConsultant, OwnerTypeSalesAgent:
		return OwnerType(raw), true
	default:
		return "", false
	}
}
