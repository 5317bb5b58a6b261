package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type WithdrawalStatus string

const (
	WithdrawalStatusPending    WithdrawalStatus = "pending"
	WithdrawalStatusApproved   WithdrawalStatus = "approved"
	WithdrawalStatusProcessing WithdrawalStatus = "processing"
	WithdrawalStatusPaid       WithdrawalStatus = "paid"
	WithdrawalStatusRejected   WithdrawalStatus = "rejected"
	WithdrawalStatusCancelled  WithdrawalStatus = "cancelled"
)

// Terminal reports whether no further transitions are possible.
func (s WithdrawalStatus) Terminal() bool {
	switch s {
	case WithdrawalStatusPaid, WithdrawalStatusRejected, WithdrawalStatusCancelled:
		return true
	default:
		return false
	}
}

// Withdrawal is a consultant's request to realize a set of confirmed
// commissions as an external payout. The referenced commissions carry this
// withdrawal's id in their withdrawal_id column (the lock) for its lifetime,
// unless it exits through rejected or cancelled.
//
// State machine: pending -> approved -> processing -> paid, with exits
// pending -> rejected, pending/approved -> cancelled, and the retry path
// processing -> approved on payout failure. The ledger debit happens exactly
// once, at processing -> paid.
type Withdrawal struct {
	ID               snowflake.ID     `gorm:"primaryKey" json:"id"`
	ConsultantID     snowflake.ID     `gorm:"not null;index" json:"consultant_id"`
	Amount           int64            `gorm:"not null" json:"amount"`
	PaymentMethod    string           `gorm:"type:text;not null" json:"payment_method"`
	PaymentDetails   datatypes.JSON   `gorm:"type:jsonb" json:"payment_details,omitempty"`
	Status           WithdrawalStatus `gorm:"type:text;not null;index" json:"status"`
	Notes            string           `gorm:"type:text" json:"notes,omitempty"`
	RejectionReason  string           `gorm:"type:text" json:"rejection_reason,omitempty"`
	FailureReason    string           `gorm:"type:text" json:"failure_reason,omitempty"`
	PaymentReference string           `gorm:"type:text;index" json:"payment_reference,omitempty"`
	// PayoutIdempotencyKey is set when the row enters processing, before the
	// provider call. Redriving a lost submission reuses it verbatim.
	PayoutIdempotencyKey string        `gorm:"type:text" json:"-"`
	ReviewedBy           *snowflake.ID `json:"reviewed_by,omitempty"`
	CreatedAt            time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt            time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	PaidAt               *time.Time    `json:"paid_at,omitempty"`
}

// TableName sets the database table name.
func (Withdrawal) TableName() string { return "withdrawals" }
