package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type CommissionType string

const (
	CommissionTypePlacement          CommissionType = "placement"
	CommissionTypeSubscriptionSale   CommissionType = "subscription_sale"
	CommissionTypeRecruitmentService CommissionType = "recruitment_service"
	CommissionTypeCustom             CommissionType = "custom"
)

type CommissionStatus string

const (
	CommissionStatusPending   CommissionStatus = "pending"
	CommissionStatusConfirmed CommissionStatus = "confirmed"
	CommissionStatusPaid      CommissionStatus = "paid"
	CommissionStatusCancelled CommissionStatus = "cancelled"
)

// Commission is a claim on a future payout. It never touches the ledger
// directly; the ledger is debited only when the withdrawal realizing it is
// paid. A non-nil WithdrawalID locks the commission to that withdrawal.
type Commission struct {
	ID           snowflake.ID     `gorm:"primaryKey" json:"id"`
	ConsultantID snowflake.ID     `gorm:"not null;index" json:"consultant_id"`
	RegionID     snowflake.ID     `gorm:"not null;index" json:"region_id"`
	Amount       int64            `gorm:"not null" json:"amount"`
	Type         CommissionType   `gorm:"type:text;not null" json:"type"`
	Status       CommissionStatus `gorm:"type:text;not null;index" json:"status"`
	Description  string           `gorm:"type:text" json:"description"`
	JobID        *snowflake.ID    `gorm:"index" json:"job_id,omitempty"`
	CompanyID    *snowflake.ID    `gorm:"index" json:"company_id,omitempty"`
	WithdrawalID *snowflake.ID    `gorm:"index" json:"withdrawal_id,omitempty"`
	CreatedAt    time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	ConfirmedAt  *time.Time       `json:"confirmed_at,omitempty"`
	PaidAt       *time.Time       `json:"paid_at,omitempty"`
}

// TableName sets the database table name.
func (Commission) TableName() string { return "commissions" }

func ParseCommissionType(raw string) (CommissionType, bool) {
	switch CommissionType(raw) {
	case CommissionTypePlacement, CommissionTypeSubscriptionSale, CommissionTypeRecruitmentService, CommissionTypeCustom:
		return CommissionType(raw), true
	default:
		return "", false
	}
}
