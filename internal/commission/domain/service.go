package domain

import (
	"context"
	"errors"
	"time"

	"github.com/Abhi-Verma2005/hrm8-backend-sub003/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
)

var (
	ErrInvalidAmount     = errors.New("invalid_amount")
	ErrInvalidConsultant = errors.New("invalid_consultant")
	ErrInvalidType       = errors.New("invalid_commission_type")
	ErrNotFound          = errors.New("commission_not_found")
	ErrInvalidState      = errors.New("invalid_state")
	ErrLocked            = errors.New("commission_locked")
)

type AccrueRequest struct {
	ConsultantID snowflake.ID
	RegionID     snowflake.ID
	Amount       int64
	Type         CommissionType
	Description  string
	JobID        *snowflake.ID
	CompanyID    *snowflake.ID
}

type ListCommissionFilter struct {
	ConsultantID snowflake.ID
	RegionID     snowflake.ID
	Status       CommissionStatus
	Type         CommissionType
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
}

type ListCommissionRequest struct {
	Filter ListCommissionFilter
	Page   pagination.Pagination
}

type ListCommissionResponse struct {
	pagination.PageInfo
	Commissions []*Commission `json:"commissions"`
}

type Service interface {
	// Accrue creates a PENDING commission. No ledger effect: a commission is
	// a claim, not cash.
	Accrue(ctx context.Context, req AccrueRequest) (*Commission, error)
	Confirm(ctx context.Context, id snowflake.ID) error
	// Cancel is allowed while pending or confirmed and not locked by an
	// active withdrawal.
	Cancel(ctx context.Context, id snowflake.ID) error
	GetByID(ctx context.Context, id snowflake.ID) (*Commission, error)
	List(ctx context.Context, req ListCommissionRequest) (ListCommissionResponse, error)
	// ConfirmMatured confirms pending commissions created before the cutoff.
	// Run periodically by the scheduler; returns how many were confirmed.
	ConfirmMatured(ctx context.Context, before time.Time) (int64, error)
}
