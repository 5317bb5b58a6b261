package service

import (
	"context"
	"strings"
	"time"

	auditdomain "github.com/Abhi-Verma2005/hrm8-backend-sub003/internal/audit/domain"
	commissiondomain "github.com/Abhi-Verma2005/hrm8-backend-sub003/internal/commission/domain"
	obsmetrics "github.com/Abhi-Verma2005/hrm8-backend-sub003/internal/observability/metrics"
	"github.com/Abhi-Verma2005/hrm8-backend-sub003/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	AuditSvc   auditdomain.Service `optional:"true"`
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	auditSvc   auditdomain.Service
	obsMetrics *obsmetrics.Metrics
}

func NewService(p Params) commissiondomain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("commission.service"),
		genID:      p.GenID,
		auditSvc:   p.AuditSvc,
		obsMetrics: p.ObsMetrics,
	}
}

func (s *Service) Accrue(ctx context.Context, req commissiondomain.AccrueRequest) (*commissiondomain.Commission, error) {
	if req.ConsultantID == 0 {
		return nil, commissiondomain.ErrInvalidConsultant
	}
	if req.Amount <= 0 {
		return nil, commissiondomain.ErrInvalidAmount
	}
	if _, ok := commissiondomain.ParseCommissionType(string(req.Type)); !ok {
		return nil, commissiondomain.ErrInvalidType
	}

	now := time.Now().UTC()
	commission := &commissiondomain.Commission{
		ID:           s.genID.Generate(),
		ConsultantID: req.ConsultantID,
		RegionID:     req.RegionID,
		Amount:       req.Amount,
		Type:         req.Type,
		Status:       commissiondomain.CommissionStatusPending,
		Description:  strings.TrimSpace(req.Description),
		JobID:        req.JobID,
		CompanyID:    req.CompanyID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.db.WithContext(ctx).Create(commission).Error; err != nil {
		return nil, err
	}

	if s.obsMetrics != nil {
		s.obsMetrics.RecordCommissionAccrual(string(req.Type))
	}
	s.audit(ctx, "commission.accrue", commission.ID.String(), map[string]any{
		"consultant_id": req.ConsultantID.String(),
		"amount":        req.Amount,
		"type":          string(req.Type),
	})
	return commission, nil
}

func (s *Service) Confirm(ctx context.Context, id snowflake.ID) error {
	now := time.Now().UTC()
	result := s.db.WithContext(ctx).Exec(
		`UPDATE commissions SET status = ?, confirmed_at = ?, updated_at = ? WHERE id = ? AND status = ?`,
		commissiondomain.CommissionStatusConfirmed,
		now,
		now,
		id,
		commissiondomain.CommissionStatusPending,
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return s.diagnose(ctx, id, commissiondomain.CommissionStatusPending)
	}

	s.audit(ctx, "commission.confirm", id.String(), nil)
	return nil
}

func (s *Service) Cancel(ctx context.Context, id snowflake.ID) error {
	result := s.db.WithContext(ctx).Exec(
		`UPDATE commissions SET status = ?, updated_at = ?
		 WHERE id = ? AND status IN (?, ?) AND withdrawal_id IS NULL`,
		commissiondomain.CommissionStatusCancelled,
		time.Now().UTC(),
		id,
		commissiondomain.CommissionStatusPending,
		commissiondomain.CommissionStatusConfirmed,
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		commission, err := s.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if commission.WithdrawalID != nil {
			return commissiondomain.ErrLocked
		}
		return commissiondomain.ErrInvalidState
	}

	s.audit(ctx, "commission.cancel", id.String(), nil)
	return nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (*commissiondomain.Commission, error) {
	var commission commissiondomain.Commission
	err := s.db.WithContext(ctx).Raw(
		`SELECT * FROM commissions WHERE id = ?`, id,
	).Scan(&commission).Error
	if err != nil {
		return nil, err
	}
	if commission.ID == 0 {
		return nil, commissiondomain.ErrNotFound
	}
	return &commission, nil
}

func (s *Service) List(ctx context.Context, req commissiondomain.ListCommissionRequest) (commissiondomain.ListCommissionResponse, error) {
	stmt := s.db.WithContext(ctx).Model(&commissiondomain.Commission{})

	filter := req.Filter
	if filter.ConsultantID != 0 {
		stmt = stmt.Where("consultant_id = ?", filter.ConsultantID)
	}
	if filter.RegionID != 0 {
		stmt = stmt.Where("region_id = ?", filter.RegionID)
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.Type != "" {
		stmt = stmt.Where("type = ?", filter.Type)
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
			return commissiondomain.ListCommissionResponse{}, err
		}
		cursorAt, err := cursor.Time()
		if err != nil {
			return commissiondomain.ListCommissionResponse{}, err
		}
		cursorID, err := cursor.IDInt64()
		if err != nil {
			return commissiondomain.ListCommissionResponse{}, err
		}
		stmt = stmt.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursorAt, cursorAt, cursorID)
	}

	limit := req.Page.Limit()
	var commissions []*commissiondomain.Commission
	if err := stmt.Order("created_at desc, id desc").Limit(limit + 1).Find(&commissions).Error; err != nil {
		return commissiondomain.ListCommissionResponse{}, err
	}

	commissions, pageInfo := pagination.BuildCursorPageInfo(commissions, limit, func(c *commissiondomain.Commission) pagination.Cursor {
		return pagination.Cursor{
			ID:        c.ID.String(),
			CreatedAt: c.CreatedAt.UTC().Format(time.RFC3339Nano),
		}
	})

	return commissiondomain.ListCommissionResponse{
		PageInfo:    pageInfo,
		Commissions: commissions,
	}, nil
}

func (s *Service) ConfirmMatured(ctx context.Context, before time.Time) (int64, error) {
	now := time.Now().UTC()
	result := s.db.WithContext(ctx).Exec(
		`UPDATE commissions SET status = ?, confirmed_at = ?, updated_at = ?
		 WHERE status = ? AND created_at < ?`,
		commissiondomain.CommissionStatusConfirmed,
		now,
		now,
		commissiondomain.CommissionStatusPending,
		before.UTC(),
	)
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected > 0 {
		s.log.Info("confirmed matured commissions", zap.Int64("count", result.RowsAffected))
	}
	return result.RowsAffected, nil
}

func (s *Service) diagnose(ctx context.Context, id snowflake.ID, want commissiondomain.CommissionStatus) error {
	commission, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if commission.Status != want {
		return commissiondomain.ErrInvalidState
	}
	return commissiondomain.ErrNotFound
}

func (s *Service) audit(ctx context.Context, action, targetID string, metadata map[string]any) {
	if s.auditSvc == nil {
		return
	}
	if err := s.auditSvc.AuditLog(ctx, action, "commission", &targetID, metadata); err != nil {
		s.log.Warn("failed to write commission audit log", zap.Error(err))
	}
}
