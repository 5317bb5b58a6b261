package service

import (
	"context"
	"strings"
	"time"

	"github.com/Abhi-Verma2005/hrm8-backend-sub003/internal/actorctx"
	auditdomain "github.com/Abhi-Verma2005/hrm8-backend-sub003/internal/audit/domain"
	"github.com/Abhi-Verma2005/hrm8-backend-sub003/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
}

func NewService(p Params) auditdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("audit.service"),
		genID: p.GenID,
	}
}

func (s *Service) AuditLog(ctx context.Context, action string, targetType string, targetID *string, metadata map[string]any) error {
	action = strings.TrimSpace(action)
	if action == "" {
		return auditdomain.ErrInvalidAction
	}

	actorType := string(actorctx.ActorTypeSystem)
	actorID := ""
	if actor, ok := actorctx.FromContext(ctx); ok {
		actorType = string(actor.Type)
		actorID = actor.ID.String()
	}

	record := auditdomain.AuditLog{
		ID:         s.genID.Generate(),
		ActorType:  actorType,
		ActorID:    actorID,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Metadata:   datatypes.JSONMap(metadata),
		CreatedAt:  time.Now().UTC(),
	}
	return s.db.WithContext(ctx).Create(&record).Error
}

func (s *Service) List(ctx context.Context, req auditdomain.ListAuditLogRequest) (auditdomain.ListAuditLogResponse, error) {
	stmt := s.db.WithContext(ctx).Model(&auditdomain.AuditLog{})

	if req.Action != "" {
		stmt = stmt.Where("action = ?", req.Action)
	}
	if req.TargetType != "" {
		stmt = stmt.Where("target_type = ?", req.TargetType)
	}
	if req.TargetID != "" {
		stmt = stmt.Where("target_id = ?", req.TargetID)
	}
	if req.ActorType != "" {
		stmt = stmt.Where("actor_type = ?", req.ActorType)
	}
	if req.StartAt != nil {
		stmt = stmt.Where("created_at >= ?", *req.StartAt)
	}
	if req.EndAt != nil {
		stmt = stmt.Where("created_at <= ?", *req.EndAt)
	}

	if req.PageToken != "" {
		cursor, err := pagination.DecodeCursor(req.PageToken)
		if err != nil {
			return auditdomain.ListAuditLogResponse{}, auditdomain.ErrInvalidPageToken
		}
		cursorAt, err := cursor.Time()
		if err != nil {
			return auditdomain.ListAuditLogResponse{}, auditdomain.ErrInvalidPageToken
		}
		cursorID, err := cursor.IDInt64()
		if err != nil {
			return auditdomain.ListAuditLogResponse{}, auditdomain.ErrInvalidPageToken
		}
		stmt = stmt.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursorAt, cursorAt, cursorID)
	}

	limit := req.Limit()
	var logs []*auditdomain.AuditLog
	if err := stmt.Order("created_at desc, id desc").Limit(limit + 1).Find(&logs).Error; err != nil {
		return auditdomain.ListAuditLogResponse{}, err
	}

	logs, pageInfo := pagination.BuildCursorPageInfo(logs, limit, func(l *auditdomain.AuditLog) pagination.Cursor {
		return pagination.Cursor{
			ID:        l.ID.String(),
			CreatedAt: l.CreatedAt.UTC().Format(time.RFC3339Nano),
		}
	})

	return auditdomain.ListAuditLogResponse{
		PageInfo:  pageInfo,
		AuditLogs: logs,
	}, nil
}
