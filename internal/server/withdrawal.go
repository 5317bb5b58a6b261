package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Abhi-Verma2005/hrm8-backend-sub003/internal/actorctx"
	"github.com/Abhi-Verma2005/hrm8-backend-sub003/internal/payout"
	withdrawaldomain "github.com/Abhi-Verma2005/hrm8-backend-sub003/internal/withdrawal/domain"
	"github.com/Abhi-Verma2005/hrm8-backend-sub003/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
)

type createWithdrawalRequest struct {
	Amount         int64             `json:"amount"`
	PaymentMethod  string            `json:"payment_method"`
	PaymentDetails map[string]string `json:"payment_details"`
	CommissionIDs  []string          `json:"commission_ids"`
	Notes          string            `json:"notes"`
}

func (s *Server) CreateWithdrawal(c *gin.Context) {
	actor, _ := actorctx.FromContext(c.Request.Context())
	if !actor.IsConsultant() {
		AbortWithError(c, ErrForbidden)
		return
	}

	var req createWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	commissionIDs := make([]snowflake.ID, 0, len(req.CommissionIDs))
	for _, raw := range req.CommissionIDs {
		id, err := parseSnowflakeID(raw)
		if err != nil {
			AbortWithError(c, newValidationError("commission_ids", "invalid_commission_id", "invalid commission id"))
			return
		}
		commissionIDs = append(commissionIDs, id)
	}

	details, err := marshalDetails(req.PaymentDetails)
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	withdrawal, err := s.withdrawalSvc.Create(c.Request.Context(), withdrawaldomain.CreateRequest{
		ConsultantID:   actor.ID,
		Amount:         req.Amount,
		PaymentMethod:  req.PaymentMethod,
		PaymentDetails: details,
		CommissionIDs:  commissionIDs,
		Notes:          req.Notes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": withdrawal})
}

func (s *Server) GetWithdrawalByID(c *gin.Context) {
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	detail, err := s.withdrawalSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	actor, _ := actorctx.FromContext(c.Request.Context())
	if actor.IsConsultant() && detail.Withdrawal.ConsultantID != actor.ID {
		AbortWithError(c, ErrForbidden)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": detail})
}

func (s *Server) ListWithdrawals(c *gin.Context) {
	var query struct {
		pagination.Pagination
		ConsultantID string `form:"consultant_id"`
		Status       string `form:"status"`
		CreatedFrom  string `form:"created_from"`
		CreatedTo    string `form:"created_to"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	consultantID, err := parseOptionalSnowflakeID(query.ConsultantID)
	if err != nil {
		AbortWithError(c, newValidationError("consultant_id", "invalid_consultant_id", "invalid consultant_id"))
		return
	}
	createdFrom, err := parseOptionalTime(query.CreatedFrom, false)
	if err != nil {
		AbortWithError(c, newValidationError("created_from", "invalid_created_from", "invalid created_from"))
		return
	}
	createdTo, err := parseOptionalTime(query.CreatedTo, true)
	if err != nil {
		AbortWithError(c, newValidationError("created_to", "invalid_created_to", "invalid created_to"))
		return
	}

	filter := withdrawaldomain.ListWithdrawalFilter{
		Status:      withdrawaldomain.WithdrawalStatus(strings.TrimSpace(query.Status)),
		CreatedFrom: createdFrom,
		CreatedTo:   createdTo,
	}
	if consultantID != nil {
		filter.ConsultantID = *consultantID
	}

	actor, _ := actorctx.FromContext(c.Request.Context())
	if actor.IsConsultant() {
		filter.ConsultantID = actor.ID
	}

	resp, err := s.withdrawalSvc.List(c.Request.Context(), withdrawaldomain.ListWithdrawalRequest{
		Filter: filter,
		Page:   query.Pagination,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ApproveWithdrawal(c *gin.Context) {
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	actor, _ := actorctx.FromContext(c.Request.Context())
	if err := s.withdrawalSvc.Approve(c.Request.Context(), id, actor.ID); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type rejectWithdrawalRequest struct {
	Reason string `json:"reason"`
}

func (s *Server) RejectWithdrawal(c *gin.Context) {
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var req rejectWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	actor, _ := actorctx.FromContext(c.Request.Context())
	if err := s.withdrawalSvc.Reject(c.Request.Context(), id, actor.ID, req.Reason); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) CancelWithdrawal(c *gin.Context) {
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	actor, _ := actorctx.FromContext(c.Request.Context())
	if !actor.IsConsultant() {
		AbortWithError(c, ErrForbidden)
		return
	}

	if err := s.withdrawalSvc.Cancel(c.Request.Context(), id, actor.ID); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) ExecuteWithdrawal(c *gin.Context) {
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	actor, _ := actorctx.FromContext(c.Request.Context())
	withdrawal, err := s.withdrawalSvc.Execute(c.Request.Context(), id, actor.ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": withdrawal})
}

type reconcileWithdrawalRequest struct {
	Reference     string `json:"reference"`
	Outcome       string `json:"outcome"`
	FailureReason string `json:"failure_reason"`
}

// ReconcileWithdrawal lets an operator report the result of a payout settled
// out of band (the manual rail). Same idempotent path the webhooks use.
func (s *Server) ReconcileWithdrawal(c *gin.Context) {
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var req reconcileWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	outcome := payout.Outcome(strings.TrimSpace(req.Outcome))
	switch outcome {
	case payout.OutcomeSucceeded, payout.OutcomeFailed, payout.OutcomePending:
	default:
		AbortWithError(c, newValidationError("outcome", "invalid_outcome", "invalid outcome"))
		return
	}

	err = s.withdrawalSvc.HandlePayoutResult(c.Request.Context(), withdrawaldomain.PayoutResultRequest{
		WithdrawalID:  id,
		Reference:     req.Reference,
		Outcome:       outcome,
		FailureReason: req.FailureReason,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func marshalDetails(details map[string]string) (datatypes.JSON, error) {
	if len(details) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(details)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}
