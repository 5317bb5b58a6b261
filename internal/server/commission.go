package server

import (
	"net/http"
	"strings"

	"github.com/Abhi-Verma2005/hrm8-backend-sub003/internal/actorctx"
	commissiondomain "github.com/Abhi-Verma2005/hrm8-backend-sub003/internal/commission/domain"
	"github.com/Abhi-Verma2005/hrm8-backend-sub003/pkg/db/pagination"
	"github.com/gin-gonic/gin"
)

type accrueCommissionRequest struct {
	ConsultantID string `json:"consultant_id"`
	RegionID     string `json:"region_id"`
	Amount       int64  `json:"amount"`
	Type         string `json:"type"`
	Description  string `json:"description"`
	JobID        string `json:"job_id"`
	CompanyID    string `json:"company_id"`
}

func (s *Server) AccrueCommission(c *gin.Context) {
	var req accrueCommissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	consultantID, err := parseSnowflakeID(req.ConsultantID)
	if err != nil {
		AbortWithError(c, commissiondomain.ErrInvalidConsultant)
		return
	}
	regionID, err := parseSnowflakeID(req.RegionID)
	if err != nil {
		AbortWithError(c, newValidationError("region_id", "invalid_region_id", "invalid region_id"))
		return
	}
	commissionType, ok := commissiondomain.ParseCommissionType(strings.TrimSpace(req.Type))
	if !ok {
		AbortWithError(c, commissiondomain.ErrInvalidType)
		return
	}
	jobID, err := parseOptionalSnowflakeID(req.JobID)
	if err != nil {
		AbortWithError(c, newValidationError("job_id", "invalid_job_id", "invalid job_id"))
		return
	}
	companyID, err := parseOptionalSnowflakeID(req.CompanyID)
	if err != nil {
		AbortWithError(c, newValidationError("company_id", "invalid_company_id", "invalid company_id"))
		return
	}

	commission, err := s.commissionSvc.Accrue(c.Request.Context(), commissiondomain.AccrueRequest{
		ConsultantID: consultantID,
		RegionID:     regionID,
		Amount:       req.Amount,
		Type:         commissionType,
		Description:  strings.TrimSpace(req.Description),
		JobID:        jobID,
		CompanyID:    companyID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": commission})
}

func (s *Server) ConfirmCommission(c *gin.Context) {
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.commissionSvc.Confirm(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) CancelCommission(c *gin.Context) {
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.commissionSvc.Cancel(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) GetCommissionByID(c *gin.Context) {
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	commission, err := s.commissionSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	actor, _ := actorctx.FromContext(c.Request.Context())
	if actor.IsConsultant() && commission.ConsultantID != actor.ID {
		AbortWithError(c, ErrForbidden)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": commission})
}

func (s *Server) ListCommissions(c *gin.Context) {
	var query struct {
		pagination.Pagination
		ConsultantID string `form:"consultant_id"`
		RegionID     string `form:"region_id"`
		Status       string `form:"status"`
		Type         string `form:"type"`
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
	regionID, err := parseOptionalSnowflakeID(query.RegionID)
	if err != nil {
		AbortWithError(c, newValidationError("region_id", "invalid_region_id", "invalid region_id"))
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

	filter := commissiondomain.ListCommissionFilter{
		Status:      commissiondomain.CommissionStatus(strings.TrimSpace(query.Status)),
		Type:        commissiondomain.CommissionType(strings.TrimSpace(query.Type)),
		CreatedFrom: createdFrom,
		CreatedTo:   createdTo,
	}
	if consultantID != nil {
		filter.ConsultantID = *consultantID
	}
	if regionID != nil {
		filter.RegionID = *regionID
	}

	// Consultants only ever see their own commissions.
	actor, _ := actorctx.FromContext(c.Request.Context())
	if actor.IsConsultant() {
		filter.ConsultantID = actor.ID
	}

	resp, err := s.commissionSvc.List(c.Request.Context(), commissiondomain.ListCommissionRequest{
		Filter: filter,
		Page:   query.Pagination,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
