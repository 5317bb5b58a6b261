package server

import (
	"net/http"
	"strings"

	"github.com/Abhi-Verma2005/hrm8-backend-sub003/internal/actorctx"
	walletdomain "github.com/Abhi-Verma2005/hrm8-backend-sub003/internal/wallet/domain"
	"github.com/Abhi-Verma2005/hrm8-backend-sub003/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

// ownerFromPath resolves the wallet owner addressed by the route and checks
// that the calling actor is allowed to touch it. Admin and system actors can
// address any wallet; everyone else only their own.
func (s *Server) ownerFromPath(c *gin.Context) (walletdomain.OwnerType, snowflake.ID, bool) {
	ownerType, ok := walletdomain.ParseOwnerType(strings.TrimSpace(c.Param("owner_type")))
	if !ok {
		AbortWithError(c, walletdomain.ErrInvalidOwnerType)
		return "", 0, false
	}

	ownerID, err := parseSnowflakeID(c.Param("owner_id"))
	if err != nil {
		AbortWithError(c, walletdomain.ErrInvalidOwnerID)
		return "", 0, false
	}

	actor, _ := actorctx.FromContext(c.Request.Context())
	if actor.IsAdmin() || actor.Type == actorctx.ActorTypeSystem {
		return ownerType, ownerID, true
	}
	if string(actor.Type) != string(ownerType) || actor.ID != ownerID {
		AbortWithError(c, ErrForbidden)
		return "", 0, false
	}
	return ownerType, ownerID, true
}

func (s *Server) GetBalance(c *gin.Context) {
	ownerType, ownerID, ok := s.ownerFromPath(c)
	if !ok {
		return
	}

	resp, err := s.walletSvc.GetBalance(c.Request.Context(), ownerType, ownerID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListTransactions(c *gin.Context) {
	ownerType, ownerID, ok := s.ownerFromPath(c)
	if !ok {
		return
	}

	var query struct {
		pagination.Pagination
		Type        string `form:"type"`
		Direction   string `form:"direction"`
		Status      string `form:"status"`
		CreatedFrom string `form:"created_from"`
		CreatedTo   string `form:"created_to"`
		AmountMin   string `form:"amount_min"`
		AmountMax   string `form:"amount_max"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
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
	amountMin, err := parseOptionalInt64(query.AmountMin)
	if err != nil {
		AbortWithError(c, newValidationError("amount_min", "invalid_amount_min", "invalid amount_min"))
		return
	}
	amountMax, err := parseOptionalInt64(query.AmountMax)
	if err != nil {
		AbortWithError(c, newValidationError("amount_max", "invalid_amount_max", "invalid amount_max"))
		return
	}

	account, err := s.walletSvc.GetOrCreateAccount(c.Request.Context(), ownerType, ownerID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.walletSvc.ListTransactions(c.Request.Context(), walletdomain.ListTransactionsRequest{
		AccountID: account.ID,
		Filter: walletdomain.ListTransactionsFilter{
			Type:        walletdomain.TransactionType(strings.TrimSpace(query.Type)),
			Direction:   walletdomain.TransactionDirection(strings.TrimSpace(query.Direction)),
			Status:      walletdomain.TransactionStatus(strings.TrimSpace(query.Status)),
			CreatedFrom: createdFrom,
			CreatedTo:   createdTo,
			AmountMin:   amountMin,
			AmountMax:   amountMax,
		},
		Page: query.Pagination,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) VerifyIntegrity(c *gin.Context) {
	ownerType, ownerID, ok := s.ownerFromPath(c)
	if !ok {
		return
	}

	account, err := s.walletSvc.GetOrCreateAccount(c.Request.Context(), ownerType, ownerID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	report, err := s.walletSvc.VerifyIntegrity(c.Request.Context(), account.ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": report})
}

type adjustRequest struct {
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
}

func (s *Server) AdminAdjust(c *gin.Context) {
	ownerType, ownerID, ok := s.ownerFromPath(c)
	if !ok {
		return
	}

	var req adjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	actor, _ := actorctx.FromContext(c.Request.Context())
	tx, err := s.walletSvc.AdminAdjust(c.Request.Context(), walletdomain.AdjustRequest{
		OwnerType:   ownerType,
		OwnerID:     ownerID,
		Amount:      req.Amount,
		Description: strings.TrimSpace(req.Description),
		CreatedBy:   actor.ID.String(),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": tx})
}

type accountStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) SetAccountStatus(c *gin.Context) {
	ownerType, ownerID, ok := s.ownerFromPath(c)
	if !ok {
		return
	}

	var req accountStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	account, err := s.walletSvc.GetOrCreateAccount(c.Request.Context(), ownerType, ownerID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	actor, _ := actorctx.FromContext(c.Request.Context())
	status := walletdomain.AccountStatus(strings.TrimSpace(req.Status))
	if err := s.walletSvc.SetAccountStatus(c.Request.Context(), account.ID, status, actor.ID.String()); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type transferRequest struct {
	FromOwnerType string `json:"from_owner_type"`
	FromOwnerID   string `json:"from_owner_id"`
	ToOwnerType   string `json:"to_owner_type"`
	ToOwnerID     string `json:"to_owner_id"`
	Amount        int64  `json:"amount"`
	Description   string `json:"description"`
}

func (s *Server) Transfer(c *gin.Context) {
	var req transferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	fromType, fromOK := walletdomain.ParseOwnerType(strings.TrimSpace(req.FromOwnerType))
	toType, toOK := walletdomain.ParseOwnerType(strings.TrimSpace(req.ToOwnerType))
	if !fromOK || !toOK {
		AbortWithError(c, walletdomain.ErrInvalidOwnerType)
		return
	}
	fromID, err := parseSnowflakeID(req.FromOwnerID)
	if err != nil {
		AbortWithError(c, walletdomain.ErrInvalidOwnerID)
		return
	}
	toID, err := parseSnowflakeID(req.ToOwnerID)
	if err != nil {
		AbortWithError(c, walletdomain.ErrInvalidOwnerID)
		return
	}

	ctx := c.Request.Context()
	from, err := s.walletSvc.GetOrCreateAccount(ctx, fromType, fromID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	to, err := s.walletSvc.GetOrCreateAccount(ctx, toType, toID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	actor, _ := actorctx.FromContext(ctx)
	result, err := s.walletSvc.Transfer(ctx, walletdomain.TransferRequest{
		FromAccountID: from.ID,
		ToAccountID:   to.ID,
		Amount:        req.Amount,
		Type:          walletdomain.TransactionTypeTransferOut,
		Description:   strings.TrimSpace(req.Description),
		CreatedBy:     actor.ID.String(),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

func (s *Server) ReverseTransaction(c *gin.Context) {
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	actor, _ := actorctx.FromContext(c.Request.Context())
	reversal, err := s.walletSvc.Reverse(c.Request.Context(), id, actor.ID.String())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": reversal})
}
