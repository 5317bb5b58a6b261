package service

import (
	"context"
	"strings"
	"time"

	auditdomain "github.com/Abhi-Verma2005/hrm8-backend-sub003/internal/audit/domain"
	obsmetrics "github.com/Abhi-Verma2005/hrm8-backend-sub003/internal/observability/metrics"
	walletdomain "github.com/Abhi-Verma2005/hrm8-backend-sub003/internal/wallet/domain"
	"github.com/Abhi-Verma2005/hrm8-backend-sub003/pkg/db"
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

func NewService(p Params) walletdomain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("wallet.service"),
		genID:      p.GenID,
		auditSvc:   p.AuditSvc,
		obsMetrics: p.ObsMetrics,
	}
}

func (s *Service) GetOrCreateAccount(ctx context.Context, ownerType walletdomain.OwnerType, ownerID snowflake.ID) (*walletdomain.LedgerAccount, error) {
	return s.GetOrCreateAccountTx(ctx, s.db, ownerType, ownerID)
}

// GetOrCreateAccountTx inserts the account row at most once even under
// concurrent first access: the unique index on (owner_type, owner_id) plus
// ON CONFLICT DO NOTHING collapses the race, and the follow-up fetch returns
// whichever row won.
func (s *Service) GetOrCreateAccountTx(ctx context.Context, tx *gorm.DB, ownerType walletdomain.OwnerType, ownerID snowflake.ID) (*walletdomain.LedgerAccount, error) {
	if _, ok := walletdomain.ParseOwnerType(string(ownerType)); !ok {
		return nil, walletdomain.ErrInvalidOwnerType
	}
	if ownerID == 0 {
		return nil, walletdomain.ErrInvalidOwnerID
	}

	now := time.Now().UTC()
	result := tx.WithContext(ctx).Exec(
		`INSERT INTO ledger_accounts (id, owner_type, owner_id, balance, total_credits, total_debits, status, created_at, updated_at)
		 VALUES (?, ?, ?, 0, 0, 0, ?, ?, ?)
		 ON CONFLICT (owner_type, owner_id) DO NOTHING`,
		s.genID.Generate(),
		ownerType,
		ownerID,
		walletdomain.AccountStatusActive,
		now,
		now,
	)
	if result.Error != nil && !db.IsDuplicateKeyErr(result.Error) {
		return nil, result.Error
	}

	var account walletdomain.LedgerAccount
	err := tx.WithContext(ctx).Raw(
		`SELECT * FROM ledger_accounts WHERE owner_type = ? AND owner_id = ?`,
		ownerType,
		ownerID,
	).Scan(&account).Error
	if err != nil {
		return nil, err
	}
	if account.ID == 0 {
		return nil, walletdomain.ErrAccountNotFound
	}
	return &account, nil
}

func (s *Service) GetBalance(ctx context.Context, ownerType walletdomain.OwnerType, ownerID snowflake.ID) (walletdomain.BalanceResponse, error) {
	account, err := s.GetOrCreateAccount(ctx, ownerType, ownerID)
	if err != nil {
		return walletdomain.BalanceResponse{}, err
	}
	return walletdomain.BalanceResponse{
		AccountID:    account.ID,
		OwnerType:    account.OwnerType,
		OwnerID:      account.OwnerID,
		Balance:      account.Balance,
		TotalCredits: account.TotalCredits,
		TotalDebits:  account.TotalDebits,
		Status:       account.Status,
	}, nil
}

func (s *Service) Credit(ctx context.Context, req walletdomain.CreditRequest) (*walletdomain.LedgerTransaction, error) {
	var txn *walletdomain.LedgerTransaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		txn, err = s.CreditTx(ctx, tx, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// CreditTx increments the balance and appends the completed credit row as one
// atomic unit. The balance mutation is a single conditional UPDATE; the new
// value is never computed in application code.
func (s *Service) CreditTx(ctx context.Context, tx *gorm.DB, req walletdomain.CreditRequest) (*walletdomain.LedgerTransaction, error) {
	if req.Amount <= 0 {
		return nil, walletdomain.ErrInvalidAmount
	}

	result := tx.WithContext(ctx).Exec(
		`UPDATE ledger_accounts
		 SET balance = balance + ?, total_credits = total_credits + ?, updated_at = ?
		 WHERE id = ? AND status = ?`,
		req.Amount,
		req.Amount,
		time.Now().UTC(),
		req.AccountID,
		walletdomain.AccountStatusActive,
	)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, s.diagnoseAccount(ctx, tx, req.AccountID, false)
	}

	txn := s.buildTransaction(req.AccountID, req.Amount, walletdomain.TransactionDirectionCredit, req.Type, req.Description, req.RelatedEntityID, nil, req.CreatedBy)
	if err := s.insertTransaction(ctx, tx, txn); err != nil {
		return nil, err
	}
	s.recordTransaction(txn)
	return txn, nil
}

func (s *Service) Debit(ctx context.Context, req walletdomain.DebitRequest) (*walletdomain.LedgerTransaction, error) {
	var txn *walletdomain.LedgerTransaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		txn, err = s.DebitTx(ctx, tx, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// DebitTx decrements the balance with the overdraft guard folded into the
// UPDATE's WHERE clause, so a concurrent debit can never push the balance
// below zero between a read and a write.
func (s *Service) DebitTx(ctx context.Context, tx *gorm.DB, req walletdomain.DebitRequest) (*walletdomain.LedgerTransaction, error) {
	if req.Amount <= 0 {
		return nil, walletdomain.ErrInvalidAmount
	}

	result := tx.WithContext(ctx).Exec(
		`UPDATE ledger_accounts
		 SET balance = balance - ?, total_debits = total_debits + ?, updated_at = ?
		 WHERE id = ? AND status = ? AND (? OR balance >= ?)`,
		req.Amount,
		req.Amount,
		time.Now().UTC(),
		req.AccountID,
		walletdomain.AccountStatusActive,
		req.AllowNegative,
		req.Amount,
	)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, s.diagnoseAccount(ctx, tx, req.AccountID, true)
	}

	txn := s.buildTransaction(req.AccountID, req.Amount, walletdomain.TransactionDirectionDebit, req.Type, req.Description, req.RelatedEntityID, nil, req.CreatedBy)
	if err := s.insertTransaction(ctx, tx, txn); err != nil {
		return nil, err
	}
	s.recordTransaction(txn)
	return txn, nil
}

// Transfer composes a debit on the source and a credit on the destination.
// Both land or neither does.
func (s *Service) Transfer(ctx context.Context, req walletdomain.TransferRequest) (*walletdomain.TransferResult, error) {
	if req.Amount <= 0 {
		return nil, walletdomain.ErrInvalidAmount
	}
	if req.FromAccountID == req.ToAccountID {
		return nil, walletdomain.ErrSameAccount
	}

	var out walletdomain.TransferResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		debit, err := s.DebitTx(ctx, tx, walletdomain.DebitRequest{
			AccountID:   req.FromAccountID,
			Amount:      req.Amount,
			Type:        walletdomain.TransactionTypeTransferOut,
			Description: req.Description,
			CreatedBy:   req.CreatedBy,
		})
		if err != nil {
			return err
		}
		credit, err := s.CreditTx(ctx, tx, walletdomain.CreditRequest{
			AccountID:       req.ToAccountID,
			Amount:          req.Amount,
			Type:            walletdomain.TransactionTypeTransferIn,
			Description:     req.Description,
			RelatedEntityID: &debit.ID,
			CreatedBy:       req.CreatedBy,
		})
		if err != nil {
			return err
		}
		out = walletdomain.TransferResult{Debit: debit, Credit: credit}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.audit(ctx, "wallet.transfer", "ledger_account", req.FromAccountID.String(), map[string]any{
		"to_account_id": req.ToAccountID.String(),
		"amount":        req.Amount,
	})
	return &out, nil
}

// Reverse appends a compensating transaction for a completed one and marks
// the original reversed. History is never edited in place.
func (s *Service) Reverse(ctx context.Context, transactionID snowflake.ID, createdBy string) (*walletdomain.LedgerTransaction, error) {
	var reversal *walletdomain.LedgerTransaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var original walletdomain.LedgerTransaction
		if err := tx.WithContext(ctx).Raw(
			`SELECT * FROM ledger_transactions WHERE id = ?`, transactionID,
		).Scan(&original).Error; err != nil {
			return err
		}
		if original.ID == 0 {
			return walletdomain.ErrTransactionNotFound
		}

		result := tx.WithContext(ctx).Exec(
			`UPDATE ledger_transactions SET status = ? WHERE id = ? AND status = ?`,
			walletdomain.TransactionStatusReversed,
			transactionID,
			walletdomain.TransactionStatusCompleted,
		)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return walletdomain.ErrNotReversible
		}

		description := "reversal of " + original.ID.String()
		if strings.TrimSpace(original.Description) != "" {
			description += ": " + original.Description
		}

		switch original.Direction {
		case walletdomain.TransactionDirectionCredit:
			var err error
			reversal, err = s.DebitTx(ctx, tx, walletdomain.DebitRequest{
				AccountID:     original.AccountID,
				Amount:        original.Amount,
				Type:          original.Type,
				Description:   description,
				CreatedBy:     createdBy,
				AllowNegative: true,
			})
			if err != nil {
				return err
			}
		default:
			var err error
			reversal, err = s.CreditTx(ctx, tx, walletdomain.CreditRequest{
				AccountID:   original.AccountID,
				Amount:      original.Amount,
				Type:        original.Type,
				Description: description,
				CreatedBy:   createdBy,
			})
			if err != nil {
				return err
			}
		}

		return tx.WithContext(ctx).Exec(
			`UPDATE ledger_transactions SET reversal_of = ? WHERE id = ?`,
			original.ID,
			reversal.ID,
		).Error
	})
	if err != nil {
		return nil, err
	}
	reversal.ReversalOf = &transactionID
	s.audit(ctx, "wallet.reverse", "ledger_transaction", transactionID.String(), map[string]any{
		"reversal_id": reversal.ID.String(),
	})
	return reversal, nil
}

func (s *Service) AdminAdjust(ctx context.Context, req walletdomain.AdjustRequest) (*walletdomain.LedgerTransaction, error) {
	if req.Amount == 0 {
		return nil, walletdomain.ErrInvalidAmount
	}

	account, err := s.GetOrCreateAccount(ctx, req.OwnerType, req.OwnerID)
	if err != nil {
		return nil, err
	}

	var txn *walletdomain.LedgerTransaction
	if req.Amount > 0 {
		txn, err = s.Credit(ctx, walletdomain.CreditRequest{
			AccountID:   account.ID,
			Amount:      req.Amount,
			Type:        walletdomain.TransactionTypeAdminAdjustment,
			Description: req.Description,
			CreatedBy:   req.CreatedBy,
		})
	} else {
		txn, err = s.Debit(ctx, walletdomain.DebitRequest{
			AccountID:     account.ID,
			Amount:        -req.Amount,
			Type:          walletdomain.TransactionTypeAdminAdjustment,
			Description:   req.Description,
			CreatedBy:     req.CreatedBy,
			AllowNegative: true,
		})
	}
	if err != nil {
		return nil, err
	}
	s.audit(ctx, "wallet.admin_adjust", "ledger_account", account.ID.String(), map[string]any{
		"amount":     req.Amount,
		"created_by": req.CreatedBy,
	})
	return txn, nil
}

func (s *Service) SetAccountStatus(ctx context.Context, accountID snowflake.ID, status walletdomain.AccountStatus, updatedBy string) error {
	switch status {
	case walletdomain.AccountStatusActive, walletdomain.AccountStatusFrozen, walletdomain.AccountStatusClosed:
	default:
		return walletdomain.ErrInvalidStatus
	}

	result := s.db.WithContext(ctx).Exec(
		`UPDATE ledger_accounts SET status = ?, updated_at = ? WHERE id = ?`,
		status,
		time.Now().UTC(),
		accountID,
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return walletdomain.ErrAccountNotFound
	}
	s.audit(ctx, "wallet.set_status", "ledger_account", accountID.String(), map[string]any{
		"status":     string(status),
		"updated_by": updatedBy,
	})
	return nil
}

// VerifyIntegrity recomputes the balance from the full transaction history.
// Drift is reported, not repaired: silently fixing the stored balance would
// mask whatever bug produced it.
func (s *Service) VerifyIntegrity(ctx context.Context, accountID snowflake.ID) (walletdomain.IntegrityReport, error) {
	var account walletdomain.LedgerAccount
	if err := s.db.WithContext(ctx).Raw(
		`SELECT * FROM ledger_accounts WHERE id = ?`, accountID,
	).Scan(&account).Error; err != nil {
		return walletdomain.IntegrityReport{}, err
	}
	if account.ID == 0 {
		return walletdomain.IntegrityReport{}, walletdomain.ErrAccountNotFound
	}

	var sums struct {
		Credits int64
		Debits  int64
	}
	// REVERSED rows still moved money; their compensation is a separate
	// COMPLETED row. Both must count or every reversal reads as drift.
	err := s.db.WithContext(ctx).Raw(
		`SELECT
			COALESCE(SUM(CASE WHEN direction = 'credit' THEN amount ELSE 0 END), 0) AS credits,
			COALESCE(SUM(CASE WHEN direction = 'debit' THEN amount ELSE 0 END), 0) AS debits
		 FROM ledger_transactions
		 WHERE account_id = ? AND status IN (?, ?)`,
		accountID,
		walletdomain.TransactionStatusCompleted,
		walletdomain.TransactionStatusReversed,
	).Scan(&sums).Error
	if err != nil {
		return walletdomain.IntegrityReport{}, err
	}

	computed := sums.Credits - sums.Debits
	report := walletdomain.IntegrityReport{
		AccountID:       accountID,
		StoredBalance:   account.Balance,
		ComputedBalance: computed,
		StoredCredits:   account.TotalCredits,
		ComputedCredits: sums.Credits,
		StoredDebits:    account.TotalDebits,
		ComputedDebits:  sums.Debits,
		IsConsistent: account.Balance == computed &&
			account.TotalCredits == sums.Credits &&
			account.TotalDebits == sums.Debits &&
			account.Balance == account.TotalCredits-account.TotalDebits,
	}
	if !report.IsConsistent {
		s.log.Error("ledger balance drift detected",
			zap.String("account_id", accountID.String()),
			zap.Int64("stored_balance", report.StoredBalance),
			zap.Int64("computed_balance", report.ComputedBalance),
		)
	}
	return report, nil
}

func (s *Service) ListTransactions(ctx context.Context, req walletdomain.ListTransactionsRequest) (walletdomain.ListTransactionsResponse, error) {
	if req.AccountID == 0 {
		return walletdomain.ListTransactionsResponse{}, walletdomain.ErrAccountNotFound
	}

	stmt := s.db.WithContext(ctx).
		Model(&walletdomain.LedgerTransaction{}).
		Where("account_id = ?", req.AccountID)

	filter := req.Filter
	if filter.Type != "" {
		stmt = stmt.Where("type = ?", filter.Type)
	}
	if filter.Direction != "" {
		stmt = stmt.Where("direction = ?", filter.Direction)
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.CreatedFrom != nil {
		stmt = stmt.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		stmt = stmt.Where("created_at <= ?", *filter.CreatedTo)
	}
	if filter.AmountMin != nil {
		stmt = stmt.Where("amount >= ?", *filter.AmountMin)
	}
	if filter.AmountMax != nil {
		stmt = stmt.Where("amount <= ?", *filter.AmountMax)
	}

	if req.Page.PageToken != "" {
		cursor, err := pagination.DecodeCursor(req.Page.PageToken)
		if err != nil {
			return walletdomain.ListTransactionsResponse{}, err
		}
		cursorAt, err := cursor.Time()
		if err != nil {
			return walletdomain.ListTransactionsResponse{}, err
		}
		cursorID, err := cursor.IDInt64()
		if err != nil {
			return walletdomain.ListTransactionsResponse{}, err
		}
		stmt = stmt.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursorAt, cursorAt, cursorID)
	}

	limit := req.Page.Limit()
	var transactions []*walletdomain.LedgerTransaction
	if err := stmt.Order("created_at desc, id desc").Limit(limit + 1).Find(&transactions).Error; err != nil {
		return walletdomain.ListTransactionsResponse{}, err
	}

	transactions, pageInfo := pagination.BuildCursorPageInfo(transactions, limit, func(t *walletdomain.LedgerTransaction) pagination.Cursor {
		return pagination.Cursor{
			ID:        t.ID.String(),
			CreatedAt: t.CreatedAt.UTC().Format(time.RFC3339Nano),
		}
	})

	return walletdomain.ListTransactionsResponse{
		PageInfo:     pageInfo,
		Transactions: transactions,
	}, nil
}

func (s *Service) buildTransaction(
	accountID snowflake.ID,
	amount int64,
	direction walletdomain.TransactionDirection,
	txType walletdomain.TransactionType,
	description string,
	relatedEntityID *snowflake.ID,
	reversalOf *snowflake.ID,
	createdBy string,
) *walletdomain.LedgerTransaction {
	return &walletdomain.LedgerTransaction{
		ID:              s.genID.Generate(),
		AccountID:       accountID,
		Amount:          amount,
		Direction:       direction,
		Type:            txType,
		Status:          walletdomain.TransactionStatusCompleted,
		Description:     description,
		RelatedEntityID: relatedEntityID,
		ReversalOf:      reversalOf,
		CreatedBy:       createdBy,
		CreatedAt:       time.Now().UTC(),
	}
}

func (s *Service) insertTransaction(ctx context.Context, tx *gorm.DB, txn *walletdomain.LedgerTransaction) error {
	return tx.WithContext(ctx).Exec(
		`INSERT INTO ledger_transactions (id, account_id, amount, direction, type, status, description, related_entity_id, reversal_of, created_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		txn.ID,
		txn.AccountID,
		txn.Amount,
		txn.Direction,
		txn.Type,
		txn.Status,
		txn.Description,
		txn.RelatedEntityID,
		txn.ReversalOf,
		txn.CreatedBy,
		txn.CreatedAt,
	).Error
}

// diagnoseAccount resolves why a conditional balance UPDATE matched no rows.
func (s *Service) diagnoseAccount(ctx context.Context, tx *gorm.DB, accountID snowflake.ID, debit bool) error {
	var account walletdomain.LedgerAccount
	if err := tx.WithContext(ctx).Raw(
		`SELECT * FROM ledger_accounts WHERE id = ?`, accountID,
	).Scan(&account).Error; err != nil {
		return err
	}
	if account.ID == 0 {
		return walletdomain.ErrAccountNotFound
	}
	if account.Status != walletdomain.AccountStatusActive {
		return walletdomain.ErrAccountFrozen
	}
	if debit {
		return walletdomain.ErrInsufficientBalance
	}
	return walletdomain.ErrAccountNotFound
}

func (s *Service) recordTransaction(txn *walletdomain.LedgerTransaction) {
	if s.obsMetrics != nil {
		s.obsMetrics.RecordLedgerTransaction(string(txn.Type), string(txn.Direction))
	}
}

func (s *Service) audit(ctx context.Context, action, targetType, targetID string, metadata map[string]any) {
	if s.auditSvc == nil {
		return
	}
	if err := s.auditSvc.AuditLog(ctx, action, targetType, &targetID, metadata); err != nil {
		s.log.Warn("failed to write wallet audit log", zap.Error(err))
	}
}
