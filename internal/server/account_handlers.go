package server

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/bankd-dev/bankd/internal/ledger"
	"github.com/bankd-dev/bankd/internal/models"
)

// AccountSummary is the account payload inside the dashboard response
type AccountSummary struct {
	AccountNumber        string `json:"accountNumber"`
	Balance              int64  `json:"balance"`
	DailyWithdrawalLimit int64  `json:"dailyWithdrawalLimit"`
	DailyTransferLimit   int64  `json:"dailyTransferLimit"`
}

// DashboardResponse is the account-summary payload for /api/dashboard
type DashboardResponse struct {
	Account AccountSummary `json:"account"`
}

// TransactionDetail is one ledger entry in API responses
type TransactionDetail struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"`
	Amount       int64     `json:"amount"`
	BalanceAfter int64     `json:"balanceAfter"`
	Counterparty string    `json:"counterparty,omitempty"`
	Description  string    `json:"description,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// AmountRequest carries a positive amount in cents
type AmountRequest struct {
	Amount int64 `json:"amount" binding:"required,gt=0"`
}

// TransferRequest moves money to another account by number
type TransferRequest struct {
	ToAccountNumber string `json:"toAccountNumber" binding:"required"`
	Amount          int64  `json:"amount" binding:"required,gt=0"`
	Description     string `json:"description" binding:"max=140"`
}

// accountForSession loads the session user's account
func (s *Server) accountForSession(c *gin.Context) (*models.Account, bool) {
	sessionData, exists := GetSessionData(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return nil, false
	}

	var account models.Account
	if err := s.db.Where("user_id = ?", sessionData.UserID).First(&account).Error; err != nil {
		s.logger.Error().Err(err).Str("user_id", sessionData.UserID).Msg("Failed to load account")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return nil, false
	}

	return &account, true
}

func (s *Server) getDashboard(c *gin.Context) {
	account, ok := s.accountForSession(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, DashboardResponse{
		Account: AccountSummary{
			AccountNumber:        account.Number,
			Balance:              account.Balance,
			DailyWithdrawalLimit: account.DailyWithdrawalLimit,
			DailyTransferLimit:   account.DailyTransferLimit,
		},
	})
}

func (s *Server) listTransactions(c *gin.Context) {
	account, ok := s.accountForSession(c)
	if !ok {
		return
	}

	var transactions []models.Transaction
	if err := s.db.Where("account_id = ?", account.ID).
		Order("created_at DESC").Limit(100).Find(&transactions).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to list transactions")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	details := make([]TransactionDetail, len(transactions))
	for i, tx := range transactions {
		details[i] = TransactionDetail{
			ID:           tx.ID,
			Type:         tx.Type,
			Amount:       tx.Amount,
			BalanceAfter: tx.BalanceAfter,
			Counterparty: tx.Counterparty,
			Description:  tx.Description,
			CreatedAt:    tx.CreatedAt,
		}
	}

	c.JSON(http.StatusOK, details)
}

func (s *Server) deposit(c *gin.Context) {
	var req AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	account, ok := s.accountForSession(c)
	if !ok {
		return
	}

	var entry *models.Transaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		entry, err = ledger.Post(tx, account.ID, models.TxDeposit, req.Amount, "", "Deposit")
		return err
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to post deposit")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"balance": entry.BalanceAfter})
}

func (s *Server) withdraw(c *gin.Context) {
	var req AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	account, ok := s.accountForSession(c)
	if !ok {
		return
	}

	var entry *models.Transaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := ledger.CheckDailyLimit(tx, account.ID, req.Amount,
			account.DailyWithdrawalLimit, models.TxWithdrawal); err != nil {
			return err
		}
		var err error
		entry, err = ledger.Post(tx, account.ID, models.TxWithdrawal, -req.Amount, "", "Withdrawal")
		return err
	})

	switch {
	case errors.Is(err, ledger.ErrInsufficientFunds):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Insufficient funds"})
		return
	case errors.Is(err, ledger.ErrLimitExceeded):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Daily withdrawal limit exceeded"})
		return
	case err != nil:
		s.logger.Error().Err(err).Msg("Failed to post withdrawal")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"balance": entry.BalanceAfter})
}

func (s *Server) transfer(c *gin.Context) {
	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	account, ok := s.accountForSession(c)
	if !ok {
		return
	}

	if req.ToAccountNumber == account.Number {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Cannot transfer to your own account"})
		return
	}

	var target models.Account
	if err := s.db.Where("number = ?", req.ToAccountNumber).First(&target).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Recipient account not found"})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to load recipient account")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	description := req.Description
	if description == "" {
		description = "Transfer"
	}

	var entry *models.Transaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := ledger.CheckDailyLimit(tx, account.ID, req.Amount,
			account.DailyTransferLimit, models.TxTransferOut); err != nil {
			return err
		}
		var err error
		entry, err = ledger.Post(tx, account.ID, models.TxTransferOut, -req.Amount,
			target.Number, description)
		if err != nil {
			return err
		}
		_, err = ledger.Post(tx, target.ID, models.TxTransferIn, req.Amount,
			account.Number, description)
		return err
	})

	switch {
	case errors.Is(err, ledger.ErrInsufficientFunds):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Insufficient funds"})
		return
	case errors.Is(err, ledger.ErrLimitExceeded):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Daily transfer limit exceeded"})
		return
	case err != nil:
		s.logger.Error().Err(err).Msg("Failed to post transfer")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	sessionData, _ := GetSessionData(c)
	s.logger.Info().
		Str("user_id", sessionData.UserID).
		Str("to_account", target.Number).
		Int64("amount", req.Amount).
		Msg("Transfer completed")

	c.JSON(http.StatusOK, gin.H{
		"balance":   entry.BalanceAfter,
		"reference": fmt.Sprintf("TRF-%s", entry.ID),
	})
}
