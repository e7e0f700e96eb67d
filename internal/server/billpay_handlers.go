package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"

	"github.com/bankd-dev/bankd/internal/ledger"
	"github.com/bankd-dev/bankd/internal/models"
	"github.com/bankd-dev/bankd/internal/tasks"
)

// PayeeDetail is a registered payee in API responses
type PayeeDetail struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	AccountNumber string `json:"accountNumber"`
}

// CreatePayeeRequest registers a new bill-payment recipient
type CreatePayeeRequest struct {
	Name          string `json:"name" binding:"required,max=64"`
	AccountNumber string `json:"accountNumber" binding:"required,numeric"`
}

// BillPaymentRequest pays a registered payee, now or at a scheduled time
type BillPaymentRequest struct {
	PayeeID      string     `json:"payeeId" binding:"required"`
	Amount       int64      `json:"amount" binding:"required,gt=0"`
	ScheduledFor *time.Time `json:"scheduledFor"`
}

// BillPaymentDetail is a bill payment in API responses
type BillPaymentDetail struct {
	ID           string     `json:"id"`
	Payee        string     `json:"payee"`
	Amount       int64      `json:"amount"`
	Status       string     `json:"status"`
	ScheduledFor *time.Time `json:"scheduledFor,omitempty"`
	ExecutedAt   *time.Time `json:"executedAt,omitempty"`
	FailReason   string     `json:"failReason,omitempty"`
}

func (s *Server) listPayees(c *gin.Context) {
	sessionData, _ := GetSessionData(c)

	var payees []models.Payee
	if err := s.db.Where("user_id = ?", sessionData.UserID).Order("name").Find(&payees).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to list payees")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	details := make([]PayeeDetail, len(payees))
	for i, p := range payees {
		details[i] = PayeeDetail{ID: p.ID, Name: p.Name, AccountNumber: p.AccountNumber}
	}

	c.JSON(http.StatusOK, details)
}

func (s *Server) createPayee(c *gin.Context) {
	var req CreatePayeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	sessionData, _ := GetSessionData(c)
	payee := &models.Payee{
		UserID:        sessionData.UserID,
		Name:          req.Name,
		AccountNumber: req.AccountNumber,
	}
	if err := s.db.Create(payee).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to create payee")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	c.JSON(http.StatusCreated, PayeeDetail{
		ID: payee.ID, Name: payee.Name, AccountNumber: payee.AccountNumber,
	})
}

func (s *Server) listBillPayments(c *gin.Context) {
	sessionData, _ := GetSessionData(c)

	var payments []models.BillPayment
	if err := s.db.Preload("Payee").Where("user_id = ?", sessionData.UserID).
		Order("created_at DESC").Limit(100).Find(&payments).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to list bill payments")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	details := make([]BillPaymentDetail, len(payments))
	for i, p := range payments {
		details[i] = BillPaymentDetail{
			ID:           p.ID,
			Payee:        p.Payee.Name,
			Amount:       p.Amount,
			Status:       p.Status,
			ScheduledFor: p.ScheduledFor,
			ExecutedAt:   p.ExecutedAt,
			FailReason:   p.FailReason,
		}
	}

	c.JSON(http.StatusOK, details)
}

func (s *Server) createBillPayment(c *gin.Context) {
	var req BillPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	sessionData, _ := GetSessionData(c)

	var payee models.Payee
	if err := s.db.Where("id = ? AND user_id = ?", req.PayeeID, sessionData.UserID).First(&payee).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Payee not found"})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to load payee")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	now := time.Now().UTC()

	// Future-dated payments are executed by the worker; everything else
	// settles immediately in this request.
	if req.ScheduledFor != nil && req.ScheduledFor.After(now) {
		payment := &models.BillPayment{
			UserID:       sessionData.UserID,
			PayeeID:      payee.ID,
			Amount:       req.Amount,
			Status:       models.BillPaymentScheduled,
			ScheduledFor: req.ScheduledFor,
		}
		if err := s.db.Create(payment).Error; err != nil {
			s.logger.Error().Err(err).Msg("Failed to create scheduled bill payment")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
			return
		}

		task, err := tasks.NewExecuteBillPaymentTask(payment.ID)
		if err != nil {
			s.logger.Error().Err(err).Msg("Failed to create bill payment task")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
			return
		}
		if _, err := s.asynqClient.Enqueue(task, asynq.ProcessAt(*req.ScheduledFor)); err != nil {
			s.logger.Error().Err(err).Msg("Failed to enqueue bill payment task")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
			return
		}

		c.JSON(http.StatusCreated, BillPaymentDetail{
			ID: payment.ID, Payee: payee.Name, Amount: payment.Amount,
			Status: payment.Status, ScheduledFor: payment.ScheduledFor,
		})
		return
	}

	var account models.Account
	if err := s.db.Where("user_id = ?", sessionData.UserID).First(&account).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to load account")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	payment := &models.BillPayment{
		UserID:  sessionData.UserID,
		PayeeID: payee.ID,
		Amount:  req.Amount,
		Status:  models.BillPaymentCompleted,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := ledger.Post(tx, account.ID, models.TxBillPayment, -req.Amount,
			payee.Name, "Bill payment to "+payee.Name); err != nil {
			return err
		}
		payment.ExecutedAt = &now
		return tx.Create(payment).Error
	})

	if errors.Is(err, ledger.ErrInsufficientFunds) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Insufficient funds"})
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to execute bill payment")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	c.JSON(http.StatusCreated, BillPaymentDetail{
		ID: payment.ID, Payee: payee.Name, Amount: payment.Amount,
		Status: payment.Status, ExecutedAt: payment.ExecutedAt,
	})
}
