package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/bankd-dev/bankd/internal/loan"
	"github.com/bankd-dev/bankd/internal/models"
)

// Annual rate offered on new loan applications, in basis points. A real
// deployment would price per applicant; the demo bank has one rate sheet.
const standardLoanRateBps = 799

// LoanApplicationRequest is a new loan application
type LoanApplicationRequest struct {
	Amount     int64  `json:"amount" binding:"required,gt=0"`
	TermMonths int    `json:"termMonths" binding:"required,gte=6,lte=360"`
	Purpose    string `json:"purpose" binding:"max=140"`
}

// LoanDetail is a loan in API responses
type LoanDetail struct {
	ID             string     `json:"id"`
	Principal      int64      `json:"principal"`
	AnnualRateBps  int        `json:"annualRateBps"`
	TermMonths     int        `json:"termMonths"`
	Purpose        string     `json:"purpose,omitempty"`
	Status         string     `json:"status"`
	MonthlyPayment int64      `json:"monthlyPayment"`
	CreatedAt      time.Time  `json:"createdAt"`
	DisbursedAt    *time.Time `json:"disbursedAt,omitempty"`
}

func loanDetail(l *models.Loan) LoanDetail {
	return LoanDetail{
		ID:             l.ID,
		Principal:      l.Principal,
		AnnualRateBps:  l.AnnualRateBps,
		TermMonths:     l.TermMonths,
		Purpose:        l.Purpose,
		Status:         l.Status,
		MonthlyPayment: l.MonthlyPayment,
		CreatedAt:      l.CreatedAt,
		DisbursedAt:    l.DisbursedAt,
	}
}

func (s *Server) applyForLoan(c *gin.Context) {
	var req LoanApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	sessionData, _ := GetSessionData(c)

	monthly, err := loan.MonthlyPayment(req.Amount, standardLoanRateBps, req.TermMonths)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	application := &models.Loan{
		UserID:         sessionData.UserID,
		Principal:      req.Amount,
		AnnualRateBps:  standardLoanRateBps,
		TermMonths:     req.TermMonths,
		Purpose:        req.Purpose,
		Status:         models.LoanPending,
		MonthlyPayment: monthly,
	}
	if err := s.db.Create(application).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to create loan application")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	s.logger.Info().
		Str("loan_id", application.ID).
		Str("user_id", sessionData.UserID).
		Int64("principal", application.Principal).
		Msg("Loan application submitted")

	c.JSON(http.StatusCreated, loanDetail(application))
}

func (s *Server) listLoans(c *gin.Context) {
	sessionData, _ := GetSessionData(c)

	var loans []models.Loan
	if err := s.db.Where("user_id = ?", sessionData.UserID).
		Order("created_at DESC").Find(&loans).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to list loans")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	details := make([]LoanDetail, len(loans))
	for i := range loans {
		details[i] = loanDetail(&loans[i])
	}

	c.JSON(http.StatusOK, details)
}

func (s *Server) getLoanSchedule(c *gin.Context) {
	sessionData, _ := GetSessionData(c)
	loanID := c.Param("id")

	var l models.Loan
	if err := s.db.Where("id = ? AND user_id = ?", loanID, sessionData.UserID).First(&l).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Loan not found"})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to load loan")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	// Pending applications get a projected schedule from today; disbursed
	// loans anchor on the disbursement date.
	start := time.Now().UTC()
	if l.DisbursedAt != nil {
		start = *l.DisbursedAt
	}

	schedule, err := loan.Schedule(l.Principal, l.AnnualRateBps, l.TermMonths, start)
	if err != nil {
		s.logger.Error().Err(err).Str("loan_id", l.ID).Msg("Failed to compute schedule")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"loan":     loanDetail(&l),
		"schedule": schedule,
	})
}
