package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/bankd-dev/bankd/internal/auth"
	"github.com/bankd-dev/bankd/internal/models"
	"github.com/bankd-dev/bankd/internal/tasks"
)

// UserDetail represents user information in admin responses
type UserDetail struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email,omitempty"`
	EmailVerified bool      `json:"emailVerified"`
	Roles         []string  `json:"roles"`
	CreatedAt     time.Time `json:"createdAt"`
}

// CreateUserRequest creates a new user from the admin console
type CreateUserRequest struct {
	Username string   `json:"username" binding:"required,min=3,max=32,alphanum"`
	Password string   `json:"password" binding:"required,min=8"`
	Email    string   `json:"email" binding:"omitempty,email"`
	Roles    []string `json:"roles"`
}

// AdminLoanDetail is a loan with borrower info for the admin console
type AdminLoanDetail struct {
	LoanDetail
	Username string `json:"username"`
}

func userDetail(u *models.User) UserDetail {
	return UserDetail{
		ID:            u.ID,
		Username:      u.Username,
		Email:         u.Email,
		EmailVerified: u.EmailVerified,
		Roles:         u.RoleList(),
		CreatedAt:     u.CreatedAt,
	}
}

func (s *Server) adminListUsers(c *gin.Context) {
	var users []models.User
	if err := s.db.Order("created_at DESC").Find(&users).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to list users")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	details := make([]UserDetail, len(users))
	for i := range users {
		details[i] = userDetail(&users[i])
	}

	c.JSON(http.StatusOK, details)
}

func (s *Server) adminCreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to hash password")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create user"})
		return
	}

	roles := req.Roles
	if len(roles) == 0 {
		roles = []string{models.RoleUser}
	}

	user := &models.User{
		Username:     req.Username,
		PasswordHash: passwordHash,
		Email:        req.Email,
		Roles:        strings.Join(roles, ","),
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		_, err := models.NewAccount(tx, user.ID, 0)
		return err
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to create user")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create user"})
		return
	}

	sessionData, _ := GetSessionData(c)
	s.logger.Info().
		Str("user_id", user.ID).
		Str("username", user.Username).
		Str("created_by", sessionData.UserID).
		Msg("User created")

	c.JSON(http.StatusCreated, userDetail(user))
}

func (s *Server) adminDeleteUser(c *gin.Context) {
	userID := c.Param("id")

	sessionData, _ := GetSessionData(c)
	if sessionData.UserID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Cannot delete your own user"})
		return
	}

	var user models.User
	if err := s.db.Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to load user")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	if err := s.db.Select("Account").Delete(&user).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to delete user")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Str("deleted_by", sessionData.UserID).
		Msg("User deleted")

	c.Status(http.StatusNoContent)
}

func (s *Server) adminListLoans(c *gin.Context) {
	status := c.DefaultQuery("status", models.LoanPending)

	query := s.db.Order("created_at ASC")
	if status != "all" {
		query = query.Where("status = ?", status)
	}

	var loans []models.Loan
	if err := query.Find(&loans).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to list loans")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	details := make([]AdminLoanDetail, len(loans))
	for i := range loans {
		details[i] = AdminLoanDetail{LoanDetail: loanDetail(&loans[i])}
		var user models.User
		if err := s.db.Where("id = ?", loans[i].UserID).First(&user).Error; err == nil {
			details[i].Username = user.Username
		}
	}

	c.JSON(http.StatusOK, details)
}

func (s *Server) adminApproveLoan(c *gin.Context) {
	s.decideLoan(c, models.LoanApproved)
}

func (s *Server) adminRejectLoan(c *gin.Context) {
	s.decideLoan(c, models.LoanRejected)
}

func (s *Server) decideLoan(c *gin.Context, decision string) {
	loanID := c.Param("id")

	var l models.Loan
	if err := s.db.Where("id = ?", loanID).First(&l).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Loan not found"})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to load loan")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	if l.Status != models.LoanPending {
		c.JSON(http.StatusConflict, gin.H{"message": "Loan already decided"})
		return
	}

	now := time.Now().UTC()
	if err := s.db.Model(&l).Updates(map[string]interface{}{
		"status":     decision,
		"decided_at": now,
	}).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to update loan")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	if decision == models.LoanApproved {
		task, err := tasks.NewDisburseLoanTask(l.ID)
		if err == nil {
			_, err = s.asynqClient.Enqueue(task)
		}
		if err != nil {
			s.logger.Error().Err(err).Str("loan_id", l.ID).Msg("Failed to enqueue disbursement")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Approved but disbursement could not be queued"})
			return
		}
	}

	sessionData, _ := GetSessionData(c)
	s.logger.Info().
		Str("loan_id", l.ID).
		Str("decision", decision).
		Str("decided_by", sessionData.UserID).
		Msg("Loan decided")

	l.Status = decision
	l.DecidedAt = &now
	c.JSON(http.StatusOK, loanDetail(&l))
}
