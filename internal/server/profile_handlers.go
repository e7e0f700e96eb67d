package server

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/bankd-dev/bankd/internal/auth"
	"github.com/bankd-dev/bankd/internal/models"
)

const verificationTTL = 15 * time.Minute

// ProfileResponse is the profile payload
type ProfileResponse struct {
	Username      string    `json:"username"`
	Email         string    `json:"email,omitempty"`
	EmailVerified bool      `json:"emailVerified"`
	Roles         []string  `json:"roles"`
	CreatedAt     time.Time `json:"createdAt"`
}

// UpdateProfileRequest changes profile fields. Changing the email address
// resets verification.
type UpdateProfileRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ChangePasswordRequest rotates the password
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8"`
}

// ConfirmVerificationRequest carries the emailed code
type ConfirmVerificationRequest struct {
	Code string `json:"code" binding:"required,len=6,numeric"`
}

func (s *Server) userForSession(c *gin.Context) (*models.User, bool) {
	sessionData, exists := GetSessionData(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return nil, false
	}

	var user models.User
	if err := s.db.Where("id = ?", sessionData.UserID).First(&user).Error; err != nil {
		s.logger.Error().Err(err).Str("user_id", sessionData.UserID).Msg("Failed to load user")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return nil, false
	}

	return &user, true
}

func (s *Server) getProfile(c *gin.Context) {
	user, ok := s.userForSession(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, ProfileResponse{
		Username:      user.Username,
		Email:         user.Email,
		EmailVerified: user.EmailVerified,
		Roles:         user.RoleList(),
		CreatedAt:     user.CreatedAt,
	})
}

func (s *Server) updateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	user, ok := s.userForSession(c)
	if !ok {
		return
	}

	if req.Email == user.Email {
		c.JSON(http.StatusOK, gin.H{"message": "No changes"})
		return
	}

	if err := s.db.Model(user).Updates(map[string]interface{}{
		"email":          req.Email,
		"email_verified": false,
	}).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to update profile")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	s.logger.Info().Str("user_id", user.ID).Msg("Email updated, verification reset")
	c.JSON(http.StatusOK, gin.H{"message": "Email updated. Verify the new address."})
}

func (s *Server) changePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	user, ok := s.userForSession(c)
	if !ok {
		return
	}

	if err := auth.VerifyPassword(req.CurrentPassword, user.PasswordHash); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Current password is incorrect"})
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to hash password")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	if err := s.db.Model(user).Update("password_hash", hash).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to update password")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	s.logger.Info().Str("user_id", user.ID).Msg("Password changed")
	c.JSON(http.StatusOK, gin.H{"message": "Password changed"})
}

func (s *Server) requestEmailVerification(c *gin.Context) {
	user, ok := s.userForSession(c)
	if !ok {
		return
	}

	if user.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "No email address on file"})
		return
	}
	if user.EmailVerified {
		c.JSON(http.StatusConflict, gin.H{"message": "Email already verified"})
		return
	}

	code, err := generateVerificationCode()
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to generate verification code")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	verification := &models.EmailVerification{
		UserID:    user.ID,
		Email:     user.Email,
		Code:      code,
		ExpiresAt: time.Now().UTC().Add(verificationTTL),
	}
	if err := s.db.Create(verification).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to store verification code")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	// The demo deployment has no mail relay; the code lands in the server
	// log so operators can hand it over.
	s.logger.Info().
		Str("user_id", user.ID).
		Str("email", user.Email).
		Str("code", code).
		Msg("Email verification code issued")

	c.JSON(http.StatusAccepted, gin.H{"message": "Verification code sent"})
}

func (s *Server) confirmEmailVerification(c *gin.Context) {
	var req ConfirmVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	user, ok := s.userForSession(c)
	if !ok {
		return
	}

	var verification models.EmailVerification
	err := s.db.Where("user_id = ? AND code = ? AND consumed_at IS NULL", user.ID, req.Code).
		Order("created_at DESC").First(&verification).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid verification code"})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to load verification")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	if time.Now().UTC().After(verification.ExpiresAt) {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Verification code expired"})
		return
	}
	if verification.Email != user.Email {
		// Email changed after the code was issued
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid verification code"})
		return
	}

	now := time.Now().UTC()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&verification).Update("consumed_at", now).Error; err != nil {
			return err
		}
		return tx.Model(user).Update("email_verified", true).Error
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to confirm verification")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	s.logger.Info().Str("user_id", user.ID).Msg("Email verified")
	c.JSON(http.StatusOK, gin.H{"message": "Email verified"})
}

func (s *Server) deleteAccount(c *gin.Context) {
	user, ok := s.userForSession(c)
	if !ok {
		return
	}

	var account models.Account
	if err := s.db.Where("user_id = ?", user.ID).First(&account).Error; err == nil && account.Balance != 0 {
		c.JSON(http.StatusConflict, gin.H{"message": "Account balance must be zero before closing"})
		return
	}

	if err := s.db.Select("Account").Delete(user).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to delete user")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	s.logger.Info().Str("user_id", user.ID).Msg("Account deleted")
	c.Status(http.StatusNoContent)
}

func generateVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
