package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/bankd-dev/bankd/internal/auth"
	"github.com/bankd-dev/bankd/internal/models"
)

// SignupRequest represents a new-customer registration
type SignupRequest struct {
	Username string `json:"username" binding:"required,min=3,max=32,alphanum"`
	Password string `json:"password" binding:"required,min=8"`
	Email    string `json:"email" binding:"omitempty,email"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the bearer token. The field name "jwt" is the wire
// contract the front-ends consume.
type LoginResponse struct {
	JWT string `json:"jwt"`
}

// IdentityResponse is the authenticated-identity payload for /api/user
type IdentityResponse struct {
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
}

func (s *Server) signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	var count int64
	if err := s.db.Model(&models.User{}).Count(&count).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to count users")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	var existing int64
	if err := s.db.Model(&models.User{}).Where("username = ?", req.Username).Count(&existing).Error; err == nil && existing > 0 {
		c.JSON(http.StatusConflict, gin.H{"message": "Username already taken"})
		return
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to hash password")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create user"})
		return
	}

	// First account on a fresh deployment becomes the administrator
	roles := []string{models.RoleUser}
	if count == 0 {
		roles = append(roles, models.RoleAdmin)
	}

	user := &models.User{
		Username:     req.Username,
		PasswordHash: passwordHash,
		Email:        req.Email,
		Roles:        strings.Join(roles, ","),
	}

	// Token generation runs inside the transaction so a failure leaves no
	// half-created user behind
	var token string
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		if _, err := models.NewAccount(tx, user.ID, 0); err != nil {
			return err
		}
		t, err := auth.GenerateToken(user.ID, user.Username, user.RoleList())
		if err != nil {
			return err
		}
		token = t
		return nil
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to create user")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create user"})
		return
	}

	s.logger.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("User signed up")

	c.JSON(http.StatusCreated, LoginResponse{JWT: token})
}

func (s *Server) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	var user models.User
	if err := s.db.Where("username = ?", req.Username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid username or password"})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to find user")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	if err := auth.VerifyPassword(req.Password, user.PasswordHash); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid username or password"})
		return
	}

	token, err := auth.GenerateToken(user.ID, user.Username, user.RoleList())
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to generate token")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to generate token"})
		return
	}

	s.logger.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("User logged in")

	c.JSON(http.StatusOK, LoginResponse{JWT: token})
}

func (s *Server) getIdentity(c *gin.Context) {
	sessionData, exists := GetSessionData(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	c.JSON(http.StatusOK, IdentityResponse{
		Username: sessionData.Username,
		Roles:    sessionData.Roles,
	})
}

// logout is best-effort server-side bookkeeping. Tokens are stateless, so
// there is nothing to revoke; the client discards its copy regardless.
func (s *Server) logout(c *gin.Context) {
	if sessionData, exists := GetSessionData(c); exists {
		s.logger.Info().Str("user_id", sessionData.UserID).Msg("User logged out")
	}
	c.Status(http.StatusNoContent)
}
