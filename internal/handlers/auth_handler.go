package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"task-tracker-api/internal/auth"
	"task-tracker-api/internal/middleware"
	"task-tracker-api/internal/models"

	"github.com/gin-gonic/gin"
)

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=6"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoURL"`
}

// LoginResponse represents the login response
type LoginResponse struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expiresAt"`
	User      models.UserInfo `json:"user"`
	Message   string          `json:"message"`
}

// Login signs the user in, registering the email on first use, and starts their session
// POST /api/login
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	user, err := h.Provider.SignIn(c.Request.Context(), auth.Credentials{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		PhotoURL:    req.PhotoURL,
	})
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	case errors.Is(err, auth.ErrMalformedEmail):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "fields": gin.H{"email": "email must be a valid email address"}})
		return
	case err != nil:
		log.Printf("sign-in failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sign in"})
		return
	}

	token, err := h.Tokens.GenerateToken(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to generate token",
		})
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(h.Tokens.TTL()).UTC(),
		User:      user,
		Message:   "Login successful",
	})
}

// Logout revokes the token, ends the session and drops the user's live connections
// POST /api/logout
func (h *Handler) Logout(c *gin.Context) {
	claims, ok := middleware.Claims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
		return
	}

	h.Tokens.Revoke(claims)
	if err := h.Provider.SignOut(c.Request.Context(), claims.UserInfo()); err != nil {
		log.Printf("sign-out for user %s failed: %v", claims.UID, err)
	}
	if h.Hub != nil {
		h.Hub.CloseUser(claims.UID)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logout successful"})
}
