package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"docuchat-service/internal/auth"
	"docuchat-service/internal/middleware"
	"docuchat-service/internal/models"
	"docuchat-service/internal/repositories"
	"docuchat-service/internal/telemetry"
)

// AdminChecker decides whether a username registers as an administrator.
type AdminChecker func(username string) bool

// AuthHandler manages account endpoints.
type AuthHandler struct {
	users   repositories.UserRepository
	tokens  *auth.TokenManager
	audit   *telemetry.AuditEmitter
	isAdmin AdminChecker
}

// NewAuthHandler builds an AuthHandler.
func NewAuthHandler(users repositories.UserRepository, tokens *auth.TokenManager, audit *telemetry.AuditEmitter, isAdmin AdminChecker) *AuthHandler {
	return &AuthHandler{
		users:   users,
		tokens:  tokens,
		audit:   audit,
		isAdmin: isAdmin,
	}
}

// Register creates an account with security answers for recovery.
func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Username        string `json:"username" binding:"required"`
		Email           string `json:"email" binding:"omitempty,email"`
		Password        string `json:"password" binding:"required,min=8"`
		SecurityAnswer1 string `json:"security_answer_1" binding:"required"`
		SecurityAnswer2 string `json:"security_answer_2" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	answer1 := auth.NormalizeAnswer(req.SecurityAnswer1)
	answer2 := auth.NormalizeAnswer(req.SecurityAnswer2)
	if answer1 == "" || answer2 == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "security answers cannot be empty"})
		return
	}
	if strings.TrimSpace(req.Username) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username cannot be empty"})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process password"})
		return
	}

	role := models.RoleUser
	if h.isAdmin != nil && h.isAdmin(req.Username) {
		role = models.RoleAdmin
	}

	user, err := h.users.CreateUser(c.Request.Context(), req.Username, req.Email, hash, role, answer1, answer2)
	if err != nil {
		if errors.Is(err, repositories.ErrUsernameTaken) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "username already taken"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create account"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": user.ID, "username": user.Username})
}

// Login verifies credentials and issues a bearer token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.GetByUsername(c.Request.Context(), req.Username)
	if err != nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}

	userID := int64(user.ID)
	h.audit.Emit(c.Request.Context(), "user_login", user.Username, requestIDFromContext(c), &userID)
	c.JSON(http.StatusOK, gin.H{"token": token, "user": gin.H{"id": user.ID, "username": user.Username, "role": user.Role}})
}

// ForgotPassword resets a password after checking both security answers.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req struct {
		Username        string `json:"username" binding:"required"`
		SecurityAnswer1 string `json:"security_answer_1" binding:"required"`
		SecurityAnswer2 string `json:"security_answer_2" binding:"required"`
		NewPassword     string `json:"new_password" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.GetByUsername(c.Request.Context(), req.Username)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load user"})
		return
	}

	if !user.HasSecurityAnswers() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "security questions not set for this user"})
		return
	}
	if !auth.CheckAnswer(user.SecurityAnswer1.String, req.SecurityAnswer1) ||
		!auth.CheckAnswer(user.SecurityAnswer2.String, req.SecurityAnswer2) {
		c.JSON(http.StatusForbidden, gin.H{"error": "security answers do not match"})
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process password"})
		return
	}
	if err := h.users.UpdatePassword(c.Request.Context(), user.ID, hash); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to reset password"})
		return
	}

	userID := int64(user.ID)
	h.audit.Emit(c.Request.Context(), "password_reset", user.Username, requestIDFromContext(c), &userID)
	c.JSON(http.StatusOK, gin.H{"status": "password reset"})
}

// ChangePassword lets the authenticated user rotate their password.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req struct {
		OldPassword     string `json:"old_password" binding:"required"`
		NewPassword     string `json:"new_password" binding:"required,min=8"`
		ConfirmPassword string `json:"confirm_password" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.NewPassword != req.ConfirmPassword {
		c.JSON(http.StatusBadRequest, gin.H{"error": "new passwords do not match"})
		return
	}

	userID := c.GetInt(middleware.UserIDKey)
	user, err := h.users.GetByID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load user"})
		return
	}
	if !auth.CheckPassword(user.PasswordHash, req.OldPassword) {
		c.JSON(http.StatusForbidden, gin.H{"error": "old password is incorrect"})
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process password"})
		return
	}
	if err := h.users.UpdatePassword(c.Request.Context(), userID, hash); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to change password"})
		return
	}

	h.audit.Emit(c.Request.Context(), "password_change", user.Username, requestIDFromContext(c), auditUserID(c))
	c.JSON(http.StatusOK, gin.H{"status": "password changed"})
}

// SetSecurityQuestions stores the authenticated user's recovery answers.
func (h *AuthHandler) SetSecurityQuestions(c *gin.Context) {
	var req struct {
		SecurityAnswer1 string `json:"security_answer_1" binding:"required"`
		SecurityAnswer2 string `json:"security_answer_2" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	answer1 := auth.NormalizeAnswer(req.SecurityAnswer1)
	answer2 := auth.NormalizeAnswer(req.SecurityAnswer2)
	if answer1 == "" || answer2 == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "security answers cannot be empty"})
		return
	}

	userID := c.GetInt(middleware.UserIDKey)
	if err := h.users.SetSecurityAnswers(c.Request.Context(), userID, answer1, answer2); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save security answers"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "security answers saved"})
}

// ListUsers returns every user except the caller.
func (h *AuthHandler) ListUsers(c *gin.Context) {
	userID := c.GetInt(middleware.UserIDKey)

	users, err := h.users.ListOthers(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load users"})
		return
	}
	if users == nil {
		users = []models.PublicUser{}
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}
