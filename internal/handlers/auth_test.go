package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"docuchat-service/internal/auth"
	"docuchat-service/internal/middleware"
	"docuchat-service/internal/mocks"
	"docuchat-service/internal/models"
	"docuchat-service/internal/repositories"
)

func setupAuthRouter(handler *AuthHandler, userID int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/auth/register", handler.Register)
	r.POST("/auth/login", handler.Login)
	r.POST("/auth/forgot-password", handler.ForgotPassword)

	authed := r.Group("/")
	authed.Use(func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
		c.Next()
	})
	authed.POST("/auth/change-password", handler.ChangePassword)
	authed.POST("/auth/security-questions", handler.SetSecurityQuestions)
	authed.GET("/users", handler.ListUsers)
	return r
}

func isAdminChecker(username string) bool {
	return strings.EqualFold(username, "Admin")
}

func newAuthHandler(users *mocks.UserRepositoryMock) *AuthHandler {
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	return NewAuthHandler(users, tokens, nil, isAdminChecker)
}

func postJSON(t *testing.T, router *gin.Engine, path string, body gin.H) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRegisterSuccess(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	router := setupAuthRouter(newAuthHandler(users), 0)

	users.On("CreateUser", mock.Anything, "alice", "alice@example.com", mock.AnythingOfType("string"), models.RoleUser, "fluffy", "oslo").
		Return(models.User{ID: 1, Username: "alice"}, nil).Once()

	rec := postJSON(t, router, "/auth/register", gin.H{
		"username":          "alice",
		"email":             "alice@example.com",
		"password":          "longenoughpw",
		"security_answer_1": " Fluffy ",
		"security_answer_2": "OSLO",
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	users.AssertExpectations(t)
}

func TestRegisterAdminUsername(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	router := setupAuthRouter(newAuthHandler(users), 0)

	users.On("CreateUser", mock.Anything, "Admin", "", mock.AnythingOfType("string"), models.RoleAdmin, "fluffy", "oslo").
		Return(models.User{ID: 1, Username: "Admin", Role: models.RoleAdmin}, nil).Once()

	rec := postJSON(t, router, "/auth/register", gin.H{
		"username":          "Admin",
		"password":          "longenoughpw",
		"security_answer_1": "fluffy",
		"security_answer_2": "oslo",
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	users.AssertExpectations(t)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	router := setupAuthRouter(newAuthHandler(users), 0)

	users.On("CreateUser", mock.Anything, "alice", "", mock.AnythingOfType("string"), models.RoleUser, "fluffy", "oslo").
		Return(models.User{}, repositories.ErrUsernameTaken).Once()

	rec := postJSON(t, router, "/auth/register", gin.H{
		"username":          "alice",
		"password":          "longenoughpw",
		"security_answer_1": "fluffy",
		"security_answer_2": "oslo",
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	users.AssertExpectations(t)
}

func TestRegisterShortPassword(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	router := setupAuthRouter(newAuthHandler(users), 0)

	rec := postJSON(t, router, "/auth/register", gin.H{
		"username":          "alice",
		"password":          "short",
		"security_answer_1": "fluffy",
		"security_answer_2": "oslo",
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	users.AssertExpectations(t)
}

func TestRegisterBlankSecurityAnswers(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	router := setupAuthRouter(newAuthHandler(users), 0)

	rec := postJSON(t, router, "/auth/register", gin.H{
		"username":          "alice",
		"password":          "longenoughpw",
		"security_answer_1": "   ",
		"security_answer_2": "oslo",
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	users.AssertExpectations(t)
}

func TestLoginSuccess(t *testing.T) {
	hash, err := auth.HashPassword("longenoughpw")
	require.NoError(t, err)

	users := new(mocks.UserRepositoryMock)
	router := setupAuthRouter(newAuthHandler(users), 0)

	users.On("GetByUsername", mock.Anything, "alice").
		Return(models.User{ID: 1, Username: "alice", PasswordHash: hash, Role: models.RoleUser}, nil).Once()

	rec := postJSON(t, router, "/auth/login", gin.H{"username": "alice", "password": "longenoughpw"})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.NotEmpty(t, resp.Token)
	users.AssertExpectations(t)
}

func TestLoginWrongPassword(t *testing.T) {
	hash, err := auth.HashPassword("longenoughpw")
	require.NoError(t, err)

	users := new(mocks.UserRepositoryMock)
	router := setupAuthRouter(newAuthHandler(users), 0)

	users.On("GetByUsername", mock.Anything, "alice").
		Return(models.User{ID: 1, Username: "alice", PasswordHash: hash}, nil).Once()

	rec := postJSON(t, router, "/auth/login", gin.H{"username": "alice", "password": "not-the-password"})

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	users.AssertExpectations(t)
}

func TestLoginUnknownUser(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	router := setupAuthRouter(newAuthHandler(users), 0)

	users.On("GetByUsername", mock.Anything, "ghost").
		Return(models.User{}, repositories.ErrUserNotFound).Once()

	rec := postJSON(t, router, "/auth/login", gin.H{"username": "ghost", "password": "whatever-pw"})

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	users.AssertExpectations(t)
}

func TestForgotPasswordSuccess(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	router := setupAuthRouter(newAuthHandler(users), 0)

	users.On("GetByUsername", mock.Anything, "alice").Return(models.User{
		ID:              1,
		Username:        "alice",
		SecurityAnswer1: sql.NullString{String: "fluffy", Valid: true},
		SecurityAnswer2: sql.NullString{String: "oslo", Valid: true},
	}, nil).Once()
	users.On("UpdatePassword", mock.Anything, 1, mock.AnythingOfType("string")).Return(nil).Once()

	rec := postJSON(t, router, "/auth/forgot-password", gin.H{
		"username":          "alice",
		"security_answer_1": " FLUFFY ",
		"security_answer_2": "Oslo",
		"new_password":      "brandnewpassword",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	users.AssertExpectations(t)
}

func TestForgotPasswordWrongAnswers(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	router := setupAuthRouter(newAuthHandler(users), 0)

	users.On("GetByUsername", mock.Anything, "alice").Return(models.User{
		ID:              1,
		Username:        "alice",
		SecurityAnswer1: sql.NullString{String: "fluffy", Valid: true},
		SecurityAnswer2: sql.NullString{String: "oslo", Valid: true},
	}, nil).Once()

	rec := postJSON(t, router, "/auth/forgot-password", gin.H{
		"username":          "alice",
		"security_answer_1": "rex",
		"security_answer_2": "oslo",
		"new_password":      "brandnewpassword",
	})

	require.Equal(t, http.StatusForbidden, rec.Code)
	users.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
}

func TestForgotPasswordUnknownUser(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	router := setupAuthRouter(newAuthHandler(users), 0)

	users.On("GetByUsername", mock.Anything, "ghost").
		Return(models.User{}, repositories.ErrUserNotFound).Once()

	rec := postJSON(t, router, "/auth/forgot-password", gin.H{
		"username":          "ghost",
		"security_answer_1": "fluffy",
		"security_answer_2": "oslo",
		"new_password":      "brandnewpassword",
	})

	require.Equal(t, http.StatusNotFound, rec.Code)
	users.AssertExpectations(t)
}

func TestForgotPasswordAnswersNotSet(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	router := setupAuthRouter(newAuthHandler(users), 0)

	users.On("GetByUsername", mock.Anything, "alice").
		Return(models.User{ID: 1, Username: "alice"}, nil).Once()

	rec := postJSON(t, router, "/auth/forgot-password", gin.H{
		"username":          "alice",
		"security_answer_1": "fluffy",
		"security_answer_2": "oslo",
		"new_password":      "brandnewpassword",
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	users.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
}

func TestChangePasswordSuccess(t *testing.T) {
	hash, err := auth.HashPassword("oldpassword1")
	require.NoError(t, err)

	users := new(mocks.UserRepositoryMock)
	router := setupAuthRouter(newAuthHandler(users), 1)

	users.On("GetByID", mock.Anything, 1).
		Return(models.User{ID: 1, Username: "alice", PasswordHash: hash}, nil).Once()
	users.On("UpdatePassword", mock.Anything, 1, mock.AnythingOfType("string")).Return(nil).Once()

	rec := postJSON(t, router, "/auth/change-password", gin.H{
		"old_password":     "oldpassword1",
		"new_password":     "newpassword22",
		"confirm_password": "newpassword22",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	users.AssertExpectations(t)
}

func TestChangePasswordWrongOld(t *testing.T) {
	hash, err := auth.HashPassword("oldpassword1")
	require.NoError(t, err)

	users := new(mocks.UserRepositoryMock)
	router := setupAuthRouter(newAuthHandler(users), 1)

	users.On("GetByID", mock.Anything, 1).
		Return(models.User{ID: 1, Username: "alice", PasswordHash: hash}, nil).Once()

	rec := postJSON(t, router, "/auth/change-password", gin.H{
		"old_password":     "not-the-old-one",
		"new_password":     "newpassword22",
		"confirm_password": "newpassword22",
	})

	require.Equal(t, http.StatusForbidden, rec.Code)
	users.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
}

func TestChangePasswordConfirmMismatch(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	router := setupAuthRouter(newAuthHandler(users), 1)

	rec := postJSON(t, router, "/auth/change-password", gin.H{
		"old_password":     "oldpassword1",
		"new_password":     "newpassword22",
		"confirm_password": "different22",
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	users.AssertExpectations(t)
}

func TestSetSecurityQuestions(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	router := setupAuthRouter(newAuthHandler(users), 1)

	users.On("SetSecurityAnswers", mock.Anything, 1, "fluffy", "oslo").Return(nil).Once()

	rec := postJSON(t, router, "/auth/security-questions", gin.H{
		"security_answer_1": " Fluffy ",
		"security_answer_2": "OSLO",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	users.AssertExpectations(t)
}

func TestListUsersExcludesCaller(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	router := setupAuthRouter(newAuthHandler(users), 1)

	users.On("ListOthers", mock.Anything, 1).Return([]models.PublicUser{
		{ID: 2, Username: "bob"},
		{ID: 3, Username: "carol"},
	}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Users []models.PublicUser `json:"users"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Users, 2)
	assert.Equal(t, "bob", resp.Users[0].Username)
	users.AssertExpectations(t)
}
