package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"clubhub/internal/accounts"
	"clubhub/internal/audit"
	"clubhub/internal/auth"
	"clubhub/internal/directory"
	"clubhub/internal/rbac"
	"clubhub/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.
type Handlers struct {
	Auth      *auth.Manager
	Accounts  *accounts.Service
	Directory *directory.Service
	Audit     *audit.Service

	// RotateRefresh returns a fresh refresh token from /token/refresh.
	RotateRefresh bool

	// DBCheck, when set, is consulted by /healthz.
	DBCheck func(ctx context.Context) error

	Now func() time.Time
}

func (h Handlers) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

const (
	msgNoAccount    = "No active account found with the given credentials"
	msgTokenInvalid = "Token is invalid or expired"
)

// --- Auth ---

type tokenRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type tokenResponse struct {
	Access    string `json:"access"`
	Refresh   string `json:"refresh,omitempty"`
	UserID    string `json:"user_id,omitempty"`
	Email     string `json:"email,omitempty"`
	UserType  string `json:"user_type,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

func subjectOf(u accounts.User) auth.Subject {
	return auth.Subject{
		UserID:    u.ID,
		Email:     u.Email,
		UserType:  string(u.Role),
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

func actorOf(u accounts.User) audit.Actor {
	return audit.Actor{UserID: u.ID, Email: u.Email, Role: string(u.Role)}
}

// requestActor is the authenticated caller, as placed in the context by the access middleware.
func requestActor(c *gin.Context) audit.Actor {
	ctx := c.Request.Context()
	uid, _ := auth.UserID(ctx)
	email, _ := auth.Email(ctx)
	role, _ := auth.Role(ctx)
	return audit.Actor{UserID: uid, Email: email, Role: role}
}

// ObtainToken exchanges email and password for an access/refresh pair. Unknown accounts and
// wrong passwords get the same 401.
func (h Handlers) ObtainToken(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "email and password required"})
		return
	}

	u, err := h.Accounts.Authenticate(c.Request.Context(), req.Email, req.Password)
	if errors.Is(err, accounts.ErrInvalidCredentials) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": msgNoAccount})
		return
	}
	if err != nil {
		logger.FromGin(c).Error("authenticate failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "authentication unavailable"})
		return
	}

	pair, err := h.Auth.IssuePair(h.now(), subjectOf(u))
	if err != nil {
		logger.FromGin(c).Error("token issuance failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token issuance failed"})
		return
	}
	h.Audit.LogTokenIssued(c.Request.Context(), actorOf(u), c.ClientIP(), "password")

	c.JSON(http.StatusOK, tokenResponse{
		Access:    pair.AccessToken,
		Refresh:   pair.RefreshToken,
		UserID:    u.ID,
		Email:     u.Email,
		UserType:  string(u.Role),
		FirstName: u.FirstName,
		LastName:  u.LastName,
	})
}

type refreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

// RefreshToken issues a new access token for a valid refresh token. Identity claims are
// re-read from the account, so the access token reflects the current profile.
func (h Handlers) RefreshToken(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "refresh required"})
		return
	}

	claims, err := h.Auth.Verify(req.Refresh, auth.TokenTypeRefresh, h.now())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": msgTokenInvalid})
		return
	}
	u, err := h.Accounts.Get(c.Request.Context(), claims.UserID.String())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": msgTokenInvalid})
		return
	}

	resp := tokenResponse{}
	if h.RotateRefresh {
		pair, err := h.Auth.IssuePair(h.now(), subjectOf(u))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token issuance failed"})
			return
		}
		resp.Access, resp.Refresh = pair.AccessToken, pair.RefreshToken
	} else {
		access, err := h.Auth.IssueAccess(h.now(), subjectOf(u))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token issuance failed"})
			return
		}
		resp.Access = access
	}
	h.Audit.LogTokenIssued(c.Request.Context(), actorOf(u), c.ClientIP(), "refresh")
	c.JSON(http.StatusOK, resp)
}

type registerRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	Password2 string `json:"password2"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	UserType  string `json:"user_type" binding:"omitempty,oneof=STUDENT ADMIN EVENT_ADMIN"`
}

type userResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	UserType  string `json:"user_type"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func userOf(u accounts.User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, UserType: string(u.Role), FirstName: u.FirstName, LastName: u.LastName}
}

// Register creates an account. It does not log the caller in.
func (h Handlers) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error(), "message": "Validation failed"})
		return
	}
	if req.Password2 == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Password confirmation is required", "message": "Please confirm your password"})
		return
	}
	if req.Password != req.Password2 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Passwords do not match", "message": "Please make sure your passwords match"})
		return
	}

	u, err := h.Accounts.Register(c.Request.Context(), accounts.Registration{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      rbac.Role(req.UserType),
	})
	switch {
	case errors.Is(err, accounts.ErrEmailTaken):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "user with this email already exists", "message": "Registration failed"})
		return
	case errors.Is(err, accounts.ErrInvalidArgument):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": strings.TrimPrefix(err.Error(), "accounts: invalid argument: "), "message": "Validation failed"})
		return
	case err != nil:
		logger.FromGin(c).Error("register failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		return
	}

	h.Audit.LogUserRegistered(c.Request.Context(), actorOf(u), c.ClientIP())
	c.JSON(http.StatusCreated, gin.H{"message": "User created successfully", "user": userOf(u)})
}

// Me echoes the identity carried by the access token.
func (h Handlers) Me(c *gin.Context) {
	uid, _ := auth.UserID(c.Request.Context())
	u, err := h.Accounts.Get(c.Request.Context(), uid)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return
	}
	c.JSON(http.StatusOK, userOf(u))
}

// Health reports 503 while the configured database does not answer.
func (h Handlers) Health(c *gin.Context) {
	if h.DBCheck != nil {
		if err := h.DBCheck(c.Request.Context()); err != nil {
			logger.FromGin(c).Warn("health check failed", "err", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
