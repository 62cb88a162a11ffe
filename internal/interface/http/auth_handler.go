package handlers

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/yklymenko/contacthub/config"
	"github.com/yklymenko/contacthub/internal/application"
	"github.com/yklymenko/contacthub/internal/domain/repository"
	"github.com/yklymenko/contacthub/pkg/helpers"
	"github.com/yklymenko/contacthub/pkg/mailer"
	"github.com/yklymenko/contacthub/pkg/response"
	"github.com/yklymenko/contacthub/pkg/validation"
)

// AuthHandler serves registration, email verification, login and token
// refresh.
type AuthHandler struct {
	Svc     *application.AccountService
	RDB     *redis.Client
	Logger  *logrus.Logger
	Cfg     *config.Config
	Pub     *helpers.RabbitPublisher
	Cookies *helpers.CookieManager
}

func NewAuthHandler(svc *application.AccountService, rdb *redis.Client, logger *logrus.Logger, cfg *config.Config, pub *helpers.RabbitPublisher) *AuthHandler {
	return &AuthHandler{
		Svc:     svc,
		RDB:     rdb,
		Logger:  logger,
		Cfg:     cfg,
		Pub:     pub,
		Cookies: helpers.NewCookie(cfg.CookieDomain, cfg.CookieSecure),
	}
}

func keyVerifyToken(t string) string { return "email:verify:token:" + t }

func genToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

type registerRequest struct {
	Username string `json:"username" binding:"required,username"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register POST /api/auth/register
// Creates an inactive account and emails a verification link.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	existing, err := h.Svc.FindByEmail(c.Request.Context(), req.Email)
	if err != nil {
		response.Error[any](c, http.StatusInternalServerError, "registration failed", nil)
		return
	}
	if existing != nil {
		response.Error[any](c, http.StatusConflict, "account already registered", nil)
		return
	}

	a, err := h.Svc.Register(c.Request.Context(), application.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrConflict):
			response.Error[any](c, http.StatusConflict, "account already registered", nil)
		case errors.Is(err, application.ErrRoleNotSeeded):
			h.Logger.WithError(err).Error("default role missing; run the seeder")
			response.Error[any](c, http.StatusInternalServerError, "registration unavailable", nil)
		default:
			h.Logger.WithError(err).Error("register failed")
			response.Error[any](c, http.StatusInternalServerError, "registration failed", nil)
		}
		return
	}

	h.sendVerification(c, a.Username, a.Email)

	response.Success(c, http.StatusCreated, accountJSON(a), "account registered", nil)
}

func (h *AuthHandler) sendVerification(c *gin.Context, username, email string) {
	if h.RDB == nil {
		return
	}
	tok, err := genToken(32)
	if err != nil {
		h.Logger.WithError(err).Error("verification token generation failed")
		return
	}
	if err := h.RDB.Set(c.Request.Context(), keyVerifyToken(tok), email, 24*time.Hour).Err(); err != nil {
		h.Logger.WithError(err).Warn("store verification token failed")
		return
	}
	link := h.Cfg.VerifyEmailURL + "?token=" + tok

	if h.Pub != nil && h.Cfg.MailSendEnabled {
		job := mailer.EmailJob{
			To:       email,
			Template: mailer.TemplateVerifyEmail,
			Data: map[string]any{
				"Username":         username,
				"VerificationLink": link,
			},
		}
		if err := h.Pub.PublishJSON(c.Request.Context(), job); err != nil {
			h.Logger.WithError(err).WithField("email", email).Warn("enqueue verification email failed")
		}
	}
}

// VerifyEmail GET /api/auth/verify-email?token=...
// Flips the account active; re-verifying an active account is a no-op.
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	token := c.Query("token")
	if token == "" || h.RDB == nil {
		response.Error[any](c, http.StatusBadRequest, "invalid or expired token", nil)
		return
	}
	email, err := h.RDB.Get(c.Request.Context(), keyVerifyToken(token)).Result()
	if err != nil || email == "" {
		response.Error[any](c, http.StatusBadRequest, "invalid or expired token", nil)
		return
	}

	a, err := h.Svc.ActivateByEmail(c.Request.Context(), email)
	if err != nil {
		if errors.Is(err, application.ErrAccountNotFound) {
			response.Error[any](c, http.StatusNotFound, "account not found", nil)
			return
		}
		h.Logger.WithError(err).Error("activate failed")
		response.Error[any](c, http.StatusInternalServerError, "verification failed", nil)
		return
	}
	h.RDB.Del(c.Request.Context(), keyVerifyToken(token))

	response.Success(c, http.StatusOK, accountJSON(a), "email verified successfully", nil)
}

// Token POST /api/auth/token
// Authenticates username/password and issues an access/refresh pair.
func (h *AuthHandler) Token(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	a, pair, err := h.Svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		response.Error[any](c, http.StatusUnauthorized, "incorrect username or password", nil)
		return
	}

	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success(c, http.StatusOK, gin.H{
		"account_id":    a.ID,
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"token_type":    "bearer",
	}, "login successful", gin.H{
		"access_expires_at":  pair.AccessTokenExpiry,
		"refresh_expires_at": pair.RefreshTokenExpiry,
	})
}

// RefreshToken POST /api/auth/refresh-token
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	refresh, err := c.Cookie("refresh_token")
	if err != nil || refresh == "" {
		var req struct {
			RefreshToken string `json:"refresh_token" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error[any](c, http.StatusUnauthorized, "missing refresh token", nil)
			return
		}
		refresh = req.RefreshToken
	}

	pair, _, err := h.Svc.Refresh(c.Request.Context(), refresh)
	if err != nil {
		response.Error[any](c, http.StatusUnauthorized, "invalid refresh token", nil)
		return
	}

	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success(c, http.StatusOK, gin.H{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"token_type":    "bearer",
	}, "token refreshed", gin.H{
		"access_expires_at":  pair.AccessTokenExpiry,
		"refresh_expires_at": pair.RefreshTokenExpiry,
	})
}

// Logout POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	h.Cookies.Clear(c)
	response.Success[any](c, http.StatusOK, gin.H{"logged_out": true}, "logged out", nil)
}
