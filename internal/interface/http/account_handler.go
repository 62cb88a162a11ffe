package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/yklymenko/contacthub/internal/application"
	"github.com/yklymenko/contacthub/internal/domain/entity"
	"github.com/yklymenko/contacthub/pkg/response"
	"github.com/yklymenko/contacthub/pkg/validation"
)

// AccountHandler serves the authenticated account's profile and avatar.
type AccountHandler struct {
	Svc    *application.AccountService
	Logger *logrus.Logger
}

func NewAccountHandler(svc *application.AccountService, logger *logrus.Logger) *AccountHandler {
	return &AccountHandler{Svc: svc, Logger: logger}
}

func accountJSON(a *entity.Account) gin.H {
	return gin.H{
		"id":         a.ID,
		"username":   a.Username,
		"email":      a.Email,
		"role_id":    a.RoleID,
		"avatar_url": a.AvatarURL,
		"is_active":  a.IsActive,
		"created_at": a.CreatedAt,
		"updated_at": a.UpdatedAt,
	}
}

// Me GET /api/users/me
func (h *AccountHandler) Me(c *gin.Context) {
	a, err := h.Svc.GetProfile(c.Request.Context(), c.GetString("accountID"))
	if err != nil {
		response.Error[any](c, http.StatusNotFound, "account not found", nil)
		return
	}
	response.Success(c, http.StatusOK, accountJSON(a), "profile", nil)
}

type updateAvatarRequest struct {
	URL string `json:"url" binding:"required,url"`
}

// UpdateAvatar PUT /api/users/avatar
// Stores the URL verbatim if it points at the avatar service, otherwise
// rewrites it to the canonical avatar URL for the account's email.
func (h *AccountHandler) UpdateAvatar(c *gin.Context) {
	var req updateAvatarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	a, err := h.Svc.UpdateAvatar(c.Request.Context(), c.GetString("accountEmail"), req.URL)
	if err != nil {
		if errors.Is(err, application.ErrAccountNotFound) {
			response.Error[any](c, http.StatusNotFound, "account not found", nil)
			return
		}
		h.Logger.WithError(err).Error("update avatar failed")
		response.Error[any](c, http.StatusInternalServerError, "failed to update avatar", nil)
		return
	}
	response.Success(c, http.StatusOK, accountJSON(a), "avatar updated", nil)
}

// UploadAvatar PATCH /api/users/avatar
// Accepts a multipart file, stores it in GCS, and points the avatar at it.
func (h *AccountHandler) UploadAvatar(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "missing file", nil)
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "unreadable file", nil)
		return
	}
	defer func() { _ = f.Close() }()

	a, err := h.Svc.UploadAvatar(c.Request.Context(),
		c.GetString("accountID"), f, fileHeader.Filename, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		if errors.Is(err, application.ErrAccountNotFound) {
			response.Error[any](c, http.StatusNotFound, "account not found", nil)
			return
		}
		h.Logger.WithError(err).Error("upload avatar failed")
		response.Error[any](c, http.StatusInternalServerError, "failed to upload avatar", nil)
		return
	}
	response.Success(c, http.StatusOK, accountJSON(a), "avatar uploaded", nil)
}
