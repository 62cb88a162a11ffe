package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/yklymenko/contacthub/internal/application"
	"github.com/yklymenko/contacthub/internal/domain/entity"
	"github.com/yklymenko/contacthub/internal/domain/repository"
	"github.com/yklymenko/contacthub/pkg/response"
	"github.com/yklymenko/contacthub/pkg/validation"
)

const birthdayLayout = "2006-01-02"

// ContactHandler serves the authenticated account's address book.
type ContactHandler struct {
	Svc    *application.ContactService
	Logger *logrus.Logger
}

func NewContactHandler(svc *application.ContactService, logger *logrus.Logger) *ContactHandler {
	return &ContactHandler{Svc: svc, Logger: logger}
}

type contactRequest struct {
	FirstName      string `json:"first_name" binding:"required"`
	LastName       string `json:"last_name" binding:"required"`
	Email          string `json:"email" binding:"omitempty,email"`
	PhoneNumber    string `json:"phone_number"`
	Birthday       string `json:"birthday" binding:"omitempty,datetime=2006-01-02"`
	AdditionalInfo string `json:"additional_info"`
}

func (r contactRequest) toInput() application.ContactInput {
	in := application.ContactInput{
		FirstName:      r.FirstName,
		LastName:       r.LastName,
		Email:          r.Email,
		PhoneNumber:    r.PhoneNumber,
		AdditionalInfo: r.AdditionalInfo,
	}
	if r.Birthday != "" {
		// validated by the datetime binding above
		in.Birthday, _ = time.Parse(birthdayLayout, r.Birthday)
	}
	return in
}

func contactJSON(c *entity.Contact) gin.H {
	out := gin.H{
		"id":              c.ID,
		"first_name":      c.FirstName,
		"last_name":       c.LastName,
		"email":           c.Email,
		"phone_number":    c.PhoneNumber,
		"additional_info": c.AdditionalInfo,
		"created_at":      c.CreatedAt,
		"updated_at":      c.UpdatedAt,
	}
	if !c.Birthday.IsZero() {
		out["birthday"] = c.Birthday.Format(birthdayLayout)
	}
	return out
}

func contactsJSON(cs []entity.Contact) []gin.H {
	out := make([]gin.H, 0, len(cs))
	for i := range cs {
		out = append(out, contactJSON(&cs[i]))
	}
	return out
}

// Create POST /api/contacts
func (h *ContactHandler) Create(c *gin.Context) {
	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	contact, err := h.Svc.Create(c.Request.Context(), c.GetString("accountID"), req.toInput())
	if err != nil {
		h.Logger.WithError(err).Error("create contact failed")
		response.Error[any](c, http.StatusInternalServerError, "failed to create contact", nil)
		return
	}
	response.Success(c, http.StatusCreated, contactJSON(contact), "contact created", nil)
}

// Get GET /api/contacts/:id
func (h *ContactHandler) Get(c *gin.Context) {
	contact, err := h.Svc.Get(c.Request.Context(), c.Param("id"), c.GetString("accountID"))
	if err != nil {
		if errors.Is(err, application.ErrContactNotFound) {
			response.Error[any](c, http.StatusNotFound, "contact not found", nil)
			return
		}
		response.Error[any](c, http.StatusInternalServerError, "failed to load contact", nil)
		return
	}
	response.Success(c, http.StatusOK, contactJSON(contact), "contact", nil)
}

// List GET /api/contacts
func (h *ContactHandler) List(c *gin.Context) {
	contacts, err := h.Svc.List(c.Request.Context(), c.GetString("accountID"))
	if err != nil {
		response.Error[any](c, http.StatusInternalServerError, "failed to list contacts", nil)
		return
	}
	response.Success(c, http.StatusOK, contactsJSON(contacts), "contacts", gin.H{"count": len(contacts)})
}

// Update PUT /api/contacts/:id
func (h *ContactHandler) Update(c *gin.Context) {
	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	contact, err := h.Svc.Update(c.Request.Context(), c.Param("id"), c.GetString("accountID"), req.toInput())
	if err != nil {
		if errors.Is(err, application.ErrContactNotFound) {
			response.Error[any](c, http.StatusNotFound, "contact not found", nil)
			return
		}
		h.Logger.WithError(err).Error("update contact failed")
		response.Error[any](c, http.StatusInternalServerError, "failed to update contact", nil)
		return
	}
	response.Success(c, http.StatusOK, contactJSON(contact), "contact updated", nil)
}

// Delete DELETE /api/contacts/:id
func (h *ContactHandler) Delete(c *gin.Context) {
	err := h.Svc.Delete(c.Request.Context(), c.Param("id"), c.GetString("accountID"))
	if err != nil {
		if errors.Is(err, application.ErrContactNotFound) {
			response.Error[any](c, http.StatusNotFound, "contact not found", nil)
			return
		}
		response.Error[any](c, http.StatusInternalServerError, "failed to delete contact", nil)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"deleted": true}, "contact deleted", nil)
}

// Search GET /api/contacts/search?first_name=&last_name=&email=
func (h *ContactHandler) Search(c *gin.Context) {
	f := repository.ContactFilter{
		FirstName: c.Query("first_name"),
		LastName:  c.Query("last_name"),
		Email:     c.Query("email"),
	}
	contacts, err := h.Svc.Search(c.Request.Context(), c.GetString("accountID"), f)
	if err != nil {
		response.Error[any](c, http.StatusInternalServerError, "search failed", nil)
		return
	}
	response.Success(c, http.StatusOK, contactsJSON(contacts), "contacts", gin.H{"count": len(contacts)})
}

// SearchText GET /api/contacts/search-text?q=
func (h *ContactHandler) SearchText(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		response.Error[any](c, http.StatusBadRequest, "missing query", nil)
		return
	}
	hits, err := h.Svc.SearchText(c.Request.Context(), c.GetString("accountID"), q, 10)
	if err != nil {
		h.Logger.WithError(err).Warn("es search failed")
		response.Error[any](c, http.StatusInternalServerError, "search failed", nil)
		return
	}
	response.Success(c, http.StatusOK, hits, "contacts", gin.H{"count": len(hits)})
}

// Birthdays GET /api/contacts/birthdays
// Contacts with a birthday in the next seven days; weekend birthdays are
// reported with the following Monday as the celebration date.
func (h *ContactHandler) Birthdays(c *gin.Context) {
	upcoming, err := h.Svc.UpcomingBirthdays(c.Request.Context(), c.GetString("accountID"), time.Now())
	if err != nil {
		response.Error[any](c, http.StatusInternalServerError, "failed to load birthdays", nil)
		return
	}
	out := make([]gin.H, 0, len(upcoming))
	for i := range upcoming {
		entry := contactJSON(&upcoming[i].Contact)
		entry["celebrate_on"] = upcoming[i].CelebrateOn.Format(birthdayLayout)
		out = append(out, entry)
	}
	response.Success(c, http.StatusOK, out, "upcoming birthdays", gin.H{"count": len(out)})
}
