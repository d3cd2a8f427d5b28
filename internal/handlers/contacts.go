package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/uptrace/bun"

	"github.com/mailboxapp/mailbox/internal/apperr"
	"github.com/mailboxapp/mailbox/internal/models"
)

// ContactHandler serves the caller's address book.
type ContactHandler struct {
	db *bun.DB
}

func NewContactHandler(db *bun.DB) *ContactHandler {
	return &ContactHandler{db: db}
}

type CreateContactRequest struct {
	ContactID int64 `json:"contact_id" binding:"required"`
}

func (h *ContactHandler) Create(c *gin.Context) {
	var req CreateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	ctx := c.Request.Context()
	exists, err := models.UserExists(ctx, h.db, req.ContactID)
	if err != nil {
		respondError(c, err)
		return
	}
	if !exists {
		respondError(c, apperr.NotFound("user not found"))
		return
	}

	contact := &models.Contact{
		ProprietaireID: currentUserID(c),
		ContactID:      req.ContactID,
	}
	if err := models.CreateContact(ctx, h.db, contact); err != nil {
		respondError(c, err)
		return
	}

	loaded, err := models.FindContactByID(ctx, h.db, contact.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, "contact added", gin.H{"contact": loaded})
}

func (h *ContactHandler) List(c *gin.Context) {
	page, limit := pagination(c)

	contacts, total, err := models.ListContactsByProprietaire(c.Request.Context(), h.db,
		currentUserID(c), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "", gin.H{
		"contacts":   contacts,
		"pagination": models.NewPagination(page, limit, total),
	})
}

func (h *ContactHandler) Get(c *gin.Context) {
	contact, err := models.FindContactByID(c.Request.Context(), h.db, resourceID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "", gin.H{"contact": contact})
}

func (h *ContactHandler) Delete(c *gin.Context) {
	if err := models.DeleteContact(c.Request.Context(), h.db, resourceID(c)); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "contact deleted", nil)
}

// Search filters the caller's address book by the contact's name or email.
func (h *ContactHandler) Search(c *gin.Context) {
	term := c.Query("q")
	if term == "" {
		respondError(c, apperr.Validation("search term required"))
		return
	}

	contacts, err := models.SearchContacts(c.Request.Context(), h.db, currentUserID(c), term)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "", gin.H{"contacts": contacts})
}

// SearchUsers finds any user matching the term, flagging those already in
// the caller's address book.
func (h *ContactHandler) SearchUsers(c *gin.Context) {
	term := c.Query("q")
	if term == "" {
		respondError(c, apperr.Validation("search term required"))
		return
	}

	ctx := c.Request.Context()
	users, err := models.SearchUsers(ctx, h.db, currentUserID(c), term)
	if err != nil {
		respondError(c, err)
		return
	}

	type flaggedUser struct {
		models.User
		EstContact bool `json:"est_contact"`
	}
	flagged := make([]flaggedUser, 0, len(users))
	for _, user := range users {
		is, err := models.IsContact(ctx, h.db, currentUserID(c), user.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		flagged = append(flagged, flaggedUser{User: user, EstContact: is})
	}
	respondOK(c, "", gin.H{"users": flagged})
}

// Check reports whether a user is already in the caller's address book.
func (h *ContactHandler) Check(c *gin.Context) {
	otherID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil || otherID <= 0 {
		respondError(c, apperr.Validation("invalid id"))
		return
	}

	ctx := c.Request.Context()
	user, err := models.FindUserByID(ctx, h.db, otherID)
	if err != nil {
		respondError(c, err)
		return
	}

	is, err := models.IsContact(ctx, h.db, currentUserID(c), otherID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "", gin.H{"est_contact": is, "user": user})
}

func (h *ContactHandler) Stats(c *gin.Context) {
	total, err := models.CountContactsByProprietaire(c.Request.Context(), h.db, currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "", gin.H{"stats": gin.H{"total": total}})
}
