package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/uptrace/bun"

	"github.com/mailboxapp/mailbox/internal/apperr"
	"github.com/mailboxapp/mailbox/internal/models"
)

// ReceptionHandler serves the recipient side of the mailbox: the per-user
// copies of delivered messages.
type ReceptionHandler struct {
	db *bun.DB
}

func NewReceptionHandler(db *bun.DB) *ReceptionHandler {
	return &ReceptionHandler{db: db}
}

// List pages through the caller's received messages, optionally filtered by
// etat.
func (h *ReceptionHandler) List(c *gin.Context) {
	etat := c.Query("etat")
	if etat != "" && !models.ValidEtat(etat) {
		respondError(c, apperr.Validation("invalid state"))
		return
	}
	page, limit := pagination(c)

	receptions, total, err := models.ListReceptionsByDestinataire(c.Request.Context(), h.db,
		currentUserID(c), etat, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "", gin.H{
		"receptions": receptions,
		"pagination": models.NewPagination(page, limit, total),
	})
}

// Get returns one reception with its message and sender. Opening an unread
// reception marks it read.
func (h *ReceptionHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()
	id := resourceID(c)

	reception, err := models.FindReceptionByID(ctx, h.db, id)
	if err != nil {
		respondError(c, err)
		return
	}

	if reception.Etat == models.EtatRecu {
		if err := models.MarkReceptionRead(ctx, h.db, id); err != nil {
			respondError(c, err)
			return
		}
		reception.Etat = models.EtatLu
	}

	pieces, err := models.ListPiecesJointesByMessage(ctx, h.db, reception.MessageID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "", gin.H{"reception": reception, "pieces_jointes": pieces})
}

func (h *ReceptionHandler) MarkRead(c *gin.Context) {
	if err := models.MarkReceptionRead(c.Request.Context(), h.db, resourceID(c)); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "message marked as read", nil)
}

type UpdateEtatRequest struct {
	Etat string `json:"etat" binding:"required"`
}

func (h *ReceptionHandler) UpdateEtat(c *gin.Context) {
	var req UpdateEtatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := models.UpdateReceptionEtat(c.Request.Context(), h.db, resourceID(c), req.Etat); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "state updated", nil)
}

type MoveReceptionRequest struct {
	DossierID *int64 `json:"dossier_id"`
}

// Move files the reception into one of the caller's dossiers, or back to
// the unfiled inbox when dossier_id is null.
func (h *ReceptionHandler) Move(c *gin.Context) {
	var req MoveReceptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	ctx := c.Request.Context()
	if req.DossierID != nil {
		owned, err := models.DossierBelongsToUser(ctx, h.db, *req.DossierID, currentUserID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		if !owned {
			respondError(c, apperr.Authorization("folder not owned"))
			return
		}
	}

	if err := models.MoveReceptionToDossier(ctx, h.db, resourceID(c), req.DossierID); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "message moved", nil)
}

// Delete moves the reception to the recipient's trash.
func (h *ReceptionHandler) Delete(c *gin.Context) {
	if err := models.SoftDeleteReception(c.Request.Context(), h.db, resourceID(c)); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "reception trashed", nil)
}

func (h *ReceptionHandler) DeletePermanent(c *gin.Context) {
	if err := models.DeleteReceptionPermanent(c.Request.Context(), h.db, resourceID(c)); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "reception deleted permanently", nil)
}

func (h *ReceptionHandler) Unread(c *gin.Context) {
	count, err := models.CountUnread(c.Request.Context(), h.db, currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "", gin.H{"non_lus": count})
}

// MarkAllRead marks every unread reception of the caller in one statement.
func (h *ReceptionHandler) MarkAllRead(c *gin.Context) {
	marked, err := models.MarkAllRead(c.Request.Context(), h.db, currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, fmt.Sprintf("messages marked as read: %d", marked), gin.H{"marques": marked})
}

func (h *ReceptionHandler) Stats(c *gin.Context) {
	stats, err := models.CountReceptionStats(c.Request.Context(), h.db, currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "", gin.H{"stats": stats})
}
