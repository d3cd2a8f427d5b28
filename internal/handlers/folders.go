package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/uptrace/bun"

	"github.com/mailboxapp/mailbox/internal/models"
)

// DossierHandler serves the caller's folder tree and the filing of
// receptions into it.
type DossierHandler struct {
	db *bun.DB
}

func NewDossierHandler(db *bun.DB) *DossierHandler {
	return &DossierHandler{db: db}
}

type CreateDossierRequest struct {
	Nom string `json:"nom" binding:"required,max=100"`
}

func (h *DossierHandler) Create(c *gin.Context) {
	var req CreateDossierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	dossier := &models.Dossier{
		Nom:            req.Nom,
		ProprietaireID: currentUserID(c),
	}
	if err := models.CreateDossier(c.Request.Context(), h.db, dossier); err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, "folder created", gin.H{"dossier": dossier})
}

func (h *DossierHandler) List(c *gin.Context) {
	dossiers, err := models.ListDossiersByProprietaire(c.Request.Context(), h.db, currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "", gin.H{"dossiers": dossiers})
}

func (h *DossierHandler) Get(c *gin.Context) {
	dossier, err := models.FindDossierByID(c.Request.Context(), h.db, resourceID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "", gin.H{"dossier": dossier})
}

type RenameDossierRequest struct {
	Nom string `json:"nom" binding:"required,max=100"`
}

func (h *DossierHandler) Rename(c *gin.Context) {
	var req RenameDossierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	ctx := c.Request.Context()
	if err := models.RenameDossier(ctx, h.db, resourceID(c), req.Nom); err != nil {
		respondError(c, err)
		return
	}

	dossier, err := models.FindDossierByID(ctx, h.db, resourceID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "folder updated", gin.H{"dossier": dossier})
}

// Delete removes the folder. Receptions filed in it go back to the unfiled
// inbox; no message is lost.
func (h *DossierHandler) Delete(c *gin.Context) {
	if err := models.DeleteDossier(c.Request.Context(), h.db, resourceID(c)); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "folder deleted", nil)
}

// Messages pages through the receptions filed in the folder.
func (h *DossierHandler) Messages(c *gin.Context) {
	page, limit := pagination(c)

	receptions, total, err := models.ListReceptionsByDossier(c.Request.Context(), h.db,
		resourceID(c), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "", gin.H{
		"receptions": receptions,
		"pagination": models.NewPagination(page, limit, total),
	})
}

// Stats summarizes the caller's folder tree: folder count, filed message
// total and the per-folder breakdown.
func (h *DossierHandler) Stats(c *gin.Context) {
	dossiers, err := models.ListDossiersByProprietaire(c.Request.Context(), h.db, currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	var totalMessages int64
	for _, d := range dossiers {
		totalMessages += d.NombreMessages
	}

	respondOK(c, "", gin.H{"stats": gin.H{
		"total_dossiers": len(dossiers),
		"total_messages": totalMessages,
		"dossiers":       dossiers,
	}})
}

type MoveMessagesRequest struct {
	Receptions []int64 `json:"receptions" binding:"required,min=1"`
}

// MoveMessages files the listed receptions into the folder. Receptions that
// belong to another user are silently skipped; the response carries the
// number actually moved.
func (h *DossierHandler) MoveMessages(c *gin.Context) {
	var req MoveMessagesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	moved, err := models.MoveReceptionsToDossier(c.Request.Context(), h.db,
		resourceID(c), currentUserID(c), req.Receptions)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, fmt.Sprintf("messages moved: %d", moved), gin.H{"deplaces": moved})
}
