package handlers

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/uptrace/bun"

	"github.com/mailboxapp/mailbox/internal/apperr"
	"github.com/mailboxapp/mailbox/internal/models"
)

type MessageHandler struct {
	db        *bun.DB
	uploadDir string
	maxUpload int64
}

func NewMessageHandler(db *bun.DB, uploadDir string, maxUpload int64) *MessageHandler {
	return &MessageHandler{db: db, uploadDir: uploadDir, maxUpload: maxUpload}
}

type CreateMessageRequest struct {
	Objet         string  `json:"objet" binding:"omitempty,max=255"`
	Contenu       string  `json:"contenu" binding:"required"`
	Destinataires []int64 `json:"destinataires"`
	Statut        string  `json:"statut"`
}

// Create composes a message. Without an explicit statut it is sent right
// away; BROUILLON stores it without recipients or receptions.
func (h *MessageHandler) Create(c *gin.Context) {
	var req CreateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	statut := req.Statut
	if statut == "" {
		statut = models.StatutEnvoye
	}
	if statut != models.StatutEnvoye && statut != models.StatutBrouillon {
		respondError(c, apperr.Validation("invalid status"))
		return
	}

	message := &models.Message{
		ExpediteurID: currentUserID(c),
		Objet:        req.Objet,
		Contenu:      req.Contenu,
		DateEnvoi:    time.Now(),
		Statut:       statut,
	}
	if err := models.CreateMessage(c.Request.Context(), h.db, message, req.Destinataires); err != nil {
		respondError(c, err)
		return
	}

	if statut == models.StatutBrouillon {
		respondCreated(c, "draft saved", gin.H{"message": message})
		return
	}
	respondCreated(c, "message sent", gin.H{"message": message})
}

// List pages through the caller's sent messages, optionally filtered by
// statut.
func (h *MessageHandler) List(c *gin.Context) {
	statut := c.Query("statut")
	if statut != "" && !models.ValidStatut(statut) {
		respondError(c, apperr.Validation("invalid status"))
		return
	}
	page, limit := pagination(c)

	messages, total, err := models.ListMessagesByExpediteur(c.Request.Context(), h.db,
		currentUserID(c), statut, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "", gin.H{
		"messages":   messages,
		"pagination": models.NewPagination(page, limit, total),
	})
}

func (h *MessageHandler) Get(c *gin.Context) {
	message, err := models.FindMessageByID(c.Request.Context(), h.db, resourceID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	pieces, err := models.ListPiecesJointesByMessage(c.Request.Context(), h.db, message.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "", gin.H{"message": message, "pieces_jointes": pieces})
}

type UpdateMessageRequest struct {
	Objet   string `json:"objet" binding:"omitempty,max=255"`
	Contenu string `json:"contenu"`
	Statut  string `json:"statut"`
}

// Update rewrites the mutable fields; omitted or empty fields keep their
// previous value.
func (h *MessageHandler) Update(c *gin.Context) {
	var req UpdateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if req.Statut != "" && !models.ValidStatut(req.Statut) {
		respondError(c, apperr.Validation("invalid status"))
		return
	}

	ctx := c.Request.Context()
	message, err := models.FindMessageByID(ctx, h.db, resourceID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	if req.Objet != "" {
		message.Objet = req.Objet
	}
	if req.Contenu != "" {
		message.Contenu = req.Contenu
	}
	if req.Statut != "" {
		message.Statut = req.Statut
	}

	if err := models.UpdateMessage(ctx, h.db, message); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "message updated", gin.H{"message": message})
}

type SendDraftRequest struct {
	Destinataires []int64 `json:"destinataires" binding:"required,min=1"`
}

// SendDraft promotes a stored BROUILLON to ENVOYE, fanning receptions out
// to the given recipients.
func (h *MessageHandler) SendDraft(c *gin.Context) {
	var req SendDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	ctx := c.Request.Context()
	message, err := models.FindMessageByID(ctx, h.db, resourceID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	if err := models.SendDraft(ctx, h.db, message, req.Destinataires); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "draft sent", gin.H{"message": message})
}

// Delete moves the message to the sender's trash. The recipients' copies
// are untouched.
func (h *MessageHandler) Delete(c *gin.Context) {
	if err := models.SoftDeleteMessage(c.Request.Context(), h.db, resourceID(c)); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "message trashed", nil)
}

// DeletePermanent removes the message, its receptions and its attachments.
// Attachment files are unlinked after the rows are gone.
func (h *MessageHandler) DeletePermanent(c *gin.Context) {
	paths, err := models.DeleteMessagePermanent(c.Request.Context(), h.db, resourceID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	for _, path := range paths {
		os.Remove(path)
	}
	respondOK(c, "message deleted permanently", nil)
}

func (h *MessageHandler) Stats(c *gin.Context) {
	stats, err := models.CountMessageStats(c.Request.Context(), h.db, currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "", gin.H{"stats": stats})
}

// UploadAttachment stores the multipart "fichier" on disk and records it
// against the message.
func (h *MessageHandler) UploadAttachment(c *gin.Context) {
	file, err := c.FormFile("fichier")
	if err != nil {
		respondError(c, apperr.Validation("file is required"))
		return
	}
	if file.Size > h.maxUpload {
		respondError(c, apperr.Validation("file too large"))
		return
	}

	messageID := resourceID(c)
	name := fmt.Sprintf("%d_%d_%s", messageID, time.Now().UnixNano(), filepath.Base(file.Filename))
	path := filepath.Join(h.uploadDir, name)

	if err := c.SaveUploadedFile(file, path); err != nil {
		respondError(c, err)
		return
	}

	piece := &models.PieceJointe{
		MessageID:     messageID,
		NomFichier:    file.Filename,
		CheminFichier: path,
	}
	if err := models.CreatePieceJointe(c.Request.Context(), h.db, piece); err != nil {
		os.Remove(path)
		respondError(c, err)
		return
	}

	respondCreated(c, "attachment saved", gin.H{"piece_jointe": piece})
}

func (h *MessageHandler) ListAttachments(c *gin.Context) {
	pieces, err := models.ListPiecesJointesByMessage(c.Request.Context(), h.db, resourceID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "", gin.H{"pieces_jointes": pieces})
}
