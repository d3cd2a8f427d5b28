package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/uptrace/bun"

	"github.com/mailboxapp/mailbox/internal/apperr"
	"github.com/mailboxapp/mailbox/internal/auth"
	"github.com/mailboxapp/mailbox/internal/models"
)

type AuthHandler struct {
	authSvc *auth.Service
	db      *bun.DB
}

func NewAuthHandler(authSvc *auth.Service, db *bun.DB) *AuthHandler {
	return &AuthHandler{authSvc: authSvc, db: db}
}

type RegisterRequest struct {
	Nom             string  `json:"nom" binding:"required,min=2,max=100"`
	Prenom          string  `json:"prenom" binding:"required,min=2,max=100"`
	Email           string  `json:"email" binding:"required,email"`
	MotDePasse      string  `json:"mot_de_passe" binding:"required,min=6"`
	TelephoneMobile *string `json:"telephone_mobile"`
}

type LoginRequest struct {
	Email      string `json:"email" binding:"required,email"`
	MotDePasse string `json:"mot_de_passe" binding:"required"`
}

// Register creates an account and immediately signs the user in.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user := &models.User{
		Nom:             req.Nom,
		Prenom:          req.Prenom,
		Email:           req.Email,
		TelephoneMobile: req.TelephoneMobile,
	}
	if err := h.authSvc.Register(c.Request.Context(), user, req.MotDePasse); err != nil {
		respondError(c, err)
		return
	}

	token, err := h.authSvc.GenerateToken(user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondCreated(c, "user created", gin.H{"user": user, "token": token})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, token, err := h.authSvc.Login(c.Request.Context(), req.Email, req.MotDePasse)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "login successful", gin.H{"user": user, "token": token})
}

// VerifyToken answers whether the presented token is still good. The
// middleware has already done the checking.
func (h *AuthHandler) VerifyToken(c *gin.Context) {
	user, err := models.FindUserByID(c.Request.Context(), h.db, currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "token valid", gin.H{"user": user})
}

func (h *AuthHandler) GetProfile(c *gin.Context) {
	user, err := models.FindUserByID(c.Request.Context(), h.db, currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "profile fetched", gin.H{"user": user})
}

type UpdateProfileRequest struct {
	Nom             string  `json:"nom"`
	Prenom          string  `json:"prenom"`
	Email           string  `json:"email" binding:"omitempty,email"`
	TelephoneMobile *string `json:"telephone_mobile"`
	PhotoProfil     *string `json:"photo_profil"`
}

// UpdateProfile applies the fields present in the request; omitted or empty
// fields keep their previous value.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	ctx := c.Request.Context()
	user, err := models.FindUserByID(ctx, h.db, currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	if req.Nom != "" {
		user.Nom = req.Nom
	}
	if req.Prenom != "" {
		user.Prenom = req.Prenom
	}
	if req.Email != "" {
		// Same normalization as Register, so login lookups keep matching.
		user.Email = strings.ToLower(strings.TrimSpace(req.Email))
	}
	if req.TelephoneMobile != nil {
		user.TelephoneMobile = req.TelephoneMobile
	}
	if req.PhotoProfil != nil {
		user.PhotoProfil = req.PhotoProfil
	}

	if err := models.UpdateUserProfile(ctx, h.db, user); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "profile updated", gin.H{"user": user})
}

type ChangePasswordRequest struct {
	AncienMotDePasse  string `json:"ancien_mot_de_passe" binding:"required"`
	NouveauMotDePasse string `json:"nouveau_mot_de_passe" binding:"required,min=6"`
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	err := h.authSvc.ChangePassword(c.Request.Context(), currentUserID(c),
		req.AncienMotDePasse, req.NouveauMotDePasse)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "password changed", nil)
}

// SearchUsers finds potential recipients by name or email, never including
// the caller.
func (h *AuthHandler) SearchUsers(c *gin.Context) {
	term := c.Query("q")
	if term == "" {
		respondError(c, apperr.Validation("search term required"))
		return
	}

	users, err := models.SearchUsers(c.Request.Context(), h.db, currentUserID(c), term)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "", gin.H{"users": users})
}

// AuthMiddleware validates the bearer token and loads the account behind
// it. Deleted accounts are rejected even with a valid token.
func (h *AuthHandler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		token := ""
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			token = authHeader[7:]
		}

		if token == "" {
			respondError(c, apperr.Authentication("missing authorization token"))
			c.Abort()
			return
		}

		claims, err := h.authSvc.ValidateToken(token)
		if err != nil {
			respondError(c, err)
			c.Abort()
			return
		}

		exists, err := models.UserExists(c.Request.Context(), h.db, claims.UserID)
		if err != nil {
			respondError(c, err)
			c.Abort()
			return
		}
		if !exists {
			respondError(c, apperr.Authentication("user not found"))
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Next()
	}
}
