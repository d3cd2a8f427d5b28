// Package models holds the bun-mapped entities and their query operations.
// The JSON field names are the API contract; they follow the French naming
// of the original MailBox schema.
package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Message lifecycle, driven by the sender.
const (
	StatutCreated   = "CREATED"
	StatutEnvoye    = "ENVOYE"
	StatutBrouillon = "BROUILLON"
	StatutCorbeille = "CORBEILLE"
)

// Reception lifecycle, driven by the recipient.
const (
	EtatRecu      = "RECU"
	EtatLu        = "LU"
	EtatSupprime  = "SUPPRIME"
	EtatArchive   = "ARCHIVE"
	EtatCorbeille = "CORBEILLE"
)

// ValidEtat reports whether etat belongs to the closed reception enum.
func ValidEtat(etat string) bool {
	switch etat {
	case EtatRecu, EtatLu, EtatSupprime, EtatArchive, EtatCorbeille:
		return true
	}
	return false
}

// ValidStatut reports whether statut belongs to the closed message enum.
func ValidStatut(statut string) bool {
	switch statut {
	case StatutCreated, StatutEnvoye, StatutBrouillon, StatutCorbeille:
		return true
	}
	return false
}

type User struct {
	bun.BaseModel `bun:"table:users"`

	ID     int64  `bun:",pk,autoincrement" json:"id"`
	Nom    string `bun:",notnull" json:"nom"`
	Prenom string `bun:",notnull" json:"prenom"`
	Email  string `bun:",notnull,unique" json:"email"`

	// The bcrypt hash. Never serialized.
	MotDePasse string `bun:",notnull" json:"-"`

	TelephoneMobile *string `json:"telephone_mobile,omitempty"`
	PhotoProfil     *string `json:"photo_profil,omitempty"`
}

type Message struct {
	bun.BaseModel `bun:"table:messages"`

	ID           int64 `bun:",pk,autoincrement" json:"id"`
	ExpediteurID int64 `bun:",notnull" json:"expediteur_id"`
	Expediteur   *User `bun:"rel:belongs-to,join:expediteur_id=id" json:"expediteur,omitempty"`

	Objet     string    `json:"objet"`
	Contenu   string    `json:"contenu"`
	DateEnvoi time.Time `bun:",nullzero,notnull,default:current_timestamp" json:"date_envoi"`
	Statut    string    `bun:",notnull,default:'CREATED'" json:"statut"`
}

// Reception is the per-recipient delivery record of a message, with its own
// read/trash/archive state and optional folder placement.
type Reception struct {
	bun.BaseModel `bun:"table:receptions"`

	ID        int64    `bun:",pk,autoincrement" json:"id"`
	MessageID int64    `bun:",notnull" json:"message_id"`
	Message   *Message `bun:"rel:belongs-to,join:message_id=id" json:"message,omitempty"`

	DestinataireID int64 `bun:",notnull" json:"destinataire_id"`

	Etat string `bun:",notnull,default:'RECU'" json:"etat"`

	DossierID *int64   `json:"dossier_id"`
	Dossier   *Dossier `bun:"rel:belongs-to,join:dossier_id=id" json:"dossier,omitempty"`
}

type Dossier struct {
	bun.BaseModel `bun:"table:dossiers"`

	ID             int64  `bun:",pk,autoincrement" json:"id"`
	Nom            string `bun:",notnull" json:"nom"`
	ProprietaireID int64  `bun:",notnull" json:"proprietaire_id"`

	// Count of receptions filed in the dossier; computed, not stored.
	NombreMessages int64 `bun:"-" json:"nombre_messages"`
}

type Contact struct {
	bun.BaseModel `bun:"table:contacts"`

	ID             int64 `bun:",pk,autoincrement" json:"id"`
	ProprietaireID int64 `bun:",notnull" json:"proprietaire_id"`
	ContactID      int64 `bun:",notnull" json:"contact_id"`
	ContactUser    *User `bun:"rel:belongs-to,join:contact_id=id" json:"contact,omitempty"`
}

type PieceJointe struct {
	bun.BaseModel `bun:"table:pieces_jointes"`

	ID         int64  `bun:",pk,autoincrement" json:"id"`
	MessageID  int64  `bun:",notnull" json:"message_id"`
	NomFichier string `bun:",notnull" json:"nom_fichier"`

	// Storage location on disk, never exposed.
	CheminFichier string `bun:",notnull" json:"-"`
}

// Pagination is the envelope fragment returned by every paginated listing.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
}

func NewPagination(page, limit int, total int64) Pagination {
	pages := total / int64(limit)
	if total%int64(limit) != 0 {
		pages++
	}
	return Pagination{Page: page, Limit: limit, Total: total, TotalPages: pages}
}
