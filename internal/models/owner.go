package models

import (
	"context"
	"database/sql"

	"github.com/mailboxapp/mailbox/internal/apperr"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

// Ownership resolvers back the per-route ownership checks. Each one maps a
// resource id to the user id allowed to act on it.

type MessageOwner struct {
	DB *bun.DB
}

func (o MessageOwner) OwnerID(ctx context.Context, id int64) (int64, error) {
	var ownerID int64
	err := o.DB.NewSelect().
		Model((*Message)(nil)).
		Column("expediteur_id").
		Where("id = ?", id).
		Scan(ctx, &ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, apperr.NotFound("message not found")
		}
		return 0, errors.Wrap(err, "could not query message")
	}
	return ownerID, nil
}

type ReceptionOwner struct {
	DB *bun.DB
}

func (o ReceptionOwner) OwnerID(ctx context.Context, id int64) (int64, error) {
	var ownerID int64
	err := o.DB.NewSelect().
		Model((*Reception)(nil)).
		Column("destinataire_id").
		Where("id = ?", id).
		Scan(ctx, &ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, apperr.NotFound("reception not found")
		}
		return 0, errors.Wrap(err, "could not query reception")
	}
	return ownerID, nil
}

type DossierOwner struct {
	DB *bun.DB
}

func (o DossierOwner) OwnerID(ctx context.Context, id int64) (int64, error) {
	var ownerID int64
	err := o.DB.NewSelect().
		Model((*Dossier)(nil)).
		Column("proprietaire_id").
		Where("id = ?", id).
		Scan(ctx, &ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, apperr.NotFound("folder not found")
		}
		return 0, errors.Wrap(err, "could not query folder")
	}
	return ownerID, nil
}

type ContactOwner struct {
	DB *bun.DB
}

func (o ContactOwner) OwnerID(ctx context.Context, id int64) (int64, error) {
	var ownerID int64
	err := o.DB.NewSelect().
		Model((*Contact)(nil)).
		Column("proprietaire_id").
		Where("id = ?", id).
		Scan(ctx, &ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, apperr.NotFound("contact not found")
		}
		return 0, errors.Wrap(err, "could not query contact")
	}
	return ownerID, nil
}
