package models

import (
	"context"
	"database/sql"

	"github.com/mailboxapp/mailbox/internal/apperr"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

func CreateDossier(ctx context.Context, conn *bun.DB, dossier *Dossier) error {
	if _, err := conn.NewInsert().Model(dossier).Exec(ctx); err != nil {
		if apperr.IsUniqueConstraint(err) {
			return apperr.Validation("folder already exists")
		}
		return errors.Wrap(err, "could not create folder")
	}
	return nil
}

// FindDossierByID loads the dossier together with its computed message
// count.
func FindDossierByID(ctx context.Context, conn *bun.DB, id int64) (*Dossier, error) {
	dossier := &Dossier{}
	err := conn.NewSelect().Model(dossier).Where("id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("folder not found")
		}
		return nil, errors.Wrap(err, "could not query folder")
	}

	if err := fillDossierCount(ctx, conn, dossier); err != nil {
		return nil, err
	}
	return dossier, nil
}

// ListDossiersByProprietaire returns the owner's dossiers ordered by name,
// each with its message count.
func ListDossiersByProprietaire(ctx context.Context, conn *bun.DB, proprietaireID int64) ([]Dossier, error) {
	var dossiers []Dossier
	err := conn.NewSelect().
		Model(&dossiers).
		Where("proprietaire_id = ?", proprietaireID).
		Order("nom ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "could not query folders")
	}

	for i := range dossiers {
		if err := fillDossierCount(ctx, conn, &dossiers[i]); err != nil {
			return nil, err
		}
	}
	return dossiers, nil
}

func fillDossierCount(ctx context.Context, conn *bun.DB, dossier *Dossier) error {
	count, err := conn.NewSelect().
		Model((*Reception)(nil)).
		Where("dossier_id = ?", dossier.ID).
		Count(ctx)
	if err != nil {
		return errors.Wrap(err, "could not count folder messages")
	}
	dossier.NombreMessages = int64(count)
	return nil
}

func RenameDossier(ctx context.Context, conn *bun.DB, id int64, nom string) error {
	_, err := conn.NewUpdate().
		Model((*Dossier)(nil)).
		Set("nom = ?", nom).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		if apperr.IsUniqueConstraint(err) {
			return apperr.Validation("folder already exists")
		}
		return errors.Wrap(err, "could not rename folder")
	}
	return nil
}

// DeleteDossier unfiles every reception referencing the dossier, then
// removes the dossier row, in one transaction.
func DeleteDossier(ctx context.Context, conn *bun.DB, id int64) error {
	return conn.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewUpdate().
			Model((*Reception)(nil)).
			Set("dossier_id = NULL").
			Where("dossier_id = ?", id).
			Exec(ctx)
		if err != nil {
			return errors.Wrap(err, "could not unfile receptions")
		}

		_, err = tx.NewDelete().
			Model((*Dossier)(nil)).
			Where("id = ?", id).
			Exec(ctx)
		return errors.Wrap(err, "could not delete folder")
	})
}

func DossierBelongsToUser(ctx context.Context, conn *bun.DB, dossierID, userID int64) (bool, error) {
	exists, err := conn.NewSelect().
		Model((*Dossier)(nil)).
		Where("id = ?", dossierID).
		Where("proprietaire_id = ?", userID).
		Exists(ctx)
	if err != nil {
		return false, errors.Wrap(err, "could not query folder")
	}
	return exists, nil
}

// ListReceptionsByDossier pages through the receptions filed in a dossier,
// newest parent message first.
func ListReceptionsByDossier(ctx context.Context, conn *bun.DB, dossierID int64, page, limit int) ([]Reception, int64, error) {
	var receptions []Reception
	count, err := conn.NewSelect().
		Model(&receptions).
		Relation("Message").
		Relation("Message.Expediteur").
		Where("reception.dossier_id = ?", dossierID).
		Order("message.date_envoi DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		ScanAndCount(ctx)
	if err != nil {
		return nil, 0, errors.Wrap(err, "could not query folder messages")
	}
	return receptions, int64(count), nil
}

func CountDossiersByProprietaire(ctx context.Context, conn *bun.DB, proprietaireID int64) (int64, error) {
	count, err := conn.NewSelect().
		Model((*Dossier)(nil)).
		Where("proprietaire_id = ?", proprietaireID).
		Count(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "could not count folders")
	}
	return int64(count), nil
}

func CountDossiers(ctx context.Context, conn *bun.DB) (int64, error) {
	count, err := conn.NewSelect().Model((*Dossier)(nil)).Count(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "could not count folders")
	}
	return int64(count), nil
}
