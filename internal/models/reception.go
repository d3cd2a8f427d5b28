package models

import (
	"context"
	"database/sql"

	"github.com/mailboxapp/mailbox/internal/apperr"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

func FindReceptionByID(ctx context.Context, conn *bun.DB, id int64) (*Reception, error) {
	reception := &Reception{}
	err := conn.NewSelect().
		Model(reception).
		Relation("Message").
		Relation("Message.Expediteur").
		Relation("Dossier").
		Where("reception.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("reception not found")
		}
		return nil, errors.Wrap(err, "could not query reception")
	}
	return reception, nil
}

// ListReceptionsByDestinataire pages through the recipient's mailbox, each
// row enriched with the parent message, its sender and the dossier, ordered
// by the parent message's send time, newest first.
func ListReceptionsByDestinataire(ctx context.Context, conn *bun.DB, destinataireID int64, etat string, page, limit int) ([]Reception, int64, error) {
	var receptions []Reception

	q := conn.NewSelect().
		Model(&receptions).
		Relation("Message").
		Relation("Message.Expediteur").
		Relation("Dossier").
		Where("reception.destinataire_id = ?", destinataireID)
	if etat != "" {
		q = q.Where("reception.etat = ?", etat)
	}

	count, err := q.
		Order("message.date_envoi DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		ScanAndCount(ctx)
	if err != nil {
		return nil, 0, errors.Wrap(err, "could not query receptions")
	}
	return receptions, int64(count), nil
}

// MarkReceptionRead promotes RECU to LU. Calling it on a reception that is
// already LU or beyond is a no-op.
func MarkReceptionRead(ctx context.Context, conn *bun.DB, id int64) error {
	_, err := conn.NewUpdate().
		Model((*Reception)(nil)).
		Set("etat = ?", EtatLu).
		Where("id = ?", id).
		Where("etat = ?", EtatRecu).
		Exec(ctx)
	return errors.Wrap(err, "could not mark reception read")
}

func UpdateReceptionEtat(ctx context.Context, conn *bun.DB, id int64, etat string) error {
	if !ValidEtat(etat) {
		return apperr.Validation("invalid state")
	}
	_, err := conn.NewUpdate().
		Model((*Reception)(nil)).
		Set("etat = ?", etat).
		Where("id = ?", id).
		Exec(ctx)
	return errors.Wrap(err, "could not update reception state")
}

// MoveReceptionToDossier files the reception into dossierID, or unfiles it
// when dossierID is nil.
func MoveReceptionToDossier(ctx context.Context, conn *bun.DB, id int64, dossierID *int64) error {
	_, err := conn.NewUpdate().
		Model((*Reception)(nil)).
		Set("dossier_id = ?", dossierID).
		Where("id = ?", id).
		Exec(ctx)
	return errors.Wrap(err, "could not move reception")
}

// MoveReceptionsToDossier files every listed reception owned by
// destinataireID into the dossier in one statement, silently skipping rows
// that belong to someone else. It returns the number of rows moved.
func MoveReceptionsToDossier(ctx context.Context, conn *bun.DB, dossierID, destinataireID int64, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, apperr.Validation("reception ids required")
	}

	result, err := conn.NewUpdate().
		Model((*Reception)(nil)).
		Set("dossier_id = ?", dossierID).
		Where("id IN (?)", bun.In(ids)).
		Where("destinataire_id = ?", destinataireID).
		Exec(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "could not move receptions")
	}

	moved, err := result.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "could not count moved receptions")
	}
	return moved, nil
}

func SoftDeleteReception(ctx context.Context, conn *bun.DB, id int64) error {
	_, err := conn.NewUpdate().
		Model((*Reception)(nil)).
		Set("etat = ?", EtatCorbeille).
		Where("id = ?", id).
		Exec(ctx)
	return errors.Wrap(err, "could not trash reception")
}

func DeleteReceptionPermanent(ctx context.Context, conn *bun.DB, id int64) error {
	_, err := conn.NewDelete().
		Model((*Reception)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return errors.Wrap(err, "could not delete reception")
}

func CountUnread(ctx context.Context, conn *bun.DB, destinataireID int64) (int64, error) {
	count, err := conn.NewSelect().
		Model((*Reception)(nil)).
		Where("destinataire_id = ?", destinataireID).
		Where("etat = ?", EtatRecu).
		Count(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "could not count unread receptions")
	}
	return int64(count), nil
}

// MarkAllRead marks every RECU reception of the recipient LU in a single
// statement, so a fault leaves either all rows updated or none.
func MarkAllRead(ctx context.Context, conn *bun.DB, destinataireID int64) (int64, error) {
	var marked int64

	err := conn.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		result, err := tx.NewUpdate().
			Model((*Reception)(nil)).
			Set("etat = ?", EtatLu).
			Where("destinataire_id = ?", destinataireID).
			Where("etat = ?", EtatRecu).
			Exec(ctx)
		if err != nil {
			return errors.Wrap(err, "could not mark receptions read")
		}
		marked, err = result.RowsAffected()
		return errors.Wrap(err, "could not count marked receptions")
	})
	if err != nil {
		return 0, err
	}
	return marked, nil
}

type ReceptionStats struct {
	Recus     int64 `json:"recus"`
	Lus       int64 `json:"lus"`
	NonLus    int64 `json:"non_lus"`
	Archives  int64 `json:"archives"`
	Corbeille int64 `json:"corbeille"`
	Total     int64 `json:"total"`
}

// CountReceptionStats breaks the recipient's mailbox down by etat. SUPPRIME
// rows are left out of every figure, including Total.
func CountReceptionStats(ctx context.Context, conn *bun.DB, destinataireID int64) (ReceptionStats, error) {
	stats := ReceptionStats{}

	count := func(etat string) (int64, error) {
		q := conn.NewSelect().Model((*Reception)(nil)).Where("destinataire_id = ?", destinataireID)
		if etat != "" {
			q = q.Where("etat = ?", etat)
		}
		n, err := q.Count(ctx)
		return int64(n), err
	}

	var err error
	if stats.Recus, err = count(EtatRecu); err != nil {
		return stats, errors.Wrap(err, "could not count receptions")
	}
	if stats.Lus, err = count(EtatLu); err != nil {
		return stats, errors.Wrap(err, "could not count receptions")
	}
	if stats.Archives, err = count(EtatArchive); err != nil {
		return stats, errors.Wrap(err, "could not count receptions")
	}
	if stats.Corbeille, err = count(EtatCorbeille); err != nil {
		return stats, errors.Wrap(err, "could not count receptions")
	}
	stats.NonLus = stats.Recus
	stats.Total = stats.Recus + stats.Lus + stats.Archives + stats.Corbeille
	return stats, nil
}

func CountReceptions(ctx context.Context, conn *bun.DB) (int64, error) {
	count, err := conn.NewSelect().Model((*Reception)(nil)).Count(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "could not count receptions")
	}
	return int64(count), nil
}
