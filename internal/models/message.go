package models

import (
	"context"
	"database/sql"

	"github.com/mailboxapp/mailbox/internal/apperr"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

// CreateMessage persists a composed message and, unless it is a draft, fans
// out one reception per recipient. Everything happens in one transaction:
// either the message and all its receptions exist afterwards, or nothing
// does.
func CreateMessage(ctx context.Context, conn *bun.DB, message *Message, destinataires []int64) error {
	return conn.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if message.Statut != StatutBrouillon {
			if err := checkDestinataires(ctx, tx, destinataires); err != nil {
				return err
			}
		}

		if _, err := tx.NewInsert().Model(message).Exec(ctx); err != nil {
			return errors.Wrap(err, "could not create message")
		}

		if message.Statut == StatutBrouillon {
			return nil
		}
		return createReceptions(ctx, tx, message.ID, destinataires)
	})
}

// SendDraft attaches recipients to a draft and promotes it to ENVOYE. The
// message must currently be a BROUILLON.
func SendDraft(ctx context.Context, conn *bun.DB, message *Message, destinataires []int64) error {
	if message.Statut != StatutBrouillon {
		return apperr.Validation("not a draft")
	}
	if len(destinataires) == 0 {
		return apperr.Validation("recipients required")
	}

	return conn.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := checkDestinataires(ctx, tx, destinataires); err != nil {
			return err
		}
		if err := createReceptions(ctx, tx, message.ID, destinataires); err != nil {
			return err
		}

		message.Statut = StatutEnvoye
		_, err := tx.NewUpdate().
			Model(message).
			Column("statut").
			WherePK().
			Exec(ctx)
		return errors.Wrap(err, "could not update message status")
	})
}

func checkDestinataires(ctx context.Context, tx bun.IDB, destinataires []int64) error {
	if len(destinataires) == 0 {
		return apperr.Validation("recipients required")
	}
	for _, id := range destinataires {
		exists, err := tx.NewSelect().Model((*User)(nil)).Where("id = ?", id).Exists(ctx)
		if err != nil {
			return errors.Wrap(err, "could not query recipient")
		}
		if !exists {
			return apperr.Validationf("recipient not found: %d", id)
		}
	}
	return nil
}

func createReceptions(ctx context.Context, tx bun.IDB, messageID int64, destinataires []int64) error {
	for _, id := range destinataires {
		reception := &Reception{
			MessageID:      messageID,
			DestinataireID: id,
			Etat:           EtatRecu,
		}
		if _, err := tx.NewInsert().Model(reception).Exec(ctx); err != nil {
			return errors.Wrap(err, "could not create reception")
		}
	}
	return nil
}

func FindMessageByID(ctx context.Context, conn *bun.DB, id int64) (*Message, error) {
	message := &Message{}
	err := conn.NewSelect().
		Model(message).
		Relation("Expediteur").
		Where("message.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("message not found")
		}
		return nil, errors.Wrap(err, "could not query message")
	}
	return message, nil
}

// ListMessagesByExpediteur pages through the sender's messages, newest
// first, optionally filtered by statut.
func ListMessagesByExpediteur(ctx context.Context, conn *bun.DB, expediteurID int64, statut string, page, limit int) ([]Message, int64, error) {
	var messages []Message

	q := conn.NewSelect().
		Model(&messages).
		Relation("Expediteur").
		Where("expediteur_id = ?", expediteurID)
	if statut != "" {
		q = q.Where("statut = ?", statut)
	}

	count, err := q.
		Order("date_envoi DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		ScanAndCount(ctx)
	if err != nil {
		return nil, 0, errors.Wrap(err, "could not query messages")
	}
	return messages, int64(count), nil
}

// UpdateMessage replaces the mutable columns of message.
func UpdateMessage(ctx context.Context, conn *bun.DB, message *Message) error {
	_, err := conn.NewUpdate().
		Model(message).
		Column("objet", "contenu", "statut").
		WherePK().
		Exec(ctx)
	return errors.Wrap(err, "could not update message")
}

// SoftDeleteMessage moves the message to the trash without removing it.
func SoftDeleteMessage(ctx context.Context, conn *bun.DB, id int64) error {
	_, err := conn.NewUpdate().
		Model((*Message)(nil)).
		Set("statut = ?", StatutCorbeille).
		Where("id = ?", id).
		Exec(ctx)
	return errors.Wrap(err, "could not trash message")
}

// DeleteMessagePermanent removes the message row together with its
// receptions and attachment rows, atomically. It returns the storage paths
// of the removed attachments so the caller can unlink the files.
func DeleteMessagePermanent(ctx context.Context, conn *bun.DB, id int64) ([]string, error) {
	var paths []string

	err := conn.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		err := tx.NewSelect().
			Model((*PieceJointe)(nil)).
			Column("chemin_fichier").
			Where("message_id = ?", id).
			Scan(ctx, &paths)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return errors.Wrap(err, "could not query attachments")
		}

		if _, err := tx.NewDelete().Model((*Reception)(nil)).Where("message_id = ?", id).Exec(ctx); err != nil {
			return errors.Wrap(err, "could not delete receptions")
		}
		if _, err := tx.NewDelete().Model((*PieceJointe)(nil)).Where("message_id = ?", id).Exec(ctx); err != nil {
			return errors.Wrap(err, "could not delete attachments")
		}
		if _, err := tx.NewDelete().Model((*Message)(nil)).Where("id = ?", id).Exec(ctx); err != nil {
			return errors.Wrap(err, "could not delete message")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}

type MessageStats struct {
	Total      int64 `json:"total"`
	Envoyes    int64 `json:"envoyes"`
	Brouillons int64 `json:"brouillons"`
	Corbeille  int64 `json:"corbeille"`
}

func CountMessageStats(ctx context.Context, conn *bun.DB, expediteurID int64) (MessageStats, error) {
	stats := MessageStats{}

	count := func(statut string) (int64, error) {
		q := conn.NewSelect().Model((*Message)(nil)).Where("expediteur_id = ?", expediteurID)
		if statut != "" {
			q = q.Where("statut = ?", statut)
		}
		n, err := q.Count(ctx)
		return int64(n), err
	}

	var err error
	if stats.Total, err = count(""); err != nil {
		return stats, errors.Wrap(err, "could not count messages")
	}
	if stats.Envoyes, err = count(StatutEnvoye); err != nil {
		return stats, errors.Wrap(err, "could not count messages")
	}
	if stats.Brouillons, err = count(StatutBrouillon); err != nil {
		return stats, errors.Wrap(err, "could not count messages")
	}
	if stats.Corbeille, err = count(StatutCorbeille); err != nil {
		return stats, errors.Wrap(err, "could not count messages")
	}
	return stats, nil
}

func CountMessages(ctx context.Context, conn *bun.DB) (int64, error) {
	count, err := conn.NewSelect().Model((*Message)(nil)).Count(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "could not count messages")
	}
	return int64(count), nil
}
