package models

import (
	"context"
	"database/sql"
	"strings"

	"github.com/mailboxapp/mailbox/internal/apperr"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

// CreateContact links contactID into the owner's address book. The owner
// cannot add themselves, and a pair can only exist once.
func CreateContact(ctx context.Context, conn *bun.DB, contact *Contact) error {
	if contact.ProprietaireID == contact.ContactID {
		return apperr.Validation("cannot add yourself")
	}

	if _, err := conn.NewInsert().Model(contact).Exec(ctx); err != nil {
		if apperr.IsUniqueConstraint(err) {
			return apperr.Validation("contact already exists")
		}
		return errors.Wrap(err, "could not create contact")
	}
	return nil
}

// ListContactsByProprietaire pages through the owner's address book with the
// linked user loaded, ordered by the contact's name.
func ListContactsByProprietaire(ctx context.Context, conn *bun.DB, proprietaireID int64, page, limit int) ([]Contact, int64, error) {
	var contacts []Contact
	count, err := conn.NewSelect().
		Model(&contacts).
		Relation("ContactUser").
		Where("contact.proprietaire_id = ?", proprietaireID).
		Order("contact_user.nom ASC", "contact_user.prenom ASC").
		Limit(limit).
		Offset((page - 1) * limit).
		ScanAndCount(ctx)
	if err != nil {
		return nil, 0, errors.Wrap(err, "could not query contacts")
	}
	return contacts, int64(count), nil
}

func FindContactByID(ctx context.Context, conn *bun.DB, id int64) (*Contact, error) {
	contact := &Contact{}
	err := conn.NewSelect().
		Model(contact).
		Relation("ContactUser").
		Where("contact.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("contact not found")
		}
		return nil, errors.Wrap(err, "could not query contact")
	}
	return contact, nil
}

func DeleteContact(ctx context.Context, conn *bun.DB, id int64) error {
	_, err := conn.NewDelete().
		Model((*Contact)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return errors.Wrap(err, "could not delete contact")
}

// SearchContacts filters the owner's address book by the linked user's name
// or email, case-insensitively.
func SearchContacts(ctx context.Context, conn *bun.DB, proprietaireID int64, term string) ([]Contact, error) {
	pattern := "%" + strings.ToLower(term) + "%"

	var contacts []Contact
	err := conn.NewSelect().
		Model(&contacts).
		Relation("ContactUser").
		Where("contact.proprietaire_id = ?", proprietaireID).
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				Where("lower(contact_user.nom) LIKE ?", pattern).
				WhereOr("lower(contact_user.prenom) LIKE ?", pattern).
				WhereOr("lower(contact_user.email) LIKE ?", pattern)
		}).
		Order("contact_user.nom ASC", "contact_user.prenom ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "could not search contacts")
	}
	return contacts, nil
}

// IsContact reports whether contactID is already in the owner's address
// book.
func IsContact(ctx context.Context, conn *bun.DB, proprietaireID, contactID int64) (bool, error) {
	exists, err := conn.NewSelect().
		Model((*Contact)(nil)).
		Where("proprietaire_id = ?", proprietaireID).
		Where("contact_id = ?", contactID).
		Exists(ctx)
	if err != nil {
		return false, errors.Wrap(err, "could not query contact")
	}
	return exists, nil
}

func CountContactsByProprietaire(ctx context.Context, conn *bun.DB, proprietaireID int64) (int64, error) {
	count, err := conn.NewSelect().
		Model((*Contact)(nil)).
		Where("proprietaire_id = ?", proprietaireID).
		Count(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "could not count contacts")
	}
	return int64(count), nil
}

func CountContacts(ctx context.Context, conn *bun.DB) (int64, error) {
	count, err := conn.NewSelect().Model((*Contact)(nil)).Count(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "could not count contacts")
	}
	return int64(count), nil
}
