package models

import (
	"context"
	"database/sql"
	"strings"

	"github.com/mailboxapp/mailbox/internal/apperr"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

func CreateUser(ctx context.Context, conn *bun.DB, user *User) error {
	if _, err := conn.NewInsert().Model(user).Exec(ctx); err != nil {
		if apperr.IsUniqueConstraint(err) {
			return apperr.Validation("email already registered")
		}
		return errors.Wrap(err, "could not create user")
	}
	return nil
}

// FindUserByEmail returns the user including the password hash; it backs the
// login flow.
func FindUserByEmail(ctx context.Context, conn *bun.DB, email string) (*User, error) {
	user := &User{}
	err := conn.NewSelect().Model(user).Where("email = ?", email).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, errors.Wrap(err, "could not query user")
	}
	return user, nil
}

func FindUserByID(ctx context.Context, conn *bun.DB, id int64) (*User, error) {
	user := &User{}
	err := conn.NewSelect().Model(user).Where("id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, errors.Wrap(err, "could not query user")
	}
	return user, nil
}

func UserExists(ctx context.Context, conn *bun.DB, id int64) (bool, error) {
	exists, err := conn.NewSelect().Model((*User)(nil)).Where("id = ?", id).Exists(ctx)
	if err != nil {
		return false, errors.Wrap(err, "could not query user")
	}
	return exists, nil
}

// UpdateUserProfile replaces the profile columns of user. The password hash
// is left untouched.
func UpdateUserProfile(ctx context.Context, conn *bun.DB, user *User) error {
	_, err := conn.NewUpdate().
		Model(user).
		Column("nom", "prenom", "email", "telephone_mobile", "photo_profil").
		WherePK().
		Exec(ctx)
	if err != nil {
		if apperr.IsUniqueConstraint(err) {
			return apperr.Validation("email already registered")
		}
		return errors.Wrap(err, "could not update user")
	}
	return nil
}

func UpdateUserPassword(ctx context.Context, conn *bun.DB, id int64, hash string) error {
	result, err := conn.NewUpdate().
		Model((*User)(nil)).
		Set("mot_de_passe = ?", hash).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, "could not update password")
	}
	if count, err := result.RowsAffected(); err == nil && count == 0 {
		return apperr.NotFound("user not found")
	}
	return nil
}

// SearchUsers finds users other than excludeID whose name or email contains
// term, case-insensitively.
func SearchUsers(ctx context.Context, conn *bun.DB, excludeID int64, term string) ([]User, error) {
	pattern := "%" + strings.ToLower(term) + "%"

	var users []User
	err := conn.NewSelect().
		Model(&users).
		Where("id != ?", excludeID).
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				Where("lower(nom) LIKE ?", pattern).
				WhereOr("lower(prenom) LIKE ?", pattern).
				WhereOr("lower(email) LIKE ?", pattern)
		}).
		Order("nom ASC", "prenom ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "could not search users")
	}
	return users, nil
}

func CountUsers(ctx context.Context, conn *bun.DB) (int64, error) {
	count, err := conn.NewSelect().Model((*User)(nil)).Count(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "could not count users")
	}
	return int64(count), nil
}
