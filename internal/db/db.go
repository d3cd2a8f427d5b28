package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/mailboxapp/mailbox/internal/models"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

// Open opens the sqlite database, applies the pragmas and pool limits the
// server runs with, and creates the schema if it does not exist yet.
func Open(path string) (*bun.DB, error) {
	sqldb, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}

	if err := sqldb.Ping(); err != nil {
		return nil, errors.Wrap(err, "failed to ping database")
	}

	// WAL mode allows readers to work while a writer is writing.
	if _, err := sqldb.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, errors.Wrap(err, "failed to enable WAL mode")
	}

	// Wait up to 5 seconds instead of failing with SQLITE_BUSY.
	if _, err := sqldb.Exec("PRAGMA busy_timeout=5000"); err != nil {
		return nil, errors.Wrap(err, "failed to set busy timeout")
	}

	// NORMAL is safe with WAL and faster than FULL.
	if _, err := sqldb.Exec("PRAGMA synchronous=NORMAL"); err != nil {
		return nil, errors.Wrap(err, "failed to set synchronous mode")
	}

	// Reception and contact rows reference users and messages; reference
	// errors must surface as constraint violations, not silent orphans.
	if _, err := sqldb.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, errors.Wrap(err, "failed to enable foreign keys")
	}

	sqldb.SetMaxOpenConns(25)
	sqldb.SetMaxIdleConns(5)
	sqldb.SetConnMaxLifetime(5 * time.Minute)

	conn := bun.NewDB(sqldb, sqlitedialect.New())

	if err := Migrate(context.Background(), conn); err != nil {
		return nil, errors.Wrap(err, "migration failed")
	}

	return conn, nil
}

// Migrate creates the tables and indexes. Tables are only ever created with
// the latest schema; there is no incremental migration support.
func Migrate(ctx context.Context, conn *bun.DB) error {
	tables := []any{
		(*models.User)(nil),
		(*models.Message)(nil),
		(*models.Dossier)(nil),
		(*models.Reception)(nil),
		(*models.Contact)(nil),
		(*models.PieceJointe)(nil),
	}
	for _, table := range tables {
		_, err := conn.NewCreateTable().
			Model(table).
			IfNotExists().
			WithForeignKeys().
			Exec(ctx)
		if err != nil {
			return errors.Wrap(err, "could not create table")
		}
	}

	type index struct {
		model   any
		name    string
		columns []string
		unique  bool
	}
	indexes := []index{
		{(*models.Reception)(nil), "idx_receptions_message_destinataire", []string{"message_id", "destinataire_id"}, true},
		{(*models.Reception)(nil), "idx_receptions_destinataire", []string{"destinataire_id"}, false},
		{(*models.Reception)(nil), "idx_receptions_dossier", []string{"dossier_id"}, false},
		{(*models.Message)(nil), "idx_messages_expediteur", []string{"expediteur_id", "date_envoi"}, false},
		{(*models.Dossier)(nil), "idx_dossiers_nom_proprietaire", []string{"nom", "proprietaire_id"}, true},
		{(*models.Contact)(nil), "idx_contacts_proprietaire_contact", []string{"proprietaire_id", "contact_id"}, true},
		{(*models.PieceJointe)(nil), "idx_pieces_jointes_message", []string{"message_id"}, false},
	}
	for _, idx := range indexes {
		q := conn.NewCreateIndex().
			Model(idx.model).
			Index(idx.name).
			Column(idx.columns...).
			IfNotExists()
		if idx.unique {
			q = q.Unique()
		}
		if _, err := q.Exec(ctx); err != nil {
			return errors.Wrap(err, "could not create index")
		}
	}

	return nil
}
