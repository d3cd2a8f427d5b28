package models

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

func CreatePieceJointe(ctx context.Context, conn *bun.DB, piece *PieceJointe) error {
	_, err := conn.NewInsert().Model(piece).Exec(ctx)
	return errors.Wrap(err, "could not create attachment")
}

func ListPiecesJointesByMessage(ctx context.Context, conn *bun.DB, messageID int64) ([]PieceJointe, error) {
	var pieces []PieceJointe
	err := conn.NewSelect().
		Model(&pieces).
		Where("message_id = ?", messageID).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "could not query attachments")
	}
	return pieces, nil
}
