package commands

import (
	"context"
	"errors"

	api "github.com/OvyFlash/telegram-bot-api"

	msgs "github.com/maxBezel/billpad/internal/messages"
	"github.com/maxBezel/billpad/session"
	sqlite "github.com/maxBezel/billpad/storage"
)

// Undo removes the newest row of the sheet.
func Undo() Command {
	return Command{
		Name:        "undo",
		Description: "Remove the last row",
		Handle: func(ctx context.Context, d Deps, msg *api.Message) error {
			chatID := msg.Chat.ID
			last, err := d.Storage.LastRow(ctx, chatID)
			if errors.Is(err, sqlite.ErrNotFound) {
				_, _ = d.Bot.Send(api.NewMessage(chatID, msgs.T(msgs.NothingToUndo)))
				return nil
			}
			if err != nil {
				return err
			}
			reply, err := removeRow(ctx, d, chatID, last.ID)
			if err != nil {
				return err
			}
			_, err = d.Bot.Send(api.NewMessage(chatID, reply))
			return err
		},
	}
}

func removeRow(ctx context.Context, d Deps, chatID, rowID int64) (string, error) {
	row, err := d.Storage.DeleteRow(ctx, chatID, rowID)
	if err != nil {
		return "", err
	}
	gt, err := d.Storage.GrandTotal(ctx, chatID)
	if err != nil {
		return "", err
	}
	f := d.Options.Format
	return msgs.T(msgs.RowRemoved, row.Expression, session.ResultText(f, row.Result), session.ResultText(f, gt)), nil
}
