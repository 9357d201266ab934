package commands

import (
	"context"
	"errors"

	api "github.com/OvyFlash/telegram-bot-api"

	msgs "github.com/maxBezel/billpad/internal/messages"
	"github.com/maxBezel/billpad/session"
	sqlite "github.com/maxBezel/billpad/storage"
)

// Clear archives the current sheet and resets the keypad line.
func Clear() Command {
	return Command{
		Name:        "clear",
		Description: "Archive the sheet and start a new one",
		Handle: func(ctx context.Context, d Deps, msg *api.Message) error {
			chatID := msg.Chat.ID

			rows, err := d.Storage.ListRows(ctx, chatID)
			if err != nil {
				return err
			}
			gt, err := d.Storage.GrandTotal(ctx, chatID)
			if err != nil {
				return err
			}

			d.Pads.drop(chatID)
			if _, err := d.Storage.ArchiveSheet(ctx, chatID, d.ArchiveLimit); err != nil {
				if errors.Is(err, sqlite.ErrEmptySheet) {
					_, _ = d.Bot.Send(api.NewMessage(chatID, msgs.T(msgs.SheetEmpty)))
					return nil
				}
				return err
			}

			reply := msgs.T(msgs.SheetArchived, len(rows), session.ResultText(d.Options.Format, gt))
			_, err = d.Bot.Send(api.NewMessage(chatID, reply))
			return err
		},
	}
}
