package commands

import (
	"context"
	"strings"

	api "github.com/OvyFlash/telegram-bot-api"

	msgs "github.com/maxBezel/billpad/internal/messages"
	"github.com/maxBezel/billpad/session"
)

const archiveTimeLayout = "02 Jan 2006 15:04"

func Archive() Command {
	return Command{
		Name:        "archive",
		Description: "List archived sheets",
		Handle: func(ctx context.Context, d Deps, msg *api.Message) error {
			chatID := msg.Chat.ID
			sheets, err := d.Storage.ListArchive(ctx, chatID)
			if err != nil {
				return err
			}

			if len(sheets) == 0 {
				_, _ = d.Bot.Send(api.NewMessage(chatID, msgs.T(msgs.ArchiveEmpty)))
				return nil
			}

			var b strings.Builder
			b.WriteString(msgs.T(msgs.ArchiveHeader))
			buttons := make([][]api.InlineKeyboardButton, 0, len(sheets))
			for i, sh := range sheets {
				b.WriteString(msgs.T(msgs.ArchiveItem,
					i+1, sh.ArchivedAt.Format(archiveTimeLayout), sh.Rows, session.ResultText(d.Options.Format, sh.Total)))
				btn := api.NewInlineKeyboardButtonData(msgs.T(msgs.RestoreButton, i+1), restorePrefix+sh.ID)
				buttons = append(buttons, api.NewInlineKeyboardRow(btn))
			}

			out := api.NewMessage(chatID, b.String())
			out.ParseMode = "HTML"
			out.ReplyMarkup = api.NewInlineKeyboardMarkup(buttons...)
			_, err = d.Bot.Send(out)
			return err
		},
	}
}
