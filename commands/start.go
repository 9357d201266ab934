package commands

import (
	"context"

	api "github.com/OvyFlash/telegram-bot-api"

	msgs "github.com/maxBezel/billpad/internal/messages"
)

func Start() Command {
	return Command{
		Name:        "start",
		Description: "Open the calculator keypad",
		Handle: func(ctx context.Context, d Deps, msg *api.Message) error {
			if _, err := d.Bot.Send(api.NewMessage(msg.Chat.ID, msgs.T(msgs.Start))); err != nil {
				return err
			}
			return sendPad(d, msg.Chat.ID, d.Pads.get(d, msg.Chat.ID).View())
		},
	}
}
