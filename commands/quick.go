package commands

import (
	"context"
	"errors"
	"strings"

	api "github.com/OvyFlash/telegram-bot-api"

	"github.com/maxBezel/billpad/calc"
	"github.com/maxBezel/billpad/edit"
	msgs "github.com/maxBezel/billpad/internal/messages"
	"github.com/maxBezel/billpad/shortcuts"
)

// Quick inserts the value of a configured shortcut into the keypad line.
func Quick() Command {
	return Command{
		Name:        "quick",
		Description: "Insert a shortcut value: /quick <name>",
		Handle: func(ctx context.Context, d Deps, msg *api.Message) error {
			chatID := msg.Chat.ID
			name := strings.TrimSpace(msg.CommandArguments())

			names := d.Shortcuts.Names()
			if name == "" {
				reply := msgs.T(msgs.NoShortcuts)
				if len(names) > 0 {
					reply = msgs.T(msgs.ShortcutList, strings.Join(names, ", "))
				}
				_, _ = d.Bot.Send(api.NewMessage(chatID, reply))
				return nil
			}

			l := d.Pads.get(d, chatID)
			gt, err := d.Storage.GrandTotal(ctx, chatID)
			if err != nil {
				return err
			}
			v, err := d.Shortcuts.Eval(name, shortcuts.Env{Total: gt, Value: l.View().Value})
			switch {
			case errors.Is(err, shortcuts.ErrUnknown):
				_, _ = d.Bot.Send(api.NewMessage(chatID, msgs.T(msgs.UnknownShortcut, name)))
				return nil
			case errors.Is(err, calc.ErrNumeric):
				_, _ = d.Bot.Send(api.NewMessage(chatID, msgs.T(msgs.NotANumber)))
				return nil
			case err != nil:
				return err
			}

			_, err = l.InsertOperand(v)
			if errors.Is(err, edit.ErrRejected) {
				_, _ = d.Bot.Send(api.NewMessage(chatID, msgs.T(msgs.KeyRejected, name)))
				return nil
			}
			if err != nil {
				return err
			}
			l.Flush()
			return sendPad(d, chatID, l.View())
		},
	}
}
