package commands

import (
	"context"
	"errors"
	"strings"

	api "github.com/OvyFlash/telegram-bot-api"

	"github.com/maxBezel/billpad/calc"
	"github.com/maxBezel/billpad/edit"
	"github.com/maxBezel/billpad/exprsplit"
	msgs "github.com/maxBezel/billpad/internal/messages"
)

// Calc adds a typed line. Plain text without a command is routed here too.
func Calc() Command {
	return Command{
		Name:        "calc",
		Description: "Add a line: /calc <expression> [note]",
		Handle: func(ctx context.Context, d Deps, msg *api.Message) error {
			text := msg.CommandArguments()
			if msg.Command() == "" {
				text = msg.Text
			}
			return addLine(ctx, d, msg.Chat.ID, userID(msg), text)
		},
	}
}

// addLine feeds the expression through a fresh session key by key, so typed
// text obeys the same rules as the keypad, and commits it with the note.
func addLine(ctx context.Context, d Deps, chatID, user int64, text string) error {
	expression, note, err := exprsplit.Split(text)
	if err != nil {
		_, _ = d.Bot.Send(api.NewMessage(chatID, msgs.T(msgs.NoExpression)))
		return nil
	}

	l := newLine(ctx, d, chatID)
	l.userID, l.note = user, note
	if _, err := l.Type(strings.ReplaceAll(expression, "−", "-")); err != nil {
		if errors.Is(err, edit.ErrRejected) {
			_, _ = d.Bot.Send(api.NewMessage(chatID, msgs.T(msgs.NoExpression)))
			return nil
		}
		return err
	}

	e, err := l.Enter(ctx)
	switch {
	case errors.Is(err, calc.ErrNumeric):
		_, _ = d.Bot.Send(api.NewMessage(chatID, msgs.T(msgs.NotANumber)))
		return nil
	case err != nil:
		return err
	}
	d.Log.Debug().Int64("chat", chatID).Str("expression", e.Expression).Str("note", note).Msg("typed line added")
	return sendRow(ctx, d, chatID, e, l.lastRow, note)
}
