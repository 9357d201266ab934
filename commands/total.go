package commands

import (
	"context"
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	api "github.com/OvyFlash/telegram-bot-api"

	msgs "github.com/maxBezel/billpad/internal/messages"
	"github.com/maxBezel/billpad/model"
	"github.com/maxBezel/billpad/numfmt"
	"github.com/maxBezel/billpad/session"
)

func Total() Command {
	return Command{
		Name:        "total",
		Description: "Show the rows and the grand total",
		Handle: func(ctx context.Context, d Deps, msg *api.Message) error {
			chatID := msg.Chat.ID

			rows, err := d.Storage.ListRows(ctx, chatID)
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				_, _ = d.Bot.Send(api.NewMessage(chatID, msgs.T(msgs.SheetEmpty)))
				return nil
			}

			gt, err := d.Storage.GrandTotal(ctx, chatID)
			if err != nil {
				return err
			}

			out := api.NewMessage(chatID, sheetTable(d.Options.Format, rows, gt))
			out.ParseMode = "HTML"
			_, err = d.Bot.Send(out)
			return err
		},
	}
}

// sheetTable lays the rows out as a monospace table with right-aligned
// results.
func sheetTable(f numfmt.Formatter, rows []model.Row, gt float64) string {
	formatted := make([]string, len(rows))
	maxw := 0
	for i, r := range rows {
		s := session.ResultText(f, r.Result)
		formatted[i] = s
		if w := utf8.RuneCountInString(s); w > maxw {
			maxw = w
		}
	}

	var b strings.Builder
	b.WriteString(msgs.T(msgs.SheetHeader))
	b.WriteString("<pre>")
	for i, r := range rows {
		amt := formatted[i]
		if pad := maxw - utf8.RuneCountInString(amt); pad > 0 {
			b.WriteString(strings.Repeat(" ", pad))
		}
		b.WriteString(amt)
		b.WriteString("  ")
		b.WriteString(html.EscapeString(r.Expression))
		if r.Note != "" {
			fmt.Fprintf(&b, " · %s", html.EscapeString(r.Note))
		}
		b.WriteByte('\n')
	}
	b.WriteString("</pre>")
	b.WriteString(msgs.T(msgs.GrandTotal, session.ResultText(f, gt)))
	return b.String()
}
