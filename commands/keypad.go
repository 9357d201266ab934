package commands

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	api "github.com/OvyFlash/telegram-bot-api"

	msgs "github.com/maxBezel/billpad/internal/messages"
	"github.com/maxBezel/billpad/model"
	"github.com/maxBezel/billpad/session"
)

const (
	keyPrefix     = "key:"
	undoPrefix    = "undo:"
	restorePrefix = "restore:"

	caretGlyph = "▏"
)

var errUnknownKey = errors.New("unknown key")

// Pads holds the open keypad line of every chat. Updates are handled one at
// a time, so Pads is not locked.
type Pads struct {
	m map[int64]*line
}

func NewPads() *Pads { return &Pads{m: make(map[int64]*line)} }

func (p *Pads) get(d Deps, chatID int64) *line {
	if l, ok := p.m[chatID]; ok {
		return l
	}
	l := newLine(context.Background(), d, chatID)
	p.m[chatID] = l
	return l
}

func (p *Pads) drop(chatID int64) { delete(p.m, chatID) }

// line binds a calculator session to a chat's sheet: the grand total is
// read from it and commits are written to it.
type line struct {
	*session.Session
	chatID  int64
	userID  int64
	note    string
	lastRow int64
}

func newLine(ctx context.Context, d Deps, chatID int64) *line {
	l := &line{chatID: chatID}
	total := func() float64 {
		gt, err := d.Storage.GrandTotal(ctx, chatID)
		if err != nil {
			d.Log.Error().Err(err).Int64("chat", chatID).Msg("read grand total")
			return 0
		}
		return gt
	}
	sink := session.CommitFunc(func(ctx context.Context, expression string, result float64) error {
		row := model.NewRow(chatID, expression, result, l.note, l.userID)
		if err := d.Storage.AddRow(ctx, row); err != nil {
			return err
		}
		l.lastRow = row.ID
		return nil
	})
	l.Session = session.New(total, sink, d.Options)
	return l
}

var keypadRows = [][]string{
	{"7", "8", "9", "÷"},
	{"4", "5", "6", "×"},
	{"1", "2", "3", "-"},
	{"0", ".", "%", "+"},
	{"◀", "▶", "⌫", "="},
	{"C", "✓"},
}

var keyAliases = map[string]string{
	"◀": "<",
	"▶": ">",
	"⌫": "bs",
	"C": "clr",
	"✓": "ok",
}

func keypad() api.InlineKeyboardMarkup {
	rows := make([][]api.InlineKeyboardButton, 0, len(keypadRows))
	for _, labels := range keypadRows {
		row := make([]api.InlineKeyboardButton, 0, len(labels))
		for _, label := range labels {
			key := label
			if alias, ok := keyAliases[label]; ok {
				key = alias
			}
			row = append(row, api.NewInlineKeyboardButtonData(label, keyPrefix+key))
		}
		rows = append(rows, api.NewInlineKeyboardRow(row...))
	}
	return api.NewInlineKeyboardMarkup(rows...)
}

// display shows the rendered line with the caret and the running value.
func display(v session.View) string {
	rs := []rune(v.Text)
	c := min(max(v.Caret, 0), len(rs))
	preview := v.Preview
	if preview == "" {
		preview = "0.00"
	}
	var b strings.Builder
	b.WriteString("<pre>")
	b.WriteString(html.EscapeString(string(rs[:c])))
	b.WriteString(caretGlyph)
	b.WriteString(html.EscapeString(string(rs[c:])))
	b.WriteString("\n= ")
	b.WriteString(html.EscapeString(preview))
	b.WriteString("</pre>")
	return b.String()
}

func sendPad(d Deps, chatID int64, v session.View) error {
	out := api.NewMessage(chatID, display(v))
	out.ParseMode = "HTML"
	out.ReplyMarkup = keypad()
	_, err := d.Bot.Send(out)
	return err
}

type keyOutcome struct {
	view  session.View
	entry *session.Entry
	row   int64
}

// press applies one keypad key to the chat's line.
func press(ctx context.Context, d Deps, chatID, userID int64, key string) (keyOutcome, error) {
	l := d.Pads.get(d, chatID)
	defer l.Flush()

	var (
		v   session.View
		err error
	)
	switch key {
	case "bs":
		v, err = l.Backspace()
	case "clr":
		v = l.Clear()
	case "<":
		v = l.Move(-1)
	case ">":
		v = l.Move(1)
	case "ok":
		l.userID, l.note = userID, ""
		e, err := l.Enter(ctx)
		if err != nil {
			return keyOutcome{view: l.View()}, err
		}
		return keyOutcome{view: l.View(), entry: &e, row: l.lastRow}, nil
	default:
		rs := []rune(key)
		if len(rs) != 1 {
			return keyOutcome{view: l.View()}, fmt.Errorf("%w: %q", errUnknownKey, key)
		}
		v, err = l.Press(rs[0])
	}
	return keyOutcome{view: v}, err
}

// sendRow reports a committed line with an undo button.
func sendRow(ctx context.Context, d Deps, chatID int64, e session.Entry, rowID int64, note string) error {
	gt, err := d.Storage.GrandTotal(ctx, chatID)
	if err != nil {
		return err
	}
	expr := e.Expression
	if note != "" {
		expr += " · " + note
	}
	out := api.NewMessage(chatID, msgs.T(msgs.RowAdded, expr, e.Display, session.ResultText(d.Options.Format, gt)))
	btn := api.NewInlineKeyboardButtonData(msgs.T(msgs.UndoButton), fmt.Sprintf("%s%d", undoPrefix, rowID))
	out.ReplyMarkup = api.NewInlineKeyboardMarkup(api.NewInlineKeyboardRow(btn))
	_, err = d.Bot.Send(out)
	return err
}

func userID(msg *api.Message) int64 {
	if msg.From == nil {
		return 0
	}
	return msg.From.ID
}
