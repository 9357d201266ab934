package commands

import (
	"context"
	"slices"
	"strings"

	api "github.com/OvyFlash/telegram-bot-api"
	"github.com/rs/zerolog"

	msgs "github.com/maxBezel/billpad/internal/messages"
	"github.com/maxBezel/billpad/model"
	"github.com/maxBezel/billpad/session"
	"github.com/maxBezel/billpad/shortcuts"
)

type Bot interface {
	Send(c api.Chattable) (api.Message, error)
	Request(c api.Chattable) (*api.APIResponse, error)
}

type Storage interface {
	AddRow(ctx context.Context, row *model.Row) error
	GrandTotal(ctx context.Context, chatID int64) (float64, error)
	ListRows(ctx context.Context, chatID int64) ([]model.Row, error)
	LastRow(ctx context.Context, chatID int64) (model.Row, error)
	DeleteRow(ctx context.Context, chatID, rowID int64) (model.Row, error)
	ArchiveSheet(ctx context.Context, chatID int64, limit int) (*model.Sheet, error)
	ListArchive(ctx context.Context, chatID int64) ([]model.SheetSummary, error)
	RestoreSheet(ctx context.Context, chatID int64, sheetID string, limit int) (*model.Sheet, error)
}

type Deps struct {
	Bot          Bot
	Storage      Storage
	Shortcuts    *shortcuts.Set
	Options      session.Options
	ArchiveLimit int
	Pads         *Pads
	Log          zerolog.Logger
}

type Handler func(ctx context.Context, d Deps, msg *api.Message) error

type Command struct {
	Name        string
	Description string
	Hidden      bool
	Handle      Handler
}

type Registry struct {
	deps     Deps
	m        map[string]Command
	fallback string
}

// NewRegistry routes plain text, with no command, to the fallback command.
func NewRegistry(deps Deps, fallback string) *Registry {
	if deps.Pads == nil {
		deps.Pads = NewPads()
	}
	return &Registry{deps: deps, m: make(map[string]Command), fallback: fallback}
}

func (r *Registry) Register(cmd Command) { r.m[cmd.Name] = cmd }

func (r *Registry) Deps() Deps { return r.deps }

func (r *Registry) Handle(ctx context.Context, msg *api.Message) bool {
	if msg == nil || strings.TrimSpace(msg.Text) == "" {
		return false
	}
	name := msg.Command()

	c, ok := r.m[name]
	if !ok && name == "" {
		c, ok = r.m[r.fallback]
	}
	if !ok {
		_, _ = r.deps.Bot.Send(api.NewMessage(msg.Chat.ID, msgs.T(msgs.UnknownCommand, name)))
		return true
	}

	if err := c.Handle(ctx, r.deps, msg); err != nil {
		r.deps.Log.Error().Err(err).Str("command", c.Name).Int64("chat", msg.Chat.ID).Msg("command failed")
		_, _ = r.deps.Bot.Send(api.NewMessage(msg.Chat.ID, msgs.T(msgs.UnsuccessfulOperation)))
	}
	return true
}

func (r *Registry) BotCommands() []api.BotCommand {
	out := make([]api.BotCommand, 0, len(r.m))
	for _, c := range r.m {
		if c.Hidden {
			continue
		}
		out = append(out, api.BotCommand{Command: c.Name, Description: c.Description})
	}
	slices.SortFunc(out, func(a, b api.BotCommand) int { return strings.Compare(a.Command, b.Command) })
	return out
}
