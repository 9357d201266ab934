package commands

import (
	"context"
	"errors"
	"strconv"
	"strings"

	api "github.com/OvyFlash/telegram-bot-api"

	"github.com/maxBezel/billpad/calc"
	"github.com/maxBezel/billpad/edit"
	msgs "github.com/maxBezel/billpad/internal/messages"
	"github.com/maxBezel/billpad/session"
	sqlite "github.com/maxBezel/billpad/storage"
)

func HandleCallback(ctx context.Context, d Deps, cq *api.CallbackQuery) {
	if cq == nil || cq.Message == nil {
		return
	}
	data := cq.Data
	switch {
	case strings.HasPrefix(data, keyPrefix):
		handleKey(ctx, d, cq, strings.TrimPrefix(data, keyPrefix))
	case strings.HasPrefix(data, undoPrefix):
		handleUndo(ctx, d, cq, strings.TrimPrefix(data, undoPrefix))
	case strings.HasPrefix(data, restorePrefix):
		handleRestore(ctx, d, cq, strings.TrimPrefix(data, restorePrefix))
	default:
		_ = answerCB(d.Bot, cq, msgs.T(msgs.UnknownAction), true)
	}
}

func handleKey(ctx context.Context, d Deps, cq *api.CallbackQuery, key string) {
	chatID := cq.Message.Chat.ID
	var user int64
	if cq.From != nil {
		user = cq.From.ID
	}

	out, err := press(ctx, d, chatID, user, key)
	switch {
	case errors.Is(err, edit.ErrRejected):
		_ = answerCB(d.Bot, cq, msgs.T(msgs.KeyRejected, key), false)
		return
	case errors.Is(err, session.ErrEmpty):
		_ = answerCB(d.Bot, cq, "", false)
		return
	case errors.Is(err, calc.ErrNumeric):
		_ = answerCB(d.Bot, cq, msgs.T(msgs.NotANumber), true)
		return
	case errors.Is(err, errUnknownKey):
		_ = answerCB(d.Bot, cq, msgs.T(msgs.UnknownAction), true)
		return
	case err != nil:
		d.Log.Error().Err(err).Int64("chat", chatID).Str("key", key).Msg("keypad")
		_ = answerCB(d.Bot, cq, msgs.T(msgs.UnsuccessfulOperation), true)
		return
	}

	upd := api.NewEditMessageTextAndMarkup(chatID, cq.Message.MessageID, display(out.view), keypad())
	upd.ParseMode = "HTML"
	// telegram refuses an edit that changes nothing, e.g. a move at the edge
	_, _ = d.Bot.Send(upd)

	if out.entry != nil {
		if err := sendRow(ctx, d, chatID, *out.entry, out.row, ""); err != nil {
			d.Log.Error().Err(err).Int64("chat", chatID).Msg("report committed row")
		}
	}
	_ = answerCB(d.Bot, cq, "", false)
}

func handleUndo(ctx context.Context, d Deps, cq *api.CallbackQuery, data string) {
	rowID, err := strconv.ParseInt(data, 10, 64)
	if err != nil {
		_ = answerCB(d.Bot, cq, msgs.T(msgs.UnknownAction), true)
		return
	}

	chatID := cq.Message.Chat.ID
	reply, err := removeRow(ctx, d, chatID, rowID)
	if errors.Is(err, sqlite.ErrNotFound) {
		_ = answerCB(d.Bot, cq, msgs.T(msgs.NothingToUndo), true)
		return
	}
	if err != nil {
		d.Log.Error().Err(err).Int64("chat", chatID).Int64("row", rowID).Msg("undo")
		_ = answerCB(d.Bot, cq, msgs.T(msgs.UnsuccessfulOperation), true)
		return
	}
	_ = answerCB(d.Bot, cq, "", false)

	upd := api.NewEditMessageText(chatID, cq.Message.MessageID, cq.Message.Text+msgs.T(msgs.RowReverted))
	_, _ = d.Bot.Send(upd)

	out := api.NewMessage(chatID, reply)
	out.ReplyParameters.MessageID = cq.Message.MessageID
	_, _ = d.Bot.Send(out)
}

func handleRestore(ctx context.Context, d Deps, cq *api.CallbackQuery, sheetID string) {
	chatID := cq.Message.Chat.ID
	if _, err := d.Storage.RestoreSheet(ctx, chatID, sheetID, d.ArchiveLimit); err != nil {
		if errors.Is(err, sqlite.ErrNotFound) {
			_ = answerCB(d.Bot, cq, msgs.T(msgs.UnknownAction), true)
			return
		}
		d.Log.Error().Err(err).Int64("chat", chatID).Str("sheet", sheetID).Msg("restore")
		_ = answerCB(d.Bot, cq, msgs.T(msgs.UnsuccessfulOperation), true)
		return
	}
	d.Pads.drop(chatID)

	gt, err := d.Storage.GrandTotal(ctx, chatID)
	if err != nil {
		d.Log.Error().Err(err).Int64("chat", chatID).Msg("read grand total")
	}
	_ = answerCB(d.Bot, cq, "", false)
	_, _ = d.Bot.Send(api.NewMessage(chatID, msgs.T(msgs.SheetRestored, session.ResultText(d.Options.Format, gt))))
}

func answerCB(bot Bot, cq *api.CallbackQuery, text string, alert bool) error {
	cb := api.NewCallback(cq.ID, text)
	if alert {
		cb.ShowAlert = true
	}

	_, err := bot.Request(cb)
	return err
}
