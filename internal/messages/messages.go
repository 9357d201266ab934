package messages

import (
	"fmt"

	"github.com/rs/zerolog/log"
)

type ID string

const (
	Start                 ID = "start"
	NoExpression          ID = "no_expression"
	KeyRejected           ID = "key_rejected"
	NotANumber            ID = "not_a_number"
	RowAdded              ID = "row_added"
	RowRemoved            ID = "row_removed"
	RowReverted           ID = "row_reverted"
	NothingToUndo         ID = "nothing_to_undo"
	SheetEmpty            ID = "sheet_empty"
	SheetHeader           ID = "sheet_header"
	GrandTotal            ID = "grand_total"
	SheetArchived         ID = "sheet_archived"
	ArchiveEmpty          ID = "archive_empty"
	ArchiveHeader         ID = "archive_header"
	ArchiveItem           ID = "archive_item"
	SheetRestored         ID = "sheet_restored"
	RestoreButton         ID = "restore_button"
	UndoButton            ID = "undo_button"
	NoShortcuts           ID = "no_shortcuts"
	ShortcutList          ID = "shortcut_list"
	UnknownShortcut       ID = "unknown_shortcut"
	UnknownCommand        ID = "unknown_command"
	UnknownAction         ID = "unknown_action"
	UnsuccessfulOperation ID = "unsuccessful_operation"
)

var eng = map[ID]string{
	Start:                 "Billpad keeps a running total. Tap the keypad, or send a line such as 1,250 + 18% lunch.",
	NoExpression:          "Could not read an expression. Usage: /calc <expression> [note]",
	KeyRejected:           "%s cannot go there",
	NotANumber:            "The result is not a number",
	RowAdded:              "%s = %s\nTotal: %s",
	RowRemoved:            "Removed %s = %s\nTotal: %s",
	RowReverted:           "\n\nReverted ✅",
	NothingToUndo:         "Nothing to undo",
	SheetEmpty:            "The sheet is empty",
	SheetHeader:           "<b>Current sheet:</b>\n",
	GrandTotal:            "Total: %s",
	SheetArchived:         "Sheet archived: %d rows, total %s",
	ArchiveEmpty:          "No archived sheets",
	ArchiveHeader:         "<b>Archived sheets:</b>\n",
	ArchiveItem:           "%d) %s · %d rows · %s\n",
	SheetRestored:         "Sheet restored. Total: %s",
	RestoreButton:         "Restore %d",
	UndoButton:            "↩️ Undo",
	NoShortcuts:           "No shortcuts configured",
	ShortcutList:          "Shortcuts: %s",
	UnknownShortcut:       "Unknown shortcut %s",
	UnknownCommand:        "Unknown command /%s",
	UnknownAction:         "Unknown action",
	UnsuccessfulOperation: "Could not complete the operation",
}

func T(id ID, args ...any) string {
	reply, ok := eng[id]
	if !ok {
		log.Warn().Str("id", string(id)).Msg("missing text")
		return "Error"
	}

	if len(args) == 0 {
		return reply
	}

	return fmt.Sprintf(reply, args...)
}
