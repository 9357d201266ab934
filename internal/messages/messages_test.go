package messages

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestT(t *testing.T) {
	assert.Equal(t, "Nothing to undo", T(NothingToUndo))
	assert.Equal(t, "Total: 17.00", T(GrandTotal, "17.00"))
	assert.Equal(t, "Error", T(ID("missing")))
}

func TestEveryIDHasText(t *testing.T) {
	for _, id := range []ID{
		Start, NoExpression, KeyRejected, NotANumber, RowAdded, RowRemoved, RowReverted,
		NothingToUndo, SheetEmpty, SheetHeader, GrandTotal, SheetArchived, ArchiveEmpty,
		ArchiveHeader, ArchiveItem, SheetRestored, RestoreButton, UndoButton, NoShortcuts,
		ShortcutList, UnknownShortcut, UnknownCommand, UnknownAction, UnsuccessfulOperation,
	} {
		assert.Contains(t, eng, id)
	}
}
