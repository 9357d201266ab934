package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/maxBezel/billpad/model"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrEmptySheet = errors.New("sheet has no rows")
)

// fixed width so archived_at sorts as text
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type Storage struct {
	db  *sql.DB
	now func() time.Time
}

func New(path string) (*Storage, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("cant open database %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("cant reach database %w", err)
	}

	return &Storage{db: db, now: func() time.Time { return time.Now().UTC() }}, nil
}

func (s *Storage) Close() error { return s.db.Close() }

func (s *Storage) Init(ctx context.Context) error {
	sheetsQ := `
	CREATE TABLE IF NOT EXISTS sheets (
		id          TEXT    PRIMARY KEY,
		chat_id     INTEGER NOT NULL,
		created_at  TEXT    NOT NULL,
		archived_at TEXT
	);`

	rowsQ := `
	CREATE TABLE IF NOT EXISTS sheet_rows (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		sheet_id    TEXT    NOT NULL
		REFERENCES sheets(id) ON DELETE CASCADE,
		chat_id     INTEGER NOT NULL,
		expression  TEXT    NOT NULL,
		result      REAL    NOT NULL,
		note        TEXT,
		created_at  TEXT    NOT NULL,
		created_by  INTEGER
	);`

	activeQ := `
	CREATE UNIQUE INDEX IF NOT EXISTS sheets_active
		ON sheets(chat_id) WHERE archived_at IS NULL;`

	if _, err := s.db.ExecContext(ctx, sheetsQ); err != nil {
		return fmt.Errorf("create sheets table: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, rowsQ); err != nil {
		return fmt.Errorf("create rows table: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, activeQ); err != nil {
		return fmt.Errorf("create active sheet index: %w", err)
	}

	return nil
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// ActiveSheet returns the chat's open sheet, creating one when there is
// none.
func (s *Storage) ActiveSheet(ctx context.Context, chatID int64) (*model.Sheet, error) {
	return s.activeSheet(ctx, s.db, chatID)
}

func (s *Storage) activeSheet(ctx context.Context, q querier, chatID int64) (*model.Sheet, error) {
	sh := &model.Sheet{ChatID: chatID}
	var created string
	err := q.QueryRowContext(ctx,
		`SELECT id, created_at FROM sheets WHERE chat_id = ? AND archived_at IS NULL`,
		chatID,
	).Scan(&sh.ID, &created)
	switch {
	case err == nil:
		sh.CreatedAt, err = time.Parse(timeLayout, created)
		if err != nil {
			return nil, fmt.Errorf("parse sheet time: %w", err)
		}
		return sh, nil
	case !errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("select active sheet: %w", err)
	}

	sh.ID = uuid.NewString()
	sh.CreatedAt = s.now()
	if _, err := q.ExecContext(ctx,
		`INSERT INTO sheets(id, chat_id, created_at) VALUES(?, ?, ?)`,
		sh.ID, chatID, sh.CreatedAt.Format(timeLayout),
	); err != nil {
		return nil, fmt.Errorf("insert sheet: %w", err)
	}
	return sh, nil
}

// AddRow appends row to the chat's active sheet and fills its ID and
// SheetID.
func (s *Storage) AddRow(ctx context.Context, row *model.Row) error {
	if row == nil {
		return fmt.Errorf("nil row")
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		sh, err := s.activeSheet(ctx, tx, row.ChatID)
		if err != nil {
			return err
		}
		if row.CreatedAt.IsZero() {
			row.CreatedAt = s.now()
		}
		res, err := tx.ExecContext(ctx,
			`INSERT INTO sheet_rows(sheet_id, chat_id, expression, result, note, created_at, created_by)
			 VALUES(?, ?, ?, ?, ?, ?, ?)`,
			sh.ID, row.ChatID, row.Expression, row.Result, row.Note,
			row.CreatedAt.UTC().Format(timeLayout), row.CreatedBy,
		)
		if err != nil {
			return fmt.Errorf("insert row: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("last insert id: %w", err)
		}
		row.ID = id
		row.SheetID = sh.ID
		return nil
	})
}

// GrandTotal sums the results on the chat's active sheet.
func (s *Storage) GrandTotal(ctx context.Context, chatID int64) (float64, error) {
	var total float64
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(r.result), 0)
		   FROM sheet_rows r JOIN sheets sh ON sh.id = r.sheet_id
		  WHERE sh.chat_id = ? AND sh.archived_at IS NULL`,
		chatID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("grand total: %w", err)
	}
	return total, nil
}

func (s *Storage) ListRows(ctx context.Context, chatID int64) ([]model.Row, error) {
	return s.queryRows(ctx,
		`SELECT r.id, r.sheet_id, r.chat_id, r.expression, r.result, COALESCE(r.note, ''), r.created_at, COALESCE(r.created_by, 0)
		   FROM sheet_rows r JOIN sheets sh ON sh.id = r.sheet_id
		  WHERE sh.chat_id = ? AND sh.archived_at IS NULL
		  ORDER BY r.id`,
		chatID,
	)
}

// ListSheetRows lists the rows of any sheet of the chat.
func (s *Storage) ListSheetRows(ctx context.Context, chatID int64, sheetID string) ([]model.Row, error) {
	return s.queryRows(ctx,
		`SELECT id, sheet_id, chat_id, expression, result, COALESCE(note, ''), created_at, COALESCE(created_by, 0)
		   FROM sheet_rows WHERE chat_id = ? AND sheet_id = ? ORDER BY id`,
		chatID, sheetID,
	)
}

func (s *Storage) queryRows(ctx context.Context, q string, args ...any) ([]model.Row, error) {
	rs, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("select rows: %w", err)
	}
	defer rs.Close()

	var out []model.Row
	for rs.Next() {
		var (
			r       model.Row
			created string
		)
		if err := rs.Scan(&r.ID, &r.SheetID, &r.ChatID, &r.Expression, &r.Result, &r.Note, &created, &r.CreatedBy); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if r.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
			return nil, fmt.Errorf("parse row time: %w", err)
		}
		out = append(out, r)
	}
	if err := rs.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}

// LastRow returns the newest row on the active sheet.
func (s *Storage) LastRow(ctx context.Context, chatID int64) (model.Row, error) {
	rows, err := s.ListRows(ctx, chatID)
	if err != nil {
		return model.Row{}, err
	}
	if len(rows) == 0 {
		return model.Row{}, ErrNotFound
	}
	return rows[len(rows)-1], nil
}

// DeleteRow removes a row from the chat's active sheet and returns it.
// Rows of archived sheets are read-only.
func (s *Storage) DeleteRow(ctx context.Context, chatID, rowID int64) (model.Row, error) {
	rows, err := s.ListRows(ctx, chatID)
	if err != nil {
		return model.Row{}, err
	}
	for _, r := range rows {
		if r.ID != rowID {
			continue
		}
		if _, err := s.db.ExecContext(ctx, `DELETE FROM sheet_rows WHERE id = ?`, rowID); err != nil {
			return model.Row{}, fmt.Errorf("delete row: %w", err)
		}
		return r, nil
	}
	return model.Row{}, fmt.Errorf("row %d: %w", rowID, ErrNotFound)
}

// ArchiveSheet closes the chat's active sheet and keeps only the newest
// limit archived sheets. A sheet with no rows is not archived.
func (s *Storage) ArchiveSheet(ctx context.Context, chatID int64, limit int) (*model.Sheet, error) {
	var archived *model.Sheet
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		sh, err := s.activeSheet(ctx, tx, chatID)
		if err != nil {
			return err
		}
		var n int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM sheet_rows WHERE sheet_id = ?`, sh.ID).Scan(&n); err != nil {
			return fmt.Errorf("count rows: %w", err)
		}
		if n == 0 {
			return ErrEmptySheet
		}
		if err := s.archive(ctx, tx, sh); err != nil {
			return err
		}
		archived = sh
		return prune(ctx, tx, chatID, limit)
	})
	if err != nil {
		return nil, err
	}
	return archived, nil
}

func (s *Storage) archive(ctx context.Context, tx *sql.Tx, sh *model.Sheet) error {
	at := s.now()
	if _, err := tx.ExecContext(ctx,
		`UPDATE sheets SET archived_at = ? WHERE id = ?`, at.Format(timeLayout), sh.ID,
	); err != nil {
		return fmt.Errorf("archive sheet: %w", err)
	}
	sh.ArchivedAt = &at
	return nil
}

func prune(ctx context.Context, tx *sql.Tx, chatID int64, limit int) error {
	_, err := tx.ExecContext(ctx,
		`DELETE FROM sheets WHERE id IN (
			SELECT id FROM sheets
			 WHERE chat_id = ? AND archived_at IS NOT NULL
			 ORDER BY archived_at DESC, rowid DESC
			 LIMIT -1 OFFSET ?)`,
		chatID, limit,
	)
	if err != nil {
		return fmt.Errorf("prune archive: %w", err)
	}
	return nil
}

// ListArchive lists archived sheets, newest first.
func (s *Storage) ListArchive(ctx context.Context, chatID int64) ([]model.SheetSummary, error) {
	rs, err := s.db.QueryContext(ctx,
		`SELECT sh.id, sh.created_at, sh.archived_at, COUNT(r.id), COALESCE(SUM(r.result), 0)
		   FROM sheets sh LEFT JOIN sheet_rows r ON r.sheet_id = sh.id
		  WHERE sh.chat_id = ? AND sh.archived_at IS NOT NULL
		  GROUP BY sh.id
		  ORDER BY sh.archived_at DESC, sh.rowid DESC`,
		chatID,
	)
	if err != nil {
		return nil, fmt.Errorf("select archive: %w", err)
	}
	defer rs.Close()

	var out []model.SheetSummary
	for rs.Next() {
		var (
			sum               model.SheetSummary
			created, archived string
		)
		if err := rs.Scan(&sum.ID, &created, &archived, &sum.Rows, &sum.Total); err != nil {
			return nil, fmt.Errorf("scan sheet: %w", err)
		}
		sum.ChatID = chatID
		if sum.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
			return nil, fmt.Errorf("parse sheet time: %w", err)
		}
		at, err := time.Parse(timeLayout, archived)
		if err != nil {
			return nil, fmt.Errorf("parse sheet time: %w", err)
		}
		sum.ArchivedAt = &at
		out = append(out, sum)
	}
	if err := rs.Err(); err != nil {
		return nil, fmt.Errorf("iterate archive: %w", err)
	}
	return out, nil
}

// RestoreSheet reopens an archived sheet for editing. The sheet that was
// active goes to the archive first when it has rows, and is dropped when it
// has none.
func (s *Storage) RestoreSheet(ctx context.Context, chatID int64, sheetID string, limit int) (*model.Sheet, error) {
	var restored *model.Sheet
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var created string
		err := tx.QueryRowContext(ctx,
			`SELECT created_at FROM sheets WHERE id = ? AND chat_id = ? AND archived_at IS NOT NULL`,
			sheetID, chatID,
		).Scan(&created)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("sheet %s: %w", sheetID, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("select sheet: %w", err)
		}

		cur, err := s.activeSheet(ctx, tx, chatID)
		if err != nil {
			return err
		}
		var n int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM sheet_rows WHERE sheet_id = ?`, cur.ID).Scan(&n); err != nil {
			return fmt.Errorf("count rows: %w", err)
		}
		if n == 0 {
			if _, err := tx.ExecContext(ctx, `DELETE FROM sheets WHERE id = ?`, cur.ID); err != nil {
				return fmt.Errorf("drop empty sheet: %w", err)
			}
		} else if err := s.archive(ctx, tx, cur); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `UPDATE sheets SET archived_at = NULL WHERE id = ?`, sheetID); err != nil {
			return fmt.Errorf("restore sheet: %w", err)
		}
		t, err := time.Parse(timeLayout, created)
		if err != nil {
			return fmt.Errorf("parse sheet time: %w", err)
		}
		restored = &model.Sheet{ID: sheetID, ChatID: chatID, CreatedAt: t}
		return prune(ctx, tx, chatID, limit)
	})
	if err != nil {
		return nil, err
	}
	return restored, nil
}

func (s *Storage) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
