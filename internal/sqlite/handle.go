// Package sqlite implements the SQLite storage layer for codex: the engine
// adapter, the generic entity base, the table mappings, association
// reconciliation and workspace save/load.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	_ "modernc.org/sqlite"

	"github.com/jacoblehr/codex/pkg/types"
)

// driverName is the database/sql name registered by modernc.org/sqlite.
const driverName = "sqlite"

// Querier is the subset of *sql.DB and *sql.Tx used by entity operations.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

// Params binds named statement parameters. A key "uri" binds the
// placeholder @uri.
type Params map[string]any

// args converts p to database/sql named arguments in key order.
func (p Params) args() []any {
	if len(p) == 0 {
		return nil
	}
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]any, 0, len(keys))
	for _, k := range keys {
		out = append(out, sql.Named(k, p[k]))
	}
	return out
}

// Result reports the effect of a mutating statement.
type Result struct {
	LastInsertID int64
	RowsAffected int64
}

// Statement is a prepared, parameterized statement.
type Statement struct {
	text string
	stmt *sql.Stmt
}

// prepare compiles tmpl against q.
func prepare(ctx context.Context, q Querier, tmpl string) (*Statement, error) {
	stmt, err := q.PrepareContext(ctx, tmpl)
	if err != nil {
		return nil, fmt.Errorf("preparing statement: %w", err)
	}
	return &Statement{text: tmpl, stmt: stmt}, nil
}

// Run executes a mutating statement.
func (s *Statement) Run(ctx context.Context, params Params) (Result, error) {
	res, err := s.stmt.ExecContext(ctx, params.args()...)
	if err != nil {
		return Result{}, classify(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Result{}, fmt.Errorf("reading last insert id: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return Result{}, fmt.Errorf("reading rows affected: %w", err)
	}
	return Result{LastInsertID: id, RowsAffected: n}, nil
}

// Get executes a single-row read. Errors, including sql.ErrNoRows, are
// reported by the returned row's Scan.
func (s *Statement) Get(ctx context.Context, params Params) *sql.Row {
	return s.stmt.QueryRowContext(ctx, params.args()...)
}

// All executes a multi-row read. The caller must close the rows.
func (s *Statement) All(ctx context.Context, params Params) (*sql.Rows, error) {
	rows, err := s.stmt.QueryContext(ctx, params.args()...)
	if err != nil {
		return nil, classify(err)
	}
	return rows, nil
}

// Close releases the prepared statement.
func (s *Statement) Close() error {
	return s.stmt.Close()
}

// Handle wraps one SQLite database. All statements run on a single pinned
// connection, so an in-memory database lives as long as the handle and
// statement execution is serialized.
type Handle struct {
	db     *sql.DB
	target string
	// scratch is a private directory removed on Close. It is set when the
	// handle was restored through a temporary file.
	scratch string
}

// Open opens target, which is types.MemoryTarget or a file path, and
// enables foreign key enforcement.
func Open(ctx context.Context, target string) (*Handle, error) {
	if target == "" {
		return nil, types.ErrDatabaseEmpty
	}
	db, err := sql.Open(driverName, target)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", target, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}
	return &Handle{db: db, target: target}, nil
}

// Target returns the database target the handle was opened with.
func (h *Handle) Target() string {
	return h.target
}

// DB returns the underlying pool for read-only use by callers that do not
// need a transaction.
func (h *Handle) DB() *sql.DB {
	return h.db
}

// Exec runs one or more schema statements.
func (h *Handle) Exec(ctx context.Context, ddl string) error {
	if _, err := h.db.ExecContext(ctx, ddl); err != nil {
		return classify(err)
	}
	return nil
}

// Prepare compiles a statement against the handle.
func (h *Handle) Prepare(ctx context.Context, tmpl string) (*Statement, error) {
	return prepare(ctx, h.db, tmpl)
}

// Begin starts a transaction on the pinned connection. Until the
// transaction ends, every statement must go through it.
func (h *Handle) Begin(ctx context.Context) (*sql.Tx, error) {
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	return tx, nil
}

// Close closes the database and removes any scratch files.
func (h *Handle) Close() error {
	err := h.db.Close()
	if h.scratch != "" {
		if rmErr := os.RemoveAll(h.scratch); rmErr != nil && err == nil {
			err = rmErr
		}
	}
	return err
}

// serializer is implemented by the modernc.org/sqlite driver connection.
type serializer interface {
	Serialize() ([]byte, error)
}

var errRawUnsupported = errors.New("driver connection does not support the operation")

// raw runs fn against the driver connection. The connection is released
// before raw returns.
func (h *Handle) raw(ctx context.Context, fn func(driverConn any) error) error {
	conn, err := h.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquiring connection: %w", err)
	}
	defer conn.Close()
	return conn.Raw(fn)
}

// Serialize returns the full contents of the database as bytes.
func (h *Handle) Serialize(ctx context.Context) ([]byte, error) {
	var buf []byte
	err := h.raw(ctx, func(driverConn any) error {
		s, ok := driverConn.(serializer)
		if !ok {
			return errRawUnsupported
		}
		b, err := s.Serialize()
		if err != nil {
			return err
		}
		buf = b
		return nil
	})
	if errors.Is(err, errRawUnsupported) {
		return h.serializeViaVacuum(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("serializing database: %w", err)
	}
	return buf, nil
}

// serializeViaVacuum snapshots the database into a temporary file and
// reads it back.
func (h *Handle) serializeViaVacuum(ctx context.Context) ([]byte, error) {
	dir, err := os.MkdirTemp("", "codex-snapshot-*")
	if err != nil {
		return nil, fmt.Errorf("creating snapshot dir: %w", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "snapshot.db")
	if _, err := h.db.ExecContext(ctx, "VACUUM INTO ?", path); err != nil {
		return nil, fmt.Errorf("vacuum into snapshot: %w", err)
	}
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	return buf, nil
}

// LoadFromBuffer opens a new handle holding the database in buf. The
// contents live in a private scratch file that is removed on Close, so the
// handle behaves like an in-memory database and reports
// types.MemoryTarget.
func LoadFromBuffer(ctx context.Context, buf []byte) (*Handle, error) {
	if len(buf) == 0 {
		return nil, types.ErrEmptySnapshot
	}
	dir, err := os.MkdirTemp("", "codex-restore-*")
	if err != nil {
		return nil, fmt.Errorf("creating restore dir: %w", err)
	}
	path := filepath.Join(dir, "workspace.db")
	if err := os.WriteFile(path, buf, 0o600); err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("writing restore file: %w", err)
	}
	h, err := Open(ctx, path)
	if err != nil {
		os.RemoveAll(dir)
		return nil, err
	}
	h.target = types.MemoryTarget
	h.scratch = dir

	// A buffer that is not a database only fails on first read.
	var n int
	if err := h.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sqlite_master").Scan(&n); err != nil {
		h.Close()
		return nil, fmt.Errorf("reading restored database: %w", err)
	}
	return h, nil
}

// SaveTo writes a consistent snapshot of the database to path. The
// snapshot is written beside path and renamed over it, so an existing file
// is only replaced by a complete snapshot.
func (h *Handle) SaveTo(ctx context.Context, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".codex-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}

	// VACUUM INTO accepts an existing empty file as its target.
	if _, err := h.db.ExecContext(ctx, "VACUUM INTO ?", tmpName); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("vacuum into %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming snapshot: %w", err)
	}
	return nil
}
