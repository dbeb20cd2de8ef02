package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jacoblehr/codex/internal/logger"
	"github.com/jacoblehr/codex/pkg/types"
)

// Workspace meta keys.
const (
	metaWorkspaceID = "workspace_id"
	metaCreatedAt   = "created_at"
)

const createWorkspaceMeta = `CREATE TABLE IF NOT EXISTS workspace_meta (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);`

// initializer is the schema-creating part of an Entity.
type initializer interface {
	Table() string
	Init(ctx context.Context, q Querier) error
}

// schema lists the entity tables in dependency order.
var schema = []initializer{Tags, Bookmarks, BookmarkTags, Links, LinkTags}

// Workspace owns the live database handle. Operations borrow the handle
// under a read lock; Load and Restore replace it under the write lock, so
// a swap never interleaves with an in-flight operation.
type Workspace struct {
	mu         sync.RWMutex
	handle     *Handle
	config     types.Config
	generation uint64
	log        logger.Logger
}

// Info describes the live workspace.
type Info struct {
	WorkspaceID string         `json:"workspace_id"`
	CreatedAt   string         `json:"created_at"`
	Target      string         `json:"target"`
	Generation  uint64         `json:"generation"`
	Rows        map[string]int `json:"rows"`
}

// OpenWorkspace opens the database selected by cfg and creates the schema.
// A relative file database is placed in cfg.DataDir.
func OpenWorkspace(ctx context.Context, cfg types.Config, log logger.Logger) (*Workspace, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop()
	}

	target := cfg.Database
	if !cfg.InMemory() {
		if !filepath.IsAbs(target) && cfg.DataDir != "" {
			target = filepath.Join(cfg.DataDir, target)
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return nil, fmt.Errorf("creating data dir: %w", err)
		}
	}

	h, err := Open(ctx, target)
	if err != nil {
		return nil, err
	}
	if err := initSchema(ctx, h); err != nil {
		h.Close()
		return nil, err
	}

	w := &Workspace{handle: h, config: cfg, log: log}
	log.Debug("workspace opened", logger.String("target", target))
	return w, nil
}

// initSchema creates every table and seeds the workspace identity. It is
// idempotent and runs on every open and load.
func initSchema(ctx context.Context, h *Handle) error {
	for _, e := range schema {
		if err := e.Init(ctx, h.DB()); err != nil {
			return err
		}
	}
	if err := h.Exec(ctx, createWorkspaceMeta); err != nil {
		return fmt.Errorf("initializing workspace_meta: %w", err)
	}

	stmt, err := h.Prepare(ctx, `INSERT OR IGNORE INTO workspace_meta (key, value) VALUES (@key, @value)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("generating workspace id: %w", err)
	}
	seed := []Params{
		{"key": metaWorkspaceID, "value": id.String()},
		{"key": metaCreatedAt, "value": time.Now().UTC().Format(timestampLayout)},
	}
	for _, p := range seed {
		if _, err := stmt.Run(ctx, p); err != nil {
			return fmt.Errorf("seeding workspace_meta: %w", err)
		}
	}
	return nil
}

// With runs fn with the live handle. The handle must not be retained after
// fn returns: a later Load closes it.
func (w *Workspace) With(fn func(h *Handle) error) error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.handle == nil {
		return types.ErrWorkspaceClosed
	}
	return fn(w.handle)
}

// Generation counts handle replacements. Rows fetched under an older
// generation belong to a database that is no longer live.
func (w *Workspace) Generation() uint64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.generation
}

// Serialize returns the live database as an opaque snapshot.
func (w *Workspace) Serialize(ctx context.Context) ([]byte, error) {
	var buf []byte
	err := w.With(func(h *Handle) error {
		var err error
		buf, err = h.Serialize(ctx)
		return err
	})
	return buf, err
}

// Save writes the live database to path.
func (w *Workspace) Save(ctx context.Context, path string) error {
	err := w.With(func(h *Handle) error {
		return h.SaveTo(ctx, path)
	})
	if err != nil {
		return fmt.Errorf("saving workspace to %s: %w", path, err)
	}
	w.log.Info("workspace saved", logger.String("path", path))
	return nil
}

// Load reads a saved workspace file and makes it the live database.
func (w *Workspace) Load(ctx context.Context, path string) error {
	buf, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading workspace %s: %w", path, err)
	}
	if err := w.Restore(ctx, buf); err != nil {
		return fmt.Errorf("loading workspace %s: %w", path, err)
	}
	w.log.Info("workspace loaded", logger.String("path", path), logger.Uint64("generation", w.Generation()))
	return nil
}

// Restore replaces the live database with the snapshot in buf. The new
// handle is fully prepared before the swap; the previous handle is closed
// after it. A file-backed workspace keeps its file: the snapshot is
// written over it and reopened. On error the live handle is unchanged.
func (w *Workspace) Restore(ctx context.Context, buf []byte) error {
	next, err := LoadFromBuffer(ctx, buf)
	if err != nil {
		return err
	}
	if err := initSchema(ctx, next); err != nil {
		next.Close()
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.handle == nil {
		next.Close()
		return types.ErrWorkspaceClosed
	}

	prev := w.handle
	if !w.config.InMemory() {
		reopened, err := w.persistOver(ctx, prev, next)
		next.Close()
		if reopened != prev {
			w.handle = reopened
			w.generation++
		}
		return err
	}
	if err := prev.Close(); err != nil {
		w.log.Warn("closing previous handle", logger.Error(err))
	}

	w.handle = next
	w.generation++
	return nil
}

// persistOver stages next beside prev's file, then closes prev, renames
// the staged file over the target and reopens it. The caller holds the
// write lock and closes next. When persistOver returns prev, the workspace
// was not changed; any other non-nil handle replaces prev.
func (w *Workspace) persistOver(ctx context.Context, prev, next *Handle) (*Handle, error) {
	target := prev.Target()
	staged, err := stagePath(target)
	if err != nil {
		return prev, err
	}
	if err := next.SaveTo(ctx, staged); err != nil {
		os.Remove(staged)
		return prev, fmt.Errorf("staging restored workspace: %w", err)
	}

	if err := prev.Close(); err != nil {
		w.log.Warn("closing previous handle", logger.Error(err))
	}
	if err := os.Rename(staged, target); err != nil {
		os.Remove(staged)
		return w.reopen(ctx, target, fmt.Errorf("replacing %s: %w", target, err))
	}
	reopened, err := Open(ctx, target)
	if err != nil {
		return w.reopen(ctx, target, err)
	}
	return reopened, nil
}

// stagePath reserves an unused file name in target's directory.
func stagePath(target string) (string, error) {
	f, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+".restore-*")
	if err != nil {
		return "", fmt.Errorf("staging restored workspace: %w", err)
	}
	name := f.Name()
	if err := f.Close(); err != nil {
		os.Remove(name)
		return "", fmt.Errorf("staging restored workspace: %w", err)
	}
	return name, nil
}

// reopen reopens target after a failed replacement and returns cause. If
// the file cannot be reopened either, the workspace is left closed.
func (w *Workspace) reopen(ctx context.Context, target string, cause error) (*Handle, error) {
	h, err := Open(ctx, target)
	if err != nil {
		w.log.Error("reopening workspace", logger.String("target", target), logger.Error(err))
		return nil, errors.Join(cause, types.ErrWorkspaceClosed)
	}
	return h, cause
}

// Info reports the workspace identity and row counts per table.
func (w *Workspace) Info(ctx context.Context) (Info, error) {
	info := Info{Rows: map[string]int{}}
	err := w.With(func(h *Handle) error {
		info.Target = h.Target()
		info.Generation = w.generation

		meta, err := readMeta(ctx, h.DB())
		if err != nil {
			return err
		}
		info.WorkspaceID = meta[metaWorkspaceID]
		info.CreatedAt = meta[metaCreatedAt]

		for _, e := range schema {
			var n int
			// Table names come from the fixed schema list.
			if err := h.DB().QueryRowContext(ctx, "SELECT COUNT(*) FROM "+e.Table()).Scan(&n); err != nil {
				return fmt.Errorf("counting %s: %w", e.Table(), err)
			}
			info.Rows[e.Table()] = n
		}
		return nil
	})
	return info, err
}

func readMeta(ctx context.Context, q Querier) (map[string]string, error) {
	rows, err := q.QueryContext(ctx, `SELECT key, value FROM workspace_meta`)
	if err != nil {
		return nil, fmt.Errorf("reading workspace_meta: %w", err)
	}
	defer rows.Close()

	meta := map[string]string{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scanning workspace_meta: %w", err)
		}
		meta[k] = v
	}
	return meta, rows.Err()
}

// Close releases the live handle. Close is idempotent.
func (w *Workspace) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.handle == nil {
		return nil
	}
	err := w.handle.Close()
	w.handle = nil
	if err != nil && !errors.Is(err, sql.ErrConnDone) {
		return err
	}
	return nil
}
