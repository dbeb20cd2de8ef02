package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jacoblehr/codex/pkg/types"
)

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// Statements holds the SQL a mapping supplies to the entity base.
//
// Find, Update and Delete bind @id. Create and Update bind the mapping's
// write parameters. FindAll and DeleteAll are extended with a composed
// WHERE clause, followed by OrderBy for FindAll.
type Statements struct {
	Init      string
	Create    string
	Find      string
	Update    string
	Delete    string
	FindAll   string
	DeleteAll string
	Count     string
	OrderBy   string
}

// Mapping binds one table to a read shape R and a write shape W.
type Mapping[R, W any] interface {
	// Table returns the table name.
	Table() string
	Statements() Statements
	// Columns lists the columns accepted in FindAll/DeleteAll predicates.
	Columns() []string
	Bind(in W) Params
	Validate(in W) error
	Scan(s scanner) (*R, error)
}

// Hydrator is implemented by mappings whose rows carry nested associations.
// Hydrate runs after every single-row and multi-row read.
type Hydrator[R any] interface {
	Hydrate(ctx context.Context, q Querier, rows []*R) error
}

// Entity implements the CRUD operations once for any Mapping.
type Entity[R, W any] struct {
	mapping Mapping[R, W]
	stmts   Statements
	columns map[string]bool
}

func newEntity[R, W any](m Mapping[R, W]) *Entity[R, W] {
	return &Entity[R, W]{
		mapping: m,
		stmts:   m.Statements(),
		columns: columnSet(m.Columns()),
	}
}

// Table returns the mapped table name.
func (e *Entity[R, W]) Table() string {
	return e.mapping.Table()
}

// Init executes the table DDL. The DDL is idempotent.
func (e *Entity[R, W]) Init(ctx context.Context, q Querier) error {
	if _, err := q.ExecContext(ctx, e.stmts.Init); err != nil {
		return fmt.Errorf("initializing %s: %w", e.Table(), err)
	}
	return nil
}

// Create inserts in and returns the row re-read by its new identity.
// A row that cannot be re-read yields types.ErrCreateReread.
func (e *Entity[R, W]) Create(ctx context.Context, q Querier, in W) (*R, error) {
	if err := e.mapping.Validate(in); err != nil {
		return nil, err
	}

	stmt, err := prepare(ctx, q, e.stmts.Create)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	res, err := stmt.Run(ctx, e.mapping.Bind(in))
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", e.Table(), err)
	}

	created, err := e.Find(ctx, q, res.LastInsertID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %d: %w", types.ErrCreateReread, e.Table(), res.LastInsertID, err)
	}
	return created, nil
}

// Find returns the row with the given id, or types.ErrNotFound.
func (e *Entity[R, W]) Find(ctx context.Context, q Querier, id int64) (*R, error) {
	if id <= 0 {
		return nil, types.ErrInvalidID
	}

	stmt, err := prepare(ctx, q, e.stmts.Find)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	r, err := e.mapping.Scan(stmt.Get(ctx, Params{"id": id}))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s %d: %w", e.Table(), id, types.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("finding %s %d: %w", e.Table(), id, classify(err))
	}

	if err := e.hydrate(ctx, q, []*R{r}); err != nil {
		return nil, err
	}
	return r, nil
}

// Update rewrites the writable columns of an existing row and returns the
// row re-read. A missing row fails before any write.
func (e *Entity[R, W]) Update(ctx context.Context, q Querier, id int64, in W) (*R, error) {
	if _, err := e.Find(ctx, q, id); err != nil {
		return nil, err
	}
	if err := e.mapping.Validate(in); err != nil {
		return nil, err
	}

	stmt, err := prepare(ctx, q, e.stmts.Update)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	params := e.mapping.Bind(in)
	params["id"] = id
	if _, err := stmt.Run(ctx, params); err != nil {
		return nil, fmt.Errorf("updating %s %d: %w", e.Table(), id, err)
	}
	return e.Find(ctx, q, id)
}

// Delete removes an existing row. A missing row fails before any write.
func (e *Entity[R, W]) Delete(ctx context.Context, q Querier, id int64) error {
	if _, err := e.Find(ctx, q, id); err != nil {
		return err
	}

	stmt, err := prepare(ctx, q, e.stmts.Delete)
	if err != nil {
		return err
	}
	defer stmt.Close()

	if _, err := stmt.Run(ctx, Params{"id": id}); err != nil {
		return fmt.Errorf("deleting %s %d: %w", e.Table(), id, err)
	}
	return nil
}

// FindAll returns every row matching where. A nil where returns all rows.
func (e *Entity[R, W]) FindAll(ctx context.Context, q Querier, where types.Where) ([]*R, error) {
	clause, params, err := composeWhere(where, e.columns)
	if err != nil {
		return nil, err
	}

	stmt, err := prepare(ctx, q, e.stmts.FindAll+clause+e.stmts.OrderBy)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	rows, err := stmt.All(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", e.Table(), err)
	}

	results := []*R{}
	for rows.Next() {
		r, err := e.mapping.Scan(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning %s: %w", e.Table(), err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterating %s: %w", e.Table(), err)
	}
	// The rows hold the only connection; release them before hydrating.
	if err := rows.Close(); err != nil {
		return nil, fmt.Errorf("closing %s rows: %w", e.Table(), err)
	}

	if err := e.hydrate(ctx, q, results); err != nil {
		return nil, err
	}
	return results, nil
}

// DeleteAll removes every row matching where and returns the number of
// rows removed. A nil where removes all rows.
func (e *Entity[R, W]) DeleteAll(ctx context.Context, q Querier, where types.Where) (int64, error) {
	clause, params, err := composeWhere(where, e.columns)
	if err != nil {
		return 0, err
	}

	stmt, err := prepare(ctx, q, e.stmts.DeleteAll+clause)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	res, err := stmt.Run(ctx, params)
	if err != nil {
		return 0, fmt.Errorf("bulk deleting %s: %w", e.Table(), err)
	}
	return res.RowsAffected, nil
}

// Count runs the mapping's aggregate query: one row per identity with the
// number of associated rows.
func (e *Entity[R, W]) Count(ctx context.Context, q Querier) ([]types.Count, error) {
	stmt, err := prepare(ctx, q, e.stmts.Count)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	rows, err := stmt.All(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("counting %s: %w", e.Table(), err)
	}
	defer rows.Close()

	counts := []types.Count{}
	for rows.Next() {
		var c types.Count
		if err := rows.Scan(&c.ID, &c.Count); err != nil {
			return nil, fmt.Errorf("scanning %s count: %w", e.Table(), err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s counts: %w", e.Table(), err)
	}
	return counts, nil
}

func (e *Entity[R, W]) hydrate(ctx context.Context, q Querier, rows []*R) error {
	h, ok := e.mapping.(Hydrator[R])
	if !ok || len(rows) == 0 {
		return nil
	}
	if err := h.Hydrate(ctx, q, rows); err != nil {
		return fmt.Errorf("hydrating %s: %w", e.Table(), err)
	}
	return nil
}
