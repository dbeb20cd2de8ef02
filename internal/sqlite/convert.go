package sqlite

import (
	"database/sql"
	"fmt"
	"time"
)

// timestampSQL renders the current time in the format stored in created_at
// and updated_at columns. It must stay in step with timestampLayout.
const timestampSQL = `strftime('%Y-%m-%dT%H:%M:%SZ', 'now')`

const timestampLayout = time.RFC3339

// nullString binds an optional text column.
func nullString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// stringPtr converts a scanned optional text column.
func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func parseTimestamp(column, value string) (time.Time, error) {
	t, err := time.Parse(timestampLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing %s: %w", column, err)
	}
	return t.UTC(), nil
}

func parseNullableTimestamp(column string, ns sql.NullString) (*time.Time, error) {
	if !ns.Valid {
		return nil, nil
	}
	t, err := parseTimestamp(column, ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// chunkIDs splits ids into slices of at most size elements so IN lists
// stay well under the engine's bound-parameter limit.
func chunkIDs(ids []int64, size int) [][]int64 {
	var chunks [][]int64
	for len(ids) > size {
		chunks = append(chunks, ids[:size])
		ids = ids[size:]
	}
	if len(ids) > 0 {
		chunks = append(chunks, ids)
	}
	return chunks
}

func formatNullable(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(timestampLayout)
	return &s
}
