package sqlite

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jacoblehr/codex/pkg/types"
)

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// composeWhere renders where as a WHERE clause and its bound parameters.
// The first predicate is introduced by WHERE and each later one by AND, in
// slice order. Equals binds @col; In binds one placeholder per element,
// @col_0, @col_1, and so on. An empty In matches nothing.
//
// When allowed is non-nil every column must be a key of it. Columns that
// fail the allow-list or are not plain identifiers return ErrInvalidFilter.
// An empty where renders an empty clause.
func composeWhere(where types.Where, allowed map[string]bool) (string, Params, error) {
	params := Params{}
	if len(where) == 0 {
		return "", params, nil
	}

	var sb strings.Builder
	used := make(map[string]int)
	for i, p := range where {
		if p == nil {
			return "", nil, fmt.Errorf("%w: nil predicate at position %d", types.ErrInvalidFilter, i)
		}
		col := p.Col()
		if !identPattern.MatchString(col) {
			return "", nil, fmt.Errorf("%w: malformed column %q", types.ErrInvalidFilter, col)
		}
		if allowed != nil && !allowed[col] {
			return "", nil, fmt.Errorf("%w: unknown column %q", types.ErrInvalidFilter, col)
		}

		if i == 0 {
			sb.WriteString(" WHERE ")
		} else {
			sb.WriteString(" AND ")
		}

		name := paramName(col, used)
		switch pred := p.(type) {
		case types.Equals:
			if pred.Value == nil {
				fmt.Fprintf(&sb, "%s IS NULL", col)
				continue
			}
			fmt.Fprintf(&sb, "%s = @%s", col, name)
			params[name] = pred.Value
		case types.In:
			if len(pred.Values) == 0 {
				sb.WriteString("1 = 0")
				continue
			}
			holders := make([]string, len(pred.Values))
			for j, v := range pred.Values {
				elem := fmt.Sprintf("%s_%d", name, j)
				holders[j] = "@" + elem
				params[elem] = v
			}
			fmt.Fprintf(&sb, "%s IN (%s)", col, strings.Join(holders, ", "))
		default:
			return "", nil, fmt.Errorf("%w: unsupported predicate %T", types.ErrInvalidFilter, p)
		}
	}
	return sb.String(), params, nil
}

// paramName derives a unique parameter name for col. Qualified columns
// (bt.tag_id) become bt_tag_id; repeats get a numeric suffix.
func paramName(col string, used map[string]int) string {
	base := strings.ReplaceAll(col, ".", "_")
	n := used[base]
	used[base] = n + 1
	if n == 0 {
		return base
	}
	return fmt.Sprintf("%s%d", base, n)
}

// columnSet builds an allow-list from column names.
func columnSet(cols []string) map[string]bool {
	set := make(map[string]bool, len(cols))
	for _, c := range cols {
		set[c] = true
	}
	return set
}
