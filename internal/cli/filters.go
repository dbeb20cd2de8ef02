package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jacoblehr/codex/pkg/types"
)

// parseFilters builds a predicate list from --where column=value and
// --in column=v1,v2 flag values.
func parseFilters(where, in []string) (types.Where, error) {
	var out types.Where
	for _, spec := range where {
		p, err := parseFilter(spec, types.OpEquals)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	for _, spec := range in {
		p, err := parseFilter(spec, types.OpIn)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func parseFilter(spec, op string) (types.Predicate, error) {
	key, value, ok := strings.Cut(spec, "=")
	if !ok {
		return nil, fmt.Errorf("%w: expected column=value, got %q", types.ErrInvalidFilter, spec)
	}
	return types.ParseClause(strings.TrimSpace(key), value, op)
}

// parseID parses a positional entity id.
func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", types.ErrInvalidID, arg)
	}
	return id, nil
}

// optional returns a pointer to v when the flag was set.
func optional(set bool, v string) *string {
	if !set {
		return nil
	}
	return &v
}
