package types

import (
	"fmt"
	"strings"
)

// Predicate operation tokens accepted by ParseClause.
const (
	OpEquals = "="
	OpIn     = "in"
)

// Predicate is one term of a WHERE clause. The set of implementations is
// closed: Equals and In.
type Predicate interface {
	// Col returns the column the predicate constrains.
	Col() string
	predicate()
}

// Equals matches rows whose column equals Value.
type Equals struct {
	Column string
	Value  any
}

// In matches rows whose column equals any element of Values. An empty
// Values matches nothing.
type In struct {
	Column string
	Values []any
}

func (e Equals) Col() string { return e.Column }
func (i In) Col() string     { return i.Column }

func (Equals) predicate() {}
func (In) predicate()     {}

// Where is an ordered conjunction of predicates. A nil or empty Where
// places no restriction on the rows.
type Where []Predicate

// Eq is shorthand for an Equals predicate.
func Eq(column string, value any) Equals {
	return Equals{Column: column, Value: value}
}

// InInt64 builds an In predicate from integer identifiers.
func InInt64(column string, ids []int64) In {
	values := make([]any, len(ids))
	for i, id := range ids {
		values[i] = id
	}
	return In{Column: column, Values: values}
}

// ParseClause converts a descriptor of the form {key, value, operation}
// into a Predicate. For "in", value may be a slice or a comma-separated
// string. Unknown operations return ErrInvalidFilter.
func ParseClause(key string, value any, operation string) (Predicate, error) {
	if key == "" {
		return nil, fmt.Errorf("%w: empty column", ErrInvalidFilter)
	}
	switch strings.ToLower(strings.TrimSpace(operation)) {
	case OpEquals, "":
		return Equals{Column: key, Value: value}, nil
	case OpIn:
		return In{Column: key, Values: toValues(value)}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported operation %q on %s", ErrInvalidFilter, operation, key)
	}
}

func toValues(value any) []any {
	switch v := value.(type) {
	case nil:
		return nil
	case []any:
		return v
	case []int64:
		out := make([]any, len(v))
		for i, x := range v {
			out[i] = x
		}
		return out
	case []int:
		out := make([]any, len(v))
		for i, x := range v {
			out[i] = int64(x)
		}
		return out
	case []string:
		out := make([]any, len(v))
		for i, x := range v {
			out[i] = x
		}
		return out
	case string:
		if v == "" {
			return nil
		}
		parts := strings.Split(v, ",")
		out := make([]any, len(parts))
		for i, p := range parts {
			out[i] = strings.TrimSpace(p)
		}
		return out
	default:
		return []any{v}
	}
}
