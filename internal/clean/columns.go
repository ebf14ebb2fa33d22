package clean

import (
	"errors"
	"fmt"
	"strings"

	"github.com/KaramelBytes/tabclean/internal/table"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CollisionPolicy decides what happens when two distinct column names
// lower-case to the same name.
type CollisionPolicy string

const (
	// CollisionFail rejects the rename and leaves the table untouched.
	CollisionFail CollisionPolicy = "fail"
	// CollisionLastWins keeps the last colliding column (in table order)
	// under the lower-cased name and drops the earlier ones.
	CollisionLastWins CollisionPolicy = "last-wins"
)

// ParseCollisionPolicy accepts "fail" and "last-wins" (any case).
func ParseCollisionPolicy(s string) (CollisionPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fail", "error":
		return CollisionFail, nil
	case "last-wins", "last_wins", "lastwins":
		return CollisionLastWins, nil
	default:
		return "", fmt.Errorf("invalid collision policy: %s (use fail or last-wins)", s)
	}
}

// ErrCollision matches any *CollisionError.
var ErrCollision = errors.New("column name collision")

// CollisionError lists the original columns that share a lower-cased name.
type CollisionError struct {
	Name    string
	Columns []string
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("columns %s all lower-case to %q", strings.Join(e.Columns, ", "), e.Name)
}

func (e *CollisionError) Is(target error) bool { return target == ErrCollision }

// LowerName returns the Unicode lower-case form of a column name.
func LowerName(name string) string {
	return cases.Lower(language.Und).String(name)
}

// LowercaseColumns renames every column to its lower-case form and returns
// the names of columns dropped under CollisionLastWins. A table with no
// columns is returned unchanged. Applying it twice equals applying it once.
func LowercaseColumns(t *table.Table, policy CollisionPolicy) ([]string, error) {
	names := t.Names()
	if len(names) == 0 {
		return nil, nil
	}
	lowered := make([]string, len(names))
	groups := make(map[string][]int, len(names))
	var order []string
	for i, n := range names {
		l := LowerName(n)
		lowered[i] = l
		if _, ok := groups[l]; !ok {
			order = append(order, l)
		}
		groups[l] = append(groups[l], i)
	}

	var dropped []string
	for _, l := range order {
		idx := groups[l]
		if len(idx) < 2 {
			continue
		}
		if policy != CollisionLastWins {
			cols := make([]string, len(idx))
			for k, i := range idx {
				cols[k] = names[i]
			}
			return nil, &CollisionError{Name: l, Columns: cols}
		}
		for _, i := range idx[:len(idx)-1] {
			dropped = append(dropped, names[i])
		}
	}

	if len(dropped) > 0 {
		if err := t.Drop(dropped...); err != nil {
			return nil, err
		}
		keep := make([]string, 0, len(names)-len(dropped))
		gone := make(map[string]bool, len(dropped))
		for _, d := range dropped {
			gone[d] = true
		}
		for i, n := range names {
			if !gone[n] {
				keep = append(keep, lowered[i])
			}
		}
		lowered = keep
	}
	if err := t.Rename(lowered); err != nil {
		return nil, err
	}
	return dropped, nil
}

// ResolveColumn finds a column by exact name, falling back to a
// case-insensitive match.
func ResolveColumn(t *table.Table, name string) (string, error) {
	if t.Has(name) {
		return name, nil
	}
	want := LowerName(name)
	for _, n := range t.Names() {
		if LowerName(n) == want {
			return n, nil
		}
	}
	return "", &table.ColumnNotFoundError{Column: name, Available: t.Names()}
}
