// Package collection adapts an already materialized slice of records to the
// backend contract.
//
// Filtering is assumed to have happened upstream: predicates and groups fail
// with UNSUPPORTED_OPERATION. Sort keys and the limit/offset window are
// applied to a snapshot of the slice taken at Wrap time, and the caller's
// slice is replaced after every call:
//
//	rows, _ := store.All(ctx, "users")
//	if err := translate.Apply(&rows, f); err != nil {
//	    return err
//	}
//
// Sorting is stable. Keys added first take priority. In ASC order nil and
// missing values sort first. The window skips Offset rows and then takes
// Limit rows, whatever order the two are set in.
package collection

import (
	"bytes"
	"cmp"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/collate"

	"github.com/roach88/querytx/internal/backend"
	"github.com/roach88/querytx/internal/qerr"
)

// Name identifies this backend in error messages.
const Name = "collection"

// Record is one materialized row keyed by column name. Nested maps can be
// addressed with dotted keys.
type Record map[string]any

// Option configures an Adapter.
type Option func(*Adapter)

// WithCollator compares strings with c instead of byte order.
func WithCollator(c *collate.Collator) Option {
	return func(a *Adapter) {
		a.collator = c
	}
}

type sortKey struct {
	column string
	desc   bool
}

// Adapter drives a *[]Record.
type Adapter struct {
	target   *[]Record
	source   []Record
	keys     []sortKey
	limit    uint64
	offset   uint64
	collator *collate.Collator
}

// Wrap creates an adapter over *target.
func Wrap(target *[]Record, opts ...Option) *Adapter {
	a := &Adapter{target: target, source: slices.Clone(*target)}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Where implements backend.Adapter.
func (a *Adapter) Where(backend.Term, backend.Operator, backend.Term) error {
	return qerr.UnsupportedOperation(Name, "predicates")
}

// WhereGroup implements backend.Adapter.
func (a *Adapter) WhereGroup(func(backend.Adapter) error) error {
	return qerr.UnsupportedOperation(Name, "predicate groups")
}

// OrWhereGroup implements backend.Adapter.
func (a *Adapter) OrWhereGroup(func(backend.Adapter) error) error {
	return qerr.UnsupportedOperation(Name, "predicate groups")
}

// OrderBy implements backend.Adapter.
func (a *Adapter) OrderBy(subject backend.Term, dir backend.Direction) error {
	col, ok := subject.(backend.Column)
	if !ok {
		return qerr.UnsupportedOperation(Name, fmt.Sprintf("sorting by %T", subject))
	}
	a.keys = append(a.keys, sortKey{column: string(col), desc: dir == backend.Desc})
	a.apply()
	return nil
}

// Limit implements backend.Adapter.
func (a *Adapter) Limit(n uint64) error {
	a.limit = n
	a.apply()
	return nil
}

// Offset implements backend.Adapter.
func (a *Adapter) Offset(n uint64) error {
	a.offset = n
	a.apply()
	return nil
}

func (a *Adapter) apply() {
	rows := slices.Clone(a.source)
	if len(a.keys) > 0 {
		slices.SortStableFunc(rows, a.compareRows)
	}

	start := min(a.offset, uint64(len(rows)))
	end := uint64(len(rows))
	if a.limit > 0 {
		end = min(start+a.limit, end)
	}

	*a.target = rows[start:end]
}

func (a *Adapter) compareRows(x, y Record) int {
	for _, key := range a.keys {
		xv, _ := Lookup(x, key.column)
		yv, _ := Lookup(y, key.column)
		c := a.compare(xv, yv)
		if key.desc {
			c = -c
		}
		if c != 0 {
			return c
		}
	}
	return 0
}

// Lookup returns the value stored under key: the exact key first, then a
// dotted path through nested maps ("users.name" finds r["users"]["name"]).
func Lookup(r Record, key string) (any, bool) {
	if v, ok := r[key]; ok {
		return v, true
	}

	var cur any = map[string]any(r)
	for _, part := range strings.Split(key, ".") {
		var m map[string]any
		switch node := cur.(type) {
		case map[string]any:
			m = node
		case Record:
			m = node
		default:
			return nil, false
		}
		v, ok := m[part]
		if !ok {
			return nil, false
		}
		cur = v
	}
	return cur, true
}

// compare orders two column values. nil sorts before everything.
func (a *Adapter) compare(x, y any) int {
	switch {
	case x == nil && y == nil:
		return 0
	case x == nil:
		return -1
	case y == nil:
		return 1
	}

	if xs, ok := x.(string); ok {
		if ys, ok := y.(string); ok {
			if a.collator != nil {
				return a.collator.CompareString(xs, ys)
			}
			return strings.Compare(xs, ys)
		}
	}
	if c, ok := compareNumbers(x, y); ok {
		return c
	}
	if xt, ok := x.(time.Time); ok {
		if yt, ok := y.(time.Time); ok {
			return xt.Compare(yt)
		}
	}
	if xb, ok := x.(bool); ok {
		if yb, ok := y.(bool); ok {
			return cmp.Compare(boolRank(xb), boolRank(yb))
		}
	}
	if xb, ok := x.([]byte); ok {
		if yb, ok := y.([]byte); ok {
			return bytes.Compare(xb, yb)
		}
	}
	return strings.Compare(fmt.Sprint(x), fmt.Sprint(y))
}

func compareNumbers(x, y any) (int, bool) {
	xv, yv := reflect.ValueOf(x), reflect.ValueOf(y)
	xk, yk := numberKind(xv.Kind()), numberKind(yv.Kind())
	if xk == 0 || yk == 0 {
		return 0, false
	}

	switch {
	case xk == kindInt && yk == kindInt:
		return cmp.Compare(xv.Int(), yv.Int()), true
	case xk == kindUint && yk == kindUint:
		return cmp.Compare(xv.Uint(), yv.Uint()), true
	default:
		return cmp.Compare(toFloat(xv), toFloat(yv)), true
	}
}

const (
	kindInt = iota + 1
	kindUint
	kindFloat
)

func numberKind(k reflect.Kind) int {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return kindInt
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return kindUint
	case reflect.Float32, reflect.Float64:
		return kindFloat
	default:
		return 0
	}
}

func toFloat(v reflect.Value) float64 {
	switch numberKind(v.Kind()) {
	case kindInt:
		return float64(v.Int())
	case kindUint:
		return float64(v.Uint())
	default:
		return v.Float()
	}
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}
