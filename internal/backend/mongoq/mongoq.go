// Package mongoq renders a filter as a MongoDB query document and find
// options.
//
// It plugs into the translator as a plain backend.Adapter with no change to
// the translator:
//
//	q := mongoq.New()
//	if err := translate.Apply(q, f); err != nil {
//	    return err
//	}
//	cursor, err := coll.Find(ctx, q.Filter(), q.FindOptions())
//
// Sibling predicates follow SQL precedence. AND binds tighter than OR, so
// "a OR b AND c" becomes {$or: [a, {$and: [b, c]}]}. LIKE patterns become
// anchored regular expressions. Raw fragments cannot be expressed and fail
// with UNSUPPORTED_OPERATION.
package mongoq

import (
	"fmt"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/roach88/querytx/internal/backend"
	"github.com/roach88/querytx/internal/qerr"
)

// Name identifies this backend in error messages.
const Name = "mongo"

var comparisonOps = map[backend.Operator]string{
	backend.OpEq:  "$eq",
	backend.OpNeq: "$ne",
	backend.OpLt:  "$lt",
	backend.OpLte: "$lte",
	backend.OpGt:  "$gt",
	backend.OpGte: "$gte",
}

// group is an ordered list of documents, each joined to its predecessor by
// AND or OR.
type group struct {
	items []item
}

type item struct {
	or     bool
	doc    bson.D
	nested *group
}

// scope holds predicates only.
type scope struct {
	g *group
}

// Query accumulates a filter document, sort keys and a window.
type Query struct {
	scope
	sort  bson.D
	limit int64
	skip  int64
}

// New creates an empty query.
func New() *Query {
	return &Query{scope: scope{g: &group{}}}
}

// Filter returns the query document. An empty filter matches everything.
func (q *Query) Filter() bson.D {
	if doc := q.g.render(); doc != nil {
		return doc
	}
	return bson.D{}
}

// FindOptions returns the sort, limit and skip options.
func (q *Query) FindOptions() *options.FindOptions {
	opts := options.Find()
	if len(q.sort) > 0 {
		opts.SetSort(q.sort)
	}
	if q.limit > 0 {
		opts.SetLimit(q.limit)
	}
	if q.skip > 0 {
		opts.SetSkip(q.skip)
	}
	return opts
}

// OrderBy implements backend.Adapter.
func (q *Query) OrderBy(subject backend.Term, dir backend.Direction) error {
	key, err := field(subject)
	if err != nil {
		return err
	}
	order := 1
	if dir == backend.Desc {
		order = -1
	}
	q.sort = append(q.sort, bson.E{Key: key, Value: order})
	return nil
}

// Limit implements backend.Adapter.
func (q *Query) Limit(n uint64) error {
	q.limit = int64(n)
	return nil
}

// Offset implements backend.Adapter.
func (q *Query) Offset(n uint64) error {
	q.skip = int64(n)
	return nil
}

// Where implements backend.Adapter.
func (s scope) Where(subject backend.Term, op backend.Operator, value backend.Term) error {
	key, err := field(subject)
	if err != nil {
		return err
	}
	lit, ok := value.(backend.Literal)
	if !ok {
		return qerr.UnsupportedOperation(Name, fmt.Sprintf("%T values", value))
	}

	var cond any
	switch op {
	case backend.OpLike:
		cond = bson.D{{Key: "$regex", Value: likePattern(fmt.Sprint(lit.V))}}
	case backend.OpNotLike:
		cond = bson.D{{Key: "$not", Value: primitive.Regex{Pattern: likePattern(fmt.Sprint(lit.V))}}}
	default:
		mongoOp, known := comparisonOps[op]
		if !known {
			return qerr.UnsupportedOperation(Name, fmt.Sprintf("operator %q", op))
		}
		cond = bson.D{{Key: mongoOp, Value: lit.V}}
	}

	s.g.items = append(s.g.items, item{doc: bson.D{{Key: key, Value: cond}}})
	return nil
}

// WhereGroup implements backend.Adapter.
func (s scope) WhereGroup(build func(backend.Adapter) error) error {
	return s.group(false, build)
}

// OrWhereGroup implements backend.Adapter.
func (s scope) OrWhereGroup(build func(backend.Adapter) error) error {
	return s.group(true, build)
}

// OrderBy implements backend.Adapter.
func (s scope) OrderBy(backend.Term, backend.Direction) error {
	return qerr.UnsupportedOperation(Name, "sorting inside a predicate group")
}

// Limit implements backend.Adapter.
func (s scope) Limit(uint64) error {
	return qerr.UnsupportedOperation(Name, "limit inside a predicate group")
}

// Offset implements backend.Adapter.
func (s scope) Offset(uint64) error {
	return qerr.UnsupportedOperation(Name, "offset inside a predicate group")
}

func (s scope) group(or bool, build func(backend.Adapter) error) error {
	nested := &group{}
	s.g.items = append(s.g.items, item{or: or, nested: nested})
	return build(scope{g: nested})
}

// render folds the items into one document, or nil when nothing renders.
// Consecutive AND items form a run; OR starts a new run.
func (g *group) render() bson.D {
	var runs [][]bson.D
	var current []bson.D

	for _, it := range g.items {
		doc := it.doc
		if it.nested != nil {
			doc = it.nested.render()
		}
		if doc == nil {
			continue
		}
		if it.or && len(current) > 0 {
			runs = append(runs, current)
			current = nil
		}
		current = append(current, doc)
	}
	if len(current) > 0 {
		runs = append(runs, current)
	}

	switch len(runs) {
	case 0:
		return nil
	case 1:
		return conjoin(runs[0])
	default:
		alternatives := make(bson.A, len(runs))
		for i, run := range runs {
			alternatives[i] = conjoin(run)
		}
		return bson.D{{Key: "$or", Value: alternatives}}
	}
}

func conjoin(docs []bson.D) bson.D {
	if len(docs) == 1 {
		return docs[0]
	}
	all := make(bson.A, len(docs))
	for i, d := range docs {
		all[i] = d
	}
	return bson.D{{Key: "$and", Value: all}}
}

func field(t backend.Term) (string, error) {
	col, ok := t.(backend.Column)
	if !ok {
		return "", qerr.UnsupportedOperation(Name, fmt.Sprintf("%T subjects", t))
	}
	return string(col), nil
}

// likePattern converts a SQL LIKE pattern to an anchored regular expression:
// % matches any run, _ matches one character, everything else is literal.
func likePattern(like string) string {
	var sb strings.Builder
	sb.WriteString("^")
	for _, r := range like {
		switch r {
		case '%':
			sb.WriteString(".*")
		case '_':
			sb.WriteString(".")
		default:
			sb.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	sb.WriteString("$")
	return sb.String()
}
