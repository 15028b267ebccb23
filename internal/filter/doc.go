// Package filter provides the backend-agnostic description of a select query:
// a tree of comparisons joined by AND/OR, a list of sort keys, and an
// optional limit/offset window.
//
// A Filter says what rows to select. It never says how: translating it onto a
// SQL builder, an ORM relation or an in-memory collection is the job of
// package translate.
//
// SEALED INTERFACES:
//
// Subject, Value and EntityRef are sealed interfaces using the marker method
// pattern. Only types in this package implement them, so consumers can switch
// exhaustively:
//
//	switch s := subject.(type) {
//	case Column:
//	    // bare column name
//	case EntityColumn:
//	    // column owned by an entity, qualified as <table>.<column>
//	case RawExpr:
//	    // opaque fragment passed through verbatim
//	}
//
// RawExpr implements both Subject and Value. It is never escaped; the caller
// is responsible for its safety.
//
// CONDITION TREES:
//
// A Condition holds an optional Comparison and an ordered list of children,
// each tagged AND or OR:
//
//	filter.Where("foo", filter.EQ, "bar").Or(
//	    filter.Where("bar", filter.LT, 15).And(
//	        filter.Where("cat", filter.NEQ, "catlab"),
//	    ),
//	)
//
// renders on a SQL backend as:
//
//	foo = ? OR (bar < ? AND (cat != ?))
//
// Children are always nested as groups; the tree is never flattened.
//
// A Filter is owned by its caller. Translation only reads it.
package filter
