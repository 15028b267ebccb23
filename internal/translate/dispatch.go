package translate

import (
	"reflect"

	sq "github.com/Masterminds/squirrel"
	"github.com/jinzhu/gorm"

	"github.com/roach88/querytx/internal/backend"
	"github.com/roach88/querytx/internal/backend/collection"
	"github.com/roach88/querytx/internal/backend/relation"
	"github.com/roach88/querytx/internal/backend/sqlbuilder"
	"github.com/roach88/querytx/internal/qerr"
)

// For returns the adapter that drives target:
//
//	backend.Adapter          used as is
//	*squirrel.SelectBuilder  sqlbuilder
//	**gorm.DB                relation
//	*[]collection.Record     collection
//
// Any other type, nil pointers of the known types and nil adapters fail with
// UNSUPPORTED_BACKEND.
func For(target any) (backend.Adapter, error) {
	switch t := target.(type) {
	case backend.Adapter:
		if !isNil(t) {
			return t, nil
		}
	case *sq.SelectBuilder:
		if t != nil {
			return sqlbuilder.Wrap(t), nil
		}
	case **gorm.DB:
		if t != nil && *t != nil {
			return relation.Wrap(t), nil
		}
	case *[]collection.Record:
		if t != nil {
			return collection.Wrap(t), nil
		}
	}
	return nil, qerr.UnsupportedBackend(target)
}

func isNil(v any) bool {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
