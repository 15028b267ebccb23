package store

import (
	"fmt"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/sqlite"
	"github.com/jmoiron/sqlx"

	"github.com/roach88/querytx/internal/backend/collection"
)

// Relation returns a gorm relation over table that shares the store's
// connection. Closing the relation closes the store. gorm's own logging is
// off; errors come back from Find.
func (s *Store) Relation(table string) (*gorm.DB, error) {
	db, err := gorm.Open("sqlite3", s.db.DB)
	if err != nil {
		return nil, fmt.Errorf("open relation: %w", err)
	}
	return db.LogMode(false).Table(table), nil
}

// Find runs rel and materializes the rows the same way Query does.
func (s *Store) Find(rel *gorm.DB) ([]collection.Record, error) {
	rows, err := rel.Rows()
	if err != nil {
		return nil, fmt.Errorf("query relation: %w", err)
	}
	return scanRecords(&sqlx.Rows{Rows: rows, Mapper: s.db.Mapper})
}
