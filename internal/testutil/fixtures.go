// Package testutil provides fixtures shared by package tests: a small people
// table as SQL and as records, the matching model type, and a helper that
// writes it to a throwaway SQLite file.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/querytx/internal/backend/collection"
)

// Person is the model stored in the people table.
type Person struct {
	ID   int64  `db:"id" gorm:"primary_key"`
	Name string `db:"name"`
	Age  int64  `db:"age"`
	City string `db:"city"`
}

// PeopleSchema creates and fills the people table.
var PeopleSchema = []string{
	`CREATE TABLE people (
		id   INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		age  INTEGER NOT NULL,
		city TEXT NOT NULL
	)`,
	`INSERT INTO people (id, name, age, city) VALUES
		(1, 'carol', 41, 'oslo'),
		(2, 'alice', 29, 'lima'),
		(3, 'bob',   41, 'lima'),
		(4, 'dave',  35, 'oslo'),
		(5, 'erin',  29, 'kyiv')`,
}

// People returns the rows of the people table as records, in id order, with
// the types SQLite scans them as.
func People() []collection.Record {
	return []collection.Record{
		{"id": int64(1), "name": "carol", "age": int64(41), "city": "oslo"},
		{"id": int64(2), "name": "alice", "age": int64(29), "city": "lima"},
		{"id": int64(3), "name": "bob", "age": int64(41), "city": "lima"},
		{"id": int64(4), "name": "dave", "age": int64(35), "city": "oslo"},
		{"id": int64(5), "name": "erin", "age": int64(29), "city": "kyiv"},
	}
}

// IDs returns the id column of records.
func IDs(records []collection.Record) []int64 {
	out := make([]int64, len(records))
	for i, r := range records {
		id, _ := r["id"].(int64)
		out[i] = id
	}
	return out
}

// PeopleDB writes the people table to a new SQLite file under t.TempDir and
// returns its path.
func PeopleDB(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "people.db")
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer db.Close()

	for _, stmt := range PeopleSchema {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("seed people: %v", err)
		}
	}
	return path
}
