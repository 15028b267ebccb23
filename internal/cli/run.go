package cli

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/roach88/querytx/internal/backend/collection"
	"github.com/roach88/querytx/internal/filter"
	"github.com/roach88/querytx/internal/store"
	"github.com/roach88/querytx/internal/translate"
)

// RunResult is the JSON payload of the run command.
type RunResult struct {
	Count int                 `json:"count"`
	Rows  []collection.Record `json:"rows"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <filter-file>",
		Short: "Run a filter against a SQLite database",
		Long: `Translate a filter document and run it against a table in a SQLite
database, printing the matching rows.

Backends:
  sql     build the query with squirrel and run it with sqlx
  orm     chain the filter onto a gorm relation
  memory  load the whole table and sort and window it in memory

The memory backend cannot evaluate predicates, so filters with conditions
fail on it. --collate orders its strings with a language's collation rules.

Example:
  querytx run --db app.db filter.yaml
  querytx run --db app.db --backend memory --collate sv sorted.yaml
  QUERYTX_DB=app.db querytx run filter.cue --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			rootOpts.bindFlags(cmd.Flags())
			return runRun(cmd.Context(), rootOpts, args[0], cmd)
		},
	}

	cmd.Flags().String("db", "", "path to the SQLite database (required)")
	cmd.Flags().String("backend", "sql", "execution backend (sql|orm|memory)")
	cmd.Flags().String("table", "", "table to query, overrides the document's table")
	cmd.Flags().String("collate", "", "BCP 47 language tag for string ordering (memory backend)")

	return cmd
}

func runRun(ctx context.Context, opts *RootOptions, path string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := opts.formatter(cmd)
	log := opts.Logger.With(zap.String("command", "run"))

	dbPath := opts.config.GetString("db")
	if dbPath == "" {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, "--db is required", nil)
	}

	doc, f, err := loadFilter(path, log, formatter)
	if err != nil {
		return err
	}
	table := tableOf(opts, doc)
	if table == "" {
		return formatter.Fail(ExitCommandError, ErrCodeDocument, "no table: set it in the document or pass --table", nil)
	}

	s, err := store.Open(dbPath)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to open database", err)
	}
	defer s.Close()

	backendName := opts.config.GetString("backend")
	log.Info("running",
		zap.String("backend", backendName),
		zap.String("db", dbPath),
		zap.String("table", table),
	)

	var rows []collection.Record
	switch backendName {
	case "sql":
		rows, err = runSQL(ctx, s, table, f)
	case "orm":
		rows, err = runRelation(s, table, f)
	case "memory":
		var tag language.Tag
		if name := opts.config.GetString("collate"); name != "" {
			if tag, err = language.Parse(name); err != nil {
				return formatter.Fail(ExitCommandError, ErrCodeGeneric, "invalid --collate tag", err)
			}
		}
		rows, err = runMemory(ctx, s, table, tag, f)
	default:
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, fmt.Sprintf("unknown backend %q (want sql, orm or memory)", backendName), nil)
	}
	if err != nil {
		return formatter.Fail(ExitCommandError, errorCode(err, ErrCodeDatabase), "query failed", err)
	}

	log.Info("query finished", zap.Int("rows", len(rows)))

	if formatter.Format == "json" {
		return formatter.Success(RunResult{Count: len(rows), Rows: rows})
	}
	return formatter.Records(rows)
}

func runSQL(ctx context.Context, s *store.Store, table string, f *filter.Filter) ([]collection.Record, error) {
	q := sq.Select("*").From(store.QuoteIdent(table))
	if err := translate.Apply(&q, f); err != nil {
		return nil, err
	}
	return s.Select(ctx, q)
}

func runRelation(s *store.Store, table string, f *filter.Filter) ([]collection.Record, error) {
	rel, err := s.Relation(table)
	if err != nil {
		return nil, err
	}
	if err := translate.Apply(&rel, f); err != nil {
		return nil, err
	}
	return s.Find(rel)
}

// runMemory loads the table unfiltered and applies sort keys and the window
// in memory. A zero tag keeps byte order.
func runMemory(ctx context.Context, s *store.Store, table string, tag language.Tag, f *filter.Filter) ([]collection.Record, error) {
	rows, err := s.All(ctx, table)
	if err != nil {
		return nil, err
	}

	var copts []collection.Option
	if tag != language.Und {
		copts = append(copts, collection.WithCollator(collate.New(tag)))
	}
	if err := translate.New().Translate(collection.Wrap(&rows, copts...), f); err != nil {
		return nil, err
	}
	return rows, nil
}
