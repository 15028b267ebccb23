package cli

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/roach88/querytx/internal/backend/mongoq"
	"github.com/roach88/querytx/internal/filter"
	"github.com/roach88/querytx/internal/loader"
	"github.com/roach88/querytx/internal/translate"
)

// RenderResult is the JSON payload of the render command.
type RenderResult struct {
	Backend string `json:"backend"`

	// SQL backend
	SQL  string `json:"sql,omitempty"`
	Args []any  `json:"args,omitempty"`

	// Mongo backend, as relaxed extended JSON
	Filter string `json:"filter,omitempty"`
	Sort   string `json:"sort,omitempty"`
	Limit  int64  `json:"limit,omitempty"`
	Skip   int64  `json:"skip,omitempty"`
}

func (r RenderResult) String() string {
	var sb strings.Builder
	if r.Backend == "mongo" {
		fmt.Fprintf(&sb, "filter: %s", r.Filter)
		if r.Sort != "" {
			fmt.Fprintf(&sb, "\nsort:   %s", r.Sort)
		}
		if r.Limit > 0 {
			fmt.Fprintf(&sb, "\nlimit:  %d", r.Limit)
		}
		if r.Skip > 0 {
			fmt.Fprintf(&sb, "\nskip:   %d", r.Skip)
		}
		return sb.String()
	}
	sb.WriteString(r.SQL)
	if len(r.Args) > 0 {
		fmt.Fprintf(&sb, "\n-- args: %v", r.Args)
	}
	return sb.String()
}

// NewRenderCommand creates the render command.
func NewRenderCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render <filter-file>",
		Short: "Print the query a filter translates to",
		Long: `Translate a filter document and print the resulting query without
executing it.

The SQL backend prints the statement and its bound arguments. The mongo
backend prints the filter document and find options as extended JSON.

Example:
  querytx render filter.yaml
  querytx render --dialect dollar --table users filter.cue
  querytx render --backend mongo filter.json --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			rootOpts.bindFlags(cmd.Flags())
			return runRender(rootOpts, args[0], cmd)
		},
	}

	cmd.Flags().String("backend", "sql", "target backend (sql|mongo)")
	cmd.Flags().String("dialect", "question", "SQL placeholder style (question|dollar)")
	cmd.Flags().String("table", "", "base table, overrides the document's table")

	return cmd
}

func runRender(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	log := opts.Logger.With(zap.String("command", "render"))

	doc, f, err := loadFilter(path, log, formatter)
	if err != nil {
		return err
	}

	backendName := opts.config.GetString("backend")
	log.Info("translating", zap.String("backend", backendName))

	var result RenderResult
	switch backendName {
	case "sql":
		table := tableOf(opts, doc)
		if table == "" {
			return formatter.Fail(ExitCommandError, ErrCodeDocument, "no table: set it in the document or pass --table", nil)
		}
		format, err := placeholderFormat(opts.config.GetString("dialect"))
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeGeneric, "invalid dialect", err)
		}
		result, err = renderSQL(table, format, f)
		if err != nil {
			return formatter.Fail(ExitCommandError, errorCode(err, ErrCodeGeneric), "translation failed", err)
		}
	case "mongo":
		result, err = renderMongo(f)
		if err != nil {
			return formatter.Fail(ExitCommandError, errorCode(err, ErrCodeGeneric), "translation failed", err)
		}
	default:
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, fmt.Sprintf("unknown backend %q (want sql or mongo)", backendName), nil)
	}

	return formatter.Success(result)
}

func renderSQL(table string, format sq.PlaceholderFormat, f *filter.Filter) (RenderResult, error) {
	q := sq.Select("*").From(table).PlaceholderFormat(format)
	if err := translate.Apply(&q, f); err != nil {
		return RenderResult{}, err
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return RenderResult{}, err
	}
	return RenderResult{Backend: "sql", SQL: sql, Args: args}, nil
}

func renderMongo(f *filter.Filter) (RenderResult, error) {
	m := mongoq.New()
	if err := translate.Apply(m, f); err != nil {
		return RenderResult{}, err
	}

	filterJSON, err := bson.MarshalExtJSON(m.Filter(), false, false)
	if err != nil {
		return RenderResult{}, fmt.Errorf("encode filter: %w", err)
	}
	result := RenderResult{Backend: "mongo", Filter: string(filterJSON)}

	opts := m.FindOptions()
	if opts.Sort != nil {
		sortJSON, err := bson.MarshalExtJSON(opts.Sort, false, false)
		if err != nil {
			return RenderResult{}, fmt.Errorf("encode sort: %w", err)
		}
		result.Sort = string(sortJSON)
	}
	if opts.Limit != nil {
		result.Limit = *opts.Limit
	}
	if opts.Skip != nil {
		result.Skip = *opts.Skip
	}
	return result, nil
}

func placeholderFormat(dialect string) (sq.PlaceholderFormat, error) {
	switch dialect {
	case "question", "":
		return sq.Question, nil
	case "dollar":
		return sq.Dollar, nil
	default:
		return nil, fmt.Errorf("unknown dialect %q (want question or dollar)", dialect)
	}
}

// loadFilter reads a filter document and reports failures on formatter.
func loadFilter(path string, log *zap.Logger, formatter *OutputFormatter) (*loader.Document, *filter.Filter, error) {
	log.Info("loading filter", zap.String("path", path))

	doc, err := loader.Load(path)
	if err != nil {
		return nil, nil, formatter.Fail(ExitCommandError, ErrCodeLoad, "failed to load filter", err)
	}
	f, err := doc.Filter()
	if err != nil {
		return nil, nil, formatter.Fail(ExitCommandError, ErrCodeDocument, "invalid filter document", err)
	}

	log.Info("filter loaded",
		zap.Int("conditions", len(f.Conditions)),
		zap.Int("sorts", len(f.Sorts)),
	)
	return doc, f, nil
}

func tableOf(opts *RootOptions, doc *loader.Document) string {
	if table := opts.config.GetString("table"); table != "" {
		return table
	}
	return doc.Table
}
