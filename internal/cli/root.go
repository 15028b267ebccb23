package cli

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EnvPrefix prefixes the environment variables bound to flags, so --db can be
// supplied as QUERYTX_DB.
const EnvPrefix = "QUERYTX"

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	// Logger is built before any subcommand runs. It is a no-op logger unless
	// Verbose is set.
	Logger *zap.Logger

	config *viper.Viper
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the querytx CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{config: newConfig(), Logger: zap.NewNop()}

	cmd := &cobra.Command{
		Use:   "querytx",
		Short: "querytx - declarative query filters",
		Long: `Translate declarative query filters (AND/OR condition trees, sort keys,
limit and offset) onto SQL builders, ORM relations, in-memory collections and
MongoDB queries.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			opts.Format = opts.config.GetString("format")
			opts.Verbose = opts.config.GetBool("verbose")
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			opts.Logger = newLogger(opts.Verbose, cmd.ErrOrStderr())
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = opts.Logger.Sync()
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	cmd.PersistentFlags().String("format", "text", "output format (json|text)")
	opts.bindFlags(cmd.PersistentFlags())

	// Add subcommands
	cmd.AddCommand(NewRenderCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewRunCommand(opts))

	return cmd
}

func newConfig() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// bindFlags makes every flag in fs readable through the command config, with
// the environment as a fallback.
func (o *RootOptions) bindFlags(fs *pflag.FlagSet) {
	fs.VisitAll(func(flag *pflag.Flag) {
		_ = o.config.BindPFlag(flag.Name, flag)
	})
}

// newLogger builds a JSON logger writing to w, or a no-op logger.
func newLogger(verbose bool, w io.Writer) *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}

	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.MessageKey = "msg"
	cfg.EncoderConfig.LevelKey = "level"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(cfg.EncoderConfig),
		zapcore.AddSync(w),
		zap.InfoLevel,
	)
	return zap.New(core)
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:  o.Format,
		Writer:  cmd.OutOrStdout(),
		Verbose: o.Verbose,
	}
}
