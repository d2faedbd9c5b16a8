package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/roach88/sqlesc/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose     bool
	Format      string // "json" | "text"
	DialectPath string

	// Dialect and Logger are resolved before a subcommand runs. Commands
	// built directly (as in tests) fall back to the defaults.
	Dialect *config.Dialect
	Logger  *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the sqlesc CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "sqlesc",
		Short: "sqlesc - SQL literal, identifier and LIKE escaping",
		Long: `Decode and encode SQL string literals and quoted identifiers, match
LIKE patterns, and run escape regression scenarios against SQLite.

A dialect file (CUE) selects quote characters, the identifier delimiter,
the LIKE escape character and the nchar storage encoding. It is taken
from --dialect, or from SQLESC_DIALECT (which may be set in .env).`,
		SilenceErrors: true, // main prints command errors
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.resolve(cmd)
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.DialectPath, "dialect", "", "dialect file (defaults to $"+config.EnvDialect+")")

	cmd.AddCommand(NewDecodeCommand(opts))
	cmd.AddCommand(NewEncodeCommand(opts))
	cmd.AddCommand(NewIdentCommand(opts))
	cmd.AddCommand(NewQuoteCommand(opts))
	cmd.AddCommand(NewMatchCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// resolve validates global flags and loads the dialect.
func (o *RootOptions) resolve(cmd *cobra.Command) error {
	if !isValidFormat(o.Format) {
		return NewExitError(ExitCommandError,
			fmt.Sprintf("invalid format %q: must be one of %v", o.Format, ValidFormats))
	}

	// A missing .env is not an error.
	_ = godotenv.Load()

	level := slog.LevelInfo
	if o.Verbose {
		level = slog.LevelDebug
	}
	o.Logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	path := o.DialectPath
	if path == "" {
		path = os.Getenv(config.EnvDialect)
	}
	if path == "" {
		return nil
	}

	d, err := config.LoadDialect(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load dialect", err)
	}
	o.Dialect = &d
	o.Logger.Debug("dialect loaded", "path", path, "encoding", string(d.WideEncoding))
	return nil
}

// dialect returns the resolved dialect or the default.
func (o *RootOptions) dialect() config.Dialect {
	if o.Dialect == nil {
		return config.Default()
	}
	return *o.Dialect
}

// logger returns the resolved logger or one that discards output.
func (o *RootOptions) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o.Logger
}

// formatter builds the output formatter for cmd.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // verbose logs go to stderr to keep JSON clean
		Verbose:   o.Verbose,
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
