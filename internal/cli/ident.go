package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/sqlesc/internal/escape"
)

// IdentResult is the output of the ident and quote commands.
type IdentResult struct {
	Name   string `json:"name"`
	Quoted string `json:"quoted"`
}

// identDecoded and identQuoted share IdentResult's JSON shape but print
// different fields as text.
type identDecoded IdentResult

func (r identDecoded) String() string { return r.Name }

type identQuoted IdentResult

func (r identQuoted) String() string { return r.Quoted }

// NewIdentCommand creates the ident command.
func NewIdentCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ident <raw-identifier>",
		Short: "Decode a delimited SQL identifier",
		Long: "Decode an identifier quoted with the dialect delimiter (a backtick by default).\n\n" +
			"Backslashes are kept as written; a doubled delimiter stands for one.\n\n" +
			"Examples:\n" +
			"  sqlesc ident '`zz\\ `'\n" +
			"  sqlesc ident '`a``b`'",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := rootOpts.formatter(cmd)
			name, err := rootOpts.dialect().DecodeIdentifier(args[0])
			if err != nil {
				return formatter.Fail(err, map[string]string{"raw": args[0]})
			}
			return formatter.Success(identDecoded{Name: name, Quoted: args[0]})
		},
	}

	return cmd
}

// NewQuoteCommand creates the quote command.
func NewQuoteCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quote <name>",
		Short: "Quote a name as a delimited SQL identifier",
		Long: `Quote a name so that ident returns it unchanged.

Names with an odd run of backslashes before a delimiter or at the end
cannot be written and fail with UNREPRESENTABLE_IDENTIFIER.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := rootOpts.formatter(cmd)
			quoted, err := escape.QuoteIdentifier(args[0], rootOpts.dialect().Delimiter())
			if err != nil {
				return formatter.Fail(err, map[string]string{"name": args[0]})
			}
			return formatter.Success(identQuoted{Name: args[0], Quoted: quoted})
		},
	}

	return cmd
}
