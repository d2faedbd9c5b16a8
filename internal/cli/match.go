package cli

import (
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/roach88/sqlesc/internal/like"
)

// MatchResult is the output of the match command.
type MatchResult struct {
	Subject string `json:"subject"`
	Pattern string `json:"pattern"`
	Escape  string `json:"escape"`
	Wide    bool   `json:"wide,omitempty"`
	Match   bool   `json:"match"`
}

func (r MatchResult) String() string { return strconv.FormatBool(r.Match) }

type matchOptions struct {
	*RootOptions
	Escape  string
	Literal bool
	Wide    bool
}

// NewMatchCommand creates the match command.
func NewMatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &matchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "match <subject> <pattern>",
		Short: "Match a value against a LIKE pattern",
		Long: `Match a subject against a LIKE pattern, with SQLite LIKE semantics
except that matching is case-sensitive.

The escape character defaults to the dialect's like_escape; --escape ""
disables escaping. With --literal both arguments are raw string literals
and are decoded with the dialect first. With --wide the subject is matched
in the dialect's nchar encoding.

Exit codes:
  0 - Subject matches
  1 - No match, or the pattern or a literal is malformed
  2 - Command error

Examples:
  sqlesc match 'h%d' 'h\%d'
  sqlesc match --literal "'h%d'" "'h\\\\%d'"
  sqlesc match --escape '!' 'h%d' 'h!%d'`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatch(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Escape, "escape", "", "escape character (defaults to the dialect's)")
	cmd.Flags().BoolVar(&opts.Literal, "literal", false, "decode subject and pattern as string literals")
	cmd.Flags().BoolVar(&opts.Wide, "wide", false, "match the subject in the nchar encoding")

	return cmd
}

func runMatch(opts *matchOptions, subject, pattern string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	d := opts.dialect()

	esc := d.Escape()
	if cmd.Flags().Changed("escape") {
		switch utf8.RuneCountInString(opts.Escape) {
		case 0:
			esc = like.NoEscape
		case 1:
			esc, _ = utf8.DecodeRuneInString(opts.Escape)
		default:
			return NewExitError(ExitCommandError,
				fmt.Sprintf("invalid escape %q: must be empty or one character", opts.Escape))
		}
	}

	if opts.Literal {
		var err error
		if subject, err = d.DecodeLiteral(subject); err != nil {
			return formatter.Fail(err, map[string]string{"argument": "subject"})
		}
		if pattern, err = d.DecodeLiteral(pattern); err != nil {
			return formatter.Fail(err, map[string]string{"argument": "pattern"})
		}
	}

	m, err := like.Compile(like.Pattern{Value: pattern, Escape: esc})
	if err != nil {
		return formatter.Fail(err, nil)
	}

	result := MatchResult{
		Subject: subject,
		Pattern: pattern,
		Wide:    opts.Wide,
	}
	if esc != like.NoEscape {
		result.Escape = string(esc)
	}

	if opts.Wide {
		b, err := d.WideEncoding.Encode(subject)
		if err != nil {
			return formatter.Fail(err, nil)
		}
		if result.Match, err = m.MatchWide(b, d.WideEncoding); err != nil {
			return formatter.Fail(err, nil)
		}
	} else {
		result.Match = m.MatchString(subject)
	}

	opts.logger().Debug("match", "subject", subject, "pattern", pattern, "match", result.Match)

	if err := formatter.Success(result); err != nil {
		return err
	}
	if !result.Match {
		return NewExitError(ExitFailure, ErrCodeNoMatch)
	}
	return nil
}
