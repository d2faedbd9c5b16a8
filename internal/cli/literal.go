package cli

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/sqlesc/internal/escape"
	"github.com/roach88/sqlesc/internal/tagjson"
)

// DecodeResult is the output of the decode command.
type DecodeResult struct {
	Raw   string          `json:"raw"`
	Value string          `json:"value"`
	Tags  json.RawMessage `json:"tags,omitempty"`
	Wide  string          `json:"wide,omitempty"` // hex of the nchar encoding
}

func (r DecodeResult) String() string {
	switch {
	case r.Tags != nil:
		return string(r.Tags)
	case r.Wide != "":
		return r.Wide
	}
	return r.Value
}

// EncodeResult is the output of the encode command.
type EncodeResult struct {
	Value   string `json:"value"`
	Literal string `json:"literal"`
}

func (r EncodeResult) String() string { return r.Literal }

type decodeOptions struct {
	*RootOptions
	Tags bool
	Wide bool
}

// NewDecodeCommand creates the decode command.
func NewDecodeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &decodeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "decode <raw-literal>",
		Short: "Decode a quoted SQL string literal",
		Long: `Decode a quoted string literal, exactly as written in SQL text.

The first byte must be one of the dialect's literal quotes. With --tags the
decoded value is parsed as a JSON tag payload and printed in canonical form.
With --wide the decoded value is shown as hex in the dialect's nchar encoding.

Examples:
  sqlesc decode "'it''s'"
  sqlesc decode --tags "'{\"b\":\"\'a\'=b\"}'"
  sqlesc decode --wide "'é'"`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecode(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Tags, "tags", false, "parse the decoded value as a JSON tag payload")
	cmd.Flags().BoolVar(&opts.Wide, "wide", false, "show the nchar encoding of the decoded value")

	return cmd
}

func runDecode(opts *decodeOptions, raw string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	d := opts.dialect()

	value, err := d.DecodeLiteral(raw)
	if err != nil {
		return formatter.Fail(err, map[string]string{"raw": raw})
	}
	formatter.VerboseLog("decoded %d byte(s) into %d byte(s)", len(raw), len(value))

	result := DecodeResult{Raw: raw, Value: value}

	if opts.Tags {
		obj, err := tagjson.Parse(value)
		if err != nil {
			return formatter.FailWith(ErrCodeTags, err, map[string]string{"value": value})
		}
		canonical, err := tagjson.MarshalCanonical(obj)
		if err != nil {
			return formatter.Fail(err, nil)
		}
		result.Tags = canonical
	}

	if opts.Wide {
		b, err := d.WideEncoding.Encode(value)
		if err != nil {
			return formatter.Fail(err, map[string]string{"encoding": string(d.WideEncoding)})
		}
		result.Wide = hex.EncodeToString(b)
	}

	return formatter.Success(result)
}

type encodeOptions struct {
	*RootOptions
	Quote string
}

// NewEncodeCommand creates the encode command.
func NewEncodeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &encodeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "encode <value>",
		Short: "Quote a value as a SQL string literal",
		Long: `Quote a value so that decode returns it unchanged.

Examples:
  sqlesc encode "it's"
  sqlesc encode --quote '"' 'say "hi"'`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEncode(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Quote, "quote", "'", "quote character")

	return cmd
}

func runEncode(opts *encodeOptions, value string, cmd *cobra.Command) error {
	d := opts.dialect()
	if len(opts.Quote) != 1 || !d.AcceptsQuote(opts.Quote[0]) {
		return NewExitError(ExitCommandError,
			fmt.Sprintf("invalid quote %q: must be one of %q", opts.Quote, d.LiteralQuotes))
	}

	return opts.formatter(cmd).Success(EncodeResult{
		Value:   value,
		Literal: escape.EncodeLiteral(value, opts.Quote[0]),
	})
}
