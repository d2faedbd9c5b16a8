package like

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sqlesc/internal/escape"
	"github.com/roach88/sqlesc/internal/nchar"
)

func TestMatch_Wildcards(t *testing.T) {
	tests := []struct {
		subject string
		pattern string
		want    bool
	}{
		{``, ``, true},
		{``, `%%%%%`, true},
		{``, `_`, false},
		{`a`, `_`, true},
		{`ab`, `_`, false},
		{`abc`, `a%`, true},
		{`abc`, `%c`, true},
		{`abc`, `%b%`, true},
		{`abc`, `a_c`, true},
		{`abc`, `a_d`, false},
		{`abcbc`, `a%bc`, true},
		{`abcbd`, `a%bc`, false},
		{`mississippi`, `%iss%ppi`, true},
		{`mississippi`, `m%ss%ss%`, true},
		{`mississippi`, `m%ss%ss%ss%`, false},
		{`a[b]`, `%[[_]`, false},
		{`+`, `++`, false},
		{`G\n%`, `%__%`, true},
		{`_\nL_`, `%_%`, true},
		{`hello`, `HELLO`, false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q like %q", tt.subject, tt.pattern), func(t *testing.T) {
			got, err := Match(tt.subject, NewPattern(tt.pattern))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatch_EscapedWildcards(t *testing.T) {
	subjects := []string{"h%d", "hXd", "hd", "h%%d", "h_j", "hxj"}

	tests := []struct {
		pattern string
		want    []string
	}{
		{`h\%d`, []string{"h%d"}},
		{`h%d`, []string{"h%d", "hXd", "hd", "h%%d"}},
		{`h\_j`, []string{"h_j"}},
		{`h_j`, []string{"h_j", "hxj"}},
		{`h\%%`, []string{"h%d", "h%%d"}},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			m, err := Compile(NewPattern(tt.pattern))
			require.NoError(t, err)

			var got []string
			for _, s := range subjects {
				if m.MatchString(s) {
					got = append(got, s)
				}
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatch_EscapeBeforeOrdinaryCharacterIsLiteral(t *testing.T) {
	names := []string{`zz\ `, `zz\\ `, `zz\\\ `}

	tests := []struct {
		pattern string
		want    []string
	}{
		{`zz\ `, []string{`zz\ `}},
		{`zz\\ `, []string{`zz\\ `}},
		{`zz\\\ `, []string{`zz\\\ `}},
		{`zz%`, names},
		{`zz\%`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			m, err := Compile(NewPattern(tt.pattern))
			require.NoError(t, err)

			var got []string
			for _, n := range names {
				if m.MatchString(n) {
					got = append(got, n)
				}
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatch_NestedEscapingThroughLiteralLayer(t *testing.T) {
	// Four backslashes in query text, one literal-decode pass, one pattern pass.
	decoded, err := escape.DecodeLiteral(`"zz\\\\ "`, '"')
	require.NoError(t, err)
	require.Equal(t, `zz\\ `, decoded)

	m, err := Compile(NewPattern(decoded))
	require.NoError(t, err)

	assert.True(t, m.MatchString(`zz\\ `))
	assert.False(t, m.MatchString(`zz\ `))
	assert.False(t, m.MatchString(`zz\\\ `))

	// Two backslashes in query text reach the matcher as one.
	decoded, err = escape.DecodeLiteral(`"zz\\ "`, '"')
	require.NoError(t, err)
	ok, err := Match(`zz\ `, NewPattern(decoded))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMatch_WildcardEscapeThroughLiteralLayer(t *testing.T) {
	// Default literal decoding reduces \% to %, so the pattern needs \\%.
	decoded, err := escape.DecodeLiteral(`'h\\%d'`, '\'')
	require.NoError(t, err)

	m := MustCompile(NewPattern(decoded))
	assert.True(t, m.MatchString("h%d"))
	assert.False(t, m.MatchString("hXd"))

	// With wildcard escapes kept by the literal layer, \% is enough.
	decoded, err = escape.DecodeLiteralWith(`'h\%d'`, '\'', escape.LiteralOptions{KeepWildcardEscapes: true})
	require.NoError(t, err)

	m = MustCompile(NewPattern(decoded))
	assert.True(t, m.MatchString("h%d"))
	assert.False(t, m.MatchString("hXd"))
}

func TestMatch_CustomEscape(t *testing.T) {
	tests := []struct {
		subject string
		pattern string
		escape  rune
		want    bool
	}{
		{`a[b]`, `a[b]`, '[', true},
		{`a_b`, `a[_b`, '[', true},
		{`axb`, `a[_b`, '[', false},
		{`a{}%`, `%}%`, '}', true},
		{`BG_`, `%__`, '.', true},
		{`100%`, `100!%`, '!', true},
		{`1000`, `100!%`, '!', false},
		{`a\b`, `a\b`, '!', true},
		{``, `%%%%%`, NoEscape, true},
		{`a\`, `a\`, NoEscape, true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q like %q escape %q", tt.subject, tt.pattern, tt.escape), func(t *testing.T) {
			got, err := Match(tt.subject, Pattern{Value: tt.pattern, Escape: tt.escape})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name   string
		p      Pattern
		code   PatternErrorCode
		offset int
	}{
		{"lone escape", NewPattern(`\`), ErrCodeMalformedPattern, 0},
		{"trailing escape", NewPattern(`%\}\%\`), ErrCodeMalformedPattern, 5},
		{"escaped escape then trailing", NewPattern(`ab\\`), ErrCodeMalformedPattern, 3},
		{"custom trailing escape", Pattern{Value: `a}`, Escape: '}'}, ErrCodeMalformedPattern, 1},
		{"percent escape", Pattern{Value: `a`, Escape: '%'}, ErrCodeInvalidEscape, -1},
		{"underscore escape", Pattern{Value: `a`, Escape: '_'}, ErrCodeInvalidEscape, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.p)
			require.Error(t, err)

			var pe *PatternError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.code, pe.Code)
			assert.Equal(t, tt.offset, pe.Offset)
		})
	}

	_, err := Match("anything", NewPattern(`abc\`))
	assert.True(t, IsMalformed(err), "a malformed pattern is an error, not a non-match")
	assert.False(t, IsMalformed(nil))
}

func TestMatcher_CharactersNotBytes(t *testing.T) {
	m := MustCompile(NewPattern(`_`))

	assert.True(t, m.MatchString("☃"), "one rune")
	assert.False(t, m.MatchBytes([]byte("☃")), "three bytes")
	assert.True(t, m.MatchBytes([]byte("x")))

	m = MustCompile(NewPattern(`h_llo`))
	assert.True(t, m.MatchString("héllo"))
	assert.False(t, m.MatchBytes([]byte("héllo")))

	m = MustCompile(NewPattern(`h__llo`))
	assert.True(t, m.MatchBytes([]byte("héllo")))

	m = MustCompile(NewPattern(`%☃`))
	assert.True(t, m.MatchBytes([]byte("snow☃")))
	assert.True(t, m.MatchString("snow☃"))
}

func TestMatcher_BytesNotUTF8(t *testing.T) {
	tests := []struct {
		name    string
		pattern Pattern
		subject string
		want    bool
	}{
		{"identical", NewPattern("caf\xe9"), "caf\xe9", true},
		{"replacement char is not the byte", NewPattern("caf\xe9"), "caf�", false},
		{"prefix", NewPattern("caf%"), "caf\xe9", true},
		{"one byte wildcard", NewPattern("caf_"), "caf\xe9", true},
		{"suffix", NewPattern("%\xff\xfe"), "a\xff\xfe", true},
		{"escaped wildcard next to raw byte", NewPattern("\xe9\\%"), "\xe9%", true},
		{"escaped wildcard rejects", NewPattern("\xe9\\%"), "\xe9x", false},
		{"escape before ordinary byte", NewPattern(`a\` + "\xe9"), `a\` + "\xe9", true},
		{"multibyte escape", Pattern{Value: "a¬%\xe9", Escape: '¬'}, "a%\xe9", true},
		{"multibyte escape before ordinary byte", Pattern{Value: "a¬b", Escape: '¬'}, "a¬b", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Compile(tt.pattern)
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.MatchBytes([]byte(tt.subject)))
		})
	}
}

func TestMatcher_MatchWide(t *testing.T) {
	m := MustCompile(NewPattern(`h\%_`))

	for _, enc := range nchar.Encodings {
		b, err := enc.Encode("h%☃")
		require.NoError(t, err)

		ok, err := m.MatchWide(b, enc)
		require.NoError(t, err)
		assert.True(t, ok, "%s", enc)

		b, err = enc.Encode("hX☃")
		require.NoError(t, err)

		ok, err = m.MatchWide(b, enc)
		require.NoError(t, err)
		assert.False(t, ok, "%s", enc)
	}

	_, err := m.MatchWide([]byte{1, 2, 3}, nchar.UCS4)
	assert.ErrorIs(t, err, nchar.ErrTruncated)
}

func TestMatcher_ConcurrentUse(t *testing.T) {
	m := MustCompile(NewPattern(`%a_c%`))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				assert.True(t, m.MatchString("xxabcxx"))
				assert.False(t, m.MatchString("xxacxx"))
			}
		}()
	}
	wg.Wait()
}

func TestQuoteMeta(t *testing.T) {
	values := []string{"h%d", "h_j", `zz\ `, `zz\\ `, `a\%b`, "plain", "☃_☃"}

	for _, v := range values {
		p, err := QuoteMeta(v, DefaultEscape)
		require.NoError(t, err, "value=%q", v)

		m, err := Compile(NewPattern(p))
		require.NoError(t, err, "pattern=%q", p)
		assert.True(t, m.MatchString(v), "pattern=%q value=%q", p, v)
	}

	p, err := QuoteMeta("h%d", '!')
	require.NoError(t, err)
	assert.Equal(t, "h!%d", p)

	_, err = QuoteMeta(`ends\`, DefaultEscape)
	require.Error(t, err)

	_, err = QuoteMeta("50%", NoEscape)
	require.Error(t, err)

	p, err = QuoteMeta("plain", NoEscape)
	require.NoError(t, err)
	assert.Equal(t, "plain", p)

	_, err = QuoteMeta("x", '%')
	require.Error(t, err)
}

func TestQuoteMeta_DoesNotOvermatch(t *testing.T) {
	p, err := QuoteMeta("h%d", DefaultEscape)
	require.NoError(t, err)

	m := MustCompile(NewPattern(p))
	assert.False(t, m.MatchString("hXd"))
	assert.False(t, m.MatchString("h%%d"))
}
