package store

import (
	"database/sql"
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/mattn/go-sqlite3"

	"github.com/roach88/sqlesc/internal/like"
	"github.com/roach88/sqlesc/internal/nchar"
	"github.com/roach88/sqlesc/internal/querysql"
)

// DriverName is the database/sql driver registered by this package. It is
// go-sqlite3 with the sqlesc_like function installed on every connection.
const DriverName = "sqlite3_sqlesc"

func init() {
	sql.Register(DriverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc(querysql.LikeFunc, likeFunc, true)
		},
	})
}

// likeFunc implements sqlesc_like(value, kind, encoding, pattern, escape).
// It returns 1 on a match and 0 otherwise. A NULL value never matches.
func likeFunc(arg any, kind, encoding, pattern, escape string) (int64, error) {
	m, err := matchers.get(pattern, escapeRune(escape))
	if err != nil {
		return 0, err
	}

	var value []byte
	switch v := arg.(type) {
	case nil:
		return 0, nil
	case []byte:
		value = v
	case string:
		value = []byte(v)
	default:
		return 0, fmt.Errorf("%s: value must be TEXT or BLOB, got %T", querysql.LikeFunc, arg)
	}

	var ok bool
	switch kind {
	case querysql.KindText:
		ok = m.MatchString(string(value))
	case querysql.KindBinary:
		ok = m.MatchBytes(value)
	case querysql.KindNchar:
		ok, err = m.MatchWide(value, nchar.Encoding(encoding))
		if err != nil {
			return 0, err
		}
	default:
		return 0, fmt.Errorf("%s: unknown value kind %q", querysql.LikeFunc, kind)
	}

	if ok {
		return 1, nil
	}
	return 0, nil
}

func escapeRune(s string) rune {
	if s == "" {
		return like.NoEscape
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r
}

// matcherCache keeps compiled patterns so a scan compiles each pattern
// once instead of once per row.
type matcherCache struct {
	mu      sync.Mutex
	entries map[like.Pattern]*like.Matcher
}

const maxCachedMatchers = 256

var matchers = &matcherCache{entries: make(map[like.Pattern]*like.Matcher)}

func (c *matcherCache) get(pattern string, escape rune) (*like.Matcher, error) {
	p := like.Pattern{Value: pattern, Escape: escape}

	c.mu.Lock()
	defer c.mu.Unlock()

	if m, ok := c.entries[p]; ok {
		return m, nil
	}
	m, err := like.Compile(p)
	if err != nil {
		return nil, err
	}
	if len(c.entries) >= maxCachedMatchers {
		clear(c.entries)
	}
	c.entries[p] = m
	return m, nil
}
