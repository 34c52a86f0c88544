package database

import (
	"fmt"
	"strconv"
	"strings"
)

// Dialect names a supported SQL backend
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	MySQL    Dialect = "mysql"
	Postgres Dialect = "postgres"
)

func ParseDialect(dbType string) (Dialect, error) {
	switch d := Dialect(strings.ToLower(strings.TrimSpace(dbType))); d {
	case "", SQLite:
		return SQLite, nil
	case MySQL, Postgres:
		return d, nil
	default:
		return "", fmt.Errorf("unsupported database type: %s", dbType)
	}
}

// DriverName is the database/sql driver registered for the dialect
func (d Dialect) DriverName() string {
	if d == SQLite {
		return "sqlite3"
	}
	return string(d)
}

// Rebind converts ? placeholders into $1, $2, ... for postgres. Question marks
// inside single-quoted literals are left alone. Other dialects pass through.
func (d Dialect) Rebind(query string) string {
	if d != Postgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)

	n := 0
	inQuote := false
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'':
			inQuote = !inQuote
			b.WriteByte(c)
		case c == '?' && !inQuote:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
