package db

import (
	"strconv"
	"strings"
)

// Dialect captures the few places the Postgres and SQLite schemas differ in
// query text. Queries are written with $N placeholders.
type Dialect struct {
	Name string
	// Positional rewrites $N placeholders into ? and reorders arguments.
	Positional bool
	// RowLock is appended to SELECTs that must hold the row until commit.
	RowLock string
}

var (
	Postgres = Dialect{Name: "postgres", RowLock: " FOR UPDATE"}
	SQLite   = Dialect{Name: "sqlite", Positional: true}
)

// Rebind rewrites query for the dialect and returns the matching argument
// list. A $N used twice is bound twice.
func (d Dialect) Rebind(query string, args []any) (string, []any) {
	if !d.Positional || !strings.Contains(query, "$") {
		return query, args
	}
	var b strings.Builder
	b.Grow(len(query))
	out := make([]any, 0, len(args))
	for i := 0; i < len(query); i++ {
		c := query[i]
		if c != '$' {
			b.WriteByte(c)
			continue
		}
		j := i + 1
		for j < len(query) && query[j] >= '0' && query[j] <= '9' {
			j++
		}
		n, err := strconv.Atoi(query[i+1 : j])
		if j == i+1 || err != nil || n < 1 || n > len(args) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('?')
		out = append(out, args[n-1])
		i = j - 1
	}
	return b.String(), out
}
