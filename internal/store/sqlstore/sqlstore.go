// Package sqlstore implements game.Tx once for every SQL backend. Backends
// supply a Conn bound to an open transaction and the dialect of their schema.
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pitchside/internal/db"
	"pitchside/internal/game"
)

// Conn is the query surface of one open transaction.
type Conn interface {
	Exec(ctx context.Context, query string, args ...any) (int64, error)
	QueryRow(ctx context.Context, query string, args ...any) Row
	Query(ctx context.Context, query string, args ...any) (Rows, error)
}

type Row interface {
	Scan(dest ...any) error
}

type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
}

var _ game.Tx = (*Tx)(nil)

type Tx struct {
	c Conn
	d db.Dialect
}

func New(c Conn, d db.Dialect) *Tx {
	return &Tx{c: c, d: d}
}

func (t *Tx) exec(ctx context.Context, query string, args ...any) (int64, error) {
	q, a := t.d.Rebind(query, args)
	return t.c.Exec(ctx, q, a...)
}

func (t *Tx) queryRow(ctx context.Context, query string, args ...any) Row {
	q, a := t.d.Rebind(query, args)
	return t.c.QueryRow(ctx, q, a...)
}

func (t *Tx) query(ctx context.Context, query string, args ...any) (Rows, error) {
	q, a := t.d.Rebind(query, args)
	return t.c.Query(ctx, q, a...)
}

// lock appends the dialect's row lock to a SELECT.
func (t *Tx) lock(query string) string {
	return query + t.d.RowLock
}

// notFound maps a missing row onto game.ErrNotFound.
func notFound(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", game.ErrNotFound, what)
	}
	return err
}

// collect scans every row with scan and closes rows.
func collect[T any](rows Rows, err error, scan func(Row) (T, error)) ([]T, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// timeCol scans a timestamp from drivers that return either time.Time or
// text.
type timeCol struct {
	dst  *time.Time
	null **time.Time
}

func scanTime(dst *time.Time) *timeCol { return &timeCol{dst: dst} }
func scanNullTime(dst **time.Time) *timeCol { return &timeCol{null: dst} }

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
}

func (c *timeCol) Scan(src any) error {
	var t time.Time
	switch v := src.(type) {
	case nil:
		if c.null != nil {
			*c.null = nil
			return nil
		}
		return errors.New("timestamp is null")
	case time.Time:
		t = v
	case string:
		parsed, err := parseTime(v)
		if err != nil {
			return err
		}
		t = parsed
	case []byte:
		parsed, err := parseTime(string(v))
		if err != nil {
			return err
		}
		t = parsed
	default:
		return fmt.Errorf("cannot scan %T into a timestamp", src)
	}
	t = t.UTC()
	if c.null != nil {
		*c.null = &t
		return nil
	}
	*c.dst = t
	return nil
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// jsonCol decodes a JSON column into dst.
type jsonCol struct {
	dst any
}

func scanJSON(dst any) *jsonCol { return &jsonCol{dst: dst} }

func (c *jsonCol) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into json", src)
	}
	if len(raw) == 0 {
		return nil
	}
	if rm, ok := c.dst.(*json.RawMessage); ok {
		*rm = append((*rm)[:0], raw...)
		return nil
	}
	return json.Unmarshal(raw, c.dst)
}

func encodeJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// utc normalizes times before they are written.
func utc(t time.Time) time.Time {
	return t.UTC()
}

func utcPtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}
