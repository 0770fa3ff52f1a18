package sqlstore

import (
	"context"
	"database/sql"
)

// SQL adapts a database/sql transaction to Conn.
func SQL(tx *sql.Tx) Conn {
	return stdTx{tx}
}

type stdTx struct {
	tx *sql.Tx
}

func (s stdTx) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := s.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s stdTx) QueryRow(ctx context.Context, query string, args ...any) Row {
	return s.tx.QueryRowContext(ctx, query, args...)
}

func (s stdTx) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	rows, err := s.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return stdRows{rows}, nil
}

type stdRows struct {
	*sql.Rows
}

func (r stdRows) Close() {
	_ = r.Rows.Close()
}
