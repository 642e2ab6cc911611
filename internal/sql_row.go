package internal

import (
	"database/sql"
	"fmt"
)

// SQLRow adapts a database/sql cursor (lib/pq, DuckDB) to rowmap.RowAccessor.
type SQLRow struct {
	*rowBuffer
	rows *sql.Rows
}

func NewSQLRow(rows *sql.Rows) (*SQLRow, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}
	return &SQLRow{
		rowBuffer: newRowBuffer(columns),
		rows:      rows,
	}, nil
}

// Next advances to the next row and buffers its values.
func (r *SQLRow) Next() (bool, error) {
	if !r.rows.Next() {
		r.reset()
		return false, r.rows.Err()
	}
	values := make([]any, len(r.columns))
	dest := make([]any, len(values))
	for i := range values {
		dest[i] = &values[i]
	}
	if err := r.rows.Scan(dest...); err != nil {
		r.reset()
		return false, fmt.Errorf("scan row: %w", err)
	}
	r.load(values)
	return true, nil
}

func (r *SQLRow) Err() error {
	return r.rows.Err()
}

func (r *SQLRow) Close() error {
	r.reset()
	return r.rows.Close()
}
