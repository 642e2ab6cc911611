package internal

import (
	"fmt"

	"github.com/jackc/pgx/v5"
)

// PgxRow adapts a pgx.Rows cursor to rowmap.RowAccessor.
// It reports closed until Next returns true and again once the cursor is exhausted.
type PgxRow struct {
	*rowBuffer
	rows pgx.Rows
}

func NewPgxRow(rows pgx.Rows) *PgxRow {
	fds := rows.FieldDescriptions()
	columns := make([]string, len(fds))
	for i, fd := range fds {
		columns[i] = fd.Name
	}
	return &PgxRow{
		rowBuffer: newRowBuffer(columns),
		rows:      rows,
	}
}

// Next advances to the next row and buffers its values.
func (r *PgxRow) Next() (bool, error) {
	if !r.rows.Next() {
		r.reset()
		return false, r.rows.Err()
	}
	values, err := r.rows.Values()
	if err != nil {
		r.reset()
		return false, fmt.Errorf("read row values: %w", err)
	}
	r.load(values)
	return true, nil
}

func (r *PgxRow) Err() error {
	return r.rows.Err()
}

func (r *PgxRow) Close() {
	r.rows.Close()
	r.reset()
}
