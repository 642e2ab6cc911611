package internal

import (
	"fmt"
	"strings"

	"github.com/lychee-technology/rowmap"
)

// rowBuffer holds the current row of a driver cursor and serves it as a rowmap.RowAccessor.
// Column lookup is exact first, then case-insensitive.
type rowBuffer struct {
	columns []string
	exact   map[string]int
	folded  map[string]int
	values  []any
	current bool
}

var _ rowmap.RowAccessor = (*rowBuffer)(nil)

func newRowBuffer(columns []string) *rowBuffer {
	b := &rowBuffer{
		columns: columns,
		exact:   make(map[string]int, len(columns)),
		folded:  make(map[string]int, len(columns)),
	}
	for i, name := range columns {
		if _, ok := b.exact[name]; !ok {
			b.exact[name] = i
		}
		key := strings.ToLower(name)
		if _, ok := b.folded[key]; !ok {
			b.folded[key] = i
		}
	}
	return b
}

func (b *rowBuffer) load(values []any) {
	b.values = values
	b.current = true
}

func (b *rowBuffer) reset() {
	b.values = nil
	b.current = false
}

// Columns returns the column names of the result set.
func (b *rowBuffer) Columns() []string {
	return append([]string(nil), b.columns...)
}

func (b *rowBuffer) IsClosed() bool {
	return !b.current
}

func (b *rowBuffer) ColumnIndex(name string) int {
	if i, ok := b.exact[name]; ok {
		return i
	}
	if i, ok := b.folded[strings.ToLower(name)]; ok {
		return i
	}
	return -1
}

func (b *rowBuffer) value(index int) (any, error) {
	if !b.current {
		return nil, fmt.Errorf("no current row")
	}
	if index < 0 || index >= len(b.values) {
		return nil, fmt.Errorf("column index %d out of range [0,%d)", index, len(b.values))
	}
	return b.values[index], nil
}

func (b *rowBuffer) IsNull(index int) bool {
	v, err := b.value(index)
	return err == nil && v == nil
}

func (b *rowBuffer) GetString(index int) (string, error) {
	v, err := b.value(index)
	if err != nil {
		return "", err
	}
	return driverString(v)
}

func (b *rowBuffer) GetInt64(index int) (int64, error) {
	v, err := b.value(index)
	if err != nil {
		return 0, err
	}
	return driverInt64(v)
}

func (b *rowBuffer) GetFloat32(index int) (float32, error) {
	f, err := b.GetFloat64(index)
	return float32(f), err
}

func (b *rowBuffer) GetFloat64(index int) (float64, error) {
	v, err := b.value(index)
	if err != nil {
		return 0, err
	}
	return driverFloat64(v)
}
