package rowmap

import (
	"context"
	"reflect"
)

// RowAccessor is a read-only view over the current row of a result set.
// Getters return the zero value for a null column.
type RowAccessor interface {
	// IsClosed reports that there is no current row to read.
	IsClosed() bool
	// ColumnIndex returns -1 when the column does not exist.
	ColumnIndex(name string) int
	IsNull(index int) bool
	GetString(index int) (string, error)
	GetInt64(index int) (int64, error)
	GetFloat32(index int) (float32, error)
	GetFloat64(index int) (float64, error)
}

// FieldWriter is a write-only destination keyed by storage name.
type FieldWriter interface {
	PutNull(name string)
	PutString(name string, value string)
	PutInt32(name string, value int32)
	PutInt64(name string, value int64)
	PutBool(name string, value bool)
	PutFloat32(name string, value float32)
	PutFloat64(name string, value float64)
}

// Initializer is called on a freshly allocated record before it is populated.
type Initializer interface {
	Initialize() error
}

// FieldMapper converts between rows and records.
type FieldMapper interface {
	// Decode returns a new *T populated from row, or nil when row has no current row.
	Decode(row RowAccessor, recordType reflect.Type) (any, error)
	// Encode returns the record's persisted fields keyed by storage name.
	Encode(record any) (*Values, error)
	EncodeTo(record any, out FieldWriter) error
	Plan(recordType reflect.Type) (*FieldPlan, error)
}

// RecordStore persists encoded records and reads decoded ones.
type RecordStore interface {
	// CreateTable creates table for the persisted fields of recordType if it does not exist.
	CreateTable(ctx context.Context, table string, recordType reflect.Type) error
	Insert(ctx context.Context, table string, values *Values) error
	InsertRecord(ctx context.Context, table string, record any) error
	QueryRecords(ctx context.Context, recordType reflect.Type, query string, args ...any) ([]any, error)
}

// ExportResult describes one exported object.
type ExportResult struct {
	Bucket  string `json:"bucket"`
	Key     string `json:"key"`
	Records int    `json:"records"`
}

// RecordExporter writes encoded records to an object store.
type RecordExporter interface {
	Export(ctx context.Context, key string, records []any) (*ExportResult, error)
}

// DecodeAs decodes the current row into a new T.
func DecodeAs[T any](m FieldMapper, row RowAccessor) (*T, error) {
	out, err := m.Decode(row, reflect.TypeFor[T]())
	if err != nil || out == nil {
		return nil, err
	}
	return out.(*T), nil
}

// PlanOf returns the field plan of T.
func PlanOf[T any](m FieldMapper) (*FieldPlan, error) {
	return m.Plan(reflect.TypeFor[T]())
}
