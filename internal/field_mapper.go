package internal

import (
	"fmt"
	"reflect"

	"github.com/lychee-technology/rowmap"
	"go.uber.org/zap"
)

// FieldMapper implements rowmap.FieldMapper with reflection over struct fields.
type FieldMapper struct {
	tagName string
	strict  bool
	cache   *PlanCache
	logger  *zap.SugaredLogger
}

var _ rowmap.FieldMapper = (*FieldMapper)(nil)

type FieldMapperOption func(*FieldMapper)

// WithLogger overrides the global zap logger.
func WithLogger(logger *zap.SugaredLogger) FieldMapperOption {
	return func(m *FieldMapper) {
		m.logger = logger
	}
}

// NewFieldMapper creates a FieldMapper from mapping settings.
func NewFieldMapper(cfg rowmap.MappingConfig, opts ...FieldMapperOption) *FieldMapper {
	tagName := cfg.TagName
	if tagName == "" {
		tagName = "db"
	}
	m := &FieldMapper{
		tagName: tagName,
		strict:  cfg.Strict(),
	}
	if cfg.CachePlans {
		m.cache = NewPlanCache(tagName)
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *FieldMapper) log() *zap.SugaredLogger {
	if m.logger != nil {
		return m.logger
	}
	return zap.S()
}

// Plan returns the field plan of recordType, from the cache when enabled.
func (m *FieldMapper) Plan(recordType reflect.Type) (*rowmap.FieldPlan, error) {
	if m.cache != nil {
		return m.cache.Get(recordType)
	}
	return BuildFieldPlan(recordType, m.tagName)
}

// Decode allocates a new record of recordType and populates it from the current row.
// It returns (nil, nil) when row is nil or closed.
func (m *FieldMapper) Decode(row rowmap.RowAccessor, recordType reflect.Type) (any, error) {
	if isNilRow(row) || row.IsClosed() {
		return nil, nil
	}

	record, err := m.construct(recordType)
	if err != nil {
		if m.strict {
			return nil, err
		}
		m.log().Warnw("construct record failed", "recordType", typeName(recordType), "err", err)
		return nil, nil
	}

	plan, err := m.Plan(recordType)
	if err != nil {
		return nil, rowmap.NewConstructionError(rowmap.ErrCodeNotAStruct, "build field plan").
			WithRecordType(typeName(recordType)).WithCause(err)
	}

	target := record.Elem()
	for _, fd := range plan.Fields {
		if ferr := m.decodeField(row, target, fd); ferr != nil {
			ferr.WithRecordType(plan.Type.String())
			if m.strict {
				return nil, ferr
			}
			m.log().Warnw("decode field skipped", "recordType", plan.Type.String(), "field", fd.Name, "storageName", fd.StorageName, "err", ferr)
		}
	}
	return record.Interface(), nil
}

func (m *FieldMapper) construct(recordType reflect.Type) (record reflect.Value, err error) {
	t, terr := recordStructType(recordType)
	if terr != nil {
		return reflect.Value{}, rowmap.NewConstructionError(rowmap.ErrCodeNotAStruct, "cannot construct record").
			WithRecordType(typeName(recordType)).WithCause(terr)
	}

	record = reflect.New(t)
	init, ok := record.Interface().(rowmap.Initializer)
	if !ok {
		return record, nil
	}

	defer func() {
		if r := recover(); r != nil {
			record = reflect.Value{}
			err = rowmap.NewConstructionError(rowmap.ErrCodeInitializeFailed, "initializer panicked").
				WithRecordType(t.String()).WithDetail("panic", fmt.Sprint(r))
		}
	}()
	if ierr := init.Initialize(); ierr != nil {
		return reflect.Value{}, rowmap.NewConstructionError(rowmap.ErrCodeInitializeFailed, "initialize record").
			WithRecordType(t.String()).WithCause(ierr)
	}
	return record, nil
}

func (m *FieldMapper) decodeField(row rowmap.RowAccessor, target reflect.Value, fd rowmap.FieldDescriptor) *rowmap.MapperError {
	rule, ok := valueKindRules[fd.Kind]
	if !ok {
		return m.unsupported(fd)
	}

	index := row.ColumnIndex(fd.StorageName)
	if index < 0 {
		return nil
	}

	err := withFieldAccess(target, fd.Index, func(field reflect.Value) error {
		if fd.Primitive {
			// A text codec cannot unmarshal the empty string a null column reads as.
			if fd.Kind == rowmap.ValueKindText && field.Kind() != reflect.String && row.IsNull(index) {
				field.Set(reflect.Zero(field.Type()))
				return nil
			}
			return rule.read(row, index, field)
		}
		if row.IsNull(index) {
			field.Set(reflect.Zero(field.Type()))
			return nil
		}
		elem := reflect.New(field.Type().Elem())
		if err := rule.read(row, index, elem.Elem()); err != nil {
			return err
		}
		field.Set(elem)
		return nil
	})
	if err != nil {
		return rowmap.NewFieldAccessError(rowmap.ErrCodeFieldWriteFailed, fd.Name, "decode field").
			WithCause(err).WithDetail("storageName", fd.StorageName)
	}
	return nil
}

// Encode returns the record's persisted fields as Values.
func (m *FieldMapper) Encode(record any) (*rowmap.Values, error) {
	out := rowmap.NewValues()
	if err := m.EncodeTo(record, out); err != nil {
		return nil, err
	}
	return out, nil
}

// EncodeTo writes the record's persisted fields into out.
func (m *FieldMapper) EncodeTo(record any, out rowmap.FieldWriter) error {
	if out == nil {
		return fmt.Errorf("output map cannot be nil")
	}
	v, err := recordValue(record)
	if err != nil {
		return rowmap.NewConstructionError(rowmap.ErrCodeInvalidRecord, "cannot encode record").
			WithRecordType(fmt.Sprintf("%T", record)).WithCause(err)
	}

	plan, err := m.Plan(v.Type())
	if err != nil {
		return rowmap.NewConstructionError(rowmap.ErrCodeInvalidRecord, "build field plan").
			WithRecordType(v.Type().String()).WithCause(err)
	}

	for _, fd := range plan.Fields {
		if ferr := m.encodeField(v, fd, out); ferr != nil {
			ferr.WithRecordType(plan.Type.String())
			if m.strict {
				return ferr
			}
			m.log().Warnw("encode field skipped", "recordType", plan.Type.String(), "field", fd.Name, "storageName", fd.StorageName, "err", ferr)
		}
	}
	return nil
}

func (m *FieldMapper) encodeField(record reflect.Value, fd rowmap.FieldDescriptor, out rowmap.FieldWriter) *rowmap.MapperError {
	rule, ok := valueKindRules[fd.Kind]
	if !ok {
		return m.unsupported(fd)
	}

	err := withFieldAccess(record, fd.Index, func(field reflect.Value) error {
		if !fd.Primitive {
			if field.IsNil() {
				out.PutNull(fd.StorageName)
				return nil
			}
			field = field.Elem()
		}
		return rule.write(out, fd.StorageName, field)
	})
	if err != nil {
		return rowmap.NewFieldAccessError(rowmap.ErrCodeFieldReadFailed, fd.Name, "encode field").
			WithCause(err).WithDetail("storageName", fd.StorageName)
	}
	return nil
}

// unsupported is silent in lenient mode.
func (m *FieldMapper) unsupported(fd rowmap.FieldDescriptor) *rowmap.MapperError {
	if !m.strict {
		m.log().Debugw("field type has no value kind", "field", fd.Name, "type", fd.Type.String())
		return nil
	}
	return rowmap.NewUnsupportedTypeError(fd.Name, fmt.Sprintf("no value kind for type %s", fd.Type))
}

// recordValue returns an addressable struct value for record.
func recordValue(record any) (reflect.Value, error) {
	v := reflect.ValueOf(record)
	if !v.IsValid() {
		return reflect.Value{}, fmt.Errorf("record is nil")
	}
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return reflect.Value{}, fmt.Errorf("record is a nil %s", v.Type())
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return reflect.Value{}, fmt.Errorf("record type %s is not a struct", v.Type())
	}
	if !v.CanAddr() {
		cp := reflect.New(v.Type()).Elem()
		cp.Set(v)
		v = cp
	}
	return v, nil
}

func isNilRow(row rowmap.RowAccessor) bool {
	if row == nil {
		return true
	}
	v := reflect.ValueOf(row)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
