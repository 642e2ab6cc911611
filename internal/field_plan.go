package internal

import (
	"encoding"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/lychee-technology/rowmap"
)

var (
	timeType            = reflect.TypeFor[time.Time]()
	textMarshalerType   = reflect.TypeFor[encoding.TextMarshaler]()
	textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()
)

// recordStructType resolves T or *T to the struct type T.
func recordStructType(t reflect.Type) (reflect.Type, error) {
	if t == nil {
		return nil, fmt.Errorf("record type is nil")
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("record type %s is not a struct", t)
	}
	return t, nil
}

// BuildFieldPlan enumerates the persisted fields of a struct type in declaration order.
func BuildFieldPlan(recordType reflect.Type, tagName string) (*rowmap.FieldPlan, error) {
	t, err := recordStructType(recordType)
	if err != nil {
		return nil, err
	}

	plan := &rowmap.FieldPlan{
		Type:   t,
		Fields: make([]rowmap.FieldDescriptor, 0, t.NumField()),
	}
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		storageName, persisted := storageNameOf(sf, tagName)
		if !persisted {
			continue
		}
		plan.Fields = append(plan.Fields, rowmap.FieldDescriptor{
			Name:        sf.Name,
			StorageName: storageName,
			Kind:        ClassifyKind(sf.Type),
			Primitive:   sf.Type.Kind() != reflect.Pointer,
			Index:       i,
			Type:        sf.Type,
		})
	}
	return plan, nil
}

// storageNameOf returns the storage name of a field, or false when the field is not persisted.
func storageNameOf(sf reflect.StructField, tagName string) (string, bool) {
	if sf.Name == "_" || sf.Anonymous {
		return "", false
	}
	tag, ok := sf.Tag.Lookup(tagName)
	if !ok {
		return sf.Name, true
	}
	if tag == "-" {
		return "", false
	}
	name, _, _ := strings.Cut(tag, ",")
	name = strings.TrimSpace(name)
	if name == "" {
		return sf.Name, true
	}
	return name, true
}

// ClassifyKind maps a declared field type (T or *T) to its value kind.
func ClassifyKind(t reflect.Type) rowmap.ValueKind {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == timeType {
		return rowmap.ValueKindTimestamp
	}
	switch t.Kind() {
	case reflect.String:
		return rowmap.ValueKindText
	case reflect.Int32:
		return rowmap.ValueKindInt32
	case reflect.Int64, reflect.Int:
		return rowmap.ValueKindInt64
	case reflect.Bool:
		return rowmap.ValueKindBool
	case reflect.Float32:
		return rowmap.ValueKindFloat32
	case reflect.Float64:
		return rowmap.ValueKindFloat64
	}
	if isTextCodec(t) {
		return rowmap.ValueKindText
	}
	return rowmap.ValueKindUnsupported
}

// isTextCodec reports whether values of t round-trip through MarshalText/UnmarshalText.
func isTextCodec(t reflect.Type) bool {
	return (t.Implements(textMarshalerType) || reflect.PointerTo(t).Implements(textMarshalerType)) &&
		reflect.PointerTo(t).Implements(textUnmarshalerType)
}
