package rowmap

import (
	"reflect"
)

// ValueKind is the storage category a record field is coerced through.
type ValueKind string

const (
	ValueKindUnsupported ValueKind = ""
	ValueKindText        ValueKind = "text"
	ValueKindInt32       ValueKind = "int32"
	ValueKindBool        ValueKind = "bool"
	ValueKindInt64       ValueKind = "int64"
	ValueKindFloat32     ValueKind = "float32"
	ValueKindFloat64     ValueKind = "float64"
	ValueKindTimestamp   ValueKind = "timestamp"
)

func (k ValueKind) String() string {
	if k == ValueKindUnsupported {
		return "unsupported"
	}
	return string(k)
}

// IsSupported reports whether a coercion rule exists for the kind.
func (k ValueKind) IsSupported() bool {
	switch k {
	case ValueKindText, ValueKindInt32, ValueKindBool, ValueKindInt64,
		ValueKindFloat32, ValueKindFloat64, ValueKindTimestamp:
		return true
	default:
		return false
	}
}

// FieldDescriptor describes one persisted field of a record type.
type FieldDescriptor struct {
	Name        string       // Declared Go identifier
	StorageName string       // Column / key name, tag override or Name
	Kind        ValueKind    // Coercion rule
	Primitive   bool         // Declared type cannot hold nil
	Index       int          // Struct field index
	Type        reflect.Type // Declared type, pointer included
}

// Exported reports whether the declared identifier is exported.
func (d FieldDescriptor) Exported() bool {
	return d.Name != "" && d.Name[0] >= 'A' && d.Name[0] <= 'Z'
}

// FieldPlan is the ordered list of persisted fields of a record type.
type FieldPlan struct {
	Type   reflect.Type
	Fields []FieldDescriptor
}

func (p *FieldPlan) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Fields)
}

// Lookup returns the first descriptor stored under storageName.
func (p *FieldPlan) Lookup(storageName string) (FieldDescriptor, bool) {
	if p == nil {
		return FieldDescriptor{}, false
	}
	for _, fd := range p.Fields {
		if fd.StorageName == storageName {
			return fd, true
		}
	}
	return FieldDescriptor{}, false
}

// StorageNames returns the storage names in plan order.
func (p *FieldPlan) StorageNames() []string {
	names := make([]string, 0, p.Len())
	if p == nil {
		return names
	}
	for _, fd := range p.Fields {
		names = append(names, fd.StorageName)
	}
	return names
}
