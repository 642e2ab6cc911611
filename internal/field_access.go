package internal

import (
	"fmt"
	"reflect"
	"unsafe"
)

// withFieldAccess runs fn against a writable view of field index of the
// addressable struct value record. Unexported fields are reached through an
// alias that lives only for the duration of fn; reflect panics become errors.
func withFieldAccess(record reflect.Value, index int, fn func(field reflect.Value) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("field access panicked: %v", r)
		}
	}()

	field := record.Field(index)
	if !field.CanSet() {
		field = reflect.NewAt(field.Type(), unsafe.Pointer(field.UnsafeAddr())).Elem()
	}
	return fn(field)
}
