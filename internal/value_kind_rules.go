package internal

import (
	"encoding"
	"fmt"
	"reflect"
	"time"

	"github.com/lychee-technology/rowmap"
)

// kindRule is the pair of coercions used for one value kind.
// target and value are always the non-pointer element; target is addressable.
type kindRule struct {
	read  func(row rowmap.RowAccessor, index int, target reflect.Value) error
	write func(out rowmap.FieldWriter, name string, value reflect.Value) error
}

var valueKindRules = map[rowmap.ValueKind]kindRule{
	rowmap.ValueKindText: {
		read:  readText,
		write: writeText,
	},
	rowmap.ValueKindInt32: {
		read: func(row rowmap.RowAccessor, index int, target reflect.Value) error {
			n, err := row.GetInt64(index)
			if err != nil {
				return err
			}
			target.SetInt(int64(int32(n)))
			return nil
		},
		write: func(out rowmap.FieldWriter, name string, value reflect.Value) error {
			out.PutInt32(name, int32(value.Int()))
			return nil
		},
	},
	rowmap.ValueKindBool: {
		read: func(row rowmap.RowAccessor, index int, target reflect.Value) error {
			n, err := row.GetInt64(index)
			if err != nil {
				return err
			}
			target.SetBool(n > 0)
			return nil
		},
		write: func(out rowmap.FieldWriter, name string, value reflect.Value) error {
			out.PutBool(name, value.Bool())
			return nil
		},
	},
	rowmap.ValueKindInt64: {
		read: func(row rowmap.RowAccessor, index int, target reflect.Value) error {
			n, err := row.GetInt64(index)
			if err != nil {
				return err
			}
			target.SetInt(n)
			return nil
		},
		write: func(out rowmap.FieldWriter, name string, value reflect.Value) error {
			out.PutInt64(name, value.Int())
			return nil
		},
	},
	rowmap.ValueKindFloat32: {
		read: func(row rowmap.RowAccessor, index int, target reflect.Value) error {
			f, err := row.GetFloat32(index)
			if err != nil {
				return err
			}
			target.SetFloat(float64(f))
			return nil
		},
		write: func(out rowmap.FieldWriter, name string, value reflect.Value) error {
			out.PutFloat32(name, float32(value.Float()))
			return nil
		},
	},
	rowmap.ValueKindFloat64: {
		read: func(row rowmap.RowAccessor, index int, target reflect.Value) error {
			f, err := row.GetFloat64(index)
			if err != nil {
				return err
			}
			target.SetFloat(f)
			return nil
		},
		write: func(out rowmap.FieldWriter, name string, value reflect.Value) error {
			out.PutFloat64(name, value.Float())
			return nil
		},
	},
	rowmap.ValueKindTimestamp: {
		read: func(row rowmap.RowAccessor, index int, target reflect.Value) error {
			ms, err := row.GetInt64(index)
			if err != nil {
				return err
			}
			target.Set(reflect.ValueOf(time.UnixMilli(ms).UTC()))
			return nil
		},
		write: func(out rowmap.FieldWriter, name string, value reflect.Value) error {
			t, ok := value.Interface().(time.Time)
			if !ok {
				return fmt.Errorf("expected time.Time, got %s", value.Type())
			}
			out.PutInt64(name, t.UnixMilli())
			return nil
		},
	},
}

func readText(row rowmap.RowAccessor, index int, target reflect.Value) error {
	s, err := row.GetString(index)
	if err != nil {
		return err
	}
	if target.Kind() == reflect.String {
		target.SetString(s)
		return nil
	}
	u, ok := target.Addr().Interface().(encoding.TextUnmarshaler)
	if !ok {
		return fmt.Errorf("%s does not implement encoding.TextUnmarshaler", target.Type())
	}
	if err := u.UnmarshalText([]byte(s)); err != nil {
		return fmt.Errorf("unmarshal text: %w", err)
	}
	return nil
}

func writeText(out rowmap.FieldWriter, name string, value reflect.Value) error {
	if value.Kind() == reflect.String {
		out.PutString(name, value.String())
		return nil
	}
	var m encoding.TextMarshaler
	if tm, ok := value.Interface().(encoding.TextMarshaler); ok {
		m = tm
	} else if value.CanAddr() {
		m, _ = value.Addr().Interface().(encoding.TextMarshaler)
	}
	if m == nil {
		return fmt.Errorf("%s does not implement encoding.TextMarshaler", value.Type())
	}
	b, err := m.MarshalText()
	if err != nil {
		return fmt.Errorf("marshal text: %w", err)
	}
	out.PutString(name, string(b))
	return nil
}
