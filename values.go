package rowmap

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Values is an ordered name→value map produced by Encode.
// A nil entry is a null marker.
type Values struct {
	keys   []string
	values map[string]any
}

func NewValues() *Values {
	return &Values{values: make(map[string]any)}
}

func (v *Values) put(name string, value any) {
	if v.values == nil {
		v.values = make(map[string]any)
	}
	if _, ok := v.values[name]; !ok {
		v.keys = append(v.keys, name)
	}
	v.values[name] = value
}

func (v *Values) PutNull(name string)                   { v.put(name, nil) }
func (v *Values) PutString(name string, value string)   { v.put(name, value) }
func (v *Values) PutInt32(name string, value int32)     { v.put(name, value) }
func (v *Values) PutInt64(name string, value int64)     { v.put(name, value) }
func (v *Values) PutBool(name string, value bool)       { v.put(name, value) }
func (v *Values) PutFloat32(name string, value float32) { v.put(name, value) }
func (v *Values) PutFloat64(name string, value float64) { v.put(name, value) }

// Get returns the stored value; a null marker is (nil, true).
func (v *Values) Get(name string) (any, bool) {
	if v == nil {
		return nil, false
	}
	val, ok := v.values[name]
	return val, ok
}

// IsNull reports whether name holds a null marker.
func (v *Values) IsNull(name string) bool {
	val, ok := v.Get(name)
	return ok && val == nil
}

// Keys returns the names in insertion order.
func (v *Values) Keys() []string {
	if v == nil {
		return nil
	}
	out := make([]string, len(v.keys))
	copy(out, v.keys)
	return out
}

func (v *Values) Len() int {
	if v == nil {
		return 0
	}
	return len(v.keys)
}

// Map returns a copy of the values as a plain map.
func (v *Values) Map() map[string]any {
	out := make(map[string]any, v.Len())
	if v == nil {
		return out
	}
	for k, val := range v.values {
		out[k] = val
	}
	return out
}

// MarshalJSON encodes the values as a JSON object in key order.
func (v *Values) MarshalJSON() ([]byte, error) {
	if v == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range v.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(v.values[k])
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", k, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Row returns a RowAccessor positioned on the values.
func (v *Values) Row() RowAccessor {
	return &valuesRow{values: v}
}

type valuesRow struct {
	values *Values
}

func (r *valuesRow) IsClosed() bool { return r.values == nil }

func (r *valuesRow) ColumnIndex(name string) int {
	for i, k := range r.values.keys {
		if k == name {
			return i
		}
	}
	return -1
}

func (r *valuesRow) at(index int) (any, error) {
	if index < 0 || index >= len(r.values.keys) {
		return nil, fmt.Errorf("column index %d out of range", index)
	}
	return r.values.values[r.values.keys[index]], nil
}

func (r *valuesRow) IsNull(index int) bool {
	val, err := r.at(index)
	return err == nil && val == nil
}

func (r *valuesRow) GetString(index int) (string, error) {
	val, err := r.at(index)
	if err != nil {
		return "", err
	}
	switch s := val.(type) {
	case nil:
		return "", nil
	case string:
		return s, nil
	default:
		return "", fmt.Errorf("cannot read %T as text", val)
	}
}

func (r *valuesRow) GetInt64(index int) (int64, error) {
	val, err := r.at(index)
	if err != nil {
		return 0, err
	}
	switch n := val.(type) {
	case nil:
		return 0, nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case bool:
		if n {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, fmt.Errorf("cannot read %T as int64", val)
	}
}

func (r *valuesRow) GetFloat32(index int) (float32, error) {
	f, err := r.GetFloat64(index)
	return float32(f), err
}

func (r *valuesRow) GetFloat64(index int) (float64, error) {
	val, err := r.at(index)
	if err != nil {
		return 0, err
	}
	switch n := val.(type) {
	case nil:
		return 0, nil
	case float32:
		return float64(n), nil
	case float64:
		return n, nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("cannot read %T as float", val)
	}
}
