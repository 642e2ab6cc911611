package rowmap

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValues(t *testing.T) {
	v := NewValues()
	v.PutString("name", "Ann")
	v.PutInt32("age", 30)
	v.PutNull("email")
	v.PutBool("active", true)
	v.PutInt32("age", 31)

	assert.Equal(t, 4, v.Len())
	assert.Equal(t, []string{"name", "age", "email", "active"}, v.Keys())

	age, ok := v.Get("age")
	assert.True(t, ok)
	assert.Equal(t, int32(31), age)

	assert.True(t, v.IsNull("email"))
	assert.False(t, v.IsNull("name"))
	assert.False(t, v.IsNull("missing"))

	m := v.Map()
	m["name"] = "changed"
	got, _ := v.Get("name")
	assert.Equal(t, "Ann", got)
}

func TestValues_Nil(t *testing.T) {
	var v *Values
	assert.Zero(t, v.Len())
	assert.Nil(t, v.Keys())
	assert.Empty(t, v.Map())
	_, ok := v.Get("x")
	assert.False(t, ok)
	assert.True(t, v.Row().IsClosed())

	raw, err := json.Marshal(v)
	require.NoError(t, err)
	assert.Equal(t, "null", string(raw))
}

func TestValues_MarshalJSONKeepsOrder(t *testing.T) {
	v := NewValues()
	v.PutString("zeta", "z")
	v.PutInt64("alpha", 1700000000000)
	v.PutNull("mid")
	v.PutFloat64("score", 9.5)

	raw, err := json.Marshal(v)
	require.NoError(t, err)
	assert.Equal(t, `{"zeta":"z","alpha":1700000000000,"mid":null,"score":9.5}`, string(raw))

	raw, err = json.Marshal(NewValues())
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(raw))
}

func TestValuesRow(t *testing.T) {
	v := NewValues()
	v.PutString("name", "Ann")
	v.PutInt32("age", 30)
	v.PutBool("active", true)
	v.PutFloat32("ratio", 0.5)
	v.PutNull("email")

	row := v.Row()
	assert.False(t, row.IsClosed())
	assert.Equal(t, 1, row.ColumnIndex("age"))
	assert.Equal(t, -1, row.ColumnIndex("missing"))

	s, err := row.GetString(0)
	require.NoError(t, err)
	assert.Equal(t, "Ann", s)

	n, err := row.GetInt64(1)
	require.NoError(t, err)
	assert.Equal(t, int64(30), n)

	b, err := row.GetInt64(2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), b)

	f, err := row.GetFloat64(3)
	require.NoError(t, err)
	assert.Equal(t, 0.5, f)

	assert.True(t, row.IsNull(4))
	s, err = row.GetString(4)
	require.NoError(t, err)
	assert.Empty(t, s)

	_, err = row.GetString(1)
	assert.Error(t, err)
	_, err = row.GetInt64(9)
	assert.Error(t, err)
	assert.False(t, row.IsNull(9))
}
