package rowmap

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValueKind(t *testing.T) {
	assert.Equal(t, "unsupported", ValueKindUnsupported.String())
	assert.Equal(t, "timestamp", ValueKindTimestamp.String())

	for _, k := range []ValueKind{ValueKindText, ValueKindInt32, ValueKindBool, ValueKindInt64,
		ValueKindFloat32, ValueKindFloat64, ValueKindTimestamp} {
		assert.True(t, k.IsSupported(), k.String())
	}
	assert.False(t, ValueKindUnsupported.IsSupported())
	assert.False(t, ValueKind("decimal").IsSupported())
}

func TestFieldDescriptorExported(t *testing.T) {
	assert.True(t, FieldDescriptor{Name: "Name"}.Exported())
	assert.False(t, FieldDescriptor{Name: "name"}.Exported())
	assert.False(t, FieldDescriptor{}.Exported())
}

func TestFieldPlan(t *testing.T) {
	plan := &FieldPlan{
		Type: reflect.TypeFor[struct{}](),
		Fields: []FieldDescriptor{
			{Name: "Name", StorageName: "full_name", Kind: ValueKindText},
			{Name: "Age", StorageName: "age", Kind: ValueKindInt32, Primitive: true},
		},
	}
	assert.Equal(t, 2, plan.Len())
	assert.Equal(t, []string{"full_name", "age"}, plan.StorageNames())

	fd, ok := plan.Lookup("age")
	assert.True(t, ok)
	assert.Equal(t, "Age", fd.Name)
	_, ok = plan.Lookup("Age")
	assert.False(t, ok)

	var nilPlan *FieldPlan
	assert.Zero(t, nilPlan.Len())
	assert.Empty(t, nilPlan.StorageNames())
	_, ok = nilPlan.Lookup("age")
	assert.False(t, ok)
}
