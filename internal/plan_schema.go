package internal

import (
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/lychee-technology/rowmap"
)

var jsonTypeByKind = map[rowmap.ValueKind]string{
	rowmap.ValueKindText:      "string",
	rowmap.ValueKindInt32:     "integer",
	rowmap.ValueKindInt64:     "integer",
	rowmap.ValueKindTimestamp: "integer",
	rowmap.ValueKindBool:      "boolean",
	rowmap.ValueKindFloat32:   "number",
	rowmap.ValueKindFloat64:   "number",
}

// PlanJSONSchema describes the encoded form of a record as a JSON Schema object.
// Nullable fields accept null; primitive fields are required.
func PlanJSONSchema(plan *rowmap.FieldPlan) *jsonschema.Schema {
	schema := &jsonschema.Schema{
		Type:       "object",
		Properties: make(map[string]*jsonschema.Schema, plan.Len()),
	}
	if plan == nil {
		return schema
	}
	if plan.Type != nil {
		schema.Title = plan.Type.Name()
	}

	for _, fd := range plan.Fields {
		jsonType, ok := jsonTypeByKind[fd.Kind]
		if !ok {
			continue
		}
		prop := &jsonschema.Schema{}
		if fd.Primitive {
			prop.Type = jsonType
			schema.Required = append(schema.Required, fd.StorageName)
		} else {
			prop.Types = []string{jsonType, "null"}
		}
		switch fd.Kind {
		case rowmap.ValueKindTimestamp:
			prop.Description = "epoch milliseconds"
		case rowmap.ValueKindInt32:
			prop.Minimum = floatPtr(-1 << 31)
			prop.Maximum = floatPtr(1<<31 - 1)
		}
		schema.Properties[fd.StorageName] = prop
	}
	return schema
}

// ValidateValues checks encoded values against the plan's JSON Schema.
func ValidateValues(plan *rowmap.FieldPlan, values *rowmap.Values) error {
	if plan == nil {
		return fmt.Errorf("field plan is nil")
	}
	resolved, err := PlanJSONSchema(plan).Resolve(&jsonschema.ResolveOptions{})
	if err != nil {
		return fmt.Errorf("failed to resolve JSON schema: %w", err)
	}

	// Validate the JSON form so numbers are checked the way an exported document would be.
	raw, err := json.Marshal(values.Map())
	if err != nil {
		return rowmap.NewValidationError("values are not JSON encodable").WithCause(err)
	}
	var instance any
	if err := json.Unmarshal(raw, &instance); err != nil {
		return fmt.Errorf("failed to unmarshal JSON data: %w", err)
	}

	if err := resolved.Validate(instance); err != nil {
		return rowmap.NewValidationError("values do not match record schema").
			WithRecordType(typeName(plan.Type)).WithCause(err)
	}
	return nil
}

func floatPtr(f float64) *float64 {
	return &f
}
