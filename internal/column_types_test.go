package internal

import (
	"reflect"
	"testing"

	"github.com/lychee-technology/rowmap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapValueKindToColumnType(t *testing.T) {
	tests := []struct {
		kind     rowmap.ValueKind
		postgres string
		duckdb   string
	}{
		{rowmap.ValueKindText, "TEXT", "VARCHAR"},
		{rowmap.ValueKindInt32, "INTEGER", "INTEGER"},
		{rowmap.ValueKindInt64, "BIGINT", "BIGINT"},
		{rowmap.ValueKindTimestamp, "BIGINT", "BIGINT"},
		{rowmap.ValueKindBool, "BOOLEAN", "BOOLEAN"},
		{rowmap.ValueKindFloat32, "REAL", "REAL"},
		{rowmap.ValueKindFloat64, "DOUBLE PRECISION", "DOUBLE"},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			got, err := MapValueKindToColumnType(tt.kind, DialectPostgres)
			require.NoError(t, err)
			assert.Equal(t, tt.postgres, got)

			got, err = MapValueKindToColumnType(tt.kind, DialectDuckDB)
			require.NoError(t, err)
			assert.Equal(t, tt.duckdb, got)
		})
	}

	_, err := MapValueKindToColumnType("", DialectPostgres)
	assert.Error(t, err)
}

func TestCreateTableSQL(t *testing.T) {
	plan, err := BuildFieldPlan(reflect.TypeFor[withUnsupported](), "db")
	require.NoError(t, err)

	ddl, err := CreateTableSQL(plan, "people", DialectPostgres)
	require.NoError(t, err)
	assert.Equal(t, `CREATE TABLE IF NOT EXISTS "people" ("name" TEXT NOT NULL, "age" INTEGER NOT NULL)`, ddl)

	plan, err = BuildFieldPlan(reflect.TypeFor[contactRow](), "db")
	require.NoError(t, err)
	ddl, err = CreateTableSQL(plan, "contacts", DialectDuckDB)
	require.NoError(t, err)
	assert.Contains(t, ddl, `"email" VARCHAR,`)
	assert.Contains(t, ddl, `"score" DOUBLE,`)
	assert.Contains(t, ddl, `"created_at" BIGINT NOT NULL`)
	assert.Contains(t, ddl, `"updated_at" BIGINT)`)
}

func TestCreateTableSQL_DottedColumnName(t *testing.T) {
	type dotted struct {
		Ref string `db:"a.b"`
	}
	plan, err := BuildFieldPlan(reflect.TypeFor[dotted](), "db")
	require.NoError(t, err)

	ddl, err := CreateTableSQL(plan, "public.refs", DialectPostgres)
	require.NoError(t, err)
	assert.Equal(t, `CREATE TABLE IF NOT EXISTS "public"."refs" ("a.b" TEXT NOT NULL)`, ddl)
}

func TestCreateTableSQL_Errors(t *testing.T) {
	plan, err := BuildFieldPlan(reflect.TypeFor[person](), "db")
	require.NoError(t, err)
	_, err = CreateTableSQL(plan, "", DialectPostgres)
	assert.Error(t, err)

	type onlyMaps struct {
		Meta map[string]string `db:"meta"`
	}
	plan, err = BuildFieldPlan(reflect.TypeFor[onlyMaps](), "db")
	require.NoError(t, err)
	_, err = CreateTableSQL(plan, "t", DialectPostgres)
	assert.Error(t, err)
}
