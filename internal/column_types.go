package internal

import (
	"fmt"
	"strings"

	"github.com/lychee-technology/rowmap"
)

// SQLDialect selects column type spellings for generated DDL.
type SQLDialect string

const (
	DialectPostgres SQLDialect = "postgres"
	DialectDuckDB   SQLDialect = "duckdb"
)

// MapValueKindToColumnType maps a value kind to the SQL column type holding its encoded form.
// Timestamps are stored as epoch milliseconds.
func MapValueKindToColumnType(kind rowmap.ValueKind, dialect SQLDialect) (string, error) {
	switch kind {
	case rowmap.ValueKindText:
		if dialect == DialectDuckDB {
			return "VARCHAR", nil
		}
		return "TEXT", nil
	case rowmap.ValueKindInt32:
		return "INTEGER", nil
	case rowmap.ValueKindInt64, rowmap.ValueKindTimestamp:
		return "BIGINT", nil
	case rowmap.ValueKindBool:
		return "BOOLEAN", nil
	case rowmap.ValueKindFloat32:
		return "REAL", nil
	case rowmap.ValueKindFloat64:
		if dialect == DialectDuckDB {
			return "DOUBLE", nil
		}
		return "DOUBLE PRECISION", nil
	default:
		return "", fmt.Errorf("no column type for value kind %q", kind)
	}
}

// CreateTableSQL renders CREATE TABLE IF NOT EXISTS for the persisted fields of plan.
// Unsupported fields are left out; primitive fields are NOT NULL.
func CreateTableSQL(plan *rowmap.FieldPlan, table string, dialect SQLDialect) (string, error) {
	tableName := sanitizeIdentifier(table)
	if tableName == "" {
		return "", fmt.Errorf("table name is required")
	}

	columns := make([]string, 0, plan.Len())
	for _, fd := range plan.Fields {
		if !fd.Kind.IsSupported() {
			continue
		}
		colType, err := MapValueKindToColumnType(fd.Kind, dialect)
		if err != nil {
			return "", err
		}
		col := quoteColumn(fd.StorageName) + " " + colType
		if fd.Primitive {
			col += " NOT NULL"
		}
		columns = append(columns, col)
	}
	if len(columns) == 0 {
		return "", fmt.Errorf("record type has no persisted columns")
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", tableName, strings.Join(columns, ", ")), nil
}
