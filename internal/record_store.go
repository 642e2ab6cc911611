package internal

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lychee-technology/rowmap"
)

// PgxPool is the subset of *pgxpool.Pool used by PgxRecordStore.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PgxRecordStore reads and writes records through a pgx pool.
type PgxRecordStore struct {
	pool   PgxPool
	mapper rowmap.FieldMapper
}

var _ rowmap.RecordStore = (*PgxRecordStore)(nil)

func NewPgxRecordStore(pool PgxPool, mapper rowmap.FieldMapper) *PgxRecordStore {
	return &PgxRecordStore{pool: pool, mapper: mapper}
}

func (s *PgxRecordStore) CreateTable(ctx context.Context, table string, recordType reflect.Type) error {
	ddl, err := createTableFor(s.mapper, table, recordType, DialectPostgres)
	if err != nil {
		return err
	}
	if _, err := s.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("create table %s: %w", table, err)
	}
	return nil
}

func (s *PgxRecordStore) Insert(ctx context.Context, table string, values *rowmap.Values) error {
	query, args, err := buildInsert(table, values, dollarPlaceholder)
	if err != nil {
		return err
	}
	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert into %s: %w", table, err)
	}
	return nil
}

func (s *PgxRecordStore) InsertRecord(ctx context.Context, table string, record any) error {
	values, err := s.mapper.Encode(record)
	if err != nil {
		return err
	}
	return s.Insert(ctx, table, values)
}

// QueryRecords runs query and decodes every returned row into a new record.
func (s *PgxRecordStore) QueryRecords(ctx context.Context, recordType reflect.Type, query string, args ...any) ([]any, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	row := NewPgxRow(rows)
	defer row.Close()

	return collectRecords(s.mapper, recordType, row, row.Next)
}

// SQLDB is the subset of *sql.DB used by SQLRecordStore.
type SQLDB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// SQLRecordStore reads and writes records through database/sql.
// The dialect selects bind parameters ($n for Postgres, ? for DuckDB) and DDL types.
type SQLRecordStore struct {
	db      SQLDB
	mapper  rowmap.FieldMapper
	dialect SQLDialect
}

var _ rowmap.RecordStore = (*SQLRecordStore)(nil)

func NewSQLRecordStore(db SQLDB, mapper rowmap.FieldMapper, dialect SQLDialect) *SQLRecordStore {
	return &SQLRecordStore{db: db, mapper: mapper, dialect: dialect}
}

func (s *SQLRecordStore) CreateTable(ctx context.Context, table string, recordType reflect.Type) error {
	ddl, err := createTableFor(s.mapper, table, recordType, s.dialect)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create table %s: %w", table, err)
	}
	return nil
}

func (s *SQLRecordStore) Insert(ctx context.Context, table string, values *rowmap.Values) error {
	placeholder := dollarPlaceholder
	if s.dialect == DialectDuckDB {
		placeholder = questionPlaceholder
	}
	query, args, err := buildInsert(table, values, placeholder)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert into %s: %w", table, err)
	}
	return nil
}

func (s *SQLRecordStore) InsertRecord(ctx context.Context, table string, record any) error {
	values, err := s.mapper.Encode(record)
	if err != nil {
		return err
	}
	return s.Insert(ctx, table, values)
}

func (s *SQLRecordStore) QueryRecords(ctx context.Context, recordType reflect.Type, query string, args ...any) ([]any, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	row, err := NewSQLRow(rows)
	if err != nil {
		rows.Close()
		return nil, err
	}
	defer row.Close()

	return collectRecords(s.mapper, recordType, row, row.Next)
}

// collectRecords decodes rows until next reports exhaustion. Rows that decode to nil are skipped.
func collectRecords(mapper rowmap.FieldMapper, recordType reflect.Type, row rowmap.RowAccessor, next func() (bool, error)) ([]any, error) {
	var out []any
	for {
		ok, err := next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return out, nil
		}
		record, err := mapper.Decode(row, recordType)
		if err != nil {
			return nil, err
		}
		if record != nil {
			out = append(out, record)
		}
	}
}

// QueryAs is QueryRecords with the record type taken from T.
func QueryAs[T any](ctx context.Context, store rowmap.RecordStore, query string, args ...any) ([]*T, error) {
	records, err := store.QueryRecords(ctx, reflect.TypeFor[T](), query, args...)
	if err != nil {
		return nil, err
	}
	out := make([]*T, 0, len(records))
	for _, r := range records {
		out = append(out, r.(*T))
	}
	return out, nil
}

func dollarPlaceholder(i int) string {
	return fmt.Sprintf("$%d", i)
}

func questionPlaceholder(int) string {
	return "?"
}

func createTableFor(mapper rowmap.FieldMapper, table string, recordType reflect.Type, dialect SQLDialect) (string, error) {
	plan, err := mapper.Plan(recordType)
	if err != nil {
		return "", err
	}
	return CreateTableSQL(plan, table, dialect)
}

// buildInsert renders a single-row INSERT for values in key order.
func buildInsert(table string, values *rowmap.Values, placeholder func(int) string) (string, []any, error) {
	tableName := sanitizeIdentifier(table)
	if tableName == "" {
		return "", nil, fmt.Errorf("table name is required")
	}
	if values.Len() == 0 {
		return "", nil, fmt.Errorf("no values to insert into %s", table)
	}

	keys := values.Keys()
	columns := make([]string, len(keys))
	marks := make([]string, len(keys))
	args := make([]any, len(keys))
	for i, key := range keys {
		columns[i] = quoteColumn(key)
		marks[i] = placeholder(i + 1)
		args[i], _ = values.Get(key)
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		tableName, strings.Join(columns, ", "), strings.Join(marks, ", "))
	return query, args, nil
}
