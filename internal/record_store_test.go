package internal

import (
	"context"
	"errors"
	"reflect"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lychee-technology/rowmap"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type contactRow struct {
	ID        uuid.UUID  `db:"id"`
	Name      string     `db:"full_name"`
	Email     *string    `db:"email"`
	Age       int32      `db:"age"`
	Score     *float64   `db:"score"`
	Active    bool       `db:"active"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt *time.Time `db:"updated_at"`
}

func TestBuildInsert(t *testing.T) {
	values := rowmap.NewValues()
	values.PutString("name", "Ann")
	values.PutInt32("p_age", 30)
	values.PutNull("nick")

	query, args, err := buildInsert("public.people", values, dollarPlaceholder)
	require.NoError(t, err)
	assert.Equal(t, `INSERT INTO "public"."people" ("name", "p_age", "nick") VALUES ($1, $2, $3)`, query)
	assert.Equal(t, []any{"Ann", int32(30), nil}, args)

	query, _, err = buildInsert("people", values, questionPlaceholder)
	require.NoError(t, err)
	assert.Equal(t, `INSERT INTO "people" ("name", "p_age", "nick") VALUES (?, ?, ?)`, query)
}

func TestBuildInsert_DottedColumnName(t *testing.T) {
	values := rowmap.NewValues()
	values.PutString("a.b", "x")

	query, _, err := buildInsert("analytics.events", values, dollarPlaceholder)
	require.NoError(t, err)
	assert.Equal(t, `INSERT INTO "analytics"."events" ("a.b") VALUES ($1)`, query)
}

func TestBuildInsert_Errors(t *testing.T) {
	values := rowmap.NewValues()
	values.PutString("name", "Ann")

	_, _, err := buildInsert("", values, dollarPlaceholder)
	assert.Error(t, err)

	_, _, err = buildInsert("people", rowmap.NewValues(), dollarPlaceholder)
	assert.Error(t, err)

	_, _, err = buildInsert("people", nil, dollarPlaceholder)
	assert.Error(t, err)
}

func TestPgxRecordStore_InsertRecord(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewPgxRecordStore(mock, NewFieldMapper(rowmap.MappingConfig{TagName: "db"}))

	expected := `INSERT INTO "people" ("name", "p_age", "active") VALUES ($1, $2, $3)`
	mock.ExpectExec("^"+regexp.QuoteMeta(expected)+"$").
		WithArgs("Ann", int32(30), true).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, store.InsertRecord(ctx, "people", &person{Name: strPtr("Ann"), Age: 30, Active: true}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPgxRecordStore_InsertNullMarker(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewPgxRecordStore(mock, NewFieldMapper(rowmap.MappingConfig{TagName: "db"}))

	mock.ExpectExec(`INSERT INTO "people"`).
		WithArgs(nil, int32(0), false).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, store.InsertRecord(ctx, "people", person{}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPgxRecordStore_InsertError(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewPgxRecordStore(mock, NewFieldMapper(rowmap.MappingConfig{TagName: "db"}))
	dbErr := errors.New("relation does not exist")
	mock.ExpectExec(`INSERT INTO "people"`).WillReturnError(dbErr)

	err = store.InsertRecord(ctx, "people", &person{Age: 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, dbErr)

	err = store.InsertRecord(ctx, "people", nil)
	assert.True(t, rowmap.IsErrorType(err, rowmap.ErrorTypeConstruction))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPgxRecordStore_QueryRecords(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	columns := []string{"id", "full_name", "email", "age", "score", "active", "created_at", "updated_at", "extra"}
	rows := pgxmock.NewRows(columns).
		AddRow([16]byte(id), "Ann", "ann@example.com", int32(30), float64(9.5), true, created, nil, "ignored").
		AddRow([16]byte(id), "Bo", nil, int16(41), nil, false, created, created, nil)
	mock.ExpectQuery("SELECT").WithArgs(10).WillReturnRows(rows)

	store := NewPgxRecordStore(mock, NewFieldMapper(rowmap.MappingConfig{TagName: "db", Policy: rowmap.PolicyStrict}))
	contacts, err := QueryAs[contactRow](ctx, store, "SELECT * FROM contacts LIMIT $1", 10)
	require.NoError(t, err)
	require.Len(t, contacts, 2)

	ann := contacts[0]
	assert.Equal(t, id, ann.ID)
	assert.Equal(t, "Ann", ann.Name)
	require.NotNil(t, ann.Email)
	assert.Equal(t, "ann@example.com", *ann.Email)
	assert.Equal(t, int32(30), ann.Age)
	require.NotNil(t, ann.Score)
	assert.Equal(t, 9.5, *ann.Score)
	assert.True(t, ann.Active)
	assert.Equal(t, created, ann.CreatedAt)
	assert.Nil(t, ann.UpdatedAt)

	bo := contacts[1]
	assert.Nil(t, bo.Email)
	assert.Nil(t, bo.Score)
	assert.Equal(t, int32(41), bo.Age)
	assert.False(t, bo.Active)
	require.NotNil(t, bo.UpdatedAt)
	assert.Equal(t, created, *bo.UpdatedAt)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPgxRecordStore_QueryRecordsDecodeError(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	rows := pgxmock.NewRows([]string{"name", "p_age", "active"}).
		AddRow("Ann", "not a number", int64(1))
	mock.ExpectQuery("SELECT").WillReturnRows(rows)

	store := NewPgxRecordStore(mock, NewFieldMapper(rowmap.MappingConfig{TagName: "db", Policy: rowmap.PolicyStrict}))
	_, err = store.QueryRecords(ctx, reflect.TypeFor[person](), "SELECT name, p_age, active FROM people")
	require.Error(t, err)
	assert.True(t, rowmap.IsErrorType(err, rowmap.ErrorTypeFieldAccess))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPgxRecordStore_QueryError(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT").WillReturnError(errors.New("connection reset"))

	store := NewPgxRecordStore(mock, NewFieldMapper(rowmap.MappingConfig{TagName: "db"}))
	_, err = store.QueryRecords(ctx, reflect.TypeFor[person](), "SELECT 1")
	assert.ErrorContains(t, err, "connection reset")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPgxRecordStore_CreateTable(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	expected := `CREATE TABLE IF NOT EXISTS "people" ("name" TEXT, "p_age" INTEGER NOT NULL, "active" BOOLEAN NOT NULL)`
	mock.ExpectExec("^" + regexp.QuoteMeta(expected) + "$").
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))

	store := NewPgxRecordStore(mock, NewFieldMapper(rowmap.MappingConfig{TagName: "db"}))
	require.NoError(t, store.CreateTable(ctx, "people", reflect.TypeFor[person]()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPgxRow_ClosedOutsideCursor(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT").WillReturnRows(pgxmock.NewRows([]string{"Name"}).AddRow("Ann"))
	rows, err := mock.Query(ctx, "SELECT name")
	require.NoError(t, err)

	row := NewPgxRow(rows)
	assert.True(t, row.IsClosed())
	assert.Equal(t, []string{"Name"}, row.Columns())

	ok, err := row.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.False(t, row.IsClosed())
	assert.Equal(t, 0, row.ColumnIndex("name"), "lookup falls back to case-insensitive")
	s, err := row.GetString(0)
	require.NoError(t, err)
	assert.Equal(t, "Ann", s)

	ok, err = row.Next()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, row.IsClosed())

	m := NewFieldMapper(rowmap.MappingConfig{TagName: "db"})
	out, err := m.Decode(row, reflect.TypeFor[person]())
	assert.NoError(t, err)
	assert.Nil(t, out)
	row.Close()
}
