package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayushraiyani0003/HRCentral-sub004/internal/db/interfaces"
	"github.com/ayushraiyani0003/HRCentral-sub004/internal/db/query"
)

var skillSchema = &interfaces.Schema{
	TableName: "skills",
	Fields: map[string]interfaces.FieldSchema{
		"id":         {Type: "string", PrimaryKey: true},
		"name":       {Type: "string", Unique: true},
		"category":   {Type: "string", Nullable: true},
		"level":      {Type: "int", Nullable: true},
		"created_at": {Type: "time"},
		"updated_at": {Type: "time"},
	},
}

const (
	idGo   = "11111111-1111-1111-1111-111111111111"
	idRust = "22222222-2222-2222-2222-222222222222"
)

func newMockRepo(t *testing.T) (pgxmock.PgxPoolIface, *Database, *Repository, time.Time) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	mock.MatchExpectationsInOrder(true)

	fixed := time.Date(2024, 3, 4, 5, 6, 7, 0, time.UTC)
	db := NewWithPool(mock, nil)
	db.withClock(func() time.Time { return fixed })
	return mock, db, NewRepository(db, skillSchema), fixed
}

func recordRows(fixed time.Time) *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "data", "created_at", "updated_at"}).
		AddRow(idGo, []byte(`{"name":"Go","category":"Backend","level":3}`), fixed, fixed).
		AddRow(idRust, []byte(`{"name":"Rust","category":"Systems","level":2}`), fixed.Add(time.Minute), fixed.Add(time.Minute))
}

func TestGetByIDDecodesDocument(t *testing.T) {
	mock, _, repo, fixed := newMockRepo(t)

	mock.ExpectQuery("^" + regexp.QuoteMeta("SELECT id::text, data, created_at, updated_at FROM records WHERE kind = $1 AND id = $2") + "$").
		WithArgs("skills", idGo).
		WillReturnRows(pgxmock.NewRows([]string{"id", "data", "created_at", "updated_at"}).
			AddRow(idGo, []byte(`{"name":"Go","level":3}`), fixed, fixed))

	record, err := repo.GetByID(context.Background(), interfaces.StringID(idGo))
	require.NoError(t, err)
	assert.Equal(t, idGo, record["id"])
	assert.Equal(t, "Go", record["name"])
	assert.Equal(t, 3, record["level"], "int fields normalized from JSON numbers")
	assert.Equal(t, fixed, record["created_at"])

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDMissing(t *testing.T) {
	mock, _, repo, _ := newMockRepo(t)

	mock.ExpectQuery("SELECT").WithArgs("skills", idGo).WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByID(context.Background(), interfaces.StringID(idGo))
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindManySearchesAndSortsInGo(t *testing.T) {
	mock, _, repo, fixed := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("(data->>$2::text) ILIKE $3")).
		WithArgs("skills", "name", "%r%").
		WillReturnRows(recordRows(fixed))

	page, err := repo.FindMany(context.Background(), &interfaces.Query{
		Where:   query.Search("r", []string{"name"}),
		OrderBy: []interfaces.OrderBy{{Field: "level", Direction: "asc"}},
	})
	require.NoError(t, err)
	require.Len(t, page.Data, 2)
	assert.Equal(t, int64(2), page.Total)
	assert.Equal(t, "Rust", page.Data[0]["name"])
	assert.Equal(t, "Go", page.Data[1]["name"])

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindManyRejectsUnknownFields(t *testing.T) {
	_, _, repo, _ := newMockRepo(t)

	_, err := repo.FindMany(context.Background(), &interfaces.Query{
		Where: &interfaces.Filters{Conditions: []interfaces.Filter{{Field: "name; DROP TABLE records", Value: "x"}}},
	})
	assert.ErrorIs(t, err, interfaces.ErrInvalidQuery)
}

func TestCreateInsertsDocument(t *testing.T) {
	mock, _, repo, fixed := newMockRepo(t)

	mock.ExpectExec("^" + regexp.QuoteMeta("INSERT INTO records (kind, id, data, created_at, updated_at) VALUES ($1, $2, $3, $4, $4)") + "$").
		WithArgs("skills", pgxmock.AnyArg(), []byte(`{"category":"Backend","name":"Go"}`), fixed).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	record, err := repo.Create(context.Background(), map[string]interface{}{"name": "Go", "category": "Backend"})
	require.NoError(t, err)
	assert.NotEmpty(t, record["id"])
	assert.Equal(t, fixed, record["created_at"])
	assert.Equal(t, fixed, record["updated_at"])

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateMapsUniqueViolation(t *testing.T) {
	mock, _, repo, _ := newMockRepo(t)

	mock.ExpectExec("INSERT INTO records").
		WillReturnError(&pgconn.PgError{Code: "23505", Detail: "Key (kind, name)=(skills, go) already exists."})

	_, err := repo.Create(context.Background(), map[string]interface{}{"name": "Go"})
	assert.ErrorIs(t, err, interfaces.ErrUniqueConstraint)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateValidatesBeforeQuerying(t *testing.T) {
	mock, _, repo, _ := newMockRepo(t)

	_, err := repo.Create(context.Background(), map[string]interface{}{"category": "Backend"})
	assert.ErrorIs(t, err, interfaces.ErrInvalidData)

	_, err = repo.Create(context.Background(), map[string]interface{}{"name": "Go", "level": "high"})
	assert.ErrorIs(t, err, interfaces.ErrInvalidData)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateMergesPatch(t *testing.T) {
	mock, _, repo, fixed := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE records SET data = data || $3::jsonb, updated_at = $4 WHERE kind = $1 AND id = $2 RETURNING")).
		WithArgs("skills", idGo, []byte(`{"category":"Languages"}`), fixed).
		WillReturnRows(pgxmock.NewRows([]string{"id", "data", "created_at", "updated_at"}).
			AddRow(idGo, []byte(`{"name":"Go","category":"Languages"}`), fixed.Add(-time.Hour), fixed))

	record, err := repo.Update(context.Background(), interfaces.StringID(idGo), map[string]interface{}{
		"id":       "ignored",
		"category": "Languages",
	})
	require.NoError(t, err)
	assert.Equal(t, "Languages", record["category"])
	assert.Equal(t, fixed, record["updated_at"])

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteMissingRow(t *testing.T) {
	mock, _, repo, _ := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM records WHERE kind = $1 AND id = $2")).
		WithArgs("skills", idGo).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM records")).
		WithArgs("skills", idRust).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	assert.ErrorIs(t, repo.Delete(context.Background(), interfaces.StringID(idGo)), interfaces.ErrNotFound)
	assert.NoError(t, repo.Delete(context.Background(), interfaces.StringID(idRust)))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCountWithFilter(t *testing.T) {
	mock, _, repo, _ := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM records WHERE kind = $1 AND lower((data->>$2::text)) = lower($3)")).
		WithArgs("skills", "category", "backend").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(4)))

	n, err := repo.Count(context.Background(), &interfaces.Query{
		Where: query.Equals(map[string]string{"category": "backend"}, []string{"category"}),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSeedRunsInOneTransaction(t *testing.T) {
	mock, db, _, fixed := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("(data->>$2::text) = $3")).
		WithArgs("skills", "name", "Go").
		WillReturnRows(pgxmock.NewRows([]string{"id", "data", "created_at", "updated_at"}))
	mock.ExpectExec("INSERT INTO records").
		WithArgs("skills", pgxmock.AnyArg(), pgxmock.AnyArg(), fixed).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery(regexp.QuoteMeta("(data->>$2::text) = $3")).
		WithArgs("skills", "name", "Rust").
		WillReturnRows(pgxmock.NewRows([]string{"id", "data", "created_at", "updated_at"}).
			AddRow(idRust, []byte(`{"name":"Rust"}`), fixed, fixed))
	mock.ExpectQuery("UPDATE records").
		WithArgs("skills", idRust, pgxmock.AnyArg(), fixed).
		WillReturnRows(pgxmock.NewRows([]string{"id", "data", "created_at", "updated_at"}).
			AddRow(idRust, []byte(`{"name":"Rust","category":"Systems"}`), fixed, fixed))
	mock.ExpectCommit()

	err := db.Seed(context.Background(), skillSchema, []map[string]interface{}{
		{"name": "Go"},
		{"name": "Rust", "category": "Systems"},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSeedRollsBackOnFailure(t *testing.T) {
	mock, db, _, _ := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT").WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := db.Seed(context.Background(), skillSchema, []map[string]interface{}{{"name": "Go"}})
	require.Error(t, err)
	var dbErr *interfaces.DatabaseError
	assert.ErrorAs(t, err, &dbErr)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateNeedsRealPool(t *testing.T) {
	_, db, _, _ := newMockRepo(t)
	assert.Error(t, db.Migrate(context.Background(), []*interfaces.Schema{skillSchema}))
}
