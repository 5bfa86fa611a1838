package store

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mconlon17/vivo-person-ingest/pkg/config"
	"github.com/mconlon17/vivo-person-ingest/pkg/connector"
	"github.com/mconlon17/vivo-person-ingest/pkg/rdf"
)

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := &config.PostgresConfig{Database: "vivo", Schema: "public", Table: "vivo_triples"}
	return NewPostgresStore(connector.NewPostgresConnectorFromDB(db, cfg), cfg.Schema, cfg.Table), mock
}

func TestPostgresSubjects(t *testing.T) {
	s, mock := newMockStore(t)
	pred := rdf.Untag("ufVivo:ufid")

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT DISTINCT subject FROM "public"."vivo_triples" WHERE predicate = $1 AND object = $2`)).
		WithArgs(pred, "12345").
		WillReturnRows(sqlmock.NewRows([]string{"subject"}).AddRow("http://kb/n1"))

	subjects, err := s.Subjects(context.Background(), pred, "12345")
	require.NoError(t, err)
	assert.Equal(t, []string{"http://kb/n1"}, subjects)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresTriples(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT subject, predicate, object, literal, datatype FROM "public"."vivo_triples" WHERE subject = $1`)).
		WithArgs("http://kb/n1").
		WillReturnRows(sqlmock.NewRows(tripleColumns).
			AddRow("http://kb/n1", rdf.Untag("foaf:firstName"), "Jane", true, "").
			AddRow("http://kb/n1", rdf.Untag("rdf:type"), rdf.Untag("foaf:Person"), false, ""))

	triples, err := s.Triples(context.Background(), "http://kb/n1")
	require.NoError(t, err)
	assert.Equal(t, []rdf.Triple{
		rdf.Literal("http://kb/n1", "foaf:firstName", "Jane"),
		rdf.Resource("http://kb/n1", "rdf:type", "foaf:Person"),
	}, triples)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresExists(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS (SELECT 1 FROM "public"."vivo_triples" WHERE subject = $1 OR (object = $1 AND NOT literal))`)).
		WithArgs("http://kb/n1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := s.Exists(context.Background(), "http://kb/n1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPostgresAdd(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(
		`INSERT INTO "public"."vivo_triples" ("subject", "predicate", "object", "literal", "datatype") VALUES ($1, $2, $3, $4, $5) ON CONFLICT DO NOTHING`)).
		WithArgs("http://kb/n1", rdf.Untag("foaf:firstName"), "Jane", true, "").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.Add(context.Background(), []rdf.Triple{rdf.Literal("http://kb/n1", "foaf:firstName", "Jane")})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRemove(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(`DELETE FROM "public"."vivo_triples" AS t\s+USING unnest`).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.Remove(context.Background(), []rdf.Triple{rdf.Literal("http://kb/n1", "foaf:firstName", "Jane")})
	require.NoError(t, err)
	require.NoError(t, s.Remove(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresEnsureTable(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("public", "vivo_triples").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE "public"."vivo_triples"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`CREATE INDEX IF NOT EXISTS "vivo_triples_predicate_object_idx"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.EnsureTable(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
