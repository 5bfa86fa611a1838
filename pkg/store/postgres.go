// pkg/store/postgres.go
package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/mconlon17/vivo-person-ingest/pkg/connector"
	"github.com/mconlon17/vivo-person-ingest/pkg/rdf"
)

var tripleColumns = []string{"subject", "predicate", "object", "literal", "datatype"}

var tripleColumnDefs = []string{
	"subject TEXT NOT NULL",
	"predicate TEXT NOT NULL",
	"object TEXT NOT NULL",
	"literal BOOLEAN NOT NULL DEFAULT FALSE",
	"datatype TEXT NOT NULL DEFAULT ''",
}

// tripleRow is the scanned form of one row of the triples table
type tripleRow struct {
	Subject   string `db:"subject"`
	Predicate string `db:"predicate"`
	Object    string `db:"object"`
	Literal   bool   `db:"literal"`
	Datatype  string `db:"datatype"`
}

func (r tripleRow) triple() rdf.Triple {
	return rdf.Triple{
		Subject:   r.Subject,
		Predicate: r.Predicate,
		Object:    r.Object,
		Literal:   r.Literal,
		Datatype:  r.Datatype,
	}
}

// PostgresStore keeps triples in one PostgreSQL table
type PostgresStore struct {
	conn      *connector.PostgresConnector
	db        *sqlx.DB
	schema    string
	table     string
	name      string // quoted schema.table
	batchSize int
	logger    *zap.Logger
}

// NewPostgresStore creates a store over schema.table reached through conn
func NewPostgresStore(conn *connector.PostgresConnector, schema, table string) *PostgresStore {
	return &PostgresStore{
		conn:      conn,
		db:        sqlx.NewDb(conn.DB(), "pgx"),
		schema:    schema,
		table:     table,
		name:      connector.QualifiedName(schema, table),
		batchSize: 500,
		logger:    zap.L().Named("postgres-store"),
	}
}

// EnsureTable creates the triples table and its lookup index when missing
func (s *PostgresStore) EnsureTable(ctx context.Context) error {
	if err := s.conn.CreateTableIfNotExists(ctx, s.schema, s.table, tripleColumnDefs,
		"subject, predicate, object, literal"); err != nil {
		return err
	}
	index := pq.QuoteIdentifier(s.table + "_predicate_object_idx")
	if _, err := s.db.ExecContext(ctx,
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (predicate, object)", index, s.name)); err != nil {
		return fmt.Errorf("failed to create index on %s: %w", s.name, err)
	}
	return nil
}

// Subjects implements TripleStore
func (s *PostgresStore) Subjects(ctx context.Context, predicate, object string) ([]string, error) {
	var subjects []string
	query := fmt.Sprintf(
		"SELECT DISTINCT subject FROM %s WHERE predicate = $1 AND object = $2 ORDER BY subject", s.name)
	if err := s.db.SelectContext(ctx, &subjects, query, predicate, object); err != nil {
		return nil, fmt.Errorf("failed to query subjects of %s: %w", rdf.Tag(predicate), err)
	}
	return subjects, nil
}

// Triples implements TripleStore
func (s *PostgresStore) Triples(ctx context.Context, subject string) ([]rdf.Triple, error) {
	var rows []tripleRow
	query := fmt.Sprintf(
		"SELECT subject, predicate, object, literal, datatype FROM %s WHERE subject = $1 ORDER BY predicate, object", s.name)
	if err := s.db.SelectContext(ctx, &rows, query, subject); err != nil {
		return nil, fmt.Errorf("failed to query triples of %s: %w", subject, err)
	}
	return toTriples(rows), nil
}

// ByPredicate implements TripleStore
func (s *PostgresStore) ByPredicate(ctx context.Context, predicate string) ([]rdf.Triple, error) {
	var rows []tripleRow
	query := fmt.Sprintf(
		"SELECT subject, predicate, object, literal, datatype FROM %s WHERE predicate = $1 ORDER BY subject, object", s.name)
	if err := s.db.SelectContext(ctx, &rows, query, predicate); err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", rdf.Tag(predicate), err)
	}
	return toTriples(rows), nil
}

// Exists implements TripleStore
func (s *PostgresStore) Exists(ctx context.Context, uri string) (bool, error) {
	var exists bool
	query := fmt.Sprintf(
		"SELECT EXISTS (SELECT 1 FROM %s WHERE subject = $1 OR (object = $1 AND NOT literal))", s.name)
	if err := s.db.GetContext(ctx, &exists, query, uri); err != nil {
		return false, fmt.Errorf("failed to check %s: %w", uri, err)
	}
	return exists, nil
}

// Add implements TripleStore
func (s *PostgresStore) Add(ctx context.Context, triples []rdf.Triple) error {
	rows := make([][]interface{}, len(triples))
	for i, t := range triples {
		rows[i] = []interface{}{t.Subject, t.Predicate, t.Object, t.Literal, t.Datatype}
	}
	n, err := s.conn.BatchInsert(ctx, s.schema, s.table, tripleColumns, rows, s.batchSize)
	if err != nil {
		return fmt.Errorf("failed to add triples: %w", err)
	}
	s.logger.Debug("Added triples", zap.Int("requested", len(triples)), zap.Int64("inserted", n))
	return nil
}

// Remove implements TripleStore
func (s *PostgresStore) Remove(ctx context.Context, triples []rdf.Triple) error {
	if len(triples) == 0 {
		return nil
	}
	subjects := make([]string, len(triples))
	predicates := make([]string, len(triples))
	objects := make([]string, len(triples))
	literals := make([]bool, len(triples))
	for i, t := range triples {
		subjects[i], predicates[i], objects[i], literals[i] = t.Subject, t.Predicate, t.Object, t.Literal
	}

	query := fmt.Sprintf(`DELETE FROM %s AS t
		USING unnest($1::text[], $2::text[], $3::text[], $4::boolean[]) AS d(s, p, o, l)
		WHERE t.subject = d.s AND t.predicate = d.p AND t.object = d.o AND t.literal = d.l`, s.name)
	res, err := s.db.ExecContext(ctx, query,
		pq.Array(subjects), pq.Array(predicates), pq.Array(objects), pq.Array(literals))
	if err != nil {
		return fmt.Errorf("failed to remove triples: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil {
		s.logger.Debug("Removed triples", zap.Int("requested", len(triples)), zap.Int64("deleted", n))
	}
	return nil
}

// Close closes the underlying connector
func (s *PostgresStore) Close() error {
	return s.conn.Close()
}

func toTriples(rows []tripleRow) []rdf.Triple {
	out := make([]rdf.Triple, len(rows))
	for i, r := range rows {
		out[i] = r.triple()
	}
	return out
}
