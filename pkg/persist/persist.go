// Package persist implements the optional exploration-node
// persistence described in §6: a Postgres table keyed by the
// 20-byte canonical hash, storing each node's body, children, and
// post-pass counters. It is never required for correctness — every
// failure here degrades to a logged PersistenceError rather than
// aborting exploration, the same way DbAdaptor.py's methods catch and
// log psycopg2 errors instead of propagating them.
package persist

import (
	"context"
	"database/sql"
	"encoding/hex"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	migrate "github.com/rubenv/sql-migrate"
	log "github.com/sirupsen/logrus"
)

// PersistenceError wraps any failure writing to or reading from the
// store. Callers should log it (or let Store do so) and continue
// exploration rather than treat it as fatal.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return "persist: " + e.Op + ": " + e.Err.Error()
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Node is the persisted row shape of §6: body text, child
// hashes, clause/variable counts, and the post-StatsPass counters.
type Node struct {
	Hash           [20]byte
	Body           string
	Child1         *[20]byte
	Child2         *[20]byte
	NumClauses     int
	NumVars        int
	UniqueNodes    int
	RedundantNodes int
	RedundantHits  int
}

// Store persists exploration nodes to a Postgres table. A Store with
// no database (from NewNoop) makes every method a silent no-op, so
// callers can wire
// persistence optionally without branching at every call site.
type Store struct {
	db    *sqlx.DB
	table string
}

// Open connects to Postgres at dsn and ensures the node table exists.
func Open(ctx context.Context, dsn, table string) (*Store, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, &PersistenceError{Op: "connect", Err: err}
	}
	s := &Store{db: db, table: table}
	if err := s.ensureTable(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewNoop returns a Store whose methods never touch a database,
// for runs with persistence disabled.
func NewNoop() *Store { return &Store{} }

func (s *Store) enabled() bool { return s.db != nil }

// ensureTable drives the exploration-node schema through sql-migrate
// rather than a hand-rolled CREATE TABLE, so repeated runs against the
// same database see a recorded, idempotent migration history instead
// of relying solely on IF NOT EXISTS.
func (s *Store) ensureTable(ctx context.Context) error {
	source := &migrate.MemoryMigrationSource{
		Migrations: []*migrate.Migration{
			{
				Id: "001_create_" + s.table,
				Up: []string{
					`CREATE TABLE IF NOT EXISTS ` + s.table + ` (
	hash BYTEA PRIMARY KEY,
	body TEXT NOT NULL,
	cid1 BYTEA,
	cid2 BYTEA,
	num_of_clauses INTEGER NOT NULL DEFAULT 0,
	num_of_vars INTEGER NOT NULL DEFAULT 0,
	unique_nodes INTEGER NOT NULL DEFAULT 0,
	redundant_nodes INTEGER NOT NULL DEFAULT 0,
	redundant_hits INTEGER NOT NULL DEFAULT 0,
	date_created TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
					"CREATE INDEX IF NOT EXISTS " + s.table + "_num_clauses ON " + s.table + " (num_of_clauses)",
					"CREATE INDEX IF NOT EXISTS " + s.table + "_unique_nodes ON " + s.table + " (unique_nodes)",
				},
				Down: []string{
					"DROP TABLE IF EXISTS " + s.table,
				},
			},
		},
	}
	if _, err := migrate.ExecContext(ctx, s.db.DB, "postgres", source, migrate.Up); err != nil {
		return &PersistenceError{Op: "ensure table", Err: err}
	}
	return nil
}

// InsertNode records a newly discovered UNIQUE node. A conflict on
// hash (another process raced us) is treated as success, matching
// DbAdaptor.py's DB_UNIQUE_VIOLATION-as-benign handling.
func (s *Store) InsertNode(ctx context.Context, n Node) error {
	if !s.enabled() {
		return nil
	}
	query := `INSERT INTO ` + s.table + `
		(hash, body, cid1, cid2, num_of_clauses, num_of_vars)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (hash) DO NOTHING`
	_, err := s.db.ExecContext(ctx, query,
		n.Hash[:], n.Body, optionalBytes(n.Child1), optionalBytes(n.Child2), n.NumClauses, n.NumVars)
	if err != nil {
		err := &PersistenceError{Op: "insert node", Err: err}
		log.WithError(err).Debug("persist: insert failed, continuing without it")
		return err
	}
	return nil
}

// SetChildren records a node's split outcome once both children are
// known (presence of cid1/cid2 means the node has been split, per
// §6).
func (s *Store) SetChildren(ctx context.Context, parent [20]byte, child1, child2 [20]byte) error {
	if !s.enabled() {
		return nil
	}
	query := `UPDATE ` + s.table + ` SET cid1 = $2, cid2 = $3 WHERE hash = $1`
	_, err := s.db.ExecContext(ctx, query, parent[:], child1[:], child2[:])
	if err != nil {
		return &PersistenceError{Op: "set children", Err: err}
	}
	return nil
}

// SetStats writes the StatsPass counters for a node. A positive
// unique_nodes value is the §6 signal that the node's subgraph
// has been fully counted.
func (s *Store) SetStats(ctx context.Context, hash [20]byte, unique, redundant, hits int) error {
	if !s.enabled() {
		return nil
	}
	query := `UPDATE ` + s.table + ` SET unique_nodes = $2, redundant_nodes = $3, redundant_hits = $4 WHERE hash = $1`
	_, err := s.db.ExecContext(ctx, query, hash[:], unique, redundant, hits)
	if err != nil {
		return &PersistenceError{Op: "set stats", Err: err}
	}
	return nil
}

// Get fetches a previously persisted node by hash.
func (s *Store) Get(ctx context.Context, hash [20]byte) (Node, bool, error) {
	if !s.enabled() {
		return Node{}, false, nil
	}
	var row struct {
		Hash           []byte  `db:"hash"`
		Body           string  `db:"body"`
		Cid1           []byte  `db:"cid1"`
		Cid2           []byte  `db:"cid2"`
		NumClauses     int     `db:"num_of_clauses"`
		NumVars        int     `db:"num_of_vars"`
		UniqueNodes    int     `db:"unique_nodes"`
		RedundantNodes int     `db:"redundant_nodes"`
		RedundantHits  int     `db:"redundant_hits"`
	}
	query := `SELECT hash, body, cid1, cid2, num_of_clauses, num_of_vars, unique_nodes, redundant_nodes, redundant_hits
		FROM ` + s.table + ` WHERE hash = $1`
	if err := s.db.GetContext(ctx, &row, query, hash[:]); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Node{}, false, nil
		}
		return Node{}, false, &PersistenceError{Op: "get node", Err: err}
	}
	return Node{
		Hash:           hash,
		Body:           row.Body,
		Child1:         bytesToHash(row.Cid1),
		Child2:         bytesToHash(row.Cid2),
		NumClauses:     row.NumClauses,
		NumVars:        row.NumVars,
		UniqueNodes:    row.UniqueNodes,
		RedundantNodes: row.RedundantNodes,
		RedundantHits:  row.RedundantHits,
	}, true, nil
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	if !s.enabled() {
		return nil
	}
	return s.db.Close()
}

func optionalBytes(h *[20]byte) interface{} {
	if h == nil {
		return nil
	}
	return h[:]
}

func bytesToHash(b []byte) *[20]byte {
	if len(b) != 20 {
		return nil
	}
	var out [20]byte
	copy(out[:], b)
	return &out
}

// HexHash is a debugging helper rendering a hash the way log lines
// and the dot subcommand print node ids.
func HexHash(h [20]byte) string {
	return hex.EncodeToString(h[:])
}
