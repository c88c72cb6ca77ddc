// Package store keeps the result of attsnoop runs in a sqlite database.
package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/XC-/attsnoop"
)

const schema = `
	CREATE TABLE IF NOT EXISTS runs (
		run_id INTEGER PRIMARY KEY AUTOINCREMENT,
		source TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE TABLE IF NOT EXISTS attributes (
		run_id INTEGER NOT NULL,
		handle INTEGER NOT NULL,
		uuid TEXT NOT NULL,
		PRIMARY KEY (run_id, handle),
		FOREIGN KEY (run_id) REFERENCES runs(run_id)
	);
	CREATE TABLE IF NOT EXISTS transactions (
		run_id INTEGER NOT NULL,
		seq INTEGER NOT NULL,
		op TEXT NOT NULL,
		name TEXT NOT NULL,
		request BLOB,
		response BLOB,
		PRIMARY KEY (run_id, seq),
		FOREIGN KEY (run_id) REFERENCES runs(run_id)
	);
`

const (
	opRead  = "read"
	opWrite = "write"
)

var ErrNoRun = errors.New("no such run")

// DB is a sqlite database of runs.
type DB struct {
	*sql.DB
}

// Open opens the database at path, creating the file and its tables if
// needed.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "create schema")
	}
	return &DB{db}, nil
}

// SaveRun stores the attribute names and transactions of one run over the
// capture source and returns the id of the new run.
func (db *DB) SaveRun(ctx context.Context, source string, names map[uint16]string, txs []attsnoop.Transaction) (int64, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "begin")
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "INSERT INTO runs (source, created_at) VALUES (?, ?)", source, time.Now().UTC())
	if err != nil {
		return 0, errors.Wrap(err, "insert run")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, errors.Wrap(err, "run id")
	}

	for h, u := range names {
		if _, err := tx.ExecContext(ctx, "INSERT INTO attributes (run_id, handle, uuid) VALUES (?, ?, ?)", id, int(h), u); err != nil {
			return 0, errors.Wrapf(err, "insert attribute 0x%04X", h)
		}
	}

	for _, t := range txs {
		var op, name string
		var req, resp []byte
		switch o := t.Op.(type) {
		case attsnoop.Read:
			op, name, resp = opRead, o.Name, o.Response
		case attsnoop.Write:
			op, name, req, resp = opWrite, o.Name, o.Request, o.Response
		default:
			return 0, errors.Errorf("transaction #%d: unexpected operation %T", t.Seq, t.Op)
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO transactions (run_id, seq, op, name, request, response) VALUES (?, ?, ?, ?, ?, ?)",
			id, t.Seq, op, name, req, resp); err != nil {
			return 0, errors.Wrapf(err, "insert transaction #%d", t.Seq)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "commit")
	}
	return id, nil
}

// Transactions returns the transactions of run id in capture order.
func (db *DB) Transactions(ctx context.Context, id int64) ([]attsnoop.Transaction, error) {
	if err := db.checkRun(ctx, id); err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx,
		"SELECT seq, op, name, request, response FROM transactions WHERE run_id = ? ORDER BY seq", id)
	if err != nil {
		return nil, errors.Wrap(err, "query transactions")
	}
	defer rows.Close()

	var txs []attsnoop.Transaction
	for rows.Next() {
		var (
			seq       int
			op, name  string
			req, resp []byte
		)
		if err := rows.Scan(&seq, &op, &name, &req, &resp); err != nil {
			return nil, errors.Wrap(err, "scan transaction")
		}
		t := attsnoop.Transaction{Seq: seq}
		switch op {
		case opRead:
			t.Op = attsnoop.Read{Name: name, Response: nonNil(resp)}
		case opWrite:
			t.Op = attsnoop.Write{Name: name, Request: nonNil(req), Response: nonNil(resp)}
		default:
			return nil, errors.Errorf("transaction #%d: unknown op %q", seq, op)
		}
		txs = append(txs, t)
	}
	return txs, errors.Wrap(rows.Err(), "read transactions")
}

// Names returns the handle to UUID dictionary of run id.
func (db *DB) Names(ctx context.Context, id int64) (map[uint16]string, error) {
	if err := db.checkRun(ctx, id); err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, "SELECT handle, uuid FROM attributes WHERE run_id = ?", id)
	if err != nil {
		return nil, errors.Wrap(err, "query attributes")
	}
	defer rows.Close()

	names := map[uint16]string{}
	for rows.Next() {
		var h int
		var u string
		if err := rows.Scan(&h, &u); err != nil {
			return nil, errors.Wrap(err, "scan attribute")
		}
		names[uint16(h)] = u
	}
	return names, errors.Wrap(rows.Err(), "read attributes")
}

func (db *DB) checkRun(ctx context.Context, id int64) error {
	var n int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM runs WHERE run_id = ?", id).Scan(&n); err != nil {
		return errors.Wrap(err, "query run")
	}
	if n == 0 {
		return errors.Wrapf(ErrNoRun, "run %d", id)
	}
	return nil
}

// sqlite hands back NULL for empty blobs.
func nonNil(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return b
}
