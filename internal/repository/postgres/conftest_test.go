package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"testing"
)

// stubConn answers QueryContext and ExecContext from canned data and records
// the last statement. database/sql drives it through the normal pool, so the
// repository's scan loops run unchanged.
type stubConn struct {
	columns  []string
	rows     [][]driver.Value
	affected int64
	err      error

	query string
	args  []driver.Value
}

func (c *stubConn) record(query string, args []driver.NamedValue) {
	c.query = query
	c.args = c.args[:0]
	for _, a := range args {
		c.args = append(c.args, a.Value)
	}
}

func (c *stubConn) QueryContext(_ context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	c.record(query, args)
	if c.err != nil {
		return nil, c.err
	}
	return &stubRows{columns: c.columns, data: c.rows}, nil
}

func (c *stubConn) ExecContext(_ context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	c.record(query, args)
	if c.err != nil {
		return nil, c.err
	}
	return driver.RowsAffected(c.affected), nil
}

func (c *stubConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("stub: prepare not supported")
}

func (c *stubConn) Close() error { return nil }

func (c *stubConn) Begin() (driver.Tx, error) {
	return nil, errors.New("stub: transactions not supported")
}

type stubRows struct {
	columns []string
	data    [][]driver.Value
	next    int
}

func (r *stubRows) Columns() []string { return r.columns }
func (r *stubRows) Close() error      { return nil }

func (r *stubRows) Next(dest []driver.Value) error {
	if r.next >= len(r.data) {
		return io.EOF
	}
	copy(dest, r.data[r.next])
	r.next++
	return nil
}

type stubConnector struct{ conn *stubConn }

func (s stubConnector) Connect(context.Context) (driver.Conn, error) { return s.conn, nil }
func (s stubConnector) Driver() driver.Driver                       { return nil }

var (
	profileCols = []string{"id", "name", "description", "age", "location", "created_at"}
	knnCols     = append(append([]string{}, profileCols...), "distance")
)

// newStubRepo returns a Repo over people(dim=3) backed by conn.
func newStubRepo(t *testing.T, conn *stubConn) *Repo {
	t.Helper()
	db := sql.OpenDB(stubConnector{conn: conn})
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	cfg := Config{DSN: "postgres://stub/profiles", Collection: "people", Dimensions: 3}
	return &Repo{db: db, cfg: cfg, q: newQueries(cfg.Collection, cfg.Dimensions)}
}
