// Package sqldelegate provides an interpreter delegate backed by a SQL
// database.
//
// Symbols that no scope binds are read from a two-column symbols table
// (name, value). Lookup paths address tables and columns:
//
//	$orders                 every row of table orders, as a list of dictionaries
//	$*orders.customer       the customer column of every row
//
// Table names are validated against the database schema before they are
// interpolated into a query.
package sqldelegate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/lib/pq"              // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver

	nrxerrors "github.com/NikolaiRuhe/NRExpressions/pkg/nrx/errors"
	"github.com/NikolaiRuhe/NRExpressions/pkg/nrx/evaluator"
)

// DefaultQueryTimeout bounds each query the delegate runs.
const DefaultQueryTimeout = 5 * time.Second

// Supported drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// Delegate resolves symbols and lookup tokens against a database. It
// implements evaluator.SymbolResolver and evaluator.TokenLookuper.
type Delegate struct {
	DB           *sql.DB
	Driver       string
	SymbolsTable string
	QueryTimeout time.Duration

	mu        sync.Mutex
	tables    map[string]bool
	lastError error
}

// Open connects to a database. An in-memory SQLite database is limited to
// one connection so every query sees the same data.
func Open(driver, dsn, symbolsTable string) (*Delegate, error) {
	switch driver {
	case DriverSQLite, DriverPostgres, DriverMySQL:
	default:
		return nil, fmt.Errorf("unsupported driver %q (expected sqlite, postgres or mysql)", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %w", driver, err)
	}
	if driver == DriverSQLite && (dsn == ":memory:" || strings.Contains(dsn, "mode=memory")) {
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to %s database: %w", driver, err)
	}
	return New(db, driver, symbolsTable), nil
}

// New wraps an open database.
func New(db *sql.DB, driver, symbolsTable string) *Delegate {
	return &Delegate{
		DB:           db,
		Driver:       driver,
		SymbolsTable: symbolsTable,
		QueryTimeout: DefaultQueryTimeout,
	}
}

// Close closes the database.
func (d *Delegate) Close() error {
	return d.DB.Close()
}

// LastError returns the most recent database error, if any.
func (d *Delegate) LastError() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastError
}

// Refresh drops the cached schema. Call it after creating or dropping
// tables.
func (d *Delegate) Refresh() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tables = nil
}

// ResolveSymbol reads name from the symbols table. Stored text is parsed as
// null, a boolean or a number, and kept as a string otherwise.
func (d *Delegate) ResolveSymbol(name string) (evaluator.Value, bool) {
	if d.SymbolsTable == "" {
		return nil, false
	}
	ctx, cancel := d.context()
	defer cancel()

	known, err := d.hasTable(ctx, d.SymbolsTable)
	if err != nil {
		return d.failure(err), true
	}
	if !known {
		return nil, false
	}

	query := fmt.Sprintf("SELECT value FROM %s WHERE name = %s", d.quote(d.SymbolsTable), d.placeholder(1))
	var text sql.NullString
	err = d.DB.QueryRowContext(ctx, query, name).Scan(&text)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false
	}
	if err != nil {
		return d.failure(err), true
	}
	if !text.Valid {
		return evaluator.NULL, true
	}
	return parseStoredValue(text.String), true
}

// LookupToken resolves a table name when base is NULL and a column when
// base is a row dictionary.
func (d *Delegate) LookupToken(base evaluator.Value, token string) (evaluator.Value, bool) {
	switch b := base.(type) {
	case *evaluator.Null:
		ctx, cancel := d.context()
		defer cancel()
		known, err := d.hasTable(ctx, token)
		if err != nil {
			return d.failure(err), true
		}
		if !known {
			return nil, false
		}
		rows, err := d.selectAll(ctx, token)
		if err != nil {
			return d.failure(err), true
		}
		return rows, true
	case *evaluator.Dictionary:
		return b.Get(token)
	}
	return nil, false
}

// Tables returns the names of the tables and views in the database.
func (d *Delegate) Tables(ctx context.Context) ([]string, error) {
	rows, err := d.DB.QueryContext(ctx, d.tablesQuery())
	if err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("listing tables: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (d *Delegate) tablesQuery() string {
	switch d.Driver {
	case DriverPostgres:
		return "SELECT table_name FROM information_schema.tables WHERE table_schema = current_schema()"
	case DriverMySQL:
		return "SELECT table_name FROM information_schema.tables WHERE table_schema = DATABASE()"
	}
	return "SELECT name FROM sqlite_master WHERE type IN ('table', 'view') AND name NOT LIKE 'sqlite_%'"
}

func (d *Delegate) hasTable(ctx context.Context, name string) (bool, error) {
	d.mu.Lock()
	tables := d.tables
	d.mu.Unlock()

	if tables == nil {
		names, err := d.Tables(ctx)
		if err != nil {
			return false, err
		}
		tables = make(map[string]bool, len(names))
		for _, n := range names {
			tables[n] = true
		}
		d.mu.Lock()
		d.tables = tables
		d.mu.Unlock()
	}
	return tables[name], nil
}

func (d *Delegate) selectAll(ctx context.Context, table string) (*evaluator.List, error) {
	rows, err := d.DB.QueryContext(ctx, "SELECT * FROM "+d.quote(table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result := evaluator.NewList()
	for rows.Next() {
		values := make([]any, len(columns))
		valuePtrs := make([]any, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}
		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, err
		}
		result.Elements = append(result.Elements, rowToDict(columns, values))
	}
	return result, rows.Err()
}

func rowToDict(columns []string, values []any) *evaluator.Dictionary {
	dict := evaluator.NewDictionary()
	for i, col := range columns {
		dict.Set(col, evaluator.FromGo(values[i]))
	}
	return dict
}

// parseStoredValue interprets symbol text from the database.
func parseStoredValue(text string) evaluator.Value {
	switch strings.TrimSpace(text) {
	case "null":
		return evaluator.NULL
	case "true":
		return evaluator.TRUE
	case "false":
		return evaluator.FALSE
	}
	if n, ok := evaluator.ParseNumber(text); ok && !n.IsNaN() {
		return n
	}
	return evaluator.NewString(text)
}

func (d *Delegate) quote(identifier string) string {
	if d.Driver == DriverMySQL {
		return "`" + strings.ReplaceAll(identifier, "`", "``") + "`"
	}
	return `"` + strings.ReplaceAll(identifier, `"`, `""`) + `"`
}

func (d *Delegate) placeholder(n int) string {
	if d.Driver == DriverPostgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

func (d *Delegate) context() (context.Context, context.CancelFunc) {
	if d.QueryTimeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), d.QueryTimeout)
}

// failure records err and converts it into a runtime LookupError.
func (d *Delegate) failure(err error) evaluator.Value {
	d.mu.Lock()
	d.lastError = err
	d.mu.Unlock()
	return evaluator.NewError(nrxerrors.ClassLookup, "database: %s", err)
}
