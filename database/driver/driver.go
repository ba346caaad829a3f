package driver

import (
	"github.com/wallet-backend/wallet-backend/database/database_type"
)

// WBDatabaseDialect is the per-engine rule set used by the statement builders.
// Dialect methods never fail: malformed fragments produce malformed SQL that
// surfaces as an execution error in the connection layer.
type WBDatabaseDialect interface {
	DatabaseType() database_type.WBDatabaseType

	// ConnectionString builds the driver DSN for sqlx.Open.
	ConnectionString(host string, port int, database string, user string, password string, options string) string

	// SelectStatement assembles the full SELECT including the synthetic
	// foundrows total and the rownumber pagination wrapper. joins, where,
	// groupBy and orderBy arrive as already-rendered clauses (with leading
	// keyword) or empty strings.
	SelectStatement(table string, columns string, joins string, where string, groupBy string, orderBy string, reverseOrder bool, perPage int64, offset int64) string

	// InsertStatement assembles a multi-record INSERT; records contain the
	// placeholder names per column. updateDuplicateKey adds the upsert clause
	// updating every column but the primary key.
	InsertStatement(table string, columns []string, records [][]string, updateDuplicateKey bool, primaryKey string) string

	UpdateStatement(table string, setColumns []string, joins []string, where string, primaryKey string) string

	DeleteStatement(table string, joins []string, where string) string

	// EscapeChar is the identifier quote character, empty when the engine
	// needs none for the identifiers this system generates.
	EscapeChar() string

	// ConcatOperator is the engine's string concatenation operator.
	ConcatOperator() string

	// ConcatNoCoalesce joins expressions with the concat operator without
	// wrapping them; callers supply their own COALESCE where needed.
	ConcatNoCoalesce(parts ...string) string

	// LikeComparator rewrites equality/membership comparators to the engine's
	// case-insensitive LIKE variant.
	LikeComparator(comparator string) string

	// InListComparator renders the right-hand side of a value-list
	// membership test over the given placeholder names.
	InListComparator(items []string) string

	// IgnoreAccents wraps an expression in the engine's accent-stripping
	// function, qualified by schema.
	IgnoreAccents(schema string, expr string) string

	// Cast renders a bounded cast of expr; length <= 0 omits the bound.
	Cast(expr string, sqlType string, length int) string
}

// NewDialect returns the dialect for a database type, or nil when the type
// has no statement renderer. Callers treat nil as an unsupported manager,
// which is fatal at startup.
func NewDialect(t database_type.WBDatabaseType) WBDatabaseDialect {
	switch t {
	case database_type.PostgreSQL:
		return &PostgresDialect{}
	default:
		return nil
	}
}
