package driver

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wallet-backend/wallet-backend/database/database_type"
)

// PostgresDialect is the primary (and currently only complete) dialect.
type PostgresDialect struct {
}

func (d *PostgresDialect) DatabaseType() database_type.WBDatabaseType {
	return database_type.PostgreSQL
}

func (d *PostgresDialect) ConnectionString(host string, port int, database string, user string, password string, options string) string {
	if port == 0 {
		port = 5432
	}
	s := fmt.Sprintf("user=%s password=%s host=%s port=%d dbname=%s", user, password, host, port, database)
	if options != "" {
		s = s + " " + options
	}
	return s
}

func (d *PostgresDialect) SelectStatement(table string, columns string, joins string, where string, groupBy string, orderBy string, reverseOrder bool, perPage int64, offset int64) string {
	// Row numbering follows the statement's own ordering (or a no-op order)
	// so pagination stays stable regardless of presentation order.
	windowOrder := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(orderBy), "ORDER BY"))
	if windowOrder == "" {
		windowOrder = "(SELECT 1)"
	}

	foundRows := "(SELECT COUNT(*) FROM " + table + joins + where + ") AS foundrows"
	rowNumber := "ROW_NUMBER() OVER (ORDER BY " + windowOrder + ") AS rownumber"

	inner := "SELECT " + columns + ", " + foundRows + ", " + rowNumber +
		" FROM " + table + joins + where + groupBy

	if perPage <= 0 {
		return inner + orderBy
	}

	lower := strconv.FormatInt(offset, 10)
	upper := strconv.FormatInt(offset+perPage, 10)

	if reverseOrder {
		// Reverse pagination counts pages from the tail of the natural order.
		return "SELECT * FROM ( " + inner + " ) AS TABRES" +
			" WHERE rownumber > foundrows - " + upper +
			" AND rownumber <= foundrows - " + lower +
			" ORDER BY rownumber DESC"
	}

	return "SELECT * FROM ( " + inner + " ) AS TABRES" +
		" WHERE rownumber > " + lower +
		" AND rownumber <= " + upper +
		orderBy
}

func (d *PostgresDialect) InsertStatement(table string, columns []string, records [][]string, updateDuplicateKey bool, primaryKey string) string {
	values := make([]string, 0, len(records))
	for _, record := range records {
		values = append(values, "( "+strings.Join(record, ", ")+" )")
	}
	insert := "INSERT INTO " + table + " (" + strings.Join(columns, ", ") + ") VALUES " + strings.Join(values, ", ")

	if updateDuplicateKey {
		updates := make([]string, 0, len(columns))
		for _, column := range columns {
			if strings.EqualFold(column, primaryKey) {
				continue
			}
			updates = append(updates, column+" = EXCLUDED."+column)
		}
		insert += " ON CONFLICT (" + primaryKey + ") DO UPDATE SET " + strings.Join(updates, ", ")
	}

	return insert
}

func (d *PostgresDialect) UpdateStatement(table string, setColumns []string, joins []string, where string, primaryKey string) string {
	set := strings.Join(setColumns, ",")
	if len(joins) == 0 {
		return "UPDATE " + table + " SET " + set + where
	}
	return "UPDATE " + table + " SET " + set + " FROM " + strings.Join(joins, ", ") + where
}

func (d *PostgresDialect) DeleteStatement(table string, joins []string, where string) string {
	if len(joins) == 0 {
		return "DELETE FROM " + table + where
	}
	return "DELETE FROM " + table + " USING " + strings.Join(joins, ", ") + where
}

func (d *PostgresDialect) EscapeChar() string {
	return ""
}

func (d *PostgresDialect) ConcatOperator() string {
	return "||"
}

func (d *PostgresDialect) ConcatNoCoalesce(parts ...string) string {
	return strings.Join(parts, " "+d.ConcatOperator()+" ")
}

func (d *PostgresDialect) LikeComparator(comparator string) string {
	switch comparator {
	case "IN", "=":
		comparator = "LIKE"
	case "NOT IN", "!=", "<>":
		comparator = "NOT LIKE"
	}
	return strings.Replace(comparator, "LIKE", "ILIKE", 1)
}

func (d *PostgresDialect) InListComparator(items []string) string {
	return "ANY(ARRAY[" + strings.Join(items, ", ") + "])"
}

func (d *PostgresDialect) IgnoreAccents(schema string, expr string) string {
	return schema + ".unaccent(" + expr + ")"
}

func (d *PostgresDialect) Cast(expr string, sqlType string, length int) string {
	if length > 0 {
		return "CAST(" + expr + " AS " + sqlType + "(" + strconv.Itoa(length) + "))"
	}
	return "CAST(" + expr + " AS " + sqlType + ")"
}
