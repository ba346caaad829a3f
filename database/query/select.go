package query

import (
	"encoding/base64"
	"net/http"
	"regexp"
	"strings"

	"github.com/wallet-backend/wallet-backend/database"
	"github.com/wallet-backend/wallet-backend/utils"
)

// WBJoin declares one joined table with its ON-clause filter groups.
// Unrecognized join types fall back to INNER.
type WBJoin struct {
	Table   string
	Type    string
	Filter  WBFilterGroup
	Filters []WBFilterGroup
}

// WBOrder is one ORDER BY entry. Direction is ASC, DESC or NONE; anything
// else takes the statement's default order. The synthetic column "rownumber"
// with DESC flips reverse pagination instead of entering the clause.
type WBOrder struct {
	Column    string
	Direction string
}

// WBSelectConfig is the declarative input of a Select statement.
type WBSelectConfig struct {
	Table   string
	Fields  []string
	Joins   []WBJoin
	PerPage int64
	Paged   int64
	Order   string
	OrderBy []WBOrder

	// OrderByRaw is a comma-separated "column [ASC|DESC|NONE]" list parsed by
	// suffix matching, as an alternative to OrderBy.
	OrderByRaw string

	GroupBy  []string
	Filter   WBFilterGroup
	Filters  []WBFilterGroup
	Unaccent bool

	// ForAPI turns on transport encoding of binary columns in the results.
	ForAPI bool
}

// NewSelectConfig returns a configuration with the statement defaults:
// page 1, descending default order, accent folding on.
func NewSelectConfig(table string) WBSelectConfig {
	return WBSelectConfig{
		Table:    table,
		Paged:    1,
		Order:    "DESC",
		Unaccent: true,
	}
}

// WBSelect compiles and executes one SELECT statement.
type WBSelect struct {
	WBStatementBuilder
	cfg       WBSelectConfig
	totalRows int64
	resultSet []utils.JSON
	columns   map[string]string
	forAPI    bool
}

// NewSelect compiles the configuration into a paginated SELECT and executes
// it on db. A nil db falls back to the shared default connection.
func NewSelect(db *database.WBDatabase, cfg WBSelectConfig) *WBSelect {
	s := &WBSelect{cfg: cfg, forAPI: cfg.ForAPI, columns: map[string]string{}}
	s.init(db)
	if s.HasError() {
		return s
	}
	s.unaccent = cfg.Unaccent
	s.query = s.build()
	s.execute()
	return s
}

// NewSelectStatement executes a caller-supplied SELECT text with named
// parameters, bypassing assembly but keeping the DML-kind gate.
func NewSelectStatement(db *database.WBDatabase, statement string, params utils.JSON) *WBSelect {
	s := &WBSelect{columns: map[string]string{}}
	s.init(db)
	if params != nil {
		s.fields = params
	}
	s.query = statement
	s.execute()
	return s
}

var orderDirectionPattern = regexp.MustCompile(`(?i)^(.+\s)+(ASC|DESC|NONE)$`)

func (s *WBSelect) build() string {
	table := s.registerTable(s.cfg.Table)
	joins := s.buildJoins()
	groupBy := s.buildGroupBy()
	columns := s.buildColumns()
	orderBy := s.buildOrderBy()

	groups := s.cfg.Filters
	if len(s.cfg.Filter) > 0 {
		groups = append([]WBFilterGroup{s.cfg.Filter}, groups...)
	}
	where := s.compileFilterGroups(groups)
	if where != "" {
		where = " WHERE " + where
	}

	perPage := s.cfg.PerPage
	paged := s.cfg.Paged
	if paged < 1 {
		paged = 1
	}
	offset := (paged - 1) * perPage

	reverseOrder := false
	for _, o := range s.orderEntries() {
		if strings.EqualFold(strings.TrimSpace(o.Column), "rownumber") &&
			strings.EqualFold(strings.TrimSpace(o.Direction), "DESC") {
			reverseOrder = true
		}
	}

	return s.db.Dialect.SelectStatement(table.AliasedName(), columns, joins, where, groupBy, orderBy, reverseOrder, perPage, offset)
}

func (s *WBSelect) buildJoins() string {
	query := ""
	for _, join := range s.cfg.Joins {
		joinType := strings.ToUpper(strings.TrimSpace(join.Type))
		if !utils.StringSliceContains([]string{"LEFT", "RIGHT", "FULL"}, joinType) {
			joinType = "INNER"
		}

		table := s.registerTable(join.Table)
		groups := join.Filters
		if len(join.Filter) > 0 {
			groups = append([]WBFilterGroup{join.Filter}, groups...)
		}

		query += " " + joinType + " JOIN " + table.AliasedName() + " ON " + s.compileFilterGroups(groups)
	}
	return query
}

func (s *WBSelect) buildGroupBy() string {
	if len(s.cfg.GroupBy) == 0 {
		return ""
	}
	groupBy := strings.Join(s.cfg.GroupBy, ", ")

	// With no explicit output fields the grouping columns become the fields.
	if len(s.cfg.Fields) == 0 {
		s.cfg.Fields = append([]string{}, s.cfg.GroupBy...)
	}
	return " GROUP BY " + groupBy
}

func (s *WBSelect) buildColumns() string {
	if len(s.cfg.Fields) > 0 {
		return strings.Join(s.cfg.Fields, ", ")
	}

	escape := s.db.Dialect.EscapeChar()
	columns := make([]string, 0, len(s.tables))
	seen := map[string]bool{}
	for _, t := range s.tables {
		name := strings.ToLower(strings.TrimSpace(t.Name))
		if seen[name] {
			continue
		}
		seen[name] = true
		columns = append(columns, escape+t.Alias+escape+".*")
	}
	return strings.Join(columns, ", ")
}

func (s *WBSelect) orderEntries() []WBOrder {
	if len(s.cfg.OrderBy) > 0 || strings.TrimSpace(s.cfg.OrderByRaw) == "" {
		return s.cfg.OrderBy
	}

	defOrder := s.defaultOrder()
	entries := []WBOrder{}
	for _, token := range strings.Split(s.cfg.OrderByRaw, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		if m := orderDirectionPattern.FindStringSubmatch(token); m != nil {
			entries = append(entries, WBOrder{Column: strings.TrimSpace(m[1]), Direction: strings.ToUpper(m[2])})
		} else {
			entries = append(entries, WBOrder{Column: token, Direction: defOrder})
		}
	}
	return entries
}

func (s *WBSelect) defaultOrder() string {
	if strings.EqualFold(strings.TrimSpace(s.cfg.Order), "ASC") {
		return "ASC"
	}
	return "DESC"
}

func (s *WBSelect) buildOrderBy() string {
	defOrder := s.defaultOrder()
	orderBy := ""

	for _, entry := range s.orderEntries() {
		// rownumber only flags reverse pagination, it never orders.
		if strings.EqualFold(strings.TrimSpace(entry.Column), "rownumber") {
			continue
		}

		direction := strings.ToUpper(strings.TrimSpace(entry.Direction))
		if !utils.StringSliceContains([]string{"ASC", "DESC", "NONE"}, direction) {
			direction = defOrder
		}
		if direction == "NONE" {
			continue
		}

		if orderBy != "" {
			orderBy += ", "
		}
		orderBy += entry.Column + " " + direction
	}

	if orderBy == "" {
		return ""
	}
	return " ORDER BY " + orderBy
}

func (s *WBSelect) execute() {
	if err := s.checkStatement(s.query, "SELECT"); err != nil {
		s.setError(err)
		return
	}

	rowsInfo, rows, err := s.db.PrepareAndQuery(s.query, s.fields)
	if err != nil {
		s.captureDBError(err)
		return
	}

	s.resultSet = rows
	if len(rows) > 0 {
		if total, convErr := utils.ConvertToInt64(rows[0]["foundrows"]); convErr == nil {
			s.totalRows = total
		}
	}

	for name, nativeType := range rowsInfo.ColumnTypes {
		if name == "foundrows" {
			continue
		}
		s.columns[name] = nativeType
	}
}

// HasResults reports whether the query matched any rows at all, independent
// of the requested page.
func (s *WBSelect) HasResults() bool {
	return s.totalRows > 0
}

// GetTotalRowsCount returns the window-counted total, independent of
// pagination.
func (s *WBSelect) GetTotalRowsCount() int64 {
	return s.totalRows
}

// GetRowsCount returns the number of rows on the returned page.
func (s *WBSelect) GetRowsCount() int {
	return len(s.resultSet)
}

// GetColumnsMeta maps column names to their native database types, without
// the synthetic count column.
func (s *WBSelect) GetColumnsMeta() map[string]string {
	return s.columns
}

// GetResults pops and returns the next buffered row, or nil when the result
// set is exhausted. Binary columns are transport-encoded for API results.
func (s *WBSelect) GetResults() utils.JSON {
	if len(s.resultSet) == 0 {
		return nil
	}
	row := s.resultSet[0]
	s.resultSet = s.resultSet[1:]

	for key, value := range row {
		if s.forAPI && value != nil && strings.Contains(s.columns[key], "BYTEA") {
			if raw, ok := value.([]byte); ok && len(raw) > 0 {
				mimeType := http.DetectContentType(raw)
				row[key] = "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(raw)
			}
		}
	}

	delete(row, "foundrows")
	return row
}

// GetAllResults drains the remaining buffered rows.
func (s *WBSelect) GetAllResults() []utils.JSON {
	results := []utils.JSON{}
	for {
		row := s.GetResults()
		if row == nil {
			break
		}
		results = append(results, row)
	}
	return results
}
