package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wallet-backend/wallet-backend/utils"
)

// Comparator whitelist. Anything outside the list falls back to "=".
var compares = []string{
	"=", "!=", "<>", ">", "<", ">=", "<=",
	"IN", "NOT IN", "IS NULL", "IS NOT NULL", "EXISTS", "NOT EXISTS",
	"BETWEEN", "LIKE", "LEFT LIKE", "RIGHT LIKE",
	"NOT LIKE", "NOT LEFT LIKE", "NOT RIGHT LIKE", "MATCH_PERCENTAGE",
}

var comparesIgnoredValues = []string{"IS NULL", "IS NOT NULL", "EXISTS", "NOT EXISTS"}

var comparesLike = []string{"LIKE", "LEFT LIKE", "RIGHT LIKE", "NOT LIKE", "NOT LEFT LIKE", "NOT RIGHT LIKE"}

// WBRange is the {min, max} literal pair of a BETWEEN filter.
type WBRange struct {
	Min any
	Max any
}

// WBColumnRange is the column-to-column form of a BETWEEN filter.
type WBColumnRange struct {
	Min string
	Max string
}

// WBFilter is one predicate of a filter group. Key is a SQL expression,
// usually a column. Value is the literal side (scalar, list for IN, WBRange
// for BETWEEN, or the subquery text for the EXISTS family riding on Key).
// Column, Columns or ColumnRange switch the comparison to column-to-column.
// Relation joins the node to the previous node of its group, AND by default.
type WBFilter struct {
	Key         string
	Value       any
	Column      string
	Columns     []string
	ColumnRange *WBColumnRange
	Compare     string
	Relation    string

	// Percentage is the MATCH_PERCENTAGE threshold, 100 when zero.
	Percentage int
}

// WBFilterGroup is an ordered conjunct of filter nodes. Groups are joined to
// each other with AND; nodes within one group follow their own relations.
type WBFilterGroup []WBFilter

func (f WBFilter) isColumnMode() bool {
	return strings.TrimSpace(f.Column) != "" || len(f.Columns) > 0 || f.ColumnRange != nil
}

func normalizeCompare(compare string) string {
	compare = strings.ToUpper(strings.TrimSpace(compare))
	if utils.StringSliceContains(compares, compare) {
		return compare
	}
	return "="
}

func normalizeRelation(relation string) string {
	if strings.ToUpper(strings.TrimSpace(relation)) == "OR" {
		return " OR "
	}
	return " AND "
}

// nullLiteral converts the literal string "NULL" to a real nil.
func nullLiteral(v any) any {
	if s, ok := v.(string); ok && strings.EqualFold(strings.TrimSpace(s), "NULL") {
		return nil
	}
	return v
}

// compileFilterGroups renders an ordered sequence of filter groups into one
// parameterized boolean expression, accumulating bound values on the
// builder's field map. Empty input yields the empty string, meaning no
// filter. Literal values are always bound as named parameters, namespaced by
// group and node index so names never collide within one statement; only
// column-mode comparisons embed other columns' expressions verbatim.
func (b *WBStatementBuilder) compileFilterGroups(groups []WBFilterGroup) string {
	d := b.db.Dialect
	schema := b.db.GetSchema()
	query := ""

	for gi, group := range groups {
		if len(group) == 0 {
			continue
		}
		shortQuery := ""

		for ni, meta := range group {
			param := fmt.Sprintf("wh_sq_%d_%d", gi+1, ni+1)
			key := strings.TrimSpace(meta.Key)
			compare := normalizeCompare(meta.Compare)
			relation := normalizeRelation(meta.Relation)
			valueExpr := ""

			switch {
			case utils.StringSliceContains(comparesIgnoredValues, compare):
				// The EXISTS family takes its sub-expression from Key.
				if strings.Contains(compare, "EXISTS") {
					valueExpr = "(" + key + ")"
					key = ""
				}

			case compare == "MATCH_PERCENTAGE":
				other := strings.TrimSpace(meta.Column)
				if other == "" {
					b.fields[param] = meta.Value
					other = ":" + param
				}
				key = schema + ".fuzzysearch((" + d.Cast(key, "VARCHAR", 200) + "), (" + d.Cast(other, "VARCHAR", 200) + "))"
				percentage := meta.Percentage
				if percentage <= 0 {
					percentage = 100
				}
				valueExpr = strconv.Itoa(percentage)
				compare = ">="

			default:
				isColumn := meta.isColumnMode()
				realCompare := compare
				value := nullLiteral(meta.Value)

				switch {
				case utils.StringSliceContains(comparesLike, compare):
					valueExpr = b.compileLike(param, &compare, meta, isColumn, value)

				case compare == "BETWEEN":
					valueExpr = b.compileBetween(param, meta, isColumn, value)

				case compare == "IN" || compare == "NOT IN":
					valueExpr = b.compileInList(param, meta, isColumn, value)

				default:
					if isColumn {
						valueExpr = strings.TrimSpace(meta.Column)
					} else {
						if s, ok := value.(string); ok {
							value = strings.TrimSpace(s)
						}
						b.fields[param] = value
						valueExpr = ":" + param
					}
					// Both sides collapse to a bounded text form with a
					// non-NULL default, so mismatched native types and NULLs
					// compare deterministically.
					valueExpr = "COALESCE((" + d.Cast(valueExpr, "VARCHAR", 200) + "), '')"
				}

				compare = d.LikeComparator(compare)
				key = "COALESCE((" + d.Cast(key, "VARCHAR", 200) + "), '')"

				if b.unaccent {
					key = d.IgnoreAccents(schema, key)
					// IN lists fold each element individually instead.
					if realCompare != "IN" && realCompare != "NOT IN" {
						valueExpr = d.IgnoreAccents(schema, valueExpr)
					}
				}
			}

			if shortQuery != "" {
				shortQuery += relation
			}
			shortQuery += strings.TrimSpace(key + " " + compare + " " + valueExpr)
		}

		if query != "" {
			query += " AND "
		}
		query += "(" + shortQuery + ")"
	}

	return query
}

// compileLike renders the LIKE family. Literal mode affixes the wildcard
// client-side and binds the result; column mode builds the wildcard
// concatenation in SQL with a NULL-safe COALESCE so a NULL column does not
// nullify the match.
func (b *WBStatementBuilder) compileLike(param string, compare *string, meta WBFilter, isColumn bool, value any) string {
	d := b.db.Dialect

	negated := strings.Contains(*compare, "NOT")
	left := strings.Contains(*compare, "LEFT")
	right := strings.Contains(*compare, "RIGHT")

	if negated {
		*compare = "NOT LIKE"
	} else {
		*compare = "LIKE"
	}

	if isColumn {
		column := strings.TrimSpace(meta.Column)
		safe := "COALESCE(" + column + ", '')"
		switch {
		case left:
			return d.ConcatNoCoalesce("'%'", safe)
		case right:
			return d.ConcatNoCoalesce(safe, "'%'")
		default:
			return d.ConcatNoCoalesce("'%'", safe, "'%'")
		}
	}

	if value == nil {
		b.fields[param] = nil
		return ":" + param
	}

	literal := utils.ConvertToString(value)
	switch {
	case left:
		literal = "%" + literal
	case right:
		literal = literal + "%"
	default:
		literal = "%" + literal + "%"
	}
	b.fields[param] = literal
	return ":" + param
}

// compileBetween renders a BETWEEN pair, binding min and max as two separate
// parameters in literal mode.
func (b *WBStatementBuilder) compileBetween(param string, meta WBFilter, isColumn bool, value any) string {
	if isColumn && meta.ColumnRange != nil {
		return meta.ColumnRange.Min + " AND " + meta.ColumnRange.Max
	}

	var r WBRange
	switch x := value.(type) {
	case WBRange:
		r = x
	case *WBRange:
		if x != nil {
			r = *x
		}
	}

	b.fields[param+"_min"] = nullLiteral(r.Min)
	b.fields[param+"_max"] = nullLiteral(r.Max)
	return ":" + param + "_min AND :" + param + "_max"
}

// compileInList renders IN / NOT IN. Literal mode binds one parameter per
// element and hands the placeholder list to the dialect, which may turn the
// membership test into an ILIKE ANY(ARRAY[...]) construct; column mode
// renders a parenthesized column list for row-value comparison.
func (b *WBStatementBuilder) compileInList(param string, meta WBFilter, isColumn bool, value any) string {
	d := b.db.Dialect
	schema := b.db.GetSchema()

	if isColumn {
		columns := meta.Columns
		if len(columns) == 0 && strings.TrimSpace(meta.Column) != "" {
			columns = []string{strings.TrimSpace(meta.Column)}
		}
		if b.unaccent {
			folded := make([]string, 0, len(columns))
			for _, c := range columns {
				folded = append(folded, d.IgnoreAccents(schema, c))
			}
			columns = folded
		}
		return "(" + strings.Join(columns, ", ") + ")"
	}

	var elements []any
	switch x := value.(type) {
	case nil:
		elements = []any{nil}
	case []any:
		elements = x
	case []string:
		for _, s := range x {
			elements = append(elements, s)
		}
	case string:
		for _, s := range strings.Split(x, ",") {
			elements = append(elements, s)
		}
	default:
		elements = []any{x}
	}

	keys := make([]string, 0, len(elements))
	for j, element := range elements {
		name := fmt.Sprintf("%s_%d", param, j+1)
		if s, ok := element.(string); ok {
			element = nullLiteral(strings.TrimSpace(s))
		}
		b.fields[name] = element
		keys = append(keys, ":"+name)
	}

	if b.unaccent {
		folded := make([]string, 0, len(keys))
		for _, k := range keys {
			folded = append(folded, d.IgnoreAccents(schema, k))
		}
		keys = folded
	}

	return d.InListComparator(keys)
}
