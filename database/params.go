package database

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/wallet-backend/wallet-backend/utils"
)

// placeholderPattern matches one occurrence of a named placeholder with a
// non-identifier boundary so that :x never matches inside :x_10.
func placeholderPattern(name string) *regexp.Regexp {
	return regexp.MustCompile(regexp.QuoteMeta(":"+name) + `([^_a-zA-Z0-9]|$)`)
}

// ExpandRepeatedParameters rewrites a statement whose SQL text references one
// named placeholder in more than one syntactic position. The first occurrence
// keeps its name; every later occurrence is renamed with a numbered suffix
// bound to the same value. Backends that refuse rebinding one name to several
// positions then see each position exactly once. Positional parameters are
// never rewritten.
func ExpandRepeatedParameters(statement string, params utils.JSON) (string, utils.JSON) {
	if len(params) == 0 {
		return statement, params
	}

	out := utils.JSON{}
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		value := params[name]
		out[name] = value

		re := placeholderPattern(name)
		occurrence := 0
		statement = re.ReplaceAllStringFunc(statement, func(m string) string {
			occurrence++
			if occurrence == 1 {
				return m
			}
			suffixed := fmt.Sprintf("%s_%d", name, occurrence-1)
			out[suffixed] = value
			return ":" + suffixed + strings.TrimPrefix(m, ":"+name)
		})
	}

	return statement, out
}

// SubstituteLiterals renders a statement with its named parameter values
// substituted back in. The result is for diagnostics only and is never
// executed.
func SubstituteLiterals(statement string, params utils.JSON) string {
	if len(params) == 0 {
		return statement
	}

	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		literal := literalValue(params[name])
		re := placeholderPattern(name)
		statement = re.ReplaceAllStringFunc(statement, func(m string) string {
			return literal + strings.TrimPrefix(m, ":"+name)
		})
	}
	return statement
}

// SubstitutePositionalLiterals renders positional (?) parameters in order.
func SubstitutePositionalLiterals(statement string, params []any) string {
	for _, p := range params {
		statement = strings.Replace(statement, "?", literalValue(p), 1)
	}
	return statement
}

func literalValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case string:
		return "'" + strings.ReplaceAll(x, "'", "''") + "'"
	case []byte:
		return fmt.Sprintf("'<binary:%d bytes>'", len(x))
	case bool:
		if x {
			return "TRUE"
		}
		return "FALSE"
	case decimal.Decimal:
		return x.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}
