package database

import (
	"strings"
)

// GetStatementType classifies a statement as SELECT, INSERT, UPDATE or DELETE
// from its leading keyword. WITH is treated as SELECT. MERGE is classified by
// searching for "INSERT" anywhere in the text, a known heuristic that can be
// fooled by literals or comments.
func GetStatementType(statement string) string {
	s := strings.ToUpper(strings.TrimSpace(statement))
	s = strings.TrimSpace(strings.TrimRight(strings.TrimSpace(strings.TrimLeft(s, "(")), ")"))

	dml := s
	if i := strings.IndexAny(s, " \t\r\n"); i >= 0 {
		dml = s[:i]
	}

	switch dml {
	case "WITH":
		return "SELECT"
	case "MERGE":
		if strings.Contains(s[1:], "INSERT") {
			return "INSERT"
		}
		return "UPDATE"
	}
	return dml
}
