package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetStatementType(t *testing.T) {
	cases := []struct {
		statement string
		expected  string
	}{
		{"SELECT * FROM person", "SELECT"},
		{"  select 1", "SELECT"},
		{"(SELECT 1)", "SELECT"},
		{"WITH cte AS (SELECT 1) SELECT * FROM cte", "SELECT"},
		{"INSERT INTO person VALUES (:v)", "INSERT"},
		{"UPDATE person SET fullname = :v", "UPDATE"},
		{"DELETE FROM person", "DELETE"},
		{"MERGE INTO t USING s ON t.id = s.id WHEN NOT MATCHED THEN INSERT (id) VALUES (s.id)", "INSERT"},
		{"MERGE INTO t USING s ON t.id = s.id WHEN MATCHED THEN UPDATE SET v = s.v", "UPDATE"},
	}

	for _, c := range cases {
		assert.Equal(t, c.expected, GetStatementType(c.statement), c.statement)
	}
}
