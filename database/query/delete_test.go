package query

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeleteStatementShape(t *testing.T) {
	cfg := NewDeleteConfig("payment")
	cfg.Filter = WBFilterGroup{{Key: "payment_id", Value: "pay1"}}
	cfg.Unaccent = false

	d := NewDelete(newTestDatabase(), cfg)
	statement := d.Statement()

	assert.Contains(t, statement, "DELETE FROM wallet.payment WHERE ")
	assert.Equal(t, "pay1", d.Fields()["wh_sq_1_1"])
}

func TestDeleteUsingJoinsWithUsingClause(t *testing.T) {
	cfg := NewDeleteConfig("payment")
	cfg.Using = []WBUsing{{Table: "person", Key: "payer", Reference: "person_id"}}
	cfg.Filter = WBFilterGroup{{Key: "type", Value: "J"}}
	cfg.Unaccent = false

	d := NewDelete(newTestDatabase(), cfg)
	statement := d.Statement()

	assert.Contains(t, statement, " USING wallet.person AS TAB02")
	assert.Contains(t, statement, "CAST(payer AS VARCHAR(200))")
	assert.Contains(t, statement, "CAST(person_id AS VARCHAR(200))")
}

func TestDeleteWithoutFiltersStillBuilds(t *testing.T) {
	cfg := NewDeleteConfig("payment")
	cfg.Unaccent = false

	d := NewDelete(newTestDatabase(), cfg)

	assert.Equal(t, "DELETE FROM wallet.payment", d.Statement())
}

func TestDeleteExecution(t *testing.T) {
	db, mock := newMockQueryDatabase(t)

	mock.ExpectExec(`DELETE FROM wallet.payment`).
		WithArgs("pay1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	cfg := NewDeleteConfig("payment")
	cfg.Filter = WBFilterGroup{{Key: "payment_id", Value: "pay1"}}
	cfg.Unaccent = false

	d := NewDelete(db, cfg)

	require.False(t, d.HasError())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteRejectsWrongStatementKind(t *testing.T) {
	d := NewDeleteStatement(newTestDatabase(), "SELECT 1", nil)

	require.True(t, d.HasError())
	assert.Contains(t, d.GetError().Error(), "does not support")
}
