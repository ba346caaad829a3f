package query

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wallet-backend/wallet-backend/utils"
)

func TestInsertSplitsIdentityAndNonIdentityRecords(t *testing.T) {
	cfg := NewInsertConfig("person")
	cfg.Key = "person_id"
	cfg.Items = WBInsertItems{
		Columns: []string{"person_id", "fullname"},
		Records: [][]any{
			{"p1", "Alice"},
			{nil, "Bob"},
			{"", "Carol"},
		},
	}

	i := NewInsert(newTestDatabase(), cfg)

	// Exactly two statements: one with the key, one without.
	assert.Contains(t, i.identityStatement, "(person_id, fullname)")
	assert.Contains(t, i.identityStatement, "ON CONFLICT (person_id) DO UPDATE SET fullname = EXCLUDED.fullname")
	assert.Contains(t, i.nonIdentityStatement, "(fullname)")
	assert.NotContains(t, i.nonIdentityStatement, "ON CONFLICT")
	assert.NotContains(t, i.nonIdentityStatement, "person_id")

	// Parameter naming is record- and field-indexed.
	assert.Equal(t, "p1", i.identityFields["val_sq_0_0"])
	assert.Equal(t, "Alice", i.identityFields["val_sq_0_1"])
	assert.Equal(t, "Bob", i.nonIdentityFields["val_sq_1_1"])
	assert.Equal(t, "Carol", i.nonIdentityFields["val_sq_2_1"])
}

func TestInsertDropsMalformedRecords(t *testing.T) {
	cfg := NewInsertConfig("person")
	cfg.Key = "person_id"
	cfg.Items = WBInsertItems{
		Columns: []string{"person_id", "fullname"},
		Records: [][]any{
			{"p1", "Alice"},
			{"only-one-value"},
		},
	}

	i := NewInsert(newTestDatabase(), cfg)

	assert.Len(t, i.identityFields, 2)
	assert.Empty(t, i.nonIdentityFields)
}

func TestInsertItemFoldsInSortedColumnOrder(t *testing.T) {
	cfg := NewInsertConfig("wallet")
	cfg.Key = "wallet_id"
	cfg.Item = utils.JSON{
		"wallet_id":        "w1",
		"balance":          "0",
		"wallet_person_id": "p1",
	}

	i := NewInsert(newTestDatabase(), cfg)

	assert.Contains(t, i.identityStatement, "(balance, wallet_id, wallet_person_id)")
	assert.Equal(t, "0", i.identityFields["val_sq_0_0"])
	assert.Equal(t, "w1", i.identityFields["val_sq_0_1"])
	assert.Equal(t, "p1", i.identityFields["val_sq_0_2"])
}

func TestInsertWithoutUpdateDuplicateKey(t *testing.T) {
	cfg := NewInsertConfig("person")
	cfg.Key = "person_id"
	cfg.UpdateDuplicateKey = false
	cfg.Item = utils.JSON{"person_id": "p1"}

	i := NewInsert(newTestDatabase(), cfg)

	assert.NotContains(t, i.identityStatement, "ON CONFLICT")
}

func TestInsertBlankBatchRefused(t *testing.T) {
	cfg := NewInsertConfig("person")

	i := NewInsert(newTestDatabase(), cfg)

	require.True(t, i.HasError())
	assert.Contains(t, i.GetError().Error(), "blank")
	assert.Nil(t, i.GetLastInsertID())
}

func TestInsertExecutesBothGroupsAndCommits(t *testing.T) {
	db, mock := newMockQueryDatabase(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO wallet.person \(person_id, fullname\)`).
		WithArgs("p1", "Alice").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO wallet.person \(fullname\)`).
		WithArgs("Bob").
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	cfg := NewInsertConfig("person")
	cfg.Key = "person_id"
	cfg.Items = WBInsertItems{
		Columns: []string{"person_id", "fullname"},
		Records: [][]any{
			{"p1", "Alice"},
			{nil, "Bob"},
		},
	}

	i := NewInsert(db, cfg)
	require.False(t, i.HasError())

	assert.Equal(t, "p1", i.GetLastInsertID())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertRollsBackOnFailure(t *testing.T) {
	db, mock := newMockQueryDatabase(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO wallet.person`).
		WillReturnError(&stubDriverError{msg: "duplicate key value violates unique constraint"})
	mock.ExpectRollback()

	cfg := NewInsertConfig("person")
	cfg.Key = "person_id"
	cfg.Item = utils.JSON{"person_id": "p1"}

	i := NewInsert(db, cfg)

	require.True(t, i.HasError())
	assert.Nil(t, i.GetLastInsertID())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertDefersCommitInsideCallerTransaction(t *testing.T) {
	db, mock := newMockQueryDatabase(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO wallet.payment`).
		WithArgs("pay1").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	db.SetAutocommit(false)
	require.NoError(t, db.BeginTransaction())

	cfg := NewInsertConfig("payment")
	cfg.Key = "payment_id"
	cfg.Item = utils.JSON{"payment_id": "pay1"}

	i := NewInsert(db, cfg)
	require.False(t, i.HasError())
	assert.True(t, db.InTransaction())

	// The surrounding workflow owns the terminal commit.
	require.NoError(t, db.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

type stubDriverError struct {
	msg string
}

func (e *stubDriverError) Error() string {
	return e.msg
}
