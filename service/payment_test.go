package service

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wallet-backend/wallet-backend/database"
	"github.com/wallet-backend/wallet-backend/database/database_type"
	"github.com/wallet-backend/wallet-backend/database/driver"
	"github.com/wallet-backend/wallet-backend/utils"
)

func newMockServiceDatabase(t *testing.T) (*database.WBDatabase, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = mockDB.Close()
	})

	d := database.NewDatabase("service-test")
	d.DatabaseType = database_type.PostgreSQL
	d.Dialect = driver.NewDialect(database_type.PostgreSQL)
	d.DatabaseName = "wallet"
	d.Schema = "wallet"
	d.Connection = sqlx.NewDb(mockDB, "postgres")
	d.Connected = true
	return d, mock
}

type stubCaller struct {
	result WBCallResult
	calls  int
}

func (s *stubCaller) Call(ctx context.Context) WBCallResult {
	s.calls++
	return s.result
}

func walletRows(walletId, personId, balance string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"wallet_id", "wallet_person_id", "balance", "foundrows"}).
		AddRow(walletId, personId, balance, 1)
}

func personRows(personId, personType string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"person_id", "fullname", "type", "foundrows"}).
		AddRow(personId, "Somebody", personType, 1)
}

func expectPaymentValidation(mock sqlmock.Sqlmock, payerBalance string) {
	mock.ExpectBegin()
	mock.ExpectQuery(`FROM wallet.wallet AS TAB01`).WillReturnRows(walletRows("w1", "p-payer", payerBalance))
	mock.ExpectQuery(`FROM wallet.wallet AS TAB01`).WillReturnRows(walletRows("w2", "p-payee", "50"))
	mock.ExpectQuery(`FROM wallet.person AS TAB01`).WillReturnRows(personRows("p-payer", "F"))
}

func TestPaymentCompletesAndCommits(t *testing.T) {
	db, mock := newMockServiceDatabase(t)

	expectPaymentValidation(mock, "100")
	mock.ExpectExec(`UPDATE wallet.wallet SET balance = \$1`).
		WithArgs("90", "p-payer", "w1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE wallet.wallet SET balance = \$1`).
		WithArgs("60", "p-payee", "w2").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO wallet.payment \(payee, payer, payment_id, value\)`).
		WithArgs("p-payee", "p-payer", sqlmock.AnyArg(), "10").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(`FROM wallet.payment AS TAB01`).
		WillReturnRows(sqlmock.NewRows([]string{"payment_id", "payer", "payee", "value", "foundrows"}).
			AddRow("pay1", "p-payer", "p-payee", "10", 1))
	mock.ExpectCommit()

	authorizer := &stubCaller{result: WBCallResult{OK: true, Message: "Autorizado"}}
	notifier := &stubCaller{result: WBCallResult{OK: true, Message: "Sucesso"}}
	p := NewPaymentWithCallers(db, authorizer, notifier)

	response := p.Execute(utils.JSON{"payer": "p-payer", "payee": "p-payee", "value": "10"})

	assert.Equal(t, "success", response.Status)
	assert.Equal(t, "Payment completed successfully.", response.Message)
	assert.Equal(t, PaymentStateNotified, p.State)
	assert.Equal(t, 1, authorizer.calls)
	assert.Equal(t, 1, notifier.calls)
	assert.True(t, db.IsAutocommit)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentDeniedAuthorizationRollsBack(t *testing.T) {
	db, mock := newMockServiceDatabase(t)

	expectPaymentValidation(mock, "100")
	mock.ExpectExec(`UPDATE wallet.wallet`).
		WithArgs("90", "p-payer", "w1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE wallet.wallet`).
		WithArgs("60", "p-payee", "w2").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO wallet.payment`).
		WithArgs("p-payee", "p-payer", sqlmock.AnyArg(), "10").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(`FROM wallet.payment AS TAB01`).
		WillReturnRows(sqlmock.NewRows([]string{"payment_id", "foundrows"}).AddRow("pay1", 1))
	mock.ExpectRollback()

	authorizer := &stubCaller{result: WBCallResult{OK: true, Message: "Negado"}}
	notifier := &stubCaller{result: WBCallResult{OK: true, Message: "Sucesso"}}
	p := NewPaymentWithCallers(db, authorizer, notifier)

	response := p.Execute(utils.JSON{"payer": "p-payer", "payee": "p-payee", "value": "10"})

	assert.Equal(t, "error", response.Status)
	assert.Equal(t, "The payment was not authorized.", response.Message)
	assert.Equal(t, PaymentStateRolledBack, p.State)
	// The notifier never runs for a failed payment.
	assert.Equal(t, 0, notifier.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentInsufficientFunds(t *testing.T) {
	db, mock := newMockServiceDatabase(t)

	expectPaymentValidation(mock, "5")
	mock.ExpectRollback()

	p := NewPaymentWithCallers(db, &stubCaller{}, &stubCaller{})

	response := p.Execute(utils.JSON{"payer": "p-payer", "payee": "p-payee", "value": "10"})

	assert.Equal(t, "error", response.Status)
	assert.Equal(t, "There are not enough funds in the payer's wallet.", response.Message)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentLegalEntityPayerRefused(t *testing.T) {
	db, mock := newMockServiceDatabase(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM wallet.wallet AS TAB01`).WillReturnRows(walletRows("w1", "p-payer", "100"))
	mock.ExpectQuery(`FROM wallet.wallet AS TAB01`).WillReturnRows(walletRows("w2", "p-payee", "50"))
	mock.ExpectQuery(`FROM wallet.person AS TAB01`).WillReturnRows(personRows("p-payer", "J"))
	mock.ExpectRollback()

	p := NewPaymentWithCallers(db, &stubCaller{}, &stubCaller{})

	response := p.Execute(utils.JSON{"payer": "p-payer", "payee": "p-payee", "value": "10"})

	assert.Equal(t, "error", response.Status)
	assert.Equal(t, "Legal entities cannot send payments.", response.Message)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentSelfTransferRefused(t *testing.T) {
	db, mock := newMockServiceDatabase(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM wallet.wallet AS TAB01`).WillReturnRows(walletRows("w1", "p-same", "100"))
	mock.ExpectQuery(`FROM wallet.wallet AS TAB01`).WillReturnRows(walletRows("w1", "p-same", "100"))
	mock.ExpectRollback()

	p := NewPaymentWithCallers(db, &stubCaller{}, &stubCaller{})

	response := p.Execute(utils.JSON{"payer": "p-same", "payee": "p-same", "value": "10"})

	assert.Equal(t, "error", response.Status)
	assert.Equal(t, "The payer and the payee must be different people.", response.Message)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentMissingWallet(t *testing.T) {
	db, mock := newMockServiceDatabase(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM wallet.wallet AS TAB01`).
		WillReturnRows(sqlmock.NewRows([]string{"wallet_id", "foundrows"}))
	mock.ExpectRollback()

	p := NewPaymentWithCallers(db, &stubCaller{}, &stubCaller{})

	response := p.Execute(utils.JSON{"payer": "nobody", "payee": "p-payee", "value": "10"})

	assert.Equal(t, "error", response.Status)
	assert.Equal(t, "The payer or the payee does not have a wallet.", response.Message)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRejectsNonPositiveValue(t *testing.T) {
	for _, value := range []string{"0", "-1", "0,00"} {
		db, mock := newMockServiceDatabase(t)
		mock.ExpectBegin()
		mock.ExpectQuery(`FROM wallet.wallet AS TAB01`).WillReturnRows(walletRows("w1", "p-payer", "100"))
		mock.ExpectQuery(`FROM wallet.wallet AS TAB01`).WillReturnRows(walletRows("w2", "p-payee", "50"))
		mock.ExpectRollback()

		p := NewPaymentWithCallers(db, &stubCaller{}, &stubCaller{})
		response := p.Execute(utils.JSON{"payer": "p-payer", "payee": "p-payee", "value": value})

		assert.Equal(t, "error", response.Status, value)
		assert.Equal(t, "The value must be greater than zero.", response.Message, value)
		assert.NoError(t, mock.ExpectationsWereMet(), value)
	}
}

func TestPaymentMissingParameters(t *testing.T) {
	p := NewPaymentWithCallers(nil, &stubCaller{}, &stubCaller{})

	response := p.Execute(utils.JSON{"payer": "p1"})

	assert.Equal(t, "error", response.Status)
	assert.Equal(t, "The payer, payee and value are all required.", response.Message)
}

func TestPaymentNotificationFailureSoftensMessage(t *testing.T) {
	db, mock := newMockServiceDatabase(t)

	expectPaymentValidation(mock, "100")
	mock.ExpectExec(`UPDATE wallet.wallet`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE wallet.wallet`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO wallet.payment`).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(`FROM wallet.payment AS TAB01`).
		WillReturnRows(sqlmock.NewRows([]string{"payment_id", "foundrows"}).AddRow("pay1", 1))
	mock.ExpectCommit()

	authorizer := &stubCaller{result: WBCallResult{OK: true, Message: "Autorizado"}}
	notifier := &stubCaller{result: WBCallResult{Err: assert.AnError}}
	p := NewPaymentWithCallers(db, authorizer, notifier)

	response := p.Execute(utils.JSON{"payer": "p-payer", "payee": "p-payee", "value": "10"})

	// The transfer stands; only the message reflects the failed notice.
	assert.Equal(t, "success", response.Status)
	assert.Equal(t, "Payment completed, but the payee could not be notified.", response.Message)
	assert.Equal(t, PaymentStateCommitted, p.State)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestParsePaymentValueNormalizesMaskedAmounts(t *testing.T) {
	cases := map[string]string{
		"10":       "10",
		"10.50":    "10.5",
		"1.234,56": "1234.56",
		"1 234,56": "1234.56",
		"0,99":     "0.99",
	}

	for in, expected := range cases {
		value, err := parsePaymentValue(in)
		require.NoError(t, err, in)
		assert.True(t, value.Equal(decimal.RequireFromString(expected)), in)
	}

	_, err := parsePaymentValue("abc")
	assert.Error(t, err)
}
