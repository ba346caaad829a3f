package service

import (
	"database/sql/driver"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"github.com/wallet-backend/wallet-backend/utils"
)

func emptyPersonRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"person_id", "fullname", "email", "cpf_cnpj", "type", "foundrows"})
}

func signupRequest() utils.JSON {
	return utils.JSON{
		"fullname": "Alice Doe",
		"email":    "alice@example.com",
		"cpf_cnpj": "12345678901",
		"username": "alice",
		"password": "secret",
	}
}

func expectEntityInsert(mock sqlmock.Sqlmock, insertPattern string, rehydrateRows *sqlmock.Rows, args ...driverValue) {
	mock.ExpectBegin()
	exec := mock.ExpectExec(insertPattern)
	if len(args) > 0 {
		exec.WithArgs(args...)
	}
	exec.WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()
	mock.ExpectQuery(`AS TAB01`).WillReturnRows(rehydrateRows)
}

type driverValue = driver.Value

func TestSignupRegistersPersonUserAndWallet(t *testing.T) {
	db, mock := newMockServiceDatabase(t)

	mock.ExpectQuery(`FROM wallet.person AS TAB01`).WillReturnRows(emptyPersonRows())
	mock.ExpectQuery(`FROM wallet.person AS TAB01`).WillReturnRows(emptyPersonRows())

	expectEntityInsert(mock,
		`INSERT INTO wallet.person \(cpf_cnpj, email, fullname, person_id, type\)`,
		sqlmock.NewRows([]string{"person_id", "fullname", "foundrows"}).AddRow("p1", "Alice Doe", 1),
		"12345678901", "alice@example.com", "Alice Doe", sqlmock.AnyArg(), "F")

	mock.ExpectQuery(`FROM wallet."?user"?`).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "foundrows"}))

	expectEntityInsert(mock,
		`INSERT INTO wallet.user \(password, user_id, user_person_id, username\)`,
		sqlmock.NewRows([]string{"user_id", "username", "foundrows"}).AddRow("u1", "alice", 1),
		sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), "alice")

	expectEntityInsert(mock,
		`INSERT INTO wallet.wallet \(balance, wallet_id, wallet_person_id\)`,
		sqlmock.NewRows([]string{"wallet_id", "balance", "foundrows"}).AddRow("w1", "0", 1),
		"0", sqlmock.AnyArg(), sqlmock.AnyArg())

	signup := NewSignup(db)
	response := signup.Execute(signupRequest())

	assert.Equal(t, "success", response.Status)
	assert.Equal(t, "User registered successfully.", response.Message)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSignupRefusesDuplicateEmail(t *testing.T) {
	db, mock := newMockServiceDatabase(t)

	mock.ExpectQuery(`FROM wallet.person AS TAB01`).
		WillReturnRows(emptyPersonRows().AddRow("p1", "Alice Doe", "alice@example.com", "12345678901", "F", 1))

	signup := NewSignup(db)
	response := signup.Execute(signupRequest())

	assert.Equal(t, "error", response.Status)
	assert.Equal(t, "The given e-mail address is already in use.", response.Message)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSignupRefusesDuplicateCpfCnpj(t *testing.T) {
	db, mock := newMockServiceDatabase(t)

	mock.ExpectQuery(`FROM wallet.person AS TAB01`).WillReturnRows(emptyPersonRows())
	mock.ExpectQuery(`FROM wallet.person AS TAB01`).
		WillReturnRows(emptyPersonRows().AddRow("p1", "Bob Doe", "bob@example.com", "12345678901", "F", 1))

	signup := NewSignup(db)
	response := signup.Execute(signupRequest())

	assert.Equal(t, "error", response.Status)
	assert.Equal(t, "The given CPF/CNPJ is already in use.", response.Message)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSignupClassifiesLegalEntityByDocumentLength(t *testing.T) {
	db, mock := newMockServiceDatabase(t)

	mock.ExpectQuery(`FROM wallet.person AS TAB01`).WillReturnRows(emptyPersonRows())
	mock.ExpectQuery(`FROM wallet.person AS TAB01`).WillReturnRows(emptyPersonRows())

	// A 14-digit CNPJ stores the person as a legal entity.
	expectEntityInsert(mock,
		`INSERT INTO wallet.person`,
		sqlmock.NewRows([]string{"person_id", "foundrows"}).AddRow("p1", 1),
		"12345678000195", "corp@example.com", "Acme Ltda", sqlmock.AnyArg(), "J")

	mock.ExpectQuery(`FROM wallet."?user"?`).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "foundrows"}))
	expectEntityInsert(mock,
		`INSERT INTO wallet.user`,
		sqlmock.NewRows([]string{"user_id", "foundrows"}).AddRow("u1", 1))
	expectEntityInsert(mock,
		`INSERT INTO wallet.wallet`,
		sqlmock.NewRows([]string{"wallet_id", "foundrows"}).AddRow("w1", 1))

	request := signupRequest()
	request["fullname"] = "Acme Ltda"
	request["email"] = "corp@example.com"
	request["cpf_cnpj"] = "12345678000195"

	signup := NewSignup(db)
	response := signup.Execute(request)

	assert.Equal(t, "success", response.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}
