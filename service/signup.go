package service

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/wallet-backend/wallet-backend/database"
	"github.com/wallet-backend/wallet-backend/entity"
	"github.com/wallet-backend/wallet-backend/utils"
)

// WBSignup registers a new person with their user account and an empty
// wallet, each row keyed by a fresh identifier.
type WBSignup struct {
	db *database.WBDatabase
}

func NewSignup(db *database.WBDatabase) *WBSignup {
	return &WBSignup{db: db}
}

func (s *WBSignup) Name() string {
	return "signup"
}

func (s *WBSignup) Execute(request utils.JSON) WBServiceResponse {
	fullname := strings.TrimSpace(utils.ConvertToString(request["fullname"]))
	email := strings.TrimSpace(utils.ConvertToString(request["email"]))
	cpfCnpj := strings.TrimSpace(utils.ConvertToString(request["cpf_cnpj"]))
	username := strings.TrimSpace(utils.ConvertToString(request["username"]))
	password := strings.TrimSpace(utils.ConvertToString(request["password"]))

	person := entity.NewPerson()
	person.SetConnection(s.db)

	if person.GetByEmail(email) {
		return Error("The given e-mail address is already in use.")
	}
	if person.GetByCpfCnpj(cpfCnpj) {
		return Error("The given CPF/CNPJ is already in use.")
	}

	personId := utils.GetUuid()
	person.PersonId = &personId
	person.Fullname = &fullname
	person.Email = &email
	person.CpfCnpj = &cpfCnpj

	// Documents longer than a CPF identify a legal entity.
	personType := entity.PersonTypeNatural
	if len(cpfCnpj) > 11 {
		personType = entity.PersonTypeLegal
	}
	person.Type = &personType

	person.Post()

	user := entity.NewUser()
	user.SetConnection(s.db)
	if user.GetByUsername(username) {
		return Error("The given username is already in use.")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Error("Could not finish the registration.")
	}

	userId := utils.GetUuid()
	hashed := string(hash)
	user.UserId = &userId
	user.Username = &username
	user.UserPersonId = &personId
	user.Password = &hashed
	user.Post()

	wallet := entity.NewWallet()
	wallet.SetConnection(s.db)
	walletId := utils.GetUuid()
	wallet.WalletId = &walletId
	wallet.WalletPersonId = &personId
	wallet.SetBalance(decimal.Zero)
	wallet.Post()

	if person.HasError() || user.HasError() || wallet.HasError() {
		return Error("Could not finish the registration.")
	}
	return Success("User registered successfully.", nil)
}
