package service

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/wallet-backend/wallet-backend/configuration"
	"github.com/wallet-backend/wallet-backend/core"
	"github.com/wallet-backend/wallet-backend/database"
	"github.com/wallet-backend/wallet-backend/entity"
	"github.com/wallet-backend/wallet-backend/utils"
)

// Payment workflow states, in order. The workflow either reaches
// PaymentStateCommitted or rolls the whole transfer back.
const (
	PaymentStateValidated  = "VALIDATED"
	PaymentStateTransacted = "TRANSACTED"
	PaymentStateRecorded   = "RECORDED"
	PaymentStateAuthorized = "AUTHORIZED"
	PaymentStateNotified   = "NOTIFIED"
	PaymentStateCommitted  = "COMMITTED"
	PaymentStateRolledBack = "ROLLED_BACK"
)

const paymentAuthorizedMessage = "Autorizado"
const paymentNotifiedMessage = "Sucesso"

// WBPayment moves a value between two wallets inside a single database
// transaction: validate, debit and credit, record the history row, consult
// the authorizer, then commit. The notifier runs after the commit and can
// only soften the success message, never undo the transfer.
type WBPayment struct {
	db         *database.WBDatabase
	authorizer WBExternalCaller
	notifier   WBExternalCaller
	State      string
}

func NewPayment(db *database.WBDatabase) *WBPayment {
	p := &WBPayment{db: db}

	if c, ok := configuration.Manager.GetJSON("payment", "endpoints"); ok {
		if url := utils.ConvertToString(c["authorization_url"]); url != "" {
			p.authorizer = NewHTTPMessageEndpoint(url)
		}
		if url := utils.ConvertToString(c["notification_url"]); url != "" {
			p.notifier = NewHTTPMessageEndpoint(url)
		}
	}
	return p
}

// NewPaymentWithCallers wires explicit collaborators, bypassing the
// configured endpoints.
func NewPaymentWithCallers(db *database.WBDatabase, authorizer WBExternalCaller, notifier WBExternalCaller) *WBPayment {
	return &WBPayment{db: db, authorizer: authorizer, notifier: notifier}
}

func (p *WBPayment) Name() string {
	return "payment"
}

func (p *WBPayment) Execute(request utils.JSON) WBServiceResponse {
	payer := strings.TrimSpace(utils.ConvertToString(request["payer"]))
	payee := strings.TrimSpace(utils.ConvertToString(request["payee"]))
	rawValue := strings.TrimSpace(utils.ConvertToString(request["value"]))

	if payer == "" || payee == "" || rawValue == "" {
		return Error("The payer, payee and value are all required.")
	}

	value, err := parsePaymentValue(rawValue)
	if err != nil {
		return Error("The given value is not a valid amount.")
	}

	p.db.SetAutocommit(false)
	defer p.db.SetAutocommit(true)

	if err = p.db.BeginTransaction(); err != nil {
		return Error("Could not finish the payment.")
	}

	response := p.run(payer, payee, value)
	if response.Status != "success" {
		p.State = PaymentStateRolledBack
		_ = p.db.Rollback()
	}
	return response
}

func (p *WBPayment) run(payer string, payee string, value decimal.Decimal) WBServiceResponse {
	payerWallet := entity.NewWallet()
	payerWallet.SetConnection(p.db)
	payeeWallet := entity.NewWallet()
	payeeWallet.SetConnection(p.db)

	if !payerWallet.GetByPersonId(payer) || !payeeWallet.GetByPersonId(payee) {
		return Error("The payer or the payee does not have a wallet.")
	}

	if msg := p.validate(payerWallet, payee, value); msg != "" {
		return Error(msg)
	}
	p.State = PaymentStateValidated

	payerWallet.SetBalance(payerWallet.GetBalance().Sub(value))
	payeeWallet.SetBalance(payeeWallet.GetBalance().Add(value))
	if !payerWallet.Put() || !payeeWallet.Put() {
		return Error("Could not finish the payment.")
	}
	p.State = PaymentStateTransacted

	history := entity.NewPayment()
	history.SetConnection(p.db)
	paymentId := utils.GetUuid()
	history.PaymentId = &paymentId
	history.Payer = &payer
	history.Payee = &payee
	history.Value = &value
	if history.Post() == nil {
		return Error("Could not finish the payment.")
	}
	p.State = PaymentStateRecorded

	if p.authorizer == nil {
		return Error("The payment was not authorized.")
	}
	authorization := p.authorizer.Call(core.RootContext)
	if !authorization.OK || authorization.Message != paymentAuthorizedMessage {
		return Error("The payment was not authorized.")
	}
	p.State = PaymentStateAuthorized

	if err := p.db.Commit(); err != nil {
		return Error("Could not finish the payment.")
	}
	p.State = PaymentStateCommitted

	message := "Payment completed successfully."
	if p.notifier != nil {
		notification := p.notifier.Call(core.RootContext)
		if notification.OK && notification.Message == paymentNotifiedMessage {
			p.State = PaymentStateNotified
		} else {
			message = "Payment completed, but the payee could not be notified."
		}
	}
	return Success(message, utils.JSON{"payment_id": paymentId})
}

func (p *WBPayment) validate(payerWallet *entity.Wallet, payee string, value decimal.Decimal) string {
	if value.LessThanOrEqual(decimal.Zero) {
		return "The value must be greater than zero."
	}
	if payerWallet.GetWalletPersonId() == payee {
		return "The payer and the payee must be different people."
	}

	payerPerson := entity.NewPerson()
	payerPerson.SetConnection(p.db)
	if !payerPerson.GetById(payerWallet.GetWalletPersonId()) {
		return "The payer could not be found."
	}
	if payerPerson.GetType() != entity.PersonTypeNatural {
		return "Legal entities cannot send payments."
	}

	if payerWallet.GetBalance().LessThan(value) {
		return "There are not enough funds in the payer's wallet."
	}
	return ""
}

// parsePaymentValue accepts plain decimal amounts and masked pt-BR ones
// ("1.234,56"): spaces and thousand dots are stripped, a decimal comma
// becomes a dot.
func parsePaymentValue(raw string) (decimal.Decimal, error) {
	normalized := strings.ReplaceAll(raw, " ", "")
	if strings.Contains(normalized, ",") {
		normalized = strings.ReplaceAll(normalized, ".", "")
		normalized = strings.ReplaceAll(normalized, ",", ".")
	}
	return decimal.NewFromString(normalized)
}
