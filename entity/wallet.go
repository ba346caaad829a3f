package entity

import (
	"github.com/shopspring/decimal"

	"github.com/wallet-backend/wallet-backend/database/query"
)

// Wallet maps the wallet table, one balance per person.
type Wallet struct {
	WBEntity
	WalletId       *string
	WalletPersonId *string
	Balance        *decimal.Decimal
	WalletCreation *string
}

func NewWallet() *Wallet {
	w := &Wallet{}
	w.define("wallet", "wallet_id", nil, []WBField{
		StringField("wallet_id", &w.WalletId),
		StringField("wallet_person_id", &w.WalletPersonId),
		DecimalField("balance", &w.Balance),
		StringField("wallet_creation", &w.WalletCreation),
	})
	return w
}

// GetByPersonId hydrates the wallet owned by a person.
func (w *Wallet) GetByPersonId(personId string) bool {
	return w.Get(query.WBFilterGroup{{Key: "wallet_person_id", Value: personId}})
}

// GetWalletPersonId returns the owning person's identifier, empty when unset.
func (w *Wallet) GetWalletPersonId() string {
	if w.WalletPersonId == nil {
		return ""
	}
	return *w.WalletPersonId
}

// GetBalance returns the wallet balance, zero when unset.
func (w *Wallet) GetBalance() decimal.Decimal {
	if w.Balance == nil {
		return decimal.Zero
	}
	return *w.Balance
}

// SetBalance replaces the wallet balance.
func (w *Wallet) SetBalance(balance decimal.Decimal) {
	w.Balance = &balance
}
