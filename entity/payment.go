package entity

import (
	"github.com/shopspring/decimal"
)

// Payment maps the payment history table.
type Payment struct {
	WBEntity
	PaymentId       *string
	Payer           *string
	Payee           *string
	Value           *decimal.Decimal
	PaymentCreation *string
}

func NewPayment() *Payment {
	p := &Payment{}
	p.define("payment", "payment_id", nil, []WBField{
		StringField("payment_id", &p.PaymentId),
		StringField("payer", &p.Payer),
		StringField("payee", &p.Payee),
		DecimalField("value", &p.Value),
		StringField("payment_creation", &p.PaymentCreation),
	})
	return p
}
