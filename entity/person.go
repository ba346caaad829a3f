package entity

import (
	"github.com/wallet-backend/wallet-backend/database/query"
)

// Person type codes: natural persons may pay, legal entities only receive.
const (
	PersonTypeNatural = "F"
	PersonTypeLegal   = "J"
)

// Person maps the person table.
type Person struct {
	WBEntity
	PersonId       *string
	Fullname       *string
	Email          *string
	Type           *string
	CpfCnpj        *string
	PersonCreation *string
}

func NewPerson() *Person {
	p := &Person{}
	p.define("person", "person_id", nil, p.fieldDefs())
	return p
}

func (p *Person) fieldDefs() []WBField {
	return []WBField{
		StringField("person_id", &p.PersonId),
		StringField("fullname", &p.Fullname),
		StringField("email", &p.Email),
		StringField("type", &p.Type),
		StringField("cpf_cnpj", &p.CpfCnpj),
		StringField("person_creation", &p.PersonCreation),
	}
}

// GetByEmail hydrates the person matching an e-mail address.
func (p *Person) GetByEmail(email string) bool {
	return p.Get(query.WBFilterGroup{{Key: "email", Value: email}})
}

// GetByCpfCnpj hydrates the person matching a CPF or CNPJ document number.
func (p *Person) GetByCpfCnpj(cpfCnpj string) bool {
	return p.Get(query.WBFilterGroup{{Key: "cpf_cnpj", Value: cpfCnpj}})
}

// GetPersonId returns the person identifier, empty when unset.
func (p *Person) GetPersonId() string {
	if p.PersonId == nil {
		return ""
	}
	return *p.PersonId
}

// GetType returns the person type code, empty when unset.
func (p *Person) GetType() string {
	if p.Type == nil {
		return ""
	}
	return *p.Type
}
