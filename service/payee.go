package service

import (
	"github.com/wallet-backend/wallet-backend/database"
	"github.com/wallet-backend/wallet-backend/database/query"
	"github.com/wallet-backend/wallet-backend/utils"
)

// WBPayee lists the people able to receive a payment, joined with their
// user accounts so the caller can show a username next to each name.
type WBPayee struct {
	db *database.WBDatabase
}

func NewPayee(db *database.WBDatabase) *WBPayee {
	return &WBPayee{db: db}
}

func (p *WBPayee) Name() string {
	return "payee"
}

func (p *WBPayee) Execute(request utils.JSON) WBServiceResponse {
	cfg := query.NewSelectConfig("person")
	cfg.Fields = []string{"person_id", "fullname", "username"}
	cfg.Joins = []query.WBJoin{
		{
			Table: "user",
			Type:  "INNER",
			Filter: query.WBFilterGroup{
				{Key: "user_person_id", Column: "person_id"},
			},
		},
	}
	cfg.OrderBy = []query.WBOrder{{Column: "fullname", Direction: "ASC"}}
	cfg.PerPage = 0

	sel := query.NewSelect(p.db, cfg)
	if sel.HasError() {
		return Error("Could not list the payees.")
	}
	return Success("", sel.GetAllResults())
}
