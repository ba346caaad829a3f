package query

import (
	"github.com/wallet-backend/wallet-backend/database"
	"github.com/wallet-backend/wallet-backend/log"
	"github.com/wallet-backend/wallet-backend/utils"
)

// WBDeleteConfig is the declarative input of a Delete statement.
type WBDeleteConfig struct {
	Table    string
	Using    []WBUsing
	Filter   WBFilterGroup
	Filters  []WBFilterGroup
	Unaccent bool
}

// NewDeleteConfig returns a configuration with the statement defaults.
func NewDeleteConfig(table string) WBDeleteConfig {
	return WBDeleteConfig{
		Table:    table,
		Unaccent: true,
	}
}

// WBDelete compiles and executes one DELETE statement.
type WBDelete struct {
	WBStatementBuilder
	cfg WBDeleteConfig
}

// NewDelete assembles and executes the configuration on db. A nil db falls
// back to the shared default connection.
func NewDelete(db *database.WBDatabase, cfg WBDeleteConfig) *WBDelete {
	d := &WBDelete{cfg: cfg}
	d.init(db)
	if d.HasError() {
		return d
	}
	d.unaccent = cfg.Unaccent
	d.query = d.build()
	d.execute()
	return d
}

// NewDeleteStatement executes a caller-supplied DELETE text with named
// parameters, keeping the DML-kind gate.
func NewDeleteStatement(db *database.WBDatabase, statement string, params utils.JSON) *WBDelete {
	d := &WBDelete{}
	d.init(db)
	if params != nil {
		d.fields = params
	}
	d.query = statement
	d.execute()
	return d
}

func (d *WBDelete) build() string {
	table := d.registerTable(d.cfg.Table)

	groups := d.cfg.Filters
	if len(d.cfg.Filter) > 0 {
		groups = append([]WBFilterGroup{d.cfg.Filter}, groups...)
	}
	joins, groups := d.relatedTables(d.cfg.Using, groups)

	where := d.compileFilterGroups(groups)
	if where != "" {
		where = " WHERE " + where
	}

	return d.db.Dialect.DeleteStatement(table.QualifiedName(), joins, where)
}

func (d *WBDelete) execute() {
	if err := d.checkStatement(d.query, "DELETE"); err != nil {
		d.setError(err)
		return
	}
	if _, err := d.db.PrepareAndExecute(d.query, d.fields); err != nil {
		d.captureDBError(err)
		log.Log.Warnf("Could not finish the delete routine (%v)", d.GetError())
	}
}
