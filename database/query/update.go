package query

import (
	"fmt"
	"sort"
	"strings"

	"github.com/wallet-backend/wallet-backend/database"
	"github.com/wallet-backend/wallet-backend/log"
	"github.com/wallet-backend/wallet-backend/utils"
)

// WBSet is one SET entry. Column switches the assignment from a bound
// literal to a column-to-column expression.
type WBSet struct {
	Set    string
	Value  any
	Column string
}

// WBUsing relates the updated table to another table through an automatic
// equality filter between Key and Reference.
type WBUsing struct {
	Table     string
	Key       string
	Reference string
}

// WBUpdateConfig is the declarative input of an Update statement. SetValues
// is the bare column-to-literal convenience form, folded into Sets during
// assembly in sorted column order.
type WBUpdateConfig struct {
	Table     string
	Sets      []WBSet
	SetValues utils.JSON
	Using     []WBUsing
	Key       string
	Filter    WBFilterGroup
	Filters   []WBFilterGroup
	Unaccent  bool
}

// NewUpdateConfig returns a configuration with the statement defaults.
func NewUpdateConfig(table string) WBUpdateConfig {
	return WBUpdateConfig{
		Table:    table,
		Unaccent: true,
	}
}

// WBUpdate compiles and executes one UPDATE statement.
type WBUpdate struct {
	WBStatementBuilder
	cfg WBUpdateConfig
}

// NewUpdate assembles and executes the configuration on db. A nil db falls
// back to the shared default connection.
func NewUpdate(db *database.WBDatabase, cfg WBUpdateConfig) *WBUpdate {
	u := &WBUpdate{cfg: cfg}
	u.init(db)
	if u.HasError() {
		return u
	}
	u.unaccent = cfg.Unaccent
	u.query = u.build()
	u.execute()
	return u
}

// NewUpdateStatement executes a caller-supplied UPDATE text with named
// parameters, keeping the DML-kind gate.
func NewUpdateStatement(db *database.WBDatabase, statement string, params utils.JSON) *WBUpdate {
	u := &WBUpdate{}
	u.init(db)
	if params != nil {
		u.fields = params
	}
	u.query = statement
	u.execute()
	return u
}

// relatedTables registers every using-entry's table and appends one filter
// group of automatic key-to-reference equalities to groups. Shared with the
// Delete builder.
func (b *WBStatementBuilder) relatedTables(using []WBUsing, groups []WBFilterGroup) (joins []string, outGroups []WBFilterGroup) {
	autoGroup := WBFilterGroup{}

	for _, u := range using {
		if strings.TrimSpace(u.Table) == "" {
			continue
		}
		table := b.registerTable(u.Table)
		joins = append(joins, table.AliasedName())
		autoGroup = append(autoGroup, WBFilter{Key: u.Key, Column: u.Reference})
	}

	outGroups = groups
	if len(autoGroup) > 0 {
		outGroups = append(outGroups, autoGroup)
	}
	return joins, outGroups
}

func (u *WBUpdate) build() string {
	table := u.registerTable(u.cfg.Table)
	key := strings.TrimSpace(u.cfg.Key)

	groups := u.cfg.Filters
	if len(u.cfg.Filter) > 0 {
		groups = append([]WBFilterGroup{u.cfg.Filter}, groups...)
	}
	joins, groups := u.relatedTables(u.cfg.Using, groups)

	setColumns := u.buildSets(key)

	// An update joined to related tables without the primary key to scope it
	// would touch rows beyond the intended one; refuse to build.
	if len(joins) > 0 && key == "" {
		log.Log.Warn("An update joining related tables requires the main table's primary key")
		return ""
	}

	where := u.compileFilterGroups(groups)
	if where != "" {
		where = " WHERE " + where
	}

	return u.db.Dialect.UpdateStatement(table.QualifiedName(), setColumns, joins, where, key)
}

func (u *WBUpdate) buildSets(key string) []string {
	sets := append([]WBSet{}, u.cfg.Sets...)

	if len(u.cfg.SetValues) > 0 {
		names := make([]string, 0, len(u.cfg.SetValues))
		for name := range u.cfg.SetValues {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			sets = append(sets, WBSet{Set: name, Value: u.cfg.SetValues[name]})
		}
	}

	setColumns := []string{}
	for idx, set := range sets {
		name := strings.TrimSpace(set.Set)

		// The synthetic row number is never updatable, and the primary key
		// stays out of SET: it identifies the row instead.
		if strings.EqualFold(name, "rownumber") || strings.EqualFold(name, key) {
			continue
		}

		valueExpr := strings.TrimSpace(set.Column)
		if valueExpr == "" {
			param := fmt.Sprintf("set_sq_%d", idx+1)
			u.fields[param] = nullLiteral(set.Value)
			valueExpr = ":" + param
		}

		setColumns = append(setColumns, name+" = "+valueExpr)
	}
	return setColumns
}

func (u *WBUpdate) execute() {
	if err := u.checkStatement(u.query, "UPDATE"); err != nil {
		u.setError(err)
		return
	}
	if _, err := u.db.PrepareAndExecute(u.query, u.fields); err != nil {
		u.captureDBError(err)
		log.Log.Warnf("Could not finish the update routine (%v)", u.GetError())
	}
}
