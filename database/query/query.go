package query

import (
	"fmt"
	"strings"

	"github.com/wallet-backend/wallet-backend/database"
	"github.com/wallet-backend/wallet-backend/log"
	"github.com/wallet-backend/wallet-backend/utils"
)

// WBTableRef is one table registered by a statement. Aliases are assigned in
// registration order (TAB01, TAB02, ...) so no two tables of one statement
// collide; the schema defaults to the connection's default schema.
type WBTableRef struct {
	Name   string
	Alias  string
	Schema string
}

// QualifiedName renders the schema-qualified table name without alias.
func (t WBTableRef) QualifiedName() string {
	return t.Schema + "." + t.Name
}

// AliasedName renders the schema-qualified table name with its alias.
func (t WBTableRef) AliasedName() string {
	return t.QualifiedName() + " AS " + t.Alias
}

// WBStatementBuilder is the shared base of the four statement builders. A
// builder is constructed fresh per request, compiles its configuration once
// into one SQL string plus one parameter map, executes once and is discarded.
type WBStatementBuilder struct {
	db       *database.WBDatabase
	tables   []WBTableRef
	fields   utils.JSON
	query    string
	err      error
	unaccent bool
}

func (b *WBStatementBuilder) init(db *database.WBDatabase) {
	if db == nil {
		db = database.Manager.GetOrCreate("main")
	}
	b.db = db
	b.fields = utils.JSON{}
	if b.db.Dialect == nil {
		b.setError(log.Log.WarnAndCreateErrorf("database %s does not have a usable dialect", b.db.NameId))
	}
}

// registerTable assigns the next free alias and records the table on the
// statement's table list.
func (b *WBStatementBuilder) registerTable(name string) WBTableRef {
	t := WBTableRef{
		Name:   strings.TrimSpace(name),
		Alias:  fmt.Sprintf("TAB%02d", len(b.tables)+1),
		Schema: b.db.GetSchema(),
	}
	b.tables = append(b.tables, t)
	return t
}

// checkStatement refuses blank statements and any statement whose DML kind
// differs from the one the builder supports.
func (b *WBStatementBuilder) checkStatement(statement string, allowedDML string) error {
	if strings.TrimSpace(statement) == "" {
		return log.Log.WarnAndCreateErrorf("cannot execute a blank statement")
	}
	if dml := database.GetStatementType(statement); dml != allowedDML {
		return log.Log.WarnAndCreateErrorf("the builder does not support %q statements", dml)
	}
	return nil
}

// captureDBError prefers the connection's normalized error over the raw one.
func (b *WBStatementBuilder) captureDBError(err error) {
	if dbErr := b.db.GetError(); dbErr != nil {
		b.setError(dbErr)
		return
	}
	b.setError(err)
}

func (b *WBStatementBuilder) setError(err error) {
	if b.err == nil {
		b.err = err
	}
}

func (b *WBStatementBuilder) HasError() bool {
	return b.err != nil
}

func (b *WBStatementBuilder) GetError() error {
	return b.err
}

// Statement returns the compiled SQL text, for inspection.
func (b *WBStatementBuilder) Statement() string {
	return b.query
}

// Fields returns the bound parameter map accumulated during compilation.
func (b *WBStatementBuilder) Fields() utils.JSON {
	return b.fields
}

// Database returns the connection the builder executes against.
func (b *WBStatementBuilder) Database() *database.WBDatabase {
	return b.db
}
