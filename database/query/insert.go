package query

import (
	"fmt"
	"sort"
	"strings"

	"github.com/wallet-backend/wallet-backend/database"
	"github.com/wallet-backend/wallet-backend/log"
	"github.com/wallet-backend/wallet-backend/utils"
)

// WBInsertItems is the batch form of an insert: one column list shared by
// every record.
type WBInsertItems struct {
	Columns []string
	Records [][]any
}

// WBInsertConfig is the declarative input of an Insert statement. Item is
// the single-record convenience form, folded into Items during assembly. Key
// names the table's primary key column; records supplying it are identity
// inserts, eligible for upsert when UpdateDuplicateKey is set.
type WBInsertConfig struct {
	Table              string
	Item               utils.JSON
	Items              WBInsertItems
	Key                string
	UpdateDuplicateKey bool
}

// NewInsertConfig returns a configuration with the statement defaults:
// duplicate keys update the existing row.
func NewInsertConfig(table string) WBInsertConfig {
	return WBInsertConfig{
		Table:              table,
		UpdateDuplicateKey: true,
	}
}

// WBInsert compiles and executes one insert operation. Records with and
// without a client-supplied primary key are split into two independent
// statements executed inside one transaction.
type WBInsert struct {
	WBStatementBuilder
	cfg WBInsertConfig

	identityStatement    string
	identityFields       utils.JSON
	nonIdentityStatement string
	nonIdentityFields    utils.JSON

	lastInsertID any
}

// NewInsert assembles and executes the configuration on db. A nil db falls
// back to the shared default connection.
func NewInsert(db *database.WBDatabase, cfg WBInsertConfig) *WBInsert {
	i := &WBInsert{cfg: cfg}
	i.init(db)
	if i.HasError() {
		return i
	}
	i.build()
	i.execute()
	return i
}

// NewInsertStatement executes a caller-supplied INSERT text with named
// parameters, keeping the DML-kind gate.
func NewInsertStatement(db *database.WBDatabase, statement string, params utils.JSON) *WBInsert {
	i := &WBInsert{}
	i.init(db)
	if err := i.checkStatement(statement, "INSERT"); err != nil {
		i.setError(err)
		return i
	}
	if _, err := i.db.PrepareAndExecute(statement, params); err != nil {
		i.captureDBError(err)
	}
	return i
}

func (i *WBInsert) build() {
	table := i.registerTable(i.cfg.Table)
	key := strings.TrimSpace(i.cfg.Key)
	columns := make([]string, 0, len(i.cfg.Items.Columns))
	for _, c := range i.cfg.Items.Columns {
		columns = append(columns, strings.TrimSpace(c))
	}
	records := i.cfg.Items.Records

	// Fold the single-item form into the batch. Column order is fixed by
	// sorting the item's keys so parameter naming stays deterministic.
	if len(i.cfg.Item) > 0 {
		if len(columns) == 0 {
			for name := range i.cfg.Item {
				columns = append(columns, strings.TrimSpace(name))
			}
			sort.Strings(columns)
		}
		if len(i.cfg.Item) == len(columns) {
			record := make([]any, 0, len(columns))
			for _, column := range columns {
				record = append(record, i.cfg.Item[column])
			}
			records = append(records, record)
		}
	}

	keyIndex := -1
	for idx, column := range columns {
		if strings.EqualFold(column, key) {
			keyIndex = idx
			break
		}
	}

	columnsNoPK := make([]string, 0, len(columns))
	for idx, column := range columns {
		if idx != keyIndex {
			columnsNoPK = append(columnsNoPK, column)
		}
	}

	i.identityFields = utils.JSON{}
	i.nonIdentityFields = utils.JSON{}
	identityRecords := [][]string{}
	nonIdentityRecords := [][]string{}

	for recordID, record := range records {
		// Malformed records are dropped before building.
		if len(record) != len(columns) {
			continue
		}

		isIdentity := false
		if keyIndex >= 0 {
			keyValue := nullLiteral(record[keyIndex])
			if s, ok := keyValue.(string); ok && strings.TrimSpace(s) == "" {
				keyValue = nil
			}
			isIdentity = keyValue != nil
		}

		placeholders := []string{}
		for fieldID, field := range record {
			if !isIdentity && fieldID == keyIndex {
				continue
			}
			name := fmt.Sprintf("val_sq_%d_%d", recordID, fieldID)
			field = nullLiteral(field)

			if isIdentity {
				i.identityFields[name] = field
			} else {
				i.nonIdentityFields[name] = field
			}
			placeholders = append(placeholders, ":"+name)
		}

		if isIdentity {
			identityRecords = append(identityRecords, placeholders)
			i.lastInsertID = record[keyIndex]
		} else {
			nonIdentityRecords = append(nonIdentityRecords, placeholders)
		}
	}

	upsert := i.cfg.UpdateDuplicateKey && keyIndex >= 0
	tableName := table.QualifiedName()

	if len(identityRecords) > 0 {
		i.identityStatement = i.db.Dialect.InsertStatement(tableName, columns, identityRecords, upsert, key)
	}
	if len(nonIdentityRecords) > 0 {
		i.nonIdentityStatement = i.db.Dialect.InsertStatement(tableName, columnsNoPK, nonIdentityRecords, false, "")
	}
	i.query = i.identityStatement
	if i.query == "" {
		i.query = i.nonIdentityStatement
	}
}

// execute runs the identity and non-identity statements inside one
// transaction. With autocommit on, each successful non-empty group commits
// and the first error rolls the whole operation back; with autocommit off
// the surrounding caller owns the terminal commit or rollback.
func (i *WBInsert) execute() {
	groups := []struct {
		statement string
		fields    utils.JSON
	}{
		{i.identityStatement, i.identityFields},
		{i.nonIdentityStatement, i.nonIdentityFields},
	}

	hasWork := false
	for _, group := range groups {
		if len(group.fields) > 0 {
			hasWork = true
		}
	}
	if !hasWork {
		i.setError(log.Log.WarnAndCreateErrorf("cannot execute a blank statement"))
		i.lastInsertID = nil
		return
	}

	for _, group := range groups {
		if len(group.fields) == 0 {
			continue
		}

		if !i.db.InTransaction() {
			if err := i.db.BeginTransaction(); err != nil {
				i.captureDBError(err)
				break
			}
		}
		if err := i.checkStatement(group.statement, "INSERT"); err != nil {
			i.setError(err)
			break
		}
		if _, err := i.db.PrepareAndExecute(group.statement, group.fields); err != nil {
			i.captureDBError(err)
			break
		}
		if i.db.IsAutocommit {
			if err := i.db.Commit(); err != nil {
				i.captureDBError(err)
				break
			}
		}
	}

	if i.HasError() {
		log.Log.Warnf("Could not insert the record into the database (%v)", i.GetError())
		if i.db.IsAutocommit {
			_ = i.db.Rollback()
		}
		i.lastInsertID = nil
	}
}

// GetLastInsertID returns the primary-key value of the last identity record
// processed, nil after a failed operation. Database-generated identities are
// not reported; this system only supports client-supplied keys.
func (i *WBInsert) GetLastInsertID() any {
	return i.lastInsertID
}
