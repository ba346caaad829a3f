package entity

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/wallet-backend/wallet-backend/database"
	"github.com/wallet-backend/wallet-backend/database/query"
	"github.com/wallet-backend/wallet-backend/utils"
)

// WBField describes one entity field: its column name plus typed accessor
// closures over the concrete entity's storage. A Get returning nil means the
// field is unset and stays out of INSERT/UPDATE statements.
type WBField struct {
	Name string
	Get  func() any
	Set  func(v any)
}

// StringField builds a descriptor over a nullable string field.
func StringField(name string, target **string) WBField {
	return WBField{
		Name: name,
		Get: func() any {
			if *target == nil {
				return nil
			}
			return **target
		},
		Set: func(v any) {
			if v == nil {
				*target = nil
				return
			}
			s := utils.ConvertToString(v)
			*target = &s
		},
	}
}

// DecimalField builds a descriptor over a nullable decimal field.
func DecimalField(name string, target **decimal.Decimal) WBField {
	return WBField{
		Name: name,
		Get: func() any {
			if *target == nil {
				return nil
			}
			return **target
		},
		Set: func(v any) {
			if v == nil {
				*target = nil
				return
			}
			d, err := decimal.NewFromString(utils.ConvertToString(v))
			if err != nil {
				*target = nil
				return
			}
			*target = &d
		},
	}
}

// WBEntity is the generic CRUD façade shared by the concrete entities. It
// optionally binds to a caller-supplied connection for transactional
// composition, falling back to the shared default connection.
type WBEntity struct {
	tableName string
	keyName   string
	joins     []query.WBJoin
	ownFields []WBField
	allFields []WBField
	object    *query.WBSelect
	err       error
	db        *database.WBDatabase
}

// define wires the concrete entity's table, key, static joins and field
// descriptors. Inherited descriptor sets participate in hydration only, not
// in the entity's own INSERT/UPDATE/DELETE.
func (e *WBEntity) define(tableName string, keyName string, joins []query.WBJoin, own []WBField, inherited ...[]WBField) {
	e.tableName = tableName
	e.keyName = keyName
	e.joins = joins
	e.ownFields = own
	e.allFields = append([]WBField{}, own...)
	for _, set := range inherited {
		e.allFields = append(e.allFields, set...)
	}
}

// SetConnection binds the entity to a specific connection, typically one
// holding an open transaction.
func (e *WBEntity) SetConnection(db *database.WBDatabase) {
	e.db = db
}

func (e *WBEntity) TableName() string {
	return e.tableName
}

func (e *WBEntity) KeyName() string {
	return e.keyName
}

// Get runs a SELECT with the given filter plus the entity's static joins and
// hydrates the first row. Remaining rows stay buffered for Next.
func (e *WBEntity) Get(filter query.WBFilterGroup) bool {
	cfg := query.NewSelectConfig(e.tableName)
	cfg.Filter = filter
	cfg.Joins = e.joins

	sel := query.NewSelect(e.db, cfg)
	e.err = sel.GetError()

	if !sel.HasError() && sel.GetRowsCount() > 0 {
		e.object = sel
		e.Next()
		return true
	}
	return false
}

// GetById hydrates the entity from its primary key.
func (e *WBEntity) GetById(id any) bool {
	return e.Get(query.WBFilterGroup{{Key: e.keyName, Value: id}})
}

// Next advances to the next buffered row of the last Get, reusing the same
// entity instance. All fields are cleared first so absent columns read as
// unset.
func (e *WBEntity) Next() bool {
	if e.object == nil {
		return false
	}
	row := e.object.GetResults()
	if row == nil {
		return false
	}

	for _, f := range e.allFields {
		f.Set(nil)
	}
	for name, value := range row {
		for _, f := range e.allFields {
			if strings.EqualFold(f.Name, name) {
				f.Set(value)
				break
			}
		}
	}
	return true
}

// Post inserts the entity's set fields as one record and rehydrates from the
// stored row. It returns the client-supplied primary key, nil on failure.
func (e *WBEntity) Post() any {
	item := utils.JSON{}
	for _, f := range e.ownFields {
		if v := f.Get(); v != nil {
			item[f.Name] = v
		}
	}

	cfg := query.NewInsertConfig(e.tableName)
	cfg.Key = e.keyName
	cfg.Item = item

	ins := query.NewInsert(e.db, cfg)
	e.err = ins.GetError()
	if ins.HasError() {
		return nil
	}

	if id := ins.GetLastInsertID(); id != nil {
		e.GetById(id)
		return id
	}
	return nil
}

// Put updates the row identified by the primary key with every other set
// field.
func (e *WBEntity) Put() bool {
	cfg := query.NewUpdateConfig(e.tableName)
	cfg.Key = e.keyName
	cfg.SetValues = utils.JSON{}

	for _, f := range e.ownFields {
		if strings.EqualFold(f.Name, e.keyName) {
			cfg.Filter = append(cfg.Filter, query.WBFilter{Key: f.Name, Value: f.Get()})
			continue
		}
		if v := f.Get(); v != nil {
			cfg.SetValues[f.Name] = v
		}
	}

	upd := query.NewUpdate(e.db, cfg)
	e.err = upd.GetError()
	return !upd.HasError()
}

// Delete removes the row identified by the primary key.
func (e *WBEntity) Delete() bool {
	var keyValue any
	for _, f := range e.ownFields {
		if strings.EqualFold(f.Name, e.keyName) {
			keyValue = f.Get()
			break
		}
	}

	cfg := query.NewDeleteConfig(e.tableName)
	cfg.Filter = query.WBFilterGroup{{Key: e.keyName, Value: keyValue}}

	del := query.NewDelete(e.db, cfg)
	e.err = del.GetError()
	return !del.HasError()
}

func (e *WBEntity) HasError() bool {
	return e.err != nil
}

func (e *WBEntity) GetError() error {
	return e.err
}
