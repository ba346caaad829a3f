package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	npq "github.com/knetic/go-namedparameterquery"
	_ "github.com/lib/pq"
	_ "github.com/microsoft/go-mssqldb"
	"github.com/pkg/errors"
	goOra "github.com/sijms/go-ora/v2"

	"github.com/wallet-backend/wallet-backend/configuration"
	"github.com/wallet-backend/wallet-backend/database/database_type"
	"github.com/wallet-backend/wallet-backend/database/driver"
	"github.com/wallet-backend/wallet-backend/log"
	"github.com/wallet-backend/wallet-backend/utils"
)

type WBDatabaseEventFunc func(d *WBDatabase, err error)

// WBRowsInfo carries column metadata of an executed query. ColumnTypes maps
// lower-cased column names to the driver's native type name.
type WBRowsInfo struct {
	Columns     []string
	ColumnTypes map[string]string
}

// WBDatabase owns one live handle to one database. It is not safe for
// concurrent use from multiple logical operations: composition across a
// transaction is strictly sequential within one request.
type WBDatabase struct {
	NameId                       string
	IsConfigured                 bool
	DatabaseType                 database_type.WBDatabaseType
	Dialect                      driver.WBDatabaseDialect
	Host                         string
	Port                         int
	UserName                     string
	UserPassword                 string
	DatabaseName                 string
	Schema                       string
	ConnectionOptions            string
	IsConnectAtStart             bool
	MustConnected                bool
	Connected                    bool
	IsAutocommit                 bool
	Debug                        bool
	Connection                   *sqlx.DB
	ConnectionString             string
	NonSensitiveConnectionString string
	OnCannotConnect              WBDatabaseEventFunc

	activeTx       *sqlx.Tx
	lastStatement  string
	lastStatements map[string]string
	lastError      *WBDatabaseError
}

func NewDatabase(nameId string) *WBDatabase {
	return &WBDatabase{
		NameId:         nameId,
		IsAutocommit:   true,
		lastStatements: map[string]string{},
	}
}

// GetSchema returns the default schema, falling back to the database name the
// way the original connection does.
func (d *WBDatabase) GetSchema() string {
	if strings.TrimSpace(d.Schema) == "" {
		return d.DatabaseName
	}
	return strings.TrimSpace(d.Schema)
}

func (d *WBDatabase) GetNonSensitiveConnectionString() string {
	return fmt.Sprintf("%s://%s:%d/%s", d.DatabaseType.String(), d.Host, d.Port, d.DatabaseName)
}

func (d *WBDatabase) GetConnectionString() (s string, err error) {
	switch d.DatabaseType {
	case database_type.PostgreSQL:
		s = d.Dialect.ConnectionString(d.Host, d.Port, d.DatabaseName, d.UserName, d.UserPassword, d.ConnectionOptions)
	case database_type.MySQL:
		s = fmt.Sprintf("%s:%s@tcp(%s:%d)/%s", d.UserName, d.UserPassword, d.Host, d.Port, d.DatabaseName)
	case database_type.SQLServer:
		s = fmt.Sprintf("server=%s;port=%d;user id=%s;password=%s;database=%s;encrypt=disable", d.Host, d.Port, d.UserName, d.UserPassword, d.DatabaseName)
	case database_type.Oracle:
		s = goOra.BuildUrl(d.Host, d.Port, d.DatabaseName, d.UserName, d.UserPassword, map[string]string{})
	default:
		err = log.Log.ErrorAndCreateErrorf("configuration is unusable, value of database_type field of database %s configuration is not supported", d.NameId)
	}
	return s, err
}

func (d *WBDatabase) ApplyFromConfiguration() (err error) {
	if d.IsConfigured {
		return nil
	}
	log.Log.Infof("Configuring database %s... start", d.NameId)

	databaseConfiguration, ok := configuration.Manager.GetJSON("storage", d.NameId)
	if !ok {
		if d.MustConnected {
			return log.Log.FatalAndCreateErrorf("Database %s configuration not found", d.NameId)
		}
		return log.Log.WarnAndCreateErrorf("Manager is unusable, database %s configuration not found", d.NameId)
	}

	s, ok := databaseConfiguration[`database_type`].(string)
	if !ok {
		return log.Log.FatalAndCreateErrorf("Mandatory database_type field in database %s configuration not exist", d.NameId)
	}
	d.DatabaseType = database_type.StringToWBDatabaseType(s)
	if d.DatabaseType == database_type.UnknownDatabaseType {
		return log.Log.FatalAndCreateErrorf("Mandatory value of database_type field of database %s configuration is not supported (%s)", d.NameId, s)
	}
	d.Dialect = driver.NewDialect(d.DatabaseType)
	if d.Dialect == nil {
		return log.Log.FatalAndCreateErrorf("Database manager %s of database %s has no statement dialect", s, d.NameId)
	}

	d.Host, ok = databaseConfiguration[`host`].(string)
	if !ok {
		return log.Log.FatalAndCreateErrorf("Mandatory host field in database %s configuration not exist", d.NameId)
	}
	port, err := utils.ConvertToInt64(databaseConfiguration[`port`])
	if err == nil {
		d.Port = int(port)
	}
	d.UserName, ok = databaseConfiguration[`user_name`].(string)
	if !ok {
		return log.Log.FatalAndCreateErrorf("Mandatory user_name field in database %s configuration not exist", d.NameId)
	}
	d.UserPassword, _ = databaseConfiguration[`user_password`].(string)
	d.DatabaseName, ok = databaseConfiguration[`database_name`].(string)
	if !ok {
		return log.Log.FatalAndCreateErrorf("Mandatory database_name field in database %s configuration not exist", d.NameId)
	}
	if v, ok := databaseConfiguration[`schema`].(string); ok {
		d.Schema = v
	}
	if v, ok := databaseConfiguration[`must_connected`].(bool); ok {
		d.MustConnected = v
	}
	if v, ok := databaseConfiguration[`is_connect_at_start`].(bool); ok {
		d.IsConnectAtStart = v
	}
	if v, ok := databaseConfiguration[`debug`].(bool); ok {
		d.Debug = v
	}
	d.ConnectionOptions, _ = databaseConfiguration[`connection_options`].(string)

	d.NonSensitiveConnectionString = d.GetNonSensitiveConnectionString()
	d.ConnectionString, err = d.GetConnectionString()
	if err != nil {
		return err
	}
	d.IsConfigured = true
	log.Log.Infof("Configuring database %s... done", d.NameId)
	return nil
}

func (d *WBDatabase) Connect() (err error) {
	if d.Connected {
		return nil
	}
	log.Log.Infof("Connecting to database %s/%s... start", d.NameId, d.NonSensitiveConnectionString)
	connection, err := sqlx.Open(d.DatabaseType.Driver(), d.ConnectionString)
	if err != nil {
		if d.MustConnected {
			log.Log.Fatalf("Invalid parameters to open database %s/%s (%s)", d.NameId, d.NonSensitiveConnectionString, err.Error())
			return nil
		}
		log.Log.Errorf("Invalid parameters to open database %s/%s (%s)", d.NameId, d.NonSensitiveConnectionString, err.Error())
		return err
	}
	d.Connection = connection
	err = connection.Ping()
	if err != nil {
		if d.OnCannotConnect != nil {
			d.OnCannotConnect(d, err)
		}
		if d.MustConnected {
			log.Log.Fatalf("Cannot connect and ping to database %s/%s (%s)", d.NameId, d.NonSensitiveConnectionString, err.Error())
			return nil
		}
		log.Log.Errorf("Cannot connect and ping to database %s/%s (%s)", d.NameId, d.NonSensitiveConnectionString, err.Error())
		return err
	}
	d.Connected = true
	log.Log.Infof("Connecting to database %s/%s... done CONNECTED", d.NameId, d.NonSensitiveConnectionString)
	return nil
}

func (d *WBDatabase) Disconnect() (err error) {
	if d.Connected {
		err = d.Connection.Close()
		if err != nil {
			log.Log.Errorf("Disconnecting from database %s/%s error (%s)", d.NameId, d.NonSensitiveConnectionString, err.Error())
			return err
		}
		d.Connection = nil
		d.Connected = false
		log.Log.Infof("Disconnecting from database %s/%s... done DISCONNECTED", d.NameId, d.NonSensitiveConnectionString)
	}
	return nil
}

func (d *WBDatabase) CheckConnection() (err error) {
	if d.Connection == nil {
		d.Connected = false
		return nil
	}
	err = d.Connection.Ping()
	if err != nil {
		d.Connected = false
		log.Log.Warnf("Database %v ping failed: %v", d.NameId, err.Error())
		return err
	}
	d.Connected = true
	return nil
}

func (d *WBDatabase) CheckConnectionAndReconnect() (err error) {
	tryReconnect := !d.Connected
	if d.Connected {
		if err = d.CheckConnection(); err != nil || !d.Connected {
			tryReconnect = true
		}
	}
	if tryReconnect {
		time.Sleep(1 * time.Second)
		return d.Connect()
	}
	return nil
}

func (d *WBDatabase) SetAutocommit(autocommit bool) {
	d.IsAutocommit = autocommit
}

func (d *WBDatabase) SetDebugMode(mode bool) {
	d.Debug = mode
}

// InTransaction reports whether a transaction opened by BeginTransaction is
// still pending.
func (d *WBDatabase) InTransaction() bool {
	return d.activeTx != nil
}

// BeginTransaction opens a transaction on the connection. It is a no-op when
// no connection is open or a transaction is already pending; callers pair it
// with exactly one Commit or Rollback.
func (d *WBDatabase) BeginTransaction() (err error) {
	if d.Connection == nil || d.activeTx != nil {
		return nil
	}
	tx, err := d.Connection.Beginx()
	if err != nil {
		d.lastError = NormalizeError(err)
		return err
	}
	d.activeTx = tx
	return nil
}

func (d *WBDatabase) Commit() (err error) {
	if d.Connection == nil || d.activeTx == nil {
		return nil
	}
	err = d.activeTx.Commit()
	d.activeTx = nil
	if err != nil {
		d.lastError = NormalizeError(err)
	}
	return err
}

func (d *WBDatabase) Rollback() (err error) {
	if d.Connection == nil || d.activeTx == nil {
		return nil
	}
	err = d.activeTx.Rollback()
	d.activeTx = nil
	if err != nil {
		d.lastError = NormalizeError(err)
	}
	return err
}

func (d *WBDatabase) HasError() bool {
	return d.lastError != nil
}

func (d *WBDatabase) GetError() *WBDatabaseError {
	return d.lastError
}

func (d *WBDatabase) ClearError() {
	d.lastError = nil
}

// GetLastQuery returns the literal-substituted text of the last executed
// statement of the given DML kind, or the last statement overall when the
// kind is unknown. Diagnostics only, never re-executed.
func (d *WBDatabase) GetLastQuery(statementType string) string {
	statementType = strings.ToLower(strings.TrimSpace(statementType))
	if s, ok := d.lastStatements[statementType]; ok {
		return s
	}
	return d.lastStatement
}

func (d *WBDatabase) recordStatement(statement string, params utils.JSON) {
	rendered := SubstituteLiterals(statement, params)
	d.lastStatement = rendered
	d.lastStatements[strings.ToLower(GetStatementType(statement))] = rendered
	if d.Debug {
		log.Log.Debugf("SQL:%s", rendered)
	}
}

// Exec runs a raw statement without parameters and returns the result.
func (d *WBDatabase) Exec(statement string) (r sql.Result, err error) {
	if d.Connection == nil {
		return nil, d.notConnectedError()
	}
	d.lastError = nil
	d.recordStatement(statement, nil)
	if d.activeTx != nil {
		r, err = d.activeTx.Exec(statement)
	} else {
		r, err = d.Connection.Exec(statement)
	}
	if err != nil {
		d.lastError = NormalizeError(err)
		return nil, errors.Wrapf(err, "failed to execute statement=%s", statement)
	}
	return r, nil
}

// Execute runs a raw statement with named parameters parsed to positional
// arguments, the path used for statements outside the builders.
func (d *WBDatabase) Execute(statement string, parameters utils.JSON) (r sql.Result, err error) {
	if d.Connection == nil {
		return nil, d.notConnectedError()
	}
	d.lastError = nil
	query := npq.NewNamedParameterQuery(statement)
	query.SetValuesFromMap(parameters)
	s := query.GetParsedQuery()
	p := query.GetParsedParameters()
	s = d.Connection.Rebind(s)
	d.recordStatement(statement, parameters)
	if d.activeTx != nil {
		r, err = d.activeTx.Exec(s, p...)
	} else {
		r, err = d.Connection.Exec(s, p...)
	}
	if err != nil {
		d.lastError = NormalizeError(err)
		return nil, errors.Wrapf(err, "failed to execute statement=%s", statement)
	}
	return r, nil
}

// Query runs a raw query without parameters and returns normalized rows.
func (d *WBDatabase) Query(statement string) (rowsInfo *WBRowsInfo, r []utils.JSON, err error) {
	return d.PrepareAndQuery(statement, nil)
}

// PrepareAndQuery executes a SELECT-kind statement with named parameters.
// Repeated placeholder occurrences are rewritten to suffixed variants before
// binding. Binary values travel as []byte and bind through the driver's
// large-object path, apart from scalar parameters.
func (d *WBDatabase) PrepareAndQuery(statement string, params utils.JSON) (rowsInfo *WBRowsInfo, r []utils.JSON, err error) {
	if d.Connection == nil {
		return nil, nil, d.notConnectedError()
	}
	d.lastError = nil
	start := time.Now()

	statement, params = ExpandRepeatedParameters(statement, params)
	d.recordStatement(statement, params)

	query, args, err := bindNamed(d.Connection, statement, params)
	if err != nil {
		d.lastError = NormalizeError(err)
		return nil, nil, err
	}

	var rows *sqlx.Rows
	if d.activeTx != nil {
		rows, err = d.activeTx.Queryx(query, args...)
	} else {
		rows, err = d.Connection.Queryx(query, args...)
	}
	if err != nil {
		d.lastError = NormalizeError(err)
		return nil, nil, errors.Wrapf(err, "failed to execute query=%s", statement)
	}
	defer func() {
		_ = rows.Close()
	}()

	rowsInfo = &WBRowsInfo{ColumnTypes: map[string]string{}}
	rowsInfo.Columns, err = rows.Columns()
	if err != nil {
		d.lastError = NormalizeError(err)
		return nil, nil, errors.Wrapf(err, "failed to read columns of query=%s", statement)
	}
	columnTypes, err := rows.ColumnTypes()
	if err == nil {
		for _, ct := range columnTypes {
			rowsInfo.ColumnTypes[strings.ToLower(ct.Name())] = strings.ToUpper(ct.DatabaseTypeName())
		}
	}

	r = []utils.JSON{}
	for rows.Next() {
		row := utils.JSON{}
		err = rows.MapScan(row)
		if err != nil {
			d.lastError = NormalizeError(err)
			return nil, nil, errors.Wrapf(err, "failed to scan row of query=%s", statement)
		}
		r = append(r, utils.ArrayKeyHandler(row))
	}
	if err = rows.Err(); err != nil {
		d.lastError = NormalizeError(err)
		return nil, nil, errors.Wrapf(err, "failed while iterating query=%s", statement)
	}

	if d.Debug {
		log.Log.Debugf("Query executed in %v, %d row(s)", time.Since(start), len(r))
	}
	return rowsInfo, r, nil
}

// PrepareAndExecute executes a DML statement with named parameters, with the
// same repeated-placeholder handling as PrepareAndQuery.
func (d *WBDatabase) PrepareAndExecute(statement string, params utils.JSON) (r sql.Result, err error) {
	if d.Connection == nil {
		return nil, d.notConnectedError()
	}
	d.lastError = nil
	start := time.Now()

	statement, params = ExpandRepeatedParameters(statement, params)
	d.recordStatement(statement, params)

	query, args, err := bindNamed(d.Connection, statement, params)
	if err != nil {
		d.lastError = NormalizeError(err)
		return nil, err
	}

	if d.activeTx != nil {
		r, err = d.activeTx.Exec(query, args...)
	} else {
		r, err = d.Connection.Exec(query, args...)
	}
	if err != nil {
		d.lastError = NormalizeError(err)
		return nil, errors.Wrapf(err, "failed to execute statement=%s", statement)
	}
	if d.Debug {
		log.Log.Debugf("Statement executed in %v", time.Since(start))
	}
	return r, nil
}

// PrepareAndExecutePositional executes a statement with 1-based positional
// parameters, which are bound in order and never rewritten.
func (d *WBDatabase) PrepareAndExecutePositional(statement string, params []any) (r sql.Result, err error) {
	if d.Connection == nil {
		return nil, d.notConnectedError()
	}
	d.lastError = nil
	query := d.Connection.Rebind(statement)
	rendered := SubstitutePositionalLiterals(statement, params)
	d.lastStatement = rendered
	d.lastStatements[strings.ToLower(GetStatementType(statement))] = rendered
	if d.Debug {
		log.Log.Debugf("SQL:%s", rendered)
	}

	if d.activeTx != nil {
		r, err = d.activeTx.Exec(query, params...)
	} else {
		r, err = d.Connection.Exec(query, params...)
	}
	if err != nil {
		d.lastError = NormalizeError(err)
		return nil, errors.Wrapf(err, "failed to execute statement=%s", statement)
	}
	return r, nil
}

func (d *WBDatabase) notConnectedError() error {
	err := errors.New("DATABASE_NOT_CONNECTED")
	d.lastError = &WBDatabaseError{Code: ErrorCodeUnknown, Message: err.Error()}
	log.Log.Warnf("Database %s used before a connection was established", d.NameId)
	return err
}

func bindNamed(db *sqlx.DB, statement string, params utils.JSON) (query string, args []any, err error) {
	if params == nil {
		params = utils.JSON{}
	}
	query, args, err = sqlx.Named(statement, params)
	if err != nil {
		return "", nil, errors.Wrapf(err, "failed to bind named parameters of statement=%s", statement)
	}
	return db.Rebind(query), args, nil
}
