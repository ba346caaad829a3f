package database_type

type WBDatabaseType int64

const (
	UnknownDatabaseType WBDatabaseType = iota
	PostgreSQL
	MySQL
	Oracle
	SQLServer
)

func (t WBDatabaseType) String() string {
	switch t {
	case PostgreSQL:
		return "postgres"
	case MySQL:
		return "mysql"
	case Oracle:
		return "oracle"
	case SQLServer:
		return "sqlserver"
	default:
		return "unknown"
	}
}

func (t WBDatabaseType) Driver() string {
	switch t {
	case PostgreSQL:
		return "postgres"
	case MySQL:
		return "mysql"
	case Oracle:
		return "oracle"
	case SQLServer:
		return "sqlserver"
	default:
		return "unknown"
	}
}

func StringToWBDatabaseType(v string) WBDatabaseType {
	switch v {
	case "postgres", "postgresql":
		return PostgreSQL
	case "mariadb", "mysql":
		return MySQL
	case "oracle":
		return Oracle
	case "sqlserver":
		return SQLServer
	default:
		return UnknownDatabaseType
	}
}
