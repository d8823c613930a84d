package storage

import (
	"fmt"
	"net/url"
)

// ConnParams describes a server-backed journal database.
type ConnParams struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// BuildDSN constructs a driver DSN from connection parameters. For sqlite the
// database name is used as the file path.
func BuildDSN(driver string, p ConnParams) (string, error) {
	switch driver {
	case DriverPostgres:
		return buildPostgresDSN(p), nil
	case DriverMySQL:
		return buildMySQLDSN(p), nil
	case "", DriverSQLite:
		return p.Database, nil
	}
	return "", fmt.Errorf("unsupported journal driver %q", driver)
}

func buildPostgresDSN(p ConnParams) string {
	port := p.Port
	if port == 0 {
		port = 5432
	}
	sslMode := p.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(p.User, p.Password),
		Host:     fmt.Sprintf("%s:%d", p.Host, port),
		Path:     "/" + p.Database,
		RawQuery: "sslmode=" + url.QueryEscape(sslMode),
	}
	return u.String()
}

func buildMySQLDSN(p ConnParams) string {
	port := p.Port
	if port == 0 {
		port = 3306
	}
	// Format: user:password@tcp(host:port)/dbname?parseTime=true
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4",
		p.User, p.Password, p.Host, port, p.Database,
	)
	if p.SSLMode == "require" {
		dsn += "&tls=true"
	}
	return dsn
}
