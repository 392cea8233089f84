package db

import (
	"github.com/jmoiron/sqlx"
)

// Rebind rewrites ? placeholders into the form the connection's driver
// expects. Queries are written once with ? and rebound per dialect.
func (c *Connection) Rebind(query string) string {
	if c.DB != nil {
		return c.DB.Rebind(query)
	}
	return Rebind(c.Driver, query)
}

// Rebind rewrites ? placeholders to $1, $2, ... for Postgres and leaves the
// query unchanged for SQLite
func Rebind(driver, query string) string {
	return sqlx.Rebind(sqlx.BindType(driver), query)
}

// TimestampType is the column type used for timestamps on the driver
func (c *Connection) TimestampType() string {
	if c.Driver == DriverPostgres {
		return "TIMESTAMPTZ"
	}
	return "TIMESTAMP"
}
