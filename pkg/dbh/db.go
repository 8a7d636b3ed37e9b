package dbh

import (
	"database/sql"
	"errors"
	"fmt"
	stdlog "log"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/migration"
	"github.com/cyclopcam/logs"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

const DriverPostgres = "postgres"
const DriverSqlite = "sqlite3"

// DBConnectFlags are flags passed to OpenDB.
type DBConnectFlags int

const (
	// DBConnectFlagWipeDB erases the entire DB and re-initializes it from
	// scratch (useful for unit tests).
	DBConnectFlagWipeDB DBConnectFlags = 1 << iota
)

// DBConfig is a database connection config.
type DBConfig struct {
	Driver   string
	Host     string
	Port     int
	Database string
	Username string
	Password string
}

func MakeSqliteConfig(filename string) DBConfig {
	return DBConfig{
		Driver:   DriverSqlite,
		Database: filename,
	}
}

// DSN returns a database connection string (Postgres and Sqlite only).
func (db *DBConfig) DSN() string {
	if db.Driver == DriverSqlite {
		return db.Database
	}
	dsn := fmt.Sprintf("host=%v user=%v password=%v dbname=%v sslmode=disable", db.Host, db.Username, db.Password, db.Database)
	if db.Port != 0 {
		dsn += fmt.Sprintf(" port=%v", db.Port)
	}
	return dsn
}

// MakeMigrationFromSQL turns an SQL string into a burntsushi migration
func MakeMigrationFromSQL(log logs.Log, migrationNumber *int, sql string) migration.Migrator {
	idx := *migrationNumber + 1
	*migrationNumber++

	return func(tx migration.LimitedTx) error {
		summary := strings.TrimSpace(sql)
		if nl := strings.IndexAny(summary, "\n\r"); nl != -1 {
			summary = summary[:nl]
		}
		if len(summary) > 40 {
			summary = summary[:40]
		}
		log.Infof("Running migration %v: '%v...'", idx, summary)
		_, err := tx.Exec(sql)
		return err
	}
}

// OpenDB creates a new DB, or opens an existing one, and runs all the
// migrations before returning.
func OpenDB(log logs.Log, dbc DBConfig, migrations []migration.Migrator, flags DBConnectFlags) (*gorm.DB, error) {
	if flags&DBConnectFlagWipeDB != 0 {
		if err := DropAllTables(log, dbc); err != nil {
			return nil, err
		}
	}

	// Common fast path: the database already exists
	db, err := migration.Open(dbc.Driver, dbc.DSN(), migrations)
	if err == nil {
		db.Close()
		return gormOpen(dbc.Driver, dbc.DSN())
	}
	if !isDatabaseNotExist(err) {
		return nil, err
	}

	log.Infof("Attempting to create database %v", dbc.Database)
	cfgCreate := dbc
	if dbc.Driver == DriverPostgres {
		// connect to the 'postgres' database in order to create the new DB
		cfgCreate.Database = "postgres"
	}
	if err := createDB(dbc.Driver, cfgCreate.DSN(), dbc.Database); err != nil {
		return nil, fmt.Errorf("While trying to create database '%v': %v", dbc.Database, err)
	}
	// run migrations again, now that the DB exists
	db, err = migration.Open(dbc.Driver, dbc.DSN(), migrations)
	if err != nil {
		return nil, err
	}
	db.Close()
	return gormOpen(dbc.Driver, dbc.DSN())
}

// DropAllTables deletes all tables in the given database (sqlite: removes the
// file). If the database does not exist, returns nil. Intended for unit tests.
func DropAllTables(log logs.Log, dbc DBConfig) error {
	if dbc.Driver == DriverSqlite {
		err := os.Remove(dbc.Database)
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if dbc.Driver != DriverPostgres {
		return fmt.Errorf("DropAllTables not supported on %v", dbc.Driver)
	}
	db, err := sql.Open(dbc.Driver, dbc.DSN())
	if err == nil {
		err = db.Ping()
	}
	if isDatabaseNotExist(err) {
		return nil
	} else if err != nil {
		return err
	}
	defer db.Close()
	log.Warnf("Erasing entire DB '%v'", dbc.Database)
	rows, err := db.Query(`
		SELECT table_name, table_schema
		FROM information_schema.tables
		WHERE table_schema <> 'pg_catalog' AND table_schema <> 'information_schema'`)
	if err != nil {
		return err
	}
	tables := []string{}
	for rows.Next() {
		var table, schema string
		if err := rows.Scan(&table, &schema); err != nil {
			return err
		}
		tables = append(tables, fmt.Sprintf(`"%v"."%v"`, schema, table))
	}
	for _, table := range tables {
		if _, err := db.Exec(fmt.Sprintf("DROP TABLE %v CASCADE", table)); err != nil {
			return err
		}
	}
	return nil
}

func gormOpen(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	case DriverSqlite:
		dialector = sqlite.Open(dsn)
	}

	// Custom logger so that "record not found" is never logged as an error
	gormLogger := logger.New(
		stdlog.New(os.Stdout, "\r\n", stdlog.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	return gorm.Open(dialector, &gorm.Config{
		NamingStrategy: schema.NamingStrategy{
			// Our migrations are hand-written, so don't pluralize table names
			SingularTable: true,
		},
		Logger: gormLogger,
	})
}

var dbNotExistRegex = regexp.MustCompile(`database "[^"]+" does not exist`)

func isDatabaseNotExist(err error) bool {
	if err == nil {
		return false
	}
	return dbNotExistRegex.MatchString(err.Error())
}

func createDB(driver, dsn, dbCreateName string) error {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return err
	}
	defer db.Close()
	if _, err := db.Exec("CREATE DATABASE " + dbCreateName); err != nil {
		return err
	}
	return nil
}
