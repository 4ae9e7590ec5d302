package database

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/samber/lo"
)

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

// Config defines the database configuration
type Config struct {
	Driver string `mapstructure:"driver"` // postgres, mysql, sqlite

	// Connection settings (postgres, mysql)
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"` // postgres only
	Timezone string `mapstructure:"timezone"`

	// Path is the database file for sqlite
	Path string `mapstructure:"path"`

	// Connection pool settings
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`

	// GORM settings
	LogLevel      string        `mapstructure:"log_level"` // silent, error, warn, info
	SlowThreshold time.Duration `mapstructure:"slow_threshold"`
	PrepareStmt   bool          `mapstructure:"prepare_stmt"`
	AutoMigrate   bool          `mapstructure:"auto_migrate"`
}

// DefaultConfig returns the default database configuration
func DefaultConfig() *Config {
	return &Config{
		Driver:   DriverPostgres,
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "postgres",
		DBName:   "forum",
		SSLMode:  "disable",
		Timezone: "UTC",

		MaxIdleConns:    10,
		MaxOpenConns:    100,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: 10 * time.Minute,

		LogLevel:      "warn",
		SlowThreshold: 200 * time.Millisecond,
		PrepareStmt:   true,
	}
}

// Validate validates the database configuration
func (c *Config) Validate() error {
	switch c.Driver {
	case DriverSQLite:
		if c.Path == "" {
			return errors.New("database path is required for sqlite")
		}
	case DriverPostgres, DriverMySQL:
		if c.Host == "" {
			return errors.New("database host is required")
		}
		if c.Port <= 0 || c.Port > 65535 {
			return errors.New("database port must be between 1 and 65535")
		}
		if c.User == "" {
			return errors.New("database user is required")
		}
		if c.DBName == "" {
			return errors.New("database name is required")
		}
	default:
		return fmt.Errorf("unsupported database driver %q, must be one of: postgres, mysql, sqlite", c.Driver)
	}

	if c.Driver == DriverPostgres && !lo.Contains([]string{"disable", "require", "verify-ca", "verify-full"}, c.SSLMode) {
		return errors.New("invalid SSL mode, must be one of: disable, require, verify-ca, verify-full")
	}
	if !lo.Contains([]string{"silent", "error", "warn", "info"}, c.LogLevel) {
		return errors.New("invalid log level, must be one of: silent, error, warn, info")
	}
	if c.MaxIdleConns < 0 || c.MaxOpenConns < 0 {
		return errors.New("connection pool sizes must be >= 0")
	}
	if c.MaxIdleConns > c.MaxOpenConns && c.MaxOpenConns > 0 {
		return errors.New("max idle connections cannot exceed max open connections")
	}
	if c.ConnMaxLifetime < 0 || c.ConnMaxIdleTime < 0 || c.SlowThreshold < 0 {
		return errors.New("durations must be >= 0")
	}
	return nil
}

// DSN returns the driver specific connection string
func (c *Config) DSN() string {
	switch c.Driver {
	case DriverSQLite:
		return c.Path
	case DriverMySQL:
		loc := "Local"
		if c.Timezone != "" {
			loc = url.QueryEscape(c.Timezone)
		}
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=%s",
			c.User, c.Password, c.Host, c.Port, c.DBName, loc)
	default:
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
			c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode, c.Timezone)
	}
}
