package config

import (
	"errors"
	"fmt"
	"os"
	"time"
)

// ServerConfiguration contains the server settings
type ServerConfiguration struct {
	Port    int
	Address string
	// IssuerKey is the shared secret the primary web application presents
	// when requesting authorization codes for signed in users
	IssuerKey string             `mapstructure:"issuer-key" json:"-"`
	CORS      *CORSConfiguration `mapstructure:"cors"`
}

// DatabaseConfiguration contains the settings required to connect to a record store
type DatabaseConfiguration struct {
	// Type is one of sqlite, mysql, pg, redis, mongo or memory
	Type string
	DSN  string `json:"-"`
	// Name is the database name, used by mongo
	Name string
	// Prefix is the key prefix, used by redis
	Prefix string
}

// TokenConfiguration habours the lifetimes of codes and tokens
type TokenConfiguration struct {
	CodeTTL    time.Duration `mapstructure:"code-ttl"`
	AccessTTL  time.Duration `mapstructure:"access-ttl"`
	RefreshTTL time.Duration `mapstructure:"refresh-ttl"`
	// LastUsedInterval suppresses repeated last used writes for the same
	// token record within the interval, 0 writes on every validation
	LastUsedInterval time.Duration `mapstructure:"last-used-interval"`
	// TokenSize is the amount of random bytes per code or token
	TokenSize int `mapstructure:"token-size"`
}

// HousekeepingConfiguration configures the optional sweep of long dead records
type HousekeepingConfiguration struct {
	// Interval of the sweep loop in serve, 0 disables the loop
	Interval time.Duration
	// Retention is how long expired or revoked records are kept for audit
	Retention time.Duration
}

// CORSConfiguration very basic cors configuration
type CORSConfiguration struct {
	AllowCredentials bool     `mapstructure:"allow-credentials"`
	AllowedMethods   []string `mapstructure:"allowed-methods"`
	AllowedOrigins   []string `mapstructure:"allowed-origins"`
}

// Configuration habours the entire extrxx configuration
type Configuration struct {
	Server       *ServerConfiguration       `mapstructure:"server"`
	Database     *DatabaseConfiguration     `mapstructure:"database"`
	Tokens       *TokenConfiguration        `mapstructure:"tokens"`
	Housekeeping *HousekeepingConfiguration `mapstructure:"housekeeping"`
}

// DefaultTokenConfiguration returns the lifetimes used when nothing is configured
func DefaultTokenConfiguration() *TokenConfiguration {
	return &TokenConfiguration{
		CodeTTL:    5 * time.Minute,
		AccessTTL:  time.Hour,
		RefreshTTL: 30 * 24 * time.Hour,
		TokenSize:  32,
	}
}

// Validate does some basic validation of the config file and tries to be helpful on missconfiguration
func (c *Configuration) Validate() error {
	if c.Database == nil {
		return errors.New("no database configuration found")
	}
	switch c.Database.Type {
	case "sqlite", "mysql", "pg", "redis", "mongo":
		if c.Database.DSN == "" {
			return fmt.Errorf("database.type %s requires database.dsn", c.Database.Type)
		}
	case "memory":
	default:
		return fmt.Errorf(
			"unknown database.type %q. Possible values: sqlite,mysql,pg,redis,mongo,memory",
			c.Database.Type,
		)
	}
	if c.Database.Type == "mongo" && c.Database.Name == "" {
		return errors.New("database.type mongo requires database.name")
	}
	if c.Tokens == nil {
		return errors.New("no tokens configuration found")
	}
	if err := c.Tokens.Validate(); err != nil {
		return err
	}
	if c.Server == nil {
		return errors.New("no server configuration found")
	}
	if c.Housekeeping != nil {
		if c.Housekeeping.Interval < 0 || c.Housekeeping.Retention < 0 {
			return errors.New("housekeeping.interval and housekeeping.retention may not be negative")
		}
	}
	return nil
}

// Validate checks the token lifetimes for plausibility
func (t *TokenConfiguration) Validate() error {
	if t.CodeTTL <= 0 {
		return errors.New("tokens.code-ttl needs to be positive")
	}
	if t.AccessTTL <= 0 {
		return errors.New("tokens.access-ttl needs to be positive")
	}
	if t.RefreshTTL <= 0 {
		return errors.New("tokens.refresh-ttl needs to be positive")
	}
	if t.RefreshTTL < t.AccessTTL {
		return errors.New(
			"tokens.refresh-ttl is shorter than tokens.access-ttl, access tokens would be capped to the refresh window",
		)
	}
	if t.LastUsedInterval < 0 {
		return errors.New("tokens.last-used-interval may not be negative")
	}
	if t.TokenSize != 0 && t.TokenSize < 16 {
		return errors.New("tokens.token-size needs at least 16 bytes")
	}
	return nil
}

// DebugMode returns true if the EXTRXX_DEBUG_MODE variable is set
func (*Configuration) DebugMode() bool {
	if r := os.Getenv("EXTRXX_DEBUG_MODE"); r == "true" {
		return true
	}
	return false
}
