package config

import (
	"fmt"
	"strings"
	"time"
)

// Storage drivers.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverSQL    = "sql"
	DriverMongo  = "mongo"
)

// StorageConfig selects the product store and carries the settings of every driver.
// Only the section of the selected driver is validated.
type StorageConfig struct {
	Driver string      `koanf:"driver"`
	File   FileConfig  `koanf:"file"`
	SQL    SQLConfig   `koanf:"sql"`
	Mongo  MongoConfig `koanf:"mongo"`
}

func (c *StorageConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Storage ---\n")
	b.WriteString(fmt.Sprintf("  driver: %s\n", c.Driver))
	switch c.Driver {
	case DriverFile:
		b.WriteString(fmt.Sprintf("  file.path: %s\n", c.File.Path))
	case DriverSQL:
		b.WriteString(fmt.Sprintf("  sql.url: %s\n", MaskURL(c.SQL.URL)))
		b.WriteString(fmt.Sprintf("  sql.timeout: %s\n", c.SQL.Timeout))
		b.WriteString(fmt.Sprintf("  sql.maxOpenConns: %d\n", c.SQL.MaxOpenConns))
		b.WriteString(fmt.Sprintf("  sql.automigrate: %t\n", c.SQL.AutoMigrate))
	case DriverMongo:
		b.WriteString(fmt.Sprintf("  mongo.uri: %s\n", MaskURL(c.Mongo.URI)))
		b.WriteString(fmt.Sprintf("  mongo.database: %s\n", c.Mongo.Database))
		b.WriteString(fmt.Sprintf("  mongo.collection: %s\n", c.Mongo.Collection))
		b.WriteString(fmt.Sprintf("  mongo.counters: %s\n", c.Mongo.Counters))
		b.WriteString(fmt.Sprintf("  mongo.timeout: %s\n", c.Mongo.Timeout))
	}
	return b.String()
}

func (c *StorageConfig) Validate() error {
	switch c.Driver {
	case DriverMemory:
		return nil
	case DriverFile:
		return c.File.Validate()
	case DriverSQL:
		return c.SQL.Validate()
	case DriverMongo:
		return c.Mongo.Validate()
	case "":
		return fmt.Errorf("storage driver is not configured")
	default:
		return fmt.Errorf("unknown storage driver: %q", c.Driver)
	}
}

// FileConfig locates the JSON array table.
type FileConfig struct {
	Path string `koanf:"path"`
}

func (c *FileConfig) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("storage file path is not configured")
	}
	return nil
}

// SQLConfig configures the relational store.
type SQLConfig struct {
	URL             string        `koanf:"url"`
	Timeout         time.Duration `koanf:"timeout"`
	MaxOpenConns    int           `koanf:"maxOpenConns"`
	MaxIdleConns    int           `koanf:"maxIdleConns"`
	ConnMaxLifetime time.Duration `koanf:"connMaxLifetime"`
	AutoMigrate     bool          `koanf:"automigrate"`
}

func (c *SQLConfig) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("database URL is not configured")
	}
	if !isValidPostgresURL(c.URL) {
		return fmt.Errorf("database URL must start with 'postgres://': %s", MaskURL(c.URL))
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("database connect timeout is not configured")
	}
	if c.MaxOpenConns < 0 || c.MaxIdleConns < 0 {
		return fmt.Errorf("database pool sizes must not be negative")
	}
	return nil
}

// isValidPostgresURL checks if the provided URL is a valid PostgreSQL URL
func isValidPostgresURL(url string) bool {
	return strings.HasPrefix(url, "postgres://") ||
		strings.HasPrefix(url, "postgresql://")
}

// MongoConfig configures the document store and its counters collection.
type MongoConfig struct {
	URI        string        `koanf:"uri"`
	Database   string        `koanf:"database"`
	Collection string        `koanf:"collection"`
	Counters   string        `koanf:"counters"`
	Timeout    time.Duration `koanf:"timeout"`
}

func (c *MongoConfig) Validate() error {
	if !strings.HasPrefix(c.URI, "mongodb://") && !strings.HasPrefix(c.URI, "mongodb+srv://") {
		return fmt.Errorf("mongo URI must start with 'mongodb://' or 'mongodb+srv://'")
	}
	if c.Database == "" {
		return fmt.Errorf("mongo database is not configured")
	}
	if c.Collection == "" {
		return fmt.Errorf("mongo collection is not configured")
	}
	if c.Counters == "" {
		return fmt.Errorf("mongo counters collection is not configured")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("mongo connect timeout is not configured")
	}
	return nil
}

// MaskURL hides the credentials of a connection URL.
func MaskURL(url string) string {
	if url == "" {
		return "<not configured>"
	}
	parts := strings.Split(url, "@")
	if len(parts) == 2 {
		scheme, _, found := strings.Cut(parts[0], "://")
		if found {
			return scheme + "://****@" + parts[1]
		}
		return "****@" + parts[1]
	}
	return "****"
}
