// Package config holds the product service configuration.
package config

import (
	"fmt"
	"strings"

	"github.com/abgdnv/productcrud/pkg/config"
	"github.com/abgdnv/productcrud/pkg/config/configloader"
)

var _ configloader.Validator = (*Config)(nil)

type Config struct {
	HTTPServer config.HTTPConfig     `koanf:"server"`
	Log        config.LogConfig      `koanf:"log"`
	PProf      config.PProfConfig    `koanf:"pprof"`
	Shutdown   config.ShutdownConfig `koanf:"shutdown"`
	Storage    config.StorageConfig  `koanf:"storage"`
	Sequence   config.SequenceConfig `koanf:"sequence"`
	NATS       config.NATSConfig     `koanf:"nats"`
	Metrics    config.MetricsConfig  `koanf:"metrics"`
}

func (c *Config) String() string {
	var b strings.Builder
	b.WriteString(c.HTTPServer.String())
	b.WriteString(c.Storage.String())
	b.WriteString(c.Sequence.String())
	b.WriteString(c.NATS.String())
	b.WriteString(c.Metrics.String())
	b.WriteString(c.Log.String())
	b.WriteString(c.PProf.String())
	b.WriteString(c.Shutdown.String())
	return b.String()
}

// Validate checks if the configuration values are valid
func (c *Config) Validate() error {
	if err := c.HTTPServer.Validate(); err != nil {
		return err
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	if err := c.PProf.Validate(); err != nil {
		return err
	}
	if err := c.Shutdown.Validate(); err != nil {
		return err
	}
	if err := c.Storage.Validate(); err != nil {
		return err
	}
	if err := c.Sequence.Validate(); err != nil {
		return err
	}
	if err := validateSequenceStorage(c.Sequence, c.Storage); err != nil {
		return err
	}
	if err := c.NATS.Validate(); err != nil {
		return err
	}
	return c.Metrics.Validate()
}

// ToolConfig is the subset read by productctl. It shares config.yaml and the
// environment with the service but never needs the HTTP sections.
type ToolConfig struct {
	Log      config.LogConfig      `koanf:"log"`
	Storage  config.StorageConfig  `koanf:"storage"`
	Sequence config.SequenceConfig `koanf:"sequence"`
}

var _ configloader.Validator = (*ToolConfig)(nil)

func (c *ToolConfig) String() string {
	return c.Storage.String() + c.Sequence.String() + c.Log.String()
}

func (c *ToolConfig) Validate() error {
	if err := c.Log.Validate(); err != nil {
		return err
	}
	if err := c.Storage.Validate(); err != nil {
		return err
	}
	if err := c.Sequence.Validate(); err != nil {
		return err
	}
	return validateSequenceStorage(c.Sequence, c.Storage)
}

// validateSequenceStorage rejects an external sequence for the sql driver:
// the products table owns its BIGSERIAL column.
func validateSequenceStorage(seq config.SequenceConfig, storage config.StorageConfig) error {
	if seq.Driver != "" && storage.Driver == config.DriverSQL {
		return fmt.Errorf("sequence driver %q cannot be combined with the %s storage driver", seq.Driver, config.DriverSQL)
	}
	return nil
}
