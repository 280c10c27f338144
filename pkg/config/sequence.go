package config

import (
	"fmt"
	"strings"
	"time"
)

// SequenceDriverRedis replaces the store's own identifier source with a Redis counter.
const SequenceDriverRedis = "redis"

type SequenceConfig struct {
	Driver string      `koanf:"driver"`
	Redis  RedisConfig `koanf:"redis"`
}

func (c *SequenceConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Sequence ---\n")
	if c.Driver == "" {
		b.WriteString("  driver: <store default>\n")
		return b.String()
	}
	b.WriteString(fmt.Sprintf("  driver: %s\n", c.Driver))
	b.WriteString(fmt.Sprintf("  redis.addr: %s\n", c.Redis.Addr))
	b.WriteString(fmt.Sprintf("  redis.db: %d\n", c.Redis.DB))
	b.WriteString(fmt.Sprintf("  redis.key: %s\n", c.Redis.Key))
	return b.String()
}

func (c *SequenceConfig) Validate() error {
	switch c.Driver {
	case "":
		return nil
	case SequenceDriverRedis:
		return c.Redis.Validate()
	default:
		return fmt.Errorf("unknown sequence driver: %q", c.Driver)
	}
}

type RedisConfig struct {
	Addr     string        `koanf:"addr"`
	Password string        `koanf:"password"`
	DB       int           `koanf:"db"`
	Key      string        `koanf:"key"`
	Timeout  time.Duration `koanf:"timeout"`
}

func (c *RedisConfig) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("redis address is not configured")
	}
	if c.Key == "" {
		return fmt.Errorf("redis counter key is not configured")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("redis timeout is not configured")
	}
	return nil
}
