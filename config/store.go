package config

import (
	"fmt"
	"strings"
)

// StoreMode selects where credentials persist between runs.
type StoreMode string

const (
	// StoreModeFile persists credentials in a local JSON file.
	StoreModeFile StoreMode = "file"
	// StoreModeRedis persists credentials in Redis.
	StoreModeRedis StoreMode = "redis"
	// StoreModeMemory keeps credentials in process memory only.
	StoreModeMemory StoreMode = "memory"
)

// UnmarshalText implements encoding.TextUnmarshaler for StoreMode.
func (s *StoreMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "file", "redis", "memory":
		*s = StoreMode(v)
		return nil
	default:
		return fmt.Errorf("invalid StoreMode: %q (valid options: file, redis, memory)", v)
	}
}

// FileStoreConfig configures the file-backed credential store.
type FileStoreConfig struct {
	// Path is the credential file location. Empty selects a default
	// under the user config directory.
	Path string `env:"PATH"`
}

// RedisConfig configures the Redis-backed credential store.
type RedisConfig struct {
	Addr      string `env:"ADDR"       envDefault:"localhost:6379"`
	Password  string `env:"PASSWORD"`
	DB        int    `env:"DB"         envDefault:"0"`
	KeyPrefix string `env:"KEY_PREFIX" envDefault:"console:credentials:"`
}

// StoreConfig groups credential store configuration.
type StoreConfig struct {
	// Mode selects the persistence backend.
	Mode StoreMode `env:"STORE_MODE" envDefault:"file"`

	// File configuration (used when Mode=file).
	File FileStoreConfig `envPrefix:"STORE_FILE_"`

	// Redis configuration (used when Mode=redis).
	Redis RedisConfig `envPrefix:"STORE_REDIS_"`
}
