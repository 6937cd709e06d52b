// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/bureau-storage/lib/blobstore"
	"github.com/bureau-foundation/bureau-storage/lib/contentcodec"
)

// EnvironmentVariable names the config file when no --config flag is
// given.
const EnvironmentVariable = "BUREAU_STORAGE_CONFIG"

// Environment represents the deployment environment.
type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Production  Environment = "production"
)

// Config is the complete bureau-storage configuration.
type Config struct {
	// Environment selects which override section applies.
	Environment Environment `yaml:"environment"`

	Storage    StorageConfig    `yaml:"storage"`
	Database   DatabaseConfig   `yaml:"database"`
	Encryption EncryptionConfig `yaml:"encryption"`

	// Per-environment overrides, applied after the base sections.
	Development *ConfigOverrides `yaml:"development,omitempty"`
	Staging     *ConfigOverrides `yaml:"staging,omitempty"`
	Production  *ConfigOverrides `yaml:"production,omitempty"`
}

// ConfigOverrides contains the sections that can differ per
// environment. Empty fields leave the base value in place.
type ConfigOverrides struct {
	Storage    *StorageConfig    `yaml:"storage,omitempty"`
	Database   *DatabaseConfig   `yaml:"database,omitempty"`
	Encryption *EncryptionConfig `yaml:"encryption,omitempty"`
}

// StorageConfig configures payload storage.
type StorageConfig struct {
	// Folder is the root directory of the FILE blob store, one
	// subdirectory per bucket. Default: data
	Folder string `yaml:"folder"`

	// BufferSize is the read chunk size in bytes for the FILE blob
	// store. Default: 1024
	BufferSize int `yaml:"buffer_size"`

	// Format is the codec tag applied to new writes. Existing content
	// keeps the format it was written with. Default: GZIP
	Format string `yaml:"format"`

	// Container is the blob backend tag: FILE or IN_MEMORY.
	// Default: FILE
	Container string `yaml:"container"`
}

// DatabaseConfig configures the metadata database.
type DatabaseConfig struct {
	// Path is the SQLite file. Default: <storage.folder>/metadata.db
	Path string `yaml:"path"`

	// PoolSize is the number of SQLite connections. Default: 4
	PoolSize int `yaml:"pool_size"`
}

// EncryptionConfig configures encryption at rest.
type EncryptionConfig struct {
	// IdentityFile is an age identity file (age-keygen output). When
	// set, the AGE format is available for storage.format and for
	// reading AGE-encoded content.
	IdentityFile string `yaml:"identity_file"`
}

// Default returns the configuration used when no file is given. The
// storage values match the historical service defaults.
func Default() *Config {
	return &Config{
		Environment: Development,
		Storage: StorageConfig{
			Folder:     "data",
			BufferSize: blobstore.DefaultReadBufferSize,
			Format:     string(contentcodec.FormatGzip),
			Container:  string(blobstore.KindFile),
		},
		Database: DatabaseConfig{
			PoolSize: 4,
		},
	}
}

// Load loads the file named by BUREAU_STORAGE_CONFIG. It fails when
// the variable is unset.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your storage config file, or use --config flag", EnvironmentVariable)
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from path on top of [Default]. Files
// ending in .json or .jsonc are read as JSON with comments and
// trailing commas allowed; anything else is YAML.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, fmt.Errorf("loading config %s: %w", path, err)
	}

	cfg.applyEnvironmentOverrides()
	cfg.expandVariables()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		// JSON is valid YAML once comments and trailing commas are
		// stripped, so both paths end in the same decoder.
		data = jsonc.ToJSON(data)
	}
	return yaml.Unmarshal(data, c)
}

func (c *Config) applyEnvironmentOverrides() {
	var overrides *ConfigOverrides
	switch c.Environment {
	case Development:
		overrides = c.Development
	case Staging:
		overrides = c.Staging
	case Production:
		overrides = c.Production
	}
	if overrides == nil {
		return
	}

	if storage := overrides.Storage; storage != nil {
		if storage.Folder != "" {
			c.Storage.Folder = storage.Folder
		}
		if storage.BufferSize != 0 {
			c.Storage.BufferSize = storage.BufferSize
		}
		if storage.Format != "" {
			c.Storage.Format = storage.Format
		}
		if storage.Container != "" {
			c.Storage.Container = storage.Container
		}
	}

	if database := overrides.Database; database != nil {
		if database.Path != "" {
			c.Database.Path = database.Path
		}
		if database.PoolSize != 0 {
			c.Database.PoolSize = database.PoolSize
		}
	}

	if encryption := overrides.Encryption; encryption != nil && encryption.IdentityFile != "" {
		c.Encryption.IdentityFile = encryption.IdentityFile
	}
}

func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}
	c.Storage.Folder = expandVars(c.Storage.Folder, vars)

	vars["STORAGE_FOLDER"] = c.Storage.Folder
	c.Database.Path = expandVars(c.Database.Path, vars)
	c.Encryption.IdentityFile = expandVars(c.Encryption.IdentityFile, vars)
}

// varPattern matches ${VAR} and ${VAR:-default}.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		name := parts[1]
		defaultValue := parts[2]

		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// DatabasePath returns database.path, or metadata.db inside the
// storage folder when unset.
func (c *Config) DatabasePath() string {
	if c.Database.Path != "" {
		return c.Database.Path
	}
	return filepath.Join(c.Storage.Folder, "metadata.db")
}

// Validate checks the configuration for errors. All problems are
// reported together.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Staging && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}
	if c.Storage.Folder == "" {
		errs = append(errs, fmt.Errorf("storage.folder is required"))
	}
	if c.Storage.BufferSize <= 0 {
		errs = append(errs, fmt.Errorf("storage.buffer_size must be positive, got %d", c.Storage.BufferSize))
	}

	format, err := contentcodec.ParseFormat(c.Storage.Format)
	if err != nil {
		errs = append(errs, fmt.Errorf("storage.format: %w", err))
	} else if format == contentcodec.FormatAge && c.Encryption.IdentityFile == "" {
		errs = append(errs, fmt.Errorf("storage.format AGE requires encryption.identity_file"))
	}

	if _, err := blobstore.ParseKind(c.Storage.Container); err != nil {
		errs = append(errs, fmt.Errorf("storage.container: %w", err))
	}
	if c.Database.PoolSize < 0 {
		errs = append(errs, fmt.Errorf("database.pool_size must not be negative, got %d", c.Database.PoolSize))
	}

	return errors.Join(errs...)
}
