/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/npillmayer/schuko/tracing"
	"gopkg.in/yaml.v3"

	"github.com/suparena/topobind/attrstore"
	"github.com/suparena/topobind/datastore"
	"github.com/suparena/topobind/datastore/ddb"
	"github.com/suparena/topobind/datastore/memory"
	"github.com/suparena/topobind/errors"
	"github.com/suparena/topobind/storagemodels"
)

// Backend selects where dictionaries are persisted.
type Backend string

const (
	BackendMemory   Backend = "memory"
	BackendDynamoDB Backend = "dynamodb"
)

// Config is the runtime configuration of a topobind process.
type Config struct {
	Store StoreConfig `yaml:"store"`
	Trace TraceConfig `yaml:"trace"`
}

type StoreConfig struct {
	Backend  Backend        `yaml:"backend"`
	DynamoDB DynamoDBConfig `yaml:"dynamodb"`
}

// DynamoDBConfig configures the DynamoDB backend. Credentials are usually
// taken from the environment rather than the file.
type DynamoDBConfig struct {
	Region     string            `yaml:"region"`
	Table      string            `yaml:"table"`
	AccessKey  string            `yaml:"accessKey"`
	SecretKey  string            `yaml:"secretKey"`
	Endpoint   string            `yaml:"endpoint"`
	EntityType string            `yaml:"entityType"`
	IndexMap   map[string]string `yaml:"indexMap"`
}

type TraceConfig struct {
	// Level is one of "error", "info" or "debug".
	Level string `yaml:"level"`
}

// Default returns the configuration used when nothing else is given.
func Default() Config {
	return Config{
		Store: StoreConfig{
			Backend: BackendMemory,
			DynamoDB: DynamoDBConfig{
				EntityType: "Dictionary",
				IndexMap: map[string]string{
					"PK": "SHAPE#{ShapeID}",
					"SK": "DICT",
				},
			},
		},
		Trace: TraceConfig{Level: "error"},
	}
}

// Parse reads a YAML document on top of the defaults.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Load builds the configuration: defaults, then the YAML file at path (if
// path is not empty), then a .env file in the working directory (if any),
// then environment variables.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
		if cfg, err = Parse(data); err != nil {
			return Config{}, err
		}
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}
	cfg.ApplyEnv(os.Getenv)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv overrides settings from environment variables.
func (c *Config) ApplyEnv(getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	if v := getenv("TOPOBIND_STORE"); v != "" {
		c.Store.Backend = Backend(strings.ToLower(v))
	}
	set(&c.Store.DynamoDB.Region, "AWS_REGION")
	set(&c.Store.DynamoDB.Table, "AWS_DDB_TABLE")
	set(&c.Store.DynamoDB.AccessKey, "AWS_ACCESS_KEY")
	set(&c.Store.DynamoDB.SecretKey, "AWS_SECRET_KEY")
	set(&c.Store.DynamoDB.Endpoint, "AWS_DDB_ENDPOINT")
	set(&c.Trace.Level, "TOPOBIND_TRACE")
}

// Validate checks the configuration for consistency. An empty backend
// selects memory, as in NewDataStore.
func (c Config) Validate() error {
	switch c.Store.Backend {
	case BackendMemory, "":
	case BackendDynamoDB:
		d := c.Store.DynamoDB
		if d.Table == "" {
			return errors.NewValidationError("store.dynamodb.table", "missing table name")
		}
		if d.Region == "" {
			return errors.NewValidationError("store.dynamodb.region", "missing region")
		}
		if d.IndexMap["PK"] == "" || d.IndexMap["SK"] == "" {
			return errors.NewValidationError("store.dynamodb.indexMap", "PK and SK templates are required")
		}
		if d.AccessKey != "" && d.SecretKey == "" {
			return errors.NewValidationError("store.dynamodb.secretKey", "access key given without secret key")
		}
	default:
		return errors.NewValidationError("store.backend", fmt.Sprintf("unknown backend %q", c.Store.Backend))
	}

	switch strings.ToLower(c.Trace.Level) {
	case "", "error", "info", "debug":
	default:
		return errors.NewValidationError("trace.level", fmt.Sprintf("unknown level %q", c.Trace.Level))
	}
	return nil
}

// ApplyTrace sets the level of the 'topobind' tracer.
func (c Config) ApplyTrace() {
	t := tracing.Select("topobind")
	switch strings.ToLower(c.Trace.Level) {
	case "debug":
		t.SetTraceLevel(tracing.LevelDebug)
	case "info":
		t.SetTraceLevel(tracing.LevelInfo)
	default:
		t.SetTraceLevel(tracing.LevelError)
	}
}

// NewDataStore opens the configured dictionary backend.
func (c Config) NewDataStore(ctx context.Context) (datastore.DataStore[storagemodels.DictionaryRecord], error) {
	switch c.Store.Backend {
	case BackendDynamoDB:
		d := c.Store.DynamoDB
		client, err := ddb.NewDynamoDBClient(ctx, d.AccessKey, d.SecretKey, d.Region, d.Endpoint)
		if err != nil {
			return nil, err
		}
		store, err := ddb.New[storagemodels.DictionaryRecord](client, d.Table, d.IndexMap, d.EntityType)
		if err != nil {
			return nil, err
		}
		return store, nil
	case BackendMemory, "":
		return memory.New[storagemodels.DictionaryRecord](attrstore.RecordKey), nil
	default:
		return nil, errors.NewValidationError("store.backend", fmt.Sprintf("unknown backend %q", c.Store.Backend))
	}
}
