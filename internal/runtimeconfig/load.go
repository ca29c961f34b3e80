package runtimeconfig

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the configuration file name looked up in the source.
const DefaultConfigFile = "_config.yml"

var ErrConfigSchema = errors.New("sitegen config: document does not match schema")

//go:embed config.schema.json
var configSchema []byte

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

var knownKeys = map[string]struct{}{
	"title": {}, "description": {}, "url": {}, "author": {},
	"source": {}, "destination": {}, "drafts": {}, "exclude": {},
	"markdown": {}, "feeds": {}, "sitemap": {}, "logging": {},
}

// Load reads name from fsys on top of DefaultConfig. A missing file yields
// the defaults. The document is checked against the embedded JSON schema
// before it is decoded, and the result is validated.
func Load(fsys fs.FS, name string) (Config, error) {
	cfg := DefaultConfig()
	if name == "" {
		name = DefaultConfigFile
	}

	data, err := fs.ReadFile(fsys, name)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, cfg.Validate()
	}
	if err != nil {
		return cfg, fmt.Errorf("sitegen config: read %s: %w", name, err)
	}

	parsed, err := Parse(data, cfg)
	if err != nil {
		return cfg, fmt.Errorf("%s: %w", name, err)
	}
	return parsed, nil
}

// Parse decodes a YAML document over base.
func Parse(data []byte, base Config) (Config, error) {
	raw := map[string]any{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return base, fmt.Errorf("sitegen config: decode: %w", err)
	}
	if err := validateDocument(raw); err != nil {
		return base, err
	}

	cfg := base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return base, fmt.Errorf("sitegen config: decode: %w", err)
	}

	cfg.Extra = map[string]any{}
	for key, value := range base.Extra {
		cfg.Extra[key] = value
	}
	for key, value := range raw {
		if _, ok := knownKeys[key]; ok {
			continue
		}
		cfg.Extra[key] = value
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func validateDocument(raw map[string]any) error {
	schema, err := loadSchema()
	if err != nil {
		return err
	}

	// the validator expects encoding/json shaped values
	encoded, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("sitegen config: normalise: %w", err)
	}
	decoder := json.NewDecoder(bytes.NewReader(encoded))
	decoder.UseNumber()
	var instance any
	if err := decoder.Decode(&instance); err != nil {
		return fmt.Errorf("sitegen config: normalise: %w", err)
	}

	if err := schema.Validate(instance); err != nil {
		return fmt.Errorf("%w: %v", ErrConfigSchema, err)
	}
	return nil
}

func loadSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource("config.schema.json", bytes.NewReader(configSchema)); err != nil {
			schemaErr = err
			return
		}
		compiledSchema, schemaErr = compiler.Compile("config.schema.json")
	})
	return compiledSchema, schemaErr
}
