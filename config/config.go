// Package config provides declarative lock configuration for attrlock.
// A config file lists model types, the attributes locked on each, and
// an optional parent type whose declarations are inherited as a
// snapshot when the child is built.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/c360studio/attrlock/guard"
)

// Config represents the complete attrlock configuration.
type Config struct {
	Types map[string]TypeConfig `yaml:"types"`
}

// TypeConfig declares the locks for a single model type.
type TypeConfig struct {
	// Extends names the parent type whose declarations are snapshotted
	// into this type before its own locks are applied.
	Extends string `yaml:"extends,omitempty"`

	// Locks lists the lock declarations, applied in file order.
	Locks []LockConfig `yaml:"locks"`
}

// LockConfig is a single declaration covering one or more attributes.
type LockConfig struct {
	// Attributes lists the attribute names to lock.
	Attributes []string `yaml:"attributes"`

	// Message overrides the default validation message.
	Message string `yaml:"message,omitempty"`

	// Mode is one of "error" (default), "warn", "fatal". Custom
	// callbacks cannot be expressed declaratively.
	Mode string `yaml:"mode,omitempty"`
}

// DefaultConfig returns an empty configuration.
func DefaultConfig() *Config {
	return &Config{Types: make(map[string]TypeConfig)}
}

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file.
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one. Types declared in other
// replace same-named types wholesale.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}
	if c.Types == nil {
		c.Types = make(map[string]TypeConfig)
	}
	for name, tc := range other.Types {
		c.Types[name] = tc
	}
}

// Validate checks that the configuration is structurally valid: every
// declaration has attributes with non-blank names and a known mode, and
// extends references resolve without cycles.
func (c *Config) Validate() error {
	for _, name := range c.TypeNames() {
		tc := c.Types[name]
		if len(tc.Locks) == 0 && tc.Extends == "" {
			return fmt.Errorf("type %s: declares neither locks nor extends", name)
		}
		for i, lock := range tc.Locks {
			if len(lock.Attributes) == 0 {
				return fmt.Errorf("type %s: lock %d has no attributes", name, i)
			}
			for _, attr := range lock.Attributes {
				if strings.TrimSpace(attr) == "" {
					return fmt.Errorf("type %s: lock %d has a blank attribute name", name, i)
				}
			}
			if _, err := guard.ParseMode(lock.Mode); err != nil {
				return fmt.Errorf("type %s: lock %d: %w", name, i, err)
			}
		}
		if tc.Extends != "" {
			if _, ok := c.Types[tc.Extends]; !ok {
				return fmt.Errorf("type %s: extends unknown type %s", name, tc.Extends)
			}
		}
	}

	return c.checkCycles()
}

// checkCycles rejects circular extends chains.
func (c *Config) checkCycles() error {
	const (
		visiting = 1
		done     = 2
	)
	state := make(map[string]int, len(c.Types))

	var visit func(name string) error
	visit = func(name string) error {
		switch state[name] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("type %s: extends cycle detected", name)
		}
		state[name] = visiting
		if parent := c.Types[name].Extends; parent != "" {
			if err := visit(parent); err != nil {
				return err
			}
		}
		state[name] = done
		return nil
	}

	for _, name := range c.TypeNames() {
		if err := visit(name); err != nil {
			return err
		}
	}
	return nil
}

// Build validates the configuration and constructs a registry from it.
// Parents are fully declared and snapshotted into children before the
// children's own locks are applied, so snapshot inheritance matches
// what an explicit Derive-then-Lock sequence would produce.
func (c *Config) Build() (*guard.Registry, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	reg := guard.NewRegistry()
	applied := make(map[string]bool, len(c.Types))

	var apply func(name string) error
	apply = func(name string) error {
		if applied[name] {
			return nil
		}
		applied[name] = true

		tc := c.Types[name]
		if tc.Extends != "" {
			if err := apply(tc.Extends); err != nil {
				return err
			}
			reg.Derive(name, tc.Extends)
		}
		for _, lock := range tc.Locks {
			mode, err := guard.ParseMode(lock.Mode)
			if err != nil {
				return fmt.Errorf("type %s: %w", name, err)
			}
			opts := []guard.LockOption{guard.WithMode(mode)}
			if lock.Message != "" {
				opts = append(opts, guard.WithMessage(lock.Message))
			}
			if err := reg.Lock(name, lock.Attributes, opts...); err != nil {
				return fmt.Errorf("type %s: %w", name, err)
			}
		}
		return nil
	}

	// Map iteration order is random; sort for deterministic application.
	for _, name := range c.TypeNames() {
		if err := apply(name); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// TypeNames returns the configured type names, sorted.
func (c *Config) TypeNames() []string {
	names := make([]string, 0, len(c.Types))
	for name := range c.Types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
