package config

// Campaign file loading and validation for yangfuzz

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tturner/yangfuzz/internal/errors"
)

const (
	DefaultPort         = 830
	DefaultTimeoutSec   = 30
	DefaultDatastore    = "running"
	DefaultMaxMutations = 1000
	DefaultModulesDir   = "/usr/share/yang/modules"
)

// TargetConfig describes the NETCONF server under test.
type TargetConfig struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	User       string `yaml:"user,omitempty"`
	Password   string `yaml:"password,omitempty"`
	KeyFile    string `yaml:"key_file,omitempty"`
	KnownHosts string `yaml:"known_hosts,omitempty"`
	Insecure   bool   `yaml:"insecure,omitempty"`    // Skip host key verification
	TimeoutSec int    `yaml:"timeout_sec"`           // Per-request timeout
	Datastore  string `yaml:"datastore"`             // edit-config target
	ModulesDir string `yaml:"modules_dir,omitempty"` // Remote YANG directory for fetch-modules
}

// ModuleConfig names the YANG module to fuzz and where to find it.
type ModuleConfig struct {
	Name       string   `yaml:"name"`
	Namespace  string   `yaml:"namespace,omitempty"` // Overrides the module namespace
	SearchDirs []string `yaml:"search_dirs"`
}

// GeneratorConfig controls skeleton assembly.
type GeneratorConfig struct {
	Filter       string `yaml:"filter,omitempty"`
	Seed         *int64 `yaml:"seed,omitempty"`
	MaxMutations int    `yaml:"max_mutations"`
}

// Campaign is one fuzzing campaign against one module.
type Campaign struct {
	Target    TargetConfig    `yaml:"target"`
	Module    ModuleConfig    `yaml:"module"`
	Generator GeneratorConfig `yaml:"generator"`

	// Offline feature resolution inputs. When set they replace the
	// server's hello or yang-library reply.
	CapabilitiesFile string `yaml:"capabilities_file,omitempty"`
	YangLibraryFile  string `yaml:"yang_library_file,omitempty"`
}

// Timeout returns the per-request timeout.
func (c *Campaign) Timeout() time.Duration {
	return time.Duration(c.Target.TimeoutSec) * time.Second
}

// Seeded reports whether a run seed is configured.
func (c *Campaign) Seeded() bool {
	return c.Generator.Seed != nil
}

// CreateDefaultCampaign creates a default campaign
func CreateDefaultCampaign() *Campaign {
	seed := int64(1)
	return &Campaign{
		Target: TargetConfig{
			Host:       "192.0.2.10",
			Port:       DefaultPort,
			User:       "admin",
			TimeoutSec: DefaultTimeoutSec,
			Datastore:  DefaultDatastore,
			ModulesDir: DefaultModulesDir,
		},
		Module: ModuleConfig{
			Name:       "example",
			SearchDirs: []string{"./yang"},
		},
		Generator: GeneratorConfig{
			Seed:         &seed,
			MaxMutations: DefaultMaxMutations,
		},
	}
}

// WriteDefaultCampaign writes a default campaign to a file
func WriteDefaultCampaign(path string) error {
	return WriteCampaign(path, CreateDefaultCampaign())
}

// WriteCampaign writes cfg as YAML.
func WriteCampaign(path string, cfg *Campaign) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// LoadCampaign loads a campaign from a YAML file.
// If the file doesn't exist and autoCreate is true, a default file is
// written first.
func LoadCampaign(path string, autoCreate bool) (*Campaign, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, errors.WrapConfigError(fmt.Errorf("read config file: %w", err), path)
		}
		if !autoCreate {
			return nil, errors.WrapConfigError(fmt.Errorf("config file not found: %s", path), path)
		}
		if err := WriteDefaultCampaign(path); err != nil {
			return nil, fmt.Errorf("create default config: %w", err)
		}
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, errors.WrapConfigError(fmt.Errorf("read created config file: %w", err), path)
		}
	}
	return ParseCampaign(data)
}

// ParseCampaign decodes YAML, applies defaults and validates.
func ParseCampaign(data []byte) (*Campaign, error) {
	var cfg Campaign
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}
	ApplyDefaults(&cfg)
	if err := ValidateCampaign(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

// ApplyDefaults fills unset fields.
func ApplyDefaults(cfg *Campaign) {
	if cfg.Target.Port == 0 {
		cfg.Target.Port = DefaultPort
	}
	if cfg.Target.TimeoutSec == 0 {
		cfg.Target.TimeoutSec = DefaultTimeoutSec
	}
	if cfg.Target.Datastore == "" {
		cfg.Target.Datastore = DefaultDatastore
	}
	if len(cfg.Module.SearchDirs) == 0 {
		cfg.Module.SearchDirs = []string{"."}
	}
	if cfg.Generator.MaxMutations == 0 {
		cfg.Generator.MaxMutations = DefaultMaxMutations
	}
}

// ValidateCampaign validates a campaign
func ValidateCampaign(cfg *Campaign) error {
	if cfg.Module.Name == "" {
		return fmt.Errorf("module.name is required")
	}
	for i, dir := range cfg.Module.SearchDirs {
		if dir == "" {
			return fmt.Errorf("module.search_dirs[%d] is empty", i)
		}
	}
	if cfg.Target.Port < 1 || cfg.Target.Port > 65535 {
		return fmt.Errorf("target.port must be between 1 and 65535, got %d", cfg.Target.Port)
	}
	if cfg.Target.TimeoutSec < 0 {
		return fmt.Errorf("target.timeout_sec must be >= 0")
	}
	switch cfg.Target.Datastore {
	case "running", "candidate", "startup":
	default:
		return fmt.Errorf("target.datastore must be running, candidate or startup, got %q", cfg.Target.Datastore)
	}
	if cfg.Target.Insecure && cfg.Target.KnownHosts != "" {
		return fmt.Errorf("target.insecure and target.known_hosts are mutually exclusive")
	}
	if cfg.Generator.MaxMutations < 0 {
		return fmt.Errorf("generator.max_mutations must be >= 0")
	}
	if cfg.CapabilitiesFile != "" && cfg.YangLibraryFile != "" {
		return fmt.Errorf("capabilities_file and yang_library_file are mutually exclusive")
	}
	return nil
}
