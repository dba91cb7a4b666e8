package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/psantana5/ct/internal/logging"
	"github.com/psantana5/ct/pkg/usage"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. CT_CPU_FORMAT.
const EnvPrefix = "CT"

// Config is everything the ct CLI can be configured with
type Config struct {
	CPUFormat string `json:"cpu_format" yaml:"cpu_format" mapstructure:"cpu_format"`
	RAMFormat string `json:"ram_format" yaml:"ram_format" mapstructure:"ram_format"`
	// CPUScope is system or process
	CPUScope  string `json:"cpu_scope" yaml:"cpu_scope" mapstructure:"cpu_scope"`
	LogLevel  string `json:"log_level" yaml:"log_level" mapstructure:"log_level"`
	LogJSON   bool   `json:"log_json" yaml:"log_json" mapstructure:"log_json"`
	// Output is table or json
	Output    string `json:"output" yaml:"output" mapstructure:"output"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("cpu_format", usage.DefaultCPUFormat)
	v.SetDefault("ram_format", usage.DefaultRAMFormat)
	v.SetDefault("cpu_scope", string(usage.ScopeSystem))
	v.SetDefault("log_level", "info")
	v.SetDefault("log_json", false)
	v.SetDefault("output", "table")
}

// Load reads configuration from, in decreasing priority: flags (names with
// dashes, e.g. --cpu-format), CT_* environment variables, the config file,
// and defaults. An empty path searches $HOME/.ct/config.yaml, which may be
// absent; an explicit path must exist.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for _, key := range v.AllKeys() {
			if f := flags.Lookup(strings.ReplaceAll(key, "_", "-")); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", f.Name, err)
				}
			}
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".ct"))
		}
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("cannot decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the enumerated fields. Templates are not checked; a bad
// template fails when it is first used.
func (c *Config) Validate() error {
	if _, err := usage.ParseScope(c.CPUScope); err != nil {
		return err
	}
	switch c.Output {
	case "table", "json":
	default:
		return fmt.Errorf("invalid output %q (want table or json)", c.Output)
	}
	return nil
}

// Scope returns the parsed CPU scope
func (c *Config) Scope() usage.Scope {
	s, err := usage.ParseScope(c.CPUScope)
	if err != nil {
		return usage.ScopeSystem
	}
	return s
}

// Apply copies the templates onto u
func (c *Config) Apply(u *usage.Config) {
	u.SetCPUFormat(c.CPUFormat)
	u.SetRAMFormat(c.RAMFormat)
}

// Logger builds the CLI logger
func (c *Config) Logger() *logging.Logger {
	return logging.NewLogger(logging.ParseLevel(c.LogLevel), c.LogJSON)
}

// YAML renders the effective configuration
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}
