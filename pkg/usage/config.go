package usage

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Default message templates.
const (
	DefaultCPUFormat = "Function {name}: CPU usage={cpu_usage}%"
	DefaultRAMFormat = "Function {name}: RAM usage={ram_usage}MB"
)

// Config holds the sink, the two message templates and the sampler used by
// the CPU and RAM wrappers. Changes apply to every later wrapped call,
// including calls of functions wrapped before the change.
type Config struct {
	mu        sync.RWMutex
	sink      Sink
	cpuFormat string
	ramFormat string
	sampler   Sampler
	stdout    io.Writer
}

// ConfigOption sets a Config field at construction.
type ConfigOption func(*Config)

// WithSink sets the custom sink.
func WithSink(s Sink) ConfigOption {
	return func(c *Config) { c.sink = s }
}

// WithCPUFormat sets the CPU message template.
func WithCPUFormat(format string) ConfigOption {
	return func(c *Config) { c.cpuFormat = format }
}

// WithRAMFormat sets the RAM message template.
func WithRAMFormat(format string) ConfigOption {
	return func(c *Config) { c.ramFormat = format }
}

// WithSampler sets the OS metrics source.
func WithSampler(s Sampler) ConfigOption {
	return func(c *Config) { c.sampler = s }
}

// NewConfig returns a config with default templates, printing to stdout.
// The system-wide sampler is created on first use unless one is given.
func NewConfig(opts ...ConfigOption) *Config {
	c := &Config{
		cpuFormat: DefaultCPUFormat,
		ramFormat: DefaultRAMFormat,
		stdout:    os.Stdout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var defaultConfig = NewConfig()

// Default returns the process-wide config used by the package-level setters
// and by wrappers given a nil config.
func Default() *Config {
	return defaultConfig
}

// SetCustomLogger replaces the sink. A nil sink restores printing to stdout.
func (c *Config) SetCustomLogger(s Sink) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sink = s
}

// SetCPUFormat replaces the CPU template. It is not validated here; a bad
// template fails when a wrapped call logs.
func (c *Config) SetCPUFormat(format string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cpuFormat = format
}

// SetRAMFormat replaces the RAM template.
func (c *Config) SetRAMFormat(format string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ramFormat = format
}

// SetSampler replaces the OS metrics source.
func (c *Config) SetSampler(s Sampler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sampler = s
}

// CPUFormat returns the current CPU template.
func (c *Config) CPUFormat() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cpuFormat
}

// RAMFormat returns the current RAM template.
func (c *Config) RAMFormat() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ramFormat
}

// Reset restores the default sink and templates. The sampler is kept.
func (c *Config) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sink = nil
	c.cpuFormat = DefaultCPUFormat
	c.ramFormat = DefaultRAMFormat
}

// Log sends message to the custom sink, or prints it when none is set.
func (c *Config) Log(message string) {
	c.mu.RLock()
	sink, stdout := c.sink, c.stdout
	c.mu.RUnlock()

	if sink != nil {
		sink.Log(message)
		return
	}
	fmt.Fprintln(stdout, message)
}

// Sampler returns the configured sampler, creating the system-wide one on
// first use.
func (c *Config) Sampler() (Sampler, error) {
	c.mu.RLock()
	s := c.sampler
	c.mu.RUnlock()
	if s != nil {
		return s, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sampler == nil {
		ps, err := NewSampler(ScopeSystem)
		if err != nil {
			return nil, err
		}
		c.sampler = ps
	}
	return c.sampler, nil
}

// SetCustomLogger replaces the sink of the default config.
func SetCustomLogger(s Sink) {
	defaultConfig.SetCustomLogger(s)
}

// SetCPUFormat replaces the CPU template of the default config.
func SetCPUFormat(format string) {
	defaultConfig.SetCPUFormat(format)
}

// SetRAMFormat replaces the RAM template of the default config.
func SetRAMFormat(format string) {
	defaultConfig.SetRAMFormat(format)
}
