// Package config loads the mkint pass's compile-time-constants-turned-
// options: the sink table, the source-name prefixes, and the iteration
// cap.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SinkSpec names a sink function and the zero-based argument index that
// is the dangerous input.
type SinkSpec struct {
	Name     string `yaml:"name"`
	ArgIndex int    `yaml:"arg-index"`
}

// DefaultSinks is the fixed sink table of well-known dangerous-argument
// functions.
func DefaultSinks() []SinkSpec {
	return []SinkSpec{
		{Name: "malloc", ArgIndex: 0},
		{Name: "__mkint_sink0", ArgIndex: 0},
		{Name: "__mkint_sink1", ArgIndex: 1},
		{Name: "xmalloc", ArgIndex: 0},
		{Name: "kmalloc", ArgIndex: 0},
		{Name: "kzalloc", ArgIndex: 0},
		{Name: "vmalloc", ArgIndex: 0},
	}
}

// DefaultSourcePrefixes is the fixed source-name prefix list.
func DefaultSourcePrefixes() []string {
	return []string{"sys_", "__mkint_ann_"}
}

// DefaultIterationCap bounds the Range Engine's outer fixed-point loop,
// a safety belt over the structural termination argument (the lattice is
// finite and every transfer function is monotone).
const DefaultIterationCap = 128

// Config is the construction-time configuration recognized by the pass:
// the sink table, source-name prefixes, iteration cap, and two policy
// switches (StripShims, SignedIndices) governing ambiguous behavior.
type Config struct {
	Sinks           []SinkSpec `yaml:"sinks"`
	SourcePrefixes  []string   `yaml:"source-prefixes"`
	IterationCap    int        `yaml:"iteration-cap"`

	// StripShims, when true, removes the synthesized "<fn>.mkint.argN"
	// taint-source shim calls from the module before pass.Run returns.
	// Default false: do not silently drop them.
	StripShims bool `yaml:"strip-shims"`

	// SignedIndices, when true, makes the Range Engine's GEP
	// out-of-bounds check use the index operand's declared signedness
	// rather than always taking the unsigned max. Default false always
	// takes the unsigned max.
	SignedIndices bool `yaml:"signed-indices"`

	LogLevel int `yaml:"log-level"`
}

// Default returns a Config with every field at its documented default.
func Default() *Config {
	return &Config{
		Sinks:          DefaultSinks(),
		SourcePrefixes: DefaultSourcePrefixes(),
		IterationCap:   DefaultIterationCap,
		LogLevel:       int(InfoLevel),
	}
}

// Load reads a YAML config file from path, filling in documented
// defaults for any field left unset. An empty path returns Default().
func Load(path string) (*Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	loaded := &Config{}
	if err := yaml.Unmarshal(data, loaded); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if len(loaded.Sinks) > 0 {
		c.Sinks = loaded.Sinks
	}
	if len(loaded.SourcePrefixes) > 0 {
		c.SourcePrefixes = loaded.SourcePrefixes
	}
	if loaded.IterationCap > 0 {
		c.IterationCap = loaded.IterationCap
	}
	c.StripShims = loaded.StripShims
	c.SignedIndices = loaded.SignedIndices
	if loaded.LogLevel > 0 {
		c.LogLevel = loaded.LogLevel
	}
	return c, nil
}

// IsSource reports whether name (assumed already demangled) begins with
// one of the configured source prefixes.
func (c *Config) IsSource(name string) bool {
	for _, p := range c.SourcePrefixes {
		if len(name) >= len(p) && name[:len(p)] == p {
			return true
		}
	}
	return false
}

// Sink looks up name in the sink table, returning its dangerous-argument
// index and whether it is a configured sink at all.
func (c *Config) Sink(name string) (int, bool) {
	for _, s := range c.Sinks {
		if s.Name == name {
			return s.ArgIndex, true
		}
	}
	return 0, false
}
