// Package config loads pomfix configuration from file and environment.
package config

import "github.com/scottrw93/maven-plugins/internal/fix"

// Config represents the complete pomfix configuration.
// It can be loaded from .pomfix/config.yml with environment variable overrides.
type Config struct {
	Fix    FixConfig    `yaml:"fix" mapstructure:"fix"`
	Ignore IgnoreConfig `yaml:"ignore" mapstructure:"ignore"`
}

// FixConfig controls how a fix run behaves.
type FixConfig struct {
	FailOnWarning bool `yaml:"fail_on_warning" mapstructure:"fail_on_warning"` // treat skipped removals as fatal
	VerboseOutput bool `yaml:"verbose_output" mapstructure:"verbose_output"`   // log generated declaration blocks
	Skip          bool `yaml:"skip" mapstructure:"skip"`                       // turn fix runs into no-ops
	Checkpoint    bool `yaml:"checkpoint" mapstructure:"checkpoint"`           // write pom.xml.step1 after the removal phase
}

// IgnoreConfig keeps selected analyzer findings out of fix runs.
// Entries are groupId:artifactId glob patterns, e.g. "com.example.*:*".
type IgnoreConfig struct {
	Unused []string `yaml:"unused" mapstructure:"unused"` // never remove these even if reported unused
	Used   []string `yaml:"used" mapstructure:"used"`     // never add these even if reported used-undeclared
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Fix: FixConfig{
			FailOnWarning: false,
			VerboseOutput: false,
			Skip:          false,
			Checkpoint:    false,
		},
	}
}

// Options maps the fix section onto fixer options.
func (c *Config) Options() fix.Options {
	return fix.Options{
		FailOnWarning: c.Fix.FailOnWarning,
		VerboseOutput: c.Fix.VerboseOutput,
		Skip:          c.Fix.Skip,
		Checkpoint:    c.Fix.Checkpoint,
	}
}
