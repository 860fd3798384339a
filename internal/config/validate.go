package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/scottrw93/maven-plugins/internal/analyze"
)

// ErrInvalidIgnorePattern indicates an ignore glob that does not compile.
var ErrInvalidIgnorePattern = errors.New("invalid ignore pattern")

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	for _, patterns := range [][]string{cfg.Ignore.Unused, cfg.Ignore.Used} {
		if _, err := analyze.NewFilter(patterns); err != nil {
			errs = append(errs, fmt.Errorf("%w: %v", ErrInvalidIgnorePattern, err))
		}
	}

	if len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, err := range errs {
			msgs[i] = err.Error()
		}
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
	}
	return nil
}
