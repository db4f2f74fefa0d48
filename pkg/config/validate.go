package config

import (
	"fmt"
	"os"
	"strings"
)

// ValidationError describes a single invalid configuration field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Message)
}

// validLogLevels are the accepted logging.level values.
var validLogLevels = map[string]bool{
	"":      true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validLogFormats are the accepted logging.format values.
var validLogFormats = map[string]bool{
	"":     true,
	"text": true,
	"json": true,
}

// Validate checks the configuration for values that cannot work at
// runtime. It returns the first problem found.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return &ValidationError{Field: "port", Message: fmt.Sprintf("must be between 0 and 65535, got %d", c.Port)}
	}
	if c.APIPrefix != "" && !strings.HasPrefix(c.APIPrefix, "/") {
		return &ValidationError{Field: "apiPrefix", Message: "must start with /"}
	}
	if strings.HasSuffix(c.APIPrefix, "/") {
		return &ValidationError{Field: "apiPrefix", Message: "must not end with /"}
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		return &ValidationError{Field: "logging.level", Message: fmt.Sprintf("unknown level %q", c.Logging.Level)}
	}
	if !validLogFormats[strings.ToLower(c.Logging.Format)] {
		return &ValidationError{Field: "logging.format", Message: fmt.Sprintf("unknown format %q", c.Logging.Format)}
	}
	if c.Providers.Scene.MaxActors < 0 {
		return &ValidationError{Field: "providers.scene.maxActors", Message: "must not be negative"}
	}
	if root := c.Providers.Assets.Root; root != "" {
		info, err := os.Stat(root)
		if err == nil && !info.IsDir() {
			return &ValidationError{Field: "providers.assets.root", Message: fmt.Sprintf("not a directory: %s", root)}
		}
	}
	return nil
}
