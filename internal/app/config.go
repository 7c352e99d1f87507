package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// TemplatePath is a single template file or a directory searched
	// recursively for templates.
	TemplatePath string
	// OutDir receives transpiled output mirroring the input layout. Empty
	// writes everything to the app's output writer instead.
	OutDir string
	// Extension selects which files a directory walk picks up.
	Extension string

	LogFormat string
	LogLevel  string
}

// NewConfig validates a Config and fills its defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.TemplatePath == "" {
		return nil, errors.New("TemplatePath is a required configuration field and cannot be empty")
	}
	if cfg.Extension == "" {
		cfg.Extension = ".html"
	}
	return &cfg, nil
}
