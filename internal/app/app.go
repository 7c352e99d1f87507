package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/SmileyChris/django-includecontents-sub001/internal/ctxlog"
	"github.com/SmileyChris/django-includecontents-sub001/internal/engine"
	"github.com/SmileyChris/django-includecontents-sub001/internal/fsutil"
	"github.com/SmileyChris/django-includecontents-sub001/internal/hostexpr"
)

// App encapsulates the transpiler's dependencies, configuration, and
// lifecycle.
type App struct {
	outW   io.Writer
	errW   io.Writer
	logger *slog.Logger
	config *Config
	engine *engine.Engine
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger and engine.
func NewApp(outW, logW io.Writer, cfg *Config) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	logger.Debug("Logger configured successfully.")

	root := cfg.TemplatePath
	if fi, err := os.Stat(root); err == nil && !fi.IsDir() {
		root = filepath.Dir(root)
	}

	// Component targets resolve relative to the template root so that
	// <include:card> finds components/card.html next to the sources.
	eng := engine.New(hostexpr.New(), engine.WithSource(
		func(ctx context.Context, target string) (string, error) {
			data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(target)))
			if err != nil {
				return "", err
			}
			return string(data), nil
		},
	))

	return &App{
		outW:   outW,
		errW:   logW,
		logger: logger,
		config: cfg,
		engine: eng,
	}
}

// Engine returns the application's engine. This is primarily for testing.
func (a *App) Engine() *engine.Engine {
	return a.engine
}

// Run transpiles every template under the configured path.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	files, err := a.collectFiles()
	if err != nil {
		return fmt.Errorf("failed to collect templates: %w", err)
	}
	if len(files) == 0 {
		a.logger.Warn("No templates found, nothing to do.", "path", a.config.TemplatePath)
		return nil
	}
	a.logger.Debug("Templates collected.", "count", len(files))

	for _, file := range files {
		if err := a.transpileFile(ctx, file); err != nil {
			return err
		}
	}

	a.logger.Info("Transpile finished.", "templates", len(files))
	return nil
}

func (a *App) collectFiles() ([]string, error) {
	fi, err := os.Stat(a.config.TemplatePath)
	if err != nil {
		return nil, err
	}
	if !fi.IsDir() {
		return []string{a.config.TemplatePath}, nil
	}
	return fsutil.FindTemplates(a.config.TemplatePath, a.config.Extension)
}

func (a *App) transpileFile(ctx context.Context, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	compiled, diags := a.engine.Compile(ctx, path, string(src))
	if diags.HasErrors() {
		return fmt.Errorf("failed to compile %s: %w", path, diags)
	}

	if a.config.OutDir == "" {
		_, err := io.WriteString(a.outW, compiled.Native)
		return err
	}

	rel := filepath.Base(path)
	if fi, statErr := os.Stat(a.config.TemplatePath); statErr == nil && fi.IsDir() {
		if r, relErr := filepath.Rel(a.config.TemplatePath, path); relErr == nil {
			rel = r
		}
	}
	dest := filepath.Join(a.config.OutDir, rel)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory for %s: %w", dest, err)
	}
	if err := os.WriteFile(dest, []byte(compiled.Native), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", dest, err)
	}
	a.logger.Debug("Template transpiled.", "source", path, "dest", dest)
	return nil
}
