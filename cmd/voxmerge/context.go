package main

import (
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"voxmerge/internal/config"
	"voxmerge/internal/logging"
	"voxmerge/internal/pipeline"
	"voxmerge/internal/registry"
	"voxmerge/internal/runlog"
)

// RunLedgerName is the run ledger database inside the output directory.
const RunLedgerName = "runlog.db"

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) newLogger() (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return logging.NewWithLogFile(cfg.Logging.Level, cfg.Logging.Format, cfg.Paths.LogDir)
}

// openRunner builds the pipeline runner with its registry and run ledger.
// Callers must close the returned store.
func (c *commandContext) openRunner(logger *slog.Logger) (*pipeline.Runner, *runlog.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}

	reg := registry.New(cfg.Paths.RegistryPath, logger)
	store, err := runlog.Open(filepath.Join(cfg.Paths.OutputDir, RunLedgerName))
	if err != nil {
		return nil, nil, err
	}
	return pipeline.NewRunner(cfg, logger, reg, store), store, nil
}

func (c *commandContext) openStore() (*runlog.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return runlog.Open(filepath.Join(cfg.Paths.OutputDir, RunLedgerName))
}
