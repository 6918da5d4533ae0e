// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oreflot/flotation-mcp/internal/config"
	"github.com/oreflot/flotation-mcp/internal/logger"
	"github.com/oreflot/flotation-mcp/internal/predict"
	"github.com/oreflot/flotation-mcp/internal/sheet"
	"github.com/oreflot/flotation-mcp/internal/source"
	"github.com/oreflot/flotation-mcp/internal/source/parsers"
)

// app holds what every command needs, built from the persistent flags.
type app struct {
	cfg       *config.Config
	log       logger.Logger
	predictor predict.Predictor
	pipeline  *source.Pipeline
	library   sheet.Library
}

func setup(cmd *cobra.Command) (*app, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}

	overrides := map[string]any{}
	if cmd.Flags().Changed("log-level") {
		level, _ := cmd.Flags().GetString("log-level")
		overrides["log.level"] = level
	}
	if cmd.Flags().Changed("log-json") {
		asJSON, _ := cmd.Flags().GetBool("log-json")
		overrides["log.json"] = asJSON
	}

	cfg, err := config.Load(path, overrides)
	if err != nil {
		return nil, err
	}

	logCfg := logger.DefaultConfig()
	logCfg.Level = logger.ParseLevel(cfg.Log.Level)
	logCfg.JSON = cfg.Log.JSON
	logCfg.Output = cmd.ErrOrStderr()
	log := logger.NewLogger(logCfg)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logger.ContextWithLogger(ctx, log))

	model, err := loadModel(cfg.Paths.ModelFile)
	if err != nil {
		return nil, err
	}
	log.Debug("model loaded", "name", model.Name, "file", cfg.Paths.ModelFile)

	return &app{
		cfg:       cfg,
		log:       log,
		predictor: model,
		pipeline:  parsers.Default(),
		library: sheet.Library{
			DataDir:     cfg.Paths.DataDir,
			DownloadDir: cfg.Paths.DownloadDir,
		},
	}, nil
}

func loadModel(path string) (*predict.LinearModel, error) {
	if path == "" {
		return predict.DefaultModel()
	}
	return predict.LoadModel(path)
}
