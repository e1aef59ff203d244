package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/islandtune/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup creates the config file from the embedded template when missing, then initializes the
// tune library and runs migrations.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if _, err := os.Stat(configPath); err != nil {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}
		r.logger.Info("config file created", "path", configPath)
	}

	config, err := shared.LoadConfig(configPath)
	if err != nil {
		return err
	}
	r.config = config
	r.configPath = configPath

	if r.db == nil {
		r.logger.Info("initializing tune library", "path", config.Database.Path)
	}
	if _, err := r.library(); err != nil {
		return fmt.Errorf("failed to initialize tune library: %w", err)
	}

	r.logger.Infof("setup complete for database: %v", config.Database.Path)
	return r.writePlain("✓ Config: %s\n✓ Library: %s\n", configPath, config.Database.Path)
}
