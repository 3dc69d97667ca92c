package commands

import (
	"fmt"

	"github.com/dhkang-dev/raceboard/internal/config"
	"github.com/dhkang-dev/raceboard/internal/staging"
)

// CleanCmd implements the 'clean' command.
type CleanCmd struct {
	Dir string `short:"d" help:"Project directory to clean" default:"."`
}

func (c *CleanCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := staging.Clean(c.Dir, cfg.Build.DistDir, cfg.Build.WorkDir); err != nil {
		return err
	}
	fmt.Println("Build artifacts removed")
	return nil
}
