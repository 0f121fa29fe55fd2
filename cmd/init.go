package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentgate/agentgate/internal/cmd"
	"github.com/agentgate/agentgate/internal/config"
	"github.com/agentgate/agentgate/internal/flags"
)

// InitCmd should be used to represent the 'init' command.
type InitCmd struct {
	*cmd.BaseCmd
	cfgInitializer config.Initializer
}

// NewInitCmd creates a newly configured (Cobra) command.
func NewInitCmd(baseCmd *cmd.BaseCmd) (*cobra.Command, error) {
	c := &InitCmd{
		BaseCmd:        baseCmd,
		cfgInitializer: &config.DefaultLoader{},
	}

	cobraCommand := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new agentgate project configuration file",
		Long: "Initialize a new agentgate project configuration file in the current directory, " +
			"or at the path given by --config-file",
		RunE: c.run,
	}

	return cobraCommand, nil
}

// run is configured (via NewInitCmd) to be called by the Cobra framework when the command is executed.
func (c *InitCmd) run(cobraCmd *cobra.Command, _ []string) error {
	path := flags.ConfigFile

	if err := c.cfgInitializer.Init(path); err != nil {
		return fmt.Errorf("failed to initialize config file: %w", err)
	}

	_, _ = fmt.Fprintf(cobraCmd.OutOrStdout(), "Created %s\n", path)

	return nil
}
