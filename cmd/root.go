package cmd

import (
	"github.com/spf13/cobra"

	"github.com/agentgate/agentgate/internal/cmd"
	"github.com/agentgate/agentgate/internal/config"
	"github.com/agentgate/agentgate/internal/flags"
)

var version = "dev" // Set at build time using -ldflags

// RootCmd should be used to represent the root 'agentgate' command.
type RootCmd struct {
	*cmd.BaseCmd
}

// Execute builds the root command and runs it.
func Execute() error {
	rootCmd, err := NewRootCmd(&cmd.BaseCmd{})
	if err != nil {
		return err
	}

	return rootCmd.Execute()
}

// NewRootCmd creates the newly configured root (Cobra) command with all subcommands attached.
func NewRootCmd(baseCmd *cmd.BaseCmd) (*cobra.Command, error) {
	c := &RootCmd{
		BaseCmd: baseCmd,
	}

	rootCmd := &cobra.Command{
		Use:          "agentgate <command> [args]",
		Short:        "'agentgate' runs agent tool invocations against local tool providers with bounded timeouts",
		Long:         c.longDescription(),
		SilenceUsage: true,
		Version:      version,
	}

	// Global flags
	flags.InitFlags(rootCmd.PersistentFlags())

	loader := config.NewValidatingLoader(&config.DefaultLoader{}, config.SchemaPredicate())

	initCmd, err := NewInitCmd(baseCmd)
	if err != nil {
		return nil, err
	}
	daemonCmd, err := NewDaemonCmd(baseCmd, loader)
	if err != nil {
		return nil, err
	}
	queryCmd, err := NewQueryCmd(baseCmd, loader)
	if err != nil {
		return nil, err
	}

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(daemonCmd)
	rootCmd.AddCommand(queryCmd)

	return rootCmd, nil
}

func (c *RootCmd) longDescription() string {
	return `The 'agentgate' CLI launches external tool providers as local subprocesses,
routes agent requests to their tools under strict connect and execution
time budgets, and retries once against a reduced fallback provider set
when the full set fails.`
}
