package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/agentgate/agentgate/internal/agent"
	"github.com/agentgate/agentgate/internal/api"
	"github.com/agentgate/agentgate/internal/cmd"
	"github.com/agentgate/agentgate/internal/config"
	"github.com/agentgate/agentgate/internal/domain"
	"github.com/agentgate/agentgate/internal/flags"
	"github.com/agentgate/agentgate/internal/invoke"
	"github.com/agentgate/agentgate/internal/provider"
)

const (
	queryClientName    = "agentgate"
	queryClientVersion = "1.0.0"
)

// QueryCmd should be used to represent the 'query' command.
type QueryCmd struct {
	*cmd.BaseCmd
	Providers      []string
	Fallback       []string
	ConnectTimeout time.Duration
	ExecTimeout    time.Duration
	Format         cmd.OutputFormat
	cfgLoader      config.Loader
}

// NewQueryCmd creates a newly configured (Cobra) command.
func NewQueryCmd(baseCmd *cmd.BaseCmd, cfgLoader config.Loader) (*cobra.Command, error) {
	c := &QueryCmd{
		BaseCmd:   baseCmd,
		Format:    cmd.FormatText,
		cfgLoader: cfgLoader,
	}

	cobraCommand := &cobra.Command{
		Use:   "query <prompt>",
		Short: "Run a one-shot agent invocation against configured tool providers",
		Long: "Run a one-shot agent invocation against configured tool providers, " +
			"with bounded connect and execution timeouts and a single fallback retry",
		Args: cobra.MinimumNArgs(1),
		RunE: c.run,
	}

	cobraCommand.Flags().StringSliceVar(
		&c.Providers,
		"providers",
		nil,
		"Provider names to use (default: all configured providers)",
	)

	cobraCommand.Flags().StringSliceVar(
		&c.Fallback,
		"fallback",
		nil,
		"Fallback provider names tried once after a failure (default: configured fallback)",
	)

	cobraCommand.Flags().DurationVar(
		&c.ConnectTimeout,
		"connect-timeout",
		0,
		"Time budget for starting all providers (default: configured or 10s)",
	)

	cobraCommand.Flags().DurationVar(
		&c.ExecTimeout,
		"exec-timeout",
		0,
		"Time budget for the agent request once providers are up (default: configured or 60s)",
	)

	allowedFormats := cmd.AllowedOutputFormats()
	cobraCommand.Flags().Var(
		&c.Format,
		"format",
		fmt.Sprintf("Output format, one of: %s", allowedFormats.String()),
	)

	return cobraCommand, nil
}

// run is configured (via NewQueryCmd) to be called by the Cobra framework when the command is executed.
func (c *QueryCmd) run(cobraCmd *cobra.Command, args []string) error {
	logger := c.Logger()

	prompt := strings.TrimSpace(strings.Join(args, " "))
	if prompt == "" {
		return fmt.Errorf("prompt cannot be empty")
	}

	cfg, err := c.cfgLoader.Load(flags.ConfigFile)
	if err != nil {
		return err
	}

	primary, err := selectProviders(cfg, c.Providers)
	if err != nil {
		return err
	}
	if len(primary) == 0 {
		return fmt.Errorf("no providers configured, run: 'agentgate init' and add providers")
	}

	fallbackNames := c.Fallback
	if len(fallbackNames) == 0 {
		fallbackNames = cfg.FallbackProviders()
	}
	secondary, err := selectProviders(cfg, fallbackNames)
	if err != nil {
		return err
	}

	timeouts := cfg.TimeoutConfig()
	connectTimeout := c.ConnectTimeout
	if connectTimeout == 0 {
		connectTimeout = timeouts.Connect.Or(10 * time.Second)
	}
	execTimeout := c.ExecTimeout
	if execTimeout == 0 {
		execTimeout = timeouts.Exec.Or(60 * time.Second)
	}

	launcher, err := provider.NewStdioLauncher(logger, queryClientName, queryClientVersion)
	if err != nil {
		return err
	}
	dispatcher, err := agent.NewDispatcher(logger)
	if err != nil {
		return err
	}
	invoker, err := invoke.NewInvoker(logger, launcher, dispatcher)
	if err != nil {
		return err
	}
	coordinator, err := invoke.NewCoordinator(logger, invoker)
	if err != nil {
		return err
	}

	outcome := coordinator.InvokeWithFallback(
		cobraCmd.Context(),
		primary,
		secondary,
		prompt,
		connectTimeout,
		execTimeout,
	)

	rendered, err := c.renderOutcome(outcome)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cobraCmd.OutOrStdout(), rendered)

	if !outcome.Success {
		return fmt.Errorf("invocation failed (%s): %s", outcome.Failure, outcome.Message)
	}

	return nil
}

func (c *QueryCmd) renderOutcome(outcome domain.InvocationOutcome) (string, error) {
	if c.Format == cmd.FormatText {
		if outcome.Success {
			return outcome.Output, nil
		}
		return fmt.Sprintf("failure: %s (%s)", outcome.Message, outcome.Failure), nil
	}

	data, err := api.DomainOutcome(outcome).ToAPIType()
	if err != nil {
		return "", err
	}

	return c.Format.Render(data)
}

// selectProviders maps configured entry names to domain provider configs,
// preserving the order given by names.
func selectProviders(cfg config.Modifier, names []string) ([]domain.ProviderConfig, error) {
	entries := cfg.ListProviders()

	if len(names) == 0 {
		configs := make([]domain.ProviderConfig, 0, len(entries))
		for _, entry := range entries {
			configs = append(configs, entry.ToProviderConfig())
		}
		return configs, nil
	}

	byName := make(map[string]config.ProviderEntry, len(entries))
	for _, entry := range entries {
		byName[entry.Name] = entry
	}

	configs := make([]domain.ProviderConfig, 0, len(names))
	for _, name := range names {
		entry, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("provider '%s' not found in config", name)
		}
		configs = append(configs, entry.ToProviderConfig())
	}

	return configs, nil
}
