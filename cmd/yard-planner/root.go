package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/iwvelando/yard-planner/internal/allocation"
	"github.com/iwvelando/yard-planner/internal/config"
	"github.com/iwvelando/yard-planner/internal/occupancy"
	"github.com/iwvelando/yard-planner/internal/terminal"
	"github.com/iwvelando/yard-planner/internal/yardmap"
	"github.com/iwvelando/yard-planner/pkg/constants"
	"github.com/iwvelando/yard-planner/pkg/output"
	"github.com/iwvelando/yard-planner/pkg/validation"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// app carries state shared by the subcommands of one invocation.
type app struct {
	flags    *viper.Viper
	logger   *zap.Logger
	terminal *terminal.Terminal
	renderer output.Renderer
}

func newRootCmd() *cobra.Command {
	a := &app{flags: viper.New()}

	root := &cobra.Command{
		Use:   "yard-planner",
		Short: "Export yard occupancy, allocation planning and block maps",
		Long: `yard-planner reads a container inventory export and reports block
occupancy, plans where an incoming lot should be stacked, and draws
top and profile maps of a block.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.String("config", constants.DefaultConfigFile, "path to yard configuration file")
	flags.String("log-level", "", "log level override (debug, info, warn, error)")
	flags.String("output-format", "", "type of output override: pretty, csv, json")

	// Flags may also come from YARD_CONFIG, YARD_LOG_LEVEL and YARD_OUTPUT_FORMAT
	a.flags.SetEnvPrefix(constants.EnvPrefix)
	a.flags.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.flags.AutomaticEnv()
	_ = a.flags.BindPFlags(flags)

	root.AddCommand(
		a.occupancyCmd(),
		a.planCmd(),
		a.mapCmd(),
		a.serveCmd(),
		versionCmd(),
	)
	return root
}

// loadYardConfig reads the yard configuration. A missing file at the
// default location falls back to the built-in yard; an explicit path
// must exist.
func loadYardConfig(path string, explicit bool) (*config.Configuration, error) {
	if path == "" {
		return config.DefaultConfiguration(), nil
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return config.DefaultConfiguration(), nil
		}
		return nil, fmt.Errorf("failed to load configuration at %s: %w", path, err)
	}
	conf, err := config.LoadConfiguration(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration at %s: %w", path, err)
	}
	return conf, nil
}

// setup loads configuration, logging, the terminal and the renderer.
func (a *app) setup(cmd *cobra.Command) error {
	conf, err := loadYardConfig(a.flags.GetString("config"), a.explicit(cmd, "config"))
	if err != nil {
		return err
	}

	logger, err := initializeLogger(conf.Logging, a.flags.GetString("log-level"))
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.logger = logger

	// Determine output format (CLI override takes precedence over config)
	outputFormat := a.flags.GetString("output-format")
	if outputFormat == "" {
		outputFormat = conf.Output.Format
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		return err
	}

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	a.terminal, err = terminal.New(logger, conf)
	if err != nil {
		return err
	}
	a.renderer, err = output.NewRenderer(outputFormat, conf.OccupancyThresholds())
	return err
}

func (a *app) explicit(cmd *cobra.Command, name string) bool {
	if flag := cmd.Flag(name); flag != nil && flag.Changed {
		return true
	}
	_, fromEnv := os.LookupEnv(constants.EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(name, "-", "_")))
	return fromEnv
}

// inventoryFlag registers the --inventory flag shared by the subcommands.
func inventoryFlag(flags *pflag.FlagSet, target *string, usage string) {
	flags.StringVarP(target, "inventory", "i", "", usage)
}

func (a *app) loadInventory(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open inventory: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	if _, err := a.terminal.LoadCSV(file, path); err != nil {
		return fmt.Errorf("failed to load inventory %s: %w", path, err)
	}
	return nil
}

func (a *app) occupancyCmd() *cobra.Command {
	var inventoryPath, sortKey string

	cmd := &cobra.Command{
		Use:   "occupancy",
		Short: "Report per-block occupancy of an inventory export",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if sortKey != "block" && sortKey != "percent" {
				return fmt.Errorf("unsupported sort %q: expected block or percent", sortKey)
			}
			if err := a.setup(cmd); err != nil {
				return err
			}
			if err := a.loadInventory(inventoryPath); err != nil {
				return err
			}

			report, _, err := a.terminal.Occupancy()
			if err != nil {
				return err
			}
			if sortKey == "percent" {
				report.Blocks = occupancy.SortByPercent(report.Blocks)
			}
			return a.renderer.Occupancy(cmd.OutOrStdout(), report)
		},
	}

	inventoryFlag(cmd.Flags(), &inventoryPath, "path to the inventory CSV export")
	cmd.Flags().StringVar(&sortKey, "sort", "block", "sort order: block or percent")
	_ = cmd.MarkFlagRequired("inventory")
	return cmd
}

func (a *app) planCmd() *cobra.Command {
	var (
		inventoryPath string
		berth         string
		request       allocation.Request
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Plan where an incoming export lot should be stacked",
		Example: `  yard-planner plan -i inventory.csv --total 120 --twenty-percent 40 --reefer 6 --berth 1A
  yard-planner plan -i inventory.csv --total 250 --berth 2 --output-format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := allocation.ParseBerth(berth)
			if err != nil {
				return err
			}
			request.Berth = parsed
			if err := request.Validate(); err != nil {
				return err
			}

			if err := a.setup(cmd); err != nil {
				return err
			}
			if err := a.loadInventory(inventoryPath); err != nil {
				return err
			}

			plan, _, err := a.terminal.Plan(request)
			if err != nil {
				return err
			}
			return a.renderer.Plan(cmd.OutOrStdout(), plan)
		},
	}

	flags := cmd.Flags()
	inventoryFlag(flags, &inventoryPath, "path to the inventory CSV export")
	flags.IntVar(&request.TotalCount, "total", 0, "number of containers in the lot")
	flags.IntVar(&request.TwentyPercent, "twenty-percent", 50, "share of 20ft containers in the lot (0-100)")
	flags.IntVar(&request.ReeferCount, "reefer", 0, "number of reefer containers in the lot")
	flags.StringVar(&berth, "berth", "none", "berth the vessel is assigned to (1A, 1B, 2, none)")
	_ = cmd.MarkFlagRequired("inventory")
	_ = cmd.MarkFlagRequired("total")
	return cmd
}

func (a *app) mapCmd() *cobra.Command {
	var inventoryPath string
	var opts yardmap.Options

	cmd := &cobra.Command{
		Use:   "map",
		Short: "Draw top and profile maps of one block",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			block, _ := cmd.Flags().GetString("block")
			if err := a.setup(cmd); err != nil {
				return err
			}
			if err := a.loadInventory(inventoryPath); err != nil {
				return err
			}

			maps, err := a.terminal.Map(block, opts)
			if err != nil {
				return err
			}
			return a.renderer.Map(cmd.OutOrStdout(), maps)
		},
	}

	flags := cmd.Flags()
	inventoryFlag(flags, &inventoryPath, "path to the inventory CSV export")
	flags.StringP("block", "b", "", "block code to draw, for example A1")
	flags.StringVar(&opts.Ship, "ship", "", "only draw containers booked on this vessel")
	_ = cmd.MarkFlagRequired("inventory")
	_ = cmd.MarkFlagRequired("block")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "yard-planner %s\n", version)
		},
	}
}
