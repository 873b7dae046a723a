// Package config defines the data structures related to configuration and
// includes functions for loading, normalizing and validating the config.
package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/yard-planner/internal/allocation"
	"github.com/iwvelando/yard-planner/internal/occupancy"
	"github.com/iwvelando/yard-planner/internal/yard"
	"github.com/iwvelando/yard-planner/pkg/constants"
	"github.com/iwvelando/yard-planner/pkg/position"
	"github.com/iwvelando/yard-planner/pkg/validation"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Configuration holds all configuration for yard-planner.
type Configuration struct {
	Logging    LoggingConfig    `yaml:"logging,omitempty"`
	Output     OutputConfig     `yaml:"output,omitempty"`
	Parsing    ParsingConfig    `yaml:"parsing,omitempty"`
	Yard       YardConfig       `yaml:"yard"`
	Thresholds ThresholdsConfig `yaml:"thresholds"`
	Planner    PlannerConfig    `yaml:"planner"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv, json
}

// ParsingConfig controls how slot codes are read.
type ParsingConfig struct {
	BlockMode string `yaml:"blockMode,omitempty"` // prefix, full
}

// YardConfig lists the yard blocks in display order.
type YardConfig struct {
	Blocks []BlockConfig `yaml:"blocks"`
}

// BlockConfig is one yard block: its TEU capacity and physical layout.
type BlockConfig struct {
	Block        string `yaml:"block"`
	CapacityTEU  int    `yaml:"capacityTEU"`
	NumBays      int    `yaml:"numBays,omitempty"`
	NumRows      int    `yaml:"numRows,omitempty"`
	NumTiers     int    `yaml:"numTiers,omitempty"`
	BayNumbering string `yaml:"bayNumbering,omitempty"` // sequential, even
}

// ThresholdsConfig holds the occupancy status bounds in percent.
type ThresholdsConfig struct {
	Warning  float64 `yaml:"warning"`
	Critical float64 `yaml:"critical"`
}

// PlannerConfig holds the allocation policy. Berth keys accept any form
// ParseBerth understands.
type PlannerConfig struct {
	ReeferBlocks      []string            `yaml:"reeferBlocks"`
	Berths            map[string][]string `yaml:"berths"`
	OverflowBlocks    []string            `yaml:"overflowBlocks"`
	OverflowThreshold int                 `yaml:"overflowThreshold"`
	PlanningFactor    float64             `yaml:"planningFactor"`
}

// DefaultConfiguration returns the built-in terminal layout and policy.
func DefaultConfiguration() *Configuration {
	conf := &Configuration{
		Output:  OutputConfig{Format: constants.OutputFormatPretty},
		Parsing: ParsingConfig{BlockMode: constants.BlockModePrefix},
		Thresholds: ThresholdsConfig{
			Warning:  constants.DefaultWarningPercent,
			Critical: constants.DefaultCriticalPercent,
		},
	}
	conf.Yard.Blocks = defaultBlockConfigs()
	conf.Planner = plannerFromPolicy(allocation.DefaultPolicy())
	return conf
}

func defaultBlockConfigs() []BlockConfig {
	defs := yard.DefaultBlocks()
	blocks := make([]BlockConfig, 0, len(defs))
	for _, def := range defs {
		blocks = append(blocks, BlockConfig{
			Block:        def.Block,
			CapacityTEU:  def.CapacityTEU,
			NumBays:      def.Dimensions.NumBays,
			NumRows:      def.Dimensions.NumRows,
			NumTiers:     def.Dimensions.NumTiers,
			BayNumbering: string(def.Dimensions.BayNumbering),
		})
	}
	return blocks
}

func plannerFromPolicy(policy allocation.Policy) PlannerConfig {
	berths := make(map[string][]string, len(policy.BerthPriorities))
	for berth, blocks := range policy.BerthPriorities {
		berths[string(berth)] = append([]string(nil), blocks...)
	}
	return PlannerConfig{
		ReeferBlocks:      append([]string(nil), policy.ReeferBlocks...),
		Berths:            berths,
		OverflowBlocks:    append([]string(nil), policy.OverflowBlocks...),
		OverflowThreshold: policy.OverflowThreshold,
		PlanningFactor:    policy.PlanningFactor,
	}
}

// newViper returns a private viper instance with defaults and YARD_*
// environment overrides, e.g. YARD_PLANNER_PLANNINGFACTOR.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yml")
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("output.format", constants.OutputFormatPretty)
	v.SetDefault("parsing.blockmode", constants.BlockModePrefix)
	v.SetDefault("thresholds.warning", constants.DefaultWarningPercent)
	v.SetDefault("thresholds.critical", constants.DefaultCriticalPercent)
	v.SetDefault("planner.overflowthreshold", constants.DefaultOverflowThreshold)
	v.SetDefault("planner.planningfactor", constants.DefaultPlanningFactor)
	v.SetDefault("logging.level", "")
	v.SetDefault("logging.format", "")
	return v
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}
	return decode(v)
}

// LoadConfigurationFromReader loads a YAML configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config, %s", err)
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}
	configuration.Normalize()
	if err := configuration.Validate(); err != nil {
		return nil, err
	}
	return &configuration, nil
}

// Normalize fills sections left out of the file with the built-in defaults.
// The yard and planner sections are replaced as a whole, never merged.
func (c *Configuration) Normalize() {
	if len(c.Yard.Blocks) == 0 {
		c.Yard.Blocks = defaultBlockConfigs()
	}
	defaults := plannerFromPolicy(allocation.DefaultPolicy())
	if len(c.Planner.Berths) == 0 {
		c.Planner.Berths = defaults.Berths
	}
	if c.Planner.ReeferBlocks == nil {
		c.Planner.ReeferBlocks = defaults.ReeferBlocks
	}
	if c.Planner.OverflowBlocks == nil {
		c.Planner.OverflowBlocks = defaults.OverflowBlocks
	}
	if c.Planner.PlanningFactor == 0 {
		c.Planner.PlanningFactor = defaults.PlanningFactor
	}
	if c.Thresholds == (ThresholdsConfig{}) {
		c.Thresholds = ThresholdsConfig{Warning: constants.DefaultWarningPercent, Critical: constants.DefaultCriticalPercent}
	}
	if c.Output.Format == "" {
		c.Output.Format = constants.OutputFormatPretty
	}
	for i := range c.Yard.Blocks {
		c.Yard.Blocks[i].Block = yard.NormalizeBlock(c.Yard.Blocks[i].Block)
	}
}

// Validate returns the first problem that prevents the configuration from
// being used.
func (c *Configuration) Validate() error {
	if err := validation.ValidateLogLevel(c.Logging.Level); err != nil {
		return err
	}
	if err := validation.ValidateLogFormat(c.Logging.Format); err != nil {
		return err
	}
	if err := validation.ValidateOutputFormat(c.Output.Format); err != nil {
		return err
	}
	if _, err := c.Parser(); err != nil {
		return err
	}
	if err := validation.ValidateThresholds(c.Thresholds.Warning, c.Thresholds.Critical); err != nil {
		return err
	}
	if _, _, err := c.Tables(); err != nil {
		return err
	}
	if _, err := c.Policy(); err != nil {
		return err
	}
	return nil
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string
	for _, block := range c.Yard.Blocks {
		blockWarnings, err := validation.ValidateBlockLayout(block.Block, block.CapacityTEU, block.NumBays, block.NumRows, block.NumTiers)
		if err != nil {
			warnings = append(warnings, err.Error())
			continue
		}
		warnings = append(warnings, blockWarnings...)
	}

	capacities, _, err := c.Tables()
	if err != nil {
		return append(warnings, err.Error())
	}
	policy, err := c.Policy()
	if err != nil {
		return append(warnings, err.Error())
	}
	warnings = append(warnings, policy.Warnings(capacities)...)
	for _, berth := range allocation.Berths() {
		if len(policy.BerthPriorities[berth]) == 0 {
			warnings = append(warnings, fmt.Sprintf("Berth %s has no priority list - dry units go to overflow blocks only", berth))
		}
	}
	return warnings
}

// BlockDefinitions converts the yard section into block definitions.
func (c *Configuration) BlockDefinitions() ([]yard.BlockDefinition, error) {
	defs := make([]yard.BlockDefinition, 0, len(c.Yard.Blocks))
	for _, block := range c.Yard.Blocks {
		if _, err := validation.ValidateBlockLayout(block.Block, block.CapacityTEU, block.NumBays, block.NumRows, block.NumTiers); err != nil {
			return nil, err
		}
		numbering, err := yard.ParseBayNumbering(block.BayNumbering)
		if err != nil {
			return nil, fmt.Errorf("block %s: %w", block.Block, err)
		}
		defs = append(defs, yard.BlockDefinition{
			Block:       block.Block,
			CapacityTEU: block.CapacityTEU,
			Dimensions: yard.Dimensions{
				NumBays:      block.NumBays,
				NumRows:      block.NumRows,
				NumTiers:     block.NumTiers,
				BayNumbering: numbering,
			},
		})
	}
	return defs, nil
}

// Tables builds the immutable capacity and dimension tables.
func (c *Configuration) Tables() (yard.CapacityTable, yard.DimensionsTable, error) {
	defs, err := c.BlockDefinitions()
	if err != nil {
		return yard.CapacityTable{}, yard.DimensionsTable{}, err
	}
	return yard.Tables(defs)
}

// Policy builds the allocation policy.
func (c *Configuration) Policy() (allocation.Policy, error) {
	priorities := make(map[allocation.Berth][]string, len(c.Planner.Berths))
	for key, blocks := range c.Planner.Berths {
		berth, err := allocation.ParseBerth(key)
		if err != nil {
			return allocation.Policy{}, fmt.Errorf("planner berths: %w", err)
		}
		priorities[berth] = append(priorities[berth], blocks...)
	}
	policy := allocation.Policy{
		ReeferBlocks:      c.Planner.ReeferBlocks,
		BerthPriorities:   priorities,
		OverflowBlocks:    c.Planner.OverflowBlocks,
		OverflowThreshold: c.Planner.OverflowThreshold,
		PlanningFactor:    c.Planner.PlanningFactor,
	}
	if err := policy.Validate(); err != nil {
		return allocation.Policy{}, err
	}
	return policy, nil
}

// Parser returns the slot-code parser for the configured block mode.
func (c *Configuration) Parser() (position.Parser, error) {
	mode, err := position.ParseBlockMode(c.Parsing.BlockMode)
	if err != nil {
		return position.Parser{}, err
	}
	return position.NewParser(mode), nil
}

// OccupancyThresholds returns the status bounds.
func (c *Configuration) OccupancyThresholds() occupancy.Thresholds {
	return occupancy.Thresholds{Warning: c.Thresholds.Warning, Critical: c.Thresholds.Critical}
}

// ExportYAML renders the effective configuration.
func (c *Configuration) ExportYAML() ([]byte, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to encode configuration: %w", err)
	}
	return out, nil
}
