// Package constants provides shared constants for the yard-planner application.
package constants

import "time"

// UnknownBlock is the block assigned to containers without a usable position.
const UnknownBlock = "Unknown"

// Container sizing constants
const (
	// TEUTwenty is the TEU weight of a 20ft container
	TEUTwenty = 1

	// TEUFortyPlus is the TEU weight of a 40ft or larger container
	TEUFortyPlus = 2

	// ReeferTEU is the number of TEU-equivalent slots one reefer consumes when planning
	ReeferTEU = 2

	// TwentyFootPrefix is the leading character of a raw size string for 20ft units
	TwentyFootPrefix = '2'

	// ReeferCargoMarker marks a reefer in the raw cargo-type field
	ReeferCargoMarker = "Reefer"

	// ReeferISOMarker marks a reefer in the raw ISO size-type field
	ReeferISOMarker = "R"
)

// Occupancy classification thresholds (percent full)
const (
	// DefaultWarningPercent is the occupancy above which a block is WARNING
	DefaultWarningPercent = 40.0

	// DefaultCriticalPercent is the occupancy at or above which a block is CRITICAL
	DefaultCriticalPercent = 50.0

	// PercentDecimals is the number of decimals kept in occupancy percentages
	PercentDecimals = 1
)

// Allocation planner defaults
const (
	// DefaultPlanningFactor is the average TEU per container used to turn free TEU into a container count
	DefaultPlanningFactor = 1.7

	// DefaultOverflowThreshold is the lot size above which overflow blocks are appended
	DefaultOverflowThreshold = 200
)

// Position parsing modes
const (
	// BlockModePrefix keeps the first two characters of the first position segment
	BlockModePrefix = "prefix"

	// BlockModeFull keeps the whole first position segment
	BlockModeFull = "full"
)

// Bay numbering conventions for the 40ft extension rule
const (
	// BayNumberingSequential numbers bays 1,2,3... and a 40ft unit extends into bay+1
	BayNumberingSequential = "sequential"

	// BayNumberingEven numbers bays 2,4,6... and a 40ft unit extends into bay+2
	BayNumberingEven = "even"
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// EnvPrefix is the prefix for environment overrides of configuration keys
	EnvPrefix = "YARD"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum upload size for inventory files (10 MB)
	DefaultMaxUploadSizeBytes int64 = 10 * 1024 * 1024

	// DefaultShutdownTimeout bounds graceful shutdown of the HTTP server
	DefaultShutdownTimeout = 10 * time.Second

	// ServiceName identifies the service in traces
	ServiceName = "yard-planner"
)
