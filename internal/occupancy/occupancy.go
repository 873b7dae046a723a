// Package occupancy aggregates container records into per-block TEU load
// and classifies how full each block is.
package occupancy

import (
	"sort"

	"github.com/iwvelando/yard-planner/internal/inventory"
	"github.com/iwvelando/yard-planner/internal/yard"
	"github.com/iwvelando/yard-planner/pkg/constants"
	"github.com/iwvelando/yard-planner/pkg/mathutil"
	"go.uber.org/zap"
)

// Status is the colour class of a block's occupancy.
type Status string

const (
	StatusOK       Status = "OK"
	StatusWarning  Status = "WARNING"
	StatusCritical Status = "CRITICAL"
)

// Thresholds holds the exclusive lower bounds for WARNING and CRITICAL.
type Thresholds struct {
	Warning  float64 `json:"warning" yaml:"warning"`
	Critical float64 `json:"critical" yaml:"critical"`
}

// DefaultThresholds returns >40 WARNING and >=50 CRITICAL.
func DefaultThresholds() Thresholds {
	return Thresholds{Warning: constants.DefaultWarningPercent, Critical: constants.DefaultCriticalPercent}
}

// Classify maps a percent-full value onto a Status. 40.0 is OK, 40.1 is
// WARNING, 50.0 and above are CRITICAL.
func Classify(percentFull float64) Status {
	return DefaultThresholds().Classify(percentFull)
}

// Classify applies these thresholds. The critical bound is inclusive.
func (t Thresholds) Classify(percentFull float64) Status {
	switch {
	case percentFull >= t.Critical:
		return StatusCritical
	case percentFull > t.Warning:
		return StatusWarning
	default:
		return StatusOK
	}
}

// BlockOccupancy is the load of one block, recomputed wholesale from records.
type BlockOccupancy struct {
	Block          string  `json:"block"`
	CapacityTEU    int     `json:"capacityTEU"`
	UsedTEU        int     `json:"usedTEU"`
	PercentFull    float64 `json:"percentFull"`
	CountTwenty    int     `json:"countTwenty"`
	CountFortyPlus int     `json:"countFortyPlus"`
	ReeferCount    int     `json:"reeferCount"`
}

// RemainingTEU is capacity minus used; negative when over capacity.
func (b BlockOccupancy) RemainingTEU() int {
	return b.CapacityTEU - b.UsedTEU
}

// Aggregate returns one entry per capacity-table block, in table order.
// Records whose block is not in the table are ignored.
func Aggregate(records []inventory.Record, capacities yard.CapacityTable) []BlockOccupancy {
	type tally struct {
		teu, twenty, forty, reefer int
	}
	tallies := make(map[string]*tally, capacities.Len())
	for _, block := range capacities.Blocks() {
		tallies[block] = &tally{}
	}

	for _, record := range records {
		t, ok := tallies[record.Block]
		if !ok {
			continue
		}
		t.teu += record.TEU
		if record.SizeClass == inventory.SizeTwenty {
			t.twenty++
		} else {
			t.forty++
		}
		if record.IsReefer {
			t.reefer++
		}
	}

	result := make([]BlockOccupancy, 0, capacities.Len())
	for _, entry := range capacities.Entries() {
		t := tallies[entry.Block]
		result = append(result, BlockOccupancy{
			Block:          entry.Block,
			CapacityTEU:    entry.CapacityTEU,
			UsedTEU:        t.teu,
			PercentFull:    mathutil.Percent(t.teu, entry.CapacityTEU),
			CountTwenty:    t.twenty,
			CountFortyPlus: t.forty,
			ReeferCount:    t.reefer,
		})
	}
	return result
}

// UnmappedBlocks counts records whose block is missing from the capacity
// table, excluding the Unknown block.
func UnmappedBlocks(records []inventory.Record, capacities yard.CapacityTable) map[string]int {
	gaps := make(map[string]int)
	for _, record := range records {
		if record.Block == constants.UnknownBlock || capacities.Has(record.Block) {
			continue
		}
		gaps[record.Block]++
	}
	return gaps
}

// UnmappedBlockCodes returns the keys of an UnmappedBlocks result in block
// order.
func UnmappedBlockCodes(gaps map[string]int) []string {
	codes := make([]string, 0, len(gaps))
	for block := range gaps {
		codes = append(codes, block)
	}
	sort.Strings(codes)
	return codes
}

// Report is an aggregation plus yard totals and data-quality counts.
type Report struct {
	Blocks         []BlockOccupancy `json:"blocks"`
	TotalTEU       int              `json:"totalTEU"`
	TotalCapacity  int              `json:"totalCapacity"`
	PercentFull    float64          `json:"percentFull"`
	Containers     int              `json:"containers"`
	UnknownCount   int              `json:"unknownCount"`
	UnmappedBlocks map[string]int   `json:"unmappedBlocks,omitempty"`
}

// Summarize aggregates records and logs configuration gaps.
func Summarize(logger *zap.Logger, records []inventory.Record, capacities yard.CapacityTable) Report {
	if logger == nil {
		logger = zap.NewNop()
	}

	report := Report{
		Blocks:        Aggregate(records, capacities),
		TotalCapacity: capacities.TotalCapacity(),
		Containers:    len(records),
	}
	for _, record := range records {
		report.TotalTEU += record.TEU
		if record.Block == constants.UnknownBlock {
			report.UnknownCount++
		}
	}
	usedInTable := 0
	for _, block := range report.Blocks {
		usedInTable += block.UsedTEU
	}
	report.PercentFull = mathutil.Percent(usedInTable, report.TotalCapacity)

	if gaps := UnmappedBlocks(records, capacities); len(gaps) > 0 {
		report.UnmappedBlocks = gaps
		for _, block := range UnmappedBlockCodes(gaps) {
			logger.Warn("records reference a block missing from the capacity table",
				zap.String("op", "occupancy.Summarize"),
				zap.String("block", block),
				zap.Int("records", gaps[block]),
			)
		}
	}

	logger.Debug("aggregated yard occupancy",
		zap.String("op", "occupancy.Summarize"),
		zap.Int("containers", report.Containers),
		zap.Int("teu", report.TotalTEU),
		zap.Float64("percentFull", report.PercentFull),
	)
	return report
}

// SortByPercent returns a copy ordered by percent full, highest first, ties
// broken by block code.
func SortByPercent(blocks []BlockOccupancy) []BlockOccupancy {
	sorted := make([]BlockOccupancy, len(blocks))
	copy(sorted, blocks)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].PercentFull != sorted[j].PercentFull {
			return sorted[i].PercentFull > sorted[j].PercentFull
		}
		return sorted[i].Block < sorted[j].Block
	})
	return sorted
}
