// Package yard holds the static yard configuration: the TEU capacity of each
// block and the physical bay/row/tier dimensions used for yard maps. Tables
// are immutable once built and safe to share between requests.
package yard

import (
	"fmt"
	"strings"

	"github.com/iwvelando/yard-planner/pkg/constants"
)

// BlockCapacity is one entry of the capacity table.
type BlockCapacity struct {
	Block       string `json:"block" yaml:"block"`
	CapacityTEU int    `json:"capacityTEU" yaml:"capacityTEU"`
}

// CapacityTable maps block codes to TEU capacity, preserving declaration order.
type CapacityTable struct {
	entries []BlockCapacity
	index   map[string]int
}

// NewCapacityTable builds a table. Block codes are upper-cased; duplicates
// and empty codes are rejected.
func NewCapacityTable(entries []BlockCapacity) (CapacityTable, error) {
	table := CapacityTable{
		entries: make([]BlockCapacity, 0, len(entries)),
		index:   make(map[string]int, len(entries)),
	}
	for i, entry := range entries {
		block := NormalizeBlock(entry.Block)
		if block == "" {
			return CapacityTable{}, fmt.Errorf("capacity entry %d: block code is empty", i)
		}
		if _, exists := table.index[block]; exists {
			return CapacityTable{}, fmt.Errorf("capacity entry %d: duplicate block %s", i, block)
		}
		if entry.CapacityTEU < 0 {
			return CapacityTable{}, fmt.Errorf("capacity entry %d: block %s has negative capacity %d", i, block, entry.CapacityTEU)
		}
		table.index[block] = len(table.entries)
		table.entries = append(table.entries, BlockCapacity{Block: block, CapacityTEU: entry.CapacityTEU})
	}
	return table, nil
}

// Entries returns a copy of the table in declaration order.
func (t CapacityTable) Entries() []BlockCapacity {
	out := make([]BlockCapacity, len(t.entries))
	copy(out, t.entries)
	return out
}

// Blocks returns the block codes in declaration order.
func (t CapacityTable) Blocks() []string {
	blocks := make([]string, len(t.entries))
	for i, entry := range t.entries {
		blocks[i] = entry.Block
	}
	return blocks
}

// Capacity returns the TEU capacity of a block and whether it is in the table.
func (t CapacityTable) Capacity(block string) (int, bool) {
	i, ok := t.index[NormalizeBlock(block)]
	if !ok {
		return 0, false
	}
	return t.entries[i].CapacityTEU, true
}

// Has reports whether the block is in the table.
func (t CapacityTable) Has(block string) bool {
	_, ok := t.index[NormalizeBlock(block)]
	return ok
}

// Len returns the number of blocks.
func (t CapacityTable) Len() int {
	return len(t.entries)
}

// TotalCapacity sums all block capacities.
func (t CapacityTable) TotalCapacity() int {
	total := 0
	for _, entry := range t.entries {
		total += entry.CapacityTEU
	}
	return total
}

// NormalizeBlock trims and upper-cases a block code.
func NormalizeBlock(block string) string {
	return strings.ToUpper(strings.TrimSpace(block))
}

// BayNumbering selects how adjacent bays are labelled.
type BayNumbering string

const (
	// BaySequential labels bays 1..numBays.
	BaySequential BayNumbering = constants.BayNumberingSequential
	// BayEven labels bays 2,4..2*numBays.
	BayEven BayNumbering = constants.BayNumberingEven
)

// ParseBayNumbering converts a configuration value. Empty selects BaySequential.
func ParseBayNumbering(value string) (BayNumbering, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", constants.BayNumberingSequential:
		return BaySequential, nil
	case constants.BayNumberingEven:
		return BayEven, nil
	default:
		return "", fmt.Errorf("invalid bay numbering %q: expected %s or %s", value, constants.BayNumberingSequential, constants.BayNumberingEven)
	}
}

// Dimensions describes the physical layout of a block.
type Dimensions struct {
	NumBays      int          `json:"numBays" yaml:"numBays"`
	NumRows      int          `json:"numRows" yaml:"numRows"`
	NumTiers     int          `json:"numTiers" yaml:"numTiers"`
	BayNumbering BayNumbering `json:"bayNumbering" yaml:"bayNumbering"`
}

// Valid reports whether every axis has at least one slot.
func (d Dimensions) Valid() bool {
	return d.NumBays > 0 && d.NumRows > 0 && d.NumTiers > 0
}

// BayIndex converts a bay label into a zero-based column, false when the
// label is not a bay of this block.
func (d Dimensions) BayIndex(label int) (int, bool) {
	var idx int
	switch d.BayNumbering {
	case BayEven:
		if label <= 0 || label%2 != 0 {
			return 0, false
		}
		idx = label/2 - 1
	default:
		idx = label - 1
	}
	if idx < 0 || idx >= d.NumBays {
		return 0, false
	}
	return idx, true
}

// BayLabel is the inverse of BayIndex.
func (d Dimensions) BayLabel(idx int) int {
	if d.BayNumbering == BayEven {
		return (idx + 1) * 2
	}
	return idx + 1
}

// NextBay returns the label of the bay a 40ft unit extends into.
func (d Dimensions) NextBay(label int) int {
	if d.BayNumbering == BayEven {
		return label + 2
	}
	return label + 1
}

// DimensionsTable maps block codes to their dimensions.
type DimensionsTable struct {
	dims map[string]Dimensions
}

// NewDimensionsTable copies the given map into an immutable table.
func NewDimensionsTable(dims map[string]Dimensions) DimensionsTable {
	table := DimensionsTable{dims: make(map[string]Dimensions, len(dims))}
	for block, d := range dims {
		if d.BayNumbering == "" {
			d.BayNumbering = BaySequential
		}
		table.dims[NormalizeBlock(block)] = d
	}
	return table
}

// Lookup returns the dimensions of a block.
func (t DimensionsTable) Lookup(block string) (Dimensions, bool) {
	d, ok := t.dims[NormalizeBlock(block)]
	return d, ok
}

// Len returns the number of blocks with dimensions.
func (t DimensionsTable) Len() int {
	return len(t.dims)
}
