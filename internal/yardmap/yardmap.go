// Package yardmap lays out the containers of one block as slot grids for an
// external renderer: a top view (row x bay) and a tier profile (tier x
// bay/row).
package yardmap

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/iwvelando/yard-planner/internal/inventory"
	"github.com/iwvelando/yard-planner/internal/yard"
	"go.uber.org/zap"
)

// ErrNoDimensions is returned when a block has no usable dimensions.
var ErrNoDimensions = errors.New("block has no dimensions")

// Cell is the state of one slot.
type Cell int

const (
	// CellEmpty is a free slot.
	CellEmpty Cell = iota
	// CellOccupied is the origin slot of a container.
	CellOccupied
	// CellExtension is the second bay covered by a 40ft unit.
	CellExtension
)

// String returns the single-character symbol used in text maps.
func (c Cell) String() string {
	switch c {
	case CellOccupied:
		return "X"
	case CellExtension:
		return "+"
	default:
		return "."
	}
}

// Grid is a rectangular slot grid. Cells is indexed [row][column].
type Grid struct {
	RowLabels    []string `json:"rowLabels"`
	ColumnLabels []string `json:"columnLabels"`
	Cells        [][]Cell `json:"cells"`
}

func newGrid(rows, cols int) Grid {
	cells := make([][]Cell, rows)
	for i := range cells {
		cells[i] = make([]Cell, cols)
	}
	return Grid{
		RowLabels:    make([]string, rows),
		ColumnLabels: make([]string, cols),
		Cells:        cells,
	}
}

// mark sets a cell. Extension markers never overwrite an occupied cell.
func (g Grid) mark(row, col int, cell Cell) {
	if cell == CellExtension && g.Cells[row][col] == CellOccupied {
		return
	}
	g.Cells[row][col] = cell
}

// Count returns the number of cells in the given state.
func (g Grid) Count(cell Cell) int {
	n := 0
	for _, row := range g.Cells {
		for _, c := range row {
			if c == cell {
				n++
			}
		}
	}
	return n
}

// Options narrows the containers drawn on a map.
type Options struct {
	// Ship keeps only containers of this vessel (case-insensitive). Empty keeps all.
	Ship string
}

// Maps is the pair of views for one block.
type Maps struct {
	Block      string          `json:"block"`
	Ship       string          `json:"ship,omitempty"`
	Dimensions yard.Dimensions `json:"dimensions"`
	Top        Grid            `json:"top"`
	// Heights holds the highest occupied tier per row x bay, counting the
	// extension half of 40ft units.
	Heights [][]int `json:"heights"`
	Profile Grid    `json:"profile"`
	Placed  int     `json:"placed"`
	Skipped int     `json:"skipped"`
}

type slot struct {
	bay, row, tier int
}

// Build draws the records of one block. Records from other blocks, other
// ships, or without a usable coordinate are ignored; coordinates outside
// the block's dimensions are counted as skipped.
func Build(records []inventory.Record, block string, dims yard.Dimensions, opts Options) (Maps, error) {
	block = yard.NormalizeBlock(block)
	if !dims.Valid() {
		return Maps{}, fmt.Errorf("%w: %s", ErrNoDimensions, block)
	}
	ship := strings.TrimSpace(opts.Ship)

	maps := Maps{
		Block:      block,
		Ship:       ship,
		Dimensions: dims,
		Top:        newGrid(dims.NumRows, dims.NumBays),
		Heights:    make([][]int, dims.NumRows),
		Profile:    newGrid(dims.NumTiers, dims.NumBays*dims.NumRows),
	}
	for r := range maps.Heights {
		maps.Heights[r] = make([]int, dims.NumBays)
		maps.Top.RowLabels[r] = strconv.Itoa(r + 1)
	}
	for b := 0; b < dims.NumBays; b++ {
		maps.Top.ColumnLabels[b] = fmt.Sprintf("%02d", dims.BayLabel(b))
		for r := 0; r < dims.NumRows; r++ {
			maps.Profile.ColumnLabels[b*dims.NumRows+r] = fmt.Sprintf("%02d-%d", dims.BayLabel(b), r+1)
		}
	}
	for t := 0; t < dims.NumTiers; t++ {
		maps.Profile.RowLabels[t] = strconv.Itoa(dims.NumTiers - t)
	}

	for _, rec := range records {
		if !rec.HasCoordinate() || yard.NormalizeBlock(rec.Block) != block {
			continue
		}
		if ship != "" && !strings.EqualFold(strings.TrimSpace(rec.ShipName), ship) {
			continue
		}
		primary, ok := locate(rec, dims)
		if !ok {
			maps.Skipped++
			continue
		}
		maps.draw(primary, CellOccupied)
		maps.Placed++

		if rec.SizeClass != inventory.SizeFortyPlus {
			continue
		}
		label := dims.NextBay(dims.BayLabel(primary.bay))
		if next, ok := dims.BayIndex(label); ok {
			maps.draw(slot{bay: next, row: primary.row, tier: primary.tier}, CellExtension)
		}
	}
	return maps, nil
}

func (m *Maps) draw(s slot, cell Cell) {
	rows := m.Dimensions.NumRows
	tiers := m.Dimensions.NumTiers
	m.Top.mark(s.row, s.bay, cell)
	m.Profile.mark(tiers-1-s.tier, s.bay*rows+s.row, cell)
	if h := s.tier + 1; h > m.Heights[s.row][s.bay] {
		m.Heights[s.row][s.bay] = h
	}
}

// locate converts a record's coordinate into zero-based grid indexes.
func locate(rec inventory.Record, dims yard.Dimensions) (slot, bool) {
	c := rec.Coordinate
	bayLabel, err := strconv.Atoi(strings.TrimSpace(c.Bay))
	if err != nil {
		return slot{}, false
	}
	bay, ok := dims.BayIndex(bayLabel)
	if !ok {
		return slot{}, false
	}
	row, err := strconv.Atoi(strings.TrimSpace(c.Row))
	if err != nil || row < 1 || row > dims.NumRows {
		return slot{}, false
	}
	if c.Tier < 1 || c.Tier > dims.NumTiers {
		return slot{}, false
	}
	return slot{bay: bay, row: row - 1, tier: c.Tier - 1}, true
}

// Builder resolves block dimensions from configuration and logs
// configuration gaps.
type Builder struct {
	logger *zap.Logger
	dims   yard.DimensionsTable
}

// NewBuilder returns a Builder over the given dimensions table.
func NewBuilder(logger *zap.Logger, dims yard.DimensionsTable) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{logger: logger, dims: dims}
}

// Build looks up the block's dimensions and draws its maps.
func (b *Builder) Build(records []inventory.Record, block string, opts Options) (Maps, error) {
	block = yard.NormalizeBlock(block)
	dims, ok := b.dims.Lookup(block)
	if !ok {
		b.logger.Warn("block has no dimensions configured",
			zap.String("op", "yardmap.Build"),
			zap.String("block", block),
		)
		return Maps{}, fmt.Errorf("%w: %s", ErrNoDimensions, block)
	}

	maps, err := Build(records, block, dims, opts)
	if err != nil {
		return Maps{}, err
	}
	if maps.Skipped > 0 {
		b.logger.Info("coordinates outside block dimensions skipped",
			zap.String("op", "yardmap.Build"),
			zap.String("block", block),
			zap.Int("skipped", maps.Skipped),
		)
	}
	b.logger.Debug("yard map built",
		zap.String("op", "yardmap.Build"),
		zap.String("block", block),
		zap.String("ship", maps.Ship),
		zap.Int("placed", maps.Placed),
	)
	return maps, nil
}
