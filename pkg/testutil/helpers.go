// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/iwvelando/yard-planner/internal/allocation"
	"github.com/iwvelando/yard-planner/internal/occupancy"
)

// FindBlock finds a block by code in an occupancy slice.
// Returns a pointer to the entry if found, nil otherwise.
func FindBlock(blocks []occupancy.BlockOccupancy, block string) *occupancy.BlockOccupancy {
	for i := range blocks {
		if blocks[i].Block == block {
			return &blocks[i]
		}
	}
	return nil
}

// FindLine finds the first placement line for a block.
// Returns a pointer to the line if found, nil otherwise.
func FindLine(lines []allocation.PlacementLine, block string) *allocation.PlacementLine {
	for i := range lines {
		if lines[i].Block == block {
			return &lines[i]
		}
	}
	return nil
}
