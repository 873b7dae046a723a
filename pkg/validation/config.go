// Package validation provides configuration validation utilities.
package validation

import (
	"fmt"
	"strings"
)

// ValidateThresholds checks the occupancy status bounds.
func ValidateThresholds(warning, critical float64) error {
	if warning < 0 || warning > 100 {
		return fmt.Errorf("warning threshold must be between 0 and 100, got %v", warning)
	}
	if critical < 0 || critical > 100 {
		return fmt.Errorf("critical threshold must be between 0 and 100, got %v", critical)
	}
	if warning >= critical {
		return fmt.Errorf("warning threshold (%v) must be below critical threshold (%v)", warning, critical)
	}
	return nil
}

// ValidateBlockLayout checks one yard block entry. Hard problems are returned
// as an error; layouts that only limit the yard map are returned as warnings.
func ValidateBlockLayout(block string, capacityTEU, bays, rows, tiers int) ([]string, error) {
	if strings.TrimSpace(block) == "" {
		return nil, fmt.Errorf("block code is empty")
	}
	if capacityTEU < 0 {
		return nil, fmt.Errorf("block %s: capacity must not be negative, got %d", block, capacityTEU)
	}
	if bays < 0 || rows < 0 || tiers < 0 {
		return nil, fmt.Errorf("block %s: dimensions must not be negative (%dx%dx%d)", block, bays, rows, tiers)
	}

	var warnings []string
	if capacityTEU == 0 {
		warnings = append(warnings, fmt.Sprintf("Block '%s' has zero capacity and will always report 0%%", block))
	}
	if bays == 0 || rows == 0 || tiers == 0 {
		warnings = append(warnings, fmt.Sprintf("Block '%s' has no dimensions - yard map unavailable", block))
		return warnings, nil
	}
	if slots := bays * rows * tiers; capacityTEU > slots {
		warnings = append(warnings, fmt.Sprintf("Block '%s' capacity %d TEU exceeds its %d ground slots x tiers",
			block, capacityTEU, slots))
	}
	return warnings, nil
}

// ValidateBlockReferences reports blocks in a list that are not known.
func ValidateBlockReferences(scope string, blocks []string, known func(string) bool) []string {
	var warnings []string
	for _, block := range blocks {
		if !known(block) {
			warnings = append(warnings, fmt.Sprintf("%s references block %s which has no capacity entry", scope, block))
		}
	}
	return warnings
}
