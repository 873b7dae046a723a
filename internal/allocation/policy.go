package allocation

import (
	"fmt"

	"github.com/iwvelando/yard-planner/internal/yard"
	"github.com/iwvelando/yard-planner/pkg/constants"
	"github.com/iwvelando/yard-planner/pkg/validation"
)

// Policy holds the planner's priority lists and constants as data.
type Policy struct {
	// ReeferBlocks are tried in order for reefer units and are never used for dry units.
	ReeferBlocks []string `json:"reeferBlocks" yaml:"reeferBlocks"`
	// BerthPriorities maps each berth to its dry blocks, nearest first.
	BerthPriorities map[Berth][]string `json:"berthPriorities" yaml:"berthPriorities"`
	// OverflowBlocks are appended for lots larger than OverflowThreshold.
	OverflowBlocks []string `json:"overflowBlocks" yaml:"overflowBlocks"`
	// OverflowThreshold is the lot size above which overflow blocks are used.
	OverflowThreshold int `json:"overflowThreshold" yaml:"overflowThreshold"`
	// PlanningFactor is the average TEU per dry container.
	PlanningFactor float64 `json:"planningFactor" yaml:"planningFactor"`
}

// DefaultPolicy returns the terminal's standing allocation rules.
func DefaultPolicy() Policy {
	return Policy{
		ReeferBlocks: []string{"I1", "I2"},
		BerthPriorities: map[Berth][]string{
			Berth1A:   {"A1", "B1", "A0", "C1", "D1"},
			Berth1B:   {"C1", "D1", "B1", "A1", "H0"},
			Berth2:    {"A2", "B2", "C2", "D2", "E2"},
			BerthNone: {"A1", "B1", "C1", "D1", "A2", "B2", "C2", "D2", "A0", "H0"},
		},
		OverflowBlocks:    []string{"E1", "F2", "E2", "H0", "I0"},
		OverflowThreshold: constants.DefaultOverflowThreshold,
		PlanningFactor:    constants.DefaultPlanningFactor,
	}
}

// Validate rejects policies the planner cannot run.
func (p Policy) Validate() error {
	if p.PlanningFactor <= 0 {
		return fmt.Errorf("planning factor must be positive, got %v", p.PlanningFactor)
	}
	if p.OverflowThreshold < 0 {
		return fmt.Errorf("overflow threshold must not be negative, got %d", p.OverflowThreshold)
	}
	for berth := range p.BerthPriorities {
		if _, err := ParseBerth(string(berth)); err != nil {
			return fmt.Errorf("berth priorities: %w", err)
		}
	}
	return nil
}

// Warnings lists blocks referenced by the policy but missing from the table.
func (p Policy) Warnings(capacities yard.CapacityTable) []string {
	warnings := validation.ValidateBlockReferences("reefer blocks", p.ReeferBlocks, capacities.Has)
	for _, berth := range Berths() {
		scope := fmt.Sprintf("berth %s priority list", berth)
		warnings = append(warnings, validation.ValidateBlockReferences(scope, p.BerthPriorities[berth], capacities.Has)...)
	}
	return append(warnings, validation.ValidateBlockReferences("overflow blocks", p.OverflowBlocks, capacities.Has)...)
}

// PriorityList returns the dry candidate blocks for a lot: the berth list,
// then overflow blocks when the lot is large, without duplicates and without
// reefer blocks.
func (p Policy) PriorityList(berth Berth, totalCount int) []string {
	reefer := make(map[string]struct{}, len(p.ReeferBlocks))
	for _, block := range p.ReeferBlocks {
		reefer[yard.NormalizeBlock(block)] = struct{}{}
	}

	seen := make(map[string]struct{})
	var list []string
	add := func(blocks []string) {
		for _, raw := range blocks {
			block := yard.NormalizeBlock(raw)
			if _, isReefer := reefer[block]; isReefer {
				continue
			}
			if _, dup := seen[block]; dup {
				continue
			}
			seen[block] = struct{}{}
			list = append(list, block)
		}
	}

	add(p.BerthPriorities[berth])
	if totalCount > p.OverflowThreshold {
		add(p.OverflowBlocks)
	}
	return list
}
