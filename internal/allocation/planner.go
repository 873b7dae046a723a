// Package allocation proposes where an incoming container lot should be
// stacked. It is a single-pass greedy advisor: reefer units go to the reefer
// blocks first, then dry units follow the nominated berth's priority list,
// spilling into overflow blocks for large lots.
package allocation

import (
	"github.com/google/uuid"
	"github.com/iwvelando/yard-planner/internal/occupancy"
	"github.com/iwvelando/yard-planner/internal/yard"
	"github.com/iwvelando/yard-planner/pkg/constants"
	"github.com/iwvelando/yard-planner/pkg/mathutil"
	"go.uber.org/zap"
)

// Pass identifies which planning pass produced a line.
type Pass string

const (
	PassReefer Pass = "reefer"
	PassDry    Pass = "dry"
)

// PlacementLine is one proposed placement into one block.
type PlacementLine struct {
	Block            string  `json:"block"`
	Pass             Pass    `json:"pass"`
	Count20          int     `json:"count20"`
	Count40          int     `json:"count40"`
	ReeferCount      int     `json:"reeferCount"`
	TEU              int     `json:"teu"`
	ResultingPercent float64 `json:"resultingPercent"`
	Overflow         bool    `json:"overflow,omitempty"`
}

// Residual is demand that could not be placed.
type Residual struct {
	Count20     int `json:"count20"`
	Count40     int `json:"count40"`
	ReeferCount int `json:"reeferCount"`
}

// Empty reports whether everything was placed.
func (r Residual) Empty() bool {
	return r.Count20+r.Count40+r.ReeferCount == 0
}

// Total is the number of unplaced containers.
func (r Residual) Total() int {
	return r.Count20 + r.Count40 + r.ReeferCount
}

// Plan is a placement proposal. It is produced fresh per request.
type Plan struct {
	ID           string          `json:"id"`
	Request      Request         `json:"request"`
	Count20      int             `json:"count20"`
	Count40      int             `json:"count40"`
	PriorityList []string        `json:"priorityList"`
	Lines        []PlacementLine `json:"lines"`
	Residual     Residual        `json:"residual"`
}

// NeedsRelocation reports that the yard is short of space for this lot and
// operators must relocate stock outside the plan.
func (p Plan) NeedsRelocation() bool {
	return !p.Residual.Empty()
}

// Placed sums the placed counts across all lines.
func (p Plan) Placed() (count20, count40, reefer int) {
	for _, line := range p.Lines {
		count20 += line.Count20
		count40 += line.Count40
		reefer += line.ReeferCount
	}
	return count20, count40, reefer
}

// Planner runs the allocation heuristic. It holds only read-only policy and
// is safe for concurrent use.
type Planner struct {
	logger *zap.Logger
	policy Policy
}

// NewPlanner constructs a Planner for the provided policy.
func NewPlanner(logger *zap.Logger, policy Policy) (*Planner, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	return &Planner{logger: logger, policy: policy}, nil
}

// Policy returns the planner's policy.
func (p *Planner) Policy() Policy {
	return p.policy
}

type workingBlock struct {
	capacity int
	used     int
}

func (w *workingBlock) remaining() int {
	return w.capacity - w.used
}

// Plan splits the request across blocks. The occupancy slice is not
// modified; the planner works on its own copy so later placements see the
// capacity consumed by earlier ones.
func (p *Planner) Plan(request Request, current []occupancy.BlockOccupancy) Plan {
	req := request.normalized()
	if req.TotalCount != request.TotalCount || req.TwentyPercent != request.TwentyPercent || req.ReeferCount != request.ReeferCount {
		p.logger.Warn("allocation request clamped into range",
			zap.String("op", "allocation.Plan"),
			zap.Any("request", request),
			zap.Any("normalized", req),
		)
	}

	working := make(map[string]*workingBlock, len(current))
	for _, occ := range current {
		working[yard.NormalizeBlock(occ.Block)] = &workingBlock{capacity: occ.CapacityTEU, used: occ.UsedTEU}
	}

	count20 := mathutil.FloorPercentOf(req.TotalCount, req.TwentyPercent)
	count40 := req.TotalCount - count20
	plan := Plan{
		ID:      uuid.NewString(),
		Request: req,
		Count20: count20,
		Count40: count40,
		Lines:   []PlacementLine{},
	}

	remainingReefer := p.reeferPass(&plan, working, req.ReeferCount)

	plan.PriorityList = p.policy.PriorityList(req.Berth, req.TotalCount)
	berthBlocks := make(map[string]struct{})
	for _, block := range p.policy.BerthPriorities[req.Berth] {
		berthBlocks[yard.NormalizeBlock(block)] = struct{}{}
	}
	rem20, rem40 := p.dryPass(&plan, working, berthBlocks, count20, count40, req.TwentyPercent)

	plan.Residual = Residual{Count20: rem20, Count40: rem40, ReeferCount: remainingReefer}

	fields := []zap.Field{
		zap.String("op", "allocation.Plan"),
		zap.String("plan", plan.ID),
		zap.String("berth", string(req.Berth)),
		zap.Int("totalCount", req.TotalCount),
		zap.Int("lines", len(plan.Lines)),
		zap.Int("residual", plan.Residual.Total()),
	}
	if plan.NeedsRelocation() {
		p.logger.Warn("insufficient yard space for lot, internal relocation required", fields...)
	} else {
		p.logger.Info("allocation planned", fields...)
	}
	return plan
}

func (p *Planner) reeferPass(plan *Plan, working map[string]*workingBlock, reefers int) int {
	remaining := reefers
	for _, raw := range p.policy.ReeferBlocks {
		if remaining == 0 {
			break
		}
		block := yard.NormalizeBlock(raw)
		wb, ok := working[block]
		if !ok {
			p.logger.Debug("reefer block has no occupancy entry",
				zap.String("op", "allocation.reeferPass"),
				zap.String("block", block),
			)
			continue
		}

		free := mathutil.MaxInt(wb.remaining(), 0)
		takeable := mathutil.MinInt(remaining, free/constants.ReeferTEU)
		if takeable <= 0 {
			continue
		}

		teu := takeable * constants.ReeferTEU
		wb.used += teu
		remaining -= takeable
		plan.Lines = append(plan.Lines, PlacementLine{
			Block:            block,
			Pass:             PassReefer,
			ReeferCount:      takeable,
			TEU:              teu,
			ResultingPercent: mathutil.Percent(wb.used, wb.capacity),
		})
	}
	return remaining
}

func (p *Planner) dryPass(plan *Plan, working map[string]*workingBlock, berthBlocks map[string]struct{}, count20, count40, twentyPercent int) (int, int) {
	rem20, rem40 := count20, count40
	for _, block := range plan.PriorityList {
		if rem20+rem40 == 0 {
			break
		}
		wb, ok := working[block]
		if !ok {
			p.logger.Debug("priority block has no occupancy entry",
				zap.String("op", "allocation.dryPass"),
				zap.String("block", block),
			)
			continue
		}

		free := wb.remaining()
		if free <= 0 {
			continue
		}
		take := mathutil.MinInt(rem20+rem40, mathutil.FloorDiv(free, p.policy.PlanningFactor))
		if take <= 0 {
			continue
		}

		take20, take40 := splitTake(take, rem20, rem40, twentyPercent, free)
		if take20+take40 == 0 {
			continue
		}

		teu := take20*constants.TEUTwenty + take40*constants.TEUFortyPlus
		wb.used += teu
		rem20 -= take20
		rem40 -= take40

		_, inBerthList := berthBlocks[block]
		plan.Lines = append(plan.Lines, PlacementLine{
			Block:            block,
			Pass:             PassDry,
			Count20:          take20,
			Count40:          take40,
			TEU:              teu,
			ResultingPercent: mathutil.Percent(wb.used, wb.capacity),
			Overflow:         !inBerthList,
		})
	}
	return rem20, rem40
}

// splitTake divides a block's container take between 20ft and 40ft units in
// the lot's ratio. 40ft units are capped at the remaining 40ft demand with 20s
// filling the difference, and the result never needs more than free TEU.
func splitTake(take, rem20, rem40, twentyPercent, free int) (int, int) {
	take20 := mathutil.MinInt(rem20, mathutil.FloorPercentOf(take, twentyPercent))
	take40 := take - take20
	if take40 > rem40 {
		take40 = rem40
		take20 = mathutil.MinInt(rem20, take-take40)
	}

	if take20+2*take40 > free {
		if take20 >= free {
			return free, 0
		}
		take40 = (free - take20) / 2
		spare := free - take20 - 2*take40
		extra := mathutil.MinInt(spare, mathutil.MinInt(rem20-take20, take-take20-take40))
		if extra > 0 {
			take20 += extra
		}
	}
	return take20, take40
}
