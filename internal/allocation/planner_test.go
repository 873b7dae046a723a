package allocation

import (
	"math/rand"
	"testing"

	"github.com/iwvelando/yard-planner/internal/occupancy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newPlanner(t *testing.T, policy Policy) *Planner {
	t.Helper()
	planner, err := NewPlanner(zap.NewNop(), policy)
	require.NoError(t, err)
	return planner
}

func singleBlockPolicy(block string) Policy {
	return Policy{
		BerthPriorities:   map[Berth][]string{BerthNone: {block}},
		OverflowThreshold: 200,
		PlanningFactor:    1.7,
	}
}

func assertConservation(t *testing.T, plan Plan) {
	t.Helper()
	placed20, placed40, placedReefer := plan.Placed()
	assert.Equal(t, plan.Count20, placed20+plan.Residual.Count20, "20ft conservation")
	assert.Equal(t, plan.Count40, placed40+plan.Residual.Count40, "40ft conservation")
	assert.Equal(t, plan.Request.ReeferCount, placedReefer+plan.Residual.ReeferCount, "reefer conservation")
	assert.Equal(t, plan.Request.TotalCount, plan.Count20+plan.Count40)
}

func assertNeverOvercommits(t *testing.T, plan Plan, current []occupancy.BlockOccupancy) {
	t.Helper()
	used := make(map[string]int)
	capacity := make(map[string]int)
	for _, occ := range current {
		used[occ.Block] = occ.UsedTEU
		capacity[occ.Block] = occ.CapacityTEU
	}
	for _, line := range plan.Lines {
		assert.LessOrEqual(t, line.ResultingPercent, 100.0+1e-9, "block %s", line.Block)
		used[line.Block] += line.TEU
		assert.LessOrEqual(t, used[line.Block], capacity[line.Block], "block %s over capacity", line.Block)
		assert.Equal(t, line.Count20+2*line.Count40+2*line.ReeferCount, line.TEU, "block %s TEU", line.Block)
	}
}

func TestScenarioASingleEmptyBlock(t *testing.T) {
	planner := newPlanner(t, singleBlockPolicy("X"))
	current := []occupancy.BlockOccupancy{{Block: "X", CapacityTEU: 100}}

	plan := planner.Plan(Request{TotalCount: 50, TwentyPercent: 40, Berth: BerthNone}, current)

	require.Len(t, plan.Lines, 1)
	line := plan.Lines[0]
	assert.Equal(t, "X", line.Block)
	assert.Equal(t, PassDry, line.Pass)
	assert.Equal(t, 20, line.Count20)
	assert.Equal(t, 30, line.Count40)
	assert.Equal(t, 80, line.TEU)
	assert.Equal(t, 80.0, line.ResultingPercent)
	assert.False(t, line.Overflow)
	assert.True(t, plan.Residual.Empty())
	assert.False(t, plan.NeedsRelocation())
	assert.NotEmpty(t, plan.ID)
	assertConservation(t, plan)
}

func TestScenarioBReeferBlockNearlyFull(t *testing.T) {
	policy := DefaultPolicy()
	planner := newPlanner(t, policy)
	current := []occupancy.BlockOccupancy{
		{Block: "I1", CapacityTEU: 504, UsedTEU: 500},
	}

	plan := planner.Plan(Request{TotalCount: 5, TwentyPercent: 0, ReeferCount: 5, Berth: BerthNone}, current)

	require.NotEmpty(t, plan.Lines)
	reefer := plan.Lines[0]
	assert.Equal(t, "I1", reefer.Block)
	assert.Equal(t, PassReefer, reefer.Pass)
	assert.Equal(t, 2, reefer.ReeferCount)
	assert.Equal(t, 100.0, reefer.ResultingPercent)
	assert.Equal(t, 3, plan.Residual.ReeferCount)
	assert.True(t, plan.NeedsRelocation())
	assertConservation(t, plan)
}

func TestReeferPassFollowsPriorityAndUpdatesWorkingCopy(t *testing.T) {
	policy := Policy{
		ReeferBlocks:      []string{"I1", "I2"},
		BerthPriorities:   map[Berth][]string{BerthNone: {"I1", "A1"}},
		OverflowThreshold: 200,
		PlanningFactor:    1.7,
	}
	planner := newPlanner(t, policy)
	current := []occupancy.BlockOccupancy{
		{Block: "I1", CapacityTEU: 10, UsedTEU: 4},
		{Block: "I2", CapacityTEU: 10},
		{Block: "A1", CapacityTEU: 100},
	}

	plan := planner.Plan(Request{TotalCount: 10, TwentyPercent: 50, ReeferCount: 5, Berth: BerthNone}, current)

	require.Len(t, plan.Lines, 3)
	assert.Equal(t, PlacementLine{Block: "I1", Pass: PassReefer, ReeferCount: 3, TEU: 6, ResultingPercent: 100}, plan.Lines[0])
	assert.Equal(t, PlacementLine{Block: "I2", Pass: PassReefer, ReeferCount: 2, TEU: 4, ResultingPercent: 40}, plan.Lines[1])
	assert.Equal(t, "A1", plan.Lines[2].Block, "reefer blocks are never used for dry units")
	assert.Equal(t, []string{"A1"}, plan.PriorityList)
	assert.Equal(t, 4, current[0].UsedTEU, "input occupancy must not be modified")
	assertConservation(t, plan)
	assertNeverOvercommits(t, plan, current)
}

func TestDryPassSpillsAcrossBlocksAndSkipsFullBlocks(t *testing.T) {
	policy := Policy{
		BerthPriorities:   map[Berth][]string{Berth1A: {"FULL", "A1", "B1"}},
		OverflowThreshold: 200,
		PlanningFactor:    1.7,
	}
	planner := newPlanner(t, policy)
	current := []occupancy.BlockOccupancy{
		{Block: "FULL", CapacityTEU: 100, UsedTEU: 120},
		{Block: "A1", CapacityTEU: 35},
		{Block: "B1", CapacityTEU: 1000},
	}

	plan := planner.Plan(Request{TotalCount: 40, TwentyPercent: 50, Berth: Berth1A}, current)

	require.Len(t, plan.Lines, 2)
	first := plan.Lines[0]
	assert.Equal(t, "A1", first.Block)
	assert.Equal(t, 20, first.Count20+first.Count40)
	assert.Equal(t, 10, first.Count20)
	assert.Equal(t, 10, first.Count40)
	assert.Equal(t, 30, first.TEU)

	second := plan.Lines[1]
	assert.Equal(t, "B1", second.Block)
	assert.Equal(t, 20, second.Count20+second.Count40)
	assert.True(t, plan.Residual.Empty())
	assertConservation(t, plan)
	assertNeverOvercommits(t, plan, current)
}

func TestOverflowBlocksOnlyForLargeLots(t *testing.T) {
	policy := Policy{
		ReeferBlocks:      []string{"I1"},
		BerthPriorities:   map[Berth][]string{Berth2: {"A2"}},
		OverflowBlocks:    []string{"E1", "A2", "I1"},
		OverflowThreshold: 200,
		PlanningFactor:    1.7,
	}
	planner := newPlanner(t, policy)
	current := []occupancy.BlockOccupancy{
		{Block: "A2", CapacityTEU: 100},
		{Block: "E1", CapacityTEU: 1000},
		{Block: "I1", CapacityTEU: 1000},
	}

	small := planner.Plan(Request{TotalCount: 200, TwentyPercent: 50, Berth: Berth2}, current)
	assert.Equal(t, []string{"A2"}, small.PriorityList)
	assert.True(t, small.NeedsRelocation())
	assertConservation(t, small)

	large := planner.Plan(Request{TotalCount: 201, TwentyPercent: 50, Berth: Berth2}, current)
	assert.Equal(t, []string{"A2", "E1"}, large.PriorityList)
	require.Len(t, large.Lines, 2)
	assert.False(t, large.Lines[0].Overflow)
	assert.True(t, large.Lines[1].Overflow)
	assert.True(t, large.Residual.Empty())
	assertConservation(t, large)
	assertNeverOvercommits(t, large, current)
}

func TestAllFortyLotNeverOvercommits(t *testing.T) {
	planner := newPlanner(t, singleBlockPolicy("X"))
	current := []occupancy.BlockOccupancy{{Block: "X", CapacityTEU: 100}}

	plan := planner.Plan(Request{TotalCount: 80, TwentyPercent: 0, Berth: BerthNone}, current)

	require.Len(t, plan.Lines, 1)
	assert.Equal(t, 50, plan.Lines[0].Count40)
	assert.Equal(t, 100, plan.Lines[0].TEU)
	assert.Equal(t, 100.0, plan.Lines[0].ResultingPercent)
	assert.Equal(t, Residual{Count40: 30}, plan.Residual)
	assertConservation(t, plan)
}

func TestMissingBlocksAreSkipped(t *testing.T) {
	planner := newPlanner(t, DefaultPolicy())
	plan := planner.Plan(Request{TotalCount: 10, TwentyPercent: 50, ReeferCount: 2, Berth: Berth1A}, nil)
	assert.Empty(t, plan.Lines)
	assert.Equal(t, Residual{Count20: 5, Count40: 5, ReeferCount: 2}, plan.Residual)
}

func TestPlanClampsOutOfRangeRequests(t *testing.T) {
	planner := newPlanner(t, singleBlockPolicy("X"))
	current := []occupancy.BlockOccupancy{{Block: "X", CapacityTEU: 1000}}

	plan := planner.Plan(Request{TotalCount: 10, TwentyPercent: 150, ReeferCount: 20, Berth: "bogus"}, current)
	assert.Equal(t, Request{TotalCount: 10, TwentyPercent: 100, ReeferCount: 10, Berth: BerthNone}, plan.Request)
	assert.Equal(t, 10, plan.Count20)
	assertConservation(t, plan)
}

func TestPlanPropertiesRandomized(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	policy := DefaultPolicy()
	planner := newPlanner(t, policy)
	blocks := []string{"A0", "H0", "I0", "A1", "B1", "C1", "D1", "A2", "B2", "C2", "D2", "I1", "I2", "E2", "E1", "F2"}

	for i := 0; i < 300; i++ {
		current := make([]occupancy.BlockOccupancy, 0, len(blocks))
		for _, block := range blocks {
			capacity := 50 + rng.Intn(900)
			current = append(current, occupancy.BlockOccupancy{Block: block, CapacityTEU: capacity, UsedTEU: rng.Intn(capacity + 50)})
		}
		total := 1 + rng.Intn(600)
		req := Request{
			TotalCount:    total,
			TwentyPercent: rng.Intn(101),
			ReeferCount:   rng.Intn(total + 1),
			Berth:         Berths()[rng.Intn(len(Berths()))],
		}
		require.NoError(t, req.Validate())

		plan := planner.Plan(req, current)
		assertConservation(t, plan)
		assertNeverOvercommits(t, plan, current)
		for _, line := range plan.Lines {
			assert.GreaterOrEqual(t, line.Count20, 0)
			assert.GreaterOrEqual(t, line.Count40, 0)
			assert.Greater(t, line.Count20+line.Count40+line.ReeferCount, 0)
		}
	}
}

func TestSplitTake(t *testing.T) {
	tests := []struct {
		name                                    string
		take, rem20, rem40, twentyPercent, free int
		want20, want40                          int
	}{
		{"Ratio split", 50, 20, 30, 40, 100, 20, 30},
		{"Twenty cap", 10, 2, 30, 50, 100, 2, 8},
		{"Forty cap fills with twenties", 10, 20, 3, 40, 100, 7, 3},
		{"TEU guard trims forties", 58, 0, 100, 0, 100, 0, 50},
		{"TEU guard with odd free", 6, 3, 3, 50, 8, 3, 2},
		{"TEU guard refills twenties", 10, 10, 10, 50, 12, 6, 3},
		{"Free smaller than twenties", 5, 5, 0, 100, 3, 3, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got20, got40 := splitTake(tt.take, tt.rem20, tt.rem40, tt.twentyPercent, tt.free)
			assert.Equal(t, tt.want20, got20)
			assert.Equal(t, tt.want40, got40)
			assert.LessOrEqual(t, got20+2*got40, tt.free)
			assert.LessOrEqual(t, got20+got40, tt.take)
		})
	}
}
