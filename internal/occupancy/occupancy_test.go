package occupancy

import (
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/iwvelando/yard-planner/internal/inventory"
	"github.com/iwvelando/yard-planner/internal/yard"
	"github.com/iwvelando/yard-planner/pkg/constants"
	"github.com/iwvelando/yard-planner/pkg/position"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func record(block string, size inventory.SizeClass, reefer bool) inventory.Record {
	return inventory.Record{Block: block, SizeClass: size, TEU: size.TEU(), IsReefer: reefer}
}

func testTable(t *testing.T) yard.CapacityTable {
	t.Helper()
	table, err := yard.NewCapacityTable([]yard.BlockCapacity{
		{Block: "A1", CapacityTEU: 100},
		{Block: "B1", CapacityTEU: 50},
		{Block: "Z9", CapacityTEU: 0},
	})
	require.NoError(t, err)
	return table
}

func TestClassifyBoundaries(t *testing.T) {
	tests := []struct {
		percent  float64
		expected Status
	}{
		{0, StatusOK},
		{40.0, StatusOK},
		{40.1, StatusWarning},
		{49.9, StatusWarning},
		{50.0, StatusCritical},
		{50.1, StatusCritical},
		{120, StatusCritical},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, Classify(tt.percent), "percent %.1f", tt.percent)
	}
}

func TestCustomThresholds(t *testing.T) {
	th := Thresholds{Warning: 70, Critical: 85}
	assert.Equal(t, StatusOK, th.Classify(70))
	assert.Equal(t, StatusWarning, th.Classify(84.9))
	assert.Equal(t, StatusCritical, th.Classify(85))
}

func TestAggregate(t *testing.T) {
	records := []inventory.Record{
		record("A1", inventory.SizeTwenty, false),
		record("A1", inventory.SizeFortyPlus, true),
		record("A1", inventory.SizeFortyPlus, false),
		record("B1", inventory.SizeTwenty, false),
		record("X7", inventory.SizeFortyPlus, false),
		record(constants.UnknownBlock, inventory.SizeFortyPlus, false),
	}

	result := Aggregate(records, testTable(t))
	require.Len(t, result, 3)

	assert.Equal(t, BlockOccupancy{Block: "A1", CapacityTEU: 100, UsedTEU: 5, PercentFull: 5.0, CountTwenty: 1, CountFortyPlus: 2, ReeferCount: 1}, result[0])
	assert.Equal(t, BlockOccupancy{Block: "B1", CapacityTEU: 50, UsedTEU: 1, PercentFull: 2.0, CountTwenty: 1}, result[1])
	assert.Equal(t, BlockOccupancy{Block: "Z9"}, result[2])
	assert.Equal(t, 95, result[0].RemainingTEU())
}

func TestAggregateUsedTEUMatchesRecords(t *testing.T) {
	table, _, err := yard.Tables(yard.DefaultBlocks())
	require.NoError(t, err)

	blocks := append(table.Blocks(), "Q1", constants.UnknownBlock)
	rng := rand.New(rand.NewSource(42))
	records := make([]inventory.Record, 0, 2000)
	for i := 0; i < 2000; i++ {
		size := inventory.SizeTwenty
		if rng.Intn(2) == 0 {
			size = inventory.SizeFortyPlus
		}
		records = append(records, record(blocks[rng.Intn(len(blocks))], size, rng.Intn(10) == 0))
	}

	expected := make(map[string]int)
	for _, r := range records {
		expected[r.Block] += r.TEU
	}
	for _, occ := range Aggregate(records, table) {
		assert.Equal(t, expected[occ.Block], occ.UsedTEU, "block %s", occ.Block)
		assert.Equal(t, occ.UsedTEU, occ.CountTwenty+2*occ.CountFortyPlus, "block %s", occ.Block)
	}
}

func TestAggregateIsOrderIndependentAndIdempotent(t *testing.T) {
	table := testTable(t)
	records := []inventory.Record{
		record("A1", inventory.SizeTwenty, false),
		record("B1", inventory.SizeFortyPlus, true),
		record("A1", inventory.SizeFortyPlus, false),
		record("B1", inventory.SizeTwenty, false),
	}

	first, err := json.Marshal(Aggregate(records, table))
	require.NoError(t, err)
	second, err := json.Marshal(Aggregate(records, table))
	require.NoError(t, err)
	assert.Equal(t, first, second)

	shuffled := []inventory.Record{records[3], records[1], records[0], records[2]}
	third, err := json.Marshal(Aggregate(shuffled, table))
	require.NoError(t, err)
	assert.Equal(t, first, third)
}

func TestSummarize(t *testing.T) {
	records := []inventory.Record{
		record("A1", inventory.SizeFortyPlus, false),
		record("X7", inventory.SizeFortyPlus, false),
		record("X7", inventory.SizeTwenty, false),
		record(constants.UnknownBlock, inventory.SizeTwenty, false),
	}
	report := Summarize(zap.NewNop(), records, testTable(t))

	assert.Equal(t, 4, report.Containers)
	assert.Equal(t, 6, report.TotalTEU)
	assert.Equal(t, 150, report.TotalCapacity)
	assert.Equal(t, 1.3, report.PercentFull)
	assert.Equal(t, 1, report.UnknownCount)
	assert.Equal(t, map[string]int{"X7": 2}, report.UnmappedBlocks)
}

func TestAggregateCountsCodesWithOtherSeparators(t *testing.T) {
	rows := []inventory.RawRow{
		{Position: "A1 12 03 4", Size: "40"},
		{Position: "A1/12/03/4", Size: "20"},
		{Position: "A1.12-03-4", Size: "20"},
	}
	records, enrichReport := inventory.Enrich(zap.NewNop(), position.NewParser(position.BlockModePrefix), rows)

	for _, r := range records {
		assert.Equal(t, "A1", r.Block)
		assert.False(t, r.HasCoordinate(), "downgraded code must not be drawn: %+v", r)
	}
	assert.Equal(t, 3, enrichReport.Downgraded)
	assert.Equal(t, map[position.Kind]int{position.KindMalformedCode: 3}, enrichReport.Failures)

	table, err := yard.NewCapacityTable([]yard.BlockCapacity{{Block: "A1", CapacityTEU: 100}})
	require.NoError(t, err)
	blocks := Aggregate(records, table)
	require.Len(t, blocks, 1)
	assert.Equal(t, 4, blocks[0].UsedTEU)
	assert.Equal(t, 2, blocks[0].CountTwenty)
	assert.Equal(t, 1, blocks[0].CountFortyPlus)
}

func TestUnmappedBlockCodesAreSorted(t *testing.T) {
	gaps := map[string]int{"Z9": 1, "Q1": 4, "X5": 2, "B7": 1}
	for i := 0; i < 10; i++ {
		assert.Equal(t, []string{"B7", "Q1", "X5", "Z9"}, UnmappedBlockCodes(gaps))
	}
	assert.Empty(t, UnmappedBlockCodes(nil))
}

func TestSortByPercent(t *testing.T) {
	blocks := []BlockOccupancy{
		{Block: "C1", PercentFull: 10},
		{Block: "A1", PercentFull: 55.5},
		{Block: "B1", PercentFull: 10},
	}
	sorted := SortByPercent(blocks)
	assert.Equal(t, []string{"A1", "B1", "C1"}, []string{sorted[0].Block, sorted[1].Block, sorted[2].Block})
	assert.Equal(t, "C1", blocks[0].Block, "input must not be reordered")
}
