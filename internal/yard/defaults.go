package yard

// BlockDefinition is the full static description of one block.
type BlockDefinition struct {
	Block       string
	CapacityTEU int
	Dimensions  Dimensions
}

// DefaultBlocks returns the export yard layout: 16 blocks, in display order.
func DefaultBlocks() []BlockDefinition {
	seq := func(bays, rows, tiers int) Dimensions {
		return Dimensions{NumBays: bays, NumRows: rows, NumTiers: tiers, BayNumbering: BaySequential}
	}
	even := func(bays, rows, tiers int) Dimensions {
		return Dimensions{NumBays: bays, NumRows: rows, NumTiers: tiers, BayNumbering: BayEven}
	}
	return []BlockDefinition{
		{Block: "A0", CapacityTEU: 650, Dimensions: seq(26, 5, 5)},
		{Block: "H0", CapacityTEU: 650, Dimensions: seq(26, 5, 5)},
		{Block: "I0", CapacityTEU: 650, Dimensions: seq(26, 5, 5)},
		{Block: "A1", CapacityTEU: 676, Dimensions: even(26, 6, 5)},
		{Block: "B1", CapacityTEU: 676, Dimensions: even(26, 6, 5)},
		{Block: "C1", CapacityTEU: 676, Dimensions: even(26, 6, 5)},
		{Block: "D1", CapacityTEU: 676, Dimensions: even(26, 6, 5)},
		{Block: "A2", CapacityTEU: 884, Dimensions: seq(34, 6, 5)},
		{Block: "B2", CapacityTEU: 884, Dimensions: seq(34, 6, 5)},
		{Block: "C2", CapacityTEU: 884, Dimensions: seq(34, 6, 5)},
		{Block: "D2", CapacityTEU: 884, Dimensions: seq(34, 6, 5)},
		{Block: "I1", CapacityTEU: 504, Dimensions: seq(21, 6, 4)},
		{Block: "I2", CapacityTEU: 336, Dimensions: seq(14, 6, 4)},
		{Block: "E2", CapacityTEU: 192, Dimensions: seq(16, 4, 3)},
		{Block: "E1", CapacityTEU: 192, Dimensions: seq(16, 4, 3)},
		{Block: "F2", CapacityTEU: 192, Dimensions: seq(16, 4, 3)},
	}
}

// Tables splits block definitions into capacity and dimension tables.
func Tables(defs []BlockDefinition) (CapacityTable, DimensionsTable, error) {
	capacities := make([]BlockCapacity, 0, len(defs))
	dims := make(map[string]Dimensions, len(defs))
	for _, def := range defs {
		capacities = append(capacities, BlockCapacity{Block: def.Block, CapacityTEU: def.CapacityTEU})
		if def.Dimensions.Valid() {
			dims[def.Block] = def.Dimensions
		}
	}
	capacityTable, err := NewCapacityTable(capacities)
	if err != nil {
		return CapacityTable{}, DimensionsTable{}, err
	}
	return capacityTable, NewDimensionsTable(dims), nil
}
