package yard

import "testing"

func TestDefaultBlocksTable(t *testing.T) {
	capacities, dims, err := Tables(DefaultBlocks())
	if err != nil {
		t.Fatalf("Tables() error = %v", err)
	}
	if capacities.Len() != 16 {
		t.Fatalf("expected 16 blocks, got %d", capacities.Len())
	}
	if dims.Len() != 16 {
		t.Fatalf("expected 16 block dimensions, got %d", dims.Len())
	}

	expected := map[string]int{"A0": 650, "A1": 676, "A2": 884, "I1": 504, "I2": 336, "E2": 192}
	for block, want := range expected {
		got, ok := capacities.Capacity(block)
		if !ok {
			t.Errorf("block %s missing from table", block)
			continue
		}
		if got != want {
			t.Errorf("block %s capacity = %d, expected %d", block, got, want)
		}
	}

	if blocks := capacities.Blocks(); blocks[0] != "A0" || blocks[len(blocks)-1] != "F2" {
		t.Errorf("table order not preserved: %v", blocks)
	}
}

func TestCapacityTableRejectsBadEntries(t *testing.T) {
	tests := []struct {
		name    string
		entries []BlockCapacity
	}{
		{"Duplicate block", []BlockCapacity{{"A1", 10}, {"a1", 20}}},
		{"Empty block", []BlockCapacity{{" ", 10}}},
		{"Negative capacity", []BlockCapacity{{"A1", -1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewCapacityTable(tt.entries); err == nil {
				t.Errorf("NewCapacityTable() expected error but got none")
			}
		})
	}
}

func TestCapacityTableEntriesAreCopies(t *testing.T) {
	table, err := NewCapacityTable([]BlockCapacity{{"x", 100}})
	if err != nil {
		t.Fatalf("NewCapacityTable() error = %v", err)
	}
	entries := table.Entries()
	entries[0].CapacityTEU = 1
	if got, _ := table.Capacity("X"); got != 100 {
		t.Errorf("table mutated through Entries(): capacity = %d", got)
	}
	if table.TotalCapacity() != 100 {
		t.Errorf("TotalCapacity() = %d, expected 100", table.TotalCapacity())
	}
}

func TestBayNumbering(t *testing.T) {
	sequential := Dimensions{NumBays: 10, NumRows: 2, NumTiers: 2, BayNumbering: BaySequential}
	even := Dimensions{NumBays: 10, NumRows: 2, NumTiers: 2, BayNumbering: BayEven}

	tests := []struct {
		name    string
		dims    Dimensions
		label   int
		wantIdx int
		wantOK  bool
	}{
		{"Sequential first", sequential, 1, 0, true},
		{"Sequential last", sequential, 10, 9, true},
		{"Sequential past end", sequential, 11, 0, false},
		{"Sequential zero", sequential, 0, 0, false},
		{"Even first", even, 2, 0, true},
		{"Even last", even, 20, 9, true},
		{"Even odd label", even, 3, 0, false},
		{"Even past end", even, 22, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, ok := tt.dims.BayIndex(tt.label)
			if ok != tt.wantOK || (ok && idx != tt.wantIdx) {
				t.Errorf("BayIndex(%d) = (%d, %v), expected (%d, %v)", tt.label, idx, ok, tt.wantIdx, tt.wantOK)
			}
			if ok && tt.dims.BayLabel(idx) != tt.label {
				t.Errorf("BayLabel(%d) = %d, expected %d", idx, tt.dims.BayLabel(idx), tt.label)
			}
		})
	}

	if sequential.NextBay(10) != 11 {
		t.Errorf("sequential NextBay(10) = %d, expected 11", sequential.NextBay(10))
	}
	if even.NextBay(10) != 12 {
		t.Errorf("even NextBay(10) = %d, expected 12", even.NextBay(10))
	}
}

func TestParseBayNumbering(t *testing.T) {
	if n, err := ParseBayNumbering(""); err != nil || n != BaySequential {
		t.Errorf("ParseBayNumbering(\"\") = %s, %v", n, err)
	}
	if n, err := ParseBayNumbering("EVEN"); err != nil || n != BayEven {
		t.Errorf("ParseBayNumbering(EVEN) = %s, %v", n, err)
	}
	if _, err := ParseBayNumbering("odd"); err == nil {
		t.Errorf("ParseBayNumbering(odd) expected error")
	}
}
