package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/iwvelando/yard-planner/internal/allocation"
	"github.com/iwvelando/yard-planner/internal/occupancy"
	"github.com/iwvelando/yard-planner/internal/yardmap"
)

func writeCSV(w io.Writer, records [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write CSV output: %w", err)
	}
	return nil
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

func ftoa(f float64) string {
	return strconv.FormatFloat(f, 'f', 1, 64)
}

// occupancyCSV outputs in comma-separated value format.
func occupancyCSV(w io.Writer, report occupancy.Report, thresholds occupancy.Thresholds) error {
	records := [][]string{{"block", "capacityTEU", "usedTEU", "percentFull", "count20", "count40Plus", "reeferCount", "status"}}
	for _, block := range Classified(report.Blocks, thresholds) {
		records = append(records, []string{
			block.Block,
			itoa(block.CapacityTEU),
			itoa(block.UsedTEU),
			ftoa(block.PercentFull),
			itoa(block.CountTwenty),
			itoa(block.CountFortyPlus),
			itoa(block.ReeferCount),
			string(block.Status),
		})
	}
	return writeCSV(w, records)
}

func planCSV(w io.Writer, plan allocation.Plan) error {
	records := [][]string{{"pass", "block", "count20", "count40", "reeferCount", "teu", "resultingPercent", "overflow"}}
	for _, line := range plan.Lines {
		records = append(records, []string{
			string(line.Pass),
			line.Block,
			itoa(line.Count20),
			itoa(line.Count40),
			itoa(line.ReeferCount),
			itoa(line.TEU),
			ftoa(line.ResultingPercent),
			strconv.FormatBool(line.Overflow),
		})
	}
	res := plan.Residual
	records = append(records, []string{"residual", "", itoa(res.Count20), itoa(res.Count40), itoa(res.ReeferCount), "", "", ""})
	return writeCSV(w, records)
}

// mapCSV writes one line per non-empty cell of both views.
func mapCSV(w io.Writer, maps yardmap.Maps) error {
	records := [][]string{{"view", "row", "column", "cell", "height"}}
	for r, row := range maps.Top.Cells {
		for b, cell := range row {
			if cell == yardmap.CellEmpty {
				continue
			}
			records = append(records, []string{"top", maps.Top.RowLabels[r], maps.Top.ColumnLabels[b], cell.String(), itoa(maps.Heights[r][b])})
		}
	}
	for t, tier := range maps.Profile.Cells {
		for c, cell := range tier {
			if cell == yardmap.CellEmpty {
				continue
			}
			records = append(records, []string{"profile", maps.Profile.RowLabels[t], maps.Profile.ColumnLabels[c], cell.String(), ""})
		}
	}
	return writeCSV(w, records)
}
