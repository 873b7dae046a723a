// Package output provides utilities for formatting and displaying yard
// reports, allocation plans and yard maps.
package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/iwvelando/yard-planner/internal/allocation"
	"github.com/iwvelando/yard-planner/internal/occupancy"
	"github.com/iwvelando/yard-planner/internal/yardmap"
	"github.com/iwvelando/yard-planner/pkg/constants"
	"github.com/iwvelando/yard-planner/pkg/validation"
)

// Renderer writes results in one output format.
type Renderer struct {
	Format     string
	Thresholds occupancy.Thresholds
}

// NewRenderer validates the format and returns a Renderer.
func NewRenderer(format string, thresholds occupancy.Thresholds) (Renderer, error) {
	if err := validation.ValidateOutputFormat(format); err != nil {
		return Renderer{}, err
	}
	return Renderer{Format: format, Thresholds: thresholds}, nil
}

// Occupancy writes a yard occupancy report.
func (r Renderer) Occupancy(w io.Writer, report occupancy.Report) error {
	switch r.Format {
	case constants.OutputFormatCSV:
		return occupancyCSV(w, report, r.Thresholds)
	case constants.OutputFormatJSON:
		return JSON(w, NewOccupancyView(report, r.Thresholds))
	default:
		return occupancyPretty(w, report, r.Thresholds)
	}
}

// Plan writes an allocation plan.
func (r Renderer) Plan(w io.Writer, plan allocation.Plan) error {
	switch r.Format {
	case constants.OutputFormatCSV:
		return planCSV(w, plan)
	case constants.OutputFormatJSON:
		return JSON(w, plan)
	default:
		return planPretty(w, plan)
	}
}

// Map writes the top and profile views of one block.
func (r Renderer) Map(w io.Writer, maps yardmap.Maps) error {
	switch r.Format {
	case constants.OutputFormatCSV:
		return mapCSV(w, maps)
	case constants.OutputFormatJSON:
		return JSON(w, maps)
	default:
		return mapPretty(w, maps)
	}
}

// JSON writes v as indented JSON.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON output: %w", err)
	}
	return nil
}

// BlockStatus is a BlockOccupancy with its classification.
type BlockStatus struct {
	occupancy.BlockOccupancy
	Status occupancy.Status `json:"status"`
}

// OccupancyView is the serialized form of a report.
type OccupancyView struct {
	occupancy.Report
	Blocks     []BlockStatus        `json:"blocks"`
	Thresholds occupancy.Thresholds `json:"thresholds"`
}

// NewOccupancyView classifies every block of a report.
func NewOccupancyView(report occupancy.Report, thresholds occupancy.Thresholds) OccupancyView {
	return OccupancyView{
		Report:     report,
		Blocks:     Classified(report.Blocks, thresholds),
		Thresholds: thresholds,
	}
}

// Classified attaches a status to every block.
func Classified(blocks []occupancy.BlockOccupancy, thresholds occupancy.Thresholds) []BlockStatus {
	out := make([]BlockStatus, 0, len(blocks))
	for _, block := range blocks {
		out = append(out, BlockStatus{BlockOccupancy: block, Status: thresholds.Classify(block.PercentFull)})
	}
	return out
}
