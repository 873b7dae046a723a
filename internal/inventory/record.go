// Package inventory turns raw inventory rows into normalized container
// records and keeps the current snapshot of the export yard.
package inventory

import (
	"strings"

	"github.com/iwvelando/yard-planner/pkg/constants"
	"github.com/iwvelando/yard-planner/pkg/position"
	"go.uber.org/zap"
)

// SizeClass is the planning size class of a container.
type SizeClass string

const (
	// SizeTwenty is a 20ft container (1 TEU).
	SizeTwenty SizeClass = "20"
	// SizeFortyPlus is a 40ft or larger container (2 TEU).
	SizeFortyPlus SizeClass = "40+"
)

// TEU returns the TEU weight of the size class.
func (s SizeClass) TEU() int {
	if s == SizeTwenty {
		return constants.TEUTwenty
	}
	return constants.TEUFortyPlus
}

// ClassifySize derives the size class from the first character of the raw
// size string: '2' is a 20ft unit, anything else (including blank or a
// leading space) is 40+. ReadCSV trims cells before they get here.
func ClassifySize(rawSize string) SizeClass {
	if rawSize != "" && rawSize[0] == constants.TwentyFootPrefix {
		return SizeTwenty
	}
	return SizeFortyPlus
}

// IsReefer reports whether the ISO size-type contains "R" or the cargo type
// contains "Reefer". Both matches are case-sensitive.
func IsReefer(isoSize, cargoType string) bool {
	return strings.Contains(isoSize, constants.ReeferISOMarker) ||
		strings.Contains(cargoType, constants.ReeferCargoMarker)
}

// RawRow is one inventory row as delivered by the ingestion collaborator.
// Missing fields are empty strings.
type RawRow struct {
	ID        string `json:"id,omitempty"`
	Position  string `json:"position"`
	ShipName  string `json:"shipName"`
	Size      string `json:"size"`
	ISOSize   string `json:"isoSize"`
	CargoType string `json:"cargoType"`
}

// Record is a normalized container. Coordinate is nil when the position
// could not be parsed down to bay/row/tier.
type Record struct {
	ID         string               `json:"id"`
	ShipName   string               `json:"shipName"`
	Block      string               `json:"block"`
	Coordinate *position.Coordinate `json:"coordinate,omitempty"`
	SizeClass  SizeClass            `json:"sizeClass"`
	TEU        int                  `json:"teu"`
	IsReefer   bool                 `json:"isReefer"`
}

// HasCoordinate reports whether the record can be drawn on a yard map.
func (r Record) HasCoordinate() bool {
	return r.Coordinate != nil && r.Coordinate.Known()
}

// EnrichReport counts positions downgraded during enrichment.
type EnrichReport struct {
	Total      int                   `json:"total"`
	Downgraded int                   `json:"downgraded"`
	Failures   map[position.Kind]int `json:"failures,omitempty"`
	Samples    []string              `json:"samples,omitempty"`
}

// maxFailureSamples bounds the raw codes kept for operators.
const maxFailureSamples = 10

// Enrich converts raw rows into records. It never fails: bad positions are
// downgraded and counted in the report.
func Enrich(logger *zap.Logger, parser position.Parser, rows []RawRow) ([]Record, EnrichReport) {
	if logger == nil {
		logger = zap.NewNop()
	}

	records := make([]Record, 0, len(rows))
	report := EnrichReport{Total: len(rows), Failures: make(map[position.Kind]int)}
	for i, row := range rows {
		record, outcome := enrichRow(parser, row, i)
		if outcome.Failed() {
			report.Downgraded++
			report.Failures[outcome.Kind()]++
			if len(report.Samples) < maxFailureSamples {
				report.Samples = append(report.Samples, row.Position)
			}
		}
		records = append(records, record)
	}

	if report.Downgraded > 0 {
		logger.Warn("downgraded unparseable container positions",
			zap.String("op", "inventory.Enrich"),
			zap.Int("downgraded", report.Downgraded),
			zap.Int("total", report.Total),
			zap.Strings("samples", report.Samples),
		)
	}
	if len(report.Failures) == 0 {
		report.Failures = nil
	}
	return records, report
}

func enrichRow(parser position.Parser, row RawRow, index int) (Record, position.Outcome) {
	outcome := parser.Parse(row.Position)
	size := ClassifySize(row.Size)

	id := strings.TrimSpace(row.ID)
	if id == "" {
		id = rowID(index)
	}

	record := Record{
		ID:        id,
		ShipName:  strings.TrimSpace(row.ShipName),
		Block:     outcome.Block,
		SizeClass: size,
		TEU:       size.TEU(),
		IsReefer:  IsReefer(row.ISOSize, row.CargoType),
	}
	if outcome.Coordinate != nil {
		coord := *outcome.Coordinate
		record.Coordinate = &coord
	}
	return record, outcome
}
