// Package terminal wires configuration, the inventory snapshot and the
// planning components into the operations exposed by the CLI and the API.
package terminal

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/iwvelando/yard-planner/internal/allocation"
	"github.com/iwvelando/yard-planner/internal/config"
	"github.com/iwvelando/yard-planner/internal/inventory"
	"github.com/iwvelando/yard-planner/internal/occupancy"
	"github.com/iwvelando/yard-planner/internal/yard"
	"github.com/iwvelando/yard-planner/internal/yardmap"
	"github.com/iwvelando/yard-planner/pkg/position"
	"go.uber.org/zap"
)

// ErrNoSnapshot is returned by operations that need inventory before any
// has been loaded.
var ErrNoSnapshot = errors.New("no inventory loaded")

// Terminal is safe for concurrent use. Configuration-derived tables are
// read-only; the snapshot is replaced wholesale on each load.
type Terminal struct {
	logger     *zap.Logger
	conf       *config.Configuration
	parser     position.Parser
	capacities yard.CapacityTable
	thresholds occupancy.Thresholds
	planner    *allocation.Planner
	maps       *yardmap.Builder
	store      *inventory.Store
	now        func() time.Time
}

// New builds a Terminal from a validated configuration.
func New(logger *zap.Logger, conf *config.Configuration) (*Terminal, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if conf == nil {
		conf = config.DefaultConfiguration()
	}

	parser, err := conf.Parser()
	if err != nil {
		return nil, err
	}
	capacities, dims, err := conf.Tables()
	if err != nil {
		return nil, fmt.Errorf("failed to build yard tables: %w", err)
	}
	policy, err := conf.Policy()
	if err != nil {
		return nil, fmt.Errorf("failed to build allocation policy: %w", err)
	}
	planner, err := allocation.NewPlanner(logger, policy)
	if err != nil {
		return nil, err
	}

	return &Terminal{
		logger:     logger,
		conf:       conf,
		parser:     parser,
		capacities: capacities,
		thresholds: conf.OccupancyThresholds(),
		planner:    planner,
		maps:       yardmap.NewBuilder(logger, dims),
		store:      inventory.NewStore(),
		now:        time.Now,
	}, nil
}

// Config returns the configuration the terminal was built from.
func (t *Terminal) Config() *config.Configuration {
	return t.conf
}

// Thresholds returns the occupancy status bounds.
func (t *Terminal) Thresholds() occupancy.Thresholds {
	return t.thresholds
}

// Capacities returns the yard capacity table.
func (t *Terminal) Capacities() yard.CapacityTable {
	return t.capacities
}

// Load enriches rows into a new snapshot and makes it current.
func (t *Terminal) Load(rows []inventory.RawRow, source string) *inventory.Snapshot {
	snapshot := inventory.NewSnapshot(t.logger, t.parser, rows, source, t.now())
	previous := t.store.Replace(snapshot)

	fields := []zap.Field{
		zap.String("op", "terminal.Load"),
		zap.String("snapshot", snapshot.ID),
		zap.String("source", source),
		zap.Int("containers", len(snapshot.Records)),
		zap.Int("downgraded", snapshot.Report.Downgraded),
	}
	if previous != nil {
		fields = append(fields, zap.String("replaced", previous.ID))
	}
	t.logger.Info(snapshot.Summary(), fields...)
	return snapshot
}

// LoadCSV reads a CSV inventory and makes it current.
func (t *Terminal) LoadCSV(r io.Reader, source string) (*inventory.Snapshot, error) {
	rows, err := inventory.ReadCSV(r)
	if err != nil {
		return nil, err
	}
	return t.Load(rows, source), nil
}

// Snapshot returns the current snapshot.
func (t *Terminal) Snapshot() (*inventory.Snapshot, error) {
	snapshot := t.store.Current()
	if snapshot == nil {
		return nil, ErrNoSnapshot
	}
	return snapshot, nil
}

// Occupancy aggregates the current snapshot.
func (t *Terminal) Occupancy() (occupancy.Report, *inventory.Snapshot, error) {
	snapshot, err := t.Snapshot()
	if err != nil {
		return occupancy.Report{}, nil, err
	}
	return occupancy.Summarize(t.logger, snapshot.Records, t.capacities), snapshot, nil
}

// Plan validates the request and plans it against the current snapshot.
func (t *Terminal) Plan(request allocation.Request) (allocation.Plan, *inventory.Snapshot, error) {
	if err := request.Validate(); err != nil {
		return allocation.Plan{}, nil, err
	}
	snapshot, err := t.Snapshot()
	if err != nil {
		return allocation.Plan{}, nil, err
	}
	current := occupancy.Aggregate(snapshot.Records, t.capacities)
	return t.planner.Plan(request, current), snapshot, nil
}

// Map draws one block of the current snapshot.
func (t *Terminal) Map(block string, opts yardmap.Options) (yardmap.Maps, error) {
	snapshot, err := t.Snapshot()
	if err != nil {
		return yardmap.Maps{}, err
	}
	return t.maps.Build(snapshot.Records, block, opts)
}
