package inventory

import (
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/yard-planner/pkg/datetime"
	"github.com/iwvelando/yard-planner/pkg/position"
	"go.uber.org/zap"
)

// Snapshot is one uploaded inventory. It is never mutated after creation;
// a new upload produces a new Snapshot.
type Snapshot struct {
	ID       string       `json:"id"`
	LoadedAt time.Time    `json:"loadedAt"`
	Source   string       `json:"source,omitempty"`
	Records  []Record     `json:"-"`
	Report   EnrichReport `json:"report"`
}

// NewSnapshot enriches rows into a fresh snapshot.
func NewSnapshot(logger *zap.Logger, parser position.Parser, rows []RawRow, source string, loadedAt time.Time) *Snapshot {
	records, report := Enrich(logger, parser, rows)
	return &Snapshot{
		ID:       uuid.NewString(),
		LoadedAt: loadedAt,
		Source:   source,
		Records:  records,
		Report:   report,
	}
}

// TotalTEU sums the TEU of all records.
func (s *Snapshot) TotalTEU() int {
	total := 0
	for _, record := range s.Records {
		total += record.TEU
	}
	return total
}

// Ships returns the distinct ship names in first-seen order.
func (s *Snapshot) Ships() []string {
	seen := make(map[string]struct{})
	var ships []string
	for _, record := range s.Records {
		if record.ShipName == "" {
			continue
		}
		if _, ok := seen[record.ShipName]; ok {
			continue
		}
		seen[record.ShipName] = struct{}{}
		ships = append(ships, record.ShipName)
	}
	return ships
}

// Summary is the operator-facing upload confirmation.
func (s *Snapshot) Summary() string {
	msg := fmt.Sprintf("updated %d containers, %d TEU, %s",
		len(s.Records), s.TotalTEU(), datetime.FormatSnapshotTime(s.LoadedAt))
	if s.Report.Downgraded > 0 {
		msg += fmt.Sprintf(" (%d positions downgraded)", s.Report.Downgraded)
	}
	return msg
}

// Store holds the current snapshot. Replace swaps the whole snapshot so
// readers always see a consistent record set.
type Store struct {
	current atomic.Pointer[Snapshot]
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// Current returns the current snapshot, or nil before the first upload.
func (s *Store) Current() *Snapshot {
	return s.current.Load()
}

// Replace installs a new snapshot and returns the previous one.
func (s *Store) Replace(snapshot *Snapshot) *Snapshot {
	return s.current.Swap(snapshot)
}

func rowID(index int) string {
	return "row-" + strconv.Itoa(index+1)
}
