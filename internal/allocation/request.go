package allocation

import (
	"fmt"
	"strings"
)

// Berth is the nominated berth of an incoming lot.
type Berth string

const (
	Berth1A   Berth = "BERTH_1A"
	Berth1B   Berth = "BERTH_1B"
	Berth2    Berth = "BERTH_2"
	BerthNone Berth = "NONE"
)

// Berths lists every known berth.
func Berths() []Berth {
	return []Berth{Berth1A, Berth1B, Berth2, BerthNone}
}

// ParseBerth accepts case-insensitive names with or without the BERTH_
// prefix ("1a", "berth_1a", "BERTH-1A"). Empty selects BerthNone.
func ParseBerth(value string) (Berth, error) {
	key := strings.ToUpper(strings.TrimSpace(value))
	key = strings.ReplaceAll(key, "-", "_")
	key = strings.ReplaceAll(key, " ", "_")
	if key == "" {
		return BerthNone, nil
	}
	if !strings.HasPrefix(key, "BERTH_") && key != string(BerthNone) {
		key = "BERTH_" + key
	}
	for _, b := range Berths() {
		if string(b) == key {
			return b, nil
		}
	}
	return "", fmt.Errorf("unknown berth %q", value)
}

// Request describes an incoming lot.
type Request struct {
	TotalCount    int   `json:"totalCount"`
	TwentyPercent int   `json:"twentyPercent"`
	ReeferCount   int   `json:"reeferCount"`
	Berth         Berth `json:"berth"`
}

// Validate checks the request against its documented domain.
func (r Request) Validate() error {
	if r.TotalCount < 1 {
		return fmt.Errorf("totalCount must be at least 1, got %d", r.TotalCount)
	}
	if r.TwentyPercent < 0 || r.TwentyPercent > 100 {
		return fmt.Errorf("twentyPercent must be between 0 and 100, got %d", r.TwentyPercent)
	}
	if r.ReeferCount < 0 || r.ReeferCount > r.TotalCount {
		return fmt.Errorf("reeferCount must be between 0 and totalCount (%d), got %d", r.TotalCount, r.ReeferCount)
	}
	if _, err := ParseBerth(string(r.Berth)); err != nil {
		return err
	}
	return nil
}

// normalized clamps every field into its domain so planning always proceeds.
func (r Request) normalized() Request {
	out := r
	if out.TotalCount < 0 {
		out.TotalCount = 0
	}
	if out.TwentyPercent < 0 {
		out.TwentyPercent = 0
	}
	if out.TwentyPercent > 100 {
		out.TwentyPercent = 100
	}
	if out.ReeferCount < 0 {
		out.ReeferCount = 0
	}
	if out.ReeferCount > out.TotalCount {
		out.ReeferCount = out.TotalCount
	}
	if berth, err := ParseBerth(string(out.Berth)); err == nil {
		out.Berth = berth
	} else {
		out.Berth = BerthNone
	}
	return out
}
