// Package position parses raw yard slot codes such as "A1-12-03-4" into
// block, bay, row and tier coordinates.
package position

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/iwvelando/yard-planner/pkg/constants"
)

// Separator splits the segments of a slot code.
const Separator = "-"

// prefixLength is the block length kept in BlockModePrefix.
const prefixLength = 2

// Kind classifies a failed parse.
type Kind string

const (
	// KindMissingField means a bay, row or tier segment is empty.
	KindMissingField Kind = "MissingField"
	// KindMalformedCode means the code has too few segments, a block segment with
	// stray characters, or a non-numeric tier.
	KindMalformedCode Kind = "MalformedCode"
	// KindUnknownPosition means the first segment is empty.
	KindUnknownPosition Kind = "UnknownPosition"
)

var (
	ErrMissingField    = errors.New("missing position field")
	ErrMalformedCode   = errors.New("malformed position code")
	ErrUnknownPosition = errors.New("unknown position")
)

// ParseError describes why a raw code could not be turned into a full coordinate.
type ParseError struct {
	Kind   Kind
	Raw    string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("position %q: %s: %s", e.Raw, e.Kind, e.Reason)
}

// Unwrap maps the kind onto its sentinel so callers can use errors.Is.
func (e *ParseError) Unwrap() error {
	switch e.Kind {
	case KindMissingField:
		return ErrMissingField
	case KindMalformedCode:
		return ErrMalformedCode
	default:
		return ErrUnknownPosition
	}
}

// Coordinate is a parsed slot. Values are never mutated after parsing.
type Coordinate struct {
	Block string `json:"block"`
	Bay   string `json:"bay"`
	Row   string `json:"row"`
	Tier  int    `json:"tier"`
}

// Known reports whether the coordinate points into a named block.
func (c Coordinate) Known() bool {
	return c.Block != "" && c.Block != constants.UnknownBlock
}

// UnknownCoordinate is returned for blank positions.
func UnknownCoordinate() Coordinate {
	return Coordinate{Block: constants.UnknownBlock}
}

// Outcome is the result of parsing one raw code. Block is always set, even
// when Err is non-nil, because aggregation only needs the block.
type Outcome struct {
	Block      string
	Coordinate *Coordinate
	Err        error
}

// Failed reports whether the code was downgraded.
func (o Outcome) Failed() bool {
	return o.Err != nil
}

// Kind returns the failure kind, or "" for a successful parse.
func (o Outcome) Kind() Kind {
	var pe *ParseError
	if errors.As(o.Err, &pe) {
		return pe.Kind
	}
	return ""
}

// BlockMode selects how the block code is read from the first segment.
type BlockMode string

const (
	// BlockModePrefix keeps the first two characters, e.g. "A12" -> "A1".
	BlockModePrefix BlockMode = constants.BlockModePrefix
	// BlockModeFull keeps the whole first segment, e.g. "A12" -> "A12".
	BlockModeFull BlockMode = constants.BlockModeFull
)

// ParseBlockMode converts a configuration string into a BlockMode. An empty
// string selects BlockModePrefix.
func ParseBlockMode(value string) (BlockMode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", constants.BlockModePrefix:
		return BlockModePrefix, nil
	case constants.BlockModeFull:
		return BlockModeFull, nil
	default:
		return "", fmt.Errorf("invalid block mode %q: expected %s or %s", value, constants.BlockModePrefix, constants.BlockModeFull)
	}
}

// Parser turns raw slot codes into Outcomes. The zero value uses BlockModePrefix.
type Parser struct {
	mode BlockMode
}

// NewParser returns a parser using the given block mode.
func NewParser(mode BlockMode) Parser {
	return Parser{mode: mode}
}

// Mode returns the block extraction mode in effect.
func (p Parser) Mode() BlockMode {
	if p.mode == "" {
		return BlockModePrefix
	}
	return p.mode
}

// Parse never panics and never returns a nil Outcome. Blank input is the
// normal "not yet placed" case and is not an error.
func (p Parser) Parse(raw string) Outcome {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || strings.EqualFold(trimmed, constants.UnknownBlock) {
		unknown := UnknownCoordinate()
		return Outcome{Block: constants.UnknownBlock, Coordinate: &unknown}
	}

	segments := strings.Split(trimmed, Separator)
	block, clean := p.extractBlock(segments[0])
	if block == "" {
		return Outcome{
			Block: constants.UnknownBlock,
			Err:   &ParseError{Kind: KindUnknownPosition, Raw: raw, Reason: "no block code in first segment"},
		}
	}
	if !clean {
		return Outcome{
			Block: block,
			Err:   &ParseError{Kind: KindMalformedCode, Raw: raw, Reason: "block segment has separators other than " + Separator},
		}
	}

	if len(segments) < 4 {
		return Outcome{
			Block: block,
			Err:   &ParseError{Kind: KindMalformedCode, Raw: raw, Reason: fmt.Sprintf("expected 4 segments, got %d", len(segments))},
		}
	}

	bay := strings.TrimSpace(segments[1])
	row := strings.TrimSpace(segments[2])
	tierStr := strings.TrimSpace(segments[3])
	fields := []struct{ name, value string }{{"bay", bay}, {"row", row}, {"tier", tierStr}}
	for _, f := range fields {
		if f.value == "" {
			return Outcome{
				Block: block,
				Err:   &ParseError{Kind: KindMissingField, Raw: raw, Reason: f.name + " is empty"},
			}
		}
	}

	tier, err := strconv.Atoi(tierStr)
	if err != nil {
		return Outcome{
			Block: block,
			Err:   &ParseError{Kind: KindMalformedCode, Raw: raw, Reason: fmt.Sprintf("tier %q is not an integer", tierStr)},
		}
	}

	return Outcome{
		Block:      block,
		Coordinate: &Coordinate{Block: block, Bay: bay, Row: row, Tier: tier},
	}
}

// ExtractBlock returns only the block code for a raw position, "Unknown" when
// none can be read.
func (p Parser) ExtractBlock(raw string) string {
	return p.Parse(raw).Block
}

// extractBlock reads the block from the first segment. clean is false when
// the segment holds anything but letters and digits.
func (p Parser) extractBlock(segment string) (block string, clean bool) {
	token := strings.ToUpper(strings.TrimSpace(segment))
	if token == "" {
		return "", false
	}
	clean = strings.IndexFunc(token, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) < 0
	if p.Mode() == BlockModePrefix {
		runes := []rune(token)
		if len(runes) > prefixLength {
			token = string(runes[:prefixLength])
		}
	}
	return token, clean
}
