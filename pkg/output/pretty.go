package output

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/iwvelando/yard-planner/internal/allocation"
	"github.com/iwvelando/yard-planner/internal/occupancy"
	"github.com/iwvelando/yard-planner/internal/yardmap"
	"github.com/iwvelando/yard-planner/pkg/format"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	colorOK       = lipgloss.Color("#00FF99")
	colorWarning  = lipgloss.Color("#F59E0B")
	colorCritical = lipgloss.Color("#FF0055")
	colorSubtle   = lipgloss.Color("#64748B")
)

// styles are bound to the destination writer so colour is only emitted on
// terminals.
type styles struct {
	title    lipgloss.Style
	ok       lipgloss.Style
	warning  lipgloss.Style
	critical lipgloss.Style
	subtle   lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		title:    r.NewStyle().Bold(true),
		ok:       r.NewStyle().Foreground(colorOK),
		warning:  r.NewStyle().Foreground(colorWarning).Bold(true),
		critical: r.NewStyle().Foreground(colorCritical).Bold(true),
		subtle:   r.NewStyle().Foreground(colorSubtle),
	}
}

func (s styles) status(status occupancy.Status) string {
	switch status {
	case occupancy.StatusCritical:
		return s.critical.Render(string(status))
	case occupancy.StatusWarning:
		return s.warning.Render(string(status))
	default:
		return s.ok.Render(string(status))
	}
}

// occupancyPretty outputs a human-readable rather than machine-readable table.
func occupancyPretty(w io.Writer, report occupancy.Report, thresholds occupancy.Thresholds) error {
	p := message.NewPrinter(language.English)
	st := newStyles(w)

	_, _ = fmt.Fprintln(w, st.title.Render("--- Yard occupancy ---"))
	_, _ = fmt.Fprintf(w, "%-5s | %18s | %6s | %5s | %5s | %6s | %s\n", "Block", "Used / Capacity", "Full", "20'", "40+'", "Reefer", "Status")
	_, _ = fmt.Fprintf(w, "%-5s | %18s | %6s | %5s | %5s | %6s | %s\n", "_____", "_______________", "____", "___", "____", "______", "______")
	for _, block := range Classified(report.Blocks, thresholds) {
		usage := fmt.Sprintf("%s/%s", format.Count(block.UsedTEU), format.Count(block.CapacityTEU))
		_, _ = p.Fprintf(w, "%-5s | %18s | %6s | %5d | %5d | %6d | %s\n",
			block.Block, usage, format.Percent(block.PercentFull),
			block.CountTwenty, block.CountFortyPlus, block.ReeferCount, st.status(block.Status))
	}

	_, _ = fmt.Fprintf(w, "\nTotal: %s, %s containers\n",
		format.Usage(report.TotalTEU, report.TotalCapacity, report.PercentFull), format.Count(report.Containers))
	if report.UnknownCount > 0 {
		_, _ = fmt.Fprintln(w, st.warning.Render(fmt.Sprintf("Unknown position: %s containers", format.Count(report.UnknownCount))))
	}
	if len(report.UnmappedBlocks) > 0 {
		blocks := make([]string, 0, len(report.UnmappedBlocks))
		for block := range report.UnmappedBlocks {
			blocks = append(blocks, block)
		}
		sort.Strings(blocks)
		parts := make([]string, 0, len(blocks))
		for _, block := range blocks {
			parts = append(parts, fmt.Sprintf("%s (%d)", block, report.UnmappedBlocks[block]))
		}
		_, _ = fmt.Fprintln(w, st.warning.Render("Blocks missing from the yard table: "+strings.Join(parts, ", ")))
	}
	return nil
}

func planPretty(w io.Writer, plan allocation.Plan) error {
	p := message.NewPrinter(language.English)
	st := newStyles(w)
	req := plan.Request

	_, _ = fmt.Fprintln(w, st.title.Render(fmt.Sprintf("--- Allocation plan %s ---", plan.ID)))
	_, _ = p.Fprintf(w, "Lot: %d containers (%d x 20', %d x 40+', %d reefer), berth %s\n",
		req.TotalCount, plan.Count20, plan.Count40, req.ReeferCount, req.Berth)
	_, _ = fmt.Fprintf(w, "Priority: %s\n", strings.Join(plan.PriorityList, ", "))
	_, _ = fmt.Fprintf(w, "%-6s | %-5s | %5s | %5s | %6s | %6s | %s\n", "Pass", "Block", "20'", "40+'", "Reefer", "TEU", "Full after")
	_, _ = fmt.Fprintf(w, "%-6s | %-5s | %5s | %5s | %6s | %6s | %s\n", "____", "_____", "___", "____", "______", "___", "__________")
	for _, line := range plan.Lines {
		note := ""
		if line.Overflow {
			note = " " + st.subtle.Render("(overflow)")
		}
		_, _ = p.Fprintf(w, "%-6s | %-5s | %5d | %5d | %6d | %6d | %s%s\n",
			line.Pass, line.Block, line.Count20, line.Count40, line.ReeferCount, line.TEU, format.Percent(line.ResultingPercent), note)
	}

	if !plan.NeedsRelocation() {
		_, _ = fmt.Fprintln(w, st.ok.Render("Residual: none"))
		return nil
	}
	res := plan.Residual
	_, _ = fmt.Fprintln(w, st.critical.Render(p.Sprintf(
		"Residual: %d x 20', %d x 40+', %d reefer - insufficient yard space, internal relocation required",
		res.Count20, res.Count40, res.ReeferCount)))
	return nil
}

func mapPretty(w io.Writer, maps yardmap.Maps) error {
	st := newStyles(w)
	title := fmt.Sprintf("--- Block %s top view", maps.Block)
	if maps.Ship != "" {
		title += fmt.Sprintf(" (ship %s)", maps.Ship)
	}
	_, _ = fmt.Fprintln(w, st.title.Render(title+" ---"))

	_, _ = fmt.Fprintf(w, "%-4s", "")
	for _, label := range maps.Top.ColumnLabels {
		_, _ = fmt.Fprintf(w, "%-3s", label)
	}
	_, _ = fmt.Fprintln(w)
	for r, row := range maps.Top.Cells {
		_, _ = fmt.Fprintf(w, "%-4s", "R"+maps.Top.RowLabels[r])
		for b, cell := range row {
			symbol := cell.String()
			if cell != yardmap.CellEmpty {
				symbol += fmt.Sprint(maps.Heights[r][b])
			}
			_, _ = fmt.Fprintf(w, "%-3s", symbol)
		}
		_, _ = fmt.Fprintln(w)
	}

	_, _ = fmt.Fprintln(w, st.title.Render(fmt.Sprintf("--- Block %s profile ---", maps.Block)))
	rows := maps.Dimensions.NumRows
	for t, tier := range maps.Profile.Cells {
		var b strings.Builder
		for c, cell := range tier {
			if c > 0 && c%rows == 0 {
				b.WriteByte('|')
			}
			b.WriteString(cell.String())
		}
		_, _ = fmt.Fprintf(w, "%-4s%s\n", "T"+maps.Profile.RowLabels[t], b.String())
	}
	_, _ = fmt.Fprintln(w, st.subtle.Render(fmt.Sprintf("%d containers drawn, %d outside block dimensions; X origin, + 40' extension",
		maps.Placed, maps.Skipped)))
	return nil
}
