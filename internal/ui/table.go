package ui

import (
	"fmt"
	"math"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/muurk/canplot/internal/signal"
)

// SignalSummary aggregates one decoded trace for display
type SignalSummary struct {
	Name    string
	Color   string
	ArbID   string
	Type    string
	Points  int
	Skipped int
	Min     float64
	Max     float64
	First   float64 // Timestamp of the first point
	Last    float64 // Timestamp of the last point
}

// Summarize computes display statistics for a result. Non-finite physical
// values are left out of Min and Max.
func Summarize(res *signal.Result, cfg signal.Config) SignalSummary {
	s := SignalSummary{
		Name:    res.SignalName,
		Color:   cfg.Color,
		ArbID:   cfg.ArbitrationID,
		Type:    string(cfg.DataType),
		Points:  len(res.DataPoints),
		Skipped: len(res.Skipped),
		Min:     math.NaN(),
		Max:     math.NaN(),
	}

	for i, p := range res.DataPoints {
		if i == 0 {
			s.First = p.Timestamp
		}
		s.Last = p.Timestamp

		v := p.PhysicalValue
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		if math.IsNaN(s.Min) || v < s.Min {
			s.Min = v
		}
		if math.IsNaN(s.Max) || v > s.Max {
			s.Max = v
		}
	}
	return s
}

// newTable creates a table with the shared look. Numeric columns are right aligned.
func newTable(width int, numeric map[int]bool, headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(MutedColor)).
		Headers(headers...).
		Width(width).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return TableHeaderStyle
			case numeric[col]:
				return TableNumberStyle
			default:
				return TableCellStyle
			}
		})
}

// RenderSummaryTable renders one row per extracted signal
func RenderSummaryTable(summaries []SignalSummary, width int) string {
	t := newTable(width, map[int]bool{3: true, 4: true, 5: true, 6: true},
		"Signal", "ArbID", "Type", "Points", "Skipped", "Min", "Max")

	for _, s := range summaries {
		t.Row(
			SignalColorStyle(s.Color).Render("■")+" "+s.Name,
			s.ArbID,
			s.Type,
			strconv.Itoa(s.Points),
			strconv.Itoa(s.Skipped),
			FormatValue(s.Min),
			FormatValue(s.Max),
		)
	}
	return t.String()
}

// RenderDataPoints renders up to limit points of a trace. A limit of zero or
// less renders every point.
func RenderDataPoints(res *signal.Result, limit, width int) string {
	t := newTable(width, map[int]bool{0: true, 1: true, 2: true},
		"Timestamp", "Raw", "Physical")

	points := res.DataPoints
	if limit > 0 && len(points) > limit {
		points = points[:limit]
	}
	for _, p := range points {
		t.Row(FormatValue(p.Timestamp), FormatValue(p.RawValue), FormatValue(p.PhysicalValue))
	}

	out := t.String()
	if hidden := len(res.DataPoints) - len(points); hidden > 0 {
		out += "\n" + StepNoteStyle.Render(fmt.Sprintf("  … %d more points", hidden))
	}
	return out
}

// RenderSkipped renders the skip diagnostics of a trace
func RenderSkipped(res *signal.Result, width int) string {
	t := newTable(width, map[int]bool{0: true, 1: true},
		"Index", "Timestamp", "Reason", "Error")

	for _, s := range res.Skipped {
		t.Row(strconv.Itoa(s.Index), FormatValue(s.Timestamp), string(s.Reason), s.Message)
	}
	return t.String()
}

// ArbIDRow is one line of the arbitration id listing
type ArbIDRow struct {
	ArbID       string
	Messages    int
	PayloadBits uint32
}

// ArbIDRows counts messages and payload size for each id, in the given order
func ArbIDRows(ids []string, messages []signal.Message) []ArbIDRow {
	counts := make(map[string]int, len(ids))
	for _, m := range messages {
		counts[m.ArbitrationID]++
	}

	rows := make([]ArbIDRow, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, ArbIDRow{
			ArbID:       id,
			Messages:    counts[id],
			PayloadBits: signal.MaxPayloadSize(messages, id),
		})
	}
	return rows
}

// RenderArbIDTable renders the arbitration id listing
func RenderArbIDTable(rows []ArbIDRow, width int) string {
	t := newTable(width, map[int]bool{1: true, 2: true}, "ArbID", "Messages", "Payload bits")
	for _, r := range rows {
		t.Row(r.ArbID, strconv.Itoa(r.Messages), strconv.FormatUint(uint64(r.PayloadBits), 10))
	}
	return t.String()
}

// FormatValue formats a number compactly; NaN renders as "-"
func FormatValue(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return strconv.FormatFloat(v, 'g', 10, 64)
}

// RenderSignalConfigs renders the definitions of a signal set
func RenderSignalConfigs(configs []signal.Config, width int) string {
	t := newTable(width, map[int]bool{3: true, 6: true, 7: true},
		"ID", "Name", "ArbID", "Start", "Type", "Endian", "Scale", "Offset")

	for _, c := range configs {
		start := "-"
		if c.StartBit != nil {
			start = strconv.Itoa(*c.StartBit)
		}
		t.Row(
			c.ID,
			SignalColorStyle(c.Color).Render("■")+" "+c.NameOrDefault(),
			c.ArbitrationID,
			start,
			string(c.DataType),
			string(c.Endianness),
			FormatValue(c.ScaleOrDefault()),
			FormatValue(c.OffsetOrDefault()),
		)
	}
	return t.String()
}
