// Package extract implements the structural resolvers of the
// buyers-guide pipeline: table and row location, labeled-value lookup,
// specification aggregation, and part-link discovery. Every resolver
// is an ordered chain of independent strategies; the first non-empty
// result wins and structural absence is never an error.
package extract

import (
	"log/slog"
	"strings"

	"github.com/use-agent/buyersguide/dom"
)

// Label patterns for the primary table's columns.
const (
	VehiclePattern = `vehicle`
	EnginePattern  = `engine`
)

// rowMarkerSelector matches elements carrying an explicit row marker,
// used when the selected table has no body rows or no table was found.
const rowMarkerSelector = `[role="row"], .row, .data-row`

// rowLikeSelector is the last-resort row set.
const rowLikeSelector = `tr, li`

// Table is the resolved primary data table: the rows to iterate and
// the column positions for the vehicle and engine fields. A column
// index of -1 means no matching header exists and the positional
// fallback applies. An empty Rows slice is a valid result.
type Table struct {
	Rows       []dom.Node
	VehicleCol int
	EngineCol  int

	// Strategy records which detection strategy fired, for diagnostics.
	Strategy string
}

// ResolveTable locates the primary data table on the surface.
//
// Priority order: a table whose header cells match both the vehicle
// and engine patterns; any table whose visible text mentions
// "vehicle"; no table, falling back to row-marked then row-like
// elements anywhere in the document.
func ResolveTable(s dom.Surface) Table {
	t := Table{VehicleCol: -1, EngineCol: -1}

	vehicleRe := dom.Pattern(VehiclePattern)
	engineRe := dom.Pattern(EnginePattern)

	tables := s.Find("table")

	var selected dom.Node
	for _, tbl := range tables {
		headers := headerCells(tbl)
		foundVehicle, foundEngine := false, false
		for _, h := range headers {
			text := dom.NormalizeSpace(h.Text())
			if vehicleRe.MatchString(text) {
				foundVehicle = true
			}
			if engineRe.MatchString(text) {
				foundEngine = true
			}
		}
		if foundVehicle && foundEngine {
			selected = tbl
			t.Strategy = "header-match"
			break
		}
	}

	if selected == nil {
		for _, tbl := range tables {
			if vehicleRe.MatchString(tbl.Text()) {
				selected = tbl
				t.Strategy = "text-match"
				break
			}
		}
	}

	if selected != nil {
		headers := headerCells(selected)
		for i, h := range headers {
			text := dom.NormalizeSpace(h.Text())
			if t.VehicleCol < 0 && vehicleRe.MatchString(text) {
				t.VehicleCol = i
			}
			if t.EngineCol < 0 && engineRe.MatchString(text) {
				t.EngineCol = i
			}
		}
		t.Rows = bodyRows(selected)
	}

	if len(t.Rows) == 0 {
		if marked := s.Find(rowMarkerSelector); len(marked) > 0 {
			t.Rows = marked
			t.Strategy = "row-marker"
		} else if rowLike := s.Find(rowLikeSelector); len(rowLike) > 0 {
			t.Rows = rowLike
			t.Strategy = "row-like"
		}
	}

	if t.Strategy == "" {
		t.Strategy = "none"
	}
	slog.Debug("table resolved",
		"strategy", t.Strategy,
		"rows", len(t.Rows),
		"vehicleCol", t.VehicleCol,
		"engineCol", t.EngineCol,
	)
	return t
}

// headerCells enumerates a table's header cells: thead cells when a
// thead exists, bare th cells otherwise, and finally the first row's
// cells for tables with no header markup at all.
func headerCells(tbl dom.Node) []dom.Node {
	if cells := tbl.Find("thead th, thead td"); len(cells) > 0 {
		return cells
	}
	if cells := tbl.Find("th"); len(cells) > 0 {
		return cells
	}
	if rows := tbl.Find("tr"); len(rows) > 0 {
		return rows[0].Find("td")
	}
	return nil
}

// bodyRows returns the table's data rows, skipping pure header rows
// (rows consisting only of th cells).
func bodyRows(tbl dom.Node) []dom.Node {
	rows := tbl.Find("tbody tr")
	if len(rows) == 0 {
		rows = tbl.Find("tr")
	}
	out := make([]dom.Node, 0, len(rows))
	for _, r := range rows {
		if len(r.Find("td")) == 0 && len(r.Find("th")) > 0 {
			continue
		}
		out = append(out, r)
	}
	return out
}

// RowFields reads the vehicle and engine fields from one row. When a
// column index is known the cell's trimmed text is used; otherwise the
// row's full text is split by line breaks and the first line becomes
// the vehicle, the second the engine. The positional fallback is a
// lower-confidence heuristic, never an error.
func RowFields(row dom.Node, t Table) (vehicle, engine string) {
	cells := row.Find("td, th")

	var lines []string
	lineAt := func(i int) string {
		if lines == nil {
			for _, line := range strings.Split(row.Text(), "\n") {
				if trimmed := dom.NormalizeSpace(line); trimmed != "" {
					lines = append(lines, trimmed)
				}
			}
			if lines == nil {
				lines = []string{}
			}
		}
		if i < len(lines) {
			return lines[i]
		}
		return ""
	}

	if t.VehicleCol >= 0 {
		if t.VehicleCol < len(cells) {
			vehicle = dom.NormalizeSpace(cells[t.VehicleCol].Text())
		}
	} else {
		vehicle = lineAt(0)
	}
	if t.EngineCol >= 0 {
		if t.EngineCol < len(cells) {
			engine = dom.NormalizeSpace(cells[t.EngineCol].Text())
		}
	} else {
		engine = lineAt(1)
	}
	return vehicle, engine
}
