package report

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/hydrosift/watershed/internal/model"
)

// Header lines of the statistics report
const (
	headerTitle = "Watershed Delineation Statistics"
	headerRule  = "================================"
)

// Writer serializes the per-watershed statistics mapping to a plain-text
// report. Pure formatting; contents are not validated.
type Writer struct{}

// NewWriter creates a report writer
func NewWriter() *Writer {
	return &Writer{}
}

// Write renders the statistics and writes them to path, overwriting any
// existing file
func (w *Writer) Write(path string, statistics map[string]model.WatershedStats) error {
	if err := os.WriteFile(path, []byte(w.Render(statistics)), 0o644); err != nil {
		return errors.Wrapf(err, "write report %s", path)
	}
	return nil
}

// Render formats the statistics mapping. Watershed blocks appear in
// positional order; each block renders area in km² then perimeter in
// meters, two decimals each, followed by elevation statistics when present.
func (w *Writer) Render(statistics map[string]model.WatershedStats) string {
	var b strings.Builder
	b.WriteString(headerTitle + "\n")
	b.WriteString(headerRule + "\n\n")

	for _, id := range sortedIDs(statistics) {
		entry := statistics[id]
		fmt.Fprintf(&b, "%s:\n", id)
		fmt.Fprintf(&b, "  Area: %.2f sq km\n", entry.AreaKM2)
		fmt.Fprintf(&b, "  Perimeter: %.2f meters\n", entry.PerimeterM)
		if entry.Elevation != nil {
			fmt.Fprintf(&b, "  Elevation min: %.2f meters\n", entry.Elevation.Min)
			fmt.Fprintf(&b, "  Elevation max: %.2f meters\n", entry.Elevation.Max)
			fmt.Fprintf(&b, "  Elevation mean: %.2f meters\n", entry.Elevation.Mean)
		}
		b.WriteString("\n")
	}

	return b.String()
}

// sortedIDs orders watershed_<i> keys by index; anything unexpected sorts
// lexically after the indexed keys
func sortedIDs(statistics map[string]model.WatershedStats) []string {
	ids := make([]string, 0, len(statistics))
	for id := range statistics {
		ids = append(ids, id)
	}

	sort.Slice(ids, func(i, j int) bool {
		a, aok := watershedIndex(ids[i])
		b, bok := watershedIndex(ids[j])
		switch {
		case aok && bok:
			return a < b
		case aok:
			return true
		case bok:
			return false
		default:
			return ids[i] < ids[j]
		}
	})

	return ids
}

func watershedIndex(id string) (int, bool) {
	rest, ok := strings.CutPrefix(id, "watershed_")
	if !ok {
		return 0, false
	}
	index, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false
	}
	return index, true
}
