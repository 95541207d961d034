package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/hydrosift/watershed/internal/model"
)

// summaryOrder fixes the stage listing of the stdout summary
var summaryOrder = []model.StageID{
	model.StageFillSinks,
	model.StageFlowDirection,
	model.StageFlowAccumulation,
	model.StageStreamNetwork,
	model.StageWatershedBasins,
	model.StageStatistics,
}

// WriteSummary prints the run's artifact listing to w after a successful run
func WriteSummary(w io.Writer, result *model.RunResult) {
	if result == nil {
		return
	}

	rule := strings.Repeat("=", 50)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "DELINEATION RESULTS:")
	fmt.Fprintln(w, rule)

	for _, stage := range summaryOrder {
		if path, ok := result.Artifacts[stage]; ok {
			fmt.Fprintf(w, "%s: %s\n", stage, path)
		}
	}
	fmt.Fprintf(w, "watersheds delineated: %d\n", len(result.Statistics))
}
