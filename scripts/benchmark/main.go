// Benchmark for the extraction heuristics: generates synthetic
// buyers-guide pages of increasing size and times table resolution,
// row-field extraction, and part-link discovery over static surfaces.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/use-agent/buyersguide/dom"
	"github.com/use-agent/buyersguide/extract"
)

var (
	runs   = flag.Int("runs", 5, "Number of runs per page size for averaging")
	output = flag.String("output", "benchmark-results.json", "JSON output file path")
)

var pageSizes = []int{10, 100, 1000, 5000}

type runResult struct {
	Run        int   `json:"run"`
	ResolveUs  int64 `json:"resolve_us"`
	ExtractUs  int64 `json:"extract_us"`
	Rows       int   `json:"rows"`
	LinksFound int   `json:"links_found"`
}

type sizeResult struct {
	RowCount int         `json:"row_count"`
	Runs     []runResult `json:"runs"`

	AvgResolveUs float64 `json:"avg_resolve_us"`
	AvgExtractUs float64 `json:"avg_extract_us"`
}

type report struct {
	Timestamp   string       `json:"timestamp"`
	RunsPerSize int          `json:"runs_per_size"`
	Results     []sizeResult `json:"results"`
}

func main() {
	flag.Parse()

	fmt.Println("=== Extraction Heuristics Benchmark ===")
	fmt.Printf("Runs/size: %d\n", *runs)
	fmt.Printf("Output:    %s\n", *output)
	fmt.Println()

	rep := report{
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		RunsPerSize: *runs,
	}

	for _, size := range pageSizes {
		fmt.Printf("Benchmarking %d-row page ...\n", size)
		html := syntheticGuidePage(size)

		sr := sizeResult{RowCount: size}
		for i := 1; i <= *runs; i++ {
			rr, err := benchmarkPage(html, i)
			if err != nil {
				fmt.Fprintf(os.Stderr, "  run %d failed: %v\n", i, err)
				continue
			}
			fmt.Printf("  Run %d/%d: resolve %dµs, extract %dµs\n",
				i, *runs, rr.ResolveUs, rr.ExtractUs)
			sr.Runs = append(sr.Runs, rr)
		}

		computeAverages(&sr)
		rep.Results = append(rep.Results, sr)
		fmt.Println()
	}

	printTable(rep.Results)

	if err := writeJSON(*output, rep); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing JSON output: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\nDetailed results written to %s\n", *output)
}

// syntheticGuidePage builds a guide table with the given row count.
func syntheticGuidePage(rows int) string {
	var b strings.Builder
	b.WriteString(`<html><body><table>
<thead><tr><th>Vehicle</th><th>Engine</th><th>Parts</th></tr></thead><tbody>`)
	for i := 0; i < rows; i++ {
		fmt.Fprintf(&b, `<tr><td>%d Make Model %d</td><td>2.%dL L4</td>`+
			`<td><a href="/parts/skp%d">SKP %d</a> <a href="/parts/int%d">Interchange %d</a></td></tr>`,
			1990+i%30, i, i%10, i, i, i, i)
	}
	b.WriteString(`</tbody></table></body></html>`)
	return b.String()
}

func benchmarkPage(html string, run int) (runResult, error) {
	surface, err := dom.ParseSurface("https://bench.local/guide", strings.NewReader(html))
	if err != nil {
		return runResult{}, err
	}

	start := time.Now()
	table := extract.ResolveTable(surface)
	resolveDur := time.Since(start)

	links := 0
	start = time.Now()
	for _, row := range table.Rows {
		extract.RowFields(row, table)
		if extract.FindPartLink(row, extract.SKPPattern) != nil {
			links++
		}
		if extract.FindPartLink(row, extract.InterchangePattern) != nil {
			links++
		}
	}
	extractDur := time.Since(start)

	return runResult{
		Run:        run,
		ResolveUs:  resolveDur.Microseconds(),
		ExtractUs:  extractDur.Microseconds(),
		Rows:       len(table.Rows),
		LinksFound: links,
	}, nil
}

func computeAverages(sr *sizeResult) {
	if len(sr.Runs) == 0 {
		return
	}
	for _, r := range sr.Runs {
		sr.AvgResolveUs += float64(r.ResolveUs)
		sr.AvgExtractUs += float64(r.ExtractUs)
	}
	n := float64(len(sr.Runs))
	sr.AvgResolveUs /= n
	sr.AvgExtractUs /= n
}

func printTable(results []sizeResult) {
	fmt.Println(strings.Repeat("─", 60))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Rows\tResolve (avg)\tExtract (avg)\tPer Row\n")
	fmt.Fprintf(w, "────\t─────────────\t─────────────\t───────\n")

	for _, r := range results {
		perRow := 0.0
		if r.RowCount > 0 {
			perRow = r.AvgExtractUs / float64(r.RowCount)
		}
		fmt.Fprintf(w, "%d\t%.0fµs\t%.0fµs\t%.1fµs\n",
			r.RowCount, r.AvgResolveUs, r.AvgExtractUs, perRow)
	}

	w.Flush()
	fmt.Println(strings.Repeat("─", 60))
}

func writeJSON(path string, rep report) error {
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
