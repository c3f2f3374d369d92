package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

type BenchmarkResult struct {
	Name       string  `json:"name"`
	Framework  string  `json:"framework"`
	Category   string  `json:"category"`
	Scenario   string  `json:"scenario"`
	Iterations int64   `json:"iterations"`
	NsPerOp    float64 `json:"ns_per_op"`
	BytesPerOp int64   `json:"bytes_per_op"`
	AllocsOp   int64   `json:"allocs_per_op"`
}

type CategoryResults struct {
	Category string
	Results  []BenchmarkResult
}

var frameworkColors = map[string]text.Colors{
	"Spool": {text.FgGreen},
	"Do":    {text.FgYellow},
	"Dig":   {text.FgMagenta},
	"Fx":    {text.FgBlue},
}

var categoryOrder = []string{
	"Provide_Simple", "Provide_Chain",
	"Invoke_Singleton", "Invoke_Chain", "Invoke_ChainTransient",
	"Named_10", "NamedResolve_10",
	"Lifecycle_10", "Lifecycle_50",
	"LifecycleWithWork_10", "LifecycleWithWork_50",
}

var categoryTitles = map[string]string{
	"Provide_Simple":        "Provider Registration (Simple)",
	"Provide_Chain":         "Provider Registration (Dependency Chain)",
	"Invoke_Singleton":      "Service Resolution (Singleton)",
	"Invoke_Chain":          "Service Resolution (Dependency Chain)",
	"Invoke_ChainTransient": "Service Resolution (Transient Chain)",
	"Named_10":              "Tagged Services (10 services)",
	"NamedResolve_10":       "Tagged Resolution (10 services)",
	"Lifecycle_10":          "Resolve and Dispose (10 services)",
	"Lifecycle_50":          "Resolve and Dispose (50 services)",
	"LifecycleWithWork_10":  "Resolve and Dispose with Work (10 services, 1ms each)",
	"LifecycleWithWork_50":  "Resolve and Dispose with Work (50 services, 1ms each)",
}

func main() {
	fmt.Println()
	fmt.Println(text.Colors{text.Bold, text.FgCyan}.Sprint("Spool DI Container Benchmark Suite"))
	fmt.Println()
	fmt.Println(text.Faint.Sprint("Running benchmarks..."))
	fmt.Println()

	benchDir := ".."
	if len(os.Args) > 1 && os.Args[1] != "--json" {
		benchDir = os.Args[1]
	}

	cmd := exec.Command("go", "test", "-bench=.", "-benchmem", "-count=3", "-benchtime=100ms")
	cmd.Dir = benchDir
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintf(os.Stderr, "Benchmark failed: %s\n", string(exitErr.Stderr))
		}
		os.Exit(1)
	}

	results := parseResults(output)
	grouped := groupByCategory(results)

	for _, cat := range grouped {
		printCategory(cat)
	}

	printSummary(grouped)

	if slices.Contains(os.Args[1:], "--json") {
		if err := exportJSON(results); err != nil {
			fmt.Fprintf(os.Stderr, "Export failed: %v\n", err)
			os.Exit(1)
		}
	}
}

func parseResults(output []byte) []BenchmarkResult {
	var results []BenchmarkResult
	benchPattern := regexp.MustCompile(`^Benchmark(\w+)-\d+\s+(\d+)\s+([\d.]+) ns/op\s+(\d+) B/op\s+(\d+) allocs/op`)

	seen := make(map[string][]BenchmarkResult)
	var order []string

	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		matches := benchPattern.FindStringSubmatch(scanner.Text())
		if matches == nil {
			continue
		}

		name := matches[1]
		iterations, _ := strconv.ParseInt(matches[2], 10, 64)
		nsPerOp, _ := strconv.ParseFloat(matches[3], 64)
		bytesPerOp, _ := strconv.ParseInt(matches[4], 10, 64)
		allocsOp, _ := strconv.ParseInt(matches[5], 10, 64)

		var category, scenario, framework string
		if parts := strings.Split(name, "_"); len(parts) >= 2 {
			framework = parts[len(parts)-1]
			category = parts[0]
			scenario = strings.Join(parts[1:len(parts)-1], "_")
		}

		if _, ok := seen[name]; !ok {
			order = append(order, name)
		}
		seen[name] = append(
			seen[name], BenchmarkResult{
				Name:       name,
				Framework:  framework,
				Category:   category,
				Scenario:   scenario,
				Iterations: iterations,
				NsPerOp:    nsPerOp,
				BytesPerOp: bytesPerOp,
				AllocsOp:   allocsOp,
			},
		)
	}

	for _, name := range order {
		runs := seen[name]

		var totalNs float64
		var totalBytes, totalAllocs int64
		for _, r := range runs {
			totalNs += r.NsPerOp
			totalBytes += r.BytesPerOp
			totalAllocs += r.AllocsOp
		}
		count := float64(len(runs))

		avg := runs[0]
		avg.NsPerOp = totalNs / count
		avg.BytesPerOp = int64(float64(totalBytes) / count)
		avg.AllocsOp = int64(float64(totalAllocs) / count)
		results = append(results, avg)
	}

	return results
}

func groupByCategory(results []BenchmarkResult) []CategoryResults {
	groups := make(map[string][]BenchmarkResult)
	var extra []string
	for _, r := range results {
		key := r.Category + "_" + r.Scenario
		if _, ok := groups[key]; !ok && !slices.Contains(categoryOrder, key) {
			extra = append(extra, key)
		}
		groups[key] = append(groups[key], r)
	}

	var ordered []CategoryResults
	for _, key := range append(slices.Clone(categoryOrder), extra...) {
		results, ok := groups[key]
		if !ok {
			continue
		}
		sort.Slice(
			results, func(i, j int) bool {
				return results[i].NsPerOp < results[j].NsPerOp
			},
		)
		ordered = append(ordered, CategoryResults{Category: key, Results: results})
	}

	return ordered
}

func printCategory(cat CategoryResults) {
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.SetStyle(table.StyleRounded)
	tw.SetTitle(formatCategoryTitle(cat.Category))
	tw.AppendHeader(table.Row{"Framework", "", "Time/op", "Bytes/op", "Allocs/op", "Relative"})
	tw.SetColumnConfigs(
		[]table.ColumnConfig{
			{Number: 3, Align: text.AlignRight},
			{Number: 4, Align: text.AlignRight},
			{Number: 5, Align: text.AlignRight},
		},
	)

	if len(cat.Results) == 0 {
		tw.AppendRow(table.Row{"No results"})
		tw.Render()
		fmt.Println()
		return
	}

	fastest := cat.Results[0].NsPerOp
	for i, r := range cat.Results {
		relative := "fastest"
		if i > 0 && fastest > 0 {
			relative = fmt.Sprintf("%.1fx slower", r.NsPerOp/fastest)
		}

		tw.AppendRow(
			table.Row{
				colorize(r.Framework),
				makeBar(r.NsPerOp, fastest, 20),
				formatNs(r.NsPerOp),
				fmt.Sprintf("%d B", r.BytesPerOp),
				r.AllocsOp,
				text.Faint.Sprint(relative),
			},
		)
	}

	tw.Render()
	fmt.Println()
}

func formatCategoryTitle(cat string) string {
	if title, ok := categoryTitles[cat]; ok {
		return title
	}
	return strings.ReplaceAll(cat, "_", " ")
}

func colorize(framework string) string {
	colors, ok := frameworkColors[framework]
	if !ok {
		return framework
	}
	return colors.Sprint(framework)
}

func makeBar(value, fastest float64, width int) string {
	if fastest == 0 {
		return strings.Repeat("█", width)
	}

	ratio := min(value/fastest, 10)
	filled := max(1, min(width, int(float64(width)/ratio)))

	return text.FgGreen.Sprint(strings.Repeat("█", filled)) +
		text.FgRed.Sprint(strings.Repeat("░", width-filled))
}

func formatNs(ns float64) string {
	if ns >= 1_000_000 {
		return fmt.Sprintf("%.2f ms", ns/1_000_000)
	}
	if ns >= 1_000 {
		return fmt.Sprintf("%.2f µs", ns/1_000)
	}
	return fmt.Sprintf("%.0f ns", ns)
}

func printSummary(groups []CategoryResults) {
	wins := make(map[string]int)
	for _, cat := range groups {
		if len(cat.Results) > 0 {
			wins[cat.Results[0].Framework]++
		}
	}

	type frameworkWins struct {
		name string
		wins int
	}

	var sorted []frameworkWins
	for name, count := range wins {
		sorted = append(sorted, frameworkWins{name, count})
	}
	sort.Slice(
		sorted, func(i, j int) bool {
			if sorted[i].wins != sorted[j].wins {
				return sorted[i].wins > sorted[j].wins
			}
			return sorted[i].name < sorted[j].name
		},
	)

	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.SetStyle(table.StyleRounded)
	tw.SetTitle("Summary")
	tw.AppendHeader(table.Row{"#", "Framework", "Wins", ""})

	total := len(groups)
	for i, fw := range sorted {
		tw.AppendRow(
			table.Row{
				i + 1,
				colorize(fw.name),
				fmt.Sprintf("%d/%d", fw.wins, total),
				text.FgGreen.Sprint(strings.Repeat("█", fw.wins*3)),
			},
		)
	}
	tw.Render()
	fmt.Println()

	frameworks := table.NewWriter()
	frameworks.SetOutputMirror(os.Stdout)
	frameworks.SetStyle(table.StyleLight)
	frameworks.SetTitle("Frameworks compared")
	frameworks.AppendRows(
		[]table.Row{
			{colorize("Spool"), "Keyed runtime container", "github.com/danpasecinic/spool"},
			{colorize("Do"), "Generics-based DI", "github.com/samber/do"},
			{colorize("Dig"), "Reflection-based DI", "go.uber.org/dig"},
			{colorize("Fx"), "Full application framework", "go.uber.org/fx"},
		},
	)
	frameworks.Render()
	fmt.Println()
}

func exportJSON(results []BenchmarkResult) error {
	output := struct {
		Benchmarks []BenchmarkResult `json:"benchmarks"`
	}{
		Benchmarks: results,
	}

	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile("benchmark_results.json", data, 0o644); err != nil {
		return err
	}
	fmt.Println(text.Faint.Sprint("Results exported to benchmark_results.json"))
	return nil
}
