package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"bidscore/internal/client"
	"bidscore/internal/score"
	"bidscore/internal/score/scorer"
	"bidscore/internal/template"
)

// Exit codes.
const (
	exitOK       = 0
	exitRejected = 1
	exitUsage    = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("bidscore", flag.ContinueOnError)
	flags.SetOutput(stderr)
	var (
		requestInput = flags.String("request", "", "Calculation request JSON (file path or inline JSON)")
		serverURL    = flags.String("server", "", "bidscore server URL; calculate locally when empty")
		templateID   = flags.String("template", "", "Template id, overrides the request's template and config")
		templates    = flags.String("templates", "", "Templates YAML file for local calculation (default: built-in presets)")
		outputFormat = flags.String("format", "text", "Output format: text or json")
		timeout      = flags.Duration("timeout", 10*time.Second, "Server request timeout")
	)
	flags.Usage = func() { showUsage(stderr, flags) }

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	if *requestInput == "" {
		showUsage(stderr, flags)
		fmt.Fprintf(stderr, "\nError: -request is required\n")
		return exitUsage
	}
	if *outputFormat != "text" && *outputFormat != "json" {
		fmt.Fprintf(stderr, "Error: unsupported format %q\n", *outputFormat)
		return exitUsage
	}

	request, err := readRequest(*requestInput)
	if err != nil {
		fmt.Fprintf(stderr, "Error reading request: %v\n", err)
		return exitUsage
	}
	if *templateID != "" {
		request.Template = *templateID
		request.Config = nil
	}

	ctx := context.Background()
	var report *scorer.Report
	if *serverURL != "" {
		report, err = client.NewClient(*serverURL, *timeout).Calculate(ctx, request)
	} else {
		report, err = calculateLocally(ctx, *templates, request)
	}

	if err != nil {
		fmt.Fprintf(stderr, "Calculation rejected: %v\n", err)
		if rejected(err) {
			return exitRejected
		}
		return exitUsage
	}

	if *outputFormat == "json" {
		err = outputJSON(stdout, report)
	} else {
		err = outputText(stdout, report)
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error writing output: %v\n", err)
		return exitUsage
	}
	return exitOK
}

// rejected reports whether err means the calculation itself was refused, as
// opposed to a transport or I/O failure.
func rejected(err error) bool {
	if _, ok := score.KindOf(err); ok {
		return true
	}
	var apiErr *client.APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode < 500
}

func calculateLocally(ctx context.Context, templatesFile string, request scorer.Request) (*scorer.Report, error) {
	templates, err := template.LoadFromFile(templatesFile)
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	return scorer.NewTenderScorer(templates, nil, nil, nil).Score(ctx, request)
}

// readRequest accepts either a path to a JSON file or the JSON itself.
func readRequest(input string) (scorer.Request, error) {
	var request scorer.Request

	data := []byte(input)
	if !strings.HasPrefix(strings.TrimSpace(input), "{") {
		content, err := os.ReadFile(input)
		if err != nil {
			return request, err
		}
		data = content
	}

	if err := json.Unmarshal(data, &request); err != nil {
		return request, fmt.Errorf("parse request: %w", err)
	}
	return request, nil
}

func outputJSON(w io.Writer, report *scorer.Report) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}

// outputText prints the report summary followed by the bidders in rank order.
func outputText(w io.Writer, report *scorer.Report) error {
	fmt.Fprintf(w, "Calculation:  %s\n", report.ID)
	if report.Template != "" {
		fmt.Fprintf(w, "Template:     %s\n", report.Template)
	}
	fmt.Fprintf(w, "Benchmark:    %.2f (mean %.2f of %d valid prices)\n", report.BenchmarkPrice, report.MeanPrice, report.ValidCount)
	if winner, ok := report.Winner(); ok {
		fmt.Fprintf(w, "Winner:       %s (score %.2f)\n", winner.Name, winner.Score)
	}
	fmt.Fprintf(w, "Digest:       %s\n\n", report.Digest)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tBIDDER\tPRICE\tDEVIATION %\tSCORE\tOUTLIER\tFLAGS")
	for _, result := range ranked(report.Results) {
		fmt.Fprintf(tw, "%d\t%s\t%.2f\t%.2f\t%.2f\t%s\t%s\n",
			result.Rank, result.Name, result.Price, result.Deviation, result.Score,
			result.Outlier, strings.Join(result.Flags, ","))
	}
	return tw.Flush()
}

// ranked orders results by rank, keeping request order within a rank.
func ranked(results []scorer.Result) []scorer.Result {
	ordered := make([]scorer.Result, len(results))
	copy(ordered, results)
	slices.SortStableFunc(ordered, func(a, b scorer.Result) int {
		return a.Rank - b.Rank
	})
	return ordered
}

func showUsage(w io.Writer, flags *flag.FlagSet) {
	fmt.Fprintln(w, "Bid price scoring calculator")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  bidscore -request <json> [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "The request accepts either a file path or an inline JSON string:")
	fmt.Fprintln(w, `  {"template": "gold", "bidders": [{"name": "A", "price": 100}, {"name": "B", "price": 95}]}`)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	flags.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Exit Codes:")
	fmt.Fprintln(w, "  0 - Calculation succeeded")
	fmt.Fprintln(w, "  1 - Calculation rejected (configuration, input or computation error)")
	fmt.Fprintln(w, "  2 - Invalid usage or runtime error")
}
