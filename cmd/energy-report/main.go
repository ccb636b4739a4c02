package main

import (
	"context"
	"energy-pipeline/internal/chart"
	"energy-pipeline/internal/config"
	"energy-pipeline/internal/model"
	"energy-pipeline/internal/pipeline"
	"energy-pipeline/internal/store"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
)

const usage = "Usage: energy-report [flags] <input path> <output path>"

var errUsage = errors.New("usage error")

// options holds what the command line asked for
type options struct {
	spec model.RunSpec
	noDB bool
}

func main() {
	opts, err := parseArgs(os.Args[1:], os.Stderr)
	if err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts); err != nil {
		log.Printf("❌ %v", err)
		stop()
		os.Exit(1)
	}
}

// parseArgs reads flags and the two positional arguments
func parseArgs(args []string, stderr io.Writer) (options, error) {
	fs := flag.NewFlagSet("energy-report", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, usage)
		fs.PrintDefaults()
	}

	configPath := fs.String("config", "", "JSON or YAML run config")
	workers := fs.Int("workers", 0, "aggregation shards per pass")
	renderer := fs.String("renderer", "", "chart backend: gonum or gochart")
	chartsDir := fs.String("charts", "", "directory for chart PNGs (default: output path)")
	dbPath := fs.String("db", "", "sqlite run store (default: <output path>/runs.db)")
	noDB := fs.Bool("no-db", false, "do not record the run in a sqlite store")
	timeout := fs.String("timeout", "", "abort the run after this duration, e.g. 10m")
	verbose := fs.Bool("v", false, "detailed progress logs")
	reports := fs.String("reports", "", "comma separated reports to run (default: all)")

	if err := fs.Parse(args); err != nil {
		return options{}, errUsage
	}
	if fs.NArg() != 2 {
		fs.Usage()
		return options{}, errUsage
	}

	var opts options
	if *configPath != "" {
		spec, err := config.Load(*configPath)
		if err != nil {
			return options{}, err
		}
		opts.spec = spec
	}

	opts.spec.Input = fs.Arg(0)
	opts.spec.Export.OutputDir = fs.Arg(1)
	opts.noDB = *noDB

	// Flags that were set win over the config file
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "workers":
			opts.spec.Concurrency.Workers = *workers
		case "renderer":
			opts.spec.Export.Renderer = *renderer
		case "charts":
			opts.spec.Export.ChartsDir = *chartsDir
		case "db":
			opts.spec.Export.DB = *dbPath
		case "timeout":
			opts.spec.Concurrency.RunTimeout = *timeout
		case "v":
			opts.spec.Logging = *verbose
		case "reports":
			opts.spec.Reports = splitList(*reports)
		}
	})

	if opts.noDB {
		opts.spec.Export.DB = ""
	} else if opts.spec.Export.DB == "" {
		opts.spec.Export.DB = config.DefaultDBPath(opts.spec.Export.OutputDir)
	}

	config.ApplyDefaults(&opts.spec)
	if err := config.Validate(opts.spec); err != nil {
		return options{}, err
	}
	if _, err := pipeline.SelectReports(opts.spec.Reports); err != nil {
		return options{}, err
	}
	return opts, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func run(ctx context.Context, opts options) error {
	spec := opts.spec

	renderer, err := chart.New(spec.Export.Renderer)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(spec.Export.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	runID := uuid.New().String()
	if spec.Export.DB != "" {
		if err := store.InitDB(spec.Export.DB); err != nil {
			log.Printf("⚠️ Run store unavailable, continuing without it: %v", err)
		} else {
			defer store.Close()
			if err := store.SaveRun(runID, spec); err != nil {
				log.Printf("⚠️ Failed to save run: %v", err)
			}
		}
	}

	summary, err := pipeline.Run(ctx, runID, spec, renderer)
	if err != nil {
		return err
	}

	fmt.Println("📊 Run Summary")
	for _, r := range summary.Reports {
		fmt.Printf("📈 %-18s %-15s %d keys\n", r.Report, r.State, r.Stats.Keys)
	}
	for _, res := range summary.Results {
		fmt.Printf("   %-18s rows=%d accepted=%d skipped=%d invalid=%d\n",
			res.Report, res.Stats.RowsRead, res.Stats.RowsAccepted, res.Stats.RowsSkipped, res.Stats.RowsInvalid)
	}
	return nil
}
