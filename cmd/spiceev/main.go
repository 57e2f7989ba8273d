// Command spiceev runs a SpiceEV fleet-charging scenario document through
// the simulation core and writes the resulting time series and KPI summary
// to a local sqlite file, the way the teacher's root command wires its
// meters/BESS/controller together from one config file and a handful of
// flags.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"time"

	"github.com/cepro/spiceev/config"
	"github.com/cepro/spiceev/pricefeed"
	"github.com/cepro/spiceev/remoteresults"
	"github.com/cepro/spiceev/report"
	"github.com/cepro/spiceev/scenario"
	"github.com/cepro/spiceev/schedulesource"
	"github.com/cepro/spiceev/strategy"
	shellquote "github.com/kballard/go-shellquote"
)

const (
	exitOK         = 0
	exitValidation = 1
	exitFatal      = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	var scenarioPath, strategyName, outPath, pregenerate string
	flag.StringVar(&scenarioPath, "f", "./scenario.json", "scenario document path (JSON or YAML)")
	flag.StringVar(&strategyName, "strategy", "greedy", "charging strategy: greedy, balanced, balanced-market, schedule-collective, schedule-individual, peak-load-window, flex-window, distributed")
	flag.StringVar(&outPath, "out", "./report.sqlite", "sqlite report output path")
	flag.StringVar(&pregenerate, "pregenerate", "", "shell command to run before loading the scenario document, e.g. an external scenario generator")

	var pricefeedURL, pricefeedGC, pricefeedRegion, pricefeedMarket string
	var pricefeedPoll time.Duration
	flag.StringVar(&pricefeedURL, "pricefeed-url", "", "poll this URL for live imbalance/spot prices and feed them to the named grid connector as GridOperatorSignals (disabled when empty)")
	flag.StringVar(&pricefeedGC, "pricefeed-gc", "", "grid connector id that -pricefeed-url's readings apply to")
	flag.StringVar(&pricefeedRegion, "pricefeed-region", "", "optional region query parameter sent with every -pricefeed-url poll")
	flag.StringVar(&pricefeedMarket, "pricefeed-market", "", "optional market query parameter sent with every -pricefeed-url poll")
	flag.DurationVar(&pricefeedPoll, "pricefeed-poll", 5*time.Minute, "how often to poll -pricefeed-url")

	var scheduleURL string
	var schedulePoll time.Duration
	flag.StringVar(&scheduleURL, "schedule-url", "", "poll this URL for a live fleet/GC schedule and feed changes to the world as ScheduleUpdates (disabled when empty)")
	flag.DurationVar(&schedulePoll, "schedule-poll", 5*time.Minute, "how often to poll -schedule-url")

	var remoteResultsURL, remoteResultsAnonKey, remoteResultsUserKey, remoteResultsSchema, runID string
	flag.StringVar(&remoteResultsURL, "remote-results-url", "", "Supabase project URL to upload the finished run summary to (disabled when empty)")
	flag.StringVar(&remoteResultsAnonKey, "remote-results-anon-key", "", "Supabase anon key for -remote-results-url")
	flag.StringVar(&remoteResultsUserKey, "remote-results-user-key", "", "optional Supabase user key for -remote-results-url")
	flag.StringVar(&remoteResultsSchema, "remote-results-schema", "public", "Supabase schema for -remote-results-url")
	flag.StringVar(&runID, "run-id", "", "identifier recorded against the uploaded run summary (defaults to the scenario path)")
	flag.Parse()

	if pregenerate != "" {
		if err := runPregenerate(pregenerate); err != nil {
			slog.Error("pregenerate command failed", "error", err)
			return exitFatal
		}
	}

	strat, err := strategyByName(strategyName)
	if err != nil {
		slog.Error("unknown strategy", "strategy", strategyName, "error", err)
		return exitValidation
	}

	doc, err := config.Load(scenarioPath)
	if err != nil {
		slog.Error("failed to load scenario document", "path", scenarioPath, "error", err)
		return exitValidation
	}

	world, err := config.Build(doc)
	if err != nil {
		slog.Error("failed to build scenario", "error", err)
		return exitValidation
	}

	n, err := config.NIntervals(doc)
	if err != nil {
		slog.Error("failed to determine run length", "error", err)
		return exitValidation
	}

	if pricefeedURL != "" {
		if _, ok := world.GridConnectors[pricefeedGC]; !ok {
			slog.Error("unknown -pricefeed-gc", "gc", pricefeedGC)
			return exitValidation
		}
	}

	counts := newWarningCounter()
	slog.SetDefault(slog.New(counts.wrap(logger.Handler())))

	stepper := scenario.NewStepper(world, strat)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if pricefeedURL != "" {
		client := pricefeed.New(nil, pricefeedURL, pricefeedGC, pricefeed.RequestParams{Region: pricefeedRegion, Market: pricefeedMarket})
		slog.Info("starting pricefeed poll", "url", pricefeedURL, "gc", pricefeedGC, "period", pricefeedPoll)
		go client.Run(ctx, world, pricefeedPoll)
	}
	if scheduleURL != "" {
		client := schedulesource.New(nil, scheduleURL)
		slog.Info("starting schedule poll", "url", scheduleURL, "period", schedulePoll)
		go client.Run(ctx, world, schedulePoll)
	}

	slog.Info("starting simulation", "scenario", scenarioPath, "strategy", strategyName, "steps", n)
	if err := stepper.Run(ctx, n); err != nil {
		slog.Error("simulation aborted", "error", err)
		return exitFatal
	}

	store, err := report.NewStore(outPath)
	if err != nil {
		slog.Error("failed to open report store", "path", outPath, "error", err)
		return exitFatal
	}
	defer store.Close()

	if err := store.PersistTimeSeries(stepper.TimeSeries); err != nil {
		slog.Error("failed to persist report", "error", err)
		return exitFatal
	}

	summary := report.Summarize(stepper.TimeSeries, nil)
	summary.OverloadCount = counts.overloads
	summary.NegativeSocAborts = counts.negativeSocAborts
	summary.NonConvergenceCount = counts.nonConvergences

	if remoteResultsURL != "" {
		id := runID
		if id == "" {
			id = scenarioPath
		}
		publisher := remoteresults.New(remoteResultsURL, remoteResultsAnonKey, remoteResultsUserKey, remoteResultsSchema)
		if err := publisher.Publish(id, time.Now(), summary); err != nil {
			slog.Error("failed to publish remote results", "url", remoteResultsURL, "error", err)
		}
	}

	fmt.Print(summary.String())
	slog.Info("simulation complete", "out", outPath)
	return exitOK
}

func runPregenerate(command string) error {
	words, err := shellquote.Split(command)
	if err != nil {
		return fmt.Errorf("parse pregenerate command: %w", err)
	}
	if len(words) == 0 {
		return fmt.Errorf("pregenerate command is empty")
	}

	slog.Info("running pregenerate command", "command", command)
	cmd := exec.Command(words[0], words[1:]...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func strategyByName(name string) (scenario.Strategy, error) {
	switch name {
	case "greedy":
		return strategy.Greedy{}, nil
	case "balanced":
		return strategy.Balanced{}, nil
	case "balanced-market":
		return strategy.BalancedMarket{}, nil
	case "schedule-collective":
		return strategy.Schedule{Mode: strategy.ScheduleCollective}, nil
	case "schedule-individual":
		return strategy.Schedule{Mode: strategy.ScheduleIndividual}, nil
	case "peak-load-window":
		return strategy.PeakLoadWindow{}, nil
	case "flex-window":
		return strategy.FlexWindow{Sub: strategy.FlexSubGreedy}, nil
	case "distributed":
		return strategy.Distributed{}, nil
	default:
		return nil, fmt.Errorf("no such strategy %q", name)
	}
}
