package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/lox/unoserver/internal/fileutil"
	"github.com/lox/unoserver/internal/simulator"
	"github.com/lox/unoserver/internal/statistics"
)

type CLI struct {
	Games   int           `short:"g" default:"1000" help:"Number of games to simulate"`
	Seats   []string      `short:"s" default:"smart,rand,rand" help:"Bot strategy for each seat (smart, rand)"`
	Seed    int64         `default:"0" help:"RNG seed (0 for random)"`
	Workers int           `short:"w" help:"Games played in parallel (defaults to the number of CPUs)"`
	Timeout time.Duration `default:"5s" help:"Time limit for a single game"`
	Output  string        `short:"o" type:"path" help:"Write a JSON report to this file"`
	Verbose bool          `short:"v" help:"Verbose logging"`
}

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15"))

	strategyStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("14"))

	winStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	rankStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12"))
)

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("uno-simulate"),
		kong.Description("Play bot against bot and compare strategies"),
	)

	if cli.Seed == 0 {
		cli.Seed = time.Now().UnixNano()
	}
	if cli.Workers == 0 {
		cli.Workers = runtime.NumCPU()
	}

	level := log.WarnLevel
	if cli.Verbose {
		level = log.DebugLevel
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{Level: level})

	sim := simulator.New(simulator.Config{
		Games:      cli.Games,
		Strategies: cli.Seats,
		Seed:       cli.Seed,
		Workers:    cli.Workers,
		Timeout:    cli.Timeout,
		Logger:     logger,
	})

	fmt.Printf("Starting simulation: %d games of %s (seed: %d)\n", cli.Games, sim.Lineup(), cli.Seed)

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	stats, err := sim.Run(sigCtx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Simulation failed: %v\n", err)
		ctx.Exit(1)
	}

	printResults(stats, sim.Lineup(), time.Since(start))

	if cli.Output != "" {
		data, err := json.MarshalIndent(stats.Report(sim.Lineup(), cli.Seed), "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode report: %v\n", err)
			ctx.Exit(1)
		}
		if err := fileutil.WriteFileAtomic(cli.Output, data, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write report: %v\n", err)
			ctx.Exit(1)
		}
		fmt.Printf("\nReport written to %s\n", cli.Output)
	}
}

func printResults(stats *statistics.Statistics, lineup string, duration time.Duration) {
	low, high := stats.Turns.ConfidenceInterval95()

	fmt.Println()
	fmt.Println(headerStyle.Render(fmt.Sprintf("=== %d games of %s in %s ===", stats.Games, lineup, duration.Round(time.Millisecond))))

	fmt.Println()
	fmt.Println(headerStyle.Render("Game length"))
	fmt.Printf("  mean %.1f turns, median %.1f, std dev %.1f\n", stats.Turns.Mean(), stats.Turns.Median(), stats.Turns.StdDev())
	fmt.Printf("  95%% CI [%.1f, %.1f]\n", low, high)
	fmt.Printf("  P5=%.0f P25=%.0f P75=%.0f P95=%.0f\n",
		stats.Turns.Percentile(0.05), stats.Turns.Percentile(0.25),
		stats.Turns.Percentile(0.75), stats.Turns.Percentile(0.95))

	fmt.Println()
	fmt.Println(headerStyle.Render("Strategies"))
	for _, name := range stats.Names() {
		st := stats.Strategies[name]
		rankLow, rankHigh := st.Ranks.ConfidenceInterval95()
		fmt.Printf("  %s %s %s\n",
			strategyStyle.Render(fmt.Sprintf("%-6s", name)),
			winStyle.Render(fmt.Sprintf("won %5.1f%% of %d seats", st.WinRate()*100, st.Seats)),
			rankStyle.Render(fmt.Sprintf("mean rank %.3f [%.3f, %.3f]", st.Ranks.Mean(), rankLow, rankHigh)))
	}

	if len(stats.Strategies) == 1 {
		fmt.Println()
		fmt.Println("Only one strategy seated, win rates only reflect seat luck.")
	}
}
