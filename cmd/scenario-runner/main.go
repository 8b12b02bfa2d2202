// Package main - scenario-runner
// Executable to run the acceptance scenarios against a live session.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/MRamiBalles/EchoesOfEternity/internal/platform/logger"
	"github.com/MRamiBalles/EchoesOfEternity/internal/scenario"
)

func main() {
	verbose := flag.Bool("v", false, "Log session activity")
	seed := flag.Int64("seed", 1, "Seed for sessions that spawn fragments")
	flag.Parse()

	log := logger.NewNopLogger()
	if *verbose {
		log = logger.NewLogger()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	fmt.Println("ECHOES OF ETERNITY - RULE ENGINE SCENARIOS")
	fmt.Println(strings.Repeat("=", 60))

	runner := scenario.NewRunner(log, *seed)
	results := runner.Run(ctx, scenario.Catalog())
	failed := scenario.Report(os.Stdout, results)

	if failed > 0 {
		fmt.Println("\nThe rule engine needs recalibration")
		os.Exit(1)
	}
	fmt.Println("\nThe rule engine is ready")
}
