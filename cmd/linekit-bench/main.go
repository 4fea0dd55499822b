// linekit-bench times interval and edit log workloads, either the
// built-in suite or scenarios loaded from a YAML file.
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"

	"github.com/dshills/linekit/internal/bench"
	"github.com/dshills/linekit/internal/config"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "path to configuration file")
	suitePath := flag.String("suite", "", "YAML scenario file (default: built-in suite)")
	iter := flag.Int("iter", 0, "iterations per scenario (default from config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if *suitePath == "" {
		*suitePath = cfg.Bench.Scenarios
	}
	if *iter <= 0 {
		*iter = cfg.Bench.Iterations
	}

	suite := bench.Builtin()
	if *suitePath != "" {
		suite, err = bench.LoadSuite(*suitePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	}

	fmt.Println("linekit benchmark")
	fmt.Println("=================")
	fmt.Printf("Go version: %s\n", runtime.Version())
	fmt.Printf("GOMAXPROCS: %d\n", runtime.GOMAXPROCS(0))
	fmt.Printf("Scenarios: %d, iterations: %d\n", len(suite.Scenarios), *iter)
	fmt.Println()

	results, err := bench.RunSuite(suite, *iter)
	for _, r := range results {
		fmt.Println(r)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
