// Package bench runs timed scenarios against the interval and edit
// log packages. Scenarios are built in or loaded from a YAML suite
// file.
package bench

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dshills/linekit/editlog"
	"github.com/dshills/linekit/interval"
	"github.com/dshills/linekit/linebuf"
)

// ErrUnknownOp is returned for a scenario naming an unrecognized
// operation.
var ErrUnknownOp = errors.New("unknown benchmark operation")

// Operations scenarios can name.
const (
	OpSetAdd     = "set-add"
	OpSetDiscard = "set-discard"
	OpCoalesce   = "coalesce"
	OpLogChurn   = "log-churn"
)

// Scenario is one timed workload.
type Scenario struct {
	Name string `yaml:"name"`
	Op   string `yaml:"op"`
	// N is the number of operations performed.
	N int `yaml:"n"`
	// Spread bounds the value range the workload draws from.
	Spread int64 `yaml:"spread"`
	// Seed fixes the pseudo-random input; zero means seed 1.
	Seed int64 `yaml:"seed"`
}

// Suite is an ordered list of scenarios.
type Suite struct {
	Scenarios []Scenario `yaml:"scenarios"`
}

// Builtin returns the default suite.
func Builtin() Suite {
	return Suite{Scenarios: []Scenario{
		{Name: "set add singles", Op: OpSetAdd, N: 50000, Spread: 1 << 20},
		{Name: "set discard spans", Op: OpSetDiscard, N: 10000, Spread: 1 << 20},
		{Name: "coalesce random spans", Op: OpCoalesce, N: 50000, Spread: 1 << 20},
		{Name: "log write/undo/redo churn", Op: OpLogChurn, N: 10000, Spread: 100},
	}}
}

// LoadSuite reads a YAML suite file.
func LoadSuite(path string) (Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Suite{}, fmt.Errorf("reading suite %s: %w", path, err)
	}
	var s Suite
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Suite{}, fmt.Errorf("parsing suite %s: %w", path, err)
	}
	if len(s.Scenarios) == 0 {
		return Suite{}, fmt.Errorf("suite %s: no scenarios", path)
	}
	return s, nil
}

// Result is the timing of one scenario run.
type Result struct {
	Name     string
	Ops      int
	Duration time.Duration
	// Extra carries a scenario-specific detail, such as the final
	// structure size.
	Extra string
}

func (r Result) String() string {
	opsPerSec := float64(r.Ops) / r.Duration.Seconds()
	if r.Extra != "" {
		return fmt.Sprintf("%-32s %12v  (%d ops, %.0f ops/sec) %s",
			r.Name, r.Duration.Round(time.Microsecond), r.Ops, opsPerSec, r.Extra)
	}
	return fmt.Sprintf("%-32s %12v  (%d ops, %.0f ops/sec)",
		r.Name, r.Duration.Round(time.Microsecond), r.Ops, opsPerSec)
}

// Run executes one scenario and returns its timing.
func Run(s Scenario) (Result, error) {
	if s.N <= 0 {
		s.N = 1000
	}
	if s.Spread <= 0 {
		s.Spread = 1 << 16
	}
	seed := s.Seed
	if seed == 0 {
		seed = 1
	}
	rng := rand.New(rand.NewSource(seed))

	var (
		start = time.Now()
		extra string
	)
	switch s.Op {
	case OpSetAdd:
		set := interval.NewSet()
		for i := 0; i < s.N; i++ {
			set.Add(interval.Single(rng.Int63n(s.Spread)))
		}
		extra = fmt.Sprintf("%d spans", set.Len())
	case OpSetDiscard:
		set := interval.SetOf(interval.New(0, s.Spread))
		for i := 0; i < s.N; i++ {
			lo := rng.Int63n(s.Spread)
			set.Discard(interval.New(lo, lo+rng.Int63n(16)))
		}
		extra = fmt.Sprintf("%d spans", set.Len())
	case OpCoalesce:
		spans := make([]interval.Span, s.N)
		for i := range spans {
			lo := rng.Int63n(s.Spread)
			spans[i] = interval.New(lo, lo+rng.Int63n(64))
		}
		merged := interval.Coalesce(spans)
		extra = fmt.Sprintf("%d spans", len(merged))
	case OpLogChurn:
		buf := linebuf.New("seed")
		log := editlog.New()
		for i := 0; i < s.N; i++ {
			at := rng.Intn(buf.Len() + 1)
			rec := editlog.InsertLines(at, "line")
			if err := rec.Apply(buf); err != nil {
				return Result{}, err
			}
			log.Write(rec)
			log.Commit()
			for _, r := range log.Undo(1) {
				if err := r.Apply(buf); err != nil {
					return Result{}, err
				}
			}
			for _, r := range log.Redo(1) {
				if err := r.Apply(buf); err != nil {
					return Result{}, err
				}
			}
		}
		extra = fmt.Sprintf("%d records", log.Count())
	default:
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownOp, s.Op)
	}

	return Result{
		Name:     s.Name,
		Ops:      s.N,
		Duration: time.Since(start),
		Extra:    extra,
	}, nil
}

// RunSuite executes every scenario iterations times and returns all
// results in order.
func RunSuite(suite Suite, iterations int) ([]Result, error) {
	if iterations < 1 {
		iterations = 1
	}
	var results []Result
	for i := 0; i < iterations; i++ {
		for _, s := range suite.Scenarios {
			r, err := Run(s)
			if err != nil {
				return results, err
			}
			results = append(results, r)
		}
	}
	return results, nil
}
