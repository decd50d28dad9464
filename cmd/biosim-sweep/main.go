package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"biosim/internal/sims/biosim"
	"biosim/pkg/logger"
)

type paramSet struct {
	herbF, herbMu float64
	carnF, carnMu float64
	seed          int64
}

func (p paramSet) String() string {
	return fmt.Sprintf("herbivore.f=%g herbivore.mu=%g carnivore.f=%g carnivore.mu=%g seed=%d",
		p.herbF, p.herbMu, p.carnF, p.carnMu, p.seed)
}

type scenarioResult struct {
	params      paramSet
	coexistence int
	herbivores  int
	carnivores  int
	peakCarn    int
	err         error
}

func main() {
	years := flag.Int("years", 100, "years to simulate per scenario")
	workers := flag.Int("workers", runtime.NumCPU(), "number of worker goroutines")
	seeds := flag.Int("seeds", 2, "seeds per parameter set")
	configPath := flag.String("config", "", "base YAML config (defaults when empty)")
	top := flag.Int("top", 5, "results to print")
	flag.Parse()
	logger.Init()

	base := biosim.DefaultConfig()
	if *configPath != "" {
		loaded, err := biosim.LoadConfig(*configPath)
		if err != nil {
			logger.Log.WithError(err).Fatal("invalid base config")
		}
		base = loaded
	}

	sets := buildGrid(base.Seed, *seeds)
	logger.Log.WithFields(logrus.Fields{
		"scenarios": len(sets),
		"workers":   *workers,
		"years":     *years,
	}).Info("sweep started")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	all := sweep(ctx, base, sets, *years, *workers)
	rank(all)

	fmt.Printf("\nTop %d results (elapsed %s):\n", *top, time.Since(start).Round(time.Millisecond))
	for i := 0; i < len(all) && i < *top; i++ {
		res := all[i]
		fmt.Printf("%2d) coexist=%d herbivores=%d carnivores=%d peakCarnivores=%d %s\n",
			i+1, res.coexistence, res.herbivores, res.carnivores, res.peakCarn, res.params)
	}
}

func buildGrid(baseSeed int64, seeds int) []paramSet {
	herbF := []float64{8, 10, 12}
	herbMu := []float64{0.15, 0.25, 0.4}
	carnF := []float64{30, 50, 70}
	carnMu := []float64{0.3, 0.4, 0.6}

	var sets []paramSet
	for _, hf := range herbF {
		for _, hm := range herbMu {
			for _, cf := range carnF {
				for _, cm := range carnMu {
					for s := 0; s < seeds; s++ {
						sets = append(sets, paramSet{herbF: hf, herbMu: hm, carnF: cf, carnMu: cm, seed: baseSeed + int64(s)})
					}
				}
			}
		}
	}
	return sets
}

// sweep runs every set on its own engine. Results arrive in completion order.
func sweep(ctx context.Context, base biosim.Config, sets []paramSet, years, workers int) []scenarioResult {
	if workers < 1 {
		workers = 1
	}
	jobs := make(chan paramSet)
	results := make(chan scenarioResult)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for params := range jobs {
				results <- runScenario(ctx, base, params, years)
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	go func() {
		defer close(jobs)
		for _, params := range sets {
			select {
			case jobs <- params:
			case <-ctx.Done():
				return
			}
		}
	}()

	var all []scenarioResult
	for res := range results {
		if res.err != nil {
			logger.Log.WithError(res.err).WithField("params", res.params.String()).Warn("scenario failed")
			continue
		}
		all = append(all, res)
	}
	return all
}

func runScenario(ctx context.Context, base biosim.Config, params paramSet, years int) scenarioResult {
	res := scenarioResult{params: params}
	cfg := base
	cfg.Seed = params.seed
	cfg.Snapshot.Animals = false
	cfg.Params.Herbivore.F = params.herbF
	cfg.Params.Herbivore.Mu = params.herbMu
	cfg.Params.Carnivore.F = params.carnF
	cfg.Params.Carnivore.Mu = params.carnMu

	engine, err := biosim.NewEngineFromConfig(cfg)
	if err != nil {
		res.err = err
		return res
	}
	sink := biosim.SinkFunc(func(s biosim.Snapshot) error {
		if s.Herbivores > 0 && s.Carnivores > 0 {
			res.coexistence++
		}
		res.peakCarn = max(res.peakCarn, s.Carnivores)
		return nil
	})
	summary, err := engine.Run(ctx, years, sink)
	if err != nil {
		res.err = err
		return res
	}
	res.herbivores = summary.Herbivores
	res.carnivores = summary.Carnivores
	return res
}

// rank orders results by years of coexistence, then by the final carnivore
// count, then by parameters for a stable listing.
func rank(all []scenarioResult) {
	sort.Slice(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if a.coexistence != b.coexistence {
			return a.coexistence > b.coexistence
		}
		if a.carnivores != b.carnivores {
			return a.carnivores > b.carnivores
		}
		return a.params.String() < b.params.String()
	})
}
