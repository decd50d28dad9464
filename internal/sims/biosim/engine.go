package biosim

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"biosim/pkg/core"
	"biosim/pkg/logger"
)

// State is the lifecycle stage of an Engine.
type State int

const (
	Uninitialized State = iota
	Ready
	Running
	Finished
	// Failed means an invariant broke; the engine refuses further runs.
	Failed
)

var stateNames = [...]string{"Uninitialized", "Ready", "Running", "Finished", "Failed"}

func (s State) String() string {
	if int(s) >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// SnapshotSink consumes the snapshot produced after every completed year.
type SnapshotSink interface {
	Record(Snapshot) error
}

// SinkFunc adapts a function to SnapshotSink.
type SinkFunc func(Snapshot) error

// Record calls f(s).
func (f SinkFunc) Record(s Snapshot) error { return f(s) }

// MultiSink forwards each snapshot to every sink in order and stops at the
// first error.
type MultiSink []SnapshotSink

// Record implements SnapshotSink.
func (m MultiSink) Record(s Snapshot) error {
	for _, sink := range m {
		if sink == nil {
			continue
		}
		if err := sink.Record(s); err != nil {
			return err
		}
	}
	return nil
}

// RunSummary reports how a call to Run ended.
type RunSummary struct {
	Years      int  `json:"years"`
	FinalYear  int  `json:"final_year"`
	Cancelled  bool `json:"cancelled"`
	Herbivores int  `json:"herbivores"`
	Carnivores int  `json:"carnivores"`
}

// Engine drives an island through the years with a single random stream.
// An Engine is not safe for concurrent use.
type Engine struct {
	cfg    Config
	params Params
	island *Island
	rng    *core.RNG
	year   int
	state  State
	log    *logrus.Entry
}

// NewEngine validates cfg and builds the island. Animals are added with
// Initialize.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Params.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		cfg:    cfg,
		params: cfg.Params,
		rng:    core.NewRNG(cfg.Seed),
		state:  Uninitialized,
	}
	isl, err := NewIsland(cfg.Geography, &e.params)
	if err != nil {
		return nil, err
	}
	e.island = isl
	e.log = logger.Log.WithFields(logrus.Fields{"seed": cfg.Seed, "rows": isl.rows, "cols": isl.cols})
	return e, nil
}

// NewEngineFromConfig builds an engine and places the configured population.
func NewEngineFromConfig(cfg Config) (*Engine, error) {
	e, err := NewEngine(cfg)
	if err != nil {
		return nil, err
	}
	if err := e.Initialize(Placements(cfg.Population)); err != nil {
		return nil, err
	}
	return e, nil
}

// Initialize places animals on the island. Every placement is checked before
// any is applied, so a rejected list leaves the engine unchanged. It may also
// be called between runs to add animals.
func (e *Engine) Initialize(placements []Placement) error {
	if e.state != Uninitialized && e.state != Ready {
		return fmt.Errorf("%w: cannot add animals while %s", ErrInvalidState, e.state)
	}
	for _, p := range placements {
		if _, err := e.island.placementCell(p); err != nil {
			return err
		}
	}
	for _, p := range placements {
		if _, err := e.island.Place(e.rng, p); err != nil {
			return err
		}
	}
	e.state = Ready
	e.log.WithFields(logrus.Fields{
		"placed":     len(placements),
		"herbivores": e.island.Count(Herbivore),
		"carnivores": e.island.Count(Carnivore),
	}).Debug("population placed")
	return nil
}

// Run simulates up to years more years, handing each snapshot to sink (which
// may be nil). Cancellation of ctx is honoured between years only and is not
// an error; the island then reflects the last completed year.
func (e *Engine) Run(ctx context.Context, years int, sink SnapshotSink) (RunSummary, error) {
	if e.state != Ready {
		return RunSummary{FinalYear: e.year}, fmt.Errorf("%w: run requires Ready, engine is %s", ErrInvalidState, e.state)
	}
	if years < 0 {
		return RunSummary{FinalYear: e.year}, fmt.Errorf("%w: negative year count %d", ErrConfig, years)
	}

	e.state = Running
	e.log.WithFields(logrus.Fields{"from_year": e.year, "years": years}).Info("run started")
	summary := RunSummary{}
	for i := 0; i < years; i++ {
		if ctx.Err() != nil {
			summary.Cancelled = true
			break
		}
		if err := e.island.RunYear(e.rng); err != nil {
			e.state = Failed
			e.log.WithError(err).WithField("year", e.year+1).Error("island invariant violated")
			return e.summarize(summary), fmt.Errorf("year %d: %w", e.year+1, err)
		}
		e.year++
		summary.Years++

		snap := e.Snapshot()
		ev := e.island.LastYear()
		e.log.WithFields(logrus.Fields{
			"year":       snap.Year,
			"herbivores": snap.Herbivores,
			"carnivores": snap.Carnivores,
			"births":     ev.Births,
			"deaths":     ev.Deaths,
			"kills":      ev.Kills,
			"migrations": ev.Migrations,
		}).Debug("year complete")
		if sink != nil {
			if err := sink.Record(snap); err != nil {
				e.state = Ready
				return e.summarize(summary), fmt.Errorf("record year %d: %w", snap.Year, err)
			}
		}
	}
	e.state = Ready
	summary = e.summarize(summary)
	e.log.WithFields(logrus.Fields{
		"final_year": summary.FinalYear,
		"cancelled":  summary.Cancelled,
		"herbivores": summary.Herbivores,
		"carnivores": summary.Carnivores,
	}).Info("run finished")
	return summary, nil
}

func (e *Engine) summarize(s RunSummary) RunSummary {
	s.FinalYear = e.year
	s.Herbivores = e.island.Count(Herbivore)
	s.Carnivores = e.island.Count(Carnivore)
	return s
}

// Finish closes the engine; no further runs are accepted.
func (e *Engine) Finish() error {
	if e.state != Ready {
		return fmt.Errorf("%w: finish requires Ready, engine is %s", ErrInvalidState, e.state)
	}
	e.state = Finished
	return nil
}

// SetParameter changes one coefficient between runs. Cached fitness values
// are discarded so the change applies from the next year on.
func (e *Engine) SetParameter(key string, value float64) error {
	if e.state != Uninitialized && e.state != Ready {
		return fmt.Errorf("%w: cannot change parameters while %s", ErrInvalidState, e.state)
	}
	if err := e.params.Set(key, value); err != nil {
		return err
	}
	e.island.arena.invalidateFitness()
	e.log.WithFields(logrus.Fields{"key": key, "value": value}).Info("parameter changed")
	return nil
}

// SetMigration switches the migration phase and its destination weighting.
func (e *Engine) SetMigration(enabled bool, weighting Weighting) error {
	if e.state != Uninitialized && e.state != Ready {
		return fmt.Errorf("%w: cannot change migration while %s", ErrInvalidState, e.state)
	}
	next := e.params
	next.Migration = MigrationParams{Enabled: enabled, Weighting: weighting}
	if err := next.Validate(); err != nil {
		return err
	}
	e.params.Migration = next.Migration
	return nil
}

// Snapshot returns a copy of the current island state.
func (e *Engine) Snapshot() Snapshot {
	return takeSnapshot(e.island, e.year, e.cfg.Snapshot.Animals)
}

// State returns the lifecycle stage.
func (e *Engine) State() State { return e.state }

// Year returns the number of completed years.
func (e *Engine) Year() int { return e.year }

// Island exposes the simulated island for read-only inspection.
func (e *Engine) Island() *Island { return e.island }

// Params returns a copy of the live coefficients.
func (e *Engine) Params() Params { return e.params }

// Config returns the configuration the engine was built from.
func (e *Engine) Config() Config { return e.cfg }
