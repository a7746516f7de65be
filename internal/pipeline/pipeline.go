// Package pipeline runs extraction stages in dependency order,
// fanning each stage's independent units across a bounded pool and
// joining before the next stage starts.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/panjf2000/ants/v2"
	"github.com/samber/lo"

	"github.com/projecteru2/ovsmap/pkg/log"
	"github.com/projecteru2/ovsmap/pkg/terrors"
)

// Unit is one independent piece of a stage's work.
type Unit struct {
	Name string
	Fn   func(ctx context.Context) error
}

// Stage is a named step; Units is evaluated only once every listed
// dependency has completed, so it may read state the deps produced.
type Stage struct {
	Name  string
	Deps  []string
	Units func(ctx context.Context) ([]Unit, error)
}

// Result reports which stages failed outright and which were skipped
// because a dependency failed.
type Result struct {
	Failed  map[string]error
	Skipped []string
}

// OK .
func (r *Result) OK() bool {
	return len(r.Failed) == 0 && len(r.Skipped) == 0
}

// Err flattens a failed run into one error naming every failed and
// skipped stage; nil when the run completed fully.
func (r *Result) Err() error {
	if r.OK() {
		return nil
	}

	names := make([]string, 0, len(r.Failed))
	for name := range r.Failed {
		names = append(names, name)
	}
	sort.Strings(names)

	msg := "failed stages: " + strings.Join(names, ", ")
	if len(r.Skipped) > 0 {
		msg += "; skipped: " + strings.Join(r.Skipped, ", ")
	}
	return errors.Wrap(terrors.ErrStageFailed, msg)
}

// Run executes the stages in the given order. Units within a stage
// run concurrently, bounded by maxConcurrency; the stage joins before
// the next one is admitted. A source-unavailable unit marks its stage
// failed without aborting sibling units.
func Run(ctx context.Context, stages []Stage, maxConcurrency int) (*Result, error) {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}

	pool, err := ants.NewPool(maxConcurrency, ants.WithLogger(poolLogger{log.GetSlogLogger()}))
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	defer pool.Release()

	logger := log.WithFunc("pipeline.Run")
	res := &Result{Failed: map[string]error{}}

	for _, stage := range stages {
		if dep, blocked := blockedBy(res, stage); blocked {
			logger.Warnf(ctx, "stage %s skipped: dependency %s unavailable", stage.Name, dep)
			res.Skipped = append(res.Skipped, stage.Name)
			continue
		}

		if err := runStage(ctx, pool, stage, logger); err != nil {
			res.Failed[stage.Name] = err
			continue
		}

		logger.Debugf(ctx, "stage %s done", stage.Name)
	}

	return res, nil
}

func runStage(ctx context.Context, pool *ants.Pool, stage Stage, logger *log.Logger) error {
	units, err := stage.Units(ctx)
	if err != nil {
		return errors.Wrapf(terrors.ErrStageFailed, "%s: %s", stage.Name, err)
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		stageErr error
	)

	for _, unit := range units {
		unit := unit
		wg.Add(1)

		task := func() {
			defer wg.Done()

			err := unit.Fn(ctx)
			if err == nil {
				return
			}

			// a failed unit never aborts its siblings; only a missing
			// source condemns the whole stage
			if terrors.IsQueryFailedErr(err) {
				mu.Lock()
				if stageErr == nil {
					stageErr = err
				}
				mu.Unlock()
			}
			logger.Warnf(ctx, "stage %s unit %s: %s", stage.Name, unit.Name, err)
		}

		if err := pool.Submit(task); err != nil {
			task()
		}
	}

	// join barrier: stage N's writes are fully visible before N+1
	wg.Wait()

	if stageErr != nil {
		return errors.Wrapf(terrors.ErrStageFailed, "%s: %s", stage.Name, stageErr)
	}
	return nil
}

// poolLogger adapts the slog facade to the pool's logger contract.
type poolLogger struct {
	sl *slog.Logger
}

func (l poolLogger) Printf(format string, args ...any) {
	l.sl.Warn(fmt.Sprintf(format, args...))
}

func blockedBy(res *Result, stage Stage) (string, bool) {
	for _, dep := range stage.Deps {
		if _, failed := res.Failed[dep]; failed {
			return dep, true
		}
		if lo.Contains(res.Skipped, dep) {
			return dep, true
		}
	}
	return "", false
}
