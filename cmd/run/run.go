package run

import (
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/urfave/cli/v2"

	"github.com/projecteru2/ovsmap/configs"
	"github.com/projecteru2/ovsmap/internal/ovs"
	"github.com/projecteru2/ovsmap/internal/pipeline"
	"github.com/projecteru2/ovsmap/internal/resolve"
	"github.com/projecteru2/ovsmap/internal/store"
	"github.com/projecteru2/ovsmap/pkg/log"
)

// Runner .
type Runner func(*cli.Context, Runtime) error

// Runtime .
type Runtime struct {
	ConfigFiles []string
	Source      ovs.Source
	Store       *store.Store
}

// Run wraps a subcommand action with config, logging and source setup.
func Run(fn Runner) cli.ActionFunc {
	return func(c *cli.Context) error {
		rt := Runtime{ConfigFiles: c.StringSlice("config")}
		if err := setup(&rt); err != nil {
			return errors.Wrap(err, "")
		}

		return fn(c, rt)
	}
}

func setup(rt *Runtime) error {
	if len(rt.ConfigFiles) > 0 {
		if err := configs.Conf.Load(rt.ConfigFiles); err != nil {
			return errors.Wrap(err, "")
		}
	}

	if err := log.Setup(configs.Conf.LogLevel, configs.Conf.LogFile); err != nil {
		return errors.Wrap(err, "")
	}

	if dir := configs.Conf.SnapshotDir; len(dir) > 0 {
		rt.Source = ovs.NewSnapshot(dir)
	} else {
		rt.Source = ovs.NewLive(&configs.Conf)
	}
	rt.Store = store.New()

	return nil
}

// Resolve runs the full stage pipeline over the runtime's source and
// logs stages that failed or were skipped.
func (r Runtime) Resolve(c *cli.Context) (*pipeline.Result, error) {
	rsv := resolve.New(r.Source, r.Store, &configs.Conf)

	res, err := pipeline.Run(c.Context, rsv.Stages(), configs.Conf.MaxConcurrency)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}

	logger := log.WithFunc("run.Resolve")
	for _, name := range sortedStages(res.Failed) {
		logger.Errorf(c.Context, res.Failed[name], "stage %s failed", name)
	}
	for _, name := range res.Skipped {
		logger.Warnf(c.Context, "stage %s skipped", name)
	}

	return res, nil
}

func sortedStages(failed map[string]error) []string {
	names := make([]string, 0, len(failed))
	for name := range failed {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
