package build

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/urfave/cli/v2"

	"github.com/projecteru2/ovsmap/cmd/run"
	"github.com/projecteru2/ovsmap/internal/report"
)

// Command .
func Command() *cli.Command {
	return &cli.Command{
		Name:  "build",
		Usage: "extract, resolve and print the topology graph",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "summary",
				Usage: "print per-kind counts instead of the tree",
			},
		},
		Action: run.Run(build),
	}
}

func build(c *cli.Context, rt run.Runtime) error {
	res, err := rt.Resolve(c)
	if err != nil {
		return errors.Wrap(err, "")
	}

	if c.Bool("summary") {
		fmt.Print(report.Summary(rt.Store))
	} else {
		fmt.Print(report.Tree(rt.Store))
	}

	// the partial graph is still printed, but a failed stage aborts
	// the run with a non-zero exit
	return res.Err()
}
