package check

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/urfave/cli/v2"

	"github.com/projecteru2/ovsmap/cmd/run"
	checker "github.com/projecteru2/ovsmap/internal/check"
	"github.com/projecteru2/ovsmap/internal/report"
)

// Command .
func Command() *cli.Command {
	return &cli.Command{
		Name:   "check",
		Usage:  "scan the resolved graph for dangling cross-references",
		Action: run.Run(scan),
	}
}

func scan(c *cli.Context, rt run.Runtime) error {
	res, err := rt.Resolve(c)
	if err != nil {
		return errors.Wrap(err, "")
	}

	fmt.Print(report.Findings(checker.Scan(rt.Store)))
	return res.Err()
}
