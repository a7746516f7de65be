package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/projecteru2/ovsmap/cmd/build"
	"github.com/projecteru2/ovsmap/cmd/check"
	"github.com/projecteru2/ovsmap/ver"
)

func main() {
	cli.VersionPrinter = func(c *cli.Context) {
		fmt.Println(ver.Version())
	}

	app := &cli.App{
		Name:  "ovsmap",
		Usage: "queryable topology graph of a virtual switch host",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "config",
				Usage: "config files",
			},
		},

		Commands: []*cli.Command{
			build.Command(),
			check.Command(),
		},

		Version: "v",
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Printf("%+v\n", err)
		os.Exit(1)
	}
}
