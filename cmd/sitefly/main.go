// Command sitefly serves a sitefly site and scaffolds, checks and inspects
// sitefly projects.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/sitefly/sitefly"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "sitefly",
		Usage:   "Content-driven sites with Go and Echo",
		Version: sitefly.Version,
		Commands: []*cli.Command{
			serveCommand,
			newCommand,
			keygenCommand,
			checkCommand,
			statsCommand,
			versionCommand,
		},
	}
}

var versionCommand = &cli.Command{
	Name:  "version",
	Usage: "Print the sitefly version",
	Action: func(c *cli.Context) error {
		_, err := fmt.Fprintf(c.App.Writer, "sitefly %s\n", sitefly.Version)
		return err
	},
}
