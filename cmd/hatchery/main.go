package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/nestforge/hatchery/cmd/hatchery/catalogcmd"
	"github.com/nestforge/hatchery/cmd/hatchery/evolve"
	"github.com/nestforge/hatchery/cmd/hatchery/info"
	"github.com/nestforge/hatchery/cmd/hatchery/initialize"
	"github.com/nestforge/hatchery/cmd/hatchery/mint"
	"github.com/nestforge/hatchery/cmd/hatchery/tokens"
)

func main() {

	app := &cli.App{
		Name:  "hatchery CLI",
		Usage: "Evolving collectibles on a local state file",

		Commands: []*cli.Command{
			initialize.Initialize(),
			catalogcmd.Catalog(),
			mint.Mint(),
			evolve.Evolve(),
			tokens.Tokens(),
			info.Owner(),
			info.Descriptor(),
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}
