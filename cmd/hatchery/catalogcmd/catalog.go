package catalogcmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/nestforge/hatchery/cmd/hatchery/pkg/run"
	"github.com/nestforge/hatchery/hatchery/token"
)

func Catalog() *cli.Command {
	return &cli.Command{
		Name:  "catalog",
		Usage: "Curate and inspect the metadata catalog",
		Subcommands: []*cli.Command{
			add(),
			types(),
			entries(),
		},
	}
}

func add() *cli.Command {
	return &cli.Command{
		Name:  "add",
		Usage: "Add a metadata template to a type (owner only)",
		Flags: append([]cli.Flag{
			run.StateFileFlag(),
			&cli.StringFlag{
				Name:     "type",
				Usage:    "Type label, e.g. egg or level1",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "title",
				Required: true,
			},
			&cli.StringFlag{
				Name: "description",
			},
			&cli.StringFlag{
				Name:  "media",
				Usage: "Media reference, resolved against the base URI",
			},
			&cli.StringFlag{
				Name:  "reference",
				Usage: "Off-ledger reference document",
			},
		}, append(run.CallFlags(), run.ConfigFlags()...)...),
		Action: func(c *cli.Context) error {
			env, err := run.Setup(c)
			if err != nil {
				return err
			}
			defer env.Close()

			err = env.Contract.AddMetadata(env.Call, c.String("type"), token.Metadata{
				Title:       c.String("title"),
				Description: c.String("description"),
				Media:       c.String("media"),
				Reference:   c.String("reference"),
			})
			if err != nil {
				return err
			}

			fmt.Printf("template added under %q\n", c.String("type"))
			return nil
		},
	}
}

func types() *cli.Command {
	return &cli.Command{
		Name:  "types",
		Usage: "List the registered type labels",
		Flags: append([]cli.Flag{run.StateFileFlag()}, append(run.CallFlags(), run.ConfigFlags()...)...),
		Action: func(c *cli.Context) error {
			env, err := run.Setup(c)
			if err != nil {
				return err
			}
			defer env.Close()

			for _, label := range env.Contract.CatalogTypes() {
				fmt.Println(label)
			}
			return nil
		},
	}
}

func entries() *cli.Command {
	return &cli.Command{
		Name:  "entries",
		Usage: "List the templates registered under a type",
		Flags: append([]cli.Flag{
			run.StateFileFlag(),
			&cli.StringFlag{
				Name:     "type",
				Required: true,
			},
		}, append(run.CallFlags(), run.ConfigFlags()...)...),
		Action: func(c *cli.Context) error {
			env, err := run.Setup(c)
			if err != nil {
				return err
			}
			defer env.Close()

			templates, err := env.Contract.CatalogEntries(c.String("type"))
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(templates)
		},
	}
}
