package initialize

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/urfave/cli/v2"

	"github.com/nestforge/hatchery/cmd/hatchery/pkg/run"
	"github.com/nestforge/hatchery/hatchery/token"
)

func Initialize() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "One-time contract setup: owner, counter, descriptor",
		Flags: append([]cli.Flag{
			run.StateFileFlag(),
			&cli.StringFlag{
				Name:     "contract-owner",
				Usage:    "Administrative account allowed to curate the catalog",
				Required: true,
				EnvVars:  []string{"HATCHERY_OWNER"},
			},
			&cli.StringFlag{
				Name:  "name",
				Usage: "Collection name",
				Value: "Hatchery Collectibles",
			},
			&cli.StringFlag{
				Name:  "symbol",
				Usage: "Collection symbol",
				Value: "HATCH",
			},
			&cli.StringFlag{
				Name:  "icon",
				Usage: "Collection icon data URI",
			},
			&cli.StringFlag{
				Name:  "base-uri",
				Usage: "Base URI media references resolve against",
			},
		}, append(run.CallFlags(), run.ConfigFlags()...)...),
		Action: func(c *cli.Context) error {
			env, err := run.Setup(c)
			if err != nil {
				return err
			}
			defer env.Close()

			err = env.Contract.Initialize(
				common.HexToAddress(c.String("contract-owner")),
				token.Descriptor{
					Name:    c.String("name"),
					Symbol:  c.String("symbol"),
					Icon:    c.String("icon"),
					BaseURI: c.String("base-uri"),
				},
			)
			if err != nil {
				return err
			}

			fmt.Printf("initialized, owner %s\n", c.String("contract-owner"))
			return nil
		},
	}
}
