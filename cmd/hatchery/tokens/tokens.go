package tokens

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/urfave/cli/v2"

	"github.com/nestforge/hatchery/cmd/hatchery/pkg/run"
	"github.com/nestforge/hatchery/hatchery/token"
)

func Tokens() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "Inspect live tokens",
		Subcommands: []*cli.Command{
			show(),
			list(),
			level(),
		},
	}
}

func show() *cli.Command {
	return &cli.Command{
		Name:  "show",
		Usage: "Point lookup of a token by id",
		Flags: append([]cli.Flag{
			run.StateFileFlag(),
			&cli.StringFlag{
				Name:     "token-id",
				Required: true,
			},
		}, append(run.CallFlags(), run.ConfigFlags()...)...),
		Action: func(c *cli.Context) error {
			env, err := run.Setup(c)
			if err != nil {
				return err
			}
			defer env.Close()

			t, err := env.Contract.TokenByID(token.ID(c.String("token-id")))
			if err != nil {
				return err
			}
			if t == nil {
				fmt.Println("not found")
				return nil
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(t)
		},
	}
}

func list() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "Paginated view of an owner's live tokens",
		Flags: append([]cli.Flag{
			run.StateFileFlag(),
			&cli.StringFlag{
				Name:     "account",
				Required: true,
			},
			&cli.Uint64Flag{
				Name:  "offset",
				Usage: "Tokens to skip",
			},
			&cli.Uint64Flag{
				Name:  "limit",
				Usage: "Maximum tokens to return",
				Value: 50,
			},
		}, append(run.CallFlags(), run.ConfigFlags()...)...),
		Action: func(c *cli.Context) error {
			env, err := run.Setup(c)
			if err != nil {
				return err
			}
			defer env.Close()

			page, err := env.Contract.TokensForOwner(
				common.HexToAddress(c.String("account")),
				c.Uint64("offset"),
				c.Uint64("limit"),
			)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(page)
		},
	}
}

func level() *cli.Command {
	return &cli.Command{
		Name:  "level",
		Usage: "Current evolution level of a token's lineage",
		Flags: append([]cli.Flag{
			run.StateFileFlag(),
			&cli.StringFlag{
				Name:     "token-id",
				Required: true,
			},
		}, append(run.CallFlags(), run.ConfigFlags()...)...),
		Action: func(c *cli.Context) error {
			env, err := run.Setup(c)
			if err != nil {
				return err
			}
			defer env.Close()

			lvl, err := env.Contract.LevelOf(token.ID(c.String("token-id")))
			if err != nil {
				return err
			}

			fmt.Println(lvl)
			return nil
		},
	}
}
