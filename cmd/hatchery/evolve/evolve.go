package evolve

import (
	"encoding/json"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/urfave/cli/v2"

	"github.com/nestforge/hatchery/cmd/hatchery/pkg/run"
	"github.com/nestforge/hatchery/hatchery/token"
)

func Evolve() *cli.Command {
	return &cli.Command{
		Name:  "evolve",
		Usage: "Evolve a collectible to its next stage",
		Flags: append([]cli.Flag{
			run.StateFileFlag(),
			&cli.StringFlag{
				Name:     "token-id",
				Usage:    "Id of the token to evolve",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "receiver",
				Usage:    "Account the evolved token is bound to (must be the current owner)",
				Required: true,
			},
		}, append(run.CallFlags(), run.ConfigFlags()...)...),
		Action: func(c *cli.Context) error {
			env, err := run.Setup(c)
			if err != nil {
				return err
			}
			defer env.Close()

			evolved, _, err := env.Contract.Evolve(
				env.Call,
				token.ID(c.String("token-id")),
				common.HexToAddress(c.String("receiver")),
			)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(evolved)
		},
	}
}
