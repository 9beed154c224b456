package mint

import (
	"encoding/json"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/urfave/cli/v2"

	"github.com/nestforge/hatchery/cmd/hatchery/pkg/run"
)

func Mint() *cli.Command {
	return &cli.Command{
		Name:  "mint",
		Usage: "Mint a base-stage collectible",
		Flags: append([]cli.Flag{
			run.StateFileFlag(),
			&cli.StringFlag{
				Name:     "receiver",
				Usage:    "Account the new token is bound to",
				Required: true,
			},
			&cli.Uint64Flag{
				Name:  "entry",
				Usage: "Catalog position of the egg template (explicit selection mode only)",
			},
		}, append(run.CallFlags(), run.ConfigFlags()...)...),
		Action: func(c *cli.Context) error {
			env, err := run.Setup(c)
			if err != nil {
				return err
			}
			defer env.Close()

			minted, _, err := env.Contract.Mint(env.Call, common.HexToAddress(c.String("receiver")), c.Uint64("entry"))
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(minted)
		},
	}
}
