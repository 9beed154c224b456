package info

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/nestforge/hatchery/cmd/hatchery/pkg/run"
)

func Owner() *cli.Command {
	return &cli.Command{
		Name:  "owner",
		Usage: "Print the administrative account",
		Flags: append([]cli.Flag{run.StateFileFlag()}, append(run.CallFlags(), run.ConfigFlags()...)...),
		Action: func(c *cli.Context) error {
			env, err := run.Setup(c)
			if err != nil {
				return err
			}
			defer env.Close()

			fmt.Println(env.Contract.Owner())
			return nil
		},
	}
}

func Descriptor() *cli.Command {
	return &cli.Command{
		Name:  "descriptor",
		Usage: "Print the contract-level metadata",
		Flags: append([]cli.Flag{run.StateFileFlag()}, append(run.CallFlags(), run.ConfigFlags()...)...),
		Action: func(c *cli.Context) error {
			env, err := run.Setup(c)
			if err != nil {
				return err
			}
			defer env.Close()

			descriptor, err := env.Contract.Descriptor()
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(descriptor)
		},
	}
}
