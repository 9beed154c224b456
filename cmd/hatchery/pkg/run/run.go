// Package run holds the plumbing shared by every hatchery subcommand:
// opening the sqlite state file, building the contract from flags, and the
// per-call environment (caller, deposit, time).
package run

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"
	"github.com/urfave/cli/v2"

	"github.com/nestforge/hatchery/hatchery/contract"
	"github.com/nestforge/hatchery/hatchery/rent"
	"github.com/nestforge/hatchery/hatchery/statestore/sqlitestate"
)

// StateFileFlag names the sqlite file holding the contract state.
func StateFileFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "state-file",
		Usage:   "Path of the sqlite state file",
		Value:   "hatchery.db",
		EnvVars: []string{"HATCHERY_STATE_FILE"},
	}
}

// CallFlags carry the per-call environment normally supplied by the chain
// dispatcher.
func CallFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "caller",
			Usage:   "Account the call executes as",
			EnvVars: []string{"HATCHERY_CALLER"},
		},
		&cli.StringFlag{
			Name:    "deposit",
			Usage:   "Attached deposit in wei",
			Value:   "0",
			EnvVars: []string{"HATCHERY_DEPOSIT"},
		},
		&cli.Uint64Flag{
			Name:  "now",
			Usage: "Current time as unix seconds (0 = wall clock)",
		},
	}
}

// ConfigFlags expose the deployment-mode knobs.
func ConfigFlags() []cli.Flag {
	return []cli.Flag{
		&cli.Uint64Flag{
			Name:    "max-level",
			Usage:   "Terminal evolution stage",
			Value:   3,
			EnvVars: []string{"HATCHERY_MAX_LEVEL"},
		},
		&cli.Uint64Flag{
			Name:    "cooldown",
			Usage:   "Evolution cooldown in seconds",
			Value:   86400,
			EnvVars: []string{"HATCHERY_COOLDOWN"},
		},
		&cli.StringFlag{
			Name:    "selection",
			Usage:   "Catalog selection policy: random or explicit",
			Value:   "random",
			EnvVars: []string{"HATCHERY_SELECTION"},
		},
		&cli.StringFlag{
			Name:    "rent-mode",
			Usage:   "Storage rent mode: measured or flat",
			Value:   "measured",
			EnvVars: []string{"HATCHERY_RENT_MODE"},
		},
		&cli.StringFlag{
			Name:    "cost-per-slot",
			Usage:   "Cost of one created storage slot in wei (measured mode)",
			Value:   "1000000000000000",
			EnvVars: []string{"HATCHERY_COST_PER_SLOT"},
		},
		&cli.StringFlag{
			Name:    "flat-fee",
			Usage:   "Fixed fee per mutating operation in wei (flat mode)",
			Value:   "0",
			EnvVars: []string{"HATCHERY_FLAT_FEE"},
		},
	}
}

// Env is one opened call environment.
type Env struct {
	Store    *sqlitestate.Store
	Contract *contract.Contract
	Call     contract.Call
}

func (e *Env) Close() error {
	return e.Store.Close()
}

// LogRefunder dispatches refunds by logging them; there is no transfer
// rail behind a local state file.
type LogRefunder struct{}

func (LogRefunder) Transfer(to common.Address, amount *uint256.Int) {
	log.Info("refund dispatched", "to", to, "amount", amount)
}

// Setup opens the state file and assembles the contract and call
// environment from the command's flags.
func Setup(c *cli.Context) (*Env, error) {
	store, err := sqlitestate.Open(c.Context, c.String("state-file"))
	if err != nil {
		return nil, err
	}

	cfg := contract.DefaultConfig()
	cfg.MaxLevel = c.Uint64("max-level")
	cfg.CooldownSeconds = c.Uint64("cooldown")
	cfg.Refunder = LogRefunder{}

	switch c.String("selection") {
	case "", "random":
		cfg.Selection = contract.Randomized
	case "explicit":
		cfg.Selection = contract.ExplicitIndex
	default:
		store.Close()
		return nil, fmt.Errorf("unknown selection policy: %q", c.String("selection"))
	}

	switch c.String("rent-mode") {
	case "", "measured":
		cfg.RentMode = rent.Measured
	case "flat":
		cfg.RentMode = rent.Flat
	default:
		store.Close()
		return nil, fmt.Errorf("unknown rent mode: %q", c.String("rent-mode"))
	}

	if cfg.CostPerSlot, err = parseWei(c.String("cost-per-slot")); err != nil {
		store.Close()
		return nil, fmt.Errorf("invalid cost-per-slot: %w", err)
	}
	if cfg.FlatFee, err = parseWei(c.String("flat-fee")); err != nil {
		store.Close()
		return nil, fmt.Errorf("invalid flat-fee: %w", err)
	}

	deposit, err := parseWei(c.String("deposit"))
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("invalid deposit: %w", err)
	}

	now := c.Uint64("now")
	if now == 0 {
		now = uint64(time.Now().Unix())
	}

	return &Env{
		Store:    store,
		Contract: contract.New(store, cfg),
		Call: contract.Call{
			Caller:  common.HexToAddress(c.String("caller")),
			Deposit: deposit,
			Now:     now,
		},
	}, nil
}

func parseWei(s string) (*uint256.Int, error) {
	if s == "" {
		return uint256.NewInt(0), nil
	}
	return uint256.FromDecimal(s)
}
