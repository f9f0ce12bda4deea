package command

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/teal/ledger/cli"
	"github.com/teal/ledger/engine"
	"github.com/teal/ledger/lib/errors"
	"github.com/teal/ledger/lib/out"
)

const (
	// CmdNmReserve is the command name.
	CmdNmReserve cli.CmdName = "reserve"
)

func init() {
	cli.Registrar[CmdNmReserve] = NewReserve
}

// Reserve burns units of an asset back into reserve.
type Reserve struct {
	Symbol string
	Amount string
}

// NewReserve constructs and initializes the command.
func NewReserve() cli.Command {
	return &Reserve{}
}

// Name returns the command name.
func (c *Reserve) Name() cli.CmdName {
	return CmdNmReserve
}

// Help prints out the help message for the command.
func (c *Reserve) Help(
	ctx context.Context,
) {
	out.Normf("\nUsage: ")
	out.Boldf("ledger reserve <symbol> <amount>\n")
	out.Normf("\n")
	out.Normf("  Burns units of an asset issued by the current account from its own balance\n")
	out.Normf("  back into reserve, reducing the total supply.\n")
	out.Normf("\n")
	out.Normf("Arguments:\n")
	out.Boldf("  symbol\n")
	out.Normf("    The symbol of the asset to reserve.\n")
	out.Valuf("    GOLD\n")
	out.Normf("\n")
	out.Boldf("  amount\n")
	out.Normf("    The amount of units to burn.\n")
	out.Valuf("    200\n")
	out.Normf("\n")
	out.Normf("Examples:\n")
	out.Valuf("   ledger reserve GOLD 200\n")
	out.Normf("\n")
}

// Parse parses the arguments passed to the command.
func (c *Reserve) Parse(
	ctx context.Context,
	args []string,
) error {
	if len(args) != 2 {
		return errors.Trace(
			errors.Newf("Symbol and amount required."))
	}
	c.Symbol = args[0]
	c.Amount = args[1]

	return nil
}

// Execute the command or return a human-friendly error.
func (c *Reserve) Execute(
	ctx context.Context,
) error {
	e, err := cli.EngineFromContextConfig(ctx)
	if err != nil {
		return errors.Trace(err)
	}

	out.Statf("[Reserving asset] engine=%s account=%s asset=%s amount=%s\n",
		e.Host, e.Account, c.Symbol, c.Amount)

	status, raw, err := e.Post(ctx,
		fmt.Sprintf("/assets/%s/reserve", c.Symbol),
		url.Values{
			"account": {e.Account},
			"amount":  {c.Amount},
		})
	if err != nil {
		return errors.Trace(err)
	}
	if *status != http.StatusOK {
		return errors.Trace(userError(raw))
	}

	var asset engine.AssetResource
	if err := raw.Extract("asset", &asset); err != nil {
		return errors.Trace(err)
	}

	out.Boldf("Asset reserved:\n")
	OutAsset(asset)

	return nil
}
