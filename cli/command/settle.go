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
	// CmdNmSettle is the command name.
	CmdNmSettle cli.CmdName = "settle"
)

func init() {
	cli.Registrar[CmdNmSettle] = NewSettle
}

// Settle requests settlement of stablecoin units held by the current account.
type Settle struct {
	Symbol string
	Amount string
}

// NewSettle constructs and initializes the command.
func NewSettle() cli.Command {
	return &Settle{}
}

// Name returns the command name.
func (c *Settle) Name() cli.CmdName {
	return CmdNmSettle
}

// Help prints out the help message for the command.
func (c *Settle) Help(
	ctx context.Context,
) {
	out.Normf("\nUsage: ")
	out.Boldf("ledger settle <symbol> <amount>\n")
	out.Normf("\n")
	out.Normf("  Requests settlement of stablecoin units held by the current account. On a\n")
	out.Normf("  live market the request matures after the settlement delay; on a globally\n")
	out.Normf("  settled market it redeems immediately against the settlement fund. A zero\n")
	out.Normf("  amount cancels the pending request.\n")
	out.Normf("\n")
	out.Normf("Arguments:\n")
	out.Boldf("  symbol\n")
	out.Normf("    The symbol of the stablecoin to settle.\n")
	out.Valuf("    BIT\n")
	out.Normf("\n")
	out.Boldf("  amount\n")
	out.Normf("    The amount of units to settle.\n")
	out.Valuf("    400\n")
	out.Normf("\n")
	out.Normf("Examples:\n")
	out.Valuf("   ledger settle BIT 400\n")
	out.Normf("\n")
}

// Parse parses the arguments passed to the command.
func (c *Settle) Parse(
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
func (c *Settle) Execute(
	ctx context.Context,
) error {
	e, err := cli.EngineFromContextConfig(ctx)
	if err != nil {
		return errors.Trace(err)
	}

	out.Statf("[Settling asset] engine=%s account=%s asset=%s amount=%s\n",
		e.Host, e.Account, c.Symbol, c.Amount)

	status, raw, err := e.Post(ctx,
		fmt.Sprintf("/assets/%s/settle", c.Symbol),
		url.Values{
			"account": {e.Account},
			"amount":  {c.Amount},
		})
	if err != nil {
		return errors.Trace(err)
	}

	switch *status {
	case http.StatusCreated:
		var settlement engine.SettlementResource
		if err := raw.Extract("settlement", &settlement); err != nil {
			return errors.Trace(err)
		}
		out.Boldf("Settlement requested:\n")
		out.Normf("  Asset: ")
		out.Valuf("%s", settlement.Asset)
		out.Normf(" Balance: ")
		out.Valuf("%s", settlement.Balance.String())
		out.Normf(" Matures: ")
		out.Valuf("%d\n", settlement.SettlementDate)
	case http.StatusOK:
		var payout engine.SettlementPayoutResource
		if err := raw.Extract("payout", &payout); err == nil {
			out.Boldf("Settlement executed:\n")
			out.Normf("  Settled: ")
			out.Valuf("%s", payout.Settled.String())
			out.Normf(" Payout: ")
			out.Valuf("%s %s\n", payout.Payout.String(), payout.PayoutAsset)
		} else {
			out.Boldf("Settlement cancelled.\n")
		}
	default:
		return errors.Trace(userError(raw))
	}

	return nil
}
