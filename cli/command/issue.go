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
	// CmdNmIssue is the command name.
	CmdNmIssue cli.CmdName = "issue"
)

func init() {
	cli.Registrar[CmdNmIssue] = NewIssue
}

// Issue issues units of an asset to a recipient.
type Issue struct {
	Symbol    string
	Amount    string
	Recipient string
}

// NewIssue constructs and initializes the command.
func NewIssue() cli.Command {
	return &Issue{}
}

// Name returns the command name.
func (c *Issue) Name() cli.CmdName {
	return CmdNmIssue
}

// Help prints out the help message for the command.
func (c *Issue) Help(
	ctx context.Context,
) {
	out.Normf("\nUsage: ")
	out.Boldf("ledger issue <symbol> <amount> <recipient>\n")
	out.Normf("\n")
	out.Normf("  Issues units of an asset issued by the current account into the recipient's\n")
	out.Normf("  balance.\n")
	out.Normf("\n")
	out.Normf("Arguments:\n")
	out.Boldf("  symbol\n")
	out.Normf("    The symbol of the asset to issue.\n")
	out.Valuf("    GOLD\n")
	out.Normf("\n")
	out.Boldf("  amount\n")
	out.Normf("    The amount of units to issue.\n")
	out.Valuf("    500\n")
	out.Normf("\n")
	out.Boldf("  recipient\n")
	out.Normf("    The account receiving the units.\n")
	out.Valuf("    carol\n")
	out.Normf("\n")
	out.Normf("Examples:\n")
	out.Valuf("   ledger issue GOLD 500 carol\n")
	out.Normf("\n")
}

// Parse parses the arguments passed to the command.
func (c *Issue) Parse(
	ctx context.Context,
	args []string,
) error {
	if len(args) != 3 {
		return errors.Trace(
			errors.Newf("Symbol, amount and recipient required."))
	}
	if !engine.AccountNameRegexp.MatchString(args[2]) {
		return errors.Trace(
			errors.Newf("Invalid recipient: %s.", args[2]))
	}
	c.Symbol = args[0]
	c.Amount = args[1]
	c.Recipient = args[2]

	return nil
}

// Execute the command or return a human-friendly error.
func (c *Issue) Execute(
	ctx context.Context,
) error {
	e, err := cli.EngineFromContextConfig(ctx)
	if err != nil {
		return errors.Trace(err)
	}

	out.Statf("[Issuing asset] engine=%s account=%s asset=%s amount=%s\n",
		e.Host, e.Account, c.Symbol, c.Amount)

	status, raw, err := e.Post(ctx,
		fmt.Sprintf("/assets/%s/issue", c.Symbol),
		url.Values{
			"account":   {e.Account},
			"amount":    {c.Amount},
			"recipient": {c.Recipient},
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

	out.Boldf("Asset issued:\n")
	OutAsset(asset)

	return nil
}
