package command

import (
	"context"
	"net/http"
	"net/url"

	"github.com/teal/ledger/cli"
	"github.com/teal/ledger/engine"
	"github.com/teal/ledger/lib/errors"
	"github.com/teal/ledger/lib/out"
)

const (
	// CmdNmCreate is the command name.
	CmdNmCreate cli.CmdName = "create"
)

func init() {
	cli.Registrar[CmdNmCreate] = NewCreate
}

// Create creates a new asset issued by the current account.
type Create struct {
	Symbol    string
	Type      string
	MaxSupply string
}

// NewCreate constructs and initializes the command.
func NewCreate() cli.Command {
	return &Create{}
}

// Name returns the command name.
func (c *Create) Name() cli.CmdName {
	return CmdNmCreate
}

// Help prints out the help message for the command.
func (c *Create) Help(
	ctx context.Context,
) {
	out.Normf("\nUsage: ")
	out.Boldf("ledger create <symbol> <type> <max_supply>\n")
	out.Normf("\n")
	out.Normf("  Creates a new asset issued by the current account. Types requiring extra\n")
	out.Normf("  parameters (stablecoin, bond, equity, credit, stimulus) are created through\n")
	out.Normf("  the engine API directly.\n")
	out.Normf("\n")
	out.Normf("Arguments:\n")
	out.Boldf("  symbol\n")
	out.Normf("    The symbol of the asset, uppercase.\n")
	out.Valuf("    GOLD\n")
	out.Normf("\n")
	out.Boldf("  type\n")
	out.Normf("    The type of the asset.\n")
	out.Valuf("    standard unique\n")
	out.Normf("\n")
	out.Boldf("  max_supply\n")
	out.Normf("    The maximal supply of the asset.\n")
	out.Valuf("    1000000\n")
	out.Normf("\n")
	out.Normf("Examples:\n")
	out.Valuf("   ledger create GOLD standard 1000000\n")
	out.Normf("\n")
}

// Parse parses the arguments passed to the command.
func (c *Create) Parse(
	ctx context.Context,
	args []string,
) error {
	if len(args) != 3 {
		return errors.Trace(
			errors.Newf("Symbol, type and max supply required."))
	}
	if !engine.SymbolRegexp.MatchString(args[0]) {
		return errors.Trace(
			errors.Newf("Invalid symbol: %s.", args[0]))
	}
	c.Symbol = args[0]
	c.Type = args[1]
	c.MaxSupply = args[2]

	return nil
}

// Execute the command or return a human-friendly error.
func (c *Create) Execute(
	ctx context.Context,
) error {
	e, err := cli.EngineFromContextConfig(ctx)
	if err != nil {
		return errors.Trace(err)
	}

	out.Statf("[Creating asset] engine=%s account=%s asset=%s type=%s\n",
		e.Host, e.Account, c.Symbol, c.Type)

	status, raw, err := e.Post(ctx,
		"/assets",
		url.Values{
			"account":    {e.Account},
			"symbol":     {c.Symbol},
			"type":       {c.Type},
			"max_supply": {c.MaxSupply},
		})
	if err != nil {
		return errors.Trace(err)
	}
	if *status != http.StatusCreated {
		return errors.Trace(userError(raw))
	}

	var asset engine.AssetResource
	if err := raw.Extract("asset", &asset); err != nil {
		return errors.Trace(err)
	}

	out.Boldf("Asset created:\n")
	OutAsset(asset)

	return nil
}
