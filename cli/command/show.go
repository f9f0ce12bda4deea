package command

import (
	"context"

	"github.com/teal/ledger/cli"
	"github.com/teal/ledger/engine"
	"github.com/teal/ledger/lib/errors"
	"github.com/teal/ledger/lib/out"
)

const (
	// CmdNmShow is the command name.
	CmdNmShow cli.CmdName = "show"
)

func init() {
	cli.Registrar[CmdNmShow] = NewShow
}

// Show retrieves and prints an asset.
type Show struct {
	Symbol string
}

// NewShow constructs and initializes the command.
func NewShow() cli.Command {
	return &Show{}
}

// Name returns the command name.
func (c *Show) Name() cli.CmdName {
	return CmdNmShow
}

// Help prints out the help message for the command.
func (c *Show) Help(
	ctx context.Context,
) {
	out.Normf("\nUsage: ")
	out.Boldf("ledger show <symbol>\n")
	out.Normf("\n")
	out.Normf("  Retrieves and prints an asset.\n")
	out.Normf("\n")
	out.Normf("Arguments:\n")
	out.Boldf("  symbol\n")
	out.Normf("    The symbol of the asset to retrieve.\n")
	out.Valuf("    GOLD\n")
	out.Normf("\n")
	out.Normf("Examples:\n")
	out.Valuf("   ledger show GOLD\n")
	out.Normf("\n")
}

// Parse parses the arguments passed to the command.
func (c *Show) Parse(
	ctx context.Context,
	args []string,
) error {
	if len(args) != 1 {
		return errors.Trace(
			errors.Newf("Symbol required."))
	}
	if !engine.SymbolRegexp.MatchString(args[0]) {
		return errors.Trace(
			errors.Newf("Invalid symbol: %s.", args[0]))
	}
	c.Symbol = args[0]

	return nil
}

// Execute the command or return a human-friendly error.
func (c *Show) Execute(
	ctx context.Context,
) error {
	asset, err := RetrieveAsset(ctx, c.Symbol)
	if err != nil {
		return errors.Trace(err)
	}
	if asset == nil {
		return errors.Trace(
			errors.Newf("Asset not found: %s.", c.Symbol))
	}

	out.Boldf("Asset:\n")
	OutAsset(*asset)

	return nil
}
