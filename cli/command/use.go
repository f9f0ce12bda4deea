package command

import (
	"context"

	"github.com/teal/ledger/cli"
	"github.com/teal/ledger/engine"
	"github.com/teal/ledger/lib/errors"
	"github.com/teal/ledger/lib/out"
)

const (
	// CmdNmUse is the command name.
	CmdNmUse cli.CmdName = "use"
)

func init() {
	cli.Registrar[CmdNmUse] = NewUse
}

// Use selects the account and engine subsequent commands act for.
type Use struct {
	Account string
	Engine  string
}

// NewUse constructs and initializes the command.
func NewUse() cli.Command {
	return &Use{}
}

// Name returns the command name.
func (c *Use) Name() cli.CmdName {
	return CmdNmUse
}

// Help prints out the help message for the command.
func (c *Use) Help(
	ctx context.Context,
) {
	out.Normf("\nUsage: ")
	out.Boldf("ledger use <account> <engine>\n")
	out.Normf("\n")
	out.Normf("  Selects the account and engine subsequent commands act for. The selection is\n")
	out.Normf("  stored per environment under ~/.ledger.\n")
	out.Normf("\n")
	out.Normf("Arguments:\n")
	out.Boldf("  account\n")
	out.Normf("    The name of the account to act for.\n")
	out.Valuf("    alice\n")
	out.Normf("\n")
	out.Boldf("  engine\n")
	out.Normf("    The host of the engine to connect to.\n")
	out.Valuf("    engine.teal.io:2046\n")
	out.Normf("\n")
	out.Normf("Examples:\n")
	out.Valuf("   ledger use alice engine.teal.io:2046\n")
	out.Normf("\n")
}

// Parse parses the arguments passed to the command.
func (c *Use) Parse(
	ctx context.Context,
	args []string,
) error {
	if len(args) != 2 {
		return errors.Trace(
			errors.Newf("Account and engine required."))
	}
	if !engine.AccountNameRegexp.MatchString(args[0]) {
		return errors.Trace(
			errors.Newf("Invalid account name: %s.", args[0]))
	}
	c.Account = args[0]
	c.Engine = args[1]

	return nil
}

// Execute the command or return a human-friendly error.
func (c *Use) Execute(
	ctx context.Context,
) error {
	return errors.Trace(cli.StoreConfig(ctx, &cli.Config{
		Engine:  c.Engine,
		Account: c.Account,
	}))
}
