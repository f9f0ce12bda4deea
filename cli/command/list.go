package command

import (
	"context"

	"github.com/teal/ledger/cli"
	"github.com/teal/ledger/lib/errors"
	"github.com/teal/ledger/lib/out"
)

// ObjType represents a list object type.
type ObjType string

const (
	// CmdNmList is the command name.
	CmdNmList cli.CmdName = "list"

	// ObjTpAsset asset object type.
	ObjTpAsset ObjType = "asset"
)

func init() {
	cli.Registrar[CmdNmList] = NewList
}

// List registered objects of a given type.
type List struct {
	Type ObjType
}

// NewList constructs and initializes the command.
func NewList() cli.Command {
	return &List{}
}

// Name returns the command name.
func (c *List) Name() cli.CmdName {
	return CmdNmList
}

// Help prints out the help message for the command.
func (c *List) Help(
	ctx context.Context,
) {
	out.Normf("\nUsage: ")
	out.Boldf("ledger list <type>\n")
	out.Normf("\n")
	out.Normf("  Lists registered objects.\n")
	out.Normf("\n")
	out.Normf("Arguments:\n")
	out.Boldf("  type\n")
	out.Normf("    The type of object to retrieve and list.\n")
	out.Valuf("    assets\n")
	out.Normf("\n")
	out.Normf("Examples:\n")
	out.Valuf("   ledger list assets\n")
	out.Normf("\n")
}

// Parse parses the arguments passed to the command.
func (c *List) Parse(
	ctx context.Context,
	args []string,
) error {
	if len(args) == 0 {
		return errors.Trace(
			errors.Newf("Object type required (assets)."))
	}

	switch args[0] {
	case "assets", "asset":
		c.Type = ObjTpAsset
	default:
		return errors.Trace(
			errors.Newf("Invalid object type: %s, expected assets.",
				args[0]))
	}

	return nil
}

// Execute the command or return a human-friendly error.
func (c *List) Execute(
	ctx context.Context,
) error {
	assets, err := ListAssets(ctx)
	if err != nil {
		return errors.Trace(err)
	}

	out.Boldf("Assets:\n")
	if len(assets) == 0 {
		out.Normf("  No asset.\n")
	}
	for _, a := range assets {
		OutAsset(a)
	}

	return nil
}
