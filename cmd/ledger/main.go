package main

import (
	"os"

	"github.com/teal/ledger/cli"
	"github.com/teal/ledger/lib/out"

	// force registration of commands
	_ "github.com/teal/ledger/cli/command"
)

func main() {
	cli, err := cli.New(os.Args[1:])
	if err != nil {
		out.Errof("Error: %s\n", err.Error())
		os.Exit(1)
	}

	err = cli.Run()
	if err != nil {
		out.Errof("Error: %s\n", err.Error())
		os.Exit(1)
	}
}
