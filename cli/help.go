package cli

import "github.com/teal/ledger/lib/out"

// Help prints the standard help message.
func Help() {
	out.Normf("\nUsage: ")
	out.Boldf("ledger <command> [<args> ...]\n")
	out.Normf("\n")
	out.Normf("Asset issuance and collateralized stablecoin engine.\n")
	out.Normf("\n")
	out.Normf("Commands:\n")

	out.Boldf("  help [<command>]\n")
	out.Normf("    Show help for a command.\n")
	out.Valuf("    ledger help create\n")
	out.Normf("\n")

	out.Boldf("  use <account> <engine>\n")
	out.Normf("    Select the account and engine to act for.\n")
	out.Valuf("    ledger use alice engine.teal.io:2046\n")
	out.Normf("\n")

	out.Boldf("  create <symbol> <type> <max_supply>\n")
	out.Normf("    Create a new asset.\n")
	out.Valuf("    ledger create GOLD standard 1000000\n")
	out.Normf("\n")

	out.Boldf("  issue <symbol> <amount> <recipient>\n")
	out.Normf("    Issue units of an asset.\n")
	out.Valuf("    ledger issue GOLD 500 carol\n")
	out.Normf("\n")

	out.Boldf("  reserve <symbol> <amount>\n")
	out.Normf("    Burn units of an asset back into reserve.\n")
	out.Valuf("    ledger reserve GOLD 200\n")
	out.Normf("\n")

	out.Boldf("  settle <symbol> <amount>\n")
	out.Normf("    Request settlement of stablecoin units.\n")
	out.Valuf("    ledger settle BIT 400\n")
	out.Normf("\n")

	out.Boldf("  show <symbol>\n")
	out.Normf("    Show an asset.\n")
	out.Valuf("    ledger show GOLD\n")
	out.Normf("\n")

	out.Boldf("  list assets\n")
	out.Normf("    List registered assets.\n")
	out.Valuf("    ledger list assets\n")
	out.Normf("\n")
}
