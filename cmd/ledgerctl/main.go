// Command ledgerctl is the operator tool for the budget ledger: it applies
// migrations, prints and follows project balances, and mints development
// tokens.
package main

func main() {
	Execute()
}
