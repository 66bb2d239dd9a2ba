package main

import "github.com/hiero-ledger/relay-lockgate/cmd"

func main() {
	cmd.Execute()
}
