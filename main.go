package main

import (
	"log"

	namada "github.com/hyperledger-labs/namada-relayer/chains/namada/module"
	"github.com/hyperledger-labs/namada-relayer/cmd"
)

func main() {
	if err := cmd.Execute(
		namada.Module{},
	); err != nil {
		log.Fatal(err)
	}
}
