package main

import (
	"os"

	"github.com/jalad-shrimali/cml-linker/cli"
)

func main() {
	os.Exit(int(cli.Run()))
}
