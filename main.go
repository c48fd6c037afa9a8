package main

import (
	"os"

	"github.com/kondukto-io/pinguard/cmd/cli"
)

func main() {
	cli.Execute(os.Args[1:])
}
