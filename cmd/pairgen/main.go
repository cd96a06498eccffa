package main

import (
	"github.com/probelab/pairgen/pairgen/cli"
)

func main() {
	cli.Execute()
}
