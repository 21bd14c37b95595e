package main

import (
	"os"

	"github.com/sadopc/treezy/internal/cli"
)

var version = "dev"

func main() {
	os.Exit(cli.Execute(version))
}
