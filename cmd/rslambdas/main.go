package main

import (
	"os"

	"github.com/leplatrem-circleci/remote-settings-lambdas/internal/cli"
)

func main() {
	os.Exit(cli.Main(os.Args[1:]))
}
