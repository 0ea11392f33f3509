// Command spiritcast is the worship projection controller CLI.
package main

import (
	"os"

	"github.com/roach88/spiritcast/internal/cli"
)

func main() {
	os.Exit(cli.Execute(cli.NewRootCommand()))
}
