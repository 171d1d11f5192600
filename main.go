package main

import (
	"os"

	"github.com/kilianp07/sectionsched/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
