package main

import (
	"os"

	"forge-build-publisher/cmd/publisher/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
