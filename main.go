package main

import (
	"os"

	"github.com/devguard-io/devguard/cmd"
)

func main() {
	code := cmd.Execute()
	os.Exit(code)
}
