package main

import (
	"os"

	"github.com/go-checkup/checkup/cmd"
)

func main() {
	code := cmd.Execute()
	os.Exit(code)
}
