package main

import (
	"fmt"
	"os"

	"github.com/tanpawarit/symphony/cli"
	_ "github.com/tanpawarit/symphony/pkg/logger/autoload"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "symphony:", err)
		os.Exit(1)
	}
}
