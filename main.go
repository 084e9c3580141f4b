package main

import (
	"fmt"
	"os"

	"github.com/oakwood-commons/templay/cmd"
	"github.com/oakwood-commons/templay/pkg/logger"
	"github.com/oakwood-commons/templay/pkg/settings"
)

func main() {
	exitCode := 0
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", settings.CliBinaryName, err)
		exitCode = 1
	}

	logger.Sync()
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}
