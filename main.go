package main

import (
	"os"

	"github.com/nestbox-eng/nestbox-ctl/cmd"
	"github.com/nestbox-eng/nestbox-ctl/internal/errors"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(errors.GetExitCode(err))
	}
}
