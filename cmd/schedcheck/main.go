package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/schedcheck/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	if err == nil {
		return
	}

	// Commands report their own failures on stdout. Anything else came from
	// cobra itself (bad flags, wrong argument counts) and is a usage error.
	var exitErr *cli.ExitError
	if !errors.As(err, &exitErr) {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.ExitCommandError)
	}
	os.Exit(exitErr.Code)
}
