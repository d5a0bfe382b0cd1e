package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

// Exit codes beyond the batch status codes.
const (
	exitUsage       = 64
	exitInterrupted = 130
)

func main() {
	err := newApp().Run(os.Args)
	os.Exit(exitCode(err))
}

func newApp() *cli.App {
	return &cli.App{
		Name:      "dashdl",
		Usage:     "download separately served video and audio streams and merge them",
		ArgsUsage: "<manifest file | URL | ->",
		Flags:     downloadFlags(),
		Action:    downloadAction,
		Commands: []*cli.Command{{
			Name:  "config",
			Usage: "manage the settings file",
			Subcommands: []*cli.Command{{
				Name:      "init",
				Usage:     "write default settings",
				ArgsUsage: "[path]",
				Action:    configInitAction,
			}, {
				Name:   "show",
				Usage:  "print the effective settings after file, .env and environment",
				Flags:  []cli.Flag{configFlag()},
				Action: configShowAction,
			}},
		}},
		// Exit codes are mapped in main so that deferred cleanup runs.
		ExitErrHandler: func(*cli.Context, error) {},
	}
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var coder cli.ExitCoder
	if errors.As(err, &coder) {
		if msg := coder.Error(); msg != "" {
			fmt.Fprintln(os.Stderr, msg)
		}
		return coder.ExitCode()
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return 1
}
