// Command ols fits ordinary least squares models to csv data, stores the parameters and
// predicts responses for new observations.
//
//	ols fit -data train.csv -target y -out params.json
//	ols predict -params params.json -data points.csv
//	ols show -params params.json -labels rooms,age
//	ols simulate -n 100 -coef 2,3 -intercept 1 -noise 0.5 -out train.csv
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/lmittmann/tint"
	"github.com/pkg/profile"
)

const (
	cmdFit      = "fit"
	cmdPredict  = "predict"
	cmdShow     = "show"
	cmdSimulate = "simulate"
)

var ErrUnknownCommand = errors.New("unknown command")

type command func(cfg *Config, stdout io.Writer) error

var commands = map[string]command{
	cmdFit:      runFit,
	cmdPredict:  runPredict,
	cmdShow:     runShow,
	cmdSimulate: runSimulate,
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		slog.Error("ols failed", "error", err.Error())
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) < 1 {
		usage(stderr)
		return fmt.Errorf("no command given, %w", ErrUnknownCommand)
	}

	name := args[0]
	cmd, exists := commands[name]
	if !exists {
		usage(stderr)
		return fmt.Errorf("%q, %w", name, ErrUnknownCommand)
	}

	cfg, err := parseConfig(name, args[1:], stderr)
	if err != nil {
		return err
	}

	if err := setupLogging(stderr, cfg.LogLevel); err != nil {
		return err
	}

	switch cfg.Profile {
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	}

	return cmd(cfg, stdout)
}

func setupLogging(w io.Writer, level string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("invalid log level %q, %w", level, err)
	}

	slog.SetDefault(slog.New(
		tint.NewHandler(w, &tint.Options{
			Level:      lvl,
			TimeFormat: "15:04:05",
		}),
	))
	return nil
}

func usage(w io.Writer) {
	names := []string{cmdFit, cmdPredict, cmdShow, cmdSimulate}
	fmt.Fprintf(w, "usage: ols <%s> [flags]\n", strings.Join(names, "|"))
}
