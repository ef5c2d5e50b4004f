// lobby is an interactive terminal client for the game lobby. It signs in
// with a password or a single sign-on token, remembers the session when
// asked, and offers room and tunnel commands.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/aussiebroadwan/lobby/internal/lobby/app"
	"github.com/aussiebroadwan/lobby/internal/lobby/cli"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := app.LoadConfig()
	var openURL string

	flagSet := pflag.NewFlagSet("lobby", pflag.ContinueOnError)
	flagSet.StringVar(&cfg.APIURL, "api", cfg.APIURL, "game service base URL")
	flagSet.StringVar(&cfg.AuthURL, "auth", cfg.AuthURL, "single sign-on page")
	flagSet.StringVar(&cfg.AppURL, "app", cfg.AppURL, "base URL of this client's routes")
	flagSet.StringVar(&cfg.StoreMode, "store", cfg.StoreMode, "credential store: file or memory")
	flagSet.StringVar(&cfg.StoreFile, "store-file", cfg.StoreFile, "SQLite file for the file store")
	flagSet.StringVar(&cfg.MasterKeyPath, "master-key-file", cfg.MasterKeyPath, "file with key material for sealing stored credentials")
	flagSet.DurationVar(&cfg.RequestTimeout, "timeout", cfg.RequestTimeout, "per-request timeout")
	flagSet.Float64Var(&cfg.RateLimitRPS, "rate-limit", cfg.RateLimitRPS, "max requests per second, 0 for no limit")
	flagSet.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn, error")
	flagSet.StringVarP(&openURL, "open", "o", "", "initial location, e.g. a link carrying ?token=")
	showVersion := flagSet.Bool("version", false, "print version and exit")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if *showVersion {
		fmt.Println("lobby", app.BuildVersion)
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, os.Stderr)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer application.Close()

	cli.NewApp(application, os.Stdin, os.Stdout).Run(ctx, openURL)
	return nil
}
