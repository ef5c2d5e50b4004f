// lobby-devserver serves the lobby wire protocol from memory for local
// development. A demo account is seeded at start-up.
package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/spf13/pflag"

	"github.com/aussiebroadwan/lobby/internal/devserver/app"
)

func main() {
	cfg := app.LoadConfig()

	flagSet := pflag.NewFlagSet("lobby-devserver", pflag.ContinueOnError)
	flagSet.IntVarP(&cfg.Port, "port", "p", cfg.Port, "HTTP port")
	flagSet.DurationVar(&cfg.TokenTTL, "token-ttl", cfg.TokenTTL, "lifetime of issued tokens")
	flagSet.StringVar(&cfg.SeedUsername, "seed-user", cfg.SeedUsername, "seed account username, empty to skip")
	flagSet.StringVar(&cfg.SeedPassword, "seed-password", cfg.SeedPassword, "seed account password")
	flagSet.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn, error")
	flagSet.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format: json or text")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}

	if err := application.Run(); err != nil {
		log.Fatalf("application error: %v", err)
	}
}
