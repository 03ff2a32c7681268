// Command authtodo is a terminal client for an authenticated to-do API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/idilsaglam/authtodo/internal/cli"
	"github.com/idilsaglam/authtodo/internal/config"
	"github.com/idilsaglam/authtodo/internal/exitcode"
	"github.com/idilsaglam/authtodo/internal/logging"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Root flags (apply to every subcommand)
	group := flag.Bool("group", false, "ls: group output by pending/done")
	envFile := flag.String("env", ".env", "environment file to load")
	theme := flag.String("theme", "", "output theme: classic, neon or mono")
	apiURL := flag.String("api", "", "todo API base URL (overrides AUTHTODO_API_URL)")
	flag.Usage = func() { cli.PrintHelp(os.Stderr) }
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return exitcode.UserError
	}
	if *theme != "" {
		cfg.Theme = *theme
	}
	if *apiURL != "" {
		cfg.APIURL = *apiURL
	}
	if err := cfg.EnsureDir(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return exitcode.UserError
	}

	log, closer, err := logging.OpenFile(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "warning: logging disabled:", err)
		log = logging.Discard()
	} else {
		defer closer.Close()
	}
	log.WithField("api", cfg.APIURL).WithField("provider", cfg.AuthProvider).Debug("starting")

	// Cancel in-flight requests on interrupt
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return cli.Run(ctx, flag.Args(), cli.Env{
		Config: cfg,
		Log:    log,
		In:     os.Stdin,
		Out:    os.Stdout,
		Err:    os.Stderr,
	}, cli.Options{Group: *group})
}
