// Taleforge plays a data-driven text adventure in the terminal.
//
// Usage: taleforge [flags] [game_directory]
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/nathoo/taleforge/cli"
	"github.com/nathoo/taleforge/config"
	"github.com/nathoo/taleforge/engine"
	"github.com/nathoo/taleforge/engine/save"
	"github.com/nathoo/taleforge/loader"
	"github.com/nathoo/taleforge/logger"
	"github.com/nathoo/taleforge/tui"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "INI configuration file")
	plain := flag.Bool("plain", false, "Use the line-oriented interface even on a terminal")
	script := flag.String("script", "", "Play commands from a file and echo them")
	load := flag.String("load", "", "Restore a saved game before play starts")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: taleforge [flags] [game_directory]\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *showVersion {
		fmt.Printf("taleforge %s (commit %s, built %s)\n", version, commit, date)
		return nil
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if flag.NArg() > 0 {
		cfg.GameDir = flag.Arg(0)
	}

	interactive := *script == "" && !*plain && term.IsTerminal(int(os.Stdout.Fd()))

	// The full-screen interface owns stdout, so logs go to stderr unless a
	// file is configured; in TUI mode without a file they are dropped.
	var fallback io.Writer = os.Stderr
	if interactive {
		fallback = io.Discard
	}
	out, closeLog, err := logger.Output(cfg, fallback)
	if err != nil {
		return err
	}
	defer closeLog()
	log := logger.Setup(cfg, out)

	world, err := loader.Load(cfg.GameDir, log)
	if err != nil {
		return fmt.Errorf("loading game: %w", err)
	}

	eng := engine.New(world, log)
	eng.MoveMinutes = cfg.MoveMinutes

	store, closeStore, err := openStore(cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()
	eng.Store = store

	logger.WithSession(log, eng.State.SessionID).Info("game started",
		"title", world.Game.Title, "dir", cfg.GameDir, "backend", cfg.SaveBackend)

	if *load != "" {
		// A failed load leaves the fresh game in place.
		fmt.Println(eng.LoadGame(*load))
	}

	switch {
	case *script != "":
		f, err := os.Open(*script)
		if err != nil {
			return fmt.Errorf("opening script: %w", err)
		}
		defer f.Close()
		c := cli.New(eng)
		c.In = f
		c.Width = cfg.WrapWidth
		c.EchoInput = true
		c.Run()
	case !interactive:
		c := cli.New(eng)
		c.Width = cfg.WrapWidth
		c.Run()
	default:
		if err := tui.Run(eng); err != nil {
			return err
		}
	}
	return nil
}

// openStore builds the configured save backend. The returned close func
// is always safe to call.
func openStore(cfg *config.Config, log *slog.Logger) (save.Store, func() error, error) {
	switch cfg.SaveBackend {
	case config.BackendRedis:
		rs := save.NewRedisStore(cfg.RedisAddr, cfg.RedisPrefix, log)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := rs.WaitForConnection(ctx, 5, time.Second); err != nil {
			_ = rs.Close()
			return nil, nil, fmt.Errorf("connecting to redis: %w", err)
		}
		return rs, rs.Close, nil
	default:
		return save.NewFileStore(cfg.SaveDir), func() error { return nil }, nil
	}
}
