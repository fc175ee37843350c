// Command goguard checks route tables and evaluates single navigations from
// the command line.
//
// Usage:
//
//	goguard lint   [-routes routes.yaml]
//	goguard decide [-routes routes.yaml] [-token t] [-user '{"role":"doctor"}'] -target name
//
// Settings may also come from the environment or a .env file:
// GOGUARD_ROUTES, GOGUARD_LOG_LEVEL, REDIS_ADDR, GOGUARD_REDIS_PREFIX and
// GOGUARD_CLIENT_ID. With REDIS_ADDR set and no -token, decide evaluates the
// session stored in Redis for GOGUARD_CLIENT_ID.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	goGuard "github.com/MrEthical07/goGuard"
	"github.com/MrEthical07/goGuard/route"
	"github.com/MrEthical07/goGuard/session"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	exitOK      = 0
	exitInvalid = 1
	exitUsage   = 2
)

func main() {
	cfg, err := loadConfig(".env", nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitUsage)
	}
	os.Exit(run(context.Background(), os.Args[1:], cfg, os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, cfg cliConfig, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stderr)
		return exitUsage
	}

	logger, err := newLogger(cfg.LogLevel, zapcore.AddSync(stderr))
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}
	defer func() { _ = logger.Sync() }()

	switch args[0] {
	case "lint":
		return runLint(args[1:], cfg, stdout, stderr)
	case "decide":
		return runDecide(ctx, args[1:], cfg, logger, stdout, stderr)
	case "-h", "-help", "--help", "help":
		usage(stdout)
		return exitOK
	default:
		fmt.Fprintf(stderr, "unknown command %q\n", args[0])
		usage(stderr)
		return exitUsage
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: goguard <lint|decide> [flags]")
}

func loadTable(path string) (*route.Table, error) {
	if path == "" {
		return route.Default(), nil
	}
	return route.LoadFile(path)
}

func runLint(args []string, cfg cliConfig, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("lint", flag.ContinueOnError)
	fs.SetOutput(stderr)
	routes := fs.String("routes", cfg.Routes, "route table YAML file; empty uses the built-in table")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	table, err := loadTable(*routes)
	if err != nil {
		fmt.Fprintf(stdout, "invalid: %v\n", err)
		return exitInvalid
	}

	warnings := table.Lint()
	for _, w := range warnings {
		fmt.Fprintf(stdout, "warning: %s\n", w)
	}
	fmt.Fprintf(stdout, "ok: %d routes, %d warnings\n", len(table.Routes()), len(warnings))
	return exitOK
}

func runDecide(ctx context.Context, args []string, cfg cliConfig, logger *zap.Logger, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("decide", flag.ContinueOnError)
	fs.SetOutput(stderr)
	routes := fs.String("routes", cfg.Routes, "route table YAML file; empty uses the built-in table")
	token := fs.String("token", "", "raw session token")
	rawUser := fs.String("user", "", "serialized user record (JSON)")
	target := fs.String("target", "", "route name to navigate to")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if *target == "" {
		fmt.Fprintln(stderr, "decide: -target is required")
		return exitUsage
	}

	table, err := loadTable(*routes)
	if err != nil {
		fmt.Fprintf(stderr, "decide: %v\n", err)
		return exitInvalid
	}

	b := goGuard.New().WithRoutes(table).WithLogger(logger)
	if cfg.RedisAddr != "" && *token == "" && *rawUser == "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer client.Close()
		gcfg := goGuard.DefaultConfig()
		gcfg.Session.RedisPrefix = cfg.RedisPrefix
		b = b.WithConfig(gcfg).WithRedis(client, cfg.ClientID)
	} else {
		storage := session.NewMemoryStorage()
		if *token != "" {
			_ = storage.Set(ctx, session.DefaultTokenKey, *token)
		}
		if *rawUser != "" {
			_ = storage.Set(ctx, session.DefaultUserKey, *rawUser)
		}
		b = b.WithStorage(storage)
	}

	engine, err := b.Build()
	if err != nil {
		fmt.Fprintf(stderr, "decide: %v\n", err)
		return exitUsage
	}
	defer engine.Close()

	nav, err := engine.Navigate(ctx, *target)
	for _, hop := range nav.Hops {
		fmt.Fprintf(stdout, "%s: %s\n", hop.Route, hop.Decision)
	}
	if err != nil {
		fmt.Fprintf(stderr, "decide: %v\n", err)
		if errors.Is(err, goGuard.ErrRedirectLoop) || errors.Is(err, goGuard.ErrUnknownRoute) {
			return exitInvalid
		}
		return exitUsage
	}
	fmt.Fprintf(stdout, "final: %s\n", nav.Final)
	return exitOK
}
