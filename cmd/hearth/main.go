// hearth drives an in-process cache from the command line.
//
// Usage:
//
//	hearth [global options] <command> [command options]
//
// Commands:
//
//	demo     put an infinite and a short-lived entry, wait, read and sweep
//	bench    concurrent workers put and get distinct keys, then print stats
//	fetch    concurrent fetches of one missing key, counting fallback runs
//
// Examples:
//
//	hearth demo --ttl 50ms
//	hearth --config hearth.yaml bench --workers 64 --keys 1000
//	hearth --format json fetch --workers 32 --backend shared
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"goflare.io/hearth/pkg/serialization"
)

// Version can be set with -ldflags "-X main.Version=...".
var Version = "0.1.0-dev"

func main() {
	os.Exit(run(os.Args))
}

func run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := createApp().Run(ctx, args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func createApp() *cli.Command {
	return &cli.Command{
		Name:    "hearth",
		Usage:   "exercise an in-memory TTL cache",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML or JSON config file",
			},
			&cli.DurationFlag{
				Name:  "sweep-interval",
				Usage: "idle time before expired entries are swept (overrides config)",
			},
			&cli.DurationFlag{
				Name:  "call-timeout",
				Usage: "timeout for synchronous cache calls (overrides config)",
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "report format: text, json or gob",
				Value: "text",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "log at debug level to stderr",
			},
		},
		Commands: []*cli.Command{
			createDemoCommand(),
			createBenchCommand(),
			createFetchCommand(),
		},
	}
}

func createDemoCommand() *cli.Command {
	return &cli.Command{
		Name:  "demo",
		Usage: "store one infinite and one expiring entry, then read and sweep",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "ttl",
				Usage: "ttl of the expiring entry, in milliseconds or as a duration",
				Value: "50",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withEnv(ctx, cmd, func(env *env) error {
				rep, err := runDemo(ctx, env, cmd.String("ttl"))
				if err != nil {
					return err
				}
				return env.emit(rep)
			})
		},
	}
}

func createBenchCommand() *cli.Command {
	return &cli.Command{
		Name:  "bench",
		Usage: "run concurrent puts and gets over distinct keys",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "workers", Aliases: []string{"w"}, Usage: "concurrent workers", Value: 16},
			&cli.IntFlag{Name: "keys", Aliases: []string{"k"}, Usage: "keys per worker", Value: 1000},
			&cli.StringFlag{Name: "ttl", Usage: "entry ttl, in milliseconds or as a duration", Value: "0"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withEnv(ctx, cmd, func(env *env) error {
				rep, err := runBench(ctx, env, benchParams{
					Workers: cmd.Int("workers"),
					Keys:    cmd.Int("keys"),
					TTL:     cmd.String("ttl"),
				})
				if err != nil {
					return err
				}
				return env.emit(rep)
			})
		},
	}
}

func createFetchCommand() *cli.Command {
	return &cli.Command{
		Name:  "fetch",
		Usage: "fetch one missing key from many goroutines at once",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "workers", Aliases: []string{"w"}, Usage: "concurrent fetches", Value: 16},
			&cli.StringFlag{Name: "backend", Usage: "cache kind: actor or shared", Value: backendActor},
			&cli.DurationFlag{Name: "latency", Usage: "simulated fallback latency", Value: 20 * time.Millisecond},
			&cli.StringFlag{Name: "ttl", Usage: "ttl of the committed value", Value: "0"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withEnv(ctx, cmd, func(env *env) error {
				rep, err := runFetch(ctx, env, fetchParams{
					Workers: cmd.Int("workers"),
					Backend: cmd.String("backend"),
					Latency: cmd.Duration("latency"),
					TTL:     cmd.String("ttl"),
				})
				if err != nil {
					return err
				}
				return env.emit(rep)
			})
		},
	}
}

func validFormat(format string) bool {
	switch format {
	case "text", serialization.JSONType, serialization.GobType:
		return true
	default:
		return false
	}
}
