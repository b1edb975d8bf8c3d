package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
)

// usageError 参数错误，退出码 2。
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func createApp(stdout, stderr io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "xserve",
		Usage:     "fixed-size worker pool line server",
		Version:   fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildTime),
		Writer:    stdout,
		ErrWriter: stderr,
		Commands: []*cli.Command{
			serveCommand(),
			versionCommand(),
		},
		OnUsageError: func(_ context.Context, _ *cli.Command, err error, _ bool) error {
			return &usageError{err: err}
		},
		// 设计决策: 由 run 统一映射退出码，禁止 urfave/cli 直接 os.Exit。
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "accept connections and dispatch each one to the worker pool",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "config file (yaml or json)",
				Sources: cli.EnvVars("XSERVE_CONFIG"),
			},
			&cli.StringFlag{
				Name:    "addr",
				Usage:   "listen address",
				Sources: cli.EnvVars("XSERVE_ADDR"),
			},
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"w"},
				Usage:   "number of workers",
				Sources: cli.EnvVars("XSERVE_WORKERS"),
			},
			&cli.StringFlag{
				Name:    "root",
				Usage:   "directory holding the pages",
				Sources: cli.EnvVars("XSERVE_ROOT"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "debug, info, warn or error",
				Sources: cli.EnvVars("XSERVE_LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "log-format",
				Usage:   "text or json",
				Sources: cli.EnvVars("XSERVE_LOG_FORMAT"),
			},
		},
		OnUsageError: func(_ context.Context, _ *cli.Command, err error, _ bool) error {
			return &usageError{err: err}
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return serve(ctx, cmd.Root().ErrWriter, overridesFromFlags(cmd))
		},
	}
}

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "print version information",
		Action: func(_ context.Context, cmd *cli.Command) error {
			_, err := fmt.Fprintf(cmd.Root().Writer, "xserve %s\ncommit: %s\nbuilt: %s\n", Version, GitCommit, BuildTime)
			return err
		},
	}
}

// run 执行命令行并返回退出码。
func run(ctx context.Context, args []string) int {
	return runWith(ctx, args, os.Stdout, os.Stderr)
}

func runWith(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	err := createApp(stdout, stderr).Run(ctx, args)
	if err == nil {
		return 0
	}
	var usage *usageError
	if errors.As(err, &usage) {
		fmt.Fprintf(stderr, "xserve: %v\n", usage)
		return 2
	}
	fmt.Fprintf(stderr, "xserve: %v\n", err)
	return 1
}
