package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"goflare.io/hearth"
	"goflare.io/hearth/internal/config"
	"goflare.io/hearth/pkg/serialization"
)

// env carries what every command needs: cache options, a logger and the
// report writer.
type env struct {
	opts   []hearth.Option
	logger *zap.Logger
	format string
	out    io.Writer
}

// withEnv builds an env from the global flags, runs fn and flushes the logger.
func withEnv(_ context.Context, cmd *cli.Command, fn func(*env) error) error {
	e, err := newEnv(cmd.String("config"), cmd.String("format"), cmd.Bool("verbose"), os.Stdout)
	if err != nil {
		return err
	}
	defer func() { _ = e.logger.Sync() }()

	if d := cmd.Duration("sweep-interval"); d != 0 {
		e.opts = append(e.opts, hearth.WithSweepInterval(d))
	}
	if d := cmd.Duration("call-timeout"); d != 0 {
		e.opts = append(e.opts, hearth.WithCallTimeout(d))
	}
	return fn(e)
}

func newEnv(configPath, format string, verbose bool, out io.Writer) (*env, error) {
	if !validFormat(format) {
		return nil, fmt.Errorf("unsupported report format: %s", format)
	}

	file := &config.File{}
	if configPath != "" {
		var err error
		if file, err = config.Load(configPath); err != nil {
			return nil, err
		}
	}
	if verbose {
		file.Log.Level = "debug"
		file.Log.Development = true
	}

	logger, err := file.NewLogger()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	e := &env{logger: logger, format: format, out: out}
	for _, opt := range file.Options() {
		e.opts = append(e.opts, hearth.Option(opt))
	}
	e.opts = append(e.opts, hearth.WithLogger(logger))
	return e, nil
}

// emit writes a report in the selected format.
func (e *env) emit(rep report) error {
	if e.format == "text" {
		_, err := io.WriteString(e.out, rep.String())
		return err
	}

	enc, err := serialization.NewEncoder(e.format, e.out)
	if err != nil {
		return err
	}
	return enc.Encode(rep)
}
