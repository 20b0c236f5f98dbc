package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/cyra/clf/internal/cli"
	"github.com/cyra/clf/internal/parser"
	"github.com/cyra/clf/internal/pipeline"
	"github.com/cyra/clf/internal/stats"
)

const prog = "clfstat"

func main() {
	ctx, cancel := cli.SignalContext()
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}

// run executes the command. Canceling ctx ends the run quietly with status 0.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet(prog, flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "Path to YAML configuration file (default $CLF_CONFIG)")
	onError := fs.String("on-error", "", "Lines that do not parse: skip or abort (overrides config)")
	showVersion := fs.Bool("version", false, "Print version and exit")
	var inputs cli.Inputs
	fs.Var(&inputs, "in", "Read `file` instead of stdin; repeat to concatenate. gzip and zstd files are decompressed")

	fs.Usage = func() {
		w := fs.Output()
		fmt.Fprintf(w, "Usage:\n    %s [options] operator field [operator field]...\n\n", prog)
		fmt.Fprintf(w, "    Purpose: Ad-hoc analysis of web server log files in Combined Log Format.\n")
		fmt.Fprintf(w, "    Operators:\n")
		for _, op := range stats.Ops() {
			fmt.Fprintf(w, "\t%s:\t%s\n", op, op.Description())
		}
		fmt.Fprintf(w, "\nOptions:\n")
		fs.PrintDefaults()
		fmt.Fprintln(w)
		cli.PrintFields(w)
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}

	if *showVersion {
		fmt.Fprintln(stdout, prog, "version", cli.Version)
		return 0
	}

	if fs.NArg() == 0 {
		fs.Usage()
		return 1
	}
	job, err := stats.ParseJob(fs.Args())
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n\n", prog, err)
		fs.Usage()
		return 1
	}

	env, err := cli.Setup(prog, *configPath, *onError, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", prog, err)
		return 1
	}
	logger := env.Logger

	agg := stats.NewAggregator(job)
	runner := pipeline.New(env.Store, logger)
	add := func(r *parser.Record) error {
		agg.Add(r)
		return nil
	}

	err = runner.ScanInputs(ctx, inputs, stdin, add)
	if errors.Is(err, context.Canceled) {
		return 0
	}
	if err != nil {
		logger.Errorf("%v", err)
		return 1
	}

	if n := runner.Skipped(); n > 0 {
		logger.Warnf("%d lines skipped", n)
	}
	logger.Debugf("%d records aggregated", agg.Records())

	results, resErr := agg.Results()
	if err := stats.Write(stdout, results); err != nil {
		logger.Errorf("write results: %v", err)
		return 1
	}
	if resErr != nil {
		logger.Errorf("%v", resErr)
		return 1
	}
	return 0
}
