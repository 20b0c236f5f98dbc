package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cyra/clf/internal/cli"
	"github.com/cyra/clf/internal/config"
	"github.com/cyra/clf/internal/filter"
	"github.com/cyra/clf/internal/parser"
	"github.com/cyra/clf/internal/pipeline"
)

const prog = "clfgrep"

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
	follow := fs.Bool("follow", false, "Keep reading the -in file as it grows, like tail -f")
	showVersion := fs.Bool("version", false, "Print version and exit")
	var inputs cli.Inputs
	fs.Var(&inputs, "in", "Read `file` instead of stdin; repeat to concatenate. gzip and zstd files are decompressed")

	fs.Usage = func() {
		w := fs.Output()
		fmt.Fprintf(w, "Usage:\n    %s [options] field operator value\n\n", prog)
		fmt.Fprintf(w, "    Purpose:     Scan web server log files.\n")
		fmt.Fprintf(w, "    Operators:   = for exact matches, ~ for regular expressions.\n")
		fmt.Fprintf(w, "    Prefix with: ! to negate, * for case insensitive search, in this order.\n")
		fmt.Fprintf(w, "    Examples:    status=404  user_agent*~bot  !*method=get\n")
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

	expr := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if expr == "" {
		fs.Usage()
		return 1
	}
	pred, err := filter.Parse(expr)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n\n", prog, err)
		fs.Usage()
		return 1
	}
	if *follow && len(inputs) != 1 {
		fmt.Fprintf(stderr, "%s: -follow needs exactly one -in file\n", prog)
		return 1
	}

	env, err := cli.Setup(prog, *configPath, *onError, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", prog, err)
		return 1
	}
	logger := env.Logger
	logger.Debugf("filter: %s", pred)

	out := bufio.NewWriter(stdout)
	runner := pipeline.New(env.Store, logger)
	emit := func(r *parser.Record) error {
		if !pred.Match(r) {
			return nil
		}
		if _, err := out.WriteString(r.Raw + "\n"); err != nil {
			return err
		}
		if *follow {
			return out.Flush()
		}
		return nil
	}

	if *follow {
		if env.ConfigPath != "" {
			w, err := config.WatchFile(env.ConfigPath, env.Store, logger, func(c *config.Config) {
				// The command line wins over the file.
				_ = cli.Override(c, *onError)
				logger.SetLevel(c.Logging.Level)
			})
			if err != nil {
				logger.Errorf("config watcher disabled: %v", err)
			} else {
				defer w.Stop()
			}
		}
		err = runner.Follow(ctx, inputs[0], emit)
	} else {
		err = runner.ScanInputs(ctx, inputs, stdin, emit)
	}

	if flushErr := out.Flush(); err == nil {
		err = flushErr
	}
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
	return 0
}
