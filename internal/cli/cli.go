// Package cli holds the setup shared by the clfstat and clfgrep commands.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/cyra/clf/internal/config"
	"github.com/cyra/clf/internal/field"
	"github.com/cyra/clf/internal/logging"
)

// Version is set via ldflags: -X github.com/cyra/clf/internal/cli.Version=v1.0.0
var Version = "dev"

// Inputs collects repeated -in flags.
type Inputs []string

func (i *Inputs) String() string { return strings.Join(*i, ",") }

func (i *Inputs) Set(v string) error {
	*i = append(*i, v)
	return nil
}

// Env is the configuration and logger a command runs with.
type Env struct {
	ConfigPath string
	Store      *config.Store
	Logger     *logging.Logger
}

// Setup loads the config (flag path, then $CLF_CONFIG, then defaults),
// applies a non-empty onError override and builds the stderr logger.
func Setup(prog, configPath, onError string, stderr io.Writer) (*Env, error) {
	path := config.Resolve(configPath)
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := Override(cfg, onError); err != nil {
		return nil, err
	}

	logger := logging.New(stderr, prog, cfg.Logging.JSON)
	logger.SetLevel(cfg.Logging.Level)
	logger.Debugf("config loaded from %q (on_error=%s, compression=%s)", path, cfg.Input.OnError, cfg.Input.Compression)

	return &Env{ConfigPath: path, Store: config.NewStore(cfg), Logger: logger}, nil
}

// Override applies the -on-error flag to cfg.
func Override(cfg *config.Config, onError string) error {
	switch onError {
	case "":
	case config.OnErrorSkip, config.OnErrorAbort:
		cfg.Input.OnError = onError
	default:
		return fmt.Errorf("-on-error must be %q or %q, got %q", config.OnErrorSkip, config.OnErrorAbort, onError)
	}
	return nil
}

// SignalContext returns a context that is canceled on SIGINT or SIGTERM.
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// PrintFields writes the field list shown at the end of every usage message.
func PrintFields(w io.Writer) {
	fmt.Fprintf(w, "Available fields: %s\n", strings.Join(field.Names(), ", "))
}
