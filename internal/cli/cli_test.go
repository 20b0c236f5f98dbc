package cli

import (
	"bytes"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/cyra/clf/internal/config"
)

func TestOverride(t *testing.T) {
	tests := []struct {
		flag    string
		want    string
		wantErr bool
	}{
		{"", config.OnErrorAbort, false},
		{"skip", config.OnErrorSkip, false},
		{"abort", config.OnErrorAbort, false},
		{"ignore", config.OnErrorAbort, true},
		{"SKIP", config.OnErrorAbort, true},
	}
	for _, tt := range tests {
		cfg := config.Default()
		cfg.Input.OnError = config.OnErrorAbort
		err := Override(cfg, tt.flag)
		if (err != nil) != tt.wantErr {
			t.Errorf("Override(%q) error = %v, wantErr %v", tt.flag, err, tt.wantErr)
		}
		if cfg.Input.OnError != tt.want {
			t.Errorf("Override(%q) on_error = %q, want %q", tt.flag, cfg.Input.OnError, tt.want)
		}
	}
}

func TestInputsRepeat(t *testing.T) {
	var in Inputs
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.Var(&in, "in", "")
	if err := fs.Parse([]string{"-in", "a.log", "-in", "b.log.gz"}); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(Inputs{"a.log", "b.log.gz"}, in); diff != "" {
		t.Error(diff)
	}
	if got := in.String(); got != "a.log,b.log.gz" {
		t.Errorf("String() = %q", got)
	}
}

func TestSetup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clf.yaml")
	if err := os.WriteFile(path, []byte("logging:\n  level: debug\ninput:\n  on_error: abort\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(config.EnvPath, path)

	var stderr bytes.Buffer
	env, err := Setup("clftest", "", "skip", &stderr)
	if err != nil {
		t.Fatal(err)
	}
	if env.ConfigPath != path {
		t.Errorf("ConfigPath = %q, want %q", env.ConfigPath, path)
	}
	if got := env.Store.Current().Input.OnError; got != config.OnErrorSkip {
		t.Errorf("flag should override file: on_error = %q", got)
	}
	if !strings.Contains(stderr.String(), "config loaded") {
		t.Errorf("debug level from file not applied, stderr: %q", stderr.String())
	}

	if _, err := Setup("clftest", "", "never", &stderr); err == nil {
		t.Error("bad -on-error value should fail")
	}
	if _, err := Setup("clftest", filepath.Join(t.TempDir(), "missing.yaml"), "", &stderr); err == nil {
		t.Error("missing config file should fail")
	}
}

func TestPrintFields(t *testing.T) {
	var buf bytes.Buffer
	PrintFields(&buf)
	got := buf.String()
	if !strings.HasPrefix(got, "Available fields: host, ") || !strings.Contains(got, "utcoffset") {
		t.Errorf("unexpected field list: %q", got)
	}
}
