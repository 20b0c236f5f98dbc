package config

// Config is the root configuration structure loaded from YAML.
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Input   InputConfig   `yaml:"input"`
	Follow  FollowConfig  `yaml:"follow"`
}

// LoggingConfig controls log verbosity and format.
type LoggingConfig struct {
	Level string `yaml:"level"` // e.g. "info", "debug"
	JSON  bool   `yaml:"json"`
}

// InputConfig controls how log lines are read and what happens to lines
// that do not parse.
type InputConfig struct {
	OnError     string `yaml:"on_error"`    // "skip" or "abort"
	Compression string `yaml:"compression"` // "auto", "none", "gzip", "zstd"
}

// FollowConfig tunes the file follower used by clfgrep -follow.
type FollowConfig struct {
	Poll   bool `yaml:"poll"`   // poll for changes instead of using inotify
	ReOpen bool `yaml:"reopen"` // reopen the file after rotation
}

const (
	OnErrorSkip  = "skip"
	OnErrorAbort = "abort"
)

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{Follow: FollowConfig{ReOpen: true}}
	_ = validate(cfg)
	return cfg
}
