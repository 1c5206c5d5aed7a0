package cli

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/adapters/xsd"
	"github.com/aretw0/arbor/internal/config"
	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/ports"
)

// Sink names accepted by --sink.
const (
	SinkFile   = "file"
	SinkRedis  = "redis"
	SinkS3     = "s3"
	SinkStdout = "stdout"
)

// DefaultOutputsName is the artifact name when none is configured.
const DefaultOutputsName = "dialog.json"

// Options are the flags shared by the compiling commands. Empty values fall
// back to the configuration files.
type Options struct {
	Dialog       string
	Configs      []string
	EnvFiles     []string
	Schema       string
	OutputsDir   string
	OutputsName  string
	OutputConfig string
	Sink         string
	RedisAddr    string
	Report       bool
	Verbose      bool
	// NoSink skips building the artifact sink for commands that never publish.
	NoSink bool
}

// Environment is everything a command needs once flags and configuration
// are merged.
type Environment struct {
	Config   *config.Config
	Settings config.Settings
	Logger   *slog.Logger
	Compiler *arbor.Compiler
	sink     ports.ArtifactSink
}

// Close releases the sink connection, if any.
func (e *Environment) Close() error {
	if c, ok := e.sink.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// createLogger writes debug logs to stderr in verbose mode and discards them
// otherwise; diagnostics are printed by the commands themselves.
func createLogger(verbose bool) *slog.Logger {
	if verbose {
		return logging.New(slog.LevelDebug)
	}
	return logging.NewNop()
}

// LoadConfig merges configuration files, env files and flag overrides.
func LoadConfig(opts Options) (*config.Config, config.Settings, error) {
	cfg, err := config.Load(opts.Configs...)
	if err != nil {
		return nil, config.Settings{}, err
	}
	if err := cfg.LoadEnv(opts.EnvFiles...); err != nil {
		return nil, config.Settings{}, err
	}

	cfg.Set(config.KeyDialogMain, opts.Dialog)
	cfg.Set(config.KeySchema, opts.Schema)
	cfg.Set(config.KeyOutputsDir, opts.OutputsDir)
	cfg.Set(config.KeyOutputsDialogs, opts.OutputsName)
	cfg.Set(config.KeyOutputConfig, opts.OutputConfig)
	cfg.Set("sink_type", opts.Sink)
	cfg.Set("sink_redis_addr", opts.RedisAddr)
	if opts.Verbose {
		cfg.Set(config.KeyVerbose, "true")
	}

	settings, err := cfg.Settings()
	if err != nil {
		return nil, config.Settings{}, err
	}
	return cfg, settings, nil
}

// Setup loads the configuration and builds the compiler. The stdout sink
// writes to stdout.
func Setup(opts Options, stdout io.Writer) (*Environment, error) {
	cfg, settings, err := LoadConfig(opts)
	if err != nil {
		return nil, err
	}
	logger := createLogger(settings.Verbose)

	compilerOpts := []arbor.Option{
		arbor.WithLogger(logger),
		arbor.WithConfig(cfg),
	}
	if settings.Schema != "" {
		validator, err := xsd.Load(resolveRelative(settings.Schema, settings.DialogMain))
		if err != nil {
			return nil, fmt.Errorf("failed to load schema: %w", err)
		}
		compilerOpts = append(compilerOpts, arbor.WithSchema(validator))
	}

	env := &Environment{
		Config:   cfg,
		Settings: settings,
		Logger:   logger,
	}

	if !opts.NoSink {
		sink, err := NewSink(settings, stdout)
		if err != nil {
			return nil, err
		}
		env.sink = sink
		compilerOpts = append(compilerOpts, arbor.WithSink(sink))
	}
	env.Compiler = arbor.New(compilerOpts...)
	return env, nil
}

// resolveRelative resolves a schema path that does not exist as given next
// to the dialog.
func resolveRelative(path, dialog string) string {
	if filepath.IsAbs(path) || dialog == "" || fileExists(path) {
		return path
	}
	return filepath.Join(filepath.Dir(dialog), path)
}

func parseTTL(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}
