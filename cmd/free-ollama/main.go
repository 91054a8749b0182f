package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/waiwai24/free-ollama/internal/adapter/store"
	"github.com/waiwai24/free-ollama/internal/common/logging"
)

const defaultConfigFile = "free-ollama.yaml"

type Globals struct {
	Config    kong.ConfigFlag  `name:"config" short:"c" help:"YAML configuration file. Keys follow flag names, e.g. probe.timeout."`
	LogLevel  string           `name:"log.level" env:"LOG_LEVEL" default:"info" help:"Log level (debug, info, warn, error)"`
	LogFormat string           `name:"log.format" env:"LOG_FORMAT" default:"json" enum:"json,text" help:"Log format (json, text)"`
	Version   kong.VersionFlag `name:"version" help:"Print version and exit."`
}

type CLI struct {
	Globals

	Scan  ScanCmd  `cmd:"" default:"withargs" help:"Scan the assets once, write the report and print a summary."`
	Serve ServeCmd `cmd:"" help:"Rescan the assets periodically and expose metrics and the latest report over HTTP."`
}

func main() {
	if err := loadDotEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "free-ollama: %v\n", err)
		os.Exit(2)
	}

	var cli CLI

	parser, err := newParser(&cli, kong.Configuration(yamlConfig, defaultConfigFile))
	if err != nil {
		panic(err)
	}

	kctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	err = kctx.Run(&cli.Globals)
	kctx.FatalIfErrorf(err)
}

func newParser(cli *CLI, options ...kong.Option) (*kong.Kong, error) {
	return kong.New(cli, append([]kong.Option{
		kong.Name("free-ollama"),
		kong.Description("Discover publicly reachable Ollama services."),
		kong.UsageOnError(),
		kong.Vars{
			"version":   logging.Version(),
			"redis_key": store.DefaultRedisKey,
		},
	}, options...)...)
}

// loadDotEnv exports variables from path. A missing file is not an error.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	return fmt.Errorf("failed to load %s: %w", path, err)
}

func (g *Globals) logger() (*slog.Logger, error) {
	level, err := logging.ParseLevel(g.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to parse to log level: %w", err)
	}

	return logging.New(os.Stderr, level, g.LogFormat), nil
}

func (g *Globals) Validate() error {
	if !isLogLevel(g.LogLevel) {
		return fmt.Errorf("--log.level: must be one of debug, info, warn, error")
	}

	return nil
}
