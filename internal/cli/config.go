package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"go.nhat.io/otelquery/sanitizer"
)

const (
	envPrefix = "OTELQUERY_"

	outputText = "text"
	outputJSON = "json"
)

var (
	// ErrUnknownDialect indicates that the configured dialect does not exist.
	ErrUnknownDialect = errors.New("unknown dialect")
	// ErrUnknownOutput indicates that the configured output format is not supported.
	ErrUnknownOutput = errors.New("unknown output format")
	// ErrInvalidWorkers indicates that the number of workers is not positive.
	ErrInvalidWorkers = errors.New("workers must be positive")
	// ErrNothingRequested indicates that both sanitization and summarization are off.
	ErrNothingRequested = errors.New("nothing to do, sanitize and summarize are both disabled")
)

// Config is the configuration of the command-line tool.
type Config struct {
	Dialect   string `koanf:"dialect"`
	Sanitize  bool   `koanf:"sanitize"`
	Summarize bool   `koanf:"summarize"`
	Output    string `koanf:"output"`
	Delimiter string `koanf:"delimiter"`
	Workers   int    `koanf:"workers"`
	Verbose   bool   `koanf:"verbose"`

	// File is the config file that was loaded, if any.
	File string `koanf:"-"`
}

func defaultConfig() map[string]any {
	return map[string]any{
		"dialect":   sanitizer.GenericSQL.Name(),
		"sanitize":  true,
		"summarize": true,
		"output":    outputText,
		"delimiter": "\n",
		"workers":   runtime.GOMAXPROCS(0),
		"verbose":   false,
	}
}

func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}

	for _, name := range []string{"otelquery.yaml", "otelquery.yml"} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}

	return ""
}

// LoadConfig loads the configuration. Flags take precedence over environment variables, which take precedence over the
// config file and then the defaults. Only flags that were set on the command line are considered.
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaultConfig(), "."), nil); err != nil {
		return Config{}, fmt.Errorf("failed to load defaults: %w", err)
	}

	cfgFile = findConfigFile(cfgFile)
	if cfgFile != "" {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("failed to read config file %s: %w", cfgFile, err)
		}
	}

	// OTELQUERY_WORKERS -> workers
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return Config{}, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed || f.Name == "config" || f.Name == "file" {
				return "", nil
			}

			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return Config{}, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config

	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unable to decode config: %w", err)
	}

	cfg.File = cfgFile

	return cfg, cfg.Validate()
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if _, ok := sanitizer.Lookup(c.Dialect); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownDialect, c.Dialect)
	}

	if c.Output != outputText && c.Output != outputJSON {
		return fmt.Errorf("%w: %q", ErrUnknownOutput, c.Output)
	}

	if c.Workers < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidWorkers, c.Workers)
	}

	if !c.Sanitize && !c.Summarize {
		return ErrNothingRequested
	}

	return nil
}
